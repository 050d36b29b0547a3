package security

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func multipartBody(t *testing.T, fields map[string]string, fileName string, file []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("document", fileName)
	require.NoError(t, err)
	_, err = part.Write(file)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestBodyLimitPassesLeadFormThrough(t *testing.T) {
	form := url.Values{"name": {"Rafiq"}, "phone": {"01711000000"}}.Encode()
	var got url.Values
	h := BodyLimit{Max: 1024}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.WriteHeader(http.StatusSeeOther)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/meetings", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "Rafiq", got.Get("name"))
}

func TestBodyLimitMultipartUnderLimit(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{"name": "Jahanara"}, "deed.pdf", bytes.Repeat([]byte("p"), 2048))
	var fileSize int64
	h := BodyLimit{Max: 8 << 10}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		require.Equal(t, "Jahanara", r.FormValue("name"))
		_, header, err := r.FormFile("document")
		require.NoError(t, err)
		fileSize = header.Size
		w.WriteHeader(http.StatusSeeOther)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/landowner", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, int64(2048), fileSize)
}

func TestBodyLimitMultipartOverLimit(t *testing.T) {
	body, contentType := multipartBody(t, map[string]string{"name": "Jahanara"}, "survey.jpg", bytes.Repeat([]byte("j"), 16<<10))
	called := false
	h := BodyLimit{Max: 8 << 10}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// chunked upload: no declared length, so the cap trips while reading
	req := httptest.NewRequest(http.MethodPost, "/api/landowner", io.MultiReader(body))
	req.ContentLength = -1
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.False(t, called)

	var out struct {
		Error struct {
			Code    string           `json:"code"`
			Details map[string]int64 `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, "PAYLOAD_TOO_LARGE", out.Error.Code)
	require.Equal(t, int64(8<<10), out.Error.Details["max_bytes"])
}

func TestBodyLimitRefusesDeclaredLength(t *testing.T) {
	called := false
	h := BodyLimit{Max: 5}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader("abc"))
	req.ContentLength = 100
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	require.Equal(t, "close", rr.Header().Get("Connection"))
	require.False(t, called)
}

func TestBodyLimitExactlyAtLimit(t *testing.T) {
	h := BodyLimit{Max: 5}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Equal(t, "hello", string(data))
		require.Equal(t, int64(5), r.ContentLength)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/feedback", strings.NewReader("hello")))
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestBodyLimitDisabled(t *testing.T) {
	h := BodyLimit{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.Len(t, data, 4096)
	}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewReader(make([]byte, 4096))))
	require.Equal(t, http.StatusOK, rr.Code)
}
