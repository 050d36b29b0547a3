package site

import (
	"io/fs"
	"net/http"
)

const immutableCache = "public, max-age=31536000, immutable"

// StaticHandler serves fsys under /static/ with long-lived caching for successful responses.
func StaticHandler(fsys fs.FS) http.Handler {
	return http.StripPrefix("/static/", CacheControl(http.FileServer(http.FS(fsys))))
}

// CacheControl marks 2xx responses immutable and everything else no-store.
func CacheControl(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheWriter{ResponseWriter: w}, r)
	})
}

type cacheWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (c *cacheWriter) WriteHeader(code int) {
	if !c.wroteHeader {
		c.wroteHeader = true
		if code >= 200 && code < 300 {
			c.Header().Set("Cache-Control", immutableCache)
		} else {
			c.Header().Set("Cache-Control", "no-store")
		}
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *cacheWriter) Write(p []byte) (int, error) {
	if !c.wroteHeader {
		c.WriteHeader(http.StatusOK)
	}
	return c.ResponseWriter.Write(p)
}

func (c *cacheWriter) Unwrap() http.ResponseWriter { return c.ResponseWriter }
