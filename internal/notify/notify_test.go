package notify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/db"
)

type fakeLeads struct {
	meetings  map[int32]db.MeetingRequest
	feedback  map[int32]db.Feedback
	landowner map[int32]db.LandownerLead
	err       error
}

func (f fakeLeads) GetMeetingRequest(_ context.Context, id int32) (db.MeetingRequest, error) {
	if f.err != nil {
		return db.MeetingRequest{}, f.err
	}
	row, ok := f.meetings[id]
	if !ok {
		return db.MeetingRequest{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f fakeLeads) GetFeedback(_ context.Context, id int32) (db.Feedback, error) {
	row, ok := f.feedback[id]
	if !ok {
		return db.Feedback{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f fakeLeads) GetLandownerLead(_ context.Context, id int32) (db.LandownerLead, error) {
	row, ok := f.landowner[id]
	if !ok {
		return db.LandownerLead{}, pgx.ErrNoRows
	}
	return row, nil
}

type failingMail struct{}

func (failingMail) Send(context.Context, common.Mail) error { return errors.New("smtp down") }

func mustTask(t *testing.T, p Payload) *asynq.Task {
	t.Helper()
	task, err := NewLeadTask(p)
	require.NoError(t, err)
	return task
}

func TestTaskCodec(t *testing.T) {
	task := mustTask(t, Payload{Kind: KindLandowner, ID: 42})
	require.Equal(t, TypeLeadNotify, task.Type())
	require.JSONEq(t, `{"kind":"landowner","id":42}`, string(task.Payload()))

	p, err := ParsePayload(task)
	require.NoError(t, err)
	require.Equal(t, Payload{Kind: KindLandowner, ID: 42}, p)
	require.Equal(t, "lead:landowner:42", taskID(p))
}

func TestTaskCodecRejectsBadInput(t *testing.T) {
	_, err := NewLeadTask(Payload{Kind: "order", ID: 1})
	require.Error(t, err)

	_, err = ParsePayload(asynq.NewTask(TypeLeadNotify, []byte(`{"kind":"meeting","id":0}`)))
	require.Error(t, err)
	_, err = ParsePayload(asynq.NewTask(TypeLeadNotify, []byte(`not json`)))
	require.Error(t, err)
	_, err = ParsePayload(nil)
	require.Error(t, err)
}

func TestWorkerEmailsMeetingRequest(t *testing.T) {
	mail := &common.MailRecorder{}
	dhaka, err := time.LoadLocation("Asia/Dhaka")
	require.NoError(t, err)
	w := &Worker{
		Leads: fakeLeads{meetings: map[int32]db.MeetingRequest{
			7: {
				ID:                7,
				Name:              "Karim <b>",
				Phone:             "+8801711000000",
				Email:             pgtype.Text{String: "karim@example.com", Valid: true},
				PreferredDate:     pgtype.Date{Time: time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), Valid: true},
				PreferredTimeSlot: pgtype.Text{String: "evening", Valid: true},
				SourcePage:        pgtype.Text{String: "/projects/lake-view", Valid: true},
				CreatedAt:         pgtype.Timestamptz{Time: time.Date(2024, 3, 1, 4, 0, 0, 0, time.UTC), Valid: true},
			},
		}},
		Mail:     mail,
		To:       "sales@example.com",
		Location: dhaka,
		Logger:   zerolog.Nop(),
	}

	require.NoError(t, w.ProcessTask(context.Background(), mustTask(t, Payload{Kind: KindMeeting, ID: 7})))
	sent := mail.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, []string{"sales@example.com"}, sent[0].To)
	require.Equal(t, "karim@example.com", sent[0].ReplyTo)
	require.Equal(t, "New meeting request from Karim <b>", sent[0].Subject)
	require.Contains(t, sent[0].HTML, "Karim &lt;b&gt;")
	require.Contains(t, sent[0].HTML, "2024-03-05")
	require.Contains(t, sent[0].HTML, "/projects/lake-view")
	require.Contains(t, sent[0].HTML, "2024-03-01 10:00")
}

func TestWorkerHandlesEachKind(t *testing.T) {
	mail := &common.MailRecorder{}
	w := &Worker{
		Leads: fakeLeads{
			feedback:  map[int32]db.Feedback{1: {ID: 1, Name: "Nadia", Phone: "+880170000000"}},
			landowner: map[int32]db.LandownerLead{2: {ID: 2, Name: "Rafiq", Phone: "+880170000001", LandSize: pgtype.Text{String: "10 katha", Valid: true}}},
		},
		Mail:   mail,
		To:     "ops@example.com, sales@example.com,",
		Logger: zerolog.Nop(),
	}
	ctx := context.Background()
	require.NoError(t, w.ProcessTask(ctx, mustTask(t, Payload{Kind: KindFeedback, ID: 1})))
	require.NoError(t, w.ProcessTask(ctx, mustTask(t, Payload{Kind: KindLandowner, ID: 2})))

	sent := mail.Sent()
	require.Len(t, sent, 2)
	require.Equal(t, "New feedback from Nadia", sent[0].Subject)
	require.Equal(t, "New landowner lead from Rafiq", sent[1].Subject)
	require.Equal(t, []string{"ops@example.com", "sales@example.com"}, sent[1].To)
	require.Empty(t, sent[1].ReplyTo)
	require.Contains(t, sent[1].HTML, "10 katha")
}

func TestWorkerMissingLeadSkipsRetry(t *testing.T) {
	w := &Worker{Leads: fakeLeads{}, Mail: &common.MailRecorder{}, To: "ops@example.com", Logger: zerolog.Nop()}
	err := w.ProcessTask(context.Background(), mustTask(t, Payload{Kind: KindMeeting, ID: 99}))
	require.Error(t, err)
	require.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestWorkerRetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	w := &Worker{Leads: fakeLeads{err: errors.New("conn reset")}, Mail: &common.MailRecorder{}, To: "ops@example.com", Logger: zerolog.Nop()}
	err := w.ProcessTask(ctx, mustTask(t, Payload{Kind: KindMeeting, ID: 1}))
	require.Error(t, err)
	require.False(t, errors.Is(err, asynq.SkipRetry))

	w = &Worker{
		Leads:  fakeLeads{feedback: map[int32]db.Feedback{1: {ID: 1, Name: "N"}}},
		Mail:   failingMail{},
		To:     "ops@example.com",
		Logger: zerolog.Nop(),
	}
	err = w.ProcessTask(ctx, mustTask(t, Payload{Kind: KindFeedback, ID: 1}))
	require.Error(t, err)
	require.False(t, errors.Is(err, asynq.SkipRetry))
}

func TestWorkerWithoutRecipientIsNoop(t *testing.T) {
	mail := &common.MailRecorder{}
	w := &Worker{Leads: fakeLeads{}, Mail: mail, Logger: zerolog.Nop()}
	require.NoError(t, w.ProcessTask(context.Background(), mustTask(t, Payload{Kind: KindFeedback, ID: 1})))
	require.Empty(t, mail.Sent())
}

func TestWorkerRejectsMalformedTask(t *testing.T) {
	w := &Worker{Leads: fakeLeads{}, Mail: &common.MailRecorder{}, To: "x@example.com", Logger: zerolog.Nop()}
	err := w.ProcessTask(context.Background(), asynq.NewTask(TypeLeadNotify, []byte(`{}`)))
	require.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestEnqueuersWithoutClient(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, AsynqEnqueuer{}.EnqueueLead(ctx, Payload{Kind: KindMeeting, ID: 1}))
	require.NoError(t, NopEnqueuer{}.EnqueueLead(ctx, Payload{Kind: KindMeeting, ID: 1}))
}

func TestBodyForSkipsEmptyRows(t *testing.T) {
	body := bodyFor(Lead{Kind: KindFeedback, Name: "A", Phone: "1", Extra: [][2]string{{"Land size", ""}}}, nil)
	require.NotContains(t, body, "Land size")
	require.NotContains(t, body, "Email")
	require.True(t, strings.HasPrefix(body, "<table>"))
}

func TestSMTPMessageHeaders(t *testing.T) {
	s := SMTPSender{Addr: "smtp.example.com:587", From: "no-reply@deed.example"}
	msg := string(s.message(common.Mail{
		To:      []string{"sales@example.com", "ops@example.com"},
		ReplyTo: "karim@example.com\r\nBcc: victim@example.com",
		Subject: "New meeting request from Karim",
		HTML:    "<p>hi</p>",
	}))
	require.Contains(t, msg, "To: sales@example.com, ops@example.com\r\n")
	require.Contains(t, msg, "Subject: New meeting request from Karim\r\n")
	require.NotContains(t, msg, "\r\nBcc:")
	require.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}

func TestSMTPSendRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	require.Error(t, SMTPSender{Addr: "smtp.example.com:25"}.Send(ctx, common.Mail{Subject: "x"}))
	require.Error(t, SMTPSender{Addr: "smtp.example.com"}.Send(ctx, common.Mail{To: []string{"a@example.com"}}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, SMTPSender{Addr: "smtp.example.com:25"}.Send(cancelled, common.Mail{To: []string{"a@example.com"}}), context.Canceled)
}
