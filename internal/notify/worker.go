package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/db"
	"github.com/anisjkb/deed/internal/obs"
)

type leadLoader interface {
	GetMeetingRequest(ctx context.Context, id int32) (db.MeetingRequest, error)
	GetFeedback(ctx context.Context, id int32) (db.Feedback, error)
	GetLandownerLead(ctx context.Context, id int32) (db.LandownerLead, error)
}

// Worker emails staff about new leads.
type Worker struct {
	Leads    leadLoader
	Mail     common.Mailer
	// To is a comma separated recipient list.
	To       string
	Location *time.Location
	Logger   zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (w *Worker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	p, err := ParsePayload(t)
	if err != nil {
		obs.ObserveLeadNotification("invalid")
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	log := w.Logger.With().Str("kind", string(p.Kind)).Int32("lead_id", p.ID).Logger()
	to := common.Recipients(w.To)
	if len(to) == 0 || w.Mail == nil {
		obs.ObserveLeadNotification("skipped")
		log.Debug().Msg("lead notification skipped: no recipient")
		return nil
	}

	lead, err := w.load(ctx, p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			obs.ObserveLeadNotification("missing")
			log.Warn().Msg("lead vanished before notification")
			return fmt.Errorf("lead %s/%d not found: %w", p.Kind, p.ID, asynq.SkipRetry)
		}
		obs.ObserveLeadNotification("error")
		return fmt.Errorf("load lead: %w", err)
	}

	mail := common.Mail{To: to, ReplyTo: lead.Email, Subject: subjectFor(lead), HTML: bodyFor(lead, w.Location)}
	if err := w.Mail.Send(ctx, mail); err != nil {
		obs.ObserveLeadNotification("error")
		log.Error().Err(err).Msg("lead notification failed")
		return fmt.Errorf("send notification: %w", err)
	}
	obs.ObserveLeadNotification("sent")
	log.Info().Msg("lead notification sent")
	return nil
}

// Register mounts the worker on an asynq mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.Handle(TypeLeadNotify, w)
}

func (w *Worker) load(ctx context.Context, p Payload) (Lead, error) {
	switch p.Kind {
	case KindMeeting:
		row, err := w.Leads.GetMeetingRequest(ctx, p.ID)
		if err != nil {
			return Lead{}, err
		}
		extra := [][2]string{}
		if row.PreferredDate.Valid {
			extra = append(extra, [2]string{"Preferred date", row.PreferredDate.Time.Format("2006-01-02")})
		}
		extra = append(extra,
			[2]string{"Time slot", text(row.PreferredTimeSlot)},
			[2]string{"Source page", text(row.SourcePage)},
		)
		return Lead{Kind: p.Kind, ID: row.ID, Name: row.Name, Phone: row.Phone, Email: text(row.Email), Message: text(row.Message), Extra: extra, CreatedAt: row.CreatedAt.Time}, nil
	case KindFeedback:
		row, err := w.Leads.GetFeedback(ctx, p.ID)
		if err != nil {
			return Lead{}, err
		}
		return Lead{Kind: p.Kind, ID: row.ID, Name: row.Name, Phone: row.Phone, Email: text(row.Email), Message: text(row.Message), CreatedAt: row.CreatedAt.Time}, nil
	case KindLandowner:
		row, err := w.Leads.GetLandownerLead(ctx, p.ID)
		if err != nil {
			return Lead{}, err
		}
		extra := [][2]string{
			{"Land location", text(row.LandLocation)},
			{"Land size", text(row.LandSize)},
		}
		return Lead{Kind: p.Kind, ID: row.ID, Name: row.Name, Phone: row.Phone, Email: text(row.Email), Message: text(row.Message), Extra: extra, CreatedAt: row.CreatedAt.Time}, nil
	default:
		return Lead{}, fmt.Errorf("unknown lead kind %q", p.Kind)
	}
}

func text(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}
