// Package notify delivers lead notifications through asynq background tasks.
package notify

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeLeadNotify is the asynq task type for new lead notifications.
const TypeLeadNotify = "lead:notify"

// LeadKind identifies which form produced a lead.
type LeadKind string

const (
	KindMeeting   LeadKind = "meeting"
	KindFeedback  LeadKind = "feedback"
	KindLandowner LeadKind = "landowner"
)

// Valid reports whether k is a known lead kind.
func (k LeadKind) Valid() bool {
	switch k {
	case KindMeeting, KindFeedback, KindLandowner:
		return true
	default:
		return false
	}
}

// Payload is the body of a lead:notify task.
type Payload struct {
	Kind LeadKind `json:"kind"`
	ID   int32    `json:"id"`
}

// NewLeadTask encodes p as an asynq task.
func NewLeadTask(p Payload) (*asynq.Task, error) {
	if !p.Kind.Valid() {
		return nil, fmt.Errorf("notify: unknown lead kind %q", p.Kind)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeLeadNotify, data), nil
}

// ParsePayload decodes the payload of a lead:notify task.
func ParsePayload(t *asynq.Task) (Payload, error) {
	var p Payload
	if t == nil {
		return p, fmt.Errorf("notify: nil task")
	}
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("notify: decode payload: %w", err)
	}
	if !p.Kind.Valid() || p.ID <= 0 {
		return p, fmt.Errorf("notify: invalid payload %+v", p)
	}
	return p, nil
}

func taskID(p Payload) string {
	return fmt.Sprintf("lead:%s:%d", p.Kind, p.ID)
}
