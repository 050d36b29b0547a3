package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createMeetingRequest = `-- name: CreateMeetingRequest :one
INSERT INTO meeting_requests (name, phone, email, preferred_date, preferred_time_slot, message, source_page)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at
`

type CreateMeetingRequestParams struct {
	Name              string      `json:"name"`
	Phone             string      `json:"phone"`
	Email             pgtype.Text `json:"email"`
	PreferredDate     pgtype.Date `json:"preferred_date"`
	PreferredTimeSlot pgtype.Text `json:"preferred_time_slot"`
	Message           pgtype.Text `json:"message"`
	SourcePage        pgtype.Text `json:"source_page"`
}

type CreateLeadRow struct {
	ID        int32              `json:"id"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

func (q *Queries) CreateMeetingRequest(ctx context.Context, arg CreateMeetingRequestParams) (CreateLeadRow, error) {
	row := q.db.QueryRow(ctx, createMeetingRequest,
		arg.Name,
		arg.Phone,
		arg.Email,
		arg.PreferredDate,
		arg.PreferredTimeSlot,
		arg.Message,
		arg.SourcePage,
	)
	var i CreateLeadRow
	err := row.Scan(&i.ID, &i.CreatedAt)
	return i, err
}

const getMeetingRequest = `-- name: GetMeetingRequest :one
SELECT id, name, phone, email, preferred_date, preferred_time_slot, message, source_page, created_at
FROM meeting_requests
WHERE id = $1
`

func (q *Queries) GetMeetingRequest(ctx context.Context, id int32) (MeetingRequest, error) {
	row := q.db.QueryRow(ctx, getMeetingRequest, id)
	var i MeetingRequest
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Phone,
		&i.Email,
		&i.PreferredDate,
		&i.PreferredTimeSlot,
		&i.Message,
		&i.SourcePage,
		&i.CreatedAt,
	)
	return i, err
}

const createFeedback = `-- name: CreateFeedback :one
INSERT INTO feedback (name, phone, email, message)
VALUES ($1, $2, $3, $4)
RETURNING id, created_at
`

type CreateFeedbackParams struct {
	Name    string      `json:"name"`
	Phone   string      `json:"phone"`
	Email   pgtype.Text `json:"email"`
	Message pgtype.Text `json:"message"`
}

func (q *Queries) CreateFeedback(ctx context.Context, arg CreateFeedbackParams) (CreateLeadRow, error) {
	row := q.db.QueryRow(ctx, createFeedback, arg.Name, arg.Phone, arg.Email, arg.Message)
	var i CreateLeadRow
	err := row.Scan(&i.ID, &i.CreatedAt)
	return i, err
}

const getFeedback = `-- name: GetFeedback :one
SELECT id, name, phone, email, message, created_at
FROM feedback
WHERE id = $1
`

func (q *Queries) GetFeedback(ctx context.Context, id int32) (Feedback, error) {
	row := q.db.QueryRow(ctx, getFeedback, id)
	var i Feedback
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Phone,
		&i.Email,
		&i.Message,
		&i.CreatedAt,
	)
	return i, err
}

const createLandownerLead = `-- name: CreateLandownerLead :one
INSERT INTO landowner_leads (name, phone, email, land_location, land_size, message)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at
`

type CreateLandownerLeadParams struct {
	Name         string      `json:"name"`
	Phone        string      `json:"phone"`
	Email        pgtype.Text `json:"email"`
	LandLocation pgtype.Text `json:"land_location"`
	LandSize     pgtype.Text `json:"land_size"`
	Message      pgtype.Text `json:"message"`
}

func (q *Queries) CreateLandownerLead(ctx context.Context, arg CreateLandownerLeadParams) (CreateLeadRow, error) {
	row := q.db.QueryRow(ctx, createLandownerLead,
		arg.Name,
		arg.Phone,
		arg.Email,
		arg.LandLocation,
		arg.LandSize,
		arg.Message,
	)
	var i CreateLeadRow
	err := row.Scan(&i.ID, &i.CreatedAt)
	return i, err
}

const getLandownerLead = `-- name: GetLandownerLead :one
SELECT id, name, phone, email, land_location, land_size, message, created_at
FROM landowner_leads
WHERE id = $1
`

func (q *Queries) GetLandownerLead(ctx context.Context, id int32) (LandownerLead, error) {
	row := q.db.QueryRow(ctx, getLandownerLead, id)
	var i LandownerLead
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Phone,
		&i.Email,
		&i.LandLocation,
		&i.LandSize,
		&i.Message,
		&i.CreatedAt,
	)
	return i, err
}
