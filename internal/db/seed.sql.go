package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const resetContent = `-- name: ResetContent :exec
TRUNCATE banners, awards, testimonials, associate_business RESTART IDENTITY
`

// ResetContent clears the tables that seed files replace wholesale.
func (q *Queries) ResetContent(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetContent)
	return err
}

const createBanner = `-- name: CreateBanner :exec
INSERT INTO banners (image_url, headline, subhead, cta_text, cta_url, sort_order, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateBannerParams struct {
	ImageUrl  string      `json:"image_url"`
	Headline  pgtype.Text `json:"headline"`
	Subhead   pgtype.Text `json:"subhead"`
	CtaText   pgtype.Text `json:"cta_text"`
	CtaUrl    pgtype.Text `json:"cta_url"`
	SortOrder int32       `json:"sort_order"`
	IsActive  bool        `json:"is_active"`
}

func (q *Queries) CreateBanner(ctx context.Context, arg CreateBannerParams) error {
	_, err := q.db.Exec(ctx, createBanner,
		arg.ImageUrl,
		arg.Headline,
		arg.Subhead,
		arg.CtaText,
		arg.CtaUrl,
		arg.SortOrder,
		arg.IsActive,
	)
	return err
}

const createAward = `-- name: CreateAward :exec
INSERT INTO awards (title, issuer, year, description, image_url)
VALUES ($1, $2, $3, $4, $5)
`

type CreateAwardParams struct {
	Title       string      `json:"title"`
	Issuer      pgtype.Text `json:"issuer"`
	Year        pgtype.Int4 `json:"year"`
	Description pgtype.Text `json:"description"`
	ImageUrl    pgtype.Text `json:"image_url"`
}

func (q *Queries) CreateAward(ctx context.Context, arg CreateAwardParams) error {
	_, err := q.db.Exec(ctx, createAward, arg.Title, arg.Issuer, arg.Year, arg.Description, arg.ImageUrl)
	return err
}

const createTestimonial = `-- name: CreateTestimonial :exec
INSERT INTO testimonials (name, role, project_title, quote, video_url, sort_order, published)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`

type CreateTestimonialParams struct {
	Name         string      `json:"name"`
	Role         pgtype.Text `json:"role"`
	ProjectTitle pgtype.Text `json:"project_title"`
	Quote        string      `json:"quote"`
	VideoUrl     pgtype.Text `json:"video_url"`
	SortOrder    int32       `json:"sort_order"`
	Published    string      `json:"published"`
}

func (q *Queries) CreateTestimonial(ctx context.Context, arg CreateTestimonialParams) error {
	_, err := q.db.Exec(ctx, createTestimonial,
		arg.Name,
		arg.Role,
		arg.ProjectTitle,
		arg.Quote,
		arg.VideoUrl,
		arg.SortOrder,
		arg.Published,
	)
	return err
}

const upsertDesignation = `-- name: UpsertDesignation :exec
INSERT INTO desig_info (desig_id, desig_name, sort_order)
VALUES ($1, $2, $3)
ON CONFLICT (desig_id) DO UPDATE SET
    desig_name = EXCLUDED.desig_name,
    sort_order = EXCLUDED.sort_order
`

type UpsertDesignationParams struct {
	DesigID   string      `json:"desig_id"`
	DesigName string      `json:"desig_name"`
	SortOrder pgtype.Int4 `json:"sort_order"`
}

func (q *Queries) UpsertDesignation(ctx context.Context, arg UpsertDesignationParams) error {
	_, err := q.db.Exec(ctx, upsertDesignation, arg.DesigID, arg.DesigName, arg.SortOrder)
	return err
}

const upsertEmployee = `-- name: UpsertEmployee :exec
INSERT INTO emp_info (emp_id, emp_name, emp_type, desig_id, photo_url, bio, linkedin_url, sort_order, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (emp_id) DO UPDATE SET
    emp_name = EXCLUDED.emp_name,
    emp_type = EXCLUDED.emp_type,
    desig_id = EXCLUDED.desig_id,
    photo_url = EXCLUDED.photo_url,
    bio = EXCLUDED.bio,
    linkedin_url = EXCLUDED.linkedin_url,
    sort_order = EXCLUDED.sort_order,
    status = EXCLUDED.status
`

type UpsertEmployeeParams struct {
	EmpID       string      `json:"emp_id"`
	EmpName     string      `json:"emp_name"`
	EmpType     string      `json:"emp_type"`
	DesigID     pgtype.Text `json:"desig_id"`
	PhotoUrl    pgtype.Text `json:"photo_url"`
	Bio         pgtype.Text `json:"bio"`
	LinkedinUrl pgtype.Text `json:"linkedin_url"`
	SortOrder   pgtype.Int4 `json:"sort_order"`
	Status      string      `json:"status"`
}

func (q *Queries) UpsertEmployee(ctx context.Context, arg UpsertEmployeeParams) error {
	_, err := q.db.Exec(ctx, upsertEmployee,
		arg.EmpID,
		arg.EmpName,
		arg.EmpType,
		arg.DesigID,
		arg.PhotoUrl,
		arg.Bio,
		arg.LinkedinUrl,
		arg.SortOrder,
		arg.Status,
	)
	return err
}
