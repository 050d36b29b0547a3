package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listActiveBanners = `-- name: ListActiveBanners :many
SELECT id, image_url, headline, subhead, cta_text, cta_url, sort_order, is_active
FROM banners
WHERE is_active = TRUE
ORDER BY sort_order, id
`

func (q *Queries) ListActiveBanners(ctx context.Context) ([]Banner, error) {
	rows, err := q.db.Query(ctx, listActiveBanners)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Banner
	for rows.Next() {
		var i Banner
		if err := rows.Scan(
			&i.ID,
			&i.ImageUrl,
			&i.Headline,
			&i.Subhead,
			&i.CtaText,
			&i.CtaUrl,
			&i.SortOrder,
			&i.IsActive,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAwards = `-- name: ListAwards :many
SELECT id, title, issuer, year, description, image_url
FROM awards
ORDER BY year DESC NULLS LAST, id
`

func (q *Queries) ListAwards(ctx context.Context) ([]Award, error) {
	rows, err := q.db.Query(ctx, listAwards)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Award
	for rows.Next() {
		var i Award
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Issuer,
			&i.Year,
			&i.Description,
			&i.ImageUrl,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listPublishedTestimonials = `-- name: ListPublishedTestimonials :many
SELECT id, name, role, project_title, quote, video_url, sort_order, published
FROM testimonials
WHERE published = 'Yes'
ORDER BY sort_order, id
`

func (q *Queries) ListPublishedTestimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := q.db.Query(ctx, listPublishedTestimonials)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Testimonial
	for rows.Next() {
		var i Testimonial
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Role,
			&i.ProjectTitle,
			&i.Quote,
			&i.VideoUrl,
			&i.SortOrder,
			&i.Published,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listTeamMembers = `-- name: ListTeamMembers :many
SELECT e.emp_id, e.emp_name, e.emp_type, e.photo_url, e.bio, e.bio_details, e.linkedin_url,
       d.desig_name
FROM emp_info e
LEFT JOIN desig_info d ON d.desig_id = e.desig_id
WHERE e.status = 'active'
ORDER BY d.sort_order NULLS LAST, e.sort_order NULLS LAST, e.emp_name
`

type ListTeamMembersRow struct {
	EmpID       string      `json:"emp_id"`
	EmpName     string      `json:"emp_name"`
	EmpType     string      `json:"emp_type"`
	PhotoUrl    pgtype.Text `json:"photo_url"`
	Bio         pgtype.Text `json:"bio"`
	BioDetails  pgtype.Text `json:"bio_details"`
	LinkedinUrl pgtype.Text `json:"linkedin_url"`
	DesigName   pgtype.Text `json:"desig_name"`
}

func (q *Queries) ListTeamMembers(ctx context.Context) ([]ListTeamMembersRow, error) {
	rows, err := q.db.Query(ctx, listTeamMembers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListTeamMembersRow
	for rows.Next() {
		var i ListTeamMembersRow
		if err := rows.Scan(
			&i.EmpID,
			&i.EmpName,
			&i.EmpType,
			&i.PhotoUrl,
			&i.Bio,
			&i.BioDetails,
			&i.LinkedinUrl,
			&i.DesigName,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
