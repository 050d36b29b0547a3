package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const projectColumns = `id, slug, title, status, ptype, tagline, location, short_desc, size_range,
       floors, handover_date, hero_image_url, progress_pct, highlights`

func scanProject(row interface{ Scan(...any) error }, i *Project) error {
	return row.Scan(
		&i.ID,
		&i.Slug,
		&i.Title,
		&i.Status,
		&i.Ptype,
		&i.Tagline,
		&i.Location,
		&i.ShortDesc,
		&i.SizeRange,
		&i.Floors,
		&i.HandoverDate,
		&i.HeroImageUrl,
		&i.ProgressPct,
		&i.Highlights,
	)
}

const listProjects = `-- name: ListProjects :many
SELECT ` + projectColumns + `
FROM projects
WHERE ($1::text IS NULL OR status = $1::text)
  AND ($2::text IS NULL OR ptype = $2::text)
  AND ($3::text IS NULL OR location ILIKE '%' || $3::text || '%')
ORDER BY title
`

type ListProjectsParams struct {
	Status   pgtype.Text `json:"status"`
	Ptype    pgtype.Text `json:"ptype"`
	Location pgtype.Text `json:"location"`
}

func (q *Queries) ListProjects(ctx context.Context, arg ListProjectsParams) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjects, arg.Status, arg.Ptype, arg.Location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Project
	for rows.Next() {
		var i Project
		if err := scanProject(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listFeaturedProjects = `-- name: ListFeaturedProjects :many
SELECT ` + projectColumns + `
FROM projects
ORDER BY id
LIMIT $1
`

func (q *Queries) ListFeaturedProjects(ctx context.Context, limit int32) ([]Project, error) {
	rows, err := q.db.Query(ctx, listFeaturedProjects, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Project
	for rows.Next() {
		var i Project
		if err := scanProject(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getProjectBySlug = `-- name: GetProjectBySlug :one
SELECT ` + projectColumns + `
FROM projects
WHERE slug = $1
LIMIT 1
`

func (q *Queries) GetProjectBySlug(ctx context.Context, slug string) (Project, error) {
	row := q.db.QueryRow(ctx, getProjectBySlug, slug)
	var i Project
	err := scanProject(row, &i)
	return i, err
}

const upsertProject = `-- name: UpsertProject :one
INSERT INTO projects (slug, title, status, ptype, tagline, location, short_desc, size_range,
                      floors, handover_date, hero_image_url, progress_pct, highlights)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (slug) DO UPDATE SET
    title = EXCLUDED.title,
    status = EXCLUDED.status,
    ptype = EXCLUDED.ptype,
    tagline = EXCLUDED.tagline,
    location = EXCLUDED.location,
    short_desc = EXCLUDED.short_desc,
    size_range = EXCLUDED.size_range,
    floors = EXCLUDED.floors,
    handover_date = EXCLUDED.handover_date,
    hero_image_url = EXCLUDED.hero_image_url,
    progress_pct = EXCLUDED.progress_pct,
    highlights = EXCLUDED.highlights
RETURNING id
`

type UpsertProjectParams struct {
	Slug         string      `json:"slug"`
	Title        string      `json:"title"`
	Status       string      `json:"status"`
	Ptype        string      `json:"ptype"`
	Tagline      pgtype.Text `json:"tagline"`
	Location     pgtype.Text `json:"location"`
	ShortDesc    pgtype.Text `json:"short_desc"`
	SizeRange    pgtype.Text `json:"size_range"`
	Floors       pgtype.Int4 `json:"floors"`
	HandoverDate pgtype.Date `json:"handover_date"`
	HeroImageUrl pgtype.Text `json:"hero_image_url"`
	ProgressPct  int32       `json:"progress_pct"`
	Highlights   pgtype.Text `json:"highlights"`
}

func (q *Queries) UpsertProject(ctx context.Context, arg UpsertProjectParams) (int32, error) {
	row := q.db.QueryRow(ctx, upsertProject,
		arg.Slug,
		arg.Title,
		arg.Status,
		arg.Ptype,
		arg.Tagline,
		arg.Location,
		arg.ShortDesc,
		arg.SizeRange,
		arg.Floors,
		arg.HandoverDate,
		arg.HeroImageUrl,
		arg.ProgressPct,
		arg.Highlights,
	)
	var id int32
	err := row.Scan(&id)
	return id, err
}
