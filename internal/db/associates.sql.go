package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listPublishedAssociateBusinesses = `-- name: ListPublishedAssociateBusinesses :many
SELECT bus_id, bus_name, logo_url, description, published, created_at, updated_at
FROM associate_business
WHERE published = 'Yes'
ORDER BY bus_name
`

func (q *Queries) ListPublishedAssociateBusinesses(ctx context.Context) ([]AssociateBusiness, error) {
	rows, err := q.db.Query(ctx, listPublishedAssociateBusinesses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AssociateBusiness
	for rows.Next() {
		var i AssociateBusiness
		if err := rows.Scan(
			&i.BusID,
			&i.BusName,
			&i.LogoUrl,
			&i.Description,
			&i.Published,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const getPublishedAssociateBusiness = `-- name: GetPublishedAssociateBusiness :one
SELECT bus_id, bus_name, logo_url, description, published, created_at, updated_at
FROM associate_business
WHERE bus_id = $1 AND published = 'Yes'
LIMIT 1
`

func (q *Queries) GetPublishedAssociateBusiness(ctx context.Context, busID int32) (AssociateBusiness, error) {
	row := q.db.QueryRow(ctx, getPublishedAssociateBusiness, busID)
	var i AssociateBusiness
	err := row.Scan(
		&i.BusID,
		&i.BusName,
		&i.LogoUrl,
		&i.Description,
		&i.Published,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const createAssociateBusiness = `-- name: CreateAssociateBusiness :one
INSERT INTO associate_business (bus_name, logo_url, description, published)
VALUES ($1, $2, $3, $4)
RETURNING bus_id
`

type CreateAssociateBusinessParams struct {
	BusName     string      `json:"bus_name"`
	LogoUrl     string      `json:"logo_url"`
	Description pgtype.Text `json:"description"`
	Published   string      `json:"published"`
}

func (q *Queries) CreateAssociateBusiness(ctx context.Context, arg CreateAssociateBusinessParams) (int32, error) {
	row := q.db.QueryRow(ctx, createAssociateBusiness, arg.BusName, arg.LogoUrl, arg.Description, arg.Published)
	var busID int32
	err := row.Scan(&busID)
	return busID, err
}
