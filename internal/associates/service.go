// Package associates serves the associate business directory.
package associates

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/anisjkb/deed/internal/common"
	"github.com/anisjkb/deed/internal/db"
)

type queryProvider interface {
	ListPublishedAssociateBusinesses(ctx context.Context) ([]db.AssociateBusiness, error)
	GetPublishedAssociateBusiness(ctx context.Context, busID int32) (db.AssociateBusiness, error)
}

// Business is the template view of an associate business.
type Business struct {
	ID          int32
	Name        string
	LogoURL     string
	Description string
}

// FromRow converts a database row into a Business.
func FromRow(row db.AssociateBusiness) Business {
	b := Business{ID: row.BusID, Name: row.BusName, LogoURL: row.LogoUrl}
	if row.Description.Valid {
		b.Description = row.Description.String
	}
	return b
}

// Service reads published associate businesses.
type Service struct {
	queries queryProvider
}

// NewService constructs a Service.
func NewService(queries queryProvider) (*Service, error) {
	if queries == nil {
		return nil, errors.New("associates: queries provider is required")
	}
	return &Service{queries: queries}, nil
}

// List returns published businesses ordered by name.
func (s *Service) List(ctx context.Context) ([]Business, error) {
	rows, err := s.queries.ListPublishedAssociateBusinesses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list associate businesses: %w", err)
	}
	out := make([]Business, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromRow(row))
	}
	return out, nil
}

// Get returns a published business by its path id. Non-numeric ids are not found.
func (s *Service) Get(ctx context.Context, rawID string) (Business, error) {
	id, err := strconv.ParseInt(rawID, 10, 32)
	if err != nil || id <= 0 {
		return Business{}, common.NotFound("Business not found", err)
	}
	row, err := s.queries.GetPublishedAssociateBusiness(ctx, int32(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Business{}, common.NotFound("Business not found", err)
		}
		return Business{}, fmt.Errorf("get associate business %d: %w", id, err)
	}
	return FromRow(row), nil
}
