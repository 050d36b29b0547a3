package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Banner struct {
	ID        int32       `json:"id"`
	ImageUrl  string      `json:"image_url"`
	Headline  pgtype.Text `json:"headline"`
	Subhead   pgtype.Text `json:"subhead"`
	CtaText   pgtype.Text `json:"cta_text"`
	CtaUrl    pgtype.Text `json:"cta_url"`
	SortOrder int32       `json:"sort_order"`
	IsActive  bool        `json:"is_active"`
}

type Project struct {
	ID           int32       `json:"id"`
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

type Award struct {
	ID          int32       `json:"id"`
	Title       string      `json:"title"`
	Issuer      pgtype.Text `json:"issuer"`
	Year        pgtype.Int4 `json:"year"`
	Description pgtype.Text `json:"description"`
	ImageUrl    pgtype.Text `json:"image_url"`
}

type Testimonial struct {
	ID           int32       `json:"id"`
	Name         string      `json:"name"`
	Role         pgtype.Text `json:"role"`
	ProjectTitle pgtype.Text `json:"project_title"`
	Quote        string      `json:"quote"`
	VideoUrl     pgtype.Text `json:"video_url"`
	SortOrder    int32       `json:"sort_order"`
	Published    string      `json:"published"`
}

type MeetingRequest struct {
	ID                int32              `json:"id"`
	Name              string             `json:"name"`
	Phone             string             `json:"phone"`
	Email             pgtype.Text        `json:"email"`
	PreferredDate     pgtype.Date        `json:"preferred_date"`
	PreferredTimeSlot pgtype.Text        `json:"preferred_time_slot"`
	Message           pgtype.Text        `json:"message"`
	SourcePage        pgtype.Text        `json:"source_page"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
}

type Feedback struct {
	ID        int32              `json:"id"`
	Name      string             `json:"name"`
	Phone     string             `json:"phone"`
	Email     pgtype.Text        `json:"email"`
	Message   pgtype.Text        `json:"message"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
}

type LandownerLead struct {
	ID           int32              `json:"id"`
	Name         string             `json:"name"`
	Phone        string             `json:"phone"`
	Email        pgtype.Text        `json:"email"`
	LandLocation pgtype.Text        `json:"land_location"`
	LandSize     pgtype.Text        `json:"land_size"`
	Message      pgtype.Text        `json:"message"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type AssociateBusiness struct {
	BusID       int32              `json:"bus_id"`
	BusName     string             `json:"bus_name"`
	LogoUrl     string             `json:"logo_url"`
	Description pgtype.Text        `json:"description"`
	Published   string             `json:"published"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type DesigInfo struct {
	DesigID   string      `json:"desig_id"`
	DesigName string      `json:"desig_name"`
	SortOrder pgtype.Int4 `json:"sort_order"`
}

type EmpInfo struct {
	EmpID       string      `json:"emp_id"`
	EmpName     string      `json:"emp_name"`
	EmpType     string      `json:"emp_type"`
	Gender      pgtype.Text `json:"gender"`
	Dob         pgtype.Date `json:"dob"`
	Mobile      pgtype.Text `json:"mobile"`
	Email       pgtype.Text `json:"email"`
	JoinDate    pgtype.Date `json:"join_date"`
	DesigID     pgtype.Text `json:"desig_id"`
	PhotoUrl    pgtype.Text `json:"photo_url"`
	Bio         pgtype.Text `json:"bio"`
	BioDetails  pgtype.Text `json:"bio_details"`
	LinkedinUrl pgtype.Text `json:"linkedin_url"`
	SortOrder   pgtype.Int4 `json:"sort_order"`
	Status      string      `json:"status"`
}
