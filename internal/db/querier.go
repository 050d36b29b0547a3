package db

import (
	"context"
)

type Querier interface {
	CreateAssociateBusiness(ctx context.Context, arg CreateAssociateBusinessParams) (int32, error)
	CreateAward(ctx context.Context, arg CreateAwardParams) error
	CreateBanner(ctx context.Context, arg CreateBannerParams) error
	CreateFeedback(ctx context.Context, arg CreateFeedbackParams) (CreateLeadRow, error)
	CreateLandownerLead(ctx context.Context, arg CreateLandownerLeadParams) (CreateLeadRow, error)
	CreateMeetingRequest(ctx context.Context, arg CreateMeetingRequestParams) (CreateLeadRow, error)
	CreateTestimonial(ctx context.Context, arg CreateTestimonialParams) error
	GetFeedback(ctx context.Context, id int32) (Feedback, error)
	GetLandownerLead(ctx context.Context, id int32) (LandownerLead, error)
	GetMeetingRequest(ctx context.Context, id int32) (MeetingRequest, error)
	GetProjectBySlug(ctx context.Context, slug string) (Project, error)
	GetPublishedAssociateBusiness(ctx context.Context, busID int32) (AssociateBusiness, error)
	ListActiveBanners(ctx context.Context) ([]Banner, error)
	ListAwards(ctx context.Context) ([]Award, error)
	ListFeaturedProjects(ctx context.Context, limit int32) ([]Project, error)
	ListProjects(ctx context.Context, arg ListProjectsParams) ([]Project, error)
	ListPublishedAssociateBusinesses(ctx context.Context) ([]AssociateBusiness, error)
	ListPublishedTestimonials(ctx context.Context) ([]Testimonial, error)
	ListTeamMembers(ctx context.Context) ([]ListTeamMembersRow, error)
	ResetContent(ctx context.Context) error
	UpsertDesignation(ctx context.Context, arg UpsertDesignationParams) error
	UpsertEmployee(ctx context.Context, arg UpsertEmployeeParams) error
	UpsertProject(ctx context.Context, arg UpsertProjectParams) (int32, error)
}

var _ Querier = (*Queries)(nil)
