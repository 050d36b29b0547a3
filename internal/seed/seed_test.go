package seed_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anisjkb/deed/internal/db"
	"github.com/anisjkb/deed/internal/seed"
)

type recordingQueries struct {
	resets       int
	designations []db.UpsertDesignationParams
	employees    []db.UpsertEmployeeParams
	projects     []db.UpsertProjectParams
	banners      []db.CreateBannerParams
	testimonials []db.CreateTestimonialParams
	associates   []db.CreateAssociateBusinessParams
	awards       []db.CreateAwardParams
	failProject  error
}

func (r *recordingQueries) ResetContent(context.Context) error { r.resets++; return nil }

func (r *recordingQueries) UpsertDesignation(_ context.Context, arg db.UpsertDesignationParams) error {
	r.designations = append(r.designations, arg)
	return nil
}

func (r *recordingQueries) UpsertEmployee(_ context.Context, arg db.UpsertEmployeeParams) error {
	r.employees = append(r.employees, arg)
	return nil
}

func (r *recordingQueries) UpsertProject(_ context.Context, arg db.UpsertProjectParams) (int32, error) {
	if r.failProject != nil {
		return 0, r.failProject
	}
	r.projects = append(r.projects, arg)
	return int32(len(r.projects)), nil
}

func (r *recordingQueries) CreateBanner(_ context.Context, arg db.CreateBannerParams) error {
	r.banners = append(r.banners, arg)
	return nil
}

func (r *recordingQueries) CreateTestimonial(_ context.Context, arg db.CreateTestimonialParams) error {
	r.testimonials = append(r.testimonials, arg)
	return nil
}

func (r *recordingQueries) CreateAssociateBusiness(_ context.Context, arg db.CreateAssociateBusinessParams) (int32, error) {
	r.associates = append(r.associates, arg)
	return int32(len(r.associates)), nil
}

func (r *recordingQueries) CreateAward(_ context.Context, arg db.CreateAwardParams) error {
	r.awards = append(r.awards, arg)
	return nil
}

func TestBundledFixtureDecodesAndApplies(t *testing.T) {
	file, err := os.Open("../../fixtures/seed.yaml")
	require.NoError(t, err)
	defer file.Close()

	f, err := seed.Decode(file)
	require.NoError(t, err)

	q := &recordingQueries{}
	counts, err := seed.Apply(context.Background(), q, f, true)
	require.NoError(t, err)
	require.Equal(t, 1, q.resets)
	require.Equal(t, len(f.Projects), counts.Projects)
	require.Equal(t, len(f.Employees), counts.Employees)

	lake := q.projects[0]
	require.Equal(t, "lake-view-residence", lake.Slug)
	require.True(t, lake.HandoverDate.Valid)
	require.Equal(t, 2026, lake.HandoverDate.Time.Year())
	require.True(t, lake.Floors.Valid)
	require.Contains(t, lake.Highlights.String, "Rooftop garden")

	require.False(t, q.projects[1].HandoverDate.Valid)
	require.Equal(t, "Yes", q.associates[0].Published)
	require.True(t, q.banners[0].IsActive)
}

func TestApplyWithoutReset(t *testing.T) {
	q := &recordingQueries{}
	_, err := seed.Apply(context.Background(), q, seed.Fixture{
		Testimonials: []seed.Testimonial{{Name: "Rafiq", Quote: "Good", Hidden: true}},
		Employees:    []seed.Employee{{ID: "E9", Name: "Shila"}},
	}, false)
	require.NoError(t, err)
	require.Zero(t, q.resets)
	require.Equal(t, "No", q.testimonials[0].Published)
	require.Equal(t, "Contractual", q.employees[0].EmpType)
	require.Equal(t, "active", q.employees[0].Status)
	require.False(t, q.employees[0].DesigID.Valid)
}

func TestApplyWrapsErrors(t *testing.T) {
	q := &recordingQueries{failProject: errors.New("unique violation")}
	_, err := seed.Apply(context.Background(), q, seed.Fixture{
		Projects: []seed.Project{{Slug: "x", Title: "X", Status: "ongoing", Type: "residential"}},
	}, false)
	require.ErrorContains(t, err, "project x")
}

func TestDecodeRejectsBadFixtures(t *testing.T) {
	cases := map[string]string{
		"unknown key":      "projectz: []\n",
		"bad status":       "projects:\n  - {slug: a, title: A, status: sold, type: residential}\n",
		"bad type":         "projects:\n  - {slug: a, title: A, status: ongoing, type: industrial}\n",
		"duplicate slug":   "projects:\n  - {slug: a, title: A, status: ongoing, type: residential}\n  - {slug: a, title: B, status: ongoing, type: residential}\n",
		"bad date":         "projects:\n  - {slug: a, title: A, status: ongoing, type: residential, handover_date: \"30/06/2026\"}\n",
		"unknown desig":    "employees:\n  - {id: E1, name: N, designation: CEO}\n",
		"bad employee":     "employees:\n  - {id: E1, name: N, type: Intern}\n",
		"testimonial text": "testimonials:\n  - {name: N}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := seed.Decode(strings.NewReader(doc))
			require.Error(t, err)
		})
	}
}
