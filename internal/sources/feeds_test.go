package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestFeedsUnconfigured(t *testing.T) {
	for _, src := range []Source{
		NewJobsFeed("", "", nil),
		NewInternshipsFeed("", "", nil),
		NewVolunteerFeed("", "", nil),
	} {
		opps, err := src.Fetch(context.Background(), "")
		assert.Equal(t, err, nil)
		assert.Equal(t, len(opps), 0)
	}
}

func TestJobsFeedFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/api/indeed-jobs")
		assert.Equal(t, r.URL.Query().Get("location"), "Berlin")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":"100","title":"Backend Engineer","company":"Acme",
			 "location":"Berlin","deadline":"2026-10-01","description":"Build services",
			 "url":"https://jobs.example/100","skills":["Go","Postgres"],
			 "company_logo":"https://img.example/acme.png"}
		]}`))
	}))
	defer srv.Close()

	src := NewJobsFeed(srv.URL, "Berlin", nil)
	src.feed.client = srv.Client()

	opps, err := src.Fetch(context.Background(), "")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(opps), 1)
	assert.Equal(t, opps[0].ID, "in-100")
	assert.Equal(t, opps[0].Type, "Job")
	assert.Equal(t, opps[0].Organization, "Acme")
	assert.Equal(t, opps[0].Deadline, "2026-10-01")
	assert.Equal(t, opps[0].Source, "Indeed")
	assert.Equal(t, opps[0].Logo, "https://img.example/acme.png")
}

func TestInternshipsFeedFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/api/internships")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":"7","title":"SWE Intern","company":"Globex",
			 "location":"Remote","deadline":"bogus","description":"",
			 "url":"https://jobs.example/7","skills":[],"company_logo":""}
		]}`))
	}))
	defer srv.Close()

	src := NewInternshipsFeed(srv.URL, "", nil)
	src.feed.client = srv.Client()

	opps, err := src.Fetch(context.Background(), "")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(opps), 1)
	assert.Equal(t, opps[0].ID, "int-7")
	assert.Equal(t, opps[0].Type, "Internship")
	// Bad deadlines are coerced at the boundary.
	assert.Equal(t, opps[0].Deadline, "Ongoing")
	assert.Equal(t, opps[0].Description, "No description available")
	if opps[0].Logo == "" {
		t.Fatal("expected a fallback logo")
	}
}

func TestVolunteerFeedFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, r.URL.Path, "/api/volunteer")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":"3","title":"Beach Cleanup Coordinator","organization":"Ocean Trust",
			 "location":"Lisbon","deadline":"Rolling Applications","description":"Organize cleanups",
			 "url":"https://vol.example/3","categories":["Environment","Community"],
			 "organization_logo":"https://img.example/ocean.png"}
		]}`))
	}))
	defer srv.Close()

	src := NewVolunteerFeed(srv.URL, "", nil)
	src.feed.client = srv.Client()

	opps, err := src.Fetch(context.Background(), "")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(opps), 1)
	assert.Equal(t, opps[0].ID, "vol-3")
	assert.Equal(t, opps[0].Type, "Volunteer")
	assert.Equal(t, opps[0].Category, "Social")
	assert.Equal(t, opps[0].Deadline, "Rolling Applications")
	assert.Equal(t, opps[0].Tags, []string{"Environment", "Community"})
}

func TestFeedUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	src := NewJobsFeed(srv.URL, "", nil)
	src.feed.client = srv.Client()

	_, err := src.Fetch(context.Background(), "")
	assert.NotEqual(t, err, nil)
}
