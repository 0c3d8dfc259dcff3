package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/assert/v2"

	"github.com/ankit/oppgenie/internal/models"
)

func TestGitHubFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "" {
			t.Error("expected a q parameter")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"id":42,"name":"widgets","owner":{"login":"acme","avatar_url":"https://img.example/acme.png"},
			 "description":"A widget library","html_url":"https://github.com/acme/widgets",
			 "language":"Go","topics":["cli","tools"],"stargazers_count":5000},
			{"id":43,"name":"tiny","owner":{"login":"acme","avatar_url":""},
			 "description":"","html_url":"https://github.com/acme/tiny",
			 "language":"","topics":[],"stargazers_count":12}
		]}`))
	}))
	defer srv.Close()

	src := &GitHub{BaseURL: srv.URL, Client: srv.Client()}
	opps, err := src.Fetch(context.Background(), "")
	assert.Equal(t, err, nil)
	assert.Equal(t, len(opps), 2)

	first := opps[0]
	assert.Equal(t, first.ID, "gh-42")
	assert.Equal(t, first.Title, "Contribute to widgets")
	assert.Equal(t, first.Organization, "acme")
	assert.Equal(t, first.Deadline, models.DeadlineOngoing)
	assert.Equal(t, first.Category, "Technology")
	assert.Equal(t, first.Source, "GitHub")
	assert.Equal(t, first.Trending, true)
	assert.Equal(t, first.Tags, []string{"Go", "cli", "tools"})

	second := opps[1]
	assert.Equal(t, second.ID, "gh-43")
	assert.Equal(t, second.Trending, false)
	assert.Equal(t, second.Description, "No description available")
}

func TestGitHubFetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	src := &GitHub{BaseURL: srv.URL, Client: srv.Client()}
	opps, err := src.Fetch(context.Background(), "rust")
	assert.NotEqual(t, err, nil)
	assert.Equal(t, len(opps), 0)
}
