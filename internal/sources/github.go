package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/ankit/oppgenie/internal/models"
)

const (
	githubSearchURL = "https://api.github.com/search/repositories"

	// Repositories above this star count are flagged as trending.
	githubTrendingStars = 1000
)

// GitHub surfaces open-source contribution opportunities through the
// repository search API.
type GitHub struct {
	BaseURL string
	Client  *http.Client
}

func NewGitHub() *GitHub {
	return &GitHub{
		BaseURL: githubSearchURL,
		Client:  NewHTTPClient(30 * time.Second),
	}
}

func (g *GitHub) Name() string { return "GitHub" }

type githubOwner struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
}

type githubRepo struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Owner       githubOwner `json:"owner"`
	Description string      `json:"description"`
	HTMLURL     string      `json:"html_url"`
	Language    string      `json:"language"`
	Topics      []string    `json:"topics"`
	Stargazers  int         `json:"stargazers_count"`
}

type githubSearchResponse struct {
	Items []githubRepo `json:"items"`
}

func (g *GitHub) Fetch(ctx context.Context, searchQuery string) ([]models.Opportunity, error) {
	q := "good-first-issues:>0 help-wanted-issues:>0 stars:>100"
	if searchQuery != "" {
		q = searchQuery + " in:name,description,readme good-first-issues:>0"
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("sort", "updated")
	params.Set("order", "desc")
	params.Set("per_page", "20")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("github returned status: %d", resp.StatusCode)
	}

	var parsed githubSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	opps := make([]models.Opportunity, 0, len(parsed.Items))
	for _, repo := range parsed.Items {
		tags := make([]string, 0, len(repo.Topics)+1)
		if repo.Language != "" {
			tags = append(tags, repo.Language)
		}
		tags = append(tags, repo.Topics...)

		opp := models.Opportunity{
			ID:           "gh-" + strconv.FormatInt(repo.ID, 10),
			Title:        "Contribute to " + repo.Name,
			Organization: repo.Owner.Login,
			Type:         "Open Source",
			Deadline:     models.DeadlineOngoing,
			Eligibility:  "Open to all contributors",
			Link:         repo.HTMLURL,
			Description:  repo.Description,
			Category:     "Technology",
			Source:       g.Name(),
			Location:     "Remote",
			Tags:         tags,
			Logo:         repo.Owner.AvatarURL,
			Trending:     repo.Stargazers > githubTrendingStars,
		}
		Normalize(&opp)
		opps = append(opps, opp)
	}

	return opps, nil
}
