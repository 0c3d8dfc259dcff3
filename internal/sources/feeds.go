package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ankit/oppgenie/internal/models"
)

// feedClient fetches {items: [...]} payloads from the opportunity feed
// service. An empty base URL marks the feed as not yet provisioned, in which
// case adapters contribute nothing instead of erroring.
type feedClient struct {
	baseURL string
	client  *http.Client
}

func newFeedClient(baseURL string) feedClient {
	return feedClient{
		baseURL: baseURL,
		client:  NewHTTPClient(30 * time.Second),
	}
}

func (f feedClient) get(ctx context.Context, path, location string, out any) error {
	params := url.Values{}
	if location != "" {
		params.Set("location", location)
	}

	endpoint := f.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode feed response: %w", err)
	}
	return nil
}

// JobsFeed maps job board postings into opportunities with an "in-" prefix.
type JobsFeed struct {
	feed     feedClient
	location string
	logos    *LogoResolver
}

func NewJobsFeed(baseURL, location string, logos *LogoResolver) *JobsFeed {
	return &JobsFeed{feed: newFeedClient(baseURL), location: location, logos: logos}
}

func (s *JobsFeed) Name() string { return "Indeed" }

type jobItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Deadline    string   `json:"deadline"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Skills      []string `json:"skills"`
	CompanyLogo string   `json:"company_logo"`
}

func (s *JobsFeed) Fetch(ctx context.Context, query string) ([]models.Opportunity, error) {
	if s.feed.baseURL == "" {
		return nil, nil
	}

	var payload struct {
		Items []jobItem `json:"items"`
	}
	if err := s.feed.get(ctx, "/api/indeed-jobs", s.location, &payload); err != nil {
		return nil, err
	}

	opps := make([]models.Opportunity, 0, len(payload.Items))
	for _, item := range payload.Items {
		opp := models.Opportunity{
			ID:           "in-" + item.ID,
			Title:        item.Title,
			Organization: item.Company,
			Type:         "Job",
			Deadline:     item.Deadline,
			Link:         item.URL,
			Description:  item.Description,
			Category:     "Technology",
			Source:       s.Name(),
			Location:     item.Location,
			Tags:         item.Skills,
			Logo:         resolveLogo(s.logos, item.CompanyLogo, item.URL, item.Company),
		}
		Normalize(&opp)
		opps = append(opps, opp)
	}
	return opps, nil
}

// InternshipsFeed maps internship postings with an "int-" prefix.
type InternshipsFeed struct {
	feed     feedClient
	location string
	logos    *LogoResolver
}

func NewInternshipsFeed(baseURL, location string, logos *LogoResolver) *InternshipsFeed {
	return &InternshipsFeed{feed: newFeedClient(baseURL), location: location, logos: logos}
}

func (s *InternshipsFeed) Name() string { return "Internships" }

func (s *InternshipsFeed) Fetch(ctx context.Context, query string) ([]models.Opportunity, error) {
	if s.feed.baseURL == "" {
		return nil, nil
	}

	var payload struct {
		Items []jobItem `json:"items"`
	}
	if err := s.feed.get(ctx, "/api/internships", s.location, &payload); err != nil {
		return nil, err
	}

	opps := make([]models.Opportunity, 0, len(payload.Items))
	for _, item := range payload.Items {
		opp := models.Opportunity{
			ID:           "int-" + item.ID,
			Title:        item.Title,
			Organization: item.Company,
			Type:         "Internship",
			Deadline:     item.Deadline,
			Link:         item.URL,
			Description:  item.Description,
			Category:     "Technology",
			Source:       s.Name(),
			Location:     item.Location,
			Tags:         item.Skills,
			Logo:         resolveLogo(s.logos, item.CompanyLogo, item.URL, item.Company),
		}
		Normalize(&opp)
		opps = append(opps, opp)
	}
	return opps, nil
}

// VolunteerFeed maps volunteer postings with a "vol-" prefix.
type VolunteerFeed struct {
	feed     feedClient
	location string
	logos    *LogoResolver
}

func NewVolunteerFeed(baseURL, location string, logos *LogoResolver) *VolunteerFeed {
	return &VolunteerFeed{feed: newFeedClient(baseURL), location: location, logos: logos}
}

func (s *VolunteerFeed) Name() string { return "Volunteer" }

type volunteerItem struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Organization     string   `json:"organization"`
	Location         string   `json:"location"`
	Deadline         string   `json:"deadline"`
	Description      string   `json:"description"`
	URL              string   `json:"url"`
	Categories       []string `json:"categories"`
	OrganizationLogo string   `json:"organization_logo"`
}

func (s *VolunteerFeed) Fetch(ctx context.Context, query string) ([]models.Opportunity, error) {
	if s.feed.baseURL == "" {
		return nil, nil
	}

	var payload struct {
		Items []volunteerItem `json:"items"`
	}
	if err := s.feed.get(ctx, "/api/volunteer", s.location, &payload); err != nil {
		return nil, err
	}

	opps := make([]models.Opportunity, 0, len(payload.Items))
	for _, item := range payload.Items {
		opp := models.Opportunity{
			ID:           "vol-" + item.ID,
			Title:        item.Title,
			Organization: item.Organization,
			Type:         "Volunteer",
			Deadline:     item.Deadline,
			Link:         item.URL,
			Description:  item.Description,
			Category:     "Social",
			Source:       s.Name(),
			Location:     item.Location,
			Tags:         item.Categories,
			Logo:         resolveLogo(s.logos, item.OrganizationLogo, item.URL, item.Organization),
		}
		Normalize(&opp)
		opps = append(opps, opp)
	}
	return opps, nil
}

func resolveLogo(r *LogoResolver, provided, pageURL, organization string) string {
	if provided != "" {
		return provided
	}
	if r == nil {
		return FallbackLogo(organization)
	}
	return r.Resolve(pageURL, organization)
}
