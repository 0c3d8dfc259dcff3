package sources

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gocolly/colly/v2"
)

var fallbackPalette = []string{
	"#4F46E5", "#0891B2", "#059669", "#D97706", "#DC2626", "#7C3AED",
}

// LogoResolver discovers a favicon or icon link for an organization's page.
// Results are cached per host; unresolvable hosts get a deterministic
// letter-badge data URI so the same organization always renders the same logo.
type LogoResolver struct {
	mu    sync.Mutex
	cache map[string]string
}

func NewLogoResolver() *LogoResolver {
	return &LogoResolver{cache: make(map[string]string)}
}

// Resolve returns an icon URL for pageURL, falling back to a generated badge
// for organization when the page yields nothing usable.
func (r *LogoResolver) Resolve(pageURL, organization string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return FallbackLogo(organization)
	}

	r.mu.Lock()
	if cached, ok := r.cache[parsed.Host]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	logo := r.scrape(parsed)
	if logo == "" {
		logo = FallbackLogo(organization)
	}

	r.mu.Lock()
	r.cache[parsed.Host] = logo
	r.mu.Unlock()
	return logo
}

func (r *LogoResolver) scrape(page *url.URL) string {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (compatible; oppgenie/1.0)"),
		colly.MaxDepth(1),
	)
	c.SetRequestTimeout(10 * time.Second)

	var found string
	c.OnHTML(`link[rel~="icon"]`, func(e *colly.HTMLElement) {
		if found != "" {
			return
		}
		href := e.Attr("href")
		if href == "" {
			return
		}
		found = e.Request.AbsoluteURL(href)
	})

	if err := c.Visit(page.Scheme + "://" + page.Host + "/"); err != nil {
		return ""
	}
	c.Wait()

	if found == "" {
		return page.Scheme + "://" + page.Host + "/favicon.ico"
	}
	return found
}

// FallbackLogo renders the organization's initial as an inline SVG badge.
// The color is picked deterministically from the name so repeated renders of
// the same organization match.
func FallbackLogo(organization string) string {
	letter := "?"
	for _, r := range organization {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			letter = strings.ToUpper(string(r))
			break
		}
	}

	var sum int
	for _, r := range organization {
		sum += int(r)
	}
	color := fallbackPalette[sum%len(fallbackPalette)]

	svg := fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="64" height="64"><rect width="64" height="64" rx="12" fill="%s"/><text x="32" y="42" font-family="sans-serif" font-size="32" fill="#fff" text-anchor="middle">%s</text></svg>`,
		color, letter,
	)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}
