package models

import "time"

// Deadline sentinels used by listings that accept applications continuously.
// They must survive serialization verbatim and are never parsed as dates.
const (
	DeadlineOngoing = "Ongoing"
	DeadlineRolling = "Rolling Applications"
)

// Categories is the fixed taxonomy used for category browsing.
var Categories = []string{
	"Technology",
	"Education",
	"Healthcare",
	"Social",
	"Environment",
	"Global",
}

// Opportunity is a normalized listing merged from multiple providers.
// Instances are built fresh on every aggregation pass and never mutated.
type Opportunity struct {
	ID           string   `json:"id" yaml:"id"`
	Title        string   `json:"title" yaml:"title"`
	Organization string   `json:"organization" yaml:"organization"`
	Type         string   `json:"type" yaml:"type"`
	Deadline     string   `json:"deadline" yaml:"deadline"`
	Eligibility  string   `json:"eligibility" yaml:"eligibility"`
	Link         string   `json:"link" yaml:"link"`
	Description  string   `json:"description" yaml:"description"`
	Category     string   `json:"category" yaml:"category"`
	Source       string   `json:"source" yaml:"source"`
	Location     string   `json:"location,omitempty" yaml:"location,omitempty"`
	Tags         []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Logo         string   `json:"logo,omitempty" yaml:"logo,omitempty"`
	Trending     bool     `json:"trending,omitempty" yaml:"trending,omitempty"`
}

// ValidCategory reports whether c belongs to the fixed taxonomy.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ValidDeadline reports whether d is one of the sentinels or a parseable ISO date.
func ValidDeadline(d string) bool {
	if d == DeadlineOngoing || d == DeadlineRolling {
		return true
	}
	_, err := time.Parse("2006-01-02", d)
	return err == nil
}
