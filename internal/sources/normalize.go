package sources

import "github.com/ankit/oppgenie/internal/models"

// Normalize coerces a provider-shaped record into the shared Opportunity
// contract at the boundary: whitespace and markup are stripped, the deadline
// is forced to a valid date or sentinel, and tags are deduplicated. Sentinel
// deadlines pass through verbatim.
func Normalize(o *models.Opportunity) {
	o.Title = cleanText(sanitizeUTF8(o.Title))
	o.Organization = cleanText(sanitizeUTF8(o.Organization))
	o.Eligibility = cleanText(sanitizeUTF8(o.Eligibility))
	o.Location = cleanText(o.Location)
	o.Description = htmlToText(sanitizeUTF8(o.Description))
	if o.Description == "" {
		o.Description = "No description available"
	}
	if !models.ValidDeadline(o.Deadline) {
		o.Deadline = models.DeadlineOngoing
	}
	o.Tags = mergeUniqueFold(nil, o.Tags)
}
