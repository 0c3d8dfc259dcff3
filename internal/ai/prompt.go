package ai

import (
	"strings"

	"github.com/ankit/oppgenie/internal/models"
)

// persona is the fixed system instruction prepended to every prompt.
const persona = `You are OppGenie, a friendly assistant that helps people discover opportunities: internships, fellowships, jobs, volunteering, scholarships, and open-source programs. Give concrete, encouraging suggestions. When you describe an opportunity, include its name, the organization behind it, eligibility, and where to apply. Keep answers concise and avoid making up application deadlines.`

// buildPrompt formats the primary upstream request: the persona plus only the
// latest user turn. Earlier turns are dropped to keep the payload small.
func buildPrompt(history []models.ChatMessage) string {
	var lastUser string
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == models.RoleUser {
			lastUser = history[i].Content
			break
		}
	}

	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\nUser: ")
	b.WriteString(lastUser)
	b.WriteString("\nAssistant:")
	return b.String()
}

// buildFullPrompt formats the entire conversation. Not used on the primary
// path; kept for adapters that want multi-turn context upstream.
func buildFullPrompt(history []models.ChatMessage) string {
	var b strings.Builder
	b.WriteString(persona)
	b.WriteString("\n\n")
	for _, m := range history {
		switch m.Role {
		case models.RoleUser:
			b.WriteString("User: ")
		case models.RoleAssistant:
			b.WriteString("Assistant: ")
		}
		b.WriteString(m.Content)
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")
	return b.String()
}

// cleanReply strips a leading "Assistant:" label and cuts the reply at the
// first echoed turn marker, guarding against the model continuing the
// dialogue on its own. Labels match case-insensitively since models are not
// consistent about casing.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len("assistant:") && strings.EqualFold(s[:len("assistant:")], "assistant:") {
		s = s[len("assistant:"):]
	}
	lower := strings.ToLower(s)
	for _, marker := range []string{"\nuser:", "\nhuman:"} {
		if i := strings.Index(lower, marker); i >= 0 {
			s = s[:i]
			lower = lower[:i]
		}
	}
	return strings.TrimSpace(s)
}
