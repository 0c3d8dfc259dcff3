package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/ankit/oppgenie/internal/models"
)

const (
	defaultGenerateURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.0-flash:generateContent"
	generateTimeout    = 30 * time.Second
)

// Canned replies for upstream failures. Generate maps every failure to one
// of these so chat degrades instead of breaking.
const (
	replyRateLimited = "I'm receiving too many requests right now. Please wait a moment and try again."
	replyUnavailable = "The assistant is temporarily unavailable. Please try again in a few minutes."
	replyTimeout     = "That took too long to answer. Please try asking again."
	replyNetwork     = "I couldn't reach the assistant service. Please check your connection and retry."
	replyGeneric     = "Sorry, I couldn't generate a response right now. You can still browse the opportunity listings directly, or try rephrasing your question."
)

// Generator produces assistant replies from conversation history.
type Generator interface {
	Generate(ctx context.Context, history []models.ChatMessage) string
}

// Gemini calls the Generative Language API. The zero timeout and base URL
// are filled by NewGemini; tests point BaseURL at a local server.
type Gemini struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewGemini(apiKey string) *Gemini {
	return &Gemini{
		BaseURL: defaultGenerateURL,
		APIKey:  apiKey,
		Client:  &http.Client{Timeout: generateTimeout},
	}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Generate never returns an error: upstream failures are logged and mapped
// to a canned reply so the conversation always gets an answer.
func (g *Gemini) Generate(ctx context.Context, history []models.ChatMessage) string {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: buildPrompt(history)}}}},
	})
	if err != nil {
		log.Printf("ai: failed to encode request: %v", err)
		return replyGeneric
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("ai: failed to create request: %v", err)
		return replyGeneric
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	resp, err := g.Client.Do(req)
	if err != nil {
		log.Printf("ai: generate request failed: %v", err)
		if isTimeout(err) {
			return replyTimeout
		}
		return replyNetwork
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return replyRateLimited
	case resp.StatusCode == http.StatusServiceUnavailable:
		return replyUnavailable
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		log.Printf("ai: generate returned status %d", resp.StatusCode)
		return replyGeneric
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("ai: failed to decode response: %v", err)
		return replyGeneric
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		log.Printf("ai: generate returned no candidates")
		return replyGeneric
	}

	reply := cleanReply(parsed.Candidates[0].Content.Parts[0].Text)
	if reply == "" {
		return replyGeneric
	}
	return reply
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
