package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"

	"github.com/ankit/oppgenie/internal/models"
)

const (
	appendAttempts = 3
	appendBackoff  = 1000 * time.Millisecond

	subscribeAttempts = 3
	subscribeBackoff  = 2000 * time.Millisecond
)

// User-facing failure modes. Handlers render these verbatim.
var (
	ErrSendFailed    = errors.New("message could not be sent, please try again")
	ErrSessionDenied = errors.New("you do not have access to this conversation")
	ErrLiveUpdates   = errors.New("live updates are unavailable, refresh to see new messages")
)

// SessionState is the live-subscription lifecycle.
type SessionState int

const (
	SessionConnecting SessionState = iota
	SessionActive
	SessionError
	SessionRetrying
	SessionClosed
)

// Transport owns message persistence and the live conversation feed. It
// sanitizes content on the way in, retries writes under a bounded budget,
// and supervises the subscription so a dropped connection recovers without
// the caller noticing.
type Transport struct {
	store     MessageStore
	sub       Subscriber
	sanitizer *bluemonday.Policy

	// Overridable in tests to avoid real sleeps.
	appendBase    time.Duration
	subscribeBase time.Duration
}

func NewTransport(store MessageStore, sub Subscriber) *Transport {
	return &Transport{
		store:         store,
		sub:           sub,
		sanitizer:     bluemonday.UGCPolicy(),
		appendBase:    appendBackoff,
		subscribeBase: subscribeBackoff,
	}
}

// Send persists one turn. Content is sanitized and the write retried up to
// three times with linearly growing delays; when the budget runs out the
// caller gets a single ErrSendFailed and the message is dropped.
func (t *Transport) Send(ctx context.Context, userID uuid.UUID, role models.Role, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(t.sanitizer.Sanitize(content))
	if content == "" {
		return nil, errors.New("message content is empty")
	}

	msg := &models.ChatMessage{Role: role, Content: content, UserID: userID}
	err := retry(ctx, appendAttempts, t.appendBase, func() error {
		return t.store.Append(ctx, msg)
	})
	if err != nil {
		log.Printf("chat: append for user %s failed: %v", userID, err)
		return nil, errors.Join(ErrSendFailed, err)
	}
	return msg, nil
}

// History returns the user's conversation in order.
func (t *Transport) History(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error) {
	return t.store.ListByUser(ctx, userID)
}

// Clear wipes the user's conversation. Racing callers are safe: each row is
// deleted exactly once and every caller observes a single success or failure
// outcome.
func (t *Transport) Clear(ctx context.Context, userID uuid.UUID) (int64, error) {
	return t.store.DeleteByUser(ctx, userID)
}

// Session is a live view over one user's conversation. Snapshots carries
// whole-history replacements; a value on Failures is terminal and is
// followed by both channels closing.
type Session struct {
	Snapshots <-chan []models.ChatMessage
	Failures  <-chan error

	state atomic.Int32
}

// State reports where the subscription lifecycle currently stands.
func (s *Session) State() SessionState { return SessionState(s.state.Load()) }

func (s *Session) setState(st SessionState) { s.state.Store(int32(st)) }

// Watch supervises a subscription for the user until ctx is cancelled. Each
// change event replaces the snapshot wholesale. Transient transport errors
// trigger reconnects with linearly growing delays under a three-attempt
// budget that resets whenever a snapshot is delivered; permission and
// availability failures end the session immediately.
func (t *Transport) Watch(ctx context.Context, userID uuid.UUID) *Session {
	snapshots := make(chan []models.ChatMessage, 1)
	failures := make(chan error, 1)

	session := &Session{Snapshots: snapshots, Failures: failures}
	go t.supervise(ctx, userID, session, snapshots, failures)

	return session
}

func (t *Transport) supervise(ctx context.Context, userID uuid.UUID, session *Session, snapshots chan []models.ChatMessage, failures chan error) {
	defer close(snapshots)
	defer close(failures)
	defer session.setState(SessionClosed)

	retries := 0

	for {
		session.setState(SessionConnecting)
		err := t.sub.Subscribe(ctx, userID, func() {
			history, lerr := t.store.ListByUser(ctx, userID)
			if lerr != nil {
				log.Printf("chat: snapshot reload for user %s failed: %v", userID, lerr)
				return
			}
			session.setState(SessionActive)
			retries = 0

			// Replace, never patch: drop any undelivered snapshot.
			select {
			case <-snapshots:
			default:
			}
			snapshots <- history
		})

		if ctx.Err() != nil {
			return
		}

		session.setState(SessionError)
		if isSessionFatal(err) {
			log.Printf("chat: subscription for user %s ended: %v", userID, err)
			failures <- ErrSessionDenied
			return
		}

		retries++
		if retries > subscribeAttempts {
			log.Printf("chat: subscription for user %s exhausted retries: %v", userID, err)
			failures <- ErrLiveUpdates
			return
		}

		session.setState(SessionRetrying)
		log.Printf("chat: subscription for user %s retrying (attempt %d): %v", userID, retries, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(Backoff(t.subscribeBase, retries)):
		}
	}
}
