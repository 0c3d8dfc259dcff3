package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Subscriber delivers change signals for one user's conversation. Subscribe
// blocks until the context is cancelled or the transport fails, invoking
// notify once per change event. It does not carry payloads; consumers reload
// the history from the store on each signal.
type Subscriber interface {
	Subscribe(ctx context.Context, userID uuid.UUID, notify func()) error
}

// PGSubscriber implements Subscriber over Postgres LISTEN/NOTIFY. The
// messages table has triggers firing pg_notify on the per-user channel for
// every insert and delete.
type PGSubscriber struct {
	pool *pgxpool.Pool
}

func NewPGSubscriber(pool *pgxpool.Pool) *PGSubscriber {
	return &PGSubscriber{pool: pool}
}

func channelName(userID uuid.UUID) string {
	return "messages_" + userID.String()
}

func (s *PGSubscriber) Subscribe(ctx context.Context, userID uuid.UUID, notify func()) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire listen connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, fmt.Sprintf(`LISTEN %q`, channelName(userID))); err != nil {
		return fmt.Errorf("failed to listen on channel: %w", err)
	}

	// Fire once so subscribers render the current history before the first
	// change arrives.
	notify()

	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("notification wait failed: %w", err)
		}
		notify()
	}
}
