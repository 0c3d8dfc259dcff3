package chat

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ankit/oppgenie/internal/models"
)

// MessageStore persists conversation turns. Implementations assign message
// ids and timestamps server-side so clients cannot reorder history.
type MessageStore interface {
	Append(ctx context.Context, msg *models.ChatMessage) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Stats(ctx context.Context) (Analytics, error)
}

// Analytics is the admin-facing usage rollup.
type Analytics struct {
	TotalMessages int64 `json:"totalMessages"`
	UserMessages  int64 `json:"userMessages"`
	ActiveUsers   int64 `json:"activeUsers"`
}

// PGStore is the Postgres-backed MessageStore.
type PGStore struct {
	pool *pgxpool.Pool
}

var _ MessageStore = (*PGStore)(nil)

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

// Append inserts the message and fills in its server-assigned id and
// timestamp. The messages table carries a trigger that NOTIFYs listeners on
// the user's channel.
func (s *PGStore) Append(ctx context.Context, msg *models.ChatMessage) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO messages (role, content, user_id, created_at)
		 VALUES ($1, $2, $3, NOW())
		 RETURNING id, created_at`,
		string(msg.Role), msg.Content, msg.UserID,
	).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

// ListByUser returns the user's full history in chronological order.
func (s *PGStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ChatMessage, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, role, content, user_id, created_at
		 FROM messages WHERE user_id = $1
		 ORDER BY created_at ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.ChatMessage
	for rows.Next() {
		var m models.ChatMessage
		var role string
		if err := rows.Scan(&m.ID, &role, &m.Content, &m.UserID, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = models.Role(role)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// DeleteByUser removes the user's entire history and reports how many rows
// went away. Concurrent callers race benignly: rows are deleted once and the
// losers simply observe a count of zero.
func (s *PGStore) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete messages: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Stats aggregates message volume for the admin dashboard.
func (s *PGStore) Stats(ctx context.Context) (Analytics, error) {
	var a Analytics
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE role = 'user'),
		        COUNT(DISTINCT user_id)
		 FROM messages`,
	).Scan(&a.TotalMessages, &a.UserMessages, &a.ActiveUsers)
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to aggregate messages: %w", err)
	}
	return a, nil
}
