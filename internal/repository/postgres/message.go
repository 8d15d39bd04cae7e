package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/DevAthul-88/Sonnet-AI/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (id, chat_id, user_id, sender, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		message.ID,
		message.ChatID,
		message.UserID,
		message.Sender,
		message.Content,
		message.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

func (r *MessageRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT id, chat_id, user_id, sender, content, created_at
		FROM messages
		WHERE id = $1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// ListByChat returns the full transcript in chronological order
func (r *MessageRepository) ListByChat(ctx context.Context, chatID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, chat_id, user_id, sender, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(
			&m.ID,
			&m.ChatID,
			&m.UserID,
			&m.Sender,
			&m.Content,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, nil
}

func (r *MessageRepository) CountByChat(ctx context.Context, chatID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM messages WHERE chat_id = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, chatID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// FirstByChat returns the oldest message of a chat, used as the archived-list preview
func (r *MessageRepository) FirstByChat(ctx context.Context, chatID uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT id, chat_id, user_id, sender, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, chatID))
}

// LatestByChat returns the newest message of a chat, used as the recent-list preview
func (r *MessageRepository) LatestByChat(ctx context.Context, chatID uuid.UUID) (*domain.Message, error) {
	query := `
		SELECT id, chat_id, user_id, sender, content, created_at
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`
	return r.scanOne(r.pool.QueryRow(ctx, query, chatID))
}

func (r *MessageRepository) DeleteByChat(ctx context.Context, chatID uuid.UUID) error {
	query := `DELETE FROM messages WHERE chat_id = $1`
	if _, err := r.pool.Exec(ctx, query, chatID); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

func (r *MessageRepository) scanOne(row pgx.Row) (*domain.Message, error) {
	var m domain.Message
	err := row.Scan(
		&m.ID,
		&m.ChatID,
		&m.UserID,
		&m.Sender,
		&m.Content,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan message: %w", err)
	}
	return &m, nil
}
