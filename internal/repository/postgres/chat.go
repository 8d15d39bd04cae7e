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

// ChatRepository implements domain.ChatRepository
type ChatRepository struct {
	pool *pgxpool.Pool
}

// NewChatRepository creates a new chat repository
func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

func (r *ChatRepository) Create(ctx context.Context, chat *domain.Chat) error {
	query := `
		INSERT INTO chats (id, user_id, name, status, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		chat.ID,
		chat.UserID,
		chat.Name,
		chat.Status,
		chat.Archived,
		chat.CreatedAt,
		chat.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}
	return nil
}

func (r *ChatRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Chat, error) {
	query := `
		SELECT id, user_id, name, status, archived, created_at, updated_at
		FROM chats
		WHERE id = $1
	`
	var c domain.Chat
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.UserID,
		&c.Name,
		&c.Status,
		&c.Archived,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}
	return &c, nil
}

func (r *ChatRepository) ListByUser(ctx context.Context, userID uuid.UUID, archived bool, limit int) ([]domain.Chat, error) {
	// A non-positive limit means no cap (the archived list is unbounded).
	query := `
		SELECT id, user_id, name, status, archived, created_at, updated_at
		FROM chats
		WHERE user_id = $1 AND archived = $2
		ORDER BY created_at DESC
		LIMIT NULLIF($3, -1)
	`
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.pool.Query(ctx, query, userID, archived, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer rows.Close()

	var chats []domain.Chat
	for rows.Next() {
		var c domain.Chat
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Name,
			&c.Status,
			&c.Archived,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, nil
}

func (r *ChatRepository) Update(ctx context.Context, chat *domain.Chat) error {
	query := `
		UPDATE chats
		SET name = $1, status = $2, archived = $3, updated_at = $4
		WHERE id = $5
	`
	tag, err := r.pool.Exec(ctx, query,
		chat.Name,
		chat.Status,
		chat.Archived,
		chat.UpdatedAt,
		chat.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ChatRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM chats WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
