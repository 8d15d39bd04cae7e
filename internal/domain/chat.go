package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChatStatus controls whether a chat is reachable through the public share link
type ChatStatus string

const (
	StatusPrivate ChatStatus = "PRIVATE"
	StatusPublic  ChatStatus = "PUBLIC"
)

// ParseChatStatus validates a raw status value. Only the two enum values are
// accepted; anything else is an invalid request.
func ParseChatStatus(s string) (ChatStatus, error) {
	switch ChatStatus(s) {
	case StatusPrivate, StatusPublic:
		return ChatStatus(s), nil
	default:
		return "", ErrInvalidRequest
	}
}

// Chat represents a conversation thread owned by a single user
type Chat struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Name      string     `json:"name"`
	Status    ChatStatus `json:"status"`
	Archived  bool       `json:"archived"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ChatPreview is a chat plus a single preview message, used by dashboard lists
type ChatPreview struct {
	Chat
	Preview *Message `json:"preview,omitempty"`
}

// Transcript is a chat together with its full ordered message history
type Transcript struct {
	Chat     *Chat     `json:"chat"`
	Messages []Message `json:"messages"`
}

// ChatRepository defines the interface for chat storage
type ChatRepository interface {
	Create(ctx context.Context, chat *Chat) error
	Get(ctx context.Context, id uuid.UUID) (*Chat, error)
	ListByUser(ctx context.Context, userID uuid.UUID, archived bool, limit int) ([]Chat, error)
	Update(ctx context.Context, chat *Chat) error
	Delete(ctx context.Context, id uuid.UUID) error
}
