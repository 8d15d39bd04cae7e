package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageSender identifies which side of the conversation wrote a message
type MessageSender string

const (
	SenderUser MessageSender = "user"
	SenderAI   MessageSender = "ai"
)

// Message represents one side of a conversational turn. Sender is immutable
// once the row is written; ordering within a chat is by creation time.
type Message struct {
	ID        uuid.UUID     `json:"id"`
	ChatID    uuid.UUID     `json:"chat_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Sender    MessageSender `json:"sender"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"created_at"`
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	Get(ctx context.Context, id uuid.UUID) (*Message, error)
	ListByChat(ctx context.Context, chatID uuid.UUID) ([]Message, error)
	CountByChat(ctx context.Context, chatID uuid.UUID) (int64, error)
	FirstByChat(ctx context.Context, chatID uuid.UUID) (*Message, error)
	LatestByChat(ctx context.Context, chatID uuid.UUID) (*Message, error)
	DeleteByChat(ctx context.Context, chatID uuid.UUID) error
}
