package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DevAthul-88/Sonnet-AI/internal/ai"
	"github.com/DevAthul-88/Sonnet-AI/internal/config"
	"github.com/DevAthul-88/Sonnet-AI/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const fallbackChatName = "Chat"

// unavailableMarker is the sentinel some gateway responses embed instead of
// failing outright; treated the same as an empty completion.
const unavailableMarker = "AI response unavailable"

// ChatService orchestrates chat turns and chat lifecycle transitions
type ChatService struct {
	chatRepo    domain.ChatRepository
	messageRepo domain.MessageRepository
	gateway     ai.Gateway
	cfg         config.ChatConfig
}

// NewChatService creates a new chat service
func NewChatService(
	chatRepo domain.ChatRepository,
	messageRepo domain.MessageRepository,
	gateway ai.Gateway,
	cfg config.ChatConfig,
) *ChatService {
	if cfg.MessageCeiling <= 0 {
		cfg.MessageCeiling = 15
	}
	if cfg.NameMaxChars <= 0 {
		cfg.NameMaxChars = 50
	}
	if cfg.RecentChats <= 0 {
		cfg.RecentChats = 5
	}
	return &ChatService{
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		gateway:     gateway,
		cfg:         cfg,
	}
}

// StartChatResult is returned from a session bootstrap so the client can
// navigate straight into the new conversation.
type StartChatResult struct {
	ChatID   uuid.UUID `json:"chat_id"`
	ChatName string    `json:"chat_name"`
	Answer   string    `json:"response"`
}

// StartChat creates a brand-new chat from a user's first message. The answer
// and the chat name come from two independent gateway calls, so a failed name
// derivation is attributable separately from a failed answer.
func (s *ChatService) StartChat(ctx context.Context, userID uuid.UUID, prompt string) (*StartChatResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || userID == uuid.Nil {
		return nil, fmt.Errorf("%w: prompt and user id are required", domain.ErrInvalidRequest)
	}

	answer, err := s.gateway.Generate(ctx, ai.AnswerPrompt(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmptyCompletion, err)
	}
	if !usableCompletion(answer) {
		return nil, domain.ErrEmptyCompletion
	}

	title, err := s.gateway.Generate(ctx, ai.TitlePrompt(prompt))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTitleGeneration, err)
	}
	// A blank title output aborts the bootstrap; the "Chat" fallback only
	// covers titles that clean down to nothing.
	if strings.TrimSpace(title) == "" {
		return nil, domain.ErrTitleGeneration
	}
	name := ai.TruncateName(ai.CleanTitle(title), s.cfg.NameMaxChars)
	if name == "" {
		name = fallbackChatName
	}

	now := time.Now()
	chat := &domain.Chat{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Status:    domain.StatusPrivate,
		Archived:  false,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	if err := s.persistTurn(ctx, chat.ID, userID, prompt, answer); err != nil {
		return nil, err
	}

	log.Info().
		Str("chat_id", chat.ID.String()).
		Str("name", name).
		Msg("chat bootstrapped")

	return &StartChatResult{
		ChatID:   chat.ID,
		ChatName: name,
		Answer:   answer,
	}, nil
}

// PostTurn executes one conversational turn against an existing chat.
// Preconditions are checked in order: input present, chat exists, chat not
// archived, message count below the ceiling. A rejected turn never spends a
// gateway call and never writes.
func (s *ChatService) PostTurn(ctx context.Context, chatID, userID uuid.UUID, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" || userID == uuid.Nil || chatID == uuid.Nil {
		return "", fmt.Errorf("%w: prompt, user id, and chat id are required", domain.ErrInvalidRequest)
	}

	chat, err := s.chatRepo.Get(ctx, chatID)
	if err != nil {
		return "", err
	}
	if chat.Archived {
		return "", domain.ErrChatArchived
	}

	count, err := s.messageRepo.CountByChat(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("failed to count messages: %w", err)
	}
	if count >= int64(s.cfg.MessageCeiling) {
		return "", domain.ErrMessageLimit
	}

	history, err := s.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return "", fmt.Errorf("failed to load history: %w", err)
	}

	turns := make([]ai.Turn, 0, len(history))
	for _, msg := range history {
		role := ai.RoleModel
		if msg.Sender == domain.SenderUser {
			role = ai.RoleUser
		}
		turns = append(turns, ai.Turn{Role: role, Text: msg.Content})
	}

	reply, err := s.gateway.Complete(ctx, turns, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrEmptyCompletion, err)
	}
	if !usableCompletion(reply) {
		return "", domain.ErrEmptyCompletion
	}

	if err := s.persistTurn(ctx, chatID, userID, prompt, reply); err != nil {
		return "", err
	}

	return reply, nil
}

// persistTurn writes the user message then the ai message. The two writes are
// deliberately not wrapped in one transaction; if the second write fails the
// turn is reported as failed even though the user message is durable, and the
// transcript may show an unpaired user message. Callers retry by resubmitting.
func (s *ChatService) persistTurn(ctx context.Context, chatID, userID uuid.UUID, prompt, reply string) error {
	userMsg := &domain.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		UserID:    userID,
		Sender:    domain.SenderUser,
		Content:   prompt,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, userMsg); err != nil {
		return fmt.Errorf("failed to save user message: %w", err)
	}

	aiMsg := &domain.Message{
		ID:        uuid.New(),
		ChatID:    chatID,
		UserID:    userID,
		Sender:    domain.SenderAI,
		Content:   reply,
		CreatedAt: time.Now(),
	}
	if err := s.messageRepo.Create(ctx, aiMsg); err != nil {
		log.Error().
			Err(err).
			Str("chat_id", chatID.String()).
			Msg("ai message write failed after user message write")
		return fmt.Errorf("failed to save ai message: %w", err)
	}

	return nil
}

// GetTranscript returns a chat and its ordered messages for the owner. A
// missing chat and a chat owned by someone else look identical to the caller.
func (s *ChatService) GetTranscript(ctx context.Context, chatID, userID uuid.UUID) (*domain.Transcript, error) {
	chat, err := s.chatRepo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.UserID != userID {
		return nil, domain.ErrNotFound
	}

	messages, err := s.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return &domain.Transcript{Chat: chat, Messages: messages}, nil
}

// GetSharedTranscript returns a chat and its messages through the public
// share surface. Private chats are indistinguishable from missing ones.
func (s *ChatService) GetSharedTranscript(ctx context.Context, chatID uuid.UUID) (*domain.Transcript, error) {
	chat, err := s.chatRepo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Status == domain.StatusPrivate {
		return nil, domain.ErrNotFound
	}

	messages, err := s.messageRepo.ListByChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	return &domain.Transcript{Chat: chat, Messages: messages}, nil
}

// Rename updates a chat's name. Empty names are rejected and leave the
// existing name intact.
func (s *ChatService) Rename(ctx context.Context, chatID uuid.UUID, newName string) (*domain.Chat, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, fmt.Errorf("%w: new name is required", domain.ErrInvalidRequest)
	}

	chat, err := s.chatRepo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	chat.Name = newName
	chat.UpdatedAt = time.Now()
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// SetPrivacy overwrites a chat's visibility. Only PUBLIC and PRIVATE are
// accepted; anything else fails before touching the store.
func (s *ChatService) SetPrivacy(ctx context.Context, chatID uuid.UUID, status string) (*domain.Chat, error) {
	parsed, err := domain.ParseChatStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid status provided", domain.ErrInvalidRequest)
	}

	chat, err := s.chatRepo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	chat.Status = parsed
	chat.UpdatedAt = time.Now()
	if err := s.chatRepo.Update(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// Archive marks a chat as closed for writing. Idempotent.
func (s *ChatService) Archive(ctx context.Context, chatID uuid.UUID) error {
	return s.setArchived(ctx, chatID, true)
}

// Restore reopens an archived chat. Idempotent.
func (s *ChatService) Restore(ctx context.Context, chatID uuid.UUID) error {
	return s.setArchived(ctx, chatID, false)
}

func (s *ChatService) setArchived(ctx context.Context, chatID uuid.UUID, archived bool) error {
	chat, err := s.chatRepo.Get(ctx, chatID)
	if err != nil {
		return err
	}

	chat.Archived = archived
	chat.UpdatedAt = time.Now()
	return s.chatRepo.Update(ctx, chat)
}

// Delete removes a chat's messages first and the chat record second, so an
// interrupted delete never leaves a chat pointing at missing messages. The
// reverse (orphaned messages after a crash between the steps) is accepted.
func (s *ChatService) Delete(ctx context.Context, chatID uuid.UUID) error {
	if _, err := s.chatRepo.Get(ctx, chatID); err != nil {
		return err
	}

	if err := s.messageRepo.DeleteByChat(ctx, chatID); err != nil {
		return err
	}
	return s.chatRepo.Delete(ctx, chatID)
}

// ListRecent returns the user's newest unarchived chats with their most
// recent message as preview.
func (s *ChatService) ListRecent(ctx context.Context, userID uuid.UUID) ([]domain.ChatPreview, error) {
	chats, err := s.chatRepo.ListByUser(ctx, userID, false, s.cfg.RecentChats)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return s.withPreviews(ctx, chats, s.messageRepo.LatestByChat), nil
}

// ListArchived returns all of the user's archived chats with their first
// message as preview.
func (s *ChatService) ListArchived(ctx context.Context, userID uuid.UUID) ([]domain.ChatPreview, error) {
	chats, err := s.chatRepo.ListByUser(ctx, userID, true, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	return s.withPreviews(ctx, chats, s.messageRepo.FirstByChat), nil
}

func (s *ChatService) withPreviews(
	ctx context.Context,
	chats []domain.Chat,
	pick func(context.Context, uuid.UUID) (*domain.Message, error),
) []domain.ChatPreview {
	previews := make([]domain.ChatPreview, 0, len(chats))
	for _, chat := range chats {
		preview, err := pick(ctx, chat.ID)
		if err != nil {
			// A chat with no messages simply has no preview.
			preview = nil
		}
		previews = append(previews, domain.ChatPreview{Chat: chat, Preview: preview})
	}
	return previews
}

func usableCompletion(text string) bool {
	return strings.TrimSpace(text) != "" && !strings.Contains(text, unavailableMarker)
}
