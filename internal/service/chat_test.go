package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DevAthul-88/Sonnet-AI/internal/ai"
	"github.com/DevAthul-88/Sonnet-AI/internal/config"
	"github.com/DevAthul-88/Sonnet-AI/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestService() (*ChatService, *MockChatRepository, *MockMessageRepository, *MockGateway) {
	chatRepo := new(MockChatRepository)
	messageRepo := new(MockMessageRepository)
	gateway := new(MockGateway)
	svc := NewChatService(chatRepo, messageRepo, gateway, config.ChatConfig{
		MessageCeiling: 15,
		NameMaxChars:   50,
		RecentChats:    5,
	})
	return svc, chatRepo, messageRepo, gateway
}

func TestChatService_StartChat(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("bootstrap creates chat and both messages in order", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		gateway.On("Generate", ctx, ai.AnswerPrompt("Explain recursion")).
			Return("Recursion is when a function calls itself.", nil).Once()
		gateway.On("Generate", ctx, ai.TitlePrompt("Explain recursion")).
			Return("Recursive Reflections", nil).Once()

		var createdChat *domain.Chat
		chatRepo.On("Create", ctx, mock.AnythingOfType("*domain.Chat")).
			Run(func(args mock.Arguments) {
				createdChat = args.Get(1).(*domain.Chat)
			}).
			Return(nil).Once()

		var persisted []*domain.Message
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Run(func(args mock.Arguments) {
				persisted = append(persisted, args.Get(1).(*domain.Message))
			}).
			Return(nil).Twice()

		result, err := svc.StartChat(ctx, userID, "Explain recursion")
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.NotEqual(t, uuid.Nil, result.ChatID)
		assert.NotEmpty(t, result.Answer)
		assert.LessOrEqual(t, len([]rune(result.ChatName)), 50)

		require.NotNil(t, createdChat)
		assert.Equal(t, domain.StatusPrivate, createdChat.Status)
		assert.False(t, createdChat.Archived)
		assert.Equal(t, userID, createdChat.UserID)

		require.Len(t, persisted, 2)
		assert.Equal(t, domain.SenderUser, persisted[0].Sender)
		assert.Equal(t, "Explain recursion", persisted[0].Content)
		assert.Equal(t, domain.SenderAI, persisted[1].Sender)
		assert.Equal(t, result.Answer, persisted[1].Content)
		assert.Equal(t, result.ChatID, persisted[0].ChatID)
		assert.Equal(t, result.ChatID, persisted[1].ChatID)

		chatRepo.AssertExpectations(t)
		messageRepo.AssertExpectations(t)
		gateway.AssertExpectations(t)
	})

	t.Run("empty prompt is rejected before any work", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		_, err := svc.StartChat(ctx, userID, "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		gateway.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
		chatRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing user id is rejected", func(t *testing.T) {
		svc, _, _, gateway := newTestService()

		_, err := svc.StartChat(ctx, uuid.Nil, "hello")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
		gateway.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
	})

	t.Run("empty answer fails without writes", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		gateway.On("Generate", ctx, ai.AnswerPrompt("hello")).Return("", nil).Once()

		_, err := svc.StartChat(ctx, userID, "hello")
		assert.ErrorIs(t, err, domain.ErrEmptyCompletion)

		chatRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		gateway.AssertExpectations(t)
	})

	t.Run("title failure is distinct from answer failure", func(t *testing.T) {
		svc, chatRepo, _, gateway := newTestService()

		gateway.On("Generate", ctx, ai.AnswerPrompt("hello")).Return("Hi there!", nil).Once()
		gateway.On("Generate", ctx, ai.TitlePrompt("hello")).Return("", errors.New("quota exceeded")).Once()

		_, err := svc.StartChat(ctx, userID, "hello")
		assert.ErrorIs(t, err, domain.ErrTitleGeneration)
		assert.NotErrorIs(t, err, domain.ErrEmptyCompletion)

		chatRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("blank title output aborts the bootstrap without writes", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		gateway.On("Generate", ctx, ai.AnswerPrompt("hello")).Return("Hi there!", nil).Once()
		gateway.On("Generate", ctx, ai.TitlePrompt("hello")).Return("", nil).Once()

		_, err := svc.StartChat(ctx, userID, "hello")
		assert.ErrorIs(t, err, domain.ErrTitleGeneration)

		chatRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("long generated name is truncated to the cap", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		longTitle := strings.Repeat("Sonnet ", 20)
		gateway.On("Generate", ctx, mock.Anything).Return("answer", nil).Once()
		gateway.On("Generate", ctx, mock.Anything).Return(longTitle, nil).Once()

		chatRepo.On("Create", ctx, mock.AnythingOfType("*domain.Chat")).Return(nil).Once()
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil).Twice()

		result, err := svc.StartChat(ctx, userID, "hello")
		require.NoError(t, err)
		assert.Len(t, []rune(result.ChatName), 50)
	})

	t.Run("blank generated name falls back to Chat", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		gateway.On("Generate", ctx, mock.Anything).Return("answer", nil).Once()
		gateway.On("Generate", ctx, mock.Anything).Return("  \"\" ", nil).Once()

		chatRepo.On("Create", ctx, mock.AnythingOfType("*domain.Chat")).Return(nil).Once()
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).Return(nil).Twice()

		result, err := svc.StartChat(ctx, userID, "hello")
		require.NoError(t, err)
		assert.Equal(t, "Chat", result.ChatName)
	})
}

func TestChatService_PostTurn(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	chatID := uuid.New()

	liveChat := func() *domain.Chat {
		return &domain.Chat{
			ID:       chatID,
			UserID:   userID,
			Name:     "Test Chat",
			Status:   domain.StatusPrivate,
			Archived: false,
		}
	}

	t.Run("turn maps history roles in order and persists both sides", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(liveChat(), nil).Once()
		messageRepo.On("CountByChat", ctx, chatID).Return(int64(4), nil).Once()
		messageRepo.On("ListByChat", ctx, chatID).Return([]domain.Message{
			{Sender: domain.SenderUser, Content: "first question"},
			{Sender: domain.SenderAI, Content: "first answer"},
			{Sender: domain.SenderUser, Content: "second question"},
			{Sender: domain.SenderAI, Content: "second answer"},
		}, nil).Once()

		expectedHistory := []ai.Turn{
			{Role: ai.RoleUser, Text: "first question"},
			{Role: ai.RoleModel, Text: "first answer"},
			{Role: ai.RoleUser, Text: "second question"},
			{Role: ai.RoleModel, Text: "second answer"},
		}
		gateway.On("Complete", ctx, expectedHistory, "third question").
			Return("third answer", nil).Once()

		var persisted []*domain.Message
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Run(func(args mock.Arguments) {
				persisted = append(persisted, args.Get(1).(*domain.Message))
			}).
			Return(nil).Twice()

		reply, err := svc.PostTurn(ctx, chatID, userID, "third question")
		require.NoError(t, err)
		assert.Equal(t, "third answer", reply)

		require.Len(t, persisted, 2)
		assert.Equal(t, domain.SenderUser, persisted[0].Sender)
		assert.Equal(t, domain.SenderAI, persisted[1].Sender)

		gateway.AssertExpectations(t)
		messageRepo.AssertExpectations(t)
	})

	t.Run("turn at the ceiling is rejected without a gateway call", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(liveChat(), nil).Once()
		messageRepo.On("CountByChat", ctx, chatID).Return(int64(15), nil).Once()

		_, err := svc.PostTurn(ctx, chatID, userID, "one more")
		assert.ErrorIs(t, err, domain.ErrMessageLimit)

		gateway.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
		messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("archived chat is closed for writing", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		archived := liveChat()
		archived.Archived = true
		chatRepo.On("Get", ctx, chatID).Return(archived, nil).Once()

		_, err := svc.PostTurn(ctx, chatID, userID, "hello")
		assert.ErrorIs(t, err, domain.ErrChatArchived)

		messageRepo.AssertNotCalled(t, "CountByChat", mock.Anything, mock.Anything)
		gateway.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing chat", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.PostTurn(ctx, chatID, userID, "hello")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing input", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		_, err := svc.PostTurn(ctx, chatID, userID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = svc.PostTurn(ctx, uuid.Nil, userID, "hello")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		_, err = svc.PostTurn(ctx, chatID, uuid.Nil, "hello")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		chatRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})

	t.Run("unusable completion writes nothing", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(liveChat(), nil).Twice()
		messageRepo.On("CountByChat", ctx, chatID).Return(int64(0), nil).Twice()
		messageRepo.On("ListByChat", ctx, chatID).Return([]domain.Message{}, nil).Twice()

		gateway.On("Complete", ctx, mock.Anything, "hello").Return("", nil).Once()
		_, err := svc.PostTurn(ctx, chatID, userID, "hello")
		assert.ErrorIs(t, err, domain.ErrEmptyCompletion)

		gateway.On("Complete", ctx, mock.Anything, "hello").
			Return("AI response unavailable right now", nil).Once()
		_, err = svc.PostTurn(ctx, chatID, userID, "hello")
		assert.ErrorIs(t, err, domain.ErrEmptyCompletion)

		messageRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("failed ai write surfaces as error after user write", func(t *testing.T) {
		svc, chatRepo, messageRepo, gateway := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(liveChat(), nil).Once()
		messageRepo.On("CountByChat", ctx, chatID).Return(int64(0), nil).Once()
		messageRepo.On("ListByChat", ctx, chatID).Return([]domain.Message{}, nil).Once()
		gateway.On("Complete", ctx, mock.Anything, "hello").Return("hi", nil).Once()

		writes := 0
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Run(func(args mock.Arguments) { writes++ }).
			Return(nil).Once()
		messageRepo.On("Create", ctx, mock.AnythingOfType("*domain.Message")).
			Run(func(args mock.Arguments) { writes++ }).
			Return(errors.New("connection reset")).Once()

		_, err := svc.PostTurn(ctx, chatID, userID, "hello")
		require.Error(t, err)
		// The stray user-only write is the documented inconsistency.
		assert.Equal(t, 2, writes)
	})
}

func TestChatService_Rename(t *testing.T) {
	ctx := context.Background()
	chatID := uuid.New()

	t.Run("renames and returns the updated chat", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(&domain.Chat{ID: chatID, Name: "Old"}, nil).Once()
		chatRepo.On("Update", ctx, mock.MatchedBy(func(c *domain.Chat) bool {
			return c.Name == "New Name"
		})).Return(nil).Once()

		chat, err := svc.Rename(ctx, chatID, "New Name")
		require.NoError(t, err)
		assert.Equal(t, "New Name", chat.Name)
		chatRepo.AssertExpectations(t)
	})

	t.Run("empty name is rejected and nothing is written", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		_, err := svc.Rename(ctx, chatID, "   ")
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)

		chatRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("missing chat", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(nil, domain.ErrNotFound).Once()

		_, err := svc.Rename(ctx, chatID, "New Name")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestChatService_SetPrivacy(t *testing.T) {
	ctx := context.Background()
	chatID := uuid.New()

	t.Run("accepts only the two enum values", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		for _, bad := range []string{"", "public", "SECRET", "private ", "BOTH"} {
			_, err := svc.SetPrivacy(ctx, chatID, bad)
			assert.ErrorIs(t, err, domain.ErrInvalidRequest, "status %q", bad)
		}

		chatRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		chatRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("overwrites status", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).
			Return(&domain.Chat{ID: chatID, Status: domain.StatusPrivate}, nil).Once()
		chatRepo.On("Update", ctx, mock.MatchedBy(func(c *domain.Chat) bool {
			return c.Status == domain.StatusPublic
		})).Return(nil).Once()

		chat, err := svc.SetPrivacy(ctx, chatID, "PUBLIC")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusPublic, chat.Status)
	})
}

func TestChatService_ArchiveRestore(t *testing.T) {
	ctx := context.Background()
	chatID := uuid.New()

	t.Run("archiving an archived chat stays archived with no error", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).
			Return(&domain.Chat{ID: chatID, Archived: true}, nil).Once()
		chatRepo.On("Update", ctx, mock.MatchedBy(func(c *domain.Chat) bool {
			return c.Archived
		})).Return(nil).Once()

		assert.NoError(t, svc.Archive(ctx, chatID))
	})

	t.Run("restoring a non-archived chat stays unarchived with no error", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).
			Return(&domain.Chat{ID: chatID, Archived: false}, nil).Once()
		chatRepo.On("Update", ctx, mock.MatchedBy(func(c *domain.Chat) bool {
			return !c.Archived
		})).Return(nil).Once()

		assert.NoError(t, svc.Restore(ctx, chatID))
	})

	t.Run("missing chat", func(t *testing.T) {
		svc, chatRepo, _, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(nil, domain.ErrNotFound)

		assert.ErrorIs(t, svc.Archive(ctx, chatID), domain.ErrNotFound)
		assert.ErrorIs(t, svc.Restore(ctx, chatID), domain.ErrNotFound)
	})
}

func TestChatService_Delete(t *testing.T) {
	ctx := context.Background()
	chatID := uuid.New()

	t.Run("messages are removed before the chat record", func(t *testing.T) {
		svc, chatRepo, messageRepo, _ := newTestService()

		var order []string
		chatRepo.On("Get", ctx, chatID).Return(&domain.Chat{ID: chatID}, nil).Once()
		messageRepo.On("DeleteByChat", ctx, chatID).
			Run(func(mock.Arguments) { order = append(order, "messages") }).
			Return(nil).Once()
		chatRepo.On("Delete", ctx, chatID).
			Run(func(mock.Arguments) { order = append(order, "chat") }).
			Return(nil).Once()

		require.NoError(t, svc.Delete(ctx, chatID))
		assert.Equal(t, []string{"messages", "chat"}, order)
	})

	t.Run("missing chat deletes nothing", func(t *testing.T) {
		svc, chatRepo, messageRepo, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).Return(nil, domain.ErrNotFound).Once()

		assert.ErrorIs(t, svc.Delete(ctx, chatID), domain.ErrNotFound)
		messageRepo.AssertNotCalled(t, "DeleteByChat", mock.Anything, mock.Anything)
		chatRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestChatService_Transcripts(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()
	chatID := uuid.New()

	t.Run("owner fetch returns ordered messages", func(t *testing.T) {
		svc, chatRepo, messageRepo, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).
			Return(&domain.Chat{ID: chatID, UserID: owner}, nil).Once()
		messageRepo.On("ListByChat", ctx, chatID).Return([]domain.Message{
			{Sender: domain.SenderUser, Content: "q"},
			{Sender: domain.SenderAI, Content: "a"},
		}, nil).Once()

		transcript, err := svc.GetTranscript(ctx, chatID, owner)
		require.NoError(t, err)
		assert.Len(t, transcript.Messages, 2)
	})

	t.Run("foreign chat looks missing to a non-owner", func(t *testing.T) {
		svc, chatRepo, messageRepo, _ := newTestService()

		chatRepo.On("Get", ctx, chatID).
			Return(&domain.Chat{ID: chatID, UserID: owner}, nil).Once()

		_, err := svc.GetTranscript(ctx, chatID, stranger)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		messageRepo.AssertNotCalled(t, "ListByChat", mock.Anything, mock.Anything)
	})

	t.Run("private chat is hidden from the share surface until made public", func(t *testing.T) {
		svc, chatRepo, messageRepo, _ := newTestService()

		private := &domain.Chat{ID: chatID, UserID: owner, Status: domain.StatusPrivate}
		chatRepo.On("Get", ctx, chatID).Return(private, nil).Once()

		_, err := svc.GetSharedTranscript(ctx, chatID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		public := &domain.Chat{ID: chatID, UserID: owner, Status: domain.StatusPublic}
		chatRepo.On("Get", ctx, chatID).Return(public, nil).Once()
		messageRepo.On("ListByChat", ctx, chatID).Return([]domain.Message{
			{Sender: domain.SenderUser, Content: "q"},
		}, nil).Once()

		transcript, err := svc.GetSharedTranscript(ctx, chatID)
		require.NoError(t, err)
		assert.Len(t, transcript.Messages, 1)
	})
}

func TestChatService_Lists(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()

	t.Run("recent list uses the configured cap and latest previews", func(t *testing.T) {
		svc, chatRepo, messageRepo, _ := newTestService()

		chats := []domain.Chat{{ID: uuid.New()}, {ID: uuid.New()}}
		chatRepo.On("ListByUser", ctx, userID, false, 5).Return(chats, nil).Once()

		messageRepo.On("LatestByChat", ctx, chats[0].ID).
			Return(&domain.Message{Content: "latest"}, nil).Once()
		// A bootstrapping chat with no messages yet has no preview.
		messageRepo.On("LatestByChat", ctx, chats[1].ID).
			Return(nil, domain.ErrNotFound).Once()

		previews, err := svc.ListRecent(ctx, userID)
		require.NoError(t, err)
		require.Len(t, previews, 2)
		assert.Equal(t, "latest", previews[0].Preview.Content)
		assert.Nil(t, previews[1].Preview)
	})

	t.Run("archived list is unbounded and uses first-message previews", func(t *testing.T) {
		svc, chatRepo, messageRepo, _ := newTestService()

		chats := []domain.Chat{{ID: uuid.New(), Archived: true}}
		chatRepo.On("ListByUser", ctx, userID, true, -1).Return(chats, nil).Once()
		messageRepo.On("FirstByChat", ctx, chats[0].ID).
			Return(&domain.Message{Content: "first"}, nil).Once()

		previews, err := svc.ListArchived(ctx, userID)
		require.NoError(t, err)
		require.Len(t, previews, 1)
		assert.Equal(t, "first", previews[0].Preview.Content)
	})
}
