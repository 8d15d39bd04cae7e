package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/DevAthul-88/Sonnet-AI/internal/api/middleware"
	"github.com/DevAthul-88/Sonnet-AI/internal/api/response"
	"github.com/DevAthul-88/Sonnet-AI/internal/domain"
	"github.com/DevAthul-88/Sonnet-AI/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ChatHandler exposes the chat turn and lifecycle endpoints
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"required"`
}

// Start bootstraps a brand-new chat from the user's first message
func (h *ChatHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, "prompt is required")
		return
	}

	result, err := h.chatService.StartChat(r.Context(), userID, req.Message)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, result)
}

// PostTurn sends a message within an existing chat
func (h *ChatHandler) PostTurn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chatID, err := chatIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	reply, err := h.chatService.PostTurn(r.Context(), chatID, userID, req.Message)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]string{"response": reply})
}

// GetTranscript returns a chat and its messages to the owner
func (h *ChatHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chatID, err := chatIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	transcript, err := h.chatService.GetTranscript(r.Context(), chatID, userID)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, transcript)
}

// Rename updates a chat's name
func (h *ChatHandler) Rename(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	var req struct {
		NewName string `json:"newName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	chat, err := h.chatService.Rename(r.Context(), chatID, req.NewName)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"message": "Chat renamed successfully",
		"chat":    chat,
	})
}

// SetPrivacy toggles a chat between PUBLIC and PRIVATE
func (h *ChatHandler) SetPrivacy(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	chat, err := h.chatService.SetPrivacy(r.Context(), chatID, req.Status)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]any{
		"message": "Privacy setting updated successfully",
		"chat": map[string]any{
			"id":     chat.ID,
			"status": chat.Status,
		},
	})
}

// Archive marks a chat as archived
func (h *ChatHandler) Archive(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	if err := h.chatService.Archive(r.Context(), chatID); err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Chat marked as archived successfully"})
}

// Restore reopens an archived chat
func (h *ChatHandler) Restore(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	if err := h.chatService.Restore(r.Context(), chatID); err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Chat restored successfully"})
}

// Delete removes a chat and all of its messages
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	if err := h.chatService.Delete(r.Context(), chatID); err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]string{"message": "Chat and its messages deleted successfully"})
}

// ListRecent returns the dashboard's recent chats with previews
func (h *ChatHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chats, err := h.chatService.ListRecent(r.Context(), userID)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]any{"chats": chats})
}

// ListArchived returns the user's archived chats with previews
func (h *ChatHandler) ListArchived(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	chats, err := h.chatService.ListArchived(r.Context(), userID)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, map[string]any{"chats": chats})
}

func chatIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "chatID"))
}

// writeChatError translates the service error taxonomy to HTTP. Archived
// chats are deliberately indistinguishable from missing ones.
func writeChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		response.BadRequest(w, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, domain.ErrMessageLimit):
		response.Error(w, http.StatusForbidden, map[string]any{
			"message": "Message limit reached. You cannot send more than 15 messages in a chat.",
			"limit":   true,
		})
	case errors.Is(err, domain.ErrChatArchived), errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "Chat not found")
	case errors.Is(err, domain.ErrTitleGeneration):
		response.InternalError(w, "Chat name generation failed")
	case errors.Is(err, domain.ErrEmptyCompletion):
		response.InternalError(w, "AI response unavailable")
	default:
		response.InternalError(w, "Internal server error")
	}
}
