package handler

import (
	"net/http"

	"github.com/DevAthul-88/Sonnet-AI/internal/api/response"
	"github.com/DevAthul-88/Sonnet-AI/internal/service"
)

// ShareHandler serves public read-only chat transcripts
type ShareHandler struct {
	chatService *service.ChatService
}

// NewShareHandler creates a new share handler
func NewShareHandler(chatService *service.ChatService) *ShareHandler {
	return &ShareHandler{chatService: chatService}
}

// GetTranscript returns a public chat's transcript. No authentication;
// private and missing chats both come back as 404.
func (h *ShareHandler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	chatID, err := chatIDParam(r)
	if err != nil {
		response.BadRequest(w, "invalid chat ID")
		return
	}

	transcript, err := h.chatService.GetSharedTranscript(r.Context(), chatID)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response.OK(w, transcript)
}
