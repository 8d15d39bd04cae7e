package domain

import "errors"

// Failure taxonomy shared by services and HTTP handlers. Services wrap these
// with %w; handlers translate them to status codes with errors.Is.
var (
	// ErrInvalidRequest marks missing or malformed caller input.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized marks a missing or invalid identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound marks an absent entity. Access-scope violations on private
	// or foreign chats are reported as ErrNotFound too, so existence is not
	// leaked to callers who cannot see the chat.
	ErrNotFound = errors.New("not found")

	// ErrChatArchived marks a write attempt against an archived chat. The
	// HTTP layer surfaces it exactly like ErrNotFound; an archived
	// conversation is closed for writing.
	ErrChatArchived = errors.New("chat is archived")

	// ErrMessageLimit marks a chat that has reached the per-chat message
	// ceiling. Carries a machine-readable limit flag on the wire.
	ErrMessageLimit = errors.New("message limit reached")

	// ErrEmptyCompletion marks a completion call that produced no usable text.
	ErrEmptyCompletion = errors.New("AI response unavailable")

	// ErrTitleGeneration marks a failed chat-name derivation during bootstrap,
	// kept distinct from a failed answer so the two are attributable.
	ErrTitleGeneration = errors.New("chat name generation failed")
)
