package ai

import (
	"fmt"
	"strings"
)

// AnswerPrompt wraps a first-turn user prompt with the assistant persona.
// Follow-up turns go through Complete with the raw prompt instead, since the
// persona is already established by the history.
func AnswerPrompt(userPrompt string) string {
	return fmt.Sprintf(
		`You are a friendly chatbot. Respond to the following prompt in a helpful and informative way: %q`,
		userPrompt,
	)
}

// TitlePrompt asks for a short chat name derived from the user's first message.
func TitlePrompt(userPrompt string) string {
	return fmt.Sprintf(
		`Generate a single creative and fitting chat name for the AI assistant Sonnet based on the user's message: %q. The name should be concise and presented in plain text.`,
		userPrompt,
	)
}

// CleanTitle normalizes a generated chat name: collapses it to the first
// line, strips surrounding quotes and markdown emphasis, and trims space.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.Trim(title, "\"'`")
	title = strings.Trim(title, "*_#")
	return strings.TrimSpace(title)
}

// TruncateName caps a chat name at max runes without splitting a character.
func TruncateName(name string, max int) string {
	if max <= 0 {
		return name
	}
	runes := []rune(name)
	if len(runes) <= max {
		return name
	}
	return string(runes[:max])
}
