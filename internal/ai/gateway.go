package ai

import "context"

// Role is the wire role the completion backend expects for a history entry
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one prior history entry sent to the completion backend. History is
// passed in original transcript order; the gateway must not reorder it.
type Turn struct {
	Role Role
	Text string
}

// Gateway defines the interface for the text completion backend
type Gateway interface {
	// Name returns the gateway identifier
	Name() string

	// IsConfigured checks if the gateway has valid credentials
	IsConfigured() bool

	// Complete sends the prior conversation plus a new user prompt and
	// returns the generated reply text.
	Complete(ctx context.Context, history []Turn, prompt string) (string, error)

	// Generate runs a single standalone prompt with no history.
	Generate(ctx context.Context, prompt string) (string, error)
}
