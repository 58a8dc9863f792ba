package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of a session's chat transcript
type ChatMessage struct {
	ID        uuid.UUID
	Role      ChatRole
	Content   string
	Rule      string // Name of the router rule that produced an assistant message
	CreatedAt time.Time
}
