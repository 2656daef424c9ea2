package entity

import "time"

type Role string

const (
	RoleUser      Role = "User"
	RoleAssistant Role = "Assistant"
)

// ConversationEntry is one message of a discussion room conversation.
type ConversationEntry struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type FeedbackArtifact struct {
	Summary     string   `json:"summary"`
	Notes       []string `json:"notes"`
	Feedback    string   `json:"feedback"`
	ActionItems []string `json:"action_items"`
}

type DiscussionRoom struct {
	ID             string
	UserID         string
	Topic          string
	CoachingOption string
	ExpertName     string
	Conversation   []ConversationEntry
	Feedback       *FeedbackArtifact
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ResponderRole maps a stored role to the chat completion vocabulary.
func (r Role) ResponderRole() string {
	if r == RoleAssistant {
		return "assistant"
	}
	return "user"
}
