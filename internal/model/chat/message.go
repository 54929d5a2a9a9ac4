package chat

import "time"

// Role identifies the author of a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ActionStatus tracks the lifecycle of an assistant action.
type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionCompleted ActionStatus = "completed"
	ActionFailed    ActionStatus = "failed"
)

// Settled reports whether the status is terminal.
func (s ActionStatus) Settled() bool {
	return s == ActionCompleted || s == ActionFailed
}

// Action marks an assistant message that stands for an invoked operation
// rather than a conversational reply.
type Action struct {
	Kind   string       `json:"kind"`
	Status ActionStatus `json:"status"`
}

// Message is a single transcript entry. Only Content and Action.Status of a
// message carrying an Action may change after insertion.
type Message struct {
	ID          string    `json:"id"`
	Role        Role      `json:"role"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	DisplayTime string    `json:"timestamp"`
	Action      *Action   `json:"action,omitempty"`
}

// DisplayLayout formats Message.DisplayTime.
const DisplayLayout = "15:04:05"

// Clone returns a deep copy so callers never share the Action pointer.
func (m Message) Clone() Message {
	if m.Action != nil {
		action := *m.Action
		m.Action = &action
	}
	return m
}

// IsAction reports whether the message carries an action lifecycle.
func (m Message) IsAction() bool {
	return m.Action != nil
}
