package chat

import (
	"fmt"
	"sync"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
)

// ActionPatch describes the settlement of an action message. Zero fields are
// left unchanged.
type ActionPatch struct {
	Content string
	Status  chat.ActionStatus
}

// Store is the append-only transcript of one session.
type Store struct {
	mu       sync.RWMutex
	messages []chat.Message
	index    map[string]int
}

// NewStore creates a store holding only the seed message.
func NewStore(seed chat.Message) *Store {
	s := &Store{}
	s.reset(seed)
	return s
}

// Append adds msg at the end of the log. Ids must be unique.
func (s *Store) Append(msg chat.Message) error {
	if msg.ID == "" {
		return fmt.Errorf("%w: message id is required", ErrInvalidState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[msg.ID]; exists {
		return fmt.Errorf("%w: duplicate message id %s", ErrInvalidState, msg.ID)
	}

	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg.Clone())
	return nil
}

// UpdateAction settles the pending action carried by the message with the
// given id and returns the updated copy.
func (s *Store) UpdateAction(id string, patch ActionPatch) (chat.Message, error) {
	if patch.Status == chat.ActionPending {
		return chat.Message{}, fmt.Errorf("%w: cannot move action back to pending", ErrInvalidState)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[id]
	if !ok {
		return chat.Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}

	msg := s.messages[pos].Clone()
	if msg.Action == nil {
		return chat.Message{}, fmt.Errorf("%w: message %s carries no action", ErrInvalidState, id)
	}
	if msg.Action.Status.Settled() {
		return chat.Message{}, fmt.Errorf("%w: action on message %s already %s", ErrInvalidState, id, msg.Action.Status)
	}

	if patch.Content != "" {
		msg.Content = patch.Content
	}
	if patch.Status != "" {
		msg.Action.Status = patch.Status
	}

	// Replace the whole element so concurrent snapshots only see whole values.
	s.messages[pos] = msg
	return msg.Clone(), nil
}

// Get returns a copy of a single message.
func (s *Store) Get(id string) (chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return chat.Message{}, fmt.Errorf("%w: %s", ErrMessageNotFound, id)
	}
	return s.messages[pos].Clone(), nil
}

// All returns a snapshot of the log in insertion order.
func (s *Store) All() []chat.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]chat.Message, len(s.messages))
	for i, msg := range s.messages {
		copied[i] = msg.Clone()
	}
	return copied
}

// Len returns the number of messages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Reset replaces the log with the seed message.
func (s *Store) Reset(seed chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(seed)
}

func (s *Store) reset(seed chat.Message) {
	s.messages = make([]chat.Message, 0, 16)
	s.index = make(map[string]int)
	s.index[seed.ID] = 0
	s.messages = append(s.messages, seed.Clone())
}
