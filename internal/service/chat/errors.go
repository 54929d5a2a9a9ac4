package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState reports a mutation the session state does not allow.
	ErrInvalidState = errors.New("invalid state")
	// ErrNotFound reports an unknown message, action, category, profile or session.
	ErrNotFound = errors.New("not found")
	// ErrCollaboratorFailure wraps a failed or timed out reply/action collaborator.
	ErrCollaboratorFailure = errors.New("collaborator failure")

	ErrProfileRequired  = errors.New("profile id is required")
	ErrProfileNotFound  = fmt.Errorf("profile %w", ErrNotFound)
	ErrSessionNotFound  = fmt.Errorf("session %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrActionNotFound   = fmt.Errorf("action %w", ErrNotFound)
	ErrMessageNotFound  = fmt.Errorf("message %w", ErrNotFound)
)
