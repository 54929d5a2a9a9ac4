package chat

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
)

// CollaboratorFactory builds the reply and action collaborators of a profile.
type CollaboratorFactory func(p profile.Profile) (ReplyGenerator, ActionExecutor, error)

// Option customizes a Service.
type Option func(*Service)

// WithDispatchTimeout bounds each dispatch of every session.
func WithDispatchTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// WithSink forwards every session event to sink.
func WithSink(sink Notifier) Option {
	return func(s *Service) {
		s.sink = sink
	}
}

// Service owns the live sessions. Sessions are independent: each has its own
// transcript, engine and subscribers.
type Service struct {
	profiles profile.Store
	factory  CollaboratorFactory
	timeout  time.Duration
	sink     Notifier

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewService bootstraps the in-memory session service.
func NewService(profiles profile.Store, factory CollaboratorFactory, opts ...Option) *Service {
	s := &Service{
		profiles: profiles,
		factory:  factory,
		sessions: make(map[string]*Controller),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateSession provisions an anonymous session bound to a profile.
func (s *Service) CreateSession(_ context.Context, profileID string) (chat.Session, error) {
	if profileID == "" {
		return chat.Session{}, ErrProfileRequired
	}

	p, ok := s.profiles.FindByID(profileID)
	if !ok {
		return chat.Session{}, ErrProfileNotFound
	}

	replier, executor, err := s.factory(p)
	if err != nil {
		return chat.Session{}, err
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		ProfileID: p.ID,
		CreatedAt: time.Now().UTC(),
	}

	controller, err := NewController(ControllerConfig{
		Session:  session,
		Profile:  p,
		Replier:  replier,
		Executor: executor,
		Timeout:  s.timeout,
		Sink:     s.sink,
	})
	if err != nil {
		return chat.Session{}, err
	}

	s.mu.Lock()
	s.sessions[session.ID] = controller
	s.mu.Unlock()

	log.Printf("[chat] created session=%s profile=%s", session.ID, p.ID)
	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(ctx context.Context, sessionID string) (chat.Session, error) {
	controller, err := s.Controller(ctx, sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	return controller.Session(), nil
}

// Controller returns the live controller of a session.
func (s *Service) Controller(_ context.Context, sessionID string) (*Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	controller, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return controller, nil
}

// LoadTranscript returns the messages of a session.
func (s *Service) LoadTranscript(ctx context.Context, sessionID string) ([]chat.Message, error) {
	controller, err := s.Controller(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return controller.Messages(), nil
}

// CloseSession discards a session and everything it holds.
func (s *Service) CloseSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	controller, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	controller.Close()
	log.Printf("[chat] closed session=%s", sessionID)
	return nil
}

// Count returns the number of live sessions.
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Shutdown closes every live session.
func (s *Service) Shutdown() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*Controller)
	s.mu.Unlock()

	for _, controller := range sessions {
		controller.Close()
	}
}
