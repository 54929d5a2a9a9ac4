package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
)

// ControllerConfig wires a Controller for one session.
type ControllerConfig struct {
	Session  chat.Session
	Profile  profile.Profile
	Replier  ReplyGenerator
	Executor ActionExecutor
	Timeout  time.Duration
	// Sink receives every event in addition to subscribers. Optional.
	Sink Notifier
	Now  func() time.Time
}

// Controller is the surface a UI drives: it owns one engine, its transcript
// and the cosmetic view state of the widget.
type Controller struct {
	session  chat.Session
	profile  profile.Profile
	registry *catalog.Registry
	engine   *Engine
	events   *Broadcaster

	mu             sync.RWMutex
	activeCategory string
	expanded       bool
}

// NewController builds the registry and engine for the session's profile.
func NewController(cfg ControllerConfig) (*Controller, error) {
	registry, err := cfg.Profile.Registry()
	if err != nil {
		return nil, err
	}

	events := NewBroadcaster(cfg.Sink)
	engine, err := NewEngine(EngineConfig{
		SessionID: cfg.Session.ID,
		Greeting:  cfg.Profile.Greeting,
		Registry:  registry,
		Replier:   cfg.Replier,
		Executor:  cfg.Executor,
		Texts:     cfg.Profile,
		Notifier:  events,
		Timeout:   cfg.Timeout,
		Now:       cfg.Now,
	})
	if err != nil {
		return nil, err
	}

	return &Controller{
		session:        cfg.Session,
		profile:        cfg.Profile,
		registry:       registry,
		engine:         engine,
		events:         events,
		activeCategory: cfg.Profile.InitialCategory(),
	}, nil
}

// Session returns the session metadata.
func (c *Controller) Session() chat.Session {
	return c.session
}

// Profile returns the assistant profile driving the session.
func (c *Controller) Profile() profile.Profile {
	return c.profile
}

// SubmitText forwards a user utterance. It reports whether it was accepted.
func (c *Controller) SubmitText(text string) bool {
	return c.engine.SubmitText(text)
}

// InvokeAction starts a catalogue action. It reports whether it was accepted.
func (c *Controller) InvokeAction(kind string) (bool, error) {
	return c.engine.InvokeAction(kind)
}

// Reset clears the transcript back to the greeting.
func (c *Controller) Reset() []chat.Message {
	c.engine.Reset()
	return c.engine.Store().All()
}

// Messages returns the transcript in insertion order.
func (c *Controller) Messages() []chat.Message {
	return c.engine.Store().All()
}

// IsBusy reports whether a dispatch is in flight.
func (c *Controller) IsBusy() bool {
	return c.engine.Busy()
}

// Categories lists the action categories of the profile.
func (c *Controller) Categories() []string {
	return c.registry.Categories()
}

// ActionsIn lists the actions of a category.
func (c *Controller) ActionsIn(category string) ([]catalog.Definition, error) {
	defs, err := c.registry.ActionsIn(category)
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}
	return defs, err
}

// SetActiveCategory selects the category shown by the widget.
func (c *Controller) SetActiveCategory(category string) error {
	if !c.registry.HasCategory(category) {
		return fmt.Errorf("%w: %s", ErrCategoryNotFound, category)
	}

	c.mu.Lock()
	c.activeCategory = category
	expanded := c.expanded
	c.mu.Unlock()

	c.notifyView(category, expanded)
	return nil
}

// ActiveCategory returns the selected category.
func (c *Controller) ActiveCategory() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeCategory
}

// SetExpanded sets the expand/collapse state of the widget.
func (c *Controller) SetExpanded(expanded bool) {
	c.mu.Lock()
	c.expanded = expanded
	category := c.activeCategory
	c.mu.Unlock()

	c.notifyView(category, expanded)
}

// ToggleExpanded flips the expand/collapse state and returns the new value.
func (c *Controller) ToggleExpanded() bool {
	c.mu.Lock()
	c.expanded = !c.expanded
	expanded := c.expanded
	category := c.activeCategory
	c.mu.Unlock()

	c.notifyView(category, expanded)
	return expanded
}

// Expanded reports the expand/collapse state.
func (c *Controller) Expanded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expanded
}

// State summarizes the session for the UI.
func (c *Controller) State() chat.State {
	c.mu.RLock()
	category, expanded := c.activeCategory, c.expanded
	c.mu.RUnlock()

	return chat.State{
		Session:        c.session,
		Busy:           c.engine.Busy(),
		ActiveCategory: category,
		Expanded:       expanded,
		MessageCount:   c.engine.Store().Len(),
	}
}

// Subscribe streams session events until cancel is called.
func (c *Controller) Subscribe(buffer int) (<-chan Event, func()) {
	return c.events.Subscribe(buffer)
}

// Wait blocks until the session is idle or ctx is done.
func (c *Controller) Wait(ctx context.Context) error {
	return c.engine.Wait(ctx)
}

// Close stops the engine and drops subscribers.
func (c *Controller) Close() {
	c.engine.Close()
	c.events.Close()
}

func (c *Controller) notifyView(category string, expanded bool) {
	c.events.Notify(Event{
		Type:           EventViewChanged,
		SessionID:      c.session.ID,
		Busy:           c.engine.Busy(),
		ActiveCategory: category,
		Expanded:       expanded,
	})
}
