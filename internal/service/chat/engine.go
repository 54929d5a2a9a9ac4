package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
)

// ReplyGenerator produces the assistant answer to a user utterance. history
// already contains the user message being answered.
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, history []chat.Message, text string) (string, error)
}

// ActionExecutor runs a named assistant action and describes its outcome.
type ActionExecutor interface {
	ExecuteAction(ctx context.Context, kind string) (string, error)
}

// ReplyFunc adapts a function to ReplyGenerator.
type ReplyFunc func(ctx context.Context, history []chat.Message, text string) (string, error)

// GenerateReply calls f.
func (f ReplyFunc) GenerateReply(ctx context.Context, history []chat.Message, text string) (string, error) {
	return f(ctx, history, text)
}

// ActionFunc adapts a function to ActionExecutor.
type ActionFunc func(ctx context.Context, kind string) (string, error)

// ExecuteAction calls f.
func (f ActionFunc) ExecuteAction(ctx context.Context, kind string) (string, error) {
	return f(ctx, kind)
}

// Texts supplies the user-visible strings the engine writes on its own.
type Texts interface {
	PendingContent(label string) string
	ResultFallback(label string) string
	Failure() string
}

// EngineConfig wires an Engine.
type EngineConfig struct {
	SessionID string
	Greeting  string
	Registry  *catalog.Registry
	Replier   ReplyGenerator
	Executor  ActionExecutor
	Texts     Texts
	Notifier  Notifier
	// Timeout bounds a single dispatch. Zero waits for the collaborator forever.
	Timeout time.Duration
	Now     func() time.Time
}

// Engine serializes reply generation and action execution for one session.
// At most one dispatch is in flight; submissions made while busy are dropped.
type Engine struct {
	sessionID string
	greeting  string
	registry  *catalog.Registry
	replier   ReplyGenerator
	executor  ActionExecutor
	texts     Texts
	notifier  Notifier
	timeout   time.Duration
	now       func() time.Time

	store *Store

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	busy   bool
	closed bool
	epoch  uint64
	seq    uint64
	idle   chan struct{}
}

// NewEngine creates an idle engine whose store holds the greeting.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("engine: registry is required")
	}
	if cfg.Replier == nil || cfg.Executor == nil {
		return nil, fmt.Errorf("engine: reply and action collaborators are required")
	}
	if cfg.Texts == nil {
		return nil, fmt.Errorf("engine: texts are required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	idle := make(chan struct{})
	close(idle)

	e := &Engine{
		sessionID: cfg.SessionID,
		greeting:  cfg.Greeting,
		registry:  cfg.Registry,
		replier:   cfg.Replier,
		executor:  cfg.Executor,
		texts:     cfg.Texts,
		notifier:  cfg.Notifier,
		timeout:   cfg.Timeout,
		now:       cfg.Now,
		ctx:       ctx,
		cancel:    cancel,
		idle:      idle,
	}
	e.store = NewStore(e.newMessage(chat.RoleAssistant, cfg.Greeting))
	return e, nil
}

// Store exposes the transcript for read access.
func (e *Engine) Store() *Store {
	return e.store
}

// Busy reports whether a dispatch is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// SubmitText appends the user message and asynchronously appends the
// assistant reply. Blank text, a busy engine or a closed engine make it a
// no-op; the return value reports whether the submission was accepted.
func (e *Engine) SubmitText(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}

	e.mu.Lock()
	if e.busy || e.closed {
		e.mu.Unlock()
		return false
	}

	userMsg := e.newMessage(chat.RoleUser, text)
	if err := e.store.Append(userMsg); err != nil {
		e.mu.Unlock()
		log.Printf("[dispatch] session=%s append user message: %v", e.sessionID, err)
		return false
	}
	history := e.store.All()
	epoch := e.begin()
	e.mu.Unlock()

	e.notify(Event{Type: EventMessageAppended, Message: &userMsg, Busy: true})
	e.notify(Event{Type: EventBusyChanged, Busy: true})

	go e.runReply(epoch, history, text)
	return true
}

// InvokeAction appends a pending action placeholder and asynchronously
// settles it. Unknown kinds fail with ErrActionNotFound; a busy engine makes
// it a no-op and accepted is false.
func (e *Engine) InvokeAction(kind string) (bool, error) {
	def, ok := e.registry.Resolve(kind)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrActionNotFound, kind)
	}

	e.mu.Lock()
	if e.busy || e.closed {
		e.mu.Unlock()
		return false, nil
	}

	placeholder := e.newMessage(chat.RoleAssistant, e.texts.PendingContent(def.Label))
	placeholder.Action = &chat.Action{Kind: def.Kind, Status: chat.ActionPending}
	if err := e.store.Append(placeholder); err != nil {
		e.mu.Unlock()
		return false, err
	}
	epoch := e.begin()
	e.mu.Unlock()

	snapshot := placeholder.Clone()
	e.notify(Event{Type: EventMessageAppended, Message: &snapshot, Busy: true})
	e.notify(Event{Type: EventBusyChanged, Busy: true})

	go e.runAction(epoch, placeholder.ID, def)
	return true, nil
}

// Reset replaces the transcript with a fresh greeting. A dispatch still in
// flight is discarded when it settles; busy stays set until then.
func (e *Engine) Reset() chat.Message {
	e.mu.Lock()
	e.epoch++
	seed := e.newMessage(chat.RoleAssistant, e.greeting)
	e.store.Reset(seed)
	busy := e.busy
	e.mu.Unlock()

	e.notify(Event{Type: EventSessionReset, Message: &seed, Busy: busy})
	return seed
}

// Wait blocks until no dispatch is in flight or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	idle := e.idle
	e.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further submissions and cancels the dispatch in flight.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.cancel()
}

// begin marks the engine busy. Callers hold e.mu.
func (e *Engine) begin() uint64 {
	e.busy = true
	e.idle = make(chan struct{})
	return e.epoch
}

// finish clears busy and returns the channel to close once the settle events
// are out, so Wait callers observe them. Callers hold e.mu.
func (e *Engine) finish() chan struct{} {
	e.busy = false
	return e.idle
}

func (e *Engine) runReply(epoch uint64, history []chat.Message, text string) {
	reply, err := e.call(func(ctx context.Context) (string, error) {
		return e.replier.GenerateReply(ctx, history, text)
	})

	content := reply
	if err != nil {
		log.Printf("[dispatch] session=%s reply failed: %v", e.sessionID, err)
		content = e.texts.Failure()
	}

	e.mu.Lock()
	var replyMsg chat.Message
	current := epoch == e.epoch
	if current {
		replyMsg = e.newMessage(chat.RoleAssistant, content)
		if appendErr := e.store.Append(replyMsg); appendErr != nil {
			log.Printf("[dispatch] session=%s append reply: %v", e.sessionID, appendErr)
			current = false
		}
	}
	idle := e.finish()
	e.mu.Unlock()
	defer close(idle)

	if err != nil {
		e.notify(Event{Type: EventDispatchFailed, Error: err.Error()})
	}
	if current {
		e.notify(Event{Type: EventMessageAppended, Message: &replyMsg})
	} else {
		log.Printf("[dispatch] session=%s discarded reply after reset", e.sessionID)
	}
	e.notify(Event{Type: EventBusyChanged, Busy: false})
}

func (e *Engine) runAction(epoch uint64, placeholderID string, def catalog.Definition) {
	result, err := e.call(func(ctx context.Context) (string, error) {
		return e.executor.ExecuteAction(ctx, def.Kind)
	})

	patch := ActionPatch{Content: result, Status: chat.ActionCompleted}
	if strings.TrimSpace(result) == "" {
		patch.Content = e.texts.ResultFallback(def.Label)
	}
	if err != nil {
		log.Printf("[dispatch] session=%s action %s failed: %v", e.sessionID, def.Kind, err)
		patch = ActionPatch{Content: e.texts.Failure(), Status: chat.ActionFailed}
	}

	e.mu.Lock()
	var (
		settled   chat.Message
		settleErr error
	)
	current := epoch == e.epoch
	if current {
		settled, settleErr = e.store.UpdateAction(placeholderID, patch)
	}
	idle := e.finish()
	e.mu.Unlock()
	defer close(idle)

	if err != nil {
		e.notify(Event{Type: EventDispatchFailed, Error: err.Error()})
	}
	switch {
	case !current:
		log.Printf("[dispatch] session=%s discarded action %s after reset", e.sessionID, def.Kind)
	case settleErr != nil:
		log.Printf("[dispatch] session=%s settle action %s: %v", e.sessionID, def.Kind, settleErr)
	default:
		e.notify(Event{Type: EventActionSettled, Message: &settled})
	}
	e.notify(Event{Type: EventBusyChanged, Busy: false})
}

type callResult struct {
	text string
	err  error
}

// call runs fn once under the dispatch timeout. A result arriving after the
// timeout is dropped.
func (e *Engine) call(fn func(context.Context) (string, error)) (string, error) {
	ctx := e.ctx
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	done := make(chan callResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- callResult{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		text, err := fn(ctx)
		done <- callResult{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%w: %w", ErrCollaboratorFailure, res.err)
		}
		return res.text, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %w", ErrCollaboratorFailure, ctx.Err())
	}
}

// newMessage stamps a fresh id and timestamp. Callers hold e.mu or own the
// engine exclusively.
func (e *Engine) newMessage(role chat.Role, content string) chat.Message {
	e.seq++
	now := e.now()
	return chat.Message{
		ID:          fmt.Sprintf("%06d", e.seq),
		Role:        role,
		Content:     content,
		CreatedAt:   now.UTC(),
		DisplayTime: now.Format(chat.DisplayLayout),
	}
}

func (e *Engine) notify(evt Event) {
	if e.notifier == nil {
		return
	}
	evt.SessionID = e.sessionID
	e.notifier.Notify(evt)
}
