package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
)

const greeting = "¿En qué puedo ayudarte?"

// gate blocks collaborators until the test releases them.
type gate struct {
	started chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gate) wait(ctx context.Context) error {
	g.started <- struct{}{}
	select {
	case <-g.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func testRegistry(t *testing.T) *catalog.Registry {
	t.Helper()
	r, err := catalog.NewRegistry([]catalog.Category{
		{Name: "Moderación", Actions: []catalog.Definition{
			{Kind: "moderate_content", Label: "Moderar Contenido"},
			{Kind: "ban_user", Label: "Sancionar Usuario"},
		}},
		{Name: "Torneos", Actions: []catalog.Definition{
			{Kind: "approve_tournament", Label: "Aprobar Torneo"},
		}},
	})
	require.NoError(t, err)
	return r
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Notify(evt Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, evt := range r.events {
		out[i] = evt.Type
	}
	return out
}

func newTestEngine(t *testing.T, replier ReplyGenerator, executor ActionExecutor, timeout time.Duration) (*Engine, *recorder) {
	t.Helper()
	rec := &recorder{}
	if replier == nil {
		replier = ReplyFunc(func(context.Context, []chat.Message, string) (string, error) {
			return "respuesta", nil
		})
	}
	if executor == nil {
		executor = ActionFunc(func(context.Context, string) (string, error) {
			return "hecho", nil
		})
	}
	e, err := NewEngine(EngineConfig{
		SessionID: "s-1",
		Greeting:  greeting,
		Registry:  testRegistry(t),
		Replier:   replier,
		Executor:  executor,
		Texts:     profile.Profile{},
		Notifier:  rec,
		Timeout:   timeout,
	})
	require.NoError(t, err)
	t.Cleanup(e.Close)
	return e, rec
}

func waitIdle(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
}

func TestEngineStartsWithGreeting(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil, 0)

	msgs := e.Store().All()
	require.Len(t, msgs, 1)
	require.Equal(t, chat.RoleAssistant, msgs[0].Role)
	require.Equal(t, greeting, msgs[0].Content)
	require.Nil(t, msgs[0].Action)
	require.False(t, e.Busy())
}

func TestEngineTextRoundTrip(t *testing.T) {
	g := newGate()
	var seen []chat.Message
	replier := ReplyFunc(func(ctx context.Context, history []chat.Message, text string) (string, error) {
		seen = history
		if err := g.wait(ctx); err != nil {
			return "", err
		}
		return "Contamos con 12 canchas disponibles para reserva.", nil
	})
	e, _ := newTestEngine(t, replier, nil, 0)

	require.True(t, e.SubmitText("¿Hay cancha libre?"))
	<-g.started

	msgs := e.Store().All()
	require.Len(t, msgs, 2)
	require.Equal(t, chat.RoleUser, msgs[1].Role)
	require.Equal(t, "¿Hay cancha libre?", msgs[1].Content)
	require.True(t, e.Busy())

	close(g.release)
	waitIdle(t, e)

	msgs = e.Store().All()
	require.Len(t, msgs, 3)
	require.Equal(t, chat.RoleAssistant, msgs[2].Role)
	require.Equal(t, "Contamos con 12 canchas disponibles para reserva.", msgs[2].Content)
	require.False(t, e.Busy())
	require.Len(t, seen, 2)
	require.Equal(t, "¿Hay cancha libre?", seen[1].Content)
}

func TestEngineActionSettlesPlaceholderInPlace(t *testing.T) {
	g := newGate()
	executor := ActionFunc(func(ctx context.Context, kind string) (string, error) {
		if err := g.wait(ctx); err != nil {
			return "", err
		}
		return "Se ha aplicado la sanción temporal al usuario especificado.", nil
	})
	e, rec := newTestEngine(t, nil, executor, 0)

	accepted, err := e.InvokeAction("ban_user")
	require.NoError(t, err)
	require.True(t, accepted)
	<-g.started

	msgs := e.Store().All()
	require.Len(t, msgs, 2)
	placeholder := msgs[1]
	require.Equal(t, "Ejecutando acción: Sancionar Usuario...", placeholder.Content)
	require.Equal(t, chat.ActionPending, placeholder.Action.Status)
	require.Equal(t, "ban_user", placeholder.Action.Kind)

	close(g.release)
	waitIdle(t, e)

	msgs = e.Store().All()
	require.Len(t, msgs, 2)
	require.Equal(t, placeholder.ID, msgs[1].ID)
	require.Equal(t, placeholder.CreatedAt, msgs[1].CreatedAt)
	require.Equal(t, "Se ha aplicado la sanción temporal al usuario especificado.", msgs[1].Content)
	require.Equal(t, chat.ActionCompleted, msgs[1].Action.Status)
	require.Equal(t, greeting, msgs[0].Content)
	require.Contains(t, rec.types(), EventActionSettled)
}

func TestEngineEmptyActionResultUsesFallback(t *testing.T) {
	executor := ActionFunc(func(context.Context, string) (string, error) { return "", nil })
	e, _ := newTestEngine(t, nil, executor, 0)

	accepted, err := e.InvokeAction("approve_tournament")
	require.NoError(t, err)
	require.True(t, accepted)
	waitIdle(t, e)

	msgs := e.Store().All()
	require.Equal(t, "Acción completada: Aprobar Torneo", msgs[1].Content)
	require.Equal(t, chat.ActionCompleted, msgs[1].Action.Status)
}

func TestEngineRejectsWhileBusy(t *testing.T) {
	g := newGate()
	replier := ReplyFunc(func(ctx context.Context, _ []chat.Message, _ string) (string, error) {
		return "ok", g.wait(ctx)
	})
	e, _ := newTestEngine(t, replier, nil, 0)

	require.True(t, e.SubmitText("primero"))
	<-g.started

	require.False(t, e.SubmitText("segundo"))
	accepted, err := e.InvokeAction("ban_user")
	require.NoError(t, err)
	require.False(t, accepted)
	require.Len(t, e.Store().All(), 2)

	close(g.release)
	waitIdle(t, e)
	require.Len(t, e.Store().All(), 3)
}

func TestEngineIgnoresBlankText(t *testing.T) {
	e, rec := newTestEngine(t, nil, nil, 0)

	require.False(t, e.SubmitText(""))
	require.False(t, e.SubmitText("   \n\t"))
	require.Len(t, e.Store().All(), 1)
	require.False(t, e.Busy())
	require.Empty(t, rec.types())
}

func TestEngineUnknownActionIsNotFound(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil, 0)

	accepted, err := e.InvokeAction("launch_rocket")
	require.ErrorIs(t, err, ErrActionNotFound)
	require.ErrorIs(t, err, ErrNotFound)
	require.False(t, accepted)
	require.Len(t, e.Store().All(), 1)
	require.False(t, e.Busy())
}

func TestEngineReplyFailureAppendsApology(t *testing.T) {
	replier := ReplyFunc(func(context.Context, []chat.Message, string) (string, error) {
		return "", errors.New("upstream unavailable")
	})
	e, rec := newTestEngine(t, replier, nil, 0)

	require.True(t, e.SubmitText("hola"))
	waitIdle(t, e)

	msgs := e.Store().All()
	require.Len(t, msgs, 3)
	require.Equal(t, profile.Profile{}.Failure(), msgs[2].Content)
	require.False(t, e.Busy())
	require.Contains(t, rec.types(), EventDispatchFailed)

	require.True(t, e.SubmitText("otra vez"))
	waitIdle(t, e)
}

func TestEngineActionFailureMarksFailed(t *testing.T) {
	executor := ActionFunc(func(context.Context, string) (string, error) {
		panic("boom")
	})
	e, _ := newTestEngine(t, nil, executor, 0)

	accepted, err := e.InvokeAction("moderate_content")
	require.NoError(t, err)
	require.True(t, accepted)
	waitIdle(t, e)

	msgs := e.Store().All()
	require.Len(t, msgs, 2)
	require.Equal(t, chat.ActionFailed, msgs[1].Action.Status)
	require.Equal(t, profile.Profile{}.Failure(), msgs[1].Content)
	require.False(t, e.Busy())
}

func TestEngineTimeoutSettlesAction(t *testing.T) {
	executor := ActionFunc(func(ctx context.Context, _ string) (string, error) {
		time.Sleep(500 * time.Millisecond)
		return "tarde", nil
	})
	e, _ := newTestEngine(t, nil, executor, 20*time.Millisecond)

	accepted, err := e.InvokeAction("ban_user")
	require.NoError(t, err)
	require.True(t, accepted)
	waitIdle(t, e)

	msgs := e.Store().All()
	require.Equal(t, chat.ActionFailed, msgs[1].Action.Status)
	require.False(t, e.Busy())
}

func TestEngineResetClearsToGreeting(t *testing.T) {
	e, rec := newTestEngine(t, nil, nil, 0)

	require.True(t, e.SubmitText("hola"))
	waitIdle(t, e)
	first := e.Store().All()[0]

	seed := e.Reset()
	msgs := e.Store().All()
	require.Len(t, msgs, 1)
	require.Equal(t, greeting, msgs[0].Content)
	require.Equal(t, seed.ID, msgs[0].ID)
	require.NotEqual(t, first.ID, seed.ID)
	require.Contains(t, rec.types(), EventSessionReset)

	e.Reset()
	require.Len(t, e.Store().All(), 1)
}

func TestEngineResetDiscardsInFlightResult(t *testing.T) {
	g := newGate()
	executor := ActionFunc(func(ctx context.Context, _ string) (string, error) {
		if err := g.wait(ctx); err != nil {
			return "", err
		}
		return "hecho", nil
	})
	e, _ := newTestEngine(t, nil, executor, 0)

	accepted, err := e.InvokeAction("ban_user")
	require.NoError(t, err)
	require.True(t, accepted)
	<-g.started

	e.Reset()
	require.True(t, e.Busy())

	close(g.release)
	waitIdle(t, e)

	msgs := e.Store().All()
	require.Len(t, msgs, 1)
	require.Equal(t, greeting, msgs[0].Content)
	require.Nil(t, msgs[0].Action)
	require.False(t, e.Busy())
}

func TestEngineIDsAreUnique(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil, 0)

	for i := 0; i < 3; i++ {
		require.True(t, e.SubmitText(strings.Repeat("x", i+1)))
		waitIdle(t, e)
	}

	seen := map[string]bool{}
	for _, msg := range e.Store().All() {
		require.False(t, seen[msg.ID], "duplicate id %s", msg.ID)
		seen[msg.ID] = true
	}

	e.Reset()
	require.True(t, e.SubmitText("después"))
	waitIdle(t, e)
	for _, msg := range e.Store().All() {
		require.False(t, seen[msg.ID], "id %s reused after reset", msg.ID)
	}
}

func TestEngineCloseRejectsSubmissions(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil, 0)
	e.Close()

	require.False(t, e.SubmitText("hola"))
	accepted, err := e.InvokeAction("ban_user")
	require.NoError(t, err)
	require.False(t, accepted)
}

func TestEngineWaitHonoursContext(t *testing.T) {
	g := newGate()
	replier := ReplyFunc(func(ctx context.Context, _ []chat.Message, _ string) (string, error) {
		return "ok", g.wait(ctx)
	})
	e, _ := newTestEngine(t, replier, nil, 0)

	require.True(t, e.SubmitText("hola"))
	<-g.started

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, e.Wait(ctx), context.DeadlineExceeded)

	close(g.release)
	waitIdle(t, e)
}
