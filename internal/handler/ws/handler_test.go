package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
	chatservice "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
)

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func setup(t *testing.T) (*chatservice.Service, *httptest.Server) {
	t.Helper()
	factory := func(p profile.Profile) (chatservice.ReplyGenerator, chatservice.ActionExecutor, error) {
		replier := chatservice.ReplyFunc(func(context.Context, []chat.Message, string) (string, error) {
			return "Contamos con 12 canchas disponibles para reserva.", nil
		})
		executor := chatservice.ActionFunc(func(_ context.Context, kind string) (string, error) {
			return p.ActionResults[kind], nil
		})
		return replier, executor, nil
	}
	svc := chatservice.NewService(profile.NewMemoryStore(profile.Seed()), factory)

	r := chi.NewRouter()
	New(svc).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return svc, srv
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial err: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read err: %v", err)
		}
		if match(f) {
			return f
		}
	}
}

func TestWebSocketTextRoundTrip(t *testing.T) {
	svc, srv := setup(t)
	session, err := svc.CreateSession(context.Background(), "chatbot")
	if err != nil {
		t.Fatalf("CreateSession err: %v", err)
	}

	conn := dial(t, srv, session.ID)
	snapshot := readUntil(t, conn, func(f frame) bool { return f.Type == "snapshot" })
	if !strings.Contains(string(snapshot.Data), "¡Hola!") {
		t.Fatalf("snapshot missing greeting: %s", snapshot.Data)
	}

	if err := conn.WriteJSON(map[string]any{"type": "text", "data": map[string]string{"text": "¿Hay cancha?"}}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	reply := readUntil(t, conn, func(f frame) bool {
		if f.Type != string(chatservice.EventMessageAppended) {
			return false
		}
		var evt chatservice.Event
		_ = json.Unmarshal(f.Data, &evt)
		return evt.Message != nil && evt.Message.Role == chat.RoleAssistant
	})
	if !strings.Contains(string(reply.Data), "12 canchas") {
		t.Fatalf("unexpected reply frame: %s", reply.Data)
	}
}

func TestWebSocketRejectsUnknownActions(t *testing.T) {
	svc, srv := setup(t)
	session, _ := svc.CreateSession(context.Background(), "admin")

	conn := dial(t, srv, session.ID)
	if err := conn.WriteJSON(map[string]any{"type": "action", "data": map[string]string{"kind": "launch_rocket"}}); err != nil {
		t.Fatalf("write err: %v", err)
	}

	f := readUntil(t, conn, func(f frame) bool { return f.Type == "error" })
	if !strings.Contains(string(f.Data), "not found") {
		t.Fatalf("unexpected error frame: %s", f.Data)
	}

	if err := conn.WriteJSON(map[string]any{"type": "view"}); err != nil {
		t.Fatalf("write err: %v", err)
	}
	readUntil(t, conn, func(f frame) bool { return f.Type == "ack" })

	controller, _ := svc.Controller(context.Background(), session.ID)
	if !controller.Expanded() {
		t.Fatal("expected view to be toggled")
	}
}

func TestWebSocketUnknownSession(t *testing.T) {
	_, srv := setup(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}
