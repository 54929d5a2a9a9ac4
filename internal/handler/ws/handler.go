package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/padel-assistant/backend/internal/handler/stream"
	chatservice "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
	"github.com/zhouzirui/padel-assistant/backend/pkg/utils"
)

const (
	readTimeout      = 60 * time.Second
	pingInterval     = 54 * time.Second
	writeTimeout     = 10 * time.Second
	subscriberBuffer = 32
)

// Handler WebSocket会话处理器
type Handler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
}

// New 创建WebSocket处理器
func New(chatSvc *chatservice.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type outgoingMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"sessionId,omitempty"`
	Data      any    `json:"data,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	controller, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] new connection for session: %s", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, unsubscribe := controller.Subscribe(subscriberBuffer)
	defer unsubscribe()

	outbox := make(chan outgoingMessage, 8)
	outbox <- outgoingMessage{Type: "snapshot", SessionID: sessionID, Data: stream.NewSnapshot(controller)}

	go h.writeLoop(ctx, cancel, conn, sessionID, events, outbox)
	go h.pingLoop(ctx, conn)

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		var reply outgoingMessage
		if msg.SessionID != "" && msg.SessionID != sessionID {
			reply = errorMessage("session mismatch")
		} else {
			reply = h.handleMessage(controller, &msg)
		}
		reply.SessionID = sessionID

		select {
		case outbox <- reply:
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) handleMessage(controller *chatservice.Controller, msg *inboundMessage) outgoingMessage {
	switch msg.Type {
	case "text":
		var payload struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return errorMessage("invalid text payload")
		}
		return ackMessage(msg.Type, controller.SubmitText(payload.Text), controller)

	case "action":
		var payload struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil || payload.Kind == "" {
			return errorMessage("invalid action payload")
		}
		accepted, err := controller.InvokeAction(payload.Kind)
		if err != nil {
			return errorMessage(err.Error())
		}
		return ackMessage(msg.Type, accepted, controller)

	case "reset":
		controller.Reset()
		return ackMessage(msg.Type, true, controller)

	case "category":
		var payload struct {
			Category string `json:"category"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err != nil {
			return errorMessage("invalid category payload")
		}
		if err := controller.SetActiveCategory(payload.Category); err != nil {
			return errorMessage(err.Error())
		}
		return ackMessage(msg.Type, true, controller)

	case "view":
		var payload struct {
			Expanded *bool `json:"expanded"`
		}
		if len(msg.Data) > 0 {
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				return errorMessage("invalid view payload")
			}
		}
		// Without an explicit value the view is toggled.
		if payload.Expanded == nil {
			controller.ToggleExpanded()
		} else {
			controller.SetExpanded(*payload.Expanded)
		}
		return ackMessage(msg.Type, true, controller)

	case "snapshot":
		return outgoingMessage{Type: "snapshot", Data: stream.NewSnapshot(controller)}

	default:
		return errorMessage("unsupported message type: " + msg.Type)
	}
}

// writeLoop is the only goroutine writing data frames to conn.
func (h *Handler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, sessionID string, events <-chan chatservice.Event, outbox <-chan outgoingMessage) {
	defer cancel()

	for {
		var msg outgoingMessage
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"),
					time.Now().Add(writeTimeout))
				conn.Close()
				return
			}
			msg = outgoingMessage{Type: string(evt.Type), SessionID: sessionID, Data: evt}
		case msg = <-outbox:
		}

		msg.Timestamp = time.Now().Unix()
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("[ws] write %s failed: %v", msg.Type, err)
			conn.Close()
			return
		}
	}
}

// pingLoop 定期发送ping消息
func (h *Handler) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}

func ackMessage(kind string, accepted bool, controller *chatservice.Controller) outgoingMessage {
	return outgoingMessage{
		Type: "ack",
		Data: map[string]any{
			"for":      kind,
			"accepted": accepted,
			"state":    controller.State(),
		},
	}
}

func errorMessage(message string) outgoingMessage {
	return outgoingMessage{
		Type: "error",
		Data: map[string]string{"message": message},
	}
}
