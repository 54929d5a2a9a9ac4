package stream

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/chat"
	chatService "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
	"github.com/zhouzirui/padel-assistant/backend/pkg/utils"
)

const (
	heartbeatInterval = 15 * time.Second
	subscriberBuffer  = 32
)

// Handler relays session events to the browser via Server-Sent Events
type Handler struct {
	chatSvc   *chatService.Service
	heartbeat time.Duration
}

// New creates a new stream handler
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc, heartbeat: heartbeatInterval}
}

// Snapshot is the first frame of every stream and websocket connection.
type Snapshot struct {
	State    chat.State     `json:"state"`
	Messages []chat.Message `json:"messages"`
}

// NewSnapshot captures the current state and transcript of a session.
func NewSnapshot(controller *chatService.Controller) Snapshot {
	return Snapshot{State: controller.State(), Messages: controller.Messages()}
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	controller, err := h.chatSvc.Controller(r.Context(), sessionID)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	// Subscribe before the snapshot so nothing between the two is lost.
	events, cancel := controller.Subscribe(subscriberBuffer)
	defer cancel()

	utils.SetupSSEHeaders(w)
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	log.Printf("[sse] opening stream for session=%s", sessionID)

	if err := utils.SendSSEEvent(w, flusher, "snapshot", NewSnapshot(controller)); err != nil {
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[sse] closing stream for session=%s", sessionID)
			return
		case evt, ok := <-events:
			if !ok {
				log.Printf("[sse] session=%s closed", sessionID)
				return
			}
			if err := utils.SendSSEEvent(w, flusher, string(evt.Type), evt); err != nil {
				log.Printf("[sse] write failed for session=%s: %v", sessionID, err)
				return
			}
		case <-ticker.C:
			if err := utils.SendSSEComment(w, flusher, "heartbeat"); err != nil {
				return
			}
		}
	}
}
