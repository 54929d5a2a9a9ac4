package chat

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	chatService "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
	"github.com/zhouzirui/padel-assistant/backend/pkg/utils"
)

// Handler 会话服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
}

// New 创建会话处理器
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{
		chatSvc: chatSvc,
	}
}

// RegisterRoutes 注册会话相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/session", h.handleCreateSession)
	r.Route("/session/{sessionID}", func(r chi.Router) {
		r.Get("/", h.handleGetState)
		r.Delete("/", h.handleCloseSession)
		r.Get("/messages", h.handleListMessages)
		r.Post("/messages", h.handleSubmitText)
		r.Post("/actions", h.handleInvokeAction)
		r.Post("/reset", h.handleReset)
		r.Put("/category", h.handleSetCategory)
		r.Put("/view", h.handleSetView)
	})
}

type acceptedResponse struct {
	Accepted bool `json:"accepted"`
	Busy     bool `json:"busy"`
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProfileID string `json:"profileId"`
	}

	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.chatSvc.CreateSession(r.Context(), strings.TrimSpace(payload.ProfileID))
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleGetState(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, controller.State())
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	if err := h.chatSvc.CloseSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, messages)
}

// handleSubmitText 提交用户消息，回复异步追加
func (h *Handler) handleSubmitText(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	accepted := controller.SubmitText(payload.Text)
	utils.RespondJSON(w, http.StatusAccepted, acceptedResponse{Accepted: accepted, Busy: controller.IsBusy()})
}

// handleInvokeAction 触发目录中的动作
func (h *Handler) handleInvokeAction(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	var payload struct {
		Kind string `json:"kind"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil || payload.Kind == "" {
		utils.RespondError(w, http.StatusBadRequest, "kind is required")
		return
	}

	accepted, err := controller.InvokeAction(payload.Kind)
	if err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusAccepted, acceptedResponse{Accepted: accepted, Busy: controller.IsBusy()})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	messages := controller.Reset()
	utils.RespondJSON(w, http.StatusOK, messages)
}

func (h *Handler) handleSetCategory(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	var payload struct {
		Category string `json:"category"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := controller.SetActiveCategory(payload.Category); err != nil {
		utils.RespondServiceError(w, err)
		return
	}
	utils.RespondJSON(w, http.StatusOK, controller.State())
}

func (h *Handler) handleSetView(w http.ResponseWriter, r *http.Request) {
	controller, ok := h.controller(w, r)
	if !ok {
		return
	}

	var payload struct {
		Expanded *bool `json:"expanded"`
	}
	if err := utils.DecodeJSON(r, &payload); err != nil || payload.Expanded == nil {
		utils.RespondError(w, http.StatusBadRequest, "expanded is required")
		return
	}

	controller.SetExpanded(*payload.Expanded)
	utils.RespondJSON(w, http.StatusOK, controller.State())
}

func (h *Handler) controller(w http.ResponseWriter, r *http.Request) (*chatService.Controller, bool) {
	controller, err := h.chatSvc.Controller(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		utils.RespondServiceError(w, err)
		return nil, false
	}
	return controller, true
}
