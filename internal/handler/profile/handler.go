package profile

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/padel-assistant/backend/internal/model/catalog"
	"github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
	"github.com/zhouzirui/padel-assistant/backend/pkg/utils"
)

// Handler 助手 profile 的HTTP处理器
type Handler struct {
	profiles profile.Store
}

// New 创建profile处理器
func New(profiles profile.Store) *Handler {
	return &Handler{
		profiles: profiles,
	}
}

// RegisterRoutes 注册profile相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/profiles", h.handleListProfiles)
	r.Get("/profiles/{profileID}/categories", h.handleListCategories)
	r.Get("/profiles/{profileID}/categories/{category}/actions", h.handleListActions)
}

// handleListProfiles 列出所有profile
func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	items := h.profiles.List()
	summaries := make([]profile.Summary, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, item.Summary())
	}
	utils.RespondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	registry, ok := h.registry(w, r)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, registry.Categories())
}

func (h *Handler) handleListActions(w http.ResponseWriter, r *http.Request) {
	registry, ok := h.registry(w, r)
	if !ok {
		return
	}

	defs, err := registry.ActionsIn(chi.URLParam(r, "category"))
	if errors.Is(err, catalog.ErrCategoryNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.RespondJSON(w, http.StatusOK, defs)
}

func (h *Handler) registry(w http.ResponseWriter, r *http.Request) (*catalog.Registry, bool) {
	p, ok := h.profiles.FindByID(chi.URLParam(r, "profileID"))
	if !ok {
		utils.RespondError(w, http.StatusNotFound, "profile not found")
		return nil, false
	}

	registry, err := p.Registry()
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return registry, true
}
