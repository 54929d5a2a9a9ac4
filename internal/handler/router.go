package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/padel-assistant/backend/internal/handler/chat"
	"github.com/zhouzirui/padel-assistant/backend/internal/handler/profile"
	"github.com/zhouzirui/padel-assistant/backend/internal/handler/stream"
	"github.com/zhouzirui/padel-assistant/backend/internal/handler/ws"
	middlewarePkg "github.com/zhouzirui/padel-assistant/backend/internal/middleware"
	profileModel "github.com/zhouzirui/padel-assistant/backend/internal/model/profile"
	chatService "github.com/zhouzirui/padel-assistant/backend/internal/service/chat"
	"github.com/zhouzirui/padel-assistant/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(profiles profileModel.Store, chatSvc *chatService.Service) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"sessions": chatSvc.Count(),
		})
	})

	r.Route("/api", func(api chi.Router) {
		profile.New(profiles).RegisterRoutes(api)
		chat.New(chatSvc).RegisterRoutes(api)
		stream.New(chatSvc).RegisterRoutes(api)
		ws.New(chatSvc).RegisterRoutes(api)
	})

	return r
}
