package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/z-tavern/chat/internal/handler/ask"
	middlewarePkg "github.com/zhouzirui/z-tavern/chat/internal/middleware"
	"github.com/zhouzirui/z-tavern/chat/pkg/utils"
)

// NewRouter wires HTTP routes to core services. answerer may be nil when
// no model is configured.
func NewRouter(answerer ask.Answerer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS(allowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		if answerer == nil {
			status = "degraded"
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": status})
	})

	ask.New(answerer).RegisterRoutes(r)

	return r
}
