package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	// Registers the generated API description with swag.
	_ "multichat/backend/docs"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Chats    *ChatHandler
	Sessions *SessionHandler
	Settings *SettingsHandler
	Setup    *SetupHandler
	Models   *ModelHandler
}

// NewRouter creates and configures a new chi router with all the application's routes.
func NewRouter(h Handlers, requestTimeout time.Duration) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// JSON routes get a request timeout.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			r.Get("/chats", h.Chats.GetChats)
			r.Get("/chats/{chatID}", h.Chats.GetChat)
			r.Delete("/chats/{chatID}", h.Chats.HandleDeleteChat)

			r.Post("/sessions", h.Sessions.HandleOpenSession)
			r.Get("/sessions/{sessionID}", h.Sessions.HandleGetSession)
			r.Delete("/sessions/{sessionID}", h.Sessions.HandleCloseSession)
			r.Post("/sessions/{sessionID}/questions", h.Sessions.HandleAsk)
			r.Put("/sessions/{sessionID}/question", h.Sessions.HandleUpdateQuestion)
			r.Post("/sessions/{sessionID}/retry", h.Sessions.HandleRetry)
			r.Post("/sessions/{sessionID}/edit", h.Sessions.HandleEdit)
			r.Put("/sessions/{sessionID}/title", h.Sessions.HandleUpdateTitle)
			r.Get("/sessions/{sessionID}/export", h.Sessions.HandleExport)

			r.Get("/settings/platforms", h.Settings.GetPlatforms)
			r.Put("/settings/platforms", h.Settings.UpdatePlatforms)
			r.Get("/settings/theme", h.Settings.GetTheme)
			r.Put("/settings/theme", h.Settings.UpdateTheme)

			r.Post("/setup", h.Setup.HandleSetup)
			r.Get("/setup/next", h.Setup.HandleNextStep)

			r.Get("/models", h.Models.HandleListModels)
		})

		// Streaming routes hold the connection open and must not time out.
		r.Group(func(r chi.Router) {
			r.Get("/sessions/{sessionID}/events", h.Sessions.HandleEvents)
			r.Post("/models/pull", h.Models.HandlePullModel)
		})
	})

	return r
}
