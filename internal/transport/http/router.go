// Package httptransport assembles the public HTTP surface: partner web login
// endpoints, admin console endpoints and operational probes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apphandler "github.com/bluenumberfoundation/humanid-core/internal/app/handler"
	consolehandler "github.com/bluenumberfoundation/humanid-core/internal/console/handler"
	"github.com/bluenumberfoundation/humanid-core/internal/platform/metrics"
	"github.com/bluenumberfoundation/humanid-core/internal/platform/middleware"
	webloginhandler "github.com/bluenumberfoundation/humanid-core/internal/weblogin/handler"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/httputil"
)

// Deps is everything the router mounts.
type Deps struct {
	Console  *consolehandler.Handler
	Apps     *apphandler.Handler
	WebLogin *webloginhandler.Handler

	AdminToken       string
	AuthorizeConsole func(token string) error
	Logger           *slog.Logger
}

// NewRouter wires all endpoints. Console management routes sit behind the
// admin token / console session guard; the login endpoint that issues console
// sessions does not.
func NewRouter(deps Deps) http.Handler {
	start := time.Now()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"uptime_seconds": int64(time.Since(start).Seconds()),
		})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	deps.WebLogin.Register(r)

	r.Route("/console", func(r chi.Router) {
		deps.Console.Register(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireConsoleAuth(deps.AdminToken, deps.AuthorizeConsole, deps.Logger))
			deps.Apps.Register(r)
		})
	})

	return r
}
