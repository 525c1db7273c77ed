// Package handler exposes the console operator login endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/go-chi/chi/v5"

	"github.com/bluenumberfoundation/humanid-core/internal/console"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/httputil"
	"github.com/bluenumberfoundation/humanid-core/internal/platform/middleware"
)

// Service defines the console auth operations the handler fronts.
type Service interface {
	Login(ctx context.Context, email, password string) (*console.LoginResult, error)
}

// Handler wires the console login endpoint to the console service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a console auth handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts console auth endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/login", h.HandleLogin)
}

// HandleLogin handles POST /console/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[loginRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "console login rejected",
			"request_id", middleware.GetRequestID(ctx),
			"email", req.Email,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements httputil.Validatable.
func (r *loginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	if !govalidator.IsEmail(r.Email) {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if r.Password == "" {
		return dErrors.New(dErrors.CodeValidation, "password is required")
	}
	return nil
}
