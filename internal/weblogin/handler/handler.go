// Package handler exposes the partner-facing web login endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bluenumberfoundation/humanid-core/internal/weblogin/service"
	"github.com/bluenumberfoundation/humanid-core/internal/weblogin/token"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/httputil"
	"github.com/bluenumberfoundation/humanid-core/internal/platform/middleware"
)

// Partner requests authenticate with a credential pair in these headers.
const (
	headerClientID     = "Client-Id"
	headerClientSecret = "Client-Secret"
)

// Service defines the web login operations the handler fronts.
type Service interface {
	RequestSession(ctx context.Context, in service.RequestSessionInput) (*service.RequestSessionResult, error)
	LoginURLForClient(ctx context.Context, in service.LoginURLRequest) (string, error)
	ValidateToken(ctx context.Context, in service.ValidateTokenInput) (*service.ValidateTokenResult, error)
}

// Handler wires web login endpoints to the orchestrator.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a web login handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts web login endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/web-login", func(r chi.Router) {
		r.Post("/session", h.HandleRequestSession)
		r.Get("/url", h.HandleGetLoginURL)
		r.Post("/token/verify", h.HandleVerifyToken)
	})
}

func clientPair(r *http.Request) (string, string, bool) {
	id := strings.TrimSpace(r.Header.Get(headerClientID))
	secret := strings.TrimSpace(r.Header.Get(headerClientSecret))
	return id, secret, id != "" && secret != ""
}

// HandleRequestSession handles POST /web-login/session.
func (h *Handler) HandleRequestSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, secret, ok := clientPair(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "client credential required"))
		return
	}

	result, err := h.service.RequestSession(ctx, service.RequestSessionInput{
		ClientID:     id,
		ClientSecret: secret,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "session request rejected",
			"request_id", middleware.GetRequestID(ctx),
			"client_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleGetLoginURL handles GET /web-login/url.
func (h *Handler) HandleGetLoginURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, secret, ok := clientPair(r)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "client credential required"))
		return
	}

	loginURL, err := h.service.LoginURLForClient(ctx, service.LoginURLRequest{
		ClientID:        id,
		ClientSecret:    secret,
		Language:        r.URL.Query().Get("lang"),
		PriorityCountry: r.URL.Query().Get("priority_country"),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "login url request rejected",
			"request_id", middleware.GetRequestID(ctx),
			"client_id", id,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"web_login_url": loginURL})
}

// HandleVerifyToken handles POST /web-login/token/verify.
func (h *Handler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[VerifyTokenRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.ValidateToken(ctx, service.ValidateTokenInput{
		Token:           req.Token,
		ExpectedPurpose: token.PurposeRequestLoginOTP,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "token verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// VerifyTokenRequest is the HTTP request body for POST /web-login/token/verify.
type VerifyTokenRequest struct {
	Token string `json:"token"`
}

// Validate implements httputil.Validatable.
func (r *VerifyTokenRequest) Validate() error {
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}
