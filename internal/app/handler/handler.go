// Package handler exposes the console endpoints for app, credential and
// sandbox dev user management.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/bluenumberfoundation/humanid-core/internal/app/models"
	"github.com/bluenumberfoundation/humanid-core/internal/app/service"
	dErrors "github.com/bluenumberfoundation/humanid-core/pkg/domain-errors"
	"github.com/bluenumberfoundation/humanid-core/pkg/platform/httputil"
	"github.com/bluenumberfoundation/humanid-core/internal/platform/middleware"
)

// Service defines the console operations the handler fronts.
type Service interface {
	CreateApp(ctx context.Context, req *models.CreateAppRequest) (*service.CreateAppResult, error)
	GetApp(ctx context.Context, extID string) (*models.App, error)
	ListApps(ctx context.Context, ownerID string, page models.PageRequest) (*service.AppList, error)
	DeleteApp(ctx context.Context, extID string) error
	UpdateWebConfig(ctx context.Context, extID string, cfg *models.WebConfig) error

	CreateCredential(ctx context.Context, appExtID string, req *models.CreateCredentialRequest) (*models.Credential, error)
	ListCredentials(ctx context.Context, appExtID string, page models.PageRequest) (*service.CredentialList, error)
	ToggleCredentialStatus(ctx context.Context, appExtID, clientID string) (models.CredentialStatus, error)
	DeleteCredential(ctx context.Context, appExtID, clientID string) (*service.DeleteCredentialResult, error)
	UpdateCredentialName(ctx context.Context, clientID, name string) error

	RegisterDevUser(ctx context.Context, parser service.PhoneParser, req *service.RegisterDevUserRequest) error
	ListDevUsers(ctx context.Context, ownerType models.OwnerEntityType, ownerID string, page models.PageRequest) (*service.DevUserList, error)
	DeleteDevUser(ctx context.Context, extID string) error
}

// Handler wires console endpoints to the app service.
type Handler struct {
	service Service
	phones  service.PhoneParser
	logger  *slog.Logger
}

// New constructs a console handler.
func New(service Service, phones service.PhoneParser, logger *slog.Logger) *Handler {
	return &Handler{service: service, phones: phones, logger: logger}
}

// Register mounts console endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/apps", func(r chi.Router) {
		r.Post("/", h.HandleCreateApp)
		r.Get("/", h.HandleListApps)
		r.Route("/{extID}", func(r chi.Router) {
			r.Get("/", h.HandleGetApp)
			r.Delete("/", h.HandleDeleteApp)
			r.Put("/web-config", h.HandleUpdateWebConfig)
			r.Post("/credentials", h.HandleCreateCredential)
			r.Get("/credentials", h.HandleListCredentials)
			r.Patch("/credentials/{clientID}/status", h.HandleToggleCredential)
			r.Delete("/credentials/{clientID}", h.HandleDeleteCredential)
		})
	})
	r.Route("/credentials", func(r chi.Router) {
		r.Put("/{clientID}/name", h.HandleRenameCredential)
	})
	r.Route("/dev-users", func(r chi.Router) {
		r.Post("/", h.HandleRegisterDevUser)
		r.Get("/", h.HandleListDevUsers)
		r.Delete("/{extID}", h.HandleDeleteDevUser)
	})
}

func pageFromQuery(r *http.Request) models.PageRequest {
	var page models.PageRequest
	page.Skip, _ = strconv.Atoi(r.URL.Query().Get("skip"))
	page.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	return page
}

// HandleCreateApp handles POST /console/apps.
func (h *Handler) HandleCreateApp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[createAppRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.service.CreateApp(ctx, req.toModel())
	if err != nil {
		h.logError(ctx, "app creation failed", err, "name", req.Name)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

// HandleGetApp handles GET /console/apps/{extID}.
func (h *Handler) HandleGetApp(w http.ResponseWriter, r *http.Request) {
	app, err := h.service.GetApp(r.Context(), chi.URLParam(r, "extID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app)
}

// HandleListApps handles GET /console/apps.
func (h *Handler) HandleListApps(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListApps(r.Context(), r.URL.Query().Get("owner_id"), pageFromQuery(r))
	if err != nil {
		h.logError(r.Context(), "app listing failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleDeleteApp handles DELETE /console/apps/{extID}.
func (h *Handler) HandleDeleteApp(w http.ResponseWriter, r *http.Request) {
	extID := chi.URLParam(r, "extID")
	if err := h.service.DeleteApp(r.Context(), extID); err != nil {
		h.logError(r.Context(), "app deletion failed", err, "ext_id", extID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// HandleUpdateWebConfig handles PUT /console/apps/{extID}/web-config.
func (h *Handler) HandleUpdateWebConfig(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cfg, ok := httputil.DecodeAndPrepare[models.WebConfig](w, r, h.logger)
	if !ok {
		return
	}

	extID := chi.URLParam(r, "extID")
	if err := h.service.UpdateWebConfig(ctx, extID, cfg); err != nil {
		h.logError(ctx, "web config update failed", err, "ext_id", extID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// HandleCreateCredential handles POST /console/apps/{extID}/credentials.
func (h *Handler) HandleCreateCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateCredentialRequest](w, r, h.logger)
	if !ok {
		return
	}

	extID := chi.URLParam(r, "extID")
	cred, err := h.service.CreateCredential(ctx, extID, req)
	if err != nil {
		h.logError(ctx, "credential creation failed", err, "ext_id", extID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, cred)
}

// HandleListCredentials handles GET /console/apps/{extID}/credentials.
func (h *Handler) HandleListCredentials(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListCredentials(r.Context(), chi.URLParam(r, "extID"), pageFromQuery(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleToggleCredential handles PATCH /console/apps/{extID}/credentials/{clientID}/status.
func (h *Handler) HandleToggleCredential(w http.ResponseWriter, r *http.Request) {
	extID := chi.URLParam(r, "extID")
	clientID := chi.URLParam(r, "clientID")
	status, err := h.service.ToggleCredentialStatus(r.Context(), extID, clientID)
	if err != nil {
		h.logError(r.Context(), "credential toggle failed", err, "ext_id", extID, "client_id", clientID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"credential_status": string(status)})
}

// HandleDeleteCredential handles DELETE /console/apps/{extID}/credentials/{clientID}.
func (h *Handler) HandleDeleteCredential(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.DeleteCredential(r.Context(), chi.URLParam(r, "extID"), chi.URLParam(r, "clientID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// HandleRenameCredential handles PUT /console/credentials/{clientID}/name.
func (h *Handler) HandleRenameCredential(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[renameCredentialRequest](w, r, h.logger)
	if !ok {
		return
	}

	clientID := chi.URLParam(r, "clientID")
	if err := h.service.UpdateCredentialName(ctx, clientID, req.Name); err != nil {
		h.logError(ctx, "credential rename failed", err, "client_id", clientID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// HandleRegisterDevUser handles POST /console/dev-users.
func (h *Handler) HandleRegisterDevUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[registerDevUserRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.service.RegisterDevUser(ctx, h.phones, req.toModel()); err != nil {
		h.logError(ctx, "dev user registration failed", err, "owner_id", req.OwnerID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]bool{"registered": true})
}

// HandleListDevUsers handles GET /console/dev-users.
func (h *Handler) HandleListDevUsers(w http.ResponseWriter, r *http.Request) {
	ownerType, _ := strconv.Atoi(r.URL.Query().Get("owner_entity_type_id"))
	list, err := h.service.ListDevUsers(r.Context(),
		models.OwnerEntityType(ownerType),
		r.URL.Query().Get("owner_id"),
		pageFromQuery(r),
	)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

// HandleDeleteDevUser handles DELETE /console/dev-users/{extID}.
func (h *Handler) HandleDeleteDevUser(w http.ResponseWriter, r *http.Request) {
	extID := chi.URLParam(r, "extID")
	if err := h.service.DeleteDevUser(r.Context(), extID); err != nil {
		h.logError(r.Context(), "dev user deletion failed", err, "ext_id", extID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) logError(ctx context.Context, msg string, err error, attrs ...any) {
	args := append(attrs, "request_id", middleware.GetRequestID(ctx), "error", err)
	h.logger.ErrorContext(ctx, msg, args...)
}

type createAppRequest struct {
	OwnerEntityType int    `json:"owner_entity_type_id"`
	OwnerID         string `json:"owner_id"`
	Name            string `json:"name"`
}

// Validate implements httputil.Validatable. Domain-level validation runs in
// the model's own Validate; this only normalizes.
func (r *createAppRequest) Validate() error {
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.Name = strings.TrimSpace(r.Name)
	return nil
}

func (r *createAppRequest) toModel() *models.CreateAppRequest {
	return &models.CreateAppRequest{
		OwnerEntityType: models.OwnerEntityType(r.OwnerEntityType),
		OwnerID:         r.OwnerID,
		Name:            r.Name,
	}
}

type renameCredentialRequest struct {
	Name string `json:"name"`
}

// Validate implements httputil.Validatable.
func (r *renameCredentialRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

type registerDevUserRequest struct {
	OwnerEntityType int    `json:"owner_entity_type_id"`
	OwnerID         string `json:"owner_id"`
	CountryCode     string `json:"country_code"`
	PhoneNo         string `json:"phone_no"`
}

// Validate implements httputil.Validatable.
func (r *registerDevUserRequest) Validate() error {
	r.OwnerID = strings.TrimSpace(r.OwnerID)
	r.CountryCode = strings.TrimSpace(r.CountryCode)
	r.PhoneNo = strings.TrimSpace(r.PhoneNo)
	if r.OwnerID == "" {
		return dErrors.New(dErrors.CodeValidation, "owner_id is required")
	}
	if r.CountryCode == "" || r.PhoneNo == "" {
		return dErrors.New(dErrors.CodeValidation, "country_code and phone_no are required")
	}
	return nil
}

func (r *registerDevUserRequest) toModel() *service.RegisterDevUserRequest {
	return &service.RegisterDevUserRequest{
		OwnerEntityType: models.OwnerEntityType(r.OwnerEntityType),
		OwnerID:         r.OwnerID,
		CountryCode:     r.CountryCode,
		PhoneNo:         r.PhoneNo,
	}
}
