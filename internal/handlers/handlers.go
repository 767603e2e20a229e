package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"userorg-backend/internal/auth"
	"userorg-backend/internal/cache"
	"userorg-backend/internal/models"
	"userorg-backend/internal/services"
	"userorg-backend/internal/storage"
	"userorg-backend/internal/validate"
)

const storeTimeout = 5 * time.Second

// Store is the slice of the identity store these handlers use.
type Store interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetOrganisationsForUser(ctx context.Context, userID string) ([]models.Organisation, error)
	GetOrganisation(ctx context.Context, orgID string) (*models.Organisation, error)
	CreateOrganisation(ctx context.Context, org *models.Organisation, creatorID string) error
	IsMember(ctx context.Context, userID, orgID string) (bool, error)
	AddMember(ctx context.Context, userID, orgID string) error
	GetUsersInOrganisation(ctx context.Context, orgID string) ([]models.User, error)
}

type Handler struct {
	store Store
	cache cache.Client
	geo   *services.GeoWeatherClient
	log   *zap.Logger
}

// New wires the protected API handlers. cache may be nil when Redis is not
// configured.
func New(store Store, orgCache cache.Client, geo *services.GeoWeatherClient, logger *zap.Logger) *Handler {
	return &Handler{
		store: store,
		cache: orgCache,
		geo:   geo,
		log:   logger,
	}
}

// RegisterRoutes mounts the /api surface. requireAuth guards the
// bearer-token routes; member listing and member adding stay open, matching
// the original API.
func (h *Handler) RegisterRoutes(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/users/{id}", h.GetUser)
			r.Get("/organisations", h.GetOrganisations)
			r.Post("/organisations", h.CreateOrganisation)
			r.Get("/organisations/{orgId}", h.GetOrganisation)
		})

		r.Get("/organisations/{orgId}/users", h.GetOrganisationUsers)
		r.Post("/organisations/{orgId}/users", h.AddOrganisationUser)

		r.Get("/hello", h.Hello)
	})
}

// GetUser returns the authenticated caller's own record.
// @Summary Get a user record
// @Tags users
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/users/{id} [get]
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Unauthorized")
		return
	}

	userID := chi.URLParam(r, "id")
	// Records other than the caller's own answer as absent, so ids cannot
	// be probed through this endpoint.
	if userID != ident.UserID {
		writeError(w, http.StatusNotFound, "Not found", "User not found")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	user, err := h.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "Not found", "User not found")
			return
		}
		h.serverError(w, "get user", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{
		Status:  "success",
		Message: "User retrieved",
		Data:    map[string]any{"user": models.PublicUser(user)},
	})
}

// GetOrganisations lists the organisations the caller belongs to.
// @Summary List the caller's organisations
// @Tags organisations
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Security BearerAuth
// @Router /api/organisations [get]
func (h *Handler) GetOrganisations(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Unauthorized")
		return
	}

	if h.cache != nil {
		if orgs, err := h.cache.GetOrgList(ident.UserID); err == nil {
			h.writeOrgList(w, orgs)
			return
		} else if !errors.Is(err, cache.ErrMiss) {
			h.log.Warn("org list cache read failed", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	orgs, err := h.store.GetOrganisationsForUser(ctx, ident.UserID)
	if err != nil {
		h.serverError(w, "list organisations", err)
		return
	}

	if h.cache != nil {
		if err := h.cache.SetOrgList(ident.UserID, orgs); err != nil {
			h.log.Warn("org list cache write failed", zap.Error(err))
		}
	}

	h.writeOrgList(w, orgs)
}

func (h *Handler) writeOrgList(w http.ResponseWriter, orgs []models.Organisation) {
	writeJSON(w, http.StatusOK, models.SuccessResponse{
		Status:  "success",
		Message: "Organisations retrieved",
		Data:    map[string]any{"organisations": orgs},
	})
}

// CreateOrganisation creates an organisation and links the caller to it.
// @Summary Create an organisation
// @Tags organisations
// @Accept json
// @Produce json
// @Success 201 {object} models.SuccessResponse
// @Failure 422 {object} models.ValidationResponse
// @Security BearerAuth
// @Router /api/organisations [post]
func (h *Handler) CreateOrganisation(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Unauthorized")
		return
	}

	var input models.CreateOrganisationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeValidation(w, []models.FieldError{{Field: "body", Message: "Invalid JSON body"}})
		return
	}

	if errs := validate.Struct(input); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	org := &models.Organisation{
		OrgID:       uuid.New().String(),
		Name:        input.Name,
		Description: input.Description,
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.store.CreateOrganisation(ctx, org, ident.UserID); err != nil {
		h.serverError(w, "create organisation", err)
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateOrgList(ident.UserID); err != nil {
			h.log.Warn("org list cache invalidate failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, models.SuccessResponse{
		Status:  "success",
		Message: "Organisation created successfully",
		Data:    org,
	})
}

// GetOrganisation returns one organisation the caller belongs to.
// @Summary Get an organisation
// @Tags organisations
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BearerAuth
// @Router /api/organisations/{orgId} [get]
func (h *Handler) GetOrganisation(w http.ResponseWriter, r *http.Request) {
	ident, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "Unauthorized")
		return
	}

	orgID := chi.URLParam(r, "orgId")

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	member, err := h.store.IsMember(ctx, ident.UserID, orgID)
	if err != nil {
		h.serverError(w, "membership check", err)
		return
	}
	if !member {
		writeError(w, http.StatusNotFound, "Not found", "Organisation not found")
		return
	}

	org, err := h.store.GetOrganisation(ctx, orgID)
	if err != nil {
		if errors.Is(err, storage.ErrOrgNotFound) {
			writeError(w, http.StatusNotFound, "Not found", "Organisation not found")
			return
		}
		h.serverError(w, "get organisation", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{
		Status:  "success",
		Message: "Organisation retrieved",
		Data:    org,
	})
}

// GetOrganisationUsers lists an organisation's members.
// @Summary List organisation members
// @Tags organisations
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/organisations/{orgId}/users [get]
func (h *Handler) GetOrganisationUsers(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgId")

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	users, err := h.store.GetUsersInOrganisation(ctx, orgID)
	if err != nil {
		if errors.Is(err, storage.ErrOrgNotFound) {
			writeError(w, http.StatusNotFound, "Not found", "Organisation not found")
			return
		}
		h.serverError(w, "list organisation users", err)
		return
	}

	public := make([]models.UserData, 0, len(users))
	for i := range users {
		public = append(public, models.PublicUser(&users[i]))
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{
		Status:  "success",
		Message: "Users retrieved",
		Data:    map[string]any{"users": public},
	})
}

// AddOrganisationUser links a user to an organisation.
// @Summary Add a user to an organisation
// @Tags organisations
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ValidationResponse
// @Router /api/organisations/{orgId}/users [post]
func (h *Handler) AddOrganisationUser(w http.ResponseWriter, r *http.Request) {
	orgID := chi.URLParam(r, "orgId")

	var input models.AddMemberInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeValidation(w, []models.FieldError{{Field: "body", Message: "Invalid JSON body"}})
		return
	}

	if errs := validate.Struct(input); len(errs) > 0 {
		writeValidation(w, errs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	if err := h.store.AddMember(ctx, input.UserID, orgID); err != nil {
		switch {
		case errors.Is(err, storage.ErrOrgNotFound):
			writeError(w, http.StatusNotFound, "Not found", "Organisation not found")
		case errors.Is(err, storage.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "Not found", "User not found")
		default:
			h.serverError(w, "add organisation user", err)
		}
		return
	}

	if h.cache != nil {
		if err := h.cache.InvalidateOrgList(input.UserID); err != nil {
			h.log.Warn("org list cache invalidate failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{
		Status:  "success",
		Message: "User added to organisation successfully",
	})
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.log.Error(op, zap.Error(err))
	writeError(w, http.StatusInternalServerError, "error", "An error occurred")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeValidation(w http.ResponseWriter, errs []models.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, models.ValidationResponse{Errors: errs})
}

func writeError(w http.ResponseWriter, status int, statusText, message string) {
	writeJSON(w, status, models.ErrorResponse{
		Status:     statusText,
		Message:    message,
		StatusCode: status,
	})
}
