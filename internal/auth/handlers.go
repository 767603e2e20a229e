package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"userorg-backend/internal/models"
	"userorg-backend/internal/storage"
	"userorg-backend/internal/validate"
)

// storeTimeout bounds every store call so a stalled database fails the
// request instead of hanging it.
const storeTimeout = 5 * time.Second

// Store is the identity store the handlers depend on. *storage.Storage
// implements it; tests substitute a fake.
type Store interface {
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUserWithOrganisation(ctx context.Context, user *models.User, org *models.Organisation) error
}

// EventPublisher announces successful registrations. Publishing is
// best-effort; failures never fail the request.
type EventPublisher interface {
	UserRegistered(ctx context.Context, user *models.User, orgID string) error
}

type Handler struct {
	store  Store
	hasher *Hasher
	issuer *TokenIssuer
	events EventPublisher
	log    *zap.Logger
}

// NewHandler wires the register/login flows. events may be nil when no
// publisher is configured.
func NewHandler(store Store, hasher *Hasher, issuer *TokenIssuer, events EventPublisher, logger *zap.Logger) *Handler {
	return &Handler{
		store:  store,
		hasher: hasher,
		issuer: issuer,
		events: events,
		log:    logger,
	}
}

// Register creates a user and their default organisation, then returns a
// bearer token.
// @Summary Register a new user
// @Description Registers a user, provisions their default organisation, and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Success 201 {object} models.SuccessResponse
// @Failure 422 {object} models.ValidationResponse
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var payload models.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidation(w, []models.FieldError{{Field: "body", Message: "Invalid JSON body"}})
		return
	}

	input, fieldErrs := validate.Registration(payload)
	if len(fieldErrs) > 0 {
		writeValidation(w, fieldErrs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	existing, err := h.store.FindUserByEmail(ctx, input.Email)
	if err != nil {
		h.serverError(w, "register: lookup email", err)
		return
	}
	if existing != nil {
		writeEmailConflict(w)
		return
	}

	hash, err := h.hasher.Hash(input.Password)
	if err != nil {
		h.serverError(w, "register: hash password", err)
		return
	}

	user := &models.User{
		UserID:       uuid.New().String(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hash,
		Phone:        input.Phone,
	}
	org := &models.Organisation{
		OrgID:       uuid.New().String(),
		Name:        fmt.Sprintf("%s's Organisation", input.FirstName),
		Description: "",
	}

	// The unique constraint is the real uniqueness guarantee; the lookup
	// above only improves the common-case error. A race loser lands here.
	if err := h.store.CreateUserWithOrganisation(ctx, user, org); err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			writeEmailConflict(w)
			return
		}
		h.serverError(w, "register: provision user", err)
		return
	}

	token, err := h.issuer.Issue(user.UserID, user.Email)
	if err != nil {
		h.serverError(w, "register: issue token", err)
		return
	}

	if h.events != nil {
		if err := h.events.UserRegistered(ctx, user, org.OrgID); err != nil {
			h.log.Warn("registration event publish failed", zap.Error(err))
		}
	}

	writeJSON(w, http.StatusCreated, models.SuccessResponse{
		Status:  "success",
		Message: "Registration successful",
		Data: models.AuthData{
			AccessToken: token,
			User:        models.PublicUser(user),
		},
	})
}

// Login authenticates a user by email and password.
// @Summary Log a user in
// @Description Verifies credentials and returns an access token
// @Tags auth
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 422 {object} models.ValidationResponse
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload models.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeValidation(w, []models.FieldError{{Field: "body", Message: "Invalid JSON body"}})
		return
	}

	input, fieldErrs := validate.Login(payload)
	if len(fieldErrs) > 0 {
		writeValidation(w, fieldErrs)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), storeTimeout)
	defer cancel()

	user, err := h.store.FindUserByEmail(ctx, input.Email)
	if err != nil {
		h.serverError(w, "login: lookup email", err)
		return
	}

	// An unknown email and a wrong password answer identically so the
	// response never reveals whether an account exists.
	if user == nil || !h.hasher.Verify(input.Password, user.PasswordHash) {
		writeUnauthorized(w)
		return
	}

	token, err := h.issuer.Issue(user.UserID, user.Email)
	if err != nil {
		h.serverError(w, "login: issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SuccessResponse{
		Status:  "success",
		Message: "Login successful",
		Data: models.AuthData{
			AccessToken: token,
			User:        models.PublicUser(user),
		},
	})
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	// Dependency failures are logged in full here and reported generically;
	// the client never sees driver or hasher internals.
	h.log.Error(op, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Status:     "error",
		Message:    "An error occurred",
		StatusCode: http.StatusInternalServerError,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeValidation(w http.ResponseWriter, errs []models.FieldError) {
	writeJSON(w, http.StatusUnprocessableEntity, models.ValidationResponse{Errors: errs})
}

func writeEmailConflict(w http.ResponseWriter) {
	writeValidation(w, []models.FieldError{{Field: "email", Message: "Email already in use"}})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{
		Status:     "Bad request",
		Message:    "Authentication failed",
		StatusCode: http.StatusUnauthorized,
	})
}
