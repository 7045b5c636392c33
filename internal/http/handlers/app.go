package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"qrkot/internal/domain"
	"qrkot/internal/middleware"
	"qrkot/internal/service"
)

// CharityService is the use-case surface consumed by the HTTP handlers.
type CharityService interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
	CreateProject(ctx context.Context, in service.ProjectCreate) (domain.Project, error)
	UpdateProject(ctx context.Context, id string, in service.ProjectUpdate) (domain.Project, error)
	DeleteProject(ctx context.Context, id string) (domain.Project, error)
	CreateDonation(ctx context.Context, userID string, in service.DonationCreate) (domain.Donation, error)
	ListDonations(ctx context.Context) ([]domain.Donation, error)
	ListUserDonations(ctx context.Context, userID string) ([]domain.Donation, error)
}

type App struct {
	Charity        CharityService
	Logger         zerolog.Logger
	AppTitle       string
	AppDescription string
}

func NewApp(charity CharityService, logger zerolog.Logger) *App {
	return &App{Charity: charity, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// error writes the error envelope with a message in the request locale.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, errCode string) {
	a.json(w, code, errorBody{Error: errorDetail{
		Code:      errCode,
		Message:   message(middleware.LocaleFromContext(r.Context()), errCode),
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}})
}

// StatusError adapts App.error to the middleware error callback.
func (a *App) StatusError(w http.ResponseWriter, r *http.Request, status int) {
	switch status {
	case http.StatusUnauthorized:
		a.error(w, r, status, codeUnauthorized)
	case http.StatusForbidden:
		a.error(w, r, status, codeForbidden)
	case http.StatusTooManyRequests:
		a.error(w, r, status, codeRateLimited)
	default:
		a.error(w, r, status, codeInternal)
	}
}

// domainError maps service errors onto HTTP responses.
func (a *App) domainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.json(w, http.StatusBadRequest, errorBody{Error: errorDetail{
			Code:      codeValidation,
			Message:   message(middleware.LocaleFromContext(r.Context()), codeValidation) + ": " + err.Error(),
			RequestID: middleware.RequestIDFromContext(r.Context()),
		}})
	case errors.Is(err, domain.ErrDuplicateName):
		a.error(w, r, http.StatusBadRequest, codeDuplicateName)
	case errors.Is(err, domain.ErrProjectClosed):
		a.error(w, r, http.StatusBadRequest, codeProjectClosed)
	case errors.Is(err, domain.ErrAlreadyInvested):
		a.error(w, r, http.StatusBadRequest, codeAlreadyInvested)
	case errors.Is(err, domain.ErrAmountBelowInvested):
		a.error(w, r, http.StatusBadRequest, codeBelowInvested)
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, codeNotFound)
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, r, http.StatusUnauthorized, codeUnauthorized)
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, r, http.StatusForbidden, codeForbidden)
	default:
		a.Logger.Error().Err(err).
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		a.error(w, r, http.StatusInternalServerError, codeInternal)
	}
}
