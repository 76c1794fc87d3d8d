package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cepadmin/cepadmin/internal/platform/httpx"
	"github.com/cepadmin/cepadmin/internal/shared"
)

// Evaluator is the decision contract served over HTTP.
type Evaluator interface {
	GetRoles(ctx context.Context, email string) (Result, error)
	Catalog() Catalog
}

// Handler exposes the getRoles call and the required catalog.
type Handler struct {
	logger  *slog.Logger
	service Evaluator
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service Evaluator) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/getRoles", h.getRoles)
	r.Get("/getRoles", h.getRoles)
	r.Get("/catalog", h.catalog)
}

type catalogResponse struct {
	Privileges []Privilege `json:"privileges"`
}

func (h *Handler) getRoles(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GetRoles(r.Context(), shared.EmailFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, catalogResponse{Privileges: h.service.Catalog().Entries()})
}

// respondError keeps "undetermined" distinct from "denied": every failure is
// a non-2xx problem document, never a result with isCepAdmin false.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrUnauthenticated) {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthenticated", httpx.CodeUnauthenticated, err.Error())
		return
	}
	problem := httpx.ProblemDetail{
		Title:  "Unable to determine roles",
		Status: http.StatusInternalServerError,
		Code:   httpx.CodeInternal,
		Detail: err.Error(),
	}
	var internal *InternalError
	if errors.As(err, &internal) && internal.EvaluationID != "" {
		problem.Instance = "urn:cepadmin:evaluation:" + internal.EvaluationID
	}
	if h.logger != nil {
		h.logger.Debug("get roles failed", slog.String("path", r.URL.Path), slog.String("instance", problem.Instance))
	}
	httpx.WriteProblem(w, problem)
}
