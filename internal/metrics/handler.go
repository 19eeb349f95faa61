package metrics

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/printloom/printloom/internal/platform/httpx"
)

// DashboardService defines the aggregation contract used by the handler.
type DashboardService interface {
	DashboardMetrics(ctx context.Context) (SalesMetrics, error)
}

// Handler coordinates HTTP requests for the sales dashboard.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
}

// NewHandler constructs the metrics HTTP handler.
func NewHandler(logger *slog.Logger, service DashboardService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers metrics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.DashboardMetrics(r.Context())
	if err != nil {
		h.logger.Error("build dashboard metrics", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}
