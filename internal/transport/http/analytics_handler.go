package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "shoppulse/internal/errors"
)

// AnalyticsHandler handles aggregate analytics queries. All endpoints are
// read-only and may run concurrently with ingestion.
type AnalyticsHandler struct {
	service      DataServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service DataServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/overview", h.GetOverview)
	r.Get("/customers", h.GetCustomerInsights)
	r.Get("/products", h.GetProductInsights)

	return r
}

// GetOverview handles GET /api/analytics/overview
func (h *AnalyticsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.AnalyticsOverview(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   snapshot,
	})
}

// GetCustomerInsights handles GET /api/analytics/customers
func (h *AnalyticsHandler) GetCustomerInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.CustomerInsights(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   insights,
		"count":  len(insights),
	})
}

// GetProductInsights handles GET /api/analytics/products
func (h *AnalyticsHandler) GetProductInsights(w http.ResponseWriter, r *http.Request) {
	insights, err := h.service.ProductInsights(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   insights,
		"count":  len(insights),
	})
}
