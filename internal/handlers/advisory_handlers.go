package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"agri-advisor/internal/models"
	"agri-advisor/internal/services"
	"agri-advisor/pkg/logging"
	"agri-advisor/pkg/metrics"
)

// AdvisoryHandler handles the advisory API endpoints
type AdvisoryHandler struct {
	service *services.AdvisoryService
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
}

// NewAdvisoryHandler creates a new advisory handler
func NewAdvisoryHandler(service *services.AdvisoryService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *AdvisoryHandler {
	return &AdvisoryHandler{
		service: service,
		logger:  logger,
		metrics: metricsCollector,
	}
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type forecastRequest struct {
	Commodity   string `json:"commodity"`
	District    string `json:"district"`
	HorizonDays int    `json:"horizon_days"`
}

type trainRequest struct {
	Commodity string `json:"commodity"`
	District  string `json:"district"`
}

// ForecastPrice handles POST /api/v1/forecast/price
func (h *AdvisoryHandler) ForecastPrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/v1/forecast/price").Observe(time.Since(startTime).Seconds())
	}()

	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Commodity == "" || req.District == "" {
		h.sendError(w, r, "commodity and district are required", http.StatusBadRequest)
		return
	}

	forecast := h.service.ForecastPrice(ctx, req.Commodity, req.District, req.HorizonDays)

	h.metrics.RecordAPIRequest("/api/v1/forecast/price", r.Method, "200")
	h.sendJSON(w, forecast, http.StatusOK)
}

// AssessSpoilage handles POST /api/v1/spoilage
func (h *AdvisoryHandler) AssessSpoilage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/v1/spoilage").Observe(time.Since(startTime).Seconds())
	}()

	var req models.SpoilageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Commodity == "" || req.District == "" {
		h.sendError(w, r, "commodity and district are required", http.StatusBadRequest)
		return
	}

	assessment := h.service.AssessSpoilage(ctx, req)

	h.metrics.RecordAPIRequest("/api/v1/spoilage", r.Method, "200")
	h.sendJSON(w, assessment, http.StatusOK)
}

// OptimizeHarvest handles POST /api/v1/harvest
func (h *AdvisoryHandler) OptimizeHarvest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/v1/harvest").Observe(time.Since(startTime).Seconds())
	}()

	var req models.HarvestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Commodity == "" || req.District == "" {
		h.sendError(w, r, "commodity and district are required", http.StatusBadRequest)
		return
	}
	if req.SowingDate != "" {
		if _, err := time.Parse("2006-01-02", req.SowingDate); err != nil {
			h.sendError(w, r, "invalid sowing_date format, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	decision := h.service.OptimizeHarvest(ctx, req)

	h.metrics.RecordAPIRequest("/api/v1/harvest", r.Method, "200")
	h.sendJSON(w, decision, http.StatusOK)
}

// RankMandis handles POST /api/v1/mandis/rank
func (h *AdvisoryHandler) RankMandis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/v1/mandis/rank").Observe(time.Since(startTime).Seconds())
	}()

	var req models.MandiRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Commodity == "" || req.OriginDistrict == "" {
		h.sendError(w, r, "commodity and origin_district are required", http.StatusBadRequest)
		return
	}

	ranking := h.service.RankMandis(ctx, req)

	h.metrics.RecordAPIRequest("/api/v1/mandis/rank", r.Method, "200")
	h.sendJSON(w, ranking, http.StatusOK)
}

// Advise handles POST /api/v1/advisory
func (h *AdvisoryHandler) Advise(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/v1/advisory").Observe(time.Since(startTime).Seconds())
	}()

	var req models.AdvisoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Commodity == "" || req.District == "" {
		h.sendError(w, r, "commodity and district are required", http.StatusBadRequest)
		return
	}

	decision := h.service.Advise(ctx, req)

	h.metrics.RecordAPIRequest("/api/v1/advisory", r.Method, "200")
	h.sendJSON(w, decision, http.StatusOK)
}

// TrainModel handles POST /api/v1/train
func (h *AdvisoryHandler) TrainModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()
	defer func() {
		h.metrics.APIRequestDuration.WithLabelValues("/api/v1/train").Observe(time.Since(startTime).Seconds())
	}()

	var req trainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, r, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.Commodity == "" {
		h.sendError(w, r, "commodity is required", http.StatusBadRequest)
		return
	}

	report, err := h.service.TrainPriceModel(ctx, req.Commodity, req.District)
	if err != nil {
		var insufficient *models.InsufficientDataError
		if errors.As(err, &insufficient) {
			h.sendError(w, r, insufficient.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error(ctx, "[TRAIN] Training failed", logging.Fields{
			"commodity": req.Commodity,
			"district":  req.District,
		}, err)
		h.sendError(w, r, "training failed", http.StatusInternalServerError)
		return
	}

	h.metrics.RecordAPIRequest("/api/v1/train", r.Method, "200")
	h.sendJSON(w, report, http.StatusOK)
}

// HealthCheck handles GET /health
func (h *AdvisoryHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	h.logger.Debug(ctx, "[HEALTH_CHECK] Health check requested", logging.Fields{})
	h.sendJSON(w, status, http.StatusOK)
}

// sendJSON sends a JSON response
func (h *AdvisoryHandler) sendJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response
func (h *AdvisoryHandler) sendError(w http.ResponseWriter, r *http.Request, message string, statusCode int) {
	h.metrics.RecordAPIRequest(r.URL.Path, r.Method, strconv.Itoa(statusCode))
	if statusCode >= 500 {
		h.metrics.RecordAPIError("server_error", r.URL.Path)
	}

	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	}

	h.sendJSON(w, response, statusCode)
}

// RegisterRoutes registers all advisory API routes
func (h *AdvisoryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/forecast/price", h.ForecastPrice).Methods("POST")
	router.HandleFunc("/api/v1/spoilage", h.AssessSpoilage).Methods("POST")
	router.HandleFunc("/api/v1/harvest", h.OptimizeHarvest).Methods("POST")
	router.HandleFunc("/api/v1/mandis/rank", h.RankMandis).Methods("POST")
	router.HandleFunc("/api/v1/advisory", h.Advise).Methods("POST")
	router.HandleFunc("/api/v1/train", h.TrainModel).Methods("POST")
	router.HandleFunc("/health", h.HealthCheck).Methods("GET")
}
