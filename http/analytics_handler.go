package http

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"marketplace-analytics/domain"
	"marketplace-analytics/service"
)

// errorResponse is the error shape every endpoint returns, rate limiter
// included.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: msg}); err != nil {
		log.Printf("Error writing error response: %v", err)
	}
}

type AnalyticsHandler struct {
	service *service.AnalyticsService
}

func NewAnalyticsHandler(service *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// GetAnalytics serves GET /stores/{storeID}/analytics?months=12&level=standard.
func (h *AnalyticsHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	storeID := mux.Vars(r)["storeID"]

	months := service.DefaultMonths
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid months parameter")
			return
		}
		months = n
	}
	level := domain.NormalizeLevel(r.URL.Query().Get("level"))

	payload, err := h.service.Analytics(r.Context(), storeID, months, level)
	if err != nil {
		log.Printf("Error computing analytics for store %s: %v", storeID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to compute analytics")
		return
	}

	// Encode into a buffer first so a failure never truncates a 200.
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		log.Printf("Error encoding response: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// InvalidateStore serves POST /stores/{storeID}/analytics/invalidate.
func (h *AnalyticsHandler) InvalidateStore(w http.ResponseWriter, r *http.Request) {
	storeID := mux.Vars(r)["storeID"]
	if err := h.service.Invalidate(r.Context(), storeID); err != nil {
		log.Printf("Error invalidating cache for store %s: %v", storeID, err)
		writeJSONError(w, http.StatusInternalServerError, "failed to invalidate cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// InvalidateAll serves POST /analytics/invalidate.
func (h *AnalyticsHandler) InvalidateAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context(), ""); err != nil {
		log.Printf("Error invalidating cache: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to invalidate cache")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NewRouter mounts the analytics routes behind the rate limiter.
func NewRouter(handler *AnalyticsHandler, limiter *RateLimiter) *mux.Router {
	router := mux.NewRouter()
	router.Handle(
		"/stores/{storeID}/analytics",
		RateLimitMiddleware(limiter, http.HandlerFunc(handler.GetAnalytics)),
	).Methods(http.MethodGet)
	router.Handle(
		"/stores/{storeID}/analytics/invalidate",
		RateLimitMiddleware(limiter, http.HandlerFunc(handler.InvalidateStore)),
	).Methods(http.MethodPost)
	router.Handle(
		"/analytics/invalidate",
		RateLimitMiddleware(limiter, http.HandlerFunc(handler.InvalidateAll)),
	).Methods(http.MethodPost)
	return router
}
