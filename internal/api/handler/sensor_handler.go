package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/regeshengen/water-quality-api/internal/app/service"
	"github.com/regeshengen/water-quality-api/internal/common"
)

type SensorHandler struct {
	sensorService *service.SensorReadingService
}

func NewSensorHandler(ss *service.SensorReadingService) *SensorHandler {
	return &SensorHandler{sensorService: ss}
}

// RegisterRoutes mounts the public read-only sensor routes. "latest" is a
// static segment, so chi prefers it over the {productID} wildcard.
func (h *SensorHandler) RegisterRoutes(r chi.Router) {
	r.Get("/latest/{productID}", h.latestReading)
	r.Get("/{productID}", h.listReadings)
}

func (h *SensorHandler) listReadings(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			common.RespondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	readings, err := h.sensorService.ListByProduct(r.Context(), chi.URLParam(r, "productID"), limit)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, readings)
}

func (h *SensorHandler) latestReading(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productID")
	reading, err := h.sensorService.LatestByProduct(r.Context(), productID)
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	if reading == nil {
		common.RespondWithError(w, http.StatusNotFound, "no sensor data found for product "+productID)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, reading)
}
