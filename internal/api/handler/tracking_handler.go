package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"vehicletracker/internal/core/service"
)

// HeaderHistoryPersisted reports whether the returned trace was recorded.
const HeaderHistoryPersisted = "X-History-Persisted"

type TrackingHandler struct {
	trackingService service.TrackingService
}

func NewTrackingHandler(trackingService service.TrackingService) *TrackingHandler {
	return &TrackingHandler{
		trackingService: trackingService,
	}
}

// GetVehicleGPSData synthesizes a live trace for a moving vehicle. An empty
// array means no route was available.
func (h *TrackingHandler) GetVehicleGPSData(w http.ResponseWriter, r *http.Request) {
	vehicleID := r.PathValue("vehicle_id")

	result, err := h.trackingService.LiveTrace(r.Context(), vehicleID)
	if errors.Is(err, service.ErrVehicleNotFound) {
		writeError(w, http.StatusNotFound, "Vehicle not found")
		return
	}
	if err != nil {
		slog.Error("live trace failed", "vehicle_id", vehicleID, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set(HeaderHistoryPersisted, strconv.FormatBool(result.Persisted))
	writeJSON(w, http.StatusOK, result.Samples)
}
