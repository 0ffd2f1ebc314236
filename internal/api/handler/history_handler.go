package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"vehicletracker/internal/core/model"
	"vehicletracker/internal/core/service"
)

type HistoryHandler struct {
	historyService service.HistoryService
}

func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{
		historyService: historyService,
	}
}

type historyVehiclesResponse struct {
	MovingVehicles []string `json:"moving_vehicles"`
	FreeVehicles   []string `json:"free_vehicles"`
	IdleVehicles   []string `json:"idle_vehicles"`
}

type vehicleHistoryResponse struct {
	Rides []model.RideSummary `json:"rides"`
}

type rideResponse struct {
	Ride *model.Ride `json:"ride"`
}

type routeResponse struct {
	Route []model.Sample `json:"route"`
}

// GetAllHistoryVehicles lists every vehicle with at least one recorded ride.
// All of them are reported as moving.
func (h *HistoryHandler) GetAllHistoryVehicles(w http.ResponseWriter, r *http.Request) {
	ids, err := h.historyService.VehicleIDs(r.Context())
	if err != nil {
		h.internalError(w, "list history vehicles failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}

	writeJSON(w, http.StatusOK, historyVehiclesResponse{
		MovingVehicles: ids,
		FreeVehicles:   []string{},
		IdleVehicles:   []string{},
	})
}

func (h *HistoryHandler) GetVehicleHistory(w http.ResponseWriter, r *http.Request) {
	rides, err := h.historyService.Rides(r.Context(), r.PathValue("vehicle_id"))
	if err != nil {
		h.internalError(w, "list vehicle rides failed", err)
		return
	}
	if rides == nil {
		rides = []model.RideSummary{}
	}
	writeJSON(w, http.StatusOK, vehicleHistoryResponse{Rides: rides})
}

// GetRideDetails returns a full ride. Ride numbers repeat across vehicles and
// days, so vehicle_id and date (YYYY-MM-DD) may be given to pick one.
func (h *HistoryHandler) GetRideDetails(w http.ResponseWriter, r *http.Request) {
	rideNo, ok := parseRideNo(w, r)
	if !ok {
		return
	}

	day := r.URL.Query().Get("date")
	if day != "" {
		if _, err := time.Parse(model.DayLayout, day); err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}

	ride, err := h.historyService.Ride(r.Context(), rideNo, r.URL.Query().Get("vehicle_id"), day)
	if errors.Is(err, service.ErrRideNotFound) {
		writeError(w, http.StatusNotFound, "Ride not found")
		return
	}
	if err != nil {
		h.internalError(w, "ride lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, rideResponse{Ride: ride})
}

// GetRideDetailsHistory returns a ride's path, or only its break points
// when filter=break-points.
func (h *HistoryHandler) GetRideDetailsHistory(w http.ResponseWriter, r *http.Request) {
	rideNo, ok := parseRideNo(w, r)
	if !ok {
		return
	}

	vehicleID := r.URL.Query().Get("vehicle_id")
	if vehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
		return
	}

	path, err := h.historyService.RidePath(r.Context(), rideNo, vehicleID, r.URL.Query().Get("filter"))
	switch {
	case errors.Is(err, service.ErrInvalidFilter):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, service.ErrRideNotFound):
		writeError(w, http.StatusNotFound, "Ride or Vehicle not found")
		return
	case err != nil:
		h.internalError(w, "ride path lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{Route: path})
}

func (h *HistoryHandler) internalError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func parseRideNo(w http.ResponseWriter, r *http.Request) (int, bool) {
	rideNo, err := strconv.Atoi(r.PathValue("ride_no"))
	if err != nil || rideNo < 1 {
		writeError(w, http.StatusBadRequest, "ride_no must be a positive integer")
		return 0, false
	}
	return rideNo, true
}
