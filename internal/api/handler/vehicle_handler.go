package handler

import (
	"log/slog"
	"net/http"
	"vehicletracker/internal/core/repository"
)

type VehicleHandler struct {
	vehicleRepo repository.VehicleRepository
}

func NewVehicleHandler(vehicleRepo repository.VehicleRepository) *VehicleHandler {
	return &VehicleHandler{
		vehicleRepo: vehicleRepo,
	}
}

// GetAllVehicles returns the registry document as stored.
func (h *VehicleHandler) GetAllVehicles(w http.ResponseWriter, r *http.Request) {
	data, err := h.vehicleRepo.Raw(r.Context())
	if err != nil {
		slog.Error("read vehicle registry failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}
