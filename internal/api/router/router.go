package router

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"time"
	"vehicletracker/internal/api/handler"
	"vehicletracker/internal/api/middleware"
	"vehicletracker/internal/core/repository"
	"vehicletracker/internal/core/service"
	"vehicletracker/internal/metrics"
)

// HealthChecker reports whether the history store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

type Dependencies struct {
	Tracking service.TrackingService
	History  service.HistoryService
	Vehicles repository.VehicleRepository
	Health   HealthChecker

	// Optional.
	Live      http.HandlerFunc
	Metrics   *metrics.Collector
	StaticDir string
}

func NewRouter(deps Dependencies) http.Handler {
	// Initialize handlers
	trackingHandler := handler.NewTrackingHandler(deps.Tracking)
	vehicleHandler := handler.NewVehicleHandler(deps.Vehicles)
	historyHandler := handler.NewHistoryHandler(deps.History)
	metricsMiddleware := middleware.MetricsMiddleware(deps.Metrics)

	// Create router
	mux := http.NewServeMux()

	// Add middleware chain
	withMiddleware := func(handler http.HandlerFunc) http.Handler {
		return middleware.LoggingMiddleware(
			metricsMiddleware(handler),
		)
	}

	// Health check endpoint
	mux.Handle("GET /health", withMiddleware(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := deps.Health.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{
				"status":  "degraded",
				"history": err.Error(),
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"history": "connected",
		})
	}))

	// Live trace and registry
	mux.Handle("GET /api/get_vehicle_gps_data/{vehicle_id}", withMiddleware(trackingHandler.GetVehicleGPSData))
	mux.Handle("GET /api/get_all_vehicles", withMiddleware(vehicleHandler.GetAllVehicles))

	// History journal
	mux.Handle("GET /api/get_allhistory_vehicles", withMiddleware(historyHandler.GetAllHistoryVehicles))
	mux.Handle("GET /api/get_vehicle_history/{vehicle_id}", withMiddleware(historyHandler.GetVehicleHistory))
	mux.Handle("GET /api/get_ride_details/{ride_no}", withMiddleware(historyHandler.GetRideDetails))
	mux.Handle("GET /api/get_ride_detailshistory/{ride_no}", withMiddleware(historyHandler.GetRideDetailsHistory))

	if deps.Live != nil {
		mux.Handle("GET /api/live/{vehicle_id}", withMiddleware(deps.Live))
	}

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	if deps.StaticDir != "" {
		static := http.StripPrefix("/static/", http.FileServer(http.Dir(deps.StaticDir)))
		mux.Handle("GET /static/", withMiddleware(static.ServeHTTP))
		mux.Handle("GET /{$}", withMiddleware(func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, filepath.Join(deps.StaticDir, "index.html"))
		}))
	}

	return middleware.CORSMiddleware(mux)
}
