package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/medroute/navigator/internal/domain/entities"
)

// RoutingService defines the interface for facility routing operations
type RoutingService interface {
	FetchFacilities(ctx context.Context) []entities.Facility
	FetchNearbyFacilities(ctx context.Context, origin entities.Location, maxDistanceKm float64) ([]entities.RankedFacility, error)
	FetchCapacity(ctx context.Context, facilityID string) entities.CapacitySnapshot
	RouteEmergency(ctx context.Context, origin entities.Location, patientAge *int) []entities.EmergencyRoute
	RouteOptimal(ctx context.Context, patient entities.TriageInput, origin entities.Location, isEmergency bool, maxResults int) *entities.RouteResult
}

// RoutingHandler handles facility and routing HTTP requests
type RoutingHandler struct {
	service         RoutingService
	defaultLocation entities.Location
}

// NewRoutingHandler creates a new routing handler. The default location is
// substituted when a request carries no usable coordinates.
func NewRoutingHandler(service RoutingService, defaultLocation entities.Location) *RoutingHandler {
	return &RoutingHandler{
		service:         service,
		defaultLocation: defaultLocation,
	}
}

// ListFacilities handles GET /api/facilities
func (h *RoutingHandler) ListFacilities(w http.ResponseWriter, r *http.Request) {
	facilities := h.service.FetchFacilities(r.Context())
	respondWithJSON(w, http.StatusOK, facilities)
}

// GetFacilityCapacity handles GET /api/facilities/:id/capacity
func (h *RoutingHandler) GetFacilityCapacity(w http.ResponseWriter, r *http.Request) {
	facilityID := r.PathValue("id")
	if facilityID == "" {
		respondWithError(w, http.StatusBadRequest, "facility ID is required")
		return
	}

	capacity := h.service.FetchCapacity(r.Context(), facilityID)
	respondWithJSON(w, http.StatusOK, capacity)
}

// GetNearbyFacilities handles GET /api/facilities/nearby
func (h *RoutingHandler) GetNearbyFacilities(w http.ResponseWriter, r *http.Request) {
	origin := h.parseOrigin(r.URL.Query().Get("lat"), r.URL.Query().Get("lng"))

	radius := 0.0
	if radiusStr := r.URL.Query().Get("radius"); radiusStr != "" {
		parsed, err := strconv.ParseFloat(radiusStr, 64)
		if err != nil || parsed <= 0 {
			respondWithError(w, http.StatusBadRequest, "radius must be a positive number")
			return
		}
		radius = parsed
	}

	facilities, err := h.service.FetchNearbyFacilities(r.Context(), origin, radius)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, facilities)
}

type emergencyRouteRequest struct {
	Location *entities.Location `json:"location"`
	Age      *int               `json:"age"`
}

// RouteEmergency handles POST /api/routing/emergency
func (h *RoutingHandler) RouteEmergency(w http.ResponseWriter, r *http.Request) {
	var req emergencyRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	origin := h.defaultLocation
	if req.Location != nil {
		origin = *req.Location
	}

	routes := h.service.RouteEmergency(r.Context(), origin, req.Age)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"emergencyHospitals": routes,
	})
}

type optimalRouteRequest struct {
	Patient     entities.TriageInput `json:"patient"`
	Location    *entities.Location   `json:"location"`
	IsEmergency bool                 `json:"isEmergency"`
	MaxResults  int                  `json:"maxResults"`
}

// RouteOptimal handles POST /api/routing/optimal
func (h *RoutingHandler) RouteOptimal(w http.ResponseWriter, r *http.Request) {
	var req optimalRouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	origin := h.defaultLocation
	if req.Location != nil {
		origin = *req.Location
	}

	result := h.service.RouteOptimal(r.Context(), req.Patient, origin, req.IsEmergency, req.MaxResults)
	respondWithJSON(w, http.StatusOK, result)
}

// parseOrigin falls back to the configured default when either coordinate
// is missing or malformed.
func (h *RoutingHandler) parseOrigin(latStr, lngStr string) entities.Location {
	if latStr == "" || lngStr == "" {
		return h.defaultLocation
	}
	lat, latErr := strconv.ParseFloat(latStr, 64)
	lng, lngErr := strconv.ParseFloat(lngStr, 64)
	if latErr != nil || lngErr != nil {
		return h.defaultLocation
	}
	return entities.Location{Lat: lat, Lng: lng}
}
