package handlers

import (
	"net/http"

	"github.com/medroute/navigator/internal/domain/providers"
)

// GeolocationHandler handles geocoding requests
type GeolocationHandler struct {
	provider providers.GeolocationProvider
}

// NewGeolocationHandler creates a new geolocation handler
func NewGeolocationHandler(provider providers.GeolocationProvider) *GeolocationHandler {
	return &GeolocationHandler{
		provider: provider,
	}
}

// Geocode handles GET /api/geocode
func (h *GeolocationHandler) Geocode(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "address query parameter is required")
		return
	}

	location, err := h.provider.Geocode(r.Context(), address)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, location)
}
