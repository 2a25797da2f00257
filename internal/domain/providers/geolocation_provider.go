package providers

import (
	"context"

	"github.com/medroute/navigator/internal/domain/entities"
)

// GeolocationProvider defines the interface for geolocation services
type GeolocationProvider interface {
	// Geocode resolves a city or address to coordinates
	Geocode(ctx context.Context, address string) (*entities.Location, error)

	// CalculateDistance calculates the distance between two points in kilometers
	CalculateDistance(from, to entities.Location) float64

	// DefaultLocation is the fallback origin used when a client supplies no
	// usable coordinates
	DefaultLocation() entities.Location
}
