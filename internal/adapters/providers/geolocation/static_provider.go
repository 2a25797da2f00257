package geolocation

import (
	"context"
	"math"
	"strings"

	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/domain/providers"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

const earthRadiusKm = 6371.0

// StaticProvider resolves South African city names from a fixed table and
// computes haversine distances. Clients report their own coordinates; this
// provider only covers the fallback paths.
type StaticProvider struct {
	fallback entities.Location
	cities   map[string]entities.Location
}

// NewStaticProvider creates a static geolocation provider with the given
// fallback origin.
func NewStaticProvider(fallback entities.Location) providers.GeolocationProvider {
	return &StaticProvider{
		fallback: fallback,
		cities: map[string]entities.Location{
			"johannesburg":   {Lat: -26.2041, Lng: 28.0473},
			"cape town":      {Lat: -33.9249, Lng: 18.4241},
			"durban":         {Lat: -29.8587, Lng: 31.0218},
			"pretoria":       {Lat: -25.7461, Lng: 28.1881},
			"port elizabeth": {Lat: -33.9608, Lng: 25.6022},
			"bloemfontein":   {Lat: -29.0852, Lng: 26.1596},
		},
	}
}

// Geocode resolves a city name to coordinates.
func (p *StaticProvider) Geocode(ctx context.Context, address string) (*entities.Location, error) {
	trimmed := strings.ToLower(strings.TrimSpace(address))
	if trimmed == "" {
		return nil, apperrors.NewValidationError("address is required")
	}
	for city, loc := range p.cities {
		if strings.Contains(trimmed, city) {
			result := loc
			return &result, nil
		}
	}
	result := p.fallback
	return &result, nil
}

// CalculateDistance computes the haversine distance in kilometers.
func (p *StaticProvider) CalculateDistance(from, to entities.Location) float64 {
	return Haversine(from, to)
}

// DefaultLocation returns the fallback origin.
func (p *StaticProvider) DefaultLocation() entities.Location {
	return p.fallback
}

// Haversine computes the great-circle distance between two points in
// kilometers.
func Haversine(from, to entities.Location) float64 {
	lat1 := toRadians(from.Lat)
	lat2 := toRadians(to.Lat)
	deltaLat := toRadians(to.Lat - from.Lat)
	deltaLng := toRadians(to.Lng - from.Lng)

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}
