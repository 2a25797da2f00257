package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medroute/navigator/internal/adapters/cache"
	"github.com/medroute/navigator/internal/adapters/providers/geolocation"
	"github.com/medroute/navigator/internal/application/services"
	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/pkg/config"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

// MockFacilityClient defines the mock upstream API client
type MockFacilityClient struct {
	mock.Mock
}

func (m *MockFacilityClient) ListFacilities(ctx context.Context) ([]entities.Facility, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Facility), args.Error(1)
}

func (m *MockFacilityClient) GetCapacity(ctx context.Context, facilityID string) (entities.CapacitySnapshot, error) {
	args := m.Called(ctx, facilityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(entities.CapacitySnapshot), args.Error(1)
}

// Johannesburg city centre, the default origin used across these tests.
var testOrigin = entities.Location{Lat: -26.2041, Lng: 28.0473}

func testFacilities() []entities.Facility {
	return []entities.Facility{
		{
			ID:             "fac_close",
			Name:           "City Central Hospital",
			Location:       entities.Location{Lat: -26.21, Lng: 28.05},
			Phone:          "+27 11 111 1111",
			Specialties:    []string{"emergency", "general", "cardiology"},
			EmergencyLevel: "Level 1 Trauma Center",
			Rating:         4.5,
			FacilityType:   "Hospital",
		},
		{
			ID:           "fac_mid",
			Name:         "Sandton Clinic",
			Location:     entities.Location{Lat: -26.10, Lng: 28.06},
			Phone:        "+27 11 222 2222",
			Specialties:  []string{"general"},
			Rating:       4.0,
			FacilityType: "Clinic",
		},
		{
			ID:             "fac_peds",
			Name:           "Johannesburg Children's Hospital",
			Location:       entities.Location{Lat: -26.18, Lng: 28.00},
			Phone:          "+27 11 333 3333",
			Specialties:    []string{"pediatrics", "emergency"},
			EmergencyLevel: "Level 2 Trauma Center",
			Rating:         4.7,
			FacilityType:   "Hospital",
		},
		{
			// Pretoria, ~55km away; outside the default radius
			ID:           "fac_far",
			Name:         "Pretoria East Hospital",
			Location:     entities.Location{Lat: -25.75, Lng: 28.23},
			Phone:        "+27 12 444 4444",
			Specialties:  []string{"general", "emergency"},
			Rating:       4.1,
			FacilityType: "Hospital",
		},
	}
}

func newTestRoutingService(t *testing.T, client *MockFacilityClient) *services.RoutingService {
	t.Helper()
	memCache, err := cache.NewMemoryAdapter()
	require.NoError(t, err)
	geo := geolocation.NewStaticProvider(testOrigin)
	return services.NewRoutingService(client, memCache, geo, config.DefaultRoutingConfig())
}

func TestRoutingService_FetchFacilities(t *testing.T) {
	t.Run("second call within TTL issues no network call", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).Return(testFacilities(), nil).Once()
		svc := newTestRoutingService(t, client)

		first := svc.FetchFacilities(context.Background())
		second := svc.FetchFacilities(context.Background())

		assert.Len(t, first, 4)
		assert.Equal(t, first, second)
		client.AssertNumberOfCalls(t, "ListFacilities", 1)
	})

	t.Run("falls back to static facility when upstream fails cold", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).
			Return(nil, apperrors.NewExternalError("facility API unavailable", nil))
		svc := newTestRoutingService(t, client)

		facilities := svc.FetchFacilities(context.Background())

		require.Len(t, facilities, 1)
		assert.Equal(t, "fallback_001", facilities[0].ID)
		assert.Equal(t, "Metro General Hospital", facilities[0].Name)
	})

	t.Run("timeout degrades the same way as any failure", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).
			Return(nil, apperrors.NewTimeoutError("facility API timed out", nil))
		svc := newTestRoutingService(t, client)

		facilities := svc.FetchFacilities(context.Background())

		require.Len(t, facilities, 1)
		assert.Equal(t, "fallback_001", facilities[0].ID)
	})
}

func TestRoutingService_FetchNearbyFacilities(t *testing.T) {
	t.Run("filters by radius and sorts by distance", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).Return(testFacilities(), nil)
		client.On("GetCapacity", mock.Anything, mock.Anything).
			Return(entities.DefaultCapacitySnapshot(), nil)
		svc := newTestRoutingService(t, client)

		nearby, err := svc.FetchNearbyFacilities(context.Background(), testOrigin, 50)
		require.NoError(t, err)

		require.Len(t, nearby, 3)
		assert.Equal(t, "fac_close", nearby[0].ID)
		for i := 1; i < len(nearby); i++ {
			assert.GreaterOrEqual(t, nearby[i].Distance, nearby[i-1].Distance)
		}
		for _, h := range nearby {
			assert.NotEqual(t, "fac_far", h.ID)
			assert.NotEmpty(t, h.CurrentCapacity)
		}
	})

	t.Run("facility just beyond the radius is excluded", func(t *testing.T) {
		origin := entities.Location{Lat: -26.2041, Lng: 28.0473}
		facility := entities.Facility{
			ID:          "fac_edge",
			Name:        "Edge Hospital",
			Specialties: []string{"general"},
		}
		// Walk the facility north until it sits just past 50km
		facility.Location = entities.Location{Lat: origin.Lat - 0.45009, Lng: origin.Lng}
		dist := geolocation.Haversine(origin, facility.Location)
		require.Greater(t, dist, 50.0)
		require.Less(t, dist, 50.1)

		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).Return([]entities.Facility{facility}, nil)
		svc := newTestRoutingService(t, client)

		nearby, err := svc.FetchNearbyFacilities(context.Background(), origin, 50)
		require.NoError(t, err)
		assert.Empty(t, nearby)
	})
}

func TestRoutingService_FetchCapacity(t *testing.T) {
	t.Run("substitutes default snapshot on failure", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("GetCapacity", mock.Anything, "fac_1").
			Return(nil, apperrors.NewExternalError("boom", nil))
		svc := newTestRoutingService(t, client)

		snapshot := svc.FetchCapacity(context.Background(), "fac_1")

		assert.Equal(t, entities.DefaultCapacitySnapshot(), snapshot)
	})

	t.Run("caches successful fetches", func(t *testing.T) {
		snapshot := entities.CapacitySnapshot{
			"general": {Available: 7, Total: 20, WaitTime: 40, Status: entities.CapacityStatusLow},
		}
		client := new(MockFacilityClient)
		client.On("GetCapacity", mock.Anything, "fac_1").Return(snapshot, nil).Once()
		svc := newTestRoutingService(t, client)

		first := svc.FetchCapacity(context.Background(), "fac_1")
		second := svc.FetchCapacity(context.Background(), "fac_1")

		assert.Equal(t, snapshot, first)
		assert.Equal(t, first, second)
		client.AssertNumberOfCalls(t, "GetCapacity", 1)
	})
}

func TestRoutingService_FetchCapacityBatch(t *testing.T) {
	t.Run("one failing facility does not fail its siblings", func(t *testing.T) {
		good := entities.CapacitySnapshot{
			"general": {Available: 12, Total: 20, WaitTime: 30, Status: entities.CapacityStatusLow},
		}
		client := new(MockFacilityClient)
		client.On("GetCapacity", mock.Anything, "fac_ok").Return(good, nil)
		client.On("GetCapacity", mock.Anything, "fac_bad").
			Return(nil, apperrors.NewExternalError("boom", nil))
		svc := newTestRoutingService(t, client)

		results := svc.FetchCapacityBatch(context.Background(), []string{"fac_ok", "fac_bad"})

		require.Len(t, results, 2)
		assert.Equal(t, good, results["fac_ok"])
		assert.Equal(t, entities.DefaultCapacitySnapshot(), results["fac_bad"])
	})

	t.Run("empty input returns empty map", func(t *testing.T) {
		client := new(MockFacilityClient)
		svc := newTestRoutingService(t, client)

		results := svc.FetchCapacityBatch(context.Background(), nil)

		assert.Empty(t, results)
	})
}

func TestRoutingService_RouteEmergency(t *testing.T) {
	t.Run("returns at most two, closest first, emergency-capable only", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).Return(testFacilities(), nil)
		client.On("GetCapacity", mock.Anything, mock.Anything).
			Return(entities.DefaultCapacitySnapshot(), nil)
		svc := newTestRoutingService(t, client)

		routes := svc.RouteEmergency(context.Background(), testOrigin, nil)

		require.NotEmpty(t, routes)
		assert.LessOrEqual(t, len(routes), 2)
		assert.Equal(t, "fac_close", routes[0].ID)
		assert.True(t, routes[0].IsLevel1Trauma)
		assert.True(t, routes[0].HasAmbulance)
		assert.GreaterOrEqual(t, routes[0].EstimatedArrival, 10)
		assert.Contains(t, routes[0].DirectionsURL, "maps.google.com")
	})

	t.Run("prefers pediatric-capable facilities for children", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).Return(testFacilities(), nil)
		client.On("GetCapacity", mock.Anything, mock.Anything).
			Return(entities.DefaultCapacitySnapshot(), nil)
		svc := newTestRoutingService(t, client)

		age := 8
		routes := svc.RouteEmergency(context.Background(), testOrigin, &age)

		require.NotEmpty(t, routes)
		for _, route := range routes {
			assert.Equal(t, "fac_peds", route.ID)
			assert.True(t, route.PediatricPreference)
		}
	})

	t.Run("never returns empty even when upstream fails", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).
			Return(nil, apperrors.NewExternalError("facility API unavailable", nil))
		client.On("GetCapacity", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewExternalError("boom", nil))
		svc := newTestRoutingService(t, client)

		routes := svc.RouteEmergency(context.Background(), testOrigin, nil)

		require.NotEmpty(t, routes)
		assert.Equal(t, "fallback_001", routes[0].ID)
	})
}

func TestRoutingService_RouteOptimal(t *testing.T) {
	t.Run("ranks eligible facilities by score", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).Return(testFacilities(), nil)
		client.On("GetCapacity", mock.Anything, mock.Anything).
			Return(entities.DefaultCapacitySnapshot(), nil)
		svc := newTestRoutingService(t, client)

		patient := entities.TriageInput{Age: 45, Gender: "male", SuspectedDisease: "heart condition"}
		result := svc.RouteOptimal(context.Background(), patient, testOrigin, false, 3)

		require.Empty(t, result.Error)
		require.NotEmpty(t, result.RecommendedHospitals)
		assert.Equal(t, "cardiology", result.RoutingCriteria.RequiredSpecialty)
		assert.Equal(t, 45, result.RoutingCriteria.PatientAge)
		for i := 1; i < len(result.RecommendedHospitals); i++ {
			assert.GreaterOrEqual(t,
				result.RecommendedHospitals[i-1].RoutingScore,
				result.RecommendedHospitals[i].RoutingScore,
			)
		}
		// Pediatric facilities are excluded for adult patients
		for _, h := range result.RecommendedHospitals {
			assert.NotEqual(t, "fac_peds", h.ID)
		}
	})

	t.Run("caps results at maxResults and reports total eligible", func(t *testing.T) {
		client := new(MockFacilityClient)
		client.On("ListFacilities", mock.Anything).Return(testFacilities(), nil)
		client.On("GetCapacity", mock.Anything, mock.Anything).
			Return(entities.DefaultCapacitySnapshot(), nil)
		svc := newTestRoutingService(t, client)

		patient := entities.TriageInput{Age: 45, Gender: "female"}
		result := svc.RouteOptimal(context.Background(), patient, testOrigin, false, 1)

		assert.Len(t, result.RecommendedHospitals, 1)
		assert.Equal(t, 2, result.TotalEligible)
	})
}

func TestCalculateRoutingScore(t *testing.T) {
	cfg := config.DefaultRoutingConfig()
	facility := entities.RankedFacility{
		Facility: entities.Facility{
			ID:             "fac_1",
			Specialties:    []string{"emergency", "general"},
			EmergencyLevel: "Level 1 Trauma Center",
			Rating:         4.0,
			Distance:       5,
		},
		CurrentCapacity: entities.DefaultCapacitySnapshot(),
	}

	t.Run("pure: identical inputs yield identical scores", func(t *testing.T) {
		first := services.CalculateRoutingScore(cfg, facility, true, "emergency")
		second := services.CalculateRoutingScore(cfg, facility, true, "emergency")
		assert.Equal(t, first, second)
	})

	t.Run("emergency weighs distance more heavily", func(t *testing.T) {
		near := facility
		near.Distance = 1
		far := facility
		far.Distance = 9

		gapEmergency := services.CalculateRoutingScore(cfg, near, true, "emergency") -
			services.CalculateRoutingScore(cfg, far, true, "emergency")
		gapRoutine := services.CalculateRoutingScore(cfg, near, false, "emergency") -
			services.CalculateRoutingScore(cfg, far, false, "emergency")

		assert.Greater(t, gapEmergency, gapRoutine)
	})

	t.Run("specialty match earns a bonus", func(t *testing.T) {
		withMatch := services.CalculateRoutingScore(cfg, facility, false, "general")
		noMatch := services.CalculateRoutingScore(cfg, facility, false, "oncology")
		assert.Greater(t, withMatch, noMatch)
	})

	t.Run("never negative", func(t *testing.T) {
		overloaded := entities.RankedFacility{
			Facility: entities.Facility{
				ID:       "fac_worst",
				Rating:   1.0,
				Distance: 400,
			},
			CurrentCapacity: entities.CapacitySnapshot{
				"general": {Available: 0, Total: 50, WaitTime: 600, Status: entities.CapacityStatusCritical},
			},
		}
		score := services.CalculateRoutingScore(cfg, overloaded, false, "general")
		assert.GreaterOrEqual(t, score, 0.0)
	})
}

func TestMapSymptomsToSpecialty(t *testing.T) {
	tests := []struct {
		name     string
		input    entities.TriageInput
		expected string
	}{
		{"breathing overrides everything", entities.TriageInput{Age: 10, DifficultyBreathing: true, SuspectedDisease: "heart"}, "emergency"},
		{"child", entities.TriageInput{Age: 12}, "pediatrics"},
		{"cardiac text", entities.TriageInput{Age: 50, SuspectedDisease: "suspected cardiac event"}, "cardiology"},
		{"neuro text", entities.TriageInput{Age: 50, SuspectedDisease: "neuro symptoms"}, "neurology"},
		{"ortho text", entities.TriageInput{Age: 50, SuspectedDisease: "broken bone"}, "orthopedics"},
		{"default", entities.TriageInput{Age: 50}, "general"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, services.MapSymptomsToSpecialty(tt.input))
		})
	}
}
