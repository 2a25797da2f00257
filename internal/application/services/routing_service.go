package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/domain/providers"
	"github.com/medroute/navigator/internal/infrastructure/clients/facilityapi"
	"github.com/medroute/navigator/internal/infrastructure/observability"
	"github.com/medroute/navigator/pkg/config"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

const (
	facilitiesCacheKey = "facilities:catalog"
	lastGoodCacheKey   = "facilities:lastgood"

	// Last-good catalog outlives the fresh TTL so a failed refresh can
	// still serve data instead of the static fallback.
	lastGoodTTLSeconds = 86400
)

// RoutingService resolves the best facilities for a patient, location and
// urgency combination. Network latency and transient upstream failure are
// hidden behind three TTL caches and fallback data; no public operation
// surfaces a fetch error to its caller.
type RoutingService struct {
	client  facilityapi.Client
	cache   providers.CacheProvider
	geo     providers.GeolocationProvider
	cfg     config.RoutingConfig
	metrics *observability.Metrics
}

// NewRoutingService creates a new routing service
func NewRoutingService(
	client facilityapi.Client,
	cache providers.CacheProvider,
	geo providers.GeolocationProvider,
	cfg config.RoutingConfig,
) *RoutingService {
	return &RoutingService{
		client: client,
		cache:  cache,
		geo:    geo,
		cfg:    cfg,
	}
}

// WithMetrics attaches application metrics to the service
func (s *RoutingService) WithMetrics(metrics *observability.Metrics) *RoutingService {
	s.metrics = metrics
	return s
}

// FetchFacilities returns the full facility catalog. Results are cached;
// on fetch failure the last good catalog is returned if present, else a
// single static fallback facility. Always returns a usable list.
func (s *RoutingService) FetchFacilities(ctx context.Context) []entities.Facility {
	var cached []entities.Facility
	if s.cacheGet(ctx, facilitiesCacheKey, &cached) {
		return cached
	}

	facilities, err := s.client.ListFacilities(ctx)
	if err != nil {
		s.logFetchFailure(ctx, "fetch_facilities", err)

		var lastGood []entities.Facility
		if s.cacheGet(ctx, lastGoodCacheKey, &lastGood) {
			return lastGood
		}
		s.recordFallback(ctx, "fetch_facilities")
		return []entities.Facility{fallbackFacility()}
	}

	s.cacheSet(ctx, facilitiesCacheKey, facilities, int(s.cfg.FacilitiesTTL.Seconds()))
	s.cacheSet(ctx, lastGoodCacheKey, facilities, lastGoodTTLSeconds)
	return facilities
}

// FetchNearbyFacilities returns facilities within maxDistanceKm of origin,
// sorted ascending by distance, with live capacity attached. Results are
// cached per rounded origin so near-identical queries share an entry. The
// only error condition is caller cancellation.
func (s *RoutingService) FetchNearbyFacilities(ctx context.Context, origin entities.Location, maxDistanceKm float64) ([]entities.RankedFacility, error) {
	if maxDistanceKm <= 0 {
		maxDistanceKm = s.cfg.DefaultRadiusKm
	}

	// Origin rounded to ~0.001 degrees (~100m) to raise the hit rate for
	// near-identical queries.
	cacheKey := fmt.Sprintf("nearby:%.3f:%.3f:%.0f", origin.Lat, origin.Lng, maxDistanceKm)

	var cached []entities.RankedFacility
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	facilities := s.FetchFacilities(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	nearby := make([]entities.RankedFacility, 0, len(facilities))
	for _, f := range facilities {
		f.Distance = s.geo.CalculateDistance(origin, f.Location)
		if f.Distance <= maxDistanceKm {
			nearby = append(nearby, entities.RankedFacility{Facility: f})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].Distance < nearby[j].Distance
	})

	ids := make([]string, len(nearby))
	for i, h := range nearby {
		ids[i] = h.ID
	}
	capacities := s.FetchCapacityBatch(ctx, ids)
	for i := range nearby {
		snapshot, ok := capacities[nearby[i].ID]
		if !ok {
			snapshot = entities.DefaultCapacitySnapshot()
		}
		nearby[i].CurrentCapacity = snapshot
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, nearby, int(s.cfg.NearbyTTL.Seconds()))
	return nearby, nil
}

// FetchCapacity returns live department capacity for one facility, cached
// with a short TTL. On failure the deterministic default snapshot is
// returned and not cached, so the next call re-attempts fresh.
func (s *RoutingService) FetchCapacity(ctx context.Context, facilityID string) entities.CapacitySnapshot {
	cacheKey := "capacity:" + facilityID

	var cached entities.CapacitySnapshot
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached
	}

	snapshot, err := s.client.GetCapacity(ctx, facilityID)
	if err != nil {
		s.logFetchFailure(ctx, "fetch_capacity", err)
		s.recordFallback(ctx, "fetch_capacity")
		return entities.DefaultCapacitySnapshot()
	}

	s.cacheSet(ctx, cacheKey, snapshot, int(s.cfg.CapacityTTL.Seconds()))
	return snapshot
}

// FetchCapacityBatch fetches capacity for many facilities. IDs are
// partitioned into fixed-size batches issued concurrently; one facility's
// failure substitutes the default snapshot without failing its siblings.
func (s *RoutingService) FetchCapacityBatch(ctx context.Context, facilityIDs []string) map[string]entities.CapacitySnapshot {
	results := make(map[string]entities.CapacitySnapshot, len(facilityIDs))
	if len(facilityIDs) == 0 {
		return results
	}

	batchSize := s.cfg.CapacityBatchSize
	if batchSize <= 0 {
		batchSize = 5
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for start := 0; start < len(facilityIDs); start += batchSize {
		end := start + batchSize
		if end > len(facilityIDs) {
			end = len(facilityIDs)
		}
		batch := facilityIDs[start:end]

		g.Go(func() error {
			for _, id := range batch {
				snapshot := s.FetchCapacity(gctx, id)
				mu.Lock()
				results[id] = snapshot
				mu.Unlock()
			}
			return nil
		})
	}

	// Goroutines substitute defaults instead of returning errors.
	_ = g.Wait()
	return results
}

// RouteEmergency finds the closest emergency-capable facilities. Distance
// dominates all other criteria; at most two results are returned and the
// list is never empty: on total failure a synthetic fallback entry is
// produced so an emergency flow never sees a blank screen.
func (s *RoutingService) RouteEmergency(ctx context.Context, origin entities.Location, patientAge *int) []entities.EmergencyRoute {
	nearby, err := s.FetchNearbyFacilities(ctx, origin, s.cfg.EmergencyRadiusKm)
	if err != nil {
		s.logFetchFailure(ctx, "route_emergency", err)
		s.recordFallback(ctx, "route_emergency")
		return s.fallbackEmergencyRoutes(origin)
	}

	candidates := make([]entities.RankedFacility, 0, len(nearby))
	for _, h := range nearby {
		if h.HasSpecialty(entities.SpecialtyEmergency) || h.IsTraumaCapable() || h.FacilityType == entities.FacilityTypeEmergencyCenter {
			candidates = append(candidates, h)
		}
	}

	pediatricPreferred := false
	if patientAge != nil && *patientAge <= 18 {
		pediatric := make([]entities.RankedFacility, 0, len(candidates))
		for _, h := range candidates {
			if h.IsPediatric() {
				pediatric = append(pediatric, h)
			}
		}
		if len(pediatric) > 0 {
			candidates = pediatric
			pediatricPreferred = true
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	if len(candidates) == 0 {
		s.recordFallback(ctx, "route_emergency")
		return s.fallbackEmergencyRoutes(origin)
	}

	if len(candidates) > 2 {
		candidates = candidates[:2]
	}

	routes := make([]entities.EmergencyRoute, 0, len(candidates))
	for _, h := range candidates {
		routes = append(routes, entities.EmergencyRoute{
			RankedFacility:      h,
			EstimatedArrival:    estimatedArrivalMinutes(h.Distance),
			DirectionsURL:       directionsURL(h.Location),
			EmergencyPhone:      h.Phone,
			IsLevel1Trauma:      h.IsLevel1Trauma(),
			HasAmbulance:        h.FacilityType != entities.FacilityTypeClinic,
			PediatricPreference: pediatricPreferred && h.IsPediatric(),
		})
	}
	return routes
}

// RouteOptimal scores and ranks nearby facilities for the patient. On total
// failure the result carries an Error field instead of raising.
func (s *RoutingService) RouteOptimal(ctx context.Context, patient entities.TriageInput, origin entities.Location, isEmergency bool, maxResults int) *entities.RouteResult {
	if maxResults <= 0 {
		maxResults = 3
	}

	requiredSpecialty := MapSymptomsToSpecialty(patient)

	nearby, err := s.FetchNearbyFacilities(ctx, origin, s.cfg.DefaultRadiusKm)
	if err != nil {
		s.logFetchFailure(ctx, "route_optimal", err)
		return &entities.RouteResult{
			RecommendedHospitals: []entities.RankedFacility{},
			RoutingCriteria:      entities.RoutingCriteria{IsEmergency: isEmergency},
			Error:                "unable to fetch hospital data",
		}
	}

	eligible := make([]entities.RankedFacility, 0, len(nearby))
	for _, h := range nearby {
		if h.IsPediatric() {
			if patient.Age <= 18 {
				eligible = append(eligible, h)
			}
			continue
		}
		if isEmergency {
			if h.HasSpecialty(entities.SpecialtyEmergency) || h.IsTraumaCapable() {
				eligible = append(eligible, h)
			}
			continue
		}
		if h.HasSpecialty(requiredSpecialty) || h.HasSpecialty(entities.SpecialtyGeneral) {
			eligible = append(eligible, h)
		}
	}

	// Relax to any general or emergency facility when nothing matched.
	if len(eligible) == 0 {
		for _, h := range nearby {
			if h.HasSpecialty(entities.SpecialtyGeneral) || h.HasSpecialty(entities.SpecialtyEmergency) {
				eligible = append(eligible, h)
			}
		}
	}

	ranked := make([]entities.RankedFacility, len(eligible))
	for i, h := range eligible {
		h.RoutingScore = CalculateRoutingScore(s.cfg, h, isEmergency, requiredSpecialty)
		ranked[i] = h
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].RoutingScore > ranked[j].RoutingScore
	})

	searchRadius := ""
	if len(ranked) > 0 {
		maxDist := 0.0
		for _, h := range ranked {
			if h.Distance > maxDist {
				maxDist = h.Distance
			}
		}
		searchRadius = fmt.Sprintf("%.1f km", maxDist)
	}

	total := len(ranked)
	if len(ranked) > maxResults {
		ranked = ranked[:maxResults]
	}

	return &entities.RouteResult{
		RecommendedHospitals: ranked,
		TotalEligible:        total,
		RoutingCriteria: entities.RoutingCriteria{
			IsEmergency:       isEmergency,
			RequiredSpecialty: requiredSpecialty,
			PatientAge:        patient.Age,
			SearchRadius:      searchRadius,
		},
	}
}

// CalculateRoutingScore computes the routing score for one candidate. Pure:
// identical inputs always produce the identical score.
func CalculateRoutingScore(cfg config.RoutingConfig, h entities.RankedFacility, isEmergency bool, requiredSpecialty string) float64 {
	score := 100.0

	distanceMultiplier := cfg.DistanceMultiplier
	if isEmergency {
		distanceMultiplier = cfg.EmergencyDistanceMultiplier
	}
	score -= math.Min(h.Distance*distanceMultiplier, cfg.DistancePenaltyCap)

	if dept, ok := h.CurrentCapacity.ForSpecialty(requiredSpecialty); ok {
		score += dept.AvailabilityRatio() * cfg.AvailabilityWeight
		score -= math.Min(float64(dept.WaitTime)/cfg.WaitTimeDivisor, cfg.WaitTimePenaltyCap)

		switch dept.Status {
		case entities.CapacityStatusModerate:
			score += cfg.StatusPenaltyModerate
		case entities.CapacityStatusHigh:
			score += cfg.StatusPenaltyHigh
		case entities.CapacityStatusCritical:
			score += cfg.StatusPenaltyCritical
		}
	}

	if isEmergency {
		if strings.Contains(h.EmergencyLevel, "Level 1") {
			score += cfg.Level1TraumaBonus
		} else if strings.Contains(h.EmergencyLevel, "Level 2") {
			score += cfg.Level2TraumaBonus
		}
	}

	if h.HasSpecialty(requiredSpecialty) {
		score += cfg.SpecialtyMatchBonus
	}

	score += (h.Rating - 3) * cfg.RatingWeight

	return math.Max(score, 0)
}

// MapSymptomsToSpecialty maps patient input to the specialty the routing
// filter requires. Rules are evaluated in order; first match wins.
func MapSymptomsToSpecialty(patient entities.TriageInput) string {
	if patient.DifficultyBreathing {
		return entities.SpecialtyEmergency
	}
	if patient.Age <= 18 {
		return entities.SpecialtyPediatrics
	}

	disease := strings.ToLower(patient.SuspectedDisease)
	switch {
	case strings.Contains(disease, "heart"), strings.Contains(disease, "cardiac"):
		return entities.SpecialtyCardiology
	case strings.Contains(disease, "brain"), strings.Contains(disease, "neuro"):
		return entities.SpecialtyNeurology
	case strings.Contains(disease, "bone"), strings.Contains(disease, "joint"):
		return entities.SpecialtyOrthopedics
	}
	return entities.SpecialtyGeneral
}

func estimatedArrivalMinutes(distanceKm float64) int {
	minutes := int(math.Ceil(distanceKm * 2.5))
	if minutes < 10 {
		return 10
	}
	return minutes
}

func directionsURL(loc entities.Location) string {
	return fmt.Sprintf("https://maps.google.com/maps?daddr=%f,%f", loc.Lat, loc.Lng)
}

func fallbackFacility() entities.Facility {
	return entities.Facility{
		ID:             "fallback_001",
		Name:           "Metro General Hospital",
		Location:       entities.Location{Lat: -26.2041, Lng: 28.0473},
		Address:        "123 Main St, Johannesburg, Gauteng",
		Phone:          "+27 11 123 4567",
		Specialties:    []string{entities.SpecialtyEmergency, entities.SpecialtyGeneral, entities.SpecialtyCardiology},
		EmergencyLevel: "Level 1 Trauma Center",
		Rating:         4.2,
		Capacity:       50,
		FacilityType:   "Hospital",
		City:           "Johannesburg",
		Province:       "Gauteng",
	}
}

func (s *RoutingService) fallbackEmergencyRoutes(origin entities.Location) []entities.EmergencyRoute {
	f := fallbackFacility()
	f.Distance = s.geo.CalculateDistance(origin, f.Location)
	return []entities.EmergencyRoute{
		{
			RankedFacility: entities.RankedFacility{
				Facility:        f,
				CurrentCapacity: entities.DefaultCapacitySnapshot(),
			},
			EstimatedArrival: 15,
			DirectionsURL:    directionsURL(f.Location),
			EmergencyPhone:   f.Phone,
			IsLevel1Trauma:   true,
			HasAmbulance:     true,
		},
	}
}

// cacheGet unmarshals a cached JSON payload into target, reporting hit.
func (s *RoutingService) cacheGet(ctx context.Context, key string, target interface{}) bool {
	if s.cache == nil {
		return false
	}
	payload, err := s.cache.Get(ctx, key)
	if err != nil || len(payload) == 0 {
		if s.metrics != nil {
			observability.RecordCacheMiss(ctx, s.metrics, key)
		}
		return false
	}
	if err := json.Unmarshal(payload, target); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to unmarshal cached payload")
		return false
	}
	if s.metrics != nil {
		observability.RecordCacheHit(ctx, s.metrics, key)
	}
	return true
}

func (s *RoutingService) cacheSet(ctx context.Context, key string, value interface{}, ttlSeconds int) {
	if s.cache == nil || ttlSeconds <= 0 {
		return
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, ttlSeconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("failed to cache payload")
	}
}

// logFetchFailure distinguishes timeouts from other upstream failures for
// logging; callers degrade identically either way.
func (s *RoutingService) logFetchFailure(ctx context.Context, operation string, err error) {
	logger := observability.LoggerFromContext(ctx)
	if apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		logger.Warn().Err(err).Str("operation", operation).Msg("upstream request timed out, serving degraded data")
		return
	}
	logger.Warn().Err(err).Str("operation", operation).Msg("upstream request failed, serving degraded data")
}

func (s *RoutingService) recordFallback(ctx context.Context, operation string) {
	if s.metrics != nil {
		observability.RecordFallback(ctx, s.metrics, operation)
	}
}
