package entities

import "strings"

// CapacityStatus classifies department occupancy.
type CapacityStatus string

const (
	CapacityStatusLow      CapacityStatus = "LOW"
	CapacityStatusModerate CapacityStatus = "MODERATE"
	CapacityStatusHigh     CapacityStatus = "HIGH"
	CapacityStatusCritical CapacityStatus = "CRITICAL"
	CapacityStatusUnknown  CapacityStatus = "UNKNOWN"
)

// DepartmentCapacity is the live occupancy of one department/specialty.
type DepartmentCapacity struct {
	Available int            `json:"available"`
	Total     int            `json:"total"`
	WaitTime  int            `json:"waitTime"`
	Status    CapacityStatus `json:"status"`
}

// AvailabilityRatio returns available/total beds, zero when total is zero.
func (d DepartmentCapacity) AvailabilityRatio() float64 {
	if d.Total == 0 {
		return 0
	}
	return float64(d.Available) / float64(d.Total)
}

// CapacitySnapshot maps specialty name to live department capacity.
// Volatile: fetched per facility and cached with a short TTL.
type CapacitySnapshot map[string]DepartmentCapacity

// ForSpecialty returns the matched specialty's capacity, falling back to
// general when the specialty has no entry.
func (s CapacitySnapshot) ForSpecialty(specialty string) (DepartmentCapacity, bool) {
	if dept, ok := s[specialty]; ok {
		return dept, true
	}
	dept, ok := s[SpecialtyGeneral]
	return dept, ok
}

// DefaultCapacitySnapshot is the deterministic snapshot substituted when a
// capacity fetch fails.
func DefaultCapacitySnapshot() CapacitySnapshot {
	return CapacitySnapshot{
		SpecialtyEmergency:  {Available: 5, Total: 15, WaitTime: 45, Status: CapacityStatusModerate},
		SpecialtyGeneral:    {Available: 10, Total: 25, WaitTime: 90, Status: CapacityStatusModerate},
		SpecialtyCardiology: {Available: 3, Total: 8, WaitTime: 120, Status: CapacityStatusHigh},
		SpecialtyPediatrics: {Available: 8, Total: 12, WaitTime: 60, Status: CapacityStatusLow},
	}
}

// StatusForOccupancy derives a capacity status from bed counts.
func StatusForOccupancy(availableBeds, totalBeds int) CapacityStatus {
	if totalBeds == 0 {
		return CapacityStatusUnknown
	}
	utilization := float64(totalBeds-availableBeds) / float64(totalBeds) * 100
	switch {
	case utilization >= 95:
		return CapacityStatusCritical
	case utilization >= 85:
		return CapacityStatusHigh
	case utilization >= 65:
		return CapacityStatusModerate
	default:
		return CapacityStatusLow
	}
}

// EstimateWaitTime derives a wait time in minutes from patient load when the
// upstream record carries no explicit wait time. Clamped to [15, 180]; a
// department with no doctors on duty reports a flat 120 minutes.
func EstimateWaitTime(currentPatients, doctorsOnDuty int) int {
	if doctorsOnDuty == 0 {
		return 120
	}
	wait := float64(currentPatients) / float64(doctorsOnDuty) * 15
	if wait < 15 {
		wait = 15
	}
	if wait > 180 {
		wait = 180
	}
	return int(wait)
}

// NormalizeDepartmentName maps an upstream department label to one of the
// known specialty identifiers.
func NormalizeDepartmentName(departmentName string) string {
	if departmentName == "" {
		return SpecialtyGeneral
	}
	name := strings.ToLower(departmentName)
	switch {
	case strings.Contains(name, "emergency"):
		return SpecialtyEmergency
	case strings.Contains(name, "cardio"):
		return SpecialtyCardiology
	case strings.Contains(name, "pediatric"), strings.Contains(name, "children"):
		return SpecialtyPediatrics
	case strings.Contains(name, "neuro"):
		return SpecialtyNeurology
	case strings.Contains(name, "orthopedic"):
		return SpecialtyOrthopedics
	case strings.Contains(name, "oncology"):
		return SpecialtyOncology
	default:
		return SpecialtyGeneral
	}
}
