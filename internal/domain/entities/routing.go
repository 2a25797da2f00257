package entities

// RankedFacility is a facility joined with its live capacity and, once
// scored, its routing score. Ephemeral: produced per routing call.
type RankedFacility struct {
	Facility
	CurrentCapacity CapacitySnapshot `json:"currentCapacity"`
	RoutingScore    float64          `json:"routingScore,omitempty"`
}

// EmergencyRoute is a ranked facility annotated for an emergency flow.
type EmergencyRoute struct {
	RankedFacility
	EstimatedArrival    int    `json:"estimatedArrival"`
	DirectionsURL       string `json:"directionsUrl"`
	EmergencyPhone      string `json:"emergencyPhone"`
	IsLevel1Trauma      bool   `json:"isLevel1Trauma"`
	HasAmbulance        bool   `json:"hasAmbulance"`
	PediatricPreference bool   `json:"pediatricPreference"`
}

// RoutingCriteria echoes the inputs a routing decision was made with.
type RoutingCriteria struct {
	IsEmergency       bool   `json:"isEmergency"`
	RequiredSpecialty string `json:"requiredSpecialty,omitempty"`
	PatientAge        int    `json:"patientAge,omitempty"`
	SearchRadius      string `json:"searchRadius,omitempty"`
}

// RouteResult is the outcome of an optimal-routing request. On total
// failure Error is set and the hospital list is empty; the operation never
// raises to its caller.
type RouteResult struct {
	RecommendedHospitals []RankedFacility `json:"recommendedHospitals"`
	TotalEligible        int              `json:"totalEligible"`
	RoutingCriteria      RoutingCriteria  `json:"routingCriteria"`
	Error                string           `json:"error,omitempty"`
}
