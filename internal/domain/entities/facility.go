package entities

import "strings"

// Location represents geographical coordinates
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Facility represents a healthcare facility in the catalog.
// Distance is computed per query against the caller's origin and is
// never part of the facility's cached identity.
type Facility struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Location       Location `json:"location"`
	Address        string   `json:"address"`
	Phone          string   `json:"phone"`
	Specialties    []string `json:"specialties"`
	EmergencyLevel string   `json:"emergencyLevel"`
	Rating         float64  `json:"rating"`
	Capacity       int      `json:"capacity"`
	FacilityType   string   `json:"facilityType"`
	Ownership      string   `json:"ownership"`
	City           string   `json:"city"`
	Province       string   `json:"province"`
	Distance       float64  `json:"distance"`
}

// HasSpecialty reports whether the facility offers the given specialty.
func (f *Facility) HasSpecialty(specialty string) bool {
	for _, s := range f.Specialties {
		if s == specialty {
			return true
		}
	}
	return false
}

// IsPediatric reports whether the facility is pediatric-capable.
func (f *Facility) IsPediatric() bool {
	return f.HasSpecialty(SpecialtyPediatrics) || strings.Contains(strings.ToLower(f.Name), "children")
}

// IsTraumaCapable reports whether the facility operates a trauma center.
func (f *Facility) IsTraumaCapable() bool {
	return strings.Contains(f.EmergencyLevel, "Trauma")
}

// IsLevel1Trauma reports whether the facility is a Level 1 trauma center.
func (f *Facility) IsLevel1Trauma() bool {
	return strings.Contains(f.EmergencyLevel, "Level 1")
}

// Known specialty identifiers used across routing and triage.
const (
	SpecialtyEmergency   = "emergency"
	SpecialtyGeneral     = "general"
	SpecialtyCardiology  = "cardiology"
	SpecialtyPediatrics  = "pediatrics"
	SpecialtyNeurology   = "neurology"
	SpecialtyOrthopedics = "orthopedics"
	SpecialtyOncology    = "oncology"
)

// FacilityTypeClinic facilities have no ambulance service.
const FacilityTypeClinic = "Clinic"

// FacilityTypeEmergencyCenter facilities are always emergency-eligible.
const FacilityTypeEmergencyCenter = "Emergency Center"
