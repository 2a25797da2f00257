package entities

import "time"

// UrgencyLevel classifies how soon a patient must be seen.
type UrgencyLevel string

const (
	UrgencyEmergency  UrgencyLevel = "EMERGENCY"
	UrgencyUrgent     UrgencyLevel = "URGENT"
	UrgencySemiUrgent UrgencyLevel = "SEMI_URGENT"
	UrgencyStandard   UrgencyLevel = "STANDARD"
	UrgencyRoutine    UrgencyLevel = "ROUTINE"
)

// Vital sign levels as entered on the intake form.
const (
	VitalNormal = "Normal"
	VitalHigh   = "High"
	VitalLow    = "Low"
)

// TriageInput is the patient-entered intake form.
type TriageInput struct {
	Age                 int    `json:"age"`
	Gender              string `json:"gender"`
	Fever               bool   `json:"fever"`
	Cough               bool   `json:"cough"`
	Fatigue             bool   `json:"fatigue"`
	DifficultyBreathing bool   `json:"difficulty_breathing"`
	BloodPressure       string `json:"blood_pressure"`
	CholesterolLevel    string `json:"cholesterol_level"`
	AdditionalSymptoms  string `json:"additional_symptoms"`
	SuspectedDisease    string `json:"suspected_disease,omitempty"`
}

// HasSignal reports whether the input carries at least one symptom, vital
// or free-text signal worth scoring. Empty intakes are rejected so the
// engine never produces a confident-looking result from nothing.
func (in *TriageInput) HasSignal() bool {
	if in.Fever || in.Cough || in.Fatigue || in.DifficultyBreathing {
		return true
	}
	if in.BloodPressure != "" && in.BloodPressure != VitalNormal {
		return true
	}
	if in.CholesterolLevel != "" && in.CholesterolLevel != VitalNormal {
		return true
	}
	return in.AdditionalSymptoms != ""
}

// SymptomAnalysis is the scored symptom breakdown of one assessment.
type SymptomAnalysis struct {
	SeverityScore         float64  `json:"severity_score"`
	RecommendedDepartment string   `json:"recommended_department"`
	KeySymptoms           []string `json:"key_symptoms"`
	RiskFactors           []string `json:"risk_factors"`
}

// StayPrediction is the predicted admission duration.
type StayPrediction struct {
	PredictedStayHours int     `json:"predicted_stay_hours"`
	Confidence         float64 `json:"confidence"`
}

// Scheduling is the appointment slot derived from the final urgency tier.
type Scheduling struct {
	ScheduledTime     time.Time `json:"scheduled_time"`
	AssignedDoctorID  string    `json:"assigned_doctor_id"`
	EstimatedWaitTime int       `json:"estimated_wait_time"`
	Department        string    `json:"department"`
}

// TriageResult is one completed assessment. Immutable after creation except
// through the explicit patch operation used for follow-up corrections.
type TriageResult struct {
	PatientID       string          `json:"patient_id"`
	Timestamp       time.Time       `json:"timestamp"`
	UrgencyLevel    UrgencyLevel    `json:"urgency_level"`
	PriorityScore   int             `json:"priority_score"`
	SymptomAnalysis SymptomAnalysis `json:"symptom_analysis"`
	StayPrediction  StayPrediction  `json:"stay_prediction"`
	Recommendations []string        `json:"recommendations"`
	Scheduling      Scheduling      `json:"scheduling"`
}

// TriagePatch carries follow-up corrections to a stored assessment. Nil
// fields are left untouched.
type TriagePatch struct {
	UrgencyLevel    *UrgencyLevel `json:"urgency_level,omitempty"`
	PriorityScore   *int          `json:"priority_score,omitempty"`
	Department      *string       `json:"department,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
}
