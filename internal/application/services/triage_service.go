package services

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/domain/repositories"
	"github.com/medroute/navigator/internal/infrastructure/observability"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

// Keyword lists for the free-text scan. Matched by substring against the
// lowercased additional symptoms field.
var (
	emergencyKeywords = []string{"chest pain", "heart attack", "stroke", "bleeding", "unconscious"}
	urgentKeywords    = []string{"severe pain", "vomiting", "dizziness", "confusion"}
)

// TriageService scores patient intake forms into an urgency classification,
// a department recommendation and a scheduling slot. Scoring is a pure rule
// cascade: identical input always produces the identical assessment (the
// clock, patient ID and doctor ID sources are injectable for that reason).
type TriageService struct {
	repo         repositories.TriageRepository
	now          func() time.Time
	newPatientID func(time.Time) string
	newDoctorID  func() string
}

// NewTriageService creates a new triage service. The repository may be nil
// for callers that only need scoring.
func NewTriageService(repo repositories.TriageRepository) *TriageService {
	return &TriageService{
		repo:         repo,
		now:          time.Now,
		newPatientID: defaultPatientID,
		newDoctorID:  defaultDoctorID,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *TriageService) WithClock(now func() time.Time) *TriageService {
	s.now = now
	return s
}

// WithIDGenerators overrides the patient and doctor ID sources. Used by tests.
func (s *TriageService) WithIDGenerators(patientID func(time.Time) string, doctorID func() string) *TriageService {
	if patientID != nil {
		s.newPatientID = patientID
	}
	if doctorID != nil {
		s.newDoctorID = doctorID
	}
	return s
}

// Assess validates and scores one intake form, derives scheduling, and
// persists the assessment when a repository is configured.
func (s *TriageService) Assess(ctx context.Context, input entities.TriageInput) (*entities.TriageResult, error) {
	if err := validateTriageInput(input); err != nil {
		return nil, err
	}

	assessedAt := s.now()
	result := s.score(input, assessedAt)

	if s.repo != nil {
		if err := s.repo.Save(ctx, result); err != nil {
			observability.LoggerFromContext(ctx).Error().Err(err).
				Str("patient_id", result.PatientID).
				Msg("failed to persist triage assessment")
			return nil, err
		}
	}
	return result, nil
}

// GetAssessment returns a stored assessment by patient ID.
func (s *TriageService) GetAssessment(ctx context.Context, patientID string) (*entities.TriageResult, error) {
	if patientID == "" {
		return nil, apperrors.NewValidationError("patient ID is required")
	}
	return s.repo.GetByID(ctx, patientID)
}

// UpdateAssessment applies follow-up corrections to a stored assessment.
// Nil patch fields are left untouched.
func (s *TriageService) UpdateAssessment(ctx context.Context, patientID string, patch entities.TriagePatch) (*entities.TriageResult, error) {
	result, err := s.repo.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	if patch.UrgencyLevel != nil {
		if !isValidUrgency(*patch.UrgencyLevel) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid urgency level: %s", *patch.UrgencyLevel))
		}
		result.UrgencyLevel = *patch.UrgencyLevel
	}
	if patch.PriorityScore != nil {
		if *patch.PriorityScore < 0 || *patch.PriorityScore > 100 {
			return nil, apperrors.NewValidationError("priority score must be between 0 and 100")
		}
		result.PriorityScore = *patch.PriorityScore
	}
	if patch.Department != nil {
		result.SymptomAnalysis.RecommendedDepartment = *patch.Department
		result.Scheduling.Department = *patch.Department
	}
	if patch.Recommendations != nil {
		result.Recommendations = patch.Recommendations
	}

	if err := s.repo.Update(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// CountAssessments returns the number of stored assessments.
func (s *TriageService) CountAssessments(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

// validateTriageInput rejects inputs the cascade must not score. Messages
// name the offending field so the caller can correct the form.
func validateTriageInput(input entities.TriageInput) error {
	if input.Age < 0 || input.Age > 150 {
		return apperrors.NewValidationError(fmt.Sprintf("age must be between 0 and 150, got %d", input.Age))
	}
	if strings.TrimSpace(input.Gender) == "" {
		return apperrors.NewValidationError("gender is required")
	}
	if !input.HasSignal() {
		return apperrors.NewValidationError("at least one symptom, vital sign or symptom description is required")
	}
	return nil
}

// score runs the rule cascade. The rules are ordered and cumulative; a later
// rule may overwrite department or urgency assigned by an earlier one, which
// is intentional (the free-text emergency scan wins last).
func (s *TriageService) score(input entities.TriageInput, assessedAt time.Time) *entities.TriageResult {
	severity := 5.0
	urgency := entities.UrgencyStandard
	department := entities.SpecialtyGeneral
	stayHours := 2
	priority := 50
	confidence := 0.75

	// Age bands
	switch {
	case input.Age > 65:
		severity += 2
		confidence += 0.1
	case input.Age > 45:
		severity++
	case input.Age < 2:
		severity += 3
		department = entities.SpecialtyPediatrics
		confidence += 0.15
	case input.Age < 18:
		department = entities.SpecialtyPediatrics
	}

	if input.DifficultyBreathing {
		severity += 4
		urgency = entities.UrgencyEmergency
		department = entities.SpecialtyEmergency
		priority = 95
		stayHours = 6
		confidence = 0.95
	}

	if input.Fever && input.Cough {
		severity += 2
		if input.Fatigue {
			severity++
			if urgency == entities.UrgencyStandard {
				urgency = entities.UrgencyUrgent
			}
			priority = maxInt(priority, 75)
			stayHours = 4
		}
	}

	if input.Fever {
		severity++
		if urgency == entities.UrgencyStandard {
			urgency = entities.UrgencySemiUrgent
			priority = maxInt(priority, 65)
		}
	}

	if input.Cough && !input.Fever {
		severity += 0.5
		priority = maxInt(priority, 55)
	}

	if input.Fatigue {
		severity += 0.5
	}

	switch input.BloodPressure {
	case entities.VitalHigh:
		severity += 2
		if input.Age > 40 {
			department = entities.SpecialtyCardiology
		} else {
			department = entities.SpecialtyGeneral
		}
		if input.Age > 60 {
			if urgency == entities.UrgencyStandard {
				urgency = entities.UrgencyUrgent
			}
			priority = maxInt(priority, 70)
		}
	case entities.VitalLow:
		severity++
		if input.Fatigue && urgency == entities.UrgencyStandard {
			urgency = entities.UrgencySemiUrgent
		}
	}

	if input.CholesterolLevel == entities.VitalHigh {
		severity++
		if input.Age > 50 {
			department = entities.SpecialtyCardiology
		}
	}

	if input.AdditionalSymptoms != "" {
		text := strings.ToLower(input.AdditionalSymptoms)

		if containsAny(text, emergencyKeywords) {
			severity += 5
			urgency = entities.UrgencyEmergency
			department = entities.SpecialtyEmergency
			priority = 98
			stayHours = 8
			confidence = 0.9
		}

		if containsAny(text, urgentKeywords) {
			severity += 2
			if urgency == entities.UrgencyStandard || urgency == entities.UrgencySemiUrgent {
				urgency = entities.UrgencyUrgent
				priority = maxInt(priority, 80)
			}
		}
	}

	severity = clampFloat(math.Round(severity*10)/10, 1, 10)
	confidence = math.Round(clampFloat(confidence, 0.5, 0.99)*100) / 100

	return &entities.TriageResult{
		PatientID:     s.newPatientID(assessedAt),
		Timestamp:     assessedAt,
		UrgencyLevel:  urgency,
		PriorityScore: priority,
		SymptomAnalysis: entities.SymptomAnalysis{
			SeverityScore:         severity,
			RecommendedDepartment: department,
			KeySymptoms:           extractKeySymptoms(input),
			RiskFactors:           extractRiskFactors(input),
		},
		StayPrediction: entities.StayPrediction{
			PredictedStayHours: stayHours,
			Confidence:         confidence,
		},
		Recommendations: buildRecommendations(urgency, input),
		Scheduling:      s.deriveScheduling(urgency, department, assessedAt),
	}
}

// deriveScheduling maps the final urgency tier to an appointment offset.
// The estimated wait equals the offset in minutes.
func (s *TriageService) deriveScheduling(urgency entities.UrgencyLevel, department string, assessedAt time.Time) entities.Scheduling {
	var offsetMinutes int
	switch urgency {
	case entities.UrgencyEmergency:
		offsetMinutes = 5
	case entities.UrgencyUrgent:
		offsetMinutes = 30
	case entities.UrgencySemiUrgent:
		offsetMinutes = 60
	case entities.UrgencyStandard:
		offsetMinutes = 120
	case entities.UrgencyRoutine:
		offsetMinutes = 1440
	default:
		offsetMinutes = 120
	}

	return entities.Scheduling{
		ScheduledTime:     assessedAt.Add(time.Duration(offsetMinutes) * time.Minute),
		AssignedDoctorID:  s.newDoctorID(),
		EstimatedWaitTime: offsetMinutes,
		Department:        department,
	}
}

// buildRecommendations produces the tier message pair followed by symptom
// advisories in fixed order. Never deduplicated.
func buildRecommendations(urgency entities.UrgencyLevel, input entities.TriageInput) []string {
	var recommendations []string

	switch urgency {
	case entities.UrgencyEmergency:
		recommendations = append(recommendations,
			"Proceed to Emergency Department immediately",
			"Do not drive yourself - call 911 or have someone drive you",
		)
	case entities.UrgencyUrgent:
		recommendations = append(recommendations,
			"Schedule appointment within 24 hours",
			"Monitor symptoms closely and return if they worsen",
		)
	case entities.UrgencySemiUrgent:
		recommendations = append(recommendations,
			"Schedule appointment within 2-3 days",
			"Continue current medications as prescribed",
		)
	case entities.UrgencyStandard:
		recommendations = append(recommendations,
			"Schedule routine appointment within 3-7 days",
			"Rest and stay hydrated",
		)
	case entities.UrgencyRoutine:
		recommendations = append(recommendations,
			"Schedule routine check-up within 1-2 weeks",
		)
	}

	if input.Fever {
		recommendations = append(recommendations, "Monitor temperature regularly and stay hydrated")
	}
	if input.Cough {
		recommendations = append(recommendations, "Avoid close contact with others to prevent spread")
	}
	if input.DifficultyBreathing {
		recommendations = append(recommendations, "Sit upright and try to remain calm")
	}
	if input.BloodPressure == entities.VitalHigh {
		recommendations = append(recommendations, "Limit sodium intake and monitor blood pressure daily")
	}

	return recommendations
}

func extractKeySymptoms(input entities.TriageInput) []string {
	symptoms := []string{}
	if input.Fever {
		symptoms = append(symptoms, "fever")
	}
	if input.Cough {
		symptoms = append(symptoms, "cough")
	}
	if input.Fatigue {
		symptoms = append(symptoms, "fatigue")
	}
	if input.DifficultyBreathing {
		symptoms = append(symptoms, "difficulty_breathing")
	}
	if input.BloodPressure != "" && input.BloodPressure != entities.VitalNormal {
		symptoms = append(symptoms, strings.ToLower(input.BloodPressure)+"_blood_pressure")
	}
	if input.CholesterolLevel != "" && input.CholesterolLevel != entities.VitalNormal {
		symptoms = append(symptoms, strings.ToLower(input.CholesterolLevel)+"_cholesterol")
	}
	return symptoms
}

func extractRiskFactors(input entities.TriageInput) []string {
	riskFactors := []string{}
	if input.Age > 65 {
		riskFactors = append(riskFactors, "elderly")
	}
	if input.Age < 2 {
		riskFactors = append(riskFactors, "infant")
	}
	if input.BloodPressure == entities.VitalHigh {
		riskFactors = append(riskFactors, "hypertension")
	}
	if input.CholesterolLevel == entities.VitalHigh {
		riskFactors = append(riskFactors, "high_cholesterol")
	}
	return riskFactors
}

func isValidUrgency(u entities.UrgencyLevel) bool {
	switch u {
	case entities.UrgencyEmergency, entities.UrgencyUrgent, entities.UrgencySemiUrgent,
		entities.UrgencyStandard, entities.UrgencyRoutine:
		return true
	}
	return false
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func defaultPatientID(assessedAt time.Time) string {
	return fmt.Sprintf("P%d-%03d", assessedAt.UnixMilli(), rand.IntN(1000))
}

func defaultDoctorID() string {
	return fmt.Sprintf("DR%03d", rand.IntN(1000))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
