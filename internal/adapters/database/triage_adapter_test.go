package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medroute/navigator/internal/adapters/database"
	"github.com/medroute/navigator/internal/domain/entities"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

func sampleResult(patientID string) *entities.TriageResult {
	assessedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return &entities.TriageResult{
		PatientID:     patientID,
		Timestamp:     assessedAt,
		UrgencyLevel:  entities.UrgencyUrgent,
		PriorityScore: 75,
		SymptomAnalysis: entities.SymptomAnalysis{
			SeverityScore:         8.5,
			RecommendedDepartment: "general",
			KeySymptoms:           []string{"fever", "cough", "fatigue"},
			RiskFactors:           []string{},
		},
		StayPrediction: entities.StayPrediction{
			PredictedStayHours: 4,
			Confidence:         0.75,
		},
		Recommendations: []string{"Schedule appointment within 24 hours"},
		Scheduling: entities.Scheduling{
			ScheduledTime:     assessedAt.Add(30 * time.Minute),
			AssignedDoctorID:  "DR042",
			EstimatedWaitTime: 30,
			Department:        "general",
		},
	}
}

func TestTriageAdapter_SaveAndGet(t *testing.T) {
	adapter := database.NewTriageAdapter(newTestDB(t))
	ctx := context.Background()

	saved := sampleResult("P-1")
	require.NoError(t, adapter.Save(ctx, saved))

	got, err := adapter.GetByID(ctx, "P-1")
	require.NoError(t, err)
	assert.Equal(t, saved, got)
}

func TestTriageAdapter_GetMissing(t *testing.T) {
	adapter := database.NewTriageAdapter(newTestDB(t))

	_, err := adapter.GetByID(context.Background(), "absent")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestTriageAdapter_Update(t *testing.T) {
	adapter := database.NewTriageAdapter(newTestDB(t))
	ctx := context.Background()

	result := sampleResult("P-1")
	require.NoError(t, adapter.Save(ctx, result))

	result.UrgencyLevel = entities.UrgencyEmergency
	result.PriorityScore = 95
	require.NoError(t, adapter.Update(ctx, result))

	got, err := adapter.GetByID(ctx, "P-1")
	require.NoError(t, err)
	assert.Equal(t, entities.UrgencyEmergency, got.UrgencyLevel)
	assert.Equal(t, 95, got.PriorityScore)

	t.Run("missing assessment is not found", func(t *testing.T) {
		missing := sampleResult("absent")
		err := adapter.Update(ctx, missing)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestTriageAdapter_Count(t *testing.T) {
	adapter := database.NewTriageAdapter(newTestDB(t))
	ctx := context.Background()

	count, err := adapter.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, adapter.Save(ctx, sampleResult("P-1")))
	require.NoError(t, adapter.Save(ctx, sampleResult("P-2")))

	count, err = adapter.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
