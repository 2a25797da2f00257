package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/domain/repositories"
	sqliteclient "github.com/medroute/navigator/internal/infrastructure/clients/sqlite"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

// TriageAdapter implements TriageRepository on the embedded database. The
// full result is stored as a JSON blob; denormalized columns exist only for
// dashboard filtering.
type TriageAdapter struct {
	client *sqliteclient.Client
}

// NewTriageAdapter creates a new triage adapter
func NewTriageAdapter(client *sqliteclient.Client) repositories.TriageRepository {
	return &TriageAdapter{client: client}
}

// Save inserts a new assessment
func (a *TriageAdapter) Save(ctx context.Context, result *entities.TriageResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal triage result", err)
	}

	query := `INSERT INTO triage_assessments
		(patient_id, urgency_level, priority_score, department, result_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err = a.client.DB().ExecContext(ctx, query,
		result.PatientID, string(result.UrgencyLevel), result.PriorityScore,
		result.SymptomAnalysis.RecommendedDepartment, payload,
		result.Timestamp, result.Timestamp,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to save triage assessment", err)
	}
	return nil
}

// GetByID retrieves an assessment by patient ID
func (a *TriageAdapter) GetByID(ctx context.Context, patientID string) (*entities.TriageResult, error) {
	var payload []byte
	err := a.client.DB().QueryRowContext(ctx,
		`SELECT result_json FROM triage_assessments WHERE patient_id = ?`, patientID,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("triage assessment not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get triage assessment", err)
	}

	var result entities.TriageResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal triage result", err)
	}
	return &result, nil
}

// Update replaces a stored assessment after a patch
func (a *TriageAdapter) Update(ctx context.Context, result *entities.TriageResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal triage result", err)
	}

	query := `UPDATE triage_assessments SET urgency_level = ?, priority_score = ?,
		department = ?, result_json = ?, updated_at = CURRENT_TIMESTAMP
		WHERE patient_id = ?`
	res, err := a.client.DB().ExecContext(ctx, query,
		string(result.UrgencyLevel), result.PriorityScore,
		result.SymptomAnalysis.RecommendedDepartment, payload, result.PatientID,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to update triage assessment", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to confirm triage update", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("triage assessment not found")
	}
	return nil
}

// Count returns the total number of assessments
func (a *TriageAdapter) Count(ctx context.Context) (int, error) {
	var count int
	if err := a.client.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM triage_assessments`).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count triage assessments", err)
	}
	return count, nil
}
