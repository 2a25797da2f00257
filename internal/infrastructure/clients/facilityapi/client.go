package facilityapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/medroute/navigator/internal/domain/entities"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

const defaultTimeout = 8 * time.Second

// Client is the upstream facility/capacity API.
type Client interface {
	ListFacilities(ctx context.Context) ([]entities.Facility, error)
	GetCapacity(ctx context.Context, facilityID string) (entities.CapacitySnapshot, error)
}

// HTTPClient talks to the facility API over REST. Identical concurrent
// requests are coalesced: a second caller awaiting an in-flight request
// shares its result instead of issuing a new network call.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	inflight   singleflight.Group
}

// NewClient creates a facility API client with the default 8s timeout.
func NewClient(baseURL string) *HTTPClient {
	return NewClientWithTimeout(baseURL, defaultTimeout)
}

// NewClientWithTimeout creates a facility API client with an explicit timeout.
func NewClientWithTimeout(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// facilityRecord tolerates partial upstream facility payloads. Defaults are
// applied during transformation, never during decoding.
type facilityRecord struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Location       *entities.Location `json:"location"`
	Address        string             `json:"address"`
	Phone          string             `json:"phone"`
	Specialties    []string           `json:"specialties"`
	EmergencyLevel string             `json:"emergencyLevel"`
	Rating         *float64           `json:"rating"`
	Capacity       *int               `json:"capacity"`
	FacilityType   string             `json:"facilityType"`
	Ownership      string             `json:"ownership"`
	City           string             `json:"city"`
	Province       string             `json:"province"`
}

// departmentRecord tolerates the two field namings the capacity endpoint is
// known to emit.
type departmentRecord struct {
	DepartmentName       string                   `json:"Department_name"`
	Specialty            string                   `json:"Specialty"`
	CurrentBedsAvailable int                      `json:"Current_beds_available"`
	TotalBeds            int                      `json:"Total_beds"`
	CapacityBeds         int                      `json:"Capacity_beds"`
	WaitTimeMinutes      *int                     `json:"Wait_time_minutes"`
	CurrentPatients      int                      `json:"Current_patients"`
	CurrentDoctorsOnDuty int                      `json:"Current_doctors_on_duty"`
	Status               *entities.CapacityStatus `json:"Status"`
}

// ListFacilities fetches the full facility catalog.
func (c *HTTPClient) ListFacilities(ctx context.Context) ([]entities.Facility, error) {
	var records []facilityRecord
	if err := c.doJSON(ctx, fmt.Sprintf("%s/facilities", c.baseURL), &records); err != nil {
		return nil, err
	}

	facilities := make([]entities.Facility, 0, len(records))
	for _, rec := range records {
		facilities = append(facilities, transformFacility(rec))
	}
	return facilities, nil
}

// GetCapacity fetches live department capacity for one facility.
func (c *HTTPClient) GetCapacity(ctx context.Context, facilityID string) (entities.CapacitySnapshot, error) {
	if strings.TrimSpace(facilityID) == "" {
		return nil, apperrors.NewValidationError("facility id is required")
	}

	var records []departmentRecord
	endpoint := fmt.Sprintf("%s/facilities/%s/capacity", c.baseURL, url.PathEscape(facilityID))
	if err := c.doJSON(ctx, endpoint, &records); err != nil {
		return nil, err
	}

	return transformCapacity(records), nil
}

// doJSON performs a deduplicated GET and decodes the JSON body into out.
func (c *HTTPClient) doJSON(ctx context.Context, endpoint string, out interface{}) error {
	body, err, _ := c.inflight.Do(endpoint, func() (interface{}, error) {
		return c.fetch(ctx, endpoint)
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return apperrors.NewExternalError("failed to decode facility api response", err)
	}
	return nil
}

func (c *HTTPClient) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build facility api request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.NewTimeoutError("facility api request timed out", err)
		}
		return nil, apperrors.NewExternalError("facility api request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewExternalError(fmt.Sprintf("facility api returned status %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isTimeout(err) {
			return nil, apperrors.NewTimeoutError("facility api response read timed out", err)
		}
		return nil, apperrors.NewExternalError("failed to read facility api response", err)
	}
	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func transformFacility(rec facilityRecord) entities.Facility {
	f := entities.Facility{
		ID:             rec.ID,
		Name:           rec.Name,
		Address:        rec.Address,
		Phone:          rec.Phone,
		Specialties:    rec.Specialties,
		EmergencyLevel: rec.EmergencyLevel,
		Rating:         4.0,
		Capacity:       50,
		FacilityType:   rec.FacilityType,
		Ownership:      rec.Ownership,
		City:           rec.City,
		Province:       rec.Province,
	}
	if rec.Location != nil {
		f.Location = *rec.Location
	}
	if len(f.Specialties) == 0 {
		f.Specialties = []string{entities.SpecialtyGeneral}
	}
	if rec.Rating != nil {
		f.Rating = *rec.Rating
	}
	if rec.Capacity != nil {
		f.Capacity = *rec.Capacity
	}
	return f
}

func transformCapacity(records []departmentRecord) entities.CapacitySnapshot {
	snapshot := entities.CapacitySnapshot{}
	for _, dept := range records {
		name := dept.DepartmentName
		if name == "" {
			name = dept.Specialty
		}
		specialty := entities.NormalizeDepartmentName(name)

		total := dept.TotalBeds
		if total == 0 {
			total = dept.CapacityBeds
		}
		if total == 0 {
			total = 20
		}

		waitTime := entities.EstimateWaitTime(dept.CurrentPatients, dept.CurrentDoctorsOnDuty)
		if dept.WaitTimeMinutes != nil {
			waitTime = *dept.WaitTimeMinutes
		}

		status := entities.StatusForOccupancy(dept.CurrentBedsAvailable, dept.TotalBeds)
		if dept.Status != nil {
			status = *dept.Status
		}

		snapshot[specialty] = entities.DepartmentCapacity{
			Available: dept.CurrentBedsAvailable,
			Total:     total,
			WaitTime:  waitTime,
			Status:    status,
		}
	}

	// Emergency and general entries are always present so routing never
	// scores against a missing department.
	if _, ok := snapshot[entities.SpecialtyEmergency]; !ok {
		snapshot[entities.SpecialtyEmergency] = entities.DepartmentCapacity{Available: 5, Total: 15, WaitTime: 45, Status: entities.CapacityStatusModerate}
	}
	if _, ok := snapshot[entities.SpecialtyGeneral]; !ok {
		snapshot[entities.SpecialtyGeneral] = entities.DepartmentCapacity{Available: 10, Total: 25, WaitTime: 90, Status: entities.CapacityStatusModerate}
	}
	return snapshot
}
