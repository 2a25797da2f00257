package facilityapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/infrastructure/clients/facilityapi"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

func TestHTTPClient_ListFacilities(t *testing.T) {
	t.Run("tolerates partial records and applies defaults", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/facilities", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id":"fac_1","name":"Full Hospital","location":{"lat":-26.2,"lng":28.0},"specialties":["emergency"],"rating":4.8,"capacity":120},
				{"id":"fac_2","name":"Sparse Clinic"}
			]`))
		}))
		defer server.Close()

		client := facilityapi.NewClient(server.URL)
		facilities, err := client.ListFacilities(context.Background())
		require.NoError(t, err)
		require.Len(t, facilities, 2)

		assert.Equal(t, 4.8, facilities[0].Rating)
		assert.Equal(t, 120, facilities[0].Capacity)

		// Sparse record gets documented defaults
		sparse := facilities[1]
		assert.Equal(t, 4.0, sparse.Rating)
		assert.Equal(t, 50, sparse.Capacity)
		assert.Equal(t, []string{"general"}, sparse.Specialties)
	})

	t.Run("classifies timeout distinctly", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := facilityapi.NewClientWithTimeout(server.URL, 50*time.Millisecond)
		_, err := client.ListFacilities(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeTimeout))
	})

	t.Run("non-2xx is an external error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := facilityapi.NewClient(server.URL)
		_, err := client.ListFacilities(context.Background())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})

	t.Run("concurrent identical requests are coalesced", func(t *testing.T) {
		var calls atomic.Int32
		gate := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			<-gate
			w.Write([]byte(`[{"id":"fac_1","name":"Hospital"}]`))
		}))
		defer server.Close()

		client := facilityapi.NewClient(server.URL)

		results := make(chan error, 2)
		for i := 0; i < 2; i++ {
			go func() {
				_, err := client.ListFacilities(context.Background())
				results <- err
			}()
		}

		// Give both goroutines time to reach the in-flight request
		time.Sleep(50 * time.Millisecond)
		close(gate)

		require.NoError(t, <-results)
		require.NoError(t, <-results)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestHTTPClient_GetCapacity(t *testing.T) {
	t.Run("normalizes departments and tolerates field variants", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/facilities/fac_1/capacity", r.URL.Path)
			w.Write([]byte(`[
				{"Department_name":"Emergency Room","Current_beds_available":4,"Total_beds":20,"Wait_time_minutes":35},
				{"Specialty":"Cardiology Ward","Current_beds_available":2,"Capacity_beds":10,"Current_patients":12,"Current_doctors_on_duty":2}
			]`))
		}))
		defer server.Close()

		client := facilityapi.NewClient(server.URL)
		snapshot, err := client.GetCapacity(context.Background(), "fac_1")
		require.NoError(t, err)

		emergency := snapshot["emergency"]
		assert.Equal(t, 4, emergency.Available)
		assert.Equal(t, 20, emergency.Total)
		assert.Equal(t, 35, emergency.WaitTime)

		cardiology := snapshot["cardiology"]
		assert.Equal(t, 10, cardiology.Total)
		// 12 patients / 2 doctors * 15 minutes
		assert.Equal(t, 90, cardiology.WaitTime)

		// General is synthesized even when upstream omits it
		_, hasGeneral := snapshot["general"]
		assert.True(t, hasGeneral)
	})

	t.Run("rejects empty facility id", func(t *testing.T) {
		client := facilityapi.NewClient("http://localhost:0")
		_, err := client.GetCapacity(context.Background(), " ")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("malformed body is an external error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{not json`))
		}))
		defer server.Close()

		client := facilityapi.NewClient(server.URL)
		_, err := client.GetCapacity(context.Background(), "fac_1")
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeExternal))
	})
}

func TestTransformCapacityStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"Department_name":"Emergency","Current_beds_available":1,"Total_beds":20},
			{"Department_name":"General Ward","Current_beds_available":0,"Total_beds":20,"Status":"CRITICAL"}
		]`))
	}))
	defer server.Close()

	client := facilityapi.NewClient(server.URL)
	snapshot, err := client.GetCapacity(context.Background(), "fac_1")
	require.NoError(t, err)

	// 19/20 occupied is 95 percent
	assert.Equal(t, entities.CapacityStatusCritical, snapshot["emergency"].Status)
	// Explicit upstream status wins over the derived one
	assert.Equal(t, entities.CapacityStatusCritical, snapshot["general"].Status)
}
