package cancel_reservation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

func setup(t *testing.T) (*mux.Router, string) {
	t.Helper()

	store := memory.NewStore()
	store.PutResource(domain.Resource{ID: "table-1", Quantity: 1, Active: true})

	log := logger.NewNop()
	checker := availability.NewService(store, store, nil, log)
	svc := reservations.NewService(store, store, checker, store, store, nil, log, reservations.Options{
		Machine:                 domain.DefaultStatusMachine(),
		CancelledStatus:         domain.StatusCancelled,
		ConfirmedStatus:         domain.StatusConfirmed,
		CancellationNoticeHours: 24,
		Location:                time.UTC,
	})

	start := time.Date(2099, 5, 1, 19, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	created, err := svc.Create(context.Background(), &models.CreateRequest{
		Actor: models.Actor{UserID: "u-1"},
		Raw:   domain.RawReservation{Resource: "table-1", Customer: "u-1", StartTime: &start, EndTime: &end},
	})
	require.NoError(t, err)

	r := mux.NewRouter()
	r.Use(middleware.Actor(func(string) bool { return false }))
	r.HandleFunc("/reservations/{reservationId}/cancel", NewHandler(svc, log).Handle).Methods(http.MethodPost)
	return r, created.ID
}

func cancel(r http.Handler, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/reservations/"+id+"/cancel", strings.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "u-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandle_CancelWithReason(t *testing.T) {
	r, id := setup(t)

	rec := cancel(r, id, `{"cancellationReason":"plans changed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp models.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StatusCancelled, resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, "plans changed", *resp.CancellationReason)

	assert.Equal(t, http.StatusConflict, cancel(r, id, "").Code)
}

func TestHandle_EmptyBody(t *testing.T) {
	r, id := setup(t)

	rec := cancel(r, id, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandle_Errors(t *testing.T) {
	r, id := setup(t)

	assert.Equal(t, http.StatusNotFound, cancel(r, "missing", "").Code)
	assert.Equal(t, http.StatusBadRequest, cancel(r, id, "{").Code)
}
