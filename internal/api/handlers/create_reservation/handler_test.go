package create_reservation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/api/middleware"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

func newRouter(t *testing.T) *mux.Router {
	t.Helper()

	store := memory.NewStore()
	store.PutResource(domain.Resource{ID: "stylist", Quantity: 1, Active: true})
	store.PutService(domain.Service{ID: "cut", Duration: 60, DurationType: domain.DurationFixed, Active: true})

	log := logger.NewNop()
	checker := availability.NewService(store, store, nil, log)
	svc := reservations.NewService(store, store, checker, store, store, nil, log, reservations.Options{
		Machine:                 domain.DefaultStatusMachine(),
		CancelledStatus:         domain.StatusCancelled,
		ConfirmedStatus:         domain.StatusConfirmed,
		CancellationNoticeHours: 24,
		Location:                time.UTC,
	})

	r := mux.NewRouter()
	r.Use(middleware.Actor(func(role string) bool { return role == "admin" }))
	protected := r.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)
	protected.HandleFunc("/reservations", NewHandler(svc, log).Handle).Methods(http.MethodPost)
	return r
}

func post(r http.Handler, target, body, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(middleware.HeaderUserID, "u-1")
	if role != "" {
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

const body = `{"resource":"stylist","service":{"id":"cut"},"customer":"c-1","startTime":"2099-03-02T09:00:00Z"}`

func TestHandle_Created(t *testing.T) {
	r := newRouter(t)

	rec := post(r, "/reservations", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp models.ReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "stylist", resp.Resource)
	assert.Equal(t, "cut", resp.Service)
	assert.Equal(t, domain.StatusPending, resp.Status)
	assert.Equal(t, time.Date(2099, 3, 2, 10, 0, 0, 0, time.UTC), resp.EndTime.UTC())
}

func TestHandle_CapacityConflict(t *testing.T) {
	r := newRouter(t)

	require.Equal(t, http.StatusCreated, post(r, "/reservations", body, "").Code)

	rec := post(r, "/reservations", body, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.PathStartTime, resp.Path)
	assert.NotEmpty(t, resp.Message)
}

func TestHandle_StatusPolicy(t *testing.T) {
	r := newRouter(t)
	confirmed := `{"resource":"stylist","service":"cut","startTime":"2099-03-02T09:00:00Z","status":"confirmed"}`

	rec := post(r, "/reservations", confirmed, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = post(r, "/reservations", confirmed, "admin")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestHandle_SkipValidation(t *testing.T) {
	r := newRouter(t)
	require.Equal(t, http.StatusCreated, post(r, "/reservations", body, "").Code)

	rec := post(r, "/reservations?skipValidation=true", body, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = post(r, "/reservations?skipValidation=true", body, "admin")
	assert.Equal(t, http.StatusCreated, rec.Code, "privileged callers may overbook")

	rec = post(r, "/reservations?skipValidation=maybe", body, "admin")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandle_BadRequests(t *testing.T) {
	r := newRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "empty body", body: "", want: http.StatusBadRequest},
		{name: "malformed json", body: "{", want: http.StatusBadRequest},
		{name: "missing start", body: `{"resource":"stylist","service":"cut"}`, want: http.StatusBadRequest},
		{name: "unknown resource", body: `{"resource":"nope","service":"cut","startTime":"2099-03-02T09:00:00Z"}`, want: http.StatusNotFound},
		{name: "unknown service", body: `{"resource":"stylist","service":"nope","startTime":"2099-03-02T09:00:00Z"}`, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, post(r, "/reservations", tt.body, "").Code)
		})
	}
}

func TestHandle_RequiresUser(t *testing.T) {
	r := newRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
