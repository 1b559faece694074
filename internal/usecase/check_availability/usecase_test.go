package check_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

var nineAM = time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*memory.Store, *UseCase) {
	t.Helper()

	store := memory.NewStore()
	store.PutResource(domain.Resource{ID: "boat", Quantity: 2, Active: true})
	store.PutService(domain.Service{ID: "tour", Duration: 90, BufferTimeAfter: 30, Active: true})

	log := logger.NewNop()
	checker := availability.NewService(store, store, nil, log)
	return store, NewUseCase(store, checker, domain.DefaultStatusMachine(), 0, time.UTC, log)
}

func book(t *testing.T, store *memory.Store, start, end time.Time) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), &domain.Reservation{
		ResourceID: "boat", StartTime: start, EndTime: end, Status: domain.StatusConfirmed,
	}, []domain.ReservationItem{{ResourceID: "boat", StartTime: start, EndTime: end, GuestCount: 1}}))
}

func TestExecute_ServiceDerivedWindow(t *testing.T) {
	store, uc := setup(t)
	ctx := context.Background()

	resp, err := uc.Execute(ctx, &Request{ResourceID: "boat", ServiceID: "tour", StartTime: nineAM})
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, nineAM.Add(90*time.Minute), resp.EndTime)
	assert.Equal(t, 2, resp.TotalCapacity)
	assert.Equal(t, domain.CapacityPerReservation, resp.Mode)

	book(t, store, nineAM.Add(-time.Hour), nineAM)
	book(t, store, nineAM.Add(110*time.Minute), nineAM.Add(3*time.Hour))

	resp, err = uc.Execute(ctx, &Request{ResourceID: "boat", ServiceID: "tour", StartTime: nineAM})
	require.NoError(t, err)
	assert.True(t, resp.Available, "after-buffer reaches one booking, one unit left")
	assert.Equal(t, 1, resp.CurrentCount)

	book(t, store, nineAM, nineAM.Add(time.Hour))
	resp, err = uc.Execute(ctx, &Request{ResourceID: "boat", ServiceID: "tour", StartTime: nineAM})
	require.NoError(t, err)
	assert.False(t, resp.Available)
	assert.Equal(t, domain.ReasonAllUnitsBooked, resp.Reason)
}

func TestExecute_ExplicitWindow(t *testing.T) {
	_, uc := setup(t)
	end := nineAM.Add(15 * time.Minute)

	resp, err := uc.Execute(context.Background(), &Request{ResourceID: "boat", StartTime: nineAM, EndTime: &end})
	require.NoError(t, err)
	assert.Equal(t, end, resp.EndTime)

	_, err = uc.Execute(context.Background(), &Request{ResourceID: "boat", StartTime: nineAM})
	assert.ErrorIs(t, err, ErrInvalidInput, "no service and no end")
}

func TestExecute_Errors(t *testing.T) {
	_, uc := setup(t)
	ctx := context.Background()

	_, err := uc.Execute(ctx, &Request{StartTime: nineAM})
	assert.ErrorIs(t, err, ErrInvalidInput)

	before := nineAM.Add(-time.Minute)
	_, err = uc.Execute(ctx, &Request{ResourceID: "boat", StartTime: nineAM, EndTime: &before})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(ctx, &Request{ResourceID: "ghost", ServiceID: "tour", StartTime: nineAM})
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = uc.Execute(ctx, &Request{ResourceID: "boat", ServiceID: "ghost", StartTime: nineAM})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}
