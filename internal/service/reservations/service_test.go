package reservations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-ReservationService/internal/service/availability"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

var (
	now     = time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	nineAM  = time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	visitor = models.Actor{UserID: "u-1"}
	admin   = models.Actor{UserID: "admin", Privileged: true}
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type recorder struct {
	events []string
	fail   bool
}

func (r *recorder) add(e string) error {
	r.events = append(r.events, e)
	if r.fail {
		return errors.New("subscriber unavailable")
	}
	return nil
}

func (r *recorder) OnCreated(_ context.Context, res *domain.Reservation) error {
	return r.add("created:" + res.Status)
}

func (r *recorder) OnStatusChanged(_ context.Context, res *domain.Reservation, prev string) error {
	return r.add("changed:" + prev + "->" + res.Status)
}

func (r *recorder) OnConfirmed(_ context.Context, _ *domain.Reservation) error {
	return r.add("confirmed")
}

func (r *recorder) OnCancelled(_ context.Context, _ *domain.Reservation) error {
	return r.add("cancelled")
}

type rejections map[string]int

func (r rejections) ObserveLifecycleRejection(operation, stage string) {
	r[operation+"/"+stage]++
}

type fixture struct {
	store      *memory.Store
	svc        *Service
	hooks      *recorder
	rejections rejections
}

func setup(t *testing.T) *fixture {
	return setupWith(t, nil, nil)
}

// setupWith allows replacing the catalog seen by the service and tuning options
func setupWith(t *testing.T, catalog func(*memory.Store) CatalogRepository, configure func(*Options)) *fixture {
	t.Helper()

	store := memory.NewStore()
	store.PutResource(domain.Resource{ID: "stylist", Quantity: 1, Active: true})
	store.PutResource(domain.Resource{ID: "room", Quantity: 1, Active: true})
	store.PutResource(domain.Resource{ID: "hall", Quantity: 20, CapacityMode: domain.CapacityPerGuest, Active: true})
	store.PutService(domain.Service{ID: "cut", Duration: 60, DurationType: domain.DurationFixed, Active: true})
	store.PutService(domain.Service{ID: "consult", Duration: 30, DurationType: domain.DurationFlexible, Active: true})

	log := logger.NewNop()
	checker := availability.NewService(store, store, nil, log)
	rej := rejections{}

	opts := Options{
		Machine:                 domain.DefaultStatusMachine(),
		CancelledStatus:         domain.StatusCancelled,
		ConfirmedStatus:         domain.StatusConfirmed,
		CancellationNoticeHours: 24,
		Location:                time.UTC,
	}
	if configure != nil {
		configure(&opts)
	}

	var cat CatalogRepository = store
	if catalog != nil {
		cat = catalog(store)
	}

	svc := NewService(store, cat, checker, store, store, rej, log, opts)
	svc.timeProvider = fixedClock{t: now}

	hooks := &recorder{}
	svc.RegisterHook(hooks)

	return &fixture{store: store, svc: svc, hooks: hooks, rejections: rej}
}

func single(resource, service string, start time.Time) domain.RawReservation {
	return domain.RawReservation{
		Resource:  domain.Ref(resource),
		Service:   domain.Ref(service),
		Customer:  "c-1",
		StartTime: &start,
	}
}

func requireKind(t *testing.T, err error, kind error, path string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, kind)
	vErr, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, path, vErr.Path)
}

func TestCreate_DefaultsAndEndTime(t *testing.T) {
	f := setup(t)

	res, err := f.svc.Create(context.Background(), &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, nineAM.Add(time.Hour), res.EndTime)
	assert.Equal(t, 1, res.GuestCount)
	assert.Empty(t, res.Items)
	assert.Equal(t, []string{"created:pending"}, f.hooks.events)
}

func TestCreate_FixedDurationOverridesClientEnd(t *testing.T) {
	f := setup(t)

	raw := single("stylist", "cut", nineAM)
	end := nineAM.Add(3 * time.Hour)
	raw.EndTime = &end

	res, err := f.svc.Create(context.Background(), &models.CreateRequest{Actor: visitor, Raw: raw})
	require.NoError(t, err)
	assert.Equal(t, nineAM.Add(time.Hour), res.EndTime)
}

func TestCreate_Idempotency(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	raw := single("stylist", "cut", nineAM)
	raw.IdempotencyKey = "req-42"

	_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: raw})
	require.NoError(t, err)

	other := single("room", "cut", nineAM)
	other.IdempotencyKey = "req-42"
	_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: other})
	requireKind(t, err, domain.ErrDuplicateIdempotencyKey, domain.PathIdempotencyKey)
	assert.Equal(t, 1, f.rejections["create/idempotency"])
}

func TestCreate_FlexibleRequiresEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("room", "consult", nineAM)})
	requireKind(t, err, domain.ErrMissingRequiredEndTime, domain.PathEndTime)

	raw := single("room", "consult", nineAM)
	end := nineAM.Add(45 * time.Minute)
	raw.EndTime = &end
	res, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: raw})
	require.NoError(t, err)
	assert.Equal(t, end, res.EndTime)

	noService := single("room", "", nineAM.Add(2*time.Hour))
	_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: noService})
	assert.ErrorIs(t, err, domain.ErrMissingRequiredEndTime, "items without a service need an explicit end")
}

func TestCreate_CapacityConflict(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM.Add(30*time.Minute))})
	requireKind(t, err, domain.ErrCapacityExceeded, domain.PathStartTime)
	assert.Equal(t, 1, f.rejections["create/conflicts"])

	_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM.Add(time.Hour))})
	assert.NoError(t, err, "back-to-back booking fits")
}

func TestCreate_MultiItemAllOrNothing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("room", "cut", nineAM)})
	require.NoError(t, err)

	start := nineAM
	composite := domain.RawReservation{
		Service:  "cut",
		Customer: "c-2",
		Items: []domain.RawItem{
			{Resource: "stylist", StartTime: &start},
			{Resource: "room", StartTime: &start},
		},
	}
	_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: composite})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)

	stylist := "stylist"
	list, err := f.svc.List(ctx, &models.ListRequest{ResourceID: &stylist})
	require.NoError(t, err)
	assert.Zero(t, list.Total, "no item of a rejected booking is written")

	later := nineAM.Add(2 * time.Hour)
	composite.Items[1].StartTime = &later
	res, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: composite})
	require.NoError(t, err)
	assert.Equal(t, "stylist", res.Resource)
	assert.Equal(t, nineAM, res.StartTime)
	assert.Equal(t, later.Add(time.Hour), res.EndTime)
	require.Len(t, res.Items, 2)
}

func TestCreate_StatusPolicy(t *testing.T) {
	tests := []struct {
		name    string
		actor   models.Actor
		status  string
		wantErr error
	}{
		{name: "visitor default", actor: visitor, status: ""},
		{name: "visitor confirmed", actor: visitor, status: domain.StatusConfirmed, wantErr: domain.ErrInvalidCreateStatus},
		{name: "admin confirmed", actor: admin, status: domain.StatusConfirmed},
		{name: "admin terminal", actor: admin, status: domain.StatusCompleted, wantErr: domain.ErrInvalidCreateStatus},
		{name: "admin cancelled", actor: admin, status: domain.StatusCancelled, wantErr: domain.ErrInvalidCreateStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			raw := single("stylist", "cut", nineAM)
			raw.Status = tt.status

			_, err := f.svc.Create(context.Background(), &models.CreateRequest{Actor: tt.actor, Raw: raw})
			if tt.wantErr != nil {
				requireKind(t, err, tt.wantErr, domain.PathStatus)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCreate_SkipValidation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM), SkipValidation: true})
	assert.ErrorIs(t, err, ErrAccessDenied)

	raw := single("stylist", "cut", nineAM)
	raw.Status = domain.StatusCompleted
	res, err := f.svc.Create(ctx, &models.CreateRequest{Actor: admin, Raw: raw, SkipValidation: true})
	require.NoError(t, err, "migration writes bypass capacity and status policy")
	assert.Equal(t, domain.StatusCompleted, res.Status)
	assert.Equal(t, nineAM.Add(time.Hour), res.EndTime)
}

func TestCreate_RequiresResourceAndStart(t *testing.T) {
	f := setup(t)

	_, err := f.svc.Create(context.Background(), &models.CreateRequest{Actor: visitor, Raw: domain.RawReservation{Resource: "stylist"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Create(context.Background(), &models.CreateRequest{Actor: visitor, Raw: single("ghost", "cut", nineAM)})
	assert.ErrorIs(t, err, ErrResourceNotFound)

	_, err = f.svc.Create(context.Background(), &models.CreateRequest{Actor: visitor, Raw: single("stylist", "ghost", nineAM)})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestUpdate_Transitions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	require.NoError(t, err)

	completed := domain.StatusCompleted
	_, err = f.svc.Update(ctx, &models.UpdateRequest{Actor: admin, ID: res.ID, Patch: models.Patch{Status: &completed}})
	requireKind(t, err, domain.ErrInvalidTransition, domain.PathStatus)

	unknown := "archived"
	_, err = f.svc.Update(ctx, &models.UpdateRequest{Actor: admin, ID: res.ID, Patch: models.Patch{Status: &unknown}})
	assert.ErrorIs(t, err, domain.ErrUnknownStatus)

	confirmed := domain.StatusConfirmed
	updated, err := f.svc.Update(ctx, &models.UpdateRequest{Actor: admin, ID: res.ID, Patch: models.Patch{Status: &confirmed}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, updated.Status)
	assert.Equal(t, []string{"created:pending", "changed:pending->confirmed", "confirmed"}, f.hooks.events)

	notes := "window seat"
	updated, err = f.svc.Update(ctx, &models.UpdateRequest{Actor: visitor, ID: res.ID, Patch: models.Patch{Notes: &notes}})
	require.NoError(t, err, "same status is not a transition")
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)
	assert.Len(t, f.hooks.events, 3, "no status hooks without a status change")
}

func TestUpdate_ExcludesOwnReservation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	res, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	require.NoError(t, err)

	moved := nineAM.Add(30 * time.Minute)
	updated, err := f.svc.Update(ctx, &models.UpdateRequest{Actor: visitor, ID: res.ID, Patch: models.Patch{StartTime: &moved}})
	require.NoError(t, err)
	assert.Equal(t, moved, updated.StartTime)
	assert.Equal(t, moved.Add(time.Hour), updated.EndTime)

	other, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM.Add(2*time.Hour))})
	require.NoError(t, err)

	clash := nineAM.Add(time.Hour)
	_, err = f.svc.Update(ctx, &models.UpdateRequest{Actor: visitor, ID: other.ID, Patch: models.Patch{StartTime: &clash}})
	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	assert.Equal(t, 1, f.rejections["update/conflicts"])

	_, err = f.svc.Update(ctx, &models.UpdateRequest{Actor: visitor, ID: "missing", Patch: models.Patch{StartTime: &clash}})
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestCancel_NoticePeriod(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	soon, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", now.Add(2*time.Hour))})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, &models.CancelRequest{Actor: visitor, ID: soon.ID, CancellationReason: "sick"})
	requireKind(t, err, domain.ErrCancellationNoticeViolation, domain.PathStatus)
	assert.Equal(t, 1, f.rejections["update/cancellation_notice"])

	later, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	require.NoError(t, err)
	f.hooks.events = nil

	cancelled, err := f.svc.Cancel(ctx, &models.CancelRequest{Actor: visitor, ID: later.ID, CancellationReason: "plans changed"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "plans changed", *cancelled.CancellationReason)
	assert.Equal(t, []string{"changed:pending->cancelled", "cancelled"}, f.hooks.events)

	_, err = f.svc.Cancel(ctx, &models.CancelRequest{Actor: visitor, ID: later.ID})
	assert.ErrorIs(t, err, ErrAlreadyCancelled)

	_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	assert.NoError(t, err, "cancelled reservation releases capacity")
}

func TestHooks_FailureDoesNotFailWrite(t *testing.T) {
	f := setup(t)
	f.hooks.fail = true

	res, err := f.svc.Create(context.Background(), &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	require.NoError(t, err)

	got, err := f.svc.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
}

func TestList_Filters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("room", "cut", nineAM)})
	require.NoError(t, err)

	room := "room"
	list, err := f.svc.List(ctx, &models.ListRequest{ResourceID: &room})
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "room", list.Reservations[0].Resource)

	_, err = f.svc.List(ctx, &models.ListRequest{Statuses: []string{"archived"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreate_ItemsOfOneBookingShareCapacity(t *testing.T) {
	ctx := context.Background()
	start := nineAM
	end := nineAM.Add(2 * time.Hour)
	fifteen := 15

	tests := []struct {
		name    string
		items   []domain.RawItem
		wantErr bool
	}{
		{
			name: "per-guest items overflow together",
			items: []domain.RawItem{
				{Resource: "hall", StartTime: &start, EndTime: &end, GuestCount: &fifteen},
				{Resource: "hall", StartTime: &start, EndTime: &end, GuestCount: &fifteen},
			},
			wantErr: true,
		},
		{
			name: "per-reservation items on one unit overlap",
			items: []domain.RawItem{
				{Resource: "stylist", StartTime: &start, EndTime: &end},
				{Resource: "stylist", StartTime: &start, EndTime: &end},
			},
			wantErr: true,
		},
		{
			name: "back-to-back items on one unit fit",
			items: []domain.RawItem{
				{Resource: "stylist", StartTime: &start, EndTime: &end},
				{Resource: "stylist", StartTime: &end, EndTime: ptr.Ptr(end.Add(time.Hour))},
			},
		},
		{
			name: "items on different resources do not interfere",
			items: []domain.RawItem{
				{Resource: "hall", StartTime: &start, EndTime: &end, GuestCount: &fifteen},
				{Resource: "room", StartTime: &start, EndTime: &end},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			_, err := f.svc.Create(ctx, &models.CreateRequest{
				Actor: visitor,
				Raw:   domain.RawReservation{Customer: "c-1", Items: tt.items},
			})
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}

			requireKind(t, err, domain.ErrCapacityExceeded, domain.PathStartTime)
			list, err := f.svc.List(ctx, &models.ListRequest{})
			require.NoError(t, err)
			assert.Zero(t, list.Total)
			assert.Equal(t, 1, f.rejections["create/conflicts"])
		})
	}
}

func TestCreate_GuestCountMustBePositive(t *testing.T) {
	ctx := context.Background()
	start := nineAM
	end := nineAM.Add(time.Hour)

	tests := []struct {
		name string
		raw  domain.RawReservation
	}{
		{
			name: "zero on reservation",
			raw:  domain.RawReservation{Resource: "hall", StartTime: &start, EndTime: &end, GuestCount: ptr.Ptr(0)},
		},
		{
			name: "negative on reservation",
			raw:  domain.RawReservation{Resource: "hall", StartTime: &start, EndTime: &end, GuestCount: ptr.Ptr(-7)},
		},
		{
			name: "zero on item",
			raw: domain.RawReservation{Items: []domain.RawItem{
				{Resource: "hall", StartTime: &start, EndTime: &end, GuestCount: ptr.Ptr(2)},
				{Resource: "room", StartTime: &start, EndTime: &end, GuestCount: ptr.Ptr(0)},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)

			_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: tt.raw})
			assert.ErrorIs(t, err, ErrInvalidInput)

			_, err = f.svc.Create(ctx, &models.CreateRequest{Actor: admin, Raw: tt.raw, SkipValidation: true})
			assert.ErrorIs(t, err, ErrInvalidInput, "skipping checks does not admit invalid input")

			list, err := f.svc.List(ctx, &models.ListRequest{})
			require.NoError(t, err)
			assert.Zero(t, list.Total)
		})
	}
}

func TestUpdate_GuestCountMustBePositive(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	start := nineAM
	end := nineAM.Add(time.Hour)

	res, err := f.svc.Create(ctx, &models.CreateRequest{
		Actor: visitor,
		Raw:   domain.RawReservation{Resource: "hall", StartTime: &start, EndTime: &end, GuestCount: ptr.Ptr(4)},
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, &models.UpdateRequest{Actor: visitor, ID: res.ID, Patch: models.Patch{GuestCount: ptr.Ptr(0)}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	stored, err := f.svc.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, stored.GuestCount)
}

// flakyCatalog fails every GetService call after the first `healthy` ones
type flakyCatalog struct {
	CatalogRepository
	healthy int
	calls   int
}

func (c *flakyCatalog) GetService(ctx context.Context, id string) (*domain.Service, error) {
	c.calls++
	if c.calls > c.healthy {
		return nil, errors.New("catalog read timeout")
	}
	return c.CatalogRepository.GetService(ctx, id)
}

func TestCreate_DefaultBuffer(t *testing.T) {
	ctx := context.Background()
	withBuffer := func(o *Options) { o.DefaultBufferMinutes = 30 }

	occupy := func(t *testing.T, f *fixture) {
		t.Helper()
		require.NoError(t, f.store.Create(ctx, &domain.Reservation{
			ResourceID: "stylist",
			StartTime:  nineAM.Add(time.Hour),
			EndTime:    nineAM.Add(2 * time.Hour),
			Status:     domain.StatusConfirmed,
		}, []domain.ReservationItem{{
			ResourceID: "stylist",
			StartTime:  nineAM.Add(time.Hour),
			EndTime:    nineAM.Add(2 * time.Hour),
			GuestCount: 1,
		}}))
	}

	t.Run("item without service", func(t *testing.T) {
		f := setupWith(t, nil, withBuffer)
		occupy(t, f)

		start := nineAM
		end := nineAM.Add(time.Hour)
		_, err := f.svc.Create(ctx, &models.CreateRequest{
			Actor: visitor,
			Raw:   domain.RawReservation{Resource: "stylist", StartTime: &start, EndTime: &end},
		})
		requireKind(t, err, domain.ErrCapacityExceeded, domain.PathStartTime)
	})

	t.Run("service buffers win over default", func(t *testing.T) {
		f := setupWith(t, nil, withBuffer)
		occupy(t, f)

		_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
		assert.NoError(t, err)
	})

	t.Run("buffer lookup failure falls back to default", func(t *testing.T) {
		f := setupWith(t, func(store *memory.Store) CatalogRepository {
			return &flakyCatalog{CatalogRepository: store, healthy: 1}
		}, withBuffer)
		occupy(t, f)

		_, err := f.svc.Create(ctx, &models.CreateRequest{Actor: visitor, Raw: single("stylist", "cut", nineAM)})
		requireKind(t, err, domain.ErrCapacityExceeded, domain.PathStartTime)
	})
}
