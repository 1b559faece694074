package reservation

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

func TestOverlapQuery(t *testing.T) {
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	filter := domain.OverlapFilter{
		ResourceID:     "r-1",
		Statuses:       []string{"pending", "confirmed"},
		EffectiveStart: start,
		EffectiveEnd:   start.Add(time.Hour),
	}

	query, args, err := overlapQuery(psqlbuilder.Select("COUNT(*)"), filter).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT COUNT(*) FROM reservation_items ri JOIN reservations r ON r.id = ri.reservation_id "+
			"WHERE ri.resource_id = $1 AND r.status IN ($2,$3) AND ri.start_time < $4 AND ri.end_time > $5",
		query)
	assert.Equal(t, []interface{}{"r-1", "pending", "confirmed", start.Add(time.Hour), start}, args)

	filter.ExcludeReservationID = "self"
	query, args, err = overlapQuery(psqlbuilder.Select("ri.guest_count"), filter).ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "AND r.id <> $6")
	assert.Equal(t, "self", args[5])
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &pq.Error{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}

func TestUniqueSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, uniqueSorted([]string{"c", "a", "", "b", "a"}))
}

func TestLockResources_RequiresTransaction(t *testing.T) {
	r := NewRepository(nil)
	err := r.LockResources(context.Background(), []string{"r-1"})
	assert.ErrorIs(t, err, ErrLock)
}

func TestGetByID_InvalidUUID(t *testing.T) {
	r := NewRepository(nil)
	_, err := r.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrReservationNotFound)
}
