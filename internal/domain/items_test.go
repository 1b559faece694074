package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRef_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Ref
	}{
		{input: `"r-1"`, want: "r-1"},
		{input: `{"id": "r-2", "name": "Room"}`, want: "r-2"},
		{input: `{"id": 17}`, want: "17"},
		{input: `42`, want: "42"},
		{input: `null`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var r Ref
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.want, r)
		})
	}

	var r Ref
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &r))
}

func TestResolveReservationItems_TopLevel(t *testing.T) {
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)

	items := ResolveReservationItems(RawReservation{
		Resource:  "r-1",
		Service:   "s-1",
		StartTime: &start,
	})
	require.Len(t, items, 1)
	assert.Equal(t, "r-1", items[0].ResourceID)
	assert.Equal(t, "s-1", items[0].ServiceID)
	assert.Equal(t, DefaultGuestCount, items[0].GuestCount)
	assert.False(t, items[0].HasEndTime())

	assert.Empty(t, ResolveReservationItems(RawReservation{Resource: "r-1"}))
	assert.Empty(t, ResolveReservationItems(RawReservation{StartTime: &start}))
}

func TestResolveReservationItems_InheritsFromTopLevel(t *testing.T) {
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	end := time.Date(2030, 1, 7, 10, 0, 0, 0, time.UTC)
	otherStart := time.Date(2030, 1, 7, 11, 0, 0, 0, time.UTC)
	guests := 3
	two := 2

	var raw RawReservation
	require.NoError(t, json.Unmarshal([]byte(`{
		"service": {"id": "s-top"},
		"items": [
			{"resource": "r-1", "startTime": "2030-01-07T09:00:00Z"},
			{"resource": {"id": "r-2"}, "service": "s-2", "startTime": "2030-01-07T11:00:00Z", "guestCount": 2},
			{"startTime": "2030-01-07T09:00:00Z"},
			{"resource": "r-4"}
		]
	}`), &raw))
	raw.EndTime = &end
	raw.GuestCount = &guests

	items := ResolveReservationItems(raw)
	require.Len(t, items, 2, "entries without resource or start are dropped")

	assert.Equal(t, ReservationItem{ResourceID: "r-1", ServiceID: "s-top", StartTime: start, EndTime: end, GuestCount: 3}, items[0])
	assert.Equal(t, ReservationItem{ResourceID: "r-2", ServiceID: "s-2", StartTime: otherStart, EndTime: end, GuestCount: two}, items[1])
}

func TestReservation_RawRoundTrip(t *testing.T) {
	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	key := "k-1"

	r := &Reservation{
		ID:             "res-1",
		ResourceID:     "r-1",
		ServiceID:      "s-1",
		CustomerID:     "c-1",
		StartTime:      start,
		EndTime:        end,
		Status:         StatusPending,
		GuestCount:     2,
		IdempotencyKey: &key,
	}

	items := ResolveReservationItems(r.Raw())
	require.Len(t, items, 1)
	assert.Equal(t, ReservationItem{ResourceID: "r-1", ServiceID: "s-1", StartTime: start, EndTime: end, GuestCount: 2}, items[0])
}
