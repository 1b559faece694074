package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeString_Validate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "morning", value: "09:00"},
		{name: "late evening", value: "23:59"},
		{name: "missing minutes", value: "9", wantErr: true},
		{name: "hour out of range", value: "25:00", wantErr: true},
		{name: "empty", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeStringFromString(tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTimeString_On(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	date := time.Date(2030, 1, 7, 17, 45, 0, 0, loc)

	got, err := TimeString("09:30").On(date)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2030, 1, 7, 9, 30, 0, 0, loc), got)
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("11:30").AddMinutes(45)
	require.NoError(t, err)
	assert.Equal(t, TimeString("12:15"), got)

	_, err = TimeString("23:30").AddMinutes(45)
	assert.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("10:01").IsAfter("10:00"))
}
