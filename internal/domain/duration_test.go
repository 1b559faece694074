package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeEndTime_Fixed(t *testing.T) {
	start := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)

	res, err := ComputeEndTime(EndTimeParams{
		DurationType:    DurationFixed,
		ServiceDuration: 45,
		StartTime:       start,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 1, 8, 45, 0, 0, time.UTC), res.EndTime)
	assert.Equal(t, 45, res.DurationMinutes)

	again, err := ComputeEndTime(EndTimeParams{DurationType: DurationFixed, ServiceDuration: 45, StartTime: start})
	require.NoError(t, err)
	assert.Equal(t, res, again)
}

func TestComputeEndTime_FullDay(t *testing.T) {
	start := time.Date(2030, 1, 1, 6, 0, 0, 0, time.UTC)

	res, err := ComputeEndTime(EndTimeParams{
		DurationType:    DurationFullDay,
		ServiceDuration: 30,
		StartTime:       start,
	})
	require.NoError(t, err)
	assert.Equal(t, 23, res.EndTime.Hour())
	assert.Equal(t, 59, res.EndTime.Minute())
	assert.True(t, SameDate(start, res.EndTime))
	assert.Equal(t, 1080, res.DurationMinutes)
}

func TestComputeEndTime_FullDayKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	start := time.Date(2030, 1, 1, 22, 0, 0, 0, loc)

	res, err := ComputeEndTime(EndTimeParams{DurationType: DurationFullDay, StartTime: start})
	require.NoError(t, err)
	assert.Equal(t, loc, res.EndTime.Location())
	assert.Equal(t, 1, res.EndTime.Day())
	assert.Equal(t, 120, res.DurationMinutes)
}

func TestComputeEndTime_Flexible(t *testing.T) {
	start := time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC)
	end := time.Date(2030, 1, 1, 11, 20, 0, 0, time.UTC)

	res, err := ComputeEndTime(EndTimeParams{
		DurationType:    DurationFlexible,
		ServiceDuration: 60,
		StartTime:       start,
		EndTime:         &end,
	})
	require.NoError(t, err)
	assert.Equal(t, end, res.EndTime)
	assert.Equal(t, 200, res.DurationMinutes)

	_, err = ComputeEndTime(EndTimeParams{DurationType: DurationFlexible, StartTime: start})
	require.ErrorIs(t, err, ErrMissingRequiredEndTime)
	vErr, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, PathEndTime, vErr.Path)
}
