package domain

import (
	"math"
	"time"
)

// EndTimeParams is the input of ComputeEndTime
type EndTimeParams struct {
	DurationType    DurationType
	ServiceDuration int // minutes
	StartTime       time.Time
	EndTime         *time.Time // required for flexible services
}

// EndTimeResult is the output of ComputeEndTime
type EndTimeResult struct {
	EndTime         time.Time
	DurationMinutes int
}

// ComputeEndTime derives a booking's end from its service's duration policy.
// It reads no clock: full-day depends only on StartTime's own date and location.
func ComputeEndTime(p EndTimeParams) (EndTimeResult, error) {
	switch p.DurationType {
	case DurationFullDay:
		y, m, d := p.StartTime.Date()
		end := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), p.StartTime.Location())
		return EndTimeResult{
			EndTime:         end,
			DurationMinutes: minutesBetween(p.StartTime, end),
		}, nil

	case DurationFlexible:
		if p.EndTime == nil || p.EndTime.IsZero() {
			return EndTimeResult{}, NewValidationError(ErrMissingRequiredEndTime, PathEndTime,
				"end time is required for flexible-duration services")
		}
		return EndTimeResult{
			EndTime:         *p.EndTime,
			DurationMinutes: minutesBetween(p.StartTime, *p.EndTime),
		}, nil

	default:
		return EndTimeResult{
			EndTime:         AddMinutes(p.StartTime, p.ServiceDuration),
			DurationMinutes: p.ServiceDuration,
		}, nil
	}
}

func minutesBetween(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Minutes()))
}
