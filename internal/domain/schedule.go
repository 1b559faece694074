package domain

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ScheduleType selects which slot list of a schedule is in effect
type ScheduleType string

const (
	ScheduleRecurring ScheduleType = "recurring"
	ScheduleManual    ScheduleType = "manual"
)

// DayOfWeek is a three-letter lower-case weekday name ("mon" ... "sun")
type DayOfWeek string

const (
	Monday    DayOfWeek = "mon"
	Tuesday   DayOfWeek = "tue"
	Wednesday DayOfWeek = "wed"
	Thursday  DayOfWeek = "thu"
	Friday    DayOfWeek = "fri"
	Saturday  DayOfWeek = "sat"
	Sunday    DayOfWeek = "sun"
)

var weekdays = map[time.Weekday]DayOfWeek{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

// DayOfWeekOf returns the DayOfWeek of t in t's location
func DayOfWeekOf(t time.Time) DayOfWeek {
	return weekdays[t.Weekday()]
}

// RecurringSlot is a weekly availability window
type RecurringSlot struct {
	Day       DayOfWeek        `json:"day"`
	StartTime types.TimeString `json:"startTime"`
	EndTime   types.TimeString `json:"endTime"`
}

// ManualSlot is an availability window on one specific date
type ManualSlot struct {
	Date      types.Date       `json:"date"`
	StartTime types.TimeString `json:"startTime"`
	EndTime   types.TimeString `json:"endTime"`
}

// ScheduleException suppresses every range of the schedule on Date
type ScheduleException struct {
	Date   types.Date `json:"date"`
	Reason string     `json:"reason,omitempty"`
}

// Schedule is a resource's availability policy
type Schedule struct {
	ID             string
	ResourceID     string
	Name           string
	ScheduleType   ScheduleType
	RecurringSlots []RecurringSlot
	ManualSlots    []ManualSlot
	Exceptions     []ScheduleException
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsException reports whether date is listed in the schedule's exceptions
func (s *Schedule) IsException(date time.Time) bool {
	for _, exc := range s.Exceptions {
		if SameDate(exc.Date.Time, date) {
			return true
		}
	}
	return false
}

// ResolveSchedule turns a schedule into concrete time ranges on date.
// Slots with malformed "HH:MM" strings are skipped.
func ResolveSchedule(s *Schedule, date time.Time) []TimeRange {
	if s == nil || !s.Active {
		return []TimeRange{}
	}

	// Exceptions override the schedule regardless of its type
	if s.IsException(date) {
		return []TimeRange{}
	}

	ranges := make([]TimeRange, 0)

	switch s.ScheduleType {
	case ScheduleRecurring:
		day := DayOfWeekOf(date)
		for _, slot := range s.RecurringSlots {
			if slot.Day != day {
				continue
			}
			if r, ok := combine(date, slot.StartTime, slot.EndTime); ok {
				ranges = append(ranges, r)
			}
		}
	case ScheduleManual:
		for _, slot := range s.ManualSlots {
			if !SameDate(slot.Date.Time, date) {
				continue
			}
			if r, ok := combine(date, slot.StartTime, slot.EndTime); ok {
				ranges = append(ranges, r)
			}
		}
	}

	return ranges
}

// ResolveSchedules unions the ranges of every schedule on date.
// Overlapping or duplicate ranges are kept as-is.
func ResolveSchedules(schedules []*Schedule, date time.Time) []TimeRange {
	ranges := make([]TimeRange, 0)
	for _, s := range schedules {
		ranges = append(ranges, ResolveSchedule(s, date)...)
	}
	return ranges
}

func combine(date time.Time, start, end types.TimeString) (TimeRange, bool) {
	from, err := start.On(date)
	if err != nil {
		return TimeRange{}, false
	}
	to, err := end.On(date)
	if err != nil {
		return TimeRange{}, false
	}
	return TimeRange{Start: from, End: to}, true
}
