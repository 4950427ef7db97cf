package availability

import (
	"errors"
	"time"
)

// StepMinutes is the fixed granularity between candidate slot starts.
const StepMinutes = 30

// ErrInvalidDuration rejects queries with a nonpositive service duration
// before any slot computation happens.
var ErrInvalidDuration = errors.New("service duration must be positive")

// ComputeAvailableSlots returns the ordered, bookable slot start times for a
// service of the given duration on date, using the default business hours as
// the fallback window.
//
// staff may be nil (no provider preference). appointments and blocks are the
// caller-fetched snapshots for that date; now drives past-time filtering.
// A closed or fully blocked day yields an empty, non-error result.
func ComputeAvailableSlots(date time.Time, durationMinutes int, staff *StaffSchedule, appointments []Appointment, blocks []Block, now time.Time) ([]TimeOfDay, error) {
	return ComputeAvailableSlotsAt(DefaultBusinessHours(), StepMinutes, date, durationMinutes, staff, appointments, blocks, now)
}

// ComputeAvailableSlotsAt is ComputeAvailableSlots with explicit business
// hours and step, for businesses that configure their own default window.
//
// The computation is pure: identical inputs yield identical output, and the
// whole list is materialized per call (at 30-minute steps a day holds at
// most a few dozen candidates).
func ComputeAvailableSlotsAt(hours BusinessHours, stepMinutes int, date time.Time, durationMinutes int, staff *StaffSchedule, appointments []Appointment, blocks []Block, now time.Time) ([]TimeOfDay, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}
	if stepMinutes <= 0 {
		stepMinutes = StepMinutes
	}

	window, open := ScheduleFor(staff, hours).WindowFor(date.Weekday())
	if !open {
		return nil, nil
	}

	var staffID string
	if staff != nil {
		staffID = staff.StaffID
	}
	conflicts := BuildConflictSet(appointments, blocks, staffID)
	if conflicts.AllDayBlocked() {
		return nil, nil
	}

	// Dates already behind the calendar have no bookable times at all;
	// today's date filters candidates against the clock.
	if dateOnly(date).Before(dateOnly(now)) {
		return nil, nil
	}
	today := dateOnly(date).Equal(dateOnly(now))
	clock := TimeOfDay{Hour: now.Hour(), Minute: now.Minute()}

	var slots []TimeOfDay
	for t := window.Open; !t.Add(durationMinutes).After(window.Close); t = t.Add(stepMinutes) {
		if today && !t.After(clock) {
			continue
		}
		if conflicts.Blocks(t, t.Add(durationMinutes)) {
			continue
		}
		slots = append(slots, t)
	}
	return slots, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
