package availability

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Record shapes as exchanged with the data store. Dates are "YYYY-MM-DD",
// times are 24-hour "HH:MM".

// ErrMalformedTime marks a record whose "HH:MM" field failed to parse. Such
// records are excluded from the conflict set instead of aborting the whole
// computation; one bad row must not hide a full day of availability.
var ErrMalformedTime = errors.New("malformed time of day")

type AppointmentRecord struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	StaffID   string `json:"staff_id,omitempty"`
	Status    string `json:"status"`
}

type BlockedIntervalRecord struct {
	ID        string `json:"id,omitempty"`
	Date      string `json:"date"`
	StaffID   string `json:"staff_id,omitempty"`
	IsAllDay  bool   `json:"is_all_day,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

type DayHoursRecord struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type StaffRecord struct {
	ID           string                    `json:"id"`
	Availability map[string]DayHoursRecord `json:"availability,omitempty"`
}

// ParseDate parses a "YYYY-MM-DD" calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", s, time.UTC)
}

// DecodeAppointments converts store records into conflict snapshots. Records
// with unparsable times are dropped and reported; the returned errors are
// data-quality diagnostics, not failures.
func DecodeAppointments(records []AppointmentRecord) ([]Appointment, []error) {
	var (
		out  []Appointment
		errs []error
	)
	for _, rec := range records {
		start, err := ParseTimeOfDay(rec.StartTime)
		if err != nil {
			errs = append(errs, fmt.Errorf("appointment %s start_time %q: %w", rec.ID, rec.StartTime, ErrMalformedTime))
			continue
		}
		end, err := ParseTimeOfDay(rec.EndTime)
		if err != nil {
			errs = append(errs, fmt.Errorf("appointment %s end_time %q: %w", rec.ID, rec.EndTime, ErrMalformedTime))
			continue
		}
		out = append(out, Appointment{
			ID:      rec.ID,
			StaffID: rec.StaffID,
			Status:  rec.Status,
			Start:   start,
			End:     end,
		})
	}
	return out, errs
}

// DecodeBlocks converts store records into conflict snapshots. All-day
// blocks ignore their time fields entirely; partial blocks with unparsable
// times are dropped and reported.
func DecodeBlocks(records []BlockedIntervalRecord) ([]Block, []error) {
	var (
		out  []Block
		errs []error
	)
	for _, rec := range records {
		if rec.IsAllDay {
			out = append(out, Block{StaffID: rec.StaffID, AllDay: true})
			continue
		}
		start, err := ParseTimeOfDay(rec.StartTime)
		if err != nil {
			errs = append(errs, fmt.Errorf("blocked interval %s start_time %q: %w", rec.ID, rec.StartTime, ErrMalformedTime))
			continue
		}
		end, err := ParseTimeOfDay(rec.EndTime)
		if err != nil {
			errs = append(errs, fmt.Errorf("blocked interval %s end_time %q: %w", rec.ID, rec.EndTime, ErrMalformedTime))
			continue
		}
		out = append(out, Block{StaffID: rec.StaffID, Start: start, End: end})
	}
	return out, errs
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// StaffScheduleFromRecord builds the weekly schedule from a staff record.
// A nil record (no staff preference) yields nil. Unknown weekday keys are
// ignored; raw time strings are kept so window resolution can fall back per
// field.
func StaffScheduleFromRecord(rec *StaffRecord) *StaffSchedule {
	if rec == nil {
		return nil
	}
	sched := &StaffSchedule{StaffID: rec.ID}
	for name, day := range rec.Availability {
		weekday, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			continue
		}
		if sched.Week == nil {
			sched.Week = map[time.Weekday]DayHours{}
		}
		sched.Week[weekday] = DayHours{
			Enabled: day.Enabled,
			Start:   day.Start,
			End:     day.End,
		}
	}
	return sched
}
