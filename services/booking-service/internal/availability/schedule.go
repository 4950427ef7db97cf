package availability

import "time"

// WorkingWindow is the open-to-close interval during which appointments are
// accepted on a given day.
type WorkingWindow struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// Closed reports whether the window cannot hold any appointment. An inverted
// window (open >= close) is treated as closed rather than producing
// negative-length days.
func (w WorkingWindow) Closed() bool {
	return !w.Open.Before(w.Close)
}

// BusinessHours is the business-wide default window. It applies on every
// weekday for which no staff-specific schedule entry exists.
type BusinessHours struct {
	Open  TimeOfDay
	Close TimeOfDay
}

// DefaultBusinessHours returns the 09:00-18:00 fallback used when the
// business has not configured its own hours.
func DefaultBusinessHours() BusinessHours {
	return BusinessHours{
		Open:  TimeOfDay{Hour: 9},
		Close: TimeOfDay{Hour: 18},
	}
}

// WindowFor implements WindowSource. Business defaults apply uniformly,
// weekends included; closing specific days is done per staff member or with
// all-day blocks.
func (b BusinessHours) WindowFor(time.Weekday) (WorkingWindow, bool) {
	w := WorkingWindow{Open: b.Open, Close: b.Close}
	if w.Closed() {
		return WorkingWindow{}, false
	}
	return w, true
}

// DayHours is one weekday entry of a staff schedule. Start and End hold the
// raw "HH:MM" strings as configured; an empty or malformed value falls back
// to the matching business-default field.
type DayHours struct {
	Enabled bool
	Start   string
	End     string
}

// StaffSchedule is a staff member's weekly availability. Weekdays absent
// from Week inherit the business default window.
type StaffSchedule struct {
	StaffID string
	Week    map[time.Weekday]DayHours
}

// WindowSource resolves the working window for a weekday. The resolved
// window is read-only configuration; the core never mutates it.
type WindowSource interface {
	// WindowFor returns the open window for the weekday, or false when the
	// day is closed.
	WindowFor(weekday time.Weekday) (WorkingWindow, bool)
}

// ScheduleFor selects the window source for a query: the staff member's own
// schedule when one was supplied, the business default otherwise.
func ScheduleFor(staff *StaffSchedule, defaults BusinessHours) WindowSource {
	if staff == nil {
		return defaults
	}
	return staffWindows{schedule: staff, defaults: defaults}
}

type staffWindows struct {
	schedule *StaffSchedule
	defaults BusinessHours
}

func (s staffWindows) WindowFor(weekday time.Weekday) (WorkingWindow, bool) {
	day, ok := s.schedule.Week[weekday]
	if !ok {
		return s.defaults.WindowFor(weekday)
	}
	if !day.Enabled {
		return WorkingWindow{}, false
	}

	w := WorkingWindow{Open: s.defaults.Open, Close: s.defaults.Close}
	if day.Start != "" {
		if t, err := ParseTimeOfDay(day.Start); err == nil {
			w.Open = t
		}
	}
	if day.End != "" {
		if t, err := ParseTimeOfDay(day.End); err == nil {
			w.Close = t
		}
	}
	if w.Closed() {
		return WorkingWindow{}, false
	}
	return w, true
}
