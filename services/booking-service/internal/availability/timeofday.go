package availability

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time with no date or timezone attached. It is
// always interpreted against a calendar date chosen by the caller.
//
// Hour may exceed 23 after Add; such a value means "past the end of the day"
// and never wraps into the next one, so a slot that would spill over midnight
// simply fails the window check.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	clock, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return TimeOfDay{Hour: clock.Hour(), Minute: clock.Minute()}, nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinuteOfDay returns minutes since midnight. Values past 1439 are legal for
// end-of-day overflow produced by Add.
func (t TimeOfDay) MinuteOfDay() int {
	return t.Hour*60 + t.Minute
}

// Compare orders two times lexicographically on (hour, minute): -1 when t is
// earlier than o, 0 when equal, 1 when later.
func (t TimeOfDay) Compare(o TimeOfDay) int {
	switch {
	case t.MinuteOfDay() < o.MinuteOfDay():
		return -1
	case t.MinuteOfDay() > o.MinuteOfDay():
		return 1
	default:
		return 0
	}
}

func (t TimeOfDay) Before(o TimeOfDay) bool { return t.Compare(o) < 0 }

func (t TimeOfDay) After(o TimeOfDay) bool { return t.Compare(o) > 0 }

func (t TimeOfDay) Equal(o TimeOfDay) bool { return t.Compare(o) == 0 }

// Add returns t shifted by the given number of minutes. Results past 23:59
// keep accumulating hours rather than wrapping to the next day.
func (t TimeOfDay) Add(minutes int) TimeOfDay {
	total := t.MinuteOfDay() + minutes
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching endpoints do not overlap: an
// appointment ending at 10:00 does not conflict with one starting at 10:00.
func Overlaps(aStart, aEnd, bStart, bEnd TimeOfDay) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
