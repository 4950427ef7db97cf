package availability

import (
	"testing"
	"time"
)

func TestBusinessHoursAppliesEveryDay(t *testing.T) {
	source := ScheduleFor(nil, DefaultBusinessHours())
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		window, open := source.WindowFor(wd)
		if !open {
			t.Fatalf("expected %s open under business defaults", wd)
		}
		if window.Open.String() != "09:00" || window.Close.String() != "18:00" {
			t.Fatalf("unexpected default window %s-%s", window.Open, window.Close)
		}
	}
}

func TestStaffDisabledDayIsClosed(t *testing.T) {
	staff := &StaffSchedule{
		StaffID: "staff-1",
		Week: map[time.Weekday]DayHours{
			time.Monday: {Enabled: false},
		},
	}
	if _, open := ScheduleFor(staff, DefaultBusinessHours()).WindowFor(time.Monday); open {
		t.Fatal("disabled weekday must resolve closed")
	}
}

func TestStaffOverrideWithFieldFallback(t *testing.T) {
	staff := &StaffSchedule{
		StaffID: "staff-1",
		Week: map[time.Weekday]DayHours{
			time.Tuesday: {Enabled: true, Start: "10:00"}, // end missing
		},
	}
	window, open := ScheduleFor(staff, DefaultBusinessHours()).WindowFor(time.Tuesday)
	if !open {
		t.Fatal("expected open window")
	}
	if window.Open.String() != "10:00" || window.Close.String() != "18:00" {
		t.Fatalf("expected 10:00-18:00, got %s-%s", window.Open, window.Close)
	}
}

func TestStaffMissingWeekdayUsesDefaults(t *testing.T) {
	staff := &StaffSchedule{StaffID: "staff-1"}
	window, open := ScheduleFor(staff, DefaultBusinessHours()).WindowFor(time.Friday)
	if !open || window.Open.String() != "09:00" {
		t.Fatalf("expected default window, got open=%v %s-%s", open, window.Open, window.Close)
	}
}

func TestMalformedStaffTimesFallBack(t *testing.T) {
	staff := &StaffSchedule{
		StaffID: "staff-1",
		Week: map[time.Weekday]DayHours{
			time.Wednesday: {Enabled: true, Start: "not-a-time", End: "17:00"},
		},
	}
	window, open := ScheduleFor(staff, DefaultBusinessHours()).WindowFor(time.Wednesday)
	if !open {
		t.Fatal("expected open window")
	}
	if window.Open.String() != "09:00" || window.Close.String() != "17:00" {
		t.Fatalf("expected 09:00-17:00, got %s-%s", window.Open, window.Close)
	}
}

func TestInvertedWindowIsClosed(t *testing.T) {
	staff := &StaffSchedule{
		StaffID: "staff-1",
		Week: map[time.Weekday]DayHours{
			time.Thursday: {Enabled: true, Start: "18:00", End: "09:00"},
		},
	}
	if _, open := ScheduleFor(staff, DefaultBusinessHours()).WindowFor(time.Thursday); open {
		t.Fatal("inverted window must resolve closed")
	}

	equal := BusinessHours{Open: TimeOfDay{Hour: 9}, Close: TimeOfDay{Hour: 9}}
	if _, open := equal.WindowFor(time.Monday); open {
		t.Fatal("open == close must resolve closed")
	}
}
