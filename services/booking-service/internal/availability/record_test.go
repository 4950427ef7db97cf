package availability

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("ParseDate failed: %v", err)
	}
	if d.Weekday() != time.Tuesday {
		t.Fatalf("expected Tuesday, got %s", d.Weekday())
	}
	if _, err := ParseDate("03/10/2026"); err == nil {
		t.Fatal("expected error for slash format")
	}
}

func TestDecodeAppointmentsSkipsMalformed(t *testing.T) {
	records := []AppointmentRecord{
		{ID: "good", StartTime: "10:00", EndTime: "11:00", Status: "confirmed"},
		{ID: "bad", StartTime: "ten", EndTime: "11:00", Status: "confirmed"},
	}
	appts, errs := DecodeAppointments(records)
	if len(appts) != 1 || appts[0].ID != "good" {
		t.Fatalf("expected only the good record, got %+v", appts)
	}
	if len(errs) != 1 || !errors.Is(errs[0], ErrMalformedTime) {
		t.Fatalf("expected one ErrMalformedTime, got %v", errs)
	}
}

func TestDecodeBlocksAllDayIgnoresTimes(t *testing.T) {
	blocks, errs := DecodeBlocks([]BlockedIntervalRecord{
		{ID: "b1", IsAllDay: true, StartTime: "garbage"},
		{ID: "b2", StartTime: "12:00", EndTime: "13:00", StaffID: "staff-a"},
		{ID: "b3", StartTime: "12:00", EndTime: "oops"},
	})
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %+v", blocks)
	}
	if !blocks[0].AllDay {
		t.Fatal("all-day flag lost")
	}
	if blocks[1].StaffID != "staff-a" {
		t.Fatalf("staff scoping lost: %+v", blocks[1])
	}
	if len(errs) != 1 {
		t.Fatalf("expected one diagnostic, got %v", errs)
	}
}

func TestStaffScheduleFromRecord(t *testing.T) {
	if StaffScheduleFromRecord(nil) != nil {
		t.Fatal("nil record must yield nil schedule")
	}

	sched := StaffScheduleFromRecord(&StaffRecord{
		ID: "staff-1",
		Availability: map[string]DayHoursRecord{
			"Monday":   {Enabled: true, Start: "08:00", End: "14:00"},
			"funday":   {Enabled: true},
			"saturday": {Enabled: false},
		},
	})
	if sched.StaffID != "staff-1" {
		t.Fatalf("staff id lost: %q", sched.StaffID)
	}
	mon, ok := sched.Week[time.Monday]
	if !ok || !mon.Enabled || mon.Start != "08:00" {
		t.Fatalf("monday mapping wrong: %+v", mon)
	}
	if _, ok := sched.Week[time.Saturday]; !ok {
		t.Fatal("disabled day must still be recorded")
	}
	if len(sched.Week) != 2 {
		t.Fatalf("unknown weekday key must be ignored, got %d entries", len(sched.Week))
	}
}
