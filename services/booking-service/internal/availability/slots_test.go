package availability

import (
	"testing"
	"time"
)

var (
	testDate = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC) // a Tuesday
	dayAfter = time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC) // "now" the day before
)

func slotStrings(slots []TimeOfDay) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.String())
	}
	return out
}

func TestComputeAvailableSlots_FullOpenDay(t *testing.T) {
	slots, err := ComputeAvailableSlots(testDate, 60, nil, nil, nil, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	// 09:00 through 17:00 at 30-minute steps; 17:00+60 = 18:00 still fits.
	if len(slots) != 17 {
		t.Fatalf("expected 17 slots, got %d: %v", len(slots), slotStrings(slots))
	}
	if slots[0].String() != "09:00" || slots[len(slots)-1].String() != "17:00" {
		t.Fatalf("unexpected bounds: first %s last %s", slots[0], slots[len(slots)-1])
	}
	for i := 1; i < len(slots); i++ {
		if !slots[i-1].Before(slots[i]) {
			t.Fatalf("slots out of order at %d: %v", i, slotStrings(slots))
		}
	}
}

func TestComputeAvailableSlots_SlotsFitWindow(t *testing.T) {
	slots, err := ComputeAvailableSlots(testDate, 45, nil, nil, nil, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	closeAt := TimeOfDay{Hour: 18}
	for _, s := range slots {
		if s.Before(TimeOfDay{Hour: 9}) {
			t.Fatalf("slot %s before open", s)
		}
		if s.Add(45).After(closeAt) {
			t.Fatalf("slot %s spills past close", s)
		}
	}
	// Last 45-minute start is 17:00 (17:30+45 would pass 18:00).
	if last := slots[len(slots)-1]; last.String() != "17:00" {
		t.Fatalf("expected last slot 17:00, got %s", last)
	}
}

func TestComputeAvailableSlots_AppointmentConflict(t *testing.T) {
	appts := []Appointment{
		{ID: "a1", Status: "confirmed", Start: tod(10, 0), End: tod(11, 0)},
	}
	slots, err := ComputeAvailableSlots(testDate, 60, nil, appts, nil, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}

	have := map[string]bool{}
	for _, s := range slots {
		have[s.String()] = true
	}
	// 09:30-10:30, 10:00-11:00 and 10:30-11:30 all overlap the booking;
	// 09:00-10:00 touches it and 11:00 starts exactly at its end.
	for _, excluded := range []string{"09:30", "10:00", "10:30"} {
		if have[excluded] {
			t.Fatalf("slot %s should be excluded", excluded)
		}
	}
	for _, kept := range []string{"09:00", "11:00"} {
		if !have[kept] {
			t.Fatalf("slot %s should remain bookable", kept)
		}
	}
}

func TestComputeAvailableSlots_DisabledStaffDay(t *testing.T) {
	staff := &StaffSchedule{
		StaffID: "staff-1",
		Week: map[time.Weekday]DayHours{
			time.Tuesday: {Enabled: false},
		},
	}
	appts := []Appointment{
		{ID: "a1", Status: "confirmed", Start: tod(10, 0), End: tod(11, 0)},
	}
	slots, err := ComputeAvailableSlots(testDate, 30, staff, appts, nil, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots on a disabled day, got %v", slotStrings(slots))
	}
}

func TestComputeAvailableSlots_AllDayBlock(t *testing.T) {
	blocks := []Block{{AllDay: true}}
	slots, err := ComputeAvailableSlots(testDate, 30, nil, nil, blocks, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no slots under an all-day block, got %v", slotStrings(slots))
	}
}

func TestComputeAvailableSlots_ForeignStaffBlock(t *testing.T) {
	staffB := &StaffSchedule{StaffID: "B"}
	blocks := []Block{{StaffID: "A", Start: tod(9, 0), End: tod(18, 0)}}
	slots, err := ComputeAvailableSlots(testDate, 60, staffB, nil, blocks, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	if len(slots) != 17 {
		t.Fatalf("staff A's block must not exclude staff B's slots, got %d", len(slots))
	}
}

func TestComputeAvailableSlots_TodayFiltersPast(t *testing.T) {
	now := time.Date(2026, time.March, 10, 11, 15, 0, 0, time.UTC)
	slots, err := ComputeAvailableSlots(testDate, 60, nil, nil, nil, now)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	if len(slots) == 0 {
		t.Fatal("expected afternoon slots")
	}
	if first := slots[0]; first.String() != "11:30" {
		t.Fatalf("expected first slot 11:30, got %s", first)
	}

	// The same clock one day earlier leaves the full day intact.
	future, err := ComputeAvailableSlots(testDate, 60, nil, nil, nil, now.AddDate(0, 0, -1))
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	if future[0].String() != "09:00" {
		t.Fatalf("future date must not be clock-filtered, first slot %s", future[0])
	}
}

func TestComputeAvailableSlots_SlotAtNowExcluded(t *testing.T) {
	now := time.Date(2026, time.March, 10, 11, 0, 0, 0, time.UTC)
	slots, err := ComputeAvailableSlots(testDate, 30, nil, nil, nil, now)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	if slots[0].String() != "11:30" {
		t.Fatalf("slot starting exactly at now must be excluded, first %s", slots[0])
	}
}

func TestComputeAvailableSlots_PastDateIsEmpty(t *testing.T) {
	now := time.Date(2026, time.March, 11, 8, 0, 0, 0, time.UTC)
	slots, err := ComputeAvailableSlots(testDate, 30, nil, nil, nil, now)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("dates behind the calendar must yield nothing, got %v", slotStrings(slots))
	}
}

func TestComputeAvailableSlots_InvalidDuration(t *testing.T) {
	if _, err := ComputeAvailableSlots(testDate, 0, nil, nil, nil, dayAfter); err != ErrInvalidDuration {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
	if _, err := ComputeAvailableSlots(testDate, -15, nil, nil, nil, dayAfter); err != ErrInvalidDuration {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestComputeAvailableSlots_Idempotent(t *testing.T) {
	appts := []Appointment{
		{ID: "a1", Status: "pending", Start: tod(13, 0), End: tod(14, 30)},
	}
	blocks := []Block{{Start: tod(9, 0), End: tod(9, 30)}}

	first, err := ComputeAvailableSlots(testDate, 60, nil, appts, blocks, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	second, err := ComputeAvailableSlots(testDate, 60, nil, appts, blocks, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("slot %d differs: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestComputeAvailableSlots_NoConflictOverlapsResult(t *testing.T) {
	appts := []Appointment{
		{ID: "a1", Status: "confirmed", Start: tod(10, 0), End: tod(11, 15)},
		{ID: "a2", Status: "no_show", Start: tod(15, 0), End: tod(16, 0)},
	}
	blocks := []Block{{Start: tod(12, 0), End: tod(12, 45)}}

	slots, err := ComputeAvailableSlots(testDate, 30, nil, appts, blocks, dayAfter)
	if err != nil {
		t.Fatalf("ComputeAvailableSlots failed: %v", err)
	}
	for _, s := range slots {
		end := s.Add(30)
		for _, a := range appts {
			if Overlaps(s, end, a.Start, a.End) {
				t.Fatalf("slot %s overlaps appointment %s-%s", s, a.Start, a.End)
			}
		}
		for _, b := range blocks {
			if Overlaps(s, end, b.Start, b.End) {
				t.Fatalf("slot %s overlaps block %s-%s", s, b.Start, b.End)
			}
		}
	}
}
