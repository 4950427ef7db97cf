package availability

import "testing"

func tod(hour, minute int) TimeOfDay {
	return TimeOfDay{Hour: hour, Minute: minute}
}

func TestConflictSetSkipsCancelled(t *testing.T) {
	cs := BuildConflictSet([]Appointment{
		{ID: "a1", Status: StatusCancelled, Start: tod(10, 0), End: tod(11, 0)},
	}, nil, "")
	if cs.Blocks(tod(10, 0), tod(11, 0)) {
		t.Fatal("cancelled appointment must not block")
	}
}

func TestConflictSetStaffMatching(t *testing.T) {
	appts := []Appointment{
		{ID: "other", StaffID: "staff-b", Status: "confirmed", Start: tod(10, 0), End: tod(11, 0)},
		{ID: "agnostic", Status: "pending", Start: tod(14, 0), End: tod(15, 0)},
	}

	// Specific staff requested: other staff's appointment does not block,
	// the staff-agnostic one does.
	cs := BuildConflictSet(appts, nil, "staff-a")
	if cs.Blocks(tod(10, 0), tod(11, 0)) {
		t.Fatal("other staff's appointment blocked staff-a")
	}
	if !cs.Blocks(tod(14, 0), tod(15, 0)) {
		t.Fatal("staff-agnostic appointment must block")
	}

	// No preference: everything non-cancelled blocks.
	csAny := BuildConflictSet(appts, nil, "")
	if !csAny.Blocks(tod(10, 30), tod(11, 30)) {
		t.Fatal("appointment must block when no staff requested")
	}
}

func TestConflictSetBlockScoping(t *testing.T) {
	blocks := []Block{
		{StaffID: "staff-a", Start: tod(12, 0), End: tod(13, 0)},
		{Start: tod(16, 0), End: tod(17, 0)}, // applies to everyone
	}

	csB := BuildConflictSet(nil, blocks, "staff-b")
	if csB.Blocks(tod(12, 0), tod(13, 0)) {
		t.Fatal("staff-a block must not exclude staff-b slots")
	}
	if !csB.Blocks(tod(16, 0), tod(17, 0)) {
		t.Fatal("unscoped block must apply to staff-b")
	}

	csA := BuildConflictSet(nil, blocks, "staff-a")
	if !csA.Blocks(tod(12, 30), tod(13, 30)) {
		t.Fatal("staff-a block must apply to staff-a")
	}
}

func TestConflictSetAllDay(t *testing.T) {
	cs := BuildConflictSet(nil, []Block{{StaffID: "staff-a", AllDay: true}}, "staff-b")
	if !cs.AllDayBlocked() {
		t.Fatal("all-day block must apply regardless of staff")
	}
	if !cs.Blocks(tod(9, 0), tod(9, 30)) {
		t.Fatal("all-day block must block every interval")
	}
}

func TestConflictSetTouchingIntervals(t *testing.T) {
	cs := BuildConflictSet([]Appointment{
		{ID: "a1", Status: "confirmed", Start: tod(9, 0), End: tod(10, 0)},
	}, nil, "")
	if cs.Blocks(tod(10, 0), tod(11, 0)) {
		t.Fatal("appointment ending at slot start must not block it")
	}
}
