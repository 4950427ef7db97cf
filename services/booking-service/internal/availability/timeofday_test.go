package availability

import "testing"

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay failed: %v", err)
	}
	if tod.Hour != 9 || tod.Minute != 30 {
		t.Fatalf("expected 09:30, got %s", tod)
	}

	for _, bad := range []string{"", "9h30", "24:00", "12:60", "12:5:1"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestCompare(t *testing.T) {
	a := TimeOfDay{Hour: 9, Minute: 30}
	b := TimeOfDay{Hour: 10}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Fatalf("compare ordering wrong: %d %d %d", a.Compare(b), b.Compare(a), a.Compare(a))
	}
	if !a.Before(b) || !b.After(a) || !a.Equal(a) {
		t.Fatal("Before/After/Equal disagree with Compare")
	}
}

func TestAddOverflowsPastMidnight(t *testing.T) {
	got := TimeOfDay{Hour: 23, Minute: 30}.Add(60)
	if got.Hour != 24 || got.Minute != 30 {
		t.Fatalf("expected 24:30 overflow, got %s", got)
	}
	// Overflow values still order correctly against in-day times.
	if !got.After(TimeOfDay{Hour: 23, Minute: 59}) {
		t.Fatal("24:30 should sort after 23:59")
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	ten := TimeOfDay{Hour: 10}
	eleven := TimeOfDay{Hour: 11}
	noon := TimeOfDay{Hour: 12}

	if !Overlaps(ten, noon, eleven, TimeOfDay{Hour: 13}) {
		t.Fatal("partial overlap not detected")
	}
	if !Overlaps(ten, noon, TimeOfDay{Hour: 10, Minute: 30}, eleven) {
		t.Fatal("contained interval not detected")
	}
	// Touching endpoints are not a conflict.
	if Overlaps(ten, eleven, eleven, noon) {
		t.Fatal("touching intervals must not overlap")
	}
	if Overlaps(eleven, noon, ten, eleven) {
		t.Fatal("touching intervals must not overlap (reversed)")
	}
	if Overlaps(ten, eleven, noon, TimeOfDay{Hour: 13}) {
		t.Fatal("disjoint intervals must not overlap")
	}
}
