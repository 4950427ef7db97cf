package handlers

import (
	"testing"

	"github.com/jcallahan-dev/trimline/services/backoffice-service/internal/storage"
)

func TestValidateWeek(t *testing.T) {
	ok := map[string]storage.DayHours{
		"monday":   {Enabled: true, Start: "09:00", End: "17:00"},
		"Saturday": {Enabled: false},
		"sunday":   {Enabled: true}, // times optional, defaults apply downstream
	}
	if msg := validateWeek(ok); msg != "" {
		t.Fatalf("expected valid week, got %q", msg)
	}

	if msg := validateWeek(map[string]storage.DayHours{"funday": {Enabled: true}}); msg == "" {
		t.Fatal("unknown weekday must be rejected")
	}
	if msg := validateWeek(map[string]storage.DayHours{"monday": {Enabled: true, Start: "9am"}}); msg == "" {
		t.Fatal("malformed start must be rejected")
	}
	if msg := validateWeek(map[string]storage.DayHours{"monday": {Enabled: true, End: "25:00"}}); msg == "" {
		t.Fatal("out-of-range end must be rejected")
	}
	if msg := validateWeek(nil); msg != "" {
		t.Fatalf("nil week is valid, got %q", msg)
	}
}

func TestValidClockTime(t *testing.T) {
	for _, good := range []string{"00:00", "09:30", "23:59"} {
		if !validClockTime(good) {
			t.Fatalf("expected %q valid", good)
		}
	}
	for _, bad := range []string{"", "24:00", "9:5:1", "noon"} {
		if validClockTime(bad) {
			t.Fatalf("expected %q invalid", bad)
		}
	}
}

func TestValidStatusUpdate(t *testing.T) {
	for _, allowed := range []string{"confirmed", "completed", "no_show"} {
		if !validStatusUpdate(allowed) {
			t.Fatalf("expected %q allowed", allowed)
		}
	}
	// Cancellation must go through the booking flow, never this endpoint.
	for _, denied := range []string{"cancelled", "pending", ""} {
		if validStatusUpdate(denied) {
			t.Fatalf("expected %q denied", denied)
		}
	}
}
