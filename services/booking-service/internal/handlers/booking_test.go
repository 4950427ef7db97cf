package handlers

import (
	"testing"
	"time"

	"github.com/jcallahan-dev/trimline/services/booking-service/internal/availability"
)

func TestValidateBookingRequest(t *testing.T) {
	valid := createBookingRequest{
		ServiceID:     "svc-1",
		Date:          "2026-03-10",
		StartTime:     "10:00",
		CustomerName:  "  Dana Fields  ",
		CustomerEmail: "dana@example.com",
	}
	if msg := validateBookingRequest(&valid); msg != "" {
		t.Fatalf("expected valid request, got %q", msg)
	}
	if valid.CustomerName != "Dana Fields" {
		t.Fatalf("fields must be trimmed, got %q", valid.CustomerName)
	}

	cases := []struct {
		mutate func(*createBookingRequest)
		want   string
	}{
		{func(r *createBookingRequest) { r.ServiceID = "" }, "service_id is required"},
		{func(r *createBookingRequest) { r.Date = "" }, "date is required"},
		{func(r *createBookingRequest) { r.StartTime = "" }, "start_time is required"},
		{func(r *createBookingRequest) { r.CustomerName = " " }, "customer_name is required"},
		{func(r *createBookingRequest) { r.CustomerEmail = "not-an-email" }, "a valid customer_email is required"},
	}
	for _, tc := range cases {
		req := valid
		tc.mutate(&req)
		if msg := validateBookingRequest(&req); msg != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, msg)
		}
	}
}

func TestValidEmail(t *testing.T) {
	for _, good := range []string{"a@b.com", "first.last@shop.example"} {
		if !validEmail(good) {
			t.Fatalf("expected %q valid", good)
		}
	}
	for _, bad := range []string{"", "@b.com", "a@", "a b@c.com"} {
		if validEmail(bad) {
			t.Fatalf("expected %q invalid", bad)
		}
	}
}

func TestOutsideBookingWindow(t *testing.T) {
	now := time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)
	edge := time.Date(2026, time.April, 9, 0, 0, 0, 0, time.UTC)

	if outsideBookingWindow(edge, now, 30) {
		t.Fatal("the last day inside the window must be bookable")
	}
	if !outsideBookingWindow(edge.AddDate(0, 0, 1), now, 30) {
		t.Fatal("one day past the window must be rejected")
	}
	if outsideBookingWindow(edge.AddDate(1, 0, 0), now, 0) {
		t.Fatal("window of zero means unrestricted")
	}
}

func TestSlotItems(t *testing.T) {
	starts := []availability.TimeOfDay{{Hour: 9}, {Hour: 17, Minute: 30}}
	items := slotItems(starts, 45)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].StartTime != "09:00" || items[0].EndTime != "09:45" {
		t.Fatalf("unexpected first item %+v", items[0])
	}
	if items[1].EndTime != "18:15" {
		t.Fatalf("end time must follow the overflow clock, got %s", items[1].EndTime)
	}

	if empty := slotItems(nil, 45); empty == nil || len(empty) != 0 {
		t.Fatal("no slots must serialize as an empty list, not null")
	}
}

func TestContainsSlot(t *testing.T) {
	starts := []availability.TimeOfDay{{Hour: 9}, {Hour: 9, Minute: 30}}
	if !containsSlot(starts, availability.TimeOfDay{Hour: 9, Minute: 30}) {
		t.Fatal("expected slot present")
	}
	if containsSlot(starts, availability.TimeOfDay{Hour: 10}) {
		t.Fatal("expected slot absent")
	}
}
