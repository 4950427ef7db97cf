package email

import (
	"strings"
	"testing"
)

func TestConfirmationMessageConfirmed(t *testing.T) {
	subject, body := ConfirmationMessage(AppointmentDetails{
		BusinessName: "Trimline Barbershop",
		ServiceName:  "Haircut",
		CustomerName: "Ada",
		Date:         "2026-03-10",
		StartTime:    "10:00",
		EndTime:      "10:30",
		Price:        35,
		Status:       "confirmed",
	})
	if subject != "[Trimline Barbershop] Booking confirmed: Haircut on 2026-03-10" {
		t.Fatalf("subject = %q", subject)
	}
	for _, want := range []string{"Hi Ada,", "Haircut has been confirmed", "Time: 10:00 - 10:30", "Price: $35.00"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "confirm your appointment shortly") {
		t.Fatalf("confirmed booking should not carry pending wording:\n%s", body)
	}
}

func TestConfirmationMessagePending(t *testing.T) {
	subject, body := ConfirmationMessage(AppointmentDetails{
		ServiceName: "Beard Trim",
		Date:        "2026-03-10",
		StartTime:   "11:00",
		EndTime:     "11:30",
		Status:      "pending",
	})
	if !strings.Contains(subject, "Booking received") {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(body, "Hi there,") {
		t.Fatalf("missing fallback greeting:\n%s", body)
	}
	if !strings.Contains(body, "We will confirm your appointment shortly.") {
		t.Fatalf("pending booking should explain the pending state:\n%s", body)
	}
	if strings.Contains(body, "Price:") {
		t.Fatalf("zero price should be omitted:\n%s", body)
	}
}

func TestCancellationMessage(t *testing.T) {
	subject, body := CancellationMessage(AppointmentDetails{
		BusinessName: "Trimline Barbershop",
		ServiceName:  "Haircut",
		CustomerName: "Ada",
		Date:         "2026-03-10",
		StartTime:    "10:00",
	}, "running late")
	if subject != "[Trimline Barbershop] Booking cancelled: Haircut on 2026-03-10" {
		t.Fatalf("subject = %q", subject)
	}
	if !strings.Contains(body, "Reason: running late") {
		t.Fatalf("missing reason:\n%s", body)
	}

	_, body = CancellationMessage(AppointmentDetails{Date: "2026-03-10", StartTime: "10:00"}, "  ")
	if strings.Contains(body, "Reason:") {
		t.Fatalf("blank reason should be omitted:\n%s", body)
	}
}

func TestBuildMessageHeaders(t *testing.T) {
	msg := buildMessage("no-reply@trimline.local", "ada@example.com", "Hello", "Body")
	for _, want := range []string{
		"From: no-reply@trimline.local\r\n",
		"To: ada@example.com\r\n",
		"Subject: Hello\r\n",
		"\r\n\r\nBody\r\n",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}
}
