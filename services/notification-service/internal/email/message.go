package email

import (
	"fmt"
	"strings"
)

// AppointmentDetails carries the fields the message templates interpolate.
// Empty fields degrade gracefully rather than failing the send.
type AppointmentDetails struct {
	BusinessName string
	ServiceName  string
	CustomerName string
	Date         string
	StartTime    string
	EndTime      string
	Price        float64
	Status       string
}

// ConfirmationMessage builds the subject and plain-text body for a freshly
// booked appointment. A pending appointment gets "received" wording instead
// of "confirmed" so customers are not promised a slot the shop still has to
// approve.
func ConfirmationMessage(d AppointmentDetails) (string, string) {
	business := strings.TrimSpace(d.BusinessName)
	service := strings.TrimSpace(d.ServiceName)
	if service == "" {
		service = "your appointment"
	}

	verb := "confirmed"
	if strings.EqualFold(d.Status, "pending") {
		verb = "received"
	}

	subject := fmt.Sprintf("Booking %s: %s on %s", verb, service, d.Date)
	if business != "" {
		subject = fmt.Sprintf("[%s] %s", business, subject)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", displayName(d.CustomerName))
	fmt.Fprintf(&b, "Your booking for %s has been %s.\r\n\r\n", service, verb)
	fmt.Fprintf(&b, "Date: %s\r\nTime: %s - %s\r\n", d.Date, d.StartTime, d.EndTime)
	if d.Price > 0 {
		fmt.Fprintf(&b, "Price: $%.2f\r\n", d.Price)
	}
	if verb == "received" {
		b.WriteString("\r\nWe will confirm your appointment shortly.\r\n")
	}
	if business != "" {
		fmt.Fprintf(&b, "\r\nSee you soon,\r\n%s\r\n", business)
	}
	return subject, b.String()
}

// CancellationMessage builds the subject and body for a cancelled
// appointment. The reason is included only when the caller supplied one.
func CancellationMessage(d AppointmentDetails, reason string) (string, string) {
	business := strings.TrimSpace(d.BusinessName)
	service := strings.TrimSpace(d.ServiceName)
	if service == "" {
		service = "your appointment"
	}

	subject := fmt.Sprintf("Booking cancelled: %s on %s", service, d.Date)
	if business != "" {
		subject = fmt.Sprintf("[%s] %s", business, subject)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", displayName(d.CustomerName))
	fmt.Fprintf(&b, "Your booking for %s on %s at %s has been cancelled.\r\n", service, d.Date, d.StartTime)
	if reason = strings.TrimSpace(reason); reason != "" {
		fmt.Fprintf(&b, "\r\nReason: %s\r\n", reason)
	}
	b.WriteString("\r\nYou can book a new appointment any time.\r\n")
	return subject, b.String()
}

func displayName(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return name
	}
	return "there"
}
