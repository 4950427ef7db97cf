package model

import "time"

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusNoShow    = "no_show"
)

// Appointment stores the calendar date and wall-clock times separately; the
// business operates in a single local timezone and slot math runs on "HH:MM".
type Appointment struct {
	ID            string
	ServiceID     string
	StaffID       string
	LocationID    string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Date          time.Time
	StartTime     string
	EndTime       string
	Price         float64
	Status        string
	Notes         string
	CancelledAt   *time.Time
	CancelReason  string
	CreatedAt     time.Time
}

// Service is the bookable catalog entry as the booking flow needs it.
type Service struct {
	ID              string
	Name            string
	DurationMinutes int
	Price           float64
	Active          bool
}

// Settings is the subset of business settings the booking flow reads.
type Settings struct {
	BusinessName           string
	OpenTime               string
	CloseTime              string
	BookingWindowDays      int
	AutoConfirm            bool
	SendEmailConfirmations bool
	SendEmailReminders     bool
}
