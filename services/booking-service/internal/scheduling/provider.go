package scheduling

import (
	"context"
	"errors"

	"github.com/jcallahan-dev/trimline/services/booking-service/internal/availability"
)

var (
	ErrServiceNotFound = errors.New("service not found")
	ErrServiceInactive = errors.New("service is not bookable")
	ErrStaffNotFound   = errors.New("staff not found")
	ErrStaffInactive   = errors.New("staff is not bookable")
)

// AvailabilityConfig is everything the slot computation needs beyond the
// day's conflict snapshot: service duration and price, the business default
// window, the requested staff member's weekly schedule (nil when the caller
// has no preference), and the booking policy knobs.
type AvailabilityConfig struct {
	ServiceName       string
	DurationMinutes   int
	Price             float64
	Hours             availability.BusinessHours
	Staff             *availability.StaffSchedule
	BookingWindowDays int
	AutoConfirm       bool
	SendConfirmations bool
}

type Provider interface {
	GetAvailabilityConfig(ctx context.Context, serviceID, staffID string) (AvailabilityConfig, error)
}
