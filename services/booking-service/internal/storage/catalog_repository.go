package storage

import (
	"context"

	"github.com/jcallahan-dev/trimline/services/booking-service/internal/availability"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/model"
)

// Catalog reads against the shared schema owned by backoffice. Booking only
// needs services for duration/price and staff for weekly availability.

func (r *BookingRepository) GetService(ctx context.Context, serviceID string) (model.Service, error) {
	var svc model.Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, duration_minutes, price, active
		FROM services
		WHERE id = $1
	`, serviceID).Scan(&svc.ID, &svc.Name, &svc.DurationMinutes, &svc.Price, &svc.Active)
	if err != nil {
		return model.Service{}, err
	}
	return svc, nil
}

// GetStaffRecord loads a staff member's weekly availability. The availability
// column is jsonb keyed by lowercase weekday name; pgx unmarshals it directly.
func (r *BookingRepository) GetStaffRecord(ctx context.Context, staffID string) (*availability.StaffRecord, bool, error) {
	rec := &availability.StaffRecord{}
	var active bool
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, COALESCE(availability, '{}'::jsonb), active
		FROM staff
		WHERE id = $1
	`, staffID).Scan(&rec.ID, &rec.Availability, &active)
	if err != nil {
		return nil, false, err
	}
	return rec, active, nil
}
