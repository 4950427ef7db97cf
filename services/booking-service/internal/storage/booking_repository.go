package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jcallahan-dev/trimline/libs/db"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/availability"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/model"
)

type BookingRepository struct {
	pool *db.Pool
}

type IdempotencyRecord struct {
	IdempotencyKey  string
	AppointmentID   string
	StatusCode      int
	ResponsePayload []byte
}

func NewBookingRepository(pool *db.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *BookingRepository) LockIdempotencyKey(ctx context.Context, tx pgx.Tx, key string) (IdempotencyRecord, bool, error) {
	rec, err := r.selectIdempotencyForUpdate(ctx, tx, key)
	if err == nil {
		return rec, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return IdempotencyRecord{}, false, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO booking_idempotency_keys (idempotency_key)
		VALUES ($1)
		ON CONFLICT (idempotency_key) DO NOTHING
	`, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}

	rec, err = r.selectIdempotencyForUpdate(ctx, tx, key)
	if err != nil {
		return IdempotencyRecord{}, false, err
	}
	return rec, false, nil
}

func (r *BookingRepository) FinalizeIdempotency(ctx context.Context, tx pgx.Tx, key, appointmentID string, statusCode int, response []byte) error {
	_, err := tx.Exec(ctx, `
		UPDATE booking_idempotency_keys
		SET appointment_id = $2,
			status_code = $3,
			response_payload = $4,
			updated_at = now()
		WHERE idempotency_key = $1
	`, key, appointmentID, statusCode, response)
	return err
}

func (r *BookingRepository) CreateAppointment(ctx context.Context, tx pgx.Tx, appt *model.Appointment) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `
		INSERT INTO appointments
			(service_id, staff_id, location_id, customer_name, customer_email, customer_phone,
			 date, start_time, end_time, price, status, notes)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`, appt.ServiceID, appt.StaffID, appt.LocationID, appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone,
		appt.Date, appt.StartTime, appt.EndTime, appt.Price, appt.Status, appt.Notes).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *BookingRepository) GetAppointmentForUpdate(ctx context.Context, tx pgx.Tx, appointmentID string) (model.Appointment, error) {
	var appt model.Appointment
	var cancelledAt *time.Time
	err := tx.QueryRow(ctx, `
		SELECT id, service_id, COALESCE(staff_id::text, ''), COALESCE(location_id::text, ''),
			customer_name, customer_email, COALESCE(customer_phone, ''),
			date, start_time, end_time, price, status, COALESCE(notes, ''),
			cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, appointmentID).Scan(
		&appt.ID,
		&appt.ServiceID,
		&appt.StaffID,
		&appt.LocationID,
		&appt.CustomerName,
		&appt.CustomerEmail,
		&appt.CustomerPhone,
		&appt.Date,
		&appt.StartTime,
		&appt.EndTime,
		&appt.Price,
		&appt.Status,
		&appt.Notes,
		&cancelledAt,
		&appt.CancelReason,
		&appt.CreatedAt,
	)
	if err != nil {
		return model.Appointment{}, err
	}
	appt.CancelledAt = cancelledAt
	return appt, nil
}

func (r *BookingRepository) CancelAppointment(ctx context.Context, tx pgx.Tx, appointmentID, reason string) (time.Time, error) {
	var cancelledAt time.Time
	err := tx.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'cancelled',
			cancelled_at = now(),
			cancellation_reason = $2
		WHERE id = $1
		RETURNING cancelled_at
	`, appointmentID, reason).Scan(&cancelledAt)
	return cancelledAt, err
}

// DayAppointments returns the conflict snapshot for one calendar date,
// every status included; the availability core decides what blocks.
func (r *BookingRepository) DayAppointments(ctx context.Context, date time.Time) ([]availability.AppointmentRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, to_char(date, 'YYYY-MM-DD'), start_time, end_time,
			COALESCE(staff_id::text, ''), status
		FROM appointments
		WHERE date = $1
		ORDER BY start_time ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []availability.AppointmentRecord
	for rows.Next() {
		var rec availability.AppointmentRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.StartTime, &rec.EndTime, &rec.StaffID, &rec.Status); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

func (r *BookingRepository) DayBlocks(ctx context.Context, date time.Time) ([]availability.BlockedIntervalRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, to_char(date, 'YYYY-MM-DD'), COALESCE(staff_id::text, ''),
			is_all_day, COALESCE(start_time, ''), COALESCE(end_time, '')
		FROM blocked_times
		WHERE date = $1
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []availability.BlockedIntervalRecord
	for rows.Next() {
		var rec availability.BlockedIntervalRecord
		if err := rows.Scan(&rec.ID, &rec.Date, &rec.StaffID, &rec.IsAllDay, &rec.StartTime, &rec.EndTime); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}

func (r *BookingRepository) ListByCustomerEmail(ctx context.Context, email string, limit int) ([]model.Appointment, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, service_id, COALESCE(staff_id::text, ''), COALESCE(location_id::text, ''),
			customer_name, customer_email, COALESCE(customer_phone, ''),
			date, start_time, end_time, price, status, COALESCE(notes, ''),
			cancelled_at, COALESCE(cancellation_reason, ''), created_at
		FROM appointments
		WHERE lower(customer_email) = lower($1)
		ORDER BY date DESC, start_time DESC
		LIMIT $2
	`, email, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.Appointment
	for rows.Next() {
		var appt model.Appointment
		var cancelledAt *time.Time
		if err := rows.Scan(
			&appt.ID,
			&appt.ServiceID,
			&appt.StaffID,
			&appt.LocationID,
			&appt.CustomerName,
			&appt.CustomerEmail,
			&appt.CustomerPhone,
			&appt.Date,
			&appt.StartTime,
			&appt.EndTime,
			&appt.Price,
			&appt.Status,
			&appt.Notes,
			&cancelledAt,
			&appt.CancelReason,
			&appt.CreatedAt,
		); err != nil {
			return nil, err
		}
		appt.CancelledAt = cancelledAt
		appts = append(appts, appt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}

// UpsertCustomerVisit keeps the customer roster in step with bookings:
// first booking inserts the row, later ones bump totals and last visit.
func (r *BookingRepository) UpsertCustomerVisit(ctx context.Context, tx pgx.Tx, appt *model.Appointment) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO customers (name, email, phone, total_visits, total_spent, last_visit)
		VALUES ($1, lower($2), NULLIF($3, ''), 1, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET name = EXCLUDED.name,
			phone = COALESCE(EXCLUDED.phone, customers.phone),
			total_visits = customers.total_visits + 1,
			total_spent = customers.total_spent + EXCLUDED.total_spent,
			last_visit = GREATEST(customers.last_visit, EXCLUDED.last_visit),
			updated_at = now()
	`, appt.CustomerName, appt.CustomerEmail, appt.CustomerPhone, appt.Price, appt.Date)
	return err
}

func IsConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "23P01" || pgErr.Code == "23505")
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func (r *BookingRepository) selectIdempotencyForUpdate(ctx context.Context, tx pgx.Tx, key string) (IdempotencyRecord, error) {
	var rec IdempotencyRecord
	var responseText string
	err := tx.QueryRow(ctx, `
		SELECT idempotency_key,
			COALESCE(appointment_id::text, ''),
			COALESCE(status_code, 0),
			COALESCE(response_payload::text, '')
		FROM booking_idempotency_keys
		WHERE idempotency_key = $1
		FOR UPDATE
	`, key).Scan(
		&rec.IdempotencyKey,
		&rec.AppointmentID,
		&rec.StatusCode,
		&responseText,
	)
	if err != nil {
		return IdempotencyRecord{}, err
	}
	if responseText != "" {
		rec.ResponsePayload = []byte(responseText)
	}
	return rec, nil
}
