package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jcallahan-dev/trimline/libs/db"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

type Service struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	DurationMins int       `json:"duration_minutes"`
	Price        float64   `json:"price"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *Repository) CreateService(ctx context.Context, svc Service) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, name, description, duration_minutes, price, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, id, svc.Name, svc.Description, svc.DurationMins, svc.Price, svc.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) UpdateService(ctx context.Context, svc Service) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET name = $2,
			description = $3,
			duration_minutes = $4,
			price = $5,
			active = $6,
			updated_at = now()
		WHERE id = $1
	`, svc.ID, svc.Name, svc.Description, svc.DurationMins, svc.Price, svc.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) DeactivateService(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services SET active = false, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) ListServices(ctx context.Context, includeInactive bool, limit int) ([]Service, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, COALESCE(description, ''), duration_minutes, price, active, created_at
		FROM services
		WHERE active OR $1
		ORDER BY name ASC
		LIMIT $2
	`, includeInactive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Description, &s.DurationMins, &s.Price, &s.Active, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) GetService(ctx context.Context, id string) (Service, error) {
	var s Service
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, COALESCE(description, ''), duration_minutes, price, active, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Description, &s.DurationMins, &s.Price, &s.Active, &s.CreatedAt)
	return s, err
}

// DayHours mirrors the shape stored in the staff availability jsonb column,
// keyed by lowercase weekday name.
type DayHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type Staff struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Email        string              `json:"email"`
	Phone        string              `json:"phone,omitempty"`
	Active       bool                `json:"active"`
	ServiceIDs   []string            `json:"service_ids"`
	Availability map[string]DayHours `json:"availability"`
	CreatedAt    time.Time           `json:"created_at"`
}

func (r *Repository) CreateStaff(ctx context.Context, st Staff) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO staff (id, name, email, phone, active, service_ids, availability)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
	`, id, st.Name, st.Email, st.Phone, st.Active, st.ServiceIDs, st.Availability)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) UpdateStaff(ctx context.Context, st Staff) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff
		SET name = $2,
			email = $3,
			phone = NULLIF($4, ''),
			active = $5,
			service_ids = $6,
			updated_at = now()
		WHERE id = $1
	`, st.ID, st.Name, st.Email, st.Phone, st.Active, st.ServiceIDs)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) UpdateStaffAvailability(ctx context.Context, staffID string, week map[string]DayHours) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff SET availability = $2, updated_at = now() WHERE id = $1
	`, staffID, week)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) ListStaff(ctx context.Context, includeInactive bool, limit int) ([]Staff, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, email, COALESCE(phone, ''), active,
			COALESCE(service_ids, '{}'), COALESCE(availability, '{}'::jsonb), created_at
		FROM staff
		WHERE active OR $1
		ORDER BY name ASC
		LIMIT $2
	`, includeInactive, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Staff
	for rows.Next() {
		var s Staff
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Active, &s.ServiceIDs, &s.Availability, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) GetStaff(ctx context.Context, id string) (Staff, error) {
	var s Staff
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, email, COALESCE(phone, ''), active,
			COALESCE(service_ids, '{}'), COALESCE(availability, '{}'::jsonb), created_at
		FROM staff
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Email, &s.Phone, &s.Active, &s.ServiceIDs, &s.Availability, &s.CreatedAt)
	return s, err
}

type Location struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
	Zip      string `json:"zip,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Timezone string `json:"timezone"`
	Active   bool   `json:"active"`
}

func (r *Repository) CreateLocation(ctx context.Context, loc Location) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO locations (id, name, address, city, state, zip, phone, timezone, active)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''), $8, $9)
	`, id, loc.Name, loc.Address, loc.City, loc.State, loc.Zip, loc.Phone, loc.Timezone, loc.Active)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) UpdateLocation(ctx context.Context, loc Location) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE locations
		SET name = $2,
			address = $3,
			city = NULLIF($4, ''),
			state = NULLIF($5, ''),
			zip = NULLIF($6, ''),
			phone = NULLIF($7, ''),
			timezone = $8,
			active = $9,
			updated_at = now()
		WHERE id = $1
	`, loc.ID, loc.Name, loc.Address, loc.City, loc.State, loc.Zip, loc.Phone, loc.Timezone, loc.Active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *Repository) ListLocations(ctx context.Context, limit int) ([]Location, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, address, COALESCE(city, ''), COALESCE(state, ''),
			COALESCE(zip, ''), COALESCE(phone, ''), timezone, active
		FROM locations
		ORDER BY name ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		var l Location
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Zip, &l.Phone, &l.Timezone, &l.Active); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

type Customer struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	TotalVisits int        `json:"total_visits"`
	TotalSpent  float64    `json:"total_spent"`
	LastVisit   *time.Time `json:"last_visit,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// SearchCustomers matches name or email, newest first when no query given.
func (r *Repository) SearchCustomers(ctx context.Context, query string, limit int) ([]Customer, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, email, COALESCE(phone, ''), COALESCE(notes, ''),
			total_visits, total_spent, last_visit, created_at
		FROM customers
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Notes, &c.TotalVisits, &c.TotalSpent, &c.LastVisit, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) UpdateCustomerNotes(ctx context.Context, id, notes string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE customers SET notes = NULLIF($2, ''), updated_at = now() WHERE id = $1
	`, id, notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type BlockedTime struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	StaffID   string    `json:"staff_id,omitempty"`
	IsAllDay  bool      `json:"is_all_day"`
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *Repository) CreateBlockedTime(ctx context.Context, bt BlockedTime) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO blocked_times (id, date, staff_id, is_all_day, start_time, end_time, reason)
		VALUES ($1, $2, NULLIF($3, '')::uuid, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''))
	`, id, bt.Date, bt.StaffID, bt.IsAllDay, bt.StartTime, bt.EndTime, bt.Reason)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListBlockedTimes(ctx context.Context, from, to time.Time, limit int) ([]BlockedTime, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, date, COALESCE(staff_id::text, ''), is_all_day,
			COALESCE(start_time, ''), COALESCE(end_time, ''), COALESCE(reason, ''), created_at
		FROM blocked_times
		WHERE date >= $1 AND date <= $2
		ORDER BY date ASC, start_time ASC NULLS FIRST
		LIMIT $3
	`, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BlockedTime
	for rows.Next() {
		var bt BlockedTime
		if err := rows.Scan(&bt.ID, &bt.Date, &bt.StaffID, &bt.IsAllDay, &bt.StartTime, &bt.EndTime, &bt.Reason, &bt.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, bt)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) DeleteBlockedTime(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM blocked_times WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type Settings struct {
	BusinessName           string `json:"business_name"`
	BusinessPhone          string `json:"business_phone,omitempty"`
	BusinessAddress        string `json:"business_address,omitempty"`
	OpenTime               string `json:"open_time"`
	CloseTime              string `json:"close_time"`
	BookingWindowDays      int    `json:"booking_window_days"`
	AutoConfirm            bool   `json:"auto_confirm"`
	SendEmailConfirmations bool   `json:"send_email_confirmations"`
	SendEmailReminders     bool   `json:"send_email_reminders"`
}

func (r *Repository) GetSettings(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(business_name, ''), COALESCE(business_phone, ''), COALESCE(business_address, ''),
			open_time, close_time, booking_window_days,
			auto_confirm, send_email_confirmations, send_email_reminders
		FROM settings
		WHERE id = 1
	`).Scan(
		&s.BusinessName,
		&s.BusinessPhone,
		&s.BusinessAddress,
		&s.OpenTime,
		&s.CloseTime,
		&s.BookingWindowDays,
		&s.AutoConfirm,
		&s.SendEmailConfirmations,
		&s.SendEmailReminders,
	)
	if err != nil {
		if IsNotFound(err) {
			return Settings{
				OpenTime:               "09:00",
				CloseTime:              "18:00",
				BookingWindowDays:      30,
				SendEmailConfirmations: true,
				SendEmailReminders:     true,
			}, nil
		}
		return Settings{}, err
	}
	return s, nil
}

func (r *Repository) UpsertSettings(ctx context.Context, tx pgx.Tx, s Settings) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO settings
			(id, business_name, business_phone, business_address, open_time, close_time,
			 booking_window_days, auto_confirm, send_email_confirmations, send_email_reminders)
		VALUES (1, NULLIF($1, ''), NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id)
		DO UPDATE SET business_name = EXCLUDED.business_name,
		              business_phone = EXCLUDED.business_phone,
		              business_address = EXCLUDED.business_address,
		              open_time = EXCLUDED.open_time,
		              close_time = EXCLUDED.close_time,
		              booking_window_days = EXCLUDED.booking_window_days,
		              auto_confirm = EXCLUDED.auto_confirm,
		              send_email_confirmations = EXCLUDED.send_email_confirmations,
		              send_email_reminders = EXCLUDED.send_email_reminders,
		              updated_at = now()
	`, s.BusinessName, s.BusinessPhone, s.BusinessAddress, s.OpenTime, s.CloseTime,
		s.BookingWindowDays, s.AutoConfirm, s.SendEmailConfirmations, s.SendEmailReminders)
	return err
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}
