package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DashboardStats struct {
	TodayAppointments int        `json:"today_appointments"`
	PendingCount      int        `json:"pending_count"`
	MonthlyRevenue    float64    `json:"monthly_revenue"`
	TotalCustomers    int        `json:"total_customers"`
	WeekCounts        []DayCount `json:"week_counts"`
}

// DashboardStats aggregates what the admin landing page shows: today's
// bookings, open pending requests, revenue of completed appointments in the
// current month, and per-day counts for the trailing week.
func (r *Repository) DashboardStats(ctx context.Context, now time.Time) (DashboardStats, error) {
	var stats DashboardStats
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	weekStart := today.AddDate(0, 0, -6)

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE date = $1 AND status <> 'cancelled'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(price) FILTER (WHERE status = 'completed' AND date >= $2), 0)
		FROM appointments
	`, today, monthStart).Scan(&stats.TodayAppointments, &stats.PendingCount, &stats.MonthlyRevenue)
	if err != nil {
		return DashboardStats{}, err
	}

	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM customers
	`).Scan(&stats.TotalCustomers); err != nil {
		return DashboardStats{}, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), COUNT(*)
		FROM appointments
		WHERE date >= $1 AND date <= $2 AND status <> 'cancelled'
		GROUP BY date
	`, weekStart, today)
	if err != nil {
		return DashboardStats{}, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return DashboardStats{}, err
		}
		counts[day] = n
	}
	if rows.Err() != nil {
		return DashboardStats{}, rows.Err()
	}

	// Emit all seven days, zeros included, oldest first.
	for d := weekStart; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		stats.WeekCounts = append(stats.WeekCounts, DayCount{Date: key, Count: counts[key]})
	}
	return stats, nil
}

type AdminAppointment struct {
	ID            string     `json:"id"`
	ServiceID     string     `json:"service_id"`
	StaffID       string     `json:"staff_id,omitempty"`
	CustomerName  string     `json:"customer_name"`
	CustomerEmail string     `json:"customer_email"`
	Date          time.Time  `json:"-"`
	DateString    string     `json:"date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Price         float64    `json:"price"`
	Status        string     `json:"status"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ListAppointments filters the calendar by date and/or status; empty filters
// list newest first.
func (r *Repository) ListAppointments(ctx context.Context, date *time.Time, status string, limit int) ([]AdminAppointment, error) {
	if limit <= 0 {
		limit = 100
	}
	var dateArg any
	if date != nil {
		dateArg = *date
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, service_id::text, COALESCE(staff_id::text, ''),
			customer_name, customer_email, date, to_char(date, 'YYYY-MM-DD'),
			start_time, end_time, price, status, cancelled_at, created_at
		FROM appointments
		WHERE ($1::date IS NULL OR date = $1)
			AND ($2 = '' OR status = $2)
		ORDER BY date DESC, start_time DESC
		LIMIT $3
	`, dateArg, status, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminAppointment
	for rows.Next() {
		var a AdminAppointment
		if err := rows.Scan(&a.ID, &a.ServiceID, &a.StaffID, &a.CustomerName, &a.CustomerEmail,
			&a.Date, &a.DateString, &a.StartTime, &a.EndTime, &a.Price, &a.Status, &a.CancelledAt, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// UpdateAppointmentStatus drives the admin workflow transitions; cancellation
// goes through the booking flow so its event fires.
func (r *Repository) UpdateAppointmentStatus(ctx context.Context, id, status string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointments SET status = $2 WHERE id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
