package storage

import (
	"context"

	"github.com/jcallahan-dev/trimline/services/booking-service/internal/model"
)

// Booking keeps its own copy of the business settings, maintained from
// backoffice events, so the hot booking path never crosses the service
// boundary. An empty cache falls back to shipped defaults.

func defaultSettings() model.Settings {
	return model.Settings{
		OpenTime:               "09:00",
		CloseTime:              "18:00",
		BookingWindowDays:      30,
		AutoConfirm:            false,
		SendEmailConfirmations: true,
		SendEmailReminders:     true,
	}
}

func (r *BookingRepository) GetSettings(ctx context.Context) (model.Settings, error) {
	s := defaultSettings()
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(business_name, ''), open_time, close_time,
			booking_window_days, auto_confirm, send_email_confirmations, send_email_reminders
		FROM booking_settings
		WHERE id = 1
	`).Scan(
		&s.BusinessName,
		&s.OpenTime,
		&s.CloseTime,
		&s.BookingWindowDays,
		&s.AutoConfirm,
		&s.SendEmailConfirmations,
		&s.SendEmailReminders,
	)
	if err != nil {
		if IsNotFound(err) {
			return defaultSettings(), nil
		}
		return model.Settings{}, err
	}
	return s, nil
}

func (r *BookingRepository) UpsertSettings(ctx context.Context, s model.Settings) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO booking_settings
			(id, business_name, open_time, close_time, booking_window_days,
			 auto_confirm, send_email_confirmations, send_email_reminders)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id)
		DO UPDATE SET business_name = EXCLUDED.business_name,
		              open_time = EXCLUDED.open_time,
		              close_time = EXCLUDED.close_time,
		              booking_window_days = EXCLUDED.booking_window_days,
		              auto_confirm = EXCLUDED.auto_confirm,
		              send_email_confirmations = EXCLUDED.send_email_confirmations,
		              send_email_reminders = EXCLUDED.send_email_reminders,
		              updated_at = now()
	`, s.BusinessName, s.OpenTime, s.CloseTime, s.BookingWindowDays,
		s.AutoConfirm, s.SendEmailConfirmations, s.SendEmailReminders)
	return err
}
