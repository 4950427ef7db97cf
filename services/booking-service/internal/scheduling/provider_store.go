package scheduling

import (
	"context"
	"log/slog"

	"github.com/jcallahan-dev/trimline/services/booking-service/internal/availability"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/storage"
)

// StoreProvider resolves availability configuration straight from the shared
// database. It is the default-build provider; the gRPC variant replaces it
// when booking runs against a remote backoffice.
type StoreProvider struct {
	repo   *storage.BookingRepository
	logger *slog.Logger
}

func NewStoreProvider(repo *storage.BookingRepository, logger *slog.Logger) *StoreProvider {
	return &StoreProvider{repo: repo, logger: logger}
}

func (p *StoreProvider) GetAvailabilityConfig(ctx context.Context, serviceID, staffID string) (AvailabilityConfig, error) {
	svc, err := p.repo.GetService(ctx, serviceID)
	if err != nil {
		if storage.IsNotFound(err) {
			return AvailabilityConfig{}, ErrServiceNotFound
		}
		return AvailabilityConfig{}, err
	}
	if !svc.Active {
		return AvailabilityConfig{}, ErrServiceInactive
	}

	settings, err := p.repo.GetSettings(ctx)
	if err != nil {
		return AvailabilityConfig{}, err
	}

	cfg := AvailabilityConfig{
		ServiceName:       svc.Name,
		DurationMinutes:   svc.DurationMinutes,
		Price:             svc.Price,
		Hours:             resolveHours(settings.OpenTime, settings.CloseTime, p.logger),
		BookingWindowDays: settings.BookingWindowDays,
		AutoConfirm:       settings.AutoConfirm,
		SendConfirmations: settings.SendEmailConfirmations,
	}

	if staffID != "" {
		rec, active, err := p.repo.GetStaffRecord(ctx, staffID)
		if err != nil {
			if storage.IsNotFound(err) {
				return AvailabilityConfig{}, ErrStaffNotFound
			}
			return AvailabilityConfig{}, err
		}
		if !active {
			return AvailabilityConfig{}, ErrStaffInactive
		}
		cfg.Staff = availability.StaffScheduleFromRecord(rec)
	}
	return cfg, nil
}

// resolveHours parses the configured open/close pair, falling back to the
// shipped defaults field by field when a value is missing or malformed.
func resolveHours(open, close string, logger *slog.Logger) availability.BusinessHours {
	hours := availability.DefaultBusinessHours()
	if open != "" {
		if t, err := availability.ParseTimeOfDay(open); err == nil {
			hours.Open = t
		} else if logger != nil {
			logger.Warn("malformed open_time setting; using default", "value", open)
		}
	}
	if close != "" {
		if t, err := availability.ParseTimeOfDay(close); err == nil {
			hours.Close = t
		} else if logger != nil {
			logger.Warn("malformed close_time setting; using default", "value", close)
		}
	}
	return hours
}
