//go:build protogen

package scheduling

import (
	"context"
	"time"

	"github.com/jcallahan-dev/trimline/libs/grpcx"
	backofficev1 "github.com/jcallahan-dev/trimline/protos/gen/backoffice/v1"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/availability"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type grpcProvider struct {
	client backofficev1.BackofficeServiceClient
}

// NewGRPCProvider dials the backoffice availability endpoint. Only compiled
// with protogen; default builds resolve against the shared database.
func NewGRPCProvider(addr string) (Provider, error) {
	conn, err := grpcx.Dial(context.Background(), addr, grpcx.DialOptions{Timeout: 3 * time.Second})
	if err != nil {
		return nil, err
	}
	return &grpcProvider{client: backofficev1.NewBackofficeServiceClient(conn)}, nil
}

func (p *grpcProvider) GetAvailabilityConfig(ctx context.Context, serviceID, staffID string) (AvailabilityConfig, error) {
	resp, err := p.client.GetAvailabilityConfig(ctx, &backofficev1.AvailabilityConfigRequest{
		ServiceId: serviceID,
		StaffId:   staffID,
	})
	if err != nil {
		switch status.Code(err) {
		case codes.NotFound:
			if staffID != "" && status.Convert(err).Message() == "staff not found" {
				return AvailabilityConfig{}, ErrStaffNotFound
			}
			return AvailabilityConfig{}, ErrServiceNotFound
		case codes.FailedPrecondition:
			if staffID != "" && status.Convert(err).Message() == "staff is not bookable" {
				return AvailabilityConfig{}, ErrStaffInactive
			}
			return AvailabilityConfig{}, ErrServiceInactive
		}
		return AvailabilityConfig{}, err
	}

	cfg := AvailabilityConfig{
		ServiceName:       resp.GetServiceName(),
		DurationMinutes:   int(resp.GetDurationMinutes()),
		Price:             resp.GetPrice(),
		Hours:             availability.DefaultBusinessHours(),
		BookingWindowDays: int(resp.GetBookingWindowDays()),
		AutoConfirm:       resp.GetAutoConfirm(),
		SendConfirmations: resp.GetSendEmailConfirmations(),
	}
	if t, err := availability.ParseTimeOfDay(resp.GetOpenTime()); err == nil {
		cfg.Hours.Open = t
	}
	if t, err := availability.ParseTimeOfDay(resp.GetCloseTime()); err == nil {
		cfg.Hours.Close = t
	}

	if staff := resp.GetStaff(); staff != nil {
		rec := &availability.StaffRecord{
			ID:           staff.GetStaffId(),
			Availability: map[string]availability.DayHoursRecord{},
		}
		for name, day := range staff.GetWeek() {
			rec.Availability[name] = availability.DayHoursRecord{
				Enabled: day.GetEnabled(),
				Start:   day.GetStart(),
				End:     day.GetEnd(),
			}
		}
		cfg.Staff = availability.StaffScheduleFromRecord(rec)
	}
	return cfg, nil
}
