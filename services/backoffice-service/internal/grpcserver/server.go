//go:build protogen

package grpcserver

import (
	"context"

	backofficev1 "github.com/jcallahan-dev/trimline/protos/gen/backoffice/v1"
	"github.com/jcallahan-dev/trimline/services/backoffice-service/internal/storage"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type server struct {
	backofficev1.UnimplementedBackofficeServiceServer
	repo *storage.Repository
}

func Register(grpcServer *grpc.Server, repo *storage.Repository) {
	backofficev1.RegisterBackofficeServiceServer(grpcServer, &server{repo: repo})
}

// GetAvailabilityConfig hands booking everything it needs to compute slots:
// service duration and price, the business window, the policy knobs, and the
// requested staff member's weekly schedule.
func (s *server) GetAvailabilityConfig(ctx context.Context, req *backofficev1.AvailabilityConfigRequest) (*backofficev1.AvailabilityConfigResponse, error) {
	if req.GetServiceId() == "" {
		return nil, status.Error(codes.InvalidArgument, "service_id is required")
	}

	svc, err := s.repo.GetService(ctx, req.GetServiceId())
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, status.Error(codes.NotFound, "service not found")
		}
		return nil, status.Error(codes.Internal, "service lookup failed")
	}
	if !svc.Active {
		return nil, status.Error(codes.FailedPrecondition, "service is not bookable")
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, status.Error(codes.Internal, "settings lookup failed")
	}

	resp := &backofficev1.AvailabilityConfigResponse{
		ServiceName:            svc.Name,
		DurationMinutes:        int32(svc.DurationMins),
		Price:                  svc.Price,
		OpenTime:               settings.OpenTime,
		CloseTime:              settings.CloseTime,
		BookingWindowDays:      int32(settings.BookingWindowDays),
		AutoConfirm:            settings.AutoConfirm,
		SendEmailConfirmations: settings.SendEmailConfirmations,
	}

	if req.GetStaffId() != "" {
		st, err := s.repo.GetStaff(ctx, req.GetStaffId())
		if err != nil {
			if storage.IsNotFound(err) {
				return nil, status.Error(codes.NotFound, "staff not found")
			}
			return nil, status.Error(codes.Internal, "staff lookup failed")
		}
		if !st.Active {
			return nil, status.Error(codes.FailedPrecondition, "staff is not bookable")
		}
		week := make(map[string]*backofficev1.DayHours, len(st.Availability))
		for name, day := range st.Availability {
			week[name] = &backofficev1.DayHours{
				Enabled: day.Enabled,
				Start:   day.Start,
				End:     day.End,
			}
		}
		resp.Staff = &backofficev1.StaffSchedule{
			StaffId: st.ID,
			Week:    week,
		}
	}
	return resp, nil
}
