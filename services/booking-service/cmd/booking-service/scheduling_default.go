//go:build !protogen

package main

import (
	"log/slog"

	"github.com/jcallahan-dev/trimline/services/booking-service/internal/scheduling"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/storage"
)

func newSchedulingProvider(repo *storage.BookingRepository, logger *slog.Logger) scheduling.Provider {
	return scheduling.NewStoreProvider(repo, logger)
}
