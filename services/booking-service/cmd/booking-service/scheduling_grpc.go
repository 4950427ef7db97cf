//go:build protogen

package main

import (
	"log/slog"

	"github.com/jcallahan-dev/trimline/libs/config"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/scheduling"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/storage"
)

// With protogen, booking resolves availability over gRPC when a backoffice
// address is configured, keeping the store provider as the fallback.
func newSchedulingProvider(repo *storage.BookingRepository, logger *slog.Logger) scheduling.Provider {
	addr := config.String("BACKOFFICE_GRPC_ADDR", "")
	if addr == "" {
		return scheduling.NewStoreProvider(repo, logger)
	}
	provider, err := scheduling.NewGRPCProvider(addr)
	if err != nil {
		logger.Error("backoffice grpc dial failed; using store provider", "err", err)
		return scheduling.NewStoreProvider(repo, logger)
	}
	return provider
}
