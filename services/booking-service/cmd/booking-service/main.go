package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jcallahan-dev/trimline/libs/config"
	"github.com/jcallahan-dev/trimline/libs/db"
	"github.com/jcallahan-dev/trimline/libs/httpx"
	"github.com/jcallahan-dev/trimline/libs/kafkax"
	otelx "github.com/jcallahan-dev/trimline/libs/otel"
	"github.com/jcallahan-dev/trimline/libs/runtime"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/consumer"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/handlers"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/inbox"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/model"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/outbox"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/storage"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewBookingRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	schedulingProvider := newSchedulingProvider(repo, logger)

	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	// Backoffice settings changes land in the local settings cache so the
	// booking path stays on its own tables.
	inboxRepo := inbox.NewRepository(pool)
	settingsTopic := config.String("KAFKA_SETTINGS_TOPIC", "backoffice.settings.updated.v1")
	if strings.TrimSpace(config.String("KAFKA_BROKERS", "")) != "" {
		settingsConsumer := consumer.New(logger, inboxRepo, consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "booking-service"),
			Topic:   settingsTopic,
		}, func(ctx context.Context, msg kafka.Message) error {
			var payload struct {
				BusinessName           string `json:"business_name"`
				OpenTime               string `json:"open_time"`
				CloseTime              string `json:"close_time"`
				BookingWindowDays      int    `json:"booking_window_days"`
				AutoConfirm            bool   `json:"auto_confirm"`
				SendEmailConfirmations bool   `json:"send_email_confirmations"`
				SendEmailReminders     bool   `json:"send_email_reminders"`
			}
			if err := json.Unmarshal(msg.Value, &payload); err != nil {
				logger.Error("invalid settings event payload", "err", err, "topic", msg.Topic)
				return nil
			}
			return repo.UpsertSettings(ctx, model.Settings{
				BusinessName:           payload.BusinessName,
				OpenTime:               payload.OpenTime,
				CloseTime:              payload.CloseTime,
				BookingWindowDays:      payload.BookingWindowDays,
				AutoConfirm:            payload.AutoConfirm,
				SendEmailConfirmations: payload.SendEmailConfirmations,
				SendEmailReminders:     payload.SendEmailReminders,
			})
		})
		go settingsConsumer.Run(ctx)
	}

	bookingHandler := handlers.NewBookingHandler(repo, outboxRepo, logger, schedulingProvider)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/public/slots", bookingHandler.Slots)
	mux.HandleFunc("/api/v1/public/book", bookingHandler.Create)
	mux.HandleFunc("/api/v1/appointments", bookingHandler.List)
	mux.HandleFunc("/api/v1/appointments/cancel", bookingHandler.Cancel)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
