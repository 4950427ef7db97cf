package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jcallahan-dev/trimline/libs/config"
	"github.com/jcallahan-dev/trimline/libs/db"
	"github.com/jcallahan-dev/trimline/libs/httpx"
	"github.com/jcallahan-dev/trimline/libs/kafkax"
	otelx "github.com/jcallahan-dev/trimline/libs/otel"
	"github.com/jcallahan-dev/trimline/libs/runtime"
	"github.com/jcallahan-dev/trimline/services/notification-service/internal/consumer"
	"github.com/jcallahan-dev/trimline/services/notification-service/internal/email"
	"github.com/jcallahan-dev/trimline/services/notification-service/internal/inbox"
	"github.com/jcallahan-dev/trimline/services/notification-service/internal/outbox"
	"github.com/jcallahan-dev/trimline/services/notification-service/internal/storage"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type bookedPayload struct {
	AppointmentID     string  `json:"appointment_id"`
	ServiceID         string  `json:"service_id"`
	ServiceName       string  `json:"service_name"`
	StaffID           string  `json:"staff_id"`
	Date              string  `json:"date"`
	StartTime         string  `json:"start_time"`
	EndTime           string  `json:"end_time"`
	CustomerName      string  `json:"customer_name"`
	CustomerEmail     string  `json:"customer_email"`
	Price             float64 `json:"price"`
	Status            string  `json:"status"`
	SendConfirmations bool    `json:"send_confirmations"`
}

type cancelledPayload struct {
	AppointmentID string `json:"appointment_id"`
	ServiceID     string `json:"service_id"`
	StaffID       string `json:"staff_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CancelledAt   string `json:"cancelled_at"`
	Reason        string `json:"reason"`
}

// notifier owns the send-persist-publish pipeline shared by both event
// handlers. Sends are best-effort: a failed send is recorded and reported
// as notification.failed.v1, never retried by re-reading the topic.
type notifier struct {
	pool       *db.Pool
	repo       *storage.Repository
	outboxRepo *outbox.Repository
	sender     email.Sender
	logger     *slog.Logger
	failSuffix string
}

func (n *notifier) deliver(ctx context.Context, appointmentID, kind, recipient, subject, body string, payload map[string]any) error {
	status := "sent"
	failureReason := ""
	if n.failSuffix != "" && strings.HasSuffix(recipient, n.failSuffix) {
		status = "failed"
		failureReason = "simulated failure"
	} else if err := n.sender.Send(recipient, subject, body); err != nil {
		status = "failed"
		failureReason = err.Error()
		n.logger.Error("email send failed", "err", err, "recipient", recipient)
	}

	if err := n.repo.Insert(ctx, storage.Notification{
		AppointmentID: appointmentID,
		Type:          kind,
		Channel:       "email",
		Recipient:     recipient,
		Subject:       subject,
		Payload:       payload,
		Status:        status,
		FailureReason: failureReason,
	}); err != nil {
		n.logger.Error("failed to persist notification", "err", err)
		return err
	}

	if status == "failed" {
		if err := n.writeOutbox(ctx, "notification.failed.v1", map[string]any{
			"appointment_id":    appointmentID,
			"notification_type": kind,
			"channel":           "email",
			"error_reason":      failureReason,
			"failed_at":         time.Now().UTC().Format(time.RFC3339),
		}, appointmentID); err != nil {
			n.logger.Error("failed to enqueue notification.failed", "err", err)
			return err
		}
	} else {
		if err := n.writeOutbox(ctx, "notification.sent.v1", map[string]any{
			"appointment_id":    appointmentID,
			"notification_type": kind,
			"channel":           "email",
			"sent_at":           time.Now().UTC().Format(time.RFC3339),
		}, appointmentID); err != nil {
			n.logger.Error("failed to enqueue notification.sent", "err", err)
			return err
		}
	}

	n.logger.Info("notification processed", "appointment_id", appointmentID, "type", kind, "status", status)
	return nil
}

func (n *notifier) writeOutbox(ctx context.Context, eventType string, payload map[string]any, appointmentID string) error {
	tx, err := n.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	eventPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := n.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "notification",
		AggregateID:   appointmentID,
		EventType:     eventType,
		Payload:       eventPayload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (n *notifier) handleBooked(businessName string) consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var payload bookedPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			n.logger.Error("invalid booked payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.CustomerEmail == "" || payload.Date == "" {
			n.logger.Error("missing booked fields")
			return nil
		}
		if !payload.SendConfirmations {
			n.logger.Info("confirmations disabled, skipping", "appointment_id", payload.AppointmentID)
			return nil
		}

		subject, body := email.ConfirmationMessage(email.AppointmentDetails{
			BusinessName: businessName,
			ServiceName:  payload.ServiceName,
			CustomerName: payload.CustomerName,
			Date:         payload.Date,
			StartTime:    payload.StartTime,
			EndTime:      payload.EndTime,
			Price:        payload.Price,
			Status:       payload.Status,
		})
		return n.deliver(ctx, payload.AppointmentID, "confirmation", payload.CustomerEmail, subject, body, map[string]any{
			"service_id":   payload.ServiceID,
			"service_name": payload.ServiceName,
			"staff_id":     payload.StaffID,
			"date":         payload.Date,
			"start_time":   payload.StartTime,
			"end_time":     payload.EndTime,
			"status":       payload.Status,
		})
	}
}

func (n *notifier) handleCancelled(businessName string) consumer.Handler {
	return func(ctx context.Context, msg kafka.Message) error {
		var payload cancelledPayload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			n.logger.Error("invalid cancelled payload", "err", err)
			return nil
		}
		if payload.AppointmentID == "" || payload.CustomerEmail == "" || payload.Date == "" {
			n.logger.Error("missing cancelled fields")
			return nil
		}

		subject, body := email.CancellationMessage(email.AppointmentDetails{
			BusinessName: businessName,
			CustomerName: payload.CustomerName,
			Date:         payload.Date,
			StartTime:    payload.StartTime,
			EndTime:      payload.EndTime,
		}, payload.Reason)
		return n.deliver(ctx, payload.AppointmentID, "cancellation", payload.CustomerEmail, subject, body, map[string]any{
			"service_id":   payload.ServiceID,
			"staff_id":     payload.StaffID,
			"date":         payload.Date,
			"start_time":   payload.StartTime,
			"end_time":     payload.EndTime,
			"cancelled_at": payload.CancelledAt,
			"reason":       payload.Reason,
		})
	}
}

func main() {
	_ = godotenv.Load()

	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8084")
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

	inboxRepo := inbox.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	smtpHost := config.String("SMTP_HOST", "mailpit")
	smtpPort := config.String("SMTP_PORT", "1025")
	smtpFrom := config.String("SMTP_FROM", "no-reply@trimline.local")
	businessName := config.String("BUSINESS_NAME", "")

	n := &notifier{
		pool:       pool,
		repo:       storage.NewRepository(pool),
		outboxRepo: outboxRepo,
		sender:     email.NewSMTPSender(smtpHost, smtpPort, smtpFrom),
		logger:     logger,
		failSuffix: config.String("NOTIFICATION_FAIL_SUFFIX", ""),
	}

	brokers := config.String("KAFKA_BROKERS", "")
	groupID := config.String("KAFKA_GROUP_ID", "notification-service")
	bookedConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   config.String("KAFKA_BOOKED_TOPIC", "booking.appointment.booked.v1"),
	}, n.handleBooked(businessName))
	go bookedConsumer.Run(ctx)

	cancelledConsumer := consumer.New(logger, inboxRepo, consumer.Config{
		Brokers: brokers,
		GroupID: groupID,
		Topic:   config.String("KAFKA_CANCELLED_TOPIC", "booking.appointment.cancelled.v1"),
	}, n.handleCancelled(businessName))
	go cancelledConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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
