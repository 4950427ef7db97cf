package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/availability"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/model"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/outbox"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/scheduling"
	"github.com/jcallahan-dev/trimline/services/booking-service/internal/storage"
)

type BookingHandler struct {
	repo       *storage.BookingRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	scheduling scheduling.Provider
}

func NewBookingHandler(repo *storage.BookingRepository, outboxRepo *outbox.Repository, logger *slog.Logger, schedulingProvider scheduling.Provider) *BookingHandler {
	return &BookingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		logger:     logger,
		scheduling: schedulingProvider,
	}
}

type createBookingRequest struct {
	ServiceID     string `json:"service_id"`
	StaffID       string `json:"staff_id"`
	LocationID    string `json:"location_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Notes         string `json:"notes"`
}

type createBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
}

type cancelBookingRequest struct {
	AppointmentID string `json:"appointment_id"`
	Reason        string `json:"reason"`
}

type cancelBookingResponse struct {
	AppointmentID string `json:"appointment_id"`
	Status        string `json:"status"`
	CancelledAt   string `json:"cancelled_at"`
}

type listAppointmentItem struct {
	AppointmentID string  `json:"appointment_id"`
	ServiceID     string  `json:"service_id"`
	StaffID       string  `json:"staff_id,omitempty"`
	Date          string  `json:"date"`
	StartTime     string  `json:"start_time"`
	EndTime       string  `json:"end_time"`
	Price         float64 `json:"price"`
	Status        string  `json:"status"`
	CancelledAt   string  `json:"cancelled_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Slots answers the public availability query. Closed or fully blocked days
// come back as an empty list with 200; only malformed input is an error.
func (h *BookingHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	serviceID := strings.TrimSpace(r.URL.Query().Get("service_id"))
	staffID := strings.TrimSpace(r.URL.Query().Get("staff_id"))
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if serviceID == "" || dateStr == "" {
		http.Error(w, "service_id and date are required", http.StatusBadRequest)
		return
	}
	date, err := availability.ParseDate(dateStr)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	cfg, err := h.scheduling.GetAvailabilityConfig(ctx, serviceID, staffID)
	if err != nil {
		h.writeConfigError(w, err)
		return
	}

	now := time.Now().UTC()
	if outsideBookingWindow(date, now, cfg.BookingWindowDays) {
		writeJSON(w, http.StatusOK, []slotItem{})
		return
	}

	appts, blocks, ok := h.loadDaySnapshot(ctx, w, date)
	if !ok {
		return
	}

	starts, err := availability.ComputeAvailableSlotsAt(cfg.Hours, availability.StepMinutes, date, cfg.DurationMinutes, cfg.Staff, appts, blocks, now)
	if err != nil {
		if errors.Is(err, availability.ErrInvalidDuration) {
			http.Error(w, "service has no valid duration", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "failed to compute slots", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, slotItems(starts, cfg.DurationMinutes))
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if msg := validateBookingRequest(&req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	date, err := availability.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	start, err := availability.ParseTimeOfDay(req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time, expected HH:MM", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	cfg, err := h.scheduling.GetAvailabilityConfig(ctx, req.ServiceID, req.StaffID)
	if err != nil {
		// Dependency failures must not finalize an idempotency key; the
		// client retries later with the same key.
		h.writeConfigError(w, err)
		return
	}

	status := model.StatusPending
	if cfg.AutoConfirm {
		status = model.StatusConfirmed
	}
	appt := &model.Appointment{
		ServiceID:     req.ServiceID,
		StaffID:       req.StaffID,
		LocationID:    req.LocationID,
		CustomerName:  req.CustomerName,
		CustomerEmail: strings.ToLower(req.CustomerEmail),
		CustomerPhone: req.CustomerPhone,
		Date:          date,
		StartTime:     start.String(),
		EndTime:       start.Add(cfg.DurationMinutes).String(),
		Price:         cfg.Price,
		Status:        status,
		Notes:         req.Notes,
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" {
		rec, exists, err := h.repo.LockIdempotencyKey(ctx, tx, idempotencyKey)
		if err != nil {
			http.Error(w, "failed to lock idempotency key", http.StatusInternalServerError)
			return
		}
		if exists && rec.StatusCode > 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(rec.StatusCode)
			_, _ = w.Write(rec.ResponsePayload)
			return
		}
	}

	now := time.Now().UTC()
	if outsideBookingWindow(date, now, cfg.BookingWindowDays) {
		h.rejectBooking(ctx, w, tx, idempotencyKey, http.StatusUnprocessableEntity, "requested date is outside the booking window")
		return
	}

	// Re-check the requested slot against a fresh snapshot. The window
	// between this check and commit is narrow but real; the exclusion
	// constraint on appointments is the final arbiter.
	appts, blocks, ok := h.loadDaySnapshot(ctx, w, date)
	if !ok {
		return
	}
	starts, err := availability.ComputeAvailableSlotsAt(cfg.Hours, availability.StepMinutes, date, cfg.DurationMinutes, cfg.Staff, appts, blocks, now)
	if err != nil {
		http.Error(w, "failed to verify availability", http.StatusInternalServerError)
		return
	}
	if !containsSlot(starts, start) {
		h.rejectBooking(ctx, w, tx, idempotencyKey, http.StatusConflict, "requested time is no longer available")
		return
	}

	id, err := h.repo.CreateAppointment(ctx, tx, appt)
	if err != nil {
		if storage.IsConflict(err) {
			http.Error(w, "time slot already booked", http.StatusConflict)
			return
		}
		http.Error(w, "failed to create appointment", http.StatusInternalServerError)
		return
	}

	if err := h.repo.UpsertCustomerVisit(ctx, tx, appt); err != nil {
		http.Error(w, "failed to update customer record", http.StatusInternalServerError)
		return
	}

	evtPayload, err := json.Marshal(map[string]any{
		"appointment_id":     id,
		"service_id":         appt.ServiceID,
		"service_name":       cfg.ServiceName,
		"staff_id":           appt.StaffID,
		"date":               req.Date,
		"start_time":         appt.StartTime,
		"end_time":           appt.EndTime,
		"customer_name":      appt.CustomerName,
		"customer_email":     appt.CustomerEmail,
		"price":              appt.Price,
		"status":             appt.Status,
		"send_confirmations": cfg.SendConfirmations,
	})
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   id,
		EventType:     "booking.appointment.booked.v1",
		Payload:       evtPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	respBody, err := json.Marshal(createBookingResponse{
		AppointmentID: id,
		Status:        appt.Status,
		Date:          req.Date,
		StartTime:     appt.StartTime,
		EndTime:       appt.EndTime,
	})
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	if idempotencyKey != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, idempotencyKey, id, http.StatusCreated, respBody); err != nil {
			http.Error(w, "failed to finalize idempotency key", http.StatusInternalServerError)
			return
		}
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_, _ = w.Write(respBody)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req cancelBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.AppointmentID = strings.TrimSpace(req.AppointmentID)
	req.Reason = strings.TrimSpace(req.Reason)
	if req.AppointmentID == "" {
		http.Error(w, "appointment_id required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	appt, err := h.repo.GetAppointmentForUpdate(ctx, tx, req.AppointmentID)
	if err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to load appointment", http.StatusInternalServerError)
		return
	}

	if appt.Status == model.StatusCancelled && appt.CancelledAt != nil {
		h.writeCancelResponse(w, appt.ID, appt.CancelledAt.UTC())
		return
	}
	if appt.Status != model.StatusPending && appt.Status != model.StatusConfirmed {
		http.Error(w, "appointment cannot be cancelled", http.StatusConflict)
		return
	}

	cancelledAt, err := h.repo.CancelAppointment(ctx, tx, appt.ID, req.Reason)
	if err != nil {
		http.Error(w, "failed to cancel appointment", http.StatusInternalServerError)
		return
	}

	cancelPayload, err := json.Marshal(map[string]any{
		"appointment_id": appt.ID,
		"service_id":     appt.ServiceID,
		"staff_id":       appt.StaffID,
		"date":           appt.Date.Format("2006-01-02"),
		"start_time":     appt.StartTime,
		"end_time":       appt.EndTime,
		"customer_name":  appt.CustomerName,
		"customer_email": appt.CustomerEmail,
		"cancelled_at":   cancelledAt.UTC().Format(time.RFC3339),
		"reason":         req.Reason,
	})
	if err != nil {
		http.Error(w, "failed to build cancellation event", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "appointment",
		AggregateID:   appt.ID,
		EventType:     "booking.appointment.cancelled.v1",
		Payload:       cancelPayload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	h.writeCancelResponse(w, appt.ID, cancelledAt.UTC())
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	email := strings.TrimSpace(r.Header.Get("X-Customer-Email"))
	if email == "" {
		email = strings.TrimSpace(r.URL.Query().Get("customer_email"))
	}
	if email == "" {
		http.Error(w, "customer_email required", http.StatusBadRequest)
		return
	}

	limit := 50
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	appts, err := h.repo.ListByCustomerEmail(r.Context(), email, limit)
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}

	items := make([]listAppointmentItem, 0, len(appts))
	for _, appt := range appts {
		item := listAppointmentItem{
			AppointmentID: appt.ID,
			ServiceID:     appt.ServiceID,
			StaffID:       appt.StaffID,
			Date:          appt.Date.Format("2006-01-02"),
			StartTime:     appt.StartTime,
			EndTime:       appt.EndTime,
			Price:         appt.Price,
			Status:        appt.Status,
			CreatedAt:     appt.CreatedAt.UTC().Format(time.RFC3339),
		}
		if appt.CancelledAt != nil {
			item.CancelledAt = appt.CancelledAt.UTC().Format(time.RFC3339)
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *BookingHandler) loadDaySnapshot(ctx context.Context, w http.ResponseWriter, date time.Time) ([]availability.Appointment, []availability.Block, bool) {
	apptRecords, err := h.repo.DayAppointments(ctx, date)
	if err != nil {
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return nil, nil, false
	}
	blockRecords, err := h.repo.DayBlocks(ctx, date)
	if err != nil {
		http.Error(w, "failed to load blocked times", http.StatusInternalServerError)
		return nil, nil, false
	}

	appts, diags := availability.DecodeAppointments(apptRecords)
	blocks, blockDiags := availability.DecodeBlocks(blockRecords)
	for _, d := range append(diags, blockDiags...) {
		h.logger.Warn("skipping malformed conflict record", "err", d)
	}
	return appts, blocks, true
}

func (h *BookingHandler) writeConfigError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, scheduling.ErrServiceNotFound), errors.Is(err, scheduling.ErrStaffNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, scheduling.ErrServiceInactive), errors.Is(err, scheduling.ErrStaffInactive):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		h.logger.Error("availability config fetch failed", "err", err)
		http.Error(w, "availability configuration unavailable", http.StatusServiceUnavailable)
	}
}

// rejectBooking finalizes the idempotency key with the rejection so retries
// replay it instead of re-running the checks.
func (h *BookingHandler) rejectBooking(ctx context.Context, w http.ResponseWriter, tx pgx.Tx, key string, statusCode int, msg string) {
	body, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		http.Error(w, msg, statusCode)
		return
	}
	if key != "" {
		if err := h.repo.FinalizeIdempotency(ctx, tx, key, "", statusCode, body); err != nil {
			h.logger.Error("failed to finalize idempotency key", "err", err)
		} else if err := tx.Commit(ctx); err != nil {
			h.logger.Error("failed to commit idempotency rejection", "err", err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func (h *BookingHandler) writeCancelResponse(w http.ResponseWriter, appointmentID string, cancelledAt time.Time) {
	writeJSON(w, http.StatusOK, cancelBookingResponse{
		AppointmentID: appointmentID,
		Status:        model.StatusCancelled,
		CancelledAt:   cancelledAt.Format(time.RFC3339),
	})
}

func validateBookingRequest(req *createBookingRequest) string {
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	req.StaffID = strings.TrimSpace(req.StaffID)
	req.LocationID = strings.TrimSpace(req.LocationID)
	req.Date = strings.TrimSpace(req.Date)
	req.StartTime = strings.TrimSpace(req.StartTime)
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	req.CustomerEmail = strings.TrimSpace(req.CustomerEmail)
	req.CustomerPhone = strings.TrimSpace(req.CustomerPhone)
	req.Notes = strings.TrimSpace(req.Notes)

	switch {
	case req.ServiceID == "":
		return "service_id is required"
	case req.Date == "":
		return "date is required"
	case req.StartTime == "":
		return "start_time is required"
	case req.CustomerName == "":
		return "customer_name is required"
	case !validEmail(req.CustomerEmail):
		return "a valid customer_email is required"
	}
	return ""
}

func validEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}

// outsideBookingWindow rejects dates past now + windowDays. Past dates are
// not rejected here; the slot computation already yields nothing for them.
func outsideBookingWindow(date, now time.Time, windowDays int) bool {
	if windowDays <= 0 {
		return false
	}
	last := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, windowDays)
	return date.After(last)
}

func containsSlot(starts []availability.TimeOfDay, want availability.TimeOfDay) bool {
	for _, s := range starts {
		if s.Equal(want) {
			return true
		}
	}
	return false
}

func slotItems(starts []availability.TimeOfDay, durationMinutes int) []slotItem {
	items := make([]slotItem, 0, len(starts))
	for _, s := range starts {
		items = append(items, slotItem{
			StartTime: s.String(),
			EndTime:   s.Add(durationMinutes).String(),
		})
	}
	return items
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "failed to build response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}
