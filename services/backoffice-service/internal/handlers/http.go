package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jcallahan-dev/trimline/services/backoffice-service/internal/outbox"
	"github.com/jcallahan-dev/trimline/services/backoffice-service/internal/storage"
)

type Handler struct {
	repo       *storage.Repository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
}

func New(repo *storage.Repository, outboxRepo *outbox.Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, outboxRepo: outboxRepo, logger: logger}
}

var weekdayNames = map[string]bool{
	"sunday": true, "monday": true, "tuesday": true, "wednesday": true,
	"thursday": true, "friday": true, "saturday": true,
}

func validClockTime(s string) bool {
	_, err := time.Parse("15:04", s)
	return err == nil
}

// validateWeek checks an availability payload: known weekday keys, and any
// provided start/end in "HH:MM".
func validateWeek(week map[string]storage.DayHours) string {
	for name, day := range week {
		if !weekdayNames[strings.ToLower(name)] {
			return "unknown weekday " + name
		}
		if day.Start != "" && !validClockTime(day.Start) {
			return "invalid start for " + name + ", expected HH:MM"
		}
		if day.End != "" && !validClockTime(day.End) {
			return "invalid end for " + name + ", expected HH:MM"
		}
	}
	return ""
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string  `json:"name"`
		Description  string  `json:"description"`
		DurationMins int     `json:"duration_minutes"`
		Price        float64 `json:"price"`
		Active       *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.DurationMins <= 0 {
		http.Error(w, "name and a positive duration_minutes are required", http.StatusBadRequest)
		return
	}
	if req.Price < 0 {
		http.Error(w, "price cannot be negative", http.StatusBadRequest)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	id, err := h.repo.CreateService(r.Context(), storage.Service{
		Name:         req.Name,
		Description:  strings.TrimSpace(req.Description),
		DurationMins: req.DurationMins,
		Price:        req.Price,
		Active:       active,
	})
	if err != nil {
		http.Error(w, "failed to create service", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var req storage.Service
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == "" || req.Name == "" || req.DurationMins <= 0 {
		http.Error(w, "id, name and a positive duration_minutes are required", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateService(r.Context(), req); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update service", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeactivateService(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to deactivate service", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	services, err := h.repo.ListServices(r.Context(), includeInactive, parseLimit(r, 100))
	if err != nil {
		http.Error(w, "failed to list services", http.StatusInternalServerError)
		return
	}
	if services == nil {
		services = []storage.Service{}
	}
	writeJSON(w, http.StatusOK, services)
}

func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string                      `json:"name"`
		Email        string                      `json:"email"`
		Phone        string                      `json:"phone"`
		Active       *bool                       `json:"active"`
		ServiceIDs   []string                    `json:"service_ids"`
		Availability map[string]storage.DayHours `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" {
		http.Error(w, "name and email are required", http.StatusBadRequest)
		return
	}
	if msg := validateWeek(req.Availability); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	if req.ServiceIDs == nil {
		req.ServiceIDs = []string{}
	}
	if req.Availability == nil {
		req.Availability = map[string]storage.DayHours{}
	}

	id, err := h.repo.CreateStaff(r.Context(), storage.Staff{
		Name:         req.Name,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		Active:       active,
		ServiceIDs:   req.ServiceIDs,
		Availability: req.Availability,
	})
	if err != nil {
		http.Error(w, "failed to create staff", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	var req storage.Staff
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.ID == "" || req.Name == "" || req.Email == "" {
		http.Error(w, "id, name and email are required", http.StatusBadRequest)
		return
	}
	if req.ServiceIDs == nil {
		req.ServiceIDs = []string{}
	}
	if err := h.repo.UpdateStaff(r.Context(), req); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "staff not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update staff", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) UpdateStaffAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StaffID      string                      `json:"staff_id"`
		Availability map[string]storage.DayHours `json:"availability"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.StaffID = strings.TrimSpace(req.StaffID)
	if req.StaffID == "" {
		http.Error(w, "staff_id is required", http.StatusBadRequest)
		return
	}
	if msg := validateWeek(req.Availability); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if req.Availability == nil {
		req.Availability = map[string]storage.DayHours{}
	}
	if err := h.repo.UpdateStaffAvailability(r.Context(), req.StaffID, req.Availability); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "staff not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update availability", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("include_inactive") == "true"
	staff, err := h.repo.ListStaff(r.Context(), includeInactive, parseLimit(r, 100))
	if err != nil {
		http.Error(w, "failed to list staff", http.StatusInternalServerError)
		return
	}
	if staff == nil {
		staff = []storage.Staff{}
	}
	writeJSON(w, http.StatusOK, staff)
}

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req storage.Location
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	if req.Name == "" || req.Address == "" {
		http.Error(w, "name and address are required", http.StatusBadRequest)
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(req.Timezone); err != nil {
		http.Error(w, "invalid timezone", http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateLocation(r.Context(), req)
	if err != nil {
		http.Error(w, "failed to create location", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req storage.Location
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == "" || req.Name == "" {
		http.Error(w, "id and name are required", http.StatusBadRequest)
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	if err := h.repo.UpdateLocation(r.Context(), req); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "location not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update location", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repo.ListLocations(r.Context(), parseLimit(r, 100))
	if err != nil {
		http.Error(w, "failed to list locations", http.StatusInternalServerError)
		return
	}
	if locations == nil {
		locations = []storage.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	customers, err := h.repo.SearchCustomers(r.Context(), query, parseLimit(r, 100))
	if err != nil {
		http.Error(w, "failed to list customers", http.StatusInternalServerError)
		return
	}
	if customers == nil {
		customers = []storage.Customer{}
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) UpdateCustomerNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID    string `json:"id"`
		Notes string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	if req.ID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateCustomerNotes(r.Context(), req.ID, strings.TrimSpace(req.Notes)); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "customer not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update customer", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateBlockedTime(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date      string `json:"date"`
		StaffID   string `json:"staff_id"`
		IsAllDay  bool   `json:"is_all_day"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Reason    string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(req.Date), time.UTC)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if !req.IsAllDay {
		if !validClockTime(req.StartTime) || !validClockTime(req.EndTime) {
			http.Error(w, "start_time and end_time (HH:MM) are required unless is_all_day", http.StatusBadRequest)
			return
		}
		if req.StartTime >= req.EndTime {
			http.Error(w, "end_time must be after start_time", http.StatusBadRequest)
			return
		}
	} else {
		req.StartTime = ""
		req.EndTime = ""
	}

	id, err := h.repo.CreateBlockedTime(r.Context(), storage.BlockedTime{
		Date:      date,
		StaffID:   strings.TrimSpace(req.StaffID),
		IsAllDay:  req.IsAllDay,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Reason:    strings.TrimSpace(req.Reason),
	})
	if err != nil {
		http.Error(w, "failed to create blocked time", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) ListBlockedTimes(w http.ResponseWriter, r *http.Request) {
	from, err := parseDateParam(r, "from")
	if err != nil {
		http.Error(w, "invalid from, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	to, err := parseDateParam(r, "to")
	if err != nil {
		http.Error(w, "invalid to, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if from.IsZero() {
		from = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if to.IsZero() {
		to = from.AddDate(0, 1, 0)
	}

	items, err := h.repo.ListBlockedTimes(r.Context(), from, to, parseLimit(r, 200))
	if err != nil {
		http.Error(w, "failed to list blocked times", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []storage.BlockedTime{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) DeleteBlockedTime(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}
	if err := h.repo.DeleteBlockedTime(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "blocked time not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to delete blocked time", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.repo.GetSettings(r.Context())
	if err != nil {
		http.Error(w, "failed to load settings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings persists the new values and publishes them so booking can
// refresh its local cache.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req storage.Settings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if !validClockTime(req.OpenTime) || !validClockTime(req.CloseTime) {
		http.Error(w, "open_time and close_time (HH:MM) are required", http.StatusBadRequest)
		return
	}
	if req.OpenTime >= req.CloseTime {
		http.Error(w, "close_time must be after open_time", http.StatusBadRequest)
		return
	}
	if req.BookingWindowDays < 0 || req.BookingWindowDays > 365 {
		http.Error(w, "booking_window_days must be between 0 and 365", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		http.Error(w, "db error", http.StatusInternalServerError)
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.UpsertSettings(ctx, tx, req); err != nil {
		http.Error(w, "failed to update settings", http.StatusInternalServerError)
		return
	}

	payload, err := json.Marshal(req)
	if err != nil {
		http.Error(w, "failed to build event payload", http.StatusInternalServerError)
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "settings",
		AggregateID:   "1",
		EventType:     "backoffice.settings.updated.v1",
		Payload:       payload,
	}); err != nil {
		http.Error(w, "failed to write outbox event", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit(ctx); err != nil {
		http.Error(w, "failed to commit", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.DashboardStats(r.Context(), time.Now().UTC())
	if err != nil {
		http.Error(w, "failed to load dashboard", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	var date *time.Time
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, time.UTC)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = &d
	}
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status != "" && !validStatus(status) {
		http.Error(w, "invalid status", http.StatusBadRequest)
		return
	}

	items, err := h.repo.ListAppointments(r.Context(), date, status, parseLimit(r, 100))
	if err != nil {
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []storage.AdminAppointment{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *Handler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Status = strings.TrimSpace(req.Status)
	if req.ID == "" || !validStatusUpdate(req.Status) {
		http.Error(w, "id and one of confirmed/completed/no_show required", http.StatusBadRequest)
		return
	}
	if err := h.repo.UpdateAppointmentStatus(r.Context(), req.ID, req.Status); err != nil {
		if storage.IsNotFound(err) {
			http.Error(w, "appointment not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update appointment", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validStatus(s string) bool {
	switch s {
	case "pending", "confirmed", "completed", "cancelled", "no_show":
		return true
	}
	return false
}

// validStatusUpdate limits the admin transition endpoint; cancellations go
// through the booking cancel flow so the event fires.
func validStatusUpdate(s string) bool {
	switch s {
	case "confirmed", "completed", "no_show":
		return true
	}
	return false
}

func parseLimit(r *http.Request, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 500 {
		return fallback
	}
	return n
}

func parseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation("2006-01-02", raw, time.UTC)
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
