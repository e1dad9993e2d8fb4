package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"showbook/internal/database"
	"showbook/internal/export"
	"showbook/internal/metrics"
	"showbook/internal/models"
)

// POST /admin/events {name, start_time, total_capacity}
func (s *HTTPServer) handleAdminEvents(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("admin_events")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Name          string     `json:"name"`
		StartTime     *time.Time `json:"start_time"`
		TotalCapacity *int64     `json:"total_capacity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Name == "" || body.StartTime == nil || body.TotalCapacity == nil {
		writeError(w, http.StatusBadRequest, "name, start_time and total_capacity required")
		return
	}

	event := &models.Event{
		Name:          body.Name,
		StartTime:     *body.StartTime,
		TotalCapacity: *body.TotalCapacity,
	}
	if err := s.bookings.CreateEvent(r.Context(), event); err != nil {
		if errors.Is(err, database.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

// GET /events
func (s *HTTPServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("events")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	listed, err := s.bookings.ListEvents(r.Context())
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if listed == nil {
		listed = []models.EventWithAvailability{}
	}
	writeJSON(w, http.StatusOK, listed)
}

// POST /events/{id}/book {user_name, seats}
func (s *HTTPServer) handleEventBook(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("book")
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/events/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[1] != "book" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	eventID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	var body struct {
		UserName string `json:"user_name"`
		Seats    *int64 `json:"seats"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.UserName == "" || body.Seats == nil || *body.Seats <= 0 {
		writeError(w, http.StatusBadRequest, "user_name and seats (>0) required")
		return
	}

	booking, err := s.bookings.Reserve(r.Context(), eventID, body.UserName, *body.Seats)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, booking)
	case errors.Is(err, database.ErrInsufficientCapacity):
		// The FAILED booking is committed as an audit record and returned
		// to the client alongside the conflict.
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   "Not enough seats available",
			"booking": booking,
		})
	case errors.Is(err, database.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, database.ErrInvalidArgument):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.serverError(w, r, err)
	}
}

// GET /bookings/{id} and POST /bookings/{id}/confirm
func (s *HTTPServer) handleBooking(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/bookings/")
	parts := strings.Split(rest, "/")

	switch {
	case len(parts) == 1 && parts[0] != "":
		metrics.IncHTTP("booking_get")
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.getBooking(w, r, parts[0])
	case len(parts) == 2 && parts[1] == "confirm":
		metrics.IncHTTP("confirm")
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		s.confirmBooking(w, r, parts[0])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *HTTPServer) getBooking(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.bookings.GetBooking(r.Context(), id)
	if errors.Is(err, database.ErrBookingNotFound) {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (s *HTTPServer) confirmBooking(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return
	}

	booking, err := s.bookings.Confirm(r.Context(), id)
	var stateErr *database.InvalidStateError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, booking)
	case errors.Is(err, database.ErrBookingNotFound):
		writeError(w, http.StatusNotFound, "Booking not found")
	case errors.As(err, &stateErr):
		writeError(w, http.StatusBadRequest, stateErr.Error())
	default:
		s.serverError(w, r, err)
	}
}

// GET /admin/bookings/export?from=YYYY-MM-DD&to=YYYY-MM-DD
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("export")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	from, err := time.Parse("2006-01-02", r.URL.Query().Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from is required (YYYY-MM-DD)")
		return
	}
	to, err := time.Parse("2006-01-02", r.URL.Query().Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to is required (YYYY-MM-DD)")
		return
	}
	// включительно до конца дня
	to = to.Add(24*time.Hour - time.Nanosecond)

	bookings, err := s.bookings.BookingsByDateRange(r.Context(), from, to)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	workbook, err := export.BookingsWorkbook(bookings, from, to)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	defer workbook.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename="+export.FileName(from, to))
	if err := workbook.Write(w); err != nil {
		s.logger.Error().Err(err).Msg("write export response")
	}
}

// GET /flags/model?user_id=... — rollout decision for the AI subsystem.
func (s *HTTPServer) handleModel(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("flags_model")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	model := s.models.ModelForRequest(r.Context(), r.URL.Query().Get("user_id"))
	writeJSON(w, http.StatusOK, map[string]string{"model": model})
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "DB error")
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
