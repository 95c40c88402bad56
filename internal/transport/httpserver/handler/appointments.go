package handler

import (
	"errors"
	"net/http"
	"time"

	accountsdomain "osca-hub-go/internal/domain/accounts"
	appointmentsdomain "osca-hub-go/internal/domain/appointments"
	seniorsdomain "osca-hub-go/internal/domain/seniors"
	"osca-hub-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
)

type createAppointmentRequest struct {
	SeniorID    string `json:"senior_id" validate:"required,uuid"`
	Type        string `json:"type" validate:"required,oneof=medical basca"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Notes       string `json:"notes"`
}

type updateAppointmentRequest struct {
	ScheduledAt *string `json:"scheduled_at"`
	Location    *string `json:"location"`
	Notes       *string `json:"notes"`
	Status      *string `json:"status" validate:"omitempty,oneof=pending confirmed completed cancelled"`
}

type appointmentResponse struct {
	ID           string    `json:"id"`
	SeniorID     string    `json:"senior_id"`
	BarangayCode string    `json:"barangay_code"`
	Type         string    `json:"type"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Location     string    `json:"location"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type appointmentListResponse struct {
	Items []appointmentResponse `json:"items"`
	Total int64                 `json:"total"`
}

func (h *Handlers) ListAppointments(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	query := r.URL.Query()
	limit, err := parseIntParam(query.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}
	from, err := parseDateParam(query.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "from must be a date in YYYY-MM-DD format")
		return
	}
	to, err := parseDateParam(query.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "to must be a date in YYYY-MM-DD format")
		return
	}

	filter := appointmentsdomain.ListFilter{
		BarangayCode: user.ScopeBarangay(),
		SeniorID:     query.Get("senior_id"),
		Status:       appointmentsdomain.Status(query.Get("status")),
		From:         from,
		To:           to,
		Limit:        limit,
		Offset:       offset,
	}
	// Seniors only ever see their own schedule.
	if user.Role == accountsdomain.RoleSenior {
		filter.SeniorID = user.SeniorID
	}

	items, total, err := h.Appointments.List(r.Context(), filter)
	if err != nil {
		h.log.InternalError("appointments.list: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := appointmentListResponse{
		Items: make([]appointmentResponse, 0, len(items)),
		Total: total,
	}
	for i := range items {
		response.Items = append(response.Items, toAppointmentResponse(&items[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "scheduled_at must be an RFC 3339 timestamp")
		return
	}

	appointment, err := h.Appointments.Create(r.Context(), appointmentsdomain.CreateAppointmentInput{
		SeniorID:     req.SeniorID,
		BarangayCode: user.ScopeBarangay(),
		Type:         appointmentsdomain.Type(req.Type),
		ScheduledAt:  scheduledAt,
		Location:     req.Location,
		Notes:        req.Notes,
		ActorID:      user.ID,
	})
	if err != nil {
		h.writeAppointmentError(w, err, user.ID, "appointments.create")
		return
	}

	writeJSON(w, http.StatusCreated, toAppointmentResponse(appointment))
}

func (h *Handlers) GetAppointment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	appointment, err := h.Appointments.Get(r.Context(), chi.URLParam(r, "id"), user.ScopeBarangay())
	if err != nil {
		h.writeAppointmentError(w, err, user.ID, "appointments.get")
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appointment))
}

func (h *Handlers) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateAppointmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	input := appointmentsdomain.UpdateAppointmentInput{
		ID:           chi.URLParam(r, "id"),
		BarangayCode: user.ScopeBarangay(),
		Location:     req.Location,
		Notes:        req.Notes,
		Status:       (*appointmentsdomain.Status)(req.Status),
	}
	if req.ScheduledAt != nil {
		scheduledAt, err := time.Parse(time.RFC3339, *req.ScheduledAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "scheduled_at must be an RFC 3339 timestamp")
			return
		}
		input.ScheduledAt = &scheduledAt
	}

	appointment, err := h.Appointments.Update(r.Context(), input)
	if err != nil {
		h.writeAppointmentError(w, err, user.ID, "appointments.update")
		return
	}

	writeJSON(w, http.StatusOK, toAppointmentResponse(appointment))
}

func (h *Handlers) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Appointments.Delete(r.Context(), chi.URLParam(r, "id"), user.ScopeBarangay()); err != nil {
		h.writeAppointmentError(w, err, user.ID, "appointments.delete")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handlers) writeAppointmentError(w http.ResponseWriter, err error, userID, operation string) {
	switch {
	case errors.Is(err, appointmentsdomain.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", "appointment not found")
	case errors.Is(err, appointmentsdomain.ErrBarangayMismatch):
		h.log.BusinessError(operation+": barangay mismatch", err, "user_id", userID)
		writeError(w, http.StatusForbidden, "barangay_forbidden", "record belongs to another barangay")
	case errors.Is(err, appointmentsdomain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", "status transition not allowed")
	case errors.Is(err, seniorsdomain.ErrSeniorNotFound), errors.Is(err, seniorsdomain.ErrBarangayMismatch):
		h.writeSeniorError(w, err, userID, operation)
	default:
		h.log.InternalError(operation+": failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func toAppointmentResponse(appointment *appointmentsdomain.Appointment) appointmentResponse {
	return appointmentResponse{
		ID:           appointment.ID,
		SeniorID:     appointment.SeniorID,
		BarangayCode: appointment.BarangayCode,
		Type:         string(appointment.Type),
		ScheduledAt:  appointment.ScheduledAt,
		Location:     appointment.Location,
		Notes:        appointment.Notes,
		Status:       string(appointment.Status),
		CreatedAt:    appointment.CreatedAt,
		UpdatedAt:    appointment.UpdatedAt,
	}
}
