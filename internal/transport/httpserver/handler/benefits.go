package handler

import (
	"errors"
	"net/http"
	"time"

	accountsdomain "osca-hub-go/internal/domain/accounts"
	benefitsdomain "osca-hub-go/internal/domain/benefits"
	seniorsdomain "osca-hub-go/internal/domain/seniors"
	"osca-hub-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
)

type createBenefitRequest struct {
	SeniorID        string  `json:"senior_id" validate:"required,uuid"`
	Type            string  `json:"type" validate:"required,oneof=pension medical_assistance burial_assistance social_pension_top_up"`
	AmountRequested float64 `json:"amount_requested" validate:"gte=0"`
	Remarks         string  `json:"remarks"`
}

type reviewBenefitRequest struct {
	Status  string  `json:"status" validate:"required,oneof=submitted under_review approved released denied"`
	Remarks *string `json:"remarks"`
}

type benefitResponse struct {
	ID              string     `json:"id"`
	SeniorID        string     `json:"senior_id"`
	BarangayCode    string     `json:"barangay_code"`
	Type            string     `json:"type"`
	AmountRequested float64    `json:"amount_requested"`
	Remarks         string     `json:"remarks,omitempty"`
	Status          string     `json:"status"`
	ReviewedBy      *string    `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type benefitListResponse struct {
	Items []benefitResponse `json:"items"`
	Total int64             `json:"total"`
}

func (h *Handlers) ListBenefits(w http.ResponseWriter, r *http.Request) {
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

	filter := benefitsdomain.ListFilter{
		BarangayCode: user.ScopeBarangay(),
		SeniorID:     query.Get("senior_id"),
		Status:       benefitsdomain.Status(query.Get("status")),
		Limit:        limit,
		Offset:       offset,
	}
	if user.Role == accountsdomain.RoleSenior {
		filter.SeniorID = user.SeniorID
	}

	items, total, err := h.Benefits.List(r.Context(), filter)
	if err != nil {
		h.log.InternalError("benefits.list: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := benefitListResponse{
		Items: make([]benefitResponse, 0, len(items)),
		Total: total,
	}
	for i := range items {
		response.Items = append(response.Items, toBenefitResponse(&items[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateBenefit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createBenefitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	application, err := h.Benefits.Create(r.Context(), benefitsdomain.CreateApplicationInput{
		SeniorID:        req.SeniorID,
		BarangayCode:    user.ScopeBarangay(),
		Type:            benefitsdomain.Type(req.Type),
		AmountRequested: req.AmountRequested,
		Remarks:         req.Remarks,
		ActorID:         user.ID,
	})
	if err != nil {
		h.writeBenefitError(w, err, user.ID, "benefits.create")
		return
	}

	writeJSON(w, http.StatusCreated, toBenefitResponse(application))
}

func (h *Handlers) GetBenefit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	application, err := h.Benefits.Get(r.Context(), chi.URLParam(r, "id"), user.ScopeBarangay())
	if err != nil {
		h.writeBenefitError(w, err, user.ID, "benefits.get")
		return
	}

	writeJSON(w, http.StatusOK, toBenefitResponse(application))
}

func (h *Handlers) ReviewBenefit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req reviewBenefitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	application, err := h.Benefits.Review(r.Context(), benefitsdomain.ReviewInput{
		ID:           chi.URLParam(r, "id"),
		BarangayCode: user.ScopeBarangay(),
		Status:       benefitsdomain.Status(req.Status),
		Remarks:      req.Remarks,
		ReviewerID:   user.ID,
	})
	if err != nil {
		h.writeBenefitError(w, err, user.ID, "benefits.review")
		return
	}

	writeJSON(w, http.StatusOK, toBenefitResponse(application))
}

func (h *Handlers) writeBenefitError(w http.ResponseWriter, err error, userID, operation string) {
	switch {
	case errors.Is(err, benefitsdomain.ErrApplicationNotFound):
		writeError(w, http.StatusNotFound, "application_not_found", "benefit application not found")
	case errors.Is(err, benefitsdomain.ErrBarangayMismatch):
		h.log.BusinessError(operation+": barangay mismatch", err, "user_id", userID)
		writeError(w, http.StatusForbidden, "barangay_forbidden", "record belongs to another barangay")
	case errors.Is(err, benefitsdomain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", "status transition not allowed")
	case errors.Is(err, seniorsdomain.ErrSeniorNotFound), errors.Is(err, seniorsdomain.ErrBarangayMismatch):
		h.writeSeniorError(w, err, userID, operation)
	default:
		h.log.InternalError(operation+": failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func toBenefitResponse(application *benefitsdomain.Application) benefitResponse {
	return benefitResponse{
		ID:              application.ID,
		SeniorID:        application.SeniorID,
		BarangayCode:    application.BarangayCode,
		Type:            string(application.Type),
		AmountRequested: application.AmountRequested,
		Remarks:         application.Remarks,
		Status:          string(application.Status),
		ReviewedBy:      application.ReviewedBy,
		ReviewedAt:      application.ReviewedAt,
		CreatedAt:       application.CreatedAt,
		UpdatedAt:       application.UpdatedAt,
	}
}
