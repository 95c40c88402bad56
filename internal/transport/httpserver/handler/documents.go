package handler

import (
	"errors"
	"net/http"
	"time"

	accountsdomain "osca-hub-go/internal/domain/accounts"
	documentsdomain "osca-hub-go/internal/domain/documents"
	seniorsdomain "osca-hub-go/internal/domain/seniors"
	"osca-hub-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
)

type createDocumentRequest struct {
	SeniorID string `json:"senior_id" validate:"required,uuid"`
	Type     string `json:"type" validate:"required,oneof=osca_id certification endorsement_letter"`
	Purpose  string `json:"purpose"`
}

type advanceDocumentRequest struct {
	Status string `json:"status" validate:"required,oneof=requested processing ready released"`
}

type documentResponse struct {
	ID           string    `json:"id"`
	SeniorID     string    `json:"senior_id"`
	BarangayCode string    `json:"barangay_code"`
	Type         string    `json:"type"`
	Purpose      string    `json:"purpose,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type documentListResponse struct {
	Items []documentResponse `json:"items"`
	Total int64              `json:"total"`
}

func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
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

	filter := documentsdomain.ListFilter{
		BarangayCode: user.ScopeBarangay(),
		SeniorID:     query.Get("senior_id"),
		Status:       documentsdomain.Status(query.Get("status")),
		Limit:        limit,
		Offset:       offset,
	}
	if user.Role == accountsdomain.RoleSenior {
		filter.SeniorID = user.SeniorID
	}

	items, total, err := h.Documents.List(r.Context(), filter)
	if err != nil {
		h.log.InternalError("documents.list: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := documentListResponse{
		Items: make([]documentResponse, 0, len(items)),
		Total: total,
	}
	for i := range items {
		response.Items = append(response.Items, toDocumentResponse(&items[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	// Seniors may only request documents for themselves.
	if user.Role == accountsdomain.RoleSenior && req.SeniorID != user.SeniorID {
		writeError(w, http.StatusForbidden, "forbidden", "cannot request documents for another senior")
		return
	}

	request, err := h.Documents.Create(r.Context(), documentsdomain.CreateRequestInput{
		SeniorID:     req.SeniorID,
		BarangayCode: user.ScopeBarangay(),
		Type:         documentsdomain.Type(req.Type),
		Purpose:      req.Purpose,
		ActorID:      user.ID,
	})
	if err != nil {
		h.writeDocumentError(w, err, user.ID, "documents.create")
		return
	}

	writeJSON(w, http.StatusCreated, toDocumentResponse(request))
}

func (h *Handlers) GetDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	request, err := h.Documents.Get(r.Context(), chi.URLParam(r, "id"), user.ScopeBarangay())
	if err != nil {
		h.writeDocumentError(w, err, user.ID, "documents.get")
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(request))
}

func (h *Handlers) AdvanceDocument(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req advanceDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	request, err := h.Documents.Advance(r.Context(), chi.URLParam(r, "id"), user.ScopeBarangay(), documentsdomain.Status(req.Status))
	if err != nil {
		h.writeDocumentError(w, err, user.ID, "documents.advance")
		return
	}

	writeJSON(w, http.StatusOK, toDocumentResponse(request))
}

func (h *Handlers) writeDocumentError(w http.ResponseWriter, err error, userID, operation string) {
	switch {
	case errors.Is(err, documentsdomain.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "document_not_found", "document request not found")
	case errors.Is(err, documentsdomain.ErrBarangayMismatch):
		h.log.BusinessError(operation+": barangay mismatch", err, "user_id", userID)
		writeError(w, http.StatusForbidden, "barangay_forbidden", "record belongs to another barangay")
	case errors.Is(err, documentsdomain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", "status transition not allowed")
	case errors.Is(err, seniorsdomain.ErrSeniorNotFound), errors.Is(err, seniorsdomain.ErrBarangayMismatch):
		h.writeSeniorError(w, err, userID, operation)
	default:
		h.log.InternalError(operation+": failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func toDocumentResponse(request *documentsdomain.Request) documentResponse {
	return documentResponse{
		ID:           request.ID,
		SeniorID:     request.SeniorID,
		BarangayCode: request.BarangayCode,
		Type:         string(request.Type),
		Purpose:      request.Purpose,
		Status:       string(request.Status),
		CreatedAt:    request.CreatedAt,
		UpdatedAt:    request.UpdatedAt,
	}
}
