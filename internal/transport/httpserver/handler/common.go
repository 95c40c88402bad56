package handler

import (
	"errors"
	"net/http"

	accountsdomain "osca-hub-go/internal/domain/accounts"
	"osca-hub-go/internal/transport/httpserver/middleware"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	FullName     string `json:"full_name" validate:"required"`
	Role         string `json:"role" validate:"required,oneof=osca basca senior"`
	BarangayCode string `json:"barangay_code"`
}

type accountResponse struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	FullName     string  `json:"full_name"`
	Role         string  `json:"role"`
	BarangayCode *string `json:"barangay_code,omitempty"`
	SeniorID     *string `json:"senior_id,omitempty"`
}

type loginResponse struct {
	Token   string          `json:"token"`
	Account accountResponse `json:"account"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	account, token, err := h.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, accountsdomain.ErrInvalidCredentials) {
			h.log.BusinessError("accounts.login: rejected", err, "email", req.Email)
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		h.log.InternalError("accounts.login: failed", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:   token,
		Account: toAccountResponse(account),
	})
}

// RegisterAccount provisions OSCA/BASCA staff accounts. Senior self-service
// accounts are provisioned through senior registration instead.
func (h *Handlers) RegisterAccount(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	account, err := h.Accounts.Register(r.Context(), accountsdomain.RegisterInput{
		Email:        req.Email,
		Password:     req.Password,
		FullName:     req.FullName,
		Role:         accountsdomain.Role(req.Role),
		BarangayCode: req.BarangayCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, accountsdomain.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
		case errors.Is(err, accountsdomain.ErrBarangayRequired):
			writeError(w, http.StatusBadRequest, "invalid_request", "barangay code is required for basca accounts")
		default:
			h.log.InternalError("accounts.register: failed", err)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	account, err := h.Accounts.GetByID(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, accountsdomain.ErrAccountNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
			return
		}
		h.log.InternalError("accounts.me: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func toAccountResponse(account *accountsdomain.Account) accountResponse {
	return accountResponse{
		ID:           account.ID,
		Email:        account.Email,
		FullName:     account.FullName,
		Role:         string(account.Role),
		BarangayCode: account.BarangayCode,
		SeniorID:     account.SeniorID,
	}
}
