package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	seniorsdomain "osca-hub-go/internal/domain/seniors"
	syncdomain "osca-hub-go/internal/domain/sync"
	"osca-hub-go/internal/transport/httpserver/middleware"
)

const (
	minIdempotencyKeyLength = 8
	maxIdempotencyKeyLength = 128
)

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-5][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

type syncBatchRequest struct {
	Operations []syncOperationRequest `json:"operations"`
}

type syncOperationRequest struct {
	OperationID string          `json:"operation_id"`
	Type        string          `json:"type"`
	LocalID     string          `json:"local_id"`
	Payload     json.RawMessage `json:"payload"`
}

type syncCreateSeniorPayloadRequest struct {
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	DateOfBirth string `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender      string `json:"gender" validate:"required"`

	BarangayCode  string                `json:"barangay_code" validate:"required"`
	BarangayName  string                `json:"barangay_name" validate:"required"`
	Address       string                `json:"address"`
	AddressDetail *addressDetailRequest `json:"address_detail"`

	ContactPerson       *string `json:"contact_person"`
	ContactPhone        *string `json:"contact_phone"`
	ContactRelationship *string `json:"contact_relationship"`

	EmergencyName         string `json:"emergency_name" validate:"required"`
	EmergencyPhone        string `json:"emergency_phone" validate:"required"`
	EmergencyRelationship string `json:"emergency_relationship" validate:"required"`

	Conditions  []string `json:"conditions"`
	Medications []string `json:"medications"`

	HousingCondition string  `json:"housing_condition" validate:"required,oneof=owned rented with_family institution other"`
	HealthCondition  string  `json:"health_condition" validate:"required,oneof=excellent good fair poor critical"`
	LivingCondition  string  `json:"living_condition" validate:"required,oneof=independent with_family with_caregiver institution other"`
	MonthlyIncome    float64 `json:"monthly_income" validate:"gte=0"`
	MonthlyPension   float64 `json:"monthly_pension" validate:"gte=0"`

	ProfilePicture *string `json:"profile_picture"`
	IDPhoto        *string `json:"id_photo"`

	Beneficiaries []beneficiaryRequest `json:"beneficiaries" validate:"dive"`

	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`

	RegistrationDate string `json:"registration_date" validate:"omitempty,datetime=2006-01-02"`
}

type syncUpdateSeniorPayloadRequest struct {
	SeniorID      *string `json:"senior_id"`
	SeniorLocalID *string `json:"senior_local_id"`

	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Gender       *string `json:"gender"`
	Address      *string `json:"address"`
	BarangayName *string `json:"barangay_name"`

	ContactPerson       *string `json:"contact_person"`
	ContactPhone        *string `json:"contact_phone"`
	ContactRelationship *string `json:"contact_relationship"`

	EmergencyName         *string `json:"emergency_name"`
	EmergencyPhone        *string `json:"emergency_phone"`
	EmergencyRelationship *string `json:"emergency_relationship"`

	Conditions  *[]string `json:"conditions"`
	Medications *[]string `json:"medications"`

	HousingCondition *string  `json:"housing_condition" validate:"omitempty,oneof=owned rented with_family institution other"`
	HealthCondition  *string  `json:"health_condition" validate:"omitempty,oneof=excellent good fair poor critical"`
	LivingCondition  *string  `json:"living_condition" validate:"omitempty,oneof=independent with_family with_caregiver institution other"`
	MonthlyIncome    *float64 `json:"monthly_income" validate:"omitempty,gte=0"`
	MonthlyPension   *float64 `json:"monthly_pension" validate:"omitempty,gte=0"`
}

type syncDeleteSeniorPayloadRequest struct {
	SeniorID      *string `json:"senior_id"`
	SeniorLocalID *string `json:"senior_local_id"`
}

type syncCreateAppointmentPayloadRequest struct {
	SeniorID      *string `json:"senior_id"`
	SeniorLocalID *string `json:"senior_local_id"`
	Type          string  `json:"type" validate:"required,oneof=medical basca"`
	ScheduledAt   string  `json:"scheduled_at" validate:"required"`
	Location      string  `json:"location" validate:"required"`
	Notes         string  `json:"notes"`
}

func (h *Handlers) SyncBatch(w http.ResponseWriter, r *http.Request) {
	startedAt := time.Now()

	var req syncBatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	if len(req.Operations) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "operations are required")
		return
	}
	if len(req.Operations) > syncdomain.MaxBatchOperations {
		writeError(w, http.StatusRequestEntityTooLarge, "sync_batch_too_large", "too many operations in one batch")
		return
	}

	idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if idempotencyKey != "" && len(idempotencyKey) < minIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "idempotency key is too short")
		return
	}
	if len(idempotencyKey) > maxIdempotencyKeyLength {
		writeError(w, http.StatusBadRequest, "invalid_request", "idempotency key is too long")
		return
	}

	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	operations := make([]syncdomain.OperationInput, 0, len(req.Operations))
	for i, operation := range req.Operations {
		parsed, err := h.parseSyncOperation(operation)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid operation at index "+strconv.Itoa(i)+": "+err.Error())
			return
		}
		operations = append(operations, parsed)
	}

	response, err := h.Sync.ProcessBatch(r.Context(), syncdomain.BatchInput{
		User:           syncdomain.UserSnapshot{ID: user.ID, Role: string(user.Role), BarangayCode: user.BarangayCode},
		IdempotencyKey: idempotencyKey,
		Operations:     operations,
	})
	if err != nil {
		logAttrs := []any{
			"user_id", user.ID,
			"operations", len(operations),
			"has_idempotency_key", idempotencyKey != "",
			"duration_ms", time.Since(startedAt).Milliseconds(),
		}

		switch {
		case errors.Is(err, syncdomain.ErrBatchTooLarge):
			h.log.BusinessError("sync.batch: batch too large", err, logAttrs...)
			writeError(w, http.StatusRequestEntityTooLarge, "sync_batch_too_large", "too many operations in one batch")
		case errors.Is(err, syncdomain.ErrIdempotencyKeyPayloadMismatch):
			h.log.BusinessError("sync.batch: idempotency key payload mismatch", err, logAttrs...)
			writeError(w, http.StatusConflict, "idempotency_key_payload_mismatch", "Idempotency-Key was already used with different payload")
		case errors.Is(err, syncdomain.ErrBatchInProgress):
			h.log.BusinessError("sync.batch: batch in progress", err, logAttrs...)
			writeError(w, http.StatusConflict, "batch_in_progress", "sync batch is already in progress")
		default:
			h.log.InternalError("sync.batch: process batch failed", err, logAttrs...)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	h.log.Info(
		"sync: completed",
		"sync_id", response.SyncID,
		"user_id", user.ID,
		"status", response.Status,
		"total", response.Summary.Total,
		"applied", response.Summary.Applied,
		"duplicate", response.Summary.Duplicate,
		"failed", response.Summary.Failed,
		"has_idempotency_key", idempotencyKey != "",
		"duration_ms", time.Since(startedAt).Milliseconds(),
	)

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) parseSyncOperation(operation syncOperationRequest) (syncdomain.OperationInput, error) {
	operationID := strings.TrimSpace(operation.OperationID)
	if !isUUID(operationID) {
		return syncdomain.OperationInput{}, errors.New("invalid operation_id")
	}

	operationType := syncdomain.OperationType(strings.TrimSpace(operation.Type))
	localID := strings.TrimSpace(operation.LocalID)

	result := syncdomain.OperationInput{
		OperationID: operationID,
		Type:        operationType,
		LocalID:     localID,
	}

	switch operationType {
	case syncdomain.OperationTypeCreateSenior:
		if localID == "" {
			return syncdomain.OperationInput{}, errors.New("local_id is required")
		}

		var payload syncCreateSeniorPayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if err := h.validate.Struct(payload); err != nil {
			return syncdomain.OperationInput{}, errors.New(validationMessage(err))
		}

		parsed, err := toSyncCreateSeniorPayload(payload)
		if err != nil {
			return syncdomain.OperationInput{}, err
		}
		result.CreateSenior = parsed
		return result, nil

	case syncdomain.OperationTypeUpdateSenior:
		var payload syncUpdateSeniorPayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if err := h.validate.Struct(payload); err != nil {
			return syncdomain.OperationInput{}, errors.New(validationMessage(err))
		}

		seniorID := normalizeStringPtr(payload.SeniorID)
		seniorLocalID := normalizeStringPtr(payload.SeniorLocalID)
		if seniorID == nil && seniorLocalID == nil {
			return syncdomain.OperationInput{}, errors.New("senior_id or senior_local_id is required")
		}

		result.UpdateSenior = &syncdomain.UpdateSeniorPayload{
			SeniorID:      valueOrEmptyPtr(seniorID),
			SeniorLocalID: valueOrEmptyPtr(seniorLocalID),

			FirstName:    payload.FirstName,
			LastName:     payload.LastName,
			Gender:       payload.Gender,
			Address:      payload.Address,
			BarangayName: payload.BarangayName,

			ContactPerson:       payload.ContactPerson,
			ContactPhone:        payload.ContactPhone,
			ContactRelationship: payload.ContactRelationship,

			EmergencyName:         payload.EmergencyName,
			EmergencyPhone:        payload.EmergencyPhone,
			EmergencyRelationship: payload.EmergencyRelationship,

			Conditions:  payload.Conditions,
			Medications: payload.Medications,

			HousingCondition: payload.HousingCondition,
			HealthCondition:  payload.HealthCondition,
			LivingCondition:  payload.LivingCondition,
			MonthlyIncome:    payload.MonthlyIncome,
			MonthlyPension:   payload.MonthlyPension,
		}
		return result, nil

	case syncdomain.OperationTypeDeleteSenior:
		var payload syncDeleteSeniorPayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}

		seniorID := normalizeStringPtr(payload.SeniorID)
		seniorLocalID := normalizeStringPtr(payload.SeniorLocalID)
		if seniorID == nil && seniorLocalID == nil {
			return syncdomain.OperationInput{}, errors.New("senior_id or senior_local_id is required")
		}

		result.DeleteSenior = &syncdomain.DeleteSeniorPayload{
			SeniorID:      valueOrEmptyPtr(seniorID),
			SeniorLocalID: valueOrEmptyPtr(seniorLocalID),
		}
		return result, nil

	case syncdomain.OperationTypeCreateAppointment:
		if localID == "" {
			return syncdomain.OperationInput{}, errors.New("local_id is required")
		}

		var payload syncCreateAppointmentPayloadRequest
		if err := decodePayload(operation.Payload, &payload); err != nil {
			return syncdomain.OperationInput{}, err
		}
		if err := h.validate.Struct(payload); err != nil {
			return syncdomain.OperationInput{}, errors.New(validationMessage(err))
		}

		seniorID := normalizeStringPtr(payload.SeniorID)
		seniorLocalID := normalizeStringPtr(payload.SeniorLocalID)
		if seniorID == nil && seniorLocalID == nil {
			return syncdomain.OperationInput{}, errors.New("senior_id or senior_local_id is required")
		}

		scheduledAt, err := time.Parse(time.RFC3339, payload.ScheduledAt)
		if err != nil {
			return syncdomain.OperationInput{}, errors.New("scheduled_at must be an RFC 3339 timestamp")
		}

		result.CreateAppointment = &syncdomain.CreateAppointmentPayload{
			SeniorID:      valueOrEmptyPtr(seniorID),
			SeniorLocalID: valueOrEmptyPtr(seniorLocalID),
			Type:          payload.Type,
			ScheduledAt:   scheduledAt,
			Location:      payload.Location,
			Notes:         payload.Notes,
		}
		return result, nil

	default:
		return result, nil
	}
}

func toSyncCreateSeniorPayload(payload syncCreateSeniorPayloadRequest) (*syncdomain.CreateSeniorPayload, error) {
	dob, err := parseDate(payload.DateOfBirth)
	if err != nil {
		return nil, err
	}

	parsed := syncdomain.CreateSeniorPayload{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		DateOfBirth: dob,
		Gender:      payload.Gender,

		BarangayCode: payload.BarangayCode,
		BarangayName: payload.BarangayName,
		Address:      payload.Address,

		ContactPerson:       payload.ContactPerson,
		ContactPhone:        payload.ContactPhone,
		ContactRelationship: payload.ContactRelationship,

		EmergencyName:         payload.EmergencyName,
		EmergencyPhone:        payload.EmergencyPhone,
		EmergencyRelationship: payload.EmergencyRelationship,

		Conditions:  payload.Conditions,
		Medications: payload.Medications,

		HousingCondition: payload.HousingCondition,
		HealthCondition:  payload.HealthCondition,
		LivingCondition:  payload.LivingCondition,
		MonthlyIncome:    payload.MonthlyIncome,
		MonthlyPension:   payload.MonthlyPension,

		ProfilePicture: payload.ProfilePicture,
		IDPhoto:        payload.IDPhoto,

		Email:    payload.Email,
		Password: payload.Password,
	}

	if payload.AddressDetail != nil {
		parsed.AddressDetail = seniorsdomain.AddressDetail{
			RegionCode:   payload.AddressDetail.RegionCode,
			RegionName:   payload.AddressDetail.RegionName,
			ProvinceCode: payload.AddressDetail.ProvinceCode,
			ProvinceName: payload.AddressDetail.ProvinceName,
			CityCode:     payload.AddressDetail.CityCode,
			CityName:     payload.AddressDetail.CityName,
			BarangayCode: payload.AddressDetail.BarangayCode,
			BarangayName: payload.AddressDetail.BarangayName,
		}
	}

	if payload.RegistrationDate != "" {
		registered, err := parseDate(payload.RegistrationDate)
		if err != nil {
			return nil, err
		}
		parsed.RegistrationDate = registered
	}

	for _, b := range payload.Beneficiaries {
		dob, err := parseDate(b.DateOfBirth)
		if err != nil {
			return nil, err
		}
		parsed.Beneficiaries = append(parsed.Beneficiaries, syncdomain.BeneficiaryPayload{
			Name:          b.Name,
			Relationship:  b.Relationship,
			DateOfBirth:   dob,
			Gender:        b.Gender,
			Address:       b.Address,
			Phone:         b.Phone,
			Occupation:    b.Occupation,
			MonthlyIncome: b.MonthlyIncome,
			IsDependent:   b.IsDependent,
		})
	}

	return &parsed, nil
}

func decodePayload(raw json.RawMessage, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid payload")
	}
	return nil
}

func isUUID(value string) bool {
	return uuidRegex.MatchString(strings.TrimSpace(value))
}

func normalizeStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func valueOrEmptyPtr(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
