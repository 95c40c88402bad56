package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	appointmentsdomain "osca-hub-go/internal/domain/appointments"
	seniorsdomain "osca-hub-go/internal/domain/seniors"

	"github.com/google/uuid"
)

type SeniorsService interface {
	Create(ctx context.Context, input seniorsdomain.CreateSeniorInput) (*seniorsdomain.Senior, error)
	Update(ctx context.Context, input seniorsdomain.UpdateSeniorInput) (*seniorsdomain.Senior, error)
	Delete(ctx context.Context, id, barangayCode string) error
}

type AppointmentsService interface {
	Create(ctx context.Context, input appointmentsdomain.CreateAppointmentInput) (*appointmentsdomain.Appointment, error)
}

type Service struct {
	repo         Repository
	seniors      SeniorsService
	appointments AppointmentsService
}

func NewService(repo Repository, seniors SeniorsService, appointments AppointmentsService) *Service {
	return &Service{
		repo:         repo,
		seniors:      seniors,
		appointments: appointments,
	}
}

// ProcessBatch replays a batch of offline-captured operations. Each
// operation succeeds or fails independently; the response carries
// per-operation results and an aggregate summary.
func (s *Service) ProcessBatch(ctx context.Context, input BatchInput) (*BatchResponse, error) {
	if len(input.Operations) == 0 {
		return nil, fmt.Errorf("operations are required")
	}
	if len(input.Operations) > MaxBatchOperations {
		return nil, ErrBatchTooLarge
	}

	syncID := uuid.NewString()

	requestHash, err := hashRequest(input.Operations)
	if err != nil {
		return nil, err
	}

	idempotencyKey := strings.TrimSpace(input.IdempotencyKey)
	batchCreated := false

	if idempotencyKey != "" {
		batch := &BatchRecord{
			ID:             syncID,
			UserID:         input.User.ID,
			BarangayCode:   input.User.BarangayCode,
			IdempotencyKey: &idempotencyKey,
			RequestHash:    requestHash,
			Status:         BatchStateProcessing,
		}

		created, existing, err := s.repo.BeginBatch(ctx, batch)
		if err != nil {
			return nil, err
		}
		if !created {
			if existing == nil {
				return nil, ErrBatchInProgress
			}
			if existing.RequestHash != requestHash {
				return nil, ErrIdempotencyKeyPayloadMismatch
			}
			if existing.Status == BatchStateCompleted && len(existing.ResponseJSON) > 0 {
				var cached BatchResponse
				if err := json.Unmarshal(existing.ResponseJSON, &cached); err == nil {
					return &cached, nil
				}
			}
			return nil, ErrBatchInProgress
		}

		batchCreated = true
	}

	response := BatchResponse{
		SyncID:   syncID,
		Results:  make([]OperationResult, 0, len(input.Operations)),
		Mappings: make([]EntityMapping, 0),
		Summary: BatchSummary{
			Total: len(input.Operations),
		},
		ServerTime: time.Now().UTC(),
	}

	localSeniorIDs := make(map[string]string)

	for _, operation := range input.Operations {
		result, mapping := s.processOperation(ctx, input.User, operation, localSeniorIDs)
		response.Results = append(response.Results, result)
		if mapping != nil {
			response.Mappings = append(response.Mappings, *mapping)
			if mapping.Entity == EntitySenior {
				localSeniorIDs[mapping.LocalID] = mapping.ServerID
			}
		}

		switch result.Status {
		case ResultStatusApplied:
			response.Summary.Applied++
		case ResultStatusDuplicate:
			response.Summary.Duplicate++
		default:
			response.Summary.Failed++
		}
	}

	response.Status = deriveBatchStatus(response.Summary)

	if batchCreated {
		if encoded, err := json.Marshal(response); err == nil {
			_ = s.repo.CompleteBatch(ctx, syncID, BatchStateCompleted, encoded)
		}
	}

	return &response, nil
}

func (s *Service) processOperation(ctx context.Context, user UserSnapshot, operation OperationInput, localSeniorIDs map[string]string) (OperationResult, *EntityMapping) {
	base := OperationResult{
		OperationID: operation.OperationID,
		Type:        operation.Type,
	}

	payloadHash, err := hashOperation(operation)
	if err != nil {
		return failResult(base, ErrorCodeInternalError, "internal error", true), nil
	}

	reserved := &OperationRecord{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		BarangayCode:  user.BarangayCode,
		OperationID:   operation.OperationID,
		OperationType: operation.Type,
		PayloadHash:   payloadHash,
		Status:        OperationStatePending,
	}
	if operation.LocalID != "" {
		localID := operation.LocalID
		reserved.LocalID = &localID
	}

	created, existing, err := s.repo.ReserveOperation(ctx, reserved)
	if err != nil {
		return failResult(base, ErrorCodeInternalError, "internal error", true), nil
	}
	if !created {
		return resultFromExisting(base, operation, existing, payloadHash)
	}

	result := base
	var mapping *EntityMapping

	switch operation.Type {
	case OperationTypeCreateSenior:
		result, mapping = s.applyCreateSenior(ctx, user, operation, result)

	case OperationTypeUpdateSenior:
		result = s.applyUpdateSenior(ctx, user, operation, result, localSeniorIDs)

	case OperationTypeDeleteSenior:
		result = s.applyDeleteSenior(ctx, user, operation, result, localSeniorIDs)

	case OperationTypeCreateAppointment:
		result, mapping = s.applyCreateAppointment(ctx, user, operation, result, localSeniorIDs)

	default:
		result = failResult(result, ErrorCodeUnsupportedOperationType, "unsupported operation type", false)
	}

	updateRecord := *reserved
	if result.Status == ResultStatusApplied {
		updateRecord.Status = OperationStateApplied
		updateRecord.Entity = result.Entity
		updateRecord.ServerID = result.ServerID
	} else {
		updateRecord.Status = OperationStateFailed
		if result.Error != nil {
			code := result.Error.Code
			message := result.Error.Message
			retryable := result.Error.Retryable
			updateRecord.ErrorCode = &code
			updateRecord.ErrorMessage = &message
			updateRecord.Retryable = &retryable
		}
	}

	if result.LocalID != nil {
		updateRecord.LocalID = result.LocalID
	}

	if err := s.repo.UpdateOperation(ctx, &updateRecord); err != nil {
		return failResult(base, ErrorCodeInternalError, "internal error", true), nil
	}

	return result, mapping
}

func (s *Service) applyCreateSenior(ctx context.Context, user UserSnapshot, operation OperationInput, result OperationResult) (OperationResult, *EntityMapping) {
	payload := operation.CreateSenior
	if payload == nil {
		return failResult(result, ErrorCodeInvalidRequest, "payload is required", false), nil
	}
	if user.BarangayCode != "" && payload.BarangayCode != user.BarangayCode {
		return failResult(result, ErrorCodeBarangayForbidden, "record belongs to another barangay", false), nil
	}

	beneficiaries := make([]seniorsdomain.BeneficiaryInput, 0, len(payload.Beneficiaries))
	for _, b := range payload.Beneficiaries {
		beneficiaries = append(beneficiaries, seniorsdomain.BeneficiaryInput{
			Name:          b.Name,
			Relationship:  b.Relationship,
			DateOfBirth:   b.DateOfBirth,
			Gender:        b.Gender,
			Address:       b.Address,
			Phone:         b.Phone,
			Occupation:    b.Occupation,
			MonthlyIncome: b.MonthlyIncome,
			IsDependent:   b.IsDependent,
		})
	}

	created, err := s.seniors.Create(ctx, seniorsdomain.CreateSeniorInput{
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		DateOfBirth: payload.DateOfBirth,
		Gender:      payload.Gender,

		BarangayCode:  payload.BarangayCode,
		BarangayName:  payload.BarangayName,
		Address:       payload.Address,
		AddressDetail: payload.AddressDetail,

		ContactPerson:       payload.ContactPerson,
		ContactPhone:        payload.ContactPhone,
		ContactRelationship: payload.ContactRelationship,

		EmergencyName:         payload.EmergencyName,
		EmergencyPhone:        payload.EmergencyPhone,
		EmergencyRelationship: payload.EmergencyRelationship,

		Conditions:  payload.Conditions,
		Medications: payload.Medications,

		HousingCondition: seniorsdomain.HousingCondition(payload.HousingCondition),
		HealthCondition:  seniorsdomain.HealthCondition(payload.HealthCondition),
		LivingCondition:  seniorsdomain.LivingCondition(payload.LivingCondition),
		MonthlyIncome:    payload.MonthlyIncome,
		MonthlyPension:   payload.MonthlyPension,

		ProfilePicture: payload.ProfilePicture,
		IDPhoto:        payload.IDPhoto,

		Beneficiaries: beneficiaries,

		Email:    payload.Email,
		Password: payload.Password,

		RegistrationDate: payload.RegistrationDate,
		ActorID:          user.ID,
	})
	if err != nil {
		if errors.Is(err, seniorsdomain.ErrUnderage) {
			return failResult(result, ErrorCodeSeniorUnderage, "senior must be at least 60 years old", false), nil
		}
		return failResult(result, ErrorCodeInternalError, "internal error", true), nil
	}

	result.Status = ResultStatusApplied
	result.LocalID = nonEmptyStringPtr(operation.LocalID)
	entity := EntitySenior
	result.Entity = &entity
	result.ServerID = nonEmptyStringPtr(created.ID)

	if result.LocalID != nil && result.ServerID != nil {
		return result, &EntityMapping{
			Entity:   entity,
			LocalID:  *result.LocalID,
			ServerID: *result.ServerID,
		}
	}
	return result, nil
}

func (s *Service) applyUpdateSenior(ctx context.Context, user UserSnapshot, operation OperationInput, result OperationResult, localSeniorIDs map[string]string) OperationResult {
	payload := operation.UpdateSenior
	if payload == nil {
		return failResult(result, ErrorCodeInvalidRequest, "payload is required", false)
	}

	seniorID, err := s.resolveSeniorID(ctx, user.ID, payload.SeniorID, payload.SeniorLocalID, localSeniorIDs)
	if err != nil {
		return failResult(result, ErrorCodeDependencyNotResolved, "senior id dependency is not resolved", false)
	}

	_, err = s.seniors.Update(ctx, seniorsdomain.UpdateSeniorInput{
		ID:           seniorID,
		BarangayCode: user.BarangayCode,

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

		HousingCondition: (*seniorsdomain.HousingCondition)(payload.HousingCondition),
		HealthCondition:  (*seniorsdomain.HealthCondition)(payload.HealthCondition),
		LivingCondition:  (*seniorsdomain.LivingCondition)(payload.LivingCondition),
		MonthlyIncome:    payload.MonthlyIncome,
		MonthlyPension:   payload.MonthlyPension,

		ActorID: user.ID,
	})
	if err != nil {
		return failResultFromSeniorErr(result, err)
	}

	result.Status = ResultStatusApplied
	return result
}

func (s *Service) applyDeleteSenior(ctx context.Context, user UserSnapshot, operation OperationInput, result OperationResult, localSeniorIDs map[string]string) OperationResult {
	payload := operation.DeleteSenior
	if payload == nil {
		return failResult(result, ErrorCodeInvalidRequest, "payload is required", false)
	}

	seniorID, err := s.resolveSeniorID(ctx, user.ID, payload.SeniorID, payload.SeniorLocalID, localSeniorIDs)
	if err != nil {
		return failResult(result, ErrorCodeDependencyNotResolved, "senior id dependency is not resolved", false)
	}

	if err := s.seniors.Delete(ctx, seniorID, user.BarangayCode); err != nil {
		return failResultFromSeniorErr(result, err)
	}

	result.Status = ResultStatusApplied
	return result
}

func (s *Service) applyCreateAppointment(ctx context.Context, user UserSnapshot, operation OperationInput, result OperationResult, localSeniorIDs map[string]string) (OperationResult, *EntityMapping) {
	payload := operation.CreateAppointment
	if payload == nil {
		return failResult(result, ErrorCodeInvalidRequest, "payload is required", false), nil
	}

	seniorID, err := s.resolveSeniorID(ctx, user.ID, payload.SeniorID, payload.SeniorLocalID, localSeniorIDs)
	if err != nil {
		return failResult(result, ErrorCodeDependencyNotResolved, "senior id dependency is not resolved", false), nil
	}

	created, err := s.appointments.Create(ctx, appointmentsdomain.CreateAppointmentInput{
		SeniorID:     seniorID,
		BarangayCode: user.BarangayCode,
		Type:         appointmentsdomain.Type(payload.Type),
		ScheduledAt:  payload.ScheduledAt,
		Location:     payload.Location,
		Notes:        payload.Notes,
		ActorID:      user.ID,
	})
	if err != nil {
		if errors.Is(err, appointmentsdomain.ErrBarangayMismatch) {
			return failResult(result, ErrorCodeBarangayForbidden, "record belongs to another barangay", false), nil
		}
		if errors.Is(err, seniorsdomain.ErrSeniorNotFound) {
			return failResult(result, ErrorCodeSeniorNotFound, "senior not found", false), nil
		}
		return failResult(result, ErrorCodeInternalError, "internal error", true), nil
	}

	result.Status = ResultStatusApplied
	result.LocalID = nonEmptyStringPtr(operation.LocalID)
	entity := EntityAppointment
	result.Entity = &entity
	result.ServerID = nonEmptyStringPtr(created.ID)

	if result.LocalID != nil && result.ServerID != nil {
		return result, &EntityMapping{
			Entity:   entity,
			LocalID:  *result.LocalID,
			ServerID: *result.ServerID,
		}
	}
	return result, nil
}

// resolveSeniorID maps a payload target to a server id. A locally generated
// id is only honoured through the mapping log, never applied as-is.
func (s *Service) resolveSeniorID(ctx context.Context, userID, seniorID, seniorLocalID string, localSeniorIDs map[string]string) (string, error) {
	if strings.TrimSpace(seniorID) != "" {
		return strings.TrimSpace(seniorID), nil
	}

	localID := strings.TrimSpace(seniorLocalID)
	if localID == "" {
		return "", fmt.Errorf("senior id is required")
	}

	if serverID := strings.TrimSpace(localSeniorIDs[localID]); serverID != "" {
		return serverID, nil
	}

	serverID, found, err := s.repo.FindServerIDByLocalID(ctx, userID, EntitySenior, localID)
	if err != nil {
		return "", err
	}
	if !found || strings.TrimSpace(serverID) == "" {
		return "", fmt.Errorf("senior id dependency is not resolved")
	}

	return serverID, nil
}

func failResultFromSeniorErr(base OperationResult, err error) OperationResult {
	switch {
	case errors.Is(err, seniorsdomain.ErrSeniorNotFound):
		return failResult(base, ErrorCodeSeniorNotFound, "senior not found", false)
	case errors.Is(err, seniorsdomain.ErrBarangayMismatch):
		return failResult(base, ErrorCodeBarangayForbidden, "record belongs to another barangay", false)
	default:
		return failResult(base, ErrorCodeInternalError, "internal error", true)
	}
}

func resultFromExisting(base OperationResult, operation OperationInput, existing *OperationRecord, payloadHash string) (OperationResult, *EntityMapping) {
	if existing == nil {
		return failResult(base, ErrorCodeBatchInProgress, "operation is being processed", true), nil
	}
	if existing.PayloadHash != payloadHash {
		return failResult(base, ErrorCodeOperationPayloadMismatch, "operation_id already used with different payload", false), nil
	}
	if existing.Status == OperationStatePending {
		return failResult(base, ErrorCodeBatchInProgress, "operation is being processed", true), nil
	}

	result := base
	if existing.Status == OperationStateFailed {
		result.Status = ResultStatusFailed
		if existing.ErrorCode != nil {
			result.Error = &OperationError{
				Code:      *existing.ErrorCode,
				Message:   valueOr(existing.ErrorMessage, "operation failed"),
				Retryable: valueOr(existing.Retryable, false),
			}
		} else {
			result.Error = &OperationError{
				Code:      ErrorCodeInternalError,
				Message:   "internal error",
				Retryable: true,
			}
		}
		result.LocalID = firstNonNil(existing.LocalID, nonEmptyStringPtr(operation.LocalID))
		return result, nil
	}

	result.Status = ResultStatusDuplicate
	result.LocalID = firstNonNil(existing.LocalID, nonEmptyStringPtr(operation.LocalID))
	result.Entity = clonePtr(existing.Entity)
	result.ServerID = clonePtr(existing.ServerID)

	if result.LocalID != nil && result.ServerID != nil && result.Entity != nil {
		return result, &EntityMapping{
			Entity:   *result.Entity,
			LocalID:  *result.LocalID,
			ServerID: *result.ServerID,
		}
	}

	return result, nil
}

func failResult(base OperationResult, code ErrorCode, message string, retryable bool) OperationResult {
	base.Status = ResultStatusFailed
	base.Error = &OperationError{
		Code:      code,
		Message:   message,
		Retryable: retryable,
	}
	return base
}

func deriveBatchStatus(summary BatchSummary) BatchStatus {
	if summary.Failed == 0 {
		return BatchStatusSuccess
	}
	if summary.Applied > 0 || summary.Duplicate > 0 {
		return BatchStatusPartialSuccess
	}
	return BatchStatusFailed
}

func hashRequest(operations []OperationInput) (string, error) {
	hashes := make([]string, 0, len(operations))
	for _, operation := range operations {
		hash, err := hashOperation(operation)
		if err != nil {
			return "", err
		}
		hashes = append(hashes, hash)
	}
	return hashValue(hashes)
}

func hashOperation(operation OperationInput) (string, error) {
	var payload interface{}
	switch operation.Type {
	case OperationTypeCreateSenior:
		payload = operation.CreateSenior
	case OperationTypeUpdateSenior:
		payload = operation.UpdateSenior
	case OperationTypeDeleteSenior:
		payload = operation.DeleteSenior
	case OperationTypeCreateAppointment:
		payload = operation.CreateAppointment
	default:
		payload = map[string]string{"type": string(operation.Type)}
	}

	value := struct {
		Type    OperationType `json:"type"`
		LocalID string        `json:"local_id,omitempty"`
		Payload interface{}   `json:"payload"`
	}{
		Type:    operation.Type,
		LocalID: operation.LocalID,
		Payload: payload,
	}

	return hashValue(value)
}

func hashValue(value interface{}) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}

func clonePtr[T any](value *T) *T {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func nonEmptyStringPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func firstNonNil[T any](values ...*T) *T {
	for _, value := range values {
		if value != nil {
			return value
		}
	}
	return nil
}

func valueOr[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}
