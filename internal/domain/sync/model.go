package sync

import (
	"time"

	seniorsdomain "osca-hub-go/internal/domain/seniors"
)

const MaxBatchOperations = 100

type OperationType string

const (
	OperationTypeCreateSenior      OperationType = "create_senior"
	OperationTypeUpdateSenior      OperationType = "update_senior"
	OperationTypeDeleteSenior      OperationType = "delete_senior"
	OperationTypeCreateAppointment OperationType = "create_appointment"
)

type ResultStatus string

const (
	ResultStatusApplied   ResultStatus = "applied"
	ResultStatusDuplicate ResultStatus = "duplicate"
	ResultStatusFailed    ResultStatus = "failed"
)

type BatchStatus string

const (
	BatchStatusSuccess        BatchStatus = "success"
	BatchStatusPartialSuccess BatchStatus = "partial_success"
	BatchStatusFailed         BatchStatus = "failed"
)

type ErrorCode string

const (
	ErrorCodeInvalidRequest                ErrorCode = "invalid_request"
	ErrorCodeUnsupportedOperationType      ErrorCode = "unsupported_operation_type"
	ErrorCodeOperationPayloadMismatch      ErrorCode = "operation_payload_mismatch"
	ErrorCodeDependencyNotResolved         ErrorCode = "dependency_not_resolved"
	ErrorCodeSeniorNotFound                ErrorCode = "senior_not_found"
	ErrorCodeSeniorUnderage                ErrorCode = "senior_underage"
	ErrorCodeBarangayForbidden             ErrorCode = "barangay_forbidden"
	ErrorCodeSyncBatchTooLarge             ErrorCode = "sync_batch_too_large"
	ErrorCodeIdempotencyKeyPayloadMismatch ErrorCode = "idempotency_key_payload_mismatch"
	ErrorCodeBatchInProgress               ErrorCode = "batch_in_progress"
	ErrorCodeInternalError                 ErrorCode = "internal_error"
)

type Entity string

const (
	EntitySenior      Entity = "senior"
	EntityAppointment Entity = "appointment"
)

type BatchState string

const (
	BatchStateProcessing BatchState = "processing"
	BatchStateCompleted  BatchState = "completed"
)

type OperationState string

const (
	OperationStatePending OperationState = "pending"
	OperationStateApplied OperationState = "applied"
	OperationStateFailed  OperationState = "failed"
)

// UserSnapshot identifies the staff member replaying captured operations.
type UserSnapshot struct {
	ID           string
	Role         string
	BarangayCode string
}

type BatchInput struct {
	User           UserSnapshot
	IdempotencyKey string
	Operations     []OperationInput
}

type OperationInput struct {
	OperationID       string
	Type              OperationType
	LocalID           string
	CreateSenior      *CreateSeniorPayload
	UpdateSenior      *UpdateSeniorPayload
	DeleteSenior      *DeleteSeniorPayload
	CreateAppointment *CreateAppointmentPayload
}

// CreateSeniorPayload is the offline-captured registration snapshot. Field
// names mirror the registry's create input.
type CreateSeniorPayload struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string

	BarangayCode  string
	BarangayName  string
	Address       string
	AddressDetail seniorsdomain.AddressDetail

	ContactPerson       *string
	ContactPhone        *string
	ContactRelationship *string

	EmergencyName         string
	EmergencyPhone        string
	EmergencyRelationship string

	Conditions  []string
	Medications []string

	HousingCondition string
	HealthCondition  string
	LivingCondition  string
	MonthlyIncome    float64
	MonthlyPension   float64

	ProfilePicture *string
	IDPhoto        *string

	Beneficiaries []BeneficiaryPayload

	Email    string
	Password string

	RegistrationDate time.Time
}

type BeneficiaryPayload struct {
	Name          string
	Relationship  string
	DateOfBirth   time.Time
	Gender        string
	Address       *string
	Phone         *string
	Occupation    *string
	MonthlyIncome *float64
	IsDependent   bool
}

// UpdateSeniorPayload targets either a server id or a local id resolved
// through the mapping log. A bare local id is never applied directly.
type UpdateSeniorPayload struct {
	SeniorID      string
	SeniorLocalID string

	FirstName    *string
	LastName     *string
	Gender       *string
	Address      *string
	BarangayName *string

	ContactPerson       *string
	ContactPhone        *string
	ContactRelationship *string

	EmergencyName         *string
	EmergencyPhone        *string
	EmergencyRelationship *string

	Conditions  *[]string
	Medications *[]string

	HousingCondition *string
	HealthCondition  *string
	LivingCondition  *string
	MonthlyIncome    *float64
	MonthlyPension   *float64
}

type DeleteSeniorPayload struct {
	SeniorID      string
	SeniorLocalID string
}

type CreateAppointmentPayload struct {
	SeniorID      string
	SeniorLocalID string
	Type          string
	ScheduledAt   time.Time
	Location      string
	Notes         string
}

type BatchResponse struct {
	SyncID     string            `json:"sync_id"`
	Status     BatchStatus       `json:"status"`
	Summary    BatchSummary      `json:"summary"`
	Results    []OperationResult `json:"results"`
	Mappings   []EntityMapping   `json:"mappings"`
	ServerTime time.Time         `json:"server_time"`
}

type BatchSummary struct {
	Total     int `json:"total"`
	Applied   int `json:"applied"`
	Duplicate int `json:"duplicate"`
	Failed    int `json:"failed"`
}

type OperationResult struct {
	OperationID string          `json:"operation_id"`
	Type        OperationType   `json:"type"`
	Status      ResultStatus    `json:"status"`
	LocalID     *string         `json:"local_id,omitempty"`
	Entity      *Entity         `json:"entity,omitempty"`
	ServerID    *string         `json:"server_id,omitempty"`
	Error       *OperationError `json:"error,omitempty"`
}

type OperationError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

type EntityMapping struct {
	Entity   Entity `json:"entity"`
	LocalID  string `json:"local_id"`
	ServerID string `json:"server_id"`
}

type BatchRecord struct {
	ID             string     `gorm:"type:uuid;primaryKey"`
	UserID         string     `gorm:"type:uuid;not null;index"`
	BarangayCode   string     `gorm:"index"`
	IdempotencyKey *string    `gorm:"column:idempotency_key"`
	RequestHash    string     `gorm:"not null"`
	Status         BatchState `gorm:"not null"`
	ResponseJSON   []byte     `gorm:"type:jsonb;column:response_json"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (BatchRecord) TableName() string {
	return "sync_batches"
}

type OperationRecord struct {
	ID            string         `gorm:"type:uuid;primaryKey"`
	UserID        string         `gorm:"type:uuid;not null"`
	BarangayCode  string         `gorm:"index"`
	OperationID   string         `gorm:"type:uuid;not null"`
	OperationType OperationType  `gorm:"not null;column:operation_type"`
	PayloadHash   string         `gorm:"not null;column:payload_hash"`
	LocalID       *string        `gorm:"column:local_id"`
	Status        OperationState `gorm:"not null"`
	Entity        *Entity        `gorm:"column:entity"`
	ServerID      *string        `gorm:"type:uuid;column:server_id"`
	ErrorCode     *ErrorCode     `gorm:"column:error_code"`
	ErrorMessage  *string        `gorm:"column:error_message"`
	Retryable     *bool          `gorm:"column:retryable"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime"`
}

func (OperationRecord) TableName() string {
	return "sync_operations"
}
