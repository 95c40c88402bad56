package appointments

import (
	"time"

	"gorm.io/gorm"
)

type Type string

const (
	TypeMedical Type = "medical"
	TypeBASCA   Type = "basca"
)

func (t Type) Valid() bool {
	return t == TypeMedical || t == TypeBASCA
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// terminal reports whether no further transition is allowed.
func (s Status) terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Appointment struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	SeniorID     string    `gorm:"type:uuid;index;not null"`
	BarangayCode string    `gorm:"index;not null"`
	Type         Type      `gorm:"not null"`
	ScheduledAt  time.Time `gorm:"not null"`
	Location     string    `gorm:"not null"`
	Notes        string    `gorm:"type:text"`
	Status       Status    `gorm:"not null;default:'pending'"`
	CreatedBy    string    `gorm:"type:uuid"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Appointment) TableName() string {
	return "appointments"
}

type CreateAppointmentInput struct {
	SeniorID     string
	BarangayCode string
	Type         Type
	ScheduledAt  time.Time
	Location     string
	Notes        string
	ActorID      string
}

type UpdateAppointmentInput struct {
	ID           string
	BarangayCode string
	ScheduledAt  *time.Time
	Location     *string
	Notes        *string
	Status       *Status
}

type ListFilter struct {
	BarangayCode string
	SeniorID     string
	Status       Status
	From         *time.Time
	To           *time.Time
	Limit        int
	Offset       int
}
