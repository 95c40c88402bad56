package benefits

import (
	"time"

	"gorm.io/gorm"
)

type Type string

const (
	TypePension           Type = "pension"
	TypeMedicalAssistance Type = "medical_assistance"
	TypeBurialAssistance  Type = "burial_assistance"
	TypeSocialPensionTopUp Type = "social_pension_top_up"
)

func (t Type) Valid() bool {
	switch t {
	case TypePension, TypeMedicalAssistance, TypeBurialAssistance, TypeSocialPensionTopUp:
		return true
	}
	return false
}

type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusReleased    Status = "released"
	StatusDenied      Status = "denied"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusApproved, StatusReleased, StatusDenied:
		return true
	}
	return false
}

type Application struct {
	ID              string     `gorm:"type:uuid;primaryKey"`
	SeniorID        string     `gorm:"type:uuid;index;not null"`
	BarangayCode    string     `gorm:"index;not null"`
	Type            Type       `gorm:"not null"`
	AmountRequested float64    `gorm:"not null;default:0"`
	Remarks         string     `gorm:"type:text"`
	Status          Status     `gorm:"not null;default:'submitted'"`
	ReviewedBy      *string    `gorm:"type:uuid"`
	ReviewedAt      *time.Time
	CreatedBy       string         `gorm:"type:uuid"`
	CreatedAt       time.Time      `gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Application) TableName() string {
	return "benefit_applications"
}

type CreateApplicationInput struct {
	SeniorID        string
	BarangayCode    string
	Type            Type
	AmountRequested float64
	Remarks         string
	ActorID         string
}

type ReviewInput struct {
	ID           string
	BarangayCode string
	Status       Status
	Remarks      *string
	ReviewerID   string
}

type ListFilter struct {
	BarangayCode string
	SeniorID     string
	Status       Status
	Limit        int
	Offset       int
}
