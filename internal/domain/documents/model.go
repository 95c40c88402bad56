package documents

import (
	"time"

	"gorm.io/gorm"
)

type Type string

const (
	TypeOSCAID            Type = "osca_id"
	TypeCertification     Type = "certification"
	TypeEndorsementLetter Type = "endorsement_letter"
)

func (t Type) Valid() bool {
	switch t {
	case TypeOSCAID, TypeCertification, TypeEndorsementLetter:
		return true
	}
	return false
}

type Status string

const (
	StatusRequested  Status = "requested"
	StatusProcessing Status = "processing"
	StatusReady      Status = "ready"
	StatusReleased   Status = "released"
)

func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusProcessing, StatusReady, StatusReleased:
		return true
	}
	return false
}

type Request struct {
	ID           string         `gorm:"type:uuid;primaryKey"`
	SeniorID     string         `gorm:"type:uuid;index;not null"`
	BarangayCode string         `gorm:"index;not null"`
	Type         Type           `gorm:"not null"`
	Purpose      string         `gorm:"type:text"`
	Status       Status         `gorm:"not null;default:'requested'"`
	CreatedBy    string         `gorm:"type:uuid"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Request) TableName() string {
	return "document_requests"
}

type CreateRequestInput struct {
	SeniorID     string
	BarangayCode string
	Type         Type
	Purpose      string
	ActorID      string
}

type ListFilter struct {
	BarangayCode string
	SeniorID     string
	Status       Status
	Limit        int
	Offset       int
}
