package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

type Role string

const (
	// RoleOSCA is the municipal administrator with cross-barangay access.
	RoleOSCA Role = "osca"
	// RoleBASCA is barangay staff, scoped to a single barangay.
	RoleBASCA Role = "basca"
	// RoleSenior is a self-service senior citizen account.
	RoleSenior Role = "senior"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOSCA, RoleBASCA, RoleSenior:
		return true
	}
	return false
}

type Account struct {
	ID           string  `gorm:"type:uuid;primaryKey"`
	Email        string  `gorm:"uniqueIndex;not null"`
	PasswordHash string  `gorm:"not null"`
	FullName     string  `gorm:"not null"`
	Role         Role    `gorm:"not null"`
	BarangayCode *string `gorm:"index"`
	// SeniorID links a self-service account to its registry record.
	SeniorID  *string        `gorm:"type:uuid;index"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Account) TableName() string {
	return "accounts"
}

type RegisterInput struct {
	Email        string
	Password     string
	FullName     string
	Role         Role
	BarangayCode string
	SeniorID     string
}

// Claims is the JWT payload carried by every authenticated request.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string `json:"user_id"`
	Role         Role   `json:"role"`
	BarangayCode string `json:"barangay_code,omitempty"`
	SeniorID     string `json:"senior_id,omitempty"`
}
