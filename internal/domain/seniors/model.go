package seniors

import (
	"time"

	"gorm.io/gorm"
)

// MinAge is the registration age gate. A senior must be at least this old
// on the day of registration.
const MinAge = 60

type HousingCondition string

const (
	HousingOwned       HousingCondition = "owned"
	HousingRented      HousingCondition = "rented"
	HousingWithFamily  HousingCondition = "with_family"
	HousingInstitution HousingCondition = "institution"
	HousingOther       HousingCondition = "other"
)

func (h HousingCondition) Valid() bool {
	switch h {
	case HousingOwned, HousingRented, HousingWithFamily, HousingInstitution, HousingOther:
		return true
	}
	return false
}

type HealthCondition string

const (
	HealthExcellent HealthCondition = "excellent"
	HealthGood      HealthCondition = "good"
	HealthFair      HealthCondition = "fair"
	HealthPoor      HealthCondition = "poor"
	HealthCritical  HealthCondition = "critical"
)

func (h HealthCondition) Valid() bool {
	switch h {
	case HealthExcellent, HealthGood, HealthFair, HealthPoor, HealthCritical:
		return true
	}
	return false
}

type LivingCondition string

const (
	LivingIndependent   LivingCondition = "independent"
	LivingWithFamily    LivingCondition = "with_family"
	LivingWithCaregiver LivingCondition = "with_caregiver"
	LivingInstitution   LivingCondition = "institution"
	LivingOther         LivingCondition = "other"
)

func (l LivingCondition) Valid() bool {
	switch l {
	case LivingIndependent, LivingWithFamily, LivingWithCaregiver, LivingInstitution, LivingOther:
		return true
	}
	return false
}

// AddressDetail is the structured PSGC address breakdown. Every component is
// independently optional.
type AddressDetail struct {
	RegionCode   string `json:"region_code,omitempty"`
	RegionName   string `json:"region_name,omitempty"`
	ProvinceCode string `json:"province_code,omitempty"`
	ProvinceName string `json:"province_name,omitempty"`
	CityCode     string `json:"city_code,omitempty"`
	CityName     string `json:"city_name,omitempty"`
	BarangayCode string `json:"barangay_code,omitempty"`
	BarangayName string `json:"barangay_name,omitempty"`
}

type Senior struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	FirstName   string    `gorm:"not null"`
	LastName    string    `gorm:"not null"`
	DateOfBirth time.Time `gorm:"not null"`
	Gender      string    `gorm:"not null"`

	BarangayCode  string        `gorm:"index;not null"`
	BarangayName  string        `gorm:"not null"`
	Address       string        `gorm:"type:text"`
	AddressDetail AddressDetail `gorm:"serializer:json;type:jsonb"`

	ContactPerson       *string
	ContactPhone        *string
	ContactRelationship *string

	EmergencyName         string `gorm:"not null"`
	EmergencyPhone        string `gorm:"not null"`
	EmergencyRelationship string `gorm:"not null"`

	Conditions  []string `gorm:"serializer:json;type:jsonb"`
	Medications []string `gorm:"serializer:json;type:jsonb"`

	HousingCondition HousingCondition `gorm:"not null"`
	HealthCondition  HealthCondition  `gorm:"not null"`
	LivingCondition  LivingCondition  `gorm:"not null"`
	MonthlyIncome    float64          `gorm:"not null;default:0"`
	MonthlyPension   float64          `gorm:"not null;default:0"`

	// Inline-encoded media, kept out of list queries by the repository.
	ProfilePicture *string `gorm:"type:text"`
	IDPhoto        *string `gorm:"type:text;column:id_photo"`

	Beneficiaries []Beneficiary `gorm:"foreignKey:SeniorID"`

	RegistrationDate time.Time      `gorm:"not null"`
	CreatedBy        string         `gorm:"type:uuid"`
	UpdatedBy        string         `gorm:"type:uuid"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Senior) TableName() string {
	return "seniors"
}

type Beneficiary struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	SeniorID      string    `gorm:"type:uuid;index;not null"`
	Name          string    `gorm:"not null"`
	Relationship  string    `gorm:"not null"`
	DateOfBirth   time.Time `gorm:"not null"`
	Gender        string    `gorm:"not null"`
	Address       *string
	Phone         *string
	Occupation    *string
	MonthlyIncome *float64
	IsDependent   bool `gorm:"not null;default:false"`
	// Position preserves the submitted ordering.
	Position  int            `gorm:"not null;default:0;column:position"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Beneficiary) TableName() string {
	return "senior_beneficiaries"
}

type BeneficiaryInput struct {
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

type CreateSeniorInput struct {
	FirstName   string
	LastName    string
	DateOfBirth time.Time
	Gender      string

	BarangayCode  string
	BarangayName  string
	Address       string
	AddressDetail AddressDetail

	ContactPerson       *string
	ContactPhone        *string
	ContactRelationship *string

	EmergencyName         string
	EmergencyPhone        string
	EmergencyRelationship string

	Conditions  []string
	Medications []string

	HousingCondition HousingCondition
	HealthCondition  HealthCondition
	LivingCondition  LivingCondition
	MonthlyIncome    float64
	MonthlyPension   float64

	ProfilePicture *string
	IDPhoto        *string

	Beneficiaries []BeneficiaryInput

	// Credentials provision a self-service login at registration time.
	Email    string
	Password string

	RegistrationDate time.Time
	ActorID          string
}

type UpdateSeniorInput struct {
	ID           string
	BarangayCode string

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

	HousingCondition *HousingCondition
	HealthCondition  *HealthCondition
	LivingCondition  *LivingCondition
	MonthlyIncome    *float64
	MonthlyPension   *float64

	ProfilePicture *string
	IDPhoto        *string

	ActorID string
}

type ListFilter struct {
	BarangayCode string
	Query        string
	Limit        int
	Offset       int
}
