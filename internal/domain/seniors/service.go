package seniors

import (
	"context"
	"fmt"
	"strings"
	"time"

	accountsdomain "osca-hub-go/internal/domain/accounts"

	"github.com/google/uuid"
)

// AccountProvisioner creates the self-service login that accompanies a new
// registry record.
type AccountProvisioner interface {
	Register(ctx context.Context, input accountsdomain.RegisterInput) (*accountsdomain.Account, error)
}

type Service struct {
	repo     Repository
	accounts AccountProvisioner
	cache    ListCache
	cacheTTL time.Duration
}

func NewService(repo Repository, accounts AccountProvisioner, cache ListCache, cacheTTL time.Duration) *Service {
	if cache == nil {
		cache = noopListCache{}
	}
	return &Service{
		repo:     repo,
		accounts: accounts,
		cache:    cache,
		cacheTTL: cacheTTL,
	}
}

func (s *Service) Create(ctx context.Context, input CreateSeniorInput) (*Senior, error) {
	now := time.Now().UTC()
	if err := validateCreate(input, now); err != nil {
		return nil, err
	}

	registrationDate := input.RegistrationDate
	if registrationDate.IsZero() {
		registrationDate = now
	}

	senior := Senior{
		ID:          uuid.NewString(),
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		DateOfBirth: input.DateOfBirth,
		Gender:      strings.TrimSpace(input.Gender),

		BarangayCode:  strings.TrimSpace(input.BarangayCode),
		BarangayName:  strings.TrimSpace(input.BarangayName),
		Address:       strings.TrimSpace(input.Address),
		AddressDetail: input.AddressDetail,

		ContactPerson:       input.ContactPerson,
		ContactPhone:        input.ContactPhone,
		ContactRelationship: input.ContactRelationship,

		EmergencyName:         strings.TrimSpace(input.EmergencyName),
		EmergencyPhone:        strings.TrimSpace(input.EmergencyPhone),
		EmergencyRelationship: strings.TrimSpace(input.EmergencyRelationship),

		Conditions:  input.Conditions,
		Medications: input.Medications,

		HousingCondition: input.HousingCondition,
		HealthCondition:  input.HealthCondition,
		LivingCondition:  input.LivingCondition,
		MonthlyIncome:    input.MonthlyIncome,
		MonthlyPension:   input.MonthlyPension,

		ProfilePicture: input.ProfilePicture,
		IDPhoto:        input.IDPhoto,

		RegistrationDate: registrationDate,
		CreatedBy:        input.ActorID,
		UpdatedBy:        input.ActorID,
	}

	for i, b := range input.Beneficiaries {
		senior.Beneficiaries = append(senior.Beneficiaries, Beneficiary{
			ID:            uuid.NewString(),
			SeniorID:      senior.ID,
			Name:          strings.TrimSpace(b.Name),
			Relationship:  strings.TrimSpace(b.Relationship),
			DateOfBirth:   b.DateOfBirth,
			Gender:        strings.TrimSpace(b.Gender),
			Address:       b.Address,
			Phone:         b.Phone,
			Occupation:    b.Occupation,
			MonthlyIncome: b.MonthlyIncome,
			IsDependent:   b.IsDependent,
			Position:      i,
		})
	}

	if err := s.repo.Create(ctx, &senior); err != nil {
		return nil, err
	}

	if s.accounts != nil && strings.TrimSpace(input.Email) != "" {
		_, err := s.accounts.Register(ctx, accountsdomain.RegisterInput{
			Email:        input.Email,
			Password:     input.Password,
			FullName:     senior.FirstName + " " + senior.LastName,
			Role:         accountsdomain.RoleSenior,
			BarangayCode: senior.BarangayCode,
			SeniorID:     senior.ID,
		})
		if err != nil {
			// The registry row must not outlive a failed provisioning.
			_, _ = s.repo.SoftDelete(ctx, senior.ID)
			return nil, fmt.Errorf("provision account: %w", err)
		}
	}

	s.cache.DeleteByBarangay(senior.BarangayCode)
	return &senior, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Senior, int64, error) {
	filter.BarangayCode = strings.TrimSpace(filter.BarangayCode)
	cacheable := filter.BarangayCode != "" && filter.Query == "" && filter.Limit == 0 && filter.Offset == 0

	if cacheable {
		if items, total, ok := s.cache.GetByBarangay(filter.BarangayCode); ok {
			return items, total, nil
		}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		s.cache.SetByBarangay(filter.BarangayCode, items, total, s.cacheTTL)
	}

	return items, total, nil
}

// Get returns one record. A non-empty barangayCode restricts access to that
// barangay (BASCA scoping); empty means unrestricted (OSCA).
func (s *Service) Get(ctx context.Context, id, barangayCode string) (*Senior, error) {
	senior, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if barangayCode != "" && senior.BarangayCode != barangayCode {
		return nil, ErrBarangayMismatch
	}
	return senior, nil
}

func (s *Service) Update(ctx context.Context, input UpdateSeniorInput) (*Senior, error) {
	senior, err := s.Get(ctx, input.ID, input.BarangayCode)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		trimmed := strings.TrimSpace(*input.FirstName)
		if trimmed == "" {
			return nil, fmt.Errorf("first name is required")
		}
		senior.FirstName = trimmed
	}
	if input.LastName != nil {
		trimmed := strings.TrimSpace(*input.LastName)
		if trimmed == "" {
			return nil, fmt.Errorf("last name is required")
		}
		senior.LastName = trimmed
	}
	if input.Gender != nil {
		senior.Gender = strings.TrimSpace(*input.Gender)
	}
	if input.Address != nil {
		senior.Address = strings.TrimSpace(*input.Address)
	}
	if input.BarangayName != nil {
		senior.BarangayName = strings.TrimSpace(*input.BarangayName)
	}

	if input.ContactPerson != nil {
		senior.ContactPerson = input.ContactPerson
	}
	if input.ContactPhone != nil {
		senior.ContactPhone = input.ContactPhone
	}
	if input.ContactRelationship != nil {
		senior.ContactRelationship = input.ContactRelationship
	}

	if input.EmergencyName != nil {
		trimmed := strings.TrimSpace(*input.EmergencyName)
		if trimmed == "" {
			return nil, fmt.Errorf("emergency contact name is required")
		}
		senior.EmergencyName = trimmed
	}
	if input.EmergencyPhone != nil {
		trimmed := strings.TrimSpace(*input.EmergencyPhone)
		if trimmed == "" {
			return nil, fmt.Errorf("emergency contact phone is required")
		}
		senior.EmergencyPhone = trimmed
	}
	if input.EmergencyRelationship != nil {
		senior.EmergencyRelationship = strings.TrimSpace(*input.EmergencyRelationship)
	}

	if input.Conditions != nil {
		senior.Conditions = *input.Conditions
	}
	if input.Medications != nil {
		senior.Medications = *input.Medications
	}

	if input.HousingCondition != nil {
		if !input.HousingCondition.Valid() {
			return nil, fmt.Errorf("unknown housing condition %q", *input.HousingCondition)
		}
		senior.HousingCondition = *input.HousingCondition
	}
	if input.HealthCondition != nil {
		if !input.HealthCondition.Valid() {
			return nil, fmt.Errorf("unknown health condition %q", *input.HealthCondition)
		}
		senior.HealthCondition = *input.HealthCondition
	}
	if input.LivingCondition != nil {
		if !input.LivingCondition.Valid() {
			return nil, fmt.Errorf("unknown living condition %q", *input.LivingCondition)
		}
		senior.LivingCondition = *input.LivingCondition
	}
	if input.MonthlyIncome != nil {
		if *input.MonthlyIncome < 0 {
			return nil, fmt.Errorf("monthly income must be non-negative")
		}
		senior.MonthlyIncome = *input.MonthlyIncome
	}
	if input.MonthlyPension != nil {
		if *input.MonthlyPension < 0 {
			return nil, fmt.Errorf("monthly pension must be non-negative")
		}
		senior.MonthlyPension = *input.MonthlyPension
	}

	if input.ProfilePicture != nil {
		senior.ProfilePicture = input.ProfilePicture
	}
	if input.IDPhoto != nil {
		senior.IDPhoto = input.IDPhoto
	}

	senior.UpdatedBy = input.ActorID

	if err := s.repo.Update(ctx, senior); err != nil {
		return nil, err
	}

	s.cache.DeleteByBarangay(senior.BarangayCode)
	return senior, nil
}

func (s *Service) Delete(ctx context.Context, id, barangayCode string) error {
	senior, err := s.Get(ctx, id, barangayCode)
	if err != nil {
		return err
	}

	deleted, err := s.repo.SoftDelete(ctx, senior.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrSeniorNotFound
	}

	s.cache.DeleteByBarangay(senior.BarangayCode)
	return nil
}

func validateCreate(input CreateSeniorInput, now time.Time) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return fmt.Errorf("first name is required")
	}
	if strings.TrimSpace(input.LastName) == "" {
		return fmt.Errorf("last name is required")
	}
	if input.DateOfBirth.IsZero() {
		return fmt.Errorf("date of birth is required")
	}
	if ageOn(input.DateOfBirth, now) < MinAge {
		return ErrUnderage
	}
	if strings.TrimSpace(input.BarangayCode) == "" {
		return fmt.Errorf("barangay code is required")
	}
	if strings.TrimSpace(input.EmergencyName) == "" ||
		strings.TrimSpace(input.EmergencyPhone) == "" ||
		strings.TrimSpace(input.EmergencyRelationship) == "" {
		return fmt.Errorf("emergency contact is required")
	}
	if !input.HousingCondition.Valid() {
		return fmt.Errorf("unknown housing condition %q", input.HousingCondition)
	}
	if !input.HealthCondition.Valid() {
		return fmt.Errorf("unknown health condition %q", input.HealthCondition)
	}
	if !input.LivingCondition.Valid() {
		return fmt.Errorf("unknown living condition %q", input.LivingCondition)
	}
	if input.MonthlyIncome < 0 {
		return fmt.Errorf("monthly income must be non-negative")
	}
	if input.MonthlyPension < 0 {
		return fmt.Errorf("monthly pension must be non-negative")
	}
	for _, b := range input.Beneficiaries {
		if strings.TrimSpace(b.Name) == "" || strings.TrimSpace(b.Relationship) == "" {
			return fmt.Errorf("beneficiary name and relationship are required")
		}
	}
	return nil
}

// ageOn computes completed years between dob and the given day.
func ageOn(dob, on time.Time) int {
	years := on.Year() - dob.Year()
	anniversary := dob.AddDate(years, 0, 0)
	if anniversary.After(on) {
		years--
	}
	return years
}
