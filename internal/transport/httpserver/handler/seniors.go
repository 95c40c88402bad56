package handler

import (
	"errors"
	"net/http"
	"time"

	accountsdomain "osca-hub-go/internal/domain/accounts"
	seniorsdomain "osca-hub-go/internal/domain/seniors"
	"osca-hub-go/internal/transport/httpserver/middleware"

	"github.com/go-chi/chi/v5"
)

type addressDetailRequest struct {
	RegionCode   string `json:"region_code,omitempty"`
	RegionName   string `json:"region_name,omitempty"`
	ProvinceCode string `json:"province_code,omitempty"`
	ProvinceName string `json:"province_name,omitempty"`
	CityCode     string `json:"city_code,omitempty"`
	CityName     string `json:"city_name,omitempty"`
	BarangayCode string `json:"barangay_code,omitempty"`
	BarangayName string `json:"barangay_name,omitempty"`
}

type beneficiaryRequest struct {
	Name          string   `json:"name" validate:"required"`
	Relationship  string   `json:"relationship" validate:"required"`
	DateOfBirth   string   `json:"date_of_birth" validate:"required,datetime=2006-01-02"`
	Gender        string   `json:"gender" validate:"required"`
	Address       *string  `json:"address"`
	Phone         *string  `json:"phone"`
	Occupation    *string  `json:"occupation"`
	MonthlyIncome *float64 `json:"monthly_income" validate:"omitempty,gte=0"`
	IsDependent   bool     `json:"is_dependent"`
}

type createSeniorRequest struct {
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

	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`

	RegistrationDate string `json:"registration_date" validate:"omitempty,datetime=2006-01-02"`
}

type updateSeniorRequest struct {
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

	ProfilePicture *string `json:"profile_picture"`
	IDPhoto        *string `json:"id_photo"`
}

type beneficiaryResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Relationship  string   `json:"relationship"`
	DateOfBirth   string   `json:"date_of_birth"`
	Gender        string   `json:"gender"`
	Address       *string  `json:"address,omitempty"`
	Phone         *string  `json:"phone,omitempty"`
	Occupation    *string  `json:"occupation,omitempty"`
	MonthlyIncome *float64 `json:"monthly_income,omitempty"`
	IsDependent   bool     `json:"is_dependent"`
}

type seniorResponse struct {
	ID          string `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Gender      string `json:"gender"`

	BarangayCode  string                       `json:"barangay_code"`
	BarangayName  string                       `json:"barangay_name"`
	Address       string                       `json:"address,omitempty"`
	AddressDetail *seniorsdomain.AddressDetail `json:"address_detail,omitempty"`

	ContactPerson       *string `json:"contact_person,omitempty"`
	ContactPhone        *string `json:"contact_phone,omitempty"`
	ContactRelationship *string `json:"contact_relationship,omitempty"`

	EmergencyName         string `json:"emergency_name"`
	EmergencyPhone        string `json:"emergency_phone"`
	EmergencyRelationship string `json:"emergency_relationship"`

	Conditions  []string `json:"conditions"`
	Medications []string `json:"medications"`

	HousingCondition string  `json:"housing_condition"`
	HealthCondition  string  `json:"health_condition"`
	LivingCondition  string  `json:"living_condition"`
	MonthlyIncome    float64 `json:"monthly_income"`
	MonthlyPension   float64 `json:"monthly_pension"`

	ProfilePicture *string `json:"profile_picture,omitempty"`
	IDPhoto        *string `json:"id_photo,omitempty"`

	Beneficiaries []beneficiaryResponse `json:"beneficiaries,omitempty"`

	RegistrationDate string    `json:"registration_date"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type seniorListResponse struct {
	Items []seniorResponse `json:"items"`
	Total int64            `json:"total"`
}

func (h *Handlers) ListSeniors(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	query := r.URL.Query()
	limit, err := parseIntParam(query.Get("limit"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid limit")
		return
	}
	offset, err := parseIntParam(query.Get("offset"), 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid offset")
		return
	}

	barangay := user.ScopeBarangay()
	if barangay == "" {
		barangay = query.Get("barangay")
	}

	items, total, err := h.Seniors.List(r.Context(), seniorsdomain.ListFilter{
		BarangayCode: barangay,
		Query:        query.Get("q"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		h.log.InternalError("seniors.list: failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	response := seniorListResponse{
		Items: make([]seniorResponse, 0, len(items)),
		Total: total,
	}
	for i := range items {
		response.Items = append(response.Items, toSeniorResponse(&items[i]))
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handlers) CreateSenior(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req createSeniorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}

	// BASCA staff register into their own barangay, whatever the form says.
	if user.Role == accountsdomain.RoleBASCA {
		req.BarangayCode = user.BarangayCode
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	input, err := toCreateSeniorInput(req, user.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	senior, err := h.Seniors.Create(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, seniorsdomain.ErrUnderage):
			h.log.BusinessError("seniors.create: underage", err, "user_id", user.ID)
			writeError(w, http.StatusBadRequest, "senior_underage", "senior must be at least 60 years old")
		case errors.Is(err, accountsdomain.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email_taken", "email already registered")
		default:
			h.log.InternalError("seniors.create: failed", err, "user_id", user.ID)
			writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toSeniorResponse(senior))
}

func (h *Handlers) GetSenior(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	senior, err := h.Seniors.Get(r.Context(), chi.URLParam(r, "id"), user.ScopeBarangay())
	if err != nil {
		h.writeSeniorError(w, err, user.ID, "seniors.get")
		return
	}

	writeJSON(w, http.StatusOK, toSeniorResponse(senior))
}

func (h *Handlers) UpdateSenior(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	var req updateSeniorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", validationMessage(err))
		return
	}

	senior, err := h.Seniors.Update(r.Context(), seniorsdomain.UpdateSeniorInput{
		ID:           chi.URLParam(r, "id"),
		BarangayCode: user.ScopeBarangay(),

		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Gender:       req.Gender,
		Address:      req.Address,
		BarangayName: req.BarangayName,

		ContactPerson:       req.ContactPerson,
		ContactPhone:        req.ContactPhone,
		ContactRelationship: req.ContactRelationship,

		EmergencyName:         req.EmergencyName,
		EmergencyPhone:        req.EmergencyPhone,
		EmergencyRelationship: req.EmergencyRelationship,

		Conditions:  req.Conditions,
		Medications: req.Medications,

		HousingCondition: (*seniorsdomain.HousingCondition)(req.HousingCondition),
		HealthCondition:  (*seniorsdomain.HealthCondition)(req.HealthCondition),
		LivingCondition:  (*seniorsdomain.LivingCondition)(req.LivingCondition),
		MonthlyIncome:    req.MonthlyIncome,
		MonthlyPension:   req.MonthlyPension,

		ProfilePicture: req.ProfilePicture,
		IDPhoto:        req.IDPhoto,

		ActorID: user.ID,
	})
	if err != nil {
		h.writeSeniorError(w, err, user.ID, "seniors.update")
		return
	}

	writeJSON(w, http.StatusOK, toSeniorResponse(senior))
}

func (h *Handlers) DeleteSenior(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
		return
	}

	if err := h.Seniors.Delete(r.Context(), chi.URLParam(r, "id"), user.ScopeBarangay()); err != nil {
		h.writeSeniorError(w, err, user.ID, "seniors.delete")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handlers) writeSeniorError(w http.ResponseWriter, err error, userID, operation string) {
	switch {
	case errors.Is(err, seniorsdomain.ErrSeniorNotFound):
		h.log.BusinessError(operation+": not found", err, "user_id", userID)
		writeError(w, http.StatusNotFound, "senior_not_found", "senior not found")
	case errors.Is(err, seniorsdomain.ErrBarangayMismatch):
		h.log.BusinessError(operation+": barangay mismatch", err, "user_id", userID)
		writeError(w, http.StatusForbidden, "barangay_forbidden", "record belongs to another barangay")
	default:
		h.log.InternalError(operation+": failed", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

func toCreateSeniorInput(req createSeniorRequest, actorID string) (seniorsdomain.CreateSeniorInput, error) {
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return seniorsdomain.CreateSeniorInput{}, err
	}

	input := seniorsdomain.CreateSeniorInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: dob,
		Gender:      req.Gender,

		BarangayCode: req.BarangayCode,
		BarangayName: req.BarangayName,
		Address:      req.Address,

		ContactPerson:       req.ContactPerson,
		ContactPhone:        req.ContactPhone,
		ContactRelationship: req.ContactRelationship,

		EmergencyName:         req.EmergencyName,
		EmergencyPhone:        req.EmergencyPhone,
		EmergencyRelationship: req.EmergencyRelationship,

		Conditions:  req.Conditions,
		Medications: req.Medications,

		HousingCondition: seniorsdomain.HousingCondition(req.HousingCondition),
		HealthCondition:  seniorsdomain.HealthCondition(req.HealthCondition),
		LivingCondition:  seniorsdomain.LivingCondition(req.LivingCondition),
		MonthlyIncome:    req.MonthlyIncome,
		MonthlyPension:   req.MonthlyPension,

		ProfilePicture: req.ProfilePicture,
		IDPhoto:        req.IDPhoto,

		Email:    req.Email,
		Password: req.Password,

		ActorID: actorID,
	}

	if req.AddressDetail != nil {
		input.AddressDetail = seniorsdomain.AddressDetail{
			RegionCode:   req.AddressDetail.RegionCode,
			RegionName:   req.AddressDetail.RegionName,
			ProvinceCode: req.AddressDetail.ProvinceCode,
			ProvinceName: req.AddressDetail.ProvinceName,
			CityCode:     req.AddressDetail.CityCode,
			CityName:     req.AddressDetail.CityName,
			BarangayCode: req.AddressDetail.BarangayCode,
			BarangayName: req.AddressDetail.BarangayName,
		}
	}

	if req.RegistrationDate != "" {
		registered, err := parseDate(req.RegistrationDate)
		if err != nil {
			return seniorsdomain.CreateSeniorInput{}, err
		}
		input.RegistrationDate = registered
	}

	for _, b := range req.Beneficiaries {
		dob, err := parseDate(b.DateOfBirth)
		if err != nil {
			return seniorsdomain.CreateSeniorInput{}, err
		}
		input.Beneficiaries = append(input.Beneficiaries, seniorsdomain.BeneficiaryInput{
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

	return input, nil
}

func toSeniorResponse(senior *seniorsdomain.Senior) seniorResponse {
	response := seniorResponse{
		ID:          senior.ID,
		FirstName:   senior.FirstName,
		LastName:    senior.LastName,
		DateOfBirth: senior.DateOfBirth.Format("2006-01-02"),
		Gender:      senior.Gender,

		BarangayCode: senior.BarangayCode,
		BarangayName: senior.BarangayName,
		Address:      senior.Address,

		ContactPerson:       senior.ContactPerson,
		ContactPhone:        senior.ContactPhone,
		ContactRelationship: senior.ContactRelationship,

		EmergencyName:         senior.EmergencyName,
		EmergencyPhone:        senior.EmergencyPhone,
		EmergencyRelationship: senior.EmergencyRelationship,

		Conditions:  senior.Conditions,
		Medications: senior.Medications,

		HousingCondition: string(senior.HousingCondition),
		HealthCondition:  string(senior.HealthCondition),
		LivingCondition:  string(senior.LivingCondition),
		MonthlyIncome:    senior.MonthlyIncome,
		MonthlyPension:   senior.MonthlyPension,

		ProfilePicture: senior.ProfilePicture,
		IDPhoto:        senior.IDPhoto,

		RegistrationDate: senior.RegistrationDate.Format("2006-01-02"),
		CreatedAt:        senior.CreatedAt,
		UpdatedAt:        senior.UpdatedAt,
	}

	if senior.AddressDetail != (seniorsdomain.AddressDetail{}) {
		detail := senior.AddressDetail
		response.AddressDetail = &detail
	}

	for _, b := range senior.Beneficiaries {
		response.Beneficiaries = append(response.Beneficiaries, beneficiaryResponse{
			ID:            b.ID,
			Name:          b.Name,
			Relationship:  b.Relationship,
			DateOfBirth:   b.DateOfBirth.Format("2006-01-02"),
			Gender:        b.Gender,
			Address:       b.Address,
			Phone:         b.Phone,
			Occupation:    b.Occupation,
			MonthlyIncome: b.MonthlyIncome,
			IsDependent:   b.IsDependent,
		})
	}

	return response
}
