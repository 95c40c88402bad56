package handler

import (
	accountsdomain "osca-hub-go/internal/domain/accounts"
	appointmentsdomain "osca-hub-go/internal/domain/appointments"
	benefitsdomain "osca-hub-go/internal/domain/benefits"
	documentsdomain "osca-hub-go/internal/domain/documents"
	seniorsdomain "osca-hub-go/internal/domain/seniors"
	syncdomain "osca-hub-go/internal/domain/sync"
	"osca-hub-go/pkg/logger"

	"github.com/go-playground/validator/v10"
)

type Handlers struct {
	Accounts     *accountsdomain.Service
	Seniors      *seniorsdomain.Service
	Appointments *appointmentsdomain.Service
	Benefits     *benefitsdomain.Service
	Documents    *documentsdomain.Service
	Sync         *syncdomain.Service

	log      logger.Logger
	validate *validator.Validate
}

func New(
	accounts *accountsdomain.Service,
	seniors *seniorsdomain.Service,
	appointments *appointmentsdomain.Service,
	benefits *benefitsdomain.Service,
	documents *documentsdomain.Service,
	sync *syncdomain.Service,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Accounts:     accounts,
		Seniors:      seniors,
		Appointments: appointments,
		Benefits:     benefits,
		Documents:    documents,
		Sync:         sync,
		log:          log,
		validate:     newValidator(),
	}
}
