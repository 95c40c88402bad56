package appointments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	seniorsdomain "osca-hub-go/internal/domain/seniors"

	"github.com/google/uuid"
)

// SeniorDirectory resolves the senior a new appointment is scheduled for.
type SeniorDirectory interface {
	Get(ctx context.Context, id, barangayCode string) (*seniorsdomain.Senior, error)
}

type Service struct {
	repo    Repository
	seniors SeniorDirectory
}

func NewService(repo Repository, seniors SeniorDirectory) *Service {
	return &Service{repo: repo, seniors: seniors}
}

func (s *Service) Create(ctx context.Context, input CreateAppointmentInput) (*Appointment, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("unknown appointment type %q", input.Type)
	}
	if input.ScheduledAt.IsZero() {
		return nil, fmt.Errorf("schedule time is required")
	}
	location := strings.TrimSpace(input.Location)
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}

	senior, err := s.seniors.Get(ctx, input.SeniorID, input.BarangayCode)
	if err != nil {
		if errors.Is(err, seniorsdomain.ErrBarangayMismatch) {
			return nil, ErrBarangayMismatch
		}
		return nil, err
	}

	appointment := Appointment{
		ID:           uuid.NewString(),
		SeniorID:     senior.ID,
		BarangayCode: senior.BarangayCode,
		Type:         input.Type,
		ScheduledAt:  input.ScheduledAt,
		Location:     location,
		Notes:        strings.TrimSpace(input.Notes),
		Status:       StatusPending,
		CreatedBy:    input.ActorID,
	}

	if err := s.repo.Create(ctx, &appointment); err != nil {
		return nil, err
	}

	return &appointment, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Appointment, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("unknown status %q", filter.Status)
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id, barangayCode string) (*Appointment, error) {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if barangayCode != "" && appointment.BarangayCode != barangayCode {
		return nil, ErrBarangayMismatch
	}
	return appointment, nil
}

func (s *Service) Update(ctx context.Context, input UpdateAppointmentInput) (*Appointment, error) {
	appointment, err := s.Get(ctx, input.ID, input.BarangayCode)
	if err != nil {
		return nil, err
	}

	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, fmt.Errorf("unknown status %q", *input.Status)
		}
		if !allowedTransition(appointment.Status, *input.Status) {
			return nil, ErrInvalidTransition
		}
		appointment.Status = *input.Status
	}
	if input.ScheduledAt != nil {
		if appointment.Status.terminal() {
			return nil, ErrInvalidTransition
		}
		appointment.ScheduledAt = *input.ScheduledAt
	}
	if input.Location != nil {
		trimmed := strings.TrimSpace(*input.Location)
		if trimmed == "" {
			return nil, fmt.Errorf("location is required")
		}
		appointment.Location = trimmed
	}
	if input.Notes != nil {
		appointment.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, err
	}

	return appointment, nil
}

func (s *Service) Delete(ctx context.Context, id, barangayCode string) error {
	appointment, err := s.Get(ctx, id, barangayCode)
	if err != nil {
		return err
	}

	deleted, err := s.repo.SoftDelete(ctx, appointment.ID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAppointmentNotFound
	}
	return nil
}

// allowedTransition encodes the forward-only status machine.
func allowedTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusCancelled
	case StatusConfirmed:
		return to == StatusCompleted || to == StatusCancelled
	default:
		return false
	}
}
