package benefits

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	seniorsdomain "osca-hub-go/internal/domain/seniors"

	"github.com/google/uuid"
)

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

func (s *Service) Create(ctx context.Context, input CreateApplicationInput) (*Application, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("unknown benefit type %q", input.Type)
	}
	if input.AmountRequested < 0 {
		return nil, fmt.Errorf("amount requested must be non-negative")
	}

	senior, err := s.seniors.Get(ctx, input.SeniorID, input.BarangayCode)
	if err != nil {
		if errors.Is(err, seniorsdomain.ErrBarangayMismatch) {
			return nil, ErrBarangayMismatch
		}
		return nil, err
	}

	application := Application{
		ID:              uuid.NewString(),
		SeniorID:        senior.ID,
		BarangayCode:    senior.BarangayCode,
		Type:            input.Type,
		AmountRequested: input.AmountRequested,
		Remarks:         strings.TrimSpace(input.Remarks),
		Status:          StatusSubmitted,
		CreatedBy:       input.ActorID,
	}

	if err := s.repo.Create(ctx, &application); err != nil {
		return nil, err
	}

	return &application, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Application, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("unknown status %q", filter.Status)
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id, barangayCode string) (*Application, error) {
	application, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if barangayCode != "" && application.BarangayCode != barangayCode {
		return nil, ErrBarangayMismatch
	}
	return application, nil
}

// Review advances an application through the status machine, recording the
// reviewer and timestamp.
func (s *Service) Review(ctx context.Context, input ReviewInput) (*Application, error) {
	if !input.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q", input.Status)
	}

	application, err := s.Get(ctx, input.ID, input.BarangayCode)
	if err != nil {
		return nil, err
	}

	if !allowedTransition(application.Status, input.Status) {
		return nil, ErrInvalidTransition
	}

	application.Status = input.Status
	if input.Remarks != nil {
		application.Remarks = strings.TrimSpace(*input.Remarks)
	}
	now := time.Now().UTC()
	application.ReviewedBy = &input.ReviewerID
	application.ReviewedAt = &now

	if err := s.repo.Update(ctx, application); err != nil {
		return nil, err
	}

	return application, nil
}

func allowedTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusSubmitted:
		return to == StatusUnderReview || to == StatusDenied
	case StatusUnderReview:
		return to == StatusApproved || to == StatusDenied
	case StatusApproved:
		return to == StatusReleased
	default:
		return false
	}
}
