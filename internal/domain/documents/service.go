package documents

import (
	"context"
	"errors"
	"fmt"
	"strings"

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

func (s *Service) Create(ctx context.Context, input CreateRequestInput) (*Request, error) {
	if !input.Type.Valid() {
		return nil, fmt.Errorf("unknown document type %q", input.Type)
	}

	senior, err := s.seniors.Get(ctx, input.SeniorID, input.BarangayCode)
	if err != nil {
		if errors.Is(err, seniorsdomain.ErrBarangayMismatch) {
			return nil, ErrBarangayMismatch
		}
		return nil, err
	}

	request := Request{
		ID:           uuid.NewString(),
		SeniorID:     senior.ID,
		BarangayCode: senior.BarangayCode,
		Type:         input.Type,
		Purpose:      strings.TrimSpace(input.Purpose),
		Status:       StatusRequested,
		CreatedBy:    input.ActorID,
	}

	if err := s.repo.Create(ctx, &request); err != nil {
		return nil, err
	}

	return &request, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Request, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, fmt.Errorf("unknown status %q", filter.Status)
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id, barangayCode string) (*Request, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if barangayCode != "" && request.BarangayCode != barangayCode {
		return nil, ErrBarangayMismatch
	}
	return request, nil
}

// Advance moves a request one step along requested → processing → ready →
// released. Same-status updates are no-ops.
func (s *Service) Advance(ctx context.Context, id, barangayCode string, to Status) (*Request, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("unknown status %q", to)
	}

	request, err := s.Get(ctx, id, barangayCode)
	if err != nil {
		return nil, err
	}

	if request.Status != to && !allowedTransition(request.Status, to) {
		return nil, ErrInvalidTransition
	}
	request.Status = to

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

func allowedTransition(from, to Status) bool {
	switch from {
	case StatusRequested:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusReady
	case StatusReady:
		return to == StatusReleased
	default:
		return false
	}
}
