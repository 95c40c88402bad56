package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	seniorsdomain "osca-hub-go/internal/domain/seniors"
)

const (
	testSeniorID = "6f9c8f2a-2d3f-4d2e-9a44-0c59a3a1d001"
	testBarangay = "041001"
)

func newTestService(repo *fakeAppointmentsRepo) *Service {
	return NewService(repo, &fakeSeniorDirectory{
		seniors: map[string]seniorsdomain.Senior{
			testSeniorID: {ID: testSeniorID, BarangayCode: testBarangay},
		},
	})
}

func validCreateInput() CreateAppointmentInput {
	return CreateAppointmentInput{
		SeniorID:    testSeniorID,
		Type:        TypeMedical,
		ScheduledAt: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
		Location:    "Barangay Health Station",
		ActorID:     "actor-1",
	}
}

func TestCreateInheritsSeniorBarangay(t *testing.T) {
	repo := newFakeAppointmentsRepo()
	svc := newTestService(repo)

	appointment, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if appointment.BarangayCode != testBarangay {
		t.Fatalf("expected barangay %s, got %s", testBarangay, appointment.BarangayCode)
	}
	if appointment.Status != StatusPending {
		t.Fatalf("expected pending status, got %s", appointment.Status)
	}
}

func TestCreateScopedToForeignBarangay(t *testing.T) {
	repo := newFakeAppointmentsRepo()
	svc := newTestService(repo)

	input := validCreateInput()
	input.BarangayCode = "041999"

	if _, err := svc.Create(context.Background(), input); !errors.Is(err, ErrBarangayMismatch) {
		t.Fatalf("expected ErrBarangayMismatch, got %v", err)
	}
}

func TestCreateUnknownSenior(t *testing.T) {
	repo := newFakeAppointmentsRepo()
	svc := newTestService(repo)

	input := validCreateInput()
	input.SeniorID = "b2a7e6aa-56f1-4be7-9a8a-0c59a3a1d999"

	if _, err := svc.Create(context.Background(), input); !errors.Is(err, seniorsdomain.ErrSeniorNotFound) {
		t.Fatalf("expected ErrSeniorNotFound, got %v", err)
	}
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	repo := newFakeAppointmentsRepo()
	svc := newTestService(repo)

	appointment, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	confirmed := StatusConfirmed
	if _, err := svc.Update(context.Background(), UpdateAppointmentInput{ID: appointment.ID, Status: &confirmed}); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}

	completed := StatusCompleted
	if _, err := svc.Update(context.Background(), UpdateAppointmentInput{ID: appointment.ID, Status: &completed}); err != nil {
		t.Fatalf("complete failed: %v", err)
	}

	pending := StatusPending
	if _, err := svc.Update(context.Background(), UpdateAppointmentInput{ID: appointment.ID, Status: &pending}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateSkipsConfirmationStage(t *testing.T) {
	repo := newFakeAppointmentsRepo()
	svc := newTestService(repo)

	appointment, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	completed := StatusCompleted
	if _, err := svc.Update(context.Background(), UpdateAppointmentInput{ID: appointment.ID, Status: &completed}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for pending->completed, got %v", err)
	}
}

func TestUpdateRescheduleAfterTerminalState(t *testing.T) {
	repo := newFakeAppointmentsRepo()
	svc := newTestService(repo)

	appointment, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cancelled := StatusCancelled
	if _, err := svc.Update(context.Background(), UpdateAppointmentInput{ID: appointment.ID, Status: &cancelled}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	later := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	if _, err := svc.Update(context.Background(), UpdateAppointmentInput{ID: appointment.ID, ScheduledAt: &later}); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for rescheduling a cancelled appointment, got %v", err)
	}
}

func TestGetEnforcesBarangayScope(t *testing.T) {
	repo := newFakeAppointmentsRepo()
	svc := newTestService(repo)

	appointment, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Get(context.Background(), appointment.ID, "041999"); !errors.Is(err, ErrBarangayMismatch) {
		t.Fatalf("expected ErrBarangayMismatch, got %v", err)
	}
	if _, err := svc.Get(context.Background(), appointment.ID, ""); err != nil {
		t.Fatalf("unscoped get failed: %v", err)
	}
}

type fakeAppointmentsRepo struct {
	appointments map[string]Appointment
}

func newFakeAppointmentsRepo() *fakeAppointmentsRepo {
	return &fakeAppointmentsRepo{appointments: make(map[string]Appointment)}
}

func (f *fakeAppointmentsRepo) Create(_ context.Context, appointment *Appointment) error {
	f.appointments[appointment.ID] = *appointment
	return nil
}

func (f *fakeAppointmentsRepo) List(_ context.Context, filter ListFilter) ([]Appointment, int64, error) {
	items := make([]Appointment, 0)
	for _, appointment := range f.appointments {
		if filter.BarangayCode != "" && appointment.BarangayCode != filter.BarangayCode {
			continue
		}
		if filter.SeniorID != "" && appointment.SeniorID != filter.SeniorID {
			continue
		}
		items = append(items, appointment)
	}
	return items, int64(len(items)), nil
}

func (f *fakeAppointmentsRepo) GetByID(_ context.Context, id string) (*Appointment, error) {
	appointment, ok := f.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copied := appointment
	return &copied, nil
}

func (f *fakeAppointmentsRepo) Update(_ context.Context, appointment *Appointment) error {
	if _, ok := f.appointments[appointment.ID]; !ok {
		return ErrAppointmentNotFound
	}
	f.appointments[appointment.ID] = *appointment
	return nil
}

func (f *fakeAppointmentsRepo) SoftDelete(_ context.Context, id string) (bool, error) {
	if _, ok := f.appointments[id]; !ok {
		return false, nil
	}
	delete(f.appointments, id)
	return true, nil
}

type fakeSeniorDirectory struct {
	seniors map[string]seniorsdomain.Senior
}

func (f *fakeSeniorDirectory) Get(_ context.Context, id, barangayCode string) (*seniorsdomain.Senior, error) {
	senior, ok := f.seniors[id]
	if !ok {
		return nil, seniorsdomain.ErrSeniorNotFound
	}
	if barangayCode != "" && senior.BarangayCode != barangayCode {
		return nil, seniorsdomain.ErrBarangayMismatch
	}
	copied := senior
	return &copied, nil
}
