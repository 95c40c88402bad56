package sync

import (
	"context"
	"fmt"
	stdsync "sync"
	"testing"
	"time"

	appointmentsdomain "osca-hub-go/internal/domain/appointments"
	seniorsdomain "osca-hub-go/internal/domain/seniors"
)

func validCreateSeniorPayload(barangayCode string) *CreateSeniorPayload {
	return &CreateSeniorPayload{
		FirstName:   "Rosa",
		LastName:    "Delgado",
		DateOfBirth: time.Date(1950, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:      "female",

		BarangayCode: barangayCode,
		BarangayName: "Barangay Uno",

		EmergencyName:         "Luis Delgado",
		EmergencyPhone:        "09170000000",
		EmergencyRelationship: "son",

		HousingCondition: "owned",
		HealthCondition:  "good",
		LivingCondition:  "with_family",

		Email:    "rosa.delgado@example.com",
		Password: "password-123",
	}
}

func TestProcessBatchDuplicateOperationID(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	input := BatchInput{
		User: UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"},
		Operations: []OperationInput{
			{
				OperationID:  "11111111-1111-4111-8111-111111111111",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-1",
				CreateSenior: validCreateSeniorPayload("041001"),
			},
		},
	}

	first, err := svc.ProcessBatch(context.Background(), input)
	if err != nil {
		t.Fatalf("first process failed: %v", err)
	}
	if first.Results[0].Status != ResultStatusApplied {
		t.Fatalf("expected first status applied, got %s", first.Results[0].Status)
	}
	if seniorsSvc.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", seniorsSvc.createCalls)
	}

	second, err := svc.ProcessBatch(context.Background(), input)
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}
	if second.Results[0].Status != ResultStatusDuplicate {
		t.Fatalf("expected second status duplicate, got %s", second.Results[0].Status)
	}
	if seniorsSvc.createCalls != 1 {
		t.Fatalf("expected no extra create call, got %d", seniorsSvc.createCalls)
	}
	if len(second.Mappings) != 1 {
		t.Fatalf("expected duplicate replay to carry the mapping, got %d", len(second.Mappings))
	}
}

func TestProcessBatchRepeatWithIdempotencyKeyReturnsCachedResponse(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	input := BatchInput{
		User:           UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"},
		IdempotencyKey: "batch-key-123456",
		Operations: []OperationInput{
			{
				OperationID:  "22222222-2222-4222-8222-222222222222",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-2",
				CreateSenior: validCreateSeniorPayload("041001"),
			},
		},
	}

	first, err := svc.ProcessBatch(context.Background(), input)
	if err != nil {
		t.Fatalf("first process failed: %v", err)
	}
	second, err := svc.ProcessBatch(context.Background(), input)
	if err != nil {
		t.Fatalf("second process failed: %v", err)
	}

	if first.SyncID != second.SyncID {
		t.Fatalf("expected same sync_id for replay, got %s and %s", first.SyncID, second.SyncID)
	}
	if second.Results[0].Status != ResultStatusApplied {
		t.Fatalf("expected cached applied result, got %s", second.Results[0].Status)
	}
	if seniorsSvc.createCalls != 1 {
		t.Fatalf("expected single create call, got %d", seniorsSvc.createCalls)
	}
}

func TestProcessBatchIdempotencyKeyPayloadMismatch(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	input := BatchInput{
		User:           UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"},
		IdempotencyKey: "batch-key-654321",
		Operations: []OperationInput{
			{
				OperationID:  "33333333-3333-4333-8333-333333333331",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-3",
				CreateSenior: validCreateSeniorPayload("041001"),
			},
		},
	}

	if _, err := svc.ProcessBatch(context.Background(), input); err != nil {
		t.Fatalf("first process failed: %v", err)
	}

	changed := validCreateSeniorPayload("041001")
	changed.FirstName = "Maria"
	input.Operations[0].CreateSenior = changed
	input.Operations[0].OperationID = "33333333-3333-4333-8333-333333333332"

	if _, err := svc.ProcessBatch(context.Background(), input); err != ErrIdempotencyKeyPayloadMismatch {
		t.Fatalf("expected ErrIdempotencyKeyPayloadMismatch, got %v", err)
	}
}

func TestProcessBatchPartialFail(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	input := BatchInput{
		User: UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"},
		Operations: []OperationInput{
			{
				OperationID:  "44444444-4444-4444-8444-444444444441",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-4",
				CreateSenior: validCreateSeniorPayload("041001"),
			},
			{
				OperationID: "44444444-4444-4444-8444-444444444442",
				Type:        OperationTypeUpdateSenior,
				UpdateSenior: &UpdateSeniorPayload{
					SeniorLocalID: "never-synced-local-id",
				},
			},
		},
	}

	response, err := svc.ProcessBatch(context.Background(), input)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if response.Status != BatchStatusPartialSuccess {
		t.Fatalf("expected partial_success, got %s", response.Status)
	}
	if response.Summary.Applied != 1 || response.Summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", response.Summary)
	}

	second := response.Results[1]
	if second.Status != ResultStatusFailed {
		t.Fatalf("expected failed status for second operation, got %s", second.Status)
	}
	if second.Error == nil || second.Error.Code != ErrorCodeDependencyNotResolved {
		t.Fatalf("expected dependency_not_resolved error, got %+v", second.Error)
	}
}

func TestProcessBatchResolvesLocalIDWithinBatch(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	input := BatchInput{
		User: UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"},
		Operations: []OperationInput{
			{
				OperationID:  "55555555-5555-4555-8555-555555555551",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-5",
				CreateSenior: validCreateSeniorPayload("041001"),
			},
			{
				OperationID: "55555555-5555-4555-8555-555555555552",
				Type:        OperationTypeCreateAppointment,
				LocalID:     "appointment-local-1",
				CreateAppointment: &CreateAppointmentPayload{
					SeniorLocalID: "senior-local-5",
					Type:          "medical",
					ScheduledAt:   time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
					Location:      "Barangay Health Station",
				},
			},
		},
	}

	response, err := svc.ProcessBatch(context.Background(), input)
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if response.Status != BatchStatusSuccess {
		t.Fatalf("expected success, got %s", response.Status)
	}

	seniorResult := response.Results[0]
	if seniorResult.ServerID == nil {
		t.Fatalf("expected server id for created senior")
	}
	if appointmentsSvc.lastSeniorID != *seniorResult.ServerID {
		t.Fatalf("expected appointment for %s, got %s", *seniorResult.ServerID, appointmentsSvc.lastSeniorID)
	}
	if len(response.Mappings) != 2 {
		t.Fatalf("expected mappings for senior and appointment, got %d", len(response.Mappings))
	}
}

func TestProcessBatchResolvesLocalIDFromEarlierBatch(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	user := UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"}

	first, err := svc.ProcessBatch(context.Background(), BatchInput{
		User: user,
		Operations: []OperationInput{
			{
				OperationID:  "66666666-6666-4666-8666-666666666661",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-6",
				CreateSenior: validCreateSeniorPayload("041001"),
			},
		},
	})
	if err != nil {
		t.Fatalf("first batch failed: %v", err)
	}

	second, err := svc.ProcessBatch(context.Background(), BatchInput{
		User: user,
		Operations: []OperationInput{
			{
				OperationID: "66666666-6666-4666-8666-666666666662",
				Type:        OperationTypeDeleteSenior,
				DeleteSenior: &DeleteSeniorPayload{
					SeniorLocalID: "senior-local-6",
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("second batch failed: %v", err)
	}

	if second.Results[0].Status != ResultStatusApplied {
		t.Fatalf("expected delete applied via mapping log, got %+v", second.Results[0])
	}
	if seniorsSvc.lastDeletedID != *first.Results[0].ServerID {
		t.Fatalf("expected delete of %s, got %s", *first.Results[0].ServerID, seniorsSvc.lastDeletedID)
	}
}

func TestProcessBatchUnderageRejected(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	payload := validCreateSeniorPayload("041001")
	payload.DateOfBirth = time.Now().UTC().AddDate(-45, 0, 0)

	response, err := svc.ProcessBatch(context.Background(), BatchInput{
		User: UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"},
		Operations: []OperationInput{
			{
				OperationID:  "77777777-7777-4777-8777-777777777771",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-7",
				CreateSenior: payload,
			},
		},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if response.Status != BatchStatusFailed {
		t.Fatalf("expected failed batch, got %s", response.Status)
	}
	result := response.Results[0]
	if result.Error == nil || result.Error.Code != ErrorCodeSeniorUnderage {
		t.Fatalf("expected senior_underage error, got %+v", result.Error)
	}
	if result.Error.Retryable {
		t.Fatalf("underage rejection must not be retryable")
	}
}

func TestProcessBatchForeignBarangayRejected(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	response, err := svc.ProcessBatch(context.Background(), BatchInput{
		User: UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"},
		Operations: []OperationInput{
			{
				OperationID:  "88888888-8888-4888-8888-888888888881",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-8",
				CreateSenior: validCreateSeniorPayload("041999"),
			},
		},
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	result := response.Results[0]
	if result.Error == nil || result.Error.Code != ErrorCodeBarangayForbidden {
		t.Fatalf("expected barangay_forbidden error, got %+v", result.Error)
	}
	if seniorsSvc.createCalls != 0 {
		t.Fatalf("expected no create call, got %d", seniorsSvc.createCalls)
	}
}

func TestProcessBatchParallelSameOperationID(t *testing.T) {
	repo := newFakeSyncRepo()
	seniorsSvc := newFakeSeniorsService()
	seniorsSvc.createDelay = 40 * time.Millisecond
	appointmentsSvc := newFakeAppointmentsService(seniorsSvc)
	svc := NewService(repo, seniorsSvc, appointmentsSvc)

	input := BatchInput{
		User: UserSnapshot{ID: "user-1", Role: "basca", BarangayCode: "041001"},
		Operations: []OperationInput{
			{
				OperationID:  "99999999-9999-4999-8999-999999999991",
				Type:         OperationTypeCreateSenior,
				LocalID:      "senior-local-race",
				CreateSenior: validCreateSeniorPayload("041001"),
			},
		},
	}

	var wg stdsync.WaitGroup
	wg.Add(2)

	responses := make([]*BatchResponse, 2)
	errs := make([]error, 2)

	for i := 0; i < 2; i++ {
		idx := i
		go func() {
			defer wg.Done()
			responses[idx], errs[idx] = svc.ProcessBatch(context.Background(), input)
		}()
	}
	wg.Wait()

	for i := range errs {
		if errs[i] != nil {
			t.Fatalf("request %d failed: %v", i, errs[i])
		}
	}

	if seniorsSvc.createCalls != 1 {
		t.Fatalf("expected exactly one create call, got %d", seniorsSvc.createCalls)
	}

	applied := 0
	other := 0
	for _, response := range responses {
		if response.Results[0].Status == ResultStatusApplied {
			applied++
		} else {
			other++
		}
	}

	if applied != 1 {
		t.Fatalf("expected one applied result, got %d", applied)
	}
	if other != 1 {
		t.Fatalf("expected one non-applied result, got %d", other)
	}
}

type fakeSyncRepo struct {
	mu stdsync.Mutex

	batchesByID  map[string]BatchRecord
	batchesByKey map[string]string

	operationsByID  map[string]OperationRecord
	operationsByKey map[string]string
}

func newFakeSyncRepo() *fakeSyncRepo {
	return &fakeSyncRepo{
		batchesByID:     make(map[string]BatchRecord),
		batchesByKey:    make(map[string]string),
		operationsByID:  make(map[string]OperationRecord),
		operationsByKey: make(map[string]string),
	}
}

func (r *fakeSyncRepo) BeginBatch(_ context.Context, batch *BatchRecord) (bool, *BatchRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if batch.IdempotencyKey == nil {
		copied := *batch
		r.batchesByID[copied.ID] = copied
		return true, nil, nil
	}

	key := batchKey(batch.UserID, *batch.IdempotencyKey)
	if id, ok := r.batchesByKey[key]; ok {
		existing := r.batchesByID[id]
		copied := existing
		return false, &copied, nil
	}

	copied := *batch
	r.batchesByID[copied.ID] = copied
	r.batchesByKey[key] = copied.ID
	return true, nil, nil
}

func (r *fakeSyncRepo) CompleteBatch(_ context.Context, batchID string, status BatchState, responseJSON []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.batchesByID[batchID]
	if !ok {
		return nil
	}
	record.Status = status
	record.ResponseJSON = append([]byte{}, responseJSON...)
	r.batchesByID[batchID] = record
	return nil
}

func (r *fakeSyncRepo) ReserveOperation(_ context.Context, operation *OperationRecord) (bool, *OperationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := operationKey(operation.UserID, operation.OperationID)
	if id, ok := r.operationsByKey[key]; ok {
		existing := r.operationsByID[id]
		copied := existing
		return false, &copied, nil
	}

	copied := *operation
	r.operationsByID[copied.ID] = copied
	r.operationsByKey[key] = copied.ID
	return true, nil, nil
}

func (r *fakeSyncRepo) UpdateOperation(_ context.Context, operation *OperationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.operationsByID[operation.ID]; !ok {
		return nil
	}
	copied := *operation
	r.operationsByID[copied.ID] = copied
	return nil
}

func (r *fakeSyncRepo) FindServerIDByLocalID(_ context.Context, userID string, entity Entity, localID string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, operation := range r.operationsByID {
		if operation.UserID != userID {
			continue
		}
		if operation.Entity == nil || *operation.Entity != entity {
			continue
		}
		if operation.LocalID == nil || *operation.LocalID != localID {
			continue
		}
		if operation.Status != OperationStateApplied || operation.ServerID == nil {
			continue
		}
		return *operation.ServerID, true, nil
	}

	return "", false, nil
}

func batchKey(userID, idempotencyKey string) string {
	return fmt.Sprintf("%s|%s", userID, idempotencyKey)
}

func operationKey(userID, operationID string) string {
	return fmt.Sprintf("%s|%s", userID, operationID)
}

type fakeSeniorsService struct {
	mu stdsync.Mutex

	createCalls   int
	seq           int
	createDelay   time.Duration
	lastDeletedID string

	seniors map[string]seniorsdomain.Senior
}

func newFakeSeniorsService() *fakeSeniorsService {
	return &fakeSeniorsService{
		seniors: make(map[string]seniorsdomain.Senior),
	}
}

func (f *fakeSeniorsService) Create(_ context.Context, input seniorsdomain.CreateSeniorInput) (*seniorsdomain.Senior, error) {
	if f.createDelay > 0 {
		time.Sleep(f.createDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if input.DateOfBirth.After(time.Now().UTC().AddDate(-seniorsdomain.MinAge, 0, 0)) {
		return nil, seniorsdomain.ErrUnderage
	}

	f.createCalls++
	f.seq++
	senior := seniorsdomain.Senior{
		ID:           fmt.Sprintf("senior-%d", f.seq),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		BarangayCode: input.BarangayCode,
	}
	f.seniors[senior.ID] = senior
	copied := senior
	return &copied, nil
}

func (f *fakeSeniorsService) Update(_ context.Context, input seniorsdomain.UpdateSeniorInput) (*seniorsdomain.Senior, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	senior, ok := f.seniors[input.ID]
	if !ok {
		return nil, seniorsdomain.ErrSeniorNotFound
	}
	if input.BarangayCode != "" && senior.BarangayCode != input.BarangayCode {
		return nil, seniorsdomain.ErrBarangayMismatch
	}
	if input.FirstName != nil {
		senior.FirstName = *input.FirstName
	}
	f.seniors[input.ID] = senior
	copied := senior
	return &copied, nil
}

func (f *fakeSeniorsService) Delete(_ context.Context, id, barangayCode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	senior, ok := f.seniors[id]
	if !ok {
		return seniorsdomain.ErrSeniorNotFound
	}
	if barangayCode != "" && senior.BarangayCode != barangayCode {
		return seniorsdomain.ErrBarangayMismatch
	}
	delete(f.seniors, id)
	f.lastDeletedID = id
	return nil
}

type fakeAppointmentsService struct {
	mu stdsync.Mutex

	seniors      *fakeSeniorsService
	seq          int
	lastSeniorID string
}

func newFakeAppointmentsService(seniors *fakeSeniorsService) *fakeAppointmentsService {
	return &fakeAppointmentsService{seniors: seniors}
}

func (f *fakeAppointmentsService) Create(_ context.Context, input appointmentsdomain.CreateAppointmentInput) (*appointmentsdomain.Appointment, error) {
	f.seniors.mu.Lock()
	senior, ok := f.seniors.seniors[input.SeniorID]
	f.seniors.mu.Unlock()
	if !ok {
		return nil, seniorsdomain.ErrSeniorNotFound
	}
	if input.BarangayCode != "" && senior.BarangayCode != input.BarangayCode {
		return nil, appointmentsdomain.ErrBarangayMismatch
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	f.lastSeniorID = input.SeniorID
	appointment := appointmentsdomain.Appointment{
		ID:           fmt.Sprintf("appointment-%d", f.seq),
		SeniorID:     input.SeniorID,
		BarangayCode: senior.BarangayCode,
		Type:         input.Type,
		ScheduledAt:  input.ScheduledAt,
		Location:     input.Location,
		Status:       appointmentsdomain.StatusPending,
	}
	return &appointment, nil
}
