package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"osca-hub-go/internal/client/api"
	"osca-hub-go/internal/client/localstore"
	syncdomain "osca-hub-go/internal/domain/sync"

	"github.com/stretchr/testify/require"
)

func TestSyncAllWhileOffline(t *testing.T) {
	s := New(newFakeQueue(), fakeLink{online: false}, &fakeUplink{})

	_, err := s.SyncAll(context.Background())
	require.ErrorIs(t, err, ErrOffline)
}

func TestSyncAllEmptyQueue(t *testing.T) {
	uplink := &fakeUplink{}
	s := New(newFakeQueue(), fakeLink{online: true}, uplink)

	report, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	require.Zero(t, report.Total)
	require.Zero(t, uplink.calls)
}

func TestSyncAllConfirmedOperationsLeaveTheQueue(t *testing.T) {
	queue := newFakeQueue()
	queue.operations = []localstore.Operation{
		{OperationID: "op-1", Type: "create_senior", LocalID: "local-1", Payload: json.RawMessage(`{}`)},
	}

	serverID := "server-1"
	uplink := &fakeUplink{
		respond: func([]api.BatchOperation) *syncdomain.BatchResponse {
			entity := syncdomain.EntitySenior
			localID := "local-1"
			return &syncdomain.BatchResponse{
				Status: syncdomain.BatchStatusSuccess,
				Results: []syncdomain.OperationResult{
					{
						OperationID: "op-1",
						Type:        syncdomain.OperationTypeCreateSenior,
						Status:      syncdomain.ResultStatusApplied,
						LocalID:     &localID,
						Entity:      &entity,
						ServerID:    &serverID,
					},
				},
				Mappings: []syncdomain.EntityMapping{
					{Entity: syncdomain.EntitySenior, LocalID: "local-1", ServerID: "server-1"},
				},
				ServerTime: time.Now().UTC(),
			}
		},
	}

	s := New(queue, fakeLink{online: true}, uplink)

	report, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Total)
	require.Equal(t, 1, report.Applied)
	require.Empty(t, queue.operations)
	require.Equal(t, "server-1", queue.mappings["local-1"])
	require.Equal(t, "server-1", queue.promoted["local-1"])
}

func TestSyncAllRejectedOperationsStayWithFreshID(t *testing.T) {
	queue := newFakeQueue()
	queue.operations = []localstore.Operation{
		{OperationID: "op-1", Type: "create_senior", LocalID: "local-1", Payload: json.RawMessage(`{}`)},
	}

	uplink := &fakeUplink{
		respond: func([]api.BatchOperation) *syncdomain.BatchResponse {
			return &syncdomain.BatchResponse{
				Status: syncdomain.BatchStatusFailed,
				Results: []syncdomain.OperationResult{
					{
						OperationID: "op-1",
						Type:        syncdomain.OperationTypeCreateSenior,
						Status:      syncdomain.ResultStatusFailed,
						Error: &syncdomain.OperationError{
							Code:      syncdomain.ErrorCodeSeniorUnderage,
							Message:   "senior must be at least 60 years old",
							Retryable: false,
						},
					},
				},
				ServerTime: time.Now().UTC(),
			}
		},
	}

	s := New(queue, fakeLink{online: true}, uplink)

	report, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.Failures, 1)
	require.Equal(t, "senior must be at least 60 years old", report.Failures[0].Message)
	require.False(t, report.Failures[0].Retryable)

	require.Len(t, queue.operations, 1)
	require.NotEqual(t, "op-1", queue.operations[0].OperationID)
	require.Equal(t, 1, queue.operations[0].Attempts)
}

func TestSyncAllDeleteSeniorEvictsCachedRow(t *testing.T) {
	queue := newFakeQueue()
	queue.operations = []localstore.Operation{
		{OperationID: "op-1", Type: "delete_senior", Payload: json.RawMessage(`{"senior_id":"server-1"}`)},
	}

	serverID := "server-1"
	uplink := &fakeUplink{
		respond: func([]api.BatchOperation) *syncdomain.BatchResponse {
			entity := syncdomain.EntitySenior
			return &syncdomain.BatchResponse{
				Status: syncdomain.BatchStatusSuccess,
				Results: []syncdomain.OperationResult{
					{
						OperationID: "op-1",
						Type:        syncdomain.OperationTypeDeleteSenior,
						Status:      syncdomain.ResultStatusApplied,
						Entity:      &entity,
						ServerID:    &serverID,
					},
				},
				ServerTime: time.Now().UTC(),
			}
		},
	}

	s := New(queue, fakeLink{online: true}, uplink)

	_, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	require.Contains(t, queue.evicted, "server-1")
	require.Empty(t, queue.operations)
}

func TestSyncAllChunksLargeQueues(t *testing.T) {
	queue := newFakeQueue()
	for i := 0; i < syncdomain.MaxBatchOperations+30; i++ {
		queue.operations = append(queue.operations, localstore.Operation{
			OperationID: fmt.Sprintf("op-%03d", i),
			Type:        "create_senior",
			Payload:     json.RawMessage(`{}`),
		})
	}

	uplink := &fakeUplink{
		respond: func(batch []api.BatchOperation) *syncdomain.BatchResponse {
			response := &syncdomain.BatchResponse{
				Status:     syncdomain.BatchStatusSuccess,
				ServerTime: time.Now().UTC(),
			}
			for _, op := range batch {
				response.Results = append(response.Results, syncdomain.OperationResult{
					OperationID: op.OperationID,
					Type:        syncdomain.OperationType(op.Type),
					Status:      syncdomain.ResultStatusApplied,
				})
			}
			return response
		},
	}

	s := New(queue, fakeLink{online: true}, uplink)

	report, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, uplink.calls)
	require.Equal(t, syncdomain.MaxBatchOperations, uplink.batchSizes[0])
	require.Equal(t, 30, uplink.batchSizes[1])
	require.Equal(t, syncdomain.MaxBatchOperations+30, report.Applied)
	require.Empty(t, queue.operations)
}

func TestSyncOneWhileOffline(t *testing.T) {
	s := New(newFakeQueue(), fakeLink{online: false}, &fakeUplink{})

	_, err := s.SyncOne(context.Background(), "op-1")
	require.ErrorIs(t, err, ErrOffline)
}

func TestSyncOneUnknownOperation(t *testing.T) {
	uplink := &fakeUplink{}
	s := New(newFakeQueue(), fakeLink{online: true}, uplink)

	_, err := s.SyncOne(context.Background(), "op-404")
	require.ErrorIs(t, err, ErrOperationNotFound)
	require.Zero(t, uplink.calls)
}

func TestSyncOneReplaysOnlyTheRequestedOperation(t *testing.T) {
	queue := newFakeQueue()
	queue.operations = []localstore.Operation{
		{OperationID: "op-1", Type: "create_senior", LocalID: "local-1", Payload: json.RawMessage(`{}`)},
		{OperationID: "op-2", Type: "create_senior", LocalID: "local-2", Payload: json.RawMessage(`{}`)},
	}

	var sent []string
	uplink := &fakeUplink{
		respond: func(batch []api.BatchOperation) *syncdomain.BatchResponse {
			response := &syncdomain.BatchResponse{
				Status:     syncdomain.BatchStatusSuccess,
				ServerTime: time.Now().UTC(),
			}
			for _, op := range batch {
				sent = append(sent, op.OperationID)
				response.Results = append(response.Results, syncdomain.OperationResult{
					OperationID: op.OperationID,
					Type:        syncdomain.OperationType(op.Type),
					Status:      syncdomain.ResultStatusApplied,
				})
			}
			return response
		},
	}

	s := New(queue, fakeLink{online: true}, uplink)

	report, err := s.SyncOne(context.Background(), "op-2")
	require.NoError(t, err)
	require.Equal(t, 1, report.Total)
	require.Equal(t, 1, report.Applied)
	require.Equal(t, []string{"op-2"}, sent)

	require.Len(t, queue.operations, 1)
	require.Equal(t, "op-1", queue.operations[0].OperationID)
}

func TestSyncAllInjectsPlaceholderCredential(t *testing.T) {
	queue := newFakeQueue()
	queue.operations = []localstore.Operation{
		{OperationID: "op-1", Type: "create_senior", Payload: json.RawMessage(`{"email":"rosa@example.com"}`)},
		{OperationID: "op-2", Type: "create_senior", Payload: json.RawMessage(`{"email":"pedro@example.com","password":"chosen-by-staff"}`)},
	}

	passwords := map[string]string{}
	uplink := &fakeUplink{
		respond: func(batch []api.BatchOperation) *syncdomain.BatchResponse {
			response := &syncdomain.BatchResponse{
				Status:     syncdomain.BatchStatusSuccess,
				ServerTime: time.Now().UTC(),
			}
			for _, op := range batch {
				var payload struct {
					Password string `json:"password"`
				}
				require.NoError(t, json.Unmarshal(op.Payload, &payload))
				passwords[op.OperationID] = payload.Password
				response.Results = append(response.Results, syncdomain.OperationResult{
					OperationID: op.OperationID,
					Type:        syncdomain.OperationType(op.Type),
					Status:      syncdomain.ResultStatusApplied,
				})
			}
			return response
		},
	}

	s := New(queue, fakeLink{online: true}, uplink)

	_, err := s.SyncAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, placeholderPassword, passwords["op-1"])
	require.Equal(t, "chosen-by-staff", passwords["op-2"])
}

type fakeLink struct {
	online bool
}

func (l fakeLink) EffectiveOnline() bool { return l.online }

type fakeUplink struct {
	calls      int
	batchSizes []int
	keys       []string
	respond    func(batch []api.BatchOperation) *syncdomain.BatchResponse
}

func (u *fakeUplink) SyncBatch(_ context.Context, idempotencyKey string, operations []api.BatchOperation) (*syncdomain.BatchResponse, error) {
	u.calls++
	u.batchSizes = append(u.batchSizes, len(operations))
	u.keys = append(u.keys, idempotencyKey)
	return u.respond(operations), nil
}

type fakeQueue struct {
	operations []localstore.Operation
	mappings   map[string]string
	promoted   map[string]string
	evicted    []string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		mappings: make(map[string]string),
		promoted: make(map[string]string),
	}
}

func (q *fakeQueue) Pending(context.Context) ([]localstore.Operation, error) {
	out := make([]localstore.Operation, len(q.operations))
	copy(out, q.operations)
	return out, nil
}

func (q *fakeQueue) Delete(_ context.Context, operationID string) error {
	for i, op := range q.operations {
		if op.OperationID == operationID {
			q.operations = append(q.operations[:i], q.operations[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("operation %s not found", operationID)
}

func (q *fakeQueue) MarkFailed(_ context.Context, operationID, newOperationID, message string) error {
	for i, op := range q.operations {
		if op.OperationID == operationID {
			q.operations[i].OperationID = newOperationID
			q.operations[i].Attempts++
			q.operations[i].LastError = &message
			return nil
		}
	}
	return fmt.Errorf("operation %s not found", operationID)
}

func (q *fakeQueue) SaveMapping(_ context.Context, localID, _, serverID string) error {
	q.mappings[localID] = serverID
	return nil
}

func (q *fakeQueue) PromoteCachedSenior(_ context.Context, localID, serverID string) error {
	q.promoted[localID] = serverID
	return nil
}

func (q *fakeQueue) DeleteCachedSenior(_ context.Context, id string) error {
	q.evicted = append(q.evicted, id)
	return nil
}
