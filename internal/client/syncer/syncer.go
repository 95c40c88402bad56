// Package syncer replays queued operations against the hub once the device
// is back online.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"osca-hub-go/internal/client/api"
	"osca-hub-go/internal/client/localstore"
	syncdomain "osca-hub-go/internal/domain/sync"

	"github.com/google/uuid"
)

var (
	ErrOffline           = errors.New("device is offline")
	ErrOperationNotFound = errors.New("operation is not queued")
)

// Registration snapshots listed back from the cache do not carry the login
// credential; the server still needs one to provision the senior's account.
// The senior resets it on first login.
const placeholderPassword = "osca-temp-credential"

// Uplink sends a batch to the server.
type Uplink interface {
	SyncBatch(ctx context.Context, idempotencyKey string, operations []api.BatchOperation) (*syncdomain.BatchResponse, error)
}

// Link reports whether network calls may be attempted right now.
type Link interface {
	EffectiveOnline() bool
}

// Queue is the slice of the local store the syncer drives.
type Queue interface {
	Pending(ctx context.Context) ([]localstore.Operation, error)
	Delete(ctx context.Context, operationID string) error
	MarkFailed(ctx context.Context, operationID, newOperationID, message string) error
	SaveMapping(ctx context.Context, localID, entity, serverID string) error
	PromoteCachedSenior(ctx context.Context, localID, serverID string) error
	DeleteCachedSenior(ctx context.Context, id string) error
}

type Failure struct {
	OperationID string
	Type        string
	Message     string
	Retryable   bool
}

// Report summarises one replay pass over the queue.
type Report struct {
	Total     int
	Applied   int
	Duplicate int
	Failed    int
	Failures  []Failure
}

type Syncer struct {
	queue  Queue
	link   Link
	uplink Uplink
}

func New(queue Queue, link Link, uplink Uplink) *Syncer {
	return &Syncer{queue: queue, link: link, uplink: uplink}
}

// SyncAll replays the whole queue in capture order. Confirmed operations are
// removed; rejected ones stay queued with the rejection recorded and a fresh
// operation id, so the next pass is not answered from the server's dedup log.
func (s *Syncer) SyncAll(ctx context.Context) (*Report, error) {
	if !s.link.EffectiveOnline() {
		return nil, ErrOffline
	}

	operations, err := s.queue.Pending(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{Total: len(operations)}
	if len(operations) == 0 {
		return report, nil
	}

	for start := 0; start < len(operations); start += syncdomain.MaxBatchOperations {
		end := start + syncdomain.MaxBatchOperations
		if end > len(operations) {
			end = len(operations)
		}
		if err := s.syncChunk(ctx, operations[start:end], report); err != nil {
			return report, err
		}
	}

	return report, nil
}

// SyncOne replays a single queued operation. Offline it is rejected
// immediately, without touching the network; success and failure are handled
// exactly as in a bulk pass.
func (s *Syncer) SyncOne(ctx context.Context, operationID string) (*Report, error) {
	if !s.link.EffectiveOnline() {
		return nil, ErrOffline
	}

	operations, err := s.queue.Pending(ctx)
	if err != nil {
		return nil, err
	}

	for _, op := range operations {
		if op.OperationID != operationID {
			continue
		}
		report := &Report{Total: 1}
		if err := s.syncChunk(ctx, []localstore.Operation{op}, report); err != nil {
			return report, err
		}
		return report, nil
	}

	return nil, ErrOperationNotFound
}

func (s *Syncer) syncChunk(ctx context.Context, operations []localstore.Operation, report *Report) error {
	batch := make([]api.BatchOperation, 0, len(operations))
	byID := make(map[string]localstore.Operation, len(operations))
	for _, op := range operations {
		payload := op.Payload
		if op.Type == string(syncdomain.OperationTypeCreateSenior) {
			payload = withLoginCredential(payload)
		}
		batch = append(batch, api.BatchOperation{
			OperationID: op.OperationID,
			Type:        op.Type,
			LocalID:     op.LocalID,
			Payload:     payload,
		})
		byID[op.OperationID] = op
	}

	response, err := s.uplink.SyncBatch(ctx, uuid.NewString(), batch)
	if err != nil {
		return fmt.Errorf("sync batch failed: %w", err)
	}

	for _, mapping := range response.Mappings {
		if err := s.queue.SaveMapping(ctx, mapping.LocalID, string(mapping.Entity), mapping.ServerID); err != nil {
			return err
		}
		if mapping.Entity == syncdomain.EntitySenior {
			if err := s.queue.PromoteCachedSenior(ctx, mapping.LocalID, mapping.ServerID); err != nil {
				return err
			}
		}
	}

	for _, result := range response.Results {
		op, ok := byID[result.OperationID]
		if !ok {
			continue
		}

		switch result.Status {
		case syncdomain.ResultStatusApplied, syncdomain.ResultStatusDuplicate:
			if result.Status == syncdomain.ResultStatusApplied {
				report.Applied++
			} else {
				report.Duplicate++
			}
			if op.Type == string(syncdomain.OperationTypeDeleteSenior) && result.ServerID != nil {
				if err := s.queue.DeleteCachedSenior(ctx, *result.ServerID); err != nil {
					return err
				}
			}
			if err := s.queue.Delete(ctx, op.OperationID); err != nil {
				return err
			}

		case syncdomain.ResultStatusFailed:
			report.Failed++
			failure := Failure{OperationID: op.OperationID, Type: op.Type}
			if result.Error != nil {
				failure.Message = result.Error.Message
				failure.Retryable = result.Error.Retryable
			}
			report.Failures = append(report.Failures, failure)

			if err := s.queue.MarkFailed(ctx, op.OperationID, uuid.NewString(), failure.Message); err != nil {
				return err
			}
		}
	}

	return nil
}

// withLoginCredential fills in the placeholder password when the captured
// payload carries none. Payloads that already hold a credential pass through
// untouched.
func withLoginCredential(payload json.RawMessage) json.RawMessage {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return payload
	}

	if raw, ok := fields["password"]; ok {
		var password string
		if err := json.Unmarshal(raw, &password); err == nil && password != "" {
			return payload
		}
	}

	encodedPassword, err := json.Marshal(placeholderPassword)
	if err != nil {
		return payload
	}
	fields["password"] = encodedPassword

	encoded, err := json.Marshal(fields)
	if err != nil {
		return payload
	}
	return encoded
}
