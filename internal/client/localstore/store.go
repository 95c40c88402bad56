// Package localstore is the on-device capture store. Records created or
// edited while disconnected are kept here, together with the queue of
// operations waiting for replay.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"osca-hub-go/internal/client/localstore/migrations"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

var ErrStorageUnavailable = errors.New("local storage unavailable")

// Operation is one queued change awaiting replay against the server. The
// operation id travels with the request so the server can deduplicate it.
type Operation struct {
	OperationID string
	Type        string
	LocalID     string
	Payload     json.RawMessage
	Attempts    int
	LastError   *string
	CreatedAt   time.Time
}

// CachedSenior is the trimmed registry row kept for offline browsing.
// Pending rows were created on this device and have not reached the server.
type CachedSenior struct {
	ID           string
	FirstName    string
	LastName     string
	BarangayCode string
	BarangayName string
	Pending      bool
}

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Enqueue(ctx context.Context, op Operation) error {
	query := `INSERT INTO pending_operations (operation_id, type, local_id, payload)
		VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, op.OperationID, op.Type, op.LocalID, []byte(op.Payload))
	if err != nil {
		return fmt.Errorf("failed to enqueue operation: %w", err)
	}
	return nil
}

// Pending returns queued operations in capture order.
func (s *Store) Pending(ctx context.Context) ([]Operation, error) {
	query := `SELECT operation_id, type, local_id, payload, attempts, last_error, created_at
		FROM pending_operations ORDER BY created_at, operation_id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending operations: %w", err)
	}
	defer rows.Close()

	var result []Operation
	for rows.Next() {
		var op Operation
		var payload []byte
		if err := rows.Scan(&op.OperationID, &op.Type, &op.LocalID, &payload, &op.Attempts, &op.LastError, &op.CreatedAt); err != nil {
			return nil, err
		}
		op.Payload = json.RawMessage(payload)
		result = append(result, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) PendingCount(ctx context.Context) (int, error) {
	var count int
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_operations`)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending operations: %w", err)
	}
	return count, nil
}

// Delete removes an operation once the server has confirmed it.
func (s *Store) Delete(ctx context.Context, operationID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pending_operations WHERE operation_id=?`, operationID)
	if err != nil {
		return fmt.Errorf("failed to delete operation: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

// MarkFailed records the rejection and rotates the operation id so the next
// attempt is not answered from the server's dedup log.
func (s *Store) MarkFailed(ctx context.Context, operationID, newOperationID, message string) error {
	query := `UPDATE pending_operations
		SET operation_id=?, attempts=attempts+1, last_error=?
		WHERE operation_id=?`
	res, err := s.db.ExecContext(ctx, query, newOperationID, message, operationID)
	if err != nil {
		return fmt.Errorf("failed to mark operation failed: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (s *Store) SaveMapping(ctx context.Context, localID, entity, serverID string) error {
	query := `INSERT INTO id_mappings (local_id, entity, server_id) VALUES (?, ?, ?)
		ON CONFLICT(local_id) DO UPDATE SET server_id = excluded.server_id`
	if _, err := s.db.ExecContext(ctx, query, localID, entity, serverID); err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	return nil
}

// ServerID resolves a device-generated id to the server-assigned one.
func (s *Store) ServerID(ctx context.Context, localID string) (string, bool, error) {
	var serverID string
	row := s.db.QueryRowContext(ctx, `SELECT server_id FROM id_mappings WHERE local_id=?`, localID)
	if err := row.Scan(&serverID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to resolve local id: %w", err)
	}
	return serverID, true, nil
}

func (s *Store) UpsertCachedSenior(ctx context.Context, senior CachedSenior) error {
	query := `INSERT INTO cached_seniors (id, first_name, last_name, barangay_code, barangay_name, pending)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET first_name = excluded.first_name,
			last_name = excluded.last_name,
			barangay_code = excluded.barangay_code,
			barangay_name = excluded.barangay_name,
			pending = excluded.pending`
	_, err := s.db.ExecContext(ctx, query,
		senior.ID, senior.FirstName, senior.LastName, senior.BarangayCode, senior.BarangayName, boolToInt(senior.Pending))
	if err != nil {
		return fmt.Errorf("failed to upsert cached senior: %w", err)
	}
	return nil
}

func (s *Store) ListCachedSeniors(ctx context.Context) ([]CachedSenior, error) {
	query := `SELECT id, first_name, last_name, barangay_code, barangay_name, pending
		FROM cached_seniors ORDER BY last_name, first_name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select cached seniors: %w", err)
	}
	defer rows.Close()

	var result []CachedSenior
	for rows.Next() {
		var item CachedSenior
		var pending int
		if err := rows.Scan(&item.ID, &item.FirstName, &item.LastName, &item.BarangayCode, &item.BarangayName, &pending); err != nil {
			return nil, err
		}
		item.Pending = pending != 0
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// PromoteCachedSenior swaps a pending row's device id for the server id once
// the mapping arrives.
func (s *Store) PromoteCachedSenior(ctx context.Context, localID, serverID string) error {
	query := `UPDATE cached_seniors SET id=?, pending=0 WHERE id=?`
	if _, err := s.db.ExecContext(ctx, query, serverID, localID); err != nil {
		return fmt.Errorf("failed to promote cached senior: %w", err)
	}
	return nil
}

func (s *Store) DeleteCachedSenior(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cached_seniors WHERE id=?`, id); err != nil {
		return fmt.Errorf("failed to delete cached senior: %w", err)
	}
	return nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
