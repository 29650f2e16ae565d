package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
)

// syncStateStore implements driven.SyncStateStore.
type syncStateStore struct {
	store *Store
}

var _ driven.SyncStateStore = (*syncStateStore)(nil)

// Save stores or updates sync state. The checkpoint keeps its full resolution.
func (s *syncStateStore) Save(ctx context.Context, state domain.SyncState) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_states (source_id, checkpoint, last_sync, items)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			checkpoint = excluded.checkpoint,
			last_sync = excluded.last_sync,
			items = excluded.items
	`, state.SourceID, state.Checkpoint.UTC().Format(time.RFC3339Nano), state.LastSync.UTC(), state.Items)

	if err != nil {
		return fmt.Errorf("saving sync state: %w", err)
	}
	return nil
}

// Get retrieves sync state for a source.
func (s *syncStateStore) Get(ctx context.Context, sourceID string) (*domain.SyncState, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT source_id, checkpoint, last_sync, items
		FROM sync_states WHERE source_id = ?
	`, sourceID)

	state, err := scanSyncState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// List returns every stored sync state ordered by source.
func (s *syncStateStore) List(ctx context.Context) ([]domain.SyncState, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT source_id, checkpoint, last_sync, items
		FROM sync_states ORDER BY source_id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sync states: %w", err)
	}
	defer rows.Close()

	var states []domain.SyncState
	for rows.Next() {
		state, err := scanSyncState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, *state)
	}
	return states, rows.Err()
}

// Delete removes sync state for a source.
func (s *syncStateStore) Delete(ctx context.Context, sourceID string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM sync_states WHERE source_id = ?", sourceID)
	if err != nil {
		return fmt.Errorf("deleting sync state: %w", err)
	}
	return requireAffected(res, "sync state "+sourceID)
}

// requireAffected returns domain.ErrNotFound when res touched no row.
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSyncState(row scanner) (*domain.SyncState, error) {
	var state domain.SyncState
	var checkpoint string
	var lastSync sql.NullTime
	if err := row.Scan(&state.SourceID, &checkpoint, &lastSync, &state.Items); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning sync state: %w", err)
	}

	cp, err := time.Parse(time.RFC3339Nano, checkpoint)
	if err != nil {
		return nil, fmt.Errorf("parsing checkpoint of %s: %w", state.SourceID, err)
	}
	state.Checkpoint = cp

	if lastSync.Valid {
		state.LastSync = lastSync.Time.UTC()
	}
	return &state, nil
}
