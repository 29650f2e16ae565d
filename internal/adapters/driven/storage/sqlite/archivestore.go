package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
)

// archiveStore implements driven.ArchiveStore.
type archiveStore struct {
	store *Store
}

var _ driven.ArchiveStore = (*archiveStore)(nil)

// Create starts a new archive.
func (s *archiveStore) Create(ctx context.Context, info domain.ArchiveInfo) (driven.Archive, error) {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now()
	}
	info.CreatedAt = info.CreatedAt.UTC()

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO archives (id, backend_name, backend_version, category, origin, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, info.ID, info.BackendName, info.BackendVersion, string(info.Category), info.Origin, info.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating archive: %w", err)
	}
	return &archive{store: s.store, info: info}, nil
}

// Open returns an existing archive.
func (s *archiveStore) Open(ctx context.Context, id string) (driven.Archive, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, backend_name, backend_version, category, origin, created_at
		FROM archives WHERE id = ?
	`, id)

	info, err := scanArchiveInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &archive{store: s.store, info: *info}, nil
}

// List returns all archives, oldest first.
func (s *archiveStore) List(ctx context.Context) ([]domain.ArchiveInfo, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, backend_name, backend_version, category, origin, created_at
		FROM archives ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing archives: %w", err)
	}
	defer rows.Close()

	var infos []domain.ArchiveInfo
	for rows.Next() {
		info, err := scanArchiveInfo(rows)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, rows.Err()
}

// Delete removes an archive and its responses.
func (s *archiveStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM archives WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting archive: %w", err)
	}
	return requireAffected(res, "archive "+id)
}

// archive implements driven.Archive.
type archive struct {
	store *Store
	info  domain.ArchiveInfo
}

var _ driven.Archive = (*archive)(nil)

// Info describes the archive.
func (a *archive) Info() domain.ArchiveInfo {
	return a.info
}

// Store appends a raw response, replacing an earlier one for the same request.
func (a *archive) Store(ctx context.Context, resp domain.ArchivedResponse) error {
	if resp.CreatedAt.IsZero() {
		resp.CreatedAt = time.Now()
	}
	_, err := a.store.db.ExecContext(ctx, `
		INSERT INTO archive_entries (archive_id, hashcode, url, params, status_code, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(archive_id, hashcode) DO UPDATE SET
			status_code = excluded.status_code,
			body = excluded.body,
			created_at = excluded.created_at
	`, a.info.ID, resp.Hashcode, resp.URL, resp.Params, resp.StatusCode, resp.Body, resp.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("storing archived response: %w", err)
	}
	return nil
}

// Retrieve returns the response archived for a request.
func (a *archive) Retrieve(ctx context.Context, rawURL string, params url.Values) (*domain.ArchivedResponse, error) {
	row := a.store.db.QueryRowContext(ctx, `
		SELECT hashcode, url, params, status_code, body, created_at
		FROM archive_entries WHERE archive_id = ? AND hashcode = ?
	`, a.info.ID, domain.RequestHash(rawURL, params))

	resp := domain.ArchivedResponse{ArchiveID: a.info.ID}
	var createdAt sql.NullTime
	err := row.Scan(&resp.Hashcode, &resp.URL, &resp.Params, &resp.StatusCode, &resp.Body, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrArchiveMiss
	}
	if err != nil {
		return nil, fmt.Errorf("scanning archived response: %w", err)
	}
	if createdAt.Valid {
		resp.CreatedAt = createdAt.Time.UTC()
	}
	return &resp, nil
}

func scanArchiveInfo(row scanner) (*domain.ArchiveInfo, error) {
	var info domain.ArchiveInfo
	var category string
	var createdAt sql.NullTime
	if err := row.Scan(&info.ID, &info.BackendName, &info.BackendVersion, &category, &info.Origin, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning archive: %w", err)
	}
	info.Category = domain.Category(category)
	if createdAt.Valid {
		info.CreatedAt = createdAt.Time.UTC()
	}
	return &info, nil
}
