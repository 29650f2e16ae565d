package memory

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/harvest/internal/core/domain"
	"github.com/custodia-labs/harvest/internal/core/ports/driven"
)

// Ensure ArchiveStore implements the interface.
var _ driven.ArchiveStore = (*ArchiveStore)(nil)

// ArchiveStore is an in-memory implementation of driven.ArchiveStore.
type ArchiveStore struct {
	mu       sync.RWMutex
	archives map[string]*Archive
}

// NewArchiveStore creates a new in-memory archive store.
func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{
		archives: make(map[string]*Archive),
	}
}

// Create starts a new archive.
func (s *ArchiveStore) Create(_ context.Context, info domain.ArchiveInfo) (driven.Archive, error) {
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	if info.CreatedAt.IsZero() {
		info.CreatedAt = time.Now().UTC()
	}

	a := &Archive{info: info, entries: make(map[string]domain.ArchivedResponse)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.archives[info.ID] = a
	return a, nil
}

// Open returns an existing archive.
func (s *ArchiveStore) Open(_ context.Context, id string) (driven.Archive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.archives[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

// List returns all archives, oldest first.
func (s *ArchiveStore) List(_ context.Context) ([]domain.ArchiveInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]domain.ArchiveInfo, 0, len(s.archives))
	for _, a := range s.archives {
		infos = append(infos, a.info)
	}
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].CreatedAt.Equal(infos[j].CreatedAt) {
			return infos[i].CreatedAt.Before(infos[j].CreatedAt)
		}
		return infos[i].ID < infos[j].ID
	})
	return infos, nil
}

// Delete removes an archive and its responses.
func (s *ArchiveStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.archives[id]; !ok {
		return fmt.Errorf("%w: archive %s", domain.ErrNotFound, id)
	}
	delete(s.archives, id)
	return nil
}

// Ensure Archive implements the interface.
var _ driven.Archive = (*Archive)(nil)

// Archive is an in-memory archive of raw responses.
type Archive struct {
	mu      sync.RWMutex
	info    domain.ArchiveInfo
	entries map[string]domain.ArchivedResponse
}

// Info describes the archive.
func (a *Archive) Info() domain.ArchiveInfo {
	return a.info
}

// Store appends a raw response, replacing an earlier one for the same request.
func (a *Archive) Store(_ context.Context, resp domain.ArchivedResponse) error {
	resp.ArchiveID = a.info.ID
	resp.Body = append([]byte(nil), resp.Body...)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries[resp.Hashcode] = resp
	return nil
}

// Retrieve returns the response archived for a request.
func (a *Archive) Retrieve(_ context.Context, rawURL string, params url.Values) (*domain.ArchivedResponse, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	resp, ok := a.entries[domain.RequestHash(rawURL, params)]
	if !ok {
		return nil, domain.ErrArchiveMiss
	}
	return &resp, nil
}

// Len returns the number of archived responses.
func (a *Archive) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}
