// Package memory provides map-backed implementations of the persistence
// collaborators. The engine falls back to them when it runs without a
// database (database.enabled=false); integration tests use them to drive
// the full stack without external services.
package memory

import (
	"context"
	"fmt"
	"sync"

	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
)

// MemberRepo implements ports.MemberRepository in memory.
type MemberRepo struct {
	mu      sync.RWMutex
	members map[domain.Principal]*domain.Member
}

// NewMemberRepo creates an empty MemberRepo.
func NewMemberRepo() *MemberRepo {
	return &MemberRepo{members: make(map[domain.Principal]*domain.Member)}
}

// Create stores a new member. The principal must be unused.
func (r *MemberRepo) Create(ctx context.Context, m *domain.Member) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[m.Principal]; ok {
		return fmt.Errorf("principal already exists")
	}
	clone := *m
	r.members[m.Principal] = &clone
	return nil
}

// GetByPrincipal returns the member for a principal, or nil when absent.
func (r *MemberRepo) GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[principal]
	if !ok {
		return nil, nil
	}
	clone := *m
	return &clone, nil
}

// GetByAccessKey returns the member holding an access key, or nil.
func (r *MemberRepo) GetByAccessKey(ctx context.Context, accessKey string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.AccessKey == accessKey {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

// GetByUsername returns the member with a username, or nil.
func (r *MemberRepo) GetByUsername(ctx context.Context, username string) (*domain.Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if m.Username == username {
			clone := *m
			return &clone, nil
		}
	}
	return nil, nil
}

// SnapshotStore implements ports.SnapshotStore as a single in-memory slot.
// Snapshots saved here do not survive a restart.
type SnapshotStore struct {
	mu   sync.Mutex
	snap *domain.Snapshot
}

// NewSnapshotStore creates an empty SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load returns the last saved snapshot, nil when nothing was saved yet.
func (s *SnapshotStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, nil
}

// Save replaces the stored snapshot.
func (s *SnapshotStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}

var (
	_ ports.MemberRepository = (*MemberRepo)(nil)
	_ ports.SnapshotStore    = (*SnapshotStore)(nil)
)
