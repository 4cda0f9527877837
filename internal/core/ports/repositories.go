package ports

import (
	"context"

	"dao-governance/internal/core/domain"
)

// MemberRepository defines persistence operations for members.
type MemberRepository interface {
	Create(ctx context.Context, member *domain.Member) error
	GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.Member, error)
	GetByAccessKey(ctx context.Context, accessKey string) (*domain.Member, error)
	GetByUsername(ctx context.Context, username string) (*domain.Member, error)
}

// SnapshotStore is the durable-state collaborator: it hands the engine its
// initial snapshot at boot and persists later snapshots. The engine state
// itself stays memory-authoritative.
type SnapshotStore interface {
	// Load returns the last saved snapshot, or nil when the store is empty
	// (first boot, genesis applies).
	Load(ctx context.Context) (*domain.Snapshot, error)
	// Save replaces the stored snapshot atomically.
	Save(ctx context.Context, snap *domain.Snapshot) error
}

// AuditRepository defines persistence for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
}
