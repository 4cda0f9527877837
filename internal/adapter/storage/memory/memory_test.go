package memory

import (
	"context"
	"testing"
	"time"

	"dao-governance/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleMember(principal, username, accessKey string) *domain.Member {
	now := time.Now().UTC()
	return &domain.Member{
		Principal:    domain.Principal(principal),
		Username:     username,
		PasswordHash: "hash",
		AccessKey:    accessKey,
		SecretKeyEnc: "enc",
		Status:       domain.MemberStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestMemberRepo_CreateAndLookups(t *testing.T) {
	repo := NewMemberRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleMember("member-alpha", "alice", "ak_alpha")))

	byPrincipal, err := repo.GetByPrincipal(ctx, "member-alpha")
	require.NoError(t, err)
	require.NotNil(t, byPrincipal)
	assert.Equal(t, "alice", byPrincipal.Username)

	byKey, err := repo.GetByAccessKey(ctx, "ak_alpha")
	require.NoError(t, err)
	require.NotNil(t, byKey)

	byUsername, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byUsername)
}

func TestMemberRepo_MissingReturnsNil(t *testing.T) {
	repo := NewMemberRepo()
	ctx := context.Background()

	m, err := repo.GetByPrincipal(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = repo.GetByAccessKey(ctx, "ak_none")
	require.NoError(t, err)
	assert.Nil(t, m)

	m, err = repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestMemberRepo_DuplicatePrincipalRejected(t *testing.T) {
	repo := NewMemberRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleMember("member-alpha", "alice", "ak_alpha")))
	assert.Error(t, repo.Create(ctx, sampleMember("member-alpha", "alice2", "ak_other")))
}

func TestMemberRepo_ReadsAreIsolated(t *testing.T) {
	repo := NewMemberRepo()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleMember("member-alpha", "alice", "ak_alpha")))

	m, err := repo.GetByPrincipal(ctx, "member-alpha")
	require.NoError(t, err)
	m.Username = "mutated"

	again, err := repo.GetByPrincipal(ctx, "member-alpha")
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Username)
}

func TestSnapshotStore_EmptyThenRoundTrip(t *testing.T) {
	store := NewSnapshotStore()
	ctx := context.Background()

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	saved := &domain.Snapshot{
		Accounts:      []domain.Account{{Owner: "member-alpha", Tokens: 100}},
		Params:        domain.SystemParams{TransferFee: 1, ProposalVoteThreshold: 100, ProposalSubmissionDeposit: 10},
		InitialSupply: 100,
	}
	require.NoError(t, store.Save(ctx, saved))

	snap, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, domain.Tokens(100), snap.InitialSupply)
	require.Len(t, snap.Accounts, 1)
	assert.Equal(t, domain.Principal("member-alpha"), snap.Accounts[0].Owner)
}
