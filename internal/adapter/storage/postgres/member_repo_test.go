package postgres

import (
	"context"
	"testing"
	"time"

	"dao-governance/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMember() *domain.Member {
	return &domain.Member{
		Principal:    domain.Principal("member-" + uuid.New().String()[:8]),
		Username:     "test_user",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$salt$hash",
		AccessKey:    "ak_" + uuid.New().String()[:16],
		SecretKeyEnc: "encrypted_secret_key_data",
		Status:       domain.MemberStatusActive,
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
		UpdatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func memberColumns() []string {
	return []string{"principal", "username", "password_hash", "access_key", "secret_key_enc", "status", "created_at", "updated_at"}
}

func memberRow(m *domain.Member) *pgxmock.Rows {
	return pgxmock.NewRows(memberColumns()).AddRow(
		m.Principal.String(), m.Username, m.PasswordHash,
		m.AccessKey, m.SecretKeyEnc, string(m.Status),
		m.CreatedAt, m.UpdatedAt,
	)
}

func TestMemberRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMemberRepo(mock)
	m := newTestMember()

	mock.ExpectExec("INSERT INTO members").
		WithArgs(m.Principal.String(), m.Username, m.PasswordHash,
			m.AccessKey, m.SecretKeyEnc, string(m.Status),
			m.CreatedAt, m.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), m)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepo_GetByPrincipal(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMemberRepo(mock)
	m := newTestMember()

	mock.ExpectQuery("SELECT .+ FROM members WHERE principal").
		WithArgs(m.Principal.String()).
		WillReturnRows(memberRow(m))

	result, err := repo.GetByPrincipal(context.Background(), m.Principal)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, m.Principal, result.Principal)
	assert.Equal(t, m.Username, result.Username)
	assert.Equal(t, m.AccessKey, result.AccessKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepo_GetByPrincipal_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMemberRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM members WHERE principal").
		WithArgs(pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(memberColumns()))

	result, err := repo.GetByPrincipal(context.Background(), "member-unknown")
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepo_GetByAccessKey(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMemberRepo(mock)
	m := newTestMember()

	mock.ExpectQuery("SELECT .+ FROM members WHERE access_key").
		WithArgs(m.AccessKey).
		WillReturnRows(memberRow(m))

	result, err := repo.GetByAccessKey(context.Background(), m.AccessKey)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, m.AccessKey, result.AccessKey)
	assert.Equal(t, domain.MemberStatusActive, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemberRepo_GetByUsername(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMemberRepo(mock)
	m := newTestMember()

	mock.ExpectQuery("SELECT .+ FROM members WHERE username").
		WithArgs(m.Username).
		WillReturnRows(memberRow(m))

	result, err := repo.GetByUsername(context.Background(), m.Username)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, m.Username, result.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}
