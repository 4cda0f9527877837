package postgres

import (
	"context"
	"errors"
	"fmt"

	"dao-governance/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// MemberRepo implements ports.MemberRepository.
type MemberRepo struct {
	pool Pool
}

// NewMemberRepo creates a new MemberRepo.
func NewMemberRepo(pool Pool) *MemberRepo {
	return &MemberRepo{pool: pool}
}

// Create inserts a new member into the database.
func (r *MemberRepo) Create(ctx context.Context, m *domain.Member) error {
	query := `INSERT INTO members (principal, username, password_hash, access_key, secret_key_enc, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		m.Principal.String(), m.Username, m.PasswordHash,
		m.AccessKey, m.SecretKeyEnc, string(m.Status),
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// GetByPrincipal fetches a member by its principal.
func (r *MemberRepo) GetByPrincipal(ctx context.Context, principal domain.Principal) (*domain.Member, error) {
	query := `SELECT principal, username, password_hash, access_key, secret_key_enc, status, created_at, updated_at
		FROM members WHERE principal = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, principal.String()), "principal")
}

// GetByAccessKey fetches a member by its public access key.
func (r *MemberRepo) GetByAccessKey(ctx context.Context, accessKey string) (*domain.Member, error) {
	query := `SELECT principal, username, password_hash, access_key, secret_key_enc, status, created_at, updated_at
		FROM members WHERE access_key = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, accessKey), "access_key")
}

// GetByUsername fetches a member by username.
func (r *MemberRepo) GetByUsername(ctx context.Context, username string) (*domain.Member, error) {
	query := `SELECT principal, username, password_hash, access_key, secret_key_enc, status, created_at, updated_at
		FROM members WHERE username = $1`

	return r.scanOne(r.pool.QueryRow(ctx, query, username), "username")
}

func (r *MemberRepo) scanOne(row pgx.Row, by string) (*domain.Member, error) {
	var (
		m         domain.Member
		principal string
		status    string
	)
	err := row.Scan(
		&principal, &m.Username, &m.PasswordHash,
		&m.AccessKey, &m.SecretKeyEnc, &status,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get member by %s: %w", by, err)
	}

	m.Principal = domain.Principal(principal)
	m.Status = domain.MemberStatus(status)
	return &m, nil
}
