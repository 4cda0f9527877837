package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"dao-governance/internal/core/domain"
	"dao-governance/internal/core/ports"
	"dao-governance/pkg/apperror"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	memberRepo ports.MemberRepository
	hashSvc    ports.HashService
	encSvc     ports.EncryptionService
	tokenSvc   ports.TokenService
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	memberRepo ports.MemberRepository,
	hashSvc ports.HashService,
	encSvc ports.EncryptionService,
	tokenSvc ports.TokenService,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		memberRepo: memberRepo,
		hashSvc:    hashSvc,
		encSvc:     encSvc,
		tokenSvc:   tokenSvc,
	}
}

// RegisterMember enrolls a principal as an API member and issues its key
// pair. Returns the access_key and secret_key (plaintext shown only once).
// Registration never touches the token ledger: balances come from genesis
// or transfers, not from enrollment.
func (s *AuthServiceImpl) RegisterMember(ctx context.Context, req ports.RegisterMemberRequest) (*ports.RegisterMemberResponse, error) {
	// Check principal uniqueness
	existing, err := s.memberRepo.GetByPrincipal(ctx, req.Principal)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check principal: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrPrincipalExists()
	}

	// Check username uniqueness
	existing, err = s.memberRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	// Generate key pair
	accessKey, err := generateRandomHex(32) // 64 hex chars
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate access key: %w", err))
	}

	secretKey, err := generateRandomHex(32) // 64 hex chars
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate secret key: %w", err))
	}

	// Hash password with Argon2id
	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	// Encrypt secret key with AES-256
	secretKeyEnc, err := s.encSvc.Encrypt(secretKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("encrypt secret key: %w", err))
	}

	now := time.Now().UTC()
	member := &domain.Member{
		Principal:    req.Principal,
		Username:     req.Username,
		PasswordHash: passwordHash,
		AccessKey:    accessKey,
		SecretKeyEnc: secretKeyEnc,
		Status:       domain.MemberStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create member: %w", err))
	}

	return &ports.RegisterMemberResponse{
		Principal: member.Principal,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}, nil
}

// Login validates credentials and returns a JWT token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	member, err := s.memberRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find member: %w", err))
	}
	if member == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	// Verify password
	valid, err := s.hashSvc.Verify(password, member.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	// Check member status
	if !member.IsActive() {
		return "", time.Time{}, apperror.ErrMemberSuspended()
	}

	// Generate JWT
	token, expiry, err := s.tokenSvc.Generate(member.Principal, member.Username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}

// generateRandomHex generates a random hex string of n bytes.
func generateRandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
