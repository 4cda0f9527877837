package ports

import (
	"context"
	"time"

	"dao-governance/internal/core/domain"
)

// EncryptionService handles AES-256-GCM encryption/decryption.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// SignatureService handles HMAC-SHA256 signing and verification.
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
	BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string
}

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// TokenService handles JWT token operations.
type TokenService interface {
	Generate(principal domain.Principal, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	Principal domain.Principal
	Username  string
}

// NonceStore manages nonce uniqueness for replay attack prevention.
type NonceStore interface {
	// CheckAndSet atomically checks if nonce exists, sets it if not.
	// Returns true if nonce is new (valid), false if already used.
	CheckAndSet(ctx context.Context, principal string, nonce string, ttl time.Duration) (bool, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService exposes token ledger operations.
type LedgerService interface {
	Transfer(ctx context.Context, caller, to domain.Principal, amount domain.Tokens) (*domain.TransferReceipt, error)
	Balance(ctx context.Context, caller domain.Principal) (domain.Tokens, error)
	Accounts(ctx context.Context) ([]domain.Account, error)
}

// GovernanceService exposes proposal, voting, and parameter operations.
type GovernanceService interface {
	SubmitProposal(ctx context.Context, caller domain.Principal, payload domain.ProposalPayload) (*domain.Proposal, error)
	Vote(ctx context.Context, caller domain.Principal, proposalID uint64, choice domain.VoteChoice) (*domain.Proposal, error)
	GetProposal(ctx context.Context, id uint64) (*domain.Proposal, error)
	ListProposals(ctx context.Context) ([]domain.Proposal, error)
	GetParams(ctx context.Context) (domain.SystemParams, error)
	// UpdateParams applies a partial patch when caller is the engine's own
	// principal. Any other caller is silently ignored: no change, no error.
	UpdateParams(ctx context.Context, caller domain.Principal, patch domain.SystemParamsPatch) error
	// OverrideProposalState force-moves a proposal for privileged callers.
	// Unprivileged callers and missing proposals are silent no-ops; illegal
	// transitions fail with InvalidTransition.
	OverrideProposalState(ctx context.Context, caller domain.Principal, proposalID uint64, next domain.ProposalState, reason string) error
}

// TickReport summarizes one executor pass.
type TickReport struct {
	Claimed   int `json:"claimed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ExecutorService drives accepted proposals through execution. The host
// schedules ticks; the executor never schedules itself.
type ExecutorService interface {
	// ExecuteTick claims every Accepted proposal, invokes each one
	// independently, and finalizes it as Succeeded or Failed. Per-proposal
	// failures never surface as an error; the returned error is only a
	// cancelled context.
	ExecuteTick(ctx context.Context) (TickReport, error)
}

// AuthService defines authentication business logic.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry, error
	RegisterMember(ctx context.Context, req RegisterMemberRequest) (*RegisterMemberResponse, error)
}

// RegisterMemberRequest holds input for member registration.
type RegisterMemberRequest struct {
	Principal domain.Principal
	Username  string
	Password  string
}

// RegisterMemberResponse holds the registration result shown once.
type RegisterMemberResponse struct {
	Principal domain.Principal
	AccessKey string
	SecretKey string // Plaintext, shown only at registration
}

// ReportingService defines operational reporting over the governance state.
type ReportingService interface {
	LedgerStats(ctx context.Context) (*domain.LedgerStats, error)
	// ExportProposalsCSV renders all proposals as a CSV document.
	ExportProposalsCSV(ctx context.Context) ([]byte, error)
}

// AuditService records audit events asynchronously.
type AuditService interface {
	Record(ctx context.Context, entry *domain.AuditLog)
}
