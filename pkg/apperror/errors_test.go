package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			appErr:   New("LED_001", "Insufficient funds", http.StatusPaymentRequired),
			expected: "[LED_001] Insufficient funds",
		},
		{
			name:     "with wrapped error",
			appErr:   Wrap("SYS_001", "DB error", http.StatusInternalServerError, fmt.Errorf("connection refused")),
			expected: "[SYS_001] DB error: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.appErr.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := fmt.Errorf("inner error")
	appErr := Wrap("SYS_001", "wrapped", http.StatusInternalServerError, inner)

	assert.True(t, errors.Is(appErr, inner))
}

func TestAppError_IsNilUnwrap(t *testing.T) {
	appErr := New("LED_001", "test", http.StatusBadRequest)
	assert.Nil(t, appErr.Unwrap())
}

func TestSecurityErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidAccessKey", ErrInvalidAccessKey(), "SEC_001", 401},
		{"InvalidSignature", ErrInvalidSignature(), "SEC_002", 401},
		{"TimestampExpired", ErrTimestampExpired(), "SEC_003", 403},
		{"NonceUsed", ErrNonceUsed(), "SEC_004", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestLedgerErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InsufficientFunds", ErrInsufficientFunds(), "LED_001", 402},
		{"NoAccount", ErrNoAccount(), "LED_002", 404},
		{"InvalidAmount", ErrInvalidAmount(), "LED_003", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestGovernanceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"NotFound", ErrNotFound("Proposal"), "GOV_001", 404},
		{"AlreadyVoted", ErrAlreadyVoted(), "GOV_002", 409},
		{"InvalidTransition", ErrInvalidTransition("succeeded", "open"), "GOV_003", 422},
		{"InvalidProposalPayload", ErrInvalidProposalPayload("empty method"), "GOV_004", 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestInvalidTransitionMessage(t *testing.T) {
	err := ErrInvalidTransition("rejected", "executing")
	assert.Contains(t, err.Message, "rejected")
	assert.Contains(t, err.Message, "executing")
}

func TestAuthErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		code       string
		httpStatus int
	}{
		{"InvalidCredentials", ErrInvalidCredentials(), "AUTH_001", 401},
		{"UsernameExists", ErrUsernameExists(), "AUTH_002", 409},
		{"InvalidToken", ErrInvalidToken(), "AUTH_003", 401},
		{"MemberSuspended", ErrMemberSuspended(), "AUTH_004", 403},
		{"Forbidden", ErrForbidden(), "AUTH_005", 403},
		{"PrincipalExists", ErrPrincipalExists(), "AUTH_006", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
		})
	}
}

func TestSystemErrors(t *testing.T) {
	inner := fmt.Errorf("pg: connection closed")
	dbErr := ErrDatabaseError(inner)
	assert.Equal(t, "SYS_001", dbErr.Code)
	assert.Equal(t, 500, dbErr.HTTPStatus)
	assert.True(t, errors.Is(dbErr, inner))

	snapErr := ErrSnapshotFailure(inner)
	assert.Equal(t, "SYS_002", snapErr.Code)
	assert.Equal(t, 503, snapErr.HTTPStatus)

	encErr := ErrEncryptionFailure(inner)
	assert.Equal(t, "SYS_003", encErr.Code)
	assert.Equal(t, 500, encErr.HTTPStatus)
}

func TestRateLimitError(t *testing.T) {
	err := ErrRateLimitExceeded()
	assert.Equal(t, "RATE_001", err.Code)
	assert.Equal(t, 429, err.HTTPStatus)
}

func TestNotFoundEntity(t *testing.T) {
	err := ErrNotFound("Member")
	assert.Contains(t, err.Message, "Member")
	assert.Equal(t, "GOV_001", err.Code)
}
