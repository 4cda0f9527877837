package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Security & Authentication (SEC) ----

func ErrInvalidAccessKey() *AppError {
	return New("SEC_001", "Invalid access key", http.StatusUnauthorized)
}

func ErrInvalidSignature() *AppError {
	return New("SEC_002", "Invalid signature", http.StatusUnauthorized)
}

func ErrTimestampExpired() *AppError {
	return New("SEC_003", "Request timestamp expired", http.StatusForbidden)
}

func ErrNonceUsed() *AppError {
	return New("SEC_004", "Nonce has already been used", http.StatusConflict)
}

// ---- Ledger (LED) ----

func ErrInsufficientFunds() *AppError {
	return New("LED_001", "Insufficient balance to cover amount and fee", http.StatusPaymentRequired)
}

func ErrNoAccount() *AppError {
	return New("LED_002", "Caller does not have a ledger account", http.StatusNotFound)
}

func ErrInvalidAmount() *AppError {
	return New("LED_003", "Invalid amount", http.StatusBadRequest)
}

// ---- Governance (GOV) ----

func ErrNotFound(entity string) *AppError {
	return New("GOV_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAlreadyVoted() *AppError {
	return New("GOV_002", "Caller has already voted on this proposal", http.StatusConflict)
}

func ErrInvalidTransition(from, to string) *AppError {
	return New("GOV_003", fmt.Sprintf("Illegal proposal state transition from %s to %s", from, to), http.StatusUnprocessableEntity)
}

func ErrInvalidProposalPayload(reason string) *AppError {
	return New("GOV_004", fmt.Sprintf("Invalid proposal payload: %s", reason), http.StatusBadRequest)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrUsernameExists() *AppError {
	return New("AUTH_002", "Username already exists", http.StatusConflict)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrMemberSuspended() *AppError {
	return New("AUTH_004", "Member account is suspended", http.StatusForbidden)
}

func ErrForbidden() *AppError {
	return New("AUTH_005", "Caller is not allowed to perform this action", http.StatusForbidden)
}

func ErrPrincipalExists() *AppError {
	return New("AUTH_006", "Principal is already registered", http.StatusConflict)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

func ErrSnapshotFailure(err error) *AppError {
	return Wrap("SYS_002", "State snapshot failure", http.StatusServiceUnavailable, err)
}

func ErrEncryptionFailure(err error) *AppError {
	return Wrap("SYS_003", "Encryption service failure", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a LED_003-style validation error.
func Validation(message string) *AppError {
	return New("LED_003", message, http.StatusBadRequest)
}
