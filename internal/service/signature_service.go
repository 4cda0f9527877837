package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HMACSignatureService implements ports.SignatureService with HMAC-SHA256.
// Members sign every mutating API call with their secret key; the HMAC
// middleware recomputes the signature over the same canonical string.
type HMACSignatureService struct{}

// NewHMACSignatureService creates a new HMAC-SHA256 signature service.
func NewHMACSignatureService() *HMACSignatureService {
	return &HMACSignatureService{}
}

// Sign computes HMAC-SHA256 of payload under secretKey, returned as
// lowercase hex.
func (s *HMACSignatureService) Sign(secretKey string, payload string) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches HMAC-SHA256(secretKey, payload).
// The comparison is constant time.
func (s *HMACSignatureService) Verify(secretKey string, payload string, signature string) bool {
	expected := s.Sign(secretKey, payload)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// BuildCanonicalString constructs the canonical payload covered by a member
// request signature. Format: METHOD|PATH|TIMESTAMP|NONCE|BODY
func (s *HMACSignatureService) BuildCanonicalString(method, path string, timestamp int64, nonce string, body string) string {
	return fmt.Sprintf("%s|%s|%d|%s|%s", method, path, timestamp, nonce, body)
}
