package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2Params are the Argon2id cost settings. Every hash embeds its own
// parameters in the PHC string, so these can be raised later without
// invalidating stored member credentials.
type argon2Params struct {
	memory  uint32
	time    uint32
	threads uint8
	saltLen uint32
	keyLen  uint32
}

// defaultArgon2Params: 64MB memory, 1 pass, 4 lanes.
var defaultArgon2Params = argon2Params{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	saltLen: 16,
	keyLen:  32,
}

// Argon2HashService implements ports.HashService for member passwords.
type Argon2HashService struct {
	params argon2Params
}

// NewArgon2HashService creates a hash service with the default cost settings.
func NewArgon2HashService() *Argon2HashService {
	return &Argon2HashService{params: defaultArgon2Params}
}

// Hash derives an Argon2id digest of the password and encodes it as
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
func (s *Argon2HashService) Hash(password string) (string, error) {
	salt := make([]byte, s.params.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, s.params.time, s.params.memory, s.params.threads, s.params.keyLen)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		s.params.memory, s.params.time, s.params.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify recomputes the digest under the parameters stored in encodedHash
// and compares in constant time.
func (s *Argon2HashService) Verify(password string, encodedHash string) (bool, error) {
	salt, digest, params, err := decodeArgon2Hash(encodedHash)
	if err != nil {
		return false, err
	}

	other := argon2.IDKey([]byte(password), salt, params.time, params.memory, params.threads, params.keyLen)

	return subtle.ConstantTimeCompare(digest, other) == 1, nil
}

// decodeArgon2Hash splits a PHC-formatted Argon2id string into its salt,
// digest, and cost parameters.
func decodeArgon2Hash(encodedHash string) (salt, digest []byte, params argon2Params, err error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return nil, nil, params, fmt.Errorf("invalid hash format: expected 6 parts, got %d", len(parts))
	}

	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("parsing version: %w", err)
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.memory, &params.time, &params.threads); err != nil {
		return nil, nil, params, fmt.Errorf("parsing params: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}

	if digest, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}

	params.keyLen = uint32(len(digest))

	return salt, digest, params, nil
}
