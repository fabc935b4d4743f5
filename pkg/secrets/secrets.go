// Package secrets holds the primitives behind the operator token: random
// generation, bcrypt hashing, and verification against a stored hash.
package secrets

import (
	"crypto/rand"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/bcrypt"

	dErrors "riskgate/pkg/domain-errors"
)

// tokenBytes is the entropy of a generated token. 32 bytes keeps the token
// comfortably beyond brute force while staying under bcrypt's 72-byte input
// limit after encoding.
const tokenBytes = 32

// Generate returns a fresh operator token, base64url encoded without padding
// so it survives shells and HTTP headers unquoted.
func Generate() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate token")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Hash bcrypts a token for storage. Configuration carries only the hash; the
// plaintext is shown once at provisioning time and never persisted.
func Hash(token string) (string, error) {
	if token == "" {
		return "", dErrors.New(dErrors.CodeValidation, "token cannot be empty")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", dErrors.New(dErrors.CodeValidation, "token is too long")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not hash token")
	}
	return string(hashed), nil
}

// Verify checks a presented token against the stored bcrypt hash. A mismatch
// maps to CodeUnauthorized so callers reject it without leaking which part
// failed.
func Verify(token, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(token))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not verify token")
	}
}
