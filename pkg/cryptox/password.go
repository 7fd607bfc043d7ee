package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrInvalidCredentialFormat reports a stored credential that does not
	// parse as a PHC-encoded Argon2id string. Callers treat it exactly like a
	// mismatch so the failure cause is never visible to the end user.
	ErrInvalidCredentialFormat = errors.New("cryptox: invalid credential format")

	// ErrCredentialMismatch reports a well-formed credential whose digest does
	// not match the supplied plaintext.
	ErrCredentialMismatch = errors.New("cryptox: credential mismatch")
)

// HashCredential derives a PHC-format Argon2id string from the plaintext.
// A fresh 16-byte salt is drawn from crypto/rand on every call, so hashing the
// same plaintext twice never yields the same encoding. The same function is
// used for passwords and for refresh-token digests; both are just secrets that
// need one-way storage.
func HashCredential(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	digest := argon2.IDKey(
		[]byte(plaintext+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Digest := base64.RawStdEncoding.EncodeToString(digest)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		b64Salt,
		b64Digest,
	), nil
}

// VerifyCredential re-derives the digest using the parameters embedded in the
// encoded credential and compares it in constant time. A malformed encoding
// returns ErrInvalidCredentialFormat rather than panicking; a digest mismatch
// returns ErrCredentialMismatch.
func VerifyCredential(plaintext, encoded string) error {
	// Expected shape: $argon2id$v=19$m=X,t=Y,p=Z$salt$hash
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return ErrInvalidCredentialFormat
	}
	if parts[1] != "argon2id" || parts[2] != "v=19" {
		return ErrInvalidCredentialFormat
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("%w: bad parameters: %w", ErrInvalidCredentialFormat, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("%w: bad salt: %w", ErrInvalidCredentialFormat, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("%w: bad digest: %w", ErrInvalidCredentialFormat, err)
	}
	if len(want) == 0 {
		return ErrInvalidCredentialFormat
	}

	got := argon2.IDKey(
		[]byte(plaintext+GetPepper()),
		salt,
		iters,
		mem,
		par,
		uint32(len(want)), // #nosec G115 - digest lengths are bounded by the encoding
	)

	if subtle.ConstantTimeCompare(got, want) == 1 {
		return nil
	}
	return ErrCredentialMismatch
}
