// Package auth derives and verifies password digests. Digests are argon2id
// over the plaintext with a per-user random salt; verification compares in
// constant time.
package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/argon2"

	"github.com/dvolkovs/filevault/internal/common"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	digestLen    = 32

	saltLen = 16
)

// NewSalt returns a fresh random salt for one user.
func NewSalt() []byte {
	return common.GenerateRandByteArray(saltLen)
}

// DigestPassword computes the argon2id digest of password under salt.
func DigestPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, digestLen)
}

// VerifyPassword recomputes the digest of the candidate password and
// compares it with the stored digest in constant time.
func VerifyPassword(password string, salt, digest []byte) bool {
	candidate := DigestPassword(password, salt)
	return subtle.ConstantTimeCompare(candidate, digest) == 1
}
