// Package cryptox derives the credentials the client sends on register and
// login. The password never leaves the device; only a verifier does.
package cryptox

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
)

const (
	SaltSize = 32
	keySize  = 32
)

// DeriveMasterKey stretches password with argon2id.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, keySize)
}

// MakeVerifier hashes a master key into the value stored by the server.
func MakeVerifier(masterKey []byte) []byte {
	hash := sha256.Sum256(masterKey)
	return hash[:]
}
