// Package crypto hashes and verifies the access PIN and produces key material.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/and161185/card-keeper/internal/model"
)

// Argon2id parameters. A PIN has little entropy, so the cost is what slows
// offline guessing against a copied database.
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
	saltLen             = 16
)

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// HashPIN returns the Argon2id hash of pin using the provided salt.
func HashPIN(pin string, salt []byte) []byte {
	return argon2.IDKey([]byte(pin), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// NewPINRecord hashes pin with a fresh random salt.
func NewPINRecord(pin string) (model.PINRecord, error) {
	salt, err := RandBytes(saltLen)
	if err != nil {
		return model.PINRecord{}, fmt.Errorf("pin salt: %w", err)
	}
	return model.PINRecord{Hash: HashPIN(pin, salt), Salt: salt}, nil
}

// VerifyPIN checks pin against a stored record in constant time.
func VerifyPIN(pin string, rec model.PINRecord) bool {
	got := HashPIN(pin, rec.Salt)
	return subtle.ConstantTimeCompare(got, rec.Hash) == 1
}

// EqualPIN compares two PINs in constant time.
func EqualPIN(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
