// Package keys implements the credential issuance and quota enforcement
// service: secret generation and digesting, issuance, validation, rotation,
// revocation and usage accounting.
package keys

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math/big"
	"os"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const (
	// SecretPrefix is the prefix for all Keywarden API secrets
	SecretPrefix = "kw_"
	// SecretLength is the number of random characters after the prefix.
	// 43 base62 characters carry just over 256 bits of entropy.
	SecretLength = 43
	// SecretPrefixLen is the length of the identifying prefix (e.g., "kw_a1B2c3D4")
	SecretPrefixLen = 11 // "kw_" + 8 chars

	// IDPrefix namespaces credential ids
	IDPrefix = "key_"
)

// base62Alphabet contains characters for secret generation (0-9, A-Z, a-z)
var base62Alphabet = []byte("0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz")

// Codec generates secrets and their storage digests. The digest is a keyed
// BLAKE2b-256: deterministic so it can serve as the unique lookup column,
// keyed so a leaked digest table alone does not enable offline precomputation.
type Codec struct {
	digestKey []byte
}

// NewCodec creates a codec from raw key material. The material is folded
// through SHA-256 so any non-empty string works as a key source.
func NewCodec(keyMaterial string) (*Codec, error) {
	if keyMaterial == "" {
		return nil, errors.New("digest key material must not be empty")
	}
	sum := sha256.Sum256([]byte(keyMaterial))
	return &Codec{digestKey: sum[:]}, nil
}

// DeriveKeyMaterial resolves the digest key source.
// Priority: KEYWARDEN_DIGEST_KEY env var > machine-derived key.
func DeriveKeyMaterial() string {
	if envKey := os.Getenv("KEYWARDEN_DIGEST_KEY"); envKey != "" {
		return envKey
	}
	return machineKeyMaterial()
}

// machineKeyMaterial builds a stable per-machine fallback key source.
func machineKeyMaterial() string {
	hostname, _ := os.Hostname()
	home, _ := os.UserHomeDir()
	return "keywarden:" + hostname + ":" + home
}

// GenerateSecret creates a new API secret with format: kw_ + 43 base62 chars
func (c *Codec) GenerateSecret() (string, error) {
	result := make([]byte, SecretLength)
	alphabetLen := big.NewInt(int64(len(base62Alphabet)))

	for i := 0; i < SecretLength; i++ {
		idx, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		result[i] = base62Alphabet[idx.Int64()]
	}

	return SecretPrefix + string(result), nil
}

// Digest returns the hex-encoded keyed BLAKE2b-256 of a secret. Same input
// always yields the same output; used only for equality lookup.
func (c *Codec) Digest(secret string) string {
	h, err := blake2b.New256(c.digestKey)
	if err != nil {
		// Key length is fixed at 32 bytes by NewCodec; New256 cannot fail.
		panic("keys: blake2b init: " + err.Error())
	}
	h.Write([]byte(secret))
	return hex.EncodeToString(h.Sum(nil))
}

// GenerateID creates a collision-resistant credential id, independent of the
// secret. Ids are stable for the credential's lifetime and survive rotation.
func GenerateID() string {
	return IDPrefix + uuid.New().String()
}

// ExtractKeyPrefix returns the first 11 chars of a secret for identification
// Format: "kw_" + first 8 random chars (e.g., "kw_a1B2c3D4")
func ExtractKeyPrefix(secret string) string {
	if len(secret) < SecretPrefixLen {
		return secret
	}
	return secret[:SecretPrefixLen]
}
