// Package cryptoutil provides content digests for generated documents
package cryptoutil

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	commonerrors "github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"golang.org/x/crypto/blake2b"
)

// HashAlgorithm represents supported hash algorithms
type HashAlgorithm string

const (
	// SHA256 algorithm
	SHA256 HashAlgorithm = "sha256"

	// SHA512 algorithm
	SHA512 HashAlgorithm = "sha512"

	// BLAKE2B256 algorithm (BLAKE2b with a 256-bit digest)
	BLAKE2B256 HashAlgorithm = "blake2b-256"
)

// Hasher computes hex digests with a single algorithm
type Hasher struct {
	algorithm HashAlgorithm
	newHash   func() hash.Hash
}

// NewHasher creates a new Hasher for the specified algorithm
func NewHasher(algorithm HashAlgorithm) (*Hasher, error) {
	var newHashFunc func() hash.Hash

	algorithm = HashAlgorithm(strings.ToLower(string(algorithm)))
	switch algorithm {
	case SHA256, "":
		algorithm = SHA256
		newHashFunc = sha256.New
	case SHA512:
		newHashFunc = sha512.New
	case BLAKE2B256:
		newHashFunc = func() hash.Hash {
			// New256 only fails for keys longer than 64 bytes
			h, _ := blake2b.New256(nil)
			return h
		}
	default:
		return nil, fmt.Errorf("%w: unsupported hash algorithm '%s'", commonerrors.ErrInvalidHasher, algorithm)
	}

	return &Hasher{
		algorithm: algorithm,
		newHash:   newHashFunc,
	}, nil
}

// Hash hashes the provided data and returns the hex digest
func (h *Hasher) Hash(data []byte) string {
	hasher := h.newHash()
	hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil))
}

// Digest returns the digest prefixed with its algorithm, e.g. "sha256:1234abcd..."
func (h *Hasher) Digest(data []byte) string {
	return string(h.algorithm) + ":" + h.Hash(data)
}
