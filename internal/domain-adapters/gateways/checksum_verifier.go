package gateways

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // G505: Maven Central publishes SHA-1 digests; used for integrity, not security
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// checksumVerifier implements checksum verification using pure Go.
// The algorithm is picked from the length of the expected digest.
type checksumVerifier struct{}

// NewChecksumVerifier creates a new checksum verifier
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewChecksumVerifier() *checksumVerifier {
	return &checksumVerifier{}
}

// VerifyChecksum verifies a file against a SHA-1, SHA-256 or SHA-512 hex digest
func (v *checksumVerifier) VerifyChecksum(_ context.Context, filePath, expectedSum string) error {
	//nolint:gosec // G304: File path is user-provided for checksum verification
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	return v.verify(f, expectedSum)
}

// VerifyBytes verifies in-memory content against a hex digest
func (v *checksumVerifier) VerifyBytes(data []byte, expectedSum string) error {
	return v.verify(bytes.NewReader(data), expectedSum)
}

func (v *checksumVerifier) verify(r io.Reader, expectedSum string) error {
	expectedSum = strings.ToLower(strings.TrimSpace(expectedSum))

	h, err := hashForDigest(expectedSum)
	if err != nil {
		return err
	}
	if _, err := io.Copy(h, r); err != nil {
		return fmt.Errorf("failed to hash file: %w", err)
	}

	actualSum := hex.EncodeToString(h.Sum(nil))
	if actualSum != expectedSum {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expectedSum, actualSum)
	}

	return nil
}

func hashForDigest(digest string) (hash.Hash, error) {
	switch len(digest) {
	case 40:
		//nolint:gosec // G401: see import
		return sha1.New(), nil
	case 64:
		return sha256.New(), nil
	case 128:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum length %d", len(digest))
	}
}
