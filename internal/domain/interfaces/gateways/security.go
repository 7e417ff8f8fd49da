package gateways

import (
	"context"

	"github.com/ochairo/tckwatch/internal/domain/entities"
)

// VulnerabilityGateway looks up known vulnerabilities of a library release
type VulnerabilityGateway interface {
	ScanWithOSV(ctx context.Context, release entities.Coordinates) (*entities.SecurityReport, error)
}

// ChecksumVerifier verifies file digests
type ChecksumVerifier interface {
	VerifyChecksum(ctx context.Context, filePath, expectedSum string) error
	VerifyBytes(data []byte, expectedSum string) error
}

// SignatureVerifier verifies detached PGP signatures
type SignatureVerifier interface {
	ImportGPGKeysFromURL(ctx context.Context, keysURL string) error
	ImportGPGKeyFromFile(keyPath string) error
	VerifyGPGSignature(ctx context.Context, filePath, sigURL string) error
	VerifyGPGSignatureFromFile(filePath, sigPath string) error
	GetKeyringSize() int
}
