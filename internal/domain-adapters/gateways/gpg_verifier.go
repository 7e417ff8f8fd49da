package gateways

import (
	"context"

	"github.com/ochairo/tckwatch/internal/external-adapters/gpg"
)

// gpgVerifier adapts the OpenPGP adapter to the SignatureVerifier gateway
type gpgVerifier struct {
	verifier *gpg.Verifier
}

// NewGPGVerifier creates a new GPG verifier gateway
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewGPGVerifier() *gpgVerifier {
	return &gpgVerifier{
		verifier: gpg.NewVerifier(),
	}
}

// ImportGPGKeysFromURL imports all GPG keys from a KEYS file URL
func (g *gpgVerifier) ImportGPGKeysFromURL(ctx context.Context, keysURL string) error {
	return g.verifier.ImportKeysFromURL(ctx, keysURL)
}

// ImportGPGKeyFromFile imports GPG keys from a local file
func (g *gpgVerifier) ImportGPGKeyFromFile(keyPath string) error {
	return g.verifier.ImportKeyFromFile(keyPath)
}

// VerifyGPGSignature verifies a detached GPG signature downloaded from a URL
func (g *gpgVerifier) VerifyGPGSignature(ctx context.Context, filePath, sigURL string) error {
	return g.verifier.VerifySignature(ctx, filePath, sigURL)
}

// VerifyGPGSignatureFromFile verifies a detached GPG signature stored locally
func (g *gpgVerifier) VerifyGPGSignatureFromFile(filePath, sigPath string) error {
	return g.verifier.VerifySignatureFromFile(filePath, sigPath)
}

// GetKeyringSize returns the number of keys loaded
func (g *gpgVerifier) GetKeyringSize() int {
	return g.verifier.GetKeyringSize()
}
