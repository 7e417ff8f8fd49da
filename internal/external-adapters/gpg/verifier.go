// Package gpg verifies detached OpenPGP signatures published next to Maven artifacts.
package gpg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/ProtonMail/go-crypto/openpgp"
	"github.com/zeebo/errs"
)

// Error is the class of all signature verification failures
var Error = errs.Class("gpg")

const (
	maxKeysSize      = 10 << 20
	maxSignatureSize = 10 << 10
	armorPrefix      = "-----BEGIN PGP SIGNATURE-----"
)

// Verifier checks signatures against an in-memory keyring
type Verifier struct {
	keyring    openpgp.EntityList
	httpClient *http.Client
}

// NewVerifier creates a verifier with an empty keyring
func NewVerifier() *Verifier {
	return &Verifier{
		keyring: make(openpgp.EntityList, 0),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ImportKeys adds every public key found in r. Armored and binary keyrings are accepted.
func (v *Verifier) ImportKeys(r io.Reader) error {
	data, err := io.ReadAll(io.LimitReader(r, maxKeysSize))
	if err != nil {
		return Error.Wrap(err)
	}

	entities, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		entities, err = openpgp.ReadKeyRing(bytes.NewReader(data))
		if err != nil {
			return Error.New("failed to read key: %v", err)
		}
	}
	if len(entities) == 0 {
		return Error.New("no keys found")
	}

	v.keyring = append(v.keyring, entities...)
	return nil
}

// ImportKeysFromURL imports a KEYS file, as published by most Maven Central projects
func (v *Verifier) ImportKeysFromURL(ctx context.Context, keysURL string) error {
	body, err := v.get(ctx, keysURL)
	if err != nil {
		return Error.New("failed to download KEYS file: %v", err)
	}
	//nolint:errcheck // Defer close
	defer body.Close()

	return v.ImportKeys(body)
}

// ImportKeyFromFile imports the keys stored in a local file
func (v *Verifier) ImportKeyFromFile(keyPath string) error {
	//nolint:gosec // G304: keyPath is chosen by the operator
	f, err := os.Open(keyPath)
	if err != nil {
		return Error.New("failed to open key file: %v", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	return v.ImportKeys(f)
}

// VerifySignature downloads a detached signature and checks filePath against it
func (v *Verifier) VerifySignature(ctx context.Context, filePath, sigURL string) error {
	if len(v.keyring) == 0 {
		return Error.New("no GPG keys imported")
	}

	body, err := v.get(ctx, sigURL)
	if err != nil {
		return Error.New("failed to download signature: %v", err)
	}
	//nolint:errcheck // Defer close
	defer body.Close()

	sig, err := io.ReadAll(io.LimitReader(body, maxSignatureSize))
	if err != nil {
		return Error.New("failed to read signature: %v", err)
	}

	//nolint:gosec // G304: filePath was written by the verify command
	f, err := os.Open(filePath)
	if err != nil {
		return Error.New("failed to open file: %v", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	return v.check(f, sig)
}

// VerifySignatureFromFile checks filePath against a local detached signature
func (v *Verifier) VerifySignatureFromFile(filePath, sigPath string) error {
	if len(v.keyring) == 0 {
		return Error.New("no GPG keys imported")
	}

	//nolint:gosec // G304: sigPath is chosen by the operator
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return Error.New("failed to read signature file: %v", err)
	}

	//nolint:gosec // G304: filePath is chosen by the operator
	f, err := os.Open(filePath)
	if err != nil {
		return Error.New("failed to open data file: %v", err)
	}
	//nolint:errcheck // Defer close
	defer f.Close()

	return v.check(f, sig)
}

func (v *Verifier) check(signed io.Reader, sig []byte) error {
	if len(sig) < 10 {
		return Error.New("signature too small to be valid")
	}

	var err error
	if bytes.HasPrefix(bytes.TrimSpace(sig), []byte(armorPrefix)) {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, signed, bytes.NewReader(sig), nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, signed, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return Error.New("signature verification failed: %v", err)
	}
	return nil
}

func (v *Verifier) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// GetKeyringSize returns the number of keys in the keyring
func (v *Verifier) GetKeyringSize() int {
	return len(v.keyring)
}
