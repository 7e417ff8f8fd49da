package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/gateways"
	"github.com/zeebo/errs"
)

// MavenError is the error class of the Maven gateway
var MavenError = errs.Class("maven")

const (
	// Initial backoff duration
	initialBackoff = 1 * time.Second
	// Max backoff duration
	maxBackoff = 32 * time.Second
	// Upper bound for any single repository document
	maxDocumentSize = 32 << 20
)

// HTTPMavenGateway implements gateways.MavenGateway against a Maven 2 layout repository
type HTTPMavenGateway struct {
	baseURL        string
	httpClient     *http.Client
	maxRetries     int
	initialBackoff time.Duration
	userAgent      string
	logger         interfaces.Logger
}

// NewHTTPMavenGateway creates a gateway for the configured repository
func NewHTTPMavenGateway(cfg entities.MavenConfig, logger interfaces.Logger) *HTTPMavenGateway {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &HTTPMavenGateway{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		maxRetries:     cfg.MaxRetries,
		initialBackoff: initialBackoff,
		userAgent:      "tckwatch/1.0",
		logger:         logger,
	}
}

// MetadataURL returns the maven-metadata.xml location of a library
func (g *HTTPMavenGateway) MetadataURL(library entities.Coordinates) string {
	return fmt.Sprintf("%s/%s/%s/maven-metadata.xml", g.baseURL, library.GroupPath(), library.Artifact)
}

// ArtifactURL returns the absolute URL of an artifact
func (g *HTTPMavenGateway) ArtifactURL(artifact entities.MavenArtifact) string {
	return g.baseURL + "/" + artifact.Path()
}

// FetchMetadata returns the raw maven-metadata.xml document of a library
func (g *HTTPMavenGateway) FetchMetadata(ctx context.Context, library entities.Coordinates) (string, error) {
	body, err := g.fetch(ctx, g.MetadataURL(library))
	if err != nil {
		return "", MavenError.Wrap(fmt.Errorf("failed to fetch metadata for %s: %w", library.Module(), err))
	}
	return string(body), nil
}

// FetchMetadataChecksum returns the published SHA-1 of maven-metadata.xml
func (g *HTTPMavenGateway) FetchMetadataChecksum(ctx context.Context, library entities.Coordinates) (string, error) {
	body, err := g.fetch(ctx, g.MetadataURL(library)+".sha1")
	if err != nil {
		return "", MavenError.Wrap(fmt.Errorf("failed to fetch metadata checksum for %s: %w", library.Module(), err))
	}
	return parseChecksumFile(body)
}

// FetchArtifactChecksum returns the digest published next to an artifact (extension "sha1", "sha256", ...)
func (g *HTTPMavenGateway) FetchArtifactChecksum(ctx context.Context, artifact entities.MavenArtifact, extension string) (string, error) {
	body, err := g.fetch(ctx, g.ArtifactURL(artifact)+"."+extension)
	if err != nil {
		return "", MavenError.Wrap(fmt.Errorf("failed to fetch %s checksum of %s: %w", extension, artifact.FileName(), err))
	}
	return parseChecksumFile(body)
}

// DownloadArtifact stores an artifact at destPath
func (g *HTTPMavenGateway) DownloadArtifact(ctx context.Context, artifact entities.MavenArtifact, destPath string) error {
	body, err := g.fetch(ctx, g.ArtifactURL(artifact))
	if err != nil {
		return MavenError.Wrap(fmt.Errorf("failed to download %s: %w", artifact.FileName(), err))
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0750); err != nil {
		return MavenError.Wrap(err)
	}
	if err := os.WriteFile(destPath, body, 0600); err != nil {
		return MavenError.Wrap(fmt.Errorf("failed to write file: %w", err))
	}

	g.logger.Debug("downloaded artifact",
		interfaces.F("file", artifact.FileName()),
		interfaces.F("bytes", len(body)))
	return nil
}

// fetch performs a GET with exponential backoff on network errors and retryable statuses
func (g *HTTPMavenGateway) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("User-Agent", g.userAgent)

		resp, err := g.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			// Network errors are retryable
			return fmt.Errorf("HTTP request failed: %w", err)
		}
		//nolint:errcheck // Defer close
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%s: %w", url, gateways.ErrNotFound))
		case isRetryableError(resp.StatusCode):
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, url)
		default:
			return backoff.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, url))
		}

		body, err = io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		g.logger.Warn("retrying Maven request",
			interfaces.F("url", url),
			interfaces.F("error", err),
			interfaces.F("wait", wait.String()))
	}

	if err := backoff.RetryNotify(operation, g.newBackOff(ctx), notify); err != nil {
		return nil, err
	}
	return body, nil
}

func (g *HTTPMavenGateway) newBackOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.initialBackoff
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0
	var policy backoff.BackOff = b
	if g.maxRetries >= 0 {
		policy = backoff.WithMaxRetries(b, uint64(g.maxRetries))
	}
	return backoff.WithContext(policy, ctx)
}

// isRetryableError checks if an HTTP status code is retryable
func isRetryableError(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests, // 429
		http.StatusInternalServerError, // 500
		http.StatusBadGateway,          // 502
		http.StatusServiceUnavailable,  // 503
		http.StatusGatewayTimeout:      // 504
		return true
	default:
		return false
	}
}

// parseChecksumFile accepts both "<hex>" and "<hex>  <file name>" layouts
func parseChecksumFile(body []byte) (string, error) {
	fields := strings.Fields(string(body))
	if len(fields) == 0 {
		return "", MavenError.New("empty checksum file")
	}
	return strings.ToLower(fields[0]), nil
}
