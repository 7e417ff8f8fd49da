package gateways

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ochairo/tckwatch/internal/domain/entities"
	"github.com/ochairo/tckwatch/internal/domain/interfaces/gateways"
)

const nettyMetadata = `<metadata>
  <groupId>io.netty</groupId>
  <artifactId>netty-codec-http</artifactId>
  <versioning>
    <versions>
      <version>4.1.86.Final</version>
      <version>4.1.87.Final</version>
    </versions>
  </versioning>
</metadata>`

var netty = entities.Coordinates{Group: "io.netty", Artifact: "netty-codec-http"}

func newTestMavenGateway(baseURL string, retries int) *HTTPMavenGateway {
	g := NewHTTPMavenGateway(entities.MavenConfig{BaseURL: baseURL + "/", Timeout: 5 * time.Second, MaxRetries: retries}, nil)
	g.initialBackoff = time.Millisecond
	return g
}

func TestHTTPMavenGateway_MetadataURL(t *testing.T) {
	g := newTestMavenGateway("https://repo.example.org/maven2", 0)

	got := g.MetadataURL(netty)
	want := "https://repo.example.org/maven2/io/netty/netty-codec-http/maven-metadata.xml"
	if got != want {
		t.Errorf("MetadataURL() = %s, want %s", got, want)
	}

	pom := entities.MavenArtifact{Coordinates: netty.WithVersion("4.1.86.Final"), Extension: "pom"}
	got = g.ArtifactURL(pom)
	want = "https://repo.example.org/maven2/io/netty/netty-codec-http/4.1.86.Final/netty-codec-http-4.1.86.Final.pom"
	if got != want {
		t.Errorf("ArtifactURL() = %s, want %s", got, want)
	}
}

func TestHTTPMavenGateway_FetchMetadata(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/io/netty/netty-codec-http/maven-metadata.xml" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "tckwatch/1.0" {
			t.Errorf("User-Agent = %q", ua)
		}
		_, _ = w.Write([]byte(nettyMetadata))
	}))
	defer server.Close()

	g := newTestMavenGateway(server.URL, 0)
	body, err := g.FetchMetadata(context.Background(), netty)
	if err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	if body != nettyMetadata {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestHTTPMavenGateway_NotFound(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	g := newTestMavenGateway(server.URL, 3)
	_, err := g.FetchMetadata(context.Background(), netty)
	if !errors.Is(err, gateways.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !MavenError.Has(err) {
		t.Errorf("expected maven error class, got %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("404 must not be retried, got %d calls", n)
	}
}

func TestHTTPMavenGateway_RetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(nettyMetadata))
	}))
	defer server.Close()

	g := newTestMavenGateway(server.URL, 3)
	if _, err := g.FetchMetadata(context.Background(), netty); err != nil {
		t.Fatalf("FetchMetadata failed: %v", err)
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestHTTPMavenGateway_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	g := newTestMavenGateway(server.URL, 2)
	if _, err := g.FetchMetadata(context.Background(), netty); err == nil {
		t.Fatal("expected error, got nil")
	}
	if n := calls.Load(); n != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", n)
	}
}

func TestHTTPMavenGateway_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	g := newTestMavenGateway(server.URL, 3)
	_, err := g.FetchMetadata(context.Background(), netty)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if errors.Is(err, gateways.ErrNotFound) {
		t.Errorf("403 must not map to ErrNotFound")
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestHTTPMavenGateway_Checksums(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/io/netty/netty-codec-http/maven-metadata.xml.sha1":
			_, _ = w.Write([]byte("AAF4C61DDCC5E8A2DABEDE0F3B482CD9AEA9434D\n"))
		case "/io/netty/netty-codec-http/4.1.86.Final/netty-codec-http-4.1.86.Final.pom.sha256":
			_, _ = w.Write([]byte("abc123  netty-codec-http-4.1.86.Final.pom\n"))
		case "/io/netty/netty-codec-http/4.1.86.Final/netty-codec-http-4.1.86.Final.pom.sha1":
			_, _ = w.Write([]byte("   "))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	ctx := context.Background()
	g := newTestMavenGateway(server.URL, 0)

	sum, err := g.FetchMetadataChecksum(ctx, netty)
	if err != nil {
		t.Fatalf("FetchMetadataChecksum failed: %v", err)
	}
	if sum != "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d" {
		t.Errorf("checksum = %s", sum)
	}

	pom := entities.MavenArtifact{Coordinates: netty.WithVersion("4.1.86.Final"), Extension: "pom"}
	sum, err = g.FetchArtifactChecksum(ctx, pom, "sha256")
	if err != nil {
		t.Fatalf("FetchArtifactChecksum failed: %v", err)
	}
	if sum != "abc123" {
		t.Errorf("checksum = %s, want abc123", sum)
	}

	if _, err := g.FetchArtifactChecksum(ctx, pom, "sha1"); err == nil {
		t.Error("expected error for empty checksum file")
	}
}

func TestHTTPMavenGateway_DownloadArtifact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<project/>"))
	}))
	defer server.Close()

	g := newTestMavenGateway(server.URL, 0)
	dest := filepath.Join(t.TempDir(), "nested", "a.pom")
	pom := entities.MavenArtifact{Coordinates: netty.WithVersion("4.1.86.Final"), Extension: "pom"}

	if err := g.DownloadArtifact(context.Background(), pom, dest); err != nil {
		t.Fatalf("DownloadArtifact failed: %v", err)
	}

	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "<project/>" {
		t.Errorf("content = %q", data)
	}
}

func TestHTTPMavenGateway_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g := newTestMavenGateway(server.URL, 5)
	if _, err := g.FetchMetadata(ctx, netty); err == nil {
		t.Fatal("expected error for canceled context")
	}
}
