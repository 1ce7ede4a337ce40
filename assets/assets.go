// Package assets loads prop descriptors asynchronously and hands them to the frame loop.
package assets

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync/atomic"

	"gopkg.in/yaml.v3"
)

// ErrAlreadyPublished is returned when a slot is published twice.
var ErrAlreadyPublished = errors.New("assets: slot already published")

// BuiltinScheme addresses the prop descriptors compiled into the binary,
// e.g. "builtin:geode.yaml".
const BuiltinScheme = "builtin"

//go:embed props/*.yaml
var builtinProps embed.FS

// Model is a loaded prop: a named scene-graph fragment and its animation clips.
// Geometry stays with the renderer; the animator only needs the handle.
type Model struct {
	Name   string   `yaml:"name"`
	Scale  float64  `yaml:"scale"`
	Color  string   `yaml:"color"`
	Clips  []string `yaml:"clips"`
	Source string   `yaml:"-"`
}

// Slot is a single-producer, single-consumer handoff for one Model.
// The loader publishes exactly once; the frame loop polls without blocking.
type Slot struct {
	model atomic.Pointer[Model]
}

// Publish stores m. Only the first publish succeeds.
func (s *Slot) Publish(m *Model) error {
	if m == nil {
		return fmt.Errorf("assets: publishing nil model")
	}
	if !s.model.CompareAndSwap(nil, m) {
		return ErrAlreadyPublished
	}
	return nil
}

// Load returns the published model, or nil if loading has not finished (or failed).
func (s *Slot) Load() *Model {
	return s.model.Load()
}

// Fetcher retrieves the raw bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// DefaultFetcher reads builtin: descriptors, file paths, file:// URLs and http(s) URLs.
type DefaultFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher.
func (f DefaultFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing asset url: %w", err)
	}

	switch u.Scheme {
	case BuiltinScheme:
		name := u.Opaque
		if name == "" {
			name = strings.TrimPrefix(u.Path, "/")
		}
		data, err := builtinProps.ReadFile(path.Join("props", name))
		if err != nil {
			return nil, fmt.Errorf("reading builtin asset %q: %w", name, err)
		}
		return data, nil
	case "", "file":
		file := rawURL
		if u.Scheme == "file" {
			file = u.Path
		}
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("reading asset: %w", err)
		}
		return data, nil
	case "http", "https":
		client := f.Client
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("building asset request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching asset: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching asset: unexpected status %s", resp.Status)
		}
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading asset body: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("unsupported asset scheme %q", u.Scheme)
}

// Loader resolves prop descriptors in the background.
type Loader struct {
	fetcher Fetcher
}

// NewLoader creates a loader. A nil fetcher uses DefaultFetcher.
func NewLoader(f Fetcher) *Loader {
	if f == nil {
		f = DefaultFetcher{}
	}
	return &Loader{fetcher: f}
}

// Load fetches and decodes a prop descriptor synchronously.
func (l *Loader) Load(ctx context.Context, rawURL string) (*Model, error) {
	data, err := l.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	m := &Model{Scale: 1}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decoding asset %s: %w", rawURL, err)
	}
	if strings.TrimSpace(m.Name) == "" {
		return nil, fmt.Errorf("decoding asset %s: missing name", rawURL)
	}
	if m.Scale <= 0 {
		return nil, fmt.Errorf("decoding asset %s: scale must be positive, got %v", rawURL, m.Scale)
	}
	m.Source = rawURL
	return m, nil
}

// LoadAsync loads rawURL on its own goroutine and publishes the result to slot.
// Failures are logged and leave the slot empty; the returned channel is closed when done.
func (l *Loader) LoadAsync(ctx context.Context, rawURL string, slot *Slot) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		m, err := l.Load(ctx, rawURL)
		if err != nil {
			slog.Warn("prop load failed, continuing without it", "url", rawURL, "error", err)
			return
		}
		if err := slot.Publish(m); err != nil {
			slog.Warn("prop load discarded", "url", rawURL, "error", err)
			return
		}
		slog.Info("prop loaded", "url", rawURL, "name", m.Name, "clips", len(m.Clips))
	}()
	return done
}
