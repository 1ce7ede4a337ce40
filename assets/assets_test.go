package assets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/grotto/config"
)

func TestSlotPublishOnce(t *testing.T) {
	var s Slot
	if s.Load() != nil {
		t.Fatal("expected empty slot")
	}

	first := &Model{Name: "geode"}
	if err := s.Publish(first); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := s.Publish(&Model{Name: "other"}); !errors.Is(err, ErrAlreadyPublished) {
		t.Errorf("expected ErrAlreadyPublished, got %v", err)
	}
	if got := s.Load(); got != first {
		t.Errorf("expected first model to stick, got %v", got)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "geode.yaml")
	data := []byte("name: geode\nscale: 2\nclips: [idle, glow]\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewLoader(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "geode" || m.Scale != 2 || len(m.Clips) != 2 {
		t.Errorf("unexpected model: %+v", m)
	}
	if m.Source != path {
		t.Errorf("expected source %q, got %q", path, m.Source)
	}
}

func TestLoadDefaultsScale(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rock.yaml")
	if err := os.WriteFile(path, []byte("name: rock\n"), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := NewLoader(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Scale != 1 {
		t.Errorf("expected default scale 1, got %v", m.Scale)
	}
}

func TestLoadFromHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cactus.yaml" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("name: cactus\n"))
	}))
	defer srv.Close()

	l := NewLoader(DefaultFetcher{Client: srv.Client()})
	m, err := l.Load(context.Background(), srv.URL+"/cactus.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "cactus" {
		t.Errorf("expected cactus, got %q", m.Name)
	}

	if _, err := l.Load(context.Background(), srv.URL+"/missing.yaml"); err == nil {
		t.Error("expected error for 404")
	}
}

func TestLoadAsyncPublishes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lantern.yaml")
	if err := os.WriteFile(path, []byte("name: lantern\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var slot Slot
	<-NewLoader(nil).LoadAsync(context.Background(), path, &slot)

	m := slot.Load()
	if m == nil || m.Name != "lantern" {
		t.Fatalf("expected lantern in slot, got %v", m)
	}
}

func TestLoadAsyncFailureLeavesSlotEmpty(t *testing.T) {
	var slot Slot
	<-NewLoader(nil).LoadAsync(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), &slot)

	if slot.Load() != nil {
		t.Error("expected empty slot after failed load")
	}
}

func TestLoadRejectsBadDescriptor(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"noname.yaml":   "scale: 1\n",
		"badscale.yaml": "name: x\nscale: -1\n",
		"garbage.yaml":  "name: [\n",
	}
	for name, body := range tests {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewLoader(nil).Load(context.Background(), path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestLoadBuiltin(t *testing.T) {
	m, err := NewLoader(nil).Load(context.Background(), "builtin:geode.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "geode" || m.Scale != 1.5 {
		t.Errorf("unexpected model: %+v", m)
	}
	if m.Source != "builtin:geode.yaml" {
		t.Errorf("unexpected source %q", m.Source)
	}
	if _, err := NewLoader(nil).Load(context.Background(), "builtin:missing.yaml"); err == nil {
		t.Error("expected error for a missing builtin descriptor")
	}
}

// Default prop URLs must not depend on the working directory.
func TestDefaultPropsLoadFromAnyDir(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	t.Chdir(t.TempDir())

	for _, name := range cfg.Scenes.Names() {
		sc, _ := cfg.Scenes.Get(name)
		if sc.Prop.URL == "" {
			continue
		}
		if _, err := NewLoader(nil).Load(context.Background(), sc.Prop.URL); err != nil {
			t.Errorf("%s: loading %q: %v", name, sc.Prop.URL, err)
		}
	}
}
