package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope", "config.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.UI.ZoomStep != 1.1 || cfg.Layout.SpacingX != 220 || cfg.Persist.DebounceMillis != 1000 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestSaveToLoadFromRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	want := DefaultConfig()
	want.UI.Theme = "light"
	want.UI.PreviewWidth = 60
	want.Repositories = []Repository{
		{Name: "essays", Path: "/data/essays"},
		{Name: "Notes", Path: "/data/notes"},
	}

	if err := SaveTo(want, path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if got.UI.Theme != "light" || got.UI.PreviewWidth != 60 {
		t.Errorf("UI lost in roundtrip: %+v", got.UI)
	}
	if len(got.Repositories) != 2 || got.Repositories[0].Path != "/data/essays" {
		t.Errorf("repositories lost: %+v", got.Repositories)
	}
}

func TestLoadFromPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "ui:\n  theme: light\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("theme = %q", cfg.UI.Theme)
	}
	if cfg.Layout.WidthBound != 1400 {
		t.Errorf("unrelated default lost: %+v", cfg.Layout)
	}
}

func TestLoadFromMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("ui: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("malformed yaml should error")
	}
}

func TestFindRepositoryCaseInsensitive(t *testing.T) {
	cfg := Config{Repositories: []Repository{{Name: "Essays", Path: "/data/essays"}}}

	if r := cfg.FindRepository("essays"); r == nil || r.Path != "/data/essays" {
		t.Errorf("lookup failed: %+v", r)
	}
	if r := cfg.FindRepository("missing"); r != nil {
		t.Errorf("phantom repository: %+v", r)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir in this environment")
	}

	if got := expandHome("~/repos/essays"); got != filepath.Join(home, "repos/essays") {
		t.Errorf("got %q", got)
	}
	if got := expandHome("/absolute/path"); got != "/absolute/path" {
		t.Errorf("absolute path changed: %q", got)
	}
}
