package serverconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsOnly(t *testing.T) {
	s, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if s.Listen != ":8942" || s.WrapWidth != 80 || s.TabWidth != 4 {
		t.Fatalf("unexpected defaults: %+v", s)
	}
}

func TestLoadMissingFileIsNotError(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if s.Listen != ":8942" {
		t.Fatalf("expected defaults, got %+v", s)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collabd.toml")
	content := "[server]\nlisten = \":9000\"\n\n[editor]\nwrapWidth = 100\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Listen != ":9000" || s.WrapWidth != 100 {
		t.Fatalf("file layer not applied: %+v", s)
	}
	if s.TabWidth != 4 {
		t.Fatalf("unrelated default must survive merge, got %+v", s)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "collabd.toml")
	if err := os.WriteFile(path, []byte("[server]\nlisten = \":9000\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COLLABD_LISTEN", ":7777")
	t.Setenv("COLLABD_WRAP_WIDTH", "120")

	s, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Listen != ":7777" {
		t.Fatalf("env must win over file, got listen=%s", s.Listen)
	}
	if s.WrapWidth != 120 {
		t.Fatalf("env int parsing failed, got wrapWidth=%d", s.WrapWidth)
	}
}
