package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg != want {
		t.Errorf("Load(\"\") = %+v, want %+v", cfg, want)
	}
}

func TestLoadMissingOverlayIsNotFatal(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load with missing overlay = %+v, want defaults", cfg)
	}
}

func TestLoadOverlayOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitam.toml")
	if err := os.WriteFile(path, []byte("reflog_action = \"replay\"\nadvice_amworkdir = false\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReflogAction != "replay" {
		t.Errorf("ReflogAction = %q, want replay", cfg.ReflogAction)
	}
	if cfg.AdviceAMWorkDir {
		t.Errorf("AdviceAMWorkDir = true, want false")
	}
}

func TestLoadEnvOverridesOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitam.toml")
	if err := os.WriteFile(path, []byte("reflog_action = \"replay\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("GIT_REFLOG_ACTION", "rebase")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ReflogAction != "rebase" {
		t.Errorf("ReflogAction = %q, want rebase (env should win)", cfg.ReflogAction)
	}
}

func TestLoadUseBuiltinAMFromEnv(t *testing.T) {
	t.Setenv("_GIT_USE_BUILTIN_AM", "0")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UseBuiltinAM {
		t.Errorf("UseBuiltinAM = true, want false")
	}
}
