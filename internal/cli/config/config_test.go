package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg == nil {
		t.Fatal("expected config to be non-nil")
	}

	if len(cfg.Platforms) != 7 {
		t.Errorf("expected 7 default platforms, got %v", cfg.Platforms)
	}

	if cfg.CanonicalPlatform != "WPF" {
		t.Errorf("expected default canonical platform 'WPF', got %s", cfg.CanonicalPlatform)
	}

	if cfg.Screenshots.MaxWidth != 800 || cfg.Screenshots.MaxHeight != 600 {
		t.Errorf("expected default screenshot limit 800x600, got %dx%d", cfg.Screenshots.MaxWidth, cfg.Screenshots.MaxHeight)
	}

	if cfg.Portal.Timeout != 10*time.Second {
		t.Errorf("expected default portal timeout 10s, got %s", cfg.Portal.Timeout)
	}

	if cfg.File() != "" {
		t.Errorf("expected no config file, got %s", cfg.File())
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	configContent := `
sample_root: src
platforms: [WPF, XFA]
canonical_platform: UWP
rules_file: tools/propagate.yaml
screenshots:
  max_width: 1024
  max_height: 768
  ignore: ["**/Legacy/**"]
keycheck:
  patterns:
    - name: token
      regex: "tok_[0-9a-z]{16}"
portal:
  enabled: true
  timeout: 5s
log:
  level: debug
  format: json
`
	os.WriteFile("samplekit.yaml", []byte(configContent), 0644)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading config, got %v", err)
	}

	if filepath.Base(cfg.SampleRoot) != "src" || !filepath.IsAbs(cfg.SampleRoot) {
		t.Errorf("expected sample root relative to config file, got %s", cfg.SampleRoot)
	}
	if !sameDir(filepath.Dir(cfg.SampleRoot), tmpDir) {
		t.Errorf("expected sample root under %s, got %s", tmpDir, cfg.SampleRoot)
	}

	if len(cfg.Platforms) != 2 || cfg.Platforms[1] != "XFA" {
		t.Errorf("expected platforms [WPF XFA], got %v", cfg.Platforms)
	}

	if cfg.CanonicalPlatform != "UWP" {
		t.Errorf("expected canonical platform UWP, got %s", cfg.CanonicalPlatform)
	}

	if cfg.Screenshots.MaxWidth != 1024 || len(cfg.Screenshots.Ignore) != 1 {
		t.Errorf("unexpected screenshots config: %+v", cfg.Screenshots)
	}

	if len(cfg.Keycheck.Patterns) != 1 || cfg.Keycheck.Patterns[0].Name != "token" {
		t.Errorf("unexpected keycheck patterns: %+v", cfg.Keycheck.Patterns)
	}

	if !cfg.Portal.Enabled || cfg.Portal.Timeout != 5*time.Second {
		t.Errorf("unexpected portal config: %+v", cfg.Portal)
	}

	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("unexpected log config: %+v", cfg.Log)
	}

	if filepath.Base(cfg.RulesFile) != "propagate.yaml" || !filepath.IsAbs(cfg.RulesFile) {
		t.Errorf("expected absolute rules file, got %s", cfg.RulesFile)
	}
}

func sameDir(a, b string) bool {
	ai, err1 := os.Stat(a)
	bi, err2 := os.Stat(b)
	return err1 == nil && err2 == nil && os.SameFile(ai, bi)
}

func TestLoadExplicitPath(t *testing.T) {
	chdir(t, t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yml")
	os.WriteFile(path, []byte("sample_root: /abs/src\n"), 0644)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.SampleRoot != "/abs/src" {
		t.Errorf("expected absolute sample root to be kept, got %s", cfg.SampleRoot)
	}
	if cfg.File() != path {
		t.Errorf("expected config file %s, got %s", path, cfg.File())
	}

	if _, err := Load(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SAMPLEKIT_CANONICAL_PLATFORM", "Android")
	t.Setenv("SAMPLEKIT_SCREENSHOTS_MAX_WIDTH", "640")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.CanonicalPlatform != "Android" {
		t.Errorf("expected canonical platform from env, got %s", cfg.CanonicalPlatform)
	}
	if cfg.Screenshots.MaxWidth != 640 {
		t.Errorf("expected max width from env, got %d", cfg.Screenshots.MaxWidth)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown platform", "platforms: [WPF, Blackberry]\n"},
		{"unknown canonical platform", "canonical_platform: Nokia\n"},
		{"bad screenshot limit", "screenshots:\n  max_width: 0\n"},
		{"bad log format", "log:\n  format: xml\n"},
		{"bad portal url", "portal:\n  enabled: true\n  url: ftp://example.com\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chdir(t, t.TempDir())
			os.WriteFile("samplekit.yaml", []byte(tt.content), 0644)
			if _, err := Load(""); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

func TestFindSampleRoot(t *testing.T) {
	repo := t.TempDir()
	src := filepath.Join(repo, "src")
	if err := os.MkdirAll(filepath.Join(src, "WPF", "ArcGISRuntime.WPF.Viewer", "Samples", "Map"), 0755); err != nil {
		t.Fatal(err)
	}

	root, err := FindSampleRoot(filepath.Join(src, "WPF", "ArcGISRuntime.WPF.Viewer", "Samples", "Map"))
	if err != nil {
		t.Fatalf("expected sample root, got error %v", err)
	}
	if root != src {
		t.Errorf("expected %s, got %s", src, root)
	}

	root, err = FindSampleRoot(repo)
	if err != nil || root != src {
		t.Errorf("expected src below repository root, got %s (%v)", root, err)
	}

	if _, err := FindSampleRoot(t.TempDir()); err == nil {
		t.Error("expected error outside a sample repository")
	}
}
