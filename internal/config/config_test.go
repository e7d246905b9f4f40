package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banux/nxt-albums/internal/config"
)

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"LISTEN_ADDR", "ALBUMS_DIR", "RESIZE_WIDTH", "LOG_LEVEL",
		"LISTING_WORKERS", "READ_TIMEOUT", "WRITE_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
}

func TestDefault_Values(t *testing.T) {
	cfg := config.Default()
	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr: got %q, want :8080", cfg.ListenAddr)
	}
	if cfg.AlbumsDir != "." {
		t.Errorf("AlbumsDir: got %q, want .", cfg.AlbumsDir)
	}
	if cfg.ResizeWidth != 800 {
		t.Errorf("ResizeWidth: got %d, want 800", cfg.ResizeWidth)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel: got %q, want info", cfg.LogLevel)
	}
	if cfg.ReadTimeout != 30*time.Second || cfg.WriteTimeout != 2*time.Minute {
		t.Errorf("timeouts: got %v/%v, want 30s/2m", cfg.ReadTimeout, cfg.WriteTimeout)
	}
}

func TestLoad_EmptyPath_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error: %v", err)
	}
	if cfg != config.Default() {
		t.Errorf("Load(\"\"): got %+v, want defaults", cfg)
	}
}

func TestLoad_FromYAMLFile(t *testing.T) {
	yaml := `
listen_addr: ":9090"
albums_dir: "/srv/comics"
resize_width: 1024
log_level: "debug"
listing_workers: 4
read_timeout: "5s"
write_timeout: "0"
`
	path := writeTemp(t, "config.yaml", yaml)
	clearEnv(t)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ListenAddr != ":9090" {
		t.Errorf("ListenAddr: got %q, want :9090", cfg.ListenAddr)
	}
	if cfg.AlbumsDir != "/srv/comics" {
		t.Errorf("AlbumsDir: got %q, want /srv/comics", cfg.AlbumsDir)
	}
	if cfg.ResizeWidth != 1024 {
		t.Errorf("ResizeWidth: got %d, want 1024", cfg.ResizeWidth)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want debug", cfg.LogLevel)
	}
	if cfg.ListingWorkers != 4 {
		t.Errorf("ListingWorkers: got %d, want 4", cfg.ListingWorkers)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout: got %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 0 {
		t.Errorf("WriteTimeout: got %v, want 0 (disabled)", cfg.WriteTimeout)
	}
}

func TestLoad_PartialYAML_UsesDefaults(t *testing.T) {
	// Only override one field; the others should stay at defaults.
	path := writeTemp(t, "partial.yaml", `listen_addr: ":7777"`)
	clearEnv(t)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ListenAddr != ":7777" {
		t.Errorf("ListenAddr: got %q, want :7777", cfg.ListenAddr)
	}
	if cfg.AlbumsDir != "." {
		t.Errorf("AlbumsDir: got %q, want . (default)", cfg.AlbumsDir)
	}
	if cfg.ResizeWidth != 800 {
		t.Errorf("ResizeWidth: got %d, want 800 (default)", cfg.ResizeWidth)
	}
}

func TestLoad_EnvVarsOverrideFile(t *testing.T) {
	yaml := `
listen_addr: ":9090"
albums_dir: "/file/comics"
resize_width: 640
`
	path := writeTemp(t, "config.yaml", yaml)
	clearEnv(t)

	// Environment variables should win over file values.
	t.Setenv("LISTEN_ADDR", ":5555")
	t.Setenv("ALBUMS_DIR", "/env/comics")
	t.Setenv("RESIZE_WIDTH", "320")
	t.Setenv("LOG_LEVEL", "WARN")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.ListenAddr != ":5555" {
		t.Errorf("ListenAddr: got %q, want :5555 (from env)", cfg.ListenAddr)
	}
	if cfg.AlbumsDir != "/env/comics" {
		t.Errorf("AlbumsDir: got %q, want /env/comics (from env)", cfg.AlbumsDir)
	}
	if cfg.ResizeWidth != 320 {
		t.Errorf("ResizeWidth: got %d, want 320 (from env)", cfg.ResizeWidth)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel: got %q, want warn (from env, lower-cased)", cfg.LogLevel)
	}
}

func TestLoad_InvalidEnvNumber_ReturnsError(t *testing.T) {
	clearEnv(t)
	t.Setenv("RESIZE_WIDTH", "wide")
	if _, err := config.Load(""); err == nil {
		t.Error("expected error for non-numeric RESIZE_WIDTH")
	}
}

func TestLoad_InvalidTimeout_ReturnsError(t *testing.T) {
	clearEnv(t)
	t.Setenv("READ_TIMEOUT", "soon")
	if _, err := config.Load(""); err == nil {
		t.Error("expected error for invalid READ_TIMEOUT")
	}
}

func TestLoad_NonexistentFile_ReturnsError(t *testing.T) {
	_, err := config.Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent config file, got nil")
	}
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	path := writeTemp(t, "bad.yaml", "{ invalid yaml: [")
	_, err := config.Load(path)
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestValidate_Defaults(t *testing.T) {
	cfg := config.Default()
	cfg.AlbumsDir = t.TempDir()
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := config.Default()
	cfg.AlbumsDir = filepath.Join(t.TempDir(), "missing")
	cfg.ResizeWidth = 0
	cfg.LogLevel = "chatty"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, field := range []string{"AlbumsDir", "ResizeWidth", "LogLevel"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error %q does not mention %s", err, field)
		}
	}
}

func TestFindConfigFile_EnvVar(t *testing.T) {
	path := writeTemp(t, "explicit.yaml", "listen_addr: \":1234\"")
	t.Setenv("NXT_ALBUMS_CONFIG", path)

	found := config.FindConfigFile()
	if found != path {
		t.Errorf("FindConfigFile: got %q, want %q", found, path)
	}
}

func TestFindConfigFile_NoFile_ReturnsEmpty(t *testing.T) {
	// Ensure no env var and no local file interferes.
	t.Setenv("NXT_ALBUMS_CONFIG", "")

	// Run from a fresh temp directory so there's no nxt-albums.yaml nearby.
	orig, _ := os.Getwd()
	dir := t.TempDir()
	_ = os.Chdir(dir)
	defer func() { _ = os.Chdir(orig) }()

	found := config.FindConfigFile()
	// We can't guarantee there's no ~/.config/nxt-albums/config.yaml on the
	// test machine, so only verify the env-var and local-file cases don't fire.
	if found == "nxt-albums.yaml" {
		t.Error("should not return local nxt-albums.yaml from temp dir")
	}
}

// writeTemp creates a temporary file with the given content and returns its path.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writeTemp: %v", err)
	}
	return path
}
