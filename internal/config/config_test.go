package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ogsearch/ogsearch/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.ini")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
# comment
; also a comment
db_host = localhost
db_name = catalog
db_user = spider
db_password = secret
start_url = http://example.com
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want localhost", cfg.DBHost)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, want default 5432", cfg.DBPort)
	}
	if cfg.CrawlDepth != 2 {
		t.Errorf("CrawlDepth = %d, want default 2", cfg.CrawlDepth)
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want default 8080", cfg.ServerPort)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
db_host=db.internal
db_port=6543
db_name=catalog
db_user=spider
db_password=secret
start_url=http://example.com
crawl_depth=4
server_port=9090
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.DBPort != 6543 {
		t.Errorf("DBPort = %d, want 6543", cfg.DBPort)
	}
	if cfg.CrawlDepth != 4 {
		t.Errorf("CrawlDepth = %d, want 4", cfg.CrawlDepth)
	}
	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
}

func TestLoadResumeDefaultsOff(t *testing.T) {
	path := writeConfig(t, `
db_host = localhost
db_name = catalog
db_user = spider
db_password = secret
start_url = http://example.com
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ResumeEnabled {
		t.Error("ResumeEnabled = true, want false by default")
	}
	if cfg.ResumePath != "crawl_resume.db" {
		t.Errorf("ResumePath = %q, want default crawl_resume.db", cfg.ResumePath)
	}
}

func TestLoadResumeEnabled(t *testing.T) {
	path := writeConfig(t, `
db_host = localhost
db_name = catalog
db_user = spider
db_password = secret
start_url = http://example.com
resume = true
resume_path = /tmp/custom_resume.db
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !cfg.ResumeEnabled {
		t.Error("ResumeEnabled = false, want true")
	}
	if cfg.ResumePath != "/tmp/custom_resume.db" {
		t.Errorf("ResumePath = %q, want /tmp/custom_resume.db", cfg.ResumePath)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.ini"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestRequireStoreFields(t *testing.T) {
	cfg := &config.Config{}
	if err := cfg.RequireStoreFields(); err == nil {
		t.Fatal("expected error for empty config")
	}

	cfg = &config.Config{DBHost: "h", DBName: "n", DBUser: "u", DBPassword: "p"}
	if err := cfg.RequireStoreFields(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRequireStartURL(t *testing.T) {
	cfg := &config.Config{}
	if err := cfg.RequireStartURL(); err == nil {
		t.Fatal("expected error for empty start_url")
	}
}
