package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromEnv(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("ABOARD_AUTH_TOKENKEY", "secret")
	t.Setenv("ABOARD_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("ABOARD_STORAGE_BUCKET", "media")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Auth.TokenKey != "secret" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if cfg.Auth.Algorithm != "HS256" || cfg.Database.Path != "data/aboard.db" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	if cfg.Storage.Bucket != "media" || cfg.Storage.KeyPrefix != "aboard" {
		t.Fatalf("storage not applied: %+v", cfg.Storage)
	}
	if cfg.URLTTL().Minutes() != 15 {
		t.Fatalf("unexpected url ttl %v", cfg.URLTTL())
	}
}

func TestLoadRequiresTokenKey(t *testing.T) {
	chdirForTest(t, t.TempDir())
	t.Setenv("ABOARD_AUTH_TOKENKEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected an error without a token key")
	}
}

func TestValidate(t *testing.T) {
	var cfg Config
	cfg.Auth.TokenKey = "secret"
	cfg.Auth.Algorithm = "RS256"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected asymmetric algorithm to be rejected")
	}

	cfg.Auth.Algorithm = "HS512"
	cfg.Admin.Email = "admin@example.com"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected admin password to be required with admin email")
	}

	cfg.Admin.Password = "adminpass1"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadDotEnvKeepsExistingEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nexport ABOARD_TEST_A=\"from-file\"\nABOARD_TEST_B=from-file\nbroken line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ABOARD_TEST_B", "from-env")
	t.Setenv("ABOARD_TEST_A", "")
	os.Unsetenv("ABOARD_TEST_A")

	loadDotEnv(path)

	if got := os.Getenv("ABOARD_TEST_A"); got != "from-file" {
		t.Fatalf("expected value from file, got %q", got)
	}
	if got := os.Getenv("ABOARD_TEST_B"); got != "from-env" {
		t.Fatalf("existing env overwritten: %q", got)
	}
}

// chdirForTest mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("restore cwd: %v", err)
		}
	})
}
