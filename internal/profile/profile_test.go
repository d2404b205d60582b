package profile

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestFromEnv_Defaults(t *testing.T) {
	p := &Profile{}
	p.FromEnv()

	if p.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", p.Provider)
	}
	if p.Language != "default" {
		t.Errorf("Language = %q, want default", p.Language)
	}
	if p.MaxTags != 10 {
		t.Errorf("MaxTags = %d, want 10", p.MaxTags)
	}
	if p.ContentLimit != 4000 {
		t.Errorf("ContentLimit = %d, want 4000", p.ContentLimit)
	}
	if p.ServiceType != "cloud" {
		t.Errorf("ServiceType = %q, want cloud", p.ServiceType)
	}
	if p.VaultRoot != "." {
		t.Errorf("VaultRoot = %q, want .", p.VaultRoot)
	}
}

func TestFromEnv_ReadsEnvironment(t *testing.T) {
	t.Setenv("TAGWISE_PROVIDER", "anthropic")
	t.Setenv("TAGWISE_API_KEY", "sk-test")
	t.Setenv("TAGWISE_MAX_TAGS", "5")

	p := &Profile{}
	p.FromEnv()

	if p.Provider != "anthropic" {
		t.Errorf("Provider = %q, want anthropic", p.Provider)
	}
	if p.APIKey != "sk-test" {
		t.Errorf("APIKey = %q", p.APIKey)
	}
	if p.MaxTags != 5 {
		t.Errorf("MaxTags = %d, want 5", p.MaxTags)
	}
}

func TestFromEnv_FlagsWin(t *testing.T) {
	t.Setenv("TAGWISE_PROVIDER", "anthropic")

	p := &Profile{Provider: "ollama"}
	p.FromEnv()

	if p.Provider != "ollama" {
		t.Errorf("Provider = %q, values set from flags must be kept", p.Provider)
	}
}

func TestFromEnv_BadIntFallsBack(t *testing.T) {
	t.Setenv("TAGWISE_MAX_TAGS", "lots")

	p := &Profile{}
	p.FromEnv()
	if p.MaxTags != 10 {
		t.Errorf("MaxTags = %d, want the default on a bad value", p.MaxTags)
	}
}

func TestValidate_NormalizesMode(t *testing.T) {
	for _, mode := range []string{"", "staging", "DEV"} {
		p := &Profile{Mode: mode, VaultRoot: t.TempDir()}
		if err := p.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if p.Mode != "dev" {
			t.Errorf("Mode %q normalized to %q, want dev", mode, p.Mode)
		}
	}

	p := &Profile{Mode: "prod", VaultRoot: t.TempDir()}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.Mode != "prod" {
		t.Errorf("Mode = %q, want prod kept", p.Mode)
	}
	if p.IsDev() {
		t.Error("IsDev() should be false in prod")
	}
}

func TestValidate_VaultRoot(t *testing.T) {
	root := t.TempDir()
	p := &Profile{VaultRoot: root}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !filepath.IsAbs(p.VaultRoot) {
		t.Errorf("VaultRoot = %q, want absolute", p.VaultRoot)
	}

	p = &Profile{VaultRoot: filepath.Join(root, "missing")}
	if err := p.Validate(); err == nil {
		t.Error("Validate() should fail on a missing vault root")
	}
}

func TestValidate_SqliteDSNDefault(t *testing.T) {
	root := t.TempDir()
	p := &Profile{Mode: "dev", VaultRoot: root, Driver: "sqlite"}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(p.DSN, "tagwise_dev.db") {
		t.Errorf("DSN = %q, want a tagwise_dev.db default", p.DSN)
	}
	if !strings.HasPrefix(p.DSN, p.VaultRoot) {
		t.Errorf("DSN = %q, want it under the vault root when no data dir is set", p.DSN)
	}

	data := t.TempDir()
	p = &Profile{Mode: "prod", VaultRoot: root, Driver: "sqlite", Data: data}
	if err := p.Validate(); err != nil {
		t.Fatal(err)
	}
	if p.DSN != filepath.Join(data, "tagwise_prod.db") {
		t.Errorf("DSN = %q", p.DSN)
	}
}

func TestValidate_PostgresRequiresDSN(t *testing.T) {
	p := &Profile{VaultRoot: t.TempDir(), Driver: "postgres"}
	if err := p.Validate(); err == nil {
		t.Error("Validate() should fail for postgres without a DSN")
	}

	p = &Profile{VaultRoot: t.TempDir(), Driver: "postgres", DSN: "postgres://localhost/tagwise"}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
