package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestSiteConfig_RequiresRootAndPostsDir(t *testing.T) {
	cfg := SiteConfig{Root: "", PostsDir: "_posts"}
	if err := cfg.Validate(); err == nil {
		t.Error("empty root should fail validation")
	}
	cfg = SiteConfig{Root: ".", PostsDir: ""}
	if err := cfg.Validate(); err == nil {
		t.Error("empty posts_dir should fail validation")
	}
}

func TestSiteConfig_KeywordsPathResolvedAgainstRoot(t *testing.T) {
	cfg := SiteConfig{Root: "/srv/blog", PostsDir: "_posts", KeywordsFile: "_data/keywords.yml"}
	got := cfg.KeywordsPath()
	want := filepath.Join("/srv/blog", "_data/keywords.yml")
	if got != want {
		t.Errorf("KeywordsPath() = %q, want %q", got, want)
	}
}

func TestSiteConfig_KeywordsPathEmptyWhenUnset(t *testing.T) {
	cfg := SiteConfig{Root: "/srv/blog", PostsDir: "_posts"}
	if got := cfg.KeywordsPath(); got != "" {
		t.Errorf("KeywordsPath() = %q, want empty", got)
	}
}

func TestLinkerConfig_MaxLinksBounds(t *testing.T) {
	cfg := LinkerConfig{MaxLinks: 0}
	if err := cfg.Validate(); err == nil {
		t.Error("zero max_links should fail validation")
	}
	cfg = LinkerConfig{MaxLinks: 5}
	if err := cfg.Validate(); err != nil {
		t.Errorf("max_links=5 should pass: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := NewDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Site.KeywordsFile != "_data/keywords.yml" {
		t.Errorf("keywords_file = %q", cfg.Site.KeywordsFile)
	}
	if cfg.Linker.MaxLinks != 5 {
		t.Errorf("max_links = %d, want 5", cfg.Linker.MaxLinks)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}
