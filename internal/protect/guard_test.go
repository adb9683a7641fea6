package protect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGuard_DefaultProtection(t *testing.T) {
	g := NewGuard()

	tests := []struct {
		path      string
		protected bool
	}{
		{".github/workflows/ci.yml", true},
		{"deploy/certs/server.crt", true},
		{"config/app.env", true},
		{"internal/server/secret_store.go", true},
		{"cmd/main.go", false},
		{"README.md", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := g.IsProtected(tt.path); got != tt.protected {
				t.Errorf("IsProtected(%q) = %v, want %v", tt.path, got, tt.protected)
			}
		})
	}
}

func TestGuard_Reason(t *testing.T) {
	g := NewGuard()

	protected, reason := g.IsProtectedWithReason("tls/server.pem")
	if !protected {
		t.Fatal("expected .pem file to be protected")
	}
	if reason == "" {
		t.Error("expected a non-empty reason")
	}
}

func TestGuard_AddPattern(t *testing.T) {
	g := NewGuard()
	g.AddPattern("vendor/**")

	if !g.IsProtected("vendor/modules.txt") {
		t.Error("expected added pattern to protect vendor files")
	}
}

func TestGuard_LoadConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, ".mergehand.yaml")
	config := `protected:
  patterns:
    - "db/migrations/**"
  keywords:
    - "schema"
  file_types:
    - ".sql"
`
	if err := os.WriteFile(configPath, []byte(config), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	g := NewGuard()
	if err := g.LoadConfig(configPath); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	for _, path := range []string{"db/migrations/001_init.sql", "models/schema.go", "seed.sql"} {
		if !g.IsProtected(path) {
			t.Errorf("expected %q to be protected after config load", path)
		}
	}
}

func TestMatchGlobPattern(t *testing.T) {
	tests := []struct {
		path    string
		pattern string
		want    bool
	}{
		{"a/b/c.go", "**/b/**", true},
		{"a/b/c.go", "a/*/c.go", true},
		{"a/b/c.go", "a/b/*.go", true},
		{"a/b/c.go", "x/**", false},
		{"top.go", "**", true},
		{"a/b", "a", false},
	}

	for _, tt := range tests {
		if got := matchGlobPattern(tt.path, tt.pattern); got != tt.want {
			t.Errorf("matchGlobPattern(%q, %q) = %v, want %v", tt.path, tt.pattern, got, tt.want)
		}
	}
}
