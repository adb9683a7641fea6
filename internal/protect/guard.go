// Package protect provides protected-path detection for mutation guarding.
// Protected paths may be read during conflict resolution but never deleted,
// rewritten, or patched.
package protect

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

// DefaultPatterns defines glob patterns for paths the resolver must not mutate.
var DefaultPatterns = []string{
	"**/.git/**",
	"**/.github/workflows/**",
	"**/secrets/**",
	"**/credentials/**",
	"**/certs/**",
	"**/keys/**",
}

// DefaultKeywords defines substrings that indicate protected files.
var DefaultKeywords = []string{
	"secret",
	"credential",
	"private_key",
}

// DefaultFileTypes defines file extensions that are protected.
var DefaultFileTypes = []string{
	".pem",
	".key",
	".env",
	".p12",
	".pfx",
	".crt",
}

// Guard checks whether file paths may be mutated during conflict resolution.
type Guard struct {
	patterns  []string
	keywords  []string
	fileTypes []string
	mu        sync.RWMutex
}

// mergehandConfig represents the protected section of a .mergehand.yaml file.
type mergehandConfig struct {
	Protected struct {
		Patterns  []string `yaml:"patterns"`
		Keywords  []string `yaml:"keywords"`
		FileTypes []string `yaml:"file_types"`
	} `yaml:"protected"`
}

// NewGuard creates a guard with the default protected set.
func NewGuard() *Guard {
	return &Guard{
		patterns:  append([]string{}, DefaultPatterns...),
		keywords:  append([]string{}, DefaultKeywords...),
		fileTypes: append([]string{}, DefaultFileTypes...),
	}
}

// LoadConfig merges additional protected entries from a .mergehand.yaml file.
func (g *Guard) LoadConfig(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cfg mergehandConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.patterns = append(g.patterns, cfg.Protected.Patterns...)
	g.keywords = append(g.keywords, cfg.Protected.Keywords...)
	g.fileTypes = append(g.fileTypes, cfg.Protected.FileTypes...)

	return nil
}

// AddPattern adds a glob pattern to the protected set.
func (g *Guard) AddPattern(pattern string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.patterns = append(g.patterns, pattern)
}

// IsProtected checks if a path matches any protected criteria.
func (g *Guard) IsProtected(path string) bool {
	protected, _ := g.IsProtectedWithReason(path)
	return protected
}

// IsProtectedWithReason checks if a path is protected and returns the reason,
// so tool results can tell the caller why a mutation was refused.
func (g *Guard) IsProtectedWithReason(path string) (bool, string) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	normalized := filepath.ToSlash(path)
	lower := strings.ToLower(normalized)

	for _, pattern := range g.patterns {
		if matchGlobPattern(normalized, pattern) {
			return true, "path matches protected pattern: " + pattern
		}
	}

	for _, keyword := range g.keywords {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true, "path contains protected keyword: " + keyword
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, protectedExt := range g.fileTypes {
		if ext == strings.ToLower(protectedExt) {
			return true, "file type is protected: " + protectedExt
		}
	}

	return false, ""
}
