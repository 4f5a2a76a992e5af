package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Scope selects which document keys are visible to a template.
type Scope string

const (
	// ScopeDocument exposes every top-level key of the document, _template included.
	ScopeDocument Scope = "document"

	// ScopeRestricted exposes only _sizes, _modes, _base and _delta_default.
	ScopeRestricted Scope = "restricted"
)

// ParseScope parses a scope name. An empty name selects ScopeDocument.
func ParseScope(name string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", string(ScopeDocument):
		return ScopeDocument, nil
	case string(ScopeRestricted):
		return ScopeRestricted, nil
	default:
		return ScopeDocument, fmt.Errorf("invalid scope %q (expected %q or %q)", name, ScopeDocument, ScopeRestricted)
	}
}

// Keys returns the keys forwarded to the template, or nil when the whole
// document is forwarded.
func (s Scope) Keys() []string {
	if s == ScopeRestricted {
		return []string{SizesField, ModesField, BaseField, DeltaDefaultField}
	}
	return nil
}

// Settings holds the tool settings resolved from flags, environment and defaults.
type Settings struct {
	TemplatesDir string
	Scope        Scope
	LogLevel     string
}

// NewSettings builds validated settings. Empty values fall back to defaults.
func NewSettings(templatesDir, scope, logLevel string) (*Settings, error) {
	parsedScope, err := ParseScope(scope)
	if err != nil {
		return nil, err
	}

	settings := &Settings{
		TemplatesDir: strings.TrimSpace(templatesDir),
		Scope:        parsedScope,
		LogLevel:     strings.TrimSpace(logLevel),
	}

	if err := setDefaults(settings); err != nil {
		return nil, err
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	return settings, nil
}

// Validate checks that the settings can drive a generator.
func (s *Settings) Validate() error {
	if s.TemplatesDir == "" {
		return fmt.Errorf("templates directory is required")
	}

	if _, err := ParseScope(string(s.Scope)); err != nil {
		return err
	}

	return nil
}

func setDefaults(settings *Settings) error {
	if settings.TemplatesDir == "" {
		dir, err := DefaultTemplatesDir()
		if err != nil {
			return fmt.Errorf("failed to resolve default templates directory: %w", err)
		}
		settings.TemplatesDir = dir
	}
	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}
	return nil
}

// DefaultTemplatesDir returns the templates directory next to the running
// executable, with symlinks resolved.
func DefaultTemplatesDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Join(filepath.Dir(exe), TemplatesSubdir), nil
}
