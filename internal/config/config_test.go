package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		input       string
		expected    Scope
		expectError bool
	}{
		{input: "", expected: ScopeDocument},
		{input: "document", expected: ScopeDocument},
		{input: " Restricted ", expected: ScopeRestricted},
		{input: "RESTRICTED", expected: ScopeRestricted},
		{input: "partial", expected: ScopeDocument, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			scope, err := ParseScope(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, scope)
		})
	}
}

func TestScope_Keys(t *testing.T) {
	assert.Nil(t, ScopeDocument.Keys())
	assert.Equal(t, []string{"_sizes", "_modes", "_base", "_delta_default"}, ScopeRestricted.Keys())

	// callers may modify the returned slice
	keys := ScopeRestricted.Keys()
	keys[0] = "changed"
	assert.Equal(t, SizesField, ScopeRestricted.Keys()[0])
}

func TestNewSettings(t *testing.T) {
	t.Run("explicit values", func(t *testing.T) {
		settings, err := NewSettings(" /opt/testgen/templates ", "restricted", "debug")
		require.NoError(t, err)

		assert.Equal(t, "/opt/testgen/templates", settings.TemplatesDir)
		assert.Equal(t, ScopeRestricted, settings.Scope)
		assert.Equal(t, "debug", settings.LogLevel)
	})

	t.Run("defaults", func(t *testing.T) {
		settings, err := NewSettings("", "", "")
		require.NoError(t, err)

		expectedDir, err := DefaultTemplatesDir()
		require.NoError(t, err)

		assert.Equal(t, expectedDir, settings.TemplatesDir)
		assert.Equal(t, ScopeDocument, settings.Scope)
		assert.Equal(t, DefaultLogLevel, settings.LogLevel)
	})

	t.Run("invalid scope", func(t *testing.T) {
		_, err := NewSettings("templates", "everything", "")
		assert.Error(t, err)
	})
}

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name        string
		settings    Settings
		expectError bool
	}{
		{
			name:     "valid",
			settings: Settings{TemplatesDir: "templates", Scope: ScopeDocument},
		},
		{
			name:        "missing templates dir",
			settings:    Settings{Scope: ScopeDocument},
			expectError: true,
		},
		{
			name:        "unknown scope",
			settings:    Settings{TemplatesDir: "templates", Scope: Scope("global")},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultTemplatesDir(t *testing.T) {
	dir, err := DefaultTemplatesDir()
	require.NoError(t, err)

	assert.Equal(t, TemplatesSubdir, filepath.Base(dir))

	exe, err := os.Executable()
	require.NoError(t, err)
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	assert.Equal(t, filepath.Dir(exe), filepath.Dir(dir))
}
