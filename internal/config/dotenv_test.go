package config

import (
	"os"
	"path/filepath"
	"testing"

	"testgen/internal/testutil"

	"github.com/joho/godotenv"
)

func TestDotenvSupport(t *testing.T) {
	tempDir := testutil.CreateTempDir(t)

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	defer os.Chdir(originalDir)

	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change to temp directory: %v", err)
	}

	// t.Setenv registers cleanup so the loaded values do not leak
	t.Setenv(EnvTemplatesDir, "")
	t.Setenv(EnvScope, "")
	os.Unsetenv(EnvTemplatesDir)
	os.Unsetenv(EnvScope)

	envContent := EnvTemplatesDir + "=/opt/emunit/templates\n" + EnvScope + "=restricted\n"
	if err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte(envContent), 0644); err != nil {
		t.Fatalf("failed to create .env file: %v", err)
	}

	if err := godotenv.Load(); err != nil {
		t.Fatalf("failed to load .env file: %v", err)
	}

	settings, err := NewSettings(os.Getenv(EnvTemplatesDir), os.Getenv(EnvScope), "")
	if err != nil {
		t.Fatalf("failed to build settings: %v", err)
	}

	if settings.TemplatesDir != "/opt/emunit/templates" {
		t.Errorf("Expected templates dir from .env, got %s", settings.TemplatesDir)
	}
	if settings.Scope != ScopeRestricted {
		t.Errorf("Expected restricted scope from .env, got %s", settings.Scope)
	}
}

func TestDotenvDoesNotOverrideEnvironment(t *testing.T) {
	tempDir := testutil.CreateTempDir(t)

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	defer os.Chdir(originalDir)

	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change to temp directory: %v", err)
	}

	t.Setenv(EnvScope, "document")

	if err := os.WriteFile(filepath.Join(tempDir, ".env"), []byte(EnvScope+"=restricted\n"), 0644); err != nil {
		t.Fatalf("failed to create .env file: %v", err)
	}

	if err := godotenv.Load(); err != nil {
		t.Fatalf("failed to load .env file: %v", err)
	}

	if got := os.Getenv(EnvScope); got != "document" {
		t.Errorf("Expected existing environment to win, got %s", got)
	}
}

func TestDotenvMissingFile(t *testing.T) {
	tempDir := testutil.CreateTempDir(t)

	originalDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get current directory: %v", err)
	}
	defer os.Chdir(originalDir)

	if err := os.Chdir(tempDir); err != nil {
		t.Fatalf("failed to change to temp directory: %v", err)
	}

	// The CLI ignores this error; a missing .env is not fatal
	if err := godotenv.Load(); err == nil {
		t.Error("Expected an error when .env does not exist")
	}
}
