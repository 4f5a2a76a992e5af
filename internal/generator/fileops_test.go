package generator

import (
	"os"
	"path/filepath"
	"testing"

	"testgen/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileOperations_ValidateTemplateName(t *testing.T) {
	fileOps := NewFileOperations()

	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		{name: "plain file", input: "test_delta.c.tmpl"},
		{name: "subdirectory", input: "suites/test_range.c.tmpl"},
		{name: "dot segments that stay inside", input: "suites/../test_delta.c.tmpl"},
		{name: "empty", input: "", expectError: true},
		{name: "absolute", input: "/etc/passwd", expectError: true},
		{name: "parent directory", input: "../test.tmpl", expectError: true},
		{name: "climbs out after descending", input: "a/../../x.tmpl", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fileOps.ValidateTemplateName(tt.input)
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileOperations_ResolveTemplate(t *testing.T) {
	fileOps := NewFileOperations()
	_, templatesDir := testutil.TemplateWorkspace(t, map[string]string{
		"hello.txt.tmpl":  "hi",
		"suites/a.c.tmpl": "a",
	})

	path, err := fileOps.ResolveTemplate(templatesDir, "hello.txt.tmpl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(templatesDir, "hello.txt.tmpl"), path)

	path, err = fileOps.ResolveTemplate(templatesDir, "suites/a.c.tmpl")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(templatesDir, "suites", "a.c.tmpl"), path)

	_, err = fileOps.ResolveTemplate(templatesDir, "suites")
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = fileOps.ResolveTemplate(templatesDir, "absent.tmpl")
	assert.ErrorIs(t, err, ErrTemplateNotFound)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFileOperations_ListTemplateFiles_Symlink(t *testing.T) {
	fileOps := NewFileOperations()
	root, templatesDir := testutil.TemplateWorkspace(t, map[string]string{
		"b.tmpl": "b",
	})
	target := testutil.CreateTempFile(t, root, "shared.tmpl", "shared")
	if err := os.Symlink(target, filepath.Join(templatesDir, "a.tmpl")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "dangling"), filepath.Join(templatesDir, "c.tmpl")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	names, err := fileOps.ListTemplateFiles(templatesDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.tmpl", "b.tmpl"}, names)
}

func TestFileOperations_ListTemplateFiles_MissingDir(t *testing.T) {
	fileOps := NewFileOperations()
	dir := testutil.CreateTempDir(t)
	file := testutil.CreateTempFile(t, dir, "f.txt", "x")

	_, err := fileOps.ListTemplateFiles(filepath.Join(dir, "absent"))
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	_, err = fileOps.ListTemplateFiles(file)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestFileOperations_DirectoryExists(t *testing.T) {
	fileOps := NewFileOperations()
	dir := testutil.CreateTempDir(t)
	file := testutil.CreateTempFile(t, dir, "f.txt", "x")

	assert.True(t, fileOps.DirectoryExists(dir))
	assert.False(t, fileOps.DirectoryExists(file))
	assert.False(t, fileOps.DirectoryExists(filepath.Join(dir, "absent")))
	assert.False(t, fileOps.DirectoryExists(""))
}

func TestFileOperations_WriteFile(t *testing.T) {
	fileOps := NewFileOperations()
	dir := testutil.CreateTempDir(t)
	path := filepath.Join(dir, "out.c")

	require.NoError(t, fileOps.WriteFile(path, []byte("first version"), 0644))
	require.NoError(t, fileOps.WriteFile(path, []byte("second"), 0644))
	assert.Equal(t, "second", testutil.ReadFile(t, path))

	err := fileOps.WriteFile(filepath.Join(dir, "no", "such", "dir.c"), []byte("x"), 0644)
	assert.ErrorIs(t, err, ErrOutputWrite)
}
