package generator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/template"

	"testgen/internal/config"
	"testgen/internal/document"
	"testgen/internal/logger"

	"github.com/tidwall/match"
	"go.uber.org/zap"
)

// Generator renders configuration documents through templates.
type Generator struct {
	templatesDir string
	scope        config.Scope
	stdout       io.Writer
	fileOps      *FileOperations
}

// Option configures a Generator
type Option func(*Generator)

// WithStdout sets the writer used when the output path is "-".
func WithStdout(w io.Writer) Option {
	return func(g *Generator) {
		if w != nil {
			g.stdout = w
		}
	}
}

// New creates a generator for the given settings
func New(settings *config.Settings, opts ...Option) *Generator {
	g := &Generator{
		templatesDir: settings.TemplatesDir,
		scope:        settings.Scope,
		stdout:       os.Stdout,
		fileOps:      NewFileOperations(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// TemplatesDir returns the directory templates are loaded from
func (g *Generator) TemplatesDir() string {
	return g.templatesDir
}

// Generate loads the document at configPath, renders its template and writes
// the result to outputPath. Nothing is written unless rendering succeeds.
func (g *Generator) Generate(ctx context.Context, configPath, outputPath string) error {
	log := logger.FromContext(ctx)

	doc, err := document.Load(configPath)
	if err != nil {
		return err
	}

	log.Debug("Loaded configuration",
		zap.String("config_path", configPath),
		zap.Strings("keys", doc.Keys()))

	rendered, err := g.Render(ctx, doc)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := g.writeOutput(outputPath, rendered); err != nil {
		return err
	}

	log.Debug("Wrote output",
		zap.String("output_path", outputPath),
		zap.Int("bytes", len(rendered)))

	return nil
}

// Render executes the document's template against the context selected by
// the generator's scope. Undefined keys are errors.
func (g *Generator) Render(ctx context.Context, doc *document.Document) ([]byte, error) {
	log := logger.FromContext(ctx)

	name, err := doc.Template()
	if err != nil {
		return nil, err
	}

	set, err := g.loadTemplateSet(ctx, name)
	if err != nil {
		return nil, err
	}

	data := doc.Context(g.scope.Keys()...)

	log.Debug("Rendering template",
		zap.String("template", name),
		zap.String("templates_dir", g.templatesDir),
		zap.String("scope", string(g.scope)),
		zap.Int("context_keys", len(data)))

	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, classifyExecError(name, err)
	}

	return buf.Bytes(), nil
}

// ListTemplates returns the templates available to documents, optionally
// filtered by a glob pattern.
func (g *Generator) ListTemplates(pattern string) ([]string, error) {
	names, err := g.fileOps.ListTemplateFiles(g.templatesDir)
	if err != nil {
		return nil, err
	}

	if pattern == "" {
		return names, nil
	}

	var matched []string
	for _, name := range names {
		if match.Match(name, pattern) {
			matched = append(matched, name)
		}
	}
	return matched, nil
}

// loadTemplateSet parses every template file of the templates directory into
// one set, so templates can call helpers defined in sibling files. A sibling
// that does not parse is skipped; only the selected template must be valid.
func (g *Generator) loadTemplateSet(ctx context.Context, name string) (*template.Template, error) {
	path, err := g.fileOps.ResolveTemplate(g.templatesDir, name)
	if err != nil {
		return nil, err
	}

	names, err := g.fileOps.ListTemplateFiles(g.templatesDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplateNotFound, err)
	}

	set := template.New(name).
		Option("missingkey=error").
		Funcs(GetTemplateFunctions())

	for _, sibling := range names {
		if sibling == name {
			continue
		}
		if err := parseTemplateFile(set.New(sibling), filepath.Join(g.templatesDir, sibling)); err != nil {
			logger.FromContext(ctx).Warn("Skipping template that failed to load",
				zap.String("template", sibling),
				zap.Error(err))
		}
	}

	// parsed last so its own definitions win over siblings
	if err := parseTemplateFile(set, path); err != nil {
		return nil, err
	}

	return set, nil
}

func parseTemplateFile(tmpl *template.Template, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: failed to read %s: %w", ErrTemplateNotFound, path, err)
	}

	if _, err := tmpl.Parse(string(content)); err != nil {
		return fmt.Errorf("%w: %w", ErrTemplateParse, err)
	}

	return nil
}

func (g *Generator) writeOutput(path string, content []byte) error {
	if path == config.StdoutPath {
		if _, err := g.stdout.Write(content); err != nil {
			return fmt.Errorf("%w: failed to write to stdout: %w", ErrOutputWrite, err)
		}
		return nil
	}

	return g.fileOps.WriteFile(path, content, config.OutputFilePerm)
}
