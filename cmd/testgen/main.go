package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"testgen/internal/config"
	"testgen/internal/document"
	"testgen/internal/generator"
	"testgen/internal/logger"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// Build-time variables (set by ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes reported for each failure category
const (
	exitGeneric          = 1
	exitConfigParse      = 2
	exitMissingField     = 3
	exitTemplateNotFound = 4
	exitTemplate         = 5
	exitOutputWrite      = 6
)

var errUsage = errors.New("usage error")

func main() {
	// Load .env file if it exists (ignore errors for optional file)
	_ = godotenv.Load()

	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "testgen: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newApp(stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "testgen",
		Usage:     "Render unit test sources from a JSON configuration and a template",
		UsageText: "testgen -c <config.json> -o <output> [options]",
		Version:   fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		Writer:    stdout,
		ErrWriter: stderr,
		Action:    generateCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "the test JSON (or YAML) configuration file",
				TakesFile: true,
				Local:     true,
			},
			&cli.StringFlag{
				Name:      "output",
				Aliases:   []string{"o"},
				Usage:     "the file where the output is saved (\"-\" for stdout)",
				TakesFile: true,
				Local:     true,
			},
			&cli.StringFlag{
				Name:    "scope",
				Usage:   "keys visible to the template: document or restricted",
				Value:   string(config.ScopeDocument),
				Sources: cli.EnvVars(config.EnvScope),
				Local:   true,
			},
			&cli.StringFlag{
				Name:      "templates-dir",
				Usage:     "directory holding the templates (default: templates next to the executable)",
				TakesFile: true,
				Sources:   cli.EnvVars(config.EnvTemplatesDir),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set log level (debug, info, warn, error)",
				Value:   config.DefaultLogLevel,
				Sources: cli.EnvVars(config.EnvLogLevel),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "templates",
				Usage:  "List the templates available to configuration documents",
				Action: templatesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "match",
						Aliases: []string{"m"},
						Usage:   "only list templates matching this glob pattern",
					},
				},
			},
		},
	}
}

func generateCommand(ctx context.Context, cmd *cli.Command) error {
	configPath := strings.TrimSpace(cmd.String("config"))
	outputPath := strings.TrimSpace(cmd.String("output"))

	var missing []string
	if configPath == "" {
		missing = append(missing, "--config")
	}
	if outputPath == "" {
		missing = append(missing, "--output")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: required flags %s not set", errUsage, strings.Join(missing, ", "))
	}

	settings, ctx, err := setup(ctx, cmd, cmd.String("scope"))
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.Info("Generating test source",
		zap.String("version", Version),
		zap.String("config_path", configPath),
		zap.String("output_path", outputPath),
		zap.String("templates_dir", settings.TemplatesDir),
		zap.String("scope", string(settings.Scope)),
	)

	gen := generator.New(settings, generator.WithStdout(cmd.Root().Writer))
	if err := gen.Generate(ctx, configPath, outputPath); err != nil {
		log.Debug("Generation failed", zap.Error(err))
		return err
	}

	log.Info("Generated test source", zap.String("output_path", outputPath))
	return nil
}

func templatesCommand(ctx context.Context, cmd *cli.Command) error {
	settings, ctx, err := setup(ctx, cmd, "")
	if err != nil {
		return err
	}

	gen := generator.New(settings)
	names, err := gen.ListTemplates(cmd.String("match"))
	if err != nil {
		return err
	}

	logger.FromContext(ctx).Debug("Listed templates",
		zap.String("templates_dir", gen.TemplatesDir()),
		zap.Int("count", len(names)))

	for _, name := range names {
		fmt.Fprintln(cmd.Root().Writer, name)
	}
	return nil
}

// setup resolves the tool settings and installs the logger in ctx.
func setup(ctx context.Context, cmd *cli.Command, scope string) (*config.Settings, context.Context, error) {
	logLevelStr := cmd.String("log-level")
	if cmd.Bool("verbose") {
		logLevelStr = string(logger.DebugLevel)
	}

	settings, err := config.NewSettings(cmd.String("templates-dir"), scope, logLevelStr)
	if err != nil {
		return nil, ctx, fmt.Errorf("%w: %w", errUsage, err)
	}

	logLevel, err := logger.ParseLogLevel(settings.LogLevel)
	if err != nil {
		return nil, ctx, fmt.Errorf("%w: %w", errUsage, err)
	}

	ctx, err = logger.SetupContextWithWriter(ctx, logLevel, cmd.Root().ErrWriter)
	if err != nil {
		return nil, ctx, fmt.Errorf("failed to setup logger: %w", err)
	}

	return settings, ctx, nil
}

// exitCode maps an error onto the process exit status
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, document.ErrConfigParse):
		return exitConfigParse
	case errors.Is(err, document.ErrMissingField):
		return exitMissingField
	case errors.Is(err, generator.ErrTemplateNotFound):
		return exitTemplateNotFound
	case errors.Is(err, generator.ErrUndefinedVariable),
		errors.Is(err, generator.ErrTemplateParse),
		errors.Is(err, generator.ErrTemplateRender):
		return exitTemplate
	case errors.Is(err, generator.ErrOutputWrite):
		return exitOutputWrite
	default:
		return exitGeneric
	}
}
