package config

// Template lookup
const (
	// TemplatesSubdir is the directory next to the executable holding templates
	TemplatesSubdir = "templates"

	// TemplateField is the document key naming the template to render
	TemplateField = "_template"
)

// Keys forwarded to templates in the restricted scope
const (
	SizesField        = "_sizes"
	ModesField        = "_modes"
	BaseField         = "_base"
	DeltaDefaultField = "_delta_default"
)

// Environment variables read by the CLI
const (
	EnvTemplatesDir = "TESTGEN_TEMPLATES_DIR"
	EnvScope        = "TESTGEN_SCOPE"
	EnvLogLevel     = "TESTGEN_LOG_LEVEL"
)

// Output handling
const (
	// StdoutPath makes the generator write to standard output
	StdoutPath = "-"

	// OutputFilePerm is the permission for generated files
	OutputFilePerm = 0644

	// DefaultLogLevel keeps a build step quiet unless something goes wrong
	DefaultLogLevel = "warn"
)
