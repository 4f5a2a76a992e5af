package generator

import (
	"errors"
	"fmt"
	"regexp"
	"text/template"
)

var (
	// ErrTemplateNotFound reports a template name with no file in the templates directory.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrTemplateParse reports a template that is not valid template syntax.
	ErrTemplateParse = errors.New("template parse error")

	// ErrTemplateRender reports a template that failed during execution for a
	// reason other than an undefined variable.
	ErrTemplateRender = errors.New("template render error")

	// ErrUndefinedVariable reports a template reference to a key missing from
	// the substitution context.
	ErrUndefinedVariable = errors.New("undefined variable")

	// ErrOutputWrite reports an output path that could not be written.
	ErrOutputWrite = errors.New("output write error")
)

// UndefinedVariableError names the template and key of a strict lookup miss.
type UndefinedVariableError struct {
	Template string
	Key      string
	Err      error
}

func (e *UndefinedVariableError) Error() string {
	return fmt.Sprintf("%s: %q is not defined in template %q: %v", ErrUndefinedVariable, e.Key, e.Template, e.Err)
}

// Is lets errors.Is match ErrUndefinedVariable.
func (e *UndefinedVariableError) Is(target error) bool {
	return target == ErrUndefinedVariable
}

func (e *UndefinedVariableError) Unwrap() error {
	return e.Err
}

var missingKeyPattern = regexp.MustCompile(`map has no entry for key "([^"]*)"`)

// classifyExecError maps a text/template execution error onto the
// generator's error categories. name is used when the error does not say
// which template failed.
func classifyExecError(name string, err error) error {
	var execErr template.ExecError
	if !errors.As(err, &execErr) {
		return fmt.Errorf("%w: %s: %w", ErrTemplateRender, name, err)
	}
	if execErr.Name != "" {
		name = execErr.Name
	}

	// strict index and get report the key themselves
	var undefined *UndefinedVariableError
	if errors.As(err, &undefined) {
		return &UndefinedVariableError{Template: name, Key: undefined.Key, Err: err}
	}

	if m := missingKeyPattern.FindStringSubmatch(execErr.Error()); m != nil {
		return &UndefinedVariableError{Template: name, Key: m[1], Err: err}
	}

	return fmt.Errorf("%w: %s: %w", ErrTemplateRender, name, err)
}
