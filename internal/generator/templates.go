package generator

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/spf13/cast"
)

// GetTemplateFunctions returns the sprig function map extended with the
// helpers test templates rely on. The builtin index and sprig's get are
// replaced with versions that fail on a missing map key, like field access
// under missingkey=error.
func GetTemplateFunctions() template.FuncMap {
	funcs := sprig.TxtFuncMap()
	funcs["indent"] = indentFunction
	funcs["format"] = formatFunction
	funcs["pow"] = powFunction
	funcs["index"] = indexFunction
	funcs["get"] = getFunction
	return funcs
}

func missingKey(key any) error {
	name := fmt.Sprint(key)
	return &UndefinedVariableError{
		Key: name,
		Err: fmt.Errorf("map has no entry for key %q", name),
	}
}

// indexFunction is the builtin index with strict map lookups.
func indexFunction(item any, indexes ...any) (any, error) {
	v := reflect.ValueOf(item)
	for _, index := range indexes {
		v = indirect(v)
		if !v.IsValid() {
			return nil, fmt.Errorf("index of untyped nil")
		}

		switch v.Kind() {
		case reflect.Map:
			key, err := mapKey(v.Type().Key(), index)
			if err != nil {
				return nil, err
			}
			elem := v.MapIndex(key)
			if !elem.IsValid() {
				return nil, missingKey(index)
			}
			v = elem

		case reflect.Slice, reflect.Array, reflect.String:
			i, err := toInt64(index)
			if err != nil {
				return nil, fmt.Errorf("cannot index %s with %v: %w", v.Type(), index, err)
			}
			if i < 0 || i >= int64(v.Len()) {
				return nil, fmt.Errorf("index out of range: %d", i)
			}
			v = v.Index(int(i))

		default:
			return nil, fmt.Errorf("can't index item of type %s", v.Type())
		}
	}

	v = indirect(v)
	if !v.IsValid() {
		return nil, nil
	}
	return v.Interface(), nil
}

// getFunction is sprig's get with a strict lookup.
func getFunction(d map[string]any, key string) (any, error) {
	value, ok := d[key]
	if !ok {
		return nil, missingKey(key)
	}
	return value, nil
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Pointer) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func mapKey(keyType reflect.Type, index any) (reflect.Value, error) {
	key := reflect.ValueOf(index)
	switch {
	case !key.IsValid():
		return reflect.Value{}, fmt.Errorf("map key is nil, should be of type %s", keyType)
	case key.Type().AssignableTo(keyType):
		return key, nil
	case key.Kind() == keyType.Kind() && key.Type().ConvertibleTo(keyType):
		return key.Convert(keyType), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot index map of key type %s with %s", keyType, key.Type())
}

// indentFunction indents each non-empty line of text by the specified number of spaces
func indentFunction(spaces int, text string) string {
	if text == "" {
		return text
	}

	indentation := strings.Repeat(" ", spaces)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = indentation + line
		}
	}

	return strings.Join(lines, "\n")
}

// formatFunction is printf with the value last, so it reads well in a
// pipeline: {{ .min | format "%dU" }}. Integer verbs truncate floats and
// float verbs accept integers.
func formatFunction(format string, args ...any) (string, error) {
	verbs := formatVerbs(format)
	converted := make([]any, len(args))
	for i, arg := range args {
		if i >= len(verbs) {
			converted[i] = arg
			continue
		}

		var err error
		switch verbs[i] {
		case 'd', 'x', 'X', 'o', 'O', 'b', 'c':
			converted[i], err = toInt64(arg)
		case 'e', 'E', 'f', 'F', 'g', 'G':
			converted[i], err = toFloat64(arg)
		default:
			converted[i] = arg
		}
		if err != nil {
			return "", fmt.Errorf("format %q argument %d: %w", format, i+1, err)
		}
	}

	return fmt.Sprintf(format, converted...), nil
}

// powFunction raises base to a non-negative integer exponent. Results that
// do not fit in an int64 are errors.
func powFunction(base, exp any) (int64, error) {
	b, err := toInt64(base)
	if err != nil {
		return 0, fmt.Errorf("pow base: %w", err)
	}
	e, err := toInt64(exp)
	if err != nil {
		return 0, fmt.Errorf("pow exponent: %w", err)
	}
	if e < 0 {
		return 0, fmt.Errorf("pow exponent must not be negative, got %d", e)
	}

	switch b {
	case 0, 1:
		if e == 0 {
			return 1, nil
		}
		return b, nil
	case -1:
		if e%2 == 0 {
			return 1, nil
		}
		return -1, nil
	}
	// any other base overflows past 2**63
	if e > 63 {
		return 0, fmt.Errorf("pow %d %d overflows int64", b, e)
	}

	result := new(big.Int).Exp(big.NewInt(b), big.NewInt(e), nil)
	if !result.IsInt64() {
		return 0, fmt.Errorf("pow %d %d overflows int64", b, e)
	}
	return result.Int64(), nil
}

// formatVerbs returns the verb of every argument-consuming directive in a
// printf format, in order.
func formatVerbs(format string) []rune {
	var verbs []rune
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		i++
		for i < len(runes) && strings.ContainsRune("+-# 0123456789.*[]", runes[i]) {
			i++
		}
		if i < len(runes) && runes[i] != '%' {
			verbs = append(verbs, runes[i])
		}
	}
	return verbs
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, err
		}
		return int64(math.Trunc(f)), nil
	case float64:
		return int64(math.Trunc(n)), nil
	case float32:
		return int64(math.Trunc(float64(n))), nil
	}
	return cast.ToInt64E(v)
}

func toFloat64(v any) (float64, error) {
	if n, ok := v.(json.Number); ok {
		return n.Float64()
	}
	return cast.ToFloat64E(v)
}
