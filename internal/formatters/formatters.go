package formatters

import (
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"sort"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a registry with JSON for every type and text
// and markdown renderers for the result types.
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registerDocuments(registry)

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := dataTypeName(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted.
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// Supports reports whether format can render data.
func (fr *FormatterRegistry) Supports(format string, data any) bool {
	formatters, ok := fr.formatters[format]
	if !ok {
		return false
	}
	_, typed := formatters[dataTypeName(data)]
	_, generic := formatters["any"]
	return typed || generic
}

// dataTypeName is the bare type name of data, dereferencing pointers.
func dataTypeName(data any) string {
	t := reflect.TypeOf(data)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "any"
	}
	return t.Name()
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// typedFormatter adapts a render function for one concrete type.
type typedFormatter[T any] struct {
	name   string
	style  style
	render func(*document, T)
}

func (tf *typedFormatter[T]) Format(data any) (string, error) {
	var value T
	switch v := data.(type) {
	case T:
		value = v
	case *T:
		if v == nil {
			return "", fmt.Errorf("expected %s, got nil", tf.name)
		}
		value = *v
	default:
		return "", fmt.Errorf("expected %s, got %T", tf.name, data)
	}
	doc := &document{style: tf.style}
	tf.render(doc, value)
	return doc.String(), nil
}

func (tf *typedFormatter[T]) SupportedType() string {
	return tf.name
}

// register adds text and markdown formatters for T.
func register[T any](fr *FormatterRegistry, render func(*document, T)) {
	var zero T
	name := dataTypeName(zero)
	for _, s := range []style{textStyle, markdownStyle} {
		fr.RegisterFormatter(s.format, name, &typedFormatter[T]{name: name, style: s, render: render})
	}
}

// GlobalRegistry is the registry used by the CLI.
var GlobalRegistry = NewFormatterRegistry()

// IsKnownFormat reports whether any formatter handles format.
func IsKnownFormat(format string) bool {
	return slices.Contains(GlobalRegistry.GetSupportedFormats(), format)
}
