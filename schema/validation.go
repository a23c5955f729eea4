package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/invopop/jsonschema"
)

// Schema type constants.
const (
	typeObject  = "object"
	typeArray   = "array"
	typeString  = "string"
	typeInteger = "integer"
	typeNumber  = "number"
	typeBoolean = "boolean"
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Path    string // JSON path to the invalid field (e.g., "user.email")
	Message string // Human-readable error message
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString("validation failed:")
	for _, err := range e {
		sb.WriteString("\n  - ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Validate checks data against s. It returns nil when data is valid, a
// *ValidationError when data is not JSON, and ValidationErrors otherwise.
func Validate(s *jsonschema.Schema, data json.RawMessage) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %s", err)}
	}
	return ValidateValue(s, value)
}

// ValidateValue checks a decoded JSON value against s.
func ValidateValue(s *jsonschema.Schema, value any) error {
	var errs ValidationErrors
	validate(s, "", value, &errs)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validate(s *jsonschema.Schema, path string, value any, errs *ValidationErrors) {
	if s == nil || value == nil {
		return
	}

	switch s.Type {
	case typeObject:
		validateObject(s, path, value, errs)
	case typeArray:
		validateArray(s, path, value, errs)
	case typeString:
		validateString(s, path, value, errs)
	case typeInteger:
		validateInteger(s, path, value, errs)
	case typeNumber:
		validateNumber(s, path, value, errs)
	case typeBoolean:
		if _, ok := value.(bool); !ok {
			errs.add(path, "expected boolean, got %s", jsonType(value))
		}
	}

	if len(s.Enum) > 0 && !inEnum(s.Enum, value) {
		errs.add(path, "value must be one of: %v", s.Enum)
	}
}

func validateObject(s *jsonschema.Schema, path string, value any, errs *ValidationErrors) {
	obj, ok := value.(map[string]any)
	if !ok {
		errs.add(path, "expected object, got %s", jsonType(value))
		return
	}

	for _, name := range s.Required {
		if _, exists := obj[name]; !exists {
			errs.add(path, "Missing required argument: %s", name)
		}
	}

	if s.Properties == nil {
		return
	}
	for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if val, exists := obj[pair.Key]; exists {
			validate(pair.Value, joinPath(path, pair.Key), val, errs)
		}
	}
}

func validateArray(s *jsonschema.Schema, path string, value any, errs *ValidationErrors) {
	items, ok := value.([]any)
	if !ok {
		errs.add(path, "expected array, got %s", jsonType(value))
		return
	}
	if s.Items == nil {
		return
	}
	for i, item := range items {
		validate(s.Items, fmt.Sprintf("%s[%d]", path, i), item, errs)
	}
}

func validateString(s *jsonschema.Schema, path string, value any, errs *ValidationErrors) {
	str, ok := value.(string)
	if !ok {
		errs.add(path, "expected string, got %s", jsonType(value))
		return
	}

	n := uint64(utf8.RuneCountInString(str))
	if s.MinLength != nil && n < *s.MinLength {
		errs.add(path, "length %d is less than minLength %d", n, *s.MinLength)
	}
	if s.MaxLength != nil && n > *s.MaxLength {
		errs.add(path, "length %d is greater than maxLength %d", n, *s.MaxLength)
	}
}

func validateInteger(s *jsonschema.Schema, path string, value any, errs *ValidationErrors) {
	num, ok := value.(float64)
	if !ok {
		errs.add(path, "expected integer, got %s", jsonType(value))
		return
	}
	if math.Trunc(num) != num {
		errs.add(path, "expected integer, got decimal number")
		return
	}
	validateRange(s, path, num, errs)
}

func validateNumber(s *jsonschema.Schema, path string, value any, errs *ValidationErrors) {
	num, ok := value.(float64)
	if !ok {
		errs.add(path, "expected number, got %s", jsonType(value))
		return
	}
	validateRange(s, path, num, errs)
}

func validateRange(s *jsonschema.Schema, path string, num float64, errs *ValidationErrors) {
	if lo, err := s.Minimum.Float64(); err == nil && num < lo {
		errs.add(path, "value %v is less than minimum %v", num, lo)
	}
	if hi, err := s.Maximum.Float64(); err == nil && num > hi {
		errs.add(path, "value %v is greater than maximum %v", num, hi)
	}
}

// inEnum compares through the JSON encoding so that tag-declared enum
// values match decoded arguments of the same JSON value.
func inEnum(enum []any, value any) bool {
	got, err := json.Marshal(value)
	if err != nil {
		return false
	}
	for _, e := range enum {
		want, err := json.Marshal(e)
		if err == nil && string(want) == string(got) {
			return true
		}
	}
	return false
}

func jsonType(value any) string {
	switch value.(type) {
	case map[string]any:
		return typeObject
	case []any:
		return typeArray
	case string:
		return typeString
	case float64:
		return typeNumber
	case bool:
		return typeBoolean
	default:
		return fmt.Sprintf("%T", value)
	}
}

func (e *ValidationErrors) add(path, format string, args ...any) {
	*e = append(*e, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
