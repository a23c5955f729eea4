package server

import (
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"unicode"
)

// Resource is a readable, URI-addressed capability.
//
// Handle may return a content.Content, a string, a []byte or any value
// that content.From understands.
type Resource interface {
	URI() string
	Handle(ctx context.Context) (any, error)
}

// Tool is an invokable capability. args holds the raw "arguments" object
// from tools/call and may be empty.
type Tool interface {
	Handle(ctx context.Context, args json.RawMessage) (any, error)
}

// Prompt is a parameterized message template.
//
// Handle may return []PromptMessage for multi-message prompts, or a single
// value that is rendered as one user message.
type Prompt interface {
	Handle(ctx context.Context, args map[string]string) (any, error)
}

// Optional metadata. Descriptors that do not implement these get defaults
// derived from their Go type name.
type (
	// Namer overrides the kebab-cased type name.
	Namer interface{ Name() string }
	// Titler overrides the headline-cased type name.
	Titler interface{ Title() string }
	// Describer supplies a description.
	Describer interface{ Description() string }
	// MimeTyper supplies a resource's MIME type. Defaults to text/plain.
	MimeTyper interface{ MimeType() string }
	// Schemer supplies a tool's JSON input schema.
	Schemer interface{ InputSchema() any }
	// Arguer supplies a prompt's arguments.
	Arguer interface{ Arguments() []PromptArgument }
)

// DefaultMimeType is used for resources that do not declare one.
const DefaultMimeType = "text/plain"

// PromptArgument describes an argument for a prompt.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ResourceInfo is the resolved metadata of a registered resource.
type ResourceInfo struct {
	URI         string
	Name        string
	Title       string
	Description string
	MimeType    string
}

// ToolInfo is the resolved metadata of a registered tool.
type ToolInfo struct {
	Name        string
	Title       string
	Description string
	InputSchema any
}

// PromptInfo is the resolved metadata of a registered prompt.
type PromptInfo struct {
	Name        string
	Title       string
	Description string
	Arguments   []PromptArgument
}

// DescribeResource resolves the metadata of r.
func DescribeResource(r Resource) ResourceInfo {
	info := ResourceInfo{
		URI:         r.URI(),
		Name:        nameOf(r),
		Title:       titleOf(r),
		Description: descriptionOf(r),
		MimeType:    DefaultMimeType,
	}
	if m, ok := r.(MimeTyper); ok && m.MimeType() != "" {
		info.MimeType = m.MimeType()
	}
	return info
}

// DescribeTool resolves the metadata of t.
func DescribeTool(t Tool) ToolInfo {
	info := ToolInfo{
		Name:        nameOf(t),
		Title:       titleOf(t),
		Description: descriptionOf(t),
		InputSchema: map[string]any{"type": "object", "properties": map[string]any{}},
	}
	if s, ok := t.(Schemer); ok && s.InputSchema() != nil {
		info.InputSchema = s.InputSchema()
	}
	return info
}

// DescribePrompt resolves the metadata of p.
func DescribePrompt(p Prompt) PromptInfo {
	info := PromptInfo{
		Name:        nameOf(p),
		Title:       titleOf(p),
		Description: descriptionOf(p),
		Arguments:   []PromptArgument{},
	}
	if a, ok := p.(Arguer); ok && a.Arguments() != nil {
		info.Arguments = append(info.Arguments, a.Arguments()...)
	}
	return info
}

func nameOf(v any) string {
	if n, ok := v.(Namer); ok && n.Name() != "" {
		return n.Name()
	}
	return Kebab(typeName(v))
}

func titleOf(v any) string {
	if t, ok := v.(Titler); ok && t.Title() != "" {
		return t.Title()
	}
	return Headline(typeName(v))
}

func descriptionOf(v any) string {
	if d, ok := v.(Describer); ok {
		return d.Description()
	}
	return ""
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return t.Name()
}

// Kebab converts a Go identifier to kebab case:
// LastLogLineResource becomes last-log-line-resource and HTTPStatus
// becomes http-status.
func Kebab(name string) string {
	words := splitWords(name)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "-")
}

// Headline converts a Go identifier to space separated words:
// LastLogLineResource becomes "Last Log Line Resource".
func Headline(name string) string {
	words := splitWords(name)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func splitWords(name string) []string {
	var words []string
	runes := []rune(name)
	start := 0
	flush := func(end int) {
		if end > start {
			words = append(words, string(runes[start:end]))
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '_' || r == '-' || r == ' ' {
			flush(i)
			start = i + 1
			continue
		}
		if i == start || !unicode.IsUpper(r) {
			continue
		}
		prev := runes[i-1]
		nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
			flush(i)
		}
	}
	flush(len(runes))
	return words
}
