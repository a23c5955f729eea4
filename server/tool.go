package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
	"github.com/felixgeelhaar/mcp-dispatch/schema"
)

// typedTool is a Tool assembled by ToolBuilder around a typed handler.
type typedTool struct {
	name        string
	title       string
	description string
	inputType   reflect.Type
	inputSchema *jsonschema.Schema
	handler     reflect.Value
	hasContext  bool
}

func (t *typedTool) Name() string        { return t.name }
func (t *typedTool) Title() string       { return t.title }
func (t *typedTool) Description() string { return t.description }
func (t *typedTool) InputSchema() any    { return t.inputSchema }

// Handle validates the arguments against the input schema, decodes them
// into the handler's input type and calls it.
func (t *typedTool) Handle(ctx context.Context, args json.RawMessage) (any, error) {
	if len(bytes.TrimSpace(args)) == 0 || bytes.Equal(bytes.TrimSpace(args), []byte("null")) {
		args = json.RawMessage("{}")
	}

	if err := schema.Validate(t.inputSchema, args); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	inputPtr := reflect.New(t.inputType)
	if err := json.Unmarshal(args, inputPtr.Interface()); err != nil {
		return nil, protocol.NewInvalidParams(fmt.Sprintf("failed to parse input: %v", err))
	}

	var in []reflect.Value
	if t.hasContext {
		in = append(in, reflect.ValueOf(ctx))
	}
	in = append(in, inputPtr.Elem())

	out := t.handler.Call(in)
	if errVal := out[1].Interface(); errVal != nil {
		return nil, errVal.(error)
	}
	return out[0].Interface(), nil
}

// ToolBuilder provides a fluent API for building tools.
type ToolBuilder struct {
	tool   *typedTool
	server *Server
}

// Title sets the display title. Defaults to the headline form of the name.
func (b *ToolBuilder) Title(title string) *ToolBuilder {
	b.tool.title = title
	return b
}

// Description sets the tool description.
func (b *ToolBuilder) Description(desc string) *ToolBuilder {
	b.tool.description = desc
	return b
}

// Handler sets the tool handler function and registers the tool.
// The handler signature must be one of:
//   - func(input T) (R, error)
//   - func(ctx context.Context, input T) (R, error)
//
// An invalid signature is reported by Server.Start.
func (b *ToolBuilder) Handler(fn any) *ToolBuilder {
	if err := b.bind(fn); err != nil {
		b.server.recordError(fmt.Errorf("tool %q: %w", b.tool.name, err))
		return b
	}
	if b.tool.title == "" {
		b.tool.title = Headline(b.tool.name)
	}
	b.server.AddTool(b.tool)
	return b
}

func (b *ToolBuilder) bind(fn any) error {
	if fn == nil {
		return fmt.Errorf("handler must be a function, got nil")
	}
	fnType := reflect.TypeOf(fn)
	if fnType.Kind() != reflect.Func {
		return fmt.Errorf("handler must be a function, got %s", fnType.Kind())
	}

	numIn := fnType.NumIn()
	if numIn < 1 || numIn > 2 {
		return fmt.Errorf("handler must have 1 or 2 parameters, got %d", numIn)
	}

	inputIdx := 0
	if numIn == 2 {
		ctxType := reflect.TypeOf((*context.Context)(nil)).Elem()
		if !fnType.In(0).Implements(ctxType) {
			return fmt.Errorf("first parameter must be context.Context when using 2 parameters")
		}
		b.tool.hasContext = true
		inputIdx = 1
	}

	if fnType.NumOut() != 2 {
		return fmt.Errorf("handler must return (result, error), got %d return values", fnType.NumOut())
	}
	errType := reflect.TypeOf((*error)(nil)).Elem()
	if !fnType.Out(1).Implements(errType) {
		return fmt.Errorf("second return value must be error")
	}

	b.tool.inputType = fnType.In(inputIdx)
	b.tool.inputSchema = schema.Reflect(b.tool.inputType)
	b.tool.handler = reflect.ValueOf(fn)
	return nil
}
