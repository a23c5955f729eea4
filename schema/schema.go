package schema

import (
	"reflect"

	"github.com/invopop/jsonschema"
)

// Reflect builds the input schema for t. Properties are inlined and
// additional properties are allowed. Fields are required when tagged
// `jsonschema:"required"`. Non-struct types get an empty object schema.
func Reflect(t reflect.Type) *jsonschema.Schema {
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() != reflect.Struct {
		return &jsonschema.Schema{Type: typeObject}
	}

	r := &jsonschema.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		ExpandedStruct:             true,
		RequiredFromJSONSchemaTags: true,
		AllowAdditionalProperties:  true,
	}
	s := r.ReflectFromType(base)
	s.Version = ""
	return s
}

// Of is Reflect for the type of v.
func Of(v any) *jsonschema.Schema {
	return Reflect(reflect.TypeOf(v))
}
