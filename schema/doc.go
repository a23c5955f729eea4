// Package schema reflects tool input types into JSON Schemas and validates
// tool arguments against them.
//
// Schemas are produced by github.com/invopop/jsonschema and honor its
// struct tags:
//
//	type SearchInput struct {
//	    Query string `json:"query" jsonschema:"required,description=Search terms"`
//	    Limit int    `json:"limit" jsonschema:"minimum=1,maximum=100"`
//	    Sort  string `json:"sort" jsonschema:"enum=asc,enum=desc"`
//	}
//
//	s := schema.Reflect(reflect.TypeOf(SearchInput{}))
//	err := schema.Validate(s, json.RawMessage(`{"limit": 500}`))
//	// Missing required argument: query
//	// limit: value 500 is greater than maximum 100
//
// # Validation
//
// Validate checks the subset of JSON Schema that the reflector emits for
// Go types:
//
//   - type (object, array, string, integer, number, boolean)
//   - required properties
//   - enum
//   - minimum and maximum
//   - minLength and maxLength
//   - items of arrays
//
// Keywords outside that subset are ignored. A null value satisfies every
// schema; presence is enforced through required only.
package schema
