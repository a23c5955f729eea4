package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// JSONRPCVersion is the JSON-RPC protocol version.
const JSONRPCVersion = "2.0"

var nullID = json.RawMessage("null")

// Request represents a JSON-RPC 2.0 request or notification.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no id. An explicit
// null id is treated the same as an absent one.
func (r *Request) IsNotification() bool {
	id := bytes.TrimSpace(r.ID)
	return len(id) == 0 || bytes.Equal(id, nullID)
}

// BindParams decodes the request params into v. Missing params leave v
// untouched. Decoding failures are reported as invalid params.
func (r *Request) BindParams(v any) error {
	if len(r.Params) == 0 || bytes.Equal(bytes.TrimSpace(r.Params), nullID) {
		return nil
	}
	if err := json.Unmarshal(r.Params, v); err != nil {
		return NewInvalidParams(fmt.Sprintf("invalid params: %v", err))
	}
	return nil
}

// Param returns a single raw parameter by name.
func (r *Request) Param(name string) (json.RawMessage, bool) {
	var params map[string]json.RawMessage
	if err := r.BindParams(&params); err != nil || params == nil {
		return nil, false
	}
	v, ok := params[name]
	if !ok || bytes.Equal(bytes.TrimSpace(v), nullID) {
		return nil, false
	}
	return v, true
}

// StringParam returns a string parameter. The second return value is false
// when the parameter is absent, null or not a string.
func (r *Request) StringParam(name string) (string, bool) {
	raw, ok := r.Param(name)
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// ParseRequest decodes a single JSON-RPC message. Malformed JSON yields a
// parse error; a well-formed message that is not a valid request yields an
// invalid request error. The returned request is non-nil whenever the id
// could be recovered, so callers can key the error response to it.
func ParseRequest(data []byte) (*Request, *Error) {
	if !json.Valid(data) {
		return nil, NewParseError("Parse error")
	}

	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, NewInvalidRequest("Invalid Request")
	}

	if !validID(req.ID) {
		return &Request{JSONRPC: JSONRPCVersion}, NewInvalidRequest("Invalid Request: id must be a string, number or null")
	}

	if req.Method == "" {
		return &req, NewInvalidRequest("Invalid Request: missing method")
	}

	return &req, nil
}

func validID(id json.RawMessage) bool {
	id = bytes.TrimSpace(id)
	if len(id) == 0 {
		return true
	}
	switch id[0] {
	case '"', 'n', '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return true
	default:
		return false
	}
}

// Response represents a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewResponse creates a successful response.
func NewResponse(id json.RawMessage, result any) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Result:  result,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(id json.RawMessage, err *Error) *Response {
	return &Response{
		JSONRPC: JSONRPCVersion,
		ID:      id,
		Error:   err,
	}
}

// MarshalJSON encodes the response. Exactly one of result or error is
// written; a nil or empty map result is written as {} so that clients
// expecting an object never receive null or an array.
func (r Response) MarshalJSON() ([]byte, error) {
	type wire struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  json.RawMessage `json:"result,omitempty"`
		Error   *Error          `json:"error,omitempty"`
	}

	w := wire{JSONRPC: JSONRPCVersion, ID: r.ID, Error: r.Error}
	if len(bytes.TrimSpace(w.ID)) == 0 {
		w.ID = nullID
	}

	if r.Error == nil {
		result, err := marshalResult(r.Result)
		if err != nil {
			return nil, err
		}
		w.Result = result
	}

	return json.Marshal(w)
}

func marshalResult(result any) (json.RawMessage, error) {
	if isEmptyObject(result) {
		return json.RawMessage("{}"), nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return data, nil
}

func isEmptyObject(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// ToMap returns the response as its wire mapping.
func (r *Response) ToMap() map[string]any {
	m := map[string]any{
		"jsonrpc": JSONRPCVersion,
		"id":      decodeID(r.ID),
	}
	if r.Error != nil {
		m["error"] = r.Error
		return m
	}
	if r.Result == nil {
		m["result"] = map[string]any{}
	} else {
		m["result"] = r.Result
	}
	return m
}

func decodeID(id json.RawMessage) any {
	if len(bytes.TrimSpace(id)) == 0 {
		return nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(id))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// IDFromValue encodes a string or integer id. Nil yields an empty id.
func IDFromValue(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
