package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseRequest(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Request
		wantCode int
		wantReq  bool
	}{
		{
			name:    "valid request with params",
			input:   `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"search"}}`,
			want:    Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "tools/call", Params: json.RawMessage(`{"name":"search"}`)},
			wantReq: true,
		},
		{
			name:    "valid request with string id",
			input:   `{"jsonrpc":"2.0","id":"abc-123","method":"tools/list"}`,
			want:    Request{JSONRPC: "2.0", ID: json.RawMessage(`"abc-123"`), Method: "tools/list"},
			wantReq: true,
		},
		{
			name:    "notification",
			input:   `{"jsonrpc":"2.0","method":"notifications/initialized"}`,
			want:    Request{JSONRPC: "2.0", Method: "notifications/initialized"},
			wantReq: true,
		},
		{
			name:     "malformed json",
			input:    `{invalid}`,
			wantCode: CodeParseError,
		},
		{
			name:     "truncated json",
			input:    `{"jsonrpc":"2.0","id":1,"method":`,
			wantCode: CodeParseError,
		},
		{
			name:     "missing method keeps id",
			input:    `{"jsonrpc":"2.0","id":7}`,
			want:     Request{JSONRPC: "2.0", ID: json.RawMessage(`7`)},
			wantCode: CodeInvalidRequest,
			wantReq:  true,
		},
		{
			name:     "array is not a request",
			input:    `[1,2,3]`,
			wantCode: CodeInvalidRequest,
		},
		{
			name:     "object id is rejected",
			input:    `{"jsonrpc":"2.0","id":{"a":1},"method":"ping"}`,
			want:     Request{JSONRPC: "2.0"},
			wantCode: CodeInvalidRequest,
			wantReq:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rpcErr := ParseRequest([]byte(tt.input))

			if tt.wantCode != 0 {
				if rpcErr == nil {
					t.Fatalf("expected error code %d, got nil", tt.wantCode)
				}
				if rpcErr.Code != tt.wantCode {
					t.Errorf("Code = %d, want %d", rpcErr.Code, tt.wantCode)
				}
			} else if rpcErr != nil {
				t.Fatalf("unexpected error: %v", rpcErr)
			}

			if !tt.wantReq {
				if got != nil {
					t.Errorf("expected nil request, got %+v", got)
				}
				return
			}
			if got == nil {
				t.Fatal("expected request, got nil")
			}
			if got.Method != tt.want.Method {
				t.Errorf("Method = %q, want %q", got.Method, tt.want.Method)
			}
			if string(got.ID) != string(tt.want.ID) {
				t.Errorf("ID = %s, want %s", got.ID, tt.want.ID)
			}
			if string(got.Params) != string(tt.want.Params) {
				t.Errorf("Params = %s, want %s", got.Params, tt.want.Params)
			}
		})
	}
}

func TestRequest_IsNotification(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{name: "integer id", req: Request{ID: json.RawMessage(`1`)}, want: false},
		{name: "string id", req: Request{ID: json.RawMessage(`"a"`)}, want: false},
		{name: "zero id", req: Request{ID: json.RawMessage(`0`)}, want: false},
		{name: "absent id", req: Request{}, want: true},
		{name: "null id", req: Request{ID: json.RawMessage(`null`)}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.IsNotification(); got != tt.want {
				t.Errorf("IsNotification() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequest_Params(t *testing.T) {
	req := &Request{Params: json.RawMessage(`{"uri":"file://x","count":3,"empty":null}`)}

	if uri, ok := req.StringParam("uri"); !ok || uri != "file://x" {
		t.Errorf("StringParam(uri) = %q, %v", uri, ok)
	}
	if _, ok := req.StringParam("count"); ok {
		t.Error("StringParam(count) should fail for a number")
	}
	if _, ok := req.Param("empty"); ok {
		t.Error("Param(empty) should treat null as absent")
	}
	if _, ok := req.Param("missing"); ok {
		t.Error("Param(missing) should be absent")
	}

	var bound struct {
		URI string `json:"uri"`
	}
	if err := req.BindParams(&bound); err != nil {
		t.Fatalf("BindParams: %v", err)
	}
	if bound.URI != "file://x" {
		t.Errorf("bound URI = %q", bound.URI)
	}

	bad := &Request{Params: json.RawMessage(`[1]`)}
	err := bad.BindParams(&bound)
	if err == nil {
		t.Fatal("expected error binding array params to struct")
	}
	if rpcErr := AsError(err); rpcErr.Code != CodeInvalidParams {
		t.Errorf("Code = %d, want %d", rpcErr.Code, CodeInvalidParams)
	}

	noParams := &Request{}
	if err := noParams.BindParams(&bound); err != nil {
		t.Errorf("BindParams without params: %v", err)
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		resp *Response
		want string
	}{
		{
			name: "success response",
			resp: NewResponse(json.RawMessage(`1`), map[string]string{"status": "ok"}),
			want: `{"jsonrpc":"2.0","id":1,"result":{"status":"ok"}}`,
		},
		{
			name: "error response",
			resp: NewErrorResponse(json.RawMessage(`1`), NewInternalError("failed")),
			want: `{"jsonrpc":"2.0","id":1,"error":{"code":-32603,"message":"failed"}}`,
		},
		{
			name: "empty map result is an object",
			resp: NewResponse(json.RawMessage(`1`), map[string]any{}),
			want: `{"jsonrpc":"2.0","id":1,"result":{}}`,
		},
		{
			name: "nil result is an object",
			resp: NewResponse(json.RawMessage(`1`), nil),
			want: `{"jsonrpc":"2.0","id":1,"result":{}}`,
		},
		{
			name: "empty slice result stays an array",
			resp: NewResponse(json.RawMessage(`1`), []string{}),
			want: `{"jsonrpc":"2.0","id":1,"result":[]}`,
		},
		{
			name: "error without id carries null id",
			resp: NewErrorResponse(nil, NewParseError("Parse error")),
			want: `{"jsonrpc":"2.0","id":null,"error":{"code":-32700,"message":"Parse error"}}`,
		},
		{
			name: "string id is echoed",
			resp: NewResponse(json.RawMessage(`"req-9"`), "done"),
			want: `{"jsonrpc":"2.0","id":"req-9","result":"done"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("MarshalJSON() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResponse_ErrorExcludesResult(t *testing.T) {
	resp := &Response{
		ID:     json.RawMessage(`3`),
		Result: map[string]string{"ignored": "yes"},
		Error:  NewInvalidParams("bad"),
	}

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(data), `"result"`) {
		t.Errorf("error response must not carry a result: %s", data)
	}
}

func TestResponse_ToMap(t *testing.T) {
	t.Run("success carries result and no error", func(t *testing.T) {
		value := map[string]any{"foo": "bar"}
		m := NewResponse(json.RawMessage(`1`), value).ToMap()

		if m["jsonrpc"] != "2.0" {
			t.Errorf("jsonrpc = %v", m["jsonrpc"])
		}
		if m["id"] != json.Number("1") {
			t.Errorf("id = %#v, want 1", m["id"])
		}
		result, ok := m["result"].(map[string]any)
		if !ok || result["foo"] != "bar" {
			t.Errorf("result = %#v", m["result"])
		}
		if _, ok := m["error"]; ok {
			t.Error("success map must not contain error")
		}
	})

	t.Run("error carries error and no result", func(t *testing.T) {
		m := NewErrorResponse(json.RawMessage(`"x"`), NewMethodNotFound("nope")).ToMap()

		if m["id"] != "x" {
			t.Errorf("id = %#v, want x", m["id"])
		}
		if _, ok := m["result"]; ok {
			t.Error("error map must not contain result")
		}
		rpcErr, ok := m["error"].(*Error)
		if !ok || rpcErr.Code != CodeMethodNotFound {
			t.Errorf("error = %#v", m["error"])
		}
	})
}

func TestIDFromValue(t *testing.T) {
	if got := string(IDFromValue(5)); got != "5" {
		t.Errorf("IDFromValue(5) = %s", got)
	}
	if got := string(IDFromValue("abc")); got != `"abc"` {
		t.Errorf("IDFromValue(abc) = %s", got)
	}
	if got := IDFromValue(nil); got != nil {
		t.Errorf("IDFromValue(nil) = %s", got)
	}
}

func TestNegotiateVersion(t *testing.T) {
	if got := NegotiateVersion("2024-11-05"); got != "2024-11-05" {
		t.Errorf("NegotiateVersion(2024-11-05) = %q", got)
	}
	if got := NegotiateVersion("1999-01-01"); got != LatestVersion {
		t.Errorf("NegotiateVersion(unknown) = %q, want %q", got, LatestVersion)
	}
}
