package middleware

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

type logEntry struct {
	level   string
	message string
	fields  []Field
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) log(level, msg string, fields []Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, message: msg, fields: fields})
}

func (l *recordingLogger) Info(msg string, fields ...Field)  { l.log("info", msg, fields) }
func (l *recordingLogger) Error(msg string, fields ...Field) { l.log("error", msg, fields) }
func (l *recordingLogger) Debug(msg string, fields ...Field) { l.log("debug", msg, fields) }
func (l *recordingLogger) Warn(msg string, fields ...Field)  { l.log("warn", msg, fields) }

func (l *recordingLogger) all() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]logEntry(nil), l.entries...)
}

func field(fields []Field, key string) (any, bool) {
	for _, f := range fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

func ok(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return protocol.NewResponse(req.ID, "ok"), nil
}

func call(method string) *protocol.Request {
	return &protocol.Request{JSONRPC: "2.0", ID: json.RawMessage("1"), Method: method}
}
