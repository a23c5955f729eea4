package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

const defaultMaxLineSize = 4 * 1024 * 1024

// Stdio implements MCP transport over newline-delimited stdin/stdout.
// One process is one session.
type Stdio struct {
	in          io.Reader
	out         io.Writer
	sessionID   string
	maxLineSize int
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom stdin reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom stdout writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithSessionID overrides the generated session id.
func WithSessionID(id string) StdioOption {
	return func(s *Stdio) {
		s.sessionID = id
	}
}

// WithMaxLineSize limits the size of a single input line. Non-positive
// values keep the default.
func WithMaxLineSize(n int) StdioOption {
	return func(s *Stdio) {
		if n > 0 {
			s.maxLineSize = n
		}
	}
}

// NewStdio creates a new stdio transport with a fresh session id.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:          os.Stdin,
		out:         os.Stdout,
		sessionID:   uuid.NewString(),
		maxLineSize: defaultMaxLineSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// SessionID returns the session id generated for this process.
func (s *Stdio) SessionID() string {
	return s.sessionID
}

// Run processes one message per input line until EOF or ctx is canceled.
// Each response is written as one line and flushed immediately. A line
// longer than the configured limit is discarded and answered with an
// invalid request error. A write failure ends the loop.
func (s *Stdio) Run(ctx context.Context, h Handler) error {
	ctx, cancel := context.WithCancel(protocol.ContextWithSessionID(ctx, s.sessionID))
	defer cancel()

	r := bufio.NewReaderSize(s.in, min(64*1024, s.maxLineSize))

	lines := make(chan frame)
	readDone := make(chan error, 1)

	go func() {
		defer close(lines)
		for {
			line, tooLarge, err := readLine(r, s.maxLineSize)
			if tooLarge || len(line) > 0 {
				select {
				case lines <- frame{data: line, tooLarge: tooLarge}:
				case <-ctx.Done():
					readDone <- nil
					return
				}
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = nil
				}
				readDone <- err
				return
			}
		}
	}()

	w := bufio.NewWriter(s.out)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f, ok := <-lines:
			if !ok {
				return <-readDone
			}
			if f.tooLarge {
				if err := writeLine(w, protocol.NewErrorResponse(nil, protocol.NewInvalidRequest("request too large"))); err != nil {
					return err
				}
				continue
			}
			if len(bytes.TrimSpace(f.data)) == 0 {
				continue
			}
			resp := Process(ctx, h, f.data)
			if resp == nil {
				continue
			}
			if err := writeLine(w, resp); err != nil {
				return err
			}
		}
	}
}

type frame struct {
	data     []byte
	tooLarge bool
}

// readLine reads up to the next newline. Once the line exceeds limit bytes
// (not counting the line terminator) the rest of it is consumed and dropped.
func readLine(r *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	tooLarge := false
	for {
		chunk, err := r.ReadSlice('\n')
		if !tooLarge {
			line = append(line, chunk...)
			if contentLen(line) > limit {
				tooLarge = true
				line = nil
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		return line, tooLarge, err
	}
}

func contentLen(line []byte) int {
	n := len(line)
	if n > 0 && line[n-1] == '\n' {
		n--
	}
	if n > 0 && line[n-1] == '\r' {
		n--
	}
	return n
}

func writeLine(w *bufio.Writer, resp *protocol.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		data, _ = json.Marshal(protocol.NewErrorResponse(resp.ID, protocol.NewInternalError(err.Error())))
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("stdio write: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("stdio flush: %w", err)
	}
	return nil
}
