// Package content implements the values returned by resources, tools and
// prompts, and their projection into each call site's wire shape.
//
// The set of variants is closed: Text, Blob and Image. Every variant knows
// how to render itself for a resource read, a tool result and a prompt
// message; a projection that makes no sense for a variant fails with
// ErrInvalidOperation instead of producing a malformed payload.
package content

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidOperation is returned when a content variant is projected into
// a call site that cannot carry it.
var ErrInvalidOperation = errors.New("invalid content operation")

// ResourceMeta is the descriptor metadata copied into a resource payload.
type ResourceMeta struct {
	URI      string
	Name     string
	Title    string
	MimeType string
}

func (m ResourceMeta) fields(extra map[string]any) map[string]any {
	extra["uri"] = m.URI
	extra["name"] = m.Name
	extra["title"] = m.Title
	extra["mimeType"] = m.MimeType
	return extra
}

// Content is a piece of domain data that can be returned from a handler.
type Content interface {
	fmt.Stringer

	// Type is the wire discriminator ("text", "blob", "image").
	Type() string
	// ToMap returns the discriminator and the raw payload.
	ToMap() map[string]any
	// ResourceMap projects the content into a resources/read payload.
	ResourceMap(meta ResourceMeta) (map[string]any, error)
	// ToolMap projects the content into a tools/call content item.
	ToolMap() (map[string]any, error)
	// PromptMap projects the content into a prompt message content item.
	PromptMap() (map[string]any, error)

	sealed()
}

// Text is UTF-8 text content.
type Text string

// NewText returns text content.
func NewText(s string) Text { return Text(s) }

func (Text) sealed() {}

func (t Text) String() string { return string(t) }

// Type implements Content.
func (Text) Type() string { return "text" }

// ToMap implements Content.
func (t Text) ToMap() map[string]any {
	return map[string]any{"type": "text", "text": string(t)}
}

// ResourceMap implements Content.
func (t Text) ResourceMap(meta ResourceMeta) (map[string]any, error) {
	return meta.fields(map[string]any{"text": string(t)}), nil
}

// ToolMap implements Content.
func (t Text) ToolMap() (map[string]any, error) {
	return t.ToMap(), nil
}

// PromptMap implements Content.
func (t Text) PromptMap() (map[string]any, error) {
	return t.ToMap(), nil
}

// Blob is binary content. It is only valid as a resource payload.
type Blob []byte

// NewBlob returns binary content.
func NewBlob(data []byte) Blob { return Blob(data) }

func (Blob) sealed() {}

// String returns the raw bytes as a string, without encoding.
func (b Blob) String() string { return string(b) }

// Type implements Content.
func (Blob) Type() string { return "blob" }

// ToMap implements Content.
func (b Blob) ToMap() map[string]any {
	return map[string]any{"type": "blob", "blob": string(b)}
}

// ResourceMap implements Content. The payload is base64 encoded.
func (b Blob) ResourceMap(meta ResourceMeta) (map[string]any, error) {
	return meta.fields(map[string]any{"blob": base64.StdEncoding.EncodeToString(b)}), nil
}

// ToolMap always fails: blobs may not be returned from tools.
func (Blob) ToolMap() (map[string]any, error) {
	return nil, fmt.Errorf("%w: Blob content may not be used in tools.", ErrInvalidOperation)
}

// PromptMap always fails: blobs may not be used in prompts.
func (Blob) PromptMap() (map[string]any, error) {
	return nil, fmt.Errorf("%w: Blob content may not be used in prompts.", ErrInvalidOperation)
}

// Image is binary image data with its MIME type.
type Image struct {
	Data     []byte
	MimeType string
}

// NewImage returns image content.
func NewImage(data []byte, mimeType string) Image {
	return Image{Data: data, MimeType: mimeType}
}

func (Image) sealed() {}

func (i Image) String() string { return string(i.Data) }

// Type implements Content.
func (Image) Type() string { return "image" }

// ToMap implements Content.
func (i Image) ToMap() map[string]any {
	return map[string]any{"type": "image", "data": string(i.Data), "mimeType": i.MimeType}
}

// ResourceMap implements Content. Images are carried as blobs; the image's
// own MIME type wins over the descriptor's when set.
func (i Image) ResourceMap(meta ResourceMeta) (map[string]any, error) {
	if i.MimeType != "" {
		meta.MimeType = i.MimeType
	}
	return meta.fields(map[string]any{"blob": base64.StdEncoding.EncodeToString(i.Data)}), nil
}

// ToolMap implements Content.
func (i Image) ToolMap() (map[string]any, error) {
	return i.encoded(), nil
}

// PromptMap implements Content.
func (i Image) PromptMap() (map[string]any, error) {
	return i.encoded(), nil
}

func (i Image) encoded() map[string]any {
	return map[string]any{
		"type":     "image",
		"data":     base64.StdEncoding.EncodeToString(i.Data),
		"mimeType": i.MimeType,
	}
}

// From wraps a handler return value in a Content variant. Content values
// pass through; strings become Text; byte slices become Blob; Stringers
// become Text of their string form; anything else becomes Text of its JSON
// encoding.
func From(v any) (Content, error) {
	switch c := v.(type) {
	case Content:
		return c, nil
	case nil:
		return Text(""), nil
	case string:
		return Text(c), nil
	case []byte:
		return Blob(c), nil
	case fmt.Stringer:
		return Text(c.String()), nil
	default:
		data, err := json.Marshal(c)
		if err != nil {
			return nil, fmt.Errorf("encode content: %w", err)
		}
		return Text(data), nil
	}
}
