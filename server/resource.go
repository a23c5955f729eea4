package server

import "context"

// ResourceHandler is the function signature for builder-registered
// resources.
type ResourceHandler func(ctx context.Context) (any, error)

// funcResource is a Resource assembled by ResourceBuilder.
type funcResource struct {
	uri         string
	name        string
	title       string
	description string
	mimeType    string
	handler     ResourceHandler
}

func (r *funcResource) URI() string         { return r.uri }
func (r *funcResource) Name() string        { return r.name }
func (r *funcResource) Title() string       { return r.title }
func (r *funcResource) Description() string { return r.description }
func (r *funcResource) MimeType() string    { return r.mimeType }

func (r *funcResource) Handle(ctx context.Context) (any, error) {
	return r.handler(ctx)
}

// ResourceBuilder provides a fluent API for building resources.
type ResourceBuilder struct {
	resource *funcResource
	server   *Server
}

// Name sets the resource name. Defaults to the URI.
func (b *ResourceBuilder) Name(name string) *ResourceBuilder {
	b.resource.name = name
	return b
}

// Title sets the display title.
func (b *ResourceBuilder) Title(title string) *ResourceBuilder {
	b.resource.title = title
	return b
}

// Description sets the resource description.
func (b *ResourceBuilder) Description(desc string) *ResourceBuilder {
	b.resource.description = desc
	return b
}

// MimeType sets the MIME type of the resource content.
func (b *ResourceBuilder) MimeType(mimeType string) *ResourceBuilder {
	b.resource.mimeType = mimeType
	return b
}

// Handler sets the handler and registers the resource.
func (b *ResourceBuilder) Handler(fn ResourceHandler) *ResourceBuilder {
	b.resource.handler = fn
	if b.resource.name == "" {
		b.resource.name = b.resource.uri
	}
	if b.resource.title == "" {
		b.resource.title = b.resource.name
	}
	b.server.AddResource(b.resource)
	return b
}
