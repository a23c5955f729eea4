package server

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/felixgeelhaar/mcp-dispatch/content"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

func initialize(_ context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error) {
	var params struct {
		ProtocolVersion string `json:"protocolVersion"`
	}
	if err := req.BindParams(&params); err != nil {
		return nil, err
	}

	info := sc.Info()
	caps := sc.Capabilities()

	capabilities := make(map[string]any)
	if caps.Tools {
		capabilities["tools"] = map[string]any{"listChanged": false}
	}
	if caps.Resources {
		capabilities["resources"] = map[string]any{"listChanged": false, "subscribe": false}
	}
	if caps.Prompts {
		capabilities["prompts"] = map[string]any{"listChanged": false}
	}

	result := map[string]any{
		"protocolVersion": protocol.NegotiateVersion(params.ProtocolVersion),
		"serverInfo": map[string]any{
			"name":    info.Name,
			"version": info.Version,
		},
		"capabilities": capabilities,
	}
	if info.Instructions != "" {
		result["instructions"] = info.Instructions
	}

	return protocol.NewResponse(req.ID, result), nil
}

func initialized(_ context.Context, req *protocol.Request, _ *Context) (*protocol.Response, error) {
	return protocol.NewResponse(req.ID, map[string]any{}), nil
}

func ping(_ context.Context, req *protocol.Request, _ *Context) (*protocol.Response, error) {
	return protocol.NewResponse(req.ID, map[string]any{}), nil
}

func listResources(_ context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error) {
	resources := sc.Resources()
	list := make([]map[string]any, 0, len(resources))
	for _, r := range resources {
		list = append(list, map[string]any{
			"uri":         r.Info.URI,
			"name":        r.Info.Name,
			"title":       r.Info.Title,
			"description": r.Info.Description,
			"mimeType":    r.Info.MimeType,
		})
	}
	return protocol.NewResponse(req.ID, map[string]any{"resources": list}), nil
}

func readResource(ctx context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error) {
	uri, ok := req.StringParam("uri")
	if !ok {
		if _, present := req.Param("uri"); present {
			return nil, protocol.NewInvalidParams("Invalid parameter: uri must be a string")
		}
		return nil, protocol.NewInvalidParams("Missing required parameter: uri")
	}

	r, ok := sc.Resource(uri)
	if !ok {
		return nil, protocol.NewNotFound("Resource not found").WithData(map[string]any{"uri": uri})
	}

	value, err := r.Resource.Handle(ctx)
	if err != nil {
		return nil, err
	}

	c, err := content.From(value)
	if err != nil {
		return nil, err
	}

	item, err := c.ResourceMap(content.ResourceMeta{
		URI:      r.Info.URI,
		Name:     r.Info.Name,
		Title:    r.Info.Title,
		MimeType: r.Info.MimeType,
	})
	if err != nil {
		return nil, err
	}

	// The item's fields are also placed at the top level for clients that
	// read a single resource payload instead of the contents list.
	result := make(map[string]any, len(item)+1)
	for k, v := range item {
		result[k] = v
	}
	result["contents"] = []map[string]any{item}

	return protocol.NewResponse(req.ID, result), nil
}

func listTools(_ context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error) {
	tools := sc.Tools()
	list := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		list = append(list, map[string]any{
			"name":        t.Info.Name,
			"title":       t.Info.Title,
			"description": t.Info.Description,
			"inputSchema": t.Info.InputSchema,
		})
	}
	return protocol.NewResponse(req.ID, map[string]any{"tools": list}), nil
}

func callTool(ctx context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := req.BindParams(&params); err != nil {
		return nil, err
	}
	if params.Name == "" {
		return nil, protocol.NewInvalidParams("Missing required parameter: name")
	}

	t, ok := sc.Tool(params.Name)
	if !ok {
		return nil, protocol.NewNotFound("Tool not found").WithData(map[string]any{"name": params.Name})
	}

	value, err := t.Tool.Handle(ctx, params.Arguments)
	if err != nil {
		var rpcErr *protocol.Error
		if errors.As(err, &rpcErr) {
			return nil, rpcErr
		}
		// Domain failures are reported inside the result so the calling
		// model can see them.
		return protocol.NewResponse(req.ID, map[string]any{
			"content": []map[string]any{content.Text(err.Error()).ToMap()},
			"isError": true,
		}), nil
	}

	items, err := toolItems(value)
	if err != nil {
		return nil, err
	}

	return protocol.NewResponse(req.ID, map[string]any{
		"content": items,
		"isError": false,
	}), nil
}

func toolItems(value any) ([]map[string]any, error) {
	values, ok := value.([]content.Content)
	if !ok {
		c, err := content.From(value)
		if err != nil {
			return nil, err
		}
		values = []content.Content{c}
	}

	items := make([]map[string]any, 0, len(values))
	for _, c := range values {
		item, err := c.ToolMap()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func listPrompts(_ context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error) {
	prompts := sc.Prompts()
	list := make([]map[string]any, 0, len(prompts))
	for _, p := range prompts {
		list = append(list, map[string]any{
			"name":        p.Info.Name,
			"title":       p.Info.Title,
			"description": p.Info.Description,
			"arguments":   p.Info.Arguments,
		})
	}
	return protocol.NewResponse(req.ID, map[string]any{"prompts": list}), nil
}

func getPrompt(ctx context.Context, req *protocol.Request, sc *Context) (*protocol.Response, error) {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := req.BindParams(&params); err != nil {
		return nil, err
	}
	if params.Name == "" {
		return nil, protocol.NewInvalidParams("Missing required parameter: name")
	}

	p, ok := sc.Prompt(params.Name)
	if !ok {
		return nil, protocol.NewNotFound("Prompt not found").WithData(map[string]any{"name": params.Name})
	}

	for _, arg := range p.Info.Arguments {
		if arg.Required && params.Arguments[arg.Name] == "" {
			return nil, protocol.NewInvalidParams("Missing required argument: " + arg.Name)
		}
	}
	if params.Arguments == nil {
		params.Arguments = map[string]string{}
	}

	value, err := p.Prompt.Handle(ctx, params.Arguments)
	if err != nil {
		return nil, err
	}

	messages, err := promptMessages(value)
	if err != nil {
		return nil, err
	}

	return protocol.NewResponse(req.ID, map[string]any{
		"description": p.Info.Description,
		"messages":    messages,
	}), nil
}
