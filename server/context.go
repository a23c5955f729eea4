package server

// RegisteredResource pairs a resource with its resolved metadata.
type RegisteredResource struct {
	Info     ResourceInfo
	Resource Resource
}

// RegisteredTool pairs a tool with its resolved metadata.
type RegisteredTool struct {
	Info ToolInfo
	Tool Tool
}

// RegisteredPrompt pairs a prompt with its resolved metadata.
type RegisteredPrompt struct {
	Info   PromptInfo
	Prompt Prompt
}

// Context is the read-only view of everything a server exposes, built once
// per Start and shared by every request. Lookups by name or URI are O(1);
// when two descriptors share a key the first registered one wins.
type Context struct {
	info Info

	resources []RegisteredResource
	tools     []RegisteredTool
	prompts   []RegisteredPrompt

	resourceByURI map[string]int
	toolByName    map[string]int
	promptByName  map[string]int
}

func newContext(info Info, resources []Resource, tools []Tool, prompts []Prompt) *Context {
	c := &Context{
		info:          info,
		resources:     make([]RegisteredResource, 0, len(resources)),
		tools:         make([]RegisteredTool, 0, len(tools)),
		prompts:       make([]RegisteredPrompt, 0, len(prompts)),
		resourceByURI: make(map[string]int, len(resources)),
		toolByName:    make(map[string]int, len(tools)),
		promptByName:  make(map[string]int, len(prompts)),
	}

	for _, r := range resources {
		info := DescribeResource(r)
		if _, dup := c.resourceByURI[info.URI]; !dup {
			c.resourceByURI[info.URI] = len(c.resources)
		}
		c.resources = append(c.resources, RegisteredResource{Info: info, Resource: r})
	}
	for _, t := range tools {
		info := DescribeTool(t)
		if _, dup := c.toolByName[info.Name]; !dup {
			c.toolByName[info.Name] = len(c.tools)
		}
		c.tools = append(c.tools, RegisteredTool{Info: info, Tool: t})
	}
	for _, p := range prompts {
		info := DescribePrompt(p)
		if _, dup := c.promptByName[info.Name]; !dup {
			c.promptByName[info.Name] = len(c.prompts)
		}
		c.prompts = append(c.prompts, RegisteredPrompt{Info: info, Prompt: p})
	}

	return c
}

// Info returns the server info.
func (c *Context) Info() Info {
	return c.info
}

// Capabilities reports the declared capabilities, plus any implied by
// registered descriptors.
func (c *Context) Capabilities() Capabilities {
	caps := c.info.Capabilities
	caps.Resources = caps.Resources || len(c.resources) > 0
	caps.Tools = caps.Tools || len(c.tools) > 0
	caps.Prompts = caps.Prompts || len(c.prompts) > 0
	return caps
}

// Resources returns the registered resources in registration order.
func (c *Context) Resources() []RegisteredResource {
	return append([]RegisteredResource(nil), c.resources...)
}

// Resource returns the first resource registered at uri.
func (c *Context) Resource(uri string) (RegisteredResource, bool) {
	i, ok := c.resourceByURI[uri]
	if !ok {
		return RegisteredResource{}, false
	}
	return c.resources[i], true
}

// Tools returns the registered tools in registration order.
func (c *Context) Tools() []RegisteredTool {
	return append([]RegisteredTool(nil), c.tools...)
}

// Tool returns the first tool registered under name.
func (c *Context) Tool(name string) (RegisteredTool, bool) {
	i, ok := c.toolByName[name]
	if !ok {
		return RegisteredTool{}, false
	}
	return c.tools[i], true
}

// Prompts returns the registered prompts in registration order.
func (c *Context) Prompts() []RegisteredPrompt {
	return append([]RegisteredPrompt(nil), c.prompts...)
}

// Prompt returns the first prompt registered under name.
func (c *Context) Prompt(name string) (RegisteredPrompt, bool) {
	i, ok := c.promptByName[name]
	if !ok {
		return RegisteredPrompt{}, false
	}
	return c.prompts[i], true
}
