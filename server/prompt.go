package server

import (
	"context"

	"github.com/felixgeelhaar/mcp-dispatch/content"
	"github.com/felixgeelhaar/mcp-dispatch/protocol"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PromptMessage is one message rendered by a prompt.
type PromptMessage struct {
	Role    string
	Content content.Content
}

// UserMessage returns a user-role text message.
func UserMessage(text string) PromptMessage {
	return PromptMessage{Role: RoleUser, Content: content.Text(text)}
}

// AssistantMessage returns an assistant-role text message.
func AssistantMessage(text string) PromptMessage {
	return PromptMessage{Role: RoleAssistant, Content: content.Text(text)}
}

func promptMessages(value any) ([]map[string]any, error) {
	var messages []PromptMessage
	switch v := value.(type) {
	case []PromptMessage:
		messages = v
	case PromptMessage:
		messages = []PromptMessage{v}
	default:
		c, err := content.From(value)
		if err != nil {
			return nil, err
		}
		messages = []PromptMessage{{Role: RoleUser, Content: c}}
	}

	out := make([]map[string]any, 0, len(messages))
	for _, m := range messages {
		if m.Content == nil {
			return nil, protocol.NewInternalError("prompt message has no content")
		}
		item, err := m.Content.PromptMap()
		if err != nil {
			return nil, err
		}
		role := m.Role
		if role == "" {
			role = RoleUser
		}
		out = append(out, map[string]any{"role": role, "content": item})
	}
	return out, nil
}

// PromptHandler is the function signature for builder-registered prompts.
type PromptHandler func(ctx context.Context, args map[string]string) (any, error)

// funcPrompt is a Prompt assembled by PromptBuilder.
type funcPrompt struct {
	name        string
	title       string
	description string
	arguments   []PromptArgument
	handler     PromptHandler
}

func (p *funcPrompt) Name() string                { return p.name }
func (p *funcPrompt) Title() string               { return p.title }
func (p *funcPrompt) Description() string         { return p.description }
func (p *funcPrompt) Arguments() []PromptArgument { return p.arguments }

func (p *funcPrompt) Handle(ctx context.Context, args map[string]string) (any, error) {
	return p.handler(ctx, args)
}

// PromptBuilder provides a fluent API for building prompts.
type PromptBuilder struct {
	prompt *funcPrompt
	server *Server
}

// Title sets the display title. Defaults to the headline form of the name.
func (b *PromptBuilder) Title(title string) *PromptBuilder {
	b.prompt.title = title
	return b
}

// Description sets the prompt description.
func (b *PromptBuilder) Description(desc string) *PromptBuilder {
	b.prompt.description = desc
	return b
}

// Argument adds an argument to the prompt.
func (b *PromptBuilder) Argument(name, description string, required bool) *PromptBuilder {
	b.prompt.arguments = append(b.prompt.arguments, PromptArgument{
		Name:        name,
		Description: description,
		Required:    required,
	})
	return b
}

// Handler sets the handler and registers the prompt.
func (b *PromptBuilder) Handler(fn PromptHandler) *PromptBuilder {
	b.prompt.handler = fn
	if b.prompt.title == "" {
		b.prompt.title = Headline(b.prompt.name)
	}
	b.server.AddPrompt(b.prompt)
	return b
}
