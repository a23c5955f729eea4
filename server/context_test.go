package server

import (
	"context"
	"testing"
)

type uriResource struct {
	uri  string
	body string
}

func (r uriResource) URI() string                         { return r.uri }
func (r uriResource) Name() string                        { return r.body }
func (r uriResource) Handle(context.Context) (any, error) { return r.body, nil }

func TestContext_Lookup(t *testing.T) {
	sc := newContext(Info{Name: "test"},
		[]Resource{
			uriResource{uri: "file://a", body: "first"},
			uriResource{uri: "file://b", body: "other"},
			uriResource{uri: "file://a", body: "second"},
		},
		[]Tool{echoTool{}},
		[]Prompt{CodeReviewPrompt{}},
	)

	t.Run("keeps registration order", func(t *testing.T) {
		resources := sc.Resources()
		if len(resources) != 3 {
			t.Fatalf("expected 3 resources, got %d", len(resources))
		}
		if resources[0].Info.Name != "first" || resources[2].Info.Name != "second" {
			t.Errorf("unexpected order: %+v", resources)
		}
	})

	t.Run("first registration wins", func(t *testing.T) {
		r, ok := sc.Resource("file://a")
		if !ok {
			t.Fatal("expected resource to be found")
		}
		if r.Info.Name != "first" {
			t.Errorf("Name = %q, want %q", r.Info.Name, "first")
		}
	})

	t.Run("unknown keys", func(t *testing.T) {
		if _, ok := sc.Resource("file://missing"); ok {
			t.Error("expected missing resource")
		}
		if _, ok := sc.Tool("missing"); ok {
			t.Error("expected missing tool")
		}
		if _, ok := sc.Prompt("missing"); ok {
			t.Error("expected missing prompt")
		}
	})

	t.Run("tools and prompts by name", func(t *testing.T) {
		if _, ok := sc.Tool("echo-tool"); !ok {
			t.Error("expected echo-tool")
		}
		if _, ok := sc.Prompt("code-review-prompt"); !ok {
			t.Error("expected code-review-prompt")
		}
	})

	t.Run("returned slices are copies", func(t *testing.T) {
		resources := sc.Resources()
		resources[0] = RegisteredResource{}

		if sc.Resources()[0].Info.Name != "first" {
			t.Error("mutating the returned slice changed the context")
		}
	})
}

func TestContext_Capabilities(t *testing.T) {
	tests := []struct {
		name string
		info Info
		res  []Resource
		want Capabilities
	}{
		{
			name: "none",
			want: Capabilities{},
		},
		{
			name: "implied by registration",
			res:  []Resource{statusResource{}},
			want: Capabilities{Resources: true},
		},
		{
			name: "declared",
			info: Info{Capabilities: Capabilities{Tools: true, Prompts: true}},
			want: Capabilities{Tools: true, Prompts: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := newContext(tt.info, tt.res, nil, nil)
			if got := sc.Capabilities(); got != tt.want {
				t.Errorf("Capabilities() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
