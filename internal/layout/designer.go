// Package layout asks a text-generation service to design a reel and
// turns its untrusted reply into a model.Reel.
package layout

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Request is one reel design request.
type Request struct {
	Quote  string
	Accent string
	Preset string
}

// Designer returns the raw text reply for a design request. Replies are
// untrusted; callers run them through Parse.
type Designer interface {
	Design(ctx context.Context, req Request) (string, error)
}

// Func adapts a plain function to a Designer.
type Func func(ctx context.Context, req Request) (string, error)

// Design calls f.
func (f Func) Design(ctx context.Context, req Request) (string, error) { return f(ctx, req) }

// designLine and design describe the reply shape for the schema only.
// Replies are never decoded into them directly.
type designLine struct {
	Text  string  `json:"text" jsonschema_description:"ALL CAPS short phrase"`
	Color string  `json:"color" jsonschema_description:"hex color"`
	Size  string  `json:"size" jsonschema:"enum=large,enum=medium,enum=small"`
	Delay float64 `json:"delay" jsonschema:"minimum=0.08,maximum=0.5"`
}

type design struct {
	Bg     string       `json:"bg" jsonschema_description:"dark hex color"`
	Layout string       `json:"layout" jsonschema:"enum=kinetic,enum=stamp"`
	Lines  []designLine `json:"lines" jsonschema:"minItems=2,maxItems=3"`
}

// GenerateSchema reflects a JSON schema for T without references.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var designSchema = GenerateSchema[design]()

// SystemPrompt is sent with every design request.
var SystemPrompt = buildSystemPrompt()

func buildSystemPrompt() string {
	schema, _ := json.Marshal(designSchema)
	return `Return ONLY a JSON object. No text before or after. No markdown fences. ` +
		`Example output: {"bg":"#050505","layout":"kinetic","lines":[{"text":"START NOW","color":"#d4f73c","size":"large","delay":0.08},{"text":"YOUR TIME","color":"#ffffff","size":"large","delay":0.24}]}. ` +
		`Rules: bg=dark hex color. layout=kinetic or stamp. lines=array of 2-3 objects with text(ALL CAPS short phrase), color(hex), size(large|medium|small), delay(number 0.08 to 0.5). ` +
		`JSON schema: ` + string(schema)
}

// UserPrompt renders the per-quote message.
func UserPrompt(req Request) string {
	return fmt.Sprintf("Reel for: %q. Accent color: %s. Style: %s", req.Quote, req.Accent, req.Preset)
}

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Options selects and configures a provider.
type Options struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
}

// New builds a designer for opts.Provider.
func New(opts Options) (Designer, error) {
	switch opts.Provider {
	case ProviderAnthropic, "":
		return NewAnthropicDesigner(opts.BaseURL, opts.APIKey, opts.Model), nil
	case ProviderOpenAI:
		return NewOpenAIDesigner(opts.BaseURL, opts.APIKey, opts.Model), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: anthropic, openai)", opts.Provider)
	}
}
