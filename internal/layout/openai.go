package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIDesigner uses any OpenAI-compatible chat completions API.
type OpenAIDesigner struct {
	client openai.Client
	model  string
}

// NewOpenAIDesigner creates a designer using an OpenAI-compatible API.
func NewOpenAIDesigner(baseURL, apiKey, model string) *OpenAIDesigner {
	// one attempt per quote; the generator falls back instead of retrying
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(30 * time.Second),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = string(openai.ChatModelGPT4oMini)
	}
	return &OpenAIDesigner{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (d *OpenAIDesigner) Design(ctx context.Context, r Request) (string, error) {
	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "reel_design",
		Description: openai.String("Layout for one animated text reel"),
		Schema:      designSchema,
		Strict:      openai.Bool(false),
	}

	completion, err := d.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(UserPrompt(r)),
		},
		Model:     openai.ChatModel(d.model),
		MaxTokens: openai.Int(200),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	content := completion.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("empty reply (finish reason %s)", completion.Choices[0].FinishReason)
	}
	return content, nil
}
