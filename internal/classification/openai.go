package classification

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	oaioption "github.com/openai/openai-go/option"

	"github.com/spec-kit/ticket-triage/internal/config"
)

// DefaultOpenAIModel is used when CLASSIFIER_MODEL is unset.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIProvider completes prompts with the chat-completions API.
type OpenAIProvider struct {
	client openai.Client
	model  openai.ChatModel
}

// NewOpenAIProvider creates a provider from classifier config. Extra
// request options are appended after the config-derived ones.
func NewOpenAIProvider(cfg config.ClassifierConfig, opts ...oaioption.RequestOption) *OpenAIProvider {
	base := []oaioption.RequestOption{oaioption.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		base = append(base, oaioption.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIProvider{
		client: openai.NewClient(append(base, opts...)...),
		model:  openai.ChatModel(model),
	}
}

// Complete sends a system and a user message and returns the first choice.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       p.model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(req.MaxTokens)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completions: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return completion.Choices[0].Message.Content, nil
}
