package llm

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient speaks the chat-completion API with one underlying client per
// pooled credential; each call uses whichever key the pool currently points
// at, so rotation by the retry middleware takes effect on the next attempt.
type OpenAIClient struct {
	clients []*openai.Client
	pool    *KeyPool
	model   string
}

func NewOpenAI(pool *KeyPool, model, baseURL string) *OpenAIClient {
	if model == "" {
		model = openai.GPT4oMini
	}
	clients := make([]*openai.Client, 0, pool.Size())
	for _, key := range pool.Keys() {
		cfg := openai.DefaultConfig(key)
		if baseURL != "" {
			cfg.BaseURL = baseURL
		}
		clients = append(clients, openai.NewClientWithConfig(cfg))
	}
	return &OpenAIClient{clients: clients, pool: pool, model: model}
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	oaReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: req.Temperature,
	}
	if req.Model != "" {
		oaReq.Model = req.Model
	}
	if req.MaxTokens > 0 {
		oaReq.MaxTokens = req.MaxTokens
	}
	if req.JSONMode {
		oaReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.clients[c.pool.Index()].CreateChatCompletion(ctx, oaReq)
	if err != nil {
		return "", classifyOpenAI(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &TransientError{Err: errors.New("openai returned empty response")}
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyOpenAI(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if classified := classifyStatus(apiErr.HTTPStatusCode, err); classified != nil {
			return classified
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if classified := classifyStatus(reqErr.HTTPStatusCode, err); classified != nil {
			return classified
		}
	}
	return classifyMessage(err)
}
