package langchain

import (
	"context"
	"fmt"

	"stock-advisor/internal/application/port/output"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var _ output.LLMPort = (*Adapter)(nil)

// Adapter runs completions through any langchaingo model.
type Adapter struct {
	model  llms.Model
	logger output.LoggerPort
}

type Config struct {
	Model   string
	BaseURL string
	Logger  output.LoggerPort
}

func NewAdapter(model llms.Model, logger output.LoggerPort) *Adapter {
	return &Adapter{model: model, logger: logger}
}

// NewOpenAI builds an Adapter on the langchaingo OpenAI client for one key.
func NewOpenAI(apiKey string, cfg Config) (*Adapter, error) {
	opts := []openai.Option{openai.WithToken(apiKey)}
	if cfg.Model != "" {
		opts = append(opts, openai.WithModel(cfg.Model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create langchain openai client: %w", err)
	}
	return NewAdapter(llm, cfg.Logger), nil
}

func Factory(cfg Config) output.LLMFactory {
	return func(apiKey string) (output.LLMPort, error) {
		return NewOpenAI(apiKey, cfg)
	}
}

func (a *Adapter) Complete(ctx context.Context, req output.CompletionRequest) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(float64(req.Temperature))}
	if len(req.Stop) > 0 {
		opts = append(opts, llms.WithStopWords(req.Stop))
	}

	out, err := llms.GenerateFromSinglePrompt(ctx, a.model, req.Prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}

	if a.logger != nil {
		a.logger.Debug("Completion received", "length", len(out))
	}
	return out, nil
}
