package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stock-advisor/internal/application/port/input"
	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"

	"github.com/google/uuid"
)

var _ input.Advisor = (*Service)(nil)

// Service validates a request, binds an LLM client to the caller's key and runs a
// fresh Loop for it.
type Service struct {
	llmFactory output.LLMFactory
	tools      output.ToolRegistry
	prompts    PromptRenderer
	verdicts   Verdicts
	logger     output.LoggerPort
	progress   output.ProgressPort
	metrics    output.MetricsPort
	cfg        Config
}

type Option func(*Service)

func WithProgress(p output.ProgressPort) Option {
	return func(s *Service) { s.progress = p }
}

func WithMetrics(m output.MetricsPort) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(
	llmFactory output.LLMFactory,
	tools output.ToolRegistry,
	prompts PromptRenderer,
	verdicts Verdicts,
	logger output.LoggerPort,
	cfg Config,
	opts ...Option,
) *Service {
	s := &Service{
		llmFactory: llmFactory,
		tools:      tools,
		prompts:    prompts,
		verdicts:   verdicts,
		logger:     logger,
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func Question(stock string) string {
	return fmt.Sprintf("Is %s a good investment choice right now?", strings.TrimSpace(stock))
}

func (s *Service) Analyze(ctx context.Context, req input.AnalyzeRequest) (*input.AnalyzeResult, error) {
	if strings.TrimSpace(req.APIKey) == "" || strings.TrimSpace(req.Stock) == "" {
		return nil, entity.ErrInput
	}

	log := s.logger.WithFields(map[string]any{
		"run_id": uuid.NewString(),
		"stock":  req.Stock,
	})

	llm, err := s.llmFactory(req.APIKey)
	if err != nil {
		return nil, fmt.Errorf("%w: create llm client: %w", entity.ErrUpstream, err)
	}

	log.Info("Analysis started", "maxSteps", s.cfg.MaxSteps)
	start := time.Now()

	loop := NewLoop(llm, s.tools, s.prompts, s.verdicts, s.progress, log, s.cfg)
	res, err := loop.Run(ctx, Question(req.Stock))

	if s.metrics != nil {
		s.metrics.ObserveAnalysis(string(res.State), res.Iterations, time.Since(start))
	}

	if err != nil {
		log.Error("Analysis failed", "state", res.State, "iterations", res.Iterations, "error", err)
		return nil, err
	}

	log.Info("Analysis completed",
		"state", res.State,
		"iterations", res.Iterations,
		"recommendation", res.Recommendation,
		"shortCircuited", res.ShortCircuited,
	)
	return res, nil
}
