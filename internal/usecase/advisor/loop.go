package advisor

import (
	"context"
	"fmt"
	"strings"

	"stock-advisor/internal/application/port/input"
	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"
)

const (
	defaultMaxSteps = 10
	invalidFormat   = "Invalid Format: "
)

type Config struct {
	// MaxSteps bounds both LLM calls and scratchpad entries for one query. Zero
	// selects the default; a negative budget exhausts before the first call.
	MaxSteps    int
	Temperature float32
	Stop        []string
}

func DefaultConfig() Config {
	return Config{
		MaxSteps:    defaultMaxSteps,
		Temperature: 0,
		Stop:        []string{"\nObservation:", "\n\tObservation:"},
	}
}

type PromptRenderer interface {
	Render(query string, pad *entity.Scratchpad) (string, error)
}

type Verdicts interface {
	Evaluate(answer string) entity.EvaluationResult
}

// Loop drives one query through Thought/Action/Observation cycles. A Loop holds no
// per-query state; every Run gets its own scratchpad and state.
type Loop struct {
	llm      output.LLMPort
	tools    output.ToolRegistry
	prompts  PromptRenderer
	verdicts Verdicts
	progress output.ProgressPort
	logger   output.LoggerPort
	cfg      Config
}

func NewLoop(
	llm output.LLMPort,
	tools output.ToolRegistry,
	prompts PromptRenderer,
	verdicts Verdicts,
	progress output.ProgressPort,
	logger output.LoggerPort,
	cfg Config,
) *Loop {
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = defaultMaxSteps
	}
	if progress == nil {
		progress = nopProgress{}
	}
	return &Loop{
		llm:      llm,
		tools:    tools,
		prompts:  prompts,
		verdicts: verdicts,
		progress: progress,
		logger:   logger,
		cfg:      cfg,
	}
}

type run struct {
	state      entity.AgentState
	pad        *entity.Scratchpad
	iterations int
	logger     output.LoggerPort
}

func (r *run) transition(to entity.AgentState) {
	if !r.state.CanTransition(to) {
		panic(fmt.Sprintf("advisor: illegal transition %s -> %s", r.state, to))
	}
	r.logger.Debug("State transition", "from", r.state, "to", to)
	r.state = to
}

func (r *run) result(answer string) *input.AnalyzeResult {
	return &input.AnalyzeResult{
		FinalAnswer: answer,
		State:       r.state,
		Iterations:  r.iterations,
		Steps:       r.pad.Entries(),
	}
}

// Run returns a non-nil result even when it fails, so callers can see the terminal
// state and the transcript. Errors wrap entity.ErrUpstream or entity.ErrBudgetExceeded,
// or the context error.
func (l *Loop) Run(ctx context.Context, query string) (*input.AnalyzeResult, error) {
	r := &run{
		state:  entity.StateThinking,
		pad:    entity.NewScratchpad(),
		logger: l.logger,
	}

	for r.pad.Len() < l.cfg.MaxSteps {
		if err := ctx.Err(); err != nil {
			r.transition(entity.StateFailed)
			return r.result(""), fmt.Errorf("analysis interrupted: %w", err)
		}

		r.iterations++
		l.progress.ShowIteration(ctx, r.iterations, l.cfg.MaxSteps)
		l.logger.Debug("Starting iteration", "iteration", r.iterations, "steps", r.pad.Len())

		prompt, err := l.prompts.Render(query, r.pad)
		if err != nil {
			r.transition(entity.StateFailed)
			return r.result(""), fmt.Errorf("render prompt: %w", err)
		}

		raw, err := l.llm.Complete(ctx, output.CompletionRequest{
			Prompt:      prompt,
			Temperature: l.cfg.Temperature,
			Stop:        l.cfg.Stop,
		})
		if err != nil {
			r.transition(entity.StateFailed)
			return r.result(""), fmt.Errorf("%w: llm request failed: %w", entity.ErrUpstream, err)
		}

		switch step := Parse(raw).(type) {
		case entity.FinalAnswer:
			l.progress.ShowThinking(ctx, step.Thought)
			verdict := l.verdicts.Evaluate(step.Text)
			if !verdict.Accepted {
				l.logger.Warn("Final answer rejected", "issues", verdict.Issues)
				r.pad.Append(entity.ScratchpadEntry{
					Thought:     step.Thought,
					Observation: verdict.Feedback,
				})
				r.transition(entity.StateThinking)
				continue
			}

			r.transition(entity.StateDone)
			l.progress.ShowFinal(ctx, verdict.Answer)
			res := r.result(verdict.Answer)
			res.Recommendation = verdict.Recommendation
			return res, nil

		case entity.ToolCall:
			l.progress.ShowThinking(ctx, step.Thought)
			if l.dispatch(ctx, r, step) {
				r.transition(entity.StateDone)
				l.logger.Info("Ticker not resolved, stopping", "input", step.Input)
				l.progress.ShowFinal(ctx, entity.StockDoesNotExist)
				res := r.result(entity.StockDoesNotExist)
				res.ShortCircuited = true
				return res, nil
			}
			r.transition(entity.StateThinking)

		case entity.ThoughtOnly:
			l.progress.ShowThinking(ctx, step.Thought)
			r.pad.Append(entity.ScratchpadEntry{Thought: step.Thought})
			r.transition(entity.StateThinking)

		case entity.Malformed:
			l.logger.Warn("Malformed model output", "reason", step.Reason, "raw", step.Raw)
			r.pad.Append(entity.ScratchpadEntry{
				Thought:     thoughtOf(step.Raw),
				Observation: invalidFormat + step.Reason,
			})
			r.transition(entity.StateThinking)
		}
	}

	r.transition(entity.StateExhausted)
	l.logger.Warn("Step budget exhausted", "maxSteps", l.cfg.MaxSteps)
	return r.result(""), fmt.Errorf("%w (%d steps)", entity.ErrBudgetExceeded, l.cfg.MaxSteps)
}

// dispatch runs one tool call and records it. It reports whether the ticker lookup
// came back unresolved.
func (l *Loop) dispatch(ctx context.Context, r *run, call entity.ToolCall) bool {
	r.transition(entity.StateDispatching)
	l.progress.ShowToolStart(ctx, call.Name, call.Input)

	res := l.tools.Dispatch(ctx, call.Name, call.Input)

	r.pad.Append(entity.ScratchpadEntry{
		Thought:     call.Thought,
		Action:      call.Name,
		ActionInput: call.Input,
		Observation: res.Observation,
	})
	r.transition(entity.StateObserving)
	l.progress.ShowToolResult(ctx, call.Name, res.Observation, res.Failed())

	return call.Name == string(entity.ToolTickerSearch) &&
		strings.TrimSpace(res.Observation) == entity.TickerNotFound
}

type nopProgress struct{}

func (nopProgress) ShowIteration(context.Context, int, int)              {}
func (nopProgress) ShowThinking(context.Context, string)                 {}
func (nopProgress) ShowToolStart(context.Context, string, string)        {}
func (nopProgress) ShowToolResult(context.Context, string, string, bool) {}
func (nopProgress) ShowFinal(context.Context, string)                    {}
