package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"
)

var _ output.ToolRegistry = (*ToolRegistryImpl)(nil)

const DefaultMaxObservationLen = 20000

// ToolRegistryImpl binds the closed tool set to handlers. It is immutable after
// construction and safe for concurrent use.
type ToolRegistryImpl struct {
	tools             map[entity.ToolName]output.ToolPort
	logger            output.LoggerPort
	metrics           output.MetricsPort
	maxObservationLen int
}

type RegistryOption func(*ToolRegistryImpl)

func WithMetrics(m output.MetricsPort) RegistryOption {
	return func(r *ToolRegistryImpl) { r.metrics = m }
}

func WithMaxObservationLen(n int) RegistryOption {
	return func(r *ToolRegistryImpl) {
		if n > 0 {
			r.maxObservationLen = n
		}
	}
}

// NewToolRegistry fails unless tools cover entity.ToolNames exactly once each.
func NewToolRegistry(logger output.LoggerPort, tools []output.ToolPort, opts ...RegistryOption) (*ToolRegistryImpl, error) {
	r := &ToolRegistryImpl{
		tools:             make(map[entity.ToolName]output.ToolPort, len(tools)),
		logger:            logger,
		maxObservationLen: DefaultMaxObservationLen,
	}
	for _, opt := range opts {
		opt(r)
	}

	for _, tool := range tools {
		name := tool.Name()
		if !name.Valid() {
			return nil, fmt.Errorf("register %q: %w", name, entity.ErrUnknownTool)
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("tool %q registered twice", name)
		}
		r.tools[name] = tool
	}

	var missing []string
	for _, name := range entity.ToolNames() {
		if _, ok := r.tools[name]; !ok {
			missing = append(missing, name.String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing handlers for tools: %s", strings.Join(missing, ", "))
	}

	return r, nil
}

func (r *ToolRegistryImpl) Get(name entity.ToolName) (output.ToolPort, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Definitions lists tools in policy order.
func (r *ToolRegistryImpl) Definitions() []entity.ToolDefinition {
	result := make([]entity.ToolDefinition, 0, len(r.tools))
	for _, name := range entity.ToolNames() {
		result = append(result, entity.ToolDefinition{
			Name:        name,
			Description: r.tools[name].Description(),
		})
	}
	return result
}

// Dispatch never returns an error or panics: every failure is folded into the
// observation text and ToolResult.Err.
func (r *ToolRegistryImpl) Dispatch(ctx context.Context, name, input string) entity.ToolResult {
	result := entity.ToolResult{Tool: name, Input: input}

	tool, ok := r.tools[entity.ToolName(name)]
	if !ok {
		r.logger.Warn("Unknown tool called", "name", name)
		result.Err = fmt.Errorf("%w: %q", entity.ErrUnknownTool, name)
		result.Observation = fmt.Sprintf("Error: no such tool '%s'. Valid tools are: [%s]", name, r.toolList())
		return result
	}

	r.logger.Info("Executing tool", "name", name, "input", input)
	start := time.Now()

	out, err := r.execute(ctx, tool, input)
	if err == nil && strings.TrimSpace(out) == "" {
		err = entity.ErrEmptyResult
	}
	r.observe(name, err != nil, time.Since(start))

	if err != nil {
		r.logger.Error("Tool execution failed", "name", name, "error", err)
		result.Err = fmt.Errorf("%w: %s: %w", entity.ErrToolFailed, name, err)
		result.Observation = fmt.Sprintf("Error: %s failed: %s", name, err.Error())
		return result
	}

	if len(out) > r.maxObservationLen {
		out = truncate(out, r.maxObservationLen) + "\n... (truncated)"
	}

	r.logger.Debug("Tool completed", "name", name, "resultLen", len(out))
	result.Observation = out
	return result
}

func (r *ToolRegistryImpl) execute(ctx context.Context, tool output.ToolPort, input string) (out string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return tool.Execute(ctx, input)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func (r *ToolRegistryImpl) observe(name string, failed bool, d time.Duration) {
	if r.metrics != nil {
		r.metrics.ObserveToolCall(name, failed, d)
	}
}

func (r *ToolRegistryImpl) toolList() string {
	names := make([]string, 0, len(r.tools))
	for _, name := range entity.ToolNames() {
		names = append(names, name.String())
	}
	return strings.Join(names, ", ")
}
