package output

import "context"

// ProgressPort shows the reasoning loop as it runs.
type ProgressPort interface {
	ShowIteration(ctx context.Context, iteration, maxIterations int)
	ShowThinking(ctx context.Context, content string)
	ShowToolStart(ctx context.Context, toolName, input string)
	ShowToolResult(ctx context.Context, toolName, result string, isError bool)
	ShowFinal(ctx context.Context, answer string)
}
