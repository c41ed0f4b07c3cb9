package output

import (
	"context"

	"stock-advisor/internal/domain/entity"
)

type ToolPort interface {
	Name() entity.ToolName
	Description() string
	Execute(ctx context.Context, input string) (string, error)
}

type ToolRegistry interface {
	Get(name entity.ToolName) (ToolPort, bool)
	Dispatch(ctx context.Context, name, input string) entity.ToolResult
	Definitions() []entity.ToolDefinition
}
