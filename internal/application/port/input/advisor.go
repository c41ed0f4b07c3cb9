package input

import (
	"context"

	"stock-advisor/internal/domain/entity"
)

type AnalyzeRequest struct {
	APIKey string
	Stock  string
}

type AnalyzeResult struct {
	FinalAnswer    string
	Recommendation entity.Recommendation
	State          entity.AgentState
	Iterations     int
	ShortCircuited bool
	Steps          []entity.ScratchpadEntry
}

type Advisor interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error)
}
