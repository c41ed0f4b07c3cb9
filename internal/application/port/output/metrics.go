package output

import "time"

type MetricsPort interface {
	ObserveAnalysis(state string, steps int, duration time.Duration)
	ObserveToolCall(tool string, failed bool, duration time.Duration)
}
