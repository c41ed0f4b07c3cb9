package entity

type AgentState string

const (
	StateThinking    AgentState = "thinking"
	StateDispatching AgentState = "dispatching"
	StateObserving   AgentState = "observing"
	StateDone        AgentState = "done"
	StateExhausted   AgentState = "exhausted"
	StateFailed      AgentState = "failed"
)

var validTransitions = map[AgentState][]AgentState{
	StateThinking:    {StateThinking, StateDispatching, StateDone, StateExhausted, StateFailed},
	StateDispatching: {StateObserving, StateFailed},
	StateObserving:   {StateThinking, StateDone, StateExhausted, StateFailed},
}

func (s AgentState) Terminal() bool {
	return s == StateDone || s == StateExhausted || s == StateFailed
}

func (s AgentState) CanTransition(to AgentState) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}
