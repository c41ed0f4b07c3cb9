package entity

// ParseResult is one of ToolCall, FinalAnswer, ThoughtOnly or Malformed.
type ParseResult interface {
	isParseResult()
}

type ToolCall struct {
	Thought string
	Name    string
	Input   string
}

type FinalAnswer struct {
	Thought string
	Text    string
}

type ThoughtOnly struct {
	Thought string
}

type Malformed struct {
	Raw    string
	Reason string
}

func (ToolCall) isParseResult()    {}
func (FinalAnswer) isParseResult() {}
func (ThoughtOnly) isParseResult() {}
func (Malformed) isParseResult()   {}
