package evaluator

import (
	"strings"
	"unicode"

	"stock-advisor/internal/application/port/output"
	"stock-advisor/internal/domain/entity"
)

const feedbackMissingVerdict = "Invalid Format: the Final Answer must start with exactly one of Buy, Hold or Sell (in bold), followed by the justification."

// Evaluator checks that a final answer commits to a recommendation up front.
type Evaluator struct {
	logger output.LoggerPort
}

func New(logger output.LoggerPort) *Evaluator {
	return &Evaluator{logger: logger}
}

func (e *Evaluator) Evaluate(answer string) entity.EvaluationResult {
	word, rest := leadingWord(answer)

	rec, ok := entity.ParseRecommendation(word)
	if !ok {
		e.logger.Debug("Final answer has no leading verdict", "leading", word)
		return entity.EvaluationResult{
			Accepted: false,
			Issues:   []string{"answer does not start with Buy, Hold or Sell"},
			Feedback: feedbackMissingVerdict,
		}
	}

	body := strings.TrimLeft(rest, "*_")
	if tail := strings.TrimLeft(body, " "); strings.HasPrefix(tail, "/") || strings.HasPrefix(tail, "|") {
		next, _ := leadingWord(tail[1:])
		if _, also := entity.ParseRecommendation(next); also {
			return entity.EvaluationResult{
				Accepted: false,
				Issues:   []string{"answer hedges between several recommendations"},
				Feedback: feedbackMissingVerdict,
			}
		}
	}

	// The accepted answer starts with the bare verdict, whatever emphasis the model used.
	return entity.EvaluationResult{
		Accepted:       true,
		Recommendation: rec,
		Answer:         string(rec) + body,
	}
}

// leadingWord skips markdown emphasis and whitespace and returns the first run of
// letters plus whatever follows it.
func leadingWord(s string) (string, string) {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '*' || r == '_' || r == '#'
	})
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsLetter(r) })
	if end == -1 {
		return s, ""
	}
	return s[:end], s[end:]
}
