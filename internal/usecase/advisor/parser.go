package advisor

import (
	"strings"

	"stock-advisor/internal/domain/entity"
)

const (
	labelThought     = "Thought:"
	labelAction      = "Action:"
	labelActionInput = "Action Input:"
	labelObservation = "Observation:"
	labelFinalAnswer = "Final Answer:"
)

const (
	reasonNoLabel          = "Missing 'Action:' after 'Thought:'"
	reasonMissingInput     = "Missing 'Action Input:' after 'Action:'"
	reasonEmptyAction      = "'Action:' has no tool name"
	reasonEmptyInput       = "'Action Input:' is empty"
	reasonOrphanInput      = "'Action Input:' without a preceding 'Action:'"
	reasonEmptyFinalAnswer = "'Final Answer:' is empty"
)

type line struct {
	label string
	text  string
}

// Parse turns one model completion into a typed step. It never guesses: anything
// outside the Thought/Action/Action Input/Final Answer grammar is Malformed.
func Parse(raw string) entity.ParseResult {
	lines := splitLines(raw)

	for i, l := range lines {
		if l.label == labelFinalAnswer {
			text := joinRest(l.text, lines[i+1:])
			if text == "" {
				return entity.Malformed{Raw: raw, Reason: reasonEmptyFinalAnswer}
			}
			return entity.FinalAnswer{Thought: thoughtBefore(lines[:i]), Text: text}
		}
	}

	actionIdx := -1
	for i, l := range lines {
		if l.label == labelAction {
			actionIdx = i
		}
	}

	if actionIdx == -1 {
		for _, l := range lines {
			if l.label == labelActionInput {
				return entity.Malformed{Raw: raw, Reason: reasonOrphanInput}
			}
		}
		for _, l := range lines {
			if l.label == labelThought {
				return entity.ThoughtOnly{Thought: thoughtBefore(lines)}
			}
		}
		return entity.Malformed{Raw: raw, Reason: reasonNoLabel}
	}

	name := lines[actionIdx].text
	if name == "" {
		return entity.Malformed{Raw: raw, Reason: reasonEmptyAction}
	}

	inputIdx := -1
	for i := actionIdx + 1; i < len(lines); i++ {
		if lines[i].label == labelActionInput {
			inputIdx = i
			break
		}
		if lines[i].label != "" || lines[i].text != "" {
			break
		}
	}
	if inputIdx == -1 {
		return entity.Malformed{Raw: raw, Reason: reasonMissingInput}
	}

	input := lines[inputIdx].text
	for _, l := range lines[inputIdx+1:] {
		if l.label != "" {
			break
		}
		if l.text != "" {
			input = strings.TrimSpace(input + " " + l.text)
		}
	}
	if input == "" {
		return entity.Malformed{Raw: raw, Reason: reasonEmptyInput}
	}

	return entity.ToolCall{
		Thought: thoughtBefore(lines[:actionIdx]),
		Name:    name,
		Input:   input,
	}
}

// splitLines labels each line and drops everything from a model-invented
// Observation onwards.
func splitLines(raw string) []line {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var out []line
	for _, s := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(s)
		if strings.HasPrefix(trimmed, labelObservation) {
			break
		}
		out = append(out, classify(trimmed))
	}
	return out
}

func classify(s string) line {
	// Action Input must be tested before Action.
	for _, label := range []string{labelFinalAnswer, labelActionInput, labelAction, labelThought} {
		if strings.HasPrefix(s, label) {
			return line{label: label, text: strings.TrimSpace(strings.TrimPrefix(s, label))}
		}
	}
	return line{text: s}
}

func thoughtBefore(lines []line) string {
	var parts []string
	for _, l := range lines {
		if l.label != "" && l.label != labelThought {
			break
		}
		if l.text != "" {
			parts = append(parts, l.text)
		}
	}
	return strings.Join(parts, " ")
}

// thoughtOf keeps only the reasoning that precedes the first non-Thought label, so a
// rejected completion is not echoed back with its labels.
func thoughtOf(raw string) string {
	return thoughtBefore(splitLines(raw))
}

func joinRest(first string, rest []line) string {
	parts := []string{first}
	for _, l := range rest {
		if l.label != "" {
			parts = append(parts, l.label+" "+l.text)
			continue
		}
		parts = append(parts, l.text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
