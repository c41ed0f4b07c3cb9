package prompts

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"stock-advisor/internal/domain/entity"
)

type ToolInfo struct {
	Name        string
	Description string
}

type PolicyToolNames struct {
	Ticker     string
	Price      string
	Financials string
	News       string
}

type AdvisorPromptData struct {
	Tools      []ToolInfo
	ToolNames  string
	Names      PolicyToolNames
	NotFound   string
	Question   string
	Scratchpad string
}

// Builder renders the advisor prompt. The template is parsed once and never
// modified, so one Builder can serve any number of concurrent loops.
type Builder struct {
	tmpl  *template.Template
	tools []ToolInfo
	names PolicyToolNames
}

func NewBuilder(baseTemplate string, defs []entity.ToolDefinition) (*Builder, error) {
	tmpl, err := template.New("advisor").Option("missingkey=error").Parse(baseTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse advisor template: %w", err)
	}

	byName := make(map[entity.ToolName]entity.ToolDefinition, len(defs))
	for _, d := range defs {
		byName[d.Name] = d
	}

	tools := make([]ToolInfo, 0, len(defs))
	for _, name := range entity.ToolNames() {
		d, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("no definition for tool %q", name)
		}
		tools = append(tools, ToolInfo{Name: string(d.Name), Description: d.Description})
	}

	return &Builder{
		tmpl:  tmpl,
		tools: tools,
		names: PolicyToolNames{
			Ticker:     entity.ToolTickerSearch.String(),
			Price:      entity.ToolPriceHistory.String(),
			Financials: entity.ToolFinancialStatements.String(),
			News:       entity.ToolRecentNews.String(),
		},
	}, nil
}

func (b *Builder) Render(query string, pad *entity.Scratchpad) (string, error) {
	names := make([]string, 0, len(b.tools))
	for _, t := range b.tools {
		names = append(names, t.Name)
	}

	data := AdvisorPromptData{
		Tools:     b.tools,
		ToolNames: strings.Join(names, ", "),
		Names:     b.names,
		NotFound:  entity.StockDoesNotExist,
		Question:  query,
	}
	if pad != nil {
		data.Scratchpad = pad.String()
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render advisor prompt: %w", err)
	}

	return strings.TrimRight(buf.String(), "\n"), nil
}
