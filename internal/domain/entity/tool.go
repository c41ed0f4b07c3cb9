package entity

type ToolName string

const (
	ToolTickerSearch        ToolName = "Stock Ticker Search"
	ToolPriceHistory        ToolName = "Get Stock Historical Price"
	ToolFinancialStatements ToolName = "Get Financial Statements"
	ToolRecentNews          ToolName = "Get Recent News"
)

const (
	TickerNotFound    = "Ticker not found"
	StockDoesNotExist = "This stock does not exist"
)

// ToolNames returns the closed tool set in the order the analysis policy uses them.
func ToolNames() []ToolName {
	return []ToolName{
		ToolTickerSearch,
		ToolPriceHistory,
		ToolFinancialStatements,
		ToolRecentNews,
	}
}

func (t ToolName) String() string {
	return string(t)
}

func (t ToolName) Valid() bool {
	for _, name := range ToolNames() {
		if name == t {
			return true
		}
	}
	return false
}

type ToolDefinition struct {
	Name        ToolName
	Description string
}

// ToolResult is what the registry hands back for every dispatch. Err is set when the
// call failed; Observation is always populated.
type ToolResult struct {
	Tool        string
	Input       string
	Observation string
	Err         error
}

func (r ToolResult) Failed() bool {
	return r.Err != nil
}
