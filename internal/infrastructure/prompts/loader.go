package prompts

import (
	_ "embed"
)

//go:embed advisor.txt
var AdvisorPrompt string
