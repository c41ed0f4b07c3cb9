package entity

import "strings"

type Recommendation string

const (
	RecommendationBuy  Recommendation = "Buy"
	RecommendationHold Recommendation = "Hold"
	RecommendationSell Recommendation = "Sell"
)

func Recommendations() []Recommendation {
	return []Recommendation{RecommendationBuy, RecommendationHold, RecommendationSell}
}

func ParseRecommendation(s string) (Recommendation, bool) {
	for _, r := range Recommendations() {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

type EvaluationResult struct {
	Accepted       bool           `json:"accepted"`
	Recommendation Recommendation `json:"recommendation,omitempty"`
	Answer         string         `json:"answer,omitempty"`
	Issues         []string       `json:"issues,omitempty"`
	Feedback       string         `json:"feedback,omitempty"`
}
