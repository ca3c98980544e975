package contract

// Stats is the portfolio summary returned by GET /v1/stats.
type Stats struct {
	TotalBudget          int64          `json:"totalBudget"`
	TotalSpent           int64          `json:"totalSpent"`
	RemainingBudget      int64          `json:"remainingBudget"`
	CompletionPercentage float64        `json:"completionPercentage"`
	Formatted            FormattedStats `json:"formatted"`
	StatusDistribution   []Facet        `json:"statusDistribution"`
	BudgetComparison     []Comparison   `json:"budgetComparison"`
}

// FormattedStats holds the money values rendered in the canonical currency format.
type FormattedStats struct {
	TotalBudget     string `json:"totalBudget"`
	TotalSpent      string `json:"totalSpent"`
	RemainingBudget string `json:"remainingBudget"`
}

type Facet struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

type Comparison struct {
	Name   string  `json:"name"`
	Budget float64 `json:"budget"`
	Spent  float64 `json:"spent"`
}

// Facets lists the filter options for the project browser.
type Facets struct {
	Statuses   []string `json:"statuses"`
	Ministries []string `json:"ministries"`
}
