package domain

// Status categories derived for year breakdowns. Completion takes
// precedence over the due-date comparison.
const (
	CategoryCompleted = "Completed"
	CategoryOpen      = "Open"
	CategoryOverdue   = "Overdue"
)

// RiskLevels is the fixed ordered column set of the risk cross-tabulation.
// Unseen levels for a row are reported as zero, never omitted.
var RiskLevels = []string{"Critical", "High", "Medium", "Low"}

// ListItem is one row of a drill-down detail view.
type ListItem struct {
	Key     string `json:"key"`
	Summary string `json:"summary"`
}

// FindingSummary is one finding with the number of actions linked to it.
type FindingSummary struct {
	Key         string `json:"key"`
	Summary     string `json:"summary"`
	ActionCount int    `json:"actionCount"`
}

// StatusBreakdown counts the three derived categories for one year.
type StatusBreakdown struct {
	Completed int `json:"Completed"`
	Open      int `json:"Open"`
	Overdue   int `json:"Overdue"`
}

// RiskRow is one row of the risk cross-tabulation. Rows keep first-seen
// order; the final row is a synthetic total over every column.
type RiskRow struct {
	Category string `json:"category"`
	Critical int    `json:"Critical"`
	High     int    `json:"High"`
	Medium   int    `json:"Medium"`
	Low      int    `json:"Low"`
	Total    int    `json:"Total"`
}

// YearCount is one entry of the per-year unique count, emitted in reverse
// lexicographic year order.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}
