package service

import (
	"sort"
	"strings"
	"time"

	"github.com/auditcloud/findings-api/internal/domain"
)

// The aggregation engines in this file are pure functions over a fetched
// record collection. "Now" is always passed in by the caller, evaluated
// once per request, so a response never straddles a day boundary.

// countByAttr groups records by one normalized attribute and counts them.
func countByAttr(records []domain.Record, field, fallback string) map[string]int {
	counts := make(map[string]int)
	for i := range records {
		counts[records[i].Attr(field, fallback)]++
	}
	return counts
}

// countByStatus counts records per status label. A missing status becomes
// the literal "Unknown" label; this is a different source field than the
// "Unassigned" sentinel used for people and categories.
func countByStatus(records []domain.Record) map[string]int {
	counts := make(map[string]int)
	for i := range records {
		status := records[i].Status
		if status == "" {
			status = domain.FallbackUnknown
		}
		counts[status]++
	}
	return counts
}

// categorize derives the three-way completion category. A completed status
// wins over any due-date comparison; an uncompleted record is overdue only
// when its due date lies strictly before now.
func categorize(rec *domain.Record, now time.Time) string {
	if strings.EqualFold(rec.Status, "completed") {
		return domain.CategoryCompleted
	}
	if rec.DueDate != nil && rec.DueDate.Before(now) {
		return domain.CategoryOverdue
	}
	return domain.CategoryOpen
}

// statusByYear cross-groups records by audit year and completion category.
func statusByYear(records []domain.Record, yearField string, now time.Time) map[string]*domain.StatusBreakdown {
	byYear := make(map[string]*domain.StatusBreakdown)
	for i := range records {
		year := records[i].Attr(yearField, domain.FallbackUnknown)

		breakdown, ok := byYear[year]
		if !ok {
			breakdown = &domain.StatusBreakdown{}
			byYear[year] = breakdown
		}

		switch categorize(&records[i], now) {
		case domain.CategoryCompleted:
			breakdown.Completed++
		case domain.CategoryOverdue:
			breakdown.Overdue++
		default:
			breakdown.Open++
		}
	}
	return byYear
}

// crossTab builds the category x risk-level table. Rows keep first-seen
// scan order; columns are the fixed risk levels, zero-filled when a level
// never occurs for a row. The last row is a synthetic total over every
// column.
func crossTab(records []domain.Record, rowField, colField string) []domain.RiskRow {
	rowIndex := make(map[string]int)
	rows := make([]domain.RiskRow, 0)

	for i := range records {
		category := records[i].Attr(rowField, domain.FallbackUnassigned)
		level := records[i].Attr(colField, domain.FallbackUnknown)

		idx, ok := rowIndex[category]
		if !ok {
			idx = len(rows)
			rowIndex[category] = idx
			rows = append(rows, domain.RiskRow{Category: category})
		}

		// Row totals always equal the sum of the fixed columns, so a level
		// outside the column set keeps its row but adds to no count.
		switch level {
		case "Critical":
			rows[idx].Critical++
			rows[idx].Total++
		case "High":
			rows[idx].High++
			rows[idx].Total++
		case "Medium":
			rows[idx].Medium++
			rows[idx].Total++
		case "Low":
			rows[idx].Low++
			rows[idx].Total++
		}
	}

	totals := domain.RiskRow{Category: "Total"}
	for i := range rows {
		totals.Critical += rows[i].Critical
		totals.High += rows[i].High
		totals.Medium += rows[i].Medium
		totals.Low += rows[i].Low
		totals.Total += rows[i].Total
	}
	rows = append(rows, totals)

	return rows
}

// yearCounts counts each record once per normalized year and emits the
// result sorted by year string in reverse lexicographic order. Years sort
// as strings, not numbers, which keeps "Unknown" deterministically placed.
func yearCounts(records []domain.Record, yearField string) []domain.YearCount {
	counts := countByAttr(records, yearField, domain.FallbackUnknown)

	result := make([]domain.YearCount, 0, len(counts))
	for year, count := range counts {
		result = append(result, domain.YearCount{Year: year, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Year > result[j].Year
	})
	return result
}

// attrFilter is one normalized-attribute membership predicate.
type attrFilter struct {
	field    string
	fallback string
	allowed  map[string]bool
}

// allowSet builds a membership set from a comma-separated allow-list.
// An empty list means no restriction.
func allowSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			set[trimmed] = true
		}
	}
	return set
}

// project maps records to list items, applying the given attribute filters
// first.
func project(records []domain.Record, filters ...attrFilter) []domain.ListItem {
	items := make([]domain.ListItem, 0, len(records))
	for i := range records {
		if !passes(&records[i], filters) {
			continue
		}
		items = append(items, domain.ListItem{
			Key:     records[i].Key,
			Summary: records[i].Summary,
		})
	}
	return items
}

func passes(rec *domain.Record, filters []attrFilter) bool {
	for _, f := range filters {
		if f.allowed == nil {
			continue
		}
		if !f.allowed[rec.Attr(f.field, f.fallback)] {
			return false
		}
	}
	return true
}
