package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditcloud/findings-api/internal/domain"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name   string
		status string
		due    *time.Time
		want   string
	}{
		{"completed wins over past due", "Completed", datePtr(2020, 1, 1), domain.CategoryCompleted},
		{"completed case-insensitive", "COMPLETED", nil, domain.CategoryCompleted},
		{"past due is overdue", "In Progress", datePtr(2024, 6, 1), domain.CategoryOverdue},
		{"future due is open", "In Progress", datePtr(2024, 7, 1), domain.CategoryOpen},
		{"no due date is open", "In Progress", nil, domain.CategoryOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := domain.Record{Status: tt.status, DueDate: tt.due}
			assert.Equal(t, tt.want, categorize(&rec, testNow))
		})
	}
}

func TestStatusByYear(t *testing.T) {
	yearField := "customfield_16447"
	records := []domain.Record{
		{
			Key:    "F-1",
			Status: "Completed",
			Attrs:  map[string]any{yearField: map[string]any{"value": "2023"}},
		},
		{
			Key:     "F-2",
			Status:  "In Progress",
			DueDate: datePtr(2025, 1, 1),
			Attrs:   map[string]any{yearField: map[string]any{"value": "2023"}},
		},
		{
			Key:     "F-3",
			Status:  "In Progress",
			DueDate: datePtr(2024, 1, 1),
		},
	}

	byYear := statusByYear(records, yearField, testNow)

	require.Len(t, byYear, 2)
	assert.Equal(t, &domain.StatusBreakdown{Completed: 1, Open: 1}, byYear["2023"])
	assert.Equal(t, &domain.StatusBreakdown{Overdue: 1}, byYear["Unknown"])
}

func TestCountByStatus(t *testing.T) {
	records := []domain.Record{
		{Key: "F-1", Status: "Open"},
		{Key: "F-2", Status: "Open"},
		{Key: "F-3", Status: "Closed"},
		{Key: "F-4"},
	}

	counts := countByStatus(records)

	assert.Equal(t, map[string]int{
		"Open":    2,
		"Closed":  1,
		"Unknown": 1,
	}, counts)
}

func TestCountByAttr(t *testing.T) {
	records := []domain.Record{
		{Key: "F-1", Attrs: map[string]any{"lead": "Alice"}},
		{Key: "F-2", Attrs: map[string]any{"lead": "Alice"}},
		{Key: "F-3", Attrs: map[string]any{"lead": map[string]any{"value": "Bob"}}},
		{Key: "F-4"},
	}

	counts := countByAttr(records, "lead", domain.FallbackUnassigned)

	assert.Equal(t, map[string]int{
		"Alice":      2,
		"Bob":        1,
		"Unassigned": 1,
	}, counts)
}

func TestCrossTab(t *testing.T) {
	records := []domain.Record{
		{Key: "F-1", Attrs: map[string]any{"cat": "Access", "risk": map[string]any{"value": "High"}}},
		{Key: "F-2", Attrs: map[string]any{"cat": "Access", "risk": map[string]any{"value": "Low"}}},
		{Key: "F-3", Attrs: map[string]any{"cat": "Change", "risk": map[string]any{"value": "Critical"}}},
		{Key: "F-4", Attrs: map[string]any{"cat": "Access", "risk": map[string]any{"value": "High"}}},
		// Out-of-set level keeps its row but adds to no count.
		{Key: "F-5", Attrs: map[string]any{"cat": "Change", "risk": map[string]any{"value": "Informational"}}},
	}

	rows := crossTab(records, "cat", "risk")

	require.Len(t, rows, 3)

	// First-seen row order.
	assert.Equal(t, "Access", rows[0].Category)
	assert.Equal(t, "Change", rows[1].Category)
	assert.Equal(t, "Total", rows[2].Category)

	assert.Equal(t, domain.RiskRow{Category: "Access", High: 2, Low: 1, Total: 3}, rows[0])
	assert.Equal(t, domain.RiskRow{Category: "Change", Critical: 1, Total: 1}, rows[1])
	assert.Equal(t, domain.RiskRow{Category: "Total", Critical: 1, High: 2, Low: 1, Total: 4}, rows[2])

	// Every row's total equals the sum of its level columns, and the grand
	// total equals the sum of the other rows' totals.
	grand := 0
	for _, row := range rows[:len(rows)-1] {
		assert.Equal(t, row.Total, row.Critical+row.High+row.Medium+row.Low, row.Category)
		grand += row.Total
	}
	assert.Equal(t, grand, rows[len(rows)-1].Total)
}

func TestCrossTabEmpty(t *testing.T) {
	rows := crossTab(nil, "cat", "risk")

	require.Len(t, rows, 1)
	assert.Equal(t, domain.RiskRow{Category: "Total"}, rows[0])
}

func TestYearCountsReverseLexOrder(t *testing.T) {
	yearField := "year"
	records := []domain.Record{
		{Key: "F-1", Attrs: map[string]any{yearField: "2022"}},
		{Key: "F-2", Attrs: map[string]any{yearField: "2024"}},
		{Key: "F-3", Attrs: map[string]any{yearField: "2024"}},
		{Key: "F-4"},
		{Key: "F-5", Attrs: map[string]any{yearField: "2023"}},
	}

	counts := yearCounts(records, yearField)

	// String sort, descending: "Unknown" sorts above the digit years.
	assert.Equal(t, []domain.YearCount{
		{Year: "Unknown", Count: 1},
		{Year: "2024", Count: 2},
		{Year: "2023", Count: 1},
		{Year: "2022", Count: 1},
	}, counts)
}

func TestProjectWithFilters(t *testing.T) {
	records := []domain.Record{
		{Key: "F-1", Summary: "one", Attrs: map[string]any{"type": "Internal", "cat": "Access"}},
		{Key: "F-2", Summary: "two", Attrs: map[string]any{"type": "External", "cat": "Access"}},
		{Key: "F-3", Summary: "three", Attrs: map[string]any{"type": "Internal", "cat": "Change"}},
	}

	items := project(records,
		attrFilter{field: "type", fallback: domain.FallbackUnknown, allowed: allowSet([]string{"Internal"})},
		attrFilter{field: "cat", fallback: domain.FallbackUnassigned, allowed: allowSet([]string{"Access"})},
	)

	assert.Equal(t, []domain.ListItem{{Key: "F-1", Summary: "one"}}, items)
}

func TestProjectNoFilters(t *testing.T) {
	records := []domain.Record{
		{Key: "F-1", Summary: "one"},
		{Key: "F-2", Summary: "two"},
	}

	items := project(records)

	assert.Len(t, items, 2)
}

func TestAllowSet(t *testing.T) {
	assert.Nil(t, allowSet(nil))
	assert.Nil(t, allowSet([]string{}))
	assert.Equal(t, map[string]bool{"a": true, "b": true}, allowSet([]string{"a", " b "}))
}
