// Package service implements the aggregation views over tracker records
// and spreadsheet cells. Every view fetches fresh data, aggregates it in
// memory, and returns one of the fixed result shapes; nothing is cached
// between requests.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/auditcloud/findings-api/internal/config"
	"github.com/auditcloud/findings-api/internal/domain"
	"github.com/auditcloud/findings-api/internal/logger"
	"github.com/auditcloud/findings-api/internal/telemetry"
	"github.com/auditcloud/findings-api/internal/tracker"
)

// Searcher is the tracker operation the views need.
type Searcher interface {
	SearchAll(ctx context.Context, jql string) ([]domain.Record, error)
}

// SheetReader is the spreadsheet operation the report views need.
type SheetReader interface {
	ReadRange(ctx context.Context, spreadsheetID, rangeSpec string) ([][]any, error)
	ReadRanges(ctx context.Context, spreadsheetID string, rangeSpecs []string) ([][][]any, error)
}

// InsightService orchestrates fetch, normalization, and aggregation for
// every view endpoint.
type InsightService struct {
	searcher Searcher
	sheets   SheetReader
	project  string
	fields   config.FieldIDs
	sheetCfg config.SheetsConfig
	metrics  *telemetry.Metrics
	logger   logger.Logger
	now      func() time.Time
}

// NewInsightService creates the service. sheets may be nil when the sheet
// views are not configured; their endpoints then fail with
// ErrSourceUnavailable instead of panicking.
func NewInsightService(
	searcher Searcher,
	sheets SheetReader,
	cfg *config.Config,
	metrics *telemetry.Metrics,
	log logger.Logger,
) *InsightService {
	return &InsightService{
		searcher: searcher,
		sheets:   sheets,
		project:  cfg.Tracker.Project,
		fields:   cfg.Tracker.Fields,
		sheetCfg: cfg.Sheets,
		metrics:  metrics,
		logger:   log,
		now:      time.Now,
	}
}

// WithClock replaces the request clock. Used by tests to pin "now".
func (s *InsightService) WithClock(now func() time.Time) *InsightService {
	s.now = now
	return s
}

// fetch runs one exhaustive tracker fetch and records its outcome.
func (s *InsightService) fetch(ctx context.Context, jql string) ([]domain.Record, error) {
	records, err := s.searcher.SearchAll(ctx, jql)
	if s.metrics != nil {
		s.metrics.ObserveFetch("tracker", err, len(records))
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (s *InsightService) fetchKind(ctx context.Context, kind string) ([]domain.Record, error) {
	return s.fetch(ctx, tracker.NewJQL(s.project).Kind(kind).OrderByCreatedDesc().String())
}

// Issues lists every record in the project.
func (s *InsightService) Issues(ctx context.Context) ([]domain.ListItem, error) {
	records, err := s.fetch(ctx, tracker.NewJQL(s.project).OrderByCreatedDesc().String())
	if err != nil {
		return nil, err
	}
	return project(records), nil
}

// FindingSummary lists findings with the number of actions linked to each.
// One project-wide fetch covers both kinds; the linkage runs in memory.
func (s *InsightService) FindingSummary(ctx context.Context) ([]domain.FindingSummary, error) {
	records, err := s.fetch(ctx, tracker.NewJQL(s.project).OrderByCreatedDesc().String())
	if err != nil {
		return nil, err
	}

	var findings, actions []domain.Record
	for i := range records {
		switch records[i].Kind {
		case domain.KindFinding:
			findings = append(findings, records[i])
		case domain.KindAction:
			actions = append(actions, records[i])
		}
	}

	summary := make([]domain.FindingSummary, 0, len(findings))
	for i := range findings {
		summary = append(summary, domain.FindingSummary{
			Key:         findings[i].Key,
			Summary:     findings[i].Summary,
			ActionCount: domain.CountChildren(findings[i].Key, actions),
		})
	}
	return summary, nil
}

// FindingStatusByYear groups findings by audit year and completion category.
func (s *InsightService) FindingStatusByYear(ctx context.Context) (map[string]*domain.StatusBreakdown, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}
	return statusByYear(findings, s.fields.AuditYear, s.now()), nil
}

// FindingDetails lists the findings matching one year and one derived
// status category. year "all" matches every year; a finding without an
// audit year matches the "Not Assigned" label.
func (s *InsightService) FindingDetails(ctx context.Context, year, status string) ([]domain.ListItem, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}

	now := s.now()
	items := make([]domain.ListItem, 0)
	for i := range findings {
		findingYear := findings[i].Attr(s.fields.AuditYear, domain.FallbackUnknown)
		if findingYear == domain.FallbackUnknown {
			findingYear = "Not Assigned"
		}

		if year != "all" && findingYear != year {
			continue
		}
		if categorize(&findings[i], now) != status {
			continue
		}

		items = append(items, domain.ListItem{
			Key:     findings[i].Key,
			Summary: findings[i].Summary,
		})
	}
	return items, nil
}

// FindingsByStatus counts findings per raw status label.
func (s *InsightService) FindingsByStatus(ctx context.Context) (map[string]int, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}
	return countByStatus(findings), nil
}

// FindingsByYear counts findings per audit year.
func (s *InsightService) FindingsByYear(ctx context.Context) ([]domain.YearCount, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}
	return yearCounts(findings, s.fields.AuditYear), nil
}

// FindingsByLead counts findings per audit lead.
func (s *InsightService) FindingsByLead(ctx context.Context) (map[string]int, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}
	return countByAttr(findings, s.fields.AuditLead, domain.FallbackUnassigned), nil
}

// RiskByCategory cross-tabulates findings by control category and risk
// level, with totals.
func (s *InsightService) RiskByCategory(ctx context.Context) ([]domain.RiskRow, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}
	return crossTab(findings, s.fields.Category, s.fields.RiskLevel), nil
}

// FindingsByAuditType lists findings restricted to the given audit types
// and, optionally, control categories. Empty lists mean no restriction.
func (s *InsightService) FindingsByAuditType(ctx context.Context, types, categories []string) ([]domain.ListItem, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}
	return project(findings,
		attrFilter{field: s.fields.AuditType, fallback: domain.FallbackUnknown, allowed: allowSet(types)},
		attrFilter{field: s.fields.Category, fallback: domain.FallbackUnassigned, allowed: allowSet(categories)},
	), nil
}

// FindingDueAge buckets open and overdue findings by how far their due
// date lies from today.
func (s *InsightService) FindingDueAge(ctx context.Context) (map[string]int, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}
	return ageHistogram(findings, s.now(),
		map[string]bool{"Open": true, "Overdue": true},
		dueDateRef,
	), nil
}

// ActionsByStatus counts actions per raw status label.
func (s *InsightService) ActionsByStatus(ctx context.Context) (map[string]int, error) {
	actions, err := s.fetchKind(ctx, domain.KindAction)
	if err != nil {
		return nil, err
	}
	return countByStatus(actions), nil
}

// ActionsByCategory counts actions by their parent finding's control
// category. The parents are fetched separately; actions whose parent is
// absent from that fetch are excluded from this view (they still appear in
// the views keyed on their own fields).
func (s *InsightService) ActionsByCategory(ctx context.Context) (map[string]int, error) {
	findings, err := s.fetchKind(ctx, domain.KindFinding)
	if err != nil {
		return nil, err
	}
	actions, err := s.fetchKind(ctx, domain.KindAction)
	if err != nil {
		return nil, err
	}

	parents := domain.Index(findings)
	counts := make(map[string]int)
	skipped := 0
	for i := range actions {
		category, ok := domain.ParentAttr(&actions[i], parents, s.fields.Category, domain.FallbackUnassigned)
		if !ok {
			skipped++
			continue
		}
		counts[category]++
	}

	if skipped > 0 {
		s.logger.Debug("actions excluded for missing parents",
			logger.Int("skipped", skipped),
			logger.Int("total", len(actions)),
		)
	}
	return counts, nil
}

// ActionsDelayedAge buckets delayed actions by how far their revised due
// date lies from today.
func (s *InsightService) ActionsDelayedAge(ctx context.Context) (map[string]int, error) {
	actions, err := s.fetchKind(ctx, domain.KindAction)
	if err != nil {
		return nil, err
	}
	return ageHistogram(actions, s.now(),
		map[string]bool{"Delayed": true},
		attrDateRef(s.fields.RevisedDue),
	), nil
}

// InvestigationsByStatus counts investigations per raw status label.
func (s *InsightService) InvestigationsByStatus(ctx context.Context) (map[string]int, error) {
	investigations, err := s.fetchKind(ctx, domain.KindInvestigation)
	if err != nil {
		return nil, err
	}
	return countByStatus(investigations), nil
}

// InvestigationsByYear counts investigations per audit year.
func (s *InsightService) InvestigationsByYear(ctx context.Context) ([]domain.YearCount, error) {
	investigations, err := s.fetchKind(ctx, domain.KindInvestigation)
	if err != nil {
		return nil, err
	}
	return yearCounts(investigations, s.fields.AuditYear), nil
}

// KPIReport returns the fixed KPI cell range verbatim.
func (s *InsightService) KPIReport(ctx context.Context) ([][]any, error) {
	if s.sheets == nil {
		return nil, fmt.Errorf("%w: sheet service not configured", domain.ErrSourceUnavailable)
	}
	values, err := s.sheets.ReadRange(ctx, s.sheetCfg.SpreadsheetID, s.sheetCfg.KPIRange)
	if s.metrics != nil {
		s.metrics.ObserveFetch("sheets", err, 0)
	}
	return values, err
}

// ReportRanges returns several cell ranges verbatim, in request order.
func (s *InsightService) ReportRanges(ctx context.Context, ranges []string) ([][][]any, error) {
	if s.sheets == nil {
		return nil, fmt.Errorf("%w: sheet service not configured", domain.ErrSourceUnavailable)
	}
	values, err := s.sheets.ReadRanges(ctx, s.sheetCfg.SpreadsheetID, ranges)
	if s.metrics != nil {
		s.metrics.ObserveFetch("sheets", err, 0)
	}
	return values, err
}
