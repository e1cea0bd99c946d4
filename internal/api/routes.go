package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/auditcloud/findings-api/internal/logger"
	"github.com/auditcloud/findings-api/internal/service"
	"github.com/auditcloud/findings-api/internal/telemetry"
)

// Handler owns the view endpoints and their shared dependencies.
type Handler struct {
	svc     *service.InsightService
	metrics *telemetry.Metrics
	logger  logger.Logger
}

// NewHandler creates the API handler.
func NewHandler(svc *service.InsightService, metrics *telemetry.Metrics, log logger.Logger) *Handler {
	return &Handler{
		svc:     svc,
		metrics: metrics,
		logger:  log,
	}
}

// RegisterRoutes mounts every view under /api/v1 plus the metrics endpoint.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	if h.metrics != nil {
		router.Use(h.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(h.metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	for _, v := range h.views() {
		v1.GET(v.path, h.handler(v))
	}
}

// views is the full endpoint table.
func (h *Handler) views() []view {
	return []view{
		{
			name: "issues",
			path: "/issues",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.Issues(ctx)
			},
		},
		{
			name: "finding_summary",
			path: "/findings/summary",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.FindingSummary(ctx)
			},
		},
		{
			name: "finding_status_by_year",
			path: "/findings/status-by-year",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.FindingStatusByYear(ctx)
			},
		},
		{
			name: "finding_details",
			path: "/findings/details",
			handle: func(ctx context.Context, c *gin.Context) (any, error) {
				year, err := requireQuery(c, "year")
				if err != nil {
					return nil, err
				}
				status, err := requireQuery(c, "status")
				if err != nil {
					return nil, err
				}
				return h.svc.FindingDetails(ctx, year, status)
			},
		},
		{
			name: "findings_by_status",
			path: "/findings/by-status",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.FindingsByStatus(ctx)
			},
		},
		{
			name: "findings_by_year",
			path: "/findings/by-year",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.FindingsByYear(ctx)
			},
		},
		{
			name: "findings_by_lead",
			path: "/findings/by-lead",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.FindingsByLead(ctx)
			},
		},
		{
			name: "risk_by_category",
			path: "/findings/risk-by-category",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.RiskByCategory(ctx)
			},
		},
		{
			name: "findings_by_audit_type",
			path: "/findings/by-audit-type",
			handle: func(ctx context.Context, c *gin.Context) (any, error) {
				return h.svc.FindingsByAuditType(ctx,
					listQuery(c, "types"),
					listQuery(c, "categories"),
				)
			},
		},
		{
			name: "finding_due_age",
			path: "/findings/due-age",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.FindingDueAge(ctx)
			},
		},
		{
			name: "actions_by_status",
			path: "/actions/by-status",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.ActionsByStatus(ctx)
			},
		},
		{
			name: "actions_by_category",
			path: "/actions/by-category",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.ActionsByCategory(ctx)
			},
		},
		{
			name: "actions_delayed_age",
			path: "/actions/delayed-age",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.ActionsDelayedAge(ctx)
			},
		},
		{
			name: "investigations_by_status",
			path: "/investigations/by-status",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.InvestigationsByStatus(ctx)
			},
		},
		{
			name: "investigations_by_year",
			path: "/investigations/by-year",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.InvestigationsByYear(ctx)
			},
		},
		{
			name: "report_kpi",
			path: "/reports/kpi",
			handle: func(ctx context.Context, _ *gin.Context) (any, error) {
				return h.svc.KPIReport(ctx)
			},
		},
		{
			name: "report_ranges",
			path: "/reports/ranges",
			handle: func(ctx context.Context, c *gin.Context) (any, error) {
				if _, err := requireQuery(c, "ranges"); err != nil {
					return nil, err
				}
				return h.svc.ReportRanges(ctx, listQuery(c, "ranges"))
			},
		},
	}
}
