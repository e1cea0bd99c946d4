// Package api exposes the aggregation views as read-only JSON endpoints.
// Each endpoint is a view descriptor interpreted by one generic handler, so
// adding a view means adding a table entry, not another handler body.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/auditcloud/findings-api/internal/domain"
	"github.com/auditcloud/findings-api/internal/logger"
)

// viewFunc produces one view's payload. Query parameters are read from the
// gin context before the service call; the returned value is rendered as the
// JSON response body.
type viewFunc func(ctx context.Context, c *gin.Context) (any, error)

// view describes one read-only endpoint.
type view struct {
	name   string
	path   string
	handle viewFunc
}

// handler wraps a view in the shared request handling: run the view, map
// the error model to status codes, render JSON.
func (h *Handler) handler(v view) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := v.handle(c.Request.Context(), c)
		if err != nil {
			h.renderError(c, v.name, err)
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}

// renderError maps sentinel errors to status codes. There are no partial
// results: any failure produces a flat {error} body and nothing else.
func (h *Handler) renderError(c *gin.Context, viewName string, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrMissingParameter) {
		status = http.StatusBadRequest
	}

	h.logger.Error("view failed",
		logger.String("view", viewName),
		logger.Int("status", status),
		logger.Error(err),
	)

	c.JSON(status, gin.H{"error": err.Error()})
}

// requireQuery reads a mandatory query parameter.
func requireQuery(c *gin.Context, name string) (string, error) {
	value := c.Query(name)
	if value == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrMissingParameter, name)
	}
	return value, nil
}

// listQuery reads an optional comma-separated query parameter.
func listQuery(c *gin.Context, name string) []string {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
