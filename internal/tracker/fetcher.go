package tracker

import (
	"context"
	"fmt"

	"github.com/auditcloud/findings-api/internal/domain"
	"github.com/auditcloud/findings-api/internal/logger"
)

// SearchAll fetches every record matching the query, page by page in
// ascending offset order, until the server-reported total is reached.
//
// Two failure modes are guarded against explicitly: a transient short page
// must not end the fetch early while the total is unreached, and an
// inconsistent server total must not spin the loop forever. A page that
// yields no records before the total is reached, or a fetch that exceeds
// the configured page cap, aborts with domain.ErrFetchIncomplete. Any page
// failure discards the partial result; there are no partial-success
// semantics.
func (c *Client) SearchAll(ctx context.Context, jql string) ([]domain.Record, error) {
	var records []domain.Record
	total := -1

	for page := 0; ; page++ {
		if page >= c.cfg.MaxPages {
			return nil, fmt.Errorf("%w: page cap %d reached at %d of %d records",
				domain.ErrFetchIncomplete, c.cfg.MaxPages, len(records), total)
		}

		result, err := c.Search(ctx, jql, len(records), c.cfg.PageSize)
		if err != nil {
			return nil, err
		}

		total = result.Total
		if len(records) >= total {
			// Query matched nothing, or a concurrent deletion shrank the
			// total below what is already accumulated.
			break
		}

		if len(result.Records) == 0 {
			return nil, fmt.Errorf("%w: offset %d stalled with %d of %d records",
				domain.ErrFetchIncomplete, len(records), len(records), total)
		}

		records = append(records, result.Records...)
		if len(records) >= total {
			break
		}
	}

	c.logger.Debug("fetch complete",
		logger.String("jql", jql),
		logger.Int("records", len(records)),
		logger.Int("total", total),
	)

	return records, nil
}
