package tracker

import "fmt"

// JQL builds the tracker query expressions the views need. The rest of the
// system treats the result as an opaque string.
type JQL struct {
	project string
	kind    string
	orderBy string
}

// NewJQL creates a query scoped to one project.
func NewJQL(project string) *JQL {
	return &JQL{project: project}
}

// Kind restricts the query to one issue kind.
func (q *JQL) Kind(kind string) *JQL {
	q.kind = kind
	return q
}

// OrderByCreatedDesc orders results newest-first, the stable fetch order
// used by every view.
func (q *JQL) OrderByCreatedDesc() *JQL {
	q.orderBy = "created DESC"
	return q
}

// String renders the query expression.
func (q *JQL) String() string {
	expr := fmt.Sprintf("project = %s", q.project)
	if q.kind != "" {
		expr += fmt.Sprintf(" AND issuetype = %q", q.kind)
	}
	if q.orderBy != "" {
		expr += " ORDER BY " + q.orderBy
	}
	return expr
}
