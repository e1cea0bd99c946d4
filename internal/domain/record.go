// Package domain defines the record model and aggregation result types
// shared by the tracker client, the aggregation engines, and the API layer.
package domain

import (
	"fmt"
	"time"
)

// Record kinds as reported by the tracker.
const (
	KindFinding       = "Audit Finding"
	KindAction        = "Finding Action"
	KindTask          = "Task"
	KindInvestigation = "Investigation"
)

// Fallback sentinels. The two are distinct on purpose: "Unknown" marks a
// field the tracker reported but left empty, "Unassigned" marks a person or
// category that was never set. Callers pass the one their field requires.
const (
	FallbackUnknown    = "Unknown"
	FallbackUnassigned = "Unassigned"
)

// Record is one issue fetched from the tracker. Records are read-only
// snapshots: they are fetched fresh per request and discarded after the
// response is produced.
type Record struct {
	Key       string         `json:"key"`
	Kind      string         `json:"kind"`
	Status    string         `json:"status"`
	Summary   string         `json:"summary"`
	CreatedAt time.Time      `json:"createdAt"`
	DueDate   *time.Time     `json:"dueDate,omitempty"`
	ParentKey string         `json:"parentKey,omitempty"`
	Attrs     map[string]any `json:"-"`
}

// Attr returns the canonical scalar form of a custom attribute.
//
// Attribute values arrive in three shapes: a plain scalar, an "option"
// object exposing a "value" field, or absent/null. All three normalize to a
// string; absent, null, empty and malformed values normalize to fallback.
// Attr is total: it never panics on any attribute shape.
func (r *Record) Attr(name, fallback string) string {
	if r.Attrs == nil {
		return fallback
	}
	return normalizeValue(r.Attrs[name], fallback)
}

// normalizeValue collapses the three attribute shapes into one scalar.
func normalizeValue(v any, fallback string) string {
	switch val := v.(type) {
	case nil:
		return fallback
	case string:
		if val == "" {
			return fallback
		}
		return val
	case map[string]any:
		inner, ok := val["value"]
		if !ok || inner == nil {
			return fallback
		}
		// Option values are one level deep; a nested object is malformed.
		if _, nested := inner.(map[string]any); nested {
			return fallback
		}
		return normalizeValue(inner, fallback)
	case float64:
		// JSON numbers decode as float64; years and scores are integral.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		return fallback
	}
}

// Index builds a key -> record lookup over records. Keys are unique per
// fetch batch, so a later duplicate would indicate a pagination bug; the
// first occurrence wins.
func Index(records []Record) map[string]*Record {
	idx := make(map[string]*Record, len(records))
	for i := range records {
		if _, seen := idx[records[i].Key]; !seen {
			idx[records[i].Key] = &records[i]
		}
	}
	return idx
}

// CountChildren returns how many of children reference parentKey.
func CountChildren(parentKey string, children []Record) int {
	count := 0
	for i := range children {
		if children[i].ParentKey == parentKey {
			count++
		}
	}
	return count
}

// ParentAttr resolves a child's effective grouping attribute through its
// parent. The bool result is false when the parent is not in the index
// (dangling references are tolerated, not fatal); callers decide whether to
// exclude the child or fall back to its own attribute.
func ParentAttr(child *Record, parents map[string]*Record, name, fallback string) (string, bool) {
	if child.ParentKey == "" {
		return fallback, false
	}
	parent, ok := parents[child.ParentKey]
	if !ok {
		return fallback, false
	}
	return parent.Attr(name, fallback), true
}
