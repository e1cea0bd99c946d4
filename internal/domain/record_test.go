package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordAttr(t *testing.T) {
	tests := []struct {
		name     string
		attrs    map[string]any
		fallback string
		want     string
	}{
		{
			name:     "plain string",
			attrs:    map[string]any{"field": "2023"},
			fallback: "Unknown",
			want:     "2023",
		},
		{
			name:     "option object",
			attrs:    map[string]any{"field": map[string]any{"value": "High"}},
			fallback: "Unknown",
			want:     "High",
		},
		{
			name:     "option object with numeric value",
			attrs:    map[string]any{"field": map[string]any{"value": float64(2024)}},
			fallback: "Unknown",
			want:     "2024",
		},
		{
			name:     "absent",
			attrs:    map[string]any{},
			fallback: "Unassigned",
			want:     "Unassigned",
		},
		{
			name:     "null",
			attrs:    map[string]any{"field": nil},
			fallback: "Unknown",
			want:     "Unknown",
		},
		{
			name:     "empty string",
			attrs:    map[string]any{"field": ""},
			fallback: "Unknown",
			want:     "Unknown",
		},
		{
			name:     "object without value key",
			attrs:    map[string]any{"field": map[string]any{"id": "123"}},
			fallback: "Unknown",
			want:     "Unknown",
		},
		{
			name:     "object with null value",
			attrs:    map[string]any{"field": map[string]any{"value": nil}},
			fallback: "Unknown",
			want:     "Unknown",
		},
		{
			name:     "nested object value is malformed",
			attrs:    map[string]any{"field": map[string]any{"value": map[string]any{"value": "x"}}},
			fallback: "Unknown",
			want:     "Unknown",
		},
		{
			name:     "integral number",
			attrs:    map[string]any{"field": float64(2022)},
			fallback: "Unknown",
			want:     "2022",
		},
		{
			name:     "fractional number",
			attrs:    map[string]any{"field": 2.5},
			fallback: "Unknown",
			want:     "2.5",
		},
		{
			name:     "boolean",
			attrs:    map[string]any{"field": true},
			fallback: "Unknown",
			want:     "true",
		},
		{
			name:     "array is malformed",
			attrs:    map[string]any{"field": []any{"a", "b"}},
			fallback: "Unknown",
			want:     "Unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Record{Key: "F-1", Attrs: tt.attrs}
			assert.Equal(t, tt.want, rec.Attr("field", tt.fallback))
		})
	}
}

func TestRecordAttrNilBag(t *testing.T) {
	rec := Record{Key: "F-1"}
	assert.Equal(t, "Unknown", rec.Attr("anything", "Unknown"))
}

func TestIndexFirstOccurrenceWins(t *testing.T) {
	records := []Record{
		{Key: "F-1", Summary: "first"},
		{Key: "F-2", Summary: "second"},
		{Key: "F-1", Summary: "duplicate"},
	}

	idx := Index(records)

	assert.Len(t, idx, 2)
	assert.Equal(t, "first", idx["F-1"].Summary)
}

func TestCountChildren(t *testing.T) {
	actions := []Record{
		{Key: "A-1", ParentKey: "F-1"},
		{Key: "A-2", ParentKey: "F-1"},
		{Key: "A-3", ParentKey: "F-2"},
		{Key: "A-4"},
	}

	assert.Equal(t, 2, CountChildren("F-1", actions))
	assert.Equal(t, 1, CountChildren("F-2", actions))
	assert.Equal(t, 0, CountChildren("F-9", actions))
}

func TestParentAttr(t *testing.T) {
	parents := Index([]Record{
		{Key: "F-1", Attrs: map[string]any{"category": map[string]any{"value": "Access Control"}}},
	})

	linked := Record{Key: "A-1", ParentKey: "F-1"}
	value, ok := ParentAttr(&linked, parents, "category", FallbackUnassigned)
	assert.True(t, ok)
	assert.Equal(t, "Access Control", value)

	dangling := Record{Key: "A-2", ParentKey: "F-404"}
	_, ok = ParentAttr(&dangling, parents, "category", FallbackUnassigned)
	assert.False(t, ok)

	orphan := Record{Key: "A-3"}
	_, ok = ParentAttr(&orphan, parents, "category", FallbackUnassigned)
	assert.False(t, ok)
}

func TestParentAttrFallback(t *testing.T) {
	parents := Index([]Record{
		{Key: "F-1"},
	})

	linked := Record{Key: "A-1", ParentKey: "F-1"}
	value, ok := ParentAttr(&linked, parents, "category", FallbackUnassigned)
	assert.True(t, ok)
	assert.Equal(t, FallbackUnassigned, value)
}
