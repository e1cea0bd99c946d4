package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditcloud/findings-api/internal/domain"
)

func TestBucketForCoversEveryOffset(t *testing.T) {
	// Walk a wide offset range and confirm every offset maps to exactly one
	// bucket, and that bucket membership is monotone in the offset.
	lastIdx := -1
	indexOf := func(label string) int {
		for i, l := range BucketLabels {
			if l == label {
				return i
			}
		}
		return -1
	}

	for offset := -1000; offset <= 1000; offset++ {
		label := bucketFor(offset)
		idx := indexOf(label)
		require.GreaterOrEqual(t, idx, 0, "offset %d mapped to unknown label %q", offset, label)
		require.GreaterOrEqual(t, idx, lastIdx, "bucket order regressed at offset %d", offset)
		lastIdx = idx
	}
}

func TestBucketForBoundaries(t *testing.T) {
	tests := []struct {
		offset int
		want   string
	}{
		{-1000, "-720–-360"},
		{-720, "-720–-360"},
		{-361, "-720–-360"},
		{-360, "-720–-360"},
		{-359, "-360–-180"},
		{-180, "-360–-180"},
		{-30, "-90–-30"},
		{-29, "-30–0"},
		{0, "-30–0"},
		{1, "0–30"},
		{30, "0–30"},
		{31, "30–90"},
		{720, "360–720"},
		{721, "720+"},
		{5000, "720+"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, bucketFor(tt.offset), "offset %d", tt.offset)
	}
}

func TestAgeHistogram(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	records := []domain.Record{
		{Key: "F-1", Status: "Open", DueDate: datePtr(2024, 6, 15)},    // offset 0
		{Key: "F-2", Status: "Open", DueDate: datePtr(2024, 6, 10)},    // 5 days past
		{Key: "F-3", Status: "Overdue", DueDate: datePtr(2024, 3, 1)},  // ~106 days past
		{Key: "F-4", Status: "Open", DueDate: datePtr(2024, 7, 20)},    // 35 days ahead
		{Key: "F-5", Status: "Completed", DueDate: datePtr(2024, 1, 1)}, // filtered out
		{Key: "F-6", Status: "Open"},                                    // no date, skipped
	}

	buckets := ageHistogram(records, now,
		map[string]bool{"Open": true, "Overdue": true},
		dueDateRef,
	)

	// Every label present even at zero.
	require.Len(t, buckets, len(BucketLabels))
	for _, label := range BucketLabels {
		_, ok := buckets[label]
		require.True(t, ok, "missing bucket %q", label)
	}

	assert.Equal(t, 1, buckets["-30–0"], "due today")
	assert.Equal(t, 1, buckets["0–30"], "five days past")
	assert.Equal(t, 1, buckets["90–180"], "three months past")
	assert.Equal(t, 1, buckets["-90–-30"], "a month ahead")

	total := 0
	for _, n := range buckets {
		total += n
	}
	assert.Equal(t, 4, total)
}

func TestAgeHistogramAttrDateRef(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	field := "customfield_16389"
	records := []domain.Record{
		{Key: "A-1", Status: "Delayed", Attrs: map[string]any{field: "2024-05-01"}},
		{Key: "A-2", Status: "Delayed", Attrs: map[string]any{field: "garbage"}},
		{Key: "A-3", Status: "Delayed"},
		{Key: "A-4", Status: "Open", Attrs: map[string]any{field: "2024-05-01"}},
	}

	buckets := ageHistogram(records, now,
		map[string]bool{"Delayed": true},
		attrDateRef(field),
	)

	// 45 days past: only A-1 qualifies.
	assert.Equal(t, 1, buckets["30–90"])

	total := 0
	for _, n := range buckets {
		total += n
	}
	assert.Equal(t, 1, total)
}
