package service

import (
	"time"

	"github.com/auditcloud/findings-api/internal/domain"
)

// The day-offset histogram classifies records by how far their reference
// date lies from today, in whole days. Positive offsets are past dates.
//
// Bucket intervals are half-open (lo, hi], so every integer offset lands in
// exactly one bucket and an offset of 0 (due today) counts as "-30–0". The
// two end buckets are open-ended: "-720–-360" takes everything at or below
// -360 and "720+" everything above 720.
var (
	bucketBounds = []int{-720, -360, -180, -90, -30, 0, 30, 90, 180, 360, 720}

	// BucketLabels is the fixed label set, in ascending offset order.
	BucketLabels = []string{
		"-720–-360",
		"-360–-180",
		"-180–-90",
		"-90–-30",
		"-30–0",
		"0–30",
		"30–90",
		"90–180",
		"180–360",
		"360–720",
		"720+",
	}
)

// bucketFor returns the label of the bucket containing offset.
func bucketFor(offset int) string {
	if offset <= bucketBounds[1] {
		return BucketLabels[0]
	}
	for i := 2; i < len(bucketBounds); i++ {
		if offset <= bucketBounds[i] {
			return BucketLabels[i-1]
		}
	}
	return BucketLabels[len(BucketLabels)-1]
}

// ageHistogram buckets records by the signed day offset between now and the
// record's reference date. Records whose status is outside the allow-list,
// or that have no usable reference date, are skipped entirely rather than
// bucketed as zero. Every bucket label is present in the result, even at
// zero, so chart consumers get a stable axis.
func ageHistogram(
	records []domain.Record,
	now time.Time,
	statuses map[string]bool,
	refDate func(*domain.Record) (time.Time, bool),
) map[string]int {
	buckets := make(map[string]int, len(BucketLabels))
	for _, label := range BucketLabels {
		buckets[label] = 0
	}

	for i := range records {
		if statuses != nil && !statuses[records[i].Status] {
			continue
		}
		ref, ok := refDate(&records[i])
		if !ok {
			continue
		}
		buckets[bucketFor(domain.DayOffset(now, ref))]++
	}

	return buckets
}

// dueDateRef reads a record's standard due date.
func dueDateRef(rec *domain.Record) (time.Time, bool) {
	if rec.DueDate == nil {
		return time.Time{}, false
	}
	return *rec.DueDate, true
}

// attrDateRef reads a date carried in a custom attribute, such as the
// revised due date on delayed actions.
func attrDateRef(field string) func(*domain.Record) (time.Time, bool) {
	return func(rec *domain.Record) (time.Time, bool) {
		raw := rec.Attr(field, "")
		if raw == "" {
			return time.Time{}, false
		}
		t, err := domain.ParseDate(raw)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}
