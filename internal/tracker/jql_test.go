package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJQL(t *testing.T) {
	assert.Equal(t, "project = FINDINGS", NewJQL("FINDINGS").String())

	assert.Equal(t,
		`project = FINDINGS AND issuetype = "Audit Finding"`,
		NewJQL("FINDINGS").Kind("Audit Finding").String(),
	)

	assert.Equal(t,
		`project = FINDINGS AND issuetype = "Finding Action" ORDER BY created DESC`,
		NewJQL("FINDINGS").Kind("Finding Action").OrderByCreatedDesc().String(),
	)

	assert.Equal(t,
		"project = FINDINGS ORDER BY created DESC",
		NewJQL("FINDINGS").OrderByCreatedDesc().String(),
	)
}
