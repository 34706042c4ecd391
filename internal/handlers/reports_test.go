package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReportDetailsTooLong(t *testing.T) {
	assert.False(t, reportDetailsTooLong(""))
	assert.False(t, reportDetailsTooLong(strings.Repeat("a", 500)))
	assert.True(t, reportDetailsTooLong(strings.Repeat("a", 501)))

	// 500 multibyte characters exceed 500 bytes but are still within the cap.
	assert.False(t, reportDetailsTooLong(strings.Repeat("é", 500)))
	assert.True(t, reportDetailsTooLong(strings.Repeat("é", 501)))
}
