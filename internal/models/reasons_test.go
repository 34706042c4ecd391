package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlockReason(t *testing.T) {
	for _, valid := range []string{"spam", "harassment", "inappropriate_content", "suspicious_activity", "other"} {
		got, err := ParseBlockReason(valid)
		require.NoError(t, err)
		assert.Equal(t, BlockReason(valid), got)
	}

	// Empty defaults to other; it is the one open-ended escape hatch.
	got, err := ParseBlockReason("")
	require.NoError(t, err)
	assert.Equal(t, BlockReasonOther, got)

	_, err = ParseBlockReason("because")
	assert.Error(t, err)

	// Report reasons are a different set and must not leak in.
	_, err = ParseBlockReason("hate_speech")
	assert.Error(t, err)
}

func TestParseReportReason(t *testing.T) {
	for _, valid := range []string{"spam", "harassment", "inappropriate", "threats", "hate_speech", "other"} {
		got, err := ParseReportReason(valid)
		require.NoError(t, err)
		assert.Equal(t, ReportReason(valid), got)
	}

	// No empty default: a report must say why.
	_, err := ParseReportReason("")
	assert.Error(t, err)

	_, err = ParseReportReason("inappropriate_content")
	assert.Error(t, err)
}
