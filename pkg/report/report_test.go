package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounts(t *testing.T) {
	var rs Results
	rs.Add("a", Applied, "")
	rs.Add("b", Skipped, "")
	rs.Add("c", FailedSoft, "timed out")

	assert.Equal(t, 1, rs.Count(Applied))
	assert.Equal(t, 1, rs.Count(Skipped))
	assert.Equal(t, 1, rs.Count(FailedSoft))
	assert.False(t, rs.Aborted())
	assert.False(t, rs.AllSkipped())
}

func TestAborted(t *testing.T) {
	var rs Results
	rs.Add("a", Applied, "")
	rs.Add("b", FailedHard, "no network")
	assert.True(t, rs.Aborted())
}

func TestAllSkipped(t *testing.T) {
	var rs Results
	assert.False(t, rs.AllSkipped(), "empty run is not a converged run")
	rs.Add("a", Skipped, "")
	rs.Add("b", Skipped, "")
	assert.True(t, rs.AllSkipped())
}

func TestSummaryMentionsDetail(t *testing.T) {
	var rs Results
	rs.Add("Rank mirrors", FailedSoft, "ranking timed out")
	s := rs.Summary()
	assert.Contains(t, s, "Rank mirrors: failed (ranking timed out)")
	assert.Contains(t, s, "1 failed")
}
