package vote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeededIsUnanimousForTwoPlayers(t *testing.T) {
	assert.Equal(t, 2, Needed(2))
}

func TestNeededIsHalfRoundedUpForLargerTables(t *testing.T) {
	assert.Equal(t, 2, Needed(3))
	assert.Equal(t, 2, Needed(4))
	assert.Equal(t, 3, Needed(5))
	assert.Equal(t, 3, Needed(6))
	assert.Equal(t, 4, Needed(7))
}

// S6 — restart vote quorum (4 players, ceil(4/2) = 2): one yes and one
// no is not enough, a second yes is.
func TestS6QuorumForFourPlayers(t *testing.T) {
	v := New("a")
	eligible := []string{"a", "b", "c", "d"}
	assert.Equal(t, Pending, v.Resolve(eligible))

	v.Record("b", false)
	assert.Equal(t, Pending, v.Resolve(eligible))

	v.Record("c", true)
	assert.Equal(t, Passed, v.Resolve(eligible))
}

func TestVoteRejectsOnceNoMajorityIsImpossible(t *testing.T) {
	v := New("a")
	eligible := []string{"a", "b", "c", "d"}
	v.Record("b", false)
	v.Record("c", false)
	v.Record("d", false)
	// a yes, b/c/d no: 3 no out of 4, needed 2, so yes-count can no
	// longer reach 2 (no-count 3 > n - needed = 2).
	assert.Equal(t, Rejected, v.Resolve(eligible))
}

func TestResolveOnTimeoutTreatsMissingVotesAsNo(t *testing.T) {
	v := New("a")
	eligible := []string{"a", "b", "c"}
	// a voted yes; b, c never voted.
	assert.Equal(t, Rejected, v.ResolveOnTimeout(eligible))
}

func TestVoteMonotonicityPostResolutionVotesIgnored(t *testing.T) {
	v := New("a")
	eligible := []string{"a", "b"}
	v.Record("b", true)
	require := assert.New(t)
	require.Equal(Passed, v.Resolve(eligible))

	accepted := v.Record("b", false)
	require.False(accepted)
	require.Equal(Passed, v.Resolve(eligible))
}
