// Package vote implements the restart-vote subsystem: quorum tracking
// and a single, monotonic resolution that either passes, rejects, or
// stays pending until the next recorded vote or the timeout.
package vote

// Outcome is the result of evaluating a Vote against its eligible
// voters.
type Outcome int

const (
	Pending Outcome = iota
	Passed
	Rejected
)

// Vote is one in-flight restart vote for a room.
type Vote struct {
	InitiatorID string
	Votes       map[string]bool

	resolved bool
	outcome  Outcome
}

// New opens a vote with the initiator already recorded as a yes.
func New(initiatorID string) *Vote {
	return &Vote{InitiatorID: initiatorID, Votes: map[string]bool{initiatorID: true}}
}

// Needed returns the yes-count required to pass among n eligible
// voters: unanimous (n) when n == 2, otherwise at least half, rounded
// up (ceil(n/2)).
func Needed(n int) int {
	if n == 2 {
		return 2
	}
	return (n + 1) / 2
}

// Record stores playerID's vote. Ignored once the vote has resolved,
// per the monotonicity property: post-resolution votes never change the
// outcome. Reports whether the vote was accepted.
func (v *Vote) Record(playerID string, yes bool) bool {
	if v.resolved {
		return false
	}
	v.Votes[playerID] = yes
	return true
}

// Resolved reports whether this vote has already reached a terminal
// outcome.
func (v *Vote) Resolved() bool {
	return v.resolved
}

func (v *Vote) tally(eligible []string) (yes, no int) {
	for _, id := range eligible {
		val, voted := v.Votes[id]
		if !voted {
			continue
		}
		if val {
			yes++
		} else {
			no++
		}
	}
	return
}

// Resolve evaluates the current votes against eligible (game.players).
// Once an outcome other than Pending is reached it is latched: later
// calls return the same Outcome without re-evaluating votes.
func (v *Vote) Resolve(eligible []string) Outcome {
	if v.resolved {
		return v.outcome
	}

	n := len(eligible)
	needed := Needed(n)
	yes, no := v.tally(eligible)

	var outcome Outcome
	switch {
	case yes >= needed:
		outcome = Passed
	case no > n-needed:
		outcome = Rejected
	default:
		outcome = Pending
	}

	if outcome != Pending {
		v.resolved = true
		v.outcome = outcome
	}
	return outcome
}

// ResolveOnTimeout treats every eligible voter who has not yet voted as
// a no, then resolves. This pass is always terminal: with nobody left
// undecided, yes-count and no-count exhaust every eligible voter, so
// either the quorum was met or it wasn't.
func (v *Vote) ResolveOnTimeout(eligible []string) Outcome {
	if v.resolved {
		return v.outcome
	}
	for _, id := range eligible {
		if _, voted := v.Votes[id]; !voted {
			v.Votes[id] = false
		}
	}
	return v.Resolve(eligible)
}
