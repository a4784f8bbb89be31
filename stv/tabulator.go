// Package stv implements a deterministic Single Transferable Vote
// tabulator: Droop quota, fractional surplus transfer, and an
// auditable tie-break rule that looks back through prior rounds.
//
// The package owns no storage, performs no I/O, and runs single
// threaded. It is driven through New and Run (or Step, one round at a
// time); History exposes
// the per-round audit trail Run built up.
package stv

import (
	"fmt"
	"slices"
)

// Tabulator owns the election state machine described in spec §3: the
// Droop quota, the remaining candidate set, the winners found so far,
// and the append-only round history.
type Tabulator[C comparable] struct {
	candidates []C
	numWinners int
	ballots    []*Ballot[C]

	quota     int
	remaining map[C]struct{}
	winners   []C
	history   []RoundSummary[C]

	rng  RNG
	done bool

	// debug, when true, runs the single-pass invariant check described
	// in spec §9 at the top of every round.
	debug bool
}

// Option configures a Tabulator at construction.
type Option[C comparable] func(*Tabulator[C])

// WithDebugInvariants turns on the per-round invariant check from
// spec §9: every ballot whose stack is non-empty and whose weight is
// above Zero must have its top in remaining. A violation surfaces as
// ErrInternalInvariant.
func WithDebugInvariants[C comparable]() Option[C] {
	return func(t *Tabulator[C]) { t.debug = true }
}

// New constructs a Tabulator from a candidate set, the number of seats
// to fill, and the finite sequence of input preference lists (spec
// §4.1 Construct). rng supplies the tie-break fallback; build one with
// NewRNG for a reproducible audit.
//
// New fails with ErrInvalidInput if numWinners is out of [1,
// len(candidates)], or if any preference list references a candidate
// outside candidates, or contains a duplicate candidate.
func New[C comparable](candidates []C, numWinners int, preferenceLists [][]C, rng RNG, opts ...Option[C]) (*Tabulator[C], error) {
	if numWinners < 1 {
		return nil, invalidInputf("num_winners must be at least 1, got %d", numWinners)
	}
	if numWinners > len(candidates) {
		return nil, invalidInputf("num_winners %d exceeds candidate count %d", numWinners, len(candidates))
	}

	candidateSet := make(map[C]struct{}, len(candidates))
	for _, c := range candidates {
		candidateSet[c] = struct{}{}
	}
	if len(candidateSet) != len(candidates) {
		return nil, invalidInputf("candidate set contains duplicates")
	}

	ballots := make([]*Ballot[C], 0, len(preferenceLists))
	for i, prefs := range preferenceLists {
		seen := make(map[C]struct{}, len(prefs))
		for _, c := range prefs {
			if _, ok := candidateSet[c]; !ok {
				return nil, invalidInputf("preference list %d references unknown candidate %v", i, c)
			}
			if _, dup := seen[c]; dup {
				return nil, invalidInputf("preference list %d contains duplicate candidate %v", i, c)
			}
			seen[c] = struct{}{}
		}
		ballots = append(ballots, newBallot(prefs))
	}

	remaining := make(map[C]struct{}, len(candidates))
	for _, c := range candidates {
		remaining[c] = struct{}{}
	}

	t := &Tabulator[C]{
		candidates: append([]C(nil), candidates...),
		numWinners: numWinners,
		ballots:    ballots,
		quota:      len(ballots)/(numWinners+1) + 1,
		remaining:  remaining,
		rng:        rng,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Quota returns the Droop quota computed once at construction (spec §3,
// testable property 3): floor(total_ballots / (num_winners + 1)) + 1.
func (t *Tabulator[C]) Quota() int {
	return t.quota
}

// Run executes the round loop until termination (spec §4.1.5) and
// returns the winners. It is idempotent: calling Run again after the
// first completion returns the same result without mutating state
// further.
func (t *Tabulator[C]) Run() ([]C, error) {
	for {
		done, err := t.Step()
		if err != nil {
			return nil, err
		}
		if done {
			return t.winners, nil
		}
	}
}

// Step runs exactly one round and reports whether the tabulation has
// now terminated (spec §4.1.5). It is the step hook spec §4.1 allows a
// host to use for incremental observation of History — Run is just
// Step called in a loop until it reports done. Calling Step after
// termination is a no-op that reports done with no error.
func (t *Tabulator[C]) Step() (done bool, err error) {
	if t.done {
		return true, nil
	}
	if len(t.winners) == t.numWinners || len(t.remaining) == 0 {
		t.done = true
		return true, nil
	}
	if err := t.runRound(); err != nil {
		return false, err
	}
	if len(t.winners) == t.numWinners || len(t.remaining) == 0 {
		t.done = true
		return true, nil
	}
	return false, nil
}

// IsRemaining reports whether c is currently neither elected nor
// eliminated.
func (t *Tabulator[C]) IsRemaining(c C) bool {
	_, ok := t.remaining[c]
	return ok
}

// IsWinner reports whether c has been elected.
func (t *Tabulator[C]) IsWinner(c C) bool {
	return slices.Contains(t.winners, c)
}

// History returns the audit trail accumulated so far: one RoundSummary
// per completed round, in round order (spec §4.1 History).
func (t *Tabulator[C]) History() []RoundSummary[C] {
	return append([]RoundSummary[C](nil), t.history...)
}

func (t *Tabulator[C]) runRound() error {
	if t.debug {
		if err := t.checkLivePreferenceInvariant(); err != nil {
			return err
		}
	}

	roundIndex := len(t.history)

	// Step 1: tally.
	tallies := make(map[C]*CandidateTally[C], len(t.remaining))
	for c := range t.remaining {
		tallies[c] = newCandidateTally[C](c)
	}
	for _, b := range t.ballots {
		top, ok := b.top()
		if !ok || b.weight.IsZero() {
			continue
		}
		tally, ok := tallies[top]
		if !ok {
			return internalInvariantf("ballot top preference %v is not in remaining", top)
		}
		tally.add(b)
	}

	// Step 2: snapshot into the history before sorting reorders candidates.
	summary := make(RoundSummary[C], len(tallies))
	for c, tally := range tallies {
		summary[c] = CandidateRoundStat{Total: tally.total, TransferTotal: tally.transferTotal}
	}
	t.history = append(t.history, summary)

	// Step 3: stable sort by total, descending. sorted is built by
	// walking the deterministic candidate order from construction,
	// not by ranging over the tallies map — map iteration order is
	// randomized per run, and that randomness would otherwise leak
	// into which candidate a tied group's RNG fallback picks (spec §8
	// property 6, §9 "all non-determinism flows through rng").
	sorted := make([]*CandidateTally[C], 0, len(tallies))
	for _, c := range t.candidates {
		if tally, ok := tallies[c]; ok {
			sorted = append(sorted, tally)
		}
	}
	stableSortByTotalDescending(sorted)

	top := sorted[0]
	bottom := sorted[len(sorted)-1]

	// Step 4: decide.
	electBranch := top.total.GreaterThanOrEqual(NewFixedFromInt(int64(t.quota))) ||
		len(t.remaining) <= t.numWinners-len(t.winners)

	if electBranch {
		return t.elect(sorted, top, roundIndex)
	}
	return t.eliminate(sorted, bottom, roundIndex)
}

func (t *Tabulator[C]) elect(sorted []*CandidateTally[C], top *CandidateTally[C], roundIndex int) error {
	var roundWinners []*CandidateTally[C]
	for _, tally := range sorted {
		if tally.total.Equal(top.total) {
			roundWinners = append(roundWinners, tally)
		}
	}

	winner := t.breakTie(roundWinners, roundIndex-1, true)

	t.winners = append(t.winners, winner.candidate)
	delete(t.remaining, winner.candidate)

	quota := NewFixedFromInt(int64(t.quota))
	transferWeight := Zero
	if winner.total.GreaterThan(quota) {
		transferWeight = winner.total.Sub(quota).Div(winner.total)
	}

	for _, b := range winner.ballots {
		b.transfer(transferWeight, t.remaining)
	}
	return nil
}

func (t *Tabulator[C]) eliminate(sorted []*CandidateTally[C], bottom *CandidateTally[C], roundIndex int) error {
	var roundLosers []*CandidateTally[C]
	for _, tally := range sorted {
		if tally.total.Equal(bottom.total) {
			roundLosers = append(roundLosers, tally)
		}
	}

	loser := t.breakTie(roundLosers, roundIndex-1, false)
	delete(t.remaining, loser.candidate)

	for _, b := range loser.ballots {
		b.transfer(One, t.remaining)
	}
	return nil
}

// breakTie implements spec §4.1.4: resolve ties by looking back through
// prior rounds for whichever contender was strongest (win=true) or
// weakest (win=false) most recently; fall back to the injected RNG only
// once no earlier round distinguishes the group.
func (t *Tabulator[C]) breakTie(group []*CandidateTally[C], votingRound int, win bool) *CandidateTally[C] {
	if len(group) == 1 {
		return group[0]
	}
	if votingRound < 0 {
		return group[t.rng.IntN(len(group))]
	}

	key := func(tally *CandidateTally[C]) FixedDecimal {
		stat, ok := t.history[votingRound][tally.candidate]
		if !ok {
			return Zero
		}
		return stat.Total
	}
	// better(a, b) reports whether a ranks strictly ahead of b under this
	// key: higher total wins the "elect" lookback, lower total wins the
	// "eliminate" lookback (spec §4.1.4's (+1 if win else -1) multiplier).
	better := func(a, b FixedDecimal) bool {
		if win {
			return a.Cmp(b) > 0
		}
		return a.Cmp(b) < 0
	}

	best := key(group[0])
	for _, tally := range group[1:] {
		if k := key(tally); better(k, best) {
			best = k
		}
	}

	var next []*CandidateTally[C]
	for _, tally := range group {
		if key(tally).Equal(best) {
			next = append(next, tally)
		}
	}

	return t.breakTie(next, votingRound-1, win)
}

// checkLivePreferenceInvariant is the debug-mode invariant from spec
// §9: every ballot whose stack is non-empty must have its top in
// remaining. Zero-weight ballots are skipped: they are never tallied,
// so they are never transferred again and their top may go stale.
func (t *Tabulator[C]) checkLivePreferenceInvariant() error {
	for i, b := range t.ballots {
		top, ok := b.top()
		if !ok || b.weight.IsZero() {
			continue
		}
		if _, live := t.remaining[top]; !live {
			return internalInvariantf("ballot %d has non-live top preference %v", i, top)
		}
	}
	return nil
}

// stableSortByTotalDescending sorts by total descending using a stable
// insertion sort so ties keep input order until the tie-break logic
// resolves them (spec §4.1.1 step 3 / §9 sort stability).
func stableSortByTotalDescending[C comparable](tallies []*CandidateTally[C]) {
	for i := 1; i < len(tallies); i++ {
		for j := i; j > 0 && tallies[j].total.Cmp(tallies[j-1].total) > 0; j-- {
			tallies[j], tallies[j-1] = tallies[j-1], tallies[j]
		}
	}
}

// String renders a Tabulator for debug logging, never for the wire
// format (spec §6 owns that).
func (t *Tabulator[C]) String() string {
	return fmt.Sprintf("Tabulator(remaining=%d, winners=%d/%d, quota=%d)", len(t.remaining), len(t.winners), t.numWinners, t.quota)
}
