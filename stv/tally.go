package stv

// CandidateTally is a pure per-round aggregator (spec §4.3). It is
// reconstructed fresh at the start of every round and never outlives
// the round except through its immutable projection into a
// RoundSummary.
type CandidateTally[C comparable] struct {
	candidate     C
	total         FixedDecimal
	transferTotal FixedDecimal
	ballots       []*Ballot[C]
}

func newCandidateTally[C comparable](candidate C) *CandidateTally[C] {
	return &CandidateTally[C]{candidate: candidate, total: Zero, transferTotal: Zero}
}

// add records one ballot's weight against this tally (spec §4.1.1 step 1).
func (t *CandidateTally[C]) add(b *Ballot[C]) {
	t.total = t.total.Add(b.weight)
	if b.weight.Cmp(One) < 0 {
		t.transferTotal = t.transferTotal.Add(b.weight)
	}
	t.ballots = append(t.ballots, b)
}

// RoundSummary is an immutable snapshot of one round's tallies, keyed
// by candidate, for every candidate still remaining at the start of
// that round (spec §3). It serializes as described in spec §6: a
// mapping candidate -> {total, transfer_total} with fixed 5-decimal
// string values.
type RoundSummary[C comparable] map[C]CandidateRoundStat

// CandidateRoundStat is one candidate's entry within a RoundSummary.
type CandidateRoundStat struct {
	Total         FixedDecimal `json:"total"`
	TransferTotal FixedDecimal `json:"transfer_total"`
}
