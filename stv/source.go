package stv

import "context"

// BallotSource is the boundary contract through which an external
// collaborator supplies a finite collection of ballots for one
// election. The core never reads storage itself (spec §1) — something
// upstream of New is expected to satisfy this interface and hand New
// the candidates and preference lists it returns.
//
// adapters/postgres provides a reference implementation.
type BallotSource[C comparable] interface {
	Load(ctx context.Context, electionID int64) (candidates []C, preferenceLists [][]C, err error)
}

// RoundNotifier is the boundary contract through which an "election
// administration" process observes the audit trail as it is produced,
// one message per completed round, instead of only reading History
// after Run returns. Nothing in the core calls this itself; a host
// loop that steps the Tabulator one round at a time (spec §4.1, "the
// host exposes a step hook; not required") is expected to call Publish
// after each round.
//
// adapters/redis provides a reference implementation.
type RoundNotifier[C comparable] interface {
	Publish(ctx context.Context, electionID int64, roundIndex int, summary RoundSummary[C]) error
}
