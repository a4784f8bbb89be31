// Package auditlog provides structured, per-round logging around a
// stv.Tabulator, in the teacher's "inject a logger, never reach for a
// process-global one" style — the same convention vote.New takes a
// lookup/flow/querier rather than dialing its own dependencies.
//
// It is built on zerolog, already present in the teacher's dependency
// closure (an indirect dependency of github.com/OpenSlides/openslides-go),
// promoted here to a direct one since this module has no framework of
// its own to pull it in transitively.
package auditlog

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/kscottz/membership-stv/stv"
)

// Logger wraps a zerolog.Logger with the fields an STV audit trail
// cares about: election id and round index.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger around zl. Output destination, format and level
// are whatever zl was configured with; New does not change them.
func New(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl}
}

// RunAndLog steps tab to completion, logging one structured line per
// round (the quota and each remaining candidate's total) and a final
// summary line with the winners. It is the reference way
// cmd/tabulate drives a Tabulator, and the shape adapters/redis's
// RoundNotifier mirrors for remote observers.
func (l *Logger) RunAndLog(ctx context.Context, electionID int64, tab *stv.Tabulator[string]) ([]string, error) {
	roundIndex := 0
	for {
		done, err := tab.Step()
		if err != nil {
			l.zl.Error().Err(err).Int64("election_id", electionID).Int("round", roundIndex).Msg("tabulation round failed")
			return nil, err
		}

		history := tab.History()
		if len(history) > roundIndex {
			round := history[roundIndex]
			ev := l.zl.Info().Int64("election_id", electionID).Int("round", roundIndex).Int("quota", tab.Quota())
			for candidate, stat := range round {
				ev = ev.Str("total["+candidate+"]", stat.Total.String())
			}
			ev.Msg("tabulation round complete")
			roundIndex++
		}

		if done {
			winners, err := tab.Run()
			if err != nil {
				return nil, err
			}
			l.zl.Info().Int64("election_id", electionID).Strs("winners", winners).Msg("tabulation complete")
			return winners, nil
		}
	}
}
