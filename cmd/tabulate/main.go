// Command tabulate is a reference driver for the stv core: the thin
// "election administration" layer spec.md §1 says decides when to
// freeze input and invoke the tabulator, and renders the per-round
// audit trail. It owns no persistence of its own beyond reading one
// input file (or, with --postgres-dsn, a frozen election out of
// Postgres) and is not a long-running server — a single run, one
// process, matching spec.md §5's "no scheduling model" framing of the
// core it wraps.
//
// CLI parsing follows the teacher's own dependency on
// github.com/alecthomas/kong.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/kscottz/membership-stv/adapters/postgres"
	stvredis "github.com/kscottz/membership-stv/adapters/redis"
	"github.com/kscottz/membership-stv/internal/auditlog"
	"github.com/kscottz/membership-stv/internal/config"
	"github.com/kscottz/membership-stv/stv"
)

type cli struct {
	Run runCmd `cmd:"" help:"Tabulate one election and print winners and audit trail as JSON."`
}

type runCmd struct {
	Ballots     string `help:"Path to a JSON file with {\"candidates\":[...],\"preference_lists\":[[...]]}." type:"existingfile" xor:"source"`
	PostgresDSN string `help:"Postgres connection string to load a frozen election from instead of --ballots." xor:"source"`
	ElectionID  int64  `help:"Election id to load when using --postgres-dsn." default:"1"`

	Winners   int    `help:"Number of seats to fill." required:""`
	Seed      uint64 `help:"Override the RNG seed used for tie-break fallback (default: STV_RNG_SEED env var, else 0)."`
	PublishTo string `help:"redis host:port to publish one event per completed round to." optional:""`
	Channel   string `help:"Redis pub/sub channel for --publish-to." default:"stv-rounds"`
}

type ballotFile struct {
	Candidates      []string   `json:"candidates"`
	PreferenceLists [][]string `json:"preference_lists"`
}

func (r *runCmd) Run(ctx *kong.Context) error {
	cfg := config.FromEnviron(os.Environ())
	if r.Seed != 0 {
		cfg.Seed = r.Seed
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var zl zerolog.Logger
	if cfg.Pretty {
		zl = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	} else {
		zl = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}

	background := context.Background()

	candidates, preferenceLists, err := r.loadBallots(background, &zl)
	if err != nil {
		return fmt.Errorf("loading ballots: %w", err)
	}

	tab, err := stv.New(candidates, r.Winners, preferenceLists, stv.NewRNG(cfg.Seed))
	if err != nil {
		return fmt.Errorf("constructing tabulator: %w", err)
	}

	var notifier *stvredis.Notifier
	if r.PublishTo != "" {
		notifier = stvredis.New(r.PublishTo, r.Channel)
		defer notifier.Close()
	}

	logger := auditlog.New(zl)
	winners, err := logger.RunAndLog(background, r.ElectionID, tab)
	if err != nil {
		return fmt.Errorf("running tabulation: %w", err)
	}

	if notifier != nil {
		for i, round := range tab.History() {
			if pubErr := notifier.Publish(background, r.ElectionID, i, round); pubErr != nil {
				zl.Warn().Err(pubErr).Int("round", i).Msg("failed to publish round event")
			}
		}
	}

	out := struct {
		Winners []string                    `json:"winners"`
		History []stv.RoundSummary[string] `json:"history"`
	}{
		Winners: winners,
		History: tab.History(),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (r *runCmd) loadBallots(ctx context.Context, zl *zerolog.Logger) ([]string, [][]string, error) {
	if r.PostgresDSN != "" {
		src, err := postgres.New(ctx, r.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		defer src.Close()
		return src.Load(ctx, r.ElectionID)
	}

	data, err := os.ReadFile(r.Ballots)
	if err != nil {
		return nil, nil, err
	}
	var bf ballotFile
	if err := json.Unmarshal(data, &bf); err != nil {
		return nil, nil, fmt.Errorf("decoding %s: %w", r.Ballots, err)
	}
	return bf.Candidates, bf.PreferenceLists, nil
}

func main() {
	var c cli
	parser := kong.Parse(&c, kong.Name("tabulate"),
		kong.Description("Run the ranked-choice STV tabulator over a frozen set of ballots."))
	if err := parser.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
