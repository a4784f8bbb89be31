// Package postgres implements stv.BallotSource against a frozen
// election's Postgres-backed storage, grounded on
// original_source/membership/database/models.py's Election / Candidate
// / Vote / Ranking tables and the teacher's own flow.go (which wires a
// cached Postgres connection into the vote service) and
// internal/backends/postgres/postgres.go (pgxpool construction style,
// embedded schema, Wait/Migrate lifecycle).
//
// This adapter is reference-only: the stv core never imports it, and
// nothing in stv depends on Postgres being reachable.
package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

// Source is a stv.BallotSource backed by a Postgres pool.
type Source struct {
	pool *pgxpool.Pool
}

// New opens a lazily-connecting pool against url. It does not block on
// a live connection; the first query is what dials the server.
func New(ctx context.Context, url string) (*Source, error) {
	conf, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid connection url: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	return &Source{pool: pool}, nil
}

// Migrate creates the candidates/votes/rankings schema this adapter
// expects.
func (s *Source) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Close releases all pooled connections.
func (s *Source) Close() {
	s.pool.Close()
}

// Exec runs a raw statement against the pool. It exists for fixture
// setup in tests and simple administrative scripts; the core never
// calls it.
func (s *Source) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := s.pool.Exec(ctx, sql, args...)
	return err
}

// Load reads a frozen election's candidate set and preference lists
// out of Postgres, implementing stv.BallotSource[string]. Candidate
// identifiers are the candidates.candidate_key column; preference
// lists are reconstructed from rankings ordered by rank per vote.
func (s *Source) Load(ctx context.Context, electionID int64) ([]string, [][]string, error) {
	candidateRows, err := s.pool.Query(ctx, `
		SELECT candidate_key FROM candidates WHERE election_id = $1 ORDER BY candidate_key;
	`, electionID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading candidates: %w", err)
	}
	var candidates []string
	for candidateRows.Next() {
		var key string
		if err := candidateRows.Scan(&key); err != nil {
			candidateRows.Close()
			return nil, nil, fmt.Errorf("scanning candidate: %w", err)
		}
		candidates = append(candidates, key)
	}
	candidateRows.Close()
	if err := candidateRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading candidates: %w", err)
	}

	voteRows, err := s.pool.Query(ctx, `
		SELECT v.vote_key, r.candidate_key
		FROM votes v
		JOIN rankings r ON r.vote_id = v.id
		WHERE v.election_id = $1
		ORDER BY v.vote_key, r.rank;
	`, electionID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading ballots: %w", err)
	}
	defer voteRows.Close()

	order := make([]int64, 0)
	byVote := make(map[int64][]string)
	for voteRows.Next() {
		var voteKey int64
		var candidateKey string
		if err := voteRows.Scan(&voteKey, &candidateKey); err != nil {
			return nil, nil, fmt.Errorf("scanning ranking: %w", err)
		}
		if _, seen := byVote[voteKey]; !seen {
			order = append(order, voteKey)
		}
		byVote[voteKey] = append(byVote[voteKey], candidateKey)
	}
	if err := voteRows.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading ballots: %w", err)
	}

	preferenceLists := make([][]string, 0, len(order))
	for _, voteKey := range order {
		preferenceLists = append(preferenceLists, byVote[voteKey])
	}

	return candidates, preferenceLists, nil
}
