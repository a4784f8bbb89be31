// Package redis implements stv.RoundNotifier by publishing one message
// per completed tabulation round to a Redis pub/sub channel, grounded
// on the teacher's message-bus-backed fan-out
// (internal/vote/run.go's messageBusRedis, backed by
// github.com/gomodule/redigo) — repurposed here to carry one event per
// round instead of one per datastore write, for a live audit-trail UI
// ("election administration" in spec.md §1).
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gomodule/redigo/redis"

	"github.com/kscottz/membership-stv/stv"
)

// Notifier publishes round events to a Redis channel via a redigo pool.
type Notifier struct {
	pool    *redis.Pool
	channel string
}

// New builds a Notifier that dials addr lazily through a redigo pool
// and publishes to channel.
func New(addr, channel string) *Notifier {
	return &Notifier{
		pool: &redis.Pool{
			Dial: func() (redis.Conn, error) {
				return redis.Dial("tcp", addr)
			},
		},
		channel: channel,
	}
}

// Close releases the underlying connection pool.
func (n *Notifier) Close() error {
	return n.pool.Close()
}

type roundEvent struct {
	ElectionID int64               `json:"election_id"`
	RoundIndex int                 `json:"round_index"`
	Summary    map[string]rowStats `json:"summary"`
}

type rowStats struct {
	Total         string `json:"total"`
	TransferTotal string `json:"transfer_total"`
}

// Publish implements stv.RoundNotifier[string]. It JSON-encodes the
// round summary exactly as spec.md §6 describes the wire format
// (fixed 5-decimal strings) and PUBLISHes it to the configured channel.
func (n *Notifier) Publish(ctx context.Context, electionID int64, roundIndex int, summary stv.RoundSummary[string]) error {
	event := roundEvent{
		ElectionID: electionID,
		RoundIndex: roundIndex,
		Summary:    make(map[string]rowStats, len(summary)),
	}
	for candidate, stat := range summary {
		event.Summary[candidate] = rowStats{
			Total:         stat.Total.String(),
			TransferTotal: stat.TransferTotal.String(),
		}
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding round event: %w", err)
	}

	conn, err := n.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("getting redis connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Do("PUBLISH", n.channel, payload); err != nil {
		return fmt.Errorf("publishing round event: %w", err)
	}
	return nil
}

var _ stv.RoundNotifier[string] = (*Notifier)(nil)
