package redis_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/gomodule/redigo/redis"
	"github.com/ory/dockertest/v3"

	stvredis "github.com/kscottz/membership-stv/adapters/redis"
	"github.com/kscottz/membership-stv/stv"
)

func TestPublishDeliversRoundEvent(t *testing.T) {
	if testing.Short() {
		t.Skip("skip Redis integration test")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("Could not connect to docker: %s", err)
	}

	resource, err := pool.Run("redis", "7", nil)
	if err != nil {
		t.Fatalf("Could not start redis container: %s", err)
	}
	defer pool.Purge(resource)

	addr := fmt.Sprintf("localhost:%s", resource.GetPort("6379/tcp"))

	var conn redis.Conn
	if err := pool.Retry(func() error {
		c, dialErr := redis.Dial("tcp", addr)
		if dialErr != nil {
			return dialErr
		}
		conn = c
		return nil
	}); err != nil {
		t.Fatalf("Could not connect to redis: %s", err)
	}

	psc := redis.PubSubConn{Conn: conn}
	if err := psc.Subscribe("stv-rounds"); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer psc.Close()

	// Drain the subscribe confirmation.
	psc.Receive()

	notifier := stvredis.New(addr, "stv-rounds")
	defer notifier.Close()

	summary := stv.RoundSummary[string]{
		"A": {Total: stv.NewFixedFromInt(3), TransferTotal: stv.Zero},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := notifier.Publish(ctx, 1, 0, summary); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	switch v := psc.Receive().(type) {
	case redis.Message:
		var decoded map[string]any
		if err := json.Unmarshal(v.Data, &decoded); err != nil {
			t.Fatalf("decoding published payload: %v", err)
		}
		if decoded["election_id"].(float64) != 1 {
			t.Fatalf("election_id = %v, want 1", decoded["election_id"])
		}
	default:
		t.Fatalf("unexpected pub/sub value: %#v", v)
	}
}
