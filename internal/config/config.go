// Package config reads the small set of environment variables
// cmd/tabulate needs. It is deliberately not built on a third-party
// config library: the teacher's own config surface
// (vote.envVoteSecretKeyFile, environment.NewVariable) comes from
// github.com/OpenSlides/openslides-go, a private companion module this
// repository does not depend on, and no other library in the retrieval
// pack offers an equivalent env-var-with-default helper worth adopting
// for three variables. See DESIGN.md.
package config

import (
	"strconv"
)

const (
	envSeed     = "STV_RNG_SEED"
	envLogLevel = "STV_LOG_LEVEL"
	envPretty   = "STV_LOG_PRETTY"
)

// Config is the environment-derived configuration for cmd/tabulate.
type Config struct {
	// Seed seeds the tie-break RNG (spec §5/§6's rng_seed). Defaults to
	// 0, which is a valid, reproducible seed, not "unset".
	Seed uint64
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string
	// Pretty selects zerolog's human-readable console writer over
	// newline-delimited JSON.
	Pretty bool
}

// FromEnviron reads Config from the process environment, matching the
// teacher's KEY=VALUE-over-os.Environ() convention (internal/vote/run.go).
func FromEnviron(environ []string) Config {
	lookup := make(map[string]string, len(environ))
	for _, kv := range environ {
		for i := 0; i < len(kv); i++ {
			if kv[i] == '=' {
				lookup[kv[:i]] = kv[i+1:]
				break
			}
		}
	}

	cfg := Config{LogLevel: "info"}
	if v, ok := lookup[envSeed]; ok {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.Seed = n
		}
	}
	if v, ok := lookup[envLogLevel]; ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup[envPretty]; ok {
		cfg.Pretty, _ = strconv.ParseBool(v)
	}
	return cfg
}
