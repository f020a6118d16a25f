package aramid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Config holds configuration for a Context.
type Config struct {
	// NumExecutors is the number of worker executors to run. Must be
	// at least 1; NewContext rejects anything less.
	NumExecutors int

	// InitialDequeCapacity sizes each executor's deque before it first
	// needs to grow. Defaults to 128, same as the original design.
	InitialDequeCapacity int

	// HandleTableInitialSize and HandleTableRehashRatio configure the
	// promise handle table. Defaults are 16 and 0.5, matching the
	// original's armd__hash_table_create(memory_region, 16, 0.5f) call
	// in context creation.
	HandleTableInitialSize int
	HandleTableRehashRatio float64

	// Logger receives structured diagnostics from the Context: a Debug
	// entry when it starts and a Warn entry for leaked promises on
	// Close. Executors do not log. The zero value behaves like
	// zerolog.Nop(), so the runtime stays
	// silent unless the caller opts in — libraries in this codebase's
	// lineage do not talk over a host application's own logger.
	Logger zerolog.Logger

	// Metrics, if non-nil, receives the runtime's Prometheus
	// collectors at Context creation. Pass prometheus.DefaultRegisterer
	// to expose them on the default registry, or nil to skip
	// registration entirely.
	Metrics prometheus.Registerer
}

// DefaultConfig returns sensible defaults: four executors, a silent
// logger, and no metrics registration — mirroring the teacher's
// DefaultConfig() (NumWorkers: 4) while adding the fields this
// runtime's ambient stack needs.
func DefaultConfig() Config {
	return Config{
		NumExecutors:           4,
		InitialDequeCapacity:   128,
		HandleTableInitialSize: 16,
		HandleTableRehashRatio: 0.5,
		Logger:                 zerolog.Nop(),
	}
}

func (c *Config) applyDefaults() {
	if c.NumExecutors <= 0 {
		c.NumExecutors = 4
	}
	if c.InitialDequeCapacity <= 0 {
		c.InitialDequeCapacity = 128
	}
	if c.HandleTableInitialSize <= 0 {
		c.HandleTableInitialSize = 16
	}
	if c.HandleTableRehashRatio <= 0 {
		c.HandleTableRehashRatio = 0.5
	}
}
