package scfg

import (
	"github.com/npillmayer/schuko/gconf"
	"github.com/npillmayer/scfg/scoring"
)

// Config holds the settings shared by generators and parsers.
//
// K is the number of results to produce; K = 1 selects Viterbi mode, where chart
// items are recombined to their single best instance. PruneK bounds the number of
// items per chart cell of the bottom-up generator. Seed seeds the random source
// for randomized selection. MaxACChildren is the maximum number of children of an
// associative-commutative MR node for which partial views are enumerated.
type Config struct {
	K             int
	PruneK        int
	Seed          uint64
	MaxACChildren int
	Weights       scoring.Weights
}

// Configuration keys, read by DefaultConfig.
const (
	ConfKBest         = "scfg.kbest"
	ConfPruneK        = "scfg.prune-k"
	ConfSeed          = "scfg.seed"
	ConfMaxACChildren = "scfg.max-ac-children"
)

// DefaultConfig returns a configuration with default values, overridden by
// global configuration properties (package schuko/gconf) where set.
func DefaultConfig() Config {
	c := Config{
		K:             1,
		PruneK:        100,
		Seed:          1,
		MaxACChildren: 6,
		Weights:       scoring.DefaultWeights(),
	}
	if k := gconf.GetInt(ConfKBest); k > 0 {
		c.K = k
	}
	if k := gconf.GetInt(ConfPruneK); k > 0 {
		c.PruneK = k
	}
	if s := gconf.GetInt(ConfSeed); s > 0 {
		c.Seed = uint64(s)
	}
	if m := gconf.GetInt(ConfMaxACChildren); m > 0 {
		c.MaxACChildren = m
	}
	return c
}

// Option configures a Config.
type Option func(c *Config)

// NewConfig creates a configuration from the defaults and a list of options.
func NewConfig(opts ...Option) Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithK sets the number of results; k < 1 is treated as 1.
func WithK(k int) Option {
	return func(c *Config) {
		if k < 1 {
			k = 1
		}
		c.K = k
	}
}

// WithPruneK sets the cell bound for bottom-up generation.
func WithPruneK(k int) Option {
	return func(c *Config) {
		if k < 1 {
			k = 1
		}
		c.PruneK = k
	}
}

// WithSeed sets the seed for randomized selection.
func WithSeed(seed uint64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// WithMaxACChildren sets the bound for enumerating partial views of AC nodes.
func WithMaxACChildren(m int) Option {
	return func(c *Config) {
		c.MaxACChildren = m
	}
}

// WithWeights sets the feature weights.
func WithWeights(w scoring.Weights) Option {
	return func(c *Config) {
		c.Weights = w
	}
}

// IsViterbi is true if only the single best result is requested.
func (c Config) IsViterbi() bool {
	return c.K <= 1
}
