package catalogd

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	// data source
	fixturePath string
	seed        uint64
	latency     time.Duration
	failureRate float64

	// optional key-value store
	driver     string // "memory", "badger", "redis" or "valkey"
	addrs      []string
	password   string
	badgerPath string

	indexTTL time.Duration
	expander Expander
	cacheTTL time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMockCatalog serves a generated catalog. The same seed always yields
// the same catalog. This is the default data source (seed 42).
func WithMockCatalog(seed uint64) Option {
	return optionFunc(func(c *clientConfig) {
		c.fixturePath = ""
		c.seed = seed
	})
}

// WithSimulatedNetwork adds latency and random failures to every mock
// catalog call. failureRate is a probability in [0,1].
func WithSimulatedNetwork(latency time.Duration, failureRate float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.latency = latency
		c.failureRate = failureRate
	})
}

// WithFixtureFile reads contracts and products from a YAML file.
func WithFixtureFile(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fixturePath = path
	})
}

// WithMemoryStore keeps index snapshots and expansions in an in-process store.
func WithMemoryStore() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "memory"
	})
}

// WithBadger persists index snapshots and expansions in a BadgerDB directory.
func WithBadger(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "badger"
		c.badgerPath = path
	})
}

// WithValkey shares index snapshots and expansions through a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis shares index snapshots and expansions through a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithIndexTTL sets how long a built index stays fresh. Default: 5 minutes.
func WithIndexTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexTTL = ttl
	})
}

// WithExpander adds provider-backed synonyms to every search.
// With a store configured, expansions are cached for cacheTTL (0 keeps them).
func WithExpander(e Expander, cacheTTL time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.expander = e
		c.cacheTTL = cacheTTL
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
