package common

import (
	"time"

	"github.com/ulule/limiter"
)

const (
	DefaultSequencerQueueSize int           = 1000
	HTTPCachePoolSize         int           = 10000
	DefaultHTTPCacheTTL       time.Duration = 5 * time.Second

	HTTPCacheMemoryAdapterName = "mem"
	HTTPCacheRedisAdapterName  = "redis"
)

var (
	// RateLimitAPI is applied per client ip to the public api
	RateLimitAPI = limiter.Rate{
		Period: 1 * time.Second,
		Limit:  100,
	}
)

type RateLimitRule struct {
	Default     limiter.Rate
	ByIPAddress map[string]limiter.Rate
}

func NewRateLimitRule(rate limiter.Rate) RateLimitRule {
	return RateLimitRule{
		Default:     rate,
		ByIPAddress: map[string]limiter.Rate{},
	}
}

//
// Config has the ledger rules and the knobs of the surrounding node.
// Everything but `NetworkID` and `LegacyCounterBump` is local to a node and
// does not affect the replicated state.
//
type Config struct {
	NetworkID []byte

	// LegacyCounterBump keeps the poll id counter bumped even when
	// `CreatePoll` fails at the expiration overflow check.
	LegacyCounterBump bool

	SequencerQueueSize int

	RateLimitRuleAPI RateLimitRule

	HTTPCacheAdapter    string
	HTTPCachePoolSize   int
	HTTPCacheRedisAddrs map[string]string
	HTTPCacheTTL        time.Duration
}

func NewConfig(networkID []byte) Config {
	p := Config{}

	p.NetworkID = networkID
	p.SequencerQueueSize = DefaultSequencerQueueSize

	p.RateLimitRuleAPI = NewRateLimitRule(RateLimitAPI)

	p.HTTPCachePoolSize = HTTPCachePoolSize
	p.HTTPCacheRedisAddrs = map[string]string{}
	p.HTTPCacheTTL = DefaultHTTPCacheTTL

	return p
}
