package httpcache

import (
	"fmt"

	logging "github.com/inconshreveable/log15"

	"boscoin.io/feedback/lib/common"
)

func NewAdapter(cfg common.Config) (Adapter, error) {
	switch cfg.HTTPCacheAdapter {
	case common.HTTPCacheMemoryAdapterName:
		return NewMemCacheAdapter(cfg.HTTPCachePoolSize)
	case common.HTTPCacheRedisAdapterName:
		if len(cfg.HTTPCacheRedisAddrs) < 1 {
			return nil, fmt.Errorf("redis cache adapter needs addresses")
		}
		return NewRedisCacheAdapter(&RedisRingOptions{Addrs: cfg.HTTPCacheRedisAddrs}), nil
	default:
		return nil, fmt.Errorf("unknown cache adapter, %q", cfg.HTTPCacheAdapter)
	}
}

// NewCache returns `NopClient` when no adapter is configured.
func NewCache(cfg common.Config, logger logging.Logger) (Cache, error) {
	if len(cfg.HTTPCacheAdapter) < 1 {
		return NewNopClient(), nil
	}

	adapter, err := NewAdapter(cfg)
	if err != nil {
		return nil, err
	}

	return NewClient(
		WithAdapter(adapter),
		WithExpire(cfg.HTTPCacheTTL),
		WithLogger(logger),
	)
}
