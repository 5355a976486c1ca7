package services

import (
	"time"

	"github.com/inkpress/printdesk/pkg/logger"
)

const salesSummaryCacheKey = "sales:summary"

// Cache is the slice of the redis adapter the services use. A nil cache is
// always valid; every caller degrades to recomputing.
type Cache interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte, ttl time.Duration) error
	Del(key string) error
}

// invalidateSummary drops the cached sales summary after any write that
// changes transaction rows. A failed delete only means one stale TTL window.
func invalidateSummary(c Cache) {
	if c == nil {
		return
	}
	if err := c.Del(salesSummaryCacheKey); err != nil {
		logger.Warn("failed to invalidate sales summary cache", "error", err)
	}
}
