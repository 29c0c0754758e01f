package marketdata

import "time"

// Default TTLs for cached third-party data. Price snapshots are refreshed
// on demand when a symbol is tracked, so they carry no polling TTL here.
const (
	DefaultRecommendationTTL = 24 * time.Hour
	DefaultMarketListTTL     = 24 * time.Hour

	// MinMarketListRows is the completeness threshold for screener lists:
	// a list with fewer cached rows is treated as stale even within TTL,
	// since a partial fetch must not be served as if it were complete.
	MinMarketListRows = 10
)

// isStale reports whether a cached row's age has reached the TTL.
// A zero (absent) refresh timestamp is always stale.
func isStale(lastRefreshed time.Time, ttl time.Duration) bool {
	if lastRefreshed.IsZero() {
		return true
	}
	return time.Since(lastRefreshed) >= ttl
}
