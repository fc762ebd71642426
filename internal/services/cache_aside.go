// Package services orchestrates the record store, the ephemeral cache, the
// aggregation engine and the live transport into the operations the route
// layer exposes: entity CRUD with cache-aside reads, report and insight
// generation, financial health scoring and notification dispatch.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/log"
)

// Cache TTLs. Collection listings and insights live an hour, full reports a
// day. The notification log never expires; it is bounded by length instead.
const (
	collectionTTL = time.Hour
	insightTTL    = time.Hour
	reportTTL     = 24 * time.Hour
)

func expensesKey(userID string) string     { return "expenses:" + userID }
func transactionsKey(userID string) string { return "transactions:" + userID }
func budgetsKey(userID string) string      { return "budgets:" + userID }
func categoriesKey(userID string) string   { return "categories:" + userID }

func monthlyReportKey(userID string, year, month int) string {
	return "report:monthly:" + userID + ":" + strconv.Itoa(year) + "-" + strconv.Itoa(month)
}

func annualReportKey(userID string, year int) string {
	return "report:annual:" + userID + ":" + strconv.Itoa(year)
}

func spendingInsightsKey(userID string) string { return "insights:spending:" + userID }
func budgetAnalysisKey(userID string) string   { return "insights:budget:" + userID }
func savingsKey(userID string) string          { return "insights:savings:" + userID }
func healthKey(userID string) string           { return "analytics:health:" + userID }
func predictionsKey(userID string) string      { return "analytics:predictions:" + userID }
func notificationsKey(userID string) string    { return "notifications:" + userID }

// cacheAside reads through the cache: on a hit the cached payload is returned
// verbatim (deserialized), on a miss compute runs and its result is cached
// with the given TTL. Cache trouble (corrupt payload, failed set) degrades to
// direct computation; it is logged and never surfaced.
func cacheAside[T any](ctx context.Context, c cache.Store, key string, ttl time.Duration, compute func(context.Context) (T, error)) (T, error) {
	var zero T

	if raw, ok := c.Get(ctx, key); ok {
		var cached T
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			slog.DebugContext(ctx, "Cache hit", log.FieldCacheKey, key)
			return cached, nil
		}
		// A payload that does not deserialize is dropped and recomputed.
		slog.WarnContext(ctx, "Discarding corrupt cache entry", log.FieldCacheKey, key)
		c.Delete(ctx, key)
	}

	value, err := compute(ctx)
	if err != nil {
		return zero, err
	}

	raw, err := json.Marshal(value)
	if err != nil {
		slog.WarnContext(ctx, "Failed to serialize for cache", log.FieldCacheKey, key, log.FieldError, err)
		return value, nil
	}
	c.Set(ctx, key, string(raw), ttl)
	return value, nil
}

// invalidate deletes the collection keys touched by a write. It runs
// synchronously so a stale read is never observable after the write returns.
func invalidate(ctx context.Context, c cache.Store, keys ...string) {
	for _, key := range keys {
		c.Delete(ctx, key)
	}
}

func transactionsGenKey(userID string) string { return "transactions:gen:" + userID }

// filteredTransactionsKey builds the cache key for a filtered, paginated
// transaction listing. The user's generation counter is embedded in the key,
// so a write invalidates every filter variant at once by bumping the counter
// instead of enumerating keys; orphaned variants expire by TTL.
func filteredTransactionsKey(userID string, gen int64, txType, status, from, to string, page, limit int) string {
	return fmt.Sprintf("transactions:%s:g%d:%s:%s:%s:%s:%d:%d", userID, gen, txType, status, from, to, page, limit)
}
