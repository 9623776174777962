package relstore

import "testing"

func TestCacheKeyIsNamespaced(t *testing.T) {
	got := cacheKey("abc-123")
	want := "article:abc-123"
	if got != want {
		t.Errorf("cacheKey() = %q, want %q", got, want)
	}
}

// Upsert/Get/ListByStockCode round-trip behaviour requires a live Postgres
// (and, for CachedStore, a live Redis) instance and is not exercised by
// the tests in this package.
