// Package cache keeps prepared statements for compiled SQL so repeated
// inserts of the same shape skip the prepare round trip.
package cache

import (
	"container/list"
	"context"
	"database/sql"
	"sync"
	"sync/atomic"
)

// DefaultStmtCacheCapacity is the default maximum number of cached prepared statements.
const DefaultStmtCacheCapacity = 1000

// PrepareFunc prepares query on a database handle.
type PrepareFunc func(ctx context.Context, query string) (*sql.Stmt, error)

// StmtCache stores prepared statements keyed by SQL text with LRU eviction.
// Compiled statements of the same shape produce the same text, so the key
// space is bounded by the number of distinct statement shapes.
type StmtCache struct {
	mu       sync.Mutex
	capacity int
	items    map[string]*list.Element
	lru      *list.List

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

type cacheEntry struct {
	query string
	stmt  *sql.Stmt
}

// NewStmtCache creates a cache with DefaultStmtCacheCapacity.
func NewStmtCache() *StmtCache {
	return NewStmtCacheWithCapacity(DefaultStmtCacheCapacity)
}

// NewStmtCacheWithCapacity creates a cache holding at most capacity
// statements. A non-positive capacity selects the default.
func NewStmtCacheWithCapacity(capacity int) *StmtCache {
	if capacity <= 0 {
		capacity = DefaultStmtCacheCapacity
	}
	return &StmtCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		lru:      list.New(),
	}
}

// Prepare returns the cached statement for query, preparing and caching it
// on a miss. Preparation runs outside the lock; if two callers race on the
// same query the later statement is closed and the cached one returned.
func (sc *StmtCache) Prepare(ctx context.Context, query string, prepare PrepareFunc) (*sql.Stmt, error) {
	if stmt, ok := sc.Get(query); ok {
		return stmt, nil
	}

	stmt, err := prepare(ctx, query)
	if err != nil {
		return nil, err
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if elem, ok := sc.items[query]; ok {
		_ = stmt.Close()
		sc.lru.MoveToFront(elem)
		return elem.Value.(*cacheEntry).stmt, nil
	}
	sc.add(query, stmt)
	return stmt, nil
}

// Get returns the cached statement for query and marks it most recently used.
func (sc *StmtCache) Get(query string) (*sql.Stmt, bool) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	elem, ok := sc.items[query]
	if !ok {
		sc.misses.Add(1)
		return nil, false
	}
	sc.lru.MoveToFront(elem)
	sc.hits.Add(1)
	return elem.Value.(*cacheEntry).stmt, true
}

// Set caches stmt for query, closing any statement it replaces.
func (sc *StmtCache) Set(query string, stmt *sql.Stmt) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if elem, ok := sc.items[query]; ok {
		entry := elem.Value.(*cacheEntry)
		if entry.stmt != stmt {
			_ = entry.stmt.Close()
			entry.stmt = stmt
		}
		sc.lru.MoveToFront(elem)
		return
	}
	sc.add(query, stmt)
}

// add inserts a new entry, evicting the least recently used one when full.
// Must be called with the lock held.
func (sc *StmtCache) add(query string, stmt *sql.Stmt) {
	if sc.lru.Len() >= sc.capacity {
		if oldest := sc.lru.Back(); oldest != nil {
			sc.lru.Remove(oldest)
			entry := oldest.Value.(*cacheEntry)
			delete(sc.items, entry.query)
			_ = entry.stmt.Close()
			sc.evictions.Add(1)
		}
	}
	sc.items[query] = sc.lru.PushFront(&cacheEntry{query: query, stmt: stmt})
}

// Clear closes and removes every cached statement.
func (sc *StmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for elem := sc.lru.Front(); elem != nil; elem = elem.Next() {
		_ = elem.Value.(*cacheEntry).stmt.Close()
	}
	sc.items = make(map[string]*list.Element, sc.capacity)
	sc.lru.Init()
}

// Stats holds cache performance metrics.
type Stats struct {
	Size      int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
	HitRate   float64
}

// Stats returns a snapshot of the cache metrics.
func (sc *StmtCache) Stats() Stats {
	sc.mu.Lock()
	size := sc.lru.Len()
	sc.mu.Unlock()

	hits, misses := sc.hits.Load(), sc.misses.Load()
	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Size:      size,
		Capacity:  sc.capacity,
		Hits:      hits,
		Misses:    misses,
		Evictions: sc.evictions.Load(),
		HitRate:   hitRate,
	}
}
