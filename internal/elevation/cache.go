package elevation

import (
	"container/list"
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/blockterrain/internal/logger"
	"github.com/Faultbox/blockterrain/internal/metrics"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// Store is one cache tier keyed by CacheKey.
type Store interface {
	// GetMany returns the keys it holds. Absent keys are omitted.
	GetMany(ctx context.Context, keys []string) (map[string]float64, error)
	SetMany(ctx context.Context, values map[string]float64) error
}

// Tier names a Store for metrics and logs.
type Tier struct {
	Name  string
	Store Store
}

// CacheKey identifies a sample by request level and position.
func CacheKey(level int, p geodesy.Cartographic) string {
	return fmt.Sprintf("elev:%d:%.7f:%.7f", level, p.Longitude, p.Latitude)
}

// Cached answers from its tiers in order and falls through to the wrapped
// service for whatever none of them hold. Hits in a later tier are copied
// into the earlier ones. A failing tier counts as a miss.
type Cached struct {
	next  Service
	tiers []Tier
	log   *zap.Logger
}

// NewCached wraps next with the given tiers, fastest first.
func NewCached(next Service, tiers ...Tier) *Cached {
	return &Cached{next: next, tiers: tiers, log: logger.Named("elevation")}
}

// SampleTerrain implements Service.
func (c *Cached) SampleTerrain(ctx context.Context, level int, positions []geodesy.Cartographic) ([]geodesy.Cartographic, error) {
	keys := make([]string, len(positions))
	for i, p := range positions {
		keys[i] = CacheKey(level, p)
	}

	found := make(map[string]float64, len(keys))
	missing := keys
	for ti, tier := range c.tiers {
		if len(missing) == 0 {
			break
		}
		got, err := tier.Store.GetMany(ctx, missing)
		if err != nil {
			c.log.Warn("elevation cache read failed", zap.String("tier", tier.Name), zap.Error(err))
			continue
		}
		if len(got) == 0 {
			continue
		}
		metrics.ElevationCacheHits.WithLabelValues(tier.Name).Add(float64(len(got)))
		for k, h := range got {
			found[k] = h
		}
		c.backfill(ctx, c.tiers[:ti], got)
		missing = without(missing, got)
	}

	if len(missing) > 0 {
		if err := c.fetch(ctx, level, positions, keys, found); err != nil {
			return nil, err
		}
	}

	out := make([]geodesy.Cartographic, len(positions))
	for i, p := range positions {
		p.Height = found[keys[i]]
		out[i] = p
	}
	return out, nil
}

// fetch asks the wrapped service for every position whose key is not in
// found, then stores the answers in found and in every tier.
func (c *Cached) fetch(ctx context.Context, level int, positions []geodesy.Cartographic, keys []string, found map[string]float64) error {
	var query []geodesy.Cartographic
	var queryKeys []string
	seen := make(map[string]bool)
	for i, k := range keys {
		if _, ok := found[k]; ok || seen[k] {
			continue
		}
		seen[k] = true
		query = append(query, positions[i])
		queryKeys = append(queryKeys, k)
	}
	metrics.ElevationCacheMisses.Add(float64(len(query)))

	sampled, err := c.next.SampleTerrain(ctx, level, query)
	if err != nil {
		return err
	}
	if len(sampled) != len(query) {
		return fmt.Errorf("%w: asked for %d, got %d", ErrLengthMismatch, len(query), len(sampled))
	}

	fresh := make(map[string]float64, len(sampled))
	for i, p := range sampled {
		fresh[queryKeys[i]] = p.Height
		found[queryKeys[i]] = p.Height
	}
	c.backfill(ctx, c.tiers, fresh)
	return nil
}

func (c *Cached) backfill(ctx context.Context, tiers []Tier, values map[string]float64) {
	for _, tier := range tiers {
		if err := tier.Store.SetMany(ctx, values); err != nil {
			c.log.Warn("elevation cache write failed", zap.String("tier", tier.Name), zap.Error(err))
		}
	}
}

func without(keys []string, drop map[string]float64) []string {
	var out []string
	for _, k := range keys {
		if _, ok := drop[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// MemoryStore is an in-process LRU tier.
type MemoryStore struct {
	mu   sync.Mutex
	cap  int
	lst  *list.List
	dict map[string]*list.Element

	// Stats
	hits   int
	misses int
}

type memEntry struct {
	key    string
	height float64
}

// NewMemoryStore creates an LRU holding at most capacity samples.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		cap:  max(capacity, 1),
		lst:  list.New(),
		dict: make(map[string]*list.Element),
	}
}

// GetMany implements Store.
func (m *MemoryStore) GetMany(_ context.Context, keys []string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]float64)
	for _, k := range keys {
		e, ok := m.dict[k]
		if !ok {
			m.misses++
			continue
		}
		m.hits++
		m.lst.MoveToFront(e)
		out[k] = e.Value.(memEntry).height
	}
	return out, nil
}

// SetMany implements Store, evicting the least recently used samples.
func (m *MemoryStore) SetMany(_ context.Context, values map[string]float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, h := range values {
		if e, ok := m.dict[k]; ok {
			e.Value = memEntry{key: k, height: h}
			m.lst.MoveToFront(e)
			continue
		}
		m.dict[k] = m.lst.PushFront(memEntry{key: k, height: h})
	}
	for m.lst.Len() > m.cap {
		back := m.lst.Back()
		delete(m.dict, back.Value.(memEntry).key)
		m.lst.Remove(back)
	}
	return nil
}

// Len returns the number of cached samples.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lst.Len()
}

// Clear drops every sample and resets the stats.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lst.Init()
	m.dict = make(map[string]*list.Element)
	m.hits = 0
	m.misses = 0
}

// Stats returns cache statistics.
func (m *MemoryStore) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hits, m.misses
}
