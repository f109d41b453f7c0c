package elevation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/Faultbox/blockterrain/internal/metrics"
	"github.com/Faultbox/blockterrain/pkg/geodesy"
)

// countingService returns the longitude in degrees as the height and
// records how many positions it was asked for.
type countingService struct {
	calls     int
	positions int
}

func (s *countingService) SampleTerrain(_ context.Context, _ int, ps []geodesy.Cartographic) ([]geodesy.Cartographic, error) {
	s.calls++
	s.positions += len(ps)
	out := make([]geodesy.Cartographic, len(ps))
	for i, p := range ps {
		p.Height = p.Longitude * 180 / 3.141592653589793
		out[i] = p
	}
	return out, nil
}

type failingStore struct{}

func (failingStore) GetMany(context.Context, []string) (map[string]float64, error) {
	return nil, errors.New("store offline")
}

func (failingStore) SetMany(context.Context, map[string]float64) error {
	return errors.New("store offline")
}

func degrees(lons ...float64) []geodesy.Cartographic {
	out := make([]geodesy.Cartographic, len(lons))
	for i, lon := range lons {
		out[i] = geodesy.CartographicFromDegrees(lon, 0, 0)
	}
	return out
}

func TestCached_FallsThroughThenHits(t *testing.T) {
	backing := &countingService{}
	mem := NewMemoryStore(16)
	c := NewCached(backing, Tier{Name: "memory", Store: mem})
	ctx := context.Background()

	hitsBefore := testutil.ToFloat64(metrics.ElevationCacheHits.WithLabelValues("memory"))

	first, err := c.SampleTerrain(ctx, 1, degrees(10, 20, 10))
	if err != nil {
		t.Fatalf("SampleTerrain() error = %v", err)
	}
	if backing.positions != 2 {
		t.Errorf("backing asked for %d positions, want 2 (duplicate collapsed)", backing.positions)
	}

	second, err := c.SampleTerrain(ctx, 1, degrees(20, 10, 30))
	if err != nil {
		t.Fatalf("SampleTerrain() error = %v", err)
	}
	if backing.calls != 2 || backing.positions != 3 {
		t.Errorf("backing calls=%d positions=%d, want 2 and 3", backing.calls, backing.positions)
	}

	for i, want := range []float64{10, 20, 10} {
		if d := first[i].Height - want; d > 1e-9 || d < -1e-9 {
			t.Errorf("first[%d] = %v, want %v", i, first[i].Height, want)
		}
	}
	for i, want := range []float64{20, 10, 30} {
		if d := second[i].Height - want; d > 1e-9 || d < -1e-9 {
			t.Errorf("second[%d] = %v, want %v", i, second[i].Height, want)
		}
	}

	if got := testutil.ToFloat64(metrics.ElevationCacheHits.WithLabelValues("memory")) - hitsBefore; got != 2 {
		t.Errorf("memory hits = %v, want 2", got)
	}
}

func TestCached_LevelIsPartOfKey(t *testing.T) {
	backing := &countingService{}
	c := NewCached(backing, Tier{Name: "memory", Store: NewMemoryStore(16)})

	c.SampleTerrain(context.Background(), 0, degrees(5))
	c.SampleTerrain(context.Background(), 1, degrees(5))
	if backing.calls != 2 {
		t.Errorf("backing calls = %d, want 2", backing.calls)
	}
}

func TestCached_BackfillsFasterTier(t *testing.T) {
	ctx := context.Background()
	fast := NewMemoryStore(16)
	slow := NewMemoryStore(16)
	slow.SetMany(ctx, map[string]float64{CacheKey(0, degrees(42)[0]): 999})

	backing := &countingService{}
	c := NewCached(backing, Tier{Name: "fast", Store: fast}, Tier{Name: "slow", Store: slow})

	got, err := c.SampleTerrain(ctx, 0, degrees(42))
	if err != nil {
		t.Fatalf("SampleTerrain() error = %v", err)
	}
	if got[0].Height != 999 {
		t.Errorf("height = %v, want 999 from slow tier", got[0].Height)
	}
	if backing.calls != 0 {
		t.Errorf("backing called %d times, want 0", backing.calls)
	}
	if fast.Len() != 1 {
		t.Errorf("fast tier has %d entries after backfill, want 1", fast.Len())
	}
}

func TestCached_FailingTierIsMiss(t *testing.T) {
	backing := &countingService{}
	c := NewCached(backing, Tier{Name: "broken", Store: failingStore{}})

	got, err := c.SampleTerrain(context.Background(), 0, degrees(15))
	if err != nil {
		t.Fatalf("SampleTerrain() error = %v", err)
	}
	if backing.calls != 1 || got[0].Height < 14.999 || got[0].Height > 15.001 {
		t.Errorf("calls=%d height=%v, want one call and 15", backing.calls, got[0].Height)
	}
}

func TestCached_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	store := NewRedisStore(client, time.Minute)
	defer store.Close()

	backing := &countingService{}
	c := NewCached(backing, Tier{Name: "redis", Store: store})

	if _, err := c.SampleTerrain(context.Background(), 0, degrees(1, 2)); err != nil {
		t.Fatalf("SampleTerrain() error = %v, want fallback to service", err)
	}
	if backing.positions != 2 {
		t.Errorf("backing positions = %d, want 2", backing.positions)
	}
}

func TestCached_ServiceError(t *testing.T) {
	boom := errors.New("boom")
	c := NewCached(ServiceFunc(func(context.Context, int, []geodesy.Cartographic) ([]geodesy.Cartographic, error) {
		return nil, boom
	}), Tier{Name: "memory", Store: NewMemoryStore(4)})

	if _, err := c.SampleTerrain(context.Background(), 0, degrees(1)); !errors.Is(err, boom) {
		t.Errorf("SampleTerrain() error = %v, want boom", err)
	}
}

func TestMemoryStore_Evicts(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore(2)

	m.SetMany(ctx, map[string]float64{"a": 1})
	m.SetMany(ctx, map[string]float64{"b": 2})
	m.GetMany(ctx, []string{"a"}) // a is now most recent
	m.SetMany(ctx, map[string]float64{"c": 3})

	got, _ := m.GetMany(ctx, []string{"a", "b", "c"})
	if _, ok := got["b"]; ok {
		t.Error("expected b to be evicted")
	}
	if got["a"] != 1 || got["c"] != 3 {
		t.Errorf("GetMany() = %v, want a=1 c=3", got)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}

	hits, misses := m.Stats()
	if hits != 3 || misses != 1 {
		t.Errorf("Stats() = (%d, %d), want (3, 1)", hits, misses)
	}

	m.Clear()
	if m.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", m.Len())
	}
	if hits, misses := m.Stats(); hits != 0 || misses != 0 {
		t.Errorf("Stats() after Clear = (%d, %d), want zeros", hits, misses)
	}
}

func TestCacheKey(t *testing.T) {
	p := geodesy.Cartographic{Longitude: 0.5, Latitude: -0.25}
	if got := CacheKey(3, p); got != "elev:3:0.5000000:-0.2500000" {
		t.Errorf("CacheKey() = %q", got)
	}
}
