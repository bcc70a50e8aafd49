package lookup

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/theoremus-urban-solutions/zhbus-go/config"
	"github.com/theoremus-urban-solutions/zhbus-go/zhbus"
)

type fakeQuerier struct {
	stationCalls, lineCalls, realtimeCalls int
	err                                    error
}

func (f *fakeQuerier) GetStationList(_ context.Context, lineID string) (*zhbus.StationList, error) {
	f.stationCalls++
	if f.err != nil {
		return nil, f.err
	}
	return &zhbus.StationList{LineID: lineID, Stations: []zhbus.Station{
		{ID: "s2", Name: "North", Order: 1},
		{ID: "s1", Name: "Central", Order: 2},
	}}, nil
}

func (f *fakeQuerier) GetLineDetailByName(_ context.Context, lineName string) ([]zhbus.Line, error) {
	f.lineCalls++
	if f.err != nil {
		return nil, f.err
	}
	return []zhbus.Line{{ID: "a", Name: lineName}, {ID: "b", Name: lineName}}, nil
}

func (f *fakeQuerier) GetRealTimeStatus(_ context.Context, lineName, headStation string) (*zhbus.RealTimeStatus, error) {
	f.realtimeCalls++
	return &zhbus.RealTimeStatus{LineName: lineName, HeadStation: headStation, ReceivedAt: time.Now()}, nil
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("store down")
}

func TestService_StationListCached(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewService(q, NewMemoryStore(16), time.Minute, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		list, err := svc.StationList(ctx, "12")
		if err != nil {
			t.Fatalf("StationList: %v", err)
		}
		if list.LineID != "12" || len(list.Stations) != 2 || list.Stations[0].ID != "s2" || list.Stations[1].ID != "s1" {
			t.Errorf("call %d: unexpected list %+v", i, list)
		}
	}
	if q.stationCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", q.stationCalls)
	}

	if _, err := svc.StationList(ctx, "13"); err != nil {
		t.Fatalf("StationList: %v", err)
	}
	if q.stationCalls != 2 {
		t.Errorf("different line should miss, got %d calls", q.stationCalls)
	}
}

func TestService_LinesCached(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewService(q, NewMemoryStore(16), time.Minute, time.Minute)

	for i := 0; i < 2; i++ {
		lines, err := svc.LinesByName(context.Background(), "3")
		if err != nil {
			t.Fatalf("LinesByName: %v", err)
		}
		if len(lines) != 2 {
			t.Errorf("expected 2 lines, got %d", len(lines))
		}
	}
	if q.lineCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", q.lineCalls)
	}
}

func TestService_RealTimeNeverCached(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewService(q, NewMemoryStore(16), time.Minute, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := svc.RealTime(context.Background(), "3", "A"); err != nil {
			t.Fatalf("RealTime: %v", err)
		}
	}
	if q.realtimeCalls != 3 {
		t.Errorf("expected 3 upstream calls, got %d", q.realtimeCalls)
	}
}

func TestService_ErrorsNotCached(t *testing.T) {
	q := &fakeQuerier{err: &zhbus.QueryError{Kind: zhbus.KindHTTPStatus, StatusCode: 500}}
	svc := NewService(q, NewMemoryStore(16), time.Minute, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := svc.StationList(context.Background(), "1"); !errors.Is(err, zhbus.ErrHTTPStatus) {
			t.Errorf("expected http status error, got %v", err)
		}
	}
	if q.stationCalls != 2 {
		t.Errorf("failures should not be cached, got %d calls", q.stationCalls)
	}
}

func TestService_StoreFailureFallsThrough(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewService(q, failingStore{}, time.Minute, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := svc.LinesByName(context.Background(), "3"); err != nil {
			t.Fatalf("LinesByName: %v", err)
		}
	}
	if q.lineCalls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", q.lineCalls)
	}
}

func TestService_CorruptEntryIsMiss(t *testing.T) {
	q := &fakeQuerier{}
	store := NewMemoryStore(16)
	ctx := context.Background()
	if err := store.Set(ctx, stationsKey("12"), []byte("{not json"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	svc := NewService(q, store, time.Minute, time.Minute)

	list, err := svc.StationList(ctx, "12")
	if err != nil {
		t.Fatalf("StationList: %v", err)
	}
	if len(list.Stations) != 2 || q.stationCalls != 1 {
		t.Errorf("corrupt entry should be replaced by upstream result, calls=%d", q.stationCalls)
	}
}

func TestService_NoStore(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewService(q, nil, time.Minute, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := svc.StationList(context.Background(), "1"); err != nil {
			t.Fatalf("StationList: %v", err)
		}
	}
	if q.stationCalls != 2 {
		t.Errorf("expected 2 upstream calls without a store, got %d", q.stationCalls)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore(4)
	ctx := context.Background()
	if err := store.Set(ctx, "k", []byte("v"), 20*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if b, ok, err := store.Get(ctx, "k"); err != nil || !ok || string(b) != "v" {
		t.Fatalf("Get = %q, %v, %v", b, ok, err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, ok, err := store.Get(ctx, "k"); err != nil || ok {
		t.Errorf("expected expired miss, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryStore_LRUEviction(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := store.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok, _ := store.Get(ctx, "c"); !ok {
		t.Error("newest entry should be present")
	}
}

func TestNewStoreFromConfig(t *testing.T) {
	ctx := context.Background()

	store, closeFn, err := NewStoreFromConfig(ctx, config.CacheConfig{Backend: "none"}, config.RedisConfig{})
	if err != nil || store != nil || closeFn == nil {
		t.Errorf("none: store=%v err=%v", store, err)
	}

	store, _, err = NewStoreFromConfig(ctx, config.CacheConfig{Backend: "memory", Size: 8}, config.RedisConfig{})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Errorf("memory: got %T", store)
	}

	if _, _, err := NewStoreFromConfig(ctx, config.CacheConfig{Backend: "disk"}, config.RedisConfig{}); err == nil {
		t.Error("expected error for unknown backend")
	}
}

// TestRedisStore runs against a live Redis when REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	ctx := context.Background()
	store := NewRedisStore(rdb, "zhbus-test:")
	key := "k-" + time.Now().Format("150405.000000")
	if _, ok, err := store.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := store.Set(ctx, key, []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if b, ok, err := store.Get(ctx, key); err != nil || !ok || string(b) != "v" {
		t.Errorf("Get = %q, %v, %v", b, ok, err)
	}
	_ = rdb.Del(ctx, "zhbus-test:"+key).Err()
}

func TestService_LineContext(t *testing.T) {
	q := &fakeQuerier{}
	svc := NewService(q, NewMemoryStore(16), time.Minute, time.Minute)
	ctx := context.Background()

	stations, line, err := svc.LineContext(ctx, "3", "b")
	if err != nil {
		t.Fatalf("LineContext: %v", err)
	}
	if stations == nil || stations.LineID != "b" {
		t.Errorf("stations = %+v", stations)
	}
	if line == nil || line.ID != "b" {
		t.Errorf("line = %+v", line)
	}

	stations, line, err = svc.LineContext(ctx, "3", "")
	if stations != nil || line != nil || err != nil {
		t.Error("empty line id should skip enrichment")
	}

	q.err = &zhbus.QueryError{Kind: zhbus.KindNetwork}
	stations, line, err = svc.LineContext(ctx, "9", "x")
	if !errors.Is(err, zhbus.ErrNetwork) {
		t.Errorf("expected network error, got %v", err)
	}
	if stations != nil || line != nil {
		t.Error("failed lookups should yield nothing")
	}
}
