package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/docshield/docshield/pkg/cache"
)

// verifyPayload 公开验证端点缓存的响应片段.
type verifyPayload struct {
	CertificateID string `json:"certificate_id"`
	Valid         bool   `json:"valid"`
	Status        string `json:"status"`
}

// fakeStore 内存 KVStore，记录写入供断言.
type fakeStore struct {
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}

	return nil, errors.New("key not found")
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	_, ok := s.data[key]
	return ok, nil
}

func (s *fakeStore) Keys(_ context.Context, _ string) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}

	return keys, nil
}

func (s *fakeStore) Close() error { return nil }

func TestSetGetRoundTrip(t *testing.T) {
	store := newFakeStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	if _, err := cache.Get[verifyPayload](ctx, c, "cert:CERT-MISSING0000"); err == nil {
		t.Error("expected error for missing key")
	}

	payload := verifyPayload{CertificateID: "CERT-1A2B3C4D5E6F", Valid: true, Status: "verified"}
	if err := cache.Set(ctx, c, "cert:CERT-1A2B3C4D5E6F", payload, 30*time.Second); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := cache.Get[verifyPayload](ctx, c, "cert:CERT-1A2B3C4D5E6F")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got != payload {
		t.Errorf("got %+v, want %+v", got, payload)
	}
}

func TestGetRejectsCorruptEntry(t *testing.T) {
	store := newFakeStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	store.data["cert:broken"] = []byte("{not json")

	if _, err := cache.Get[verifyPayload](ctx, c, "cert:broken"); err == nil {
		t.Error("expected unmarshal error for corrupt entry")
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	store := newFakeStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	if err := cache.Set(ctx, c, "preview:tok", "doc-1", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := c.Delete(ctx, "preview:tok"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := store.data["preview:tok"]; ok {
		t.Error("key still present after delete")
	}
}

func TestGetOrSetCallsGetterOnce(t *testing.T) {
	store := newFakeStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	calls := 0
	getter := func() (verifyPayload, error) {
		calls++
		return verifyPayload{CertificateID: "CERT-AB12CD34EF56", Valid: true, Status: "verified"}, nil
	}

	first, err := cache.GetOrSet(ctx, c, "cert:CERT-AB12CD34EF56", getter, time.Minute)
	if err != nil {
		t.Fatalf("first GetOrSet: %v", err)
	}

	second, err := cache.GetOrSet(ctx, c, "cert:CERT-AB12CD34EF56", getter, time.Minute)
	if err != nil {
		t.Fatalf("second GetOrSet: %v", err)
	}

	if calls != 1 {
		t.Errorf("getter called %d times, want 1", calls)
	}

	if first != second {
		t.Errorf("results differ: %+v vs %+v", first, second)
	}
}

func TestGetOrSetPropagatesGetterError(t *testing.T) {
	store := newFakeStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	getter := func() (verifyPayload, error) {
		return verifyPayload{}, errors.New("backend unavailable")
	}

	if _, err := cache.GetOrSet(ctx, c, "cert:err", getter, time.Minute); err == nil {
		t.Error("expected getter error to propagate")
	}

	if len(store.data) != 0 {
		t.Error("nothing should be cached when getter fails")
	}
}

func TestGenericValueKinds(t *testing.T) {
	store := newFakeStore()
	c := cache.NewCache(store)
	ctx := context.Background()

	if err := cache.Set(ctx, c, "k:str", "sh_01hgw2bkqa", time.Minute); err != nil {
		t.Fatalf("set string: %v", err)
	}

	str, err := cache.Get[string](ctx, c, "k:str")
	if err != nil || str != "sh_01hgw2bkqa" {
		t.Errorf("string round trip: %q, err %v", str, err)
	}

	if err := cache.Set(ctx, c, "k:count", int64(42), time.Minute); err != nil {
		t.Fatalf("set int: %v", err)
	}

	count, err := cache.Get[int64](ctx, c, "k:count")
	if err != nil || count != 42 {
		t.Errorf("int round trip: %d, err %v", count, err)
	}

	flags := []string{"very short text", "pressure language"}
	if err := cache.Set(ctx, c, "k:flags", flags, time.Minute); err != nil {
		t.Fatalf("set slice: %v", err)
	}

	got, err := cache.Get[[]string](ctx, c, "k:flags")
	if err != nil || len(got) != 2 || got[0] != flags[0] || got[1] != flags[1] {
		t.Errorf("slice round trip: %v, err %v", got, err)
	}
}
