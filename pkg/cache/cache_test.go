package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always return a nil miss")
	}
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Errorf("Get(missing) = hit %v, err %v; want miss", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("v"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get(k) = %q, %v, %v; want v, true, nil", data, hit, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry still present after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("second Delete = %v, want nil", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned as hit")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file was not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v; want miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir still has %d entries", len(entries))
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	type payload struct {
		Cuts []int `json:"cuts"`
	}
	var got payload
	if err := GetJSON(ctx, c, "p", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(missing) = %v, want ErrCacheMiss", err)
	}
	if err := SetJSON(ctx, c, "p", payload{Cuts: []int{2, 5}}, time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := GetJSON(ctx, c, "p", &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Cuts) != 2 || got.Cuts[1] != 5 {
		t.Errorf("GetJSON = %+v, want cuts [2 5]", got)
	}

	_ = c.Set(ctx, "bad", []byte("not json"), time.Hour)
	if err := GetJSON(ctx, c, "bad", &got); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("GetJSON(undecodable) = %v, want ErrCacheMiss", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	ck1 := k.CoarsenKey("g1", CoarsenKeyOpts{Clusters: 10, Mode: "strongest"})
	ck2 := k.CoarsenKey("g1", CoarsenKeyOpts{Clusters: 12, Mode: "strongest"})
	if ck1 == ck2 {
		t.Error("different CoarsenKeyOpts should produce different keys")
	}
	if !strings.HasPrefix(ck1, "coarsen:") {
		t.Errorf("CoarsenKey = %q, want coarsen: prefix", ck1)
	}
	if ck1 != k.CoarsenKey("g1", CoarsenKeyOpts{Clusters: 10, Mode: "strongest"}) {
		t.Error("CoarsenKey should be deterministic")
	}

	pk1 := k.PartitionKey("l1", PartitionKeyOpts{Partitions: 4, Seed: 1})
	pk2 := k.PartitionKey("l1", PartitionKeyOpts{Partitions: 4, Seed: 2})
	if pk1 == pk2 {
		t.Error("different seeds should produce different partition keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "tenant:7:")
	key := scoped.CoarsenKey("g", CoarsenKeyOpts{})
	if !strings.HasPrefix(key, "tenant:7:coarsen:") {
		t.Errorf("ScopedKeyer CoarsenKey = %q, want tenant prefix", key)
	}

	nilInner := NewScopedKeyer(nil, "p:")
	if got := nilInner.PartitionKey("l", PartitionKeyOpts{}); !strings.HasPrefix(got, "p:partition:") {
		t.Errorf("ScopedKeyer with nil inner = %q", got)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "not-a-redis-url"); err == nil {
		t.Error("expected an error for an invalid URL")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrCacheMiss) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()

	calls := 0
	if err := RetryWithBackoff(ctx, func() error { calls++; return nil }); err != nil || calls != 1 {
		t.Errorf("success: err %v, calls %d", err, calls)
	}

	calls = 0
	err := RetryWithBackoff(ctx, func() error { calls++; return ErrCacheMiss })
	if err != ErrCacheMiss || calls != 1 {
		t.Errorf("non-retryable: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err %v, calls %d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error { calls++; return Retryable(ErrNetwork) })
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}

func TestHashLines(t *testing.T) {
	if got, want := HashLines("g", "a", "b"), Hash([]byte("g\na\nb")); got != want {
		t.Errorf("HashLines = %q, want %q", got, want)
	}
	if HashLines("g", "a", "b") == HashLines("g", "b", "a") {
		t.Error("HashLines should depend on order")
	}
}
