package viewcache_test

import (
	"path/filepath"
	"testing"

	"expertstats/internal/testsupport"
	"expertstats/internal/viewcache"
)

type view struct {
	Won  int    `json:"won"`
	Note string `json:"note"`
}

func TestStoreLookupPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "views.json")
	cache := viewcache.NewCache(path, nil)

	if err := cache.Store("summary", view{Won: 3, Note: "ok"}); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	reloaded := viewcache.NewCache(path, nil)
	if reloaded.Count() != 1 {
		t.Fatalf("expected 1 entry after reload, got %d", reloaded.Count())
	}
	var got view
	found, err := reloaded.Lookup("summary", &got)
	if err != nil || !found {
		t.Fatalf("expected cached view, found=%v err=%v", found, err)
	}
	if got.Won != 3 || got.Note != "ok" {
		t.Fatalf("unexpected view %+v", got)
	}
}

func TestFlushDropsEverything(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.json")
	cache := viewcache.NewCache(path, nil)
	for _, key := range []string{"a", "b"} {
		if err := cache.Store(key, view{}); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}
	if err := cache.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	if cache.Count() != 0 {
		t.Fatalf("expected empty cache, got %d", cache.Count())
	}
	if viewcache.NewCache(path, nil).Count() != 0 {
		t.Fatal("expected flushed cache on disk")
	}
	var got view
	if found, _ := cache.Lookup("a", &got); found {
		t.Fatal("expected miss after flush")
	}
}

func TestEmptyPathIsNoop(t *testing.T) {
	cache := viewcache.NewCache("", nil)
	if err := cache.Store("x", 1); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if err := cache.Flush(); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
	var out int
	if found, _ := cache.Lookup("x", &out); found {
		t.Fatal("expected no-op cache")
	}
	if err := cache.Store(" ", 1); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "views.json")
	testsupport.WriteFile(t, path, []byte("{not json"))

	cache := viewcache.NewCache(path, nil)
	if cache.Count() != 0 {
		t.Fatalf("expected empty cache, got %d", cache.Count())
	}
	if err := cache.Store("summary", view{Won: 1}); err != nil {
		t.Fatalf("Store after corrupt load failed: %v", err)
	}
}
