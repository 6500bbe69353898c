package storage

import (
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(t.TempDir()+"/history.db", normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRecentNewestFirst(t *testing.T) {
	store := openTestStore(t, Options{})

	for _, q := range []string{"first", "second", "third"} {
		if err := store.Record(Entry{Query: q, TopK: 10}); err != nil {
			t.Fatalf("Record %s: %v", q, err)
		}
	}

	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 || got[0].Query != "third" || got[1].Query != "second" {
		t.Fatalf("unexpected recent entries %+v", got)
	}
	if got[0].At.IsZero() {
		t.Fatalf("expected entry to be timestamped")
	}

	all, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
}

func TestBoltStoreExpiresEntries(t *testing.T) {
	store := openTestStore(t, Options{
		EntryTTL:        time.Hour,
		CleanupInterval: time.Minute,
	})

	base := time.Now()
	store.now = func() time.Time { return base }
	if err := store.Record(Entry{Query: "old"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	if err := store.Record(Entry{Query: "new"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Query != "new" {
		t.Fatalf("expected only the unexpired entry, got %+v", got)
	}

	var keys int
	if err := store.db.View(func(tx *bolt.Tx) error {
		keys = tx.Bucket([]byte(historyBucket)).Stats().KeyN
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if keys != 1 {
		t.Fatalf("expected cleanup to drop the expired key, %d keys remain", keys)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(Entry{Query: "x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	got, err := store.Recent(10)
	if err != nil || len(got) != 0 {
		t.Fatalf("noop store Recent: %v %v", got, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
