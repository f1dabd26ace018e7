package filecache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type release struct {
	Tag    string   `json:"tag"`
	Assets []string `json:"assets"`
}

// newTestCache returns a cache whose clock the test controls.
func newTestCache(t *testing.T) (*Cache[release], *time.Time) {
	t.Helper()
	c := New[release](filepath.Join(t.TempDir(), "cache"))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestKey(t *testing.T) {
	k1 := Key("acme", "deskshell")
	if k1 != Key("acme", "deskshell") {
		t.Error("Key is not deterministic")
	}
	if k1 == Key("acme", "other") {
		t.Error("Key should differ for different parts")
	}
	// Parts are separated, so joining differently is a different key.
	if Key("ab", "c") == Key("a", "bc") {
		t.Error("Key should not collide across part boundaries")
	}
	if len(k1) != 16 {
		t.Errorf("Key length = %d, want 16", len(k1))
	}
}

func TestPutAndGet(t *testing.T) {
	c, _ := newTestCache(t)
	want := release{Tag: "v1.2.0", Assets: []string{"deskshell-linux-amd64"}}

	if err := c.Put("latest", "acme/deskshell", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	info, err := os.Stat(c.Path("latest"))
	if err != nil {
		t.Fatalf("cache file not created: %v", err)
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		t.Errorf("cache file permissions = %o, want owner only", perm)
	}

	e, hit, err := c.Get("latest", "acme/deskshell", time.Hour)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected cache hit")
	}
	if e.Data.Tag != want.Tag || len(e.Data.Assets) != 1 || e.Data.Assets[0] != want.Assets[0] {
		t.Errorf("Data = %+v, want %+v", e.Data, want)
	}
}

func TestGetMisses(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		advance time.Duration
		ttl     time.Duration
		put     bool
	}{
		{name: "missing file", tag: "a", ttl: time.Hour},
		{name: "expired", tag: "a", put: true, advance: 2 * time.Hour, ttl: time.Hour},
		{name: "exactly ttl", tag: "a", put: true, advance: time.Hour, ttl: time.Hour},
		{name: "different tag", tag: "b", put: true, ttl: time.Hour},
		{name: "clock moved back", tag: "a", put: true, advance: -time.Minute, ttl: time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, now := newTestCache(t)
			if tt.put {
				if err := c.Put("k", "a", release{Tag: "v1"}); err != nil {
					t.Fatalf("Put: %v", err)
				}
			}
			*now = now.Add(tt.advance)

			e, hit, err := c.Get("k", tt.tag, tt.ttl)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if hit || e != nil {
				t.Errorf("expected miss, got hit=%v entry=%+v", hit, e)
			}
		})
	}
}

func TestGetCorruptedFile(t *testing.T) {
	c, _ := newTestCache(t)
	if err := os.MkdirAll(c.dir, 0o700); err != nil {
		t.Fatal(err)
	}
	path := c.Path("bad")
	if err := os.WriteFile(path, []byte("not valid json {{{"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, hit, err := c.Get("bad", "", time.Hour)
	if err == nil {
		t.Error("expected error for corrupted cache file")
	}
	if hit {
		t.Error("corrupted file should not be a hit")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupted cache file should have been removed")
	}
}

func TestPutOverwrites(t *testing.T) {
	c, _ := newTestCache(t)
	for _, tag := range []string{"v1", "v2"} {
		if err := c.Put("k", "", release{Tag: tag}); err != nil {
			t.Fatalf("Put %s: %v", tag, err)
		}
	}
	e, hit, err := c.Get("k", "", time.Hour)
	if err != nil || !hit {
		t.Fatalf("Get: hit=%v err=%v", hit, err)
	}
	if e.Data.Tag != "v2" {
		t.Errorf("Tag = %q, want v2", e.Data.Tag)
	}

	// No temp files are left behind.
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("cache dir has %d entries, want 1", len(entries))
	}
}

func TestCleanup(t *testing.T) {
	c, now := newTestCache(t)
	if cleaned, errs := c.Cleanup(time.Hour); cleaned != 0 || errs != 0 {
		t.Errorf("Cleanup of missing dir = %d, %d", cleaned, errs)
	}

	for _, k := range []string{"old", "new"} {
		if err := c.Put(k, "", release{Tag: k}); err != nil {
			t.Fatal(err)
		}
	}
	other := filepath.Join(c.dir, "notes.txt")
	if err := os.WriteFile(other, []byte("keep"), 0o600); err != nil {
		t.Fatal(err)
	}

	// Cleanup goes by file modification time.
	old := now.Add(-48 * time.Hour)
	for _, p := range []string{c.Path("old"), other} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Chtimes(c.Path("new"), *now, *now); err != nil {
		t.Fatal(err)
	}

	cleaned, errs := c.Cleanup(24 * time.Hour)
	if cleaned != 1 || errs != 0 {
		t.Errorf("Cleanup = %d cleaned, %d errors; want 1, 0", cleaned, errs)
	}
	if _, err := os.Stat(c.Path("old")); !os.IsNotExist(err) {
		t.Error("old entry should be removed")
	}
	if _, err := os.Stat(c.Path("new")); err != nil {
		t.Error("new entry should remain")
	}
	if _, err := os.Stat(other); err != nil {
		t.Error("non-cache files should be left alone")
	}
}
