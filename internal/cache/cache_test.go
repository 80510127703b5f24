package cache

import (
	"bytes"
	"path/filepath"
	"testing"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "lookups.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestGetMissing(t *testing.T) {
	c := openTestCache(t)
	if _, ok := c.Get("https://registry.test/works?q=x"); ok {
		t.Error("Get on empty cache reported a hit")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	key := "https://registry.test/works?q=x"
	body := []byte(`{"message":{"items":[]}}`)

	if err := c.Put(key, body); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get missed after Put")
	}
	if !bytes.Equal(got, body) {
		t.Errorf("Get = %q, want %q", got, body)
	}
}

func TestPutReplaces(t *testing.T) {
	c := openTestCache(t)
	key := "https://registry.test/works?q=x"

	if err := c.Put(key, []byte("old")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Put(key, []byte("new")); err != nil {
		t.Fatalf("Put (replace): %v", err)
	}
	got, ok := c.Get(key)
	if !ok || string(got) != "new" {
		t.Errorf("Get = %q, %v; want new", got, ok)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lookups.db")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := c.Put("k", []byte("v")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer c2.Close()
	got, ok := c2.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get after reopen = %q, %v", got, ok)
	}
}
