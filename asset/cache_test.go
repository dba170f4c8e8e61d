package asset

import (
	"image"
	"strconv"
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := NewCache(10)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	c.Set("a.png", img)

	got, ok := c.Get("a.png")
	if !ok {
		t.Fatal("expected a.png to exist")
	}
	if got != img {
		t.Error("expected the cached image to be returned")
	}
	if _, ok := c.Get("missing.png"); ok {
		t.Error("expected missing.png to not exist")
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %+v", s)
	}
}

func TestCacheEviction(t *testing.T) {
	c := NewCache(1)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	// With one entry per shard, inserting many keys must keep the cache
	// bounded by the shard count.
	for i := 0; i < 100; i++ {
		c.Set("k"+strconv.Itoa(i), img)
	}
	if n := c.Len(); n > shardCount {
		t.Errorf("expected at most %d entries, got %d", shardCount, n)
	}
	if c.Stats().Evictions == 0 {
		t.Error("expected evictions")
	}
}

func TestCacheDeleteClear(t *testing.T) {
	c := NewCache(10)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	c.Set("a", img)
	c.Set("b", img)

	if !c.Delete("a") {
		t.Error("expected Delete to return true for existing key")
	}
	if c.Delete("a") {
		t.Error("expected Delete to return false for removed key")
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := NewCache(8)
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := strconv.Itoa((g * i) % 50)
				c.Set(key, img)
				c.Get(key)
			}
		}(g)
	}
	wg.Wait()
}
