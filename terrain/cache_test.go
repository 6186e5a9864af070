// terrain/cache_test.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"os"
	"path/filepath"
	"testing"
)

// writeTestTile drops a small uniform tile file into dir and returns its
// coordinate.
func writeTestTile(t *testing.T, dir string, coord TileCoordinate, elev int16) TileCoordinate {
	t.Helper()
	tile := NewUniformTile(coord, SRTM3Resolution, elev)
	if err := WriteTileFile(filepath.Join(dir, coord.Filename()), tile); err != nil {
		t.Fatal(err)
	}
	return coord
}

func TestCacheGetOrLoad(t *testing.T) {
	dir := t.TempDir()
	coord := writeTestTile(t, dir, TileCoordinate{37, -123}, 13)

	c, err := NewTileCache(dir, 4, nil)
	if err != nil {
		t.Fatal(err)
	}

	tile := c.GetOrLoad(coord)
	if tile == nil {
		t.Fatal("GetOrLoad returned nil for an existing tile")
	}
	if tile.Coordinate() != coord {
		t.Errorf("tile coordinate = %v, want %v", tile.Coordinate(), coord)
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 1 {
		t.Errorf("stats after first load = (%d, %d), want (0, 1)", hits, misses)
	}

	if again := c.GetOrLoad(coord); again != tile {
		t.Errorf("second GetOrLoad returned a different tile")
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("stats after hit = (%d, %d), want (1, 1)", hits, misses)
	}
}

func TestCacheMissingTile(t *testing.T) {
	c, err := NewTileCache(t.TempDir(), 4, nil)
	if err != nil {
		t.Fatal(err)
	}

	if tile := c.GetOrLoad(TileCoordinate{12, 34}); tile != nil {
		t.Errorf("GetOrLoad for a missing file returned %v", tile)
	}
	if n := c.Len(); n != 0 {
		t.Errorf("missing tile inserted a placeholder; Len = %d", n)
	}

	// A second probe misses again; missing tiles are never negatively
	// cached here.
	c.GetOrLoad(TileCoordinate{12, 34})
	if hits, misses := c.Stats(); hits != 0 || misses != 2 {
		t.Errorf("stats = (%d, %d), want (0, 2)", hits, misses)
	}
}

func TestCacheCorruptTile(t *testing.T) {
	dir := t.TempDir()
	coord := TileCoordinate{37, -123}

	// Present but truncated to half the expected size: treated exactly
	// like a missing file.
	b := make([]byte, SRTM3Resolution*SRTM3Resolution)
	if err := os.WriteFile(filepath.Join(dir, coord.Filename()), b, 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := NewTileCache(dir, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if tile := c.GetOrLoad(coord); tile != nil {
		t.Errorf("GetOrLoad for a corrupt file returned %v", tile)
	}
	if n := c.Len(); n != 0 {
		t.Errorf("corrupt tile inserted a placeholder; Len = %d", n)
	}
}

func TestCacheBoundedSize(t *testing.T) {
	dir := t.TempDir()
	const maxTiles = 3

	var coords []TileCoordinate
	for i := 0; i < 7; i++ {
		coords = append(coords, writeTestTile(t, dir, TileCoordinate{30 + i, -100}, int16(i)))
	}

	c, err := NewTileCache(dir, maxTiles, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, coord := range coords {
		c.GetOrLoad(coord)
		if n := c.Len(); n > maxTiles {
			t.Fatalf("resident count %d exceeds max %d", n, maxTiles)
		}
	}

	// The last maxTiles loaded are resident, the earlier ones are not.
	for i, coord := range coords {
		want := i >= len(coords)-maxTiles
		if got := c.Contains(coord); got != want {
			t.Errorf("Contains(%v) = %v, want %v", coord, got, want)
		}
	}
}

func TestCacheEvictionOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeTestTile(t, dir, TileCoordinate{30, -100}, 1)
	b := writeTestTile(t, dir, TileCoordinate{31, -100}, 2)
	cc := writeTestTile(t, dir, TileCoordinate{32, -100}, 3)

	cache, err := NewTileCache(dir, 2, nil)
	if err != nil {
		t.Fatal(err)
	}

	// Load A, B, then C; A is the least recently used and gets evicted.
	cache.GetOrLoad(a)
	cache.GetOrLoad(b)
	cache.GetOrLoad(cc)

	if cache.Contains(a) {
		t.Errorf("A still resident after overflow")
	}
	if !cache.Contains(b) || !cache.Contains(cc) {
		t.Errorf("B or C missing after overflow")
	}

	// Querying A again reloads from disk: exactly one more miss than a
	// repeat query against a resident tile costs.
	_, missesBefore := cache.Stats()
	cache.GetOrLoad(b) // hit
	if _, m := cache.Stats(); m != missesBefore {
		t.Errorf("repeat query against resident tile missed")
	}
	if tile := cache.GetOrLoad(a); tile == nil {
		t.Fatal("reload of evicted tile failed")
	}
	if _, m := cache.Stats(); m != missesBefore+1 {
		t.Errorf("reload of evicted tile cost %d misses, want 1", m-missesBefore)
	}
}

func TestCacheTouchChangesEvictionOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeTestTile(t, dir, TileCoordinate{30, -100}, 1)
	b := writeTestTile(t, dir, TileCoordinate{31, -100}, 2)
	cc := writeTestTile(t, dir, TileCoordinate{32, -100}, 3)

	cache, err := NewTileCache(dir, 2, nil)
	if err != nil {
		t.Fatal(err)
	}

	cache.GetOrLoad(a)
	cache.GetOrLoad(b)
	cache.GetOrLoad(a) // touch A; B is now the eviction candidate
	cache.GetOrLoad(cc)

	if !cache.Contains(a) {
		t.Errorf("A evicted despite being most recently touched")
	}
	if cache.Contains(b) {
		t.Errorf("B still resident; LRU order not honored")
	}
}

func TestCacheClearAndResetStats(t *testing.T) {
	dir := t.TempDir()
	coord := writeTestTile(t, dir, TileCoordinate{37, -123}, 13)

	c, err := NewTileCache(dir, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	c.GetOrLoad(coord)
	c.GetOrLoad(coord)

	c.Clear()
	if n := c.Len(); n != 0 {
		t.Errorf("Len after Clear = %d", n)
	}
	if hits, misses := c.Stats(); hits != 1 || misses != 1 {
		t.Errorf("Clear changed stats: (%d, %d)", hits, misses)
	}

	c.ResetStats()
	if hits, misses := c.Stats(); hits != 0 || misses != 0 {
		t.Errorf("stats after reset = (%d, %d)", hits, misses)
	}
}

func TestCacheMemoryEstimate(t *testing.T) {
	dir := t.TempDir()
	coord := writeTestTile(t, dir, TileCoordinate{37, -123}, 13)

	c, err := NewTileCache(dir, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if est := c.MemoryEstimate(); est != 0 {
		t.Errorf("empty cache estimate = %d", est)
	}
	c.GetOrLoad(coord)
	want := int64(2*SRTM3Resolution*SRTM3Resolution) + 64
	if est := c.MemoryEstimate(); est != want {
		t.Errorf("one-tile estimate = %d, want %d", est, want)
	}
}

func TestCachePreload(t *testing.T) {
	dir := t.TempDir()
	coord := writeTestTile(t, dir, TileCoordinate{37, -123}, 13)

	c, err := NewTileCache(dir, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !c.Preload(coord) {
		t.Fatal("Preload of existing tile failed")
	}
	if !c.Contains(coord) {
		t.Errorf("tile not resident after Preload")
	}
	if c.Preload(TileCoordinate{12, 34}) {
		t.Errorf("Preload of missing tile reported success")
	}

	// Preload doesn't disturb the query-path statistics.
	if hits, misses := c.Stats(); hits != 0 || misses != 0 {
		t.Errorf("Preload changed stats: (%d, %d)", hits, misses)
	}
}

func TestCacheBadDirectory(t *testing.T) {
	if _, err := NewTileCache("/nonexistent/really/not/here", 4, nil); err == nil {
		t.Errorf("NewTileCache with a bad directory succeeded")
	}

	f := filepath.Join(t.TempDir(), "afile")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewTileCache(f, 4, nil); err == nil {
		t.Errorf("NewTileCache with a file path succeeded")
	}
}
