// terrain/cache.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/avsim/autoflight/log"
	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// TileCache keeps a bounded working set of loaded tiles, strict LRU. All
// access to the resident map goes through a single mutex; that includes
// disk reads on a miss, which keeps a second thread from redundantly
// loading the tile that's already on its way in. Tile loads are a few
// tens of milliseconds at worst, which the flight loop tolerates far
// better than it would an inconsistent cache.
type TileCache struct {
	mu    sync.Mutex
	tiles *simplelru.LRU[TileCoordinate, *Tile]
	dir   string

	hits   int64
	misses int64

	lg *log.Logger
}

// NewTileCache returns a cache that loads tiles from dir. An empty dir is
// allowed and means no dataset is configured; every lookup then misses and
// the caller falls back. This is the subsystem's only error-returning
// constructor: a dir that exists but isn't usable is a configuration
// mistake worth surfacing, unlike anything on the query path.
func NewTileCache(dir string, maxTiles int, lg *log.Logger) (*TileCache, error) {
	if maxTiles <= 0 {
		maxTiles = 16
	}

	if dir != "" {
		fi, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", dir, err)
		}
		if !fi.IsDir() {
			return nil, fmt.Errorf("%s: not a directory", dir)
		}
	}

	c := &TileCache{dir: dir, lg: lg}

	lru, err := simplelru.NewLRU(maxTiles, func(coord TileCoordinate, t *Tile) {
		lg.Debug("evicted tile", "tile", coord.String(), "resident_since", t.loadAt)
	})
	if err != nil {
		return nil, err
	}
	c.tiles = lru

	return c, nil
}

// GetOrLoad returns the resident tile for coord, loading it from disk on a
// miss. The returned tile is nil if no usable tile file exists; a failed
// load inserts nothing, so the next query for the same coordinate will
// probe the disk again. Callers decide whether that's worth avoiding (the
// store's memoization layer mostly makes it moot).
func (c *TileCache) GetOrLoad(coord TileCoordinate) *Tile {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.tiles.Get(coord); ok { // Get also marks it most recent
		c.hits++
		return t
	}
	c.misses++

	t := c.loadFromDisk(coord)
	if t == nil {
		return nil
	}
	c.tiles.Add(coord, t) // evicts the LRU tile if at capacity
	return t
}

// Preload loads the tile for coord if it isn't already resident, reading
// and decoding outside the cache lock so that several Preloads can run
// concurrently (the Prefetch path). Two goroutines may redundantly decode
// the same tile once; only one copy is kept.
func (c *TileCache) Preload(coord TileCoordinate) bool {
	c.mu.Lock()
	resident := c.tiles.Contains(coord)
	c.mu.Unlock()
	if resident {
		return true
	}

	t := c.loadFromDisk(coord)
	if t == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.tiles.Contains(coord) {
		c.tiles.Add(coord, t)
	}
	return true
}

// loadFromDisk tries the raw tile file and then the zstd-compressed
// variant. All failure modes degrade identically: a corrupt or truncated
// file is no more of an error than an ocean tile that was never mapped,
// so everything is logged at debug and reported as a plain nil.
func (c *TileCache) loadFromDisk(coord TileCoordinate) *Tile {
	if c.dir == "" {
		return nil
	}

	name := coord.Filename()
	var b []byte
	var err error
	for _, fn := range []string{name, name + ".zst"} {
		b, err = readTileFile(filepath.Join(c.dir, fn))
		if err == nil {
			break
		}
	}
	if err != nil {
		if !os.IsNotExist(err) {
			c.lg.Debug("tile unreadable", "tile", coord.String(), "error", err)
		}
		return nil
	}

	t, err := DecodeTile(coord, b)
	if err != nil {
		c.lg.Debug("tile corrupt", "tile", coord.String(), "error", err)
		return nil
	}
	t.loadAt = time.Now()

	c.lg.Debug("loaded tile", "tile", coord.String(), "resolution", t.res,
		"voids", t.VoidCount())
	return t
}

// Clear drops all resident tiles. Statistics are unaffected; use
// ResetStats for those.
func (c *TileCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tiles.Purge()
}

// Len returns the number of resident tiles.
func (c *TileCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tiles.Len()
}

// Contains reports residency without disturbing LRU order or statistics.
func (c *TileCache) Contains(coord TileCoordinate) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tiles.Contains(coord)
}

// Stats returns the cumulative hit and miss counts.
func (c *TileCache) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

func (c *TileCache) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits, c.misses = 0, 0
}

// MemoryEstimate returns the approximate bytes held by resident tiles.
func (c *TileCache) MemoryEstimate() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total int64
	for _, t := range c.tiles.Values() {
		total += t.MemoryEstimate()
	}
	return total
}
