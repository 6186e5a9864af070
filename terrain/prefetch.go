// terrain/prefetch.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"context"
	gomath "math"

	"github.com/avsim/autoflight/math"
	"github.com/avsim/autoflight/util"
	"golang.org/x/sync/errgroup"
)

// Prefetch warms the tile cache for the bounding box from sw to ne,
// typically the corridor of a filed route before departure. Tiles are read
// and decoded concurrently (bounded by a small worker pool) and inserted
// atomically; see TileCache.Preload. Returns the number of tiles resident
// for the box afterward. Tiles that don't exist aren't an error here any
// more than they are on the query path.
//
// Note that if the box spans more tiles than the cache's capacity, the
// excess is loaded and immediately evicted; use a Config.MaxTiles sized
// for the route.
func (s *Store) Prefetch(ctx context.Context, sw, ne math.Point2LL) int {
	var coords []TileCoordinate
	for lat := int(gomath.Floor(sw.Latitude())); lat <= int(gomath.Floor(ne.Latitude())); lat++ {
		for lon := int(gomath.Floor(sw.Longitude())); lon <= int(gomath.Floor(ne.Longitude())); lon++ {
			coords = append(coords, TileCoordinateFor(float64(lat)+0.5, float64(lon)+0.5))
		}
	}
	coords = util.FilterSlice(coords, TileCoordinate.InCoverage)

	var eg errgroup.Group
	eg.SetLimit(4)

	loaded := make(chan TileCoordinate, len(coords))
	for _, coord := range coords {
		coord := coord
		eg.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if s.tiles.Preload(coord) {
				loaded <- coord
			}
			return nil
		})
	}
	err := eg.Wait()
	close(loaded)

	n := len(loaded)
	if err != nil {
		s.lg.Debug("prefetch interrupted", "error", err)
	}
	s.lg.Infof("prefetched %d of %d tiles", n, len(coords))
	return n
}
