// terrain/elevation.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	gomath "math"
	"sync"
	"time"

	"github.com/avsim/autoflight/log"
	"github.com/avsim/autoflight/math"
	"github.com/avsim/autoflight/util"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is the terrain subsystem's public face: tile cache, interpolation
// and the regional fallback behind one set of query methods. It backs the
// minimum-safe-altitude and terrain-clearance checks in the flight loop,
// so no query ever returns an error; when authoritative data is missing
// the answer degrades through the fallback model and the degradation is
// visible only in the debug log and the cache counters.
//
// One Store instance owns all of its state. Construct it once and hand it
// to whoever needs elevations; there are no package-level caches.
type Store struct {
	cfg      Config
	tiles    *TileCache
	fallback *FallbackModel

	// Quantized point-elevation memoization. Sits in front of the tile
	// cache so that the flight loop re-querying essentially the same
	// position at 10-20 Hz doesn't re-interpolate every frame.
	memoMu sync.Mutex
	memo   *expirable.LRU[memoKey, float64]

	lg *log.Logger
}

type Config struct {
	// DataDir holds the .hgt/.hgt.zst tile files. Empty means no dataset;
	// every query uses the fallback model.
	DataDir string `json:"data_dir"`

	// MaxTiles bounds the resident tile working set; 0 means the default
	// of 16 (about 50MB of SRTM3, enough for a regional flight).
	MaxTiles int `json:"max_tiles"`

	// MemoEntries bounds the point-memoization cache; 0 means the default
	// of 8192 and a negative value disables memoization.
	MemoEntries int `json:"memo_entries"`

	// MemoTTL expires memoized points; zero keeps them until evicted.
	MemoTTL time.Duration `json:"memo_ttl"`

	// PersistMemo carries the memoization cache across runs via a
	// compressed snapshot in the user cache dir.
	PersistMemo bool `json:"persist_memo"`
}

// Elevation answers are clamped to this band (feet); anything outside it
// is a corrupt sample, not terrain.
const (
	minPlausibleElevation = -1500
	maxPlausibleElevation = 30000
)

// memoQuantum is the edge of a memoization cell: 1/120 degree, about half
// an SRTM3 post.
const memoQuantum = 120

type memoKey struct {
	Lat int32
	Lon int32
}

// pack and unpackMemoKey give the snapshot code a msgpack-friendly scalar
// form of the key.
func (k memoKey) pack() int64 {
	return int64(k.Lat)<<32 | int64(uint32(k.Lon))
}

func unpackMemoKey(v int64) memoKey {
	return memoKey{Lat: int32(v >> 32), Lon: int32(uint32(v))}
}

func quantize(lat, lon float64) memoKey {
	return memoKey{
		Lat: int32(gomath.Floor(lat * memoQuantum)),
		Lon: int32(gomath.Floor(lon * memoQuantum)),
	}
}

const memoSnapshotPath = "terrain/memo.msgpack"

func NewStore(cfg Config, lg *log.Logger) (*Store, error) {
	if cfg.MaxTiles == 0 {
		cfg.MaxTiles = 16
	}
	if cfg.MemoEntries == 0 {
		cfg.MemoEntries = 8192
	}

	tiles, err := NewTileCache(cfg.DataDir, cfg.MaxTiles, lg)
	if err != nil {
		return nil, err
	}

	s := &Store{
		cfg:      cfg,
		tiles:    tiles,
		fallback: newFallbackModel(),
		lg:       lg,
	}

	if cfg.MemoEntries > 0 {
		s.memo = expirable.NewLRU[memoKey, float64](cfg.MemoEntries, nil, cfg.MemoTTL)
		if cfg.PersistMemo {
			s.loadMemoSnapshot()
		}
	}

	return s, nil
}

// ElevationAt returns the terrain elevation in feet MSL at the given
// position. Invalid coordinates answer sea level; missing tiles answer
// from the fallback model. This never fails.
func (s *Store) ElevationAt(lat, lon float64) float64 {
	if gomath.IsNaN(lat) || gomath.IsNaN(lon) ||
		lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		s.lg.Debug("invalid coordinate", "lat", lat, "lon", lon)
		return 0
	}

	key := quantize(lat, lon)
	if s.memo != nil {
		s.memoMu.Lock()
		elev, ok := s.memo.Get(key)
		s.memoMu.Unlock()
		if ok {
			return elev
		}
	}

	var meters float64
	coord := TileCoordinateFor(lat, lon)
	if t := s.lookupTile(coord); t != nil {
		meters = s.interpolate(t, lat, lon)
	} else {
		meters = s.fallback.Estimate(lat, lon)
	}

	elev := math.Clamp(meters*math.MetersToFeet,
		minPlausibleElevation, maxPlausibleElevation)

	if s.memo != nil {
		s.memoMu.Lock()
		s.memo.Add(key, elev)
		s.memoMu.Unlock()
	}
	return elev
}

// lookupTile fetches the tile owning coord; outside the dataset's latitude
// band it doesn't even probe the cache, so polar queries never count as
// misses or touch the disk.
func (s *Store) lookupTile(coord TileCoordinate) *Tile {
	if !coord.InCoverage() {
		return nil
	}
	return s.tiles.GetOrLoad(coord)
}

// interpolate maps the position to a fractional grid cell within t and
// samples bilinearly. Rows run north to south: row 0 is the north edge at
// latitude coord.Lat+1.
func (s *Store) interpolate(t *Tile, lat, lon float64) float64 {
	lon = math.NormalizeLongitude(lon)
	n := float64(t.Resolution() - 1)
	row := (float64(t.coord.Lat+1) - lat) * n
	col := (lon - float64(t.coord.Lon)) * n
	return bilinearSample(t, row, col)
}

// ElevationProfile returns samples+1 elevations (feet) evenly spaced from
// start to end inclusive. Positions are interpolated linearly in lat-long;
// over profile-length distances the difference from the geodesic is far
// below a tile cell.
func (s *Store) ElevationProfile(start, end math.Point2LL, samples int) []float64 {
	if samples < 1 {
		samples = 1
	}

	profile := make([]float64, samples+1)
	for i := range profile {
		p := math.Lerp2LL(float64(i)/float64(samples), start, end)
		profile[i] = s.ElevationAt(p.Latitude(), p.Longitude())
	}
	return profile
}

// TerrainStats summarizes the terrain within radiusNM of center by
// sampling a 5x5 grid across the bounding square and reducing. The
// fallback model guarantees every sample is valid.
func (s *Store) TerrainStats(center math.Point2LL, radiusNM float64) (min, max, avg float64) {
	const gridDim = 5

	dLat := radiusNM / math.NMPerLatitude
	dLon := radiusNM / gomath.Max(math.NMPerLongitudeAt(center.Latitude()), 1)

	min = gomath.Inf(1)
	max = gomath.Inf(-1)
	var sum float64
	for i := 0; i < gridDim; i++ {
		for j := 0; j < gridDim; j++ {
			lat := center.Latitude() + dLat*(2*float64(i)/(gridDim-1)-1)
			lon := center.Longitude() + dLon*(2*float64(j)/(gridDim-1)-1)
			elev := s.ElevationAt(lat, lon)
			min = gomath.Min(min, elev)
			max = gomath.Max(max, elev)
			sum += elev
		}
	}
	return min, max, sum / (gridDim * gridDim)
}

// steepSlopeAngle is the threshold (degrees) above which terrain is
// flagged as steep for approach planning.
const steepSlopeAngle = 15

// SlopeAngle estimates the local terrain slope at the given position from
// the four cardinal neighbors at a small fixed offset, returning the angle
// in degrees and whether it exceeds the steep threshold.
func (s *Store) SlopeAngle(lat, lon float64) (angle float64, isSteep bool) {
	const offset = 0.001 // degrees, about 110m north-south

	elevs := []float64{
		s.ElevationAt(lat+offset, lon),
		s.ElevationAt(lat-offset, lon),
		s.ElevationAt(lat, lon+offset),
		s.ElevationAt(lat, lon-offset),
	}
	rise := util.ReduceSlice(elevs, gomath.Max, gomath.Inf(-1)) -
		util.ReduceSlice(elevs, gomath.Min, gomath.Inf(1))

	// The direction of steepest rise is unknown, so use the shorter of
	// the two probe baselines as the run: the east-west one, which
	// shrinks with cos latitude. Erring steep is the right direction for
	// approach planning.
	runFeet := math.NMDistance2LL(
		math.Point2LL{lon - offset, lat},
		math.Point2LL{lon + offset, lat}) * math.NauticalMilesToFeet
	angle = math.Degrees(gomath.Atan2(rise, runFeet))
	return angle, angle > steepSlopeAngle
}

// MinimumSafeAltitude returns terrain elevation plus the given clearance,
// both in feet.
func (s *Store) MinimumSafeAltitude(lat, lon, clearanceFeet float64) float64 {
	return s.ElevationAt(lat, lon) + clearanceFeet
}

// IsWaterBody reports whether the position is probably over water; see
// FallbackModel.IsWaterBody for the (deliberately approximate) semantics.
func (s *Store) IsWaterBody(lat, lon float64) bool {
	return s.fallback.IsWaterBody(lat, lon)
}

// ClearCache drops all resident tiles and memoized points.
func (s *Store) ClearCache() {
	s.tiles.Clear()
	if s.memo != nil {
		s.memoMu.Lock()
		s.memo.Purge()
		s.memoMu.Unlock()
	}
}

// CacheStats returns cumulative tile cache hit and miss counts.
func (s *Store) CacheStats() (hits, misses int64) {
	return s.tiles.Stats()
}

func (s *Store) ResetCacheStats() {
	s.tiles.ResetStats()
}

// CacheMemoryEstimate returns the approximate bytes held by resident tiles
// and the memoization cache.
func (s *Store) CacheMemoryEstimate() int64 {
	total := s.tiles.MemoryEstimate()
	if s.memo != nil {
		s.memoMu.Lock()
		total += int64(s.memo.Len()) * 24 // key + value + map slot
		s.memoMu.Unlock()
	}
	return total
}

// SaveMemoSnapshot persists the memoization cache so the next run starts
// warm; a no-op unless the store was configured with PersistMemo.
func (s *Store) SaveMemoSnapshot() error {
	if s.memo == nil || !s.cfg.PersistMemo {
		return nil
	}

	snapshot := make(map[int64]float64)
	s.memoMu.Lock()
	for _, k := range s.memo.Keys() {
		if v, ok := s.memo.Peek(k); ok {
			snapshot[k.pack()] = v
		}
	}
	s.memoMu.Unlock()

	return util.CacheStoreObject(memoSnapshotPath, snapshot)
}

func (s *Store) loadMemoSnapshot() {
	var snapshot map[int64]float64
	mod, err := util.CacheRetrieveObject(memoSnapshotPath, &snapshot)
	if err != nil {
		s.lg.Debug("no memo snapshot", "error", err)
		return
	}
	if time.Since(mod) > 30*24*time.Hour {
		return // terrain doesn't change, but don't trust ancient caches
	}

	s.memoMu.Lock()
	for k, v := range snapshot {
		s.memo.Add(unpackMemoKey(k), v)
	}
	s.memoMu.Unlock()
	s.lg.Infof("restored %d memoized terrain points", len(snapshot))
}
