// cmd/elevquery/main.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// elevquery is a command-line front end for the terrain subsystem: point,
// profile, area and slope queries against a tile dataset, plus synthetic
// tile generation for test scenarios.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/avsim/autoflight/log"
	"github.com/avsim/autoflight/math"
	"github.com/avsim/autoflight/terrain"
)

var (
	dataDir  = flag.String("datadir", "", "Directory holding .hgt / .hgt.zst tile files")
	maxTiles = flag.Int("maxtiles", 16, "Maximum resident tiles")
	logLevel = flag.String("loglevel", "info", "Log level: debug, info, warn, error")

	point    = flag.String("point", "", "Point query: lat,lon")
	profile  = flag.String("profile", "", "Profile query: lat,lon,lat,lon")
	samples  = flag.Int("samples", 10, "Profile sample segments")
	area     = flag.String("area", "", "Area stats query: lat,lon,radius_nm")
	slope    = flag.String("slope", "", "Slope query: lat,lon")
	msa      = flag.Float64("msa", 0, "With -point, also print MSA with this clearance (ft)")
	water    = flag.Bool("water", false, "With -point, also print water-body estimate")
	prefetch = flag.String("prefetch", "", "Prefetch tiles: swlat,swlon,nelat,nelon")

	makeTile = flag.String("maketile", "", "Write a uniform synthetic tile: name:elev_m[:res]")
	zstOut   = flag.Bool("zst", false, "With -maketile, write zstd-compressed")
)

func main() {
	flag.Parse()

	lg := log.New(*logLevel, "")
	defer lg.CatchAndReportCrash()

	if *makeTile != "" {
		if err := runMakeTile(*makeTile, *zstOut); err != nil {
			fmt.Fprintf(os.Stderr, "elevquery: %v\n", err)
			os.Exit(1)
		}
		return
	}

	store, err := terrain.NewStore(terrain.Config{
		DataDir:  *dataDir,
		MaxTiles: *maxTiles,
	}, lg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "elevquery: %v\n", err)
		os.Exit(1)
	}

	ran := false
	if *prefetch != "" {
		f, err := parseFloats(*prefetch, 4)
		if err != nil {
			fmt.Fprintf(os.Stderr, "elevquery: -prefetch: %v\n", err)
			os.Exit(1)
		}
		n := store.Prefetch(context.Background(),
			math.Point2LL{f[1], f[0]}, math.Point2LL{f[3], f[2]})
		fmt.Printf("prefetched %d tiles\n", n)
		ran = true
	}

	if *point != "" {
		f, err := parseFloats(*point, 2)
		if err != nil {
			fmt.Fprintf(os.Stderr, "elevquery: -point: %v\n", err)
			os.Exit(1)
		}
		lat, lon := f[0], f[1]
		fmt.Printf("elevation: %.1f ft\n", store.ElevationAt(lat, lon))
		if *msa > 0 {
			fmt.Printf("MSA (+%.0f ft): %.1f ft\n", *msa, store.MinimumSafeAltitude(lat, lon, *msa))
		}
		if *water {
			fmt.Printf("water body: %v\n", store.IsWaterBody(lat, lon))
		}
		ran = true
	}

	if *profile != "" {
		f, err := parseFloats(*profile, 4)
		if err != nil {
			fmt.Fprintf(os.Stderr, "elevquery: -profile: %v\n", err)
			os.Exit(1)
		}
		elevs := store.ElevationProfile(
			math.Point2LL{f[1], f[0]}, math.Point2LL{f[3], f[2]}, *samples)
		for i, e := range elevs {
			fmt.Printf("%3d: %8.1f ft\n", i, e)
		}
		ran = true
	}

	if *area != "" {
		f, err := parseFloats(*area, 3)
		if err != nil {
			fmt.Fprintf(os.Stderr, "elevquery: -area: %v\n", err)
			os.Exit(1)
		}
		min, max, avg := store.TerrainStats(math.Point2LL{f[1], f[0]}, f[2])
		fmt.Printf("min %.1f ft, max %.1f ft, avg %.1f ft\n", min, max, avg)
		ran = true
	}

	if *slope != "" {
		f, err := parseFloats(*slope, 2)
		if err != nil {
			fmt.Fprintf(os.Stderr, "elevquery: -slope: %v\n", err)
			os.Exit(1)
		}
		angle, steep := store.SlopeAngle(f[0], f[1])
		fmt.Printf("slope %.1f degrees, steep: %v\n", angle, steep)
		ran = true
	}

	if !ran {
		flag.Usage()
		os.Exit(1)
	}

	hits, misses := store.CacheStats()
	lg.Infof("tile cache: %d hits, %d misses, ~%d bytes resident",
		hits, misses, store.CacheMemoryEstimate())
}

// runMakeTile writes a uniform synthetic tile, e.g. "N37W123:13" for a
// 13m SRTM3 tile or "N37W123:13:3601" for the SRTM1 variant.
func runMakeTile(spec string, compressed bool) error {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return fmt.Errorf("%s: malformed -maketile spec", spec)
	}

	coord, ok := terrain.ParseTileFilename(parts[0] + ".hgt")
	if !ok {
		return fmt.Errorf("%s: malformed tile name", parts[0])
	}
	elev, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("%s: bad elevation: %v", parts[1], err)
	}

	res := terrain.SRTM3Resolution
	if len(parts) == 3 {
		if res, err = strconv.Atoi(parts[2]); err != nil {
			return fmt.Errorf("%s: bad resolution: %v", parts[2], err)
		}
		if res != terrain.SRTM3Resolution && res != terrain.SRTM1Resolution {
			return fmt.Errorf("%d: resolution must be %d or %d",
				res, terrain.SRTM3Resolution, terrain.SRTM1Resolution)
		}
	}

	name := coord.Filename()
	if compressed {
		name += ".zst"
	}
	tile := terrain.NewUniformTile(coord, res, int16(elev))
	if err := terrain.WriteTileFile(name, tile); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", name)
	return nil
}

// parseFloats splits a comma-separated flag value into exactly n floats.
func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated values, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}
