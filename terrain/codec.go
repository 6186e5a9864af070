// terrain/codec.go
// Copyright(c) 2024-2026 autoflight contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// The HGT format is as raw as it gets: no header, just N*N big-endian
// signed 16-bit elevations in meters, row-major starting at the tile's
// north-west corner. N is 1201 for SRTM3 tiles and 3601 for SRTM1 and is
// detected from the file size; nothing else distinguishes the two.

const (
	SRTM3Resolution = 1201
	SRTM1Resolution = 3601
)

// VoidElevation marks a grid post with no measured data.
const VoidElevation int16 = -32768

var ErrBadTileSize = errors.New("tile size matches neither SRTM1 nor SRTM3")

// DecodeTile interprets b as a raw elevation grid belonging to the given
// coordinate. The whole file is decoded at once; tiles top out around 26MB
// (SRTM1) so streaming isn't worth the complication.
func DecodeTile(coord TileCoordinate, b []byte) (*Tile, error) {
	var res int
	switch len(b) {
	case SRTM3Resolution * SRTM3Resolution * 2:
		res = SRTM3Resolution
	case SRTM1Resolution * SRTM1Resolution * 2:
		res = SRTM1Resolution
	default:
		return nil, fmt.Errorf("%d bytes: %w", len(b), ErrBadTileSize)
	}

	samples := make([]int16, res*res)
	voids := 0
	for i := range samples {
		samples[i] = int16(binary.BigEndian.Uint16(b[2*i:]))
		if samples[i] == VoidElevation {
			voids++
		}
	}

	return &Tile{
		coord:   coord,
		res:     res,
		samples: samples,
		voids:   voids,
		loaded:  true,
	}, nil
}

// EncodeTile is the inverse of DecodeTile; it exists for test fixtures and
// the elevquery -maketile tool rather than for anything on the query path.
func EncodeTile(t *Tile) []byte {
	b := make([]byte, 2*len(t.samples))
	for i, s := range t.samples {
		binary.BigEndian.PutUint16(b[2*i:], uint16(s))
	}
	return b
}

// readTileFile reads a tile file, transparently decompressing the
// zstd-compressed variants we keep datasets in at rest.
func readTileFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		return io.ReadAll(f)
	}

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// WriteTileFile encodes t and writes it to path, zstd-compressed if the
// path carries a ".zst" suffix.
func WriteTileFile(path string, t *Tile) error {
	b := EncodeTile(t)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if !strings.HasSuffix(path, ".zst") {
		_, err := f.Write(b)
		return err
	}

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if _, err := zw.Write(b); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
