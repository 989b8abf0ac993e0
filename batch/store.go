// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package batch

import (
	"context"
	"path/filepath"

	"github.com/jblindsay/whitebox-tools-sub008/geospatialfiles/raster"
	"github.com/jblindsay/whitebox-tools-sub008/hydro"
)

// RasterStore reads and writes tiles as raster files. Relative names are
// resolved against Dir.
type RasterStore struct {
	Dir string
}

func (s RasterStore) path(name string) string {
	if s.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.Dir, name)
}

func (s RasterStore) Load(_ context.Context, name string) (*Tile, error) {
	arr, r, err := raster.ReadArray(s.path(name))
	if err != nil {
		return nil, err
	}
	return &Tile{
		Elevations: arr,
		CellSizeX:  r.GetCellSizeX(),
		CellSizeY:  r.GetCellSizeY(),
		Source:     r,
		Precision:  PrecisionOf(r),
	}, nil
}

// PrecisionOf reports the precision a raster's values are stored at.
// Anything narrower than a 64-bit float is narrow.
func PrecisionOf(r *raster.Raster) hydro.Precision {
	if r.GetRasterConfig().DataType == raster.DT_FLOAT64 {
		return hydro.PrecisionWide
	}
	return hydro.PrecisionNarrow
}

// Save writes narrow tiles as 32-bit floats and wide tiles as 64-bit.
// A name without a recognised extension is written as a Whitebox raster.
func (s RasterStore) Save(_ context.Context, name string, tile *Tile) error {
	fileName := s.path(name)
	if !raster.IsSupportedRasterFileExtension(fileName) {
		fileName += ".dep"
	}
	dataType := raster.DT_FLOAT64
	if tile.Precision == hydro.PrecisionNarrow {
		dataType = raster.DT_FLOAT32
	}
	like, _ := tile.Source.(*raster.Raster)
	_, err := raster.WriteArray(fileName, tile.Elevations, like, dataType, tile.Metadata...)
	return err
}
