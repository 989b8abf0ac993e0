// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// Package hydro removes topographic depressions from DEMs with a
// priority-flood that breaches pits by carving minimal descending
// channels, falling back to filling where a channel would be too deep or
// too long.
//
// After BreachOrFill every valid cell has a non-ascending path, along its
// flow direction, to the grid edge or to a cell bordering nodata.
package hydro

import (
	"fmt"
	"time"

	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

// Stats summarises one run.
type Stats struct {
	ValidCells  int
	NodataCells int
	// Outlets counts grid-edge cells and cells bordering nodata.
	Outlets int
	// PitsRaised counts single-cell pits lifted before the flood.
	PitsRaised int
	// PitsBreached counts pits drained by a carved channel.
	PitsBreached int
	// PitsUnresolved counts pits whose channel exceeded the constraints.
	PitsUnresolved int
	// FlatsDrained counts flat cells given a channel one increment down.
	FlatsDrained int
	CellsLowered   int
	CellsRaised    int
	// Deepest and longest accepted channels; measured in constrained mode only.
	MaxChannelDepth  float64
	MaxChannelLength float64
}

func (s *Stats) observeChannel(depth, length float64) {
	if depth > s.MaxChannelDepth {
		s.MaxChannelDepth = depth
	}
	if length > s.MaxChannelLength {
		s.MaxChannelLength = length
	}
}

// Result is the outcome of a correction run. Corrected is a fresh grid;
// the input is never modified.
type Result struct {
	Corrected *structures.RectangularArrayFloat64
	// FlowDir holds the D8 back-link of every cell, NoFlow for outlets and nodata.
	FlowDir *structures.RectangularArrayInt8
	// UsedFallbackFill is true when some pits were filled rather than breached.
	UsedFallbackFill bool
	Increment        float64
	Precision        Precision
	Stats            Stats
	Elapsed          time.Duration
	// Metadata holds provenance lines for the output raster.
	Metadata []string
}

// BreachOrFill corrects elev so that every valid cell drains to the grid
// edge or to nodata. With both constraints at +Inf every pit is breached.
// Otherwise pits needing a deeper or longer channel than allowed are left
// in place during the flood and raised afterwards by the fallback fill.
func BreachOrFill(elev Elevations, opts Options) (*Result, error) {
	if err := checkGrid(elev); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	inc := opts.FlatIncrement
	if opts.AutoIncrement {
		inc = AutoIncrement(elev, opts.CellSizeX, opts.CellSizeY)
	}

	f := newFlooder(elev, opts, inc)
	if opts.FillSingleCellPits {
		f.raiseSinglePits()
	}
	f.seed()
	f.breachFlood()
	if f.needsFill {
		f.fallbackFill()
	}

	res := f.result(opts, start)
	res.UsedFallbackFill = f.needsFill
	res.Metadata = append(res.Metadata,
		"Created by BreachDepressions tool",
		fmt.Sprintf("Max breach depth: %v", opts.MaxDepth),
		fmt.Sprintf("Max breach length: %v", opts.MaxLength),
		fmt.Sprintf("Flat increment: %v", inc),
		fmt.Sprintf("Single-cell pits filled: %v", opts.FillSingleCellPits),
		fmt.Sprintf("Flats left level: %v", opts.LeaveFlats),
		fmt.Sprintf("Fallback filling used: %v", f.needsFill),
		fmt.Sprintf("Elapsed Time: %v", res.Elapsed),
	)

	l := opts.logger()
	l.Debug("breaching complete",
		"pits_breached", res.Stats.PitsBreached,
		"pits_unresolved", res.Stats.PitsUnresolved,
		"pits_raised", res.Stats.PitsRaised,
		"flats_drained", res.Stats.FlatsDrained,
		"increment", inc,
		"duration", res.Elapsed)
	if res.UsedFallbackFill {
		l.Warn("some depressions could not be breached within the constraints and were filled",
			"unresolved", res.Stats.PitsUnresolved)
	}
	return res, nil
}

func checkGrid(elev Elevations) error {
	if elev == nil {
		return ErrNilGrid
	}
	if elev.GetRows() <= 0 || elev.GetColumns() <= 0 {
		return fmt.Errorf("%dx%d: %w", elev.GetRows(), elev.GetColumns(), ErrEmptyGrid)
	}
	return nil
}

func (f *flooder) result(opts Options, start time.Time) *Result {
	f.stats.ValidCells = f.total - f.stats.NodataCells
	if opts.Precision == PrecisionNarrow {
		data := f.output.Data()
		for i, z := range data {
			if f.state[i] == validCell {
				data[i] = float64(float32(z))
			}
		}
	}
	return &Result{
		Corrected: f.output,
		FlowDir:   f.flowdir,
		Increment: f.inc,
		Precision: opts.Precision,
		Stats:     f.stats,
		Elapsed:   time.Since(start),
	}
}
