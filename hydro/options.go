// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
)

// Precision selects the numeric precision of the corrected surface.
type Precision int

const (
	// PrecisionWide keeps every corrected value as a float64.
	PrecisionWide Precision = iota
	// PrecisionNarrow rounds every corrected value through float32, which
	// matches the common single-precision DEM encodings.
	PrecisionNarrow
)

func (p Precision) String() string {
	switch p {
	case PrecisionWide:
		return "wide"
	case PrecisionNarrow:
		return "narrow"
	}
	return fmt.Sprintf("Precision(%d)", int(p))
}

// ParsePrecision accepts "wide"/"float64" and "narrow"/"float32".
func ParsePrecision(s string) (Precision, error) {
	switch s {
	case "wide", "float64", "double", "":
		return PrecisionWide, nil
	case "narrow", "float32", "float":
		return PrecisionNarrow, nil
	}
	return PrecisionWide, fmt.Errorf("unknown precision %q: %w", s, ErrInvalidPrecision)
}

// Options configures BreachOrFill and FillDepressions. Start from
// DefaultOptions; the zero value is not valid.
type Options struct {
	// MaxDepth is the deepest channel, in z units, that a breach may cut.
	// +Inf leaves depth unconstrained.
	MaxDepth float64
	// MaxLength is the longest channel, in grid cells, that a breach may
	// cut. +Inf leaves length unconstrained.
	MaxLength float64

	// AutoIncrement derives the flat increment from the elevation range
	// and cell size. It requires PrecisionWide.
	AutoIncrement bool
	// FlatIncrement is the explicit increment used when AutoIncrement is
	// false. It must be positive.
	FlatIncrement float64

	// CellSizeX and CellSizeY feed the automatic increment.
	CellSizeX float64
	CellSizeY float64

	// FillSingleCellPits raises one-cell pits to just below their lowest
	// neighbour before the flood runs.
	FillSingleCellPits bool

	// LeaveFlats keeps flat areas level. By default a neighbour less than
	// one increment above the cell that discovers it is drained like a pit,
	// so every flow path descends by at least one increment per cell.
	LeaveFlats bool

	Precision Precision

	// Logger receives progress at debug level. nil means log.Default().
	Logger *log.Logger
}

// DefaultOptions returns unconstrained breaching with an automatic
// increment and wide output.
func DefaultOptions() Options {
	return Options{
		MaxDepth:      math.Inf(1),
		MaxLength:     math.Inf(1),
		AutoIncrement: true,
		CellSizeX:     1,
		CellSizeY:     1,
		Precision:     PrecisionWide,
	}
}

// Constrained reports whether either breach bound is finite.
func (o Options) Constrained() bool {
	return !math.IsInf(o.MaxDepth, 1) || !math.IsInf(o.MaxLength, 1)
}

// Validate checks the options before any traversal starts.
func (o Options) Validate() error {
	if math.IsNaN(o.MaxDepth) || o.MaxDepth <= 0 {
		return fmt.Errorf("max depth %v must be positive or +Inf: %w", o.MaxDepth, ErrInvalidConstraint)
	}
	if math.IsNaN(o.MaxLength) || o.MaxLength <= 0 {
		return fmt.Errorf("max length %v must be positive or +Inf: %w", o.MaxLength, ErrInvalidConstraint)
	}
	if !o.AutoIncrement {
		if math.IsNaN(o.FlatIncrement) || math.IsInf(o.FlatIncrement, 0) || o.FlatIncrement <= 0 {
			return fmt.Errorf("flat increment %v: %w", o.FlatIncrement, ErrInvalidIncrement)
		}
	}
	if o.AutoIncrement && o.Precision != PrecisionWide {
		return ErrNarrowAutoIncrement
	}
	if o.Precision != PrecisionWide && o.Precision != PrecisionNarrow {
		return fmt.Errorf("%v: %w", o.Precision, ErrInvalidPrecision)
	}
	if !(o.CellSizeX > 0) || !(o.CellSizeY > 0) {
		return fmt.Errorf("cell size %vx%v: %w", o.CellSizeX, o.CellSizeY, ErrInvalidCellSize)
	}
	return nil
}

func (o Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.Default()
	}
	return o.Logger
}
