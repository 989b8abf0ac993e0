// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

import "errors"

var (
	// ErrNilGrid is returned when no elevation grid is supplied.
	ErrNilGrid = errors.New("hydro: elevation grid is nil")
	// ErrEmptyGrid is returned for a grid with zero rows or columns.
	ErrEmptyGrid = errors.New("hydro: elevation grid must have at least one row and one column")
	// ErrInvalidIncrement is returned for a zero, negative or non-finite flat increment.
	ErrInvalidIncrement = errors.New("hydro: flat increment must be a positive finite number")
	// ErrInvalidConstraint is returned for a max depth or length that is not positive.
	ErrInvalidConstraint = errors.New("hydro: breach constraints must be positive")
	// ErrNarrowAutoIncrement is returned when an automatic increment is combined with narrow output.
	ErrNarrowAutoIncrement = errors.New("hydro: an automatic flat increment requires wide precision output")
	// ErrInvalidPrecision is returned for an unknown precision.
	ErrInvalidPrecision = errors.New("hydro: unknown output precision")
	// ErrInvalidCellSize is returned when a cell dimension is not positive.
	ErrInvalidCellSize = errors.New("hydro: cell size must be positive")
)
