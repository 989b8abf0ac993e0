// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// This file was originally created by John Lindsay<jlindsay@uoguelph.ca>,
// March. 2015.

// Package structures holds the grid and queue types shared by the
// hydrological tools.
package structures

import (
	"errors"
	"math"
)

var ArrayLengthError = errors.New("incorrect array length: the data array must have rows * columns elements")
var ArrayDimensionsError = errors.New("rows and columns must both be greater than zero")

// Create2dStringArray allocates a 2d string array backed by a single
// slice so that the allocation is localized in memory.
func Create2dStringArray(rows, columns int) [][]string {
	a := make([][]string, rows)
	e := make([]string, rows*columns)
	for i := range a {
		a[i] = e[i*columns : (i+1)*columns]
	}
	return a
}

// A rectangular shaped array (matrix) of float64 type, stored row-major.
// Reads outside of the matrix return the nodata value, which lets
// neighbourhood operations treat the area beyond the grid edge exactly
// like an interior nodata cell. The array is not safe for concurrent writes.
type RectangularArrayFloat64 struct {
	data          []float64
	rows, columns int
	nodata        float64
}

func NewRectangularArrayFloat64(rows, columns int, nodata float64) *RectangularArrayFloat64 {
	r := RectangularArrayFloat64{rows: rows, columns: columns, nodata: nodata}
	if rows > 0 && columns > 0 {
		r.data = make([]float64, rows*columns)
	}
	return &r
}

// NewRectangularArrayFloat64FromRows builds an array from a slice of rows.
// Every row must have the same length.
func NewRectangularArrayFloat64FromRows(values [][]float64, nodata float64) (*RectangularArrayFloat64, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, ArrayDimensionsError
	}
	rows, columns := len(values), len(values[0])
	r := NewRectangularArrayFloat64(rows, columns, nodata)
	for row, v := range values {
		if len(v) != columns {
			return nil, ArrayLengthError
		}
		copy(r.data[row*columns:(row+1)*columns], v)
	}
	return r, nil
}

// Returns the number of rows
func (r *RectangularArrayFloat64) GetRows() int {
	return r.rows
}

// Returns the number of columns
func (r *RectangularArrayFloat64) GetColumns() int {
	return r.columns
}

// Returns the nodata value
func (r *RectangularArrayFloat64) GetNodata() float64 {
	return r.nodata
}

// Sets the nodata value
func (r *RectangularArrayFloat64) SetNodata(value float64) {
	r.nodata = value
}

// IsNodata reports whether value equals the nodata value. A NaN nodata
// value matches any NaN.
func (r *RectangularArrayFloat64) IsNodata(value float64) bool {
	if math.IsNaN(r.nodata) {
		return math.IsNaN(value)
	}
	return value == r.nodata
}

// InBounds reports whether (row, column) lies inside the matrix.
func (r *RectangularArrayFloat64) InBounds(row, column int) bool {
	return column >= 0 && column < r.columns && row >= 0 && row < r.rows
}

// Retrives an individual cell value in the matrix.
func (r *RectangularArrayFloat64) Value(row, column int) float64 {
	if column >= 0 && column < r.columns && row >= 0 && row < r.rows {
		return r.data[row*r.columns+column]
	}
	return r.nodata
}

// Sets an individual cell value in the matrix. Writes outside of the
// matrix are ignored.
func (r *RectangularArrayFloat64) SetValue(row, column int, value float64) {
	if column >= 0 && column < r.columns && row >= 0 && row < r.rows {
		r.data[row*r.columns+column] = value
	}
}

// Returns a copy of an entire row of values.
func (r *RectangularArrayFloat64) GetRowData(row int) []float64 {
	values := make([]float64, r.columns)
	if row >= 0 && row < r.rows {
		copy(values, r.data[row*r.columns:(row+1)*r.columns])
	}
	return values
}

// Initializes all cells with a constant value.
func (r *RectangularArrayFloat64) InitializeWithConstant(value float64) {
	for i := range r.data {
		r.data[i] = value
	}
}

// Sets the data based on an existing array. The array is not copied.
func (r *RectangularArrayFloat64) InitializeWithData(values []float64) error {
	if len(values) != r.rows*r.columns {
		return ArrayLengthError
	}
	r.data = values
	return nil
}

// Data returns the backing row-major slice.
func (r *RectangularArrayFloat64) Data() []float64 {
	return r.data
}

// Clone returns a deep copy of the array.
func (r *RectangularArrayFloat64) Clone() *RectangularArrayFloat64 {
	c := NewRectangularArrayFloat64(r.rows, r.columns, r.nodata)
	copy(c.data, r.data)
	return c
}

// MinMax returns the smallest and largest non-nodata values. When every
// cell is nodata, min is +Inf and max is -Inf.
func (r *RectangularArrayFloat64) MinMax() (minVal, maxVal float64) {
	minVal, maxVal = math.Inf(1), math.Inf(-1)
	for _, v := range r.data {
		if r.IsNodata(v) {
			continue
		}
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// A rectangular shaped array (matrix) of int8 type. It is used for D8
// flow-direction codes, where a small signed integer per cell is enough.
type RectangularArrayInt8 struct {
	data          []int8
	rows, columns int
	nodata        int8
}

func NewRectangularArrayInt8(rows, columns int, nodata int8) *RectangularArrayInt8 {
	r := RectangularArrayInt8{rows: rows, columns: columns, nodata: nodata}
	if rows > 0 && columns > 0 {
		r.data = make([]int8, rows*columns)
	}
	return &r
}

// Returns the number of rows
func (r *RectangularArrayInt8) GetRows() int {
	return r.rows
}

// Returns the number of columns
func (r *RectangularArrayInt8) GetColumns() int {
	return r.columns
}

// Retrives an individual cell value; cells outside the matrix return nodata.
func (r *RectangularArrayInt8) Value(row, column int) int8 {
	if column >= 0 && column < r.columns && row >= 0 && row < r.rows {
		return r.data[row*r.columns+column]
	}
	return r.nodata
}

// Sets an individual cell value in the matrix.
func (r *RectangularArrayInt8) SetValue(row, column int, value int8) {
	if column >= 0 && column < r.columns && row >= 0 && row < r.rows {
		r.data[row*r.columns+column] = value
	}
}

// Initializes all cells with a constant value.
func (r *RectangularArrayInt8) InitializeWithConstant(value int8) {
	for i := range r.data {
		r.data[i] = value
	}
}
