// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

// carve walks the flow path downstream of (row, col), lowering each cell
// to a target that drops by one increment per step. It stops at the first
// cell already at or below the target, or after lowering an outlet.
func (f *flooder) carve(row, col int, z float64) {
	zTest := z
	r, c := row, col
	for {
		dir := f.flowdir.Value(r, c)
		if dir == NoFlow {
			return
		}
		r += dY[dir]
		c += dX[dir]
		zTest -= f.inc
		if f.output.Value(r, c) <= zTest {
			return
		}
		f.output.SetValue(r, c, zTest)
		f.stats.CellsLowered++
	}
}

// measure dry-runs carve. It returns the deepest cut below the original
// surface and the number of cells the walk visits, including the cell it
// stops at, and reports whether both are within the configured maxima.
// The walk gives up as soon as either bound is exceeded.
func (f *flooder) measure(row, col int, z float64) (depth, length float64, ok bool) {
	zTest := z
	r, c := row, col
	for {
		dir := f.flowdir.Value(r, c)
		if dir == NoFlow {
			return depth, length, true
		}
		r += dY[dir]
		c += dX[dir]
		zTest -= f.inc
		length++
		if f.output.Value(r, c) <= zTest {
			return depth, length, length <= f.maxLength
		}
		if breachDepth := f.input.Value(r, c) - zTest; breachDepth > depth {
			depth = breachDepth
		}
		if length > f.maxLength || depth > f.maxDepth {
			return depth, length, false
		}
	}
}
