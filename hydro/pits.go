// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

import "math"

// raiseSinglePits lifts every single-cell pit to one increment below its
// lowest neighbour. Only cells with eight valid neighbours are considered; anything
// touching nodata or the grid edge becomes an outlet anyway.
func (f *flooder) raiseSinglePits() {
	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.columns; col++ {
			z := f.input.Value(row, col)
			if f.isNodata(z) {
				continue
			}
			isPit := true
			lowestNeighbour := math.Inf(1)
			for n := 0; n < 8; n++ {
				zN := f.input.Value(row+dY[n], col+dX[n])
				if f.isNodata(zN) || zN <= z {
					isPit = false
					break
				}
				if zN < lowestNeighbour {
					lowestNeighbour = zN
				}
			}
			if isPit {
				f.work[row*f.columns+col] = lowestNeighbour - f.inc
				f.stats.PitsRaised++
			}
		}
	}
}
