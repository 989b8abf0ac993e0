// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

import (
	"math"
	"strconv"
)

// AutoIncrement derives a flat increment from the DEM: the ceiling of the
// cell diagonal divided by 10^(9 - d), where d is the number of digits in
// the integer part of the elevation range. A 1 m grid with 100-999 m of
// relief gets 2e-6. The value stays well above float64 cancellation over
// any realistic channel length but below the resolution of the input.
func AutoIncrement(elev Elevations, cellSizeX, cellSizeY float64) float64 {
	nodata := elev.GetNodata()
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for row := 0; row < elev.GetRows(); row++ {
		for col := 0; col < elev.GetColumns(); col++ {
			z := elev.Value(row, col)
			if z == nodata || math.IsNaN(z) {
				continue
			}
			if z < minVal {
				minVal = z
			}
			if z > maxVal {
				maxVal = z
			}
		}
	}
	elevRange := 0.0
	if maxVal >= minVal {
		elevRange = maxVal - minVal
	}
	elevDigits := len(strconv.Itoa(int(elevRange)))
	diagonal := math.Ceil(math.Hypot(cellSizeX, cellSizeY))
	if diagonal < 1 {
		diagonal = 1
	}
	return diagonal / math.Pow(10, float64(9-elevDigits))
}
