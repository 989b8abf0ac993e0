// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

// fallbackFill replays the flood order. A cell is always popped after the
// cell it drains into, so one pass from the outlets upstream settles every
// cell: anything not at least one increment above its downstream
// neighbour is raised to exactly that height.
func (f *flooder) fallbackFill() {
	f.solved, f.oldPercent = 0, -1
	total := f.total
	f.total = len(f.order)
	for _, idx := range f.order {
		row, col := idx/f.columns, idx%f.columns
		dir := f.flowdir.Value(row, col)
		if dir != NoFlow {
			zDown := f.output.Value(row+dY[dir], col+dX[dir])
			if f.output.Value(row, col) < zDown+f.inc {
				f.output.SetValue(row, col, zDown+f.inc)
				f.stats.CellsRaised++
			}
		}
		f.progress("Filling DEM")
	}
	f.total = total
	f.order = nil
}
