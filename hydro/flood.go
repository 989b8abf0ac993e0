// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

// breachFlood drains the priority queue. Each newly discovered neighbour
// gets a back-link to the popped cell and enters the queue at its own
// elevation. A neighbour lower than the popped cell is a pit, and one less
// than an increment above it sits on a flat; both get a channel carved
// back along the back-links to lower ground.
func (f *flooder) breachFlood() {
	if f.constrain {
		f.order = make([]int, 0, f.total-f.stats.NodataCells)
	}
	for {
		gc, ok := f.queue.Pop()
		if !ok {
			break
		}
		row, col := gc.Row, gc.Column
		if f.constrain {
			f.order = append(f.order, row*f.columns+col)
		}
		for i := 0; i < 8; i++ {
			rowN, colN := row+dY[i], col+dX[i]
			if !f.inGrid(rowN, colN) {
				continue
			}
			idx := rowN*f.columns + colN
			if f.state[idx] != unvisited {
				continue
			}
			zN := f.work[idx]
			f.state[idx] = validCell
			f.flowdir.SetValue(rowN, colN, backLink(i))
			f.output.SetValue(rowN, colN, zN)

			// the popped cell may already have been lowered by a sibling's breach
			zc := f.output.Value(row, col)
			switch {
			case zN < zc:
				f.resolvePit(rowN, colN, zN)
			case zN < zc+f.flatSlope:
				f.resolveFlat(rowN, colN, zN)
			}
			f.queue.Push(rowN, colN, zN)
		}
		f.progress("Breaching DEM")
	}
}

// resolvePit breaches the pit at (row, col), or in constrained mode
// leaves it for the fallback fill when the channel would be too deep or
// too long.
func (f *flooder) resolvePit(row, col int, z float64) {
	if !f.constrain {
		f.carve(row, col, z)
		f.stats.PitsBreached++
		return
	}
	if depth, length, ok := f.measure(row, col, z); ok {
		f.carve(row, col, z)
		f.stats.PitsBreached++
		f.stats.observeChannel(depth, length)
		return
	}
	f.needsFill = true
	f.stats.PitsUnresolved++
}

// resolveFlat drains a flat cell one increment below (row, col). A flat
// whose channel is out of bounds is left level and does not force the
// fallback fill.
func (f *flooder) resolveFlat(row, col int, z float64) {
	if f.constrain {
		depth, length, ok := f.measure(row, col, z)
		if !ok {
			return
		}
		f.stats.observeChannel(depth, length)
	}
	f.carve(row, col, z)
	f.stats.FlatsDrained++
}
