// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

import "github.com/jblindsay/whitebox-tools-sub008/structures"

// seed marks the confirmed outlets. The walk starts on a virtual ring one
// cell beyond the grid, so grid-edge cells are found the same way as cells
// bordering nodata, then grows through every contiguous nodata region.
// Interior nodata holes that do not touch the edge are grown afterwards,
// which makes the cells around them outlets too rather than pits.
func (f *flooder) seed() {
	fifo := structures.NewCellFIFO()
	for col := -1; col <= f.columns; col++ {
		fifo.Push(-1, col)
		fifo.Push(f.rows, col)
	}
	for row := 0; row < f.rows; row++ {
		fifo.Push(row, -1)
		fifo.Push(row, f.columns)
	}
	f.grow(fifo)

	for row := 0; row < f.rows; row++ {
		for col := 0; col < f.columns; col++ {
			idx := row*f.columns + col
			if f.state[idx] == unvisited && f.isNodata(f.work[idx]) {
				f.markNodata(row, col)
				fifo.Push(row, col)
				f.grow(fifo)
			}
		}
	}
}

// grow drains the worklist. Every position in it is nodata (or off-grid);
// nodata neighbours are consumed and queued, valid neighbours become
// outlets and enter the priority queue at their own elevation.
func (f *flooder) grow(fifo *structures.CellFIFO) {
	for fifo.Len() > 0 {
		row, col, _ := fifo.Pop()
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
			if f.isNodata(zN) {
				f.markNodata(rowN, colN)
				fifo.Push(rowN, colN)
				continue
			}
			f.state[idx] = validCell
			f.output.SetValue(rowN, colN, zN)
			f.queue.Push(rowN, colN, zN)
			f.stats.Outlets++
		}
	}
}

func (f *flooder) markNodata(row, col int) {
	f.state[row*f.columns+col] = nodataCell
	f.output.SetValue(row, col, f.nodata)
	f.stats.NodataCells++
	f.progress("Seeding")
}
