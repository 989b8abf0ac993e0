// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

import (
	"fmt"
	"time"
)

// FillDepressions is the plain priority-flood fill. Every depression is
// raised to its spill elevation; nothing is ever lowered. Filled and flat
// areas get a gradient of one increment per cell towards their outlet
// unless LeaveFlats is set. MaxDepth, MaxLength and FillSingleCellPits
// are ignored.
func FillDepressions(elev Elevations, opts Options) (*Result, error) {
	if err := checkGrid(elev); err != nil {
		return nil, err
	}
	opts.MaxDepth, opts.MaxLength = DefaultOptions().MaxDepth, DefaultOptions().MaxLength
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	inc := opts.FlatIncrement
	if opts.AutoIncrement {
		inc = AutoIncrement(elev, opts.CellSizeX, opts.CellSizeY)
	}

	f := newFlooder(elev, opts, inc)
	f.seed()
	f.fillFlood(!opts.LeaveFlats)

	res := f.result(opts, start)
	res.Metadata = append(res.Metadata,
		"Created by FillDepressions tool",
		fmt.Sprintf("Fix flats: %v", !opts.LeaveFlats),
		fmt.Sprintf("Flat increment: %v", inc),
		fmt.Sprintf("Elapsed Time: %v", res.Elapsed),
	)
	opts.logger().Debug("filling complete",
		"cells_raised", res.Stats.CellsRaised,
		"duration", res.Elapsed)
	return res, nil
}

func (f *flooder) fillFlood(fixFlats bool) {
	for {
		gc, ok := f.queue.Pop()
		if !ok {
			break
		}
		row, col := gc.Row, gc.Column
		zc := f.output.Value(row, col)
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
			switch {
			case fixFlats && zN <= zc:
				zN = zc + f.inc
				f.stats.CellsRaised++
			case zN < zc:
				zN = zc
				f.stats.CellsRaised++
			}
			f.output.SetValue(rowN, colN, zN)
			f.queue.Push(rowN, colN, zN)
		}
		f.progress("Filling DEM")
	}
}
