// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package hydro

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/jblindsay/whitebox-tools-sub008/structures"
)

// Elevations is the read-only view of a DEM that the engine consumes.
// Value must return the nodata value for coordinates outside the grid.
// *structures.RectangularArrayFloat64 satisfies it.
type Elevations interface {
	GetRows() int
	GetColumns() int
	GetNodata() float64
	Value(row, column int) float64
}

// NoFlow marks a cell without a flow direction: an outlet, a nodata cell
// or a cell the flood has not reached.
const NoFlow int8 = -1

// D8 neighbour offsets, clockwise from the north-east.
var (
	dX = [8]int{1, 1, 1, 0, -1, -1, -1, 0}
	dY = [8]int{-1, 0, 1, 1, 1, 0, -1, -1}
)

// Offset returns the row and column offsets of a D8 direction code.
func Offset(dir int8) (dRow, dCol int) {
	if dir < 0 || dir > 7 {
		return 0, 0
	}
	return dY[dir], dX[dir]
}

// backLink returns the direction pointing from neighbour i back to the
// cell that discovered it.
func backLink(i int) int8 {
	return int8((i + 4) % 8)
}

// cellState replaces a numeric "not yet visited" sentinel.
type cellState uint8

const (
	unvisited cellState = iota
	nodataCell
	validCell
)

// flooder holds everything one priority-flood run owns. It is never
// shared between goroutines.
type flooder struct {
	rows, columns int
	input         Elevations
	nodata        float64

	// work holds the elevations the flood discovers cells at; it starts as
	// a copy of input and only diverges where pits are preprocessed.
	work    []float64
	state   []cellState
	output  *structures.RectangularArrayFloat64
	flowdir *structures.RectangularArrayInt8
	queue   *structures.CellQueue

	inc        float64
	flatSlope  float64
	maxDepth   float64
	maxLength  float64
	constrain  bool
	order      []int
	needsFill  bool
	stats      Stats
	logger     *log.Logger
	solved     int
	total      int
	oldPercent int
}

func newFlooder(elev Elevations, opts Options, inc float64) *flooder {
	rows, columns := elev.GetRows(), elev.GetColumns()
	n := rows * columns
	f := &flooder{
		rows:       rows,
		columns:    columns,
		input:      elev,
		nodata:     elev.GetNodata(),
		work:       make([]float64, n),
		state:      make([]cellState, n),
		output:     structures.NewRectangularArrayFloat64(rows, columns, elev.GetNodata()),
		flowdir:    structures.NewRectangularArrayInt8(rows, columns, NoFlow),
		queue:      structures.NewCellQueue(2 * (rows + columns)),
		inc:        inc,
		maxDepth:   opts.MaxDepth,
		maxLength:  opts.MaxLength,
		constrain:  opts.Constrained(),
		logger:     opts.logger(),
		total:      n,
		oldPercent: -1,
	}
	if !opts.LeaveFlats {
		f.flatSlope = inc
	}
	f.flowdir.InitializeWithConstant(NoFlow)
	for row := 0; row < rows; row++ {
		for col := 0; col < columns; col++ {
			f.work[row*columns+col] = elev.Value(row, col)
		}
	}
	return f
}

// isNodata treats NaN as nodata whatever the grid's nodata value is.
func (f *flooder) isNodata(z float64) bool {
	return math.IsNaN(z) || z == f.nodata
}

func (f *flooder) inGrid(row, col int) bool {
	return row >= 0 && row < f.rows && col >= 0 && col < f.columns
}

func (f *flooder) progress(label string) {
	f.solved++
	percent := int(100.0 * float64(f.solved) / float64(f.total))
	if percent != f.oldPercent {
		f.logger.Debugf("%s: %v%%", label, percent)
		f.oldPercent = percent
	}
}
