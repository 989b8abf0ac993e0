// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

package structures

// CellFIFO is a first in, first out worklist of grid positions. It backs
// region-growing walks, which must not recurse on large regions.
type CellFIFO struct {
	rows    []int
	columns []int
	head    int
}

func NewCellFIFO() *CellFIFO {
	return &CellFIFO{}
}

// Returns the number of positions still waiting in the queue.
func (q *CellFIFO) Len() int {
	return len(q.rows) - q.head
}

// Pushes a position onto the tail of the queue.
func (q *CellFIFO) Push(row, column int) {
	q.rows = append(q.rows, row)
	q.columns = append(q.columns, column)
}

// Pop returns the oldest position. ok is false if the queue is empty.
func (q *CellFIFO) Pop() (row, column int, ok bool) {
	if q.head >= len(q.rows) {
		return -1, -1, false
	}
	row, column = q.rows[q.head], q.columns[q.head]
	q.head++
	if q.head == len(q.rows) {
		// drained; reuse the backing arrays
		q.rows = q.rows[:0]
		q.columns = q.columns[:0]
		q.head = 0
	}
	return row, column, true
}
