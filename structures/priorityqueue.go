// Copyright 2015 the GoSpatial Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// licence that can be found in the LICENCE.txt file.

// File created by John Lindsay, March 2015 based on code originally found at
// https://github.com/oleiade/lane/blob/master/pqueue.go

package structures

// GridCell is a priority queue entry: a grid position and the elevation
// it is ordered by.
type GridCell struct {
	Row      int
	Column   int
	Priority float64
}

type cellItem struct {
	cell GridCell
	seq  uint64
}

// CellQueue is a binary min-heap of grid cells keyed on elevation.
// Cells with equal elevation are popped in the order they were pushed,
// so a traversal driven by the queue is deterministic for a fixed input.
// CellQueue is not safe for concurrent use; a flood owns its queue.
type CellQueue struct {
	items      []cellItem
	elemsCount int
	nextSeq    uint64
}

// NewCellQueue creates an empty queue with room for capacity cells.
func NewCellQueue(capacity int) *CellQueue {
	if capacity < 1 {
		capacity = 1
	}
	items := make([]cellItem, 1, capacity+1) // items[0] is unused
	return &CellQueue{items: items}
}

// Push adds a cell to the queue.
func (pq *CellQueue) Push(row, column int, priority float64) {
	pq.items = append(pq.items, cellItem{
		cell: GridCell{Row: row, Column: column, Priority: priority},
		seq:  pq.nextSeq,
	})
	pq.nextSeq++
	pq.elemsCount++
	pq.swim(pq.elemsCount)
}

// Pop removes and returns the lowest cell. ok is false when the queue is
// empty.
func (pq *CellQueue) Pop() (gc GridCell, ok bool) {
	if pq.elemsCount < 1 {
		return gc, false
	}
	top := pq.items[1]
	pq.items[1] = pq.items[pq.elemsCount]
	pq.items = pq.items[0:pq.elemsCount]
	pq.elemsCount--
	pq.sink(1)
	return top.cell, true
}

// Peek returns the lowest cell without removing it.
func (pq *CellQueue) Peek() (gc GridCell, ok bool) {
	if pq.elemsCount < 1 {
		return gc, false
	}
	return pq.items[1].cell, true
}

func (pq *CellQueue) Len() int {
	return pq.elemsCount
}

func (pq *CellQueue) less(i, j int) bool {
	a, b := &pq.items[i], &pq.items[j]
	if a.cell.Priority != b.cell.Priority {
		return a.cell.Priority < b.cell.Priority
	}
	return a.seq < b.seq
}

func (pq *CellQueue) swim(k int) {
	for k > 1 && pq.less(k, k/2) {
		pq.items[k/2], pq.items[k] = pq.items[k], pq.items[k/2]
		k = k / 2
	}
}

func (pq *CellQueue) sink(k int) {
	var j int
	for 2*k <= pq.elemsCount {
		j = 2 * k
		if j < pq.elemsCount && pq.less(j+1, j) {
			j++
		}
		if !pq.less(j, k) {
			break
		}
		pq.items[k], pq.items[j] = pq.items[j], pq.items[k]
		k = j
	}
}
