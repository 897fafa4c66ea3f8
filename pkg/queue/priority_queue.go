package queue

import (
	"container/heap"
)

type Item struct {
	NodeID   int64   // graph node of this item
	Priority float64 // tentative distance from the origin in meters
	Index    int     // index of the item in the heap
}

// A Queue implements heap.Interface as a min-heap over Priority.
type Queue []*Item

func NewItem(nodeID int64, priority float64) *Item {
	return &Item{NodeID: nodeID, Priority: priority, Index: -1}
}

func (q Queue) Len() int {
	return len(q)
}

func (q Queue) Less(i, j int) bool {
	return q[i].Priority < q[j].Priority
}

func (q Queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].Index, q[j].Index = i, j
}

func (q *Queue) Push(item interface{}) {
	n := len(*q)
	pqItem := item.(*Item)
	pqItem.Index = n
	*q = append(*q, pqItem)
}

func (q *Queue) Pop() interface{} {
	old := *q
	n := len(old)
	pqItem := old[n-1]
	old[n-1] = nil
	pqItem.Index = -1 // for safety
	*q = old[0 : n-1]
	return pqItem
}

func (q *Queue) Update(pqItem *Item, newPriority float64) {
	pqItem.Priority = newPriority
	heap.Fix(q, pqItem.Index)
}
