package engine

import "container/heap"

// searchNode is an arena entry for A*. parent indexes the arena, -1 for the start.
type searchNode struct {
	pos       Position
	parent    int
	g         int
	h         int
	f         int
	seq       int
	heapIndex int
	closed    bool
}

// openSet is a binary min-heap of arena indices with a position index for
// decrease-key. Ordering: lower f, then lower h, then earlier insertion.
type openSet struct {
	nodes []searchNode
	items []int
	index map[Position]int
}

func newOpenSet() *openSet {
	return &openSet{index: make(map[Position]int)}
}

func (s *openSet) Len() int { return len(s.items) }

func (s *openSet) Less(i, j int) bool {
	a, b := &s.nodes[s.items[i]], &s.nodes[s.items[j]]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.h != b.h {
		return a.h < b.h
	}
	return a.seq < b.seq
}

func (s *openSet) Swap(i, j int) {
	s.items[i], s.items[j] = s.items[j], s.items[i]
	s.nodes[s.items[i]].heapIndex = i
	s.nodes[s.items[j]].heapIndex = j
}

func (s *openSet) Push(x any) {
	idx := x.(int)
	s.nodes[idx].heapIndex = len(s.items)
	s.items = append(s.items, idx)
}

func (s *openSet) Pop() any {
	n := len(s.items) - 1
	idx := s.items[n]
	s.items = s.items[:n]
	s.nodes[idx].heapIndex = -1
	return idx
}

// insert adds a new node to the arena and the heap, returning its arena index
func (s *openSet) insert(pos Position, parent, g, h int) int {
	idx := len(s.nodes)
	s.nodes = append(s.nodes, searchNode{
		pos:    pos,
		parent: parent,
		g:      g,
		h:      h,
		f:      g + h,
		seq:    idx,
	})
	s.index[pos] = idx
	heap.Push(s, idx)
	return idx
}

// lookup returns the arena index of a known position
func (s *openSet) lookup(pos Position) (int, bool) {
	idx, ok := s.index[pos]
	return idx, ok
}

// popMin removes and returns the arena index of the best open node
func (s *openSet) popMin() int {
	return heap.Pop(s).(int)
}

// relax lowers the cost of an open node and restores heap order
func (s *openSet) relax(idx, parent, g int) {
	n := &s.nodes[idx]
	n.parent = parent
	n.g = g
	n.f = g + n.h
	heap.Fix(s, n.heapIndex)
}

// path walks parent links from idx back to the start and returns them start-first
func (s *openSet) path(idx int) []Position {
	var out []Position
	for i := idx; i >= 0; i = s.nodes[i].parent {
		out = append(out, s.nodes[i].pos)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
