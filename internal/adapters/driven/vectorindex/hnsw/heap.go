package hnsw

// candidate is a node and its distance to the current query.
type candidate struct {
	id   int32
	dist float32
}

// closer orders by distance, then node id.
func closer(a, b candidate) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.id < b.id
}

// nearestFirst is a min-heap: the closest candidate is on top.
type nearestFirst []candidate

func (h nearestFirst) Len() int           { return len(h) }
func (h nearestFirst) Less(i, j int) bool { return closer(h[i], h[j]) }
func (h nearestFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *nearestFirst) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *nearestFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// furthestFirst is a max-heap: the furthest candidate is on top.
type furthestFirst []candidate

func (h furthestFirst) Len() int           { return len(h) }
func (h furthestFirst) Less(i, j int) bool { return closer(h[j], h[i]) }
func (h furthestFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *furthestFirst) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *furthestFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
