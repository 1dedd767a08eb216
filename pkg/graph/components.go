package graph

// Components returns the connected components of the graph.
//
// Components are ordered by the insertion position of their earliest node,
// and the IDs within a component are listed in insertion order. Isolated
// nodes form single-node components.
func (g *Graph) Components() [][]string {
	order := make(map[string]int, g.nodes.Len())
	for i, id := range g.NodeIDs() {
		order[id] = i
	}

	comp := make(map[string]int, g.nodes.Len())
	var sizes []int
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		if _, seen := comp[p.Key]; seen {
			continue
		}
		idx := len(sizes)
		size := 0
		queue := []string{p.Key}
		comp[p.Key] = idx
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			size++
			for _, next := range g.Neighbors(cur) {
				if _, seen := comp[next]; !seen {
					comp[next] = idx
					queue = append(queue, next)
				}
			}
		}
		sizes = append(sizes, size)
	}

	out := make([][]string, len(sizes))
	for i, n := range sizes {
		out[i] = make([]string, 0, n)
	}
	for p := g.nodes.Oldest(); p != nil; p = p.Next() {
		i := comp[p.Key]
		out[i] = append(out[i], p.Key)
	}
	return out
}

// ComponentOf returns the IDs of the connected component containing id, in
// insertion order, or nil if the node does not exist.
func (g *Graph) ComponentOf(id string) []string {
	for _, c := range g.Components() {
		for _, n := range c {
			if n == id {
				return c
			}
		}
	}
	return nil
}

// Retain removes every node (and its edges) whose ID is not in keep.
// It returns the number of nodes removed.
func (g *Graph) Retain(keep []string) int {
	set := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		set[id] = struct{}{}
	}
	removed := 0
	for _, id := range g.NodeIDs() {
		if _, ok := set[id]; !ok {
			g.RemoveNode(id)
			removed++
		}
	}
	return removed
}
