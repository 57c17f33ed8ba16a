package network

import (
	"errors"
	"fmt"
	"sort"
)

// ErrMeshed is returned when the network is not a radial tree fed from a
// single source per connected component.
var ErrMeshed = errors.New("meshed or multi-source topology is not supported")

// Topology is a radial tree rooted at the source buses. Buses unreachable from
// any source are absent from it.
type Topology struct {
	parent   map[int]int
	depth    map[int]int
	via      map[int]Branch
	children map[int][]int
	roots    []int
}

// BuildTopology orients the network away from its sources. A cycle, parallel
// branches or two source buses in one component yield ErrMeshed.
func BuildTopology(m Model) (*Topology, error) {
	if err := Validate(m); err != nil {
		return nil, err
	}
	n := len(m.Buses())
	adj := make([][]Branch, n)
	for _, br := range Branches(m) {
		adj[br.A] = append(adj[br.A], br)
		adj[br.B] = append(adj[br.B], br)
	}
	sourceBus := make(map[int]bool)
	for _, s := range m.Sources() {
		sourceBus[s.Bus] = true
	}

	comp := make([]int, n)
	for i := range comp {
		comp[i] = -1
	}
	var roots []int
	for start := 0; start < n; start++ {
		if comp[start] >= 0 {
			continue
		}
		members := []int{start}
		comp[start] = start
		degrees := 0
		for q := 0; q < len(members); q++ {
			b := members[q]
			degrees += len(adj[b])
			for _, br := range adj[b] {
				o := br.Other(b)
				if comp[o] < 0 {
					comp[o] = start
					members = append(members, o)
				}
			}
		}
		if edges := degrees / 2; edges >= len(members) {
			return nil, fmt.Errorf("%w: component of bus %d has %d branches for %d buses",
				ErrMeshed, start, edges, len(members))
		}
		var srcs []int
		for _, b := range members {
			if sourceBus[b] {
				srcs = append(srcs, b)
			}
		}
		if len(srcs) > 1 {
			sort.Ints(srcs)
			return nil, fmt.Errorf("%w: buses %v are all fed by a source", ErrMeshed, srcs)
		}
		roots = append(roots, srcs...)
	}
	sort.Ints(roots)

	t := &Topology{
		parent:   make(map[int]int),
		depth:    make(map[int]int),
		via:      make(map[int]Branch),
		children: make(map[int][]int),
		roots:    roots,
	}
	for _, r := range roots {
		t.parent[r] = -1
		t.depth[r] = 0
		queue := []int{r}
		for len(queue) > 0 {
			b := queue[0]
			queue = queue[1:]
			for _, br := range adj[b] {
				o := br.Other(b)
				if _, seen := t.depth[o]; seen {
					continue
				}
				t.parent[o] = b
				t.depth[o] = t.depth[b] + 1
				t.via[o] = br
				t.children[b] = append(t.children[b], o)
				queue = append(queue, o)
			}
		}
	}
	return t, nil
}

// Roots returns the source buses.
func (t *Topology) Roots() []int { return t.roots }

// Contains reports whether bus is reachable from a source.
func (t *Topology) Contains(bus int) bool {
	_, ok := t.depth[bus]
	return ok
}

// Depth is the number of branches between bus and its source.
func (t *Topology) Depth(bus int) (int, bool) {
	d, ok := t.depth[bus]
	return d, ok
}

// Parent returns the upstream neighbour of bus; -1 for a root.
func (t *Topology) Parent(bus int) (int, bool) {
	p, ok := t.parent[bus]
	return p, ok
}

// Children returns the downstream neighbours of bus.
func (t *Topology) Children(bus int) []int { return t.children[bus] }

// UpstreamBranch returns the branch feeding bus from its parent.
func (t *Topology) UpstreamBranch(bus int) (Branch, bool) {
	br, ok := t.via[bus]
	return br, ok
}

// InSubtree reports whether bus lies in the subtree rooted at root.
func (t *Topology) InSubtree(root, bus int) bool {
	if !t.Contains(root) || !t.Contains(bus) {
		return false
	}
	for b := bus; b >= 0; b = t.parent[b] {
		if b == root {
			return true
		}
	}
	return false
}

// PathFromSource lists the buses from the source down to bus.
func (t *Topology) PathFromSource(bus int) []int {
	if !t.Contains(bus) {
		return nil
	}
	var path []int
	for b := bus; b >= 0; b = t.parent[b] {
		path = append(path, b)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
