package mesh

import (
	"sync"
)

// Neighbor is one endpoint of a weighted connection in the mesh.
type Neighbor struct {
	ID     string  `json:"id"`
	Weight float32 `json:"weight"`
}

// TopologyGraph is a weighted adjacency model of known peer connectivity.
// Edges are directed; an undirected link is represented by two edges. The
// graph accepts any numeric weight, it does not interpret them.
//
// Peer IDs are public key strings, which are not dialable. A peer may
// additionally carry a network address; consumers that need to reach a peer
// resolve it through Addr.
type TopologyGraph struct {
	sync.RWMutex
	adjacency map[string][]Neighbor
	addrs     map[string]string //peer ID => network address
}

// NewTopologyGraph creates an empty TopologyGraph.
func NewTopologyGraph() *TopologyGraph {
	return &TopologyGraph{
		adjacency: make(map[string][]Neighbor),
		addrs:     make(map[string]string),
	}
}

// AddNode registers a peer with no connections. Registering a known peer is a
// no-op.
func (t *TopologyGraph) AddNode(id string) {
	t.Lock()
	defer t.Unlock()

	t.addNodeRaw(id)
}

// addNodeRaw is not protected by the mutex. Handle with care.
func (t *TopologyGraph) addNodeRaw(id string) {
	if _, ok := t.adjacency[id]; !ok {
		t.adjacency[id] = []Neighbor{}
	}
}

// SetAddr records the network address of a peer, registering the peer if
// needed. An empty address clears the mapping.
func (t *TopologyGraph) SetAddr(id, netAddr string) {
	t.Lock()
	defer t.Unlock()

	t.addNodeRaw(id)
	if netAddr == "" {
		delete(t.addrs, id)
		return
	}
	t.addrs[id] = netAddr
}

// Addr returns the network address of a peer, or "" if none is known.
func (t *TopologyGraph) Addr(id string) string {
	t.RLock()
	defer t.RUnlock()

	return t.addrs[id]
}

// AddConnection inserts a directed edge from one peer to another, registering
// both endpoints if needed. Re-adding an existing edge updates its weight, so
// the operation is idempotent per ordered pair.
func (t *TopologyGraph) AddConnection(from, to string, weight float32) {
	t.Lock()
	defer t.Unlock()

	t.addNodeRaw(from)
	t.addNodeRaw(to)

	for i, n := range t.adjacency[from] {
		if n.ID == to {
			t.adjacency[from][i].Weight = weight
			return
		}
	}

	t.adjacency[from] = append(t.adjacency[from], Neighbor{ID: to, Weight: weight})
}

// GetNeighbors returns the neighbors of a peer in insertion order. The second
// return value is false if the peer is unknown to the graph.
func (t *TopologyGraph) GetNeighbors(id string) ([]Neighbor, bool) {
	t.RLock()
	defer t.RUnlock()

	neighbors, ok := t.adjacency[id]
	if !ok {
		return nil, false
	}

	res := make([]Neighbor, len(neighbors))
	copy(res, neighbors)

	return res, true
}

// Nodes returns the IDs of all registered peers.
func (t *TopologyGraph) Nodes() []string {
	t.RLock()
	defer t.RUnlock()

	res := []string{}
	for id := range t.adjacency {
		res = append(res, id)
	}

	return res
}

// Len returns the number of registered peers.
func (t *TopologyGraph) Len() int {
	t.RLock()
	defer t.RUnlock()

	return len(t.adjacency)
}
