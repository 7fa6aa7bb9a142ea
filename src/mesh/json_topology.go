package mesh

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"path/filepath"
	"sync"
)

const jsonTopologyPath = "topology.json"

// JSONTopology provides topology persistence on disk in the form of a JSON
// file. This allows human operators to inspect and manipulate the mesh.
type JSONTopology struct {
	l    sync.Mutex
	path string
}

// NewJSONTopology creates a new JSONTopology store under the given base
// directory.
func NewJSONTopology(base string) *JSONTopology {
	path := filepath.Join(base, jsonTopologyPath)
	store := &JSONTopology{
		path: path,
	}
	return store
}

// Path returns the underlying file path.
func (j *JSONTopology) Path() string {
	return j.path
}

// jsonGraph is the on-disk shape of a TopologyGraph.
type jsonGraph struct {
	Addrs       map[string]string     `json:"addrs,omitempty"`
	Connections map[string][]Neighbor `json:"connections"`
}

// Topology reads the graph from the file.
func (j *JSONTopology) Topology() (*TopologyGraph, error) {
	j.l.Lock()
	defer j.l.Unlock()

	// Read the file
	buf, err := ioutil.ReadFile(j.path)
	if err != nil {
		return nil, err
	}

	// Check for an empty mesh
	if len(buf) == 0 {
		return NewTopologyGraph(), nil
	}

	// Decode the graph
	var wire jsonGraph
	dec := json.NewDecoder(bytes.NewReader(buf))
	if err := dec.Decode(&wire); err != nil {
		return nil, err
	}

	graph := NewTopologyGraph()
	for id, neighbors := range wire.Connections {
		graph.AddNode(id)
		for _, n := range neighbors {
			graph.AddConnection(id, n.ID, n.Weight)
		}
	}
	for id, addr := range wire.Addrs {
		graph.SetAddr(id, addr)
	}

	return graph, nil
}

// SetTopology writes the graph out as JSON.
func (j *JSONTopology) SetTopology(graph *TopologyGraph) error {
	j.l.Lock()
	defer j.l.Unlock()

	graph.RLock()
	defer graph.RUnlock()

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(jsonGraph{
		Addrs:       graph.addrs,
		Connections: graph.adjacency,
	}); err != nil {
		return err
	}

	return ioutil.WriteFile(j.path, buf.Bytes(), 0755)
}
