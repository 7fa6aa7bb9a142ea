package mesh

import (
	"io/ioutil"
	"os"
	"testing"
)

func TestAddConnection(t *testing.T) {
	graph := NewTopologyGraph()

	graph.AddConnection("A", "B", 1.0)

	neighbors, ok := graph.GetNeighbors("A")
	if !ok {
		t.Fatalf("A should be known to the graph")
	}
	if len(neighbors) != 1 || neighbors[0].ID != "B" || neighbors[0].Weight != 1.0 {
		t.Fatalf("unexpected neighbors: %v", neighbors)
	}

	// B was registered as an endpoint, with no outgoing edges
	neighbors, ok = graph.GetNeighbors("B")
	if !ok {
		t.Fatalf("B should be known to the graph")
	}
	if len(neighbors) != 0 {
		t.Fatalf("B should have no outgoing edges, got %v", neighbors)
	}

	// re-adding the edge updates the weight instead of duplicating it
	graph.AddConnection("A", "B", 2.5)

	neighbors, _ = graph.GetNeighbors("A")
	if len(neighbors) != 1 || neighbors[0].Weight != 2.5 {
		t.Fatalf("edge should have been updated, got %v", neighbors)
	}
}

func TestGetNeighborsUnknownPeer(t *testing.T) {
	graph := NewTopologyGraph()

	if _, ok := graph.GetNeighbors("nobody"); ok {
		t.Fatalf("unknown peer should not be found")
	}
}

func TestAddNodeIdempotent(t *testing.T) {
	graph := NewTopologyGraph()

	graph.AddNode("A")
	graph.AddConnection("A", "B", 1.0)
	graph.AddNode("A")

	neighbors, _ := graph.GetNeighbors("A")
	if len(neighbors) != 1 {
		t.Fatalf("re-registering a node should not clear its edges, got %v", neighbors)
	}

	if graph.Len() != 2 {
		t.Fatalf("expected 2 nodes, got %d", graph.Len())
	}
}

func TestAddrs(t *testing.T) {
	graph := NewTopologyGraph()

	if addr := graph.Addr("A"); addr != "" {
		t.Fatalf("unknown peer should have no address, got %s", addr)
	}

	graph.SetAddr("A", "127.0.0.1:1338")
	if addr := graph.Addr("A"); addr != "127.0.0.1:1338" {
		t.Fatalf("unexpected address: %s", addr)
	}

	// SetAddr registers the peer
	if _, ok := graph.GetNeighbors("A"); !ok {
		t.Fatalf("A should be known to the graph")
	}

	graph.SetAddr("A", "")
	if addr := graph.Addr("A"); addr != "" {
		t.Fatalf("address should have been cleared, got %s", addr)
	}
}

func TestJSONTopology(t *testing.T) {
	os.Mkdir("test_data", os.ModeDir|0700)
	dir, err := ioutil.TempDir("test_data", "ecoblock")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	defer os.RemoveAll(dir)

	store := NewJSONTopology(dir)

	// Try a read, should get nothing
	if _, err := store.Topology(); err == nil {
		t.Fatalf("Topology should generate an error when the file is absent")
	}

	graph := NewTopologyGraph()
	graph.AddNode("lonely")
	graph.AddConnection("A", "B", 1.0)
	graph.AddConnection("B", "A", 0.5)
	graph.SetAddr("A", "127.0.0.1:1338")

	if err := store.SetTopology(graph); err != nil {
		t.Fatalf("err: %v", err)
	}

	reloaded, err := store.Topology()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if reloaded.Len() != 3 {
		t.Fatalf("expected 3 nodes, got %d", reloaded.Len())
	}

	neighbors, ok := reloaded.GetNeighbors("B")
	if !ok || len(neighbors) != 1 || neighbors[0].ID != "A" || neighbors[0].Weight != 0.5 {
		t.Fatalf("unexpected neighbors for B: %v", neighbors)
	}

	if _, ok := reloaded.GetNeighbors("lonely"); !ok {
		t.Fatalf("edge-less node should survive the round-trip")
	}

	if addr := reloaded.Addr("A"); addr != "127.0.0.1:1338" {
		t.Fatalf("address should survive the round-trip, got %s", addr)
	}
}
