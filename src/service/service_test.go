package service

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecoblock/ecoblock/src/common"
	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/ecoblock/ecoblock/src/gossip"
	"github.com/ecoblock/ecoblock/src/mesh"
	"github.com/ecoblock/ecoblock/src/node"
	"github.com/ecoblock/ecoblock/src/tangle"
)

func testService(t *testing.T) *Service {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	logger := common.NewTestEntry(t)
	_, trans := gossip.NewInmemTransport("")

	ctx := node.NewContext(key,
		tangle.NewTangle(),
		gossip.NewEngine(trans, logger),
		mesh.NewTopologyGraph(),
		logger)

	// build the service without registering handlers on the default mux, so
	// tests remain independent
	return &Service{
		bindAddress: "127.0.0.1:0",
		ctx:         ctx,
		logger:      logger,
	}
}

func TestGetStats(t *testing.T) {
	s := testService(t)

	id, err := s.ctx.CreateBlock([]byte(`{"sensor_id":"s1","value":1}`), nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	s.ctx.AddPeerConnection("A", "B", 1.0)

	w := httptest.NewRecorder()
	s.GetStats(w, httptest.NewRequest("GET", "/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var stats Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("err: %v", err)
	}

	if stats.TangleSize != 1 {
		t.Fatalf("expected tangle size 1, got %d", stats.TangleSize)
	}
	if stats.NodeID != s.ctx.NodeID() {
		t.Fatalf("unexpected node ID")
	}
	if len(stats.Tips) != 1 || stats.Tips[0] != id {
		t.Fatalf("unexpected tips: %v", stats.Tips)
	}
	if stats.MeshSize != 2 {
		t.Fatalf("expected mesh size 2, got %d", stats.MeshSize)
	}
}

func TestGetBlock(t *testing.T) {
	s := testService(t)

	id, err := s.ctx.CreateBlock([]byte(`{"sensor_id":"s1","value":1}`), nil)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	w := httptest.NewRecorder()
	s.GetBlock(w, httptest.NewRequest("GET", "/block/"+id, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	s.GetBlock(w, httptest.NewRequest("GET", "/block/0XDEAD", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetPeers(t *testing.T) {
	s := testService(t)

	s.ctx.AddPeerConnection("A", "B", 1.0)

	w := httptest.NewRecorder()
	s.GetPeers(w, httptest.NewRequest("GET", "/peers?id=A", nil))

	var neighbors []string
	if err := json.Unmarshal(w.Body.Bytes(), &neighbors); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(neighbors) != 1 || neighbors[0] != "B" {
		t.Fatalf("expected [B], got %v", neighbors)
	}

	w = httptest.NewRecorder()
	s.GetPeers(w, httptest.NewRequest("GET", "/peers?id=unknown", nil))

	if err := json.Unmarshal(w.Body.Bytes(), &neighbors); err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(neighbors) != 0 {
		t.Fatalf("expected no neighbors, got %v", neighbors)
	}
}
