package node

import (
	"crypto/ecdsa"
	"sync"

	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/ecoblock/ecoblock/src/gossip"
	"github.com/ecoblock/ecoblock/src/mesh"
	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/sirupsen/logrus"
)

// Context is the node orchestrator. It owns exactly one key-pair, one tangle,
// one gossip engine and one mesh topology, and serializes all access through
// coreLock. Operations run to completion while holding the lock, so the
// sequence of tangle insertions and mesh mutations observed by concurrent
// callers is totally ordered; two CreateBlock calls can never interleave
// their insert and propagate steps.
type Context struct {
	coreLock sync.Mutex

	key    *ecdsa.PrivateKey
	tangle *tangle.Tangle
	gossip *gossip.Engine
	mesh   *mesh.TopologyGraph

	logger *logrus.Entry
}

// NewContext creates a Context from its four subsystems. It is exported so
// that tests and multi-instance embeddings can hold independent contexts; the
// process-wide function surface in the mobile package always targets a single
// shared instance.
func NewContext(key *ecdsa.PrivateKey,
	t *tangle.Tangle,
	g *gossip.Engine,
	m *mesh.TopologyGraph,
	logger *logrus.Entry) *Context {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	c := &Context{
		key:    key,
		tangle: t,
		gossip: g,
		mesh:   m,
	}
	c.logger = logger.WithField("this_id", c.PublicKeyID())

	return c
}

// NodeID returns the hex representation of the context's public key.
func (c *Context) NodeID() string {
	return keys.PublicKeyHex(&c.key.PublicKey)
}

// CreateBlock runs the ingestion pipeline: deserialize the raw sensor
// payload, package it with the parent references, sign it, insert it into
// the tangle, and propagate it to peers. It returns the new block's ID.
//
// A payload that does not deserialize aborts the pipeline with an error and
// no side effects. Tangle insert errors are swallowed: the tangle is
// content-addressed, so the only local failure mode is re-inserting a block
// that is already there, which is harmless; the duplicate is still
// propagated. Propagation itself is fire-and-forget.
func (c *Context) CreateBlock(data []byte, parents []string) (string, error) {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	sensorData, err := tangle.ParseSensorData(data)
	if err != nil {
		c.logger.WithError(err).Debug("CreateBlock: invalid sensor payload")
		return "", err
	}

	block, err := tangle.NewBlock(tangle.BlockData{
		Parents: parents,
		Data:    sensorData,
	}, c.key)
	if err != nil {
		return "", err
	}

	if err := c.tangle.Insert(block); err != nil {
		c.logger.WithFields(logrus.Fields{
			"block": block.ID(),
		}).WithError(err).Debug("CreateBlock: tangle insert dropped")
	}

	c.gossip.PropagateBlock(block)

	c.logger.WithFields(logrus.Fields{
		"block":   block.ID(),
		"parents": len(parents),
	}).Debug("CreateBlock")

	return block.ID(), nil
}

// InsertBlock inserts a block received from a peer into the tangle. Unlike
// CreateBlock it surfaces insert errors, because the intake loop wants to
// distinguish duplicates from invalid blocks.
func (c *Context) InsertBlock(block *tangle.Block) error {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	return c.tangle.Insert(block)
}

// TangleSize returns the number of blocks in the tangle.
func (c *Context) TangleSize() int {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	return c.tangle.Len()
}

// Tips returns the IDs of the tangle's current tips.
func (c *Context) Tips() []string {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	return c.tangle.Tips()
}

// GetBlock retrieves a block from the tangle by ID.
func (c *Context) GetBlock(id string) (*tangle.Block, error) {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	return c.tangle.Get(id)
}

// AddPeerConnection records a weighted connection between two peers in the
// mesh topology. The weight is passed through unchecked; its interpretation
// belongs to the topology. An edge leaving this node makes the other
// endpoint a propagation target of the gossip engine.
func (c *Context) AddPeerConnection(from, to string, weight float32) {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	c.mesh.AddConnection(from, to, weight)

	if from == c.NodeID() {
		c.gossip.AddTarget(c.gossipAddr(to))
	}
}

// gossipAddr resolves a peer ID to a dial address. A peer with no address in
// the mesh is reached through its ID, which covers in-memory transports
// where IDs are addresses.
func (c *Context) gossipAddr(id string) string {
	if addr := c.mesh.Addr(id); addr != "" {
		return addr
	}
	return id
}

// ListPeers returns the IDs of a peer's neighbors, dropping the weights. An
// unknown peer yields an empty slice, not an error.
func (c *Context) ListPeers(peerID string) []string {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	neighbors, ok := c.mesh.GetNeighbors(peerID)
	if !ok {
		return []string{}
	}

	res := []string{}
	for _, n := range neighbors {
		res = append(res, n.ID)
	}
	return res
}

// MeshSize returns the number of peers registered in the mesh.
func (c *Context) MeshSize() int {
	c.coreLock.Lock()
	defer c.coreLock.Unlock()

	return c.mesh.Len()
}

// PublicKeyID returns the compact numeric form of the node's identity.
func (c *Context) PublicKeyID() uint32 {
	return keys.PublicKeyID(keys.FromPublicKey(&c.key.PublicKey))
}
