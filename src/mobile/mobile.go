/*
Package mobile is the embedding surface of EcoBlock. It is designed to be
compiled with gomobile and called from a foreign runtime, so every function
is a stateless package-level call using only types that cross the binding
boundary (strings, numbers, byte slices), and errors travel as strings mixed
into the success channel. Native Go callers should use the node package
directly and get typed results.

All stateful functions route through a single process-wide node Context,
created lazily on first use. This is what allows the embedding application to
call in from any thread without holding anything.
*/
package mobile

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/ecoblock/ecoblock/src/gossip"
	"github.com/ecoblock/ecoblock/src/mesh"
	"github.com/ecoblock/ecoblock/src/node"
	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/sirupsen/logrus"
)

var (
	ctxOnce sync.Once
	ctx     *node.Context
)

// context returns the process-wide Context, creating it on first use with an
// ephemeral identity, an in-memory tangle and an in-memory transport. The
// Context serializes its own operations; this function only guards creation.
func context() *node.Context {
	ctxOnce.Do(func() {
		key, err := keys.GenerateECDSAKey()
		if err != nil {
			panic(fmt.Errorf("failed to generate node identity: %v", err))
		}

		logger := logrus.New()
		entry := logrus.NewEntry(logger)

		_, trans := gossip.NewInmemTransport("")

		ctx = node.NewContext(key,
			tangle.NewTangle(),
			gossip.NewEngine(trans, entry),
			mesh.NewTopologyGraph(),
			entry)
	})
	return ctx
}

// CreateBlock turns a raw sensor payload into a signed tangle block and
// returns its ID. parentsJSON is a JSON array of parent block IDs; it may be
// empty. On failure the returned string is the error message.
func CreateBlock(data []byte, parentsJSON string) string {
	var parents []string
	if parentsJSON != "" {
		if err := json.Unmarshal([]byte(parentsJSON), &parents); err != nil {
			return fmt.Sprintf("failed to parse parents: %s", err)
		}
	}

	id, err := context().CreateBlock(data, parents)
	if err != nil {
		return err.Error()
	}
	return id
}

// GetTangleSize returns the number of blocks in the tangle.
func GetTangleSize() int {
	return context().TangleSize()
}

// AddPeerConnection records a weighted connection between two peers in the
// mesh topology.
func AddPeerConnection(from string, to string, weight float32) {
	context().AddPeerConnection(from, to, weight)
}

// ListPeers returns the JSON array of a peer's neighbor IDs. An unknown peer
// yields "[]".
func ListPeers(peerID string) string {
	neighbors := context().ListPeers(peerID)

	buf, err := json.Marshal(neighbors)
	if err != nil {
		return "[]"
	}
	return string(buf)
}

// GenerateKeypair creates a new key-pair under dir, overwriting any existing
// one, and returns the public key hex. On failure the returned string is the
// error message.
func GenerateKeypair(dir string) string {
	pub, err := node.GenerateKeypair(dir)
	if err != nil {
		return err.Error()
	}
	return pub
}

// GetPublicKey returns the hex public key of the key-pair stored under dir,
// or the error message.
func GetPublicKey(dir string) string {
	pub, err := node.GetPublicKey(dir)
	if err != nil {
		return err.Error()
	}
	return pub
}

// GetNodeID returns the node identifier derived from the key-pair stored
// under dir, or the error message.
func GetNodeID(dir string) string {
	id, err := node.GetNodeID(dir)
	if err != nil {
		return err.Error()
	}
	return id
}

// CreateLocalNode bootstraps a node directory and returns the new node ID.
// "AlreadyInitialized" is the distinguished value returned when dir already
// holds a key-pair.
func CreateLocalNode(dir string) string {
	id, err := node.CreateLocalNode(dir)
	if err != nil {
		return err.Error()
	}
	return id
}

// ResetNode deletes the key-pair under dir, best-effort.
func ResetNode(dir string) {
	node.ResetNode(dir)
}

// NodeIsInitialized reports whether dir holds a key-pair.
func NodeIsInitialized(dir string) bool {
	return node.NodeIsInitialized(dir)
}
