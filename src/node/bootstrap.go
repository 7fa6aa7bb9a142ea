package node

import (
	"crypto/ecdsa"
	"errors"
	"os"
	"path/filepath"

	"github.com/ecoblock/ecoblock/src/config"
	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/ecoblock/ecoblock/src/mesh"
	"github.com/ecoblock/ecoblock/src/tangle"
)

// ErrAlreadyInitialized is returned by CreateLocalNode when the target
// directory already contains a key-pair file. Its message is the
// distinguished value the embedding surface exposes.
var ErrAlreadyInitialized = errors.New("AlreadyInitialized")

func keyfilePath(dir string) string {
	return filepath.Join(dir, config.KeypairFile)
}

// GenerateKeypair creates a new key-pair, persists it to the key-pair file
// under dir, and returns the hex-encoded public key. Any existing file is
// overwritten; CreateLocalNode is the guarded variant.
func GenerateKeypair(dir string) (string, error) {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		return "", err
	}

	if err := keys.NewKeyfile(keyfilePath(dir)).WriteKey(key); err != nil {
		return "", err
	}

	return keys.PublicKeyHex(&key.PublicKey), nil
}

// LoadKeypair reads the key-pair file under dir. It fails with an IO error if
// the file is absent or unreadable, and with a parse error if the bytes do
// not form a valid key-pair.
func LoadKeypair(dir string) (*ecdsa.PrivateKey, error) {
	return keys.NewKeyfile(keyfilePath(dir)).ReadKey()
}

// GetPublicKey loads the key-pair and returns its public key hex
// representation.
func GetPublicKey(dir string) (string, error) {
	key, err := LoadKeypair(dir)
	if err != nil {
		return "", err
	}
	return keys.PublicKeyHex(&key.PublicKey), nil
}

// GetNodeID loads the key-pair and returns its public key hex
// representation. It is GetPublicKey under another name: the public key is
// the node's identifier, and call sites read better when they say which of
// the two they mean.
func GetNodeID(dir string) (string, error) {
	return GetPublicKey(dir)
}

// InitializeTangle constructs an empty tangle and discards it. It validates
// that a tangle can be built but has no observable effect; the tangle used
// at runtime lives inside the Context. Kept as a distinct bootstrap step so
// CreateLocalNode mirrors the documented sequence.
func InitializeTangle() error {
	t := tangle.NewTangle()
	return t.Close()
}

// InitializeMesh constructs a topology containing only this node and
// persists it as the topology file under dir, so the bootstrap leaves a
// visible starting point for the mesh.
func InitializeMesh(dir string) error {
	nodeID, err := GetNodeID(dir)
	if err != nil {
		return err
	}

	graph := mesh.NewTopologyGraph()
	graph.AddNode(nodeID)

	return mesh.NewJSONTopology(dir).SetTopology(graph)
}

// CreateLocalNode is the guarded bootstrap entry point. It fails with
// ErrAlreadyInitialized if the directory already holds a key-pair; otherwise
// it generates the key-pair, initializes the tangle and the mesh, and
// returns the new node's identifier.
func CreateLocalNode(dir string) (string, error) {
	if NodeIsInitialized(dir) {
		return "", ErrAlreadyInitialized
	}

	nodeID, err := GenerateKeypair(dir)
	if err != nil {
		return "", err
	}

	if err := InitializeTangle(); err != nil {
		return "", err
	}

	if err := InitializeMesh(dir); err != nil {
		return "", err
	}

	return nodeID, nil
}

// ResetNode deletes the key-pair file under dir, returning the directory to
// the uninitialized state. A missing file is not an error.
func ResetNode(dir string) error {
	err := os.Remove(keyfilePath(dir))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// NodeIsInitialized reports whether the key-pair file exists under dir. It
// never fails.
func NodeIsInitialized(dir string) bool {
	_, err := os.Stat(keyfilePath(dir))
	return err == nil
}
