package keys

import (
	"crypto/ecdsa"
	"io/ioutil"
	"os"
	"path"
	"sync"
)

// Keyfile reads and writes a node's key-pair from/to a single binary file.
// The file contains the raw big-endian dump of the private key's D value, as
// produced by DumpPrivateKey. Existence of this file is what makes a node
// directory "initialized".
type Keyfile struct {
	l    sync.Mutex
	path string
}

// NewKeyfile instantiates a new Keyfile with an underlying file.
func NewKeyfile(path string) *Keyfile {
	return &Keyfile{
		path: path,
	}
}

// Path returns the underlying file path.
func (k *Keyfile) Path() string {
	return k.path
}

// ReadKey reads the binary key dump from the underlying file. It returns an
// IO error if the file is absent or unreadable, and a parse error if the
// bytes do not form a valid private key.
func (k *Keyfile) ReadKey() (*ecdsa.PrivateKey, error) {
	k.l.Lock()
	defer k.l.Unlock()

	buf, err := ioutil.ReadFile(k.path)
	if err != nil {
		return nil, err
	}

	return ParsePrivateKey(buf)
}

// WriteKey writes the raw binary dump of the key's D value to the underlying
// file, creating the parent directory if needed. An existing file is
// overwritten.
func (k *Keyfile) WriteKey(key *ecdsa.PrivateKey) error {
	k.l.Lock()
	defer k.l.Unlock()

	if err := os.MkdirAll(path.Dir(k.path), 0700); err != nil {
		return err
	}

	return ioutil.WriteFile(k.path, DumpPrivateKey(key), 0600)
}
