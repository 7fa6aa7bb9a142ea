package tangle

import (
	cm "github.com/ecoblock/ecoblock/src/common"
)

// Tangle is the local view of the append-only DAG of signed sensor blocks.
// It owns a Store and guards it with signature validation on insert. The
// Tangle itself performs no locking; the node Context serializes access.
type Tangle struct {
	store Store
}

// NewTangle creates a Tangle over an empty InmemStore.
func NewTangle() *Tangle {
	return &Tangle{
		store: NewInmemStore(),
	}
}

// NewTangleFromStore creates a Tangle over an existing Store.
func NewTangleFromStore(store Store) *Tangle {
	return &Tangle{
		store: store,
	}
}

// Insert validates a block's signature and adds it to the store. A block
// whose signature does not verify is rejected with an InvalidSignature store
// error; a block whose ID is already present is rejected with
// KeyAlreadyExists. Parent references are not required to resolve: a block
// may arrive before its parents.
func (t *Tangle) Insert(block *Block) error {
	ok, err := block.Verify()
	if err != nil {
		return err
	}
	if !ok {
		return cm.NewStoreErr("Block", cm.InvalidSignature, block.ID())
	}

	return t.store.InsertBlock(block)
}

// Get retrieves a block by ID.
func (t *Tangle) Get(id string) (*Block, error) {
	return t.store.GetBlock(id)
}

// Len returns the number of blocks in the tangle.
func (t *Tangle) Len() int {
	return t.store.Len()
}

// Tips returns the IDs of blocks not yet referenced as parents.
func (t *Tangle) Tips() []string {
	return t.store.Tips()
}

// Close releases the underlying store.
func (t *Tangle) Close() error {
	return t.store.Close()
}
