package tangle

// Store is the persistence interface of the tangle. A store is insert-only
// and content-addressed: blocks are keyed by their ID and never updated or
// removed.
type Store interface {
	// InsertBlock adds a block to the store. Inserting an ID that is already
	// present returns a StoreErr with code KeyAlreadyExists.
	InsertBlock(block *Block) error

	// GetBlock retrieves a block by ID. An unknown ID returns a StoreErr with
	// code KeyNotFound.
	GetBlock(id string) (*Block, error)

	// Len returns the number of blocks in the store.
	Len() int

	// Tips returns the IDs of blocks that no stored block references as a
	// parent.
	Tips() []string

	// Close releases any underlying resources.
	Close() error
}
