package tangle

import (
	"os"

	"github.com/dgraph-io/badger"
	cm "github.com/ecoblock/ecoblock/src/common"
)

// BadgerStore implements the Store interface on top of a Badger database,
// writing through an InmemStore which serves all reads and the tip/len
// queries. On load, the cache is rebuilt from the database.
type BadgerStore struct {
	inmemStore    *InmemStore
	db            *badger.DB
	path          string
	needBootstrap bool
}

//NewBadgerStore creates a brand new Store with a new database
func NewBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithSyncWrites(false)
	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	store := &BadgerStore{
		inmemStore: NewInmemStore(),
		db:         handle,
		path:       path,
	}
	return store, nil
}

//LoadBadgerStore creates a Store from an existing database
func LoadBadgerStore(path string) (*BadgerStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(path).WithSyncWrites(false)
	handle, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	store := &BadgerStore{
		inmemStore:    NewInmemStore(),
		db:            handle,
		path:          path,
		needBootstrap: true,
	}

	if err := store.dbLoadBlocks(); err != nil {
		store.db.Close()
		return nil, err
	}

	return store, nil
}

//LoadOrCreateBadgerStore loads an existing database or creates a new one
func LoadOrCreateBadgerStore(path string) (*BadgerStore, error) {
	store, err := LoadBadgerStore(path)

	if err != nil {
		store, err = NewBadgerStore(path)
		if err != nil {
			return nil, err
		}
	}

	return store, nil
}

// InsertBlock implements the Store interface. The block is inserted in the
// cache first, so a duplicate is rejected before touching the database.
func (s *BadgerStore) InsertBlock(block *Block) error {
	if err := s.inmemStore.InsertBlock(block); err != nil {
		return err
	}
	return s.dbSetBlock(block)
}

// GetBlock implements the Store interface.
func (s *BadgerStore) GetBlock(id string) (*Block, error) {
	return s.inmemStore.GetBlock(id)
}

// Len implements the Store interface.
func (s *BadgerStore) Len() int {
	return s.inmemStore.Len()
}

// Tips implements the Store interface.
func (s *BadgerStore) Tips() []string {
	return s.inmemStore.Tips()
}

// Close implements the Store interface.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// NeedBootstrap returns true if the store was loaded from an existing
// database.
func (s *BadgerStore) NeedBootstrap() bool {
	return s.needBootstrap
}

// StorePath returns the database directory.
func (s *BadgerStore) StorePath() string {
	return s.path
}

//++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++++
//DB Methods

func (s *BadgerStore) dbSetBlock(block *Block) error {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()

	val, err := block.Marshal()
	if err != nil {
		return err
	}

	//insert [block id] => [block bytes]
	if err := tx.Set([]byte(block.ID()), val); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *BadgerStore) dbLoadBlocks() error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()

			blockBytes, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			block := new(Block)
			if err := block.Unmarshal(blockBytes); err != nil {
				return err
			}

			if err := s.inmemStore.InsertBlock(block); err != nil {
				// tolerate re-reads of the same key
				if !cm.IsStore(err, cm.KeyAlreadyExists) {
					return err
				}
			}
		}

		return nil
	})
}
