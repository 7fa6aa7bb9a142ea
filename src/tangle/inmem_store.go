package tangle

import (
	"sort"

	cm "github.com/ecoblock/ecoblock/src/common"
)

// InmemStore implements the Store interface with in-memory maps. It keeps
// every block for the lifetime of the process; nodes that need durability
// across restarts use the BadgerStore instead.
type InmemStore struct {
	blocks     map[string]*Block
	order      []string        //IDs in insertion order
	referenced map[string]bool //IDs referenced as a parent by some block
}

// NewInmemStore creates an empty InmemStore.
func NewInmemStore() *InmemStore {
	return &InmemStore{
		blocks:     make(map[string]*Block),
		referenced: make(map[string]bool),
	}
}

// InsertBlock implements the Store interface.
func (s *InmemStore) InsertBlock(block *Block) error {
	id := block.ID()

	if _, ok := s.blocks[id]; ok {
		return cm.NewStoreErr("Block", cm.KeyAlreadyExists, id)
	}

	s.blocks[id] = block
	s.order = append(s.order, id)

	for _, p := range block.Body.Parents {
		s.referenced[p] = true
	}

	return nil
}

// GetBlock implements the Store interface.
func (s *InmemStore) GetBlock(id string) (*Block, error) {
	block, ok := s.blocks[id]
	if !ok {
		return nil, cm.NewStoreErr("Block", cm.KeyNotFound, id)
	}
	return block, nil
}

// Len implements the Store interface.
func (s *InmemStore) Len() int {
	return len(s.blocks)
}

// Tips implements the Store interface. The result is sorted for determinism.
func (s *InmemStore) Tips() []string {
	tips := []string{}
	for _, id := range s.order {
		if !s.referenced[id] {
			tips = append(tips, id)
		}
	}
	sort.Strings(tips)
	return tips
}

// Close implements the Store interface.
func (s *InmemStore) Close() error {
	return nil
}
