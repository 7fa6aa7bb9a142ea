package gossip

import (
	"errors"

	"github.com/ecoblock/ecoblock/src/tangle"
)

var (
	// ErrTransportShutdown is returned when operations on a transport are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")
)

// Transport provides best-effort, one-way block propagation between nodes.
// The sending side never observes whether the receiver processed the block.
type Transport interface {
	// LocalAddr is the address other nodes use to reach this transport.
	LocalAddr() string

	// Consumer returns a channel that can be used to consume blocks pushed by
	// other nodes.
	Consumer() <-chan *tangle.Block

	// PropagateBlock pushes a block to a target address.
	PropagateBlock(target string, block *tangle.Block) error

	// Close permanently disables the transport.
	Close() error
}
