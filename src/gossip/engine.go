package gossip

import (
	"sync"

	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/sirupsen/logrus"
)

// Engine propagates finalized blocks to a set of target addresses over a
// Transport. Propagation is fire-and-forget: per-target failures are logged
// and dropped, and the caller never observes them.
type Engine struct {
	sync.RWMutex
	transport Transport
	targets   map[string]bool
	logger    *logrus.Entry
}

// NewEngine creates an Engine with no targets.
func NewEngine(transport Transport, logger *logrus.Entry) *Engine {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &Engine{
		transport: transport,
		targets:   make(map[string]bool),
		logger:    logger,
	}
}

// AddTarget registers a target address for future propagations.
func (e *Engine) AddTarget(addr string) {
	e.Lock()
	defer e.Unlock()
	e.targets[addr] = true
}

// RemoveTarget unregisters a target address.
func (e *Engine) RemoveTarget(addr string) {
	e.Lock()
	defer e.Unlock()
	delete(e.targets, addr)
}

// Targets returns the registered target addresses.
func (e *Engine) Targets() []string {
	e.RLock()
	defer e.RUnlock()

	res := []string{}
	for addr := range e.targets {
		res = append(res, addr)
	}
	return res
}

// PropagateBlock pushes a block to every registered target. There is no
// return value; failures only show up in the logs.
func (e *Engine) PropagateBlock(block *tangle.Block) {
	for _, target := range e.Targets() {
		if err := e.transport.PropagateBlock(target, block); err != nil {
			e.logger.WithFields(logrus.Fields{
				"target": target,
				"block":  block.ID(),
			}).WithError(err).Debug("failed to propagate block")
		}
	}
}

// Consumer exposes the transport's inbound block channel.
func (e *Engine) Consumer() <-chan *tangle.Block {
	return e.transport.Consumer()
}

// LocalAddr returns the transport's local address.
func (e *Engine) LocalAddr() string {
	return e.transport.LocalAddr()
}

// Close shuts the underlying transport down.
func (e *Engine) Close() error {
	return e.transport.Close()
}
