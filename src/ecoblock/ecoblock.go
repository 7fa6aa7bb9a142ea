package ecoblock

import (
	"crypto/ecdsa"
	"os"

	"github.com/ecoblock/ecoblock/src/config"
	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/ecoblock/ecoblock/src/gossip"
	"github.com/ecoblock/ecoblock/src/mesh"
	"github.com/ecoblock/ecoblock/src/node"
	"github.com/ecoblock/ecoblock/src/service"
	"github.com/ecoblock/ecoblock/src/tangle"
	"github.com/sirupsen/logrus"
)

// EcoBlock is the engine aggregate: it assembles a node Context and its
// subsystems from a Config, and runs the gossip intake loop and the HTTP
// service.
type EcoBlock struct {
	Config  *config.Config
	Context *node.Context
	Engine  *gossip.Engine
	Mesh    *mesh.TopologyGraph
	Tangle  *tangle.Tangle
	Service *service.Service

	key        *ecdsa.PrivateKey
	shutdownCh chan struct{}
}

// NewEcoBlock is a factory method that returns an EcoBlock object with a
// Config.
func NewEcoBlock(config *config.Config) *EcoBlock {
	engine := &EcoBlock{
		Config:     config,
		shutdownCh: make(chan struct{}),
	}

	return engine
}

func (e *EcoBlock) initKey() error {
	keyfile := keys.NewKeyfile(e.Config.Keyfile())

	privKey, err := keyfile.ReadKey()

	if err != nil {
		e.Config.Logger().Warn("Cannot read key-pair from file", err)

		privKey, err = keys.GenerateECDSAKey()
		if err != nil {
			e.Config.Logger().Error("Cannot generate a new key-pair", err)
			return err
		}

		if err := keyfile.WriteKey(privKey); err != nil {
			return err
		}

		e.Config.Logger().Info("Created a new key-pair:", keys.PublicKeyHex(&privKey.PublicKey))
	}

	e.key = privKey

	return nil
}

func (e *EcoBlock) initStore() error {
	if !e.Config.Store {
		e.Tangle = tangle.NewTangle()

		e.Config.Logger().Debug("created new in-mem store")
	} else {
		e.Config.Logger().WithField("path", e.Config.DatabaseDir).Debug("Attempting to load or create database")

		store, err := tangle.LoadOrCreateBadgerStore(e.Config.DatabaseDir)
		if err != nil {
			return err
		}

		if store.NeedBootstrap() {
			e.Config.Logger().Debug("loaded badger store from existing database")
		} else {
			e.Config.Logger().Debug("created new badger store from fresh database")
		}

		e.Tangle = tangle.NewTangleFromStore(store)
	}

	return nil
}

func (e *EcoBlock) initMesh() error {
	topologyStore := mesh.NewJSONTopology(e.Config.DataDir)

	if _, err := os.Stat(topologyStore.Path()); err == nil {
		graph, err := topologyStore.Topology()
		if err != nil {
			return err
		}
		e.Mesh = graph
	} else {
		e.Mesh = mesh.NewTopologyGraph()
	}

	e.Mesh.AddNode(keys.PublicKeyHex(&e.key.PublicKey))

	return nil
}

func (e *EcoBlock) initTransport() error {
	transport, err := gossip.NewTCPTransport(
		e.Config.BindAddr,
		e.Config.MaxPool,
		e.Config.TCPTimeout,
		e.Config.Logger(),
	)

	if err != nil {
		return err
	}

	e.Engine = gossip.NewEngine(transport, e.Config.Logger())

	return nil
}

func (e *EcoBlock) initContext() error {
	e.Context = node.NewContext(
		e.key,
		e.Tangle,
		e.Engine,
		e.Mesh,
		e.Config.Logger(),
	)

	e.Config.Logger().WithFields(logrus.Fields{
		"node_id": e.Context.NodeID(),
		"listen":  e.Engine.LocalAddr(),
	}).Debug("NODE")

	return nil
}

func (e *EcoBlock) initTargets() error {
	selfID := keys.PublicKeyHex(&e.key.PublicKey)

	e.Mesh.SetAddr(selfID, e.Engine.LocalAddr())

	neighbors, ok := e.Mesh.GetNeighbors(selfID)
	if !ok {
		return nil
	}

	for _, n := range neighbors {
		addr := e.Mesh.Addr(n.ID)
		if addr == "" {
			addr = n.ID
		}

		e.Engine.AddTarget(addr)

		e.Config.Logger().WithFields(logrus.Fields{
			"peer":   n.ID,
			"target": addr,
		}).Debug("added gossip target")
	}

	return nil
}

func (e *EcoBlock) initService() error {
	if !e.Config.NoService && e.Config.ServiceAddr != "" {
		e.Service = service.NewService(e.Config.ServiceAddr, e.Context, e.Config.Logger())
	}
	return nil
}

// Init initializes the EcoBlock engine based on the values of its Config.
func (e *EcoBlock) Init() error {
	if err := e.initKey(); err != nil {
		return err
	}

	if err := e.initStore(); err != nil {
		return err
	}

	if err := e.initMesh(); err != nil {
		return err
	}

	if err := e.initTransport(); err != nil {
		return err
	}

	if err := e.initContext(); err != nil {
		return err
	}

	if err := e.initTargets(); err != nil {
		return err
	}

	if err := e.initService(); err != nil {
		return err
	}

	return nil
}

// Run starts the HTTP service and consumes gossiped blocks until Shutdown is
// called. This is a blocking call.
func (e *EcoBlock) Run() {
	if e.Service != nil {
		go e.Service.Serve()
	}

	for {
		select {
		case block := <-e.Engine.Consumer():
			if err := e.Context.InsertBlock(block); err != nil {
				e.Config.Logger().WithFields(logrus.Fields{
					"block": block.ID(),
				}).WithError(err).Debug("dropped gossiped block")
			}
		case <-e.shutdownCh:
			return
		}
	}
}

// Shutdown stops the intake loop and closes the gossip engine and the
// tangle store.
func (e *EcoBlock) Shutdown() {
	close(e.shutdownCh)
	e.Engine.Close()
	e.Tangle.Close()
}
