// Package node implements the EcoBlock node orchestrator.
//
// The Context aggregates the node's four subsystems: the signing key-pair,
// the tangle, the gossip engine, and the mesh topology. It exposes the
// block-ingestion pipeline that turns raw sensor bytes into a signed,
// peer-visible tangle block, and serializes every public operation behind a
// single exclusive lock so the embedding application can call in from any
// number of threads.
//
// The package also contains the bootstrap functions that manage a node
// directory's key-pair lifecycle: a directory is "initialized" exactly when
// its node_keypair.bin file exists.
package node
