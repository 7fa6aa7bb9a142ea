// Package keys implements the public key cryptography used throughout
// EcoBlock.
//
// A node owns a cryptographic key-pair that it uses to sign the blocks it
// authors. The private key is secret but the public key doubles as the node's
// identifier on the mesh, so other nodes can verify blocks signed with the
// private key.
//
// EcoBlock uses elliptic curve cryptography (ECDSA) with the secp256k1 curve,
// the same curve used by Bitcoin and Ethereum.
package keys
