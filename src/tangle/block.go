package tangle

import (
	"bytes"
	"crypto/ecdsa"

	"github.com/ecoblock/ecoblock/src/common"
	"github.com/ecoblock/ecoblock/src/crypto"
	"github.com/ecoblock/ecoblock/src/crypto/keys"
	"github.com/ugorji/go/codec"
)

/*******************************************************************************
BlockData
*******************************************************************************/

// BlockData packages the payload of a block: the sensor measurement and the
// IDs of the parent blocks it builds on. Parents may be empty for a
// genesis-style block. Duplicate parent references are kept as provided; the
// store decides what to make of them.
type BlockData struct {
	Parents []string   `json:"parents"`
	Data    SensorData `json:"data"`
}

/*******************************************************************************
Block
*******************************************************************************/

// signedBody is the portion of a Block covered by its hash and signature.
type signedBody struct {
	Body    BlockData
	Creator []byte //creator's public key, uncompressed form
}

// Block is the fundamental unit of the tangle: an immutable, signed wrapper
// around a BlockData. Its ID is derived from the canonical encoding of its
// body and creator, so identical content authored by the same key yields the
// same ID. A Block is never mutated after construction.
type Block struct {
	Body      BlockData
	Creator   []byte //creator's public key, uncompressed form
	Signature string //creator's digital signature of the body

	//These fields are not serialized. They cache local computations.
	hash []byte
	hex  string
}

// NewBlock constructs a signed Block from a BlockData and the creator's
// private key.
func NewBlock(body BlockData, privKey *ecdsa.PrivateKey) (*Block, error) {
	block := &Block{
		Body:    body,
		Creator: keys.FromPublicKey(&privKey.PublicKey),
	}

	if err := block.Sign(privKey); err != nil {
		return nil, err
	}

	return block, nil
}

// canonicalEncode produces the canonical JSON encoding of v; map keys and
// struct fields are sorted, so the output is deterministic across processes.
func canonicalEncode(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	enc := codec.NewEncoder(b, jh)

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

func canonicalDecode(data []byte, v interface{}) error {
	b := bytes.NewBuffer(data)
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	dec := codec.NewDecoder(b, jh)

	return dec.Decode(v)
}

// Hash returns the SHA256 hash of the canonical encoding of the block's body
// and creator. The result is cached.
func (b *Block) Hash() ([]byte, error) {
	if b.hash == nil {
		signBytes, err := canonicalEncode(signedBody{Body: b.Body, Creator: b.Creator})
		if err != nil {
			return nil, err
		}
		b.hash = crypto.SHA256(signBytes)
	}
	return b.hash, nil
}

// ID returns the string form of the block's hash. It identifies the block in
// the tangle and in parent references.
func (b *Block) ID() string {
	if b.hex == "" {
		hash, _ := b.Hash()
		b.hex = common.EncodeToString(hash)
	}
	return b.hex
}

// CreatorHex returns the string representation of the creator's public key.
func (b *Block) CreatorHex() string {
	return common.EncodeToString(b.Creator)
}

// Sign signs the hash of the block's body with an ecdsa sig.
func (b *Block) Sign(privKey *ecdsa.PrivateKey) error {
	signBytes, err := b.Hash()
	if err != nil {
		return err
	}

	R, S, err := keys.Sign(privKey, signBytes)
	if err != nil {
		return err
	}

	b.Signature = keys.EncodeSignature(R, S)

	return err
}

// Verify checks the block's signature against its creator's public key.
func (b *Block) Verify() (bool, error) {
	pubKey := keys.ToPublicKey(b.Creator)
	if pubKey == nil || pubKey.X == nil {
		return false, nil
	}

	signBytes, err := b.Hash()
	if err != nil {
		return false, err
	}

	r, s, err := keys.DecodeSignature(b.Signature)
	if err != nil {
		return false, err
	}

	return keys.Verify(pubKey, signBytes, r, s), nil
}

// wireBlock is the serialized form of a Block.
type wireBlock struct {
	Body      BlockData
	Creator   []byte
	Signature string
}

// Marshal returns the canonical JSON encoding of the Block, as written to the
// store and to the wire.
func (b *Block) Marshal() ([]byte, error) {
	return canonicalEncode(wireBlock{
		Body:      b.Body,
		Creator:   b.Creator,
		Signature: b.Signature,
	})
}

// Unmarshal converts a serialized Block back to a Block.
func (b *Block) Unmarshal(data []byte) error {
	var w wireBlock
	if err := canonicalDecode(data, &w); err != nil {
		return err
	}

	b.Body = w.Body
	b.Creator = w.Creator
	b.Signature = w.Signature
	b.hash = nil
	b.hex = ""

	return nil
}
