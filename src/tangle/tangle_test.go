package tangle

import (
	"crypto/ecdsa"
	"io/ioutil"
	"os"
	"path"
	"reflect"
	"testing"

	cm "github.com/ecoblock/ecoblock/src/common"
	"github.com/ecoblock/ecoblock/src/crypto/keys"
)

func testKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := keys.GenerateECDSAKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	return key
}

func testBlock(t *testing.T, key *ecdsa.PrivateKey, sensorID string, parents ...string) *Block {
	block, err := NewBlock(BlockData{
		Parents: parents,
		Data: SensorData{
			SensorID:   sensorID,
			Timestamp:  1700000000000,
			MetricType: "temperature",
			Value:      21.5,
		},
	}, key)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	return block
}

func TestBlockSignVerify(t *testing.T) {
	key := testKey(t)
	block := testBlock(t, key, "s1")

	ok, err := block.Verify()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !ok {
		t.Fatalf("block signature should verify")
	}

	// a block signed by one key but claiming another creator must not verify
	other := testKey(t)
	forged := &Block{
		Body:      block.Body,
		Creator:   keys.FromPublicKey(&other.PublicKey),
		Signature: block.Signature,
	}
	ok, err = forged.Verify()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ok {
		t.Fatalf("forged block should not verify")
	}
}

func TestBlockID(t *testing.T) {
	key := testKey(t)

	b1 := testBlock(t, key, "s1", "P1", "P2")
	b2 := testBlock(t, key, "s1", "P1", "P2")

	// the ID covers body and creator only, so identical content from the
	// same key gets the same ID even though ECDSA signatures differ
	if b1.ID() != b2.ID() {
		t.Fatalf("IDs should match: %s != %s", b1.ID(), b2.ID())
	}

	b3 := testBlock(t, key, "s2", "P1", "P2")
	if b1.ID() == b3.ID() {
		t.Fatalf("different payloads should produce different IDs")
	}

	b4 := testBlock(t, testKey(t), "s1", "P1", "P2")
	if b1.ID() == b4.ID() {
		t.Fatalf("different creators should produce different IDs")
	}
}

func TestBlockMarshal(t *testing.T) {
	key := testKey(t)
	block := testBlock(t, key, "s1", "P1")

	raw, err := block.Marshal()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	decoded := new(Block)
	if err := decoded.Unmarshal(raw); err != nil {
		t.Fatalf("err: %v", err)
	}

	if decoded.ID() != block.ID() {
		t.Fatalf("ID not preserved: %s != %s", decoded.ID(), block.ID())
	}
	if decoded.Signature != block.Signature {
		t.Fatalf("signature not preserved")
	}
	if !reflect.DeepEqual(decoded.Body, block.Body) {
		t.Fatalf("body not preserved")
	}

	ok, err := decoded.Verify()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !ok {
		t.Fatalf("decoded block should verify")
	}
}

func TestTangleInsert(t *testing.T) {
	key := testKey(t)
	tangle := NewTangle()

	block := testBlock(t, key, "s1")
	if err := tangle.Insert(block); err != nil {
		t.Fatalf("err: %v", err)
	}

	if l := tangle.Len(); l != 1 {
		t.Fatalf("tangle should contain 1 block, got %d", l)
	}

	got, err := tangle.Get(block.ID())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if got.ID() != block.ID() {
		t.Fatalf("wrong block returned")
	}

	// duplicate insert
	dup := testBlock(t, key, "s1")
	err = tangle.Insert(dup)
	if !cm.IsStore(err, cm.KeyAlreadyExists) {
		t.Fatalf("expected KeyAlreadyExists, got %v", err)
	}
	if l := tangle.Len(); l != 1 {
		t.Fatalf("duplicate insert should not grow the tangle, got %d", l)
	}

	// tampered block
	bad := testBlock(t, key, "s2")
	bad.Signature = block.Signature
	err = tangle.Insert(bad)
	if !cm.IsStore(err, cm.InvalidSignature) {
		t.Fatalf("expected InvalidSignature, got %v", err)
	}
}

func TestTangleTips(t *testing.T) {
	key := testKey(t)
	tangle := NewTangle()

	genesis := testBlock(t, key, "s1")
	if err := tangle.Insert(genesis); err != nil {
		t.Fatalf("err: %v", err)
	}

	tips := tangle.Tips()
	if len(tips) != 1 || tips[0] != genesis.ID() {
		t.Fatalf("genesis should be the only tip, got %v", tips)
	}

	child := testBlock(t, key, "s2", genesis.ID())
	if err := tangle.Insert(child); err != nil {
		t.Fatalf("err: %v", err)
	}

	tips = tangle.Tips()
	if len(tips) != 1 || tips[0] != child.ID() {
		t.Fatalf("child should replace genesis as tip, got %v", tips)
	}
}

func TestBadgerStore(t *testing.T) {
	os.Mkdir("test_data", os.ModeDir|0700)
	dir, err := ioutil.TempDir("test_data", "ecoblock")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	defer os.RemoveAll(dir)

	dbPath := path.Join(dir, "badger_db")

	store, err := NewBadgerStore(dbPath)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	key := testKey(t)
	tangle := NewTangleFromStore(store)

	b1 := testBlock(t, key, "s1")
	b2 := testBlock(t, key, "s2", b1.ID())

	for _, b := range []*Block{b1, b2} {
		if err := tangle.Insert(b); err != nil {
			t.Fatalf("err: %v", err)
		}
	}

	if err := tangle.Close(); err != nil {
		t.Fatalf("err: %v", err)
	}

	// reload from disk
	reloaded, err := LoadBadgerStore(dbPath)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	defer reloaded.Close()

	if !reloaded.NeedBootstrap() {
		t.Fatalf("reloaded store should need bootstrap")
	}
	if l := reloaded.Len(); l != 2 {
		t.Fatalf("reloaded store should contain 2 blocks, got %d", l)
	}

	got, err := reloaded.GetBlock(b2.ID())
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	ok, err := got.Verify()
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !ok {
		t.Fatalf("reloaded block should verify")
	}

	tips := reloaded.Tips()
	if len(tips) != 1 || tips[0] != b2.ID() {
		t.Fatalf("expected single tip %s, got %v", b2.ID(), tips)
	}
}
