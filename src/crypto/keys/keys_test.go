package keys

import (
	"io/ioutil"
	"os"
	"path"
	"reflect"
	"strings"
	"testing"

	"github.com/ecoblock/ecoblock/src/crypto"
)

func TestKeyfile(t *testing.T) {

	// Create a test dir
	os.Mkdir("test_data", os.ModeDir|0700)
	dir, err := ioutil.TempDir("test_data", "ecoblock")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	keyfile := NewKeyfile(path.Join(dir, "node_keypair.bin"))

	// Try a read, should get nothing
	key, err := keyfile.ReadKey()
	if err == nil {
		t.Fatalf("ReadKey should generate an error")
	}
	if key != nil {
		t.Fatalf("key is not nil")
	}

	// Initialize a key and try a write
	key, _ = GenerateECDSAKey()

	if err := keyfile.WriteKey(key); err != nil {
		t.Fatalf("err: %v", err)
	}

	// Try a read, should get key
	nKey, err := keyfile.ReadKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if !reflect.DeepEqual(*nKey, *key) {
		t.Fatalf("Keys do not match")
	}
}

func TestReadGarbageKeyfile(t *testing.T) {

	os.Mkdir("test_data", os.ModeDir|0700)
	dir, err := ioutil.TempDir("test_data", "ecoblock")
	if err != nil {
		t.Fatalf("err: %v ", err)
	}
	defer os.RemoveAll(dir)

	keyPath := path.Join(dir, "node_keypair.bin")
	if err := ioutil.WriteFile(keyPath, []byte("not a key"), 0600); err != nil {
		t.Fatalf("err: %v", err)
	}

	if _, err := NewKeyfile(keyPath).ReadKey(); err == nil {
		t.Fatalf("ReadKey should reject malformed key bytes")
	}
}

func TestParsePrivateKeyRoundTrip(t *testing.T) {
	key, err := GenerateECDSAKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	dump := DumpPrivateKey(key)

	parsed, err := ParsePrivateKey(dump)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if parsed.D.Cmp(key.D) != 0 {
		t.Fatalf("D value mismatch")
	}
	if PublicKeyHex(&parsed.PublicKey) != PublicKeyHex(&key.PublicKey) {
		t.Fatalf("public key mismatch")
	}
	if PrivateKeyHex(parsed) != PrivateKeyHex(key) {
		t.Fatalf("private key hex mismatch")
	}
}

func TestSignVerify(t *testing.T) {
	key, err := GenerateECDSAKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	msg := crypto.SHA256([]byte("sensor reading"))

	r, s, err := Sign(key, msg)
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	if !Verify(&key.PublicKey, msg, r, s) {
		t.Fatalf("signature should verify")
	}

	// round-trip through the string encoding
	r2, s2, err := DecodeSignature(EncodeSignature(r, s))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !Verify(&key.PublicKey, msg, r2, s2) {
		t.Fatalf("decoded signature should verify")
	}
}

func TestPublicKeyHex(t *testing.T) {
	key, err := GenerateECDSAKey()
	if err != nil {
		t.Fatalf("err: %v", err)
	}

	hex := PublicKeyHex(&key.PublicKey)
	if !strings.HasPrefix(hex, "0X") {
		t.Fatalf("expected 0X prefix, got %s", hex)
	}

	pub := ToPublicKey(FromPublicKey(&key.PublicKey))
	if PublicKeyHex(pub) != hex {
		t.Fatalf("public key did not round-trip")
	}
}
