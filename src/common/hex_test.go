package common

import (
	"bytes"
	"testing"
)

func TestHexRoundTrip(t *testing.T) {
	raw := []byte{0xde, 0xad, 0xbe, 0xef}

	enc := EncodeToString(raw)
	if enc != "0XDEADBEEF" {
		t.Fatalf("unexpected encoding: %s", enc)
	}

	dec, err := DecodeFromString(enc)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !bytes.Equal(dec, raw) {
		t.Fatalf("bytes did not round-trip: %v != %v", dec, raw)
	}
}

func TestDecodeFromStringErrors(t *testing.T) {
	if _, err := DecodeFromString("0"); err == nil {
		t.Fatalf("short string should be rejected")
	}
	if _, err := DecodeFromString("0Xzz"); err == nil {
		t.Fatalf("non-hex characters should be rejected")
	}
}
