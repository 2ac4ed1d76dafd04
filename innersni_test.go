package esni

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestBuildClientESNIInnerVector(t *testing.T) {
	t.Parallel()

	nonce := mustNonce(t, "c02bf339f89558acc47cd1c6b1ffa728")

	got, err := buildClientESNIInner("canbe.esni.defo.ie", 260, nonce)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLen := 16 + 2 + 260
	if len(got) != wantLen {
		t.Fatalf("length = %d, want %d", len(got), wantLen)
	}

	wantPrefix := mustHex(t, "c02bf339f89558acc47cd1c6b1ffa72800150000126361 6e62652e65736e692e6465666f2e6965")
	if !bytes.Equal(got[:len(wantPrefix)], wantPrefix) {
		t.Fatalf("prefix = %x, want %x", got[:len(wantPrefix)], wantPrefix)
	}

	for i := len(wantPrefix); i < len(got); i++ {
		if got[i] != 0 {
			t.Fatalf("byte %d = %#x, want zero padding", i, got[i])
		}
	}
}

func TestBuildClientESNIInnerNameTooLong(t *testing.T) {
	t.Parallel()

	var nonce [16]byte
	_, err := buildClientESNIInner("a-rather-long-hostname.example.com", 10, nonce)

	if _, ok := err.(*ErrNameTooLong); !ok {
		t.Fatalf("expected *ErrNameTooLong, got %v (%T)", err, err)
	}
}

func mustNonce(t *testing.T, s string) [16]byte {
	t.Helper()
	b := mustHex(t, s)
	var nonce [16]byte
	copy(nonce[:], b)
	return nonce
}

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(removeSpaces(s))
	if err != nil {
		t.Fatalf("invalid hex fixture: %v", err)
	}
	return b
}

func removeSpaces(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' || s[i] == '\n' || s[i] == '\t' {
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}
