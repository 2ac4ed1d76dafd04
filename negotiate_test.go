package esni

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/enetx/esni/internal/wire"
)

func recordWithGroups(groups ...uint16) *ESNIKeys {
	rec := sampleRecord()
	rec.Keys = nil
	for _, g := range groups {
		rec.Keys = append(rec.Keys, wire.KeyShareEntry{Group: g, Payload: bytes.Repeat([]byte{0x01}, 32)})
	}
	return rec
}

func TestNegotiatorGroupPreference(t *testing.T) {
	t.Parallel()

	rec := recordWithGroups(GroupX25519, GroupP256)
	suites := []uint16{SuiteAES128GCMSHA256}

	cases := []struct {
		name      string
		local     []uint16
		wantGroup uint16
		wantErr   bool
	}{
		{name: "P-256 preferred", local: []uint16{GroupP256, GroupX25519}, wantGroup: GroupP256},
		{name: "X25519 only", local: []uint16{GroupX25519}, wantGroup: GroupX25519},
		{name: "disjoint", local: []uint16{GroupP384}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			hs, err := PrepareESNI(rec.Encode(), 1_500, tc.local, suites)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected NoCommonGroup, got nil")
				}
				if _, ok := err.(*ErrNoCommonGroup); !ok {
					t.Fatalf("expected *ErrNoCommonGroup, got %T: %v", err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hs.PeerShare.Group != tc.wantGroup {
				t.Fatalf("selected group = 0x%04x, want 0x%04x", hs.PeerShare.Group, tc.wantGroup)
			}
		})
	}
}

func TestNegotiatorSuiteServerPreference(t *testing.T) {
	t.Parallel()

	rec := sampleRecord()
	rec.CipherSuites = []uint16{SuiteAES256GCMSHA384, SuiteAES128GCMSHA256}

	hs, err := PrepareESNI(rec.Encode(), 1_500, []uint16{GroupX25519, GroupP256}, []uint16{SuiteAES128GCMSHA256, SuiteAES256GCMSHA384})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if hs.Suite != SuiteAES256GCMSHA384 {
		t.Fatalf("suite = 0x%04x, want AES-256-GCM-SHA384 per record's own preference order", hs.Suite)
	}
}

func TestNegotiatorNoCommonSuite(t *testing.T) {
	t.Parallel()

	rec := sampleRecord()
	rec.CipherSuites = []uint16{SuiteAES256GCMSHA384}

	_, err := PrepareESNI(rec.Encode(), 1_500, []uint16{GroupX25519}, []uint16{SuiteAES128GCMSHA256})
	if _, ok := err.(*ErrNoCommonSuite); !ok {
		t.Fatalf("expected *ErrNoCommonSuite, got %T: %v", err, err)
	}
}

func TestPrepareESNIRecordDigestDeterminism(t *testing.T) {
	t.Parallel()

	rec := sampleRecord()
	encoded := rec.Encode()
	groups := []uint16{GroupX25519, GroupP256}
	suites := []uint16{SuiteAES128GCMSHA256}

	hs1, err := PrepareESNI(encoded, 1_500, groups, suites)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hs2, err := PrepareESNI(encoded, 1_500, groups, suites)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := sha256.Sum256(encoded)
	if !bytes.Equal(hs1.RecordDigest, want[:]) {
		t.Fatalf("record digest = %x, want %x", hs1.RecordDigest, want[:])
	}
	if !bytes.Equal(hs1.RecordDigest, hs2.RecordDigest) {
		t.Fatal("record digest is not deterministic across calls")
	}
}

func TestPrepareESNIExpired(t *testing.T) {
	t.Parallel()

	rec := sampleRecord()
	encoded := rec.Encode()

	if _, err := PrepareESNI(encoded, 999, []uint16{GroupX25519}, []uint16{SuiteAES128GCMSHA256}); err == nil {
		t.Fatal("expected Expired error before not_before")
	}
	if _, err := PrepareESNI(encoded, 2_001, []uint16{GroupX25519}, []uint16{SuiteAES128GCMSHA256}); err == nil {
		t.Fatal("expected Expired error after not_after")
	}
}
