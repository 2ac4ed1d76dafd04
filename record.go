package esni

import (
	"fmt"

	"github.com/enetx/esni/internal/wire"
)

// ESNIKeys is the decoded form of a server's published ESNI key material, as
// fetched (Base64-decoded) from the `_esni.<domain>` TXT record. It is
// immutable once decoded.
type ESNIKeys struct {
	Version      uint16
	Checksum     [4]byte // not validated by this client profile
	Keys         []wire.KeyShareEntry
	CipherSuites []uint16
	PaddedLength uint16
	NotBefore    int64
	NotAfter     int64
	Extensions   []byte // opaque trailer, parsed but unused
	raw          []byte // exact bytes this value was decoded from
}

// Raw returns the exact byte slice the record was decoded from. The record
// digest must hash these bytes, not a re-encoding, so callers that need to
// hash the record should use this rather than re-running Encode.
func (k *ESNIKeys) Raw() []byte { return k.raw }

// Encode returns the wire encoding of k. It is used by round-trip tests and
// by fixtures that build an ESNIKeys from scratch; PrepareESNI itself always
// hashes Raw(), not a fresh Encode, so re-encoding and decoding is never on
// the hot path.
func (k *ESNIKeys) Encode() []byte {
	w := wire.NewWriter()
	w.Uint16(k.Version)
	w.Raw(k.Checksum[:])

	keys := wire.NewWriter()
	for _, entry := range k.Keys {
		entry.Encode(keys)
	}
	w.Vector16(keys.Bytes())

	suites := wire.NewWriter()
	for _, s := range k.CipherSuites {
		suites.Uint16(s)
	}
	w.Vector16(suites.Bytes())

	w.Uint16(k.PaddedLength)
	w.Uint64(uint64(k.NotBefore))
	w.Uint64(uint64(k.NotAfter))
	w.Vector16(k.Extensions)

	return w.Bytes()
}

// DecodeESNIKeys parses the Base64-decoded bytes of a TXT-record payload
// into an ESNIKeys value. It validates structure only — not whether the
// current time falls inside the [not_before, not_after] window, which is the
// caller's job (PrepareESNI does it against its now argument).
//
// Decoding fails if the buffer is exhausted early, a length prefix overruns
// the remaining bytes, a length prefix is malformed, trailing bytes remain
// after the outermost structure, or not_before is later than not_after.
func DecodeESNIKeys(b []byte) (*ESNIKeys, error) {
	r := wire.NewReader(b)

	version, err := r.Uint16()
	if err != nil {
		return nil, &ErrDecode{Field: "version", Err: err}
	}

	checksumBytes, err := r.Bytes(4)
	if err != nil {
		return nil, &ErrDecode{Field: "checksum", Err: err}
	}
	var checksum [4]byte
	copy(checksum[:], checksumBytes)

	keysBytes, err := r.Vector16()
	if err != nil {
		return nil, &ErrDecode{Field: "keys", Err: err}
	}
	keys, err := decodeKeyShareEntries(keysBytes)
	if err != nil {
		return nil, &ErrDecode{Field: "keys", Err: err}
	}

	suitesBytes, err := r.Vector16()
	if err != nil {
		return nil, &ErrDecode{Field: "cipher_suites", Err: err}
	}
	suites, err := decodeCipherSuites(suitesBytes)
	if err != nil {
		return nil, &ErrDecode{Field: "cipher_suites", Err: err}
	}

	paddedLength, err := r.Uint16()
	if err != nil {
		return nil, &ErrDecode{Field: "padded_length", Err: err}
	}

	notBefore, err := r.Uint64()
	if err != nil {
		return nil, &ErrDecode{Field: "not_before", Err: err}
	}

	notAfter, err := r.Uint64()
	if err != nil {
		return nil, &ErrDecode{Field: "not_after", Err: err}
	}

	extensions, err := r.Vector16()
	if err != nil {
		return nil, &ErrDecode{Field: "extensions", Err: err}
	}

	if r.Remaining() != 0 {
		return nil, &ErrDecode{Field: "<trailing>", Err: fmt.Errorf("%d trailing bytes", r.Remaining())}
	}

	if int64(notBefore) > int64(notAfter) {
		return nil, &ErrDecode{
			Field: "not_before/not_after",
			Err:   fmt.Errorf("not_before (%d) > not_after (%d)", notBefore, notAfter),
		}
	}

	raw := make([]byte, len(b))
	copy(raw, b)

	ext := make([]byte, len(extensions))
	copy(ext, extensions)

	return &ESNIKeys{
		Version:      version,
		Checksum:     checksum,
		Keys:         keys,
		CipherSuites: suites,
		PaddedLength: paddedLength,
		NotBefore:    int64(notBefore),
		NotAfter:     int64(notAfter),
		Extensions:   ext,
		raw:          raw,
	}, nil
}

func decodeKeyShareEntries(b []byte) ([]wire.KeyShareEntry, error) {
	r := wire.NewReader(b)

	var entries []wire.KeyShareEntry
	for r.Remaining() > 0 {
		entry, err := wire.ReadKeyShareEntry(r)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func decodeCipherSuites(b []byte) ([]uint16, error) {
	r := wire.NewReader(b)

	var suites []uint16
	for r.Remaining() > 0 {
		suite, err := r.Uint16()
		if err != nil {
			return nil, err
		}
		suites = append(suites, suite)
	}

	return suites, nil
}

// checkValidity reports whether now falls within [NotBefore, NotAfter].
func (k *ESNIKeys) checkValidity(now int64) error {
	if now < k.NotBefore || now > k.NotAfter {
		return &ErrExpired{Now: now, NotBefore: k.NotBefore, NotAfter: k.NotAfter}
	}
	return nil
}
