// Package wire implements the small set of TLS 1.3 / ESNI wire primitives
// shared by the record decoder and the inner-SNI builder: big-endian
// fixed-width integers and 16-bit length-prefixed vectors.
package wire

import (
	"encoding/binary"
	"errors"
)

// ErrTruncated is returned whenever a read runs past the end of the buffer.
var ErrTruncated = errors.New("truncated")

// Reader consumes a byte slice left to right, network byte order.
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps b for sequential reading. b is not copied or retained
// beyond the lifetime of the Reader's caller.
func NewReader(b []byte) *Reader { return &Reader{buf: b} }

// Remaining reports how many bytes are left unread.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// Uint8 reads one byte.
func (r *Reader) Uint8() (byte, error) {
	if r.Remaining() < 1 {
		return 0, ErrTruncated
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

// Uint16 reads a big-endian 16-bit integer.
func (r *Reader) Uint16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint16(r.buf[r.off:])
	r.off += 2
	return v, nil
}

// Uint64 reads a big-endian 64-bit integer.
func (r *Reader) Uint64() (uint64, error) {
	if r.Remaining() < 8 {
		return 0, ErrTruncated
	}
	v := binary.BigEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}

// Bytes reads exactly n raw bytes. The returned slice aliases the Reader's
// underlying buffer; callers that need to retain it across further reads
// must copy it.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrTruncated
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// Vector16 reads a 2-byte length prefix followed by that many bytes — the
// `opaque <0..2^16-1>` vector shape used throughout ESNIKeys.
func (r *Reader) Vector16() ([]byte, error) {
	n, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	return r.Bytes(int(n))
}

// Sub returns a Reader scoped to exactly the next n bytes, advancing this
// Reader past them. Used to decode a length-prefixed vector's contents as
// its own bounded stream (e.g. the `keys` or `cipher_suites` vectors).
func (r *Reader) Sub(n int) (*Reader, error) {
	b, err := r.Bytes(n)
	if err != nil {
		return nil, err
	}
	return NewReader(b), nil
}

// Writer accumulates bytes in network byte order.
type Writer struct{ buf []byte }

// NewWriter returns an empty Writer.
func NewWriter() *Writer { return &Writer{} }

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Uint8 appends one byte.
func (w *Writer) Uint8(v byte) { w.buf = append(w.buf, v) }

// Uint16 appends a big-endian 16-bit integer.
func (w *Writer) Uint16(v uint16) {
	w.buf = binary.BigEndian.AppendUint16(w.buf, v)
}

// Uint64 appends a big-endian 64-bit integer.
func (w *Writer) Uint64(v uint64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, v)
}

// Raw appends b verbatim.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// Zero appends n zero bytes.
func (w *Writer) Zero(n int) {
	for i := 0; i < n; i++ {
		w.buf = append(w.buf, 0)
	}
}

// Vector16 appends a 2-byte length prefix followed by b. Panics if b is
// longer than a 16-bit vector can hold — every caller in this module
// constructs b from bounded, pre-validated inputs.
func (w *Writer) Vector16(b []byte) {
	if len(b) > 0xffff {
		panic("wire: vector16 payload too long")
	}
	w.Uint16(uint16(len(b)))
	w.Raw(b)
}

// KeyShareEntry is `group(2) || payload(opaque<0..2^16-1>)`, used both for
// the record's advertised keys and for the client's ephemeral share.
type KeyShareEntry struct {
	Group   uint16
	Payload []byte
}

// Encode appends the wire encoding of e to w.
func (e KeyShareEntry) Encode(w *Writer) {
	w.Uint16(e.Group)
	w.Vector16(e.Payload)
}

// ReadKeyShareEntry decodes one KeyShareEntry from r.
func ReadKeyShareEntry(r *Reader) (KeyShareEntry, error) {
	group, err := r.Uint16()
	if err != nil {
		return KeyShareEntry{}, err
	}
	payload, err := r.Vector16()
	if err != nil {
		return KeyShareEntry{}, err
	}
	// Copy: payload aliases r's backing array, which the caller may reuse.
	out := make([]byte, len(payload))
	copy(out, payload)
	return KeyShareEntry{Group: group, Payload: out}, nil
}

const (
	// HostNameType is the single ServerNameType this profile supports.
	HostNameType = 0
)

// EncodeHostNameList returns the wire encoding of a ServerNameList
// containing exactly one HostName entry: `2-byte list length || name_type(1)
// || hostname(opaque<0..2^16-1>)`.
func EncodeHostNameList(hostname string) []byte {
	entry := NewWriter()
	entry.Uint8(HostNameType)
	entry.Vector16([]byte(hostname))

	list := NewWriter()
	list.Vector16(entry.Bytes())
	return list.Bytes()
}
