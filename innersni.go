package esni

import "github.com/enetx/esni/internal/wire"

// buildClientESNIInner constructs ClientESNIInner = nonce || padded
// ServerNameList, given the hostname this connection is really
// destined for, the record's padded_length, and a fresh 16-byte nonce.
//
// The returned slice has length exactly 16 + 2 + paddedLength: the nonce,
// the list's own unpadded 2-byte length prefix, and paddedLength bytes of
// content (the real entries followed by zero padding).
func buildClientESNIInner(hostname string, paddedLength uint16, nonce [16]byte) ([]byte, error) {
	snl := wire.EncodeHostNameList(hostname)
	// EncodeHostNameList prefixes with its own unpadded 2-byte length;
	// strip it back off so we can re-frame with zero padding to paddedLength.
	if len(snl) < 2 {
		return nil, &ErrNameTooLong{FramedLen: len(snl), PaddedLength: int(paddedLength)}
	}
	content := snl[2:]

	if len(content) > int(paddedLength) {
		return nil, &ErrNameTooLong{FramedLen: len(content), PaddedLength: int(paddedLength)}
	}

	w := wire.NewWriter()
	w.Raw(nonce[:])
	w.Uint16(uint16(len(content)))
	w.Raw(content)
	w.Zero(int(paddedLength) - len(content))

	return w.Bytes(), nil
}
