package esni

import "encoding/binary"

// tls13LabelPrefix is the fixed six-byte prefix TLS 1.3's HKDF-Expand-Label
// construction prepends to every label, including ESNI's "esni key" and
// "esni iv". Note the trailing space.
var tls13LabelPrefix = []byte("tls13 ")

// hkdfExpandLabelInfo builds the `info` parameter for HKDF-Expand following
// the TLS 1.3 HKDF-Expand-Label construction:
//
//	uint16(outputLen) || uint8(len("tls13 " || label)) || "tls13 " || label || uint8(len(context)) || context
func hkdfExpandLabelInfo(outputLen int, label string, context []byte) []byte {
	fullLabel := append(append([]byte{}, tls13LabelPrefix...), label...)

	info := make([]byte, 0, 2+1+len(fullLabel)+1+len(context))
	info = binary.BigEndian.AppendUint16(info, uint16(outputLen))
	info = append(info, byte(len(fullLabel)))
	info = append(info, fullLabel...)
	info = append(info, byte(len(context)))
	info = append(info, context...)

	return info
}
