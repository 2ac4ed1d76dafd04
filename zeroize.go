package esni

// zeroize overwrites b with zero bytes in place. Best-effort hygiene for
// the short-lived shared secret, derived key/IV, and plaintext inner-SNI
// buffers: it does not defend against a GC-relocated copy or a
// register spill, but it closes the easy window where a stale buffer
// lingers in a freed allocation.
func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
