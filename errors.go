package esni

import "fmt"

// Error types returned by the ESNI pipeline, one per distinct failure.
// None carries secret material, only offsets and field names where useful
// for diagnosis.

type (
	// ErrDecode indicates malformed ESNIKeys bytes: a truncated buffer, an
	// overrunning length prefix, trailing bytes after the outermost
	// structure, or a not_before later than not_after.
	ErrDecode struct {
		Field string // name of the field being decoded when the error occurred
		Err   error
	}

	// ErrExpired indicates the record's [not_before, not_after] window does
	// not contain the current time.
	ErrExpired struct {
		Now, NotBefore, NotAfter int64
	}

	// ErrNoCommonGroup indicates the Negotiator found no named group in
	// common between the record's key shares and the caller's supported
	// groups.
	ErrNoCommonGroup struct{}

	// ErrNoCommonSuite indicates the Negotiator found no TLS 1.3 cipher
	// suite in common between the record's offerings and the caller's
	// supported suites.
	ErrNoCommonSuite struct{}

	// ErrNameTooLong indicates the framed ServerNameList exceeds the
	// record's padded_length.
	ErrNameTooLong struct {
		FramedLen, PaddedLength int
	}

	// ErrKeyExchangeFailed indicates the peer's key share was malformed for
	// its named group, or the shared-secret computation rejected it (e.g. a
	// low-order point).
	ErrKeyExchangeFailed struct {
		Err error
	}

	// ErrSealFailed indicates the AEAD primitive refused to seal the inner
	// SNI.
	ErrSealFailed struct {
		Err error
	}

	// ErrRandomSourceFailed indicates the injected Randomness collaborator
	// failed to fill a buffer.
	ErrRandomSourceFailed struct {
		Err error
	}

	// ErrClockFailed indicates the injected Clock collaborator could not
	// produce a current time.
	ErrClockFailed struct {
		Err error
	}
)

func (e *ErrDecode) Error() string {
	return fmt.Sprintf("esni: decode %s: %v", e.Field, e.Err)
}

func (e *ErrDecode) Unwrap() error { return e.Err }

func (e *ErrExpired) Error() string {
	return fmt.Sprintf("esni: record not valid at %d (window [%d, %d])", e.Now, e.NotBefore, e.NotAfter)
}

func (e *ErrNoCommonGroup) Error() string { return "esni: no common named group with the record" }

func (e *ErrNoCommonSuite) Error() string {
	return "esni: no common TLS 1.3 cipher suite with the record"
}

func (e *ErrNameTooLong) Error() string {
	return fmt.Sprintf("esni: server name list (%d bytes) exceeds padded_length %d", e.FramedLen, e.PaddedLength)
}

func (e *ErrKeyExchangeFailed) Error() string {
	return fmt.Sprintf("esni: key exchange failed: %v", e.Err)
}
func (e *ErrKeyExchangeFailed) Unwrap() error { return e.Err }

func (e *ErrSealFailed) Error() string { return fmt.Sprintf("esni: seal failed: %v", e.Err) }
func (e *ErrSealFailed) Unwrap() error { return e.Err }

func (e *ErrRandomSourceFailed) Error() string {
	return fmt.Sprintf("esni: random source failed: %v", e.Err)
}
func (e *ErrRandomSourceFailed) Unwrap() error { return e.Err }

func (e *ErrClockFailed) Error() string { return fmt.Sprintf("esni: clock failed: %v", e.Err) }
func (e *ErrClockFailed) Unwrap() error { return e.Err }
