package esni

import "time"

// Clock supplies the current time as seconds since the Unix epoch.
// PrepareESNI does not take a Clock: it takes the current time as a plain
// argument, which a caller can obtain from a Clock.
type Clock interface {
	NowSeconds() (int64, error)
}

// SystemClock is the default Clock, backed by time.Now.
type SystemClock struct{}

// NowSeconds implements Clock.
func (SystemClock) NowSeconds() (int64, error) { return time.Now().Unix(), nil }
