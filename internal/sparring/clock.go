package sparring

import "time"

// Clock is the monotonic time port spec §6 names (Clock.now_ms()).
// Sparring's deadline arithmetic goes through this port rather than calling
// time.Now() directly so tests can inject a fake clock to exercise the
// deadline-miss path deterministically (spec §8 "Sparring deadline").
type Clock interface {
	NowMs() int64
}

// SystemClock is the default Clock. It reports wall-clock Unix milliseconds
// (time.Now().UnixMilli()), which carry no monotonic reading.
type SystemClock struct{}

func (SystemClock) NowMs() int64 { return time.Now().UnixMilli() }
