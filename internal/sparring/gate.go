package sparring

import "sync"

// concurrencyGate bounds the number of simultaneously active challenges
// (spec §5 "Backpressure": max_concurrent_challenges, default 10). It is
// adapted from the teacher's per-IP token-bucket rate limiter
// (internal/api/ratelimit.go): same mutex-guarded-counter idiom, but
// generalized from "requests per minute per IP" (a refilling rate) to "at
// most N challenges in flight at once" (a plain counting semaphore) since
// spec §4.C7's admission rule is a concurrency cap, not a request rate.
type concurrencyGate struct {
	mu     sync.Mutex
	active int
	max    int
}

func newConcurrencyGate(max int) *concurrencyGate {
	return &concurrencyGate{max: max}
}

// acquire reports whether a new challenge may start; on true the caller
// must call release exactly once when the challenge concludes.
func (g *concurrencyGate) acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active >= g.max {
		return false
	}
	g.active++
	return true
}

func (g *concurrencyGate) release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.active > 0 {
		g.active--
	}
}
