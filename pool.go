package chainverify

import (
	"fmt"
	"sync/atomic"
)

// upstreamPool is the set of recursive resolvers questions are sent to.
type upstreamPool struct {
	ipv4      []exchanger
	ipv4Next  atomic.Uint32
	ipv4Count atomic.Uint32

	ipv6      []exchanger
	ipv6Next  atomic.Uint32
	ipv6Count atomic.Uint32

	doh      []exchanger
	dohNext  atomic.Uint32
	dohCount atomic.Uint32

	ipv6Probe *ipv6Probe
}

func newUpstreamPool(upstreams []string, dohURLs []string) (*upstreamPool, error) {
	pool := &upstreamPool{}

	ipv6Addresses := make([]string, 0, len(upstreams))
	for _, upstream := range upstreams {
		ip, port, err := splitUpstream(upstream)
		if err != nil {
			return nil, err
		}

		ns := newNameserver(ip, port)
		if ip.To4() != nil {
			pool.ipv4 = append(pool.ipv4, ns)
		} else {
			pool.ipv6 = append(pool.ipv6, ns)
			ipv6Addresses = append(ipv6Addresses, ns.addr)
		}
	}

	for _, url := range dohURLs {
		pool.doh = append(pool.doh, newDohServer(url))
	}

	if pool.empty() {
		return nil, fmt.Errorf("%w: no nameservers or doh urls given", ErrNoUpstreamsConfigured)
	}

	pool.ipv6Probe = newIPv6Probe(ipv6Addresses)
	pool.updateCount()

	return pool, nil
}

func (pool *upstreamPool) updateCount() {
	pool.ipv4Count.Store(uint32(len(pool.ipv4)))
	pool.ipv6Count.Store(uint32(len(pool.ipv6)))
	pool.dohCount.Store(uint32(len(pool.doh)))
}

func (pool *upstreamPool) empty() bool {
	return len(pool.ipv4) == 0 && len(pool.ipv6) == 0 && len(pool.doh) == 0
}

func (pool *upstreamPool) hasIPv4() bool {
	return pool.ipv4Count.Load() > 0
}

func (pool *upstreamPool) hasIPv6() bool {
	return pool.ipv6Count.Load() > 0
}

func (pool *upstreamPool) hasDoH() bool {
	return pool.dohCount.Load() > 0
}

func (pool *upstreamPool) getIPv4() exchanger {
	return roundRobin(pool.ipv4, &pool.ipv4Next, &pool.ipv4Count)
}

func (pool *upstreamPool) getIPv6() exchanger {
	return roundRobin(pool.ipv6, &pool.ipv6Next, &pool.ipv6Count)
}

func (pool *upstreamPool) getDoH() exchanger {
	return roundRobin(pool.doh, &pool.dohNext, &pool.dohCount)
}

func roundRobin(servers []exchanger, next, count *atomic.Uint32) exchanger {
	total := count.Load()
	if total == 0 {
		return nil
	}

	// Increments to the next server each time.
	// There's a race condition here, but the outcome isn't "important" enough to warrant locking.
	idx := next.Load() % total
	next.Store(idx + 1)

	if int(idx) < len(servers) {
		return servers[idx]
	}
	return nil
}

// ipv6Usable reports whether the pool's IPv6 upstreams should be used.
func (pool *upstreamPool) ipv6Usable() bool {
	return pool.hasIPv6() && (pool.ipv6Probe == nil || pool.ipv6Probe.available())
}

// getServer picks the next upstream for attempt n (zero based). DoH is preferred when configured,
// then IPv6 when reachable. Later attempts alternate between the families that are available.
func (pool *upstreamPool) getServer(attempt uint) exchanger {
	candidates := make([]func() exchanger, 0, 3)
	if pool.hasDoH() {
		candidates = append(candidates, pool.getDoH)
	}
	if pool.ipv6Usable() {
		candidates = append(candidates, pool.getIPv6)
	}
	if pool.hasIPv4() {
		candidates = append(candidates, pool.getIPv4)
	}
	if len(candidates) == 0 && pool.hasIPv6() {
		// IPv6 is all we have, so we'll try it regardless.
		candidates = append(candidates, pool.getIPv6)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[int(attempt)%len(candidates)]()
}
