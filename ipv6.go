package chainverify

import (
	"net"
	"sync/atomic"
	"time"
)

var ipv6ProbeTimeout = 1 * time.Second

// ipv6Probe determines whether any of a set of IPv6 upstreams can be reached.
type ipv6Probe struct {
	addresses []string
	dial      func(network, address string, timeout time.Duration) (net.Conn, error)

	started   atomic.Bool
	answered  atomic.Bool
	reachable atomic.Bool
}

func newIPv6Probe(addresses []string) *ipv6Probe {
	return &ipv6Probe{
		addresses: addresses,
		dial:      net.DialTimeout,
	}
}

// available return true if IPv6 connectivity to an upstream is found.
// If the check has not been performed, it won't block, and (initially) will return false.
func (p *ipv6Probe) available() bool {
	if p.answered.Load() {
		return p.reachable.Load()
	}
	if p.started.CompareAndSwap(false, true) {
		go p.update()
	}
	return false
}

func (p *ipv6Probe) update() {
	defer p.answered.Store(true)

	for _, address := range p.addresses {
		conn, err := p.dial("udp6", address, ipv6ProbeTimeout)
		p.reachable.Store(err == nil)
		if err == nil {
			conn.Close()
			return
		}
	}
}
