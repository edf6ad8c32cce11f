package chainverify

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// dnsClientFactory defines a factory function for creating a DNS client.
type dnsClientFactory func(string) dnsClient

type dnsClient interface {
	ExchangeContext(context.Context, *dns.Msg, string) (*dns.Msg, time.Duration, error)
}

// nameserver is a single upstream recursive resolver reached over UDP, falling back to TCP.
type nameserver struct {
	addr string

	dnsClientFactory dnsClientFactory

	metricsLock         sync.Mutex
	numberOfRequests    uint32
	totalResponseTime   time.Duration
	averageResponseTime time.Duration
	numberOfTcpRequests uint32
	protocolRatio       float32
}

func newNameserver(ip net.IP, port string) *nameserver {
	return &nameserver{
		// Formats correctly for both ipv4 and ipv6.
		addr: net.JoinHostPort(ip.String(), port),
	}
}

func (*nameserver) defaultDnsClientFactory(protocol string) dnsClient {
	timeout := TimeoutUDP
	if protocol == "tcp" {
		timeout = TimeoutTCP
	}
	return &dns.Client{Net: protocol, Timeout: timeout, UDPSize: dns.DefaultMsgSize}
}

func (nameserver *nameserver) String() string {
	return nameserver.addr
}

func (nameserver *nameserver) exchange(ctx context.Context, m *dns.Msg) *Response {
	factory := nameserver.defaultDnsClientFactory
	if nameserver.dnsClientFactory != nil {
		factory = nameserver.dnsClientFactory
	}

	if m == nil || len(m.Question) == 0 {
		return ResponseError(fmt.Errorf("%w: %s", ErrNilMessageSentToExchange, nameserver.addr))
	}

	r := Response{}
	for _, protocol := range []string{"udp", "tcp"} {
		client := factory(protocol)

		r.Msg, r.Duration, r.Err = client.ExchangeContext(ctx, m, nameserver.addr)

		logQuery(ctx, m, protocol+"://"+nameserver.addr, &r)

		go nameserver.updateMetrics(protocol, r.Duration)

		// If we got an error back, we'll continue to maybe try again.
		if r.HasError() {
			continue
		}

		// Then we can return straight away.
		if !r.Msg.Truncated {
			return &r
		}
	}

	// r here may have an error. It might be truncated. But it's the best we've got.
	return &r
}

func (nameserver *nameserver) updateMetrics(protocol string, duration time.Duration) {
	nameserver.metricsLock.Lock()

	nameserver.numberOfRequests++

	nameserver.totalResponseTime = nameserver.totalResponseTime + duration
	nameserver.averageResponseTime = nameserver.totalResponseTime / time.Duration(nameserver.numberOfRequests)

	if protocol == "tcp" {
		nameserver.numberOfTcpRequests++
	}

	nameserver.protocolRatio = float32(nameserver.numberOfTcpRequests) / float32(nameserver.numberOfRequests)

	nameserver.metricsLock.Unlock()
}

// logQuery reports a single upstream exchange to the Query logger.
func logQuery(ctx context.Context, m *dns.Msg, server string, r *Response) {
	shortId := "unknown"
	sequence := uint32(0)
	if trace := TraceFromContext(ctx); trace != nil {
		shortId = trace.ShortID()
		sequence = trace.Query()
	}

	outcome := "error"
	if !r.IsEmpty() {
		outcome = RcodeToString(r.Msg.Rcode)
	}

	Query(fmt.Sprintf(
		"%s-%d: %s taken querying [%s] %s on %s (%s)",
		shortId,
		sequence,
		r.Duration,
		m.Question[0].Name,
		TypeToString(m.Question[0].Qtype),
		server,
		outcome,
	))
}
