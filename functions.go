package chainverify

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"
)

func TypeToString(t uint16) string {
	return dns.Type(t).String()
}

func RcodeToString(rcode int) string {
	if s, ok := dns.RcodeToString[rcode]; ok {
		return s
	}
	return fmt.Sprintf("RCODE%d", rcode)
}

// splitUpstream parses an upstream of the form host, host:port, [v6] or [v6]:port.
func splitUpstream(upstream string) (net.IP, string, error) {
	host, port, err := net.SplitHostPort(upstream)
	if err != nil {
		// No port given.
		host, port = strings.Trim(upstream, "[]"), DefaultPort
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil, "", fmt.Errorf("%w: %s is not an ip address", ErrInvalidUpstream, upstream)
	}
	return ip, port, nil
}

// minTtl returns the smallest ttl across every section of msg, capped at MaxAllowedTTL.
func minTtl(msg *dns.Msg) uint32 {
	ttl := MaxAllowedTTL
	for _, section := range [][]dns.RR{msg.Answer, msg.Ns, msg.Extra} {
		for _, rr := range section {
			if rr.Header().Rrtype == dns.TypeOPT {
				continue
			}
			ttl = min(ttl, rr.Header().Ttl)
		}
	}
	return ttl
}

func questionMatches(query, response *dns.Msg) bool {
	if len(query.Question) == 0 || len(response.Question) == 0 {
		return false
	}
	q, r := query.Question[0], response.Question[0]
	return q.Qtype == r.Qtype && q.Qclass == r.Qclass && strings.EqualFold(q.Name, r.Name)
}
