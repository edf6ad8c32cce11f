package chainverify

import (
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/nsmithuk/chainverify/dnssec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, now *time.Time) *LRUCache {
	cache, err := NewLRUCache(8)
	require.NoError(t, err)
	cache.now = func() time.Time {
		return *now
	}
	return cache
}

func TestLRUCache_GetAndExpiry(t *testing.T) {
	now := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)
	cache := newTestCache(t, &now)

	q := dnssec.NewQuestion("example.com.", dns.TypeA)
	query := newQuery("example.com.", dns.TypeA)
	msg := newReply(query, dns.RcodeSuccess, newRR("example.com. 60 IN A 192.0.2.1"))

	cached, err := cache.Get(q)
	assert.NoError(t, err)
	assert.Nil(t, cached)

	require.NoError(t, cache.Update(q, msg))
	assert.Equal(t, 1, cache.Len())

	now = now.Add(59 * time.Second)
	cached, err = cache.Get(q)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, msg.String(), cached.String())

	// Callers are free to modify what they get back.
	cached.Answer = nil
	again, _ := cache.Get(q)
	assert.Len(t, again.Answer, 1)

	now = now.Add(time.Second)
	cached, err = cache.Get(q)
	assert.NoError(t, err)
	assert.Nil(t, cached)
	assert.Equal(t, 0, cache.Len())
}

func TestLRUCache_UpdateFiltering(t *testing.T) {
	now := time.Now()
	cache := newTestCache(t, &now)

	query := newQuery("example.com.", dns.TypeA)

	assert.ErrorIs(t, cache.Update(dnssec.NewQuestion("example.com.", dns.TypeA), nil), ErrEmptyResponse)

	// Failures aren't cached.
	servfail := newReply(query, dns.RcodeServerFailure, newRR("example.com. 60 IN A 192.0.2.1"))
	require.NoError(t, cache.Update(dnssec.NewQuestion("example.com.", dns.TypeA), servfail))
	assert.Equal(t, 0, cache.Len())

	// Nor are answers with a zero ttl.
	zero := newReply(query, dns.RcodeSuccess, newRR("example.com. 0 IN A 192.0.2.1"))
	require.NoError(t, cache.Update(dnssec.NewQuestion("example.com.", dns.TypeA), zero))
	assert.Equal(t, 0, cache.Len())

	nxdomain := newReply(newQuery("missing.example.com.", dns.TypeA), dns.RcodeNameError)
	nxdomain.Ns = []dns.RR{newRR("example.com. 300 IN SOA ns1.example.com. hostmaster.example.com. 1 7200 3600 1209600 300")}
	require.NoError(t, cache.Update(dnssec.NewQuestion("missing.example.com.", dns.TypeA), nxdomain))
	assert.Equal(t, 1, cache.Len())

	// Modifying the original after the fact doesn't alter the cache.
	nxdomain.Rcode = dns.RcodeRefused
	cached, _ := cache.Get(dnssec.NewQuestion("missing.example.com.", dns.TypeA))
	require.NotNil(t, cached)
	assert.Equal(t, dns.RcodeNameError, cached.Rcode)
}

func TestLRUCache_KeyedByQuestion(t *testing.T) {
	now := time.Now()
	cache := newTestCache(t, &now)

	a := newReply(newQuery("example.com.", dns.TypeA), dns.RcodeSuccess, newRR("example.com. 60 IN A 192.0.2.1"))
	require.NoError(t, cache.Update(dnssec.NewQuestion("example.com.", dns.TypeA), a))

	cached, _ := cache.Get(dnssec.NewQuestion("example.com.", dns.TypeAAAA))
	assert.Nil(t, cached)

	cached, _ = cache.Get(dnssec.NewQuestion("example.com.", dns.TypeA))
	assert.NotNil(t, cached)
}

func TestNewLRUCache_InvalidSize(t *testing.T) {
	_, err := NewLRUCache(0)
	assert.Error(t, err)
}
