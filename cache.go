package chainverify

import (
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/miekg/dns"
	"github.com/nsmithuk/chainverify/dnssec"
)

type CacheInterface interface {
	Get(question dnssec.Question) (*dns.Msg, error)
	Update(question dnssec.Question, msg *dns.Msg) error
}

type cacheEntry struct {
	msg     *dns.Msg
	expires time.Time
}

// LRUCache holds upstream responses until the smallest TTL within them passes.
type LRUCache struct {
	lru *lru.Cache
	now func() time.Time
}

func NewLRUCache(size int) (*LRUCache, error) {
	l, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("unable to create cache: %w", err)
	}
	return &LRUCache{lru: l, now: time.Now}, nil
}

// Get returns a copy of the cached message, or nil if there is no unexpired entry.
func (c *LRUCache) Get(question dnssec.Question) (*dns.Msg, error) {
	key := question.Key()

	value, ok := c.lru.Get(key)
	if !ok {
		return nil, nil
	}

	entry := value.(cacheEntry)
	if !c.now().Before(entry.expires) {
		c.lru.Remove(key)
		return nil, nil
	}
	return entry.msg.Copy(), nil
}

// Update stores msg. Only NOERROR and NXDOMAIN responses are kept.
func (c *LRUCache) Update(question dnssec.Question, msg *dns.Msg) error {
	if msg == nil {
		return ErrEmptyResponse
	}
	if msg.Rcode != dns.RcodeSuccess && msg.Rcode != dns.RcodeNameError {
		return nil
	}

	ttl := minTtl(msg)
	if ttl == 0 {
		return nil
	}

	c.lru.Add(question.Key(), cacheEntry{
		msg:     msg.Copy(),
		expires: c.now().Add(time.Duration(ttl) * time.Second),
	})
	return nil
}

func (c *LRUCache) Len() int {
	return c.lru.Len()
}
