package chainverify

import (
	"context"
	"fmt"
	"time"

	"github.com/miekg/dns"
	"github.com/nsmithuk/chainverify/dnssec"
)

// Verifier retrieves chains of trust from upstream recursive resolvers and verifies them.
type Verifier struct {
	pool    exchanger
	anchors []dnssec.DsData
}

type options struct {
	upstreams []string
	doh       []string
	anchors   []dnssec.DsData
}

type Option func(*options)

// WithUpstreams sets the recursive resolvers queried over UDP/TCP, as ip or ip:port.
func WithUpstreams(upstreams ...string) Option {
	return func(o *options) {
		o.upstreams = append(o.upstreams, upstreams...)
	}
}

// WithDoH adds DNS over HTTPS endpoints.
func WithDoH(urls ...string) Option {
	return func(o *options) {
		o.doh = append(o.doh, urls...)
	}
}

// WithTrustAnchors replaces the root trust anchors.
func WithTrustAnchors(anchors []dnssec.DsData) Option {
	return func(o *options) {
		o.anchors = anchors
	}
}

func NewVerifier(opts ...Option) (*Verifier, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if len(o.upstreams) == 0 && len(o.doh) == 0 {
		o.upstreams = DefaultUpstreams
	}

	pool, err := newUpstreamPool(o.upstreams, o.doh)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		pool:    pool,
		anchors: o.anchors,
	}, nil
}

// Resolve answers a single question from the cache or an upstream. It implements dnssec.Resolver.
func (v *Verifier) Resolve(ctx context.Context, q dnssec.Question) (*dns.Msg, error) {
	cache := Cache

	if cache != nil {
		msg, err := cache.Get(q)
		if err != nil {
			Warn(fmt.Sprintf("cache error getting %s: %s", q.Key(), err))
		} else if msg != nil {
			Debug(fmt.Sprintf("cache hit for %s", q.Key()))
			return msg, nil
		}
	}

	response := v.pool.exchange(ctx, q.ToMsg())
	if response.HasError() {
		return nil, response.Err
	}
	if response.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", ErrEmptyResponse, q.Key())
	}

	if cache != nil {
		go func() {
			if err := cache.Update(q, response.Msg); err != nil {
				Warn(fmt.Sprintf("cache error updating %s: %s", q.Key(), err))
			}
		}()
	}

	return response.Msg, nil
}

// Retrieve gathers every message needed to verify q.
func (v *Verifier) Retrieve(ctx context.Context, q dnssec.Question) (*dnssec.UnverifiedChain, error) {
	ctx, trace := ContextWithTrace(ctx)

	chain, err := dnssec.RetrieveChain(ctx, q, v)
	if err != nil {
		Warn(fmt.Sprintf("%s: failed retrieving chain for %s: %s", trace.ShortID(), q.Key(), err))
		return nil, err
	}

	Debug(fmt.Sprintf("%s: retrieved chain for %s with %d queries in %s", trace.ShortID(), q.Key(), trace.Queries(), trace.Elapsed()))
	return chain, nil
}

// Verify retrieves the chain for q and verifies it as at the given time.
func (v *Verifier) Verify(ctx context.Context, q dnssec.Question, at time.Time) (dnssec.VerificationResult[dnssec.RRset], error) {
	ctx, trace := ContextWithTrace(ctx)

	chain, err := v.Retrieve(ctx, q)
	if err != nil {
		return dnssec.VerificationResult[dnssec.RRset]{}, err
	}

	result := chain.VerifyAt(at, v.anchors)
	Info(fmt.Sprintf("%s: %s is %s", trace.ShortID(), q.Key(), result))
	return result, nil
}
