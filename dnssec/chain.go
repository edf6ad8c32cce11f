package dnssec

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/sync/errgroup"
)

// Resolver answers a single question. Errors are passed back to the caller untouched.
type Resolver interface {
	Resolve(ctx context.Context, q Question) (*dns.Msg, error)
}

type ResolverFunc func(ctx context.Context, q Question) (*dns.Msg, error)

func (f ResolverFunc) Resolve(ctx context.Context, q Question) (*dns.Msg, error) {
	return f(ctx, q)
}

// WireResolverFunc adapts a resolver that returns messages in wire format.
type WireResolverFunc func(ctx context.Context, q Question) ([]byte, error)

func (f WireResolverFunc) Resolve(ctx context.Context, q Question) (*dns.Msg, error) {
	b, err := f(ctx, q)
	if err != nil {
		return nil, err
	}
	msg := new(dns.Msg)
	if err := msg.Unpack(b); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, q.Key(), err)
	}
	return msg, nil
}

//---

// UnverifiedChain holds every message needed to verify a query, from the root down.
type UnverifiedChain struct {
	query    Question
	response *dns.Msg

	// Keyed by Question.Key().
	zoneMessages map[string]*dns.Msg
}

// chainQuestions lists the DNSKEY and DS questions for each zone above and including q's owner.
func chainQuestions(q Question) []Question {
	zones := ZonesInName(q.Name, true)
	questions := make([]Question, 0, len(zones)*2)
	for _, zone := range zones {
		questions = append(questions, Question{Name: zone, Type: dns.TypeDNSKEY, Class: q.Class})
		if zone != rootName {
			questions = append(questions, Question{Name: zone, Type: dns.TypeDS, Class: q.Class})
		}
	}
	return questions
}

// RetrieveChain concurrently resolves the query and every DNSKEY and DS message needed to verify it.
// The first resolver error aborts the retrieval and is returned as-is.
func RetrieveChain(ctx context.Context, q Question, r Resolver) (*UnverifiedChain, error) {
	q = q.WithName(q.Name)

	questions := chainQuestions(q)
	if !slices.ContainsFunc(questions, q.Equal) {
		questions = append(questions, q)
	}

	responses := make([]*dns.Msg, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	for i, question := range questions {
		g.Go(func() error {
			msg, err := r.Resolve(gctx, question)
			if err != nil {
				return err
			}
			if msg == nil {
				return fmt.Errorf("%w: %s", ErrNilResponse, question.Key())
			}
			responses[i] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	chain := &UnverifiedChain{
		query:        q,
		zoneMessages: make(map[string]*dns.Msg, len(questions)),
	}
	for i, question := range questions {
		if question.Equal(q) {
			chain.response = responses[i]
		}
		if question.Type == dns.TypeDNSKEY || question.Type == dns.TypeDS {
			chain.zoneMessages[question.Key()] = responses[i]
		}
	}
	return chain, nil
}

// NewUnverifiedChainFromMessages builds a chain from previously captured messages.
// Messages are matched on their first question; ones without a question are ignored.
func NewUnverifiedChainFromMessages(q Question, messages []*dns.Msg) (*UnverifiedChain, error) {
	q = q.WithName(q.Name)

	byKey := make(map[string]*dns.Msg, len(messages))
	for _, msg := range messages {
		if msg == nil || len(msg.Question) == 0 {
			continue
		}
		key := QuestionFromDNS(msg.Question[0]).Key()
		if _, exists := byKey[key]; !exists {
			byKey[key] = msg
		}
	}

	response, ok := byKey[q.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQueryResponseMissing, q.Key())
	}

	chain := &UnverifiedChain{
		query:        q,
		response:     response,
		zoneMessages: make(map[string]*dns.Msg),
	}
	for _, question := range chainQuestions(q) {
		if msg, ok := byKey[question.Key()]; ok {
			chain.zoneMessages[question.Key()] = msg
		}
	}
	return chain, nil
}

func (c *UnverifiedChain) Query() Question {
	return c.query
}

func (c *UnverifiedChain) Response() *dns.Msg {
	return c.response
}

// Messages returns every message in the chain, the query response last.
func (c *UnverifiedChain) Messages() []*dns.Msg {
	messages := make([]*dns.Msg, 0, len(c.zoneMessages)+1)
	for _, question := range chainQuestions(c.query) {
		if question.Equal(c.query) {
			continue
		}
		if msg, ok := c.zoneMessages[question.Key()]; ok {
			messages = append(messages, msg)
		}
	}
	return append(messages, c.response)
}

// VerifyAt verifies the chain at a single instant.
func (c *UnverifiedChain) VerifyAt(t time.Time, anchors []DsData) VerificationResult[RRset] {
	return c.Verify(Instant(t), anchors)
}

// Verify walks the chain from the root down, then checks the query response's signature.
// Nil anchors means RootTrustAnchors.
func (c *UnverifiedChain) Verify(period DatePeriod, anchors []DsData) VerificationResult[RRset] {
	if anchors == nil {
		anchors = RootTrustAnchors
	}

	rootDnskey, ok := c.zoneMessages[questionKey(rootName, dns.TypeDNSKEY)]
	if !ok {
		return Failure[RRset](Indeterminate, "Cannot initialise root zone without a DNSKEY response")
	}

	root := InitRootZone(rootDnskey, anchors, period)
	if !root.IsSecure() {
		return augmentFailure[RRset](root, "Got invalid DNSKEY for root zone")
	}

	zones := []*Zone{root.Value}
	for _, name := range ZonesInName(c.query.Name, false) {
		dnskeyMsg, hasDnskey := c.zoneMessages[questionKey(name, dns.TypeDNSKEY)]
		dsMsg, hasDs := c.zoneMessages[questionKey(name, dns.TypeDS)]

		if !carriesRecords(dnskeyMsg, name, dns.TypeDNSKEY) && !carriesRecords(dsMsg, name, dns.TypeDS) {
			// Not a zone cut.
			continue
		}
		if !hasDnskey {
			return Failure[RRset](Indeterminate, fmt.Sprintf("Cannot verify zone %s without a DNSKEY response", name))
		}
		if !hasDs {
			return Failure[RRset](Indeterminate, fmt.Sprintf("Cannot verify zone %s without a DS response", name))
		}

		parent := zones[len(zones)-1]
		child := parent.InitChild(name, dnskeyMsg, dsMsg, period)
		if !child.IsSecure() {
			return augmentFailure[RRset](child, fmt.Sprintf("Failed to verify zone %s", name))
		}
		zones = append(zones, child.Value)
	}

	records, err := RecordsFromRRs(c.response.Answer)
	if err != nil {
		return Failure[RRset](Bogus, "Query response does not have a valid signature", err.Error())
	}
	answer, err := NewSignedRRset(c.query, records)
	if err != nil {
		return Failure[RRset](Bogus, "Query response does not have a valid signature", err.Error())
	}

	// Only the deepest verified zone, the one holding the answer, may sign it.
	if !zones[len(zones)-1].VerifyRRset(answer, period) {
		return Failure[RRset](Bogus, "Query response does not have a valid signature")
	}

	return Success(answer.RRset)
}
