package dnssec

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/miekg/dns"
)

// RRset is a set of records sharing an owner name, type, class and ttl, held
// in canonical order with duplicates removed.
type RRset struct {
	Name    string
	Type    uint16
	Class   uint16
	TTL     uint32
	Records []ResourceRecord
}

// NewRRset builds the rrset answering q from records, ignoring any record that does not match it.
func NewRRset(q Question, records []ResourceRecord) (RRset, error) {
	matching := make([]ResourceRecord, 0, len(records))
	for _, r := range records {
		if q.matches(r) {
			matching = append(matching, r)
		}
	}

	if len(matching) == 0 {
		return RRset{}, fmt.Errorf("%w: %s", ErrNoMatchingRecords, q.Key())
	}

	ttl := matching[0].TTL
	for _, r := range matching[1:] {
		if r.TTL != ttl {
			return RRset{}, fmt.Errorf("%w: %s has ttls %d and %d", ErrTTLMismatch, q.Key(), ttl, r.TTL)
		}
	}

	// RFC 4034 §6.3. Rdata is compared as left-justified unsigned octet sequences,
	// where the absence of an octet sorts before a zero octet.
	slices.SortStableFunc(matching, func(a, b ResourceRecord) int {
		return bytes.Compare(a.Data, b.Data)
	})
	matching = slices.CompactFunc(matching, func(a, b ResourceRecord) bool {
		return bytes.Equal(a.Data, b.Data)
	})

	return RRset{
		Name:    Fqdn(q.Name),
		Type:    q.Type,
		Class:   q.Class,
		TTL:     ttl,
		Records: matching,
	}, nil
}

func (s RRset) Question() Question {
	return Question{Name: s.Name, Type: s.Type, Class: s.Class}
}

// RRs returns the set as miekg records.
func (s RRset) RRs() ([]dns.RR, error) {
	return recordsToRRs(s.Records)
}

func (s RRset) Equal(other RRset) bool {
	return s.Question().Equal(other.Question()) &&
		s.TTL == other.TTL &&
		slices.EqualFunc(s.Records, other.Records, ResourceRecord.Equal)
}
