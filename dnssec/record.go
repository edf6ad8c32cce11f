package dnssec

import (
	"bytes"
	"fmt"

	"github.com/miekg/dns"
	"golang.org/x/crypto/cryptobyte"
)

// Question is a (name, type, class) triple used to look up and match records.
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

func NewQuestion(name string, qtype uint16) Question {
	return Question{
		Name:  Fqdn(name),
		Type:  qtype,
		Class: dns.ClassINET,
	}
}

func QuestionFromDNS(q dns.Question) Question {
	return Question{
		Name:  Fqdn(q.Name),
		Type:  q.Qtype,
		Class: q.Qclass,
	}
}

// Key identifies the question within a chain, in the form "name/TYPE".
func (q Question) Key() string {
	return Fqdn(q.Name) + "/" + dns.Type(q.Type).String()
}

func (q Question) Equal(other Question) bool {
	return Fqdn(q.Name) == Fqdn(other.Name) && q.Type == other.Type && q.Class == other.Class
}

func (q Question) WithName(name string) Question {
	q.Name = Fqdn(name)
	return q
}

func (q Question) WithType(qtype uint16) Question {
	q.Type = qtype
	return q
}

// ToMsg builds a recursive query for q with the DO and CD bits set.
func (q Question) ToMsg() *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(Fqdn(q.Name), q.Type)
	msg.Question[0].Qclass = q.Class
	msg.RecursionDesired = true
	msg.CheckingDisabled = true
	msg.SetEdns0(dns.DefaultMsgSize, true)
	return msg
}

func (q Question) String() string {
	return fmt.Sprintf("%s %s %s", Fqdn(q.Name), dns.Class(q.Class), dns.Type(q.Type))
}

func (q Question) matches(r ResourceRecord) bool {
	return Fqdn(r.Name) == Fqdn(q.Name) && r.Type == q.Type && r.Class == q.Class
}

//---

// ResourceRecord is a record with its rdata held in wire form.
type ResourceRecord struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  []byte
}

func NewResourceRecord(name string, rrtype, class uint16, ttl uint32, data []byte) ResourceRecord {
	return ResourceRecord{
		Name:  Fqdn(name),
		Type:  rrtype,
		Class: class,
		TTL:   ttl,
		Data:  bytes.Clone(data),
	}
}

// RecordFromRR converts a parsed miekg record into its wire-level equivalent.
func RecordFromRR(rr dns.RR) (ResourceRecord, error) {
	hdr := rr.Header()
	name, err := SerialiseName(hdr.Name)
	if err != nil {
		return ResourceRecord{}, err
	}

	buf := make([]byte, dns.Len(rr)+len(name)+rrHeaderLength)
	off, err := dns.PackRR(rr, buf, 0, nil, false)
	if err != nil {
		return ResourceRecord{}, &MalformedDataError{RRType: hdr.Rrtype, Err: err}
	}

	start := len(name) + rrHeaderLength
	if off < start {
		return ResourceRecord{}, &MalformedDataError{RRType: hdr.Rrtype}
	}
	return NewResourceRecord(hdr.Name, hdr.Rrtype, hdr.Class, hdr.Ttl, buf[start:off]), nil
}

func RecordsFromRRs(rrs []dns.RR) ([]ResourceRecord, error) {
	records := make([]ResourceRecord, 0, len(rrs))
	for _, rr := range rrs {
		// The OPT pseudo-record has no place in an rrset.
		if rr.Header().Rrtype == dns.TypeOPT {
			continue
		}
		r, err := RecordFromRR(rr)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// RR returns a typed miekg view of the record.
func (r ResourceRecord) RR() (dns.RR, error) {
	wire, err := r.Serialise()
	if err != nil {
		return nil, err
	}
	rr, _, err := dns.UnpackRR(wire, 0)
	if err != nil {
		return nil, &MalformedDataError{RRType: r.Type, Err: err}
	}
	return rr, nil
}

func (r ResourceRecord) WithTTL(ttl uint32) ResourceRecord {
	r.TTL = ttl
	return r
}

func (r ResourceRecord) WithName(name string) ResourceRecord {
	r.Name = Fqdn(name)
	return r
}

// Serialise returns the record in uncompressed wire format.
func (r ResourceRecord) Serialise() ([]byte, error) {
	name, err := SerialiseName(r.Name)
	if err != nil {
		return nil, err
	}

	b := cryptobyte.NewBuilder(make([]byte, 0, len(name)+rrHeaderLength+len(r.Data)))
	b.AddBytes(name)
	b.AddUint16(r.Type)
	b.AddUint16(r.Class)
	b.AddUint32(r.TTL)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(r.Data)
	})
	return b.Bytes()
}

func (r ResourceRecord) Equal(other ResourceRecord) bool {
	return Fqdn(r.Name) == Fqdn(other.Name) &&
		r.Type == other.Type &&
		r.Class == other.Class &&
		r.TTL == other.TTL &&
		bytes.Equal(r.Data, other.Data)
}

func (r ResourceRecord) String() string {
	if rr, err := r.RR(); err == nil {
		return rr.String()
	}
	return fmt.Sprintf("%s\t%d\t%s\t%s\t\\# %d", r.Name, r.TTL, dns.Class(r.Class), dns.Type(r.Type), len(r.Data))
}

func recordsToRRs(records []ResourceRecord) ([]dns.RR, error) {
	rrs := make([]dns.RR, 0, len(records))
	for _, r := range records {
		rr, err := r.RR()
		if err != nil {
			return nil, err
		}
		rrs = append(rrs, rr)
	}
	return rrs, nil
}
