package dnssec

import (
	"bytes"
	"fmt"
	"time"

	"github.com/miekg/dns"
	"golang.org/x/crypto/cryptobyte"
)

// RrsigData is the decoded rdata of an RRSIG record.
type RrsigData struct {
	TypeCovered uint16
	Algorithm   uint8
	Labels      uint8
	OriginalTTL uint32
	Expiration  uint32
	Inception   uint32
	KeyTag      uint16
	SignerName  string
	Signature   []byte
}

func ParseRrsigData(rdata []byte) (RrsigData, error) {
	input := cryptobyte.String(rdata)

	var d RrsigData
	if !input.ReadUint16(&d.TypeCovered) ||
		!input.ReadUint8(&d.Algorithm) ||
		!input.ReadUint8(&d.Labels) ||
		!input.ReadUint32(&d.OriginalTTL) ||
		!input.ReadUint32(&d.Expiration) ||
		!input.ReadUint32(&d.Inception) ||
		!input.ReadUint16(&d.KeyTag) {
		return RrsigData{}, &MalformedDataError{
			RRType: dns.TypeRRSIG,
			Err:    fmt.Errorf("need at least %d bytes, got %d", rrsigHeaderLength, len(rdata)),
		}
	}

	signer, n, err := ParseName(input)
	if err != nil {
		return RrsigData{}, &MalformedDataError{RRType: dns.TypeRRSIG, Err: err}
	}
	d.SignerName = signer
	d.Signature = bytes.Clone(input[n:])
	return d, nil
}

func (d RrsigData) Serialise() ([]byte, error) {
	signer, err := SerialiseName(d.SignerName)
	if err != nil {
		return nil, err
	}
	b := cryptobyte.NewBuilder(make([]byte, 0, rrsigHeaderLength+len(signer)+len(d.Signature)))
	d.addHeader(b)
	b.AddBytes(signer)
	b.AddBytes(d.Signature)
	return b.Bytes()
}

func (d RrsigData) addHeader(b *cryptobyte.Builder) {
	b.AddUint16(d.TypeCovered)
	b.AddUint8(d.Algorithm)
	b.AddUint8(d.Labels)
	b.AddUint32(d.OriginalTTL)
	b.AddUint32(d.Expiration)
	b.AddUint32(d.Inception)
	b.AddUint16(d.KeyTag)
}

// ValidityPeriod is the closed interval between the signature's inception and expiration.
// It may be inverted, in which case it overlaps nothing.
func (d RrsigData) ValidityPeriod() DatePeriod {
	return DatePeriod{
		Start: time.Unix(int64(d.Inception), 0).UTC(),
		End:   time.Unix(int64(d.Expiration), 0).UTC(),
	}
}

// SignedData builds the octets an RRSIG's signature covers, as defined in RFC 4034 §3.1.8.1.
func (d RrsigData) SignedData(rrset RRset) ([]byte, error) {
	signer, err := SerialiseName(d.SignerName)
	if err != nil {
		return nil, err
	}

	owner := rrset.Name
	if CountLabels(owner) > int(d.Labels) {
		// RFC 4035 §5.3.2. The record was synthesised from a wildcard.
		owner = wildcardOwner(Fqdn(owner), int(d.Labels))
	}

	b := cryptobyte.NewBuilder(nil)
	d.addHeader(b)
	b.AddBytes(signer)
	for _, r := range rrset.Records {
		wire, err := r.WithName(owner).WithTTL(d.OriginalTTL).Serialise()
		if err != nil {
			return nil, err
		}
		b.AddBytes(wire)
	}
	return b.Bytes()
}

// VerifyRrset checks the signature over rrset using key. A nil return means the signature is valid.
func (d RrsigData) VerifyRrset(rrset RRset, key DnskeyData) error {
	if d.TypeCovered != rrset.Type {
		return fmt.Errorf("%w: covers %s, rrset is %s", ErrTypeCoveredMismatch, dns.Type(d.TypeCovered), dns.Type(rrset.Type))
	}
	if CountLabels(rrset.Name) < int(d.Labels) {
		return fmt.Errorf("%w: %s has %d, rrsig has %d", ErrInvalidLabelCount, rrset.Name, CountLabels(rrset.Name), d.Labels)
	}
	if d.Algorithm != key.Algorithm {
		return fmt.Errorf("%w: rrsig %d, dnskey %d", ErrAlgorithmMismatch, d.Algorithm, key.Algorithm)
	}

	alg, err := LookupAlgorithm(d.Algorithm)
	if err != nil {
		return err
	}

	pub, err := alg.ParsePublicKey(key.PublicKey)
	if err != nil {
		return err
	}

	data, err := d.SignedData(rrset)
	if err != nil {
		return err
	}

	return alg.Verify(pub, data, d.Signature)
}

func (d RrsigData) Equal(other RrsigData) bool {
	return d.TypeCovered == other.TypeCovered &&
		d.Algorithm == other.Algorithm &&
		d.Labels == other.Labels &&
		d.OriginalTTL == other.OriginalTTL &&
		d.Expiration == other.Expiration &&
		d.Inception == other.Inception &&
		d.KeyTag == other.KeyTag &&
		d.SignerName == other.SignerName &&
		bytes.Equal(d.Signature, other.Signature)
}

//---

// RrsigRecord pairs an RRSIG record with its decoded rdata.
type RrsigRecord struct {
	Record ResourceRecord
	Data   RrsigData
}

func NewRrsigRecord(r ResourceRecord) (RrsigRecord, error) {
	if r.Type != dns.TypeRRSIG {
		return RrsigRecord{}, fmt.Errorf("%w: expected RRSIG, got %s", ErrUnexpectedRecordType, dns.Type(r.Type))
	}
	data, err := ParseRrsigData(r.Data)
	if err != nil {
		return RrsigRecord{}, err
	}
	return RrsigRecord{Record: r, Data: data}, nil
}
