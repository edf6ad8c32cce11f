package dnssec

import (
	"bytes"
	"crypto"
	"fmt"

	"github.com/miekg/dns"
	"golang.org/x/crypto/cryptobyte"
)

// DnskeyData is the decoded rdata of a DNSKEY record. Values are treated as immutable once built.
type DnskeyData struct {
	Flags     uint16
	Protocol  uint8
	Algorithm uint8
	PublicKey []byte

	keyTag    uint16
	hasKeyTag bool
}

func NewDnskeyData(flags uint16, algorithm uint8, publicKey []byte) DnskeyData {
	d := DnskeyData{
		Flags:     flags,
		Protocol:  DnskeyProtocol,
		Algorithm: algorithm,
		PublicKey: bytes.Clone(publicKey),
	}
	d.keyTag, d.hasKeyTag = calculateKeyTag(d.Serialise()), true
	return d
}

func ParseDnskeyData(rdata []byte) (DnskeyData, error) {
	input := cryptobyte.String(rdata)

	var d DnskeyData
	if !input.ReadUint16(&d.Flags) || !input.ReadUint8(&d.Protocol) || !input.ReadUint8(&d.Algorithm) {
		return DnskeyData{}, &MalformedDataError{
			RRType: dns.TypeDNSKEY,
			Err:    fmt.Errorf("need at least %d bytes, got %d", dnskeyHeaderLength, len(rdata)),
		}
	}
	d.PublicKey = bytes.Clone(input)
	d.keyTag, d.hasKeyTag = calculateKeyTag(rdata), true
	return d, nil
}

func (d DnskeyData) Serialise() []byte {
	b := cryptobyte.NewFixedBuilder(make([]byte, 0, dnskeyHeaderLength+len(d.PublicKey)))
	b.AddUint16(d.Flags)
	b.AddUint8(d.Protocol)
	b.AddUint8(d.Algorithm)
	b.AddBytes(d.PublicKey)
	return b.BytesOrPanic()
}

func (d DnskeyData) ZoneKey() bool {
	return d.Flags&DnskeyFlagZone != 0
}

func (d DnskeyData) SecureEntryPoint() bool {
	return d.Flags&DnskeyFlagSep != 0
}

func (d DnskeyData) Revoked() bool {
	return d.Flags&DnskeyFlagRevoke != 0
}

// KeyTag returns the RFC 4034 Appendix B key tag.
func (d DnskeyData) KeyTag() uint16 {
	if d.hasKeyTag {
		return d.keyTag
	}
	return calculateKeyTag(d.Serialise())
}

// PublicKeyValue decodes the key material according to the key's algorithm.
func (d DnskeyData) PublicKeyValue() (crypto.PublicKey, error) {
	alg, err := LookupAlgorithm(d.Algorithm)
	if err != nil {
		return nil, err
	}
	return alg.ParsePublicKey(d.PublicKey)
}

// VerifyRrsig reports the parts of the given periods during which rrsig could have been made by this key.
// It does not check the signature itself.
func (d DnskeyData) VerifyRrsig(rrsig RrsigData, periods []DatePeriod) []DatePeriod {
	if rrsig.KeyTag != d.KeyTag() || rrsig.Algorithm != d.Algorithm {
		return nil
	}

	window := rrsig.ValidityPeriod()
	valid := make([]DatePeriod, 0, len(periods))
	for _, p := range periods {
		if i, ok := p.Intersect(window); ok {
			valid = append(valid, i)
		}
	}
	return valid
}

func (d DnskeyData) Equal(other DnskeyData) bool {
	return d.Flags == other.Flags &&
		d.Protocol == other.Protocol &&
		d.Algorithm == other.Algorithm &&
		bytes.Equal(d.PublicKey, other.PublicKey)
}

func calculateKeyTag(rdata []byte) uint16 {
	var ac uint32
	for i, b := range rdata {
		if i&1 == 0 {
			ac += uint32(b) << 8
		} else {
			ac += uint32(b)
		}
	}
	ac += ac >> 16 & 0xFFFF
	return uint16(ac & 0xFFFF)
}

//---

// DnskeyRecord pairs a DNSKEY record with its decoded rdata.
type DnskeyRecord struct {
	Record ResourceRecord
	Data   DnskeyData
}

func NewDnskeyRecord(r ResourceRecord) (DnskeyRecord, error) {
	if r.Type != dns.TypeDNSKEY {
		return DnskeyRecord{}, fmt.Errorf("%w: expected DNSKEY, got %s", ErrUnexpectedRecordType, dns.Type(r.Type))
	}
	data, err := ParseDnskeyData(r.Data)
	if err != nil {
		return DnskeyRecord{}, err
	}
	return DnskeyRecord{Record: r, Data: data}, nil
}

func dnskeyRecords(records []ResourceRecord) ([]DnskeyRecord, error) {
	keys := make([]DnskeyRecord, 0, len(records))
	for _, r := range records {
		k, err := NewDnskeyRecord(r)
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, nil
}
