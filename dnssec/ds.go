package dnssec

import (
	"bytes"
	"crypto"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/crypto/cryptobyte"
)

var digestHashes = map[uint8]crypto.Hash{
	dns.SHA1:   crypto.SHA1,
	dns.SHA256: crypto.SHA256,
	dns.SHA384: crypto.SHA384,
}

// DsData is the decoded rdata of a DS record.
type DsData struct {
	KeyTag     uint16
	Algorithm  uint8
	DigestType uint8
	Digest     []byte
}

func ParseDsData(rdata []byte) (DsData, error) {
	input := cryptobyte.String(rdata)

	var d DsData
	if !input.ReadUint16(&d.KeyTag) || !input.ReadUint8(&d.Algorithm) || !input.ReadUint8(&d.DigestType) {
		return DsData{}, &MalformedDataError{
			RRType: dns.TypeDS,
			Err:    fmt.Errorf("need at least %d bytes, got %d", dsHeaderLength, len(rdata)),
		}
	}
	d.Digest = bytes.Clone(input)
	return d, nil
}

// NewDsData computes the DS for key using the given digest type.
func NewDsData(key DnskeyRecord, digestType uint8) (DsData, error) {
	digest, err := calculateDsDigest(key, digestType)
	if err != nil {
		return DsData{}, err
	}
	return DsData{
		KeyTag:     key.Data.KeyTag(),
		Algorithm:  key.Data.Algorithm,
		DigestType: digestType,
		Digest:     digest,
	}, nil
}

// DsDataFromRR converts a presentation-parsed DS record.
func DsDataFromRR(ds *dns.DS) (DsData, error) {
	digest, err := hex.DecodeString(ds.Digest)
	if err != nil {
		return DsData{}, &MalformedDataError{RRType: dns.TypeDS, Err: err}
	}
	return DsData{
		KeyTag:     ds.KeyTag,
		Algorithm:  ds.Algorithm,
		DigestType: ds.DigestType,
		Digest:     digest,
	}, nil
}

func (d DsData) Serialise() []byte {
	b := cryptobyte.NewFixedBuilder(make([]byte, 0, dsHeaderLength+len(d.Digest)))
	b.AddUint16(d.KeyTag)
	b.AddUint8(d.Algorithm)
	b.AddUint8(d.DigestType)
	b.AddBytes(d.Digest)
	return b.BytesOrPanic()
}

// VerifyDnskey reports whether this DS attests to key.
func (d DsData) VerifyDnskey(key DnskeyRecord) bool {
	if !key.Data.ZoneKey() {
		Debug(fmt.Sprintf("dnskey %d for %s is not a zone key", key.Data.KeyTag(), key.Record.Name))
		return false
	}
	if key.Data.Algorithm != d.Algorithm {
		return false
	}

	digest, err := calculateDsDigest(key, d.DigestType)
	if err != nil {
		Debug(fmt.Sprintf("unable to compute ds digest for %s: %s", key.Record.Name, err))
		return false
	}
	return bytes.Equal(digest, d.Digest)
}

func (d DsData) Equal(other DsData) bool {
	return d.KeyTag == other.KeyTag &&
		d.Algorithm == other.Algorithm &&
		d.DigestType == other.DigestType &&
		bytes.Equal(d.Digest, other.Digest)
}

func (d DsData) String() string {
	return fmt.Sprintf("%d %d %d %s", d.KeyTag, d.Algorithm, d.DigestType, strings.ToUpper(hex.EncodeToString(d.Digest)))
}

// calculateDsDigest hashes the key's owner name followed by its rdata, per RFC 4034 §5.1.4.
func calculateDsDigest(key DnskeyRecord, digestType uint8) ([]byte, error) {
	hash, ok := digestHashes[digestType]
	if !ok {
		return nil, &UnsupportedDigestError{DigestType: digestType}
	}

	owner, err := SerialiseName(key.Record.Name)
	if err != nil {
		return nil, err
	}

	h := hash.New()
	h.Write(owner)
	h.Write(key.Data.Serialise())
	return h.Sum(nil), nil
}

//---

// DsRecord pairs a DS record with its decoded rdata.
type DsRecord struct {
	Record ResourceRecord
	Data   DsData
}

func NewDsRecord(r ResourceRecord) (DsRecord, error) {
	if r.Type != dns.TypeDS {
		return DsRecord{}, fmt.Errorf("%w: expected DS, got %s", ErrUnexpectedRecordType, dns.Type(r.Type))
	}
	data, err := ParseDsData(r.Data)
	if err != nil {
		return DsRecord{}, err
	}
	return DsRecord{Record: r, Data: data}, nil
}

func dsDataFromRecords(records []ResourceRecord) ([]DsData, error) {
	ds := make([]DsData, 0, len(records))
	for _, r := range records {
		record, err := NewDsRecord(r)
		if err != nil {
			return nil, err
		}
		ds = append(ds, record.Data)
	}
	return ds, nil
}
