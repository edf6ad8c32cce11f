package dnssec

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"strings"
	"time"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/miekg/dns"
)

const zoneName = "example.com."

var (
	testInception  = time.Now().Add(-24 * time.Hour).Truncate(time.Second).UTC()
	testExpiration = time.Now().Add(24 * time.Hour).Truncate(time.Second).UTC()
	testNow        = Instant(time.Now())
)

//---

func newRR(s string) dns.RR {
	rr, err := dns.NewRR(s)
	if err != nil {
		panic(err)
	}
	return rr
}

func newRecord(s string) ResourceRecord {
	r, err := RecordFromRR(newRR(s))
	if err != nil {
		panic(err)
	}
	return r
}

func newRRset(records ...ResourceRecord) RRset {
	q := Question{Name: records[0].Name, Type: records[0].Type, Class: records[0].Class}
	rrset, err := NewRRset(q, records)
	if err != nil {
		panic(err)
	}
	return rrset
}

//---

type testKey struct {
	record  DnskeyRecord
	private any
}

func newTestKey(zone string, algorithm uint8, flags uint16) *testKey {
	var private any
	var public crypto.PublicKey
	var err error

	switch algorithm {
	case dns.RSASHA1, dns.RSASHA1NSEC3SHA1, dns.RSASHA256, dns.RSASHA512:
		var k *rsa.PrivateKey
		k, err = rsa.GenerateKey(rand.Reader, 1024)
		private, public = k, k.Public()
	case dns.ECDSAP256SHA256:
		var k *ecdsa.PrivateKey
		k, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		private, public = k, k.Public()
	case dns.ECDSAP384SHA384:
		var k *ecdsa.PrivateKey
		k, err = ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
		private, public = k, k.Public()
	case dns.ED25519:
		public, private, err = ed25519.GenerateKey(rand.Reader)
	case dns.ED448:
		public, private, err = ed448.GenerateKey(rand.Reader)
	default:
		panic("unsupported test algorithm")
	}
	if err != nil {
		panic(err)
	}

	pub, err := algorithms[algorithm].SerialisePublicKey(public)
	if err != nil {
		panic(err)
	}

	data := NewDnskeyData(flags, algorithm, pub)
	record, err := NewDnskeyRecord(NewResourceRecord(zone, dns.TypeDNSKEY, dns.ClassINET, 3600, data.Serialise()))
	if err != nil {
		panic(err)
	}
	return &testKey{record: record, private: private}
}

func testEcKey() *testKey {
	return newTestKey(zoneName, dns.ECDSAP256SHA256, DnskeyFlagsKsk)
}

func (k *testKey) signData(data []byte) []byte {
	alg := algorithms[k.record.Data.Algorithm]

	var sig []byte
	var err error
	switch private := k.private.(type) {
	case ed448.PrivateKey:
		sig = ed448.Sign(private, data, "")
	case ed25519.PrivateKey:
		sig = ed25519.Sign(private, data)
	case crypto.Signer:
		h := alg.Hash.New()
		h.Write(data)
		sig, err = private.Sign(rand.Reader, h.Sum(nil), alg.Hash)
	}
	if err != nil {
		panic(err)
	}

	sig, err = alg.SignatureToDnssec(sig)
	if err != nil {
		panic(err)
	}
	return sig
}

func (k *testKey) rrsigData(rrset RRset, inception, expiration time.Time) RrsigData {
	return RrsigData{
		TypeCovered: rrset.Type,
		Algorithm:   k.record.Data.Algorithm,
		Labels:      uint8(rrsigLabelCount(rrset.Name)),
		OriginalTTL: rrset.TTL,
		Expiration:  uint32(expiration.Unix()),
		Inception:   uint32(inception.Unix()),
		KeyTag:      k.record.Data.KeyTag(),
		SignerName:  k.record.Record.Name,
	}
}

func (k *testKey) signWithPeriod(rrset RRset, inception, expiration time.Time) RrsigRecord {
	data := k.rrsigData(rrset, inception, expiration)
	return k.signRrsigData(rrset, data)
}

func (k *testKey) signRrsigData(rrset RRset, data RrsigData) RrsigRecord {
	signed, err := data.SignedData(rrset)
	if err != nil {
		panic(err)
	}
	data.Signature = k.signData(signed)

	rdata, err := data.Serialise()
	if err != nil {
		panic(err)
	}
	r, err := NewRrsigRecord(NewResourceRecord(rrset.Name, dns.TypeRRSIG, rrset.Class, rrset.TTL, rdata))
	if err != nil {
		panic(err)
	}
	return r
}

func (k *testKey) sign(rrset RRset) RrsigRecord {
	return k.signWithPeriod(rrset, testInception, testExpiration)
}

//---

// testZone is a signed zone within a synthetic hierarchy.
type testZone struct {
	name   string
	ksk    *testKey
	zsk    *testKey
	parent *testZone
}

func newTestZone(name string, parent *testZone) *testZone {
	return &testZone{
		name:   Fqdn(name),
		ksk:    newTestKey(name, dns.ECDSAP256SHA256, DnskeyFlagsKsk),
		zsk:    newTestKey(name, dns.ECDSAP256SHA256, DnskeyFlagsZsk),
		parent: parent,
	}
}

// newTestHierarchy returns the root, com. and example.com. zones.
func newTestHierarchy() (root, tld, apex *testZone) {
	root = newTestZone(".", nil)
	tld = newTestZone("com.", root)
	apex = newTestZone(zoneName, tld)
	return root, tld, apex
}

func (z *testZone) dnskeyRRset() RRset {
	return newRRset(z.ksk.record.Record, z.zsk.record.Record)
}

func (z *testZone) ds() DsData {
	ds, err := NewDsData(z.ksk.record, dns.SHA256)
	if err != nil {
		panic(err)
	}
	return ds
}

func (z *testZone) dsRRset(ds ...DsData) RRset {
	if len(ds) == 0 {
		ds = []DsData{z.ds()}
	}
	records := make([]ResourceRecord, 0, len(ds))
	for _, d := range ds {
		records = append(records, NewResourceRecord(z.name, dns.TypeDS, dns.ClassINET, 3600, d.Serialise()))
	}
	return newRRset(records...)
}

func (z *testZone) dnskeyMsg() *dns.Msg {
	rrset := z.dnskeyRRset()
	return newTestMsg(rrset, z.ksk.sign(rrset))
}

func (z *testZone) dsMsg() *dns.Msg {
	rrset := z.dsRRset()
	return newTestMsg(rrset, z.parent.zsk.sign(rrset))
}

// messages returns the DNSKEY and DS messages for this zone and all of its parents.
func (z *testZone) messages() []*dns.Msg {
	messages := []*dns.Msg{z.dnskeyMsg()}
	if z.parent != nil {
		messages = append(messages, z.dsMsg())
		messages = append(messages, z.parent.messages()...)
	}
	return messages
}

func (z *testZone) anchors() []DsData {
	return []DsData{z.ds()}
}

// rrsigLabelCount is the value an RRSIG's labels field takes for an owner name,
// which excludes both the root and any leading wildcard label.
func rrsigLabelCount(name string) int {
	n := CountLabels(name)
	if strings.HasPrefix(name, "*.") {
		n--
	}
	return n
}

func newTestMsg(rrset RRset, rrsigs ...RrsigRecord) *dns.Msg {
	msg := newEmptyMsg(rrset.Question(), dns.RcodeSuccess)
	rrs, err := rrset.RRs()
	if err != nil {
		panic(err)
	}
	msg.Answer = rrs
	for _, rrsig := range rrsigs {
		rr, err := rrsig.Record.RR()
		if err != nil {
			panic(err)
		}
		msg.Answer = append(msg.Answer, rr)
	}
	return msg
}

func newEmptyMsg(q Question, rcode int) *dns.Msg {
	msg := q.ToMsg()
	msg.Response = true
	msg.Rcode = rcode
	return msg
}

func testAnswerRRset() RRset {
	return newRRset(
		newRecord("example.com. 300 IN A 192.0.2.1"),
		newRecord("example.com. 300 IN A 192.0.2.2"),
	)
}
