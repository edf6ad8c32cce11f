package dnssec

import (
	"fmt"
	"slices"

	"github.com/miekg/dns"
)

// Zone is a zone whose DNSKEY RRset has been authenticated.
type Zone struct {
	name    string
	dnskeys []DnskeyRecord
}

// InitZone authenticates the DNSKEY RRset in dnskeyMsg using the DS data vouching for the zone.
func InitZone(name string, dnskeyMsg *dns.Msg, ds []DsData, period DatePeriod) VerificationResult[*Zone] {
	name = Fqdn(name)

	if dnskeyMsg.Rcode != dns.RcodeSuccess {
		return Failure[*Zone](Insecure, "Expected DNSKEY rcode to be NOERROR")
	}

	records, err := RecordsFromRRs(dnskeyMsg.Answer)
	if err != nil {
		return Failure[*Zone](Bogus, fmt.Sprintf("Malformed DNSKEY response: %s", err))
	}

	signed, err := NewSignedRRset(Question{Name: name, Type: dns.TypeDNSKEY, Class: dns.ClassINET}, records)
	if err != nil {
		return Failure[*Zone](Bogus, fmt.Sprintf("Invalid DNSKEY RRset: %s", err))
	}

	if len(signed.RRSIGs) == 0 {
		return Failure[*Zone](Indeterminate, "DNSKEY RR is unsigned")
	}

	dnskeys, err := dnskeyRecords(signed.RRset.Records)
	if err != nil {
		return Failure[*Zone](Bogus, fmt.Sprintf("Invalid DNSKEY RRset: %s", err))
	}

	zsks := make([]DnskeyRecord, 0, len(dnskeys))
	for _, key := range dnskeys {
		if key.Data.Revoked() {
			Debug(fmt.Sprintf("ignoring revoked dnskey %d for %s", key.Data.KeyTag(), name))
			continue
		}
		if slices.ContainsFunc(ds, func(d DsData) bool { return d.VerifyDnskey(key) }) {
			zsks = append(zsks, key)
		}
	}

	if len(zsks) == 0 {
		return Failure[*Zone](Bogus, "No DNSKEY matched specified DS(s)")
	}

	if len(signed.Verify(zsks, period)) == 0 {
		return Failure[*Zone](Bogus, "No valid DNSKEY RRSig was found")
	}

	return Success(&Zone{name: name, dnskeys: dnskeys})
}

// InitRootZone authenticates the root zone against the given trust anchors.
func InitRootZone(dnskeyMsg *dns.Msg, anchors []DsData, period DatePeriod) VerificationResult[*Zone] {
	return InitZone(rootName, dnskeyMsg, anchors, period)
}

// InitChild authenticates the child's DS RRset with this zone's keys, then the child itself.
func (z *Zone) InitChild(name string, dnskeyMsg, dsMsg *dns.Msg, period DatePeriod) VerificationResult[*Zone] {
	name = Fqdn(name)

	if dsMsg.Rcode != dns.RcodeSuccess {
		return Failure[*Zone](Insecure, "Expected DS rcode to be NOERROR")
	}

	records, err := RecordsFromRRs(dsMsg.Answer)
	if err != nil {
		return Failure[*Zone](Bogus, fmt.Sprintf("Malformed DS response: %s", err))
	}

	signed, err := NewSignedRRset(Question{Name: name, Type: dns.TypeDS, Class: dns.ClassINET}, records)
	if err != nil || len(signed.VerifyWithSigner(z.dnskeys, period, z.name)) == 0 {
		return Failure[*Zone](Bogus, "Could not find at least one valid DS record")
	}

	ds, err := dsDataFromRecords(signed.RRset.Records)
	if err != nil {
		return Failure[*Zone](Bogus, fmt.Sprintf("Invalid DS RRset: %s", err))
	}

	return InitZone(name, dnskeyMsg, ds, period)
}

// VerifyRRset reports whether one of the zone's keys has a valid signature over the rrset during period.
func (z *Zone) VerifyRRset(rrset SignedRRset, period DatePeriod) bool {
	return len(rrset.Verify(z.dnskeys, period)) > 0
}

func (z *Zone) Name() string {
	return z.name
}

func (z *Zone) DNSKEYs() []DnskeyRecord {
	return slices.Clone(z.dnskeys)
}
