package dnssec

import (
	"fmt"
	"slices"
	"strings"

	"github.com/miekg/dns"
)

// SignedRRset is an rrset together with the RRSIGs that could cover it.
type SignedRRset struct {
	RRset  RRset
	RRSIGs []RrsigRecord
}

// NewSignedRRset builds the rrset answering q from records, retaining RRSIGs that share its
// owner and class and whose signer is the owner or one of its ancestors.
func NewSignedRRset(q Question, records []ResourceRecord) (SignedRRset, error) {
	rrsigRecords := make([]ResourceRecord, 0)
	others := make([]ResourceRecord, 0, len(records))
	for _, r := range records {
		if r.Type == dns.TypeRRSIG {
			rrsigRecords = append(rrsigRecords, r)
		} else {
			others = append(others, r)
		}
	}

	rrset, err := NewRRset(q, others)
	if err != nil {
		return SignedRRset{}, err
	}

	rrsigs := make([]RrsigRecord, 0, len(rrsigRecords))
	for _, r := range rrsigRecords {
		if Fqdn(r.Name) != rrset.Name || r.Class != rrset.Class {
			continue
		}
		rrsig, err := NewRrsigRecord(r)
		if err != nil {
			return SignedRRset{}, err
		}
		if !IsAncestor(rrsig.Data.SignerName, rrset.Name) {
			continue
		}
		rrsigs = append(rrsigs, rrsig)
	}

	return SignedRRset{RRset: rrset, RRSIGs: rrsigs}, nil
}

// SignerNames returns the distinct signer names, deepest first.
func (s SignedRRset) SignerNames() []string {
	names := make([]string, 0, len(s.RRSIGs))
	for _, rrsig := range s.RRSIGs {
		name := Fqdn(rrsig.Data.SignerName)
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.SortFunc(names, func(a, b string) int {
		if d := CountLabels(b) - CountLabels(a); d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	return names
}

// Verify returns the periods, within period, for which some RRSIG made by one of keys is valid.
// An empty result means the rrset could not be verified.
func (s SignedRRset) Verify(keys []DnskeyRecord, period DatePeriod) []DatePeriod {
	return s.verify(keys, period, "")
}

// VerifyWithSigner is Verify restricted to signatures made by the given zone.
func (s SignedRRset) VerifyWithSigner(keys []DnskeyRecord, period DatePeriod, signer string) []DatePeriod {
	return s.verify(keys, period, Fqdn(signer))
}

func (s SignedRRset) verify(keys []DnskeyRecord, period DatePeriod, signer string) []DatePeriod {
	periods := make([]DatePeriod, 0)
	for _, rrsig := range s.RRSIGs {
		for _, key := range keys {
			keyName := Fqdn(key.Record.Name)
			expected := keyName
			if signer != "" {
				expected = signer
			}
			if keyName != expected || keyName != Fqdn(rrsig.Data.SignerName) {
				continue
			}

			windows := key.Data.VerifyRrsig(rrsig.Data, []DatePeriod{period})
			if len(windows) == 0 {
				continue
			}

			if err := rrsig.Data.VerifyRrset(s.RRset, key.Data); err != nil {
				Debug(fmt.Sprintf("rrsig for %s by %s/%d did not verify: %s", s.RRset.Question().Key(), keyName, key.Data.KeyTag(), err))
				continue
			}

			periods = append(periods, windows...)
		}
	}
	return periods
}
