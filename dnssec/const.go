package dnssec

import "github.com/miekg/dns"

// SecurityStatus is the outcome of verifying a piece of DNS data. The zero value is Indeterminate.
type SecurityStatus uint8

const (
	Indeterminate SecurityStatus = iota
	Insecure
	Bogus
	Secure
)

func (s SecurityStatus) String() string {
	switch s {
	case Secure:
		return "SECURE"
	case Insecure:
		return "INSECURE"
	case Bogus:
		return "BOGUS"
	default:
		return "INDETERMINATE"
	}
}

// DNSKEY flag bits, as laid out in RFC 4034 §2.1.1 and RFC 5011 §7.
const (
	DnskeyFlagZone     uint16 = dns.ZONE
	DnskeyFlagRevoke   uint16 = dns.REVOKE
	DnskeyFlagSep      uint16 = dns.SEP
	DnskeyProtocol     uint8  = 3
	DnskeyFlagsZsk            = DnskeyFlagZone
	DnskeyFlagsKsk            = DnskeyFlagZone | DnskeyFlagSep
)

// Lengths of the fixed-size portions of rdata.
const (
	dnskeyHeaderLength = 4
	dsHeaderLength     = 4
	rrsigHeaderLength  = 18
	rrHeaderLength     = 10
)
