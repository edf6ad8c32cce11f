package dnssec

import "github.com/miekg/dns"

func extractRecordsOfNameAndType(rr []dns.RR, name string, t uint16) []dns.RR {
	r := make([]dns.RR, 0, len(rr))
	for _, record := range rr {
		if record.Header().Rrtype == t && Fqdn(record.Header().Name) == name {
			r = append(r, record)
		}
	}
	return r
}

// carriesRecords reports whether msg holds answer records of type t for name, or could not
// be taken as proof of their absence.
func carriesRecords(msg *dns.Msg, name string, t uint16) bool {
	if msg == nil {
		return false
	}
	if msg.Rcode != dns.RcodeSuccess {
		return true
	}
	return len(extractRecordsOfNameAndType(msg.Answer, name, t)) > 0
}

func questionKey(name string, t uint16) string {
	return Question{Name: name, Type: t, Class: dns.ClassINET}.Key()
}
