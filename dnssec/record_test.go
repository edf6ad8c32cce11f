package dnssec

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion(t *testing.T) {
	q := NewQuestion("example.com", dns.TypeA)
	assert.Equal(t, "example.com.", q.Name)
	assert.Equal(t, uint16(dns.ClassINET), q.Class)
	assert.Equal(t, "example.com./A", q.Key())

	assert.True(t, q.Equal(NewQuestion("example.com.", dns.TypeA)))
	assert.False(t, q.Equal(q.WithType(dns.TypeAAAA)))
	assert.False(t, q.Equal(q.WithName("www.example.com")))

	// The copy builders never touch the original.
	_ = q.WithName("other.com.")
	assert.Equal(t, "example.com.", q.Name)

	assert.Equal(t, "example.com./TYPE65280", q.WithType(65280).Key())
}

func TestQuestion_ToMsg(t *testing.T) {
	msg := NewQuestion("example.com", dns.TypeDNSKEY).ToMsg()
	require.Len(t, msg.Question, 1)
	assert.Equal(t, "example.com.", msg.Question[0].Name)
	assert.Equal(t, dns.TypeDNSKEY, msg.Question[0].Qtype)
	assert.True(t, msg.CheckingDisabled)
	assert.True(t, msg.RecursionDesired)

	opt := msg.IsEdns0()
	require.NotNil(t, opt)
	assert.True(t, opt.Do())

	assert.Equal(t, NewQuestion("example.com", dns.TypeDNSKEY), QuestionFromDNS(msg.Question[0]))
}

func TestRecordFromRR(t *testing.T) {
	r, err := RecordFromRR(newRR("example.com. 300 IN A 192.0.2.1"))
	require.NoError(t, err)
	assert.Equal(t, "example.com.", r.Name)
	assert.Equal(t, dns.TypeA, r.Type)
	assert.Equal(t, uint16(dns.ClassINET), r.Class)
	assert.Equal(t, uint32(300), r.TTL)
	assert.Equal(t, []byte{192, 0, 2, 1}, r.Data)

	// Names within rdata are never compressed.
	r, err = RecordFromRR(newRR("example.com. 300 IN MX 10 mail.example.com."))
	require.NoError(t, err)
	assert.Equal(t, append([]byte{0, 10}, []byte("\x04mail\x07example\x03com\x00")...), r.Data)
}

func TestResourceRecord_RR(t *testing.T) {
	original := newRR("example.com. 300 IN TXT \"hello\" \"world\"")

	r, err := RecordFromRR(original)
	require.NoError(t, err)

	rr, err := r.RR()
	require.NoError(t, err)
	assert.True(t, dns.IsDuplicate(original, rr))
	assert.Equal(t, original.Header().Ttl, rr.Header().Ttl)

	// An A record must carry exactly four octets.
	_, err = NewResourceRecord("example.com.", dns.TypeA, dns.ClassINET, 300, []byte{1, 2}).RR()
	var malformed *MalformedDataError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, dns.TypeA, malformed.RRType)
}

func TestResourceRecord_Serialise(t *testing.T) {
	r := newRecord("example.com. 300 IN A 192.0.2.1")

	wire, err := r.Serialise()
	require.NoError(t, err)

	expected := make([]byte, dns.Len(newRR("example.com. 300 IN A 192.0.2.1")))
	_, err = dns.PackRR(newRR("example.com. 300 IN A 192.0.2.1"), expected, 0, nil, false)
	require.NoError(t, err)
	assert.Equal(t, expected, wire)

	r2 := r.WithTTL(60)
	assert.Equal(t, uint32(300), r.TTL)
	assert.Equal(t, uint32(60), r2.TTL)
	assert.False(t, r.Equal(r2))
	assert.True(t, r.Equal(r2.WithTTL(300)))

	_, err = r.WithName("bad..name.").Serialise()
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestRecordsFromRRs_SkipsOPT(t *testing.T) {
	msg := NewQuestion("example.com.", dns.TypeA).ToMsg()
	records, err := RecordsFromRRs(append([]dns.RR{newRR("example.com. 300 IN A 192.0.2.1")}, msg.Extra...))
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
