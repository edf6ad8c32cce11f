package main

import (
	"bytes"
	"crypto"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/nsmithuk/chainverify/dnssec"
	"github.com/stretchr/testify/require"
)

type signingZone struct {
	name   string
	key    *dns.DNSKEY
	signer crypto.Signer
}

func newSigningZone(t *testing.T, name string) *signingZone {
	key := &dns.DNSKEY{
		Hdr:       dns.RR_Header{Name: name, Rrtype: dns.TypeDNSKEY, Class: dns.ClassINET, Ttl: 3600},
		Flags:     dns.ZONE | dns.SEP,
		Protocol:  3,
		Algorithm: dns.ED25519,
	}
	private, err := key.Generate(256)
	require.NoError(t, err)
	return &signingZone{name: name, key: key, signer: private.(crypto.Signer)}
}

func (z *signingZone) sign(t *testing.T, rrs ...dns.RR) []dns.RR {
	sig := &dns.RRSIG{
		Hdr:        dns.RR_Header{Ttl: rrs[0].Header().Ttl},
		Algorithm:  z.key.Algorithm,
		Inception:  uint32(testInception.Unix()),
		Expiration: uint32(testExpiration.Unix()),
		KeyTag:     z.key.KeyTag(),
		SignerName: z.name,
	}
	require.NoError(t, sig.Sign(z.signer, rrs))
	return append(rrs, sig)
}

var (
	testInception  = time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC)
	testExpiration = time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC)
	testAt         = "2024-10-15T12:00:00Z"
)

// testHierarchy is a signed . -> com. -> example.com. tree answering example.com/A.
type testHierarchy struct {
	answers     map[string][]dns.RR
	anchorsFile string
}

func newTestHierarchy(t *testing.T) *testHierarchy {
	root := newSigningZone(t, ".")
	com := newSigningZone(t, "com.")
	example := newSigningZone(t, "example.com.")

	a, err := dns.NewRR("example.com. 300 IN A 192.0.2.1")
	require.NoError(t, err)

	h := &testHierarchy{
		answers: map[string][]dns.RR{
			"./DNSKEY":            root.sign(t, root.key),
			"com./DNSKEY":         com.sign(t, com.key),
			"com./DS":             root.sign(t, com.key.ToDS(dns.SHA256)),
			"example.com./DNSKEY": example.sign(t, example.key),
			"example.com./DS":     com.sign(t, example.key.ToDS(dns.SHA256)),
			"example.com./A":      example.sign(t, a),
		},
		anchorsFile: filepath.Join(t.TempDir(), "anchors.zone"),
	}

	anchors := root.key.ToDS(dns.SHA256).String() + "\n" + root.key.ToDS(dns.SHA384).String() + "\n"
	require.NoError(t, os.WriteFile(h.anchorsFile, []byte(anchors), 0o600))

	return h
}

func (h *testHierarchy) reply(r *dns.Msg) *dns.Msg {
	m := new(dns.Msg)
	m.SetReply(r)
	m.Answer = h.answers[dnssec.QuestionFromDNS(r.Question[0]).Key()]
	return m
}

func (h *testHierarchy) messages(t *testing.T) []*dns.Msg {
	questions := []dnssec.Question{
		dnssec.NewQuestion(".", dns.TypeDNSKEY),
		dnssec.NewQuestion("com.", dns.TypeDNSKEY),
		dnssec.NewQuestion("com.", dns.TypeDS),
		dnssec.NewQuestion("example.com.", dns.TypeDNSKEY),
		dnssec.NewQuestion("example.com.", dns.TypeDS),
		dnssec.NewQuestion("example.com.", dns.TypeA),
	}
	messages := make([]*dns.Msg, 0, len(questions))
	for _, q := range questions {
		messages = append(messages, h.reply(q.ToMsg()))
	}
	return messages
}

// serve answers from the hierarchy over UDP on a local port, returning its address.
func (h *testHierarchy) serve(t *testing.T) string {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	started := make(chan struct{})
	server := &dns.Server{
		PacketConn:        pc,
		NotifyStartedFunc: func() { close(started) },
		Handler: dns.HandlerFunc(func(w dns.ResponseWriter, r *dns.Msg) {
			_ = w.WriteMsg(h.reply(r))
		}),
	}

	go func() {
		_ = server.ActivateAndServe()
	}()
	<-started

	t.Cleanup(func() {
		_ = server.Shutdown()
	})

	return pc.LocalAddr().String()
}

// execute runs the command tree with args, returning what was written to stdout.
func execute(args ...string) (string, error) {
	c := NewRootCommand()
	out := new(bytes.Buffer)
	c.SetOut(out)
	c.SetErr(new(bytes.Buffer))
	c.SetArgs(append(args, "--cache-size", "0"))
	err := c.Execute()
	return out.String(), err
}
