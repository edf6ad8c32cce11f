package chainverify

import (
	"context"
	"net/http"
	"time"

	"github.com/miekg/dns"
	"github.com/nsmithuk/chainverify/dnssec"
	"github.com/stretchr/testify/mock"
)

// MockDNSClient stands in for a miekg/dns client.
type MockDNSClient struct {
	mock.Mock
}

func (m *MockDNSClient) ExchangeContext(ctx context.Context, msg *dns.Msg, addr string) (*dns.Msg, time.Duration, error) {
	args := m.Called(ctx, msg, addr)
	return args.Get(0).(*dns.Msg), args.Get(1).(time.Duration), args.Error(2)
}

//---

type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return args.Get(0).(*http.Response), args.Error(1)
}

//---

type mockExchanger struct {
	mockExchange func(context.Context, *dns.Msg) *Response
}

func (m *mockExchanger) exchange(ctx context.Context, qmsg *dns.Msg) *Response {
	return m.mockExchange(ctx, qmsg)
}

//---

type mockCache struct {
	mockGet    func(question dnssec.Question) (*dns.Msg, error)
	mockUpdate func(question dnssec.Question, msg *dns.Msg) error
}

func (m *mockCache) Get(question dnssec.Question) (*dns.Msg, error) {
	return m.mockGet(question)
}

func (m *mockCache) Update(question dnssec.Question, msg *dns.Msg) error {
	return m.mockUpdate(question, msg)
}

//---

func newQuery(name string, qtype uint16) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	return msg
}

func newReply(query *dns.Msg, rcode int, answers ...dns.RR) *dns.Msg {
	msg := new(dns.Msg)
	msg.SetRcode(query, rcode)
	msg.Answer = answers
	return msg
}

func newRR(s string) dns.RR {
	rr, err := dns.NewRR(s)
	if err != nil {
		panic(err)
	}
	return rr
}
