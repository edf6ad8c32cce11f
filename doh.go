package chainverify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/miekg/dns"
)

const dohMediaType = "application/dns-message"

type httpClient interface {
	Do(*http.Request) (*http.Response, error)
}

// dohServer is an upstream reached with DNS over HTTPS (RFC 8484), using POST.
type dohServer struct {
	url    string
	client httpClient
}

func newDohServer(url string) *dohServer {
	return &dohServer{
		url:    url,
		client: &http.Client{Timeout: TimeoutDoH},
	}
}

func (server *dohServer) String() string {
	return server.url
}

func (server *dohServer) exchange(ctx context.Context, m *dns.Msg) *Response {
	if m == nil || len(m.Question) == 0 {
		return ResponseError(fmt.Errorf("%w: %s", ErrNilMessageSentToExchange, server.url))
	}

	r := server.post(ctx, m)
	logQuery(ctx, m, server.url, r)
	return r
}

func (server *dohServer) post(ctx context.Context, m *dns.Msg) *Response {
	start := time.Now()

	// RFC 8484 §4.1 asks for an ID of 0, making responses cache friendly.
	query := m.Copy()
	query.Id = 0

	raw, err := query.Pack()
	if err != nil {
		return ResponseError(fmt.Errorf("can't pack message: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, server.url, bytes.NewReader(raw))
	if err != nil {
		return ResponseError(err)
	}
	req.Header.Set("Content-Type", dohMediaType)
	req.Header.Set("Accept", dohMediaType)

	httpResponse, err := server.client.Do(req)
	if err != nil {
		return &Response{Err: fmt.Errorf("can't perform https request: %w", err), Duration: time.Since(start)}
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode != http.StatusOK {
		return &Response{
			Err:      fmt.Errorf("%w: expected %d, got %d", ErrUnexpectedStatusCode, http.StatusOK, httpResponse.StatusCode),
			Duration: time.Since(start),
		}
	}

	if contentType := httpResponse.Header.Get("Content-Type"); contentType != dohMediaType {
		return &Response{
			Err:      fmt.Errorf("%w: expected '%s', got '%s'", ErrUnexpectedContentType, dohMediaType, contentType),
			Duration: time.Since(start),
		}
	}

	body, err := io.ReadAll(io.LimitReader(httpResponse.Body, dns.MaxMsgSize))
	if err != nil {
		return &Response{Err: fmt.Errorf("can't read response body: %w", err), Duration: time.Since(start)}
	}

	msg := new(dns.Msg)
	if err := msg.Unpack(body); err != nil {
		return &Response{Err: fmt.Errorf("can't unpack message: %w", err), Duration: time.Since(start)}
	}
	msg.Id = m.Id

	return &Response{Msg: msg, Duration: time.Since(start)}
}
