package chainverify

import (
	"context"
	"errors"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/miekg/dns"
)

func (pool *upstreamPool) exchange(ctx context.Context, m *dns.Msg) *Response {
	if pool.empty() {
		return ResponseError(ErrNoUpstreamsConfigured)
	}
	if m == nil || len(m.Question) == 0 {
		return ResponseError(ErrNilMessageSentToExchange)
	}

	var response *Response
	attempt := uint(0)

	err := retry.Do(
		func() error {
			server := pool.getServer(attempt)
			attempt++
			if server == nil {
				return retry.Unrecoverable(ErrNoUpstreamsConfigured)
			}

			response = server.exchange(ctx, m)
			switch {
			case response.HasError():
				return response.Err
			case response.IsEmpty():
				return ErrEmptyResponse
			case response.truncated():
				return ErrTruncatedResponse
			case !questionMatches(m, response.Msg):
				return ErrQuestionMismatch
			case response.Msg.Rcode == dns.RcodeServerFailure:
				// Another upstream may do better.
				return errServerFailure
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(max(RetryAttempts, 1)),
		retry.DelayType(retry.FixedDelay),
		retry.Delay(RetryDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			Debug(fmt.Sprintf("retrying [%s] %s after attempt %d: %s", m.Question[0].Name, TypeToString(m.Question[0].Qtype), n+1, err))
		}),
	)

	if err == nil {
		return response
	}

	// If every upstream answered SERVFAIL, that is the answer.
	if errors.Is(err, errServerFailure) && !response.IsEmpty() {
		response.Err = nil
		return response
	}

	err = fmt.Errorf("%w: all upstreams tried returned an unsuccessful response for [%s] %s: %w",
		ErrUnableToResolveAnswer, m.Question[0].Name, TypeToString(m.Question[0].Qtype), err)

	if response == nil {
		return ResponseError(err)
	}
	response.Err = err
	return response
}
