package chainverify

import (
	"context"
	"time"

	"github.com/miekg/dns"
)

type Response struct {
	Msg      *dns.Msg
	Err      error
	Duration time.Duration
}

func (r *Response) HasError() bool {
	return r != nil && r.Err != nil
}

func (r *Response) IsEmpty() bool {
	return r == nil || r.Msg == nil
}

func (r *Response) truncated() bool {
	if r.IsEmpty() {
		return false
	}
	return r.Msg.Truncated
}

func ResponseError(err error) *Response {
	return &Response{
		Err: err,
	}
}

//---

type exchanger interface {
	exchange(context.Context, *dns.Msg) *Response
}
