package chainverify

import "errors"

var (
	ErrNilMessageSentToExchange = errors.New("nil message sent to exchange")
	ErrNoUpstreamsConfigured    = errors.New("no upstream servers configured")
	ErrInvalidUpstream          = errors.New("invalid upstream server")
	ErrUnableToResolveAnswer    = errors.New("unable to resolve answer")
	ErrEmptyResponse            = errors.New("upstream returned an empty response")
	ErrTruncatedResponse        = errors.New("upstream returned a truncated response")
	ErrUnexpectedStatusCode     = errors.New("unexpected http status code")
	ErrUnexpectedContentType    = errors.New("unexpected http content type")
	ErrQuestionMismatch         = errors.New("response question does not match the query")

	errServerFailure = errors.New("upstream returned servfail")
)
