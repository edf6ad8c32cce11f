package dnssec

import (
	"errors"
	"fmt"

	"github.com/miekg/dns"
)

var (
	ErrNoMatchingRecords     = errors.New("no records match the question")
	ErrTTLMismatch           = errors.New("rrset records do not share the same ttl")
	ErrInvalidName           = errors.New("invalid domain name")
	ErrUnexpectedRecordType  = errors.New("unexpected record type")
	ErrMalformedSignature    = errors.New("malformed signature")
	ErrInvalidDatePeriod     = errors.New("date period ends before it starts")
	ErrTypeCoveredMismatch   = errors.New("rrsig type covered does not match the rrset type")
	ErrInvalidLabelCount     = errors.New("number of labels in the rrset owner name is less than the value in the rrsig rr's labels field")
	ErrAlgorithmMismatch     = errors.New("rrsig and dnskey algorithms differ")
	ErrInvalidSignature      = errors.New("signature is invalid")
	ErrQueryResponseMissing  = errors.New("no message answers the query")
	ErrNilResponse           = errors.New("resolver returned a nil message")
	ErrMalformedMessage      = errors.New("malformed dns message")
	ErrUnexpectedTrustAnchor = errors.New("trust anchor is not a root ds record")
)

// MalformedDataError reports rdata that cannot be decoded for its record type.
type MalformedDataError struct {
	RRType uint16
	Err    error
}

func (e *MalformedDataError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("malformed %s rdata", dns.Type(e.RRType))
	}
	return fmt.Sprintf("malformed %s rdata: %s", dns.Type(e.RRType), e.Err)
}

func (e *MalformedDataError) Unwrap() error {
	return e.Err
}

// MalformedKeyError reports a public key whose wire form does not fit its algorithm.
type MalformedKeyError struct {
	Algorithm string
	Expected  int
	Actual    int
	Reason    string
}

func (e *MalformedKeyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("malformed %s public key: %s", e.Algorithm, e.Reason)
	}
	return fmt.Sprintf("malformed %s public key: expected %d bytes, got %d", e.Algorithm, e.Expected, e.Actual)
}

type UnsupportedAlgorithmError struct {
	Algorithm uint8
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("unsupported dnssec algorithm %d", e.Algorithm)
}

type UnsupportedDigestError struct {
	DigestType uint8
}

func (e *UnsupportedDigestError) Error() string {
	return fmt.Sprintf("unsupported ds digest type %d", e.DigestType)
}
