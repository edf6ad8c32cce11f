package chainverify

import (
	"time"

	"github.com/nsmithuk/chainverify/dnssec"
)

const (
	DefaultMaxAllowedTTL = uint32(60 * 60 * 48) // 48 Hours

	DefaultTimeoutUDP = 1 * time.Second
	DefaultTimeoutTCP = 3 * time.Second
	DefaultTimeoutDoH = 5 * time.Second

	DefaultRetryAttempts = uint(3)
	DefaultRetryDelay    = 100 * time.Millisecond

	DefaultCacheSize = 1024

	DefaultPort = "53"
)

var (
	// MaxAllowedTTL define the maximum TTL that we'll cache any message for. Shorter TTLs on received records
	// will still be respected.
	MaxAllowedTTL = DefaultMaxAllowedTTL

	TimeoutUDP = DefaultTimeoutUDP
	TimeoutTCP = DefaultTimeoutTCP
	TimeoutDoH = DefaultTimeoutDoH

	// RetryAttempts is the total number of upstreams tried for a single question, including the first.
	RetryAttempts = DefaultRetryAttempts
	RetryDelay    = DefaultRetryDelay

	// DefaultUpstreams are the validating-capable recursive resolvers used when none are configured.
	DefaultUpstreams = []string{
		"1.1.1.1",
		"8.8.8.8",
		"2606:4700:4700::1111",
		"2001:4860:4860::8888",
	}
)

//---

// Cache Default (disabled) cache function.
var Cache CacheInterface = nil

//---

type Logger func(string)

// Default logging functions just black-hole the input.

var Query Logger = func(s string) {}
var Debug Logger = func(s string) {}
var Info Logger = func(s string) {}
var Warn Logger = func(s string) {}

//---

func init() {
	dnssec.Info = func(s string) {
		Info(s)
	}
	dnssec.Warn = func(s string) {
		Warn(s)
	}
	dnssec.Debug = func(s string) {
		Debug(s)
	}
}
