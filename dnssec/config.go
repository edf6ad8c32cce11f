package dnssec

import "github.com/nsmithuk/dnssec-root-anchors-go/anchors"

var (
	// RootTrustAnchors are the root zone DS digests used when a caller supplies no anchors of its own.
	RootTrustAnchors = trustAnchorsFromDS(anchors.GetValid())
)

type Logger func(string)

// Default logging functions just black-hole the input.

var Debug Logger = func(s string) {}
var Info Logger = func(s string) {}
var Warn Logger = func(s string) {}
