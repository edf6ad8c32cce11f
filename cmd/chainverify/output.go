package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/nsmithuk/chainverify/dnssec"
)

var errNotSecure = errors.New("answer is not secure")

// printResult writes the status, then either the verified records or the reasons for failure.
// A result that isn't secure is reported as an error, so the process exits non-zero.
func printResult(w io.Writer, q dnssec.Question, result dnssec.VerificationResult[dnssec.RRset]) error {
	fmt.Fprintf(w, "%s: %s\n", q.Key(), result.Status)

	if !result.IsSecure() {
		for _, reason := range result.Reasons {
			fmt.Fprintf(w, "  - %s\n", reason)
		}
		return fmt.Errorf("%w: %s", errNotSecure, result.Status)
	}

	rrs, err := result.Value.RRs()
	if err != nil {
		return err
	}
	for _, rr := range rrs {
		fmt.Fprintln(w, rr.String())
	}
	return nil
}
