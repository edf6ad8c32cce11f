package dnssec

import (
	"slices"
	"strings"
)

// VerificationResult carries either a verified value, or the status and reasons
// explaining why verification did not succeed. Each layer that handles a
// failure adds its own explanation ahead of the reasons it was given.
type VerificationResult[T any] struct {
	Status  SecurityStatus
	Value   T
	Reasons []string
}

func Success[T any](value T) VerificationResult[T] {
	return VerificationResult[T]{Status: Secure, Value: value}
}

// Failure builds an unsuccessful result. Passing Secure is a programming error.
func Failure[T any](status SecurityStatus, reasons ...string) VerificationResult[T] {
	if status == Secure {
		panic("dnssec: a failed verification cannot be secure")
	}
	return VerificationResult[T]{Status: status, Reasons: reasons}
}

// augmentFailure re-types a failed result, adding reason ahead of its existing reasons.
func augmentFailure[T, U any](r VerificationResult[U], reason string) VerificationResult[T] {
	return Failure[T](r.Status, slices.Insert(slices.Clone(r.Reasons), 0, reason)...)
}

func (r VerificationResult[T]) IsSecure() bool {
	return r.Status == Secure
}

func (r VerificationResult[T]) String() string {
	if len(r.Reasons) == 0 {
		return r.Status.String()
	}
	return r.Status.String() + ": " + strings.Join(r.Reasons, ": ")
}
