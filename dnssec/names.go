package dnssec

import (
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

const rootName = "."

// Fqdn ensures the name carries a trailing dot. Case is left untouched.
func Fqdn(name string) string {
	return dns.Fqdn(name)
}

// SerialiseName returns the uncompressed wire form of name.
func SerialiseName(name string) ([]byte, error) {
	buf := make([]byte, 256)
	off, err := dns.PackDomainName(Fqdn(name), buf, 0, nil, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidName, name, err)
	}
	return buf[:off], nil
}

// ParseName decodes a wire format name from the start of b, returning the name
// and the number of bytes it occupied.
func ParseName(b []byte) (string, int, error) {
	name, off, err := dns.UnpackDomainName(b, 0)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	return name, off, nil
}

// CountLabels returns the number of labels in name. The root has none.
func CountLabels(name string) int {
	return dns.CountLabel(Fqdn(name))
}

// IsAncestor reports whether ancestor is name itself or one of its parents.
func IsAncestor(ancestor, name string) bool {
	ancestor, name = Fqdn(ancestor), Fqdn(name)
	if ancestor == rootName || ancestor == name {
		return true
	}
	return strings.HasSuffix(name, "."+ancestor)
}

// ZonesInName lists every zone apex candidate for name, ordered from the
// top of the hierarchy down to the name itself.
func ZonesInName(name string, includeRoot bool) []string {
	name = Fqdn(name)
	labelIndexes := dns.Split(name)

	zones := make([]string, 0, len(labelIndexes)+1)
	if includeRoot {
		zones = append(zones, rootName)
	}
	if name == rootName {
		return zones
	}
	for i := len(labelIndexes) - 1; i >= 0; i-- {
		zones = append(zones, name[labelIndexes[i]:])
	}
	return zones
}

// wildcardOwner rebuilds the owner name a wildcard RRSIG was generated over.
func wildcardOwner(name string, labels int) string {
	labelIndexes := dns.Split(name)
	if labels <= 0 || labels >= len(labelIndexes) {
		return "*."
	}
	return "*." + name[labelIndexes[len(labelIndexes)-labels]:]
}
