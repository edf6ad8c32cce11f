package dnssec

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"fmt"
	"math"
	"math/big"

	"github.com/cloudflare/circl/sign/ed448"
	"github.com/miekg/dns"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// Algorithm binds a DNSSEC algorithm number to the primitives needed to use it.
type Algorithm struct {
	ID   uint8
	Name string

	// Hash is applied to the signed data before verification. Zero for algorithms that sign the message directly.
	Hash crypto.Hash

	ParsePublicKey     func([]byte) (crypto.PublicKey, error)
	SerialisePublicKey func(crypto.PublicKey) ([]byte, error)

	// SignatureToDnssec converts a signature as produced by the Go crypto packages into its RRSIG form.
	SignatureToDnssec   func([]byte) ([]byte, error)
	SignatureFromDnssec func([]byte) ([]byte, error)

	verify func(key crypto.PublicKey, digest, signature []byte) error
}

var algorithms = map[uint8]*Algorithm{
	dns.RSASHA1:          rsaAlgorithm(dns.RSASHA1, crypto.SHA1),
	dns.RSASHA1NSEC3SHA1: rsaAlgorithm(dns.RSASHA1NSEC3SHA1, crypto.SHA1),
	dns.RSASHA256:        rsaAlgorithm(dns.RSASHA256, crypto.SHA256),
	dns.RSASHA512:        rsaAlgorithm(dns.RSASHA512, crypto.SHA512),
	dns.ECDSAP256SHA256:  ecdsaAlgorithm(dns.ECDSAP256SHA256, crypto.SHA256, elliptic.P256()),
	dns.ECDSAP384SHA384:  ecdsaAlgorithm(dns.ECDSAP384SHA384, crypto.SHA384, elliptic.P384()),
	dns.ED25519: {
		ID:                  dns.ED25519,
		Name:                dns.AlgorithmToString[dns.ED25519],
		ParsePublicKey:      parseEd25519PublicKey,
		SerialisePublicKey:  serialiseEd25519PublicKey,
		SignatureToDnssec:   passthrough,
		SignatureFromDnssec: passthrough,
		verify: func(key crypto.PublicKey, msg, signature []byte) error {
			if !ed25519.Verify(key.(ed25519.PublicKey), msg, signature) {
				return ErrInvalidSignature
			}
			return nil
		},
	},
	dns.ED448: {
		ID:                  dns.ED448,
		Name:                dns.AlgorithmToString[dns.ED448],
		ParsePublicKey:      parseEd448PublicKey,
		SerialisePublicKey:  serialiseEd448PublicKey,
		SignatureToDnssec:   passthrough,
		SignatureFromDnssec: passthrough,
		verify: func(key crypto.PublicKey, msg, signature []byte) error {
			if !ed448.Verify(key.(ed448.PublicKey), msg, signature, "") {
				return ErrInvalidSignature
			}
			return nil
		},
	},
}

// LookupAlgorithm returns the implementation for a DNSSEC algorithm number.
func LookupAlgorithm(id uint8) (*Algorithm, error) {
	if a, ok := algorithms[id]; ok {
		return a, nil
	}
	return nil, &UnsupportedAlgorithmError{Algorithm: id}
}

// Verify checks an RRSIG-format signature over data.
func (a *Algorithm) Verify(key crypto.PublicKey, data, signature []byte) error {
	sig, err := a.SignatureFromDnssec(signature)
	if err != nil {
		return err
	}

	digest := data
	if a.Hash != 0 {
		h := a.Hash.New()
		h.Write(data)
		digest = h.Sum(nil)
	}

	return a.verify(key, digest, sig)
}

func passthrough(b []byte) ([]byte, error) {
	return b, nil
}

//---
// RSA, RFC 3110 §2

func rsaAlgorithm(id uint8, hash crypto.Hash) *Algorithm {
	return &Algorithm{
		ID:                  id,
		Name:                dns.AlgorithmToString[id],
		Hash:                hash,
		ParsePublicKey:      parseRsaPublicKey,
		SerialisePublicKey:  serialiseRsaPublicKey,
		SignatureToDnssec:   passthrough,
		SignatureFromDnssec: passthrough,
		verify: func(key crypto.PublicKey, digest, signature []byte) error {
			if err := rsa.VerifyPKCS1v15(key.(*rsa.PublicKey), hash, digest, signature); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
			}
			return nil
		},
	}
}

func parseRsaPublicKey(b []byte) (crypto.PublicKey, error) {
	input := cryptobyte.String(b)

	var short uint8
	if !input.ReadUint8(&short) {
		return nil, &MalformedKeyError{Algorithm: "RSA", Expected: 1, Actual: len(b)}
	}

	exponentLength := int(short)
	if exponentLength == 0 {
		var long uint16
		if !input.ReadUint16(&long) {
			return nil, &MalformedKeyError{Algorithm: "RSA", Expected: 3, Actual: len(b)}
		}
		exponentLength = int(long)
	}

	var exponent []byte
	if !input.ReadBytes(&exponent, exponentLength) {
		return nil, &MalformedKeyError{Algorithm: "RSA", Expected: len(b) - len(input) + exponentLength, Actual: len(b)}
	}
	if len(input) == 0 {
		return nil, &MalformedKeyError{Algorithm: "RSA", Reason: "modulus is empty"}
	}

	e := new(big.Int).SetBytes(exponent)
	if !e.IsInt64() || e.Int64() > math.MaxInt32 || e.Sign() == 0 {
		return nil, &MalformedKeyError{Algorithm: "RSA", Reason: "exponent out of range"}
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(input),
		E: int(e.Int64()),
	}, nil
}

func serialiseRsaPublicKey(key crypto.PublicKey) ([]byte, error) {
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: expected an rsa key, got %T", ErrUnexpectedRecordType, key)
	}

	exponent := big.NewInt(int64(pub.E)).Bytes()
	b := cryptobyte.NewBuilder(nil)
	if len(exponent) < 256 {
		b.AddUint8(uint8(len(exponent)))
	} else {
		b.AddUint8(0)
		b.AddUint16(uint16(len(exponent)))
	}
	b.AddBytes(exponent)
	b.AddBytes(pub.N.Bytes())
	return b.Bytes()
}

//---
// ECDSA, RFC 6605 §4

func ecdsaAlgorithm(id uint8, hash crypto.Hash, curve elliptic.Curve) *Algorithm {
	size := (curve.Params().BitSize + 7) / 8
	return &Algorithm{
		ID:   id,
		Name: dns.AlgorithmToString[id],
		Hash: hash,
		ParsePublicKey: func(b []byte) (crypto.PublicKey, error) {
			if len(b) != size*2 {
				return nil, &MalformedKeyError{Algorithm: dns.AlgorithmToString[id], Expected: size * 2, Actual: len(b)}
			}
			return &ecdsa.PublicKey{
				Curve: curve,
				X:     new(big.Int).SetBytes(b[:size]),
				Y:     new(big.Int).SetBytes(b[size:]),
			}, nil
		},
		SerialisePublicKey: func(key crypto.PublicKey) ([]byte, error) {
			pub, ok := key.(*ecdsa.PublicKey)
			if !ok || pub.Curve != curve {
				return nil, fmt.Errorf("%w: expected an ecdsa %s key, got %T", ErrUnexpectedRecordType, curve.Params().Name, key)
			}
			out := make([]byte, size*2)
			pub.X.FillBytes(out[:size])
			pub.Y.FillBytes(out[size:])
			return out, nil
		},
		SignatureToDnssec: func(sig []byte) ([]byte, error) {
			return EcdsaSignatureToDnssec(sig, size)
		},
		SignatureFromDnssec: func(sig []byte) ([]byte, error) {
			return EcdsaSignatureFromDnssec(sig, size)
		},
		verify: func(key crypto.PublicKey, digest, signature []byte) error {
			if !ecdsa.VerifyASN1(key.(*ecdsa.PublicKey), digest, signature) {
				return ErrInvalidSignature
			}
			return nil
		},
	}
}

// EcdsaSignatureToDnssec converts an ASN.1 DER encoded ECDSA signature into the
// fixed width r || s form carried in RRSIG records.
func EcdsaSignatureToDnssec(der []byte, size int) ([]byte, error) {
	r, s := new(big.Int), new(big.Int)
	var inner cryptobyte.String
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, fmt.Errorf("%w: invalid asn.1 ecdsa signature", ErrMalformedSignature)
	}

	if r.Sign() < 0 || s.Sign() < 0 || r.BitLen() > size*8 || s.BitLen() > size*8 {
		return nil, fmt.Errorf("%w: ecdsa signature integers do not fit in %d bytes", ErrMalformedSignature, size)
	}

	out := make([]byte, size*2)
	r.FillBytes(out[:size])
	s.FillBytes(out[size:])
	return out, nil
}

// EcdsaSignatureFromDnssec converts an RRSIG r || s signature into ASN.1 DER.
func EcdsaSignatureFromDnssec(sig []byte, size int) ([]byte, error) {
	if len(sig) != size*2 {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedSignature, size*2, len(sig))
	}

	r := new(big.Int).SetBytes(sig[:size])
	s := new(big.Int).SetBytes(sig[size:])

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1BigInt(r)
		b.AddASN1BigInt(s)
	})
	return b.Bytes()
}

//---
// EdDSA, RFC 8080 §3

func parseEd25519PublicKey(b []byte) (crypto.PublicKey, error) {
	if len(b) != ed25519.PublicKeySize {
		return nil, &MalformedKeyError{Algorithm: "ED25519", Expected: ed25519.PublicKeySize, Actual: len(b)}
	}
	return ed25519.PublicKey(append([]byte(nil), b...)), nil
}

func serialiseEd25519PublicKey(key crypto.PublicKey) ([]byte, error) {
	pub, ok := key.(ed25519.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: expected an ed25519 key, got %T", ErrUnexpectedRecordType, key)
	}
	return append([]byte(nil), pub...), nil
}

func parseEd448PublicKey(b []byte) (crypto.PublicKey, error) {
	if len(b) != ed448.PublicKeySize {
		return nil, &MalformedKeyError{Algorithm: "ED448", Expected: ed448.PublicKeySize, Actual: len(b)}
	}
	return ed448.PublicKey(append([]byte(nil), b...)), nil
}

func serialiseEd448PublicKey(key crypto.PublicKey) ([]byte, error) {
	pub, ok := key.(ed448.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: expected an ed448 key, got %T", ErrUnexpectedRecordType, key)
	}
	return append([]byte(nil), pub...), nil
}
