package jcsdl

import "github.com/hyperjump/jcsdl/internal/digest"

// Verifier computes and checks the in-band hashes of a document.
type Verifier struct {
	hash digest.HashFunc
}

// NewVerifier returns a verifier using h, or MD5 when h is nil.
func NewVerifier(h digest.HashFunc) *Verifier {
	if h == nil {
		h = digest.MD5
	}
	return &Verifier{hash: h}
}

// FilterHash hashes one filter's CSDL fragment.
func (v *Verifier) FilterHash(fragment string) string {
	return v.hash([]byte(fragment))
}

// DocumentHash hashes the logic and the joined filter blocks.
func (v *Verifier) DocumentHash(logic, body string) string {
	return v.hash([]byte(logic + "\n" + body))
}

// VerifyFilter checks the hash carried on the start line of filter index.
func (v *Verifier) VerifyFilter(index int, hash, fragment string) error {
	if actual := v.FilterHash(fragment); actual != hash {
		return &IntegrityError{Filter: index, Expected: hash, Actual: actual}
	}
	return nil
}

// VerifyDocument checks the master hash.
func (v *Verifier) VerifyDocument(hash, logic, body string) error {
	if actual := v.DocumentHash(logic, body); actual != hash {
		return &IntegrityError{Filter: -1, Expected: hash, Actual: actual}
	}
	return nil
}
