// Package jcsdl encodes filter editor state as JCSDL, CSDL annotated with
// comment lines that carry hashes and the metadata needed to rebuild each filter,
// and decodes such documents back after verifying they were not edited.
//
// A document looks like:
//
//	// JCSDL_VERSION 1.0
//	// JCSDL_MASTER <hash> AND
//	// JCSDL_START <hash> twitter.user.name,equals,25-3,cs
//	twitter.user.name cs == "bob"
//	// JCSDL_END
//	AND
//	// JCSDL_START <hash> klout.score,greaterThan,14-2
//	klout.score > 40
//	// JCSDL_END
//	// JCSDL_MASTER_END
//
// Decoding is all or nothing: a hash mismatch, a malformed line or a filter that
// does not resolve against the schema fails the whole document. Encoding is best
// effort: filters that cannot be encoded are left out and reported.
package jcsdl

import (
	"go.uber.org/zap"

	"github.com/hyperjump/jcsdl/internal/digest"
	"github.com/hyperjump/jcsdl/internal/models"
	"github.com/hyperjump/jcsdl/internal/schema"
)

// Version is written on the first line of encoded documents.
const Version = "1.0"

const (
	versionPrefix = "// JCSDL_VERSION"
	masterPrefix  = "// JCSDL_MASTER "
	startPrefix   = "// JCSDL_START "
	endMarker     = "// JCSDL_END"
	masterEnd     = "// JCSDL_MASTER_END"
	csMarker      = "cs"
)

// Resolver looks up field and operator definitions. *schema.Definition implements it.
type Resolver interface {
	Field(target string, path []string) (*schema.FieldDefinition, error)
	OperatorCode(name string) (string, error)
}

// Codec translates between filters and JCSDL text. A Codec is safe for
// concurrent use as long as its Resolver is not mutated.
type Codec struct {
	resolver Resolver
	verifier *Verifier
	values   *ValueCodec
	version  string
	logger   *zap.Logger
}

// Option configures a Codec.
type Option func(*Codec)

// WithHash sets the digest used for filter and master hashes.
func WithHash(h digest.HashFunc) Option {
	return func(c *Codec) { c.verifier = NewVerifier(h) }
}

// WithEscaper replaces the CSDL string-literal escaping rules.
func WithEscaper(e Escaper) Option {
	return func(c *Codec) { c.values = NewValueCodec(e) }
}

// WithVersion sets the version written by Encode.
func WithVersion(v string) Option {
	return func(c *Codec) {
		if v != "" {
			c.version = v
		}
	}
}

// WithLogger sets a logger for skipped filters and rejected documents.
func WithLogger(l *zap.Logger) Option {
	return func(c *Codec) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a codec resolving fields and operators through r.
func New(r Resolver, opts ...Option) *Codec {
	c := &Codec{
		resolver: r,
		verifier: NewVerifier(nil),
		values:   NewValueCodec(nil),
		version:  Version,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Verifier returns the verifier used by c.
func (c *Codec) Verifier() *Verifier {
	return c.verifier
}

// Decode parses a JCSDL document using the default codec settings.
func Decode(text string, r Resolver) (*models.Document, error) {
	return New(r).Decode(text)
}

// Encode renders filters joined by logic using the default codec settings.
func Encode(filters []*models.Filter, logic models.Logic, r Resolver) string {
	return New(r).Encode(&models.Document{Logic: logic, Filters: filters})
}
