package jcsdl

import (
	"fmt"
	"testing"

	"github.com/hyperjump/jcsdl/internal/digest"
	"github.com/hyperjump/jcsdl/internal/models"
)

func benchDocument(n int) *models.Document {
	doc := &models.Document{Logic: models.LogicAnd}
	for i := 0; i < n; i++ {
		doc.Filters = append(doc.Filters, &models.Filter{
			Target: "twitter", FieldPath: []string{"user", "name"}, Operator: "contains", Value: fmt.Sprintf("user %d", i),
		})
	}
	return doc
}

func BenchmarkEncode(b *testing.B) {
	c := newTestCodec()
	doc := benchDocument(50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Encode(doc)
	}
}

func BenchmarkDecode(b *testing.B) {
	for _, h := range []struct {
		name string
		fn   digest.HashFunc
	}{
		{digest.NameMD5, digest.MD5},
		{digest.NameXXHash, digest.XXHash},
	} {
		b.Run(h.name, func(b *testing.B) {
			c := newTestCodec(WithHash(h.fn))
			text := c.Encode(benchDocument(50))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.Decode(text); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
