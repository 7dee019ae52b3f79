// Package digest provides the content hash functions used to detect edits to
// JCSDL documents.
package digest

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// HashFunc returns a stable, fixed-length, printable digest of data.
// The digest must not contain spaces since it is embedded in space-separated lines.
type HashFunc func(data []byte) string

// Names of the supported algorithms.
const (
	NameMD5    = "md5"
	NameSHA256 = "sha256"
	NameXXHash = "xxhash"
)

// MD5 is the digest written by existing JCSDL editors.
func MD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// SHA256 returns the hex SHA-256 of data.
func SHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// XXHash returns the 64-bit xxHash of data as 16 hex characters.
func XXHash(data []byte) string {
	s := strconv.FormatUint(xxhash.Sum64(data), 16)
	return strings.Repeat("0", 16-len(s)) + s
}

// New returns the hash function registered under name. An empty name selects MD5.
func New(name string) (HashFunc, error) {
	switch strings.ToLower(name) {
	case "", NameMD5:
		return MD5, nil
	case NameSHA256:
		return SHA256, nil
	case NameXXHash:
		return XXHash, nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q (use md5, sha256 or xxhash)", name)
	}
}
