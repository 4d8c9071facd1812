package rawstore

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base32"
	"encoding/binary"
	"encoding/hex"
	"strings"
	"time"
)

// docIDEncoding renders ids in lowercase base32. The extended-hex alphabet
// (0-9 then a-v) keeps byte order and string order identical, which is what
// makes doc ids sort chronologically.
var docIDEncoding = base32.HexEncoding.WithPadding(base32.NoPadding)

// NewDocID returns a ULID-style identifier: 48 bits of millisecond
// timestamp followed by 80 random bits, 26 lowercase characters.
// Lexicographic order of ids equals creation order.
func NewDocID() string {
	return newDocIDAt(time.Now())
}

func newDocIDAt(t time.Time) string {
	var b [16]byte
	ms := uint64(t.UnixMilli())
	binary.BigEndian.PutUint64(b[:8], ms<<16) // keep the high 48 bits
	_, _ = rand.Read(b[6:])
	return strings.ToLower(docIDEncoding.EncodeToString(b[:]))
}

// ContentHash computes the dedup digest of a document's text.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "sha256:" + hex.EncodeToString(sum[:])
}
