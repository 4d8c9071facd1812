// Package chunker turns free text into the deterministic, overlapping
// windows indexed for retrieval.
package chunker

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	// minChunkSize is the floor applied to the requested window size.
	minChunkSize = 200
	// minWindowStep keeps at least this many fresh characters per window.
	minWindowStep = 50
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize canonicalizes text for chunking and hashing: Unicode NFC,
// carriage returns folded into newlines, whitespace runs collapsed to a
// single space, ends trimmed. Empty input yields the empty string.
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	t := norm.NFC.String(text)
	t = strings.ReplaceAll(t, "\r", "\n")
	t = whitespaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Split divides text into overlapping windows of size characters.
//
// The text is normalized first. Size is floored at 200 and overlap clamped
// to [0, size-50]. Each window is trimmed and skipped if empty. The window
// start advances by size-overlap; a degenerate overlap configuration that
// would not advance forces the start to the window end so the walk always
// terminates. Same inputs always yield the same ordered sequence.
func Split(text string, size, overlap int) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}
	if size < minChunkSize {
		size = minChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap > size-minWindowStep {
		overlap = size - minWindowStep
	}

	runes := []rune(text)
	n := len(runes)
	var chunks []string
	start := 0
	for start < n {
		end := start + size
		if end > n {
			end = n
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end >= n {
			break
		}
		start = end - overlap
		if start <= 0 {
			// avoid looping on pathological overlap
			start = end
		}
	}
	return chunks
}

// ChunkID derives the stable id for one chunk. It is a pure function of
// (tenant, source, index, text), so re-chunking identical input always
// produces identical ids.
func ChunkID(tenantID, source string, index int, text string) string {
	h := sha1.New()
	h.Write([]byte(tenantID))
	h.Write([]byte{'|'})
	h.Write([]byte(source))
	h.Write([]byte{'|'})
	h.Write([]byte(strconv.Itoa(index)))
	h.Write([]byte{'|'})
	h.Write([]byte(text))
	return "sha1:" + hex.EncodeToString(h.Sum(nil))
}
