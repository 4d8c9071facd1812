package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ChunkerTestSuite tests text normalization and window splitting.
type ChunkerTestSuite struct {
	suite.Suite
}

// TestNormalize tests whitespace collapsing and trimming.
func (s *ChunkerTestSuite) TestNormalize() {
	testCases := []struct {
		input    string
		expected string
		message  string
	}{
		{"", "", "empty input"},
		{"   ", "", "whitespace only"},
		{"hello world", "hello world", "already normalized"},
		{"hello\r\nworld", "hello world", "carriage return collapsed"},
		{"  a\t\tb\n\nc  ", "a b c", "mixed whitespace runs"},
		{"line1\rline2", "line1 line2", "bare carriage return"},
	}

	for _, tc := range testCases {
		s.Equal(tc.expected, Normalize(tc.input), tc.message)
	}
}

// TestNormalizeUnicodeComposition tests NFC composition of decomposed runes.
func (s *ChunkerTestSuite) TestNormalizeUnicodeComposition() {
	// "e" + combining acute accent composes to a single rune.
	decomposed := "café"
	s.Equal("café", Normalize(decomposed))
}

// TestSplitEmpty tests that empty and blank input yield no chunks.
func (s *ChunkerTestSuite) TestSplitEmpty() {
	s.Nil(Split("", 1200, 200))
	s.Nil(Split("   \n\t ", 1200, 200))
}

// TestSplitShortText tests that text shorter than one window is one chunk.
func (s *ChunkerTestSuite) TestSplitShortText() {
	chunks := Split("Router reset: hold power 10s", 1200, 200)
	s.Require().Len(chunks, 1)
	s.Equal("Router reset: hold power 10s", chunks[0])
}

// TestSplitOverlap tests that consecutive windows share the overlap region.
func (s *ChunkerTestSuite) TestSplitOverlap() {
	text := strings.Repeat("abcdefghij", 100) // 1000 chars
	chunks := Split(text, 400, 100)

	s.Require().Greater(len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-100:]
		s.True(strings.HasPrefix(chunks[i], tail), "chunk %d must start with previous tail", i)
	}
	// Joined coverage: last chunk must end where the text ends.
	s.True(strings.HasSuffix(chunks[len(chunks)-1], text[len(text)-10:]))
}

// TestSplitClampsParameters tests the size floor and overlap clamp.
func (s *ChunkerTestSuite) TestSplitClampsParameters() {
	text := strings.Repeat("x", 450)

	// Size below the floor of 200 is raised to 200.
	chunks := Split(text, 10, 0)
	s.Require().Len(chunks, 3)
	s.Len(chunks[0], 200)

	// Overlap larger than size-50 is clamped, so the walk still terminates.
	chunks = Split(text, 200, 500)
	s.NotEmpty(chunks)
	for _, c := range chunks {
		s.NotEmpty(c)
	}
}

// TestSplitDeterminism tests that identical inputs yield identical sequences.
func (s *ChunkerTestSuite) TestSplitDeterminism() {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 60)
	first := Split(text, 300, 60)
	second := Split(text, 300, 60)
	s.Equal(first, second)
}

// TestChunkID tests that chunk ids are stable and input-sensitive.
func (s *ChunkerTestSuite) TestChunkID() {
	id := ChunkID("acme", "manual.txt", 0, "Router reset: hold power 10s")
	s.True(strings.HasPrefix(id, "sha1:"))
	s.Len(id, len("sha1:")+40)

	// Pure function: same inputs, same id.
	s.Equal(id, ChunkID("acme", "manual.txt", 0, "Router reset: hold power 10s"))

	// Any input change produces a different id.
	s.NotEqual(id, ChunkID("acme", "manual.txt", 1, "Router reset: hold power 10s"))
	s.NotEqual(id, ChunkID("acme", "other.txt", 0, "Router reset: hold power 10s"))
	s.NotEqual(id, ChunkID("other", "manual.txt", 0, "Router reset: hold power 10s"))
	s.NotEqual(id, ChunkID("acme", "manual.txt", 0, "different text"))
}

// TestChunkerTestSuite runs the test suite.
func TestChunkerTestSuite(t *testing.T) {
	suite.Run(t, new(ChunkerTestSuite))
}
