package jsonl

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/suite"

	"atlas/pkg/rawstore"
)

// StoreTestSuite tests the filesystem raw store.
type StoreTestSuite struct {
	suite.Suite
	tempDir string
	store   *Store
}

// SetupTest runs before each test.
func (s *StoreTestSuite) SetupTest() {
	var err error
	s.tempDir, err = os.MkdirTemp("", "rawstore-test-*")
	s.Require().NoError(err)
	s.store = New(s.tempDir, Options{})
}

// TearDownTest runs after each test.
func (s *StoreTestSuite) TearDownTest() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

// TestSaveAndGet tests the basic save/get round trip.
func (s *StoreTestSuite) TestSaveAndGet() {
	result, err := s.store.Save("acme", rawstore.SaveRequest{
		Text:     "Router reset: hold power 10s",
		Source:   "manual.txt",
		Metadata: map[string]any{"lang": "en"},
	})
	s.Require().NoError(err)
	s.True(result.Saved)
	s.False(result.Duplicate)
	s.Len(result.DocID, 26)
	s.Equal(len("Router reset: hold power 10s"), result.Bytes)
	s.Contains(result.SHA256, "sha256:")

	doc, err := s.store.Get("acme", result.DocID, rawstore.VariantRaw)
	s.Require().NoError(err)
	s.Equal("Router reset: hold power 10s", doc.Text)
	s.Equal("manual.txt", doc.Source)
	s.Equal("acme", doc.TenantID)
	s.Equal(result.SHA256, doc.SHA256)
	s.Equal("en", doc.Metadata["lang"])
}

// TestSaveEmptyText tests that empty text is rejected.
func (s *StoreTestSuite) TestSaveEmptyText() {
	_, err := s.store.Save("acme", rawstore.SaveRequest{Text: "", Source: "x"})
	s.ErrorIs(err, rawstore.ErrEmptyText)
}

// TestSaveDedup tests dedup on (content hash, source).
func (s *StoreTestSuite) TestSaveDedup() {
	first, err := s.store.Save("acme", rawstore.SaveRequest{Text: "same text", Source: "a.txt"})
	s.Require().NoError(err)

	// Same text, same source: duplicate, nothing written.
	dup, err := s.store.Save("acme", rawstore.SaveRequest{Text: "same text", Source: "a.txt"})
	s.Require().NoError(err)
	s.True(dup.Duplicate)
	s.False(dup.Saved)
	s.Equal(first.DocID, dup.DocID)
	s.Equal(first.Date, dup.Date)

	// Same text from a different source is a distinct document.
	other, err := s.store.Save("acme", rawstore.SaveRequest{Text: "same text", Source: "b.txt"})
	s.Require().NoError(err)
	s.False(other.Duplicate)
	s.NotEqual(first.DocID, other.DocID)
}

// TestSaveForceReindex tests that force bypasses dedup.
func (s *StoreTestSuite) TestSaveForceReindex() {
	first, err := s.store.Save("acme", rawstore.SaveRequest{Text: "same text", Source: "a.txt"})
	s.Require().NoError(err)

	forced, err := s.store.Save("acme", rawstore.SaveRequest{
		Text:         "same text",
		Source:       "a.txt",
		ForceReindex: true,
	})
	s.Require().NoError(err)
	s.False(forced.Duplicate)
	s.True(forced.Saved)
	s.NotEqual(first.DocID, forced.DocID)
}

// TestClientDocIDIgnoredByDefault tests that caller ids need explicit opt-in.
func (s *StoreTestSuite) TestClientDocIDIgnoredByDefault() {
	result, err := s.store.Save("acme", rawstore.SaveRequest{
		Text:   "text",
		Source: "a.txt",
		DocID:  "client-chosen-id",
	})
	s.Require().NoError(err)
	s.NotEqual("client-chosen-id", result.DocID)

	allowing := New(s.tempDir, Options{AllowClientDocID: true})
	result, err = allowing.Save("acme", rawstore.SaveRequest{
		Text:   "other text",
		Source: "a.txt",
		DocID:  "client-chosen-id",
	})
	s.Require().NoError(err)
	s.Equal("client-chosen-id", result.DocID)
}

// TestGetNotFound tests lookups of unknown ids.
func (s *StoreTestSuite) TestGetNotFound() {
	_, err := s.store.Get("acme", "no-such-id", rawstore.VariantRaw)
	s.ErrorIs(err, rawstore.ErrNotFound)
}

// TestGetInvalidVariant tests variant validation.
func (s *StoreTestSuite) TestGetInvalidVariant() {
	_, err := s.store.Get("acme", "whatever", "shiny")
	s.ErrorIs(err, rawstore.ErrInvalidVariant)
}

// TestGetInconsistency tests that an index entry without a backing record
// is reported as a storage inconsistency, not a plain miss.
func (s *StoreTestSuite) TestGetInconsistency() {
	result, err := s.store.Save("acme", rawstore.SaveRequest{Text: "text", Source: "a.txt"})
	s.Require().NoError(err)

	// Remove the day file out from under the index.
	dayFile := filepath.Join(s.tempDir, "raw", "acme", result.Date+".jsonl")
	s.Require().NoError(os.Remove(dayFile))

	_, err = s.store.Get("acme", result.DocID, rawstore.VariantRaw)
	var inconsistency rawstore.InconsistencyError
	s.ErrorAs(err, &inconsistency)
	s.Equal(result.DocID, inconsistency.DocID)
}

// TestPersistClean tests the text-free clean variant tree.
func (s *StoreTestSuite) TestPersistClean() {
	cleanStore := New(s.tempDir, Options{PersistClean: true})
	result, err := cleanStore.Save("acme", rawstore.SaveRequest{Text: "secret text", Source: "a.txt"})
	s.Require().NoError(err)

	doc, err := cleanStore.Get("acme", result.DocID, rawstore.VariantClean)
	s.Require().NoError(err)
	s.Empty(doc.Text)
	s.Equal("clean", doc.Variant)
	s.Equal(result.SHA256, doc.SHA256)
}

// TestMonotonicDocIDs tests that save order matches id order.
func (s *StoreTestSuite) TestMonotonicDocIDs() {
	texts := []string{"alpha", "bravo", "charlie", "delta"}
	ids := make([]string, 0, len(texts))
	for _, text := range texts {
		result, err := s.store.Save("acme", rawstore.SaveRequest{Text: text, Source: "a.txt"})
		s.Require().NoError(err)
		ids = append(ids, result.DocID)
	}
	s.True(sort.StringsAreSorted(ids))
}

// TestListPagination tests that cursor paging visits every document exactly
// once in ascending order.
func (s *StoreTestSuite) TestListPagination() {
	texts := []string{"one", "two", "three", "four", "five", "six", "seven"}
	for _, text := range texts {
		_, err := s.store.Save("acme", rawstore.SaveRequest{Text: text, Source: "a.txt"})
		s.Require().NoError(err)
	}

	var visited []string
	cursor := ""
	for {
		items, next, err := s.store.List("acme", rawstore.ListOptions{Limit: 3, Cursor: cursor})
		s.Require().NoError(err)
		for _, item := range items {
			visited = append(visited, item.DocID)
		}
		if next == "" {
			break
		}
		cursor = next
	}

	s.Len(visited, len(texts))
	s.True(sort.StringsAreSorted(visited))
	seen := make(map[string]bool)
	for _, id := range visited {
		s.False(seen[id], "doc %s visited twice", id)
		seen[id] = true
	}
}

// TestListSourceFilter tests filtering by source.
func (s *StoreTestSuite) TestListSourceFilter() {
	_, err := s.store.Save("acme", rawstore.SaveRequest{Text: "one", Source: "a.txt"})
	s.Require().NoError(err)
	_, err = s.store.Save("acme", rawstore.SaveRequest{Text: "two", Source: "b.txt"})
	s.Require().NoError(err)
	_, err = s.store.Save("acme", rawstore.SaveRequest{Text: "three", Source: "a.txt"})
	s.Require().NoError(err)

	items, _, err := s.store.List("acme", rawstore.ListOptions{Limit: 10, Source: "a.txt"})
	s.Require().NoError(err)
	s.Len(items, 2)
	for _, item := range items {
		s.Equal("a.txt", item.Source)
	}
}

// TestTenantIsolation tests that tenants never see each other's documents.
func (s *StoreTestSuite) TestTenantIsolation() {
	result, err := s.store.Save("acme", rawstore.SaveRequest{Text: "acme doc", Source: "a.txt"})
	s.Require().NoError(err)

	_, err = s.store.Get("globex", result.DocID, rawstore.VariantRaw)
	s.ErrorIs(err, rawstore.ErrNotFound)

	items, _, err := s.store.List("globex", rawstore.ListOptions{Limit: 10})
	s.Require().NoError(err)
	s.Empty(items)
}

// TestConcurrentSaves tests that concurrent writers do not lose index updates.
func (s *StoreTestSuite) TestConcurrentSaves() {
	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			_, err := s.store.Save("acme", rawstore.SaveRequest{
				Text:   "document body " + string(rune('a'+n)),
				Source: "bulk.txt",
			})
			s.NoError(err)
		}(i)
	}
	wg.Wait()

	items, _, err := s.store.List("acme", rawstore.ListOptions{Limit: 100})
	s.Require().NoError(err)
	s.Len(items, writers)
}

// TestStoreTestSuite runs the test suite.
func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
