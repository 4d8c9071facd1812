package vectorindex

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"atlas/pkg/models"
)

// stubIndex is a no-op Index used to observe provider behavior.
type stubIndex struct {
	collection string
}

func (s *stubIndex) Upsert(ctx context.Context, ids, texts []string, metadatas []models.Metadata) error {
	return nil
}

func (s *stubIndex) Search(ctx context.Context, query string, k int) ([]Hit, error) {
	return nil, nil
}

// ProviderTestSuite tests per-tenant index caching and name sanitization.
type ProviderTestSuite struct {
	suite.Suite
}

// TestForCachesPerTenant tests that each tenant gets exactly one index.
func (s *ProviderTestSuite) TestForCachesPerTenant() {
	var created int32
	provider := NewProvider(func(collection string) (Index, error) {
		atomic.AddInt32(&created, 1)
		return &stubIndex{collection: collection}, nil
	})

	first, err := provider.For("acme")
	s.Require().NoError(err)
	second, err := provider.For("acme")
	s.Require().NoError(err)
	s.Same(first, second)

	other, err := provider.For("globex")
	s.Require().NoError(err)
	s.NotSame(first, other)
	s.Equal(int32(2), atomic.LoadInt32(&created))
}

// TestForConcurrentFirstAccess tests that concurrent first access creates
// the index exactly once.
func (s *ProviderTestSuite) TestForConcurrentFirstAccess() {
	var created int32
	provider := NewProvider(func(collection string) (Index, error) {
		atomic.AddInt32(&created, 1)
		return &stubIndex{collection: collection}, nil
	})

	const goroutines = 32
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			_, err := provider.For("acme")
			s.NoError(err)
		}()
	}
	wg.Wait()

	s.Equal(int32(1), atomic.LoadInt32(&created))
}

// TestCollectionName tests tenant id sanitization.
func (s *ProviderTestSuite) TestCollectionName() {
	testCases := []struct {
		tenantID string
		expected string
		message  string
	}{
		{"acme", "kb_acme", "plain id"},
		{"Acme Corp", "kb_acme-corp", "uppercase and space"},
		{"a", "kb_a", "short id keeps prefix"},
		{"", "kb_0", "empty id padded to valid name"},
		{"acme!", "kb_acme-0", "trailing symbol replaced and padded"},
	}

	for _, tc := range testCases {
		s.Equal(tc.expected, CollectionName(tc.tenantID), tc.message)
	}
}

// TestProviderTestSuite runs the test suite.
func TestProviderTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderTestSuite))
}
