package feedback

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

// StoreTestSuite tests the feedback Store functionality.
type StoreTestSuite struct {
	suite.Suite
	tempDir string
	dbPath  string
	store   *Store
}

// SetupSuite runs once before all tests.
func (s *StoreTestSuite) SetupSuite() {
	var err error
	s.tempDir, err = os.MkdirTemp("", "feedback-store-test-*")
	s.Require().NoError(err)
}

// TearDownSuite runs once after all tests.
func (s *StoreTestSuite) TearDownSuite() {
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
}

// SetupTest runs before each test.
func (s *StoreTestSuite) SetupTest() {
	s.dbPath = filepath.Join(s.tempDir, "test.db")
	var err error
	s.store, err = NewStore(s.dbPath)
	s.Require().NoError(err)
}

// TearDownTest runs after each test.
func (s *StoreTestSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
	os.Remove(s.dbPath)
}

// TestSubmit tests storing a feedback record.
func (s *StoreTestSuite) TestSubmit() {
	record, err := s.store.Submit(context.Background(), "acme", Submission{
		Label:   "up",
		Query:   "how to reset router",
		Answer:  "Hold the reset button 10 seconds.",
		Comment: "worked",
	})
	s.Require().NoError(err)

	s.NotEmpty(record.ID)
	s.Equal("acme", record.TenantID)
	s.Equal(LabelUp, record.Label)
	s.False(record.CreatedAt.IsZero())
}

// TestSubmitNormalizesLabel tests label case and whitespace handling.
func (s *StoreTestSuite) TestSubmitNormalizesLabel() {
	record, err := s.store.Submit(context.Background(), "acme", Submission{
		Label: "  DOWN ",
		Query: "q",
	})
	s.Require().NoError(err)
	s.Equal(LabelDown, record.Label)
}

// TestSubmitInvalidLabel tests rejection of unknown labels.
func (s *StoreTestSuite) TestSubmitInvalidLabel() {
	_, err := s.store.Submit(context.Background(), "acme", Submission{
		Label: "meh",
		Query: "q",
	})
	s.ErrorIs(err, ErrInvalidLabel)
}

// TestSubmitEmptyQuery tests rejection of blank queries.
func (s *StoreTestSuite) TestSubmitEmptyQuery() {
	_, err := s.store.Submit(context.Background(), "acme", Submission{
		Label: "up",
		Query: "   ",
	})
	s.ErrorIs(err, ErrEmptyQuery)
}

// TestListNewestFirst tests ordering and the limit.
func (s *StoreTestSuite) TestListNewestFirst() {
	ctx := context.Background()
	for _, q := range []string{"first", "second", "third"} {
		_, err := s.store.Submit(ctx, "acme", Submission{Label: "up", Query: q})
		s.Require().NoError(err)
	}

	records, err := s.store.List(ctx, "acme", 2)
	s.Require().NoError(err)
	s.Len(records, 2)

	all, err := s.store.List(ctx, "acme", 0)
	s.Require().NoError(err)
	s.Len(all, 3)
}

// TestListTenantIsolation tests that tenants only see their own records.
func (s *StoreTestSuite) TestListTenantIsolation() {
	ctx := context.Background()
	_, err := s.store.Submit(ctx, "acme", Submission{Label: "up", Query: "acme q"})
	s.Require().NoError(err)
	_, err = s.store.Submit(ctx, "globex", Submission{Label: "down", Query: "globex q"})
	s.Require().NoError(err)

	records, err := s.store.List(ctx, "globex", 10)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal("globex q", records[0].Query)
}

// TestCounts tests the per-tenant vote tally.
func (s *StoreTestSuite) TestCounts() {
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := s.store.Submit(ctx, "acme", Submission{Label: "up", Query: "q"})
		s.Require().NoError(err)
	}
	_, err := s.store.Submit(ctx, "acme", Submission{Label: "down", Query: "q"})
	s.Require().NoError(err)

	up, down, err := s.store.Counts(ctx, "acme")
	s.Require().NoError(err)
	s.Equal(3, up)
	s.Equal(1, down)

	up, down, err = s.store.Counts(ctx, "globex")
	s.Require().NoError(err)
	s.Zero(up)
	s.Zero(down)
}

// TestStoreTestSuite runs the test suite.
func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}
