package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/huangsam/fosdash/internal/iocache"
	"github.com/huangsam/fosdash/internal/store"
	"github.com/huangsam/fosdash/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestIngester returns an Ingester with a clock that advances 1.5s per reading.
func newTestIngester(s *store.MockStore, c *iocache.MockResponseCache) (*Ingester, time.Time) {
	in := NewIngester(s, nil)
	if c != nil {
		in.cache = c
	}
	start := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	current := start
	in.now = func() time.Time {
		t := current
		current = current.Add(1500 * time.Millisecond)
		return t
	}
	in.newID = func() string { return "batch-1" }
	return in, start
}

func TestIngest_Complaints(t *testing.T) {
	ctx := context.Background()
	s := &store.MockStore{}
	c := &iocache.MockResponseCache{}
	in, start := newTestIngester(s, c)

	s.On("BeginIngestion", ctx, schema.IngestionRun{
		BatchID: "batch-1", Kind: schema.ComplaintsIngestion, SourceFile: "complaints.csv", StartTime: start,
	}).Return(nil)
	s.On("InsertComplaints", ctx, mock.MatchedBy(func(records []schema.ComplaintRecord) bool {
		if len(records) != 3 {
			return false
		}
		for _, r := range records {
			if r.BatchID != "batch-1" {
				return false
			}
		}
		return true
	})).Return(3, nil)
	s.On("EndIngestion", ctx, "batch-1", start.Add(1500*time.Millisecond), 3, 4).Return(nil)
	c.On("Invalidate", ctx).Return(nil)

	result, err := in.Ingest(ctx, schema.ComplaintsIngestion, "complaints.csv", strings.NewReader(complaintsCSV))
	require.NoError(t, err)

	assert.Equal(t, "batch-1", result.BatchID)
	assert.Equal(t, 3, result.Accepted)
	assert.Equal(t, 4, result.Rejected)
	assert.Len(t, result.Errors, 4)
	assert.Equal(t, 1500*time.Millisecond, result.Duration)
	s.AssertExpectations(t)
	c.AssertExpectations(t)
}

func TestIngest_CasesWithoutCache(t *testing.T) {
	ctx := context.Background()
	s := &store.MockStore{}
	in, _ := newTestIngester(s, nil)

	s.On("BeginIngestion", ctx, mock.Anything).Return(nil)
	s.On("InsertCases", ctx, mock.AnythingOfType("[]schema.CaseRecord")).Return(3, nil)
	s.On("EndIngestion", ctx, "batch-1", mock.Anything, 3, 3).Return(nil)

	result, err := in.Ingest(ctx, schema.CasesIngestion, "cases.csv", strings.NewReader(casesCSV))
	require.NoError(t, err)
	assert.Equal(t, schema.CasesIngestion, result.Kind)
	assert.Equal(t, 3, result.Accepted)
	s.AssertExpectations(t)
}

func TestIngest_InsertFailureIsRecorded(t *testing.T) {
	ctx := context.Background()
	s := &store.MockStore{}
	c := &iocache.MockResponseCache{}
	in, _ := newTestIngester(s, c)

	s.On("BeginIngestion", ctx, mock.Anything).Return(nil)
	s.On("InsertComplaints", ctx, mock.Anything).Return(0, errors.New("disk full"))
	s.On("EndIngestion", ctx, "batch-1", mock.Anything, 0, 4).Return(nil)

	_, err := in.Ingest(ctx, schema.ComplaintsIngestion, "complaints.csv", strings.NewReader(complaintsCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	s.AssertExpectations(t)
	c.AssertNotCalled(t, "Invalidate", mock.Anything)
}

func TestIngest_BadHeaderIsRecorded(t *testing.T) {
	ctx := context.Background()
	s := &store.MockStore{}
	in, _ := newTestIngester(s, nil)

	s.On("BeginIngestion", ctx, mock.Anything).Return(nil)
	s.On("EndIngestion", ctx, "batch-1", mock.Anything, 0, 0).Return(nil)

	_, err := in.Ingest(ctx, schema.ComplaintsIngestion, "bad.csv", strings.NewReader("Year,Complaints\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required columns")
	s.AssertNotCalled(t, "InsertComplaints", mock.Anything, mock.Anything)
}

func TestIngest_UnknownKind(t *testing.T) {
	s := &store.MockStore{}
	in, _ := newTestIngester(s, nil)

	_, err := in.Ingest(context.Background(), "firms", "x.csv", strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported ingestion kind")
	s.AssertNotCalled(t, "BeginIngestion", mock.Anything, mock.Anything)
}

func TestIngest_BeginFailure(t *testing.T) {
	ctx := context.Background()
	s := &store.MockStore{}
	in, _ := newTestIngester(s, nil)

	s.On("BeginIngestion", ctx, mock.Anything).Return(errors.New("locked"))

	_, err := in.Ingest(ctx, schema.CasesIngestion, "cases.csv", strings.NewReader(casesCSV))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to record ingestion start")
}

func TestIngestFile_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "complaints.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(complaintsCSV), 0o600))

	s, err := store.NewStore(schema.SQLiteBackend, filepath.Join(dir, "fos.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	cache := iocache.NewMemoryCache(time.Minute)
	cache.Set(ctx, "/api/overview", []byte("{}"))

	result, err := NewIngester(s, cache).IngestFile(ctx, schema.ComplaintsIngestion, csvPath)
	require.NoError(t, err)
	assert.Equal(t, "complaints.csv", result.SourceFile)
	assert.Equal(t, 3, result.Accepted)
	assert.Equal(t, 4, result.Rejected)

	_, cached := cache.Get(ctx, "/api/overview")
	assert.False(t, cached, "ingestion invalidates cached responses")

	status, err := s.IngestionStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, 3, status.TotalAccepted)
	assert.Equal(t, 4, status.TotalRejected)
	require.NotNil(t, status.LastRun)
	assert.Equal(t, result.BatchID, status.LastRun.BatchID)

	rows, err := s.FirmRows(ctx, "acme bank")
	require.NoError(t, err)
	assert.NotEmpty(t, rows)
}

func TestIngestFile_Missing(t *testing.T) {
	in := NewIngester(&store.MockStore{}, nil)
	_, err := in.IngestFile(context.Background(), schema.CasesIngestion, filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}
