package store

import (
	"context"
	"time"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of Store for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.Store = &MockStore{} // Compile-time check

// Overview implements the Store interface.
func (m *MockStore) Overview(ctx context.Context) (schema.OverviewMetrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.OverviewMetrics), args.Error(1)
}

// ListFirms implements the Store interface.
func (m *MockStore) ListFirms(ctx context.Context) ([]schema.FirmSummary, error) {
	args := m.Called(ctx)
	firms, _ := args.Get(0).([]schema.FirmSummary)
	return firms, args.Error(1)
}

// FirmRows implements the Store interface.
func (m *MockStore) FirmRows(ctx context.Context, firm string) ([]schema.FirmYearRow, error) {
	args := m.Called(ctx, firm)
	rows, _ := args.Get(0).([]schema.FirmYearRow)
	return rows, args.Error(1)
}

// AllFirmRows implements the Store interface.
func (m *MockStore) AllFirmRows(ctx context.Context) ([]schema.FirmYearRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.FirmYearRow)
	return rows, args.Error(1)
}

// BenchmarkRows implements the Store interface.
func (m *MockStore) BenchmarkRows(ctx context.Context) ([]schema.BenchmarkRow, error) {
	args := m.Called(ctx)
	rows, _ := args.Get(0).([]schema.BenchmarkRow)
	return rows, args.Error(1)
}

// ListCases implements the Store interface.
func (m *MockStore) ListCases(ctx context.Context, filter schema.CaseFilter) (schema.CaseListing, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(schema.CaseListing), args.Error(1)
}

// InsertComplaints implements the Store interface.
func (m *MockStore) InsertComplaints(ctx context.Context, records []schema.ComplaintRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

// InsertCases implements the Store interface.
func (m *MockStore) InsertCases(ctx context.Context, records []schema.CaseRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

// BeginIngestion implements the Store interface.
func (m *MockStore) BeginIngestion(ctx context.Context, run schema.IngestionRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

// EndIngestion implements the Store interface.
func (m *MockStore) EndIngestion(ctx context.Context, batchID string, endTime time.Time, accepted, rejected int) error {
	args := m.Called(ctx, batchID, endTime, accepted, rejected)
	return args.Error(0)
}

// IngestionStatus implements the Store interface.
func (m *MockStore) IngestionStatus(ctx context.Context) (schema.IngestionStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.IngestionStatus), args.Error(1)
}

// ListIngestionRuns implements the Store interface.
func (m *MockStore) ListIngestionRuns(ctx context.Context) ([]schema.IngestionRun, error) {
	args := m.Called(ctx)
	runs, _ := args.Get(0).([]schema.IngestionRun)
	return runs, args.Error(1)
}

// Ping implements the Store interface.
func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close implements the Store interface.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
