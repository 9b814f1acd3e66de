package iocache

import (
	"context"

	"github.com/huangsam/fosdash/internal/contract"
	"github.com/huangsam/fosdash/schema"
	"github.com/stretchr/testify/mock"
)

// MockResponseCache is a mock implementation of ResponseCache for testing.
type MockResponseCache struct {
	mock.Mock
}

var _ contract.ResponseCache = &MockResponseCache{} // Compile-time check

// Get implements the ResponseCache interface.
func (m *MockResponseCache) Get(ctx context.Context, key string) ([]byte, bool) {
	args := m.Called(ctx, key)
	value, _ := args.Get(0).([]byte)
	return value, args.Bool(1)
}

// Set implements the ResponseCache interface.
func (m *MockResponseCache) Set(ctx context.Context, key string, value []byte) {
	m.Called(ctx, key, value)
}

// Invalidate implements the ResponseCache interface.
func (m *MockResponseCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Stats implements the ResponseCache interface.
func (m *MockResponseCache) Stats(ctx context.Context) schema.CacheStatus {
	args := m.Called(ctx)
	return args.Get(0).(schema.CacheStatus)
}

// Close implements the ResponseCache interface.
func (m *MockResponseCache) Close() error {
	args := m.Called()
	return args.Error(0)
}
