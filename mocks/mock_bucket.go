package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"godsendjoseph.dev/r2-gateway/internal/storage"
)

// MockBucket is a mock implementation of storage.Bucket.
type MockBucket struct {
	mock.Mock
}

func (m *MockBucket) Put(ctx context.Context, key string, body []byte, opts storage.PutOptions) (*storage.ObjectInfo, error) {
	args := m.Called(ctx, key, body, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ObjectInfo), args.Error(1)
}

func (m *MockBucket) Get(ctx context.Context, key string) (*storage.Object, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Object), args.Error(1)
}

func (m *MockBucket) Head(ctx context.Context, key string) (*storage.ObjectInfo, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ObjectInfo), args.Error(1)
}

func (m *MockBucket) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockBucket) List(ctx context.Context, opts storage.ListOptions) (*storage.ListResult, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ListResult), args.Error(1)
}
