package api

import (
	"context"
	"errors"
	"sync"
)

// ErrMockNotImplemented is returned when a MockEndpoint method lacks an override.
var ErrMockNotImplemented = errors.New("api.MockEndpoint: method not implemented")

// MockEndpoint is a test double for a Resource.
type MockEndpoint[R any, D any] struct {
	ListFn   func(context.Context) ([]R, error)
	CreateFn func(context.Context, D) (R, error)
	UpdateFn func(context.Context, string, D) (R, error)
	DeleteFn func(context.Context, string) error

	mu              sync.Mutex
	ListCallCount   int
	CreateCallCount int
	UpdateCallCount int
	DeleteCallCount int
	CreateCallArgs  []D
	UpdateCallArgs  []UpdateCallArg[D]
	DeleteCallArgs  []string
}

// UpdateCallArg captures arguments passed to Update.
type UpdateCallArg[D any] struct {
	ID    string
	Draft D
}

// List implements the endpoint.
func (m *MockEndpoint[R, D]) List(ctx context.Context) ([]R, error) {
	m.mu.Lock()
	m.ListCallCount++
	m.mu.Unlock()
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, ErrMockNotImplemented
}

// Create implements the endpoint.
func (m *MockEndpoint[R, D]) Create(ctx context.Context, draft D) (R, error) {
	m.mu.Lock()
	m.CreateCallCount++
	m.CreateCallArgs = append(m.CreateCallArgs, draft)
	m.mu.Unlock()
	if m.CreateFn != nil {
		return m.CreateFn(ctx, draft)
	}
	var zero R
	return zero, ErrMockNotImplemented
}

// Update implements the endpoint.
func (m *MockEndpoint[R, D]) Update(ctx context.Context, id string, draft D) (R, error) {
	m.mu.Lock()
	m.UpdateCallCount++
	m.UpdateCallArgs = append(m.UpdateCallArgs, UpdateCallArg[D]{ID: id, Draft: draft})
	m.mu.Unlock()
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, id, draft)
	}
	var zero R
	return zero, ErrMockNotImplemented
}

// Delete implements the endpoint.
func (m *MockEndpoint[R, D]) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteCallCount++
	m.DeleteCallArgs = append(m.DeleteCallArgs, id)
	m.mu.Unlock()
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return ErrMockNotImplemented
}

// Calls returns the number of mutating requests made.
func (m *MockEndpoint[R, D]) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CreateCallCount + m.UpdateCallCount + m.DeleteCallCount
}
