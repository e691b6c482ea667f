// Package mocks provides test doubles for the page extractor.
package mocks

import (
	"context"

	model "github.com/sells-group/company-intel/internal/model"
	mock "github.com/stretchr/testify/mock"
)

// MockExtractor is a mock type for the Extractor interface.
type MockExtractor struct {
	mock.Mock
}

// Extract provides a mock function with given fields: ctx, html
func (_m *MockExtractor) Extract(ctx context.Context, html string) (*model.PageRecord, error) {
	ret := _m.Called(ctx, html)

	if len(ret) == 0 {
		panic("no return value specified for Extract")
	}

	var r0 *model.PageRecord
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*model.PageRecord, error)); ok {
		return rf(ctx, html)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *model.PageRecord); ok {
		r0 = rf(ctx, html)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*model.PageRecord)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, html)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockExtractor creates a new instance of MockExtractor.
func NewMockExtractor(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockExtractor {
	mock := &MockExtractor{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
