// Package mocks provides test doubles for page scrapers.
package mocks

import (
	"context"

	scrape "github.com/sells-group/company-intel/internal/scrape"
	mock "github.com/stretchr/testify/mock"
)

// MockScraper is a mock type for the Scraper interface.
type MockScraper struct {
	mock.Mock
}

// Name provides a mock function with given fields:
func (_m *MockScraper) Name() string {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Name")
	}

	var r0 string
	if rf, ok := ret.Get(0).(func() string); ok {
		r0 = rf()
	} else {
		r0 = ret.Get(0).(string)
	}

	return r0
}

// Scrape provides a mock function with given fields: ctx, url
func (_m *MockScraper) Scrape(ctx context.Context, url string) (*scrape.Result, error) {
	ret := _m.Called(ctx, url)

	if len(ret) == 0 {
		panic("no return value specified for Scrape")
	}

	var r0 *scrape.Result
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*scrape.Result, error)); ok {
		return rf(ctx, url)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *scrape.Result); ok {
		r0 = rf(ctx, url)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*scrape.Result)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, url)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Supports provides a mock function with given fields: url
func (_m *MockScraper) Supports(url string) bool {
	ret := _m.Called(url)

	if len(ret) == 0 {
		panic("no return value specified for Supports")
	}

	var r0 bool
	if rf, ok := ret.Get(0).(func(string) bool); ok {
		r0 = rf(url)
	} else {
		r0 = ret.Get(0).(bool)
	}

	return r0
}

// NewMockScraper creates a new instance of MockScraper.
func NewMockScraper(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockScraper {
	mock := &MockScraper{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
