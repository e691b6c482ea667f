package discover

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-intel/internal/discover/mocks"
	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/resilience"
	"github.com/sells-group/company-intel/pkg/google"
	googlemocks "github.com/sells-group/company-intel/pkg/google/mocks"
	"github.com/sells-group/company-intel/pkg/jina"
	jinamocks "github.com/sells-group/company-intel/pkg/jina/mocks"
)

func TestGoogleSearcher(t *testing.T) {
	client := googlemocks.NewMockClient(t)
	client.On("WebSearch", mock.Anything, "acme", 5).Return(&google.WebSearchResponse{
		Items: []google.SearchItem{{Title: "Acme", Link: "https://acme.com", Snippet: "Widgets"}},
	}, nil)

	results, err := NewGoogleSearcher(client).Search(context.Background(), "acme", 5)
	require.NoError(t, err)
	assert.Equal(t, []model.SearchResult{{Title: "Acme", Link: "https://acme.com", Description: "Widgets"}}, results)
}

func TestGoogleSearcher_Error(t *testing.T) {
	client := googlemocks.NewMockClient(t)
	client.On("WebSearch", mock.Anything, "acme", 5).Return(nil, errors.New("403"))

	_, err := NewGoogleSearcher(client).Search(context.Background(), "acme", 5)
	assert.Error(t, err)
}

func TestJinaSearcher(t *testing.T) {
	client := jinamocks.NewMockClient(t)
	client.On("Search", mock.Anything, "acme").Return(&jina.SearchResponse{
		Code: 200,
		Data: []jina.SearchResult{
			{Title: "Acme", URL: "https://acme.com", Description: "Widgets"},
			{Title: "Acme blog", URL: "https://acme.com/blog", Content: strings.Repeat("x", 400)},
			{Title: "Third", URL: "https://third.com"},
		},
	}, nil)

	results, err := NewJinaSearcher(client).Search(context.Background(), "acme", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Widgets", results[0].Description)
	assert.Len(t, results[1].Description, 300)
}

func TestFallbackSearcher(t *testing.T) {
	first := mocks.NewMockSearcher(t)
	first.On("Search", mock.Anything, "acme", 5).Return(nil, errors.New("not configured"))
	first.On("Name").Return("first")
	second := mocks.NewMockSearcher(t)
	second.On("Search", mock.Anything, "acme", 5).Return([]model.SearchResult{{Link: "https://acme.com"}}, nil)

	results, err := FallbackSearcher{first, second}.Search(context.Background(), "acme", 5)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestFallbackSearcher_AllFail(t *testing.T) {
	only := mocks.NewMockSearcher(t)
	only.On("Search", mock.Anything, "acme", 5).Return(nil, errors.New("boom"))
	only.On("Name").Return("only")

	_, err := FallbackSearcher{only}.Search(context.Background(), "acme", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	_, err = FallbackSearcher{}.Search(context.Background(), "acme", 5)
	assert.Error(t, err)
}

func TestGuardedSearcher_SkipsAfterFailures(t *testing.T) {
	flaky := mocks.NewMockSearcher(t)
	flaky.On("Name").Return("flaky")
	flaky.On("Search", mock.Anything, "acme", 5).Return(nil, errors.New("503")).Times(2)
	backup := mocks.NewMockSearcher(t)
	backup.On("Search", mock.Anything, "acme", 5).Return([]model.SearchResult{{Link: "https://acme.com"}}, nil).Times(3)

	guarded := NewGuardedSearcher(flaky, resilience.BreakerConfig{Threshold: 2})
	searcher := FallbackSearcher{guarded, backup}

	for range 3 {
		results, err := searcher.Search(context.Background(), "acme", 5)
		require.NoError(t, err)
		assert.Len(t, results, 1)
	}

	// The third search never reached the flaky provider.
	flaky.AssertNumberOfCalls(t, "Search", 2)
	assert.Equal(t, "flaky", guarded.Name())
}
