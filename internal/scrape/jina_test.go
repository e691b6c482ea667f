package scrape

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-intel/internal/model"
	"github.com/sells-group/company-intel/internal/resilience"
	"github.com/sells-group/company-intel/pkg/jina"
	jinamocks "github.com/sells-group/company-intel/pkg/jina/mocks"
)

const linkedInAcme = "https://www.linkedin.com/company/acme-labs"

var acmeProfileText = "# Acme Labs\n\nAcme Labs designs industrial widgets for factories across Texas. " +
	"Industry: Manufacturing. Headquarters: Austin, TX. Founded 1999. 51-200 employees."

func readOK(url, content string) *jina.ReadResponse {
	return &jina.ReadResponse{Code: 200, Data: jina.ReadData{URL: url, Title: "Acme Labs | LinkedIn", Content: content}}
}

func TestJinaAdapter_Scrape(t *testing.T) {
	t.Parallel()
	client := jinamocks.NewMockClient(t)
	client.On("Read", mock.Anything, linkedInAcme).Return(readOK(linkedInAcme, acmeProfileText), nil)

	a := NewJinaAdapter(client)
	assert.Equal(t, "jina", a.Name())
	assert.True(t, a.Supports(linkedInAcme))

	res, err := a.Scrape(context.Background(), linkedInAcme)
	require.NoError(t, err)
	assert.Equal(t, "jina", res.Source)
	assert.Equal(t, linkedInAcme, res.Page.URL)
	assert.Equal(t, "Acme Labs | LinkedIn", res.Page.Title)
	assert.Equal(t, acmeProfileText, res.Page.Markdown)
	assert.Equal(t, 200, res.Page.StatusCode)
}

func TestJinaAdapter_Scrape_DefaultsURL(t *testing.T) {
	t.Parallel()
	client := jinamocks.NewMockClient(t)
	client.On("Read", mock.Anything, linkedInAcme).Return(readOK("", acmeProfileText), nil)

	res, err := NewJinaAdapter(client).Scrape(context.Background(), linkedInAcme)
	require.NoError(t, err)
	assert.Equal(t, linkedInAcme, res.Page.URL)
}

func TestJinaAdapter_Scrape_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *jina.ReadResponse
		err     error
		wantMsg string
	}{
		{"client error", nil, errors.New("connection refused"), "connection refused"},
		{"short content", readOK(linkedInAcme, "Acme"), nil, "content too short"},
		{"reader status", &jina.ReadResponse{Code: 451, Data: jina.ReadData{Content: acmeProfileText}}, nil, "reader status 451"},
		{"challenge", readOK(linkedInAcme, "Just a moment... Checking your browser before accessing linkedin.com. This takes a few seconds. Please stand by while we verify your connection."), nil, "blocked by cloudflare"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := jinamocks.NewMockClient(t)
			client.On("Read", mock.Anything, linkedInAcme).Return(tt.resp, tt.err)

			_, err := NewJinaAdapter(client).Scrape(context.Background(), linkedInAcme)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrFetch)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestJinaAdapter_BreakerOpens(t *testing.T) {
	t.Parallel()
	client := jinamocks.NewMockClient(t)
	client.On("Read", mock.Anything, linkedInAcme).Return(nil, errors.New("timeout")).Times(3)

	a := NewJinaAdapter(client)
	for range 3 {
		_, err := a.Scrape(context.Background(), linkedInAcme)
		require.Error(t, err)
	}
	assert.False(t, a.Supports(linkedInAcme))

	_, err := a.Scrape(context.Background(), linkedInAcme)
	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.ErrorIs(t, err, model.ErrFetch)
}

func TestCheckRead(t *testing.T) {
	t.Parallel()

	long := acmeProfileText + strings.Repeat(" Widgets, gears and sprockets.", 40)
	tests := []struct {
		name string
		resp *jina.ReadResponse
		ok   bool
	}{
		{"nil", nil, false},
		{"code zero", &jina.ReadResponse{Data: jina.ReadData{Content: acmeProfileText}}, true},
		{"whitespace padded short", readOK("", "   tiny   "), false},
		{"captcha", readOK("", "Please complete the CAPTCHA below to continue to the page you requested. Thank you for your patience."), false},
		{"long page mentioning cloudflare challenge", readOK("", long+" We use the cloudflare challenge page."), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := checkRead(tt.resp)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
