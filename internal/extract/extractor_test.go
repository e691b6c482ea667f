package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/company-intel/internal/llm"
	llmmocks "github.com/sells-group/company-intel/internal/llm/mocks"
	"github.com/sells-group/company-intel/internal/model"
)

const pricingPage = `<html><head><title>Pricing</title><script>var x = 1;</script>
<style>body{}</style></head><body><h1>Acme Pricing</h1><p>Starter $10/mo</p></body></html>`

func TestExtract_Success(t *testing.T) {
	client := llmmocks.NewMockClient(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return req.Phase == "extract" &&
			strings.Contains(req.Prompt, "Acme Pricing") &&
			!strings.Contains(req.Prompt, "var x = 1") &&
			req.Temperature != nil && *req.Temperature == 0
	})).Return(&llm.Response{Text: "```json\n" + `{
		"company_overview": {"name": "Acme", "products_services": ["Widgets"]},
		"pricing": {"models": ["subscription"], "tiers": [{"name": "Starter", "price": "$10/mo"}], "has_enterprise_pricing": true},
		"firmographic": {"employee_count": "50"}
	}` + "\n```"}, nil)

	rec, err := NewLLMExtractor(client).Extract(context.Background(), pricingPage)
	require.NoError(t, err)

	assert.Equal(t, "Acme", rec.CompanyOverview.Name)
	assert.Equal(t, model.NotSpecified, rec.CompanyOverview.Mission)
	assert.Equal(t, []string{"Widgets"}, rec.CompanyOverview.ProductsServices)
	assert.Equal(t, []string{}, rec.CompanyOverview.TargetMarket)
	assert.True(t, rec.Pricing.HasEnterprisePricing)
	require.Len(t, rec.Pricing.Tiers, 1)
	assert.Equal(t, []string{}, rec.Pricing.Tiers[0].Features)
	assert.Equal(t, "50", rec.Firmographic.EmployeeCount)
	assert.Equal(t, model.NotSpecified, rec.GTMStrategy.SalesMotion)
}

func TestExtract_NullSectionsGetDefaults(t *testing.T) {
	client := llmmocks.NewMockClient(t)
	client.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Response{Text: `{"company_overview": null, "pricing": {"models": null}}`}, nil)

	rec, err := NewLLMExtractor(client).Extract(context.Background(), pricingPage)
	require.NoError(t, err)
	assert.Equal(t, model.NewPageRecord(), *rec)
}

func TestExtract_SchemaMismatch(t *testing.T) {
	client := llmmocks.NewMockClient(t)
	client.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Response{Text: `{"firmographic": {"industry": "software"}}`}, nil)

	_, err := NewLLMExtractor(client).Extract(context.Background(), pricingPage)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrExtraction))
	assert.Contains(t, err.Error(), "industry")
}

func TestExtract_NotJSON(t *testing.T) {
	client := llmmocks.NewMockClient(t)
	client.On("Complete", mock.Anything, mock.Anything).
		Return(&llm.Response{Text: "I could not find anything useful."}, nil)

	_, err := NewLLMExtractor(client).Extract(context.Background(), pricingPage)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrExtraction))
}

func TestExtract_ClientError(t *testing.T) {
	client := llmmocks.NewMockClient(t)
	client.On("Complete", mock.Anything, mock.Anything).
		Return(nil, errors.New("boom"))

	_, err := NewLLMExtractor(client).Extract(context.Background(), pricingPage)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrExtraction))
	assert.Contains(t, err.Error(), "boom")
}

func TestExtract_EmptyPage(t *testing.T) {
	client := llmmocks.NewMockClient(t)

	_, err := NewLLMExtractor(client).Extract(context.Background(), "<html><script>x()</script></html>")
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrExtraction))
	client.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestExtract_TruncatesLongPages(t *testing.T) {
	body := "<p>" + strings.Repeat("a", 500) + "</p>"
	client := llmmocks.NewMockClient(t)
	client.On("Complete", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		return !strings.Contains(req.Prompt, strings.Repeat("a", 101)) &&
			strings.Contains(req.Prompt, strings.Repeat("a", 100))
	})).Return(&llm.Response{Text: `{}`}, nil)

	_, err := NewLLMExtractor(client, WithMaxChars(100)).Extract(context.Background(), body)
	require.NoError(t, err)
}

func TestFunc(t *testing.T) {
	want := model.NewPageRecord()
	var e Extractor = Func(func(_ context.Context, html string) (*model.PageRecord, error) {
		assert.Equal(t, "<p>x</p>", html)
		return &want, nil
	})
	got, err := e.Extract(context.Background(), "<p>x</p>")
	require.NoError(t, err)
	assert.Equal(t, &want, got)
}

func TestTruncateUTF8(t *testing.T) {
	assert.Equal(t, "abc", truncateUTF8("abc", 10))
	assert.Equal(t, "ab", truncateUTF8("abc", 2))
	// "é" is two bytes; cutting inside it backs off to the rune start.
	assert.Equal(t, "a", truncateUTF8("aé", 2))
}

func TestValidateShape(t *testing.T) {
	assert.NoError(t, ValidateShape(`{}`))
	assert.NoError(t, ValidateShape(`{"pricing": {"tiers": [{"name": "Pro", "features": ["SSO"]}]}}`))
	assert.Error(t, ValidateShape(`{"pricing": {"has_enterprise_pricing": "yes"}}`))
	assert.Error(t, ValidateShape(`[]`))
}
