package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertToEGP(t *testing.T) {
	svc := NewCurrencyService()

	result, err := svc.Convert(100, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 100*48.5, result.ConvertedAmount, 0.001)
	assert.InDelta(t, 48.5, result.Rate, 0.001)
}

func TestConvertZeroAmount(t *testing.T) {
	svc := NewCurrencyService()

	result, err := svc.Convert(0, "EUR")
	require.NoError(t, err)
	assert.Zero(t, result.ConvertedAmount)
}

func TestConvertLargeAmount(t *testing.T) {
	svc := NewCurrencyService()

	result, err := svc.Convert(1e6, "KWD")
	require.NoError(t, err)
	assert.InDelta(t, 1e6*157.8, result.ConvertedAmount, 1)
}

func TestConvertUnsupportedCurrency(t *testing.T) {
	svc := NewCurrencyService()

	_, err := svc.Convert(100, "XYZ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported currency")
}

func TestConvertFromEGPRoundTrips(t *testing.T) {
	svc := NewCurrencyService()

	toEGP, err := svc.Convert(100, "SAR")
	require.NoError(t, err)

	back, err := svc.ConvertFromEGP(toEGP.ConvertedAmount, "SAR")
	require.NoError(t, err)
	assert.InDelta(t, 100, back.ConvertedAmount, 0.001)
}

func TestEGPIsIdentity(t *testing.T) {
	svc := NewCurrencyService()

	result, err := svc.Convert(250, "EGP")
	require.NoError(t, err)
	assert.InDelta(t, 250, result.ConvertedAmount, 0.001)
	assert.InDelta(t, 1, result.Rate, 0.001)
}

func TestStatusStartsAsFallback(t *testing.T) {
	svc := NewCurrencyService()

	status := svc.Status()
	assert.Equal(t, "fallback", status.Status)
	assert.Nil(t, status.LastUpdated)
	assert.Nil(t, svc.LastUpdateTime())
}

func TestForceRefreshUpdatesRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1 EGP = 0.02 USD, so 1 USD should cache as 50 EGP
		w.Write([]byte(`{"result": "success", "rates": {"USD": 0.02, "EUR": 0.019, "EGP": 1}}`))
	}))
	defer server.Close()

	svc := NewCurrencyService()
	svc.apiURL = server.URL

	require.NoError(t, svc.ForceRefresh(context.Background()))

	result, err := svc.Convert(1, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 50, result.ConvertedAmount, 0.001)

	// Currencies missing from the response keep their previous rate
	sar, err := svc.Convert(1, "SAR")
	require.NoError(t, err)
	assert.InDelta(t, 12.9, sar.ConvertedAmount, 0.001)

	assert.Equal(t, "fresh", svc.Status().Status)
	assert.NotNil(t, svc.LastUpdateTime())
}

func TestForceRefreshFailureKeepsRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	svc := NewCurrencyService()
	svc.apiURL = server.URL

	before, err := svc.Convert(100, "USD")
	require.NoError(t, err)

	require.Error(t, svc.ForceRefresh(context.Background()))

	after, err := svc.Convert(100, "USD")
	require.NoError(t, err)
	assert.Equal(t, before.ConvertedAmount, after.ConvertedAmount, "a failed refresh must not touch the cache")
	assert.Equal(t, "fallback", svc.Status().Status)
}

func TestForceRefreshMalformedResponseKeepsRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	svc := NewCurrencyService()
	svc.apiURL = server.URL

	require.Error(t, svc.ForceRefresh(context.Background()))
	assert.Equal(t, "fallback", svc.Status().Status)

	result, err := svc.Convert(1, "EUR")
	require.NoError(t, err)
	assert.InDelta(t, 52.8, result.ConvertedAmount, 0.001)
}

func TestForceRefreshReportedFailureKeepsRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "error", "rates": {}}`))
	}))
	defer server.Close()

	svc := NewCurrencyService()
	svc.apiURL = server.URL

	require.Error(t, svc.ForceRefresh(context.Background()))
	assert.Equal(t, "fallback", svc.Status().Status)
}

func TestForceRefreshIgnoresInvalidRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result": "success", "rates": {"USD": 0, "EUR": -1}}`))
	}))
	defer server.Close()

	svc := NewCurrencyService()
	svc.apiURL = server.URL

	require.NoError(t, svc.ForceRefresh(context.Background()))

	usd, err := svc.Convert(1, "USD")
	require.NoError(t, err)
	assert.InDelta(t, 48.5, usd.ConvertedAmount, 0.001, "zero or negative quotes are ignored")
}

func TestCurrenciesSnapshot(t *testing.T) {
	svc := NewCurrencyService()

	currencies := svc.Currencies()
	assert.Len(t, currencies, 12)

	codes := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		codes[c.Code] = true
	}
	assert.True(t, codes["EGP"])
	assert.True(t, codes["USD"])
	assert.True(t, codes["SAR"])
}
