// services/currency_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/scoutlinkhq/scoutlink_backend/models"
)

// BaseCurrency is the fixed conversion target for all rates.
const BaseCurrency = "EGP"

// refreshInterval drives the optional background refresh loop.
const refreshInterval = 6 * time.Hour

// fallbackRates seed the cache so conversion works before the first
// successful refresh and keeps working if the rates API is down.
var fallbackRates = []models.Currency{
	{Code: "EGP", Name: "Egyptian Pound", Symbol: "ج.م", RateToEGP: 1},
	{Code: "USD", Name: "US Dollar", Symbol: "$", RateToEGP: 48.5},
	{Code: "EUR", Name: "Euro", Symbol: "€", RateToEGP: 52.8},
	{Code: "GBP", Name: "British Pound", Symbol: "£", RateToEGP: 61.5},
	{Code: "SAR", Name: "Saudi Riyal", Symbol: "ر.س", RateToEGP: 12.9},
	{Code: "AED", Name: "UAE Dirham", Symbol: "د.إ", RateToEGP: 13.2},
	{Code: "KWD", Name: "Kuwaiti Dinar", Symbol: "د.ك", RateToEGP: 157.8},
	{Code: "QAR", Name: "Qatari Riyal", Symbol: "ر.ق", RateToEGP: 13.3},
	{Code: "BHD", Name: "Bahraini Dinar", Symbol: "د.ب", RateToEGP: 128.6},
	{Code: "OMR", Name: "Omani Rial", Symbol: "ر.ع", RateToEGP: 126.0},
	{Code: "JOD", Name: "Jordanian Dinar", Symbol: "د.أ", RateToEGP: 68.4},
	{Code: "MAD", Name: "Moroccan Dirham", Symbol: "د.م", RateToEGP: 4.9},
}

// ratesAPIResponse matches the open.er-api.com payload: rates are quoted
// per one unit of the base currency.
type ratesAPIResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

// CurrencyService is the process-wide exchange rate cache. Reads are
// concurrent; refresh assembles a full replacement map before swapping it
// in, so a failed refresh never leaves the cache empty or partial.
type CurrencyService struct {
	mu          sync.RWMutex
	rates       map[string]models.Currency
	lastUpdated *time.Time

	apiURL string
	client *http.Client
}

// NewCurrencyService creates the cache seeded with the static fallback rates.
func NewCurrencyService() *CurrencyService {
	apiURL := os.Getenv("CURRENCY_RATES_API_URL")
	if apiURL == "" {
		apiURL = "https://open.er-api.com/v6/latest/EGP"
	}

	rates := make(map[string]models.Currency, len(fallbackRates))
	for _, c := range fallbackRates {
		rates[c.Code] = c
	}

	return &CurrencyService{
		rates:  rates,
		apiURL: apiURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Convert converts an amount from the given currency into EGP.
func (s *CurrencyService) Convert(amount float64, fromCode string) (*models.ConversionResult, error) {
	s.mu.RLock()
	currency, ok := s.rates[fromCode]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported currency: %s", fromCode)
	}

	return &models.ConversionResult{
		ConvertedAmount: amount * currency.RateToEGP,
		Rate:            currency.RateToEGP,
	}, nil
}

// ConvertFromEGP converts an EGP amount into a display currency.
func (s *CurrencyService) ConvertFromEGP(amount float64, toCode string) (*models.ConversionResult, error) {
	s.mu.RLock()
	currency, ok := s.rates[toCode]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported currency: %s", toCode)
	}

	rate := 1 / currency.RateToEGP
	return &models.ConversionResult{
		ConvertedAmount: amount * rate,
		Rate:            rate,
	}, nil
}

// Currencies returns a snapshot of the supported currency set.
func (s *CurrencyService) Currencies() []models.Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Currency, 0, len(s.rates))
	for _, c := range s.rates {
		out = append(out, c)
	}
	return out
}

// ForceRefresh re-fetches all rates from the external source. On any
// failure the previously cached rates remain authoritative.
func (s *CurrencyService) ForceRefresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch rates: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read rates response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rates API returned status %d", resp.StatusCode)
	}

	var apiResp ratesAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("failed to parse rates response: %w", err)
	}
	if apiResp.Result != "success" || len(apiResp.Rates) == 0 {
		return fmt.Errorf("rates API reported failure")
	}

	// Assemble the complete replacement set before touching the cache.
	// Only currencies we already know are refreshed; a currency missing
	// from the response keeps its previous rate.
	s.mu.RLock()
	next := make(map[string]models.Currency, len(s.rates))
	for code, c := range s.rates {
		next[code] = c
	}
	s.mu.RUnlock()

	for code, c := range next {
		perEGP, ok := apiResp.Rates[code]
		if !ok || perEGP <= 0 {
			continue
		}
		// The API quotes <code> per 1 EGP; the cache stores EGP per 1 <code>
		c.RateToEGP = 1 / perEGP
		next[code] = c
	}

	now := time.Now()
	s.mu.Lock()
	s.rates = next
	s.lastUpdated = &now
	s.mu.Unlock()

	log.Printf("Currency rates refreshed, %d currencies", len(next))
	return nil
}

// LastUpdateTime returns when the cache was last refreshed, nil if the
// static fallback rates are still in effect.
func (s *CurrencyService) LastUpdateTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// Status reports cache freshness. Staleness is informational only; stale
// rates are still served.
func (s *CurrencyService) Status() *models.CurrencyCacheStatus {
	s.mu.RLock()
	last := s.lastUpdated
	s.mu.RUnlock()

	status := &models.CurrencyCacheStatus{
		LastUpdated: last,
		Status:      "fallback",
		CacheAge:    "n/a",
		NextUpdate:  refreshInterval.String(),
	}
	if last != nil {
		status.Status = "fresh"
		age := time.Since(*last)
		status.CacheAge = age.Round(time.Second).String()
		if age > refreshInterval {
			status.Status = "stale"
		}
	}
	return status
}

// StartRefreshLoop refreshes the cache periodically until the context ends.
func (s *CurrencyService) StartRefreshLoop(ctx context.Context) {
	go func() {
		for {
			if err := s.ForceRefresh(ctx); err != nil {
				log.Printf("Currency refresh failed, keeping cached rates: %v", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(refreshInterval):
			}
		}
	}()
}
