package models

import "time"

// Currency is one supported currency with its rate into the base currency (EGP)
type Currency struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	RateToEGP float64 `json:"rateToEGP"`
}

// ConversionResult is the outcome of converting an amount into EGP
type ConversionResult struct {
	ConvertedAmount float64 `json:"convertedAmount"`
	Rate            float64 `json:"rate"`
}

// CurrencyCacheStatus is the payload of GET /api/update-currency-rates
type CurrencyCacheStatus struct {
	LastUpdated *time.Time `json:"lastUpdated"`
	CacheAge    string     `json:"cacheAge"`
	NextUpdate  string     `json:"nextUpdate"`
	Status      string     `json:"status"`
}
