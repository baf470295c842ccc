// Package models defines the core data structures used throughout vendorwatch.
package models

import "time"

// Vendor is one row of the monitored vendor list.
type Vendor struct {
	Symbol      string `json:"symbol"`       // e.g., "PCTY"
	CompanyName string `json:"company_name"` // e.g., "Paylocity Holding Corp."
}

// StockMetrics is the latest daily trading snapshot for a vendor's ticker.
type StockMetrics struct {
	Symbol    string    `json:"symbol"`
	Close     float64   `json:"close"`      // last close, rounded to cents
	PrevClose float64   `json:"prev_close"` // zero when only one bar was available
	ChangePct float64   `json:"change_pct"` // vs. previous close, rounded to 2dp
	Volume    int64     `json:"volume"`
	AsOf      time.Time `json:"as_of"`
}

// OHLCV represents a single daily bar of price data.
type OHLCV struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}
