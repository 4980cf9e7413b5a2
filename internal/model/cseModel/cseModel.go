package cseModel

import "github.com/shopspring/decimal"

// RawTradeSummary mirrors the CSE tradeSummary response body.
type RawTradeSummary struct {
	ReqTradeSummery []RawTradeSummaryItem `json:"reqTradeSummery"`
}

type RawTradeSummaryItem struct {
	Symbol           string  `json:"symbol"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	ClosingPrice     float64 `json:"closingPrice"`
	PercentageChange float64 `json:"percentageChange"`
}

type StockInfo struct {
	Symbol string
	Name   string
	Price  decimal.Decimal
}
