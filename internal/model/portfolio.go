package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot is the latest known market price per ticker. UpdatedAt is
// snapshot metadata and never appears as a key of Prices.
type PriceSnapshot struct {
	Prices    map[string]decimal.Decimal
	UpdatedAt time.Time
}

type Holding struct {
	Symbol        string
	Qty           decimal.Decimal
	CurrentPrice  decimal.Decimal
	MarketValue   decimal.Decimal
	LifecycleGain decimal.Decimal
	Allocation    decimal.Decimal // percent of total holdings value
}

type AssetAllocation struct {
	Symbol      string
	MarketValue decimal.Decimal
}

type PortfolioSummary struct {
	NetWorth           decimal.Decimal
	NetInvested        decimal.Decimal
	CashOnHand         decimal.Decimal
	TotalLifecycleGain decimal.Decimal
	Holdings           []Holding
	AssetAllocation    []AssetAllocation
}

// PortfolioSnapshot is one point of the historical net-worth series.
type PortfolioSnapshot struct {
	UserID        string
	Date          time.Time
	NetWorth      decimal.Decimal
	NetInvested   decimal.Decimal
	CashOnHand    decimal.Decimal
	TotalGain     decimal.Decimal
	HoldingsCount int
}

// Settings holds per-user configuration. BaseInvested, when set, replaces the
// net-invested figure computed from deposits and withdrawals (capital
// contributed before ledger tracking began).
type Settings struct {
	UserID       string
	BaseInvested *decimal.Decimal
}
