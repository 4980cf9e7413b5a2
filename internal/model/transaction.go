package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeBuy      TransactionType = "BUY"
	TypeSell     TransactionType = "SELL"
	TypeDeposit  TransactionType = "DEPOSIT"
	TypeWithdraw TransactionType = "WITHDRAW"
	TypeDividend TransactionType = "DIVIDEND"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeBuy, TypeSell, TypeDeposit, TypeWithdraw, TypeDividend:
		return true
	}
	return false
}

// RequiresSymbol reports whether transactions of this type must carry a ticker.
func (t TransactionType) RequiresSymbol() bool {
	switch t {
	case TypeBuy, TypeSell, TypeDividend:
		return true
	}
	return false
}

// Transaction is a single ledger entry. NetAmount is the signed cash-flow
// impact precomputed by the caller (negative = cash leaves the account) and is
// the single source of truth for cash effects.
type Transaction struct {
	ID        string
	UserID    string
	Date      time.Time
	Type      TransactionType
	Symbol    string // empty for DEPOSIT/WITHDRAW
	Qty       decimal.Decimal
	Price     decimal.Decimal
	Fee       decimal.Decimal
	NetAmount decimal.Decimal
	Notes     string
}
