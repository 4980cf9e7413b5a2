package dbModel

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

type Transaction struct {
	ID        string          `db:"transaction_id"`
	UserID    string          `db:"user_id"`
	Date      time.Time       `db:"dt"`
	Type      string          `db:"tx_type"`
	Symbol    sql.NullString  `db:"symbol"`
	Qty       decimal.Decimal `db:"qty"`
	Price     decimal.Decimal `db:"price"`
	Fee       decimal.Decimal `db:"fee"`
	NetAmount decimal.Decimal `db:"net_amount"`
	Notes     sql.NullString  `db:"notes"`
	CreatedAt time.Time       `db:"dt_create"`
}

type MarketPrice struct {
	Symbol    string          `db:"symbol"`
	Price     decimal.Decimal `db:"price"`
	UpdatedAt time.Time       `db:"dt_update"`
}

type Settings struct {
	UserID       string              `db:"user_id"`
	BaseInvested decimal.NullDecimal `db:"base_invested"`
}

type Snapshot struct {
	UserID        string          `db:"user_id"`
	Date          time.Time       `db:"dt"`
	NetWorth      decimal.Decimal `db:"net_worth"`
	NetInvested   decimal.Decimal `db:"net_invested"`
	CashOnHand    decimal.Decimal `db:"cash_on_hand"`
	TotalGain     decimal.Decimal `db:"total_gain"`
	HoldingsCount int             `db:"holdings_count"`
}
