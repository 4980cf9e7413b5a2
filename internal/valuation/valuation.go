// Package valuation folds a transaction ledger and a market price snapshot
// into a portfolio summary. It is pure: no I/O, no logging, no shared state,
// safe for concurrent callers.
package valuation

import (
	"errors"
	"fmt"

	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/shopspring/decimal"
)

// ErrInvalidTransaction marks ledger entries the engine refuses to account:
// unknown type, or a missing symbol on a type that requires one.
var ErrInvalidTransaction = errors.New("invalid transaction")

// qtyEpsilon suppresses holdings whose share count is residue from fractional
// quantity accumulation. It applies to quantities only, never to money.
var qtyEpsilon = decimal.New(1, -6)

var hundred = decimal.NewFromInt(100)

type symbolState struct {
	qty      decimal.Decimal
	cashflow decimal.Decimal
}

// Compute produces the portfolio summary implied by the given transactions and
// prices. The result is independent of transaction order. When
// investedOverride is non-nil it replaces the net-invested figure computed
// from deposits and withdrawals.
func Compute(txs []model.Transaction, prices model.PriceSnapshot, investedOverride *decimal.Decimal) (model.PortfolioSummary, error) {
	summary, _, err := compute(txs, prices, investedOverride)
	return summary, err
}

// compute also returns the per-symbol summed lifecycle gain. For a ledger
// where every cash movement flows through recorded transactions it equals
// NetWorth - NetInvested (without override); tests assert the identity, the
// public contract reports the identity form.
func compute(txs []model.Transaction, prices model.PriceSnapshot, investedOverride *decimal.Decimal) (model.PortfolioSummary, decimal.Decimal, error) {
	var (
		cashOnHand  decimal.Decimal
		netInvested decimal.Decimal
	)

	symbols := make(map[string]*symbolState)
	order := make([]string, 0)

	for _, tx := range txs {
		if !tx.Type.Valid() {
			return model.PortfolioSummary{}, decimal.Zero, fmt.Errorf("%w %s: unknown type %q", ErrInvalidTransaction, tx.ID, tx.Type)
		}
		if tx.Type.RequiresSymbol() && tx.Symbol == "" {
			return model.PortfolioSummary{}, decimal.Zero, fmt.Errorf("%w %s: type %s requires a symbol", ErrInvalidTransaction, tx.ID, tx.Type)
		}

		// NetAmount already carries the correct sign for every type, so the
		// cash balance is a plain sum.
		cashOnHand = cashOnHand.Add(tx.NetAmount)

		// Only external capital moves net invested. Trades shift capital
		// between cash and holdings; dividends are income, not new capital.
		if tx.Type == model.TypeDeposit || tx.Type == model.TypeWithdraw {
			netInvested = netInvested.Add(tx.NetAmount)
		}

		if tx.Type.RequiresSymbol() {
			st, ok := symbols[tx.Symbol]
			if !ok {
				st = &symbolState{}
				symbols[tx.Symbol] = st
				order = append(order, tx.Symbol)
			}
			st.qty = st.qty.Add(tx.Qty)
			st.cashflow = st.cashflow.Add(tx.NetAmount)
		}
	}

	if investedOverride != nil {
		netInvested = *investedOverride
	}

	holdings := make([]model.Holding, 0, len(order))
	totalHoldingsValue := decimal.Zero
	summedGain := decimal.Zero

	for _, symbol := range order {
		st := symbols[symbol]
		currentPrice := prices.Prices[symbol] // absent symbol values at zero
		marketValue := st.qty.Mul(currentPrice)
		lifecycleGain := marketValue.Add(st.cashflow)

		// Closed positions emit no holding but their market value (zero) and
		// realized gain still count toward the totals.
		totalHoldingsValue = totalHoldingsValue.Add(marketValue)
		summedGain = summedGain.Add(lifecycleGain)

		if st.qty.Abs().GreaterThan(qtyEpsilon) {
			holdings = append(holdings, model.Holding{
				Symbol:        symbol,
				Qty:           st.qty,
				CurrentPrice:  currentPrice,
				MarketValue:   marketValue,
				LifecycleGain: lifecycleGain,
			})
		}
	}

	allocation := make([]model.AssetAllocation, 0, len(holdings))
	for i := range holdings {
		if totalHoldingsValue.IsPositive() {
			holdings[i].Allocation = holdings[i].MarketValue.Mul(hundred).Div(totalHoldingsValue)
		}
		allocation = append(allocation, model.AssetAllocation{
			Symbol:      holdings[i].Symbol,
			MarketValue: holdings[i].MarketValue,
		})
	}

	netWorth := cashOnHand.Add(totalHoldingsValue)

	return model.PortfolioSummary{
		NetWorth:           netWorth,
		NetInvested:        netInvested,
		CashOnHand:         cashOnHand,
		TotalLifecycleGain: netWorth.Sub(netInvested),
		Holdings:           holdings,
		AssetAllocation:    allocation,
	}, summedGain, nil
}
