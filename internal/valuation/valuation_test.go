package valuation

import (
	"testing"

	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, got.Equal(dec(want)), "want %s, got %s", want, got.String())
}

func tx(id string, typ model.TransactionType, symbol, qty, netAmount string) model.Transaction {
	return model.Transaction{
		ID:        id,
		Type:      typ,
		Symbol:    symbol,
		Qty:       dec(qty),
		NetAmount: dec(netAmount),
	}
}

func prices(pairs map[string]string) model.PriceSnapshot {
	m := make(map[string]decimal.Decimal, len(pairs))
	for symbol, p := range pairs {
		m[symbol] = dec(p)
	}
	return model.PriceSnapshot{Prices: m}
}

func TestCompute_DepositWithdrawOnly(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeDeposit, "", "0", "5000"),
		tx("t2", model.TypeWithdraw, "", "0", "-1000"),
	}

	summary, err := Compute(txs, prices(nil), nil)
	require.NoError(t, err)

	require.Empty(t, summary.Holdings)
	requireDecEqual(t, "4000", summary.CashOnHand)
	requireDecEqual(t, "4000", summary.NetInvested)
	requireDecEqual(t, "4000", summary.NetWorth)
	requireDecEqual(t, "0", summary.TotalLifecycleGain)
}

func TestCompute_OpenPosition(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeDeposit, "", "0", "10000"),
		tx("t2", model.TypeBuy, "LOLC.N0000", "100", "-2000"),
	}

	summary, err := Compute(txs, prices(map[string]string{"LOLC.N0000": "25"}), nil)
	require.NoError(t, err)

	require.Len(t, summary.Holdings, 1)
	h := summary.Holdings[0]
	require.Equal(t, "LOLC.N0000", h.Symbol)
	requireDecEqual(t, "100", h.Qty)
	requireDecEqual(t, "25", h.CurrentPrice)
	requireDecEqual(t, "2500", h.MarketValue)
	requireDecEqual(t, "500", h.LifecycleGain) // 2500 market value - 2000 paid
	requireDecEqual(t, "100", h.Allocation)

	requireDecEqual(t, "8000", summary.CashOnHand)
	requireDecEqual(t, "10500", summary.NetWorth)
	requireDecEqual(t, "500", summary.TotalLifecycleGain)
}

func TestCompute_ClosedPositionStillCounts(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeDeposit, "", "0", "1000"),
		tx("t2", model.TypeBuy, "JKH.N0000", "100", "-1000"),
		tx("t3", model.TypeSell, "JKH.N0000", "-100", "1200"),
	}

	summary, err := Compute(txs, prices(map[string]string{"JKH.N0000": "15"}), nil)
	require.NoError(t, err)

	// Fully closed position: no holding emitted, realized 200 profit still
	// visible through the net-worth / net-invested identity.
	require.Empty(t, summary.Holdings)
	requireDecEqual(t, "1200", summary.CashOnHand)
	requireDecEqual(t, "1200", summary.NetWorth)
	requireDecEqual(t, "1000", summary.NetInvested)
	requireDecEqual(t, "200", summary.TotalLifecycleGain)
}

func TestCompute_OrderIndependence(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeDeposit, "", "0", "10000"),
		tx("t2", model.TypeBuy, "JKH.N0000", "100", "-1500"),
		tx("t3", model.TypeBuy, "LOLC.N0000", "50", "-2000"),
		tx("t4", model.TypeSell, "JKH.N0000", "-40", "700"),
		tx("t5", model.TypeDividend, "LOLC.N0000", "0", "120"),
	}
	p := prices(map[string]string{"JKH.N0000": "18", "LOLC.N0000": "45"})

	base, err := Compute(txs, p, nil)
	require.NoError(t, err)

	for _, perm := range permutations(txs) {
		got, err := Compute(perm, p, nil)
		require.NoError(t, err)

		requireDecEqual(t, base.NetWorth.String(), got.NetWorth)
		requireDecEqual(t, base.NetInvested.String(), got.NetInvested)
		requireDecEqual(t, base.CashOnHand.String(), got.CashOnHand)
		requireDecEqual(t, base.TotalLifecycleGain.String(), got.TotalLifecycleGain)

		// Holdings order follows first appearance in the input, so compare as
		// a set.
		require.Equal(t, holdingsBySymbol(base.Holdings), holdingsBySymbol(got.Holdings))
	}
}

func TestCompute_NetWorthIdentity(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeDeposit, "", "0", "50000"),
		tx("t2", model.TypeBuy, "JKH.N0000", "200", "-4100.50"),
		tx("t3", model.TypeBuy, "SAMP.N0000", "30", "-7200"),
		tx("t4", model.TypeSell, "JKH.N0000", "-50", "1075.25"),
		tx("t5", model.TypeWithdraw, "", "0", "-2500"),
		tx("t6", model.TypeDividend, "SAMP.N0000", "0", "310"),
	}

	summary, err := Compute(txs, prices(map[string]string{"JKH.N0000": "21.75", "SAMP.N0000": "243"}), nil)
	require.NoError(t, err)

	total := decimal.Zero
	for _, h := range summary.Holdings {
		total = total.Add(h.MarketValue)
	}
	requireDecEqual(t, summary.CashOnHand.Add(total).String(), summary.NetWorth)
}

func TestCompute_AllocationSumsToHundred(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeBuy, "JKH.N0000", "100", "-1500"),
		tx("t2", model.TypeBuy, "LOLC.N0000", "33", "-2000"),
		tx("t3", model.TypeBuy, "SAMP.N0000", "7", "-1300"),
	}

	summary, err := Compute(txs, prices(map[string]string{
		"JKH.N0000":  "17.30",
		"LOLC.N0000": "61.50",
		"SAMP.N0000": "240.25",
	}), nil)
	require.NoError(t, err)
	require.Len(t, summary.Holdings, 3)

	sum := decimal.Zero
	for _, h := range summary.Holdings {
		sum = sum.Add(h.Allocation)
	}
	diff := sum.Sub(dec("100")).Abs()
	require.Truef(t, diff.LessThan(dec("0.0000001")), "allocations sum to %s", sum.String())
}

func TestCompute_MissingPriceValuesAtZero(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeBuy, "DELISTED.X0000", "10", "-500"),
	}

	summary, err := Compute(txs, prices(map[string]string{"JKH.N0000": "18"}), nil)
	require.NoError(t, err)

	require.Len(t, summary.Holdings, 1)
	h := summary.Holdings[0]
	requireDecEqual(t, "0", h.CurrentPrice)
	requireDecEqual(t, "0", h.MarketValue)
	requireDecEqual(t, "-500", h.LifecycleGain)
	requireDecEqual(t, "0", h.Allocation) // zero total value never divides
}

func TestCompute_OverrideReplacesNetInvested(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeDeposit, "", "0", "5000"),
		tx("t2", model.TypeWithdraw, "", "0", "-1000"),
	}

	override := dec("50000")
	summary, err := Compute(txs, prices(nil), &override)
	require.NoError(t, err)

	requireDecEqual(t, "50000", summary.NetInvested)
	requireDecEqual(t, "4000", summary.CashOnHand)
	requireDecEqual(t, "-46000", summary.TotalLifecycleGain)
}

func TestCompute_UnknownTypeRejected(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeDeposit, "", "0", "5000"),
		tx("t2", model.TransactionType("FOO"), "", "0", "100"),
	}

	_, err := Compute(txs, prices(nil), nil)
	require.ErrorIs(t, err, ErrInvalidTransaction)
	require.ErrorContains(t, err, "t2")
}

func TestCompute_MissingSymbolRejected(t *testing.T) {
	for _, typ := range []model.TransactionType{model.TypeBuy, model.TypeSell, model.TypeDividend} {
		_, err := Compute([]model.Transaction{tx("t9", typ, "", "0", "100")}, prices(nil), nil)
		require.ErrorIs(t, err, ErrInvalidTransaction)
		require.ErrorContains(t, err, "t9")
	}
}

func TestCompute_DividendUpdatesCashflowOnly(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeBuy, "JKH.N0000", "100", "-1500"),
		tx("t2", model.TypeDividend, "JKH.N0000", "0", "250"),
	}

	summary, err := Compute(txs, prices(map[string]string{"JKH.N0000": "15"}), nil)
	require.NoError(t, err)

	require.Len(t, summary.Holdings, 1)
	h := summary.Holdings[0]
	requireDecEqual(t, "100", h.Qty)
	requireDecEqual(t, "250", h.LifecycleGain) // 1500 value - 1500 paid + 250 dividend

	// Dividend is income, not injected capital.
	requireDecEqual(t, "0", summary.NetInvested)
}

func TestCompute_ResidualQuantitySuppressed(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeBuy, "JKH.N0000", "100.0000001", "-1500"),
		tx("t2", model.TypeSell, "JKH.N0000", "-100", "1500"),
	}

	summary, err := Compute(txs, prices(map[string]string{"JKH.N0000": "15"}), nil)
	require.NoError(t, err)

	// 1e-7 of residue is accumulation dust, not a position.
	require.Empty(t, summary.Holdings)
}

func TestCompute_HoldingsKeepFirstSeenOrder(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeBuy, "SAMP.N0000", "10", "-2400"),
		tx("t2", model.TypeBuy, "JKH.N0000", "100", "-1500"),
		tx("t3", model.TypeBuy, "SAMP.N0000", "5", "-1200"),
	}

	summary, err := Compute(txs, prices(map[string]string{"SAMP.N0000": "240", "JKH.N0000": "15"}), nil)
	require.NoError(t, err)

	require.Len(t, summary.Holdings, 2)
	require.Equal(t, "SAMP.N0000", summary.Holdings[0].Symbol)
	require.Equal(t, "JKH.N0000", summary.Holdings[1].Symbol)
	require.Len(t, summary.AssetAllocation, 2)
	require.Equal(t, "SAMP.N0000", summary.AssetAllocation[0].Symbol)
}

func TestCompute_EmptyLedger(t *testing.T) {
	summary, err := Compute(nil, prices(nil), nil)
	require.NoError(t, err)

	requireDecEqual(t, "0", summary.NetWorth)
	requireDecEqual(t, "0", summary.NetInvested)
	requireDecEqual(t, "0", summary.CashOnHand)
	requireDecEqual(t, "0", summary.TotalLifecycleGain)
	require.Empty(t, summary.Holdings)
	require.Empty(t, summary.AssetAllocation)
}

// For a ledger where every cash movement is a recorded transaction and no
// override is applied, the identity form (netWorth - netInvested) and the
// per-symbol summed gain must agree. Divergence would signal leakage in the
// accounting and is treated as a data-integrity bug.
func TestCompute_SummedGainMatchesIdentityForm(t *testing.T) {
	txs := []model.Transaction{
		tx("t1", model.TypeDeposit, "", "0", "100000"),
		tx("t2", model.TypeBuy, "JKH.N0000", "500", "-8750"),
		tx("t3", model.TypeBuy, "LOLC.N0000", "120", "-5400"),
		tx("t4", model.TypeSell, "JKH.N0000", "-200", "3900"),
		tx("t5", model.TypeDividend, "JKH.N0000", "0", "450"),
		tx("t6", model.TypeSell, "LOLC.N0000", "-120", "6100"),
		tx("t7", model.TypeWithdraw, "", "0", "-20000"),
	}
	p := prices(map[string]string{"JKH.N0000": "19.50", "LOLC.N0000": "48"})

	summary, summedGain, err := compute(txs, p, nil)
	require.NoError(t, err)

	requireDecEqual(t, summary.NetWorth.Sub(summary.NetInvested).String(), summedGain)
	requireDecEqual(t, summedGain.String(), summary.TotalLifecycleGain)
}

func holdingsBySymbol(hs []model.Holding) map[string]string {
	m := make(map[string]string, len(hs))
	for _, h := range hs {
		m[h.Symbol] = h.Qty.String() + "|" + h.MarketValue.String() + "|" + h.LifecycleGain.String() + "|" + h.Allocation.String()
	}
	return m
}

func permutations(txs []model.Transaction) [][]model.Transaction {
	var out [][]model.Transaction
	var walk func(k int, work []model.Transaction)
	walk = func(k int, work []model.Transaction) {
		if k == len(work) {
			perm := make([]model.Transaction, len(work))
			copy(perm, work)
			out = append(out, perm)
			return
		}
		for i := k; i < len(work); i++ {
			work[k], work[i] = work[i], work[k]
			walk(k+1, work)
			work[k], work[i] = work[i], work[k]
		}
	}
	work := make([]model.Transaction, len(txs))
	copy(work, txs)
	walk(0, work)
	return out
}
