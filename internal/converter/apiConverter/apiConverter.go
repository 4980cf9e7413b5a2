package apiConverter

import (
	"fmt"
	"time"

	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/apiModel"
	"github.com/shopspring/decimal"
)

// Decimals leave the service as plain JSON numbers, so conversion to float64
// happens here and nowhere else.

func ConvertSummary(summary model.PortfolioSummary) apiModel.PortfolioSummary {
	holdings := make([]apiModel.Holding, 0, len(summary.Holdings))
	for _, h := range summary.Holdings {
		holdings = append(holdings, apiModel.Holding{
			Symbol:        h.Symbol,
			Qty:           h.Qty.InexactFloat64(),
			CurrentPrice:  h.CurrentPrice.InexactFloat64(),
			MarketValue:   h.MarketValue.InexactFloat64(),
			LifecycleGain: h.LifecycleGain.InexactFloat64(),
			Allocation:    h.Allocation.InexactFloat64(),
		})
	}

	allocation := make([]apiModel.AssetAllocation, 0, len(summary.AssetAllocation))
	for _, a := range summary.AssetAllocation {
		allocation = append(allocation, apiModel.AssetAllocation{
			Name:  a.Symbol,
			Value: a.MarketValue.InexactFloat64(),
		})
	}

	return apiModel.PortfolioSummary{
		NetWorth:           summary.NetWorth.InexactFloat64(),
		NetInvested:        summary.NetInvested.InexactFloat64(),
		CashOnHand:         summary.CashOnHand.InexactFloat64(),
		TotalLifecycleGain: summary.TotalLifecycleGain.InexactFloat64(),
		Holdings:           holdings,
		AssetAllocation:    allocation,
	}
}

func ConvertTransaction(tx model.Transaction) apiModel.Transaction {
	return apiModel.Transaction{
		ID:        tx.ID,
		Date:      tx.Date.Format(time.RFC3339),
		Type:      string(tx.Type),
		Symbol:    tx.Symbol,
		Qty:       tx.Qty.InexactFloat64(),
		Price:     tx.Price.InexactFloat64(),
		Fee:       tx.Fee.InexactFloat64(),
		NetAmount: tx.NetAmount.InexactFloat64(),
		Notes:     tx.Notes,
	}
}

func ConvertTransactions(txs []model.Transaction) []apiModel.Transaction {
	res := make([]apiModel.Transaction, 0, len(txs))
	for _, tx := range txs {
		res = append(res, ConvertTransaction(tx))
	}
	return res
}

func ToTransaction(req apiModel.CreateTransactionRequest) (model.Transaction, error) {
	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid date %q: %w", req.Date, err)
	}

	return model.Transaction{
		UserID:    req.UserID,
		Date:      date,
		Type:      model.TransactionType(req.Type),
		Symbol:    req.Symbol,
		Qty:       decimal.NewFromFloat(req.Qty),
		Price:     decimal.NewFromFloat(req.Price),
		Fee:       decimal.NewFromFloat(req.Fee),
		NetAmount: decimal.NewFromFloat(req.NetAmount),
		Notes:     req.Notes,
	}, nil
}

func ConvertSnapshot(s model.PortfolioSnapshot) apiModel.Snapshot {
	return apiModel.Snapshot{
		Date:          s.Date.Format(time.RFC3339),
		NetWorth:      s.NetWorth.InexactFloat64(),
		NetInvested:   s.NetInvested.InexactFloat64(),
		CashOnHand:    s.CashOnHand.InexactFloat64(),
		TotalGain:     s.TotalGain.InexactFloat64(),
		HoldingsCount: s.HoldingsCount,
	}
}

func ConvertSnapshots(snaps []model.PortfolioSnapshot) []apiModel.Snapshot {
	res := make([]apiModel.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		res = append(res, ConvertSnapshot(s))
	}
	return res
}

func ConvertSettings(s model.Settings) apiModel.Settings {
	settings := apiModel.Settings{}
	if s.BaseInvested != nil {
		v := s.BaseInvested.InexactFloat64()
		settings.BaseInvested = &v
	}
	return settings
}

func ToSettings(userID string, req apiModel.Settings) model.Settings {
	settings := model.Settings{UserID: userID}
	if req.BaseInvested != nil {
		v := decimal.NewFromFloat(*req.BaseInvested)
		settings.BaseInvested = &v
	}
	return settings
}
