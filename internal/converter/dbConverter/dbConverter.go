package dbConverter

import (
	"database/sql"

	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/dbModel"
)

func ConvertTransaction(tx dbModel.Transaction) model.Transaction {
	return model.Transaction{
		ID:        tx.ID,
		UserID:    tx.UserID,
		Date:      tx.Date,
		Type:      model.TransactionType(tx.Type),
		Symbol:    tx.Symbol.String,
		Qty:       tx.Qty,
		Price:     tx.Price,
		Fee:       tx.Fee,
		NetAmount: tx.NetAmount,
		Notes:     tx.Notes.String,
	}
}

func ConvertTransactions(txs []dbModel.Transaction) []model.Transaction {
	res := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		res = append(res, ConvertTransaction(tx))
	}
	return res
}

func ToDbTransaction(tx model.Transaction) dbModel.Transaction {
	return dbModel.Transaction{
		ID:        tx.ID,
		UserID:    tx.UserID,
		Date:      tx.Date,
		Type:      string(tx.Type),
		Symbol:    sql.NullString{String: tx.Symbol, Valid: tx.Symbol != ""},
		Qty:       tx.Qty,
		Price:     tx.Price,
		Fee:       tx.Fee,
		NetAmount: tx.NetAmount,
		Notes:     sql.NullString{String: tx.Notes, Valid: tx.Notes != ""},
	}
}

func ConvertSettings(s dbModel.Settings) model.Settings {
	settings := model.Settings{UserID: s.UserID}
	if s.BaseInvested.Valid {
		v := s.BaseInvested.Decimal
		settings.BaseInvested = &v
	}
	return settings
}

func ConvertSnapshot(s dbModel.Snapshot) model.PortfolioSnapshot {
	return model.PortfolioSnapshot{
		UserID:        s.UserID,
		Date:          s.Date,
		NetWorth:      s.NetWorth,
		NetInvested:   s.NetInvested,
		CashOnHand:    s.CashOnHand,
		TotalGain:     s.TotalGain,
		HoldingsCount: s.HoldingsCount,
	}
}

func ConvertSnapshots(snaps []dbModel.Snapshot) []model.PortfolioSnapshot {
	res := make([]model.PortfolioSnapshot, 0, len(snaps))
	for _, s := range snaps {
		res = append(res, ConvertSnapshot(s))
	}
	return res
}

func ToDbSnapshot(s model.PortfolioSnapshot) dbModel.Snapshot {
	return dbModel.Snapshot{
		UserID:        s.UserID,
		Date:          s.Date,
		NetWorth:      s.NetWorth,
		NetInvested:   s.NetInvested,
		CashOnHand:    s.CashOnHand,
		TotalGain:     s.TotalGain,
		HoldingsCount: s.HoldingsCount,
	}
}
