package xslsxGenerator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/utils"
	"github.com/xuri/excelize/v2"
)

type XSLSXGenerator struct{}

func New() *XSLSXGenerator {
	return &XSLSXGenerator{}
}

// Generate builds an xlsx portfolio report: one sheet with the summary block
// and holdings table, one sheet with the full transaction history.
func (g *XSLSXGenerator) Generate(ctx context.Context, summary model.PortfolioSummary, txs []model.Transaction) (fileBytes []byte, fileExtension string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "XSLSXGenerator.Generate"

	slog.Debug("Generate start", slog.String("rqID", rqID), slog.String("op", op))

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("got error while closing file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		}
	}()

	if err := g.fillSummarySheet(f, summary); err != nil {
		slog.Error("failed to fill summary sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := g.fillTransactionsSheet(f, txs); err != nil {
		slog.Error("failed to fill transactions sheet", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Error("got error while deleting Sheet1", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		slog.Error("got error while Saving file to bytes buffer", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, "", err
	}

	slog.Debug("Generate completed", slog.String("rqID", rqID), slog.String("op", op))

	return buf.Bytes(), ".xlsx", nil
}

func (g *XSLSXGenerator) fillSummarySheet(f *excelize.File, summary model.PortfolioSummary) error {
	const sheetName = "Portfolio"

	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Font: &excelize.Font{
			Bold: true,
			Size: 11,
		},
	})
	if err != nil {
		return err
	}

	if err := f.MergeCell(sheetName, "A1", "B1"); err != nil {
		return err
	}
	f.SetCellValue(sheetName, "A1", "Summary")
	if err := f.SetCellStyle(sheetName, "A1", "B1", headerStyle); err != nil {
		return err
	}

	summaryRows := []struct {
		label string
		value string
	}{
		{"Net Worth", summary.NetWorth.StringFixed(2)},
		{"Net Invested", summary.NetInvested.StringFixed(2)},
		{"Cash on Hand", summary.CashOnHand.StringFixed(2)},
		{"Total Gain", summary.TotalLifecycleGain.StringFixed(2)},
	}

	for i, row := range summaryRows {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", i+2), row.label)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", i+2), row.value)
	}

	holdingsHeaderRow := len(summaryRows) + 3
	if err := f.MergeCell(sheetName, fmt.Sprintf("A%d", holdingsHeaderRow), fmt.Sprintf("F%d", holdingsHeaderRow)); err != nil {
		return err
	}
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", holdingsHeaderRow), "Holdings")
	if err := f.SetCellStyle(sheetName, fmt.Sprintf("A%d", holdingsHeaderRow), fmt.Sprintf("F%d", holdingsHeaderRow), headerStyle); err != nil {
		return err
	}

	columns := []string{"Symbol", "Qty", "Price", "Market Value", "Lifecycle Gain", "Allocation %"}
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, holdingsHeaderRow+1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, col)
	}

	for i, h := range summary.Holdings {
		rowNum := holdingsHeaderRow + 2 + i
		values := []any{
			h.Symbol,
			h.Qty.String(),
			h.CurrentPrice.StringFixed(2),
			h.MarketValue.StringFixed(2),
			h.LifecycleGain.StringFixed(2),
			h.Allocation.StringFixed(2),
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, v)
		}
	}

	return nil
}

func (g *XSLSXGenerator) fillTransactionsSheet(f *excelize.File, txs []model.Transaction) error {
	const sheetName = "Transactions"

	if _, err := f.NewSheet(sheetName); err != nil {
		return err
	}

	columns := []string{"ID", "Date", "Type", "Symbol", "Qty", "Price", "Fee", "Net Amount", "Notes"}
	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheetName, cell, col)
	}

	for i, tx := range txs {
		values := []any{
			tx.ID,
			tx.Date.Format("2006-01-02"),
			string(tx.Type),
			tx.Symbol,
			tx.Qty.String(),
			tx.Price.StringFixed(2),
			tx.Fee.StringFixed(2),
			tx.NetAmount.StringFixed(2),
			tx.Notes,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheetName, cell, v)
		}
	}

	return nil
}
