package postgres

import (
	"context"
	"log/slog"
	"time"

	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/dbModel"
	"github.com/ThusharaSampath/stock-portfolio/utils"
	"github.com/shopspring/decimal"
)

func (r *Postgres) UpsertMarketPrices(ctx context.Context, snapshot model.PriceSnapshot) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO market_prices(symbol, price, dt_update)
		VALUES(:symbol, :price, :dt_update)
		ON CONFLICT (symbol) DO UPDATE SET price = EXCLUDED.price, dt_update = EXCLUDED.dt_update
		`

	slog.Debug("UpsertMarketPrices start", slog.String("rqID", rqID), slog.Int("symbols", len(snapshot.Prices)))
	defer func() {
		if err != nil {
			slog.Error("UpsertMarketPrices failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertMarketPrices completed", slog.String("rqID", rqID))
		}
	}()

	return r.WithinTransaction(ctx, func(ctx context.Context) error {
		for symbol, price := range snapshot.Prices {
			row := dbModel.MarketPrice{Symbol: symbol, Price: price, UpdatedAt: snapshot.UpdatedAt}
			if _, err := r.txOrDb(ctx).NamedExecContext(ctx, query, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Postgres) GetMarketPrices(ctx context.Context) (snapshot model.PriceSnapshot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT symbol, price, dt_update FROM market_prices`

	slog.Debug("GetMarketPrices start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetMarketPrices failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetMarketPrices completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query)
	if err != nil {
		return model.PriceSnapshot{}, err
	}

	defer rows.Close()

	snapshot.Prices = make(map[string]decimal.Decimal)
	var updatedAt time.Time

	for rows.Next() {
		var row dbModel.MarketPrice
		err = rows.StructScan(&row)
		if err != nil {
			return model.PriceSnapshot{}, err
		}
		snapshot.Prices[row.Symbol] = row.Price
		if row.UpdatedAt.After(updatedAt) {
			updatedAt = row.UpdatedAt
		}
	}

	snapshot.UpdatedAt = updatedAt

	return snapshot, nil
}
