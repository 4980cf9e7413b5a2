package postgres

import (
	"context"
	"log/slog"

	"github.com/ThusharaSampath/stock-portfolio/internal/converter/dbConverter"
	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/dbModel"
	"github.com/ThusharaSampath/stock-portfolio/utils"
)

func (r *Postgres) InsertSnapshot(ctx context.Context, snapshot model.PortfolioSnapshot) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO snapshots(user_id, dt, net_worth, net_invested, cash_on_hand, total_gain, holdings_count)
		VALUES(:user_id, :dt, :net_worth, :net_invested, :cash_on_hand, :total_gain, :holdings_count)
		`

	slog.Debug("InsertSnapshot start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertSnapshot failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertSnapshot completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).NamedExecContext(ctx, query, dbConverter.ToDbSnapshot(snapshot))
	if err != nil {
		return err
	}

	return nil
}

func (r *Postgres) GetSnapshots(ctx context.Context, userID string) (snapshots []model.PortfolioSnapshot, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT user_id, dt, net_worth, net_invested, cash_on_hand, total_gain, holdings_count
		FROM snapshots
		WHERE user_id = $1
		ORDER BY dt
		`

	slog.Debug("GetSnapshots start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetSnapshots failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetSnapshots completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var snap dbModel.Snapshot
		err = rows.StructScan(&snap)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, dbConverter.ConvertSnapshot(snap))
	}

	return snapshots, nil
}
