package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/ThusharaSampath/stock-portfolio/data/repository"
	"github.com/ThusharaSampath/stock-portfolio/internal/converter/dbConverter"
	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/dbModel"
	"github.com/ThusharaSampath/stock-portfolio/utils"
	"github.com/shopspring/decimal"
)

func (r *Postgres) GetSettings(ctx context.Context, userID string) (settings model.Settings, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT user_id, base_invested FROM settings WHERE user_id = $1`

	slog.Debug("GetSettings start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			slog.Error("GetSettings failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetSettings completed", slog.String("rqID", rqID))
		}
	}()

	dbSettings := dbModel.Settings{}
	err = r.txOrDb(ctx).QueryRowxContext(ctx, query, userID).StructScan(&dbSettings)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Settings{}, repository.ErrNotFound
		}
		return model.Settings{}, err
	}

	return dbConverter.ConvertSettings(dbSettings), nil
}

func (r *Postgres) UpsertSettings(ctx context.Context, settings model.Settings) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO settings(user_id, base_invested)
		VALUES($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET base_invested = EXCLUDED.base_invested
		`

	slog.Debug("UpsertSettings start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("UpsertSettings failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("UpsertSettings completed", slog.String("rqID", rqID))
		}
	}()

	baseInvested := decimal.NullDecimal{}
	if settings.BaseInvested != nil {
		baseInvested = decimal.NullDecimal{Decimal: *settings.BaseInvested, Valid: true}
	}

	_, err = r.txOrDb(ctx).ExecContext(ctx, query, settings.UserID, baseInvested)
	if err != nil {
		return err
	}

	return nil
}
