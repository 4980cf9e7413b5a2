package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ThusharaSampath/stock-portfolio/data/repository"
	"github.com/ThusharaSampath/stock-portfolio/internal/converter/dbConverter"
	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/dbModel"
	"github.com/ThusharaSampath/stock-portfolio/utils"
	"github.com/jackc/pgx/v5/pgconn"
)

func (r *Postgres) InsertTransaction(ctx context.Context, tx model.Transaction) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		INSERT INTO transactions(transaction_id, user_id, dt, tx_type, symbol, qty, price, fee, net_amount, notes)
		VALUES(:transaction_id, :user_id, :dt, :tx_type, :symbol, :qty, :price, :fee, :net_amount, :notes)
		`

	slog.Debug("InsertTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("InsertTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("InsertTransaction completed", slog.String("rqID", rqID))
		}
	}()

	_, err = r.txOrDb(ctx).NamedExecContext(ctx, query, dbConverter.ToDbTransaction(tx))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return repository.ErrAlreadyExists
			}
		}
		return err
	}

	return nil
}

func (r *Postgres) GetTransactions(ctx context.Context, userID string) (txs []model.Transaction, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `
		SELECT transaction_id, user_id, dt, tx_type, symbol, qty, price, fee, net_amount, notes, dt_create
		FROM transactions
		WHERE user_id = $1
		ORDER BY dt DESC
		`

	slog.Debug("GetTransactions start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetTransactions failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetTransactions completed", slog.String("rqID", rqID))
		}
	}()

	rows, err := r.txOrDb(ctx).QueryxContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var tx dbModel.Transaction
		err = rows.StructScan(&tx)
		if err != nil {
			return nil, err
		}
		txs = append(txs, dbConverter.ConvertTransaction(tx))
	}

	return txs, nil
}

func (r *Postgres) DeleteTransaction(ctx context.Context, userID, transactionID string) (err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `DELETE FROM transactions WHERE user_id = $1 AND transaction_id = $2`

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("DeleteTransaction failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("DeleteTransaction completed", slog.String("rqID", rqID))
		}
	}()

	res, err := r.txOrDb(ctx).ExecContext(ctx, query, userID, transactionID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if affected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *Postgres) GetUserIDs(ctx context.Context) (userIDs []string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	query := `SELECT DISTINCT user_id FROM transactions ORDER BY user_id`

	slog.Debug("GetUserIDs start", slog.String("rqID", rqID), slog.String("query", query))
	defer func() {
		if err != nil {
			slog.Error("GetUserIDs failed", slog.String("rqID", rqID), slog.String("err", err.Error()))
		} else {
			slog.Debug("GetUserIDs completed", slog.String("rqID", rqID))
		}
	}()

	err = r.txOrDb(ctx).SelectContext(ctx, &userIDs, query)
	if err != nil {
		return nil, err
	}

	return userIDs, nil
}
