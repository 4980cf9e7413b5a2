package portfolioService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/ThusharaSampath/stock-portfolio/data/repository"
	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/cseModel"
	"github.com/ThusharaSampath/stock-portfolio/internal/service"
	"github.com/ThusharaSampath/stock-portfolio/internal/valuation"
	"github.com/ThusharaSampath/stock-portfolio/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MarketApi interface {
	GetTradeSummary(ctx context.Context) ([]cseModel.StockInfo, error)
}

type Cache interface {
	GetPrices(ctx context.Context) (model.PriceSnapshot, error)
	SetPrices(ctx context.Context, snapshot model.PriceSnapshot) error
	GetSummary(ctx context.Context, userID string) (model.PortfolioSummary, error)
	SetSummary(ctx context.Context, userID string, summary model.PortfolioSummary) error
	FlushSummary(ctx context.Context, userID string) error
}

type Repository interface {
	InsertTransaction(ctx context.Context, tx model.Transaction) error
	GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetUserIDs(ctx context.Context) ([]string, error)
	GetSettings(ctx context.Context, userID string) (model.Settings, error)
	UpsertSettings(ctx context.Context, settings model.Settings) error
	InsertSnapshot(ctx context.Context, snapshot model.PortfolioSnapshot) error
	GetSnapshots(ctx context.Context, userID string) ([]model.PortfolioSnapshot, error)
	UpsertMarketPrices(ctx context.Context, snapshot model.PriceSnapshot) error
	GetMarketPrices(ctx context.Context) (model.PriceSnapshot, error)
}

type ReportGenerator interface {
	Generate(ctx context.Context, summary model.PortfolioSummary, txs []model.Transaction) (fileBytes []byte, fileExtension string, err error)
}

type CloudStorage interface {
	UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error)
	DeleteOldFiles(ctx context.Context) error
}

type PortfolioService struct {
	repo         Repository
	cache        Cache
	marketApi    MarketApi
	reportGen    ReportGenerator
	cloudStorage CloudStorage
}

func New(repo Repository, cache Cache, marketApi MarketApi, reportGen ReportGenerator, cloudStorage CloudStorage) *PortfolioService {
	return &PortfolioService{
		repo:         repo,
		cache:        cache,
		marketApi:    marketApi,
		reportGen:    reportGen,
		cloudStorage: cloudStorage,
	}
}

// GetSummary computes the portfolio state for a user from the full
// transaction ledger and the latest price snapshot. Results are cached until
// the next ledger or settings write.
func (s *PortfolioService) GetSummary(ctx context.Context, userID string) (summary model.PortfolioSummary, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetSummary"

	slog.Debug("GetSummary start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("GetSummary finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	summary, err = s.cache.GetSummary(ctx, userID)
	if err == nil {
		return summary, nil
	}

	summary, err = s.computeSummary(ctx, userID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	if cacheErr := s.cache.SetSummary(ctx, userID, summary); cacheErr != nil {
		slog.Warn("can't cache summary", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", cacheErr.Error()))
	}

	return summary, nil
}

func (s *PortfolioService) computeSummary(ctx context.Context, userID string) (model.PortfolioSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.computeSummary"

	txs, err := s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	prices, err := s.getPrices(ctx)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	override, err := s.getInvestedOverride(ctx, userID)
	if err != nil {
		return model.PortfolioSummary{}, err
	}

	summary, err := valuation.Compute(txs, prices, override)
	if err != nil {
		if errors.Is(err, valuation.ErrInvalidTransaction) {
			slog.Warn("ledger rejected by valuation", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
			return model.PortfolioSummary{}, fmt.Errorf("%w: %s", service.ErrInvalidTransaction, err)
		}
		slog.Error("got error from valuation.Compute", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, err
	}

	return summary, nil
}

// getPrices reads the latest snapshot from cache, falling back to postgres
// when the cache is cold; a postgres hit refills the cache.
func (s *PortfolioService) getPrices(ctx context.Context) (model.PriceSnapshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getPrices"

	prices, err := s.cache.GetPrices(ctx)
	if err == nil {
		return prices, nil
	}

	slog.Warn("can't get prices from cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))

	prices, err = s.repo.GetMarketPrices(ctx)
	if err != nil {
		slog.Error("got error from repo.GetMarketPrices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PriceSnapshot{}, err
	}

	if cacheErr := s.cache.SetPrices(ctx, prices); cacheErr != nil {
		slog.Warn("can't refill prices cache", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", cacheErr.Error()))
	}

	return prices, nil
}

func (s *PortfolioService) getInvestedOverride(ctx context.Context, userID string) (*decimal.Decimal, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.getInvestedOverride"

	settings, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		slog.Error("got error from repo.GetSettings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return settings.BaseInvested, nil
}

func (s *PortfolioService) AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.AddTransaction"

	slog.Debug("AddTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", tx.UserID))
	defer func() {
		slog.Debug("AddTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", tx.UserID))
	}()

	if !tx.Type.Valid() {
		return model.Transaction{}, fmt.Errorf("%w: unknown type %q", service.ErrInvalidTransaction, tx.Type)
	}
	if tx.Type.RequiresSymbol() && tx.Symbol == "" {
		return model.Transaction{}, fmt.Errorf("%w: type %s requires a symbol", service.ErrInvalidTransaction, tx.Type)
	}

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	err := s.repo.InsertTransaction(ctx, tx)
	if err != nil {
		slog.Error("got error from repo.InsertTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Transaction{}, err
	}

	s.flushSummary(ctx, tx.UserID)

	return tx, nil
}

func (s *PortfolioService) ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListTransactions"

	slog.Debug("ListTransactions start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("ListTransactions finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	txs, err := s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return txs, nil
}

func (s *PortfolioService) DeleteTransaction(ctx context.Context, userID, transactionID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.DeleteTransaction"

	slog.Debug("DeleteTransaction start", slog.String("rqID", rqID), slog.String("op", op), slog.String("transactionID", transactionID))
	defer func() {
		slog.Debug("DeleteTransaction finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("transactionID", transactionID))
	}()

	err := s.repo.DeleteTransaction(ctx, userID, transactionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return service.ErrNotFound
		}
		slog.Error("got error from repo.DeleteTransaction", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.flushSummary(ctx, userID)

	return nil
}

func (s *PortfolioService) GetSettings(ctx context.Context, userID string) (model.Settings, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetSettings"

	slog.Debug("GetSettings start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("GetSettings finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	settings, err := s.repo.GetSettings(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// no settings yet is not an error, the override is simply unset
			return model.Settings{UserID: userID}, nil
		}
		slog.Error("got error from repo.GetSettings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.Settings{}, err
	}

	return settings, nil
}

func (s *PortfolioService) UpdateSettings(ctx context.Context, settings model.Settings) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.UpdateSettings"

	slog.Debug("UpdateSettings start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", settings.UserID))
	defer func() {
		slog.Debug("UpdateSettings finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", settings.UserID))
	}()

	err := s.repo.UpsertSettings(ctx, settings)
	if err != nil {
		slog.Error("got error from repo.UpsertSettings", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	s.flushSummary(ctx, settings.UserID)

	return nil
}

// RefreshPrices pulls the latest trade summary from the CSE and stores it in
// postgres and the cache. Runs on a schedule and behind the manual admin
// endpoint.
func (s *PortfolioService) RefreshPrices(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.RefreshPrices"

	slog.Debug("RefreshPrices start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("RefreshPrices finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	stocks, err := s.marketApi.GetTradeSummary(ctx)
	if err != nil {
		slog.Error("got error from marketApi.GetTradeSummary", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	snapshot := model.PriceSnapshot{
		Prices:    make(map[string]decimal.Decimal, len(stocks)),
		UpdatedAt: time.Now().UTC(),
	}
	for _, stock := range stocks {
		snapshot.Prices[stock.Symbol] = stock.Price
	}

	err = s.repo.UpsertMarketPrices(ctx, snapshot)
	if err != nil {
		slog.Error("got error from repo.UpsertMarketPrices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	if cacheErr := s.cache.SetPrices(ctx, snapshot); cacheErr != nil {
		slog.Warn("can't cache prices", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", cacheErr.Error()))
	}

	slog.Info("market prices refreshed", slog.String("rqID", rqID), slog.Int("symbols", len(snapshot.Prices)))

	return nil
}

func (s *PortfolioService) ListSymbols(ctx context.Context) ([]string, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ListSymbols"

	slog.Debug("ListSymbols start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("ListSymbols finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	prices, err := s.getPrices(ctx)
	if err != nil {
		return nil, err
	}

	if len(prices.Prices) == 0 {
		return nil, service.ErrNoPrices
	}

	symbols := make([]string, 0, len(prices.Prices))
	for symbol := range prices.Prices {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	return symbols, nil
}

// TakeSnapshot persists the current portfolio state as one point of the
// history series.
func (s *PortfolioService) TakeSnapshot(ctx context.Context, userID string) (model.PortfolioSnapshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.TakeSnapshot"

	slog.Debug("TakeSnapshot start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("TakeSnapshot finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	summary, err := s.computeSummary(ctx, userID)
	if err != nil {
		return model.PortfolioSnapshot{}, err
	}

	snapshot := model.PortfolioSnapshot{
		UserID:        userID,
		Date:          time.Now().UTC(),
		NetWorth:      summary.NetWorth,
		NetInvested:   summary.NetInvested,
		CashOnHand:    summary.CashOnHand,
		TotalGain:     summary.TotalLifecycleGain,
		HoldingsCount: len(summary.Holdings),
	}

	err = s.repo.InsertSnapshot(ctx, snapshot)
	if err != nil {
		slog.Error("got error from repo.InsertSnapshot", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return model.PortfolioSnapshot{}, err
	}

	return snapshot, nil
}

// SnapshotAllUsers runs TakeSnapshot for every user with a ledger. A failure
// for one user does not stop the others.
func (s *PortfolioService) SnapshotAllUsers(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.SnapshotAllUsers"

	slog.Debug("SnapshotAllUsers start", slog.String("rqID", rqID), slog.String("op", op))
	defer func() {
		slog.Debug("SnapshotAllUsers finished", slog.String("rqID", rqID), slog.String("op", op))
	}()

	userIDs, err := s.repo.GetUserIDs(ctx)
	if err != nil {
		slog.Error("got error from repo.GetUserIDs", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	var failed int
	for _, userID := range userIDs {
		if _, err := s.TakeSnapshot(ctx, userID); err != nil {
			slog.Error("snapshot failed for user", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID), slog.String("err", err.Error()))
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("snapshots failed for %d of %d users", failed, len(userIDs))
	}

	return nil
}

func (s *PortfolioService) GetHistory(ctx context.Context, userID string) ([]model.PortfolioSnapshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.GetHistory"

	slog.Debug("GetHistory start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("GetHistory finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	snapshots, err := s.repo.GetSnapshots(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetSnapshots", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return nil, err
	}

	return snapshots, nil
}

// ExportReport builds an xlsx report for the user and uploads it to cloud
// storage, returning a public download link.
func (s *PortfolioService) ExportReport(ctx context.Context, userID string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "PortfolioService.ExportReport"

	slog.Debug("ExportReport start", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	defer func() {
		slog.Debug("ExportReport finished", slog.String("rqID", rqID), slog.String("op", op), slog.String("userID", userID))
	}()

	summary, err := s.GetSummary(ctx, userID)
	if err != nil {
		return "", err
	}

	txs, err := s.repo.GetTransactions(ctx, userID)
	if err != nil {
		slog.Error("got error from repo.GetTransactions", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	fileBytes, fileExtension, err := s.reportGen.Generate(ctx, summary, txs)
	if err != nil {
		slog.Error("got error from reportGen.Generate", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	filename := fmt.Sprintf("portfolio_%s_%s%s", userID, time.Now().UTC().Format("20060102_150405"), fileExtension)

	downloadLink, err = s.cloudStorage.UploadFile(ctx, bytes.NewReader(fileBytes), filename)
	if err != nil {
		slog.Error("got error from cloudStorage.UploadFile", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	return downloadLink, nil
}

// CleanupReports removes expired report files from cloud storage.
func (s *PortfolioService) CleanupReports(ctx context.Context) error {
	return s.cloudStorage.DeleteOldFiles(ctx)
}

func (s *PortfolioService) flushSummary(ctx context.Context, userID string) {
	rqID := utils.GetRequestIDFromCtx(ctx)

	if err := s.cache.FlushSummary(ctx, userID); err != nil {
		slog.Warn("can't flush summary cache", slog.String("rqID", rqID), slog.String("userID", userID), slog.String("err", err.Error()))
	}
}
