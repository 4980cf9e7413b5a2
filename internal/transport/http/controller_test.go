package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ThusharaSampath/stock-portfolio/config"
	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/apiModel"
	"github.com/ThusharaSampath/stock-portfolio/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	summary    model.PortfolioSummary
	summaryErr error
	addErr     error
	deleteErr  error
	symbols    []string
	symbolsErr error
	link       string
}

func (s *stubService) GetSummary(_ context.Context, _ string) (model.PortfolioSummary, error) {
	return s.summary, s.summaryErr
}

func (s *stubService) AddTransaction(_ context.Context, tx model.Transaction) (model.Transaction, error) {
	if s.addErr != nil {
		return model.Transaction{}, s.addErr
	}
	tx.ID = "generated-id"
	return tx, nil
}

func (s *stubService) ListTransactions(_ context.Context, _ string) ([]model.Transaction, error) {
	return nil, nil
}

func (s *stubService) DeleteTransaction(_ context.Context, _, _ string) error {
	return s.deleteErr
}

func (s *stubService) GetSettings(_ context.Context, userID string) (model.Settings, error) {
	return model.Settings{UserID: userID}, nil
}

func (s *stubService) UpdateSettings(_ context.Context, _ model.Settings) error {
	return nil
}

func (s *stubService) RefreshPrices(_ context.Context) error {
	return nil
}

func (s *stubService) ListSymbols(_ context.Context) ([]string, error) {
	return s.symbols, s.symbolsErr
}

func (s *stubService) TakeSnapshot(_ context.Context, userID string) (model.PortfolioSnapshot, error) {
	return model.PortfolioSnapshot{UserID: userID}, nil
}

func (s *stubService) GetHistory(_ context.Context, _ string) ([]model.PortfolioSnapshot, error) {
	return nil, nil
}

func (s *stubService) ExportReport(_ context.Context, _ string) (string, error) {
	return s.link, nil
}

func newTestRouter(srv Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewRouter(NewController(&config.Config{}, srv))
}

func doRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetSummary_OK(t *testing.T) {
	srv := &stubService{
		summary: model.PortfolioSummary{
			NetWorth:           decimal.RequireFromString("10500"),
			NetInvested:        decimal.RequireFromString("10000"),
			CashOnHand:         decimal.RequireFromString("8000"),
			TotalLifecycleGain: decimal.RequireFromString("500"),
			Holdings: []model.Holding{{
				Symbol:      "JKH.N0000",
				Qty:         decimal.RequireFromString("100"),
				MarketValue: decimal.RequireFromString("2500"),
				Allocation:  decimal.RequireFromString("100"),
			}},
			AssetAllocation: []model.AssetAllocation{{
				Symbol:      "JKH.N0000",
				MarketValue: decimal.RequireFromString("2500"),
			}},
		},
	}

	w := doRequest(newTestRouter(srv), http.MethodGet, "/portfolio/summary?uid=user1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp apiModel.PortfolioSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 10500.0, resp.NetWorth)
	require.Equal(t, 500.0, resp.TotalLifecycleGain)
	require.Len(t, resp.Holdings, 1)
	require.Equal(t, "JKH.N0000", resp.Holdings[0].Symbol)
	require.Len(t, resp.AssetAllocation, 1)
	require.Equal(t, "JKH.N0000", resp.AssetAllocation[0].Name)
}

func TestGetSummary_MissingUid(t *testing.T) {
	w := doRequest(newTestRouter(&stubService{}), http.MethodGet, "/portfolio/summary", "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "missing uid parameter")
}

func TestGetSummary_InvalidLedger(t *testing.T) {
	srv := &stubService{summaryErr: service.ErrInvalidTransaction}

	w := doRequest(newTestRouter(srv), http.MethodGet, "/portfolio/summary?uid=user1", "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetSummary_InternalErrorIsOpaque(t *testing.T) {
	srv := &stubService{summaryErr: errors.New("pq: connection refused")}

	w := doRequest(newTestRouter(srv), http.MethodGet, "/portfolio/summary?uid=user1", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "connection refused")
}

func TestAddTransaction_Created(t *testing.T) {
	body := `{"uid":"user1","date":"2026-01-15T00:00:00Z","type":"BUY","symbol":"JKH.N0000","qty":100,"price":19.5,"fee":25,"netAmount":-1975}`

	w := doRequest(newTestRouter(&stubService{}), http.MethodPost, "/portfolio/transactions", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp apiModel.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "generated-id", resp.ID)
	require.Equal(t, "BUY", resp.Type)
	require.Equal(t, -1975.0, resp.NetAmount)
}

func TestAddTransaction_MissingFields(t *testing.T) {
	w := doRequest(newTestRouter(&stubService{}), http.MethodPost, "/portfolio/transactions", `{"uid":"user1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddTransaction_BadDate(t *testing.T) {
	body := `{"uid":"user1","date":"15/01/2026","type":"DEPOSIT","netAmount":100}`

	w := doRequest(newTestRouter(&stubService{}), http.MethodPost, "/portfolio/transactions", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAddTransaction_Invalid(t *testing.T) {
	srv := &stubService{addErr: service.ErrInvalidTransaction}
	body := `{"uid":"user1","date":"2026-01-15T00:00:00Z","type":"FOO","netAmount":100}`

	w := doRequest(newTestRouter(srv), http.MethodPost, "/portfolio/transactions", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteTransaction_NotFound(t *testing.T) {
	srv := &stubService{deleteErr: service.ErrNotFound}

	w := doRequest(newTestRouter(srv), http.MethodDelete, "/portfolio/transactions/t1?uid=user1", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSymbols(t *testing.T) {
	srv := &stubService{symbols: []string{"JKH.N0000", "LOLC.N0000"}}

	w := doRequest(newTestRouter(srv), http.MethodGet, "/market/symbols", "")
	require.Equal(t, http.StatusOK, w.Code)

	var symbols []string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &symbols))
	require.Equal(t, []string{"JKH.N0000", "LOLC.N0000"}, symbols)
}

func TestListSymbols_NoPrices(t *testing.T) {
	srv := &stubService{symbolsErr: service.ErrNoPrices}

	w := doRequest(newTestRouter(srv), http.MethodGet, "/market/symbols", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportReport(t *testing.T) {
	srv := &stubService{link: "https://drive.google.com/file/d/abc/view"}

	w := doRequest(newTestRouter(srv), http.MethodGet, "/portfolio/report?uid=user1", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp apiModel.ReportLink
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "https://drive.google.com/file/d/abc/view", resp.DownloadLink)
}

func TestHealth(t *testing.T) {
	w := doRequest(newTestRouter(&stubService{}), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
}
