package cseApi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThusharaSampath/stock-portfolio/config"
	"github.com/ThusharaSampath/stock-portfolio/internal/externalApi"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/cseModel"
	"github.com/ThusharaSampath/stock-portfolio/utils"
	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
)

// CseApi talks to the Colombo Stock Exchange public trade-summary endpoint.
type CseApi struct {
	client *resty.Client
}

func New(cfg *config.Config) *CseApi {
	client := resty.New().
		SetDebug(cfg.API.Debug).
		SetTimeout(cfg.API.Timeout).
		SetBaseURL(cfg.API.CseApi.Url)
	return &CseApi{client: client}
}

func (a *CseApi) GetTradeSummary(ctx context.Context) ([]cseModel.StockInfo, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	url := "/api/tradeSummary"

	slog.Debug("start CseApi.GetTradeSummary request", slog.String("rqID", rqID))

	// The endpoint answers POST only and rejects requests without browser-ish
	// headers.
	resp, err := a.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0 (Go)").
		SetHeader("Origin", "https://www.cse.lk").
		SetHeader("Referer", "https://www.cse.lk/").
		SetBody(map[string]any{"headers": map[string]any{"normalizedNames": map[string]any{}, "lazyUpdate": nil}}).
		Post(url)

	if err != nil {
		slog.Error("error while dialing CseApi", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if resp.IsError() {
		slog.Error("CseApi returned error status", slog.Int("status", resp.StatusCode()), slog.String("rqID", rqID))
		return nil, fmt.Errorf("cse api status %d", resp.StatusCode())
	}

	rawSummary := cseModel.RawTradeSummary{}
	err = json.Unmarshal(resp.Body(), &rawSummary)
	if err != nil {
		slog.Error("can't unmarshall response into cseModel.RawTradeSummary", slog.String("err", err.Error()), slog.String("rqID", rqID))
		return nil, err
	}

	if len(rawSummary.ReqTradeSummery) == 0 {
		slog.Warn("empty trade summary from CseApi", slog.String("rqID", rqID))
		return nil, externalApi.ErrNotFound
	}

	res := a.parseRawTradeSummary(rawSummary)

	slog.Debug("CseApi.GetTradeSummary request complete", slog.String("rqID", rqID), slog.Int("stocks", len(res)))

	return res, nil
}

func (a *CseApi) parseRawTradeSummary(rawSummary cseModel.RawTradeSummary) []cseModel.StockInfo {
	res := make([]cseModel.StockInfo, 0, len(rawSummary.ReqTradeSummery))

	for _, item := range rawSummary.ReqTradeSummery {
		if item.Symbol == "" {
			continue
		}

		// Outside trading hours the live price is zero, fall back to the
		// closing price.
		finalPrice := item.Price
		if finalPrice <= 0 && item.ClosingPrice > 0 {
			finalPrice = item.ClosingPrice
		}

		res = append(res, cseModel.StockInfo{
			Symbol: item.Symbol,
			Name:   item.Name,
			Price:  decimal.NewFromFloat(finalPrice),
		})
	}

	return res
}
