package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThusharaSampath/stock-portfolio/config"
	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const (
	pricesKey    = "market:prices"
	updatedAtKey = "updatedAt"
)

type RedisCache struct {
	redis *redis.Client
	cfg   *config.Config
}

func NewRedisCache(redisClient *redis.Client, cfg *config.Config) *RedisCache {
	return &RedisCache{redis: redisClient, cfg: cfg}
}

// SetPrices stores the latest price snapshot as a single JSON document: one
// key per symbol plus the updatedAt metadata key.
func (r *RedisCache) SetPrices(ctx context.Context, snapshot model.PriceSnapshot) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetPrices start", slog.String("rqID", rqID), slog.Int("symbols", len(snapshot.Prices)))

	doc := make(map[string]any, len(snapshot.Prices)+1)
	for symbol, price := range snapshot.Prices {
		doc[symbol] = price.String()
	}
	doc[updatedAtKey] = snapshot.UpdatedAt.Format(time.RFC3339)

	docJson, err := json.Marshal(doc)
	if err != nil {
		slog.Error("can't marshall prices in SetPrices", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshall prices")
	}

	_, err = r.redis.Set(ctx, pricesKey, docJson, r.cfg.Cache.PricesExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetPrices completed", slog.String("rqID", rqID))

	return nil
}

// GetPrices loads the snapshot document, skipping the updatedAt metadata key
// when rebuilding the symbol map.
func (r *RedisCache) GetPrices(ctx context.Context) (model.PriceSnapshot, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetPrices start", slog.String("rqID", rqID))

	res, err := r.redis.Get(ctx, pricesKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		}
		return model.PriceSnapshot{}, err
	}

	doc := make(map[string]any)
	err = json.Unmarshal([]byte(res), &doc)
	if err != nil {
		slog.Error("can't unmarshall prices in GetPrices", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.PriceSnapshot{}, errors.New("can't unmarshall prices")
	}

	snapshot := model.PriceSnapshot{Prices: make(map[string]decimal.Decimal, len(doc))}

	for key, val := range doc {
		if key == updatedAtKey {
			if s, ok := val.(string); ok {
				if t, err := time.Parse(time.RFC3339, s); err == nil {
					snapshot.UpdatedAt = t
				}
			}
			continue
		}

		var price decimal.Decimal
		switch v := val.(type) {
		case string:
			price, err = decimal.NewFromString(v)
		case float64:
			price = decimal.NewFromFloat(v)
		default:
			err = fmt.Errorf("unexpected price type %T for symbol %s", val, key)
		}
		if err != nil {
			slog.Error("invalid price in cached snapshot", slog.String("rqID", rqID), slog.String("symbol", key), slog.String("err", err.Error()))
			return model.PriceSnapshot{}, err
		}

		snapshot.Prices[key] = price
	}

	slog.Debug("GetPrices finished", slog.String("rqID", rqID))

	return snapshot, nil
}

func (r *RedisCache) SetSummary(ctx context.Context, userID string, summary model.PortfolioSummary) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("SetSummary start", slog.String("rqID", rqID), slog.String("userID", userID))

	summaryJson, err := json.Marshal(summary)
	if err != nil {
		slog.Error("can't marshall summary in SetSummary", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return errors.New("can't marshall summary")
	}

	_, err = r.redis.Set(ctx, summaryCacheKey(userID), summaryJson, r.cfg.Cache.SummaryExpiration).Result()
	if err != nil {
		slog.Error("failed on redis.Set", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("SetSummary completed", slog.String("rqID", rqID))

	return nil
}

func (r *RedisCache) GetSummary(ctx context.Context, userID string) (model.PortfolioSummary, error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("GetSummary start", slog.String("rqID", rqID), slog.String("userID", userID))

	res, err := r.redis.Get(ctx, summaryCacheKey(userID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Error("failed on redis.Get", slog.String("rqID", rqID), slog.String("err", err.Error()))
		}
		return model.PortfolioSummary{}, err
	}

	summary := model.PortfolioSummary{}
	err = json.Unmarshal([]byte(res), &summary)
	if err != nil {
		slog.Error("can't unmarshall summary in GetSummary", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return model.PortfolioSummary{}, errors.New("can't unmarshall summary")
	}

	slog.Debug("GetSummary finished", slog.String("rqID", rqID))

	return summary, nil
}

func (r *RedisCache) FlushSummary(ctx context.Context, userID string) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	slog.Debug("FlushSummary start", slog.String("rqID", rqID), slog.String("userID", userID))

	_, err := r.redis.Del(ctx, summaryCacheKey(userID)).Result()
	if err != nil {
		slog.Error("failed on redis.Del", slog.String("rqID", rqID), slog.String("err", err.Error()))
		return err
	}

	slog.Debug("FlushSummary completed", slog.String("rqID", rqID))

	return nil
}

func summaryCacheKey(userID string) string {
	return fmt.Sprintf("summary:%s", userID)
}
