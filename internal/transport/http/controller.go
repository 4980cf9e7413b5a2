package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/ThusharaSampath/stock-portfolio/config"
	"github.com/ThusharaSampath/stock-portfolio/internal/converter/apiConverter"
	"github.com/ThusharaSampath/stock-portfolio/internal/model"
	"github.com/ThusharaSampath/stock-portfolio/internal/model/apiModel"
	"github.com/ThusharaSampath/stock-portfolio/internal/service"
	"github.com/ThusharaSampath/stock-portfolio/utils"
	"github.com/gin-gonic/gin"
)

type Service interface {
	GetSummary(ctx context.Context, userID string) (model.PortfolioSummary, error)
	AddTransaction(ctx context.Context, tx model.Transaction) (model.Transaction, error)
	ListTransactions(ctx context.Context, userID string) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID string) error
	GetSettings(ctx context.Context, userID string) (model.Settings, error)
	UpdateSettings(ctx context.Context, settings model.Settings) error
	RefreshPrices(ctx context.Context) error
	ListSymbols(ctx context.Context) ([]string, error)
	TakeSnapshot(ctx context.Context, userID string) (model.PortfolioSnapshot, error)
	GetHistory(ctx context.Context, userID string) ([]model.PortfolioSnapshot, error)
	ExportReport(ctx context.Context, userID string) (downloadLink string, err error)
}

type Controller struct {
	cfg *config.Config
	srv Service
}

func NewController(cfg *config.Config, srv Service) *Controller {
	return &Controller{cfg: cfg, srv: srv}
}

func (ctl *Controller) GetSummary(c *gin.Context) {
	uid, ok := requireUid(c)
	if !ok {
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	summary, err := ctl.srv.GetSummary(ctx, uid)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiConverter.ConvertSummary(summary))
}

func (ctl *Controller) ListTransactions(c *gin.Context) {
	uid, ok := requireUid(c)
	if !ok {
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	txs, err := ctl.srv.ListTransactions(ctx, uid)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiConverter.ConvertTransactions(txs))
}

func (ctl *Controller) AddTransaction(c *gin.Context) {
	var req apiModel.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tx, err := apiConverter.ToTransaction(req)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	created, err := ctl.srv.AddTransaction(ctx, tx)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, apiConverter.ConvertTransaction(created))
}

func (ctl *Controller) DeleteTransaction(c *gin.Context) {
	uid, ok := requireUid(c)
	if !ok {
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	err := ctl.srv.DeleteTransaction(ctx, uid, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "transaction deleted"})
}

func (ctl *Controller) GetSettings(c *gin.Context) {
	uid, ok := requireUid(c)
	if !ok {
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	settings, err := ctl.srv.GetSettings(ctx, uid)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiConverter.ConvertSettings(settings))
}

func (ctl *Controller) UpdateSettings(c *gin.Context) {
	uid, ok := requireUid(c)
	if !ok {
		return
	}

	var req apiModel.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	err := ctl.srv.UpdateSettings(ctx, apiConverter.ToSettings(uid, req))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "settings updated"})
}

func (ctl *Controller) ListSymbols(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	symbols, err := ctl.srv.ListSymbols(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, symbols)
}

func (ctl *Controller) RefreshPrices(c *gin.Context) {
	ctx := utils.CreateCtxWithRqID(c)

	err := ctl.srv.RefreshPrices(ctx)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "market data updated"})
}

func (ctl *Controller) TakeSnapshot(c *gin.Context) {
	uid, ok := requireUid(c)
	if !ok {
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	snapshot, err := ctl.srv.TakeSnapshot(ctx, uid)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "snapshot saved", "data": apiConverter.ConvertSnapshot(snapshot)})
}

func (ctl *Controller) GetHistory(c *gin.Context) {
	uid, ok := requireUid(c)
	if !ok {
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	snapshots, err := ctl.srv.GetHistory(ctx, uid)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiConverter.ConvertSnapshots(snapshots))
}

func (ctl *Controller) ExportReport(c *gin.Context) {
	uid, ok := requireUid(c)
	if !ok {
		return
	}

	ctx := utils.CreateCtxWithRqID(c)

	link, err := ctl.srv.ExportReport(ctx, uid)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, apiModel.ReportLink{DownloadLink: link})
}

func (ctl *Controller) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requireUid(c *gin.Context) (string, bool) {
	uid := c.Query("uid")
	if uid == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "missing uid parameter"})
		return "", false
	}
	return uid, true
}

func abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidTransaction):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNoPrices):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
