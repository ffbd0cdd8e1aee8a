package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"PriceGate/internal/domain/models"
	domrepo "PriceGate/internal/domain/repository"
	"PriceGate/internal/service/coingecko"
	"PriceGate/internal/usecase"
	pkgcache "PriceGate/pkg/cache"
	xhttp "PriceGate/pkg/http"
	xlogger "PriceGate/pkg/logger"
)

// PricesHandler exposes the price-history gateway over HTTP.
type PricesHandler struct {
	logger    *xlogger.Logger
	history   *usecase.HistoryUseCase
	marketCap *coingecko.Client
	store     domrepo.CandleStore
	cache     pkgcache.Service
}

func NewPricesHandler(logger *xlogger.Logger, history *usecase.HistoryUseCase, marketCap *coingecko.Client, store domrepo.CandleStore, cache pkgcache.Service) *PricesHandler {
	return &PricesHandler{logger: logger, history: history, marketCap: marketCap, store: store, cache: cache}
}

func (h *PricesHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/prices")
	g.GET("/history", h.History)
	g.GET("/market-cap", h.MarketCap)
	e.GET("/health", h.Health)
}

func (h *PricesHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	symbol := strings.ToUpper(req.Symbol)
	tf := domrepo.Timeframe(req.Interval)

	res, err := h.history.GetHistory(c.Request().Context(), symbol, tf, req.Limit)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnsupportedTimeframe):
			return xhttp.AppErrorResponse(c, xhttp.BadRequestErrorf("unsupported interval: %s", req.Interval))
		case errors.Is(err, models.ErrUpstreamUnavailable):
			h.logger.Error("history resolution exhausted", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, xhttp.BadGatewayError("price history unavailable").WithError(err))
		default:
			h.logger.Error("history usecase error", xlogger.Error(err))
			return xhttp.AppErrorResponse(c, err)
		}
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PricesHandler) MarketCap(c echo.Context) error {
	req := &models.MarketCapRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.marketCap.GetMarketCap(c.Request().Context(), strings.ToUpper(req.Symbol))
	if err != nil {
		h.logger.Error("market cap error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *PricesHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := map[string]string{"status": "ok"}
	if err := h.store.Health(ctx); err != nil {
		status["status"] = "degraded"
		status["store"] = err.Error()
	}
	if err := h.cache.Ping(ctx); err != nil {
		status["status"] = "degraded"
		status["redis"] = err.Error()
	}
	return xhttp.SuccessResponse(c, status)
}
