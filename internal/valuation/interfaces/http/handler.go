package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/wyfcoding/valuation/internal/valuation/application"
	"github.com/wyfcoding/valuation/internal/valuation/domain"
	"github.com/wyfcoding/valuation/pkg/metrics"
)

// HTTP 处理器
// 负责处理与估值相关的 HTTP 请求
type ValuationHandler struct {
	svc     *application.ValuationService
	metrics *metrics.Metrics
}

// 创建 HTTP 处理器实例
func NewValuationHandler(svc *application.ValuationService, m *metrics.Metrics) *ValuationHandler {
	return &ValuationHandler{svc: svc, metrics: m}
}

// 注册路由
// 将处理器方法绑定到 Gin 路由引擎
func (h *ValuationHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/valuation")
	{
		api.POST("/quotes", h.UpdateQuote)
		api.POST("/fixings", h.AddFixing)
		api.GET("/cashflows", h.ListCashFlows)
		api.GET("/cashflows/:id/amount", h.CashFlowAmount)
		api.GET("/indices/:name/fixing", h.IndexFixing)
	}
}

// UpdateQuoteRequest 行情更新请求
type UpdateQuoteRequest struct {
	Name  string          `json:"name" binding:"required"`
	Value decimal.Decimal `json:"value" binding:"required"`
}

// AddFixingRequest 历史履约值录入请求
type AddFixingRequest struct {
	Index string          `json:"index" binding:"required"`
	Date  string          `json:"date" binding:"required"`
	Value decimal.Decimal `json:"value" binding:"required"`
	Force bool            `json:"force"`
}

// UpdateQuote 更新行情值
func (h *ValuationHandler) UpdateQuote(c *gin.Context) {
	var req UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.svc.UpdateQuote(c.Request.Context(), req.Name, req.Value); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to update quote", "name", req.Name, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.QuoteUpdatesTotal.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"name": req.Name, "value": req.Value})
}

// AddFixing 录入历史履约值
func (h *ValuationHandler) AddFixing(c *gin.Context) {
	var req AddFixingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse(time.DateOnly, req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	cmd := application.AddFixingCommand{
		Index: req.Index,
		Date:  date,
		Value: req.Value,
		Force: req.Force,
	}
	if err := h.svc.AddFixing(c.Request.Context(), cmd); err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to add fixing", "index", req.Index, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.FixingsAddedTotal.Inc()
	}
	c.JSON(http.StatusOK, gin.H{"index": req.Index, "date": req.Date})
}

// ListCashFlows 已登记现金流列表
func (h *ValuationHandler) ListCashFlows(c *gin.Context) {
	ids := h.svc.ListCashFlows(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"cash_flows": ids})
}

// CashFlowAmount 现金流金额查询
func (h *ValuationHandler) CashFlowAmount(c *gin.Context) {
	id := c.Param("id")
	start := time.Now()
	dto, err := h.svc.CashFlowAmount(c.Request.Context(), id)
	if h.metrics != nil {
		h.metrics.ValuationsTotal.Inc()
		h.metrics.ValuationDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if h.metrics != nil {
			h.metrics.ValuationErrorsTotal.Inc()
		}
		slog.ErrorContext(c.Request.Context(), "failed to value cash flow", "id", id, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto)
}

// IndexFixing 指数履约值查询，日期来自 query 参数 date=YYYY-MM-DD
func (h *ValuationHandler) IndexFixing(c *gin.Context) {
	name := c.Param("name")
	date, err := time.Parse(time.DateOnly, c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, want YYYY-MM-DD"})
		return
	}

	v, err := h.svc.IndexFixing(c.Request.Context(), name, date)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to query fixing", "index", name, "error", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"index": name, "date": c.Query("date"), "value": v})
}

// statusFor 领域错误到 HTTP 状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrRange):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDataIntegrity):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
