// Package consumer 消费行情事件并驱动估值全集的失效级联
package consumer

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/valuation/internal/valuation/application"
	"github.com/wyfcoding/valuation/internal/valuation/domain"
	"github.com/wyfcoding/valuation/pkg/metrics"
	"github.com/wyfcoding/valuation/pkg/mq"
)

// MarketPriceHandler 行情事件处理器
// 将 market.price 主题上的价格事件转成行情更新命令
type MarketPriceHandler struct {
	service    *application.ValuationService
	deadLetter *mq.DeadLetterQueue
	metrics    *metrics.Metrics
}

// NewMarketPriceHandler 创建行情事件处理器
func NewMarketPriceHandler(service *application.ValuationService, dlq *mq.DeadLetterQueue, m *metrics.Metrics) *MarketPriceHandler {
	return &MarketPriceHandler{service: service, deadLetter: dlq, metrics: m}
}

// HandleMarketPrice 处理单条行情消息
// 无法解析或指向未登记行情的消息进死信队列，不阻塞后续消费
func (h *MarketPriceHandler) HandleMarketPrice(ctx context.Context, msg *mq.Message) error {
	if h.metrics != nil {
		h.metrics.MarketMessagesTotal.Inc()
	}

	var event struct {
		Symbol    string `json:"symbol"`
		Price     string `json:"price"`
		Timestamp int64  `json:"timestamp"`
	}
	if err := msg.UnmarshalPayload(&event); err != nil {
		return h.toDeadLetter(ctx, msg, "malformed payload", err)
	}

	price, err := decimal.NewFromString(event.Price)
	if err != nil {
		return h.toDeadLetter(ctx, msg, "invalid price", err)
	}

	slog.InfoContext(ctx, "handling market price event", "symbol", event.Symbol, "price", price.String())

	if err := h.service.UpdateQuote(ctx, event.Symbol, price); err != nil {
		if errors.Is(err, domain.ErrConfiguration) {
			return h.toDeadLetter(ctx, msg, "unknown symbol", err)
		}
		return err
	}
	if h.metrics != nil {
		h.metrics.QuoteUpdatesTotal.Inc()
	}
	return nil
}

func (h *MarketPriceHandler) toDeadLetter(ctx context.Context, msg *mq.Message, reason string, cause error) error {
	slog.WarnContext(ctx, "market price message dead lettered", "reason", reason, "error", cause)
	if h.metrics != nil {
		h.metrics.MarketMessagesDeadLettered.Inc()
	}
	if h.deadLetter == nil {
		return nil
	}
	return h.deadLetter.Send(ctx, msg, reason, cause)
}

// Run 持续消费行情主题直到 context 取消
func (h *MarketPriceHandler) Run(ctx context.Context, consumer *mq.KafkaConsumer) error {
	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if err := h.HandleMarketPrice(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "failed to handle market price event", "error", err)
		}
	}
}
