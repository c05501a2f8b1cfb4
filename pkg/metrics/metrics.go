// Package metrics 提供 Prometheus helper，包含常用 counter/gauge/histogram 模板
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyfcoding/valuation/pkg/logger"
)

// Metrics 指标集合
type Metrics struct {
	// HTTP 请求计数
	HTTPRequestsTotal prometheus.Counter
	// HTTP 请求耗时
	HTTPRequestDuration prometheus.Histogram

	// 行情更新计数
	QuoteUpdatesTotal prometheus.Counter
	// 履约值录入计数
	FixingsAddedTotal prometheus.Counter
	// 估值计算计数
	ValuationsTotal prometheus.Counter
	// 估值计算耗时
	ValuationDuration prometheus.Histogram
	// 估值失败计数
	ValuationErrorsTotal prometheus.Counter

	// 行情消息消费计数
	MarketMessagesTotal prometheus.Counter
	// 行情消息死信计数
	MarketMessagesDeadLettered prometheus.Counter
}

// New 创建指标实例
func New(serviceName string) *Metrics {
	return &Metrics{
		HTTPRequestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}),
		HTTPRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		QuoteUpdatesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "quote_updates_total",
			Help:      "Total market quote updates applied",
		}),
		FixingsAddedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "fixings_added_total",
			Help:      "Total historical fixings recorded",
		}),
		ValuationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "valuations_total",
			Help:      "Total cash flow valuations served",
		}),
		ValuationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "valuation_duration_seconds",
			Help:      "Cash flow valuation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		ValuationErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "valuation_errors_total",
			Help:      "Total failed cash flow valuations",
		}),

		MarketMessagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "market_messages_total",
			Help:      "Total market price messages consumed",
		}),
		MarketMessagesDeadLettered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "valuation",
			Subsystem: serviceName,
			Name:      "market_messages_dead_lettered_total",
			Help:      "Total market price messages sent to the dead letter topic",
		}),
	}
}

// Register 注册所有指标
func (m *Metrics) Register() error {
	metrics := []prometheus.Collector{
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.QuoteUpdatesTotal,
		m.FixingsAddedTotal,
		m.ValuationsTotal,
		m.ValuationDuration,
		m.ValuationErrorsTotal,
		m.MarketMessagesTotal,
		m.MarketMessagesDeadLettered,
	}

	for _, metric := range metrics {
		if err := prometheus.DefaultRegisterer.Register(metric); err != nil {
			logger.Error(context.Background(), "Failed to register metric", "error", err)
			return err
		}
	}

	logger.Info(context.Background(), "Metrics registered successfully")
	return nil
}

// StartHTTPServer 启动 Prometheus HTTP 服务器
func StartHTTPServer(port int, path string) error {
	if path == "" {
		path = "/metrics"
	}

	http.Handle(path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", port)
	logger.Info(context.Background(), "Starting Prometheus HTTP server", "addr", addr, "path", path)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			logger.Error(context.Background(), "Failed to start Prometheus HTTP server", "error", err)
		}
	}()

	return nil
}
