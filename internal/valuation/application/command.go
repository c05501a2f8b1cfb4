package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/valuation/internal/valuation/domain"
)

// ValuationCommandService 处理市场数据相关的命令操作
// 每个命令在写锁内完成变更与随之而来的同步通知级联
type ValuationCommandService struct {
	universe *Universe
}

// NewValuationCommandService 创建新的 ValuationCommandService 实例
func NewValuationCommandService(universe *Universe) *ValuationCommandService {
	return &ValuationCommandService{universe: universe}
}

// AddFixingCommand 历史履约值录入命令
type AddFixingCommand struct {
	Index string
	Date  time.Time
	Value decimal.Decimal
	// Force 显式允许覆盖已有的不同值
	Force bool
}

// UpdateQuote 更新行情值并触发失效级联
// 未注册的行情名返回配置错误；配置错误不重试
func (c *ValuationCommandService) UpdateQuote(ctx context.Context, name string, value decimal.Decimal) error {
	c.universe.mu.Lock()
	defer c.universe.mu.Unlock()

	q, err := c.universe.quote(name)
	if err != nil {
		return err
	}
	q.SetValue(value.InexactFloat64())
	slog.InfoContext(ctx, "quote updated", "name", name, "value", value.String())
	return nil
}

// AddFixing 录入历史履约值，是写入历史数据的唯一通道
func (c *ValuationCommandService) AddFixing(ctx context.Context, cmd AddFixingCommand) error {
	c.universe.mu.Lock()
	defer c.universe.mu.Unlock()

	value := cmd.Value.InexactFloat64()
	if idx, ok := c.universe.equity[cmd.Index]; ok {
		if err := idx.AddFixing(cmd.Date, value, cmd.Force); err != nil {
			return err
		}
	} else if idx, ok := c.universe.inflation[cmd.Index]; ok {
		if err := idx.AddFixing(cmd.Date, value, cmd.Force); err != nil {
			return err
		}
	} else {
		return fmt.Errorf("%w: unknown index %q", domain.ErrConfiguration, cmd.Index)
	}

	slog.InfoContext(ctx, "fixing added",
		"index", cmd.Index,
		"date", cmd.Date.Format(time.DateOnly),
		"value", cmd.Value.String(),
		"force", cmd.Force)
	return nil
}
