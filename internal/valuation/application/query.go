package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/valuation/internal/valuation/domain"
)

// ValuationQueryService 处理估值相关的查询操作
type ValuationQueryService struct {
	universe *Universe
}

// NewValuationQueryService 创建新的 ValuationQueryService 实例
func NewValuationQueryService(universe *Universe) *ValuationQueryService {
	return &ValuationQueryService{universe: universe}
}

// AmountDTO 现金流金额
type AmountDTO struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
}

// CashFlowAmount 现金流金额
// Amount 惰性重算并写入缓存，因此持有写锁；错误原样上抛，没有部分结果
func (q *ValuationQueryService) CashFlowAmount(_ context.Context, id string) (*AmountDTO, error) {
	q.universe.mu.Lock()
	defer q.universe.mu.Unlock()

	cf, err := q.universe.cashFlow(id)
	if err != nil {
		return nil, err
	}
	amount, err := cf.Amount()
	if err != nil {
		return nil, fmt.Errorf("cash flow %q: %w", id, err)
	}
	return &AmountDTO{
		ID:          id,
		Amount:      decimal.NewFromFloat(amount),
		PaymentDate: cf.Date(),
	}, nil
}

// IndexFixing 指数某日的履约值，纯只读查询
func (q *ValuationQueryService) IndexFixing(_ context.Context, name string, date time.Time) (decimal.Decimal, error) {
	q.universe.mu.RLock()
	defer q.universe.mu.RUnlock()

	if idx, ok := q.universe.equity[name]; ok {
		v, err := idx.Fixing(date)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromFloat(v), nil
	}
	if idx, ok := q.universe.inflation[name]; ok {
		v, err := idx.Fixing(date)
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromFloat(v), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unknown index %q", domain.ErrConfiguration, name)
}

// ListCashFlows 已登记现金流的标识列表
func (q *ValuationQueryService) ListCashFlows(_ context.Context) []string {
	q.universe.mu.RLock()
	defer q.universe.mu.RUnlock()

	ids := make([]string, 0, len(q.universe.cashFlows))
	for id := range q.universe.cashFlows {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
