// Package application 估值服务的应用层：命令/查询门面与内存中的定价全集
package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ValuationService 估值门面服务。
type ValuationService struct {
	Command *ValuationCommandService
	Query   *ValuationQueryService
}

// NewValuationService 构造函数。
func NewValuationService(universe *Universe) *ValuationService {
	return &ValuationService{
		Command: NewValuationCommandService(universe),
		Query:   NewValuationQueryService(universe),
	}
}

// --- Command Facade ---

func (s *ValuationService) UpdateQuote(ctx context.Context, name string, value decimal.Decimal) error {
	return s.Command.UpdateQuote(ctx, name, value)
}

func (s *ValuationService) AddFixing(ctx context.Context, cmd AddFixingCommand) error {
	return s.Command.AddFixing(ctx, cmd)
}

// --- Query Facade ---

func (s *ValuationService) CashFlowAmount(ctx context.Context, id string) (*AmountDTO, error) {
	return s.Query.CashFlowAmount(ctx, id)
}

func (s *ValuationService) IndexFixing(ctx context.Context, name string, date time.Time) (decimal.Decimal, error) {
	return s.Query.IndexFixing(ctx, name, date)
}

func (s *ValuationService) ListCashFlows(ctx context.Context) []string {
	return s.Query.ListCashFlows(ctx)
}
