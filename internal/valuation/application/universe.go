package application

import (
	"fmt"
	"sync"

	"github.com/wyfcoding/valuation/internal/valuation/domain"
)

// Universe 进程内的定价全集：行情、指数与待估值现金流的注册表
//
// 领域核心本身是单线程协作模型，这里按共享对象图的并发纪律加锁：
// 市场数据变更（SetValue/LinkTo/AddFixing）连同其通知级联持有写锁；
// Amount 查询会写入惰性缓存，同样走写锁；纯只读的 Fixing 查询走读锁。
type Universe struct {
	mu sync.RWMutex

	quotes    map[string]*domain.SimpleQuote
	equity    map[string]*domain.EquityIndex
	inflation map[string]*domain.ZeroInflationIndex
	cashFlows map[string]domain.CashFlow
}

// NewUniverse 创建空注册表
func NewUniverse() *Universe {
	return &Universe{
		quotes:    make(map[string]*domain.SimpleQuote),
		equity:    make(map[string]*domain.EquityIndex),
		inflation: make(map[string]*domain.ZeroInflationIndex),
		cashFlows: make(map[string]domain.CashFlow),
	}
}

// RegisterQuote 登记行情，装配期调用
func (u *Universe) RegisterQuote(q *domain.SimpleQuote) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.quotes[q.Name()] = q
}

// RegisterEquityIndex 登记股票指数
func (u *Universe) RegisterEquityIndex(idx *domain.EquityIndex) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.equity[idx.Name()] = idx
}

// RegisterInflationIndex 登记通胀指数
func (u *Universe) RegisterInflationIndex(idx *domain.ZeroInflationIndex) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.inflation[idx.Name()] = idx
}

// RegisterCashFlow 登记现金流
func (u *Universe) RegisterCashFlow(id string, cf domain.CashFlow) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.cashFlows[id] = cf
}

func (u *Universe) quote(name string) (*domain.SimpleQuote, error) {
	q, ok := u.quotes[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown quote %q", domain.ErrConfiguration, name)
	}
	return q, nil
}

func (u *Universe) cashFlow(id string) (domain.CashFlow, error) {
	cf, ok := u.cashFlows[id]
	if !ok {
		return nil, fmt.Errorf("%w: unknown cash flow %q", domain.ErrConfiguration, id)
	}
	return cf, nil
}
