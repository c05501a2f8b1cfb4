package domain

import (
	"fmt"
	"time"
)

// EquityCashFlowPricer 股票现金流的可插拔定价策略
// 定价器自身可观察：其市场数据依赖的失效沿定价器转发给挂接的现金流。
// 一个定价器可被多笔同类现金流共享；Initialize 把定价器绑定到某笔现金流
// 的参数上，仅对紧随其后的一次 Price 有效，每次定价前必须重新 Initialize。
type EquityCashFlowPricer interface {
	Observable
	Initialize(cf *EquityCashFlow) error
	Price() (float64, error)
}

// EquityQuantoCashFlowPricer 股票 quanto 现金流定价器
// 用相关的股票/外汇波动率曲线调整股票指数增长因子，刻画货币对冲效应
type EquityQuantoCashFlowPricer struct {
	Subject
	quantoCurrency *Handle[YieldTermStructure]
	equityVol      *Handle[BlackVolTermStructure]
	fxVol          *Handle[BlackVolTermStructure]
	correlation    *Handle[Quote]

	// Initialize 绑定的单次定价参数
	index       *EquityIndex
	baseDate    time.Time
	fixingDate  time.Time
	growthOnly  bool
	initialized bool
}

// NewEquityQuantoCashFlowPricer 创建 quanto 定价器并注册对四项市场数据的观察
// 各 Handle 可以先为空，但在 Initialize 时必须全部非空
func NewEquityQuantoCashFlowPricer(
	quantoCurrency *Handle[YieldTermStructure],
	equityVol, fxVol *Handle[BlackVolTermStructure],
	correlation *Handle[Quote],
) *EquityQuantoCashFlowPricer {
	p := &EquityQuantoCashFlowPricer{
		quantoCurrency: quantoCurrency,
		equityVol:      equityVol,
		fxVol:          fxVol,
		correlation:    correlation,
	}
	quantoCurrency.RegisterObserver(p)
	equityVol.RegisterObserver(p)
	fxVol.RegisterObserver(p)
	correlation.RegisterObserver(p)
	return p
}

// Update 转发市场数据失效通知给挂接的现金流
func (p *EquityQuantoCashFlowPricer) Update() {
	p.NotifyObservers()
}

// Initialize 把定价器绑定到一笔现金流并校验全部前置条件
// 校验失败在这里立即暴露，不会推迟到 Price
func (p *EquityQuantoCashFlowPricer) Initialize(cf *EquityCashFlow) error {
	p.initialized = false

	index, ok := cf.Index().(*EquityIndex)
	if !ok {
		return fmt.Errorf("%w: equity index required, got %s", ErrTypeMismatch, cf.Index().Name())
	}
	p.index = index
	p.baseDate = cf.BaseDate()
	p.fixingDate = cf.FixingDate()
	p.growthOnly = cf.GrowthOnly()
	if p.fixingDate.Before(p.baseDate) {
		return fmt.Errorf("%w: fixing date %s cannot fall before base date %s",
			ErrRange, p.fixingDate.Format(time.DateOnly), p.baseDate.Format(time.DateOnly))
	}

	if p.quantoCurrency.Empty() {
		return fmt.Errorf("%w: quanto currency term structure handle is empty", ErrConfiguration)
	}
	if p.equityVol.Empty() {
		return fmt.Errorf("%w: equity volatility term structure handle is empty", ErrConfiguration)
	}
	if p.fxVol.Empty() {
		return fmt.Errorf("%w: FX volatility term structure handle is empty", ErrConfiguration)
	}
	if p.correlation.Empty() {
		return fmt.Errorf("%w: correlation handle is empty", ErrConfiguration)
	}

	// quanto 调整是单一参考日的无套利构造，参考日不一致会静默产生错误漂移
	quantoCurrency, _ := p.quantoCurrency.Link()
	equityVol, _ := p.equityVol.Link()
	fxVol, _ := p.fxVol.Link()
	if !quantoCurrency.ReferenceDate().Equal(equityVol.ReferenceDate()) ||
		!equityVol.ReferenceDate().Equal(fxVol.ReferenceDate()) {
		return fmt.Errorf("%w: quanto currency term structure, equity and FX volatility need to have the same reference date",
			ErrConfiguration)
	}

	p.initialized = true
	return nil
}

// Price quanto 调整后的指数比值
// 构造量化调整曲线，把指数克隆到 (quanto 货币曲线, 调整曲线) 上再取两端履约值
func (p *EquityQuantoCashFlowPricer) Price() (float64, error) {
	if !p.initialized {
		return 0, fmt.Errorf("%w: pricer has not been initialized", ErrConfiguration)
	}

	strike, err := p.index.Fixing(p.fixingDate)
	if err != nil {
		return 0, err
	}

	quantoCurrency, err := p.quantoCurrency.Link()
	if err != nil {
		return 0, fmt.Errorf("quanto currency term structure: %w", err)
	}
	equityVol, err := p.equityVol.Link()
	if err != nil {
		return 0, fmt.Errorf("equity volatility: %w", err)
	}
	fxVol, err := p.fxVol.Link()
	if err != nil {
		return 0, fmt.Errorf("FX volatility: %w", err)
	}
	correlationQuote, err := p.correlation.Link()
	if err != nil {
		return 0, fmt.Errorf("correlation: %w", err)
	}
	correlation, err := correlationQuote.Value()
	if err != nil {
		return 0, err
	}
	equityRate, err := p.index.InterestRateCurve().Link()
	if err != nil {
		return 0, fmt.Errorf("index %s interest rate curve: %w", p.index.Name(), err)
	}

	// 股息收益率绝不留空：缺失时用同计息基准的零收益平坦曲线替代
	dividend := p.configureDividendCurve(quantoCurrency)

	quanto := NewQuantoTermStructure(
		dividend, quantoCurrency, equityRate,
		equityVol, strike, fxVol, 1.0, correlation)

	currencyHandle := NewHandle[YieldTermStructure](quantoCurrency)
	quantoIndex := p.index.Clone(
		currencyHandle,
		NewHandle[YieldTermStructure](quanto),
		p.index.Spot())
	// 克隆图只服务本次定价，用完解除对长生命周期市场数据的观察
	defer func() {
		p.index.Spot().UnregisterObserver(quantoIndex)
		quantoCurrency.UnregisterObserver(currencyHandle)
	}()

	base, err := quantoIndex.Fixing(p.baseDate)
	if err != nil {
		return 0, err
	}
	fixing, err := quantoIndex.Fixing(p.fixingDate)
	if err != nil {
		return 0, err
	}
	if base == 0 {
		return 0, fmt.Errorf("%w: zero base fixing for index %s", ErrConfiguration, p.index.Name())
	}

	ratio := fixing / base
	if p.growthOnly {
		ratio -= 1.0
	}
	return ratio, nil
}

func (p *EquityQuantoCashFlowPricer) configureDividendCurve(reference YieldTermStructure) YieldTermStructure {
	if dividend, err := p.index.DividendCurve().Link(); err == nil {
		return dividend
	}
	return NewFlatZeroCurve(reference.ReferenceDate(), reference.DayCounter())
}
