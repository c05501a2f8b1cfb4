package domain

import (
	"fmt"
	"time"
)

// CashFlow 单笔现金流
type CashFlow interface {
	// Amount 现金流金额；市场数据或配置缺失时返回错误而非部分结果
	Amount() (float64, error)
	// Date 支付日
	Date() time.Time
}

// Leg 一组现金流
type Leg []CashFlow

// IndexedCashFlow 金额为指数在两个日期之间的比值（或增长）的现金流
// 注册为指数的观察者；市场数据变化只清除缓存，重算推迟到下一次 Amount
type IndexedCashFlow struct {
	Subject
	notional    float64
	index       Index
	baseDate    time.Time
	fixingDate  time.Time
	paymentDate time.Time
	growthOnly  bool

	calculated   bool
	cachedAmount float64
}

// NewIndexedCashFlow 创建指数挂钩现金流
// 固定日不得早于基准日，违反时立即返回区间错误而不是推迟到估值时
func NewIndexedCashFlow(notional float64, index Index, baseDate, fixingDate, paymentDate time.Time, growthOnly bool) (*IndexedCashFlow, error) {
	if index == nil {
		return nil, fmt.Errorf("%w: indexed cash flow requires an index", ErrConfiguration)
	}
	baseDate = normalizeDate(baseDate)
	fixingDate = normalizeDate(fixingDate)
	if fixingDate.Before(baseDate) {
		return nil, fmt.Errorf("%w: fixing date %s cannot fall before base date %s",
			ErrRange, fixingDate.Format(time.DateOnly), baseDate.Format(time.DateOnly))
	}
	cf := &IndexedCashFlow{
		notional:    notional,
		index:       index,
		baseDate:    baseDate,
		fixingDate:  fixingDate,
		paymentDate: normalizeDate(paymentDate),
		growthOnly:  growthOnly,
	}
	index.RegisterObserver(cf)
	return cf, nil
}

func (cf *IndexedCashFlow) Notional() float64     { return cf.notional }
func (cf *IndexedCashFlow) Index() Index          { return cf.index }
func (cf *IndexedCashFlow) BaseDate() time.Time   { return cf.baseDate }
func (cf *IndexedCashFlow) FixingDate() time.Time { return cf.fixingDate }
func (cf *IndexedCashFlow) GrowthOnly() bool      { return cf.growthOnly }
func (cf *IndexedCashFlow) Date() time.Time       { return cf.paymentDate }

// Update 清除缓存并向下游转发失效
func (cf *IndexedCashFlow) Update() {
	cf.calculated = false
	cf.NotifyObservers()
}

// Amount 金额：growthOnly 时为 notional·(I1/I0 - 1)，否则 notional·I1/I0
// 结果缓存到下一次失效通知为止，绝不返回过期值
func (cf *IndexedCashFlow) Amount() (float64, error) {
	if cf.calculated {
		return cf.cachedAmount, nil
	}
	base, err := cf.index.Fixing(cf.baseDate)
	if err != nil {
		return 0, err
	}
	fixing, err := cf.index.Fixing(cf.fixingDate)
	if err != nil {
		return 0, err
	}
	ratio, err := cf.payoffRatio(base, fixing)
	if err != nil {
		return 0, err
	}
	cf.storeAmount(cf.notional * ratio)
	return cf.cachedAmount, nil
}

// payoffRatio 共享的比值计算，指数与通胀两条取值路径复用
func (cf *IndexedCashFlow) payoffRatio(base, fixing float64) (float64, error) {
	if base == 0 {
		return 0, fmt.Errorf("%w: zero base fixing for index %s", ErrConfiguration, cf.index.Name())
	}
	ratio := fixing / base
	if cf.growthOnly {
		ratio -= 1.0
	}
	return ratio, nil
}

func (cf *IndexedCashFlow) storeAmount(v float64) {
	cf.cachedAmount = v
	cf.calculated = true
}

// EquityCashFlow 股票指数挂钩现金流，可插拔定价策略
// 未设置定价器时退化为基类的朴素指数比值
type EquityCashFlow struct {
	*IndexedCashFlow
	pricer EquityCashFlowPricer
}

// NewEquityCashFlow 创建股票现金流；指数类型在定价器绑定时才检查
func NewEquityCashFlow(notional float64, index Index, baseDate, fixingDate, paymentDate time.Time, growthOnly bool) (*EquityCashFlow, error) {
	base, err := NewIndexedCashFlow(notional, index, baseDate, fixingDate, paymentDate, growthOnly)
	if err != nil {
		return nil, err
	}
	return &EquityCashFlow{IndexedCashFlow: base}, nil
}

// Pricer 当前定价器，可能为 nil
func (cf *EquityCashFlow) Pricer() EquityCashFlowPricer { return cf.pricer }

// SetPricer 换绑定价器
// 解除旧定价器的观察、注册新定价器并立即失效：换定价器是一等变更，
// 对下游的效果与市场数据变化完全相同
func (cf *EquityCashFlow) SetPricer(pricer EquityCashFlowPricer) {
	if cf.pricer != nil {
		cf.pricer.UnregisterObserver(cf.IndexedCashFlow)
	}
	cf.pricer = pricer
	if cf.pricer != nil {
		cf.pricer.RegisterObserver(cf.IndexedCashFlow)
	}
	cf.IndexedCashFlow.Update()
}

// Amount 设有定价器时委托给定价器，否则退化为朴素指数比值
func (cf *EquityCashFlow) Amount() (float64, error) {
	if cf.pricer == nil {
		return cf.IndexedCashFlow.Amount()
	}
	if cf.calculated {
		return cf.cachedAmount, nil
	}
	if err := cf.pricer.Initialize(cf); err != nil {
		return 0, err
	}
	price, err := cf.pricer.Price()
	if err != nil {
		return 0, err
	}
	cf.storeAmount(cf.notional * price)
	return cf.cachedAmount, nil
}

// SetCouponPricer 为一组现金流中的全部股票现金流设置定价器
func SetCouponPricer(leg Leg, pricer EquityCashFlowPricer) {
	for _, flow := range leg {
		if equity, ok := flow.(*EquityCashFlow); ok {
			equity.SetPricer(pricer)
		}
	}
}

// ZeroInflationCashFlow 零通胀现金流
// 基准与期末履约值都经由带观察滞后的插值解析
type ZeroInflationCashFlow struct {
	*IndexedCashFlow
	inflationIndex *ZeroInflationIndex
	interpolation  InterpolationType
	startDate      time.Time
	endDate        time.Time
	observationLag Period
}

// NewZeroInflationCashFlow 创建零通胀现金流
// 基类的基准/固定日取 start/end 回退观察滞后后的日期
func NewZeroInflationCashFlow(notional float64, index *ZeroInflationIndex, interpolation InterpolationType,
	startDate, endDate time.Time, observationLag Period, paymentDate time.Time, growthOnly bool) (*ZeroInflationCashFlow, error) {
	if index == nil {
		return nil, fmt.Errorf("%w: zero inflation cash flow requires an index", ErrConfiguration)
	}
	if observationLag.Months < 0 {
		return nil, fmt.Errorf("%w: negative observation lag %dM", ErrRange, observationLag.Months)
	}
	startDate = normalizeDate(startDate)
	endDate = normalizeDate(endDate)
	base, err := NewIndexedCashFlow(notional, index,
		observationLag.SubtractFrom(startDate), observationLag.SubtractFrom(endDate),
		paymentDate, growthOnly)
	if err != nil {
		return nil, err
	}
	return &ZeroInflationCashFlow{
		IndexedCashFlow: base,
		inflationIndex:  index,
		interpolation:   interpolation,
		startDate:       startDate,
		endDate:         endDate,
		observationLag:  observationLag,
	}, nil
}

// BaseFixing 期初的滞后插值履约值
func (cf *ZeroInflationCashFlow) BaseFixing() (float64, error) {
	return LaggedFixing(cf.inflationIndex, cf.startDate, cf.observationLag, cf.interpolation)
}

// IndexFixing 期末的滞后插值履约值
func (cf *ZeroInflationCashFlow) IndexFixing() (float64, error) {
	return LaggedFixing(cf.inflationIndex, cf.endDate, cf.observationLag, cf.interpolation)
}

// Amount 金额，两端履约值都经由滞后插值路径
func (cf *ZeroInflationCashFlow) Amount() (float64, error) {
	if cf.calculated {
		return cf.cachedAmount, nil
	}
	base, err := cf.BaseFixing()
	if err != nil {
		return 0, err
	}
	fixing, err := cf.IndexFixing()
	if err != nil {
		return 0, err
	}
	ratio, err := cf.payoffRatio(base, fixing)
	if err != nil {
		return 0, err
	}
	cf.storeAmount(cf.notional * ratio)
	return cf.cachedAmount, nil
}
