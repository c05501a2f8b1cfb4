package domain

import (
	"fmt"
	"math"
	"time"
)

// YieldTermStructure 贴现曲线
// 曲线自身可观察，底层行情变化沿曲线向消费方转发失效通知
type YieldTermStructure interface {
	Observable
	ReferenceDate() time.Time
	DayCounter() DayCounter
	// Discount 参考日到 d 的贴现因子
	Discount(d time.Time) (float64, error)
	// ZeroRate 参考日到 d 的连续复利零息利率
	ZeroRate(d time.Time) (float64, error)
}

// FlatForward 平坦利率曲线，利率经由 Handle 取自行情，行情跳动会使曲线下游失效
type FlatForward struct {
	Subject
	referenceDate time.Time
	rate          *Handle[Quote]
	dayCounter    DayCounter
}

// NewFlatForward 创建平坦曲线；参考日落在非工作日时顺延到下一工作日
func NewFlatForward(referenceDate time.Time, calendar Calendar, rate *Handle[Quote], dc DayCounter) *FlatForward {
	ref := normalizeDate(referenceDate)
	for !calendar.IsBusinessDay(ref) {
		ref = ref.AddDate(0, 0, 1)
	}
	ts := &FlatForward{referenceDate: ref, rate: rate, dayCounter: dc}
	rate.RegisterObserver(ts)
	return ts
}

// NewFlatZeroCurve 零利率平坦曲线，用作缺失股息曲线的替代
func NewFlatZeroCurve(referenceDate time.Time, dc DayCounter) *FlatForward {
	rate := NewHandle[Quote](NewSimpleQuote("flat zero rate", 0.0))
	return NewFlatForward(referenceDate, NullCalendar{}, rate, dc)
}

func (ts *FlatForward) ReferenceDate() time.Time { return ts.referenceDate }
func (ts *FlatForward) DayCounter() DayCounter   { return ts.dayCounter }

// Update 转发行情失效通知
func (ts *FlatForward) Update() {
	ts.NotifyObservers()
}

func (ts *FlatForward) Discount(d time.Time) (float64, error) {
	r, err := ts.ZeroRate(d)
	if err != nil {
		return 0, err
	}
	t := ts.dayCounter.YearFraction(ts.referenceDate, d)
	if t < 0 {
		return 0, fmt.Errorf("%w: date %s before curve reference date %s",
			ErrRange, d.Format(time.DateOnly), ts.referenceDate.Format(time.DateOnly))
	}
	return math.Exp(-r * t), nil
}

func (ts *FlatForward) ZeroRate(time.Time) (float64, error) {
	q, err := ts.rate.Link()
	if err != nil {
		return 0, fmt.Errorf("flat forward rate: %w", err)
	}
	r, err := q.Value()
	if err != nil {
		return 0, err
	}
	return r, nil
}

// QuantoTermStructure 量化调整后的衍生收益率曲线
// 把股息曲线、quanto 货币贴现曲线、股票本币利率曲线、股票与外汇波动率
// 以及两者相关性合成为一条零息曲线，刻画把外币股票收益对冲回 quanto
// 货币所引入的风险中性漂移调整：
//
//	z(t) = z_div(t) + z_quanto(t) - z_equity(t) + ρ·σ_E(strike,t)·σ_FX(atm,t)
//
// 相关性或任一波动率为零时退化为未调整的远期。
type QuantoTermStructure struct {
	Subject
	underlying      YieldTermStructure // 股息曲线
	riskFree        YieldTermStructure // quanto 货币贴现曲线
	foreignRiskFree YieldTermStructure // 股票本币利率曲线
	equityVol       BlackVolTermStructure
	fxVol           BlackVolTermStructure
	strike          float64
	fxATMLevel      float64
	correlation     float64
}

// NewQuantoTermStructure 组合各市场数据构造量化调整曲线
// 各曲线须共享同一参考日与计息基准，由定价器在 Initialize 时校验
func NewQuantoTermStructure(
	underlying, riskFree, foreignRiskFree YieldTermStructure,
	equityVol BlackVolTermStructure,
	strike float64,
	fxVol BlackVolTermStructure,
	fxATMLevel float64,
	correlation float64,
) *QuantoTermStructure {
	return &QuantoTermStructure{
		underlying:      underlying,
		riskFree:        riskFree,
		foreignRiskFree: foreignRiskFree,
		equityVol:       equityVol,
		fxVol:           fxVol,
		strike:          strike,
		fxATMLevel:      fxATMLevel,
		correlation:     correlation,
	}
}

func (ts *QuantoTermStructure) ReferenceDate() time.Time { return ts.riskFree.ReferenceDate() }
func (ts *QuantoTermStructure) DayCounter() DayCounter   { return ts.riskFree.DayCounter() }

func (ts *QuantoTermStructure) ZeroRate(d time.Time) (float64, error) {
	zUnderlying, err := ts.underlying.ZeroRate(d)
	if err != nil {
		return 0, err
	}
	zRiskFree, err := ts.riskFree.ZeroRate(d)
	if err != nil {
		return 0, err
	}
	zForeign, err := ts.foreignRiskFree.ZeroRate(d)
	if err != nil {
		return 0, err
	}
	equityVol, err := ts.equityVol.Volatility(ts.strike, d)
	if err != nil {
		return 0, err
	}
	fxVol, err := ts.fxVol.Volatility(ts.fxATMLevel, d)
	if err != nil {
		return 0, err
	}
	return zUnderlying + zRiskFree - zForeign + ts.correlation*equityVol*fxVol, nil
}

func (ts *QuantoTermStructure) Discount(d time.Time) (float64, error) {
	z, err := ts.ZeroRate(d)
	if err != nil {
		return 0, err
	}
	t := ts.DayCounter().YearFraction(ts.ReferenceDate(), d)
	if t < 0 {
		return 0, fmt.Errorf("%w: date %s before curve reference date %s",
			ErrRange, d.Format(time.DateOnly), ts.ReferenceDate().Format(time.DateOnly))
	}
	return math.Exp(-z * t), nil
}
