package domain

import (
	"fmt"
	"time"
)

// InterpolationType 滞后观察的插值方式
type InterpolationType int

const (
	// InterpolationAsIndex 直接取观察日所在月份的公布值
	InterpolationAsIndex InterpolationType = iota
	// InterpolationFlat 取观察月月初的公布值
	InterpolationFlat
	// InterpolationLinear 在跨越观察日的两个公布月之间线性插值
	InterpolationLinear
)

func (t InterpolationType) String() string {
	switch t {
	case InterpolationAsIndex:
		return "as-index"
	case InterpolationFlat:
		return "flat"
	case InterpolationLinear:
		return "linear"
	default:
		return fmt.Sprintf("interpolation(%d)", int(t))
	}
}

// Period 观察滞后，按整月计
type Period struct {
	Months int
}

// SubtractFrom 从 d 回退一个滞后期得到观察日
func (p Period) SubtractFrom(d time.Time) time.Time {
	return d.AddDate(0, -p.Months, 0)
}

// ZeroInflationIndex 月度公布的价格指数（如 CPI）
// 每个公布值对应一个日历月，存储时规范化到月初
type ZeroInflationIndex struct {
	Subject
	name    string
	fixings *FixingStore
}

// NewZeroInflationIndex 创建通胀指数
func NewZeroInflationIndex(name string) *ZeroInflationIndex {
	return &ZeroInflationIndex{name: name, fixings: NewFixingStore()}
}

func (idx *ZeroInflationIndex) Name() string { return idx.name }

// Fixings 历史公布值存储
func (idx *ZeroInflationIndex) Fixings() *FixingStore { return idx.fixings }

// AddFixing 录入某月的公布值，日期归并到月初
func (idx *ZeroInflationIndex) AddFixing(d time.Time, value float64, force bool) error {
	if err := idx.fixings.Add(monthStart(d), value, force); err != nil {
		return err
	}
	idx.NotifyObservers()
	return nil
}

// Fixing 日期 d 所在月份的公布值
func (idx *ZeroInflationIndex) Fixing(d time.Time) (float64, error) {
	v, ok := idx.fixings.Get(monthStart(d))
	if !ok {
		return 0, fmt.Errorf("%w: missing %s fixing for %s",
			ErrConfiguration, idx.name, monthStart(d).Format(time.DateOnly))
	}
	return v, nil
}

// LaggedFixing 把 d 回退一个观察滞后期，按插值方式解析指数值
// flat 取观察月的公布值；linear 在观察月与次月的公布值之间按
// d 在其自身月份内的位置线性插值
func LaggedFixing(idx *ZeroInflationIndex, d time.Time, lag Period, interpolation InterpolationType) (float64, error) {
	if lag.Months < 0 {
		return 0, fmt.Errorf("%w: negative observation lag %dM", ErrRange, lag.Months)
	}
	d = normalizeDate(d)
	observationDate := lag.SubtractFrom(d)
	if earliest := idx.fixings.Earliest(); !earliest.IsZero() && monthStart(observationDate).Before(earliest) {
		return 0, fmt.Errorf("%w: observation date %s before inception of index %s (%s)",
			ErrRange, observationDate.Format(time.DateOnly), idx.name, earliest.Format(time.DateOnly))
	}

	switch interpolation {
	case InterpolationAsIndex, InterpolationFlat:
		return idx.Fixing(observationDate)
	case InterpolationLinear:
		periodStart := monthStart(d)
		periodEnd := periodStart.AddDate(0, 1, 0)
		if d.Equal(periodStart) {
			return idx.Fixing(observationDate)
		}
		first, err := idx.Fixing(observationDate)
		if err != nil {
			return 0, err
		}
		second, err := idx.Fixing(monthStart(observationDate).AddDate(0, 1, 0))
		if err != nil {
			return 0, err
		}
		weight := float64(daysBetween(periodStart, d)) / float64(daysBetween(periodStart, periodEnd))
		return first + (second-first)*weight, nil
	default:
		return 0, fmt.Errorf("%w: unknown interpolation type %v", ErrConfiguration, interpolation)
	}
}
