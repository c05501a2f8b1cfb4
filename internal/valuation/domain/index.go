package domain

import (
	"fmt"
	"time"
)

// Index 命名的市场指数序列，提供历史与预测履约值
type Index interface {
	Observable
	Name() string
	Fixing(d time.Time) (float64, error)
}

// FixingStore 历史履约值存储
// 指数与其克隆按引用共享同一个存储：它们代表同一组真实世界观测，
// 任一方新增的历史值对另一方立即可见
type FixingStore struct {
	fixings  map[time.Time]float64
	earliest time.Time
}

// NewFixingStore 创建空存储
func NewFixingStore() *FixingStore {
	return &FixingStore{fixings: make(map[time.Time]float64)}
}

// Add 写入某日的履约值
// 同一日期写入不同的值会被拒绝，防止录入错误被静默掩盖；
// 相同值的重复写入是幂等的；force 为 true 时允许显式覆盖
func (s *FixingStore) Add(d time.Time, value float64, force bool) error {
	d = normalizeDate(d)
	if existing, ok := s.fixings[d]; ok && !force {
		if existing != value {
			return fmt.Errorf("%w: fixing for %s already set to %v, refusing %v",
				ErrDataIntegrity, d.Format(time.DateOnly), existing, value)
		}
		return nil
	}
	s.fixings[d] = value
	if s.earliest.IsZero() || d.Before(s.earliest) {
		s.earliest = d
	}
	return nil
}

// Get 读取某日的履约值
func (s *FixingStore) Get(d time.Time) (float64, bool) {
	v, ok := s.fixings[normalizeDate(d)]
	return v, ok
}

// Earliest 最早一条观测的日期；存储为空时返回零值
func (s *FixingStore) Earliest() time.Time {
	return s.earliest
}

// EquityIndex 股票指数
// 历史履约值取自共享存储，未来履约值由利率/股息曲线和即期行情预测。
// 指数观察其全部市场数据依赖，任一依赖变化都会沿指数向现金流转发失效。
type EquityIndex struct {
	Subject
	name     string
	interest *Handle[YieldTermStructure]
	dividend *Handle[YieldTermStructure]
	spot     *Handle[Quote]
	fixings  *FixingStore
}

// NewEquityIndex 创建股票指数；任一 Handle 都可以先为空、之后再绑定
func NewEquityIndex(name string, interest, dividend *Handle[YieldTermStructure], spot *Handle[Quote]) *EquityIndex {
	idx := &EquityIndex{
		name:     name,
		interest: interest,
		dividend: dividend,
		spot:     spot,
		fixings:  NewFixingStore(),
	}
	interest.RegisterObserver(idx)
	dividend.RegisterObserver(idx)
	spot.RegisterObserver(idx)
	return idx
}

func (idx *EquityIndex) Name() string { return idx.name }

// InterestRateCurve 指数本币利率曲线
func (idx *EquityIndex) InterestRateCurve() *Handle[YieldTermStructure] { return idx.interest }

// DividendCurve 股息收益率曲线
func (idx *EquityIndex) DividendCurve() *Handle[YieldTermStructure] { return idx.dividend }

// Spot 即期价格行情
func (idx *EquityIndex) Spot() *Handle[Quote] { return idx.spot }

// Fixings 历史履约值存储
func (idx *EquityIndex) Fixings() *FixingStore { return idx.fixings }

// Update 转发市场数据失效通知
func (idx *EquityIndex) Update() {
	idx.NotifyObservers()
}

// AddFixing 录入历史履约值，是外部写入历史数据的唯一通道
// 写入成功后触发通知，因为依赖该日期的估值已经失效
func (idx *EquityIndex) AddFixing(d time.Time, value float64, force bool) error {
	if err := idx.fixings.Add(d, value, force); err != nil {
		return err
	}
	idx.NotifyObservers()
	return nil
}

// Fixing 某日的指数水平
// 参考日（利率曲线的参考日）之前的日期取历史值；之后的日期从曲线预测；
// 参考日当天优先取历史值，缺失时回退到预测
func (idx *EquityIndex) Fixing(d time.Time) (float64, error) {
	d = normalizeDate(d)
	today, hasToday := idx.today()
	if !hasToday || d.Before(today) {
		return idx.pastFixing(d)
	}
	if d.Equal(today) {
		if v, ok := idx.fixings.Get(d); ok {
			return v, nil
		}
	}
	return idx.forecastFixing(d)
}

// Clone 产生共享同一历史存储、绑定到另一组曲线的独立指数
// 用于构造假想（如 quanto 调整后）变体而不改动原指数
func (idx *EquityIndex) Clone(interest, dividend *Handle[YieldTermStructure], spot *Handle[Quote]) *EquityIndex {
	clone := NewEquityIndex(idx.name, interest, dividend, spot)
	clone.fixings = idx.fixings
	return clone
}

func (idx *EquityIndex) today() (time.Time, bool) {
	ts, err := idx.interest.Link()
	if err != nil {
		return time.Time{}, false
	}
	return ts.ReferenceDate(), true
}

func (idx *EquityIndex) pastFixing(d time.Time) (float64, error) {
	v, ok := idx.fixings.Get(d)
	if !ok {
		if idx.interest.Empty() {
			return 0, fmt.Errorf("%w: index %s has no fixing for %s and no forecasting curve",
				ErrConfiguration, idx.name, d.Format(time.DateOnly))
		}
		return 0, fmt.Errorf("%w: missing %s fixing for %s",
			ErrConfiguration, idx.name, d.Format(time.DateOnly))
	}
	return v, nil
}

func (idx *EquityIndex) forecastFixing(d time.Time) (float64, error) {
	interest, err := idx.interest.Link()
	if err != nil {
		return 0, fmt.Errorf("index %s interest rate curve: %w", idx.name, err)
	}
	spotQuote, err := idx.spot.Link()
	if err != nil {
		return 0, fmt.Errorf("index %s spot: %w", idx.name, err)
	}
	spot, err := spotQuote.Value()
	if err != nil {
		return 0, err
	}
	interestDiscount, err := interest.Discount(d)
	if err != nil {
		return 0, err
	}
	forward := spot / interestDiscount
	if !idx.dividend.Empty() {
		dividend, err := idx.dividend.Link()
		if err != nil {
			return 0, err
		}
		dividendDiscount, err := dividend.Discount(d)
		if err != nil {
			return 0, err
		}
		forward = spot * dividendDiscount / interestDiscount
	}
	return forward, nil
}
