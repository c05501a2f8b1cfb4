package domain

import (
	"fmt"
	"time"
)

// BlackVolTermStructure 波动率曲面
type BlackVolTermStructure interface {
	Observable
	ReferenceDate() time.Time
	// Volatility 给定行权价与日期的年化波动率，非负
	Volatility(strike float64, d time.Time) (float64, error)
}

// BlackConstantVol 常数波动率曲面，波动率经由 Handle 取自行情
type BlackConstantVol struct {
	Subject
	referenceDate time.Time
	vol           *Handle[Quote]
}

// NewBlackConstantVol 创建常数波动率曲面
func NewBlackConstantVol(referenceDate time.Time, vol *Handle[Quote]) *BlackConstantVol {
	ts := &BlackConstantVol{referenceDate: normalizeDate(referenceDate), vol: vol}
	vol.RegisterObserver(ts)
	return ts
}

func (ts *BlackConstantVol) ReferenceDate() time.Time { return ts.referenceDate }

// Update 转发行情失效通知
func (ts *BlackConstantVol) Update() {
	ts.NotifyObservers()
}

func (ts *BlackConstantVol) Volatility(_ float64, _ time.Time) (float64, error) {
	q, err := ts.vol.Link()
	if err != nil {
		return 0, fmt.Errorf("constant volatility: %w", err)
	}
	v, err := q.Value()
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: negative volatility %v", ErrConfiguration, v)
	}
	return v, nil
}
