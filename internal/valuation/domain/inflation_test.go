package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/wyfcoding/valuation/internal/valuation/domain"
)

func newTestCPI(t *testing.T) *domain.ZeroInflationIndex {
	t.Helper()
	cpi := domain.NewZeroInflationIndex("CPI")
	fixings := map[time.Time]float64{
		domain.NewDate(2023, time.January, 1):  100.0,
		domain.NewDate(2023, time.February, 1): 101.0,
		domain.NewDate(2023, time.March, 1):    102.5,
		domain.NewDate(2023, time.April, 1):    103.0,
	}
	for d, v := range fixings {
		if err := cpi.AddFixing(d, v, false); err != nil {
			t.Fatalf("AddFixing: %v", err)
		}
	}
	return cpi
}

func TestLaggedFixingFlat(t *testing.T) {
	cpi := newTestCPI(t)

	// 2023-05-20 回退 3 个月 → 观察日 2023-02-20，取二月公布值
	v, err := domain.LaggedFixing(cpi, domain.NewDate(2023, time.May, 20), domain.Period{Months: 3}, domain.InterpolationFlat)
	if err != nil {
		t.Fatalf("LaggedFixing: %v", err)
	}
	if v != 101.0 {
		t.Fatalf("expected 101.0, got %v", v)
	}
}

func TestLaggedFixingLinear(t *testing.T) {
	cpi := newTestCPI(t)

	// 观察月 2023-02，次月 2023-03；权重按 5 月内的位置：(20-1)/31
	d := domain.NewDate(2023, time.May, 20)
	v, err := domain.LaggedFixing(cpi, d, domain.Period{Months: 3}, domain.InterpolationLinear)
	if err != nil {
		t.Fatalf("LaggedFixing: %v", err)
	}
	weight := 19.0 / 31.0
	want := 101.0 + (102.5-101.0)*weight
	if !approxEqual(v, want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, v)
	}
}

func TestLaggedFixingLinearAtMonthStartIsFlat(t *testing.T) {
	cpi := newTestCPI(t)

	d := domain.NewDate(2023, time.May, 1)
	linear, err := domain.LaggedFixing(cpi, d, domain.Period{Months: 3}, domain.InterpolationLinear)
	if err != nil {
		t.Fatal(err)
	}
	flat, err := domain.LaggedFixing(cpi, d, domain.Period{Months: 3}, domain.InterpolationFlat)
	if err != nil {
		t.Fatal(err)
	}
	if linear != flat {
		t.Fatalf("at month start linear must equal flat: %v vs %v", linear, flat)
	}
}

func TestLaggedFixingBeforeInception(t *testing.T) {
	cpi := newTestCPI(t)

	_, err := domain.LaggedFixing(cpi, domain.NewDate(2023, time.February, 15), domain.Period{Months: 3}, domain.InterpolationFlat)
	if !errors.Is(err, domain.ErrRange) {
		t.Fatalf("expected range error before index inception, got %v", err)
	}
}

func TestZeroInflationCashFlowAmount(t *testing.T) {
	cpi := newTestCPI(t)

	// start 2023-04-10, end 2023-06-10, lag 3M → 观察月 1 月与 3 月
	cf, err := domain.NewZeroInflationCashFlow(1000, cpi, domain.InterpolationFlat,
		domain.NewDate(2023, time.April, 10), domain.NewDate(2023, time.June, 10),
		domain.Period{Months: 3}, domain.NewDate(2023, time.June, 15), false)
	if err != nil {
		t.Fatalf("NewZeroInflationCashFlow: %v", err)
	}

	base, err := cf.BaseFixing()
	if err != nil {
		t.Fatalf("BaseFixing: %v", err)
	}
	if base != 100.0 {
		t.Fatalf("expected base fixing 100.0, got %v", base)
	}
	fixing, err := cf.IndexFixing()
	if err != nil {
		t.Fatalf("IndexFixing: %v", err)
	}
	if fixing != 102.5 {
		t.Fatalf("expected index fixing 102.5, got %v", fixing)
	}

	amount, err := cf.Amount()
	if err != nil {
		t.Fatalf("Amount: %v", err)
	}
	if !approxEqual(amount, 1000*102.5/100.0, 1e-9) {
		t.Fatalf("expected %v, got %v", 1000*102.5/100.0, amount)
	}

	growth, err := domain.NewZeroInflationCashFlow(1000, cpi, domain.InterpolationFlat,
		domain.NewDate(2023, time.April, 10), domain.NewDate(2023, time.June, 10),
		domain.Period{Months: 3}, domain.NewDate(2023, time.June, 15), true)
	if err != nil {
		t.Fatal(err)
	}
	amount, err = growth.Amount()
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(amount, 1000*(102.5/100.0-1), 1e-9) {
		t.Fatalf("expected %v, got %v", 1000*(102.5/100.0-1), amount)
	}
}

func TestZeroInflationCashFlowInvalidatesOnNewFixing(t *testing.T) {
	cpi := newTestCPI(t)

	cf, err := domain.NewZeroInflationCashFlow(1000, cpi, domain.InterpolationLinear,
		domain.NewDate(2023, time.April, 10), domain.NewDate(2023, time.June, 10),
		domain.Period{Months: 3}, domain.NewDate(2023, time.June, 15), false)
	if err != nil {
		t.Fatal(err)
	}

	// linear 路径需要 4 月公布值（3 月次月），fixture 已有
	before, err := cf.Amount()
	if err != nil {
		t.Fatalf("Amount: %v", err)
	}

	// 覆盖 3 月公布值后金额必须重算
	if err := cpi.AddFixing(domain.NewDate(2023, time.March, 1), 104.0, true); err != nil {
		t.Fatal(err)
	}
	after, err := cf.Amount()
	if err != nil {
		t.Fatalf("Amount after revision: %v", err)
	}
	if after == before {
		t.Fatal("stale amount returned after fixing revision")
	}
}
