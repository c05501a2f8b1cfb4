package domain_test

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/wyfcoding/valuation/internal/valuation/domain"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// newFlatCurveHandle 平坦曲线及其利率行情，测试用
func newFlatCurveHandle(ref time.Time, rate float64) (*domain.Handle[domain.YieldTermStructure], *domain.SimpleQuote) {
	q := domain.NewSimpleQuote("rate", rate)
	ts := domain.NewFlatForward(ref, domain.NullCalendar{}, domain.NewHandle[domain.Quote](q), domain.Actual365Fixed{})
	return domain.NewHandle[domain.YieldTermStructure](ts), q
}

func newTestEquityIndex(ref time.Time, rate, dividend, spot float64) *domain.EquityIndex {
	rateH, _ := newFlatCurveHandle(ref, rate)
	divH, _ := newFlatCurveHandle(ref, dividend)
	spotH := domain.NewHandle[domain.Quote](domain.NewSimpleQuote("spot", spot))
	return domain.NewEquityIndex("EQX", rateH, divH, spotH)
}

func TestEquityIndexHistoricalFixing(t *testing.T) {
	ref := domain.NewDate(2023, time.June, 15)
	idx := newTestEquityIndex(ref, 0.03, 0.01, 100)

	past := domain.NewDate(2023, time.June, 1)
	if err := idx.AddFixing(past, 98.5, false); err != nil {
		t.Fatalf("AddFixing: %v", err)
	}
	v, err := idx.Fixing(past)
	if err != nil {
		t.Fatalf("Fixing: %v", err)
	}
	if v != 98.5 {
		t.Fatalf("expected 98.5, got %v", v)
	}
}

func TestEquityIndexMissingPastFixing(t *testing.T) {
	ref := domain.NewDate(2023, time.June, 15)
	idx := newTestEquityIndex(ref, 0.03, 0.01, 100)

	_, err := idx.Fixing(domain.NewDate(2023, time.June, 1))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "EQX") {
		t.Fatalf("error must name the index: %v", err)
	}
}

func TestEquityIndexForecastFixing(t *testing.T) {
	ref := domain.NewDate(2023, time.January, 1)
	idx := newTestEquityIndex(ref, 0.05, 0.02, 100)

	oneYear := domain.NewDate(2024, time.January, 1)
	v, err := idx.Fixing(oneYear)
	if err != nil {
		t.Fatalf("Fixing: %v", err)
	}
	// forward = spot · D_div / D_rate = 100 · e^{-0.02} / e^{-0.05}
	want := 100 * math.Exp(-0.02) / math.Exp(-0.05)
	if !approxEqual(v, want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, v)
	}
}

func TestEquityIndexForecastWithoutDividendCurve(t *testing.T) {
	ref := domain.NewDate(2023, time.January, 1)
	rateH, _ := newFlatCurveHandle(ref, 0.05)
	spotH := domain.NewHandle[domain.Quote](domain.NewSimpleQuote("spot", 100))
	idx := domain.NewEquityIndex("EQX", rateH, domain.NewEmptyHandle[domain.YieldTermStructure](), spotH)

	v, err := idx.Fixing(domain.NewDate(2024, time.January, 1))
	if err != nil {
		t.Fatalf("Fixing: %v", err)
	}
	want := 100 / math.Exp(-0.05)
	if !approxEqual(v, want, 1e-12) {
		t.Fatalf("expected %v, got %v", want, v)
	}
}

func TestEquityIndexFutureFixingWithoutCurve(t *testing.T) {
	idx := domain.NewEquityIndex("EQX",
		domain.NewEmptyHandle[domain.YieldTermStructure](),
		domain.NewEmptyHandle[domain.YieldTermStructure](),
		domain.NewEmptyHandle[domain.Quote]())

	_, err := idx.Fixing(domain.NewDate(2030, time.January, 1))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "no forecasting curve") {
		t.Fatalf("error must name the missing curve: %v", err)
	}
}

func TestAddFixingConflictRejected(t *testing.T) {
	ref := domain.NewDate(2023, time.June, 15)
	idx := newTestEquityIndex(ref, 0.03, 0.01, 100)
	d := domain.NewDate(2023, time.June, 1)

	if err := idx.AddFixing(d, 100, false); err != nil {
		t.Fatalf("AddFixing: %v", err)
	}
	// 相同值幂等
	if err := idx.AddFixing(d, 100, false); err != nil {
		t.Fatalf("idempotent re-insert must succeed: %v", err)
	}
	// 不同值拒绝
	if err := idx.AddFixing(d, 101, false); !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected data integrity error, got %v", err)
	}
	// 显式覆盖
	if err := idx.AddFixing(d, 101, true); err != nil {
		t.Fatalf("forced overwrite must succeed: %v", err)
	}
	v, _ := idx.Fixing(d)
	if v != 101 {
		t.Fatalf("expected 101 after overwrite, got %v", v)
	}
}

func TestCloneSharesFixingStore(t *testing.T) {
	ref := domain.NewDate(2023, time.June, 15)
	idx := newTestEquityIndex(ref, 0.03, 0.01, 100)

	rateH, _ := newFlatCurveHandle(ref, 0.07)
	divH, _ := newFlatCurveHandle(ref, 0.0)
	clone := idx.Clone(rateH, divH, idx.Spot())

	d1 := domain.NewDate(2023, time.June, 1)
	d2 := domain.NewDate(2023, time.June, 2)

	// 克隆后在原指数上新增的历史值对克隆可见
	if err := idx.AddFixing(d1, 99, false); err != nil {
		t.Fatalf("AddFixing: %v", err)
	}
	if v, err := clone.Fixing(d1); err != nil || v != 99 {
		t.Fatalf("clone must see original's fixing: v=%v err=%v", v, err)
	}

	// 反向同样成立
	if err := clone.AddFixing(d2, 98, false); err != nil {
		t.Fatalf("AddFixing on clone: %v", err)
	}
	if v, err := idx.Fixing(d2); err != nil || v != 98 {
		t.Fatalf("original must see clone's fixing: v=%v err=%v", v, err)
	}
}

func TestFixingInvalidationThroughQuoteChain(t *testing.T) {
	ref := domain.NewDate(2023, time.January, 1)
	rateQuote := domain.NewSimpleQuote("rate", 0.05)
	rateTS := domain.NewFlatForward(ref, domain.NullCalendar{},
		domain.NewHandle[domain.Quote](rateQuote), domain.Actual365Fixed{})
	rateH := domain.NewHandle[domain.YieldTermStructure](rateTS)
	spotH := domain.NewHandle[domain.Quote](domain.NewSimpleQuote("spot", 100))
	idx := domain.NewEquityIndex("EQX", rateH, domain.NewEmptyHandle[domain.YieldTermStructure](), spotH)

	o := &recordingObserver{}
	idx.RegisterObserver(o)

	// 行情 → Handle → 曲线 → 指数 的失效链
	rateQuote.SetValue(0.06)
	if o.updates == 0 {
		t.Fatal("quote change must propagate to index observers")
	}

	v, err := idx.Fixing(domain.NewDate(2024, time.January, 1))
	if err != nil {
		t.Fatalf("Fixing: %v", err)
	}
	want := 100 / math.Exp(-0.06)
	if !approxEqual(v, want, 1e-12) {
		t.Fatalf("forecast must reflect new rate: want %v got %v", want, v)
	}
}
