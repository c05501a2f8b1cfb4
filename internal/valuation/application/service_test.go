package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wyfcoding/valuation/internal/valuation/application"
	"github.com/wyfcoding/valuation/internal/valuation/domain"
)

// newTestService 一条行情驱动一条平坦曲线、一只指数和一笔现金流
func newTestService(t *testing.T) (*application.ValuationService, *domain.SimpleQuote) {
	t.Helper()

	ref := domain.NewDate(2023, time.January, 1)
	rateQuote := domain.NewSimpleQuote("KRW-OIS", 0.05)
	rateTS := domain.NewFlatForward(ref, domain.NullCalendar{},
		domain.NewHandle[domain.Quote](rateQuote), domain.Actual365Fixed{})
	spotH := domain.NewHandle[domain.Quote](domain.NewSimpleQuote("EQX-spot", 100))
	idx := domain.NewEquityIndex("EQX",
		domain.NewHandle[domain.YieldTermStructure](rateTS),
		domain.NewEmptyHandle[domain.YieldTermStructure](),
		spotH)
	if err := idx.AddFixing(domain.NewDate(2022, time.December, 1), 100, false); err != nil {
		t.Fatal(err)
	}

	cf, err := domain.NewEquityCashFlow(1000, idx,
		domain.NewDate(2022, time.December, 1),
		domain.NewDate(2024, time.January, 1),
		domain.NewDate(2024, time.January, 3), false)
	if err != nil {
		t.Fatal(err)
	}

	universe := application.NewUniverse()
	universe.RegisterQuote(rateQuote)
	universe.RegisterEquityIndex(idx)
	universe.RegisterCashFlow("eqx-2024", cf)
	return application.NewValuationService(universe), rateQuote
}

func TestUpdateQuoteDrivesCashFlowAmount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	before, err := svc.CashFlowAmount(ctx, "eqx-2024")
	if err != nil {
		t.Fatalf("CashFlowAmount: %v", err)
	}

	if err := svc.UpdateQuote(ctx, "KRW-OIS", decimal.NewFromFloat(0.07)); err != nil {
		t.Fatalf("UpdateQuote: %v", err)
	}
	after, err := svc.CashFlowAmount(ctx, "eqx-2024")
	if err != nil {
		t.Fatalf("CashFlowAmount: %v", err)
	}
	if after.Amount.Equal(before.Amount) {
		t.Fatal("amount must reflect the new quote, not the cached value")
	}
}

func TestUpdateUnknownQuoteFails(t *testing.T) {
	svc, _ := newTestService(t)
	err := svc.UpdateQuote(context.Background(), "missing", decimal.NewFromInt(1))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestAddFixingConflictSurfacesDataIntegrity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	d := domain.NewDate(2022, time.November, 1)

	cmd := application.AddFixingCommand{Index: "EQX", Date: d, Value: decimal.NewFromInt(90)}
	if err := svc.AddFixing(ctx, cmd); err != nil {
		t.Fatalf("AddFixing: %v", err)
	}
	cmd.Value = decimal.NewFromInt(91)
	if err := svc.AddFixing(ctx, cmd); !errors.Is(err, domain.ErrDataIntegrity) {
		t.Fatalf("expected data integrity error, got %v", err)
	}
}

func TestIndexFixingQuery(t *testing.T) {
	svc, _ := newTestService(t)
	v, err := svc.IndexFixing(context.Background(), "EQX", domain.NewDate(2022, time.December, 1))
	if err != nil {
		t.Fatalf("IndexFixing: %v", err)
	}
	if !v.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected 100, got %s", v)
	}
}

func TestListCashFlows(t *testing.T) {
	svc, _ := newTestService(t)
	ids := svc.ListCashFlows(context.Background())
	if len(ids) != 1 || ids[0] != "eqx-2024" {
		t.Fatalf("unexpected cash flow ids: %v", ids)
	}
}
