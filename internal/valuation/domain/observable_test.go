package domain_test

import (
	"errors"
	"testing"

	"github.com/wyfcoding/valuation/internal/valuation/domain"
)

type recordingObserver struct {
	name    string
	updates int
	log     *[]string
}

func (o *recordingObserver) Update() {
	o.updates++
	if o.log != nil {
		*o.log = append(*o.log, o.name)
	}
}

func TestSubjectNotifiesInRegistrationOrder(t *testing.T) {
	var log []string
	var s domain.Subject
	first := &recordingObserver{name: "first", log: &log}
	second := &recordingObserver{name: "second", log: &log}

	s.RegisterObserver(first)
	s.RegisterObserver(second)
	s.NotifyObservers()

	if len(log) != 2 || log[0] != "first" || log[1] != "second" {
		t.Fatalf("unexpected notification order: %v", log)
	}
}

func TestSubjectRegistrationIsIdempotent(t *testing.T) {
	var s domain.Subject
	o := &recordingObserver{}

	s.RegisterObserver(o)
	s.RegisterObserver(o)
	s.NotifyObservers()

	if o.updates != 1 {
		t.Fatalf("expected a single update, got %d", o.updates)
	}
}

func TestSubjectUnregisterStopsNotifications(t *testing.T) {
	var s domain.Subject
	o := &recordingObserver{}

	s.RegisterObserver(o)
	s.UnregisterObserver(o)
	s.NotifyObservers()

	if o.updates != 0 {
		t.Fatalf("expected no updates after unregister, got %d", o.updates)
	}
}

func TestSimpleQuoteNotifiesOnChangeOnly(t *testing.T) {
	q := domain.NewSimpleQuote("EURUSD", 1.10)
	o := &recordingObserver{}
	q.RegisterObserver(o)

	q.SetValue(1.10)
	if o.updates != 0 {
		t.Fatalf("unchanged value must not notify, got %d updates", o.updates)
	}

	q.SetValue(1.20)
	if o.updates != 1 {
		t.Fatalf("expected one update after change, got %d", o.updates)
	}
	v, err := q.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != 1.20 {
		t.Fatalf("expected 1.20, got %v", v)
	}
}

func TestEmptyQuoteValueFails(t *testing.T) {
	q := domain.NewEmptyQuote("KOSPI200")
	if _, err := q.Value(); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestEmptyHandleLinkFails(t *testing.T) {
	h := domain.NewEmptyHandle[domain.Quote]()
	if !h.Empty() {
		t.Fatal("expected handle to be empty")
	}
	if _, err := h.Link(); !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestRelinkableHandleNotifiesOnRelinkAndPassesThrough(t *testing.T) {
	h := domain.NewRelinkableHandle[domain.Quote]()
	o := &recordingObserver{}
	h.RegisterObserver(o)

	first := domain.NewSimpleQuote("spot", 100)
	if err := h.LinkTo(first); err != nil {
		t.Fatalf("LinkTo: %v", err)
	}
	if o.updates != 1 {
		t.Fatalf("expected relink notification, got %d", o.updates)
	}

	// 底层行情变化经由 Handle 转发
	first.SetValue(101)
	if o.updates != 2 {
		t.Fatalf("expected pass-through notification, got %d", o.updates)
	}

	// 换绑后旧对象不再转发
	second := domain.NewSimpleQuote("spot2", 200)
	if err := h.LinkTo(second); err != nil {
		t.Fatalf("LinkTo: %v", err)
	}
	first.SetValue(102)
	if o.updates != 3 {
		t.Fatalf("old link must be detached, got %d updates", o.updates)
	}
	second.SetValue(201)
	if o.updates != 4 {
		t.Fatalf("new link must forward, got %d updates", o.updates)
	}
}

func TestStaticHandleRejectsRelink(t *testing.T) {
	h := domain.NewHandle[domain.Quote](domain.NewSimpleQuote("spot", 100))
	err := h.LinkTo(domain.NewSimpleQuote("other", 1))
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
