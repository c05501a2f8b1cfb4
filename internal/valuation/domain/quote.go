package domain

import "fmt"

// Quote 可观察的标量行情值
type Quote interface {
	Observable
	Value() (float64, error)
}

// SimpleQuote 单一命名行情值
// 由外部行情源改写，值发生变化时立即同步通知全部观察者
type SimpleQuote struct {
	Subject
	name  string
	value float64
	set   bool
}

// NewSimpleQuote 创建带初值的行情
func NewSimpleQuote(name string, value float64) *SimpleQuote {
	return &SimpleQuote{name: name, value: value, set: true}
}

// NewEmptyQuote 创建尚未收到首个报价的行情
func NewEmptyQuote(name string) *SimpleQuote {
	return &SimpleQuote{name: name}
}

// Name 行情名称
func (q *SimpleQuote) Name() string {
	return q.name
}

// Value 当前值；尚未设置时返回配置错误而不是默认值
func (q *SimpleQuote) Value() (float64, error) {
	if !q.set {
		return 0, fmt.Errorf("%w: quote %q has no value", ErrConfiguration, q.name)
	}
	return q.value, nil
}

// SetValue 设置新值并触发通知级联；值未变化时不通知
func (q *SimpleQuote) SetValue(value float64) {
	if q.set && q.value == value {
		return
	}
	q.value = value
	q.set = true
	q.NotifyObservers()
}
