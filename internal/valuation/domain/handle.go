package domain

import "fmt"

// Handle 市场数据对象的可重绑定间接引用
// Handle 自身可观察：换绑与底层对象的变化都会转发给经由 Handle 注册的观察者。
// 空 Handle 被取值时必须返回配置错误，绝不静默给出默认值。
type Handle[T Observable] struct {
	Subject
	link       T
	linked     bool
	relinkable bool
}

// NewHandle 创建绑定到 obj 的只读 Handle
func NewHandle[T Observable](obj T) *Handle[T] {
	h := &Handle[T]{}
	h.attach(obj)
	return h
}

// NewEmptyHandle 创建未绑定的只读 Handle
func NewEmptyHandle[T Observable]() *Handle[T] {
	return &Handle[T]{}
}

// NewRelinkableHandle 创建未绑定、允许运行期换绑的 Handle
func NewRelinkableHandle[T Observable]() *Handle[T] {
	return &Handle[T]{relinkable: true}
}

// Empty 是否未绑定
func (h *Handle[T]) Empty() bool {
	return !h.linked
}

// Link 取出底层对象；空 Handle 返回配置错误
func (h *Handle[T]) Link() (T, error) {
	if !h.linked {
		var zero T
		return zero, fmt.Errorf("%w: empty handle", ErrConfiguration)
	}
	return h.link, nil
}

// LinkTo 换绑底层对象并通知，效果等同于底层对象本身发生变化
func (h *Handle[T]) LinkTo(obj T) error {
	if !h.relinkable && h.linked {
		return fmt.Errorf("%w: handle is not relinkable", ErrConfiguration)
	}
	h.attach(obj)
	h.NotifyObservers()
	return nil
}

// Reset 解除绑定并通知；之后的取值返回配置错误
// 只有可换绑 Handle 允许清空
func (h *Handle[T]) Reset() error {
	if !h.relinkable {
		return fmt.Errorf("%w: handle is not relinkable", ErrConfiguration)
	}
	if !h.linked {
		return nil
	}
	h.link.UnregisterObserver(h)
	var zero T
	h.link = zero
	h.linked = false
	h.NotifyObservers()
	return nil
}

// Update 底层对象变化时向经由 Handle 注册的观察者转发
func (h *Handle[T]) Update() {
	h.NotifyObservers()
}

func (h *Handle[T]) attach(obj T) {
	if h.linked {
		h.link.UnregisterObserver(h)
	}
	h.link = obj
	h.linked = true
	obj.RegisterObserver(h)
}
