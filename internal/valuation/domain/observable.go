// Package domain 估值核心的领域模型：可观察图、行情、曲线、指数、现金流与定价器
package domain

// Observer 观察者接口
// Update 只负责把本地缓存标记为失效，并在自身也可观察时向下游转发通知，
// 绝不在通知路径上做重计算；重计算推迟到下一次取值时进行
type Observer interface {
	Update()
}

// Observable 被观察对象接口
// 被观察对象只记录"发生过变化"这一事实，从不携带变化后的值，消费方必须重新拉取
type Observable interface {
	RegisterObserver(o Observer)
	UnregisterObserver(o Observer)
	NotifyObservers()
}

// Subject Observable 的可嵌入实现
// 只持有观察者的非拥有引用：注册关系是纯粹的回指集合，不影响对象生命周期；
// 所有权由组合该对象的上下文管理
type Subject struct {
	observers []Observer
}

// RegisterObserver 注册观察者，重复注册是幂等的
func (s *Subject) RegisterObserver(o Observer) {
	for _, existing := range s.observers {
		if existing == o {
			return
		}
	}
	s.observers = append(s.observers, o)
}

// UnregisterObserver 移除观察者，未注册时为空操作
func (s *Subject) UnregisterObserver(o Observer) {
	for i, existing := range s.observers {
		if existing == o {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// NotifyObservers 在调用方 goroutine 上同步按注册顺序回调全部观察者
// 观察者之间不得假设任何顺序依赖
func (s *Subject) NotifyObservers() {
	for _, o := range s.observers {
		o.Update()
	}
}
