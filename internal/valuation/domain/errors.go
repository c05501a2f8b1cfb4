package domain

import "errors"

// 领域错误分类。具体错误通过 fmt.Errorf("%w: ...") 包装，调用方用 errors.Is 判断类别。
// 所有错误在当前输入下都是确定性的，任何一类都不做自动重试。
var (
	// ErrConfiguration 必需的 Handle/曲线为空，或必需曲线的参考日期不一致
	ErrConfiguration = errors.New("configuration error")
	// ErrRange 日期区间非法（固定日早于基准日、观察滞后早于指数起始）
	ErrRange = errors.New("range error")
	// ErrTypeMismatch 定价器绑定到了指数类型不匹配的现金流
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrDataIntegrity 同一日期写入了不同的历史履约值
	ErrDataIntegrity = errors.New("data integrity violation")
)
