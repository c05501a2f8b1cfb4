package domain

import "time"

// 日历与计息基准是外部协作方，这里只消费其只读接口，曲线构造时用到。

// Calendar 工作日判定
type Calendar interface {
	IsBusinessDay(d time.Time) bool
}

// NullCalendar 把每一天都当作工作日的日历
type NullCalendar struct{}

func (NullCalendar) IsBusinessDay(time.Time) bool { return true }

// DayCounter 计息基准：两个日期间的年化区间
type DayCounter interface {
	Name() string
	YearFraction(start, end time.Time) float64
}

// Actual365Fixed ACT/365F，曲线时间轴的市场惯例
type Actual365Fixed struct{}

func (Actual365Fixed) Name() string { return "ACT/365F" }

func (Actual365Fixed) YearFraction(start, end time.Time) float64 {
	return float64(daysBetween(start, end)) / 365.0
}

// NewDate 构造 UTC 零点的日期值，领域内所有日期都按此规范化
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func normalizeDate(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(start, end time.Time) int {
	return int(normalizeDate(end).Sub(normalizeDate(start)) / (24 * time.Hour))
}

func monthStart(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
}
