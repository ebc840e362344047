package utils

import (
	"time"
)

// time.go - утилиты для работы со временем
//
// Назначение:
// Вспомогательные функции для временных операций: границы торгового дня,
// планирование полуночного сброса статистики, идентификаторы сделок
// на основе миллисекундных timestamp.

// ============================================================
// Границы торгового дня
// ============================================================

// GetDayStart возвращает начало текущего дня (00:00:00) в UTC
//
// Пример:
//
//	// Сейчас: 2024-01-15 14:30:45 UTC
//	start := GetDayStart()
//	// start: 2024-01-15 00:00:00 UTC
func GetDayStart() time.Time {
	return GetDayStartFrom(time.Now().UTC())
}

// GetDayStartFrom возвращает начало дня для указанного времени в UTC
func GetDayStartFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetDayEnd возвращает конец текущего дня (23:59:59.999999999) в UTC
func GetDayEnd() time.Time {
	return GetDayEndFrom(time.Now().UTC())
}

// GetDayEndFrom возвращает конец дня для указанного времени
func GetDayEndFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, time.UTC)
}

// NextMidnight возвращает ближайшую полночь после указанного времени
// в локальной для этого времени timezone.
//
// Используется планировщиком сброса дневной статистики: таймер
// взводится на начало следующих календарных суток, а не на
// фиксированный интервал в 24 часа.
//
// Пример:
//
//	// t: 2024-01-15 14:30:45
//	next := NextMidnight(t)
//	// next: 2024-01-16 00:00:00 (та же timezone)
func NextMidnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day+1, 0, 0, 0, 0, t.Location())
}

// UntilNextMidnight возвращает время до ближайшей полуночи
func UntilNextMidnight(t time.Time) time.Duration {
	return NextMidnight(t).Sub(t)
}

// ============================================================
// Функции для работы с диапазонами
// ============================================================

// TimeRange представляет временной диапазон
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains проверяет, попадает ли время в диапазон
func (tr TimeRange) Contains(t time.Time) bool {
	return !t.Before(tr.Start) && !t.After(tr.End)
}

// Duration возвращает продолжительность диапазона
func (tr TimeRange) Duration() time.Duration {
	return tr.End.Sub(tr.Start)
}

// GetDayRange возвращает диапазон текущего дня
func GetDayRange() TimeRange {
	return TimeRange{
		Start: GetDayStart(),
		End:   GetDayEnd(),
	}
}

// GetLastNDays возвращает диапазон последних n дней (включая сегодня)
func GetLastNDays(n int) TimeRange {
	if n <= 0 {
		n = 1
	}
	now := time.Now().UTC()
	return TimeRange{
		Start: GetDayStartFrom(now.AddDate(0, 0, -(n - 1))),
		End:   GetDayEndFrom(now),
	}
}

// GetLastNHours возвращает диапазон последних n часов
func GetLastNHours(n int) TimeRange {
	if n <= 0 {
		n = 1
	}
	now := time.Now().UTC()
	return TimeRange{
		Start: now.Add(-time.Duration(n) * time.Hour),
		End:   now,
	}
}

// ============================================================
// Форматирование времени
// ============================================================

// FormatDuration форматирует продолжительность в человекочитаемый формат
//
// Примеры:
//   - "45s"
//   - "5m30s"
//   - "2h15m"
//   - "3d5h"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		if hours > 0 {
			return (time.Duration(days*24+hours) * time.Hour).String()
		}
		return (time.Duration(days*24) * time.Hour).String()
	}

	if hours > 0 {
		if minutes > 0 {
			return (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute).String()
		}
		return (time.Duration(hours) * time.Hour).String()
	}

	if minutes > 0 {
		if seconds > 0 {
			return (time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second).String()
		}
		return (time.Duration(minutes) * time.Minute).String()
	}

	return (time.Duration(seconds) * time.Second).String()
}

// ============================================================
// Утилиты для timestamp
// ============================================================

// UnixMillis возвращает текущее время в миллисекундах Unix.
// Используется как суффикс идентификаторов сделок.
func UnixMillis() int64 {
	return time.Now().UnixMilli()
}

// FromUnixMillis конвертирует миллисекунды Unix в time.Time
func FromUnixMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
