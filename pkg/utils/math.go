package utils

import (
	"math"
)

// math.go - математические утилиты
//
// Назначение:
// Расчёты, используемые учётом позиций и риск-контролем:
// PnL, статистика волатильности по ценовым рядам, win rate.
//
// Все деньги хранятся в SOL как float64. Округление применяется
// только на границе отображения, не в учёте.

// ============================================================
// PnL
// ============================================================

// CalculatePNL возвращает прибыль/убыток в SOL для закрытой позиции
//
// Параметры:
//   - entryValue: стоимость входа (кол-во SOL, потраченное на покупку)
//   - exitValue: стоимость выхода (кол-во SOL, полученное при продаже)
func CalculatePNL(entryValue, exitValue float64) float64 {
	return exitValue - entryValue
}

// PnlRatio возвращает отношение текущей цены к цене входа.
// При нулевой цене входа возвращает 0.
func PnlRatio(entryPrice, currentPrice float64) float64 {
	if entryPrice == 0 {
		return 0
	}
	return currentPrice / entryPrice
}

// ============================================================
// Статистика ценовых рядов
// ============================================================

// Mean возвращает среднее арифметическое. Пустой срез даёт 0.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev возвращает стандартное отклонение (population).
// Срезы короче двух элементов дают 0.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// Volatility возвращает волатильность ценового ряда в процентах:
// стандартное отклонение, нормированное на среднее.
//
// Пример: ряд со средним 100 и отклонением 5 даёт 5.0 (процентов).
func Volatility(closes []float64) float64 {
	if len(closes) < 2 {
		return 0
	}
	mean := Mean(closes)
	if mean == 0 {
		return 0
	}
	return StdDev(closes) / mean * 100
}

// ============================================================
// Статистика торговли
// ============================================================

// WinRate возвращает процент прибыльных сделок [0..100].
// При отсутствии сделок возвращает 0.
func WinRate(profitable, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(profitable) / float64(total) * 100
}

// SafeDiv возвращает a/b, либо 0 при нулевом делителе
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// ============================================================
// Общие хелперы
// ============================================================

// RoundTo округляет до указанного числа знаков после запятой
func RoundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

// Abs возвращает абсолютное значение
func Abs(x float64) float64 {
	return math.Abs(x)
}

// Min возвращает меньшее из двух значений
func Min(a, b float64) float64 {
	return math.Min(a, b)
}

// Max возвращает большее из двух значений
func Max(a, b float64) float64 {
	return math.Max(a, b)
}

// Clamp ограничивает значение диапазоном [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
