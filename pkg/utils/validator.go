package utils

import (
	"fmt"
	"strings"
)

// validator.go - валидация входных данных
//
// Проверка параметров, приходящих из HTTP API и конфигурации,
// до того как они попадут в учёт позиций.

// base58-алфавит Solana (без 0, O, I, l)
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ValidateMint проверяет, что строка похожа на mint-адрес Solana:
// base58, длина 32-44 символа.
func ValidateMint(mint string) error {
	if mint == "" {
		return fmt.Errorf("mint is required")
	}
	if len(mint) < 32 || len(mint) > 44 {
		return fmt.Errorf("mint must be 32-44 characters, got %d", len(mint))
	}
	for _, c := range mint {
		if !strings.ContainsRune(base58Alphabet, c) {
			return fmt.Errorf("mint contains invalid character %q", c)
		}
	}
	return nil
}

// ValidateAmount проверяет объём сделки в SOL
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %v", amount)
	}
	return nil
}

// ValidatePrice проверяет цену токена
func ValidatePrice(price float64) error {
	if price <= 0 {
		return fmt.Errorf("price must be positive, got %v", price)
	}
	return nil
}

// ValidateTradeType проверяет сторону сделки
func ValidateTradeType(tradeType string) error {
	switch tradeType {
	case "buy", "sell":
		return nil
	default:
		return fmt.Errorf("trade type must be buy or sell, got %q", tradeType)
	}
}
