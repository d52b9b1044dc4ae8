// Package currency определяет точность валют по ISO-4217.
package currency

import (
	"strings"

	"golang.org/x/text/currency"
)

// DefaultDecimals используется для неизвестных и пустых кодов валют.
const DefaultDecimals = 2

// ISOPrecision возвращает стандартное число знаков после запятой из таблиц CLDR.
type ISOPrecision struct {
	fallback int
}

// NewISOPrecision создаёт источник точности; fallback < 0 заменяется на DefaultDecimals.
func NewISOPrecision(fallback int) ISOPrecision {
	if fallback < 0 {
		fallback = DefaultDecimals
	}
	return ISOPrecision{fallback: fallback}
}

// DecimalsFor возвращает точность валюты. Неизвестный код даёт значение по умолчанию.
func (p ISOPrecision) DecimalsFor(code string) int {
	code = strings.TrimSpace(code)
	if code == "" {
		return p.fallback
	}
	unit, err := currency.ParseISO(strings.ToUpper(code))
	if err != nil {
		return p.fallback
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}
