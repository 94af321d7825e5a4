package currency

import (
	"database/sql/driver"
	"errors"
)

// Currency is an ISO 4217 code. All amounts in the store are whole units of it.
type Currency string

const (
	CurrencyDZD Currency = "DZD"
)

var ErrInvalidCurrency = errors.New("invalid currency")

func (c Currency) String() string {
	return string(c)
}

func (c Currency) Value() (driver.Value, error) {
	return c.String(), nil
}

func ParseCurrency(s string) (Currency, error) {
	switch s {
	case CurrencyDZD.String():
		return CurrencyDZD, nil
	default:
		return "", ErrInvalidCurrency
	}
}
