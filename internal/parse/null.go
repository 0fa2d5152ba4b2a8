package parse

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

// NullDate parses s into a nullable date.
func NullDate(s string) sql.NullTime {
	t, ok := Date(s)
	return sql.NullTime{Time: t, Valid: ok}
}

func FormatNullDate(d sql.NullTime) string {
	return FormatDate(d.Time, d.Valid)
}

// NullCurrency parses s into a nullable amount.
func NullCurrency(s string) decimal.NullDecimal {
	d, ok := Currency(s)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

func FormatNullCurrency(d decimal.NullDecimal) string {
	return FormatCurrency(d.Decimal, d.Valid)
}

// NullNumber parses s into a nullable plain number.
func NullNumber(s string) decimal.NullDecimal {
	d, ok := Number(s)
	return decimal.NullDecimal{Decimal: d, Valid: ok}
}

func FormatNullNumber(d decimal.NullDecimal) string {
	return FormatNumber(d.Decimal, d.Valid)
}
