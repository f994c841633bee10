package models

import "github.com/shopspring/decimal"

// Percent returns pct percent of amount, rounded half away from zero.
func Percent(amount, pct int) int {
	return int(decimal.NewFromInt(int64(amount)).
		Mul(decimal.NewFromInt(int64(pct))).
		Div(decimal.NewFromInt(100)).
		Round(0).IntPart())
}

// Half returns amount/2 truncated toward zero.
func Half(amount int) int {
	return int(decimal.NewFromInt(int64(amount)).Div(decimal.NewFromInt(2)).Truncate(0).IntPart())
}

// WithInterest scales amount by (1 + interest/100) and rounds to a whole unit.
func WithInterest(amount, interest int) int {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromInt(int64(interest)).Div(decimal.NewFromInt(100)))
	return int(decimal.NewFromInt(int64(amount)).Mul(factor).Round(0).IntPart())
}
