package fee

import "github.com/shopspring/decimal"

// Split divides a gross amount (minor currency units) between the
// platform and the creator under the given commission percent.
// The fee is rounded half-up; the payout absorbs the remainder so
// fee+payout always equals gross exactly.
func Split(grossMinorUnits int64, commissionPercent float64) (fee int64, payout int64) {
	f := decimal.NewFromInt(grossMinorUnits).
		Mul(decimal.NewFromFloat(commissionPercent)).
		Div(decimal.NewFromInt(100)).
		Round(0).
		IntPart()

	return f, grossMinorUnits - f
}
