package utils

import (
	"github.com/shopspring/decimal"
	"gopkg.in/inf.v0"
)

// ToInfDec convertit un montant pour une colonne CQL decimal.
func ToInfDec(d decimal.Decimal) *inf.Dec {
	return inf.NewDecBig(d.Coefficient(), inf.Scale(-d.Exponent()))
}

// FromInfDec relit une colonne CQL decimal. nil vaut zéro.
func FromInfDec(x *inf.Dec) decimal.Decimal {
	if x == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(x.UnscaledBig(), -int32(x.Scale()))
}

// ToCents convertit un montant en centimes (Stripe).
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
