package cart

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// UnitType classifies the unit family of a line item. It selects the
// conversion table that applies and whether fractional quantities make sense
// (weight/volume/length items are sold in 2-decimal fractions; unit items are
// whole pieces at the UI level).
type UnitType string

const (
	UnitTypeUnit   UnitType = "unit"
	UnitTypeWeight UnitType = "weight"
	UnitTypeVolume UnitType = "volume"
	UnitTypeLength UnitType = "length"
)

// Convertible reports whether lines of this type support editing in an
// alternate display unit. Discrete pieces have nothing to convert.
func (t UnitType) Convertible() bool {
	return t == UnitTypeWeight || t == UnitTypeVolume || t == UnitTypeLength
}

// unitFactor maps a unit label to its family and its size expressed in the
// family's reference unit (kg, L, m, pcs). Conversion between two labels is
// qty × factor(from) ÷ factor(to).
type unitFactor struct {
	unitType UnitType
	factor   decimal.Decimal
}

var unitTable = map[string]unitFactor{
	"kg": {UnitTypeWeight, decimal.NewFromInt(1)},
	"g":  {UnitTypeWeight, decimal.New(1, -3)}, // 0.001
	"L":  {UnitTypeVolume, decimal.NewFromInt(1)},
	"ml": {UnitTypeVolume, decimal.New(1, -3)},
	"m":  {UnitTypeLength, decimal.NewFromInt(1)},
	"cm": {UnitTypeLength, decimal.New(1, -2)}, // 0.01
	// "units" is a cosmetic alias for pieces — identity conversion.
	"pcs":   {UnitTypeUnit, decimal.NewFromInt(1)},
	"units": {UnitTypeUnit, decimal.NewFromInt(1)},
}

// UnitsFor returns the unit labels a line of the given type may be displayed
// in, reference unit first. Used to populate unit selectors.
func UnitsFor(t UnitType) []string {
	switch t {
	case UnitTypeWeight:
		return []string{"kg", "g"}
	case UnitTypeVolume:
		return []string{"L", "ml"}
	case UnitTypeLength:
		return []string{"m", "cm"}
	default:
		return []string{"pcs", "units"}
	}
}

// TypeOfUnit resolves the family of a unit label. Unknown labels are treated
// as discrete pieces, matching how unlabeled catalog entries behave.
func TypeOfUnit(label string) UnitType {
	if f, ok := unitTable[label]; ok {
		return f.unitType
	}
	return UnitTypeUnit
}

// ConvertUnit converts a quantity between two units of the same family.
// Cross-family conversion (e.g. kg → L) is a caller error and is rejected;
// callers always pick both labels from the same UnitsFor list.
func ConvertUnit(qty decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return qty, nil
	}
	ff, ok := unitTable[from]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown unit %q", from)
	}
	tf, ok := unitTable[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("unknown unit %q", to)
	}
	if ff.unitType != tf.unitType {
		return decimal.Zero, fmt.Errorf("cannot convert %s to %s: different unit families", from, to)
	}
	return qty.Mul(ff.factor).Div(tf.factor), nil
}
