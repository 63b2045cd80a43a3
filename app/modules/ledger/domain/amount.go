package ledgerdomain

import (
	"strconv"
)

// MinorUnitsPerWhole is the number of minor units in one whole coin.
const MinorUnitsPerWhole = 100

// Amount is a quantity of the reward currency in minor units. All ledger
// arithmetic happens on this integer; there is no fractional representation.
type Amount int64

// FromWhole converts whole coins to minor units.
func FromWhole(units int64) Amount {
	return Amount(units * MinorUnitsPerWhole)
}

// Whole is the truncated whole-coin part.
func (a Amount) Whole() int64 {
	return int64(a) / MinorUnitsPerWhole
}

// Minor is the remainder in minor units, carrying the sign of a.
func (a Amount) Minor() int64 {
	return int64(a) % MinorUnitsPerWhole
}

// String renders a plain decimal such as "12.34" or "-0.05".
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / MinorUnitsPerWhole
	minor := v % MinorUnitsPerWhole
	cents := strconv.FormatInt(minor, 10)
	if minor < 10 {
		cents = "0" + cents
	}
	return sign + strconv.FormatInt(whole, 10) + "." + cents
}
