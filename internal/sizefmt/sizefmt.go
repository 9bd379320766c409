// Package sizefmt turns byte counts into strings such as "1.50 GB".
package sizefmt

import (
	"fmt"
	"strings"
)

// UnitSystem is the factor between consecutive units.
type UnitSystem int

const (
	// Decimal uses powers of 1000.
	Decimal UnitSystem = 1000
	// Binary uses powers of 1024. Labels stay "KB", "MB", ...
	Binary UnitSystem = 1024
)

// Auto lets Format pick the unit from the magnitude.
const Auto = -1

// Units are the labels from bytes to petabytes, indexed by exponent.
var Units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Format renders bytes with the given number of decimals.
//
// With forcedUnit >= 0 the value is divided by system^forcedUnit and labelled
// with that unit whatever its magnitude; out-of-range units are clamped.
// With forcedUnit < 0 the value is divided while it is at least one factor
// and a larger unit exists.
func Format(bytes uint64, decimals int, system UnitSystem, forcedUnit int) string {
	if decimals < 0 {
		decimals = 0
	}
	factor := float64(system)
	if factor <= 1 {
		factor = float64(Binary)
	}

	value := float64(bytes)
	unit := 0
	if forcedUnit >= 0 {
		if forcedUnit >= len(Units) {
			forcedUnit = len(Units) - 1
		}
		for unit < forcedUnit {
			value /= factor
			unit++
		}
	} else {
		for value >= factor && unit < len(Units)-1 {
			value /= factor
			unit++
		}
	}

	return fmt.Sprintf("%.*f %s", decimals, value, Units[unit])
}

// ParseUnit maps a unit label (case-insensitive) to its index. An empty
// string or "auto" yields Auto.
func ParseUnit(s string) (int, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == "AUTO" {
		return Auto, nil
	}
	for i, u := range Units {
		if s == u {
			return i, nil
		}
	}
	return Auto, fmt.Errorf("invalid unit %q (expected one of %s)", s, strings.Join(Units, ", "))
}

// Formatter bundles formatting options for repeated use. Unit is a label
// from Units; an empty or unknown label picks the unit automatically, so the
// zero Formatter renders like "1 KB" with the binary factor.
type Formatter struct {
	Decimals int
	System   UnitSystem
	Unit     string
}

// DefaultFormatter is two decimals, binary factor, automatic unit.
func DefaultFormatter() Formatter {
	return Formatter{Decimals: 2, System: Binary}
}

// Format formats a size. Negative sizes render as zero.
func (f Formatter) Format(size int64) string {
	if size < 0 {
		size = 0
	}
	unit, err := ParseUnit(f.Unit)
	if err != nil {
		unit = Auto
	}
	return Format(uint64(size), f.Decimals, f.System, unit)
}
