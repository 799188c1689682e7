// Package units converts recipe quantities between measurement units.
//
// Every known unit symbol maps to a multiplier against the base unit of its
// family: mass to kilograms, volume to liters, count to pieces. Unknown or
// blank symbols take a factor of 1.0, so conversion involving them is a
// silent no-op rather than an error; callers that need strictness check
// Compatible first.
package units

import "strings"

// Family groups unit symbols that convert between each other.
type Family string

const (
	FamilyMass    Family = "mass"
	FamilyVolume  Family = "volume"
	FamilyCount   Family = "count"
	FamilyUnknown Family = "unknown"
)

// Unit symbols accepted in recipes and inventory records.
const (
	// Mass units, base kilogram
	UnitMilligram = "mg"
	UnitGram      = "g"
	UnitKilogram  = "kg"
	UnitOunce     = "oz"
	UnitPound     = "lb"

	// Volume units, base liter
	UnitMilliliter = "ml"
	UnitLiter      = "l"
	UnitTeaspoon   = "tsp"
	UnitTablespoon = "tbsp"
	UnitCup        = "cup"
	UnitFluidOunce = "fl_oz"
	UnitGallon     = "gal"

	// Count units, base piece
	UnitPiece = "pc"
	UnitDozen = "dozen"
)

type unitInfo struct {
	family Family
	factor float64 // multiplier to the family base unit
}

var table = map[string]unitInfo{
	UnitMilligram: {FamilyMass, 0.000001},
	UnitGram:      {FamilyMass, 0.001},
	UnitKilogram:  {FamilyMass, 1},
	UnitOunce:     {FamilyMass, 0.0283495},
	UnitPound:     {FamilyMass, 0.453592},

	UnitMilliliter: {FamilyVolume, 0.001},
	UnitLiter:      {FamilyVolume, 1},
	UnitTeaspoon:   {FamilyVolume, 0.00492892},
	UnitTablespoon: {FamilyVolume, 0.0147868},
	UnitCup:        {FamilyVolume, 0.24},
	UnitFluidOunce: {FamilyVolume, 0.0295735},
	UnitGallon:     {FamilyVolume, 3.78541},

	UnitPiece: {FamilyCount, 1},
	UnitDozen: {FamilyCount, 12},
}

// Spelled-out and plural forms folded onto canonical symbols.
var synonyms = map[string]string{
	"milligram":   UnitMilligram,
	"milligrams":  UnitMilligram,
	"gram":        UnitGram,
	"grams":       UnitGram,
	"kilogram":    UnitKilogram,
	"kilograms":   UnitKilogram,
	"kgs":         UnitKilogram,
	"ounce":       UnitOunce,
	"ounces":      UnitOunce,
	"pound":       UnitPound,
	"pounds":      UnitPound,
	"lbs":         UnitPound,
	"milliliter":  UnitMilliliter,
	"milliliters": UnitMilliliter,
	"liter":       UnitLiter,
	"liters":      UnitLiter,
	"litre":       UnitLiter,
	"litres":      UnitLiter,
	"teaspoon":    UnitTeaspoon,
	"teaspoons":   UnitTeaspoon,
	"tablespoon":  UnitTablespoon,
	"tablespoons": UnitTablespoon,
	"cups":        UnitCup,
	"floz":        UnitFluidOunce,
	"gallon":      UnitGallon,
	"gallons":     UnitGallon,
	"piece":       UnitPiece,
	"pieces":      UnitPiece,
	"pcs":         UnitPiece,
	"unit":        UnitPiece,
	"units":       UnitPiece,
	"each":        UnitPiece,
	"ea":          UnitPiece,
}

// Normalize lowercases and trims a unit symbol and folds known synonyms
// onto their canonical form. Unrecognized symbols pass through unchanged.
func Normalize(symbol string) string {
	s := strings.ToLower(strings.TrimSpace(symbol))
	if canonical, ok := synonyms[s]; ok {
		return canonical
	}
	return s
}

// FamilyOf returns the unit family of a symbol, or FamilyUnknown for
// symbols missing from the table.
func FamilyOf(symbol string) Family {
	if info, ok := table[Normalize(symbol)]; ok {
		return info.family
	}
	return FamilyUnknown
}

// Compatible reports whether two symbols may be converted between without
// producing a nonsensical result. Unknown symbols are treated as
// compatible with anything: they convert with factor 1.0 and the result
// stays deterministic.
func Compatible(a, b string) bool {
	fa, fb := FamilyOf(a), FamilyOf(b)
	if fa == FamilyUnknown || fb == FamilyUnknown {
		return true
	}
	return fa == fb
}

// Convert returns qty expressed in the target unit. Identical symbols
// (after normalization) short-circuit to the input. Either symbol being
// unknown contributes a factor of 1.0. Families are not cross-checked
// here; see Compatible.
func Convert(qty float64, from, to string) float64 {
	src, dst := Normalize(from), Normalize(to)
	if src == dst {
		return qty
	}
	return qty * factor(src) / factor(dst)
}

func factor(symbol string) float64 {
	if info, ok := table[symbol]; ok {
		return info.factor
	}
	return 1.0
}
