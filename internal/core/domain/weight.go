package domain

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MinWeightKg        = 30
	MaxWeightKg        = 300
	WeightNotInformed  = "Não informado"
	weightDisplayScale = 1
	weightStorageScale = 2
)

var weightInputRegex = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

var (
	minWeight = decimal.NewFromInt(MinWeightKg)
	maxWeight = decimal.NewFromInt(MaxWeightKg)
)

// ParseWeight reads a user-entered weight in kilograms. Only a dot is accepted
// as the decimal separator.
// The second return value is false for malformed or out-of-range input.
func ParseWeight(input string) (float64, bool) {
	raw := strings.TrimSpace(input)
	if !weightInputRegex.MatchString(raw) {
		return 0, false
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, false
	}

	if !inWeightRange(d) {
		return 0, false
	}

	return d.Round(weightDisplayScale).InexactFloat64(), true
}

// FormatWeight renders a weight for display, e.g. "75.0 kg".
func FormatWeight(weight *float64) string {
	if weight == nil || math.IsNaN(*weight) || math.IsInf(*weight, 0) {
		return WeightNotInformed
	}
	return decimal.NewFromFloat(*weight).StringFixed(weightDisplayScale) + " kg"
}

// WeightToDatabase rounds a weight to the precision stored in the numeric columns.
func WeightToDatabase(weight float64) (float64, bool) {
	d, ok := decimalFromFloat(weight)
	if !ok || !inWeightRange(d) {
		return 0, false
	}
	return d.Round(weightStorageScale).InexactFloat64(), true
}

// WeightFromDatabase accepts the raw value of a numeric column (string, []byte
// or any Go number) and brings it back to display precision.
func WeightFromDatabase(raw any) (float64, bool) {
	var (
		d   decimal.Decimal
		err error
		ok  = true
	)

	switch v := raw.(type) {
	case nil:
		return 0, false
	case string:
		d, err = decimal.NewFromString(strings.TrimSpace(v))
	case []byte:
		d, err = decimal.NewFromString(strings.TrimSpace(string(v)))
	case float64:
		d, ok = decimalFromFloat(v)
	case float32:
		d, ok = decimalFromFloat(float64(v))
	case int:
		d = decimal.NewFromInt(int64(v))
	case int32:
		d = decimal.NewFromInt32(v)
	case int64:
		d = decimal.NewFromInt(v)
	case decimal.Decimal:
		d = v
	default:
		return 0, false
	}

	if err != nil || !ok || !inWeightRange(d) {
		return 0, false
	}

	return d.Round(weightDisplayScale).InexactFloat64(), true
}

func decimalFromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func inWeightRange(d decimal.Decimal) bool {
	return !d.LessThan(minWeight) && !d.GreaterThan(maxWeight)
}
