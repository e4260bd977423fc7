package pricing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amounts are carried as int64 minor units (cents) end to end. Raw
// submissions may carry prices as JSON numbers or as strings with up to
// two decimals; both are converted here, at the boundary.

// Tolerance is the maximum acceptable difference, in minor units, between
// a client-supplied price and the stored price (0.01 currency units).
const Tolerance int64 = 1

// ParseAmount converts a raw price value into minor units.
func ParseAmount(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		return int64(math.Round(v * 100)), nil
	case float32:
		return int64(math.Round(float64(v) * 100)), nil
	case int:
		return int64(v) * 100, nil
	case int64:
		return v * 100, nil
	case json.Number:
		return parseDecimal(v.String())
	case string:
		return parseDecimal(v)
	default:
		return 0, fmt.Errorf("unsupported price value %v", value)
	}
}

// ParseCount converts a raw quantity value into an integer count.
func ParseCount(value any) (int64, error) {
	switch v := value.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("count %v is not an integer", value)
		}
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case json.Number:
		return v.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	default:
		return 0, fmt.Errorf("unsupported count value %v", value)
	}
}

// FormatAmount renders minor units as a fixed two-decimal string.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

func parseDecimal(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty price value")
	}

	negative := false
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}

	whole, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		whole, frac = s[:idx], s[idx+1:]
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("price %q has more than two decimals", raw)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", raw)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", raw)
	}

	minor := units*100 + cents
	if negative {
		minor = -minor
	}
	return minor, nil
}

// WithinTolerance reports whether two amounts differ by at most Tolerance.
func WithinTolerance(a, b int64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= Tolerance
}
