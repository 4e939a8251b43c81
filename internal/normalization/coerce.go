package normalization

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"btc-forecast/internal/domain"
)

// Volume suffix multipliers: "10K" -> 10000, "2.5M" -> 2500000, "1B" -> 1e9.
var volumeSuffixes = map[byte]float64{
	'K': 1e3,
	'M': 1e6,
	'B': 1e9,
}

// ParsePrice coerces a price field to a float. Currency symbols and
// thousands separators are tolerated: "$1,234.56" parses to 1234.56.
func ParsePrice(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.ReplaceAll(cleaned, "$", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty price", ErrDataFormat)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: price %q", ErrDataFormat, s)
	}
	return d.InexactFloat64(), nil
}

// ParseVolume coerces a volume field to an integer-valued float. Accepts
// plain numbers (with optional thousands separators) and K/M/B suffixed
// shorthand.
func ParseVolume(s string) (float64, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(s))
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty volume", ErrDataFormat)
	}

	multiplier := 1.0
	last := cleaned[len(cleaned)-1]
	if m, ok := volumeSuffixes[last]; ok {
		multiplier = m
		cleaned = cleaned[:len(cleaned)-1]
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: volume %q", ErrDataFormat, s)
	}
	return d.InexactFloat64() * multiplier, nil
}

// ParseDate parses an ISO calendar date ("2006-01-02") into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(domain.DateFormat, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrDataFormat, s)
	}
	return t, nil
}
