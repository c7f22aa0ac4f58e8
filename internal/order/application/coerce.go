package application

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// toDecimal coerces an untyped payload value into a decimal. Unparsable
// values fall back to zero with a warning; a possibly inaccurate record is
// preferred over dropping the whole order.
func (s *Service) toDecimal(raw any) decimal.Decimal {
	switch v := raw.(type) {
	case nil:
		return decimal.Zero
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err == nil {
			return d
		}
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	}
	s.log.Warn("failed to coerce value to decimal, defaulting to 0", "value", fmt.Sprint(raw))
	return decimal.Zero
}

// toInt coerces an untyped payload value into an integer with the same
// zero-fallback rule as toDecimal.
func (s *Service) toInt(raw any) int {
	switch v := raw.(type) {
	case nil:
		return 0
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case float64:
		return int(v)
	case int:
		return v
	case int64:
		return int(v)
	}
	s.log.Warn("failed to coerce value to integer, defaulting to 0", "value", fmt.Sprint(raw))
	return 0
}
