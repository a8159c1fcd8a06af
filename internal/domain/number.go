package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// WholeNumber decodes any JSON number without a fractional part, so 5 and
// 5.0 are the same item. Strings and fractions are rejected.
type WholeNumber int64

func (n *WholeNumber) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		return fmt.Errorf("%s is not a number", data)
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}

	if i, err := num.Int64(); err == nil {
		*n = WholeNumber(i)
		return nil
	}

	f, err := num.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return fmt.Errorf("%s is not a whole number", data)
	}
	*n = WholeNumber(f)
	return nil
}
