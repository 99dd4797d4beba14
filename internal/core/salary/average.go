package salary

import (
	"encoding/json"
	"log/slog"

	"github.com/shopspring/decimal"
)

// ComputeAverage returns the mean total compensation over the given offers,
// rounded half-up to 2 decimal places.
//
// Each offer's total is base + bonus + stock from its salary structure JSON;
// missing or non-numeric components count as zero. Offers whose structure
// fails to parse, or whose total is not strictly positive, are excluded from
// both the sum and the sample count — they are dropped, not zero-filled, so
// garbage rows cannot drag a dimension's average toward zero.
//
// Returns decimal.Zero when no offer yields a valid sample.
func ComputeAverage(offers []Offer) decimal.Decimal {
	total := decimal.Zero
	validCount := 0

	for _, offer := range offers {
		var structure map[string]interface{}
		if err := json.Unmarshal([]byte(offer.SalaryStructure), &structure); err != nil {
			slog.Error("[Aggregation] Failed to parse salary structure",
				"offer_id", offer.ID,
				"error", err,
			)
			continue
		}

		offerTotal := extractDecimal(structure["base"]).
			Add(extractDecimal(structure["bonus"])).
			Add(extractDecimal(structure["stock"]))

		if offerTotal.IsPositive() {
			total = total.Add(offerTotal)
			validCount++
		}
	}

	if validCount == 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(validCount)), 2)
}

// GroupBy partitions offers by the key function. Offers within a group keep
// their input order; key iteration order is unspecified.
func GroupBy(offers []Offer, keyFn func(Offer) string) map[string][]Offer {
	groups := make(map[string][]Offer)
	for _, offer := range offers {
		key := keyFn(offer)
		groups[key] = append(groups[key], offer)
	}
	return groups
}

// extractDecimal coerces a decoded JSON value to a decimal.
// Returns decimal.Zero for nil, unrecognized types, or unparseable strings.
// JSON numbers unmarshal to float64 in Go — that's the common path.
func extractDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case float64:
		return decimal.NewFromFloat(val)
	case float32:
		return decimal.NewFromFloat(float64(val))
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err == nil {
			return d
		}
	case string:
		d, err := decimal.NewFromString(val)
		if err == nil {
			return d
		}
	}
	return decimal.Zero
}
