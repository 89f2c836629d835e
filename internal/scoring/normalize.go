package scoring

// DefaultTarget is the top of the canonical normalized range.
const DefaultTarget = 100.0

// NormalizeMax scales totals so the largest value equals target. When every
// total is zero (or totals is empty) all values stay zero.
func NormalizeMax(totals Totals, target float64) Totals {
	maxValue := 0.0
	for _, v := range totals {
		if v > maxValue {
			maxValue = v
		}
	}

	out := make(Totals, len(totals))
	for dim, v := range totals {
		if maxValue <= 0 || v <= 0 {
			out[dim] = 0
			continue
		}
		out[dim] = v / maxValue * target
	}
	return out
}

// NormalizeSum divides every total by the sum of all totals, with a
// denominator floor of 1. Used for similarity ranking.
func NormalizeSum(totals Totals) Totals {
	sum := 0.0
	for _, v := range totals {
		if v > 0 {
			sum += v
		}
	}
	if sum < 1 {
		sum = 1
	}

	out := make(Totals, len(totals))
	for dim, v := range totals {
		if v <= 0 {
			out[dim] = 0
			continue
		}
		out[dim] = v / sum
	}
	return out
}
