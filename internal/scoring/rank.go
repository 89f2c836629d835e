package scoring

import (
	"fmt"
	"sort"

	"github.com/jonathan/raveliquar/internal/catalog"
	"github.com/jonathan/raveliquar/internal/quiz"
)

// DefaultTopN is how many ranked entries a submission keeps.
const DefaultTopN = 5

// RankedResult is a catalog entry with its similarity score.
type RankedResult struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Rank scores each entry by the dot product of its tags with totals and
// returns the top n, highest first. Entries with equal scores keep their
// input order. n <= 0 returns every entry.
func Rank(entries []catalog.Entry, totals Totals, n int) []RankedResult {
	ranked := make([]RankedResult, 0, len(entries))
	for _, e := range entries {
		ranked = append(ranked, RankedResult{
			ID:    e.ID,
			Name:  e.Name,
			Score: dot(e.Tags, totals),
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// dot only counts dimensions the entry is tagged with.
func dot(tags map[string]float64, totals Totals) float64 {
	sum := 0.0
	for dim, w := range tags {
		sum += w * totals[dim]
	}
	return sum
}

// Evaluation is the full outcome of scoring one submission.
type Evaluation struct {
	Raw        Totals         `json:"raw"`
	Normalized Totals         `json:"normalized"`
	Ranked     []RankedResult `json:"ranked"`
	Skipped    int            `json:"skipped"`
}

// Evaluator bundles the normalization target and ranking depth.
type Evaluator struct {
	Target float64
	TopN   int
}

// Evaluate scores answers with the default target and depth.
func Evaluate(bank *quiz.Bank, answers []quiz.Answer, entries []catalog.Entry, n int) Evaluation {
	return Evaluator{Target: DefaultTarget, TopN: n}.Evaluate(bank, answers, entries)
}

// Evaluate scores answers against bank, normalizes the totals to the target
// and ranks entries by similarity. Empty banks or answer sets give all-zero
// totals and an empty ranking.
func (ev Evaluator) Evaluate(bank *quiz.Bank, answers []quiz.Answer, entries []catalog.Entry) Evaluation {
	target := ev.Target
	if target <= 0 {
		target = DefaultTarget
	}

	raw, skipped := score(bank, answers)
	result := Evaluation{
		Raw:        raw,
		Normalized: NormalizeMax(raw, target),
		Ranked:     []RankedResult{},
		Skipped:    skipped,
	}

	if !hasSignal(raw) {
		return result
	}
	result.Ranked = Rank(entries, NormalizeSum(raw), ev.TopN)
	return result
}

func hasSignal(t Totals) bool {
	for _, v := range t {
		if v > 0 {
			return true
		}
	}
	return false
}

// Describe gives a short note on how strongly a ranked entry matched.
func Describe(r RankedResult) string {
	var strength string
	switch {
	case r.Score >= 0.5:
		strength = "Strong affinity"
	case r.Score >= 0.2:
		strength = "Moderate affinity"
	case r.Score > 0:
		strength = "Faint affinity"
	default:
		return fmt.Sprintf("No affinity with %s", r.Name)
	}
	return fmt.Sprintf("%s with %s (%.2f)", strength, r.Name, r.Score)
}
