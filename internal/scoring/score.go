// Package scoring turns answers into per-dimension totals and ranks catalog
// entries against them.
package scoring

import (
	"github.com/jonathan/raveliquar/internal/quiz"
)

// Totals maps a dimension name to its accumulated score.
type Totals map[string]float64

// Score sums the weighted contributions of answers against bank. Answers for
// questions not in the bank are skipped. Every dimension the bank can score is
// present in the result, zero when nothing contributed to it.
func Score(bank *quiz.Bank, answers []quiz.Answer) Totals {
	totals, _ := score(bank, answers)
	return totals
}

func score(bank *quiz.Bank, answers []quiz.Answer) (Totals, int) {
	totals := make(Totals)
	if bank == nil {
		return totals, len(answers)
	}
	for _, dim := range bank.Dimensions() {
		totals[dim] = 0
	}

	index := bank.Index()
	skipped := 0
	for _, a := range answers {
		q, ok := index[a.QuestionID]
		if !ok {
			skipped++
			continue
		}
		for _, d := range answerDeltas(q, a) {
			if d.Dimension == "" {
				continue
			}
			totals[d.Dimension] += d.Weight
		}
	}
	return totals, skipped
}

// answerDeltas returns the weighted deltas one answer contributes. Weights are
// already scaled by the answer's factor and clamped at zero.
func answerDeltas(q quiz.Question, a quiz.Answer) []quiz.Delta {
	switch body := q.Body.(type) {
	case quiz.ChoiceBody:
		keys := a.Keys()
		if len(keys) == 0 {
			return scaled(q.Scoring, 1)
		}
		if !body.Multi {
			keys = keys[:1]
		}
		var out []quiz.Delta
		for _, key := range keys {
			opt, ok := body.Option(key)
			if !ok {
				continue
			}
			if len(opt.Scoring) > 0 {
				out = append(out, scaled(opt.Scoring, 1)...)
			} else {
				out = append(out, scaled(q.Scoring, 1)...)
			}
		}
		return out
	case quiz.LikertBody:
		return scaled(q.Scoring, valueFactor(a.Value, body.Min, body.Max))
	case quiz.ScaleBody:
		return scaled(q.Scoring, valueFactor(a.Value, body.Min, body.Max))
	case quiz.CheckBody:
		if a.Checked != nil && !*a.Checked {
			return nil
		}
		return scaled(q.Scoring, 1)
	case quiz.FillBlankBody, quiz.TextBody, quiz.UploadBody, quiz.RankBody:
		return scaled(q.Scoring, 1)
	default:
		return nil
	}
}

// valueFactor maps a point on [lo, hi] to [0, 1]. Without a value the answer
// counts in full.
func valueFactor(v *float64, lo, hi float64) float64 {
	if v == nil || hi <= lo {
		return 1
	}
	f := (*v - lo) / (hi - lo)
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}

func scaled(deltas quiz.Deltas, factor float64) []quiz.Delta {
	out := make([]quiz.Delta, 0, len(deltas))
	for _, d := range deltas {
		w := d.Weight * factor
		if w < 0 {
			w = 0
		}
		out = append(out, quiz.Delta{Dimension: d.Dimension, Weight: w})
	}
	return out
}
