package quiz

import "sort"

// Answer is one submitted response. Which fields matter depends on the
// question type; unused fields are ignored.
type Answer struct {
	QuestionID string   `json:"questionId" validate:"required"`
	ChoiceKey  string   `json:"choiceKey,omitempty"`
	ChoiceKeys []string `json:"choiceKeys,omitempty"`
	Text       string   `json:"text,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Order      []string `json:"order,omitempty"`
	Checked    *bool    `json:"checked,omitempty"`
	FileRefs   []string `json:"fileRefs,omitempty"`
}

// Keys returns the distinct chosen option keys in submission order.
func (a Answer) Keys() []string {
	var keys []string
	seen := make(map[string]bool)
	add := func(k string) {
		if k == "" || seen[k] {
			return
		}
		seen[k] = true
		keys = append(keys, k)
	}
	add(a.ChoiceKey)
	for _, k := range a.ChoiceKeys {
		add(k)
	}
	return keys
}

// Bank is a mini-test: an ordered set of questions.
type Bank struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// Question looks up a question by id.
func (b *Bank) Question(id string) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// Index maps question ids to questions.
func (b *Bank) Index() map[string]Question {
	idx := make(map[string]Question, len(b.Questions))
	for _, q := range b.Questions {
		idx[q.ID] = q
	}
	return idx
}

// Dimensions returns every dimension the bank can score, sorted.
func (b *Bank) Dimensions() []string {
	set := make(map[string]bool)
	for _, q := range b.Questions {
		for _, d := range q.Scoring {
			set[d.Dimension] = true
		}
		if choice, ok := q.Body.(ChoiceBody); ok {
			for _, o := range choice.Options {
				for _, d := range o.Scoring {
					set[d.Dimension] = true
				}
			}
		}
	}

	dims := make([]string, 0, len(set))
	for d := range set {
		if d != "" {
			dims = append(dims, d)
		}
	}
	sort.Strings(dims)
	return dims
}

// Summary is the listing view of a bank.
type Summary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description,omitempty"`
	QuestionCount int    `json:"questionCount"`
}

// Summarize returns the listing view of the bank.
func (b *Bank) Summarize() Summary {
	return Summary{
		ID:            b.ID,
		Title:         b.Title,
		Description:   b.Description,
		QuestionCount: len(b.Questions),
	}
}
