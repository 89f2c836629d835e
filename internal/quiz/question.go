// Package quiz defines the question bank and answer model used by mini-tests.
package quiz

import (
	"encoding/json"
	"fmt"
)

// Type names a question variant as it appears in bank files.
type Type string

// Known question types
const (
	TypeSingle    Type = "single"
	TypeMulti     Type = "multi"
	TypeFillBlank Type = "fill_blank"
	TypeText      Type = "text"
	TypeUpload    Type = "upload"
	TypeLikert    Type = "likert"
	TypeScale     Type = "scale"
	TypeRank      Type = "rank"
	TypeCheck     Type = "check"
)

// Types lists every question type in a stable order.
func Types() []Type {
	return []Type{TypeSingle, TypeMulti, TypeFillBlank, TypeText, TypeUpload, TypeLikert, TypeScale, TypeRank, TypeCheck}
}

// Delta is one weighted contribution to a personality dimension.
type Delta struct {
	Dimension string  `json:"dimension"`
	Weight    float64 `json:"weight"`
}

// Deltas accepts either a single {dimension, weight} object or an array of them.
type Deltas []Delta

// UnmarshalJSON implements json.Unmarshaler
func (d *Deltas) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = nil
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var single Delta
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*d = Deltas{single}
		return nil
	}
	var many []Delta
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*d = many
	return nil
}

// Option is a selectable choice. Scoring, when present, replaces the
// question-level scoring for answers that pick this option.
type Option struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Scoring Deltas `json:"scoring,omitempty"`
}

// Body is the type-specific part of a question. The set of implementations is
// closed; each one corresponds to exactly one Type (ChoiceBody covers two).
type Body interface {
	Type() Type
	body()
}

// ChoiceBody backs single and multi choice questions.
type ChoiceBody struct {
	Multi   bool
	Options []Option
}

// FillBlankBody is a sentence with one or more blanks.
type FillBlankBody struct {
	Blanks int
}

// TextBody is a free-text answer.
type TextBody struct {
	MaxLength int
}

// UploadBody asks for a file reference; files themselves are not stored.
type UploadBody struct {
	Accept []string
}

// LikertBody is an agreement scale with labelled points.
type LikertBody struct {
	Min, Max float64
	Labels   []string
}

// ScaleBody is a numeric slider.
type ScaleBody struct {
	Min, Max, Step float64
}

// RankBody asks the user to order items.
type RankBody struct {
	Items []string
}

// CheckBody is a single checkbox.
type CheckBody struct {
	Label string
}

func (b ChoiceBody) Type() Type {
	if b.Multi {
		return TypeMulti
	}
	return TypeSingle
}
func (FillBlankBody) Type() Type { return TypeFillBlank }
func (TextBody) Type() Type { return TypeText }
func (UploadBody) Type() Type { return TypeUpload }
func (LikertBody) Type() Type { return TypeLikert }
func (ScaleBody) Type() Type { return TypeScale }
func (RankBody) Type() Type { return TypeRank }
func (CheckBody) Type() Type { return TypeCheck }

func (ChoiceBody) body() {}
func (FillBlankBody) body() {}
func (TextBody) body() {}
func (UploadBody) body() {}
func (LikertBody) body() {}
func (ScaleBody) body() {}
func (RankBody) body() {}
func (CheckBody) body() {}

// Option returns the option with the given key.
func (b ChoiceBody) Option(key string) (Option, bool) {
	for _, o := range b.Options {
		if o.Key == key {
			return o, true
		}
	}
	return Option{}, false
}

// Question is immutable bank content.
type Question struct {
	ID      string
	Prompt  string
	Scoring Deltas
	Body    Body
}

// Type returns the question's variant.
func (q Question) Type() Type {
	if q.Body == nil {
		return ""
	}
	return q.Body.Type()
}

// UnknownTypeError is returned when a bank names a question type this package does not know.
type UnknownTypeError struct {
	QuestionID string
	Type       Type
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("question %s: unknown type %q", e.QuestionID, e.Type)
}

// questionJSON is the flat wire form of a Question.
type questionJSON struct {
	ID        string   `json:"id"`
	Type      Type     `json:"type"`
	Prompt    string   `json:"prompt"`
	Scoring   Deltas   `json:"scoring,omitempty"`
	Options   []Option `json:"options,omitempty"`
	Blanks    int      `json:"blanks,omitempty"`
	MaxLength int      `json:"maxLength,omitempty"`
	Accept    []string `json:"accept,omitempty"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	Step      float64  `json:"step,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Items     []string `json:"items,omitempty"`
	Label     string   `json:"label,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	body, err := raw.toBody()
	if err != nil {
		return err
	}

	*q = Question{
		ID:      raw.ID,
		Prompt:  raw.Prompt,
		Scoring: raw.Scoring,
		Body:    body,
	}
	return nil
}

func (raw questionJSON) toBody() (Body, error) {
	switch raw.Type {
	case TypeSingle, TypeMulti:
		return ChoiceBody{Multi: raw.Type == TypeMulti, Options: raw.Options}, nil
	case TypeFillBlank:
		blanks := raw.Blanks
		if blanks == 0 {
			blanks = 1
		}
		return FillBlankBody{Blanks: blanks}, nil
	case TypeText:
		return TextBody{MaxLength: raw.MaxLength}, nil
	case TypeUpload:
		return UploadBody{Accept: raw.Accept}, nil
	case TypeLikert:
		lo, hi := bounds(raw.Min, raw.Max, 1, 5)
		return LikertBody{Min: lo, Max: hi, Labels: raw.Labels}, nil
	case TypeScale:
		lo, hi := bounds(raw.Min, raw.Max, 0, 10)
		step := raw.Step
		if step == 0 {
			step = 1
		}
		return ScaleBody{Min: lo, Max: hi, Step: step}, nil
	case TypeRank:
		return RankBody{Items: raw.Items}, nil
	case TypeCheck:
		return CheckBody{Label: raw.Label}, nil
	default:
		return nil, &UnknownTypeError{QuestionID: raw.ID, Type: raw.Type}
	}
}

func bounds(lo, hi *float64, defLo, defHi float64) (float64, float64) {
	l, h := defLo, defHi
	if lo != nil {
		l = *lo
	}
	if hi != nil {
		h = *hi
	}
	return l, h
}

// MarshalJSON implements json.Marshaler
func (q Question) MarshalJSON() ([]byte, error) {
	raw := questionJSON{
		ID:      q.ID,
		Type:    q.Type(),
		Prompt:  q.Prompt,
		Scoring: q.Scoring,
	}

	switch b := q.Body.(type) {
	case ChoiceBody:
		raw.Options = b.Options
	case FillBlankBody:
		raw.Blanks = b.Blanks
	case TextBody:
		raw.MaxLength = b.MaxLength
	case UploadBody:
		raw.Accept = b.Accept
	case LikertBody:
		raw.Min, raw.Max = &b.Min, &b.Max
		raw.Labels = b.Labels
	case ScaleBody:
		raw.Min, raw.Max = &b.Min, &b.Max
		raw.Step = b.Step
	case RankBody:
		raw.Items = b.Items
	case CheckBody:
		raw.Label = b.Label
	case nil:
		return nil, fmt.Errorf("question %s has no body", q.ID)
	}

	return json.Marshal(raw)
}
