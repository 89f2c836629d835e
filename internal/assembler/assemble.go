// Package assembler builds the deterministic Raveliquar result for a completed run.
package assembler

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/raveliquar/internal/rng"
)

// Version is recorded in every result's provenance.
const Version = "v1"

// SeedTimeLayout formats completedAt inside the run seed.
const SeedTimeLayout = "2006-01-02T15:04:05.000Z"

// NarrativeAxis pairs one shadow aspect with its luminary counterpart.
type NarrativeAxis struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Shadow   Aspect `json:"shadow"`
	Luminary Aspect `json:"luminary"`
	Tension  string `json:"tension"`
}

// IntegrationAxis names the dominant and stabilizing axes.
type IntegrationAxis struct {
	Dominant    NarrativeAxis `json:"dominant"`
	Stabilizing NarrativeAxis `json:"stabilizing"`
	Statement   string        `json:"statement"`
}

// Summary is the short interpretive reading of a result.
type Summary struct {
	CoreTheme   string `json:"coreTheme"`
	Gift        string `json:"gift"`
	Challenge   string `json:"challenge"`
	Integration string `json:"integration"`
	Invitation  string `json:"invitation"`
}

// Provenance records how a result was produced.
type Provenance struct {
	Seed        string    `json:"seed"`
	Version     string    `json:"version"`
	CompletedAt time.Time `json:"completedAt"`
}

// Result is the assembled Raveliquar for one run. It is stored once and never
// recomputed.
type Result struct {
	UserID                  string          `json:"userId"`
	RunID                   string          `json:"runId"`
	CompletedAt             time.Time       `json:"completedAt"`
	LegendaryRaveliquarName string          `json:"legendaryRaveliquarName"`
	LegendNarrative         []string        `json:"legendNarrative"`
	ArtistArchetype         Artist          `json:"artistArchetype"`
	ShadowAspects           []Aspect        `json:"shadowAspects"`
	LuminaryAspects         []Aspect        `json:"luminaryAspects"`
	NarrativeAxes           []NarrativeAxis `json:"narrativeAxes"`
	IntegrationAxis         IntegrationAxis `json:"integrationAxis"`
	RaveliquarithSummary    Summary         `json:"raveliquarithSummary"`
	Provenance              Provenance      `json:"provenance"`
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithClock sets the clock used when no completion time is supplied.
func WithClock(now func() time.Time) Option {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithLogger sets the assembler's logger.
func WithLogger(logger *zap.Logger) Option {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// Assembler selects result content from a Library. It holds no mutable state
// and is safe for concurrent use.
type Assembler struct {
	lib    Library
	now    func() time.Time
	logger *zap.Logger
}

// New creates an assembler over lib.
func New(lib Library, opts ...Option) *Assembler {
	a := &Assembler{
		lib:    lib,
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds a result with the default library.
func Assemble(userID, runID string, completedAt *time.Time) (*Result, error) {
	return New(DefaultLibrary()).Assemble(userID, runID, completedAt)
}

// Seed returns the run seed for the given identifiers.
func Seed(userID, runID string, completedAt time.Time) string {
	return fmt.Sprintf("%s:%s:%s", userID, runID, completedAt.UTC().Format(SeedTimeLayout))
}

// Assemble builds the result for a run. The same userID, runID and
// completedAt always produce the same result. When completedAt is nil the
// assembler's clock is used and recorded in the result.
func (a *Assembler) Assemble(userID, runID string, completedAt *time.Time) (*Result, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}
	if strings.TrimSpace(runID) == "" {
		return nil, ErrMissingRunID
	}

	var at time.Time
	if completedAt != nil {
		at = *completedAt
	} else {
		at = a.now()
	}
	at = at.UTC().Truncate(time.Millisecond)

	seed := Seed(userID, runID, at)
	root := rng.New(seed)

	shadows, err := selectAspects(root, "shadow", a.lib.Shadows, shadowCategories)
	if err != nil {
		return nil, err
	}
	luminaries, err := selectAspects(root, "luminary", a.lib.Luminaries, luminaryCategories)
	if err != nil {
		return nil, err
	}

	axes, err := pairAxes(shadows, luminaries)
	if err != nil {
		return nil, err
	}

	artist, err := rng.Pick(root.Derive(":artist"), a.lib.Artists)
	if err != nil {
		return nil, &DataIntegrityError{Field: "artists", Message: "pool is empty"}
	}

	dominant, stabilizing, err := pickAxisPair(root.Derive(":axes"), len(axes))
	if err != nil {
		return nil, err
	}

	title, err := a.pickTitle(root.Derive(":title"), artist.Family)
	if err != nil {
		return nil, err
	}
	domain, err := a.composeDomain(root.Derive(":domain"))
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("The %s of %s", title, domain)

	integration := IntegrationAxis{
		Dominant:    axes[dominant],
		Stabilizing: axes[stabilizing],
		Statement: fmt.Sprintf("%s leads; %s steadies.",
			axes[dominant].Name, axes[stabilizing].Name),
	}

	result := &Result{
		UserID:                  userID,
		RunID:                   runID,
		CompletedAt:             at,
		LegendaryRaveliquarName: name,
		LegendNarrative:         narrative(name, artist, integration),
		ArtistArchetype:         artist,
		ShadowAspects:           shadows,
		LuminaryAspects:         luminaries,
		NarrativeAxes:           axes,
		IntegrationAxis:         integration,
		RaveliquarithSummary:    summarize(name, artist, integration),
		Provenance: Provenance{
			Seed:        seed,
			Version:     Version,
			CompletedAt: at,
		},
	}

	a.logger.Debug("result assembled",
		zap.String("user_id", userID),
		zap.String("run_id", runID),
		zap.String("name", name),
	)
	return result, nil
}

// selectAspects picks exactly one aspect per category, in category order.
func selectAspects(root *rng.Source, field string, library []Aspect, categories []string) ([]Aspect, error) {
	selected := make([]Aspect, 0, len(categories))
	for _, cat := range categories {
		candidates := byCategory(library, cat)
		aspect, err := rng.Pick(root.Derive(":"+field+":"+cat), candidates)
		if err != nil {
			return nil, &DataIntegrityError{Field: field, Category: cat, Message: "no aspects in category"}
		}
		selected = append(selected, aspect)
	}
	return selected, nil
}

func pairAxes(shadows, luminaries []Aspect) ([]NarrativeAxis, error) {
	byCat := make(map[string]Aspect, len(luminaries))
	for _, l := range luminaries {
		byCat[l.Category] = l
	}

	axes := make([]NarrativeAxis, 0, len(shadows))
	for i, s := range shadows {
		target, ok := axisPairs[s.Category]
		if !ok {
			return nil, &DataIntegrityError{Field: "axis", Category: s.Category, Message: "no pairing"}
		}
		l, ok := byCat[target]
		if !ok {
			return nil, &DataIntegrityError{Field: "axis", Category: s.Category, Message: fmt.Sprintf("paired luminary %q not selected", target)}
		}
		axes = append(axes, NarrativeAxis{
			Index:    i,
			Name:     fmt.Sprintf("%s to %s", s.Category, l.Category),
			Shadow:   s,
			Luminary: l,
			Tension:  fmt.Sprintf("Between %s and %s", s.Name, l.Name),
		})
	}
	return axes, nil
}

// maxRerolls bounds the search for a distinct stabilizing axis.
const maxRerolls = 64

// pickAxisPair returns two distinct indices in [0,n).
func pickAxisPair(src *rng.Source, n int) (int, int, error) {
	if n < 2 {
		return 0, 0, &DataIntegrityError{Field: "axes", Message: fmt.Sprintf("need at least two axes, have %d", n)}
	}
	first := src.Intn(n)
	second := src.Intn(n)
	for i := 0; second == first && i < maxRerolls; i++ {
		second = src.Intn(n)
	}
	if second == first {
		second = (first + 1) % n
	}
	return first, second, nil
}

func (a *Assembler) pickTitle(src *rng.Source, family string) (string, error) {
	if titles := a.lib.FamilyTitles[family]; len(titles) > 0 {
		return rng.Pick(src, titles)
	}
	title, err := rng.Pick(src, a.lib.TitlePool)
	if err != nil {
		return "", &DataIntegrityError{Field: "titlePool", Message: "pool is empty"}
	}
	return title, nil
}

// composeDomain builds the "of ..." part of the name from one of three patterns.
func (a *Assembler) composeDomain(src *rng.Source) (string, error) {
	l := a.lib
	if len(l.Adjectives) == 0 || len(l.Places) == 0 || len(l.Nouns) < 2 {
		return "", &DataIntegrityError{Field: "domain", Message: "word pools are too small"}
	}

	switch src.Intn(3) {
	case 0:
		adj, _ := rng.Pick(src, l.Adjectives)
		noun, _ := rng.Pick(src, l.Nouns)
		return adj + " " + noun, nil
	case 1:
		pair := rng.PickMany(src, l.Nouns, 2)
		if !pair.Satisfied {
			return "", &DataIntegrityError{Field: "nouns", Message: "need two distinct nouns"}
		}
		return pair.Items[0] + " and " + pair.Items[1], nil
	default:
		place, _ := rng.Pick(src, l.Places)
		noun, _ := rng.Pick(src, l.Nouns)
		return "the " + place + " of " + noun, nil
	}
}

func narrative(name string, artist Artist, ia IntegrationAxis) []string {
	d, s := ia.Dominant, ia.Stabilizing
	return []string{
		fmt.Sprintf("%s walks in the manner of %s. %s",
			name, artist.Name, artist.Description),
		fmt.Sprintf("Its strongest current runs from %s toward %s: %s",
			d.Shadow.Name, d.Luminary.Name, lowerFirst(d.Luminary.Description)),
		fmt.Sprintf("When the current threatens to pull it under, %s holds it steady against %s.",
			s.Luminary.Name, s.Shadow.Name),
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func summarize(name string, artist Artist, ia IntegrationAxis) Summary {
	d, s := ia.Dominant, ia.Stabilizing
	return Summary{
		CoreTheme:   fmt.Sprintf("%s, an heir of %s", name, artist.Name),
		Gift:        d.Luminary.Name,
		Challenge:   d.Shadow.Name,
		Integration: fmt.Sprintf("%s balanced by %s", d.Name, s.Name),
		Invitation:  fmt.Sprintf("Let %s answer %s.", s.Luminary.Name, d.Shadow.Name),
	}
}
