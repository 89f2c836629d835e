package assembler

import (
	"errors"
	"fmt"

	"github.com/jonathan/raveliquar/internal/catalog"
)

var (
	shadowCategories   = []string{"Containment", "Fragmentation", "Overextension", "Fixation", "Obfuscation"}
	luminaryCategories = []string{"Clarity", "Continuity", "Expansion", "Refinement", "Illumination"}
	axisPairs          = map[string]string{
		"Containment":   "Expansion",
		"Fragmentation": "Continuity",
		"Overextension": "Refinement",
		"Fixation":      "Illumination",
		"Obfuscation":   "Clarity",
	}
)

// ShadowCategories returns the shadow categories in presentation order.
func ShadowCategories() []string {
	return append([]string(nil), shadowCategories...)
}

// LuminaryCategories returns the luminary categories in presentation order.
func LuminaryCategories() []string {
	return append([]string(nil), luminaryCategories...)
}

// AxisPairs maps each shadow category to the luminary category it is paired
// with on a narrative axis. The map is a copy.
func AxisPairs() map[string]string {
	pairs := make(map[string]string, len(axisPairs))
	for k, v := range axisPairs {
		pairs[k] = v
	}
	return pairs
}

// Aspect is a single shadow or luminary narrative unit.
type Aspect struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// Artist is an artist archetype; Family selects preferred titles.
type Artist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Family      string `json:"family"`
	Description string `json:"description"`
}

// Library is the hand-authored content an assembler selects from.
type Library struct {
	Shadows      []Aspect
	Luminaries   []Aspect
	Artists      []Artist
	FamilyTitles map[string][]string
	TitlePool    []string
	Adjectives   []string
	Nouns        []string
	Places       []string
}

// Validate checks that every category has at least one aspect, that every
// axis pairing resolves, and that the name pools are populated.
func (l Library) Validate() error {
	var errs []error
	for _, cat := range shadowCategories {
		if len(byCategory(l.Shadows, cat)) == 0 {
			errs = append(errs, &DataIntegrityError{Field: "shadow", Category: cat, Message: "no aspects in category"})
		}
	}
	for _, cat := range luminaryCategories {
		if len(byCategory(l.Luminaries, cat)) == 0 {
			errs = append(errs, &DataIntegrityError{Field: "luminary", Category: cat, Message: "no aspects in category"})
		}
	}
	for _, cat := range shadowCategories {
		target, ok := axisPairs[cat]
		if !ok {
			errs = append(errs, &DataIntegrityError{Field: "axis", Category: cat, Message: "no pairing"})
			continue
		}
		if len(byCategory(l.Luminaries, target)) == 0 {
			errs = append(errs, &DataIntegrityError{Field: "axis", Category: cat, Message: fmt.Sprintf("paired category %q has no aspects", target)})
		}
	}

	pools := []struct {
		name string
		size int
	}{
		{"artists", len(l.Artists)},
		{"titlePool", len(l.TitlePool)},
		{"adjectives", len(l.Adjectives)},
		{"nouns", len(l.Nouns)},
		{"places", len(l.Places)},
	}
	for _, p := range pools {
		if p.size == 0 {
			errs = append(errs, &DataIntegrityError{Field: p.name, Message: "pool is empty"})
		}
	}
	if len(l.Nouns) < 2 {
		errs = append(errs, &DataIntegrityError{Field: "nouns", Message: "need at least two nouns"})
	}
	return errors.Join(errs...)
}

func byCategory(aspects []Aspect, category string) []Aspect {
	var out []Aspect
	for _, a := range aspects {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// ArtistsFromEntries converts catalog archetypes into artists so that a
// result's artistArchetype.id resolves in the catalog. Entries of other kinds
// are ignored.
func ArtistsFromEntries(entries []catalog.Entry) []Artist {
	artists := make([]Artist, 0, len(entries))
	for _, e := range entries {
		if e.Kind != catalog.KindArchetype {
			continue
		}
		desc := e.Lore.Summary
		if desc == "" {
			desc = e.Lore.Epithet
		}
		artists = append(artists, Artist{ID: e.ID, Name: e.Name, Family: e.Family, Description: desc})
	}
	return artists
}

// CatalogLibrary is DefaultLibrary with its artists taken from the catalog's
// archetypes. With no archetypes the built-in artists are kept.
func CatalogLibrary(archetypes []catalog.Entry) Library {
	lib := DefaultLibrary()
	if artists := ArtistsFromEntries(archetypes); len(artists) > 0 {
		lib.Artists = artists
	}
	return lib
}

// DefaultLibrary returns the built-in content. Its artist ids match the
// archetype ids of the embedded catalog.
func DefaultLibrary() Library {
	return Library{
		Shadows: []Aspect{
			{ID: "sh-walled-garden", Name: "The Walled Garden", Category: "Containment", Description: "Growth kept behind a gate you no longer remember locking."},
			{ID: "sh-quiet-vault", Name: "The Quiet Vault", Category: "Containment", Description: "Treasures hoarded against a winter that never comes."},
			{ID: "sh-narrow-harbor", Name: "The Narrow Harbor", Category: "Containment", Description: "Ships that never leave because the mouth of the bay feels too small."},
			{ID: "sh-shattered-chorus", Name: "The Shattered Chorus", Category: "Fragmentation", Description: "Many voices, none of them finishing the song."},
			{ID: "sh-scattered-ember", Name: "The Scattered Ember", Category: "Fragmentation", Description: "Heat spread so thin it cannot light anything."},
			{ID: "sh-thin-bridge", Name: "The Thin Bridge", Category: "Overextension", Description: "Reaching across a gap wider than the planks allow."},
			{ID: "sh-hollow-crown", Name: "The Hollow Crown", Category: "Overextension", Description: "Carrying every burden so no one sees you stagger."},
			{ID: "sh-endless-orbit", Name: "The Endless Orbit", Category: "Overextension", Description: "Circling every need but your own."},
			{ID: "sh-single-star", Name: "The Single Star", Category: "Fixation", Description: "One point of light mistaken for the whole sky."},
			{ID: "sh-worn-groove", Name: "The Worn Groove", Category: "Fixation", Description: "A path walked so often it has become a trench."},
			{ID: "sh-fogged-glass", Name: "The Fogged Glass", Category: "Obfuscation", Description: "Meaning hidden even from the one who made it."},
			{ID: "sh-masked-lantern", Name: "The Masked Lantern", Category: "Obfuscation", Description: "A light shuttered so it cannot be judged."},
		},
		Luminaries: []Aspect{
			{ID: "lu-clear-spring", Name: "The Clear Spring", Category: "Clarity", Description: "Seeing to the bottom of things without stirring the silt."},
			{ID: "lu-true-compass", Name: "The True Compass", Category: "Clarity", Description: "Knowing which way is north even in fog."},
			{ID: "lu-long-thread", Name: "The Long Thread", Category: "Continuity", Description: "Carrying the work across seasons without dropping a stitch."},
			{ID: "lu-deep-root", Name: "The Deep Root", Category: "Continuity", Description: "Holding steady while the weather changes above."},
			{ID: "lu-open-horizon", Name: "The Open Horizon", Category: "Expansion", Description: "Letting the frame grow with the picture."},
			{ID: "lu-rising-tide", Name: "The Rising Tide", Category: "Expansion", Description: "Lifting everything nearby as you grow."},
			{ID: "lu-tempered-edge", Name: "The Tempered Edge", Category: "Refinement", Description: "Taking away until only the true line remains."},
			{ID: "lu-patient-kiln", Name: "The Patient Kiln", Category: "Refinement", Description: "Heat applied slowly enough to strengthen."},
			{ID: "lu-shared-flame", Name: "The Shared Flame", Category: "Illumination", Description: "Light that grows when it is given away."},
			{ID: "lu-dawn-window", Name: "The Dawn Window", Category: "Illumination", Description: "An opening through which morning finds the room."},
			{ID: "lu-star-chart", Name: "The Star Chart", Category: "Illumination", Description: "Naming the lights so others can navigate by them."},
		},
		Artists: []Artist{
			{ID: "arch-cartographer", Name: "The Cartographer", Family: "Seer", Description: "Draws maps of places no one has walked yet."},
			{ID: "arch-lanternwright", Name: "The Lanternwright", Family: "Seer", Description: "Builds lights for paths they will never take."},
			{ID: "arch-loomkeeper", Name: "The Loomkeeper", Family: "Maker", Description: "Weaves scattered days into one cloth."},
			{ID: "arch-glasssmith", Name: "The Glasssmith", Family: "Maker", Description: "Shapes what shatters into what sings."},
			{ID: "arch-driftwalker", Name: "The Driftwalker", Family: "Wanderer", Description: "Follows the tide out and returns with strange shells."},
			{ID: "arch-emberguard", Name: "The Emberguard", Family: "Guardian", Description: "Tends the last coal through the longest winter."},
			{ID: "arch-mirrorfox", Name: "The Mirrorfox", Family: "Trickster", Description: "Answers every question with a better one."},
			{ID: "arch-stillwater", Name: "The Stillwater", Family: "Unaligned", Description: "Reflects without rippling."},
		},
		FamilyTitles: map[string][]string{
			"Seer":      {"Oracle", "Watcher", "Seer"},
			"Maker":     {"Artisan", "Forgewright", "Weaver"},
			"Wanderer":  {"Pilgrim", "Voyager", "Wayfarer"},
			"Guardian":  {"Warden", "Keeper", "Sentinel"},
			"Trickster": {"Jester", "Riddler", "Shapeshifter"},
		},
		TitlePool:  []string{"Herald", "Alchemist", "Dreamer", "Chronicler", "Harbinger", "Tidecaller"},
		Adjectives: []string{"Hollow", "Silver", "Unspoken", "Drowned", "Burning", "Forgotten", "Gentle", "Restless"},
		Nouns:      []string{"Tides", "Lanterns", "Echoes", "Thresholds", "Embers", "Mirrors", "Roots", "Storms", "Maps"},
		Places:     []string{"Orchard", "Archive", "Harbor", "Observatory", "Labyrinth", "Meadow"},
	}
}
