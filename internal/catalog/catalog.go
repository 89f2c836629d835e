// Package catalog loads the static archetype, luminary and shadow catalog and
// the mini-test question banks.
package catalog

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/raveliquar/internal/quiz"
	"github.com/jonathan/raveliquar/internal/schemas"
)

//go:embed data
var defaultData embed.FS

// Kind distinguishes the three catalog lists.
type Kind string

// Catalog kinds
const (
	KindArchetype Kind = "archetype"
	KindLuminary  Kind = "luminary"
	KindShadow    Kind = "shadow"
)

// Kinds returns every kind in file load order.
func Kinds() []Kind {
	return []Kind{KindArchetype, KindLuminary, KindShadow}
}

// DefaultFamily is used for entries that do not name one.
const DefaultFamily = "Unaligned"

// Lore is the flavour text attached to an entry.
type Lore struct {
	Epithet string `json:"epithet,omitempty"`
	Summary string `json:"summary,omitempty"`
	Gift    string `json:"gift,omitempty"`
	Trial   string `json:"trial,omitempty"`
}

// Entry is one archetype, luminary or shadow.
type Entry struct {
	ID       string             `json:"id"`
	Kind     Kind               `json:"kind"`
	Name     string             `json:"name"`
	Family   string             `json:"family"`
	Category string             `json:"category,omitempty"`
	Tags     map[string]float64 `json:"tags"`
	Lore     Lore               `json:"lore"`
}

var entryFiles = map[Kind]string{
	KindArchetype: "archetypes.json",
	KindLuminary:  "luminaries.json",
	KindShadow:    "shadows.json",
}

// EntryFile returns the file name, relative to the catalog root, holding kind.
func EntryFile(kind Kind) string {
	return entryFiles[kind]
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used while loading.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithoutSchemaValidation skips the JSON Schema check before decoding.
func WithoutSchemaValidation() Option {
	return func(s *Store) {
		s.validate = false
	}
}

// Store holds the catalog in memory. It is populated once by Load and is
// read-only afterwards, so accessors are safe for concurrent use.
type Store struct {
	fsys     fs.FS
	logger   *zap.Logger
	validate bool

	once   sync.Once
	err    error
	loaded atomic.Bool

	lists map[Kind][]Entry
	byID  map[string]Entry
	banks map[string]quiz.Bank
}

// NewStore creates a store reading from fsys. Nothing is read until Load.
func NewStore(fsys fs.FS, opts ...Option) *Store {
	s := &Store{
		fsys:     fsys,
		logger:   zap.NewNop(),
		validate: true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Embedded returns a store over the default catalog compiled into the binary.
func Embedded(opts ...Option) *Store {
	sub, err := fs.Sub(defaultData, "data")
	if err != nil {
		// "data" is a literal embedded directory
		panic(err)
	}
	return NewStore(sub, opts...)
}

// Load reads and validates every catalog file. Only the first call does any
// work; later calls return the first call's result.
func (s *Store) Load(ctx context.Context) error {
	s.once.Do(func() {
		s.err = s.load(ctx)
		if s.err == nil {
			s.loaded.Store(true)
		}
	})
	return s.err
}

func (s *Store) load(ctx context.Context) error {
	bankPaths, err := fs.Glob(s.fsys, "banks/*.json")
	if err != nil {
		return &LoadError{Message: "failed to list banks", Cause: err}
	}
	sort.Strings(bankPaths)

	kinds := Kinds()
	entryResults := make([][]Entry, len(kinds))
	bankResults := make([]quiz.Bank, len(bankPaths))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			entries, err := s.readEntries(gctx, kind)
			entryResults[i] = entries
			return err
		})
	}
	for i, p := range bankPaths {
		g.Go(func() error {
			bank, err := s.readBank(gctx, p)
			bankResults[i] = bank
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	lists := make(map[Kind][]Entry, len(kinds))
	byID := make(map[string]Entry)
	for i, kind := range kinds {
		for _, e := range entryResults[i] {
			if prev, dup := byID[e.ID]; dup {
				return &LoadError{
					File:    entryFiles[kind],
					Message: fmt.Sprintf("duplicate id %q (already defined as %s)", e.ID, prev.Kind),
				}
			}
			byID[e.ID] = e
		}
		lists[kind] = entryResults[i]
	}

	banks := make(map[string]quiz.Bank, len(bankResults))
	for i, b := range bankResults {
		if _, dup := banks[b.ID]; dup {
			return &LoadError{File: bankPaths[i], Message: fmt.Sprintf("duplicate bank id %q", b.ID)}
		}
		banks[b.ID] = b
	}

	s.lists = lists
	s.byID = byID
	s.banks = banks

	s.logger.Info("catalog loaded",
		zap.Int("archetypes", len(lists[KindArchetype])),
		zap.Int("luminaries", len(lists[KindLuminary])),
		zap.Int("shadows", len(lists[KindShadow])),
		zap.Int("banks", len(banks)),
	)
	return nil
}

func (s *Store) readFile(ctx context.Context, name string, schema schemas.Name) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, &LoadError{File: name, Message: "failed to read", Cause: err}
	}
	if s.validate {
		if err := schemas.Validate(schema, name, data); err != nil {
			return nil, &LoadError{File: name, Message: "schema validation failed", Cause: err}
		}
	}
	return data, nil
}

func (s *Store) readEntries(ctx context.Context, kind Kind) ([]Entry, error) {
	name := entryFiles[kind]
	data, err := s.readFile(ctx, name, schemas.CatalogEntries)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &LoadError{File: name, Message: "failed to decode", Cause: err}
	}

	for i := range entries {
		e := &entries[i]
		if e.ID == "" {
			return nil, &LoadError{File: name, Message: fmt.Sprintf("entry %d has no id", i)}
		}
		e.Kind = kind
		if e.Family == "" {
			e.Family = DefaultFamily
		}
		if e.Tags == nil {
			e.Tags = map[string]float64{}
		}
	}
	s.logger.Debug("catalog file read", zap.String("file", name), zap.Int("entries", len(entries)))
	return entries, nil
}

func (s *Store) readBank(ctx context.Context, name string) (quiz.Bank, error) {
	data, err := s.readFile(ctx, name, schemas.QuestionBank)
	if err != nil {
		return quiz.Bank{}, err
	}

	var bank quiz.Bank
	if err := json.Unmarshal(data, &bank); err != nil {
		return quiz.Bank{}, &LoadError{File: name, Message: "failed to decode", Cause: err}
	}
	if bank.ID == "" {
		bank.ID = bankIDFromPath(name)
	}

	seen := make(map[string]bool, len(bank.Questions))
	for _, q := range bank.Questions {
		if seen[q.ID] {
			return quiz.Bank{}, &LoadError{File: name, Message: fmt.Sprintf("duplicate question id %q", q.ID)}
		}
		seen[q.ID] = true
	}
	return bank, nil
}

func bankIDFromPath(p string) string {
	base := path.Base(p)
	return base[:len(base)-len(path.Ext(base))]
}

// Get returns the entry with the given id from any list.
func (s *Store) Get(id string) (Entry, bool) {
	if !s.loaded.Load() {
		return Entry{}, false
	}
	e, ok := s.byID[id]
	return e, ok
}

// List returns the entries of one kind in file order.
func (s *Store) List(kind Kind) []Entry {
	if !s.loaded.Load() {
		return nil
	}
	return append([]Entry(nil), s.lists[kind]...)
}

// All returns every entry, archetypes first, then luminaries, then shadows.
func (s *Store) All() []Entry {
	var all []Entry
	for _, kind := range Kinds() {
		all = append(all, s.List(kind)...)
	}
	return all
}

// Bank returns the question bank with the given id.
func (s *Store) Bank(id string) (quiz.Bank, bool) {
	if !s.loaded.Load() {
		return quiz.Bank{}, false
	}
	b, ok := s.banks[id]
	return b, ok
}

// Banks returns every bank sorted by id.
func (s *Store) Banks() []quiz.Bank {
	if !s.loaded.Load() {
		return nil
	}
	banks := make([]quiz.Bank, 0, len(s.banks))
	for _, b := range s.banks {
		banks = append(banks, b)
	}
	sort.Slice(banks, func(i, j int) bool { return banks[i].ID < banks[j].ID })
	return banks
}

// Families returns the distinct archetype families, sorted.
func (s *Store) Families() []string {
	set := make(map[string]bool)
	for _, e := range s.List(KindArchetype) {
		set[e.Family] = true
	}
	families := make([]string, 0, len(set))
	for f := range set {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}
