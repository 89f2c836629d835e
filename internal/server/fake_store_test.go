package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/raveliquar/internal/db"
)

// fakeStore is an in-memory Store with the same semantics as *db.DB.
type fakeStore struct {
	mu       sync.Mutex
	now      func() time.Time
	pingErr  error
	failWith error // returned by every write when set

	// beforeSubmit runs ahead of SaveMiniSuiteResult, outside the lock.
	beforeSubmit func()

	codes      map[string]*db.AccessCode
	profiles   map[uuid.UUID]*db.Profile
	progress   map[string]*db.TestProgress // profileID/runID
	submission []db.MiniSuiteResult
	results    map[string]*db.ResultRecord // runID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		now:      time.Now,
		codes:    make(map[string]*db.AccessCode),
		profiles: make(map[uuid.UUID]*db.Profile),
		progress: make(map[string]*db.TestProgress),
		results:  make(map[string]*db.ResultRecord),
	}
}

var _ Store = (*fakeStore)(nil)

func progressKey(profileID uuid.UUID, runID string) string {
	return profileID.String() + "/" + runID
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CreateAccessCode(_ context.Context, input db.AccessCodeInput) (*db.AccessCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, ok := f.codes[input.Code]; ok {
		return nil, fmt.Errorf("access code %s: %w", input.Code, db.ErrDuplicate)
	}
	c := &db.AccessCode{
		Code:      input.Code,
		Label:     input.Label,
		MaxUses:   input.MaxUses,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: f.now(),
	}
	f.codes[c.Code] = c
	cp := *c
	return &cp, nil
}

func (f *fakeStore) RedeemAccessCode(_ context.Context, code, displayName string) (*db.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.codes[code]
	if !ok {
		return nil, db.ErrAccessCodeNotFound
	}
	if err := c.Check(f.now()); err != nil {
		return nil, err
	}
	c.Uses++
	return f.insertProfile(displayName, nil, &code), nil
}

func (f *fakeStore) insertProfile(name string, email, code *string) *db.Profile {
	now := f.now()
	p := &db.Profile{
		ID:          uuid.New(),
		DisplayName: name,
		Email:       email,
		AccessCode:  code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.profiles[p.ID] = p
	cp := *p
	return &cp
}

func (f *fakeStore) CreateProfile(_ context.Context, input db.ProfileInput) (*db.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	return f.insertProfile(input.DisplayName, input.Email, input.AccessCode), nil
}

func (f *fakeStore) GetProfile(_ context.Context, id uuid.UUID) (*db.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeStore) ListProfiles(_ context.Context, limit, offset int) ([]db.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]db.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	if offset >= len(all) {
		return []db.Profile{}, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (f *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, update db.ProfileUpdate) (*db.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	if update.DisplayName != nil {
		p.DisplayName = *update.DisplayName
	}
	if update.Email != nil {
		p.Email = update.Email
	}
	p.UpdatedAt = f.now()
	cp := *p
	return &cp, nil
}

func (f *fakeStore) RecordConsent(_ context.Context, id uuid.UUID, version string) (*db.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	now := f.now()
	p.ConsentGiven = true
	p.ConsentVersion = &version
	p.ConsentAt = &now
	cp := *p
	return &cp, nil
}

func (f *fakeStore) DeleteProfile(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[id]; !ok {
		return false, nil
	}
	delete(f.profiles, id)
	for key, p := range f.progress {
		if p.ProfileID == id {
			delete(f.progress, key)
		}
	}
	for run, r := range f.results {
		if r.ProfileID == id {
			delete(f.results, run)
		}
	}
	return true, nil
}

func (f *fakeStore) ListProgress(_ context.Context, profileID uuid.UUID) ([]db.TestProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.TestProgress{}
	for _, p := range f.progress {
		if p.ProfileID == profileID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID < out[j].RunID })
	return out, nil
}

func (f *fakeStore) AdvanceProgress(_ context.Context, profileID uuid.UUID, runID, testID string, bankIDs []string) (*db.TestProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, done := f.results[runID]; done {
		return nil, fmt.Errorf("run %s: %w", runID, db.ErrRunCompleted)
	}
	key := progressKey(profileID, runID)
	current, ok := f.progress[key]
	if !ok {
		current = &db.TestProgress{ProfileID: profileID, RunID: runID, CompletedTests: []string{}}
	}
	next := current.Advance(testID, bankIDs)
	next.UpdatedAt = f.now()
	f.progress[key] = &next
	cp := next
	return &cp, nil
}

func (f *fakeStore) SaveMiniSuiteResult(_ context.Context, input db.MiniSuiteResultInput) (*db.MiniSuiteResult, error) {
	if f.beforeSubmit != nil {
		f.beforeSubmit()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	if _, done := f.results[input.RunID]; done {
		return nil, fmt.Errorf("run %s: %w", input.RunID, db.ErrRunCompleted)
	}
	raw, err := json.Marshal(input.RawTotals)
	if err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(input.Normalized)
	if err != nil {
		return nil, err
	}
	matches, err := json.Marshal(input.TopMatches)
	if err != nil {
		return nil, err
	}
	r := db.MiniSuiteResult{
		ID:         uuid.New(),
		ProfileID:  input.ProfileID,
		RunID:      input.RunID,
		TestID:     input.TestID,
		RawTotals:  raw,
		Normalized: normalized,
		TopMatches: matches,
		CreatedAt:  f.now(),
	}
	f.submission = append(f.submission, r)
	return &r, nil
}

func (f *fakeStore) ListMiniSuiteResults(_ context.Context, profileID uuid.UUID, runID string) ([]db.MiniSuiteResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.MiniSuiteResult{}
	for _, r := range f.submission {
		if r.ProfileID == profileID && r.RunID == runID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) SaveResult(_ context.Context, profileID uuid.UUID, runID string, document any) (*db.ResultRecord, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, false, f.failWith
	}
	if existing, ok := f.results[runID]; ok {
		cp := *existing
		return &cp, false, nil
	}
	doc, err := json.Marshal(document)
	if err != nil {
		return nil, false, err
	}
	r := &db.ResultRecord{
		ID:        uuid.New(),
		ProfileID: profileID,
		RunID:     runID,
		Document:  doc,
		CreatedAt: f.now(),
	}
	f.results[runID] = r
	if p, ok := f.progress[progressKey(profileID, runID)]; ok {
		p.Status = db.ProgressCompleted
		p.CurrentTestID = nil
	}
	cp := *r
	return &cp, true, nil
}

func (f *fakeStore) GetResultByRun(_ context.Context, runID string) (*db.ResultRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[runID]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ListResults(_ context.Context, profileID uuid.UUID) ([]db.ResultRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []db.ResultRecord{}
	for _, r := range f.results {
		if r.ProfileID == profileID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID < out[j].RunID })
	return out, nil
}

var errStoreDown = errors.New("connection refused")
