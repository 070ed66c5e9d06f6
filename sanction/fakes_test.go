package sanction

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"sanction-bot/model"
)

var errStoreDown = errors.New("store down")

// memStore is a mutex-guarded Store used by the engine tests.
type memStore struct {
	mu      sync.Mutex
	records map[string]model.SanctionRecord

	pingErr      error
	findErr      error
	createErr    error
	dupCreates   int
	deactivate   int
	deactivateFn func(actionID string) error
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]model.SanctionRecord)}
}

func (s *memStore) Ping(ctx context.Context) error { return s.pingErr }

func (s *memStore) Create(ctx context.Context, record *model.SanctionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	if s.dupCreates > 0 {
		s.dupCreates--
		return ErrDuplicateActionID
	}
	if _, ok := s.records[record.ActionID]; ok {
		return ErrDuplicateActionID
	}
	for _, r := range s.records {
		if r.Active && r.GuildID == record.GuildID && r.UserID == record.UserID && r.Kind == record.Kind {
			return ErrAlreadySanctioned
		}
	}
	s.records[record.ActionID] = *record
	return nil
}

func (s *memStore) put(record model.SanctionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ActionID] = record
}

func (s *memStore) get(actionID string) model.SanctionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records[actionID]
}

func (s *memStore) FindOne(ctx context.Context, f model.SanctionFilter) (*model.SanctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var best *model.SanctionRecord
	for _, r := range s.records {
		if f.ActionID != "" && r.ActionID != f.ActionID ||
			f.GuildID != "" && r.GuildID != f.GuildID ||
			f.UserID != "" && r.UserID != f.UserID ||
			f.Kind != "" && r.Kind != f.Kind ||
			f.Active != nil && r.Active != *f.Active {
			continue
		}
		if best == nil || r.IssuedAt > best.IssuedAt {
			r := r
			best = &r
		}
	}
	return best, nil
}

func (s *memStore) FindAllActive(ctx context.Context, kinds []model.SanctionKind) ([]model.SanctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []model.SanctionRecord
	for _, r := range s.records {
		if !r.Active {
			continue
		}
		for _, k := range kinds {
			if r.Kind == k {
				out = append(out, r)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActionID < out[j].ActionID })
	return out, nil
}

func (s *memStore) FindByUser(ctx context.Context, guildID, userID string) ([]model.SanctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.SanctionRecord
	for _, r := range s.records {
		if r.GuildID == guildID && r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt > out[j].IssuedAt })
	return out, nil
}

func (s *memStore) ConditionalDeactivate(ctx context.Context, actionID string, info model.ReversalInfo) (*model.SanctionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deactivate++
	if s.deactivateFn != nil {
		if err := s.deactivateFn(actionID); err != nil {
			return nil, err
		}
	}
	r, ok := s.records[actionID]
	if !ok || !r.Active {
		return nil, nil
	}
	r.Active = false
	r.EndedBy = info.By
	r.EndReason = info.Reason
	r.EndedAt.Int64, r.EndedAt.Valid = info.At.UnixMilli(), true
	s.records[actionID] = r
	return &r, nil
}

func (s *memStore) UpdateMetadata(ctx context.Context, actionID string, patch model.SanctionMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[actionID]
	if !ok {
		return ErrNotFound
	}
	r.Metadata = r.Metadata.Merge(patch)
	s.records[actionID] = r
	return nil
}

type platformCall struct {
	Op      string
	GuildID string
	UserID  string
	RoleID  string
}

// fakePlatform records calls and can be told to fail or report an absent member.
type fakePlatform struct {
	mu      sync.Mutex
	calls   []platformCall
	failAdd error
	failRm  error
	absent  map[string]bool
	rmDelay time.Duration
	onAdd   func()
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{absent: make(map[string]bool)}
}

func (p *fakePlatform) record(op, guildID, userID, roleID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, platformCall{Op: op, GuildID: guildID, UserID: userID, RoleID: roleID})
}

func (p *fakePlatform) isAbsent(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.absent[userID]
}

func (p *fakePlatform) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	p.mu.Lock()
	hook := p.onAdd
	p.onAdd = nil
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	p.record("add", guildID, userID, roleID)
	if p.isAbsent(userID) {
		return ErrMemberAbsent
	}
	return p.failAdd
}

func (p *fakePlatform) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	if p.rmDelay > 0 {
		time.Sleep(p.rmDelay)
	}
	p.record("remove", guildID, userID, roleID)
	if p.isAbsent(userID) {
		return ErrMemberAbsent
	}
	return p.failRm
}

func (p *fakePlatform) DisconnectVoice(ctx context.Context, guildID, userID string) error {
	p.record("disconnect", guildID, userID, "")
	return nil
}

func (p *fakePlatform) count(op string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (p *fakePlatform) ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.calls))
	for _, c := range p.calls {
		out = append(out, c.Op)
	}
	return out
}

// manualClock is a settable Clock.
type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func newManualClock(t time.Time) *manualClock { return &manualClock{now: t} }

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingAlerter struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (a *recordingAlerter) Warn(guildID, op, detail string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.warns = append(a.warns, op+": "+detail)
}

func (a *recordingAlerter) Error(guildID, op, detail string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.errors = append(a.errors, op+": "+detail)
}

func activeRecord(actionID, userID string, kind model.SanctionKind, issued time.Time, d time.Duration) model.SanctionRecord {
	r := model.SanctionRecord{
		ActionID:    actionID,
		GuildID:     "guild-1",
		UserID:      userID,
		ModeratorID: "mod-1",
		Kind:        kind,
		Reason:      "test",
		Duration:    d.String(),
		IssuedAt:    issued.UnixMilli(),
		Active:      true,
		Metadata:    model.SanctionMetadata{RoleID: "muted-role"},
	}
	if d == 0 {
		r.Duration = model.PermanentDuration
	} else {
		r.ExpiresAt.Int64, r.ExpiresAt.Valid = issued.Add(d).UnixMilli(), true
	}
	return r
}
