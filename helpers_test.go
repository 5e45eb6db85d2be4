package shopadmin

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/miaodi2002/shopadmin/password"
	"github.com/redis/go-redis/v9"
)

// testPasswordConfig keeps hashing cheap enough for the test suite while
// staying above the validator's minimums.
var testPasswordConfig = PasswordConfig{
	Memory:      8 * 1024,
	Time:        1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   16,
}

func testMasterKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i + 1)
	}
	return key
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeAdminProvider struct {
	mu         sync.Mutex
	byUsername map[string]AdminRecord
	byID       map[string]AdminRecord
	lookupErr  error
}

func newFakeAdminProvider() *fakeAdminProvider {
	return &fakeAdminProvider{
		byUsername: map[string]AdminRecord{},
		byID:       map[string]AdminRecord{},
	}
}

func (p *fakeAdminProvider) put(admin AdminRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.byUsername[admin.Username] = admin
	p.byID[admin.AdminID] = admin
}

func (p *fakeAdminProvider) GetAdminByUsername(_ context.Context, username string) (AdminRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lookupErr != nil {
		return AdminRecord{}, p.lookupErr
	}
	admin, ok := p.byUsername[username]
	if !ok {
		return AdminRecord{}, ErrAdminNotFound
	}
	return admin, nil
}

func (p *fakeAdminProvider) GetAdminByID(_ context.Context, adminID string) (AdminRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lookupErr != nil {
		return AdminRecord{}, p.lookupErr
	}
	admin, ok := p.byID[adminID]
	if !ok {
		return AdminRecord{}, ErrAdminNotFound
	}
	return admin, nil
}

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]AccountRecord
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: map[string]AccountRecord{}}
}

func (s *fakeAccountStore) InsertAccount(_ context.Context, account AccountRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.AccountID]; ok {
		return ErrAccountExists
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *fakeAccountStore) GetAccount(_ context.Context, accountID string) (AccountRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return AccountRecord{}, ErrAccountNotFound
	}
	return account, nil
}

func (s *fakeAccountStore) UpdateAccountStatus(_ context.Context, accountID string, status AccountStatus, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[accountID]
	if !ok {
		return ErrAccountNotFound
	}
	account.Status = status
	account.UpdatedAt = updatedAt
	s.accounts[accountID] = account
	return nil
}

func (s *fakeAccountStore) DeleteAccount(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[accountID]; !ok {
		return ErrAccountNotFound
	}
	delete(s.accounts, accountID)
	return nil
}

type fakeCredentialStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeCredentialStore() *fakeCredentialStore {
	return &fakeCredentialStore{blobs: map[string][]byte{}}
}

func (s *fakeCredentialStore) UpsertCredentials(_ context.Context, accountID string, blob []byte, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(blob))
	copy(stored, blob)
	s.blobs[accountID] = stored
	return nil
}

func (s *fakeCredentialStore) GetCredentials(_ context.Context, accountID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	blob, ok := s.blobs[accountID]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}

func (s *fakeCredentialStore) DeleteCredentials(_ context.Context, accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[accountID]; !ok {
		return ErrCredentialsNotFound
	}
	delete(s.blobs, accountID)
	return nil
}

func (s *fakeCredentialStore) corrupt(accountID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[accountID] = []byte("not a sealed record")
}

// memAuditStore is an in-memory append-only log for tests.
type memAuditStore struct {
	mu        sync.Mutex
	events    []AuditEvent
	appendErr error
}

func newMemAuditStore() *memAuditStore {
	return &memAuditStore{}
}

func (s *memAuditStore) AppendEvent(_ context.Context, event AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.events = append(s.events, event)
	return nil
}

func (s *memAuditStore) QueryEvents(_ context.Context, filter AuditFilter) ([]AuditEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []AuditEvent
	for i := len(s.events) - 1; i >= 0; i-- {
		event := s.events[i]
		if filter.ActorID != "" && event.ActorID != filter.ActorID {
			continue
		}
		if filter.EntityType != "" && event.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && event.EntityID != filter.EntityID {
			continue
		}
		if filter.Action != "" && event.Action != filter.Action {
			continue
		}
		if !filter.From.IsZero() && event.Timestamp.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !event.Timestamp.Before(filter.To) {
			continue
		}
		out = append(out, event)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

func (s *memAuditStore) CountByAction(_ context.Context, from, to time.Time) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int64{}
	for _, event := range s.events {
		if inRange(event.Timestamp, from, to) {
			counts[event.Action]++
		}
	}
	return counts, nil
}

func (s *memAuditStore) CountByActor(_ context.Context, from, to time.Time) (map[string]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int64{}
	for _, event := range s.events {
		if inRange(event.Timestamp, from, to) {
			counts[event.ActorID]++
		}
	}
	return counts, nil
}

func (s *memAuditStore) ActivityBuckets(_ context.Context, from, to time.Time, bucket time.Duration) ([]ActivityBucket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byStart := map[time.Time]int64{}
	for _, event := range s.events {
		if inRange(event.Timestamp, from, to) {
			byStart[event.Timestamp.Truncate(bucket)]++
		}
	}

	out := make([]ActivityBucket, 0, len(byStart))
	for start, count := range byStart {
		out = append(out, ActivityBucket{Start: start, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *memAuditStore) all() []AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AuditEvent, len(s.events))
	copy(out, s.events)
	return out
}

func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}

type fakeThrottle struct {
	mu       sync.Mutex
	blocked  bool
	failures int
	resets   int
}

func (f *fakeThrottle) Check(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.blocked {
		return errors.New("too many attempts")
	}
	return nil
}

func (f *fakeThrottle) RecordFailure(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures++
	return nil
}

func (f *fakeThrottle) Reset(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resets++
	return nil
}

type testEnv struct {
	engine   *Engine
	mr       *miniredis.Miniredis
	admins   *fakeAdminProvider
	accounts *fakeAccountStore
	creds    *fakeCredentialStore
	audit    *memAuditStore
	throttle *fakeThrottle
	clock    *fakeClock
}

func newTestEngine(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	env := &testEnv{
		mr:       mr,
		admins:   newFakeAdminProvider(),
		accounts: newFakeAccountStore(),
		creds:    newFakeCredentialStore(),
		audit:    newMemAuditStore(),
		throttle: &fakeThrottle{},
		clock:    newFakeClock(),
	}

	cfg := defaultConfig()
	cfg.MasterKey = testMasterKey()
	cfg.Password = testPasswordConfig
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Now = env.clock.Now

	engine, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithAdminProvider(env.admins).
		WithAccountStore(env.accounts).
		WithCredentialStore(env.creds).
		WithAuditStore(env.audit).
		WithLoginThrottle(env.throttle).
		Build()
	if err != nil {
		t.Fatalf("engine build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	env.engine = engine
	return env
}

// seedAdmin registers an active admin with a real argon2id hash and returns
// its record.
func (env *testEnv) seedAdmin(t *testing.T, username, pass string) AdminRecord {
	t.Helper()

	hasher, err := password.NewArgon2(password.Config{
		Memory:      testPasswordConfig.Memory,
		Time:        testPasswordConfig.Time,
		Parallelism: testPasswordConfig.Parallelism,
		SaltLength:  testPasswordConfig.SaltLength,
		KeyLength:   testPasswordConfig.KeyLength,
	})
	if err != nil {
		t.Fatalf("hasher setup failed: %v", err)
	}
	hash, err := hasher.Hash(pass)
	if err != nil {
		t.Fatalf("password hash failed: %v", err)
	}

	admin := AdminRecord{
		AdminID:      "admin-" + username,
		Username:     username,
		PasswordHash: hash,
		Status:       AdminActive,
	}
	env.admins.put(admin)
	return admin
}

// waitForAudit polls the in-memory trail until at least n events with the
// given action land or the deadline passes. The dispatcher is async, so
// assertions on audit contents go through here.
func (env *testEnv) waitForAudit(t *testing.T, action string, n int) []AuditEvent {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for {
		var matched []AuditEvent
		for _, event := range env.audit.all() {
			if event.Action == action {
				matched = append(matched, event)
			}
		}
		if len(matched) >= n {
			return matched
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d %q events, have %d", n, action, len(matched))
		}
		time.Sleep(5 * time.Millisecond)
	}
}
