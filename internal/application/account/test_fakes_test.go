package account

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/schema"
	"github.com/baechuer/account-service/internal/session"
	"github.com/baechuer/account-service/internal/validation"
)

/*
Fakes for ports
*/

type fakeUserRepo struct {
	mu sync.Mutex

	byID map[string]domain.User

	// injected errors (if set, method returns error)
	existsErr error
	createErr error
	updateErr error

	// record calls
	existsCalls []string
	updated     []domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: map[string]domain.User{}}
}

func (f *fakeUserRepo) put(u domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) find(match func(domain.User) bool) (domain.User, bool) {
	for _, u := range f.byID {
		if match(u) {
			return u, true
		}
	}
	return domain.User{}, false
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, userName string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.find(func(u domain.User) bool { return u.UserName == userName })
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.find(func(u domain.User) bool { return u.Email == email })
	if !ok {
		return domain.User{}, domain.ErrUserNotFound()
	}
	return u, nil
}

func (f *fakeUserRepo) Exists(ctx context.Context, by Identifier, value string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.existsCalls = append(f.existsCalls, string(by))
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.find(func(u domain.User) bool {
		switch by {
		case ByID:
			return u.ID == value
		case ByUserName:
			return u.UserName == value
		default:
			return u.Email == value
		}
	})
	return ok, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.User{}, f.createErr
	}
	if _, ok := f.find(func(x domain.User) bool { return x.UserName == u.UserName }); ok {
		return domain.User{}, domain.ErrUsernameInUse()
	}
	if _, ok := f.find(func(x domain.User) bool { return x.Email == u.Email }); ok {
		return domain.User{}, domain.ErrEmailInUse()
	}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[u.ID]; !ok {
		return domain.ErrUserNotFound()
	}
	f.byID[u.ID] = u
	f.updated = append(f.updated, u)
	return nil
}

type fakeGroupRepo struct {
	primary  domain.Group
	defaults []domain.Group
	err      error
}

func (g *fakeGroupRepo) GetDefaultPrimary(ctx context.Context) (domain.Group, error) {
	if g.err != nil {
		return domain.Group{}, g.err
	}
	return g.primary, nil
}

func (g *fakeGroupRepo) ListDefault(ctx context.Context) ([]domain.Group, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.defaults, nil
}

type fakeHasher struct {
	mu       sync.Mutex
	hashFn   func(string) (string, error)
	compares int
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashFn != nil {
		return h.hashFn(password)
	}
	return "hash:" + password, nil
}

func (h *fakeHasher) Compare(hash string, password string) error {
	h.mu.Lock()
	h.compares++
	h.mu.Unlock()
	if hash == "hash:"+password {
		return nil
	}
	return errors.New("mismatch")
}

type fakeSessions struct {
	mu sync.Mutex

	byID     map[string]session.State
	versions map[string]int64

	saveErr error

	destroyed []string
	revoked   []string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{byID: map[string]session.State{}, versions: map[string]int64{}}
}

func (s *fakeSessions) Load(ctx context.Context, id string) (session.State, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.byID[id]
	if !ok {
		return session.State{}, false, nil
	}
	if !st.IsGuest() && st.Version != s.versions[st.UserID] {
		return session.State{}, false, nil
	}
	return st, true, nil
}

func (s *fakeSessions) Save(ctx context.Context, st session.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.byID[st.ID] = st
	return nil
}

func (s *fakeSessions) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, id)
	s.destroyed = append(s.destroyed, id)
	return nil
}

func (s *fakeSessions) UserVersion(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[userID], nil
}

func (s *fakeSessions) RevokeUser(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[userID]++
	s.revoked = append(s.revoked, userID)
	return s.versions[userID], nil
}

// fakePolicy allows everything except denied fields and records every
// field check.
type fakePolicy struct {
	mu          sync.Mutex
	denyFields  map[string]bool
	denyAccess  bool
	fieldChecks []string
}

func (p *fakePolicy) CheckFieldAccess(actor, target domain.User, field string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fieldChecks = append(p.fieldChecks, field)
	return actor.ID != "" && !p.denyFields[field]
}

func (p *fakePolicy) CheckAccess(actor domain.User, action string) bool {
	return actor.ID != "" && !p.denyAccess
}

type fakePublisher struct {
	mu         sync.Mutex
	err        error
	registered []AccountRegisteredEvent
	settings   []SettingsUpdatedEvent
}

func (p *fakePublisher) PublishAccountRegistered(ctx context.Context, evt AccountRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, evt)
	return p.err
}

func (p *fakePublisher) PublishSettingsUpdated(ctx context.Context, evt SettingsUpdatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings = append(p.settings, evt)
	return p.err
}

type fakeRenderer struct {
	codes []string
	err   error
}

func (r *fakeRenderer) Render(code string) ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.codes = append(r.codes, code)
	return []byte("png:" + code), nil
}

/*
Shared audit capture
*/

type auditEntry struct {
	action string
	fields map[string]string
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (a *fakeAudit) add(action string, kv ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := map[string]string{}
	for i := 0; i+1 < len(kv); i += 2 {
		f[kv[i]] = kv[i+1]
	}
	a.entries = append(a.entries, auditEntry{action: action, fields: f})
}

func (a *fakeAudit) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, e.action)
	}
	return out
}

func (a *fakeAudit) SpamRejected(ctx context.Context, kind string, payload map[string]string) {
	a.add("spam_rejected", "kind", kind)
}
func (a *fakeAudit) LoginSuccess(ctx context.Context, userID, userName string) {
	a.add("login_success", "user_id", userID)
}
func (a *fakeAudit) LoginFailed(ctx context.Context, identifier, reason string) {
	a.add("login_failed", "reason", reason)
}
func (a *fakeAudit) Registered(ctx context.Context, userID, email string, active bool) {
	a.add("registered", "user_id", userID)
}
func (a *fakeAudit) SettingsUpdated(ctx context.Context, userID string, fields []string) {
	a.add("settings_updated", "fields", strings.Join(fields, ","))
}
func (a *fakeAudit) AccessDenied(ctx context.Context, userID, what string) {
	a.add("access_denied", "what", what)
}
func (a *fakeAudit) SessionsRevoked(ctx context.Context, userID string) {
	a.add("sessions_revoked", "user_id", userID)
}
func (a *fakeAudit) Logout(ctx context.Context, userID string) {
	a.add("logout", "user_id", userID)
}

/*
Test service
*/

const (
	testMasterID = "master-1"
	testUserID   = "user-1"
	testPassword = "Secret123"
)

type testEnv struct {
	svc      *Service
	users    *fakeUserRepo
	groups   *fakeGroupRepo
	hasher   *fakeHasher
	sessions *fakeSessions
	policy   *fakePolicy
	pub      *fakePublisher
	audit    *fakeAudit
	captcha  *fakeRenderer
	observed []string
}

func testSite() domain.SiteSettings {
	return domain.SiteSettings{
		MasterUserID:      testMasterID,
		CanRegister:       true,
		EnableCaptcha:     false,
		RequireActivation: false,
		EmailLoginEnabled: true,
		DefaultLocale:     "en-US",
		AvailableLocales:  []string{"en-US", "fr-FR"},
	}
}

func newSvcForTest(t *testing.T, site domain.SiteSettings) *testEnv {
	t.Helper()

	schemas, err := schema.NewRepository(schema.Defaults(), validation.New().CheckTag)
	if err != nil {
		t.Fatalf("load schemas: %v", err)
	}

	env := &testEnv{
		users: newFakeUserRepo(),
		groups: &fakeGroupRepo{
			primary: domain.Group{ID: 1, Name: "User", IsDefault: true, IsDefaultPrimary: true, NewUserTitle: "New User"},
			defaults: []domain.Group{
				{ID: 1, Name: "User", IsDefault: true, IsDefaultPrimary: true, NewUserTitle: "New User"},
				{ID: 3, Name: "Newsletter", IsDefault: true},
			},
		},
		hasher:   &fakeHasher{},
		sessions: newFakeSessions(),
		policy:   &fakePolicy{denyFields: map[string]bool{}},
		pub:      &fakePublisher{},
		audit:    &fakeAudit{},
		captcha:  &fakeRenderer{},
	}
	env.users.put(domain.User{
		ID: testMasterID, UserName: "admin", Email: "admin@example.com",
		PasswordHash: "hash:" + testPassword, Enabled: true, Active: true, PrimaryGroupID: 2,
	})

	env.svc = NewService(env.users, env.groups, env.hasher, env.sessions, schemas, env.policy, env.pub, Config{Site: site}).
		WithAudit(env.audit).
		WithCaptchaRenderer(env.captcha).
		WithMetrics(func(op, outcome string) { env.observed = append(env.observed, op+":"+outcome) })
	return env
}

// seedUser stores an active, enabled user with testPassword.
func (e *testEnv) seedUser(mut func(*domain.User)) domain.User {
	u := domain.User{
		ID:             testUserID,
		UserName:       "alice",
		Email:          "alice@example.com",
		DisplayName:    "Alice",
		PasswordHash:   "hash:" + testPassword,
		Locale:         "en-US",
		Title:          "New User",
		Active:         true,
		Enabled:        true,
		PrimaryGroupID: 1,
		GroupIDs:       []int64{1},
	}
	if mut != nil {
		mut(&u)
	}
	e.users.put(u)
	return u
}

// signedIn returns a stored session bound to userID.
func (e *testEnv) signedIn(userID string) session.State {
	st := session.State{ID: "sess-" + userID, UserID: userID}
	e.sessions.byID[st.ID] = st
	return st
}

func registerForm(mut func(map[string]string)) map[string]string {
	f := map[string]string{
		"spiderbro":    "http://",
		"csrf_token":   "tok",
		"user_name":    "Bob_1",
		"display_name": "Bob  Builder",
		"email":        "Bob@Example.com",
		"password":     "Builder123",
		"passwordc":    "Builder123",
	}
	if mut != nil {
		mut(f)
	}
	return f
}

func settingsForm(u domain.User, mut func(map[string]string)) map[string]string {
	f := map[string]string{
		"csrf_token":    "tok",
		"passwordcheck": testPassword,
		"email":         u.Email,
		"locale":        u.Locale,
		"display_name":  u.DisplayName,
		"password":      "",
		"passwordc":     "",
	}
	if mut != nil {
		mut(f)
	}
	return f
}
