package usecase

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"menu_backend/internal/feature/auth/domain/entity"
)

// fakeClock はテストで進められる時計です。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
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

// plainHasher は計算コストの無いHasherです。ハッシュが平文と異なることだけを保証します。
type plainHasher struct {
	compares int
	lastHash string

	// HashErr が設定されている場合、Hashはこのエラーを返します。
	HashErr error
}

func (h *plainHasher) Hash(secret string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return "h$" + secret, nil
}

func (h *plainHasher) Compare(hash, secret string) bool {
	h.compares++
	h.lastHash = hash
	return strings.HasPrefix(hash, "h$") && hash[2:] == secret
}

// memUsers はUserRepositoryのインメモリ実装です。
type memUsers struct {
	mu     sync.Mutex
	nextID uint
	byID   map[uint]*entity.User
	writes int

	// FindErr が設定されている場合、検索はこのエラーを返します。
	FindErr error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[uint]*entity.User{}}
}

func (r *memUsers) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.createLocked(u)
}

func (r *memUsers) createLocked(u *entity.User) error {
	for _, existing := range r.byID {
		if existing.Email == u.Email {
			return ErrEmailAlreadyExists
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.byID[u.ID] = &cp
	return nil
}

func (r *memUsers) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	for _, u := range r.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memUsers) FindByID(_ context.Context, id uint) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	u, ok := r.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) UpdateLoginState(_ context.Context, id uint, attempts int, lockUntil *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	r.writes++
	u.LoginAttempts = attempts
	u.LockUntil = lockUntil
	return nil
}

func (r *memUsers) get(email string) *entity.User {
	u, err := r.FindByEmail(context.Background(), email)
	if err != nil {
		return nil
	}
	return u
}

// memPending はPendingVerificationRepositoryのインメモリ実装です。
type memPending struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*entity.PendingVerification
	users  *memUsers
}

func newMemPending(users *memUsers) *memPending {
	return &memPending{rows: map[uint]*entity.PendingVerification{}, users: users}
}

func (r *memPending) Replace(_ context.Context, p *entity.PendingVerification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.Email == p.Email {
			delete(r.rows, id)
		}
	}
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memPending) FindByEmail(_ context.Context, email string) (*entity.PendingVerification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, ErrPendingNotFound
}

func (r *memPending) IncrementAttempts(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		row.Attempts++
	}
	return nil
}

func (r *memPending) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memPending) Promote(_ context.Context, p *entity.PendingVerification, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return ErrPendingNotFound
	}
	r.users.mu.Lock()
	err := r.users.createLocked(user)
	r.users.mu.Unlock()
	if err != nil {
		return err
	}
	delete(r.rows, p.ID)
	return nil
}

func (r *memPending) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, row := range r.rows {
		if row.IsExpired(now) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

func (r *memPending) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}

// memResets はPasswordResetRepositoryのインメモリ実装です。
type memResets struct {
	mu     sync.Mutex
	nextID uint
	rows   map[uint]*entity.PasswordReset
	users  *memUsers
}

func newMemResets(users *memUsers) *memResets {
	return &memResets{rows: map[uint]*entity.PasswordReset{}, users: users}
}

func (r *memResets) Replace(_ context.Context, p *entity.PasswordReset) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, row := range r.rows {
		if row.Email == p.Email {
			delete(r.rows, id)
		}
	}
	r.nextID++
	p.ID = r.nextID
	cp := *p
	r.rows[p.ID] = &cp
	return nil
}

func (r *memResets) FindByEmail(_ context.Context, email string) (*entity.PasswordReset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.Email == email {
			cp := *row
			return &cp, nil
		}
	}
	return nil, ErrResetNotFound
}

func (r *memResets) IncrementAttempts(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[id]; ok {
		row.Attempts++
	}
	return nil
}

func (r *memResets) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

func (r *memResets) Consume(_ context.Context, p *entity.PasswordReset, userID uint, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[p.ID]; !ok {
		return ErrResetNotFound
	}
	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	u, ok := r.users.byID[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.LoginAttempts = 0
	u.LockUntil = nil
	delete(r.rows, p.ID)
	return nil
}

func (r *memResets) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// memSessions はSessionRepositoryのインメモリ実装です。
type memSessions struct {
	mu    sync.Mutex
	rows  map[string]*entity.Session
	clock *fakeClock
}

func newMemSessions(clock *fakeClock) *memSessions {
	return &memSessions{rows: map[string]*entity.Session{}, clock: clock}
}

func (r *memSessions) Create(_ context.Context, s *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.rows[s.ID] = &cp
	return nil
}

func (r *memSessions) FindByID(_ context.Context, id string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessions) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return ErrSessionNotFound
	}
	now := r.clock.Now()
	s.RevokedAt = &now
	return nil
}

func (r *memSessions) RevokeAllByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	for _, s := range r.rows {
		if s.UserID == userID && s.RevokedAt == nil {
			s.RevokedAt = &now
		}
	}
	return nil
}

func (r *memSessions) DeleteExpired(_ context.Context) (int64, error) {
	return 0, nil
}

func (r *memSessions) active(userID uint) []*entity.Session {
	now := r.clock.Now()
	var out []*entity.Session
	for _, s := range r.rows {
		if s.UserID == userID && s.IsValid(now) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memSessions) CountByUserID(_ context.Context, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.active(userID))), nil
}

func (r *memSessions) DeleteOldestByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if active := r.active(userID); len(active) > 0 {
		delete(r.rows, active[0].ID)
	}
	return nil
}

// stubTokens はTokenGeneratorのスタブです。
type stubTokens struct{}

func (stubTokens) GenerateToken(userID uint, email, name string) (string, error) {
	return "access-" + email, nil
}

func (stubTokens) TTL() time.Duration { return time.Hour }

// captureSender は送信されたコードを記録するCodeSenderです。
type captureSender struct {
	mu       sync.Mutex
	verify   map[string]string
	reset    map[string]string
	sent     int
	SendFunc func(email string) error
}

func newCaptureSender() *captureSender {
	return &captureSender{verify: map[string]string{}, reset: map[string]string{}}
}

func (s *captureSender) SendVerificationCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendFunc != nil {
		if err := s.SendFunc(email); err != nil {
			return err
		}
	}
	s.sent++
	s.verify[email] = code
	return nil
}

func (s *captureSender) SendPasswordResetCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SendFunc != nil {
		if err := s.SendFunc(email); err != nil {
			return err
		}
	}
	s.sent++
	s.reset[email] = code
	return nil
}

var errBoom = errors.New("boom")

// env はテスト用に組み立てたAuthUsecaseとその依存です。
type env struct {
	uc        *AuthUsecase
	clock     *fakeClock
	users     *memUsers
	pending   *memPending
	resets    *memResets
	sessions  *memSessions
	sender    *captureSender
	passwords *plainHasher
}

func newEnv(cfg Config, opts ...Option) *env {
	clock := newFakeClock()
	users := newMemUsers()
	e := &env{
		clock:     clock,
		users:     users,
		pending:   newMemPending(users),
		resets:    newMemResets(users),
		sessions:  newMemSessions(clock),
		sender:    newCaptureSender(),
		passwords: &plainHasher{},
	}
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	uc, err := NewAuthUsecase(Deps{
		Users:     e.users,
		Pending:   e.pending,
		Resets:    e.resets,
		Sessions:  e.sessions,
		Tokens:    stubTokens{},
		Sender:    e.sender,
		Passwords: e.passwords,
		Codes:     &plainHasher{},
	}, cfg, opts...)
	if err != nil {
		panic(err)
	}
	e.uc = uc
	return e
}

// seedUser は本登録済みユーザーを作成します。
func (e *env) seedUser(email, password string) *entity.User {
	hash, _ := e.passwords.Hash(password)
	u := &entity.User{Email: email, Name: "Nino", PasswordHash: hash}
	if err := e.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}
