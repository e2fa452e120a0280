// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package account 管理玩家帳號、登入與個人資料。
package account

import (
	"log/slog"
	"net/mail"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/rounds"
	"github.com/zintix-labs/royale/settings"
	"github.com/zintix-labs/royale/wallet"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RolePlayer Role = "player"
	RoleAdmin  Role = "admin"
)

type Status string

const (
	StatusActive  Status = "active"
	StatusBlocked Status = "blocked"
	StatusVIP     Status = "vip"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusBlocked, StatusVIP:
		return st, true
	}
	return "", false
}

const (
	MinPassword   = 8
	RecentRounds  = 20
	maxNameLength = 64
)

var (
	ErrRegistrationClosed = errs.NewForbidden("registration is disabled")
	ErrEmailTaken         = errs.NewConflict("email already registered")
	ErrCredentials        = errs.NewUnauthorized("invalid email or password")
	ErrBlocked            = errs.NewForbidden("account is blocked")
	ErrNotFound           = errs.NewNotFound("user not found")
)

// User 帳號資料；餘額與統計在 wallet。
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Status       Status    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Options 帳號服務參數
type Options struct {
	StartBalance int64    // 註冊贈送的起始餘額
	AdminEmails  []string // 以這些 email 註冊者為管理員
	HashCost     int      // bcrypt cost；0 使用 bcrypt.DefaultCost
}

// Service 帳號服務，可併發使用。
type Service struct {
	log    *slog.Logger
	opts   Options
	tokens *Tokens
	wallet *wallet.Wallet
	rounds *rounds.Log
	sets   *settings.Store

	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User

	hmu        sync.RWMutex
	onRegister []func(User)
}

func NewService(log *slog.Logger, opts Options, tokens *Tokens, w *wallet.Wallet, rl *rounds.Log, sets *settings.Store) (*Service, error) {
	if tokens == nil || w == nil || rl == nil || sets == nil {
		return nil, errs.NewFatal("account: nil dependency")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	admins := make([]string, 0, len(opts.AdminEmails))
	for _, e := range opts.AdminEmails {
		if e = normEmail(e); e != "" {
			admins = append(admins, e)
		}
	}
	opts.AdminEmails = admins
	return &Service{
		log:     log.With("component", "account"),
		opts:    opts,
		tokens:  tokens,
		wallet:  w,
		rounds:  rl,
		sets:    sets,
		byID:    map[string]*User{},
		byEmail: map[string]*User{},
	}, nil
}

// OnRegister 註冊成功後呼叫（例如送出歡迎通知）。
func (s *Service) OnRegister(fn func(User)) {
	s.hmu.Lock()
	s.onRegister = append(s.onRegister, fn)
	s.hmu.Unlock()
}

func (s *Service) Tokens() *Tokens { return s.tokens }

// RegisterInput 註冊表單
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (in *RegisterInput) valid() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = normEmail(in.Email)
	if in.Name == "" || len(in.Name) > maxNameLength {
		return errs.NewWarn("name is required")
	}
	if a, err := mail.ParseAddress(in.Email); err != nil || a.Address != in.Email {
		return errs.NewWarn("invalid email")
	}
	if len(in.Password) < MinPassword {
		return errs.Warnf("password must be at least %d characters", MinPassword)
	}
	if in.Password != in.ConfirmPassword {
		return errs.NewWarn("passwords do not match")
	}
	return nil
}

// Session 登入或註冊成功的回應
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

func (s *Service) Register(in RegisterInput) (*Session, error) {
	if !s.sets.Get().RegistrationEnabled {
		return nil, ErrRegistrationClosed
	}
	if err := in.valid(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.HashCost)
	if err != nil {
		return nil, errs.Wrap(err, "hash password")
	}
	u := &User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		Role:         RolePlayer,
		Status:       StatusActive,
		RegisteredAt: time.Now().UTC(),
	}
	if slices.Contains(s.opts.AdminEmails, u.Email) {
		u.Role = RoleAdmin
	}

	s.mu.Lock()
	if _, ok := s.byEmail[u.Email]; ok {
		s.mu.Unlock()
		return nil, ErrEmailTaken
	}
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u
	s.mu.Unlock()

	if err := s.wallet.Open(u.ID, u.Email, s.opts.StartBalance); err != nil {
		s.mu.Lock()
		delete(s.byID, u.ID)
		delete(s.byEmail, u.Email)
		s.mu.Unlock()
		return nil, err
	}
	s.log.Info("user registered", "uid", u.ID, "role", u.Role)

	s.hmu.RLock()
	hooks := slices.Clone(s.onRegister)
	s.hmu.RUnlock()
	for _, fn := range hooks {
		fn(*u)
	}
	return s.session(u)
}

func (s *Service) Login(email, password string) (*Session, error) {
	s.mu.RLock()
	u, ok := s.byEmail[normEmail(email)]
	var cp User
	if ok {
		cp = *u
	}
	s.mu.RUnlock()
	if !ok {
		// 帳號不存在時也比對一次，回應時間一致
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cp.PasswordHash), []byte(password)); err != nil {
		return nil, ErrCredentials
	}
	if cp.Status == StatusBlocked {
		return nil, ErrBlocked
	}
	return s.session(&cp)
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("royale-dummy-password"), bcrypt.MinCost)

func (s *Service) session(u *User) (*Session, error) {
	tok, exp, err := s.tokens.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, ExpiresAt: exp, User: *u}, nil
}

// Authenticate 驗證 token 並確認帳號仍可用；回傳目前的使用者資料。
func (s *Service) Authenticate(raw string) (User, error) {
	c, err := s.tokens.Parse(raw)
	if err != nil {
		return User{}, err
	}
	u, err := s.Get(c.Subject)
	if err != nil {
		return User{}, ErrToken.With("unknown subject")
	}
	if u.Status == StatusBlocked {
		return User{}, ErrBlocked
	}
	return u, nil
}

func (s *Service) Get(uid string) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[uid]
	if !ok {
		return User{}, ErrNotFound
	}
	return *u, nil
}

// SetStatus 更新帳號狀態；blocked 同步鎖住錢包。
func (s *Service) SetStatus(uid string, st Status) (User, error) {
	if _, ok := ParseStatus(string(st)); !ok {
		return User{}, errs.Warnf("invalid status %q", st)
	}
	s.mu.Lock()
	u, ok := s.byID[uid]
	if !ok {
		s.mu.Unlock()
		return User{}, ErrNotFound
	}
	u.Status = st
	cp := *u
	s.mu.Unlock()

	if err := s.wallet.SetBlocked(uid, st == StatusBlocked); err != nil {
		return User{}, err
	}
	s.log.Info("user status changed", "uid", uid, "status", st)
	return cp, nil
}

// View 帳號加上錢包統計與 VIP，供個人頁與後台使用。
type View struct {
	User
	Stats wallet.Account `json:"stats"`
	VIP   VIP            `json:"vip"`
}

// Profile 個人頁：統計、VIP 與最近 RecentRounds 局。
type Profile struct {
	View
	Recent []rounds.Round `json:"recent_rounds"`
}

func (s *Service) View(uid string) (View, error) {
	u, err := s.Get(uid)
	if err != nil {
		return View{}, err
	}
	acc, err := s.wallet.Get(uid)
	if err != nil {
		return View{}, err
	}
	return View{User: u, Stats: acc, VIP: VIPOf(acc.VIPPoints)}, nil
}

func (s *Service) Profile(uid string) (*Profile, error) {
	v, err := s.View(uid)
	if err != nil {
		return nil, err
	}
	return &Profile{View: v, Recent: s.rounds.Recent(uid, RecentRounds)}, nil
}

// Query 後台使用者清單條件
type Query struct {
	Search string // 比對 name 或 email，不分大小寫
	Status Status
}

// List 依註冊時間新到舊
func (s *Service) List(q Query) []View {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	s.mu.RLock()
	users := make([]User, 0, len(s.byID))
	for _, u := range s.byID {
		if q.Status != "" && u.Status != q.Status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) && !strings.Contains(u.Email, search) {
			continue
		}
		users = append(users, *u)
	}
	s.mu.RUnlock()

	sort.Slice(users, func(i, j int) bool {
		if users[i].RegisteredAt.Equal(users[j].RegisteredAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].RegisteredAt.After(users[j].RegisteredAt)
	})
	out := make([]View, 0, len(users))
	for _, u := range users {
		acc, _ := s.wallet.Get(u.ID)
		out = append(out, View{User: u, Stats: acc, VIP: VIPOf(acc.VIPPoints)})
	}
	return out
}

// IDs 全部使用者 id
func (s *Service) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byID))
	for id := range s.byID {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func normEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}
