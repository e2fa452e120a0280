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

// Package support 客服聊天：玩家留言後延遲一段時間自動回覆。
package support

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/sdk/core"
)

const (
	SenderUser    = "user"
	SenderSupport = "support"

	KindText   = "text"
	KindSystem = "system"

	// 推送類型，與 hub 一致
	PushMessage = "CHAT_MESSAGE"
	PushTyping  = "CHAT_TYPING"

	DefaultReplyDelay = 2 * time.Second
	MaxText           = 1000
)

const welcome = "Welcome to Royale support! How can I help you?"

var replies = []string{
	"Thank you for your question! I will check this information for you.",
	"I understand your situation. Let's sort it out together.",
	"That's a great question! Let me find the details for you.",
	"I will forward your request to a specialist. You will get an answer within 5 minutes.",
	"Thank you for contacting us! Checking your account...",
}

// QuickPrompts 常用問題
var QuickPrompts = []string{"Deposit problem", "Bonus question", "Technical issue"}

var ErrClosed = errs.NewForbidden("support chat is closed")

type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Conversation 一位玩家的對話
type Conversation struct {
	Messages     []Message `json:"messages"`
	Typing       bool      `json:"typing"`
	Online       bool      `json:"online"`
	QuickPrompts []string  `json:"quick_prompts"`
}

// Publisher 即時推送；hub.Hub 滿足此介面。
type Publisher interface {
	Send(uid, typ string, data any)
}

type conv struct {
	msgs   []Message
	typing int // 尚未回覆的訊息數
}

// Service 實作 app.Component：Run 阻塞到 Shutdown，Shutdown 取消所有待回覆。
type Service struct {
	log    *slog.Logger
	pub    Publisher
	delay  time.Duration
	online bool

	cmu  sync.Mutex // 保護 core
	core *core.Core

	mu     sync.Mutex
	convs  map[string]*conv
	timers map[uint64]*time.Timer
	seq    uint64
	closed bool
	stop   chan struct{}
	once   sync.Once
}

// New delay <= 0 使用 DefaultReplyDelay；pub 可為 nil。
func New(log *slog.Logger, pub Publisher, c *core.Core, delay time.Duration, online bool) (*Service, error) {
	if c == nil {
		return nil, errs.NewFatal("support: nil core")
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if delay <= 0 {
		delay = DefaultReplyDelay
	}
	return &Service{
		log:    log.With("component", "support"),
		pub:    pub,
		delay:  delay,
		online: online,
		core:   c,
		convs:  map[string]*conv{},
		timers: map[uint64]*time.Timer{},
		stop:   make(chan struct{}),
	}, nil
}

func (s *Service) newMsg(uid, sender, text, kind string) Message {
	return Message{ID: uuid.NewString(), UserID: uid, Sender: sender, Text: text, Kind: kind, CreatedAt: time.Now().UTC()}
}

// get 必須持有 s.mu
func (s *Service) get(uid string) *conv {
	c, ok := s.convs[uid]
	if !ok {
		c = &conv{msgs: []Message{s.newMsg(uid, SenderSupport, welcome, KindText)}}
		s.convs[uid] = c
	}
	return c
}

func (s *Service) Conversation(uid string) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.get(uid)
	return Conversation{
		Messages:     append([]Message(nil), c.msgs...),
		Typing:       c.typing > 0,
		Online:       s.online,
		QuickPrompts: QuickPrompts,
	}
}

// Send 新增玩家訊息並排程一則自動回覆。
func (s *Service) Send(uid, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, errs.NewWarn("message is empty")
	}
	if utf8.RuneCountInString(text) > MaxText {
		return Message{}, errs.Warnf("message longer than %d characters", MaxText)
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Message{}, ErrClosed
	}
	c := s.get(uid)
	m := s.newMsg(uid, SenderUser, text, KindText)
	c.msgs = append(c.msgs, m)
	c.typing++
	s.seq++
	id := s.seq
	s.timers[id] = time.AfterFunc(s.delay, func() { s.reply(uid, id) })
	s.mu.Unlock()

	s.push(uid, PushTyping, map[string]bool{"typing": true})
	return m, nil
}

func (s *Service) reply(uid string, id uint64) {
	s.cmu.Lock()
	text := replies[s.core.IntN(len(replies))]
	s.cmu.Unlock()

	s.mu.Lock()
	if _, ok := s.timers[id]; !ok || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.timers, id)
	c := s.get(uid)
	m := s.newMsg(uid, SenderSupport, text, KindText)
	c.msgs = append(c.msgs, m)
	c.typing--
	typing := c.typing > 0
	s.mu.Unlock()

	s.push(uid, PushMessage, m)
	s.push(uid, PushTyping, map[string]bool{"typing": typing})
}

func (s *Service) push(uid, typ string, data any) {
	if s.pub != nil {
		s.pub.Send(uid, typ, data)
	}
}

// Pending 尚未送出的回覆數
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

func (s *Service) Run() error {
	<-s.stop
	return nil
}

func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	n := len(s.timers)
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.stop) })
	if n > 0 {
		s.log.Info("support replies cancelled", "pending", n)
	}
	return ctx.Err()
}
