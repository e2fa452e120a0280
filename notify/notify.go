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

// Package notify 玩家通知中心。
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zintix-labs/royale/errs"
)

type Kind string

const (
	KindBonus      Kind = "bonus"
	KindTournament Kind = "tournament"
	KindPayment    Kind = "payment"
	KindSystem     Kind = "system"
)

// MaxPerUser 每位玩家保留的通知數
const MaxPerUser = 100

var ErrNotFound = errs.NewNotFound("notification not found")

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      Kind      `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Read      bool      `json:"read"`
}

// Publisher 即時推送；hub.Hub 滿足此介面。
type Publisher interface {
	Send(uid, typ string, data any)
}

// PushType 推送時使用的訊息類型
const PushType = "NOTIFICATION"

type Center struct {
	pub Publisher

	mu     sync.RWMutex
	byUser map[string][]*Notification // 舊到新
	users  map[string]struct{}
	now    func() time.Time
}

// New pub 可為 nil
func New(pub Publisher) *Center {
	return &Center{
		pub:    pub,
		byUser: map[string][]*Notification{},
		users:  map[string]struct{}{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Track 讓 Broadcast 能送到尚未收過通知的玩家
func (c *Center) Track(uid string) {
	c.mu.Lock()
	c.users[uid] = struct{}{}
	c.mu.Unlock()
}

func (c *Center) Push(uid string, kind Kind, title, msg string) Notification {
	n := &Notification{
		ID:        uuid.NewString(),
		UserID:    uid,
		Type:      kind,
		Title:     title,
		Message:   msg,
		CreatedAt: c.now(),
	}
	c.mu.Lock()
	c.users[uid] = struct{}{}
	list := append(c.byUser[uid], n)
	if over := len(list) - MaxPerUser; over > 0 {
		list = append([]*Notification(nil), list[over:]...)
	}
	c.byUser[uid] = list
	out := *n
	c.mu.Unlock()

	if c.pub != nil {
		c.pub.Send(uid, PushType, out)
	}
	return out
}

// Broadcast 對所有已知玩家送出系統通知，回傳送出數量。
func (c *Center) Broadcast(title, msg string) int {
	c.mu.RLock()
	uids := make([]string, 0, len(c.users))
	for uid := range c.users {
		uids = append(uids, uid)
	}
	c.mu.RUnlock()
	for _, uid := range uids {
		c.Push(uid, KindSystem, title, msg)
	}
	return len(uids)
}

// List 新到舊
func (c *Center) List(uid string) []Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()
	list := c.byUser[uid]
	out := make([]Notification, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, *list[i])
	}
	return out
}

func (c *Center) UnreadCount(uid string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, x := range c.byUser[uid] {
		if !x.Read {
			n++
		}
	}
	return n
}

func (c *Center) MarkRead(uid, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, x := range c.byUser[uid] {
		if x.ID == id {
			x.Read = true
			return nil
		}
	}
	return ErrNotFound
}

// MarkAllRead 回傳這次標記的數量
func (c *Center) MarkAllRead(uid string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, x := range c.byUser[uid] {
		if !x.Read {
			x.Read = true
			n++
		}
	}
	return n
}

// Welcome 註冊時的預設通知
func (c *Center) Welcome(uid, name string, bonuses bool) {
	c.Push(uid, KindSystem, "Welcome to Royale", "Hello "+name+", your account is ready.")
	if bonuses {
		c.Push(uid, KindBonus, "Welcome bonus", "100% on your first deposit up to 100,000 RUB.")
	}
	c.Push(uid, KindTournament, "Tournaments", "Join a tournament in the lobby and compete for the prize pool.")
}
