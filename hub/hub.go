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

// Package hub 以 WebSocket 推送即時事件（餘額、聊天、通知、彩金）。
//
// 同一玩家可同時有多條連線；UserID 為空的訊息送給所有連線。
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zintix-labs/royale/errs"
)

const (
	TypePing          = "PING"
	TypePong          = "PONG"
	TypeBalanceUpdate = "BALANCE_UPDATE"
	TypeChatMessage   = "CHAT_MESSAGE"
	TypeChatTyping    = "CHAT_TYPING"
	TypeNotification  = "NOTIFICATION"
	TypeJackpotUpdate = "JACKPOT_UPDATE"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxMessage = 4096
	sendBuffer = 64
)

var ErrClosed = errs.NewFatal("hub closed")

// Message 推送與接收共用的封包
type Message struct {
	Type   string `json:"type"`
	UserID string `json:"user_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type client struct {
	uid  string
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// trySend 佇列滿或已關閉時回傳 false
func (c *client) trySend(b []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Hub 實作 app.Component。
type Hub struct {
	log      *slog.Logger
	upgrader websocket.Upgrader

	register   chan *client
	unregister chan *client
	broadcast  chan *Message

	mu      sync.RWMutex
	clients map[string]map[*client]struct{}

	onConnect func(uid string)
	dropped   atomic.Uint64

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// New checkOrigin 為 nil 時接受所有來源。
func New(log *slog.Logger, checkOrigin func(r *http.Request) bool) *Hub {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	return &Hub{
		log: log.With("component", "hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan *Message, 256),
		clients:    map[string]map[*client]struct{}{},
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// OnConnect 新連線註冊後呼叫（例如推送目前餘額）。需在 Run 之前設定。
func (h *Hub) OnConnect(fn func(uid string)) { h.onConnect = fn }

func (h *Hub) Run() error {
	defer close(h.done)
	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			for uid, set := range h.clients {
				for c := range set {
					c.close()
				}
				delete(h.clients, uid)
			}
			h.mu.Unlock()
			return nil
		case c := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[c.uid]
			if !ok {
				set = map[*client]struct{}{}
				h.clients[c.uid] = set
			}
			set[c] = struct{}{}
			h.mu.Unlock()
			h.log.Debug("ws client registered", "uid", c.uid)
			if h.onConnect != nil {
				go h.onConnect(c.uid)
			}
		case c := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[c.uid]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					c.close()
				}
				if len(set) == 0 {
					delete(h.clients, c.uid)
				}
			}
			h.mu.Unlock()
			h.log.Debug("ws client unregistered", "uid", c.uid)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

func (h *Hub) Shutdown(ctx context.Context) error {
	h.stopOnce.Do(func() { close(h.stop) })
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hub) deliver(msg *Message) {
	b, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("ws marshal failed", "type", msg.Type, "err", err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	push := func(set map[*client]struct{}) {
		for c := range set {
			if !c.trySend(b) {
				h.dropped.Add(1)
			}
		}
	}
	if msg.UserID != "" {
		push(h.clients[msg.UserID])
		return
	}
	for _, set := range h.clients {
		push(set)
	}
}

// Send 推送給單一玩家的所有連線；hub 已關閉或佇列滿時丟棄。
func (h *Hub) Send(uid, typ string, data any) {
	h.enqueue(&Message{Type: typ, UserID: uid, Data: data})
}

// Broadcast 推送給所有連線
func (h *Hub) Broadcast(typ string, data any) {
	h.enqueue(&Message{Type: typ, Data: data})
}

func (h *Hub) enqueue(msg *Message) {
	select {
	case <-h.stop:
		return
	default:
	}
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
	}
}

// Online 目前在線的玩家數
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) IsOnline(uid string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[uid]) > 0
}

// Dropped 因佇列滿而丟棄的訊息數
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Serve 升級為 WebSocket 並為 uid 服務，直到連線結束。
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, uid string) error {
	select {
	case <-h.stop:
		return ErrClosed
	default:
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade 已回應錯誤
		return errs.Wrap(err, "ws upgrade")
	}
	c := &client{uid: uid, conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.stop:
		_ = conn.Close()
		return ErrClosed
	}
	go h.writePump(c)
	h.readPump(c)
	return nil
}

func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.stop:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("ws read failed", "uid", c.uid, "err", err)
			}
			return
		}
		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			h.log.Debug("ws frame dropped", "uid", c.uid, "err", err)
			continue
		}
		switch msg.Type {
		case TypePing:
			b, _ := json.Marshal(Message{Type: TypePong, Data: map[string]int64{"timestamp": time.Now().Unix()}})
			if !c.trySend(b) {
				h.dropped.Add(1)
			}
		default:
			h.log.Debug("ws message ignored", "uid", c.uid, "type", msg.Type)
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
