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

// Package ratelimit 固定視窗計數限流。單機用 Memory，多台部署用 Redis。
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zintix-labs/royale/errs"
)

// Limiter key 在 window 內最多 limit 次。
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// ErrLimited 超過限制
var ErrLimited = errs.NewLimited("rate limit exceeded")

type bucket struct {
	count int
	reset time.Time
}

// Memory 單機計數器
type Memory struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	calls   int
}

func NewMemory() *Memory {
	return &Memory{buckets: map[string]*bucket{}, now: time.Now}
}

func (m *Memory) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls%1024 == 0 {
		m.sweep(now)
	}
	b, ok := m.buckets[key]
	if !ok || !now.Before(b.reset) {
		b = &bucket{reset: now.Add(window)}
		m.buckets[key] = b
	}
	b.count++
	return b.count <= limit, nil
}

// sweep 必須持有 m.mu
func (m *Memory) sweep(now time.Time) {
	for k, b := range m.buckets {
		if !now.Before(b.reset) {
			delete(m.buckets, k)
		}
	}
}

// Redis INCR + EXPIRE：第一次計數時設定過期。
type Redis struct {
	client redis.Cmdable
	prefix string
}

func NewRedis(client redis.Cmdable, prefix string) *Redis {
	if prefix == "" {
		prefix = "royale:ratelimit:"
	}
	return &Redis{client: client, prefix: prefix}
}

// Dial 連線並 PING，失敗時回傳錯誤。
func Dial(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, errs.Wrap(err, "redis ping "+addr)
	}
	return c, nil
}

func (r *Redis) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 {
		return true, nil
	}
	k := r.prefix + key
	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, errs.Wrap(err, "rate limit incr")
	}
	if n == 1 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return false, errs.Wrap(err, "rate limit expire")
		}
	}
	return n <= int64(limit), nil
}
