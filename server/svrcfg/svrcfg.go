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

// Package svrcfg 伺服器設定：YAML 檔為底，環境變數覆蓋，最後由 Valid 補預設值。
package svrcfg

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/server/logger"
	"github.com/zintix-labs/royale/settings"
	"gopkg.in/yaml.v3"
)

const minSecret = 16

// RateLimits 每分鐘次數；0 表示不限制。
type RateLimits struct {
	Spin  int `yaml:"spin"  env:"ROYALE_RATE_SPIN"`
	Auth  int `yaml:"auth"  env:"ROYALE_RATE_AUTH"`
	Other int `yaml:"other" env:"ROYALE_RATE_OTHER"`
}

// Redis Addr 為空時使用單機限流
type Redis struct {
	Addr     string `yaml:"addr"     env:"ROYALE_REDIS_ADDR"`
	Password string `yaml:"password" env:"ROYALE_REDIS_PASSWORD"`
	DB       int    `yaml:"db"       env:"ROYALE_REDIS_DB"`
}

type SvrCfg struct {
	Addr         string        `yaml:"addr"          env:"ROYALE_ADDR"`
	LogMode      string        `yaml:"log_mode"      env:"ROYALE_LOG_MODE"`
	PoolSize     int           `yaml:"pool_size"     env:"ROYALE_POOL_SIZE"`
	JWTSecret    string        `yaml:"jwt_secret"    env:"ROYALE_JWT_SECRET"`
	TokenTTL     time.Duration `yaml:"token_ttl"     env:"ROYALE_TOKEN_TTL"`
	StartBalance int64         `yaml:"start_balance" env:"ROYALE_START_BALANCE"`
	AdminEmails  []string      `yaml:"admin_emails"  env:"ROYALE_ADMIN_EMAILS" envSeparator:","`
	CORSOrigins  []string      `yaml:"cors_origins"  env:"ROYALE_CORS_ORIGINS" envSeparator:","`
	Compress     bool          `yaml:"compress"      env:"ROYALE_COMPRESS"`

	ReplyDelay    time.Duration `yaml:"support_reply_delay" env:"ROYALE_SUPPORT_REPLY_DELAY"`
	SupportOnline bool          `yaml:"support_online"      env:"ROYALE_SUPPORT_ONLINE"`

	TournamentTick  time.Duration `yaml:"tournament_tick"  env:"ROYALE_TOURNAMENT_TICK"`
	SeedTournaments bool          `yaml:"seed_tournaments" env:"ROYALE_SEED_TOURNAMENTS"`

	RateLimit RateLimits      `yaml:"rate_limit"`
	Redis     Redis           `yaml:"redis"`
	Settings  settings.System `yaml:"settings"`

	// 組裝時注入
	Log    *slog.Logger   `yaml:"-" env:"-"`
	Royale *royale.Royale `yaml:"-" env:"-"`
}

// Default 開發用預設值
func Default() *SvrCfg {
	return &SvrCfg{
		Addr:            ":5808",
		LogMode:         "dev",
		PoolSize:        3,
		TokenTTL:        24 * time.Hour,
		StartBalance:    10000,
		Compress:        true,
		ReplyDelay:      2 * time.Second,
		SupportOnline:   true,
		TournamentTick:  30 * time.Second,
		SeedTournaments: true,
		RateLimit:       RateLimits{Spin: 120, Auth: 20, Other: 600},
		Settings:        settings.Default(),
	}
}

// Load path 為空時只套用環境變數。
func Load(path string) (*SvrCfg, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(err, "read config "+path)
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, errs.Wrap(err, "parse config "+path)
		}
	}
	if err := env.Parse(cfg); err != nil {
		return nil, errs.Wrap(err, "parse env")
	}
	return cfg, nil
}

// Mode 解析 LogMode：dev|prod|silence，大小寫不拘，舊名 ModeDev 等也接受。
func (sc *SvrCfg) Mode() logger.LogMode {
	return logger.ParseMode(sc.LogMode)
}

// Valid 檢查必要欄位並補預設值。
func (sc *SvrCfg) Valid() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, sc.Mode())
	}
	if sc.Royale == nil {
		return errs.NewFatal("royale is required")
	}

	// 1 <= PoolSize <= 10
	sc.PoolSize = min(10, max(1, sc.PoolSize))

	if len(sc.JWTSecret) < minSecret {
		return errs.Warnf("jwt secret must be at least %d bytes (ROYALE_JWT_SECRET)", minSecret)
	}
	if sc.TokenTTL <= 0 {
		sc.TokenTTL = 24 * time.Hour
	}
	if sc.StartBalance < 0 {
		return errs.NewWarn("start_balance must >= 0")
	}
	if sc.ReplyDelay <= 0 {
		sc.ReplyDelay = 2 * time.Second
	}
	if sc.TournamentTick <= 0 {
		sc.TournamentTick = 30 * time.Second
	}
	for i, e := range sc.AdminEmails {
		sc.AdminEmails[i] = strings.ToLower(strings.TrimSpace(e))
	}
	return sc.Settings.Valid()
}
