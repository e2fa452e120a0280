package svrcfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/server/logger"
)

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "royale.yaml")
	raw := []byte(`addr: ":9000"
log_mode: prod
pool_size: 4
jwt_secret: from-file-secret-123
admin_emails: ["Boss@Royale.Local"]
support_reply_delay: 500ms
rate_limit:
  spin: 30
settings:
  max_daily_deposit: 5000
  min_withdraw: 100
  max_withdraw: 1000
  registration_enabled: true
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("ROYALE_ADDR", ":9100")
	t.Setenv("ROYALE_RATE_AUTH", "5")
	t.Setenv("ROYALE_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9100" {
		t.Fatalf("env must override file, addr = %q", cfg.Addr)
	}
	if cfg.PoolSize != 4 || cfg.ReplyDelay != 500*time.Millisecond {
		t.Fatalf("file values lost: pool %d delay %v", cfg.PoolSize, cfg.ReplyDelay)
	}
	if cfg.RateLimit.Spin != 30 || cfg.RateLimit.Auth != 5 || cfg.RateLimit.Other != 600 {
		t.Fatalf("rate limit = %+v", cfg.RateLimit)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
	if cfg.Settings.MaxDailyDeposit != 5000 || cfg.Settings.MaxWithdraw != 1000 {
		t.Fatalf("settings = %+v", cfg.Settings)
	}
	if cfg.Mode() != logger.ModeProd {
		t.Fatalf("mode = %v", cfg.Mode())
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
}

func TestValid(t *testing.T) {
	rl, err := royale.NewDefault()
	if err != nil {
		t.Fatalf("royale: %v", err)
	}

	cfg := Default()
	cfg.Royale = rl
	if err := cfg.Valid(); err == nil {
		t.Fatalf("empty jwt secret should fail")
	}

	cfg = Default()
	cfg.JWTSecret = "0123456789abcdef"
	if err := cfg.Valid(); err == nil {
		t.Fatalf("nil royale should fail")
	}

	cfg.Royale = rl
	cfg.PoolSize = 99
	cfg.TokenTTL = 0
	cfg.AdminEmails = []string{"  Boss@Royale.Local "}
	if err := cfg.Valid(); err != nil {
		t.Fatalf("valid: %v", err)
	}
	if cfg.PoolSize != 10 || cfg.TokenTTL != 24*time.Hour || cfg.Log == nil {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
	if cfg.AdminEmails[0] != "boss@royale.local" {
		t.Fatalf("admin email = %q", cfg.AdminEmails[0])
	}

	cfg.Settings.MinWithdraw = cfg.Settings.MaxWithdraw + 1
	if err := cfg.Valid(); err == nil {
		t.Fatalf("bad settings should fail")
	}
}
