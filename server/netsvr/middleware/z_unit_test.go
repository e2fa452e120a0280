package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/server/ratelimit"
)

type fakeAuth map[string]account.User

func (f fakeAuth) Authenticate(raw string) (account.User, error) {
	u, ok := f[raw]
	if !ok {
		return account.User{}, errs.NewUnauthorized("invalid token")
	}
	return u, nil
}

var users = fakeAuth{
	"player": {ID: "u1", Name: "Ivan", Role: account.RolePlayer},
	"admin":  {ID: "u2", Name: "Boss", Role: account.RoleAdmin},
}

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte(strings.Repeat("royale ", 200)))
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAuthAndAdmin(t *testing.T) {
	var seen account.User
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = User(r)
		w.WriteHeader(http.StatusNoContent)
	})
	user := Auth(users)(inner)
	admin := Auth(users)(Admin(inner))

	tests := []struct {
		name string
		h    http.Handler
		req  func() *http.Request
		code int
	}{
		{"no token", user, func() *http.Request { return httptest.NewRequest(http.MethodGet, "/", nil) }, http.StatusUnauthorized},
		{"bad scheme", user, func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Basic player")
			return r
		}, http.StatusUnauthorized},
		{"bad token", user, func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer nope")
			return r
		}, http.StatusUnauthorized},
		{"bearer", user, func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer player")
			return r
		}, http.StatusNoContent},
		{"query token", user, func() *http.Request { return httptest.NewRequest(http.MethodGet, "/?token=player", nil) }, http.StatusNoContent},
		{"player on admin", admin, func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "bearer player")
			return r
		}, http.StatusForbidden},
		{"admin", admin, func() *http.Request {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.Header.Set("Authorization", "Bearer admin")
			return r
		}, http.StatusNoContent},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if rec := serve(tc.h, tc.req()); rec.Code != tc.code {
				t.Fatalf("code = %d, want %d (%s)", rec.Code, tc.code, rec.Body.String())
			}
		})
	}
	if seen.ID != "u2" {
		t.Fatalf("last user = %+v", seen)
	}
}

func TestCompressGzip(t *testing.T) {
	h := Compress(DefaultCompressConfig)(http.HandlerFunc(okHandler))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := serve(h, r)
	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("encoding = %q", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	b, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(string(b), "royale royale") {
		t.Fatalf("body = %q", b[:20])
	}

	// 停用時原樣輸出
	off := Compress(CompressConfig{Disabled: true})(http.HandlerFunc(okHandler))
	rec = serve(off, r)
	if rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("disabled compressor encoded the body")
	}
}

func TestCompressNoBody(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept-Encoding", "zstd, gzip")
	rec := serve(h, r)
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Fatalf("code = %d, body %d bytes", rec.Code, rec.Body.Len())
	}
	if rec.Header().Get("Content-Encoding") != "" {
		t.Fatalf("204 must not be encoded")
	}
}

func TestRecover(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})))
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/x", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "request_id") {
		t.Fatalf("body = %s", rec.Body.String())
	}
	if !strings.Contains(buf.String(), "panic recovered") {
		t.Fatalf("panic not logged: %s", buf.String())
	}
}

func TestRequestIDEcho(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetReqId(r)))
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Request-Id", "abc-123")
	rec := serve(h, r)
	if rec.Header().Get("X-Request-Id") != "abc-123" || rec.Body.String() != "abc-123" {
		t.Fatalf("request id = %q / %q", rec.Header().Get("X-Request-Id"), rec.Body.String())
	}
}

func TestAccessLogUser(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := AccessLog(log)(Auth(users)(http.HandlerFunc(okHandler)))
	r := httptest.NewRequest(http.MethodGet, "/v1/me?token=player", nil)
	serve(h, r)
	out := buf.String()
	if !strings.Contains(out, `"msg":"http.access"`) || !strings.Contains(out, `"uid":"u1"`) {
		t.Fatalf("access log = %s", out)
	}

	buf.Reset()
	serve(h, httptest.NewRequest(http.MethodGet, "/v1/me", nil))
	if !strings.Contains(buf.String(), `"status":401`) || !strings.Contains(buf.String(), `"level":"WARN"`) {
		t.Fatalf("access log = %s", buf.String())
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(ratelimit.NewMemory(), "test", 2, time.Minute, nil)(http.HandlerFunc(okHandler))
	for i := 0; i < 2; i++ {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if rec := serve(h, r); rec.Code != http.StatusOK {
			t.Fatalf("request %d code = %d", i, rec.Code)
		}
	}
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("code = %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "60" {
		t.Fatalf("retry-after = %q", rec.Header().Get("Retry-After"))
	}

	// 其他來源不受影響
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.9:4000"
	if rec := serve(h, r); rec.Code != http.StatusOK {
		t.Fatalf("other client code = %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"https://royale.example"})(http.HandlerFunc(okHandler))
	r := httptest.NewRequest(http.MethodOptions, "/v1/games", nil)
	r.Header.Set("Origin", "https://royale.example")
	r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(h, r)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://royale.example" {
		t.Fatalf("allow origin = %q", got)
	}

	r = httptest.NewRequest(http.MethodGet, "/v1/games", nil)
	r.Header.Set("Origin", "https://evil.example")
	rec = serve(h, r)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("foreign origin allowed: %q", got)
	}
}
