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

package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	// 204 No Content, 304 Not Modified, 1xx Informational
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// CompressConfig 壓縮等級；Disabled 時直接放行。
type CompressConfig struct {
	Disabled  bool
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.DefaultCompression,
	ZstdLevel: zstd.SpeedFastest,
}

// compressor 各自持有 writer pool，不同設定不共用。
type compressor struct {
	cfg      CompressConfig
	gzipPool sync.Pool
	zstdPool sync.Pool
}

func (c *compressor) zstdWriter(w io.Writer) (*zstd.Encoder, error) {
	if v := c.zstdPool.Get(); v != nil {
		zw := v.(*zstd.Encoder)
		zw.Reset(w)
		return zw, nil
	}
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(c.cfg.ZstdLevel),
		zstd.WithEncoderConcurrency(1),
	)
}

func (c *compressor) gzipWriter(w io.Writer) (*gzip.Writer, error) {
	if v := c.gzipPool.Get(); v != nil {
		gw := v.(*gzip.Writer)
		gw.Reset(w)
		return gw, nil
	}
	return gzip.NewWriterLevel(w, c.cfg.GzipLevel)
}

// --- ResponseWriter Wrapper ---

type compressResponseWriter struct {
	http.ResponseWriter
	w        io.Writer // gzip.Writer 或 zstd.Encoder
	disabled bool      // 204/304 動態取消壓縮
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}
	cw.Header().Del("Content-Length")
	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.w.Write(b)
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")
	if isNoBodyStatus(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Flush() {
	if !cw.disabled {
		if f, ok := cw.w.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

// --- Middleware 入口 ---

// Compression 以預設設定壓縮回應
func Compression(next http.Handler) http.Handler {
	return Compress(DefaultCompressConfig)(next)
}

// Compress 依 Accept-Encoding 選 zstd 或 gzip；WebSocket 與 HEAD 不壓縮。
func Compress(cfg CompressConfig) func(http.Handler) http.Handler {
	if cfg.Disabled {
		return func(next http.Handler) http.Handler { return next }
	}
	c := &compressor{cfg: cfg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || isWebSocketUpgrade(r) || w.Header().Get("Content-Encoding") != "" {
				next.ServeHTTP(w, r)
				return
			}
			encoding := r.Header.Get("Accept-Encoding")
			switch {
			case strings.Contains(encoding, "zstd"):
				zw, err := c.zstdWriter(w)
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				w.Header().Set("Content-Encoding", "zstd")
				w.Header().Add("Vary", "Accept-Encoding")
				cw := &compressResponseWriter{ResponseWriter: w, w: zw}
				defer func() {
					// 204/304 丟棄 footer
					if cw.disabled {
						zw.Reset(io.Discard)
					}
					_ = zw.Close()
					c.zstdPool.Put(zw)
				}()
				next.ServeHTTP(cw, r)

			case strings.Contains(encoding, "gzip"):
				gw, err := c.gzipWriter(w)
				if err != nil {
					next.ServeHTTP(w, r)
					return
				}
				w.Header().Set("Content-Encoding", "gzip")
				w.Header().Add("Vary", "Accept-Encoding")
				cw := &compressResponseWriter{ResponseWriter: w, w: gw}
				defer func() {
					if cw.disabled {
						gw.Reset(io.Discard)
					}
					_ = gw.Close()
					c.gzipPool.Put(gw)
				}()
				next.ServeHTTP(cw, r)

			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
