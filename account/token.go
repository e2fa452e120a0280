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

package account

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/zintix-labs/royale/errs"
)

var ErrToken = errs.NewUnauthorized("invalid token")

// Claims access token 內容：sub = user id
type Claims struct {
	Role Role `json:"role"`
	jwt.RegisteredClaims
}

// Tokens 以 HS256 簽發與驗證 access token。
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret []byte, ttl time.Duration) (*Tokens, error) {
	if len(secret) < 16 {
		return nil, errs.NewFatal("jwt secret must be at least 16 bytes")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Tokens{secret: secret, ttl: ttl, now: time.Now}, nil
}

func (t *Tokens) Issue(uid string, role Role) (string, time.Time, error) {
	now := t.now()
	exp := now.Add(t.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errs.Wrap(err, "sign token")
	}
	return s, exp, nil
}

func (t *Tokens) Parse(raw string) (*Claims, error) {
	claims := new(Claims)
	tok, err := jwt.ParseWithClaims(raw, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil || !tok.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrToken.With("expired")
		}
		return nil, ErrToken
	}
	if claims.Subject == "" {
		return nil, ErrToken.With("missing subject")
	}
	return claims, nil
}
