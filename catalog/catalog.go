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

// Package catalog 維護「桌台目錄」：GID / 名稱 -> 設定檔。
//
// 設定檔只從注入的扁平 fs.FS 讀取，註冊時即解析並驗證，之後只讀。
package catalog

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/zintix-labs/royale/errs"
	"github.com/zintix-labs/royale/rules"
)

var (
	ErrDupID   = errs.NewConflict("duplicate game id")
	ErrDupName = errs.NewConflict("duplicate game name")
	ErrFrozen  = errs.NewWarn("catalog already frozen")
)

type Entry struct {
	GID        rules.GID
	Name       string
	ConfigName string
}

// Summary 是對外列舉遊戲時使用的摘要（大廳、/v1/games）。
type Summary struct {
	GID    rules.GID      `json:"gid"`
	Name   string         `json:"name"`
	Title  string         `json:"title"`
	Logic  rules.LogicKey `json:"logic"`
	MinBet int64          `json:"min_bet"`
	MaxBet int64          `json:"max_bet"`
	Chips  []int64        `json:"chips"`
}

func SummaryOf(gs *rules.GameSetting) Summary {
	return Summary{
		GID:    gs.GameID,
		Name:   gs.GameName,
		Title:  gs.Title,
		Logic:  gs.LogicKey,
		MinBet: gs.MinBet,
		MaxBet: gs.MaxBet,
		Chips:  append([]int64(nil), gs.Chips...),
	}
}

type Catalog struct {
	mu       sync.RWMutex
	byID     map[rules.GID]Entry
	byName   map[string]Entry
	settings map[rules.GID]*rules.GameSetting
	ids      []rules.GID
	files    map[string]struct{}
	config   *multiFS
	frozen   bool
}

func New(cfg ...fs.FS) (*Catalog, error) {
	m, err := newMultiFS(cfg...)
	if err != nil {
		return nil, errs.Wrap(err, "can not create catalog")
	}
	return &Catalog{
		byID:     map[rules.GID]Entry{},
		byName:   map[string]Entry{},
		settings: map[rules.GID]*rules.GameSetting{},
		ids:      make([]rules.GID, 0, 16),
		files:    map[string]struct{}{},
		config:   m,
	}, nil
}

// Register 一次性註冊一批遊戲；任一筆失敗則整批不寫入。
func (c *Catalog) Register(metas ...Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.frozen {
		return ErrFrozen
	}
	seenID := map[rules.GID]struct{}{}
	seenName := map[string]struct{}{}
	seenCfg := map[string]struct{}{}
	parsed := make([]*rules.GameSetting, len(metas))
	for i := range metas {
		meta := &metas[i]
		meta.Name = normName(meta.Name)
		if meta.Name == "" {
			return errs.NewWarn("game name required")
		}
		if err := validFileName(meta.ConfigName); err != nil {
			return err
		}
		if _, ok := c.byID[meta.GID]; ok {
			return ErrDupID.With(fmt.Sprintf("gid=%d", meta.GID))
		}
		if _, ok := seenID[meta.GID]; ok {
			return ErrDupID.With(fmt.Sprintf("gid=%d", meta.GID))
		}
		if _, ok := c.byName[meta.Name]; ok {
			return ErrDupName.With(meta.Name)
		}
		if _, ok := seenName[meta.Name]; ok {
			return ErrDupName.With(meta.Name)
		}
		if _, ok := c.files[meta.ConfigName]; ok {
			return errs.NewConflict("duplicate config name: " + meta.ConfigName)
		}
		if _, ok := seenCfg[meta.ConfigName]; ok {
			return errs.NewConflict("duplicate config name: " + meta.ConfigName)
		}
		gs, err := c.config.parse(meta.ConfigName)
		if err != nil {
			return err
		}
		if gs.GameID != meta.GID {
			return errs.Warnf("config %s declares gid %d, entry says %d", meta.ConfigName, gs.GameID, meta.GID)
		}
		parsed[i] = gs
		seenID[meta.GID] = struct{}{}
		seenName[meta.Name] = struct{}{}
		seenCfg[meta.ConfigName] = struct{}{}
	}
	for i, meta := range metas {
		c.files[meta.ConfigName] = struct{}{}
		c.byID[meta.GID] = meta
		c.byName[meta.Name] = meta
		c.settings[meta.GID] = parsed[i]
		c.ids = append(c.ids, meta.GID)
	}
	sort.Slice(c.ids, func(i, j int) bool { return c.ids[i] < c.ids[j] })
	return nil
}

// Discover 掃描所有設定來源，以設定檔內宣告的 GameID / GameName 產生 Entry 並一次註冊。
// accept 可用來限制 LogicKey（例如只收已註冊邏輯的設定）；nil 表示全收。
func (c *Catalog) Discover(accept func(rules.LogicKey) bool) (int, error) {
	names := c.config.names()
	if len(names) == 0 {
		return 0, errs.NewFatal("no config files found")
	}
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		gs, err := c.config.parse(name)
		if err != nil {
			return 0, errs.WrapWithExtra(err, "parse game setting failed", name)
		}
		if accept != nil && !accept(gs.LogicKey) {
			return 0, errs.Warnf("logic not registered: logic_key=%s (config=%s)", gs.LogicKey, name)
		}
		entries = append(entries, Entry{GID: gs.GameID, Name: gs.GameName, ConfigName: name})
	}
	if err := c.Register(entries...); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (c *Catalog) GetByID(id rules.GID) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byID[id]
	return m, ok
}

func (c *Catalog) GetByName(name string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byName[normName(name)]
	return m, ok
}

func (c *Catalog) IDs() []rules.GID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.ids) == 0 {
		return nil
	}
	return append([]rules.GID(nil), c.ids...)
}

func (c *Catalog) All() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}

// Summaries 依 GID 排序回傳所有遊戲摘要。
func (c *Catalog) Summaries() []Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Summary, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, SummaryOf(c.settings[id]))
	}
	return out
}

func (c *Catalog) Freeze() {
	c.mu.Lock()
	c.frozen = true
	c.mu.Unlock()
}

func (c *Catalog) IsFrozen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.frozen
}

// GameSettingById 回傳註冊時解析好的設定。設定為唯讀，呼叫端不可修改。
func (c *Catalog) GameSettingById(id rules.GID) (*rules.GameSetting, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	gs, ok := c.settings[id]
	if !ok {
		return nil, errs.NewNotFound("game id does not exist in catalog")
	}
	return gs, nil
}

func (c *Catalog) GameSettingByName(name string) (*rules.GameSetting, error) {
	e, ok := c.GetByName(name)
	if !ok {
		return nil, errs.NewNotFound("game name does not exist in catalog")
	}
	return c.GameSettingById(e.GID)
}

func normName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func isConfigExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

func validFileName(file string) error {
	if file == "" {
		return errs.NewWarn("empty config filename")
	}
	if strings.ContainsAny(file, `/\:`) {
		return errs.Warnf("invalid config filename: %q (must be a basename)", file)
	}
	if strings.HasPrefix(file, ".") {
		return errs.Warnf("invalid config filename: %q (cannot start with '.')", file)
	}
	if !isConfigExt(file) {
		return errs.Warnf("invalid config filename: %q (must end with .yaml, .yml, or .json)", file)
	}
	return nil
}

// multiFS 把多個扁平設定來源合成一個命名空間，檔名跨來源不可重複。
type multiFS struct {
	src   []fs.FS
	index map[string]int
}

func newMultiFS(src ...fs.FS) (*multiFS, error) {
	if len(src) == 0 {
		return nil, errs.NewFatal("no fs provided")
	}
	m := &multiFS{src: src, index: make(map[string]int, 32)}
	for i, s := range src {
		if s == nil {
			return nil, errs.Fatalf("fs[%d] is nil", i)
		}
		err := fs.WalkDir(s, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.Fatalf("config FS must be flat (no subdirectories): %q", path)
			}
			if strings.HasPrefix(path, ".") || !isConfigExt(path) {
				return nil
			}
			if prev, ok := m.index[path]; ok {
				return errs.Fatalf("duplicate config %q in fs[%d] and fs[%d]", path, prev, i)
			}
			m.index[path] = i
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *multiFS) names() []string {
	out := make([]string, 0, len(m.index))
	for name := range m.index {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *multiFS) parse(name string) (*rules.GameSetting, error) {
	i, ok := m.index[name]
	if !ok {
		return nil, errs.NewNotFound("config file not found: " + name)
	}
	raw, err := fs.ReadFile(m.src[i], name)
	if err != nil {
		return nil, errs.Wrap(err, "read config failed: "+name)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return rules.GetGameSettingByJSON(raw)
	default:
		return rules.GetGameSettingByYAML(raw)
	}
}
