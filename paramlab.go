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

// Package paramlab 提供參數搜尋空間引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// 你可以把 Lab 視為一個「可被後端/批次工具使用的 runtime」，它負責把下列兩個必需的地基組裝在一起，並提供建立 Sampler 的入口：
//  1. Registry：搜尋空間目錄（Single Source of Truth / SSOT），定義有哪些搜尋空間設定、各自對應的設定檔名稱。
//  2. PRNGFactory：亂數核心工廠（PRNG factory），保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Lab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - 設定檔在註冊階段就會完整解析並編譯成 space.Space 與 space.Constraints，
//     結構或語意錯誤在組裝時 fail-fast，不會拖到抽樣階段才爆。
//   - Sampler 是對外提供抽樣的最小單位。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Lab 建立 Sampler，Sampler 對外提供抽樣與驗證。
//   - 批次工具（cmd/run）：由 Lab 建立 Sampler 進行大量抽樣並輸出成品檔。
package paramlab

import (
	"crypto/rand"
	"fmt"
	"io/fs"
	"math"
	"math/big"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/sdk/core"
	"github.com/zintix-labs/paramlab/spacecfg"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 你可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Entry 是 registry 內的一筆搜尋空間登記。
type Entry struct {
	Name       string `json:"name"`
	ConfigName string `json:"config_name"`
	NDims      int    `json:"n_dims"`
	NCons      int    `json:"n_constraints"`
}

// Lab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程分成兩階段：
//   - 註冊/組裝階段（registration/build）：掃描設定來源、解析並編譯所有搜尋空間。
//   - 執行階段（runtime）：依名稱產生 Sampler，在 Sampler 上執行抽樣。
//
// 重要設計原則：
//   - 名稱唯一性只保證在「同一個 Lab instance」內。
//   - runtime 一旦開始（已對外提供 Sampler），不建議再變更 registry。
type Lab struct {
	cf       core.PRNGFactory
	cfgs     []fs.FS
	byName   map[string]*spacecfg.SearchSetting
	cfgNames map[string]string // name -> config file
	names    []string          // 穩定排序
	frozen   bool
}

// New 建立一個 Lab instance。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源就沒有搜尋空間可登記。
func New(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	for i, c := range cfgs {
		if c == nil {
			return nil, errs.NewFatal(fmt.Sprintf("fs[%d] is nil", i))
		}
	}
	return &Lab{
		cf:       cf,
		cfgs:     cfgs,
		byName:   map[string]*spacecfg.SearchSetting{},
		cfgNames: map[string]string{},
	}, nil
}

// NewAuto 建立一個直接進入執行階段的 Lab instance。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cf, cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

// RegisterAll
//
// 會掃描設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）解析成
// *spacecfg.SearchSetting，並以檔內宣告的 name 批次登記。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/編譯失敗，都會立刻回傳 error。
//  2. 原子性：只有當「全部檔案」都成功編譯時才寫入 registry，
//     不會出現只登記了一半的狀態。
//  3. 穩定性：依檔名排序後再處理，確保行為 determinism。
func (l *Lab) RegisterAll() error {
	if l.frozen {
		return errs.NewWarn("can not register when registry already frozen")
	}

	type parsed struct {
		name string
		file string
		ss   *spacecfg.SearchSetting
	}
	var batch []parsed
	seen := map[string]string{}

	for _, src := range l.cfgs {
		var files []string
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") {
				return nil
			}
			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}
			files = append(files, path)
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
		sort.Strings(files)

		for _, path := range files {
			raw, err := fs.ReadFile(src, path)
			if err != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", path))
			}
			var ss *spacecfg.SearchSetting
			switch strings.ToLower(filepath.Ext(path)) {
			case ".yaml", ".yml":
				ss, err = spacecfg.GetSearchSettingByYAML(raw)
			case ".json":
				ss, err = spacecfg.GetSearchSettingByJSON(raw)
			}
			if err != nil {
				return errs.Wrap(err, fmt.Sprintf("parse search setting failed: %s", path))
			}

			nameKey := strings.ToLower(strings.TrimSpace(ss.Name))
			if prev, ok := seen[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate space name: %s (config=%s and %s)", nameKey, prev, path))
			}
			if _, ok := l.byName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("space name already registered: %s (config=%s)", nameKey, path))
			}
			seen[nameKey] = path
			batch = append(batch, parsed{name: nameKey, file: path, ss: ss})
		}
	}

	if len(batch) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	for _, p := range batch {
		l.byName[p.name] = p.ss
		l.cfgNames[p.name] = p.file
		l.names = append(l.names, p.name)
	}
	sort.Strings(l.names)
	return nil
}

func (l *Lab) Freeze() {
	l.frozen = true
}

func (l *Lab) IsFrozen() bool {
	return l.frozen
}

// SettingByName 依名稱取回已編譯的搜尋空間設定。
func (l *Lab) SettingByName(name string) (*spacecfg.SearchSetting, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	ss, ok := l.byName[name]
	return ss, ok
}

func (l *Lab) Names() []string {
	if len(l.names) == 0 {
		return nil
	}
	return append([]string(nil), l.names...)
}

// Entries 回傳 registry 內容的穩定摘要。
func (l *Lab) Entries() []Entry {
	out := make([]Entry, 0, len(l.names))
	for _, n := range l.names {
		ss := l.byName[n]
		out = append(out, Entry{
			Name:       n,
			ConfigName: l.cfgNames[n],
			NDims:      ss.Space().NDims(),
			NCons:      len(ss.SpaceConstraints().List()),
		})
	}
	return out
}

// NewSampler 依名稱建立 Sampler，seed 由 crypto/rand 產生。
//
// 注意：seed 會被記錄在 Sampler 內（initSeed），用於追溯/重現。
func (l *Lab) NewSampler(name string) (*Sampler, error) {
	if !l.frozen {
		return nil, errs.NewFatal("registry is not frozen yet")
	}
	ss, ok := l.SettingByName(name)
	if !ok {
		return nil, errs.NewWarn("name dose not exist in registry")
	}
	return newSampler(ss, l.cf)
}

// NewSamplerWithSeed 與 NewSampler 相同，但由呼叫端指定初始 seed。
//
// 使用情境：
//   - 可重現的測試：同一份設定 + 同一個 seed，應產生一致的抽樣序列。
func (l *Lab) NewSamplerWithSeed(name string, seed int64) (*Sampler, error) {
	if !l.frozen {
		return nil, errs.NewFatal("registry is not frozen yet")
	}
	ss, ok := l.SettingByName(name)
	if !ok {
		return nil, errs.NewWarn("name dose not exist in registry")
	}
	return newSamplerWithSeed(ss, l.cf, seed)
}

// NewSamplerByYAML 直接以一份 YAML 設定建立 Sampler，不經過 registry。
func (l *Lab) NewSamplerByYAML(raw []byte, seed int64) (*Sampler, error) {
	if !l.frozen {
		return nil, errs.NewFatal("registry is not frozen yet")
	}
	ss, err := spacecfg.GetSearchSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	return newSamplerWithSeed(ss, l.cf, seed)
}

// NewSamplerByJSON 直接以一份 JSON 設定建立 Sampler，不經過 registry。
func (l *Lab) NewSamplerByJSON(raw []byte, seed int64) (*Sampler, error) {
	if !l.frozen {
		return nil, errs.NewFatal("registry is not frozen yet")
	}
	ss, err := spacecfg.GetSearchSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	return newSamplerWithSeed(ss, l.cf, seed)
}

func cryptoSeed() (int64, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, err
	}
	return seed.Int64(), nil
}
