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

package paramlab

import (
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/sdk/core"
	"github.com/zintix-labs/paramlab/space"
)

const demoCfg = `
name: demo
dimensions:
  - type: integer
    low: 1
    high: 10
  - type: categorical
    categories: [a, b, c]
constraints:
  - kind: single
    dim: 0
    value: 5
  - kind: inclusive
    dim: 1
    bounds: [a, b]
`

const tightCfg = `
name: tight
dimensions:
  - type: real
    low: 0
    high: 10
constraints:
  - kind: inclusive
    dim: 0
    bounds: [0, 1]
  - kind: exclusive
    dim: 0
    bounds: [0, 1]
`

func testLab(t *testing.T) *Lab {
	t.Helper()
	fsys := fstest.MapFS{
		"demo.yaml":  {Data: []byte(demoCfg)},
		"tight.yaml": {Data: []byte(tightCfg)},
	}
	lab, err := NewAuto(core.Default(), Configs(fsys))
	if err != nil {
		t.Fatalf("NewAuto: %v", err)
	}
	return lab
}

// TestNewAutoRegistersAll 驗證自動註冊與目錄摘要
func TestNewAutoRegistersAll(t *testing.T) {
	lab := testLab(t)
	if !lab.IsFrozen() {
		t.Fatal("NewAuto should freeze the registry")
	}
	names := lab.Names()
	if len(names) != 2 || names[0] != "demo" || names[1] != "tight" {
		t.Fatalf("unexpected names: %v", names)
	}
	entries := lab.Entries()
	if entries[0].NDims != 2 || entries[0].NCons != 2 {
		t.Fatalf("demo entry wrong: %+v", entries[0])
	}
}

// TestRegisterAllFailFast 設定來源有壞檔時整批失敗
func TestRegisterAllFailFast(t *testing.T) {
	fsys := fstest.MapFS{
		"good.yaml": {Data: []byte(demoCfg)},
		"bad.yaml":  {Data: []byte("name: bad\ndimensions:\n  - type: ordinal\n")},
	}
	if _, err := NewAuto(core.Default(), Configs(fsys)); err == nil {
		t.Fatal("expected registration failure for bad config")
	}
}

// TestDuplicateNameRejected 同名設定不可重複登記
func TestDuplicateNameRejected(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte(demoCfg)},
		"b.yaml": {Data: []byte(demoCfg)},
	}
	if _, err := NewAuto(core.Default(), Configs(fsys)); err == nil {
		t.Fatal("expected duplicate name failure")
	}
}

// TestSamplerSample 單線抽樣：配額精確、每點合法
func TestSamplerSample(t *testing.T) {
	lab := testLab(t)
	s, err := lab.NewSamplerWithSeed("demo", 42)
	if err != nil {
		t.Fatalf("NewSamplerWithSeed: %v", err)
	}
	report, rec, _, err := s.Sample(100, false)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	if rec.Len() != 100 {
		t.Fatalf("expected 100 points, got %d", rec.Len())
	}
	for _, p := range rec.Points {
		if p[0] != space.Int(5) {
			t.Fatalf("pinned coordinate should be 5, got %v", p[0])
		}
		if !s.Validate(p) {
			t.Fatalf("recorded point fails validation: %v", p)
		}
	}
	if report.Summary.Samples != 100 || report.Summary.Candidates < 100 {
		t.Fatalf("report counters wrong: %+v", report.Summary)
	}
}

// TestSampleDeterminism 同 seed 的兩個 Sampler 輸出一致
func TestSampleDeterminism(t *testing.T) {
	lab := testLab(t)
	s1, _ := lab.NewSamplerWithSeed("demo", 7)
	s2, _ := lab.NewSamplerWithSeed("demo", 7)
	_, r1, _, err := s1.Sample(50, false)
	if err != nil {
		t.Fatal(err)
	}
	_, r2, _, err := s2.Sample(50, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := range r1.Points {
		for d := range r1.Points[i] {
			if r1.Points[i][d] != r2.Points[i][d] {
				t.Fatalf("point %d coord %d differs", i, d)
			}
		}
	}
}

// TestSampleMP 平行抽樣：合併後配額精確、每點合法、可重現
func TestSampleMP(t *testing.T) {
	lab := testLab(t)
	s, _ := lab.NewSamplerWithSeed("demo", 11)
	report, rec, _, err := s.SampleMP(103, 4, false)
	if err != nil {
		t.Fatalf("SampleMP: %v", err)
	}
	if rec.Len() != 103 {
		t.Fatalf("expected 103 points, got %d", rec.Len())
	}
	for _, p := range rec.Points {
		if !s.Validate(p) {
			t.Fatalf("merged point fails validation: %v", p)
		}
	}
	if report.Summary.Samples != 103 {
		t.Fatalf("report samples wrong: %+v", report.Summary)
	}

	// 相同 (seed, n, mp) 重現一致
	s2, _ := lab.NewSamplerWithSeed("demo", 11)
	_, rec2, _, err := s2.SampleMP(103, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	for i := range rec.Points {
		for d := range rec.Points[i] {
			if rec.Points[i][d] != rec2.Points[i][d] {
				t.Fatalf("point %d coord %d differs across runs", i, d)
			}
		}
	}
}

// TestSampleInfeasible 不可行空間以 KindRuntime 失敗
func TestSampleInfeasible(t *testing.T) {
	lab := testLab(t)
	s, _ := lab.NewSamplerWithSeed("tight", 1)
	if _, _, _, err := s.Sample(5, false); !errs.IsKind(err, errs.KindRuntime) {
		t.Fatalf("expected KindRuntime, got %v", err)
	}
	if _, _, _, err := s.SampleMP(5, 2, false); !errs.IsKind(err, errs.KindRuntime) {
		t.Fatalf("expected KindRuntime from workers, got %v", err)
	}
}

// TestNewSamplerByYAML 不經 registry 的臨時設定
func TestNewSamplerByYAML(t *testing.T) {
	lab := testLab(t)
	s, err := lab.NewSamplerByYAML([]byte(demoCfg), 3)
	if err != nil {
		t.Fatalf("NewSamplerByYAML: %v", err)
	}
	_, rec, _, err := s.Sample(10, false)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Len() != 10 {
		t.Fatalf("expected 10 points, got %d", rec.Len())
	}
}

// TestSeedMakerUnique 種子生成器不重複且非負
func TestSeedMakerUnique(t *testing.T) {
	sm := newSeedMaker(99)
	seen := map[int64]struct{}{}
	for i := 0; i < 10000; i++ {
		v := sm.next()
		if v < 0 {
			t.Fatalf("seed must be non-negative, got %d", v)
		}
		if _, ok := seen[v]; ok {
			t.Fatalf("duplicate seed after %d draws", i)
		}
		seen[v] = struct{}{}
	}
}
