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

package stats

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/paramlab/space"
)

func buildSpace(t *testing.T) *space.Space {
	t.Helper()
	d0, err := space.NewInteger(1, 10)
	if err != nil {
		t.Fatal(err)
	}
	d1, err := space.NewCategorical(space.Str("a"), space.Str("b"))
	if err != nil {
		t.Fatal(err)
	}
	sp, err := space.NewSpace(d0, d1)
	if err != nil {
		t.Fatal(err)
	}
	return sp
}

func points() [][]space.Value {
	return [][]space.Value{
		{space.Int(2), space.Str("a")},
		{space.Int(4), space.Str("a")},
		{space.Int(6), space.Str("b")},
		{space.Int(8), space.Str("a")},
	}
}

// TestSampleReportSummary 驗證接受率與信賴區間
func TestSampleReportSummary(t *testing.T) {
	r := NewSampleReport("demo", buildSpace(t), points(), 16, 2)
	r.Done()

	if r.Summary.Samples != 4 || r.Summary.Candidates != 16 {
		t.Fatalf("summary counters wrong: %+v", r.Summary)
	}
	if math.Abs(r.Summary.AcceptRate-0.25) > 1e-12 {
		t.Errorf("accept rate should be 0.25, got %v", r.Summary.AcceptRate)
	}
	ci := r.Summary.AcceptCI
	if !(ci.Lo > 0 && ci.Lo < 0.25 && ci.Hi > 0.25 && ci.Hi < 1) {
		t.Errorf("CI should bracket the estimate: %+v", ci)
	}
}

// TestDimSummaries 驗證數值與類別維度的摘要
func TestDimSummaries(t *testing.T) {
	r := NewSampleReport("demo", buildSpace(t), points(), 16, 0)
	r.Done()

	if len(r.Dims) != 2 {
		t.Fatalf("expected 2 dim summaries, got %d", len(r.Dims))
	}

	num := r.Dims[0]
	if num.Min != 2 || num.Max != 8 {
		t.Errorf("min/max wrong: %+v", num)
	}
	if math.Abs(num.Mean-5) > 1e-12 {
		t.Errorf("mean should be 5, got %v", num.Mean)
	}
	if num.Std <= 0 {
		t.Errorf("std should be positive, got %v", num.Std)
	}

	cat := r.Dims[1]
	if len(cat.Counts) != 2 {
		t.Fatalf("expected 2 categories, got %+v", cat.Counts)
	}
	// 依 Label 排序
	if cat.Counts[0].Label != "a" || cat.Counts[0].Count != 3 {
		t.Errorf("count for a wrong: %+v", cat.Counts[0])
	}
	if cat.Counts[1].Label != "b" || cat.Counts[1].Count != 1 {
		t.Errorf("count for b wrong: %+v", cat.Counts[1])
	}
}

// TestProportionCICPBoundaries 驗證 k=0 與 k=n 的邊界
func TestProportionCICPBoundaries(t *testing.T) {
	_, ci := proportionCICP(0, 100, 0.95)
	if ci.Lo != 0 {
		t.Errorf("k=0 lower bound should be 0, got %v", ci.Lo)
	}
	_, ci = proportionCICP(100, 100, 0.95)
	if ci.Hi != 1 {
		t.Errorf("k=n upper bound should be 1, got %v", ci.Hi)
	}
	_, ci = proportionCICP(0, 0, 0.95)
	if ci.Lo != 0 || ci.Hi != 1 {
		t.Errorf("n=0 should be the vacuous interval, got %+v", ci)
	}
}

// TestRenders 驗證 JSON 與 YAML 輸出可用
func TestRenders(t *testing.T) {
	r := NewSampleReport("demo", buildSpace(t), points(), 16, 1)

	var jb bytes.Buffer
	if err := r.WriteWith(&jb, &JsonSampleReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	var decoded SampleReport
	if err := json.Unmarshal(jb.Bytes(), &decoded); err != nil {
		t.Fatalf("json not decodable: %v", err)
	}
	if decoded.Summary.SpaceName != "demo" {
		t.Errorf("space name lost in json: %+v", decoded.Summary)
	}

	var yb bytes.Buffer
	if err := r.WriteWith(&yb, &YAMLSampleReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	if !strings.Contains(yb.String(), "SpaceName: demo") {
		t.Errorf("yaml output missing space name:\n%s", yb.String())
	}
	// YAML 與 JSON 欄位名稱必須一致
	for _, key := range []string{"Summary:", "Dims:", "AcceptRate:", "AcceptCI:", "Lo:", "Counts:"} {
		if !strings.Contains(yb.String(), key) {
			t.Errorf("yaml output missing key %q:\n%s", key, yb.String())
		}
	}
}
