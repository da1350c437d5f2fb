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

package recorder

import (
	"bytes"
	"testing"

	"github.com/zintix-labs/paramlab/space"
)

func testSpace(t *testing.T) *space.Space {
	t.Helper()
	d0, err := space.NewReal(0, 1)
	if err != nil {
		t.Fatal(err)
	}
	d1, err := space.NewInteger(1, 10)
	if err != nil {
		t.Fatal(err)
	}
	d2, err := space.NewCategorical(space.Str("a"), space.Int(7))
	if err != nil {
		t.Fatal(err)
	}
	sp, err := space.NewSpace(d0, d1, d2)
	if err != nil {
		t.Fatal(err)
	}
	return sp
}

// TestSaveLoadRoundTrip 驗證存檔讀回後每個座標的型別與值都一致
func TestSaveLoadRoundTrip(t *testing.T) {
	sp := testSpace(t)
	pr, err := NewPointRecorder("rt")
	if err != nil {
		t.Fatal(err)
	}
	pr.Record(
		[]space.Value{space.Float(0.25), space.Int(3), space.Str("a")},
		[]space.Value{space.Float(0.5), space.Int(7), space.Int(7)},
	)

	var buf bytes.Buffer
	if err := pr.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := LoadPointRecorder(&buf, sp)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.SpaceName != "rt" || got.Len() != 2 {
		t.Fatalf("header mismatch: %+v", got)
	}
	for i := range pr.Points {
		for d := range pr.Points[i] {
			if got.Points[i][d] != pr.Points[i][d] {
				t.Fatalf("point %d coord %d differs: %v vs %v", i, d, got.Points[i][d], pr.Points[i][d])
			}
		}
	}
}

// TestMergeKeepsOrder 驗證合併依輸入順序串接
func TestMergeKeepsOrder(t *testing.T) {
	a, _ := NewPointRecorder("m")
	b, _ := NewPointRecorder("m")
	a.Record([]space.Value{space.Int(1)})
	b.Record([]space.Value{space.Int(2)}, []space.Value{space.Int(3)})

	merged, err := MergePointRecorders([]*PointRecorder{a, b})
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	want := []int{1, 2, 3}
	if merged.Len() != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), merged.Len())
	}
	for i, w := range want {
		if merged.Points[i][0] != space.Int(w) {
			t.Errorf("point %d should be %d, got %v", i, w, merged.Points[i][0])
		}
	}
}

// TestMergeRejectsMixedSpaces 不同空間的紀錄不可合併
func TestMergeRejectsMixedSpaces(t *testing.T) {
	a, _ := NewPointRecorder("x")
	b, _ := NewPointRecorder("y")
	if _, err := MergePointRecorders([]*PointRecorder{a, b}); err == nil {
		t.Fatal("expected merge error for different space names")
	}
}

// TestLoadRejectsShapeMismatch 座標數與空間維度不符應報錯
func TestLoadRejectsShapeMismatch(t *testing.T) {
	pr, _ := NewPointRecorder("bad")
	pr.Record([]space.Value{space.Int(1)})
	var buf bytes.Buffer
	if err := pr.Save(&buf); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPointRecorder(&buf, testSpace(t)); err == nil {
		t.Fatal("expected shape mismatch error")
	}
}
