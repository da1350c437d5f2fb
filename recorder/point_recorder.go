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

// Package recorder 保存抽樣結果成品檔。
//
// 格式是 zstd 壓縮的 JSON-lines：第一行是 header，其後每行一個點。
package recorder

import (
	"encoding/json"
	"errors"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/space"
)

// PointRecorder 抽樣紀錄員
//
// PointRecorder 負責累積已接受的點，並透過 Save 輸出成品檔。
type PointRecorder struct {
	SpaceName string
	Points    [][]space.Value
}

type header struct {
	Space  string `json:"space"`
	Points int    `json:"points"`
}

func NewPointRecorder(name string) (*PointRecorder, error) {
	if name == "" {
		return nil, errs.Valuef("point recorder requires a space name")
	}
	return &PointRecorder{SpaceName: name}, nil
}

// Record 依序附加點，呼叫端保證每點已通過約束驗證。
func (pr *PointRecorder) Record(points ...[]space.Value) {
	pr.Points = append(pr.Points, points...)
}

func (pr *PointRecorder) Len() int { return len(pr.Points) }

// MergePointRecorders 依 worker 順序串接多個 recorder。
func MergePointRecorders(rs []*PointRecorder) (*PointRecorder, error) {
	if len(rs) == 0 {
		return nil, errs.Valuef("no recorders to merge")
	}
	r0 := rs[0]
	merged, err := NewPointRecorder(r0.SpaceName)
	if err != nil {
		return nil, err
	}
	for _, r := range rs {
		if r.SpaceName != r0.SpaceName {
			return nil, errs.Valuef("merge point recorder err : different space name %q vs %q", r.SpaceName, r0.SpaceName)
		}
		merged.Points = append(merged.Points, r.Points...)
	}
	return merged, nil
}

// Save 寫出 zstd 壓縮的 JSON-lines。
func (pr *PointRecorder) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errs.Wrap(err, "save: create zstd writer")
	}
	enc := json.NewEncoder(zw)
	if err := enc.Encode(header{Space: pr.SpaceName, Points: len(pr.Points)}); err != nil {
		_ = zw.Close()
		return errs.Wrap(err, "save: write header")
	}
	for _, p := range pr.Points {
		if err := enc.Encode(p); err != nil {
			_ = zw.Close()
			return errs.Wrap(err, "save: write point")
		}
	}
	if err := zw.Close(); err != nil {
		return errs.Wrap(err, "save: close zstd writer")
	}
	return nil
}

// LoadPointRecorder 讀回成品檔。
//
// JSON 不分整數與浮點，需要 sp 提供各維度型別才能還原 Value。
func LoadPointRecorder(r io.Reader, sp *space.Space) (*PointRecorder, error) {
	if sp == nil {
		return nil, errs.Valuef("load: space required")
	}
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, errs.Wrap(err, "load: create zstd reader")
	}
	defer zr.Close()

	dec := json.NewDecoder(zr)
	var h header
	if err := dec.Decode(&h); err != nil {
		return nil, errs.Wrap(err, "load: read header")
	}
	pr, err := NewPointRecorder(h.Space)
	if err != nil {
		return nil, err
	}

	dims := sp.Dimensions()
	for {
		var raw []any
		if err := dec.Decode(&raw); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, errs.Wrap(err, "load: read point")
		}
		if len(raw) != len(dims) {
			return nil, errs.Valuef("load: point has %d coords, space has %d dims", len(raw), len(dims))
		}
		p := make([]space.Value, len(raw))
		for d, coord := range raw {
			v, err := decodeCoord(coord, dims[d])
			if err != nil {
				return nil, errs.Wrap(err, "load: decode point")
			}
			p[d] = v
		}
		pr.Points = append(pr.Points, p)
	}
	if pr.Len() != h.Points {
		return nil, errs.Valuef("load: header declares %d points, file has %d", h.Points, pr.Len())
	}
	return pr, nil
}

// decodeCoord 依目標維度把 JSON 原生值還原成 Value。
// encoding/json 的數字一律是 float64，整數維度取整值浮點；
// 類別維度先試整數形（類別集合裡的整數會以整值浮點進來）。
func decodeCoord(raw any, dim space.Dimension) (space.Value, error) {
	switch v := raw.(type) {
	case string:
		return space.Str(v), nil
	case float64:
		switch dim.Type() {
		case space.RealDim:
			return space.Float(v), nil
		case space.IntegerDim:
			n := int(v)
			if float64(n) != v {
				return space.Value{}, errs.Typef("integer coordinate must be whole, got %v", v)
			}
			return space.Int(n), nil
		default:
			if n := int(v); float64(n) == v && dim.Contains(space.Int(n)) {
				return space.Int(n), nil
			}
			return space.Float(v), nil
		}
	default:
		return space.Value{}, errs.Typef("unsupported coordinate %T (%v)", raw, raw)
	}
}
