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

// Package spacecfg 定義搜尋空間的 YAML/JSON 宣告格式，
// 並把宣告編譯成 space.Space 與 space.Constraints。
package spacecfg

import (
	"fmt"

	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/space"
)

// DimensionSetting 宣告一個維度。
// real/integer 需要 low/high；categorical 需要 categories（weights 可選）。
type DimensionSetting struct {
	Type       string    `yaml:"type"       json:"type"`
	Low        float64   `yaml:"low"        json:"low"`
	High       float64   `yaml:"high"       json:"high"`
	Prior      string    `yaml:"prior"      json:"prior,omitempty"`
	Categories []any     `yaml:"categories" json:"categories,omitempty"`
	Weights    []float64 `yaml:"weights"    json:"weights,omitempty"`
}

// ConstraintSetting 宣告一條約束。
// single 用 value；inclusive/exclusive 用 bounds。
type ConstraintSetting struct {
	Kind   string `yaml:"kind"   json:"kind"`
	Dim    int    `yaml:"dim"    json:"dim"`
	Value  any    `yaml:"value"  json:"value,omitempty"`
	Bounds []any  `yaml:"bounds" json:"bounds,omitempty"`
}

// SearchSetting 是一份完整的搜尋空間設定檔。
type SearchSetting struct {
	Name        string              `yaml:"name"        json:"name"`
	Dimensions  []DimensionSetting  `yaml:"dimensions"  json:"dimensions"`
	Constraints []ConstraintSetting `yaml:"constraints" json:"constraints,omitempty"`

	space       *space.Space
	constraints *space.Constraints
}

// Space 回傳編譯後的搜尋空間；init 之前為 nil。
func (ss *SearchSetting) Space() *space.Space { return ss.space }

// SpaceConstraints 回傳編譯後的約束集；init 之前為 nil。
func (ss *SearchSetting) SpaceConstraints() *space.Constraints { return ss.constraints }

// init 把宣告編譯成 runtime 物件並執行交叉檢查。
func (ss *SearchSetting) init() error {
	if ss.Name == "" {
		return errs.Valuef("search setting requires a name")
	}
	if len(ss.Dimensions) == 0 {
		return errs.Valuef("search setting %q declares no dimensions", ss.Name)
	}

	dims := make([]space.Dimension, 0, len(ss.Dimensions))
	for i := range ss.Dimensions {
		d, err := ss.Dimensions[i].build()
		if err != nil {
			return errs.Wrap(err, fmt.Sprintf("dimension %d of %q", i, ss.Name))
		}
		dims = append(dims, d)
	}
	sp, err := space.NewSpace(dims...)
	if err != nil {
		return errs.Wrap(err, fmt.Sprintf("search setting %q", ss.Name))
	}

	list := make([]space.Constraint, 0, len(ss.Constraints))
	for i := range ss.Constraints {
		c, err := ss.Constraints[i].build(sp)
		if err != nil {
			return errs.Wrap(err, fmt.Sprintf("constraint %d of %q", i, ss.Name))
		}
		list = append(list, c)
	}
	cs, err := space.NewConstraints(sp, list)
	if err != nil {
		return errs.Wrap(err, fmt.Sprintf("search setting %q", ss.Name))
	}

	ss.space = sp
	ss.constraints = cs
	return nil
}

func (ds *DimensionSetting) build() (space.Dimension, error) {
	switch ds.Type {
	case "real":
		switch ds.Prior {
		case "", "uniform":
			return space.NewReal(ds.Low, ds.High)
		case "log-uniform":
			return space.NewRealPrior(ds.Low, ds.High, space.PriorLogUniform)
		default:
			return nil, errs.Valuef("unknown prior %q", ds.Prior)
		}
	case "integer":
		lo, err := wholeNumber(ds.Low)
		if err != nil {
			return nil, err
		}
		hi, err := wholeNumber(ds.High)
		if err != nil {
			return nil, err
		}
		return space.NewInteger(lo, hi)
	case "categorical":
		cats := make([]space.Value, 0, len(ds.Categories))
		for _, raw := range ds.Categories {
			v, err := coerceValue(raw)
			if err != nil {
				return nil, err
			}
			cats = append(cats, v)
		}
		if len(ds.Weights) == 0 {
			return space.NewCategorical(cats...)
		}
		return space.NewCategoricalWeighted(cats, ds.Weights)
	default:
		return nil, errs.Typef("unknown dimension type %q", ds.Type)
	}
}

func (cs *ConstraintSetting) build(sp *space.Space) (space.Constraint, error) {
	if cs.Dim < 0 || cs.Dim >= sp.NDims() {
		return nil, errs.Indexf("dimension index %d out of range for n_dims = %d", cs.Dim, sp.NDims())
	}
	dt := sp.Dimensions()[cs.Dim].Type()

	switch cs.Kind {
	case "single":
		v, err := coerceValueFor(cs.Value, dt)
		if err != nil {
			return nil, err
		}
		return space.NewSingle(cs.Dim, v, dt)
	case "inclusive", "exclusive":
		bounds := make([]space.Value, 0, len(cs.Bounds))
		for _, raw := range cs.Bounds {
			v, err := coerceValueFor(raw, dt)
			if err != nil {
				return nil, err
			}
			bounds = append(bounds, v)
		}
		if cs.Kind == "inclusive" {
			return space.NewInclusive(cs.Dim, bounds, dt)
		}
		return space.NewExclusive(cs.Dim, bounds, dt)
	default:
		return nil, errs.Typef("unknown constraint kind %q", cs.Kind)
	}
}

// coerceValue 把解碼出的 any 轉成 space.Value，不做維度相關的調整。
func coerceValue(raw any) (space.Value, error) {
	switch v := raw.(type) {
	case int:
		return space.Int(v), nil
	case int64:
		return space.Int(int(v)), nil
	case float64:
		return space.Float(v), nil
	case string:
		return space.Str(v), nil
	default:
		return space.Value{}, errs.Typef("unsupported literal %T (%v)", raw, raw)
	}
}

// coerceValueFor 依目標維度型別轉換字面值。
// real 維度接受整數字面值並視為浮點；integer 維度接受 JSON 解碼出的
// 整值浮點（encoding/json 的數字一律是 float64）。
func coerceValueFor(raw any, dt space.DimType) (space.Value, error) {
	v, err := coerceValue(raw)
	if err != nil {
		return space.Value{}, err
	}
	switch {
	case dt == space.RealDim && v.Kind() == space.ValueInt:
		return space.Float(float64(v.Int())), nil
	case dt == space.IntegerDim && v.Kind() == space.ValueFloat:
		n, err := wholeNumber(v.Float64())
		if err != nil {
			return space.Value{}, err
		}
		return space.Int(n), nil
	}
	return v, nil
}

// wholeNumber 要求整數維度的界是整數字面值。
func wholeNumber(f float64) (int, error) {
	n := int(f)
	if float64(n) != f {
		return 0, errs.Typef("integer bound must be a whole number, got %v", f)
	}
	return n, nil
}
