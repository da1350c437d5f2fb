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

package space

import (
	"encoding/json"
	"fmt"
	"math"
)

// ValueKind 標記 Value 內部承載的原生型別。
type ValueKind uint8

const (
	// ValueFloat 浮點值（real 維度的原生型別）。
	ValueFloat ValueKind = iota
	// ValueInt 整數值（integer 維度的原生型別）。
	ValueInt
	// ValueStr 字串值（僅出現在類別維度）。
	ValueStr
)

var valueKindMap = map[ValueKind]string{
	ValueFloat: "float",
	ValueInt:   "int",
	ValueStr:   "str",
}

func (k ValueKind) String() string {
	if s, ok := valueKindMap[k]; ok {
		return s
	}
	return "unknown"
}

// Value 是一個點座標的標籤聯合（float64 | int | string）。
//
// 維度是異質的：real 維度產 float、integer 維度產 int、類別維度可混搭三種。
// 用小型可比較 struct 而不是 any，讓 == 比較與 map key 都直接可用；
// kind 不同的兩個 Value 永不相等（Int(5) != Float(5)），
// 這點由建構期的型別檢查保證不會造成誤判：integer 維度的約束值必須是 Int、
// real 維度必須是 Float，類別維度的合法值必須逐字命中宣告的類別。
type Value struct {
	kind ValueKind
	f    float64
	i    int
	s    string
}

// Float 建立浮點 Value。
func Float(v float64) Value { return Value{kind: ValueFloat, f: v} }

// Int 建立整數 Value。
func Int(v int) Value { return Value{kind: ValueInt, i: v} }

// Str 建立字串 Value。
func Str(v string) Value { return Value{kind: ValueStr, s: v} }

// Kind 回傳內部承載的型別標記。
func (v Value) Kind() ValueKind { return v.kind }

// Float64 回傳浮點承載值；kind 不符時回傳零值。
func (v Value) Float64() float64 { return v.f }

// Int 回傳整數承載值；kind 不符時回傳零值。
func (v Value) Int() int { return v.i }

// Str 回傳字串承載值；kind 不符時回傳空字串。
func (v Value) Str() string { return v.s }

// Num 以 float64 視角回傳數值承載；字串回傳 NaN。
// 數值比較（範圍檢查）一律走這個視角，int 在 float64 內是精確的。
func (v Value) Num() float64 {
	switch v.kind {
	case ValueFloat:
		return v.f
	case ValueInt:
		return float64(v.i)
	default:
		return math.NaN()
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueFloat:
		return fmt.Sprintf("%g", v.f)
	case ValueInt:
		return fmt.Sprintf("%d", v.i)
	case ValueStr:
		return v.s
	default:
		return "?"
	}
}

// MarshalJSON 以原生型別輸出（5、2.5、"a"），供紀錄檔與 API 回應使用。
// 反向的還原由知道維度型別的一方負責（recorder / spacecfg），
// 因為 JSON 的數字無法區分 int 與 float。
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case ValueFloat:
		return json.Marshal(v.f)
	case ValueInt:
		return json.Marshal(v.i)
	case ValueStr:
		return json.Marshal(v.s)
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}

// MarshalYAML 以原生型別輸出，供報表渲染使用。
func (v Value) MarshalYAML() (any, error) {
	switch v.kind {
	case ValueFloat:
		return v.f, nil
	case ValueInt:
		return v.i, nil
	case ValueStr:
		return v.s, nil
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.kind)
	}
}
