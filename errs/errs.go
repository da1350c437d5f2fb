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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Kind : Error 分類，描述「錯在哪一類」而非「錯得多嚴重」。
//
// 與 ErrLevel 是兩個獨立的軸：
//   - ErrLevel 告訴最上層要不要中止 / 回 4xx / 只記 log。
//   - Kind 告訴呼叫端是哪一類輸入問題（型別不符、值超出定義域、索引錯誤、取樣失敗），
//     方便呼叫端用 IsKind 分支處理，而不用去 parse 訊息字串。
type Kind uint8

const (
	KindNone Kind = iota
	// KindType 宣告型別 / 值型別 / 邊界元素型別不符，或傳入了無法辨識的變體。
	KindType
	// KindValue 值落在目標維度的定義域之外（數值範圍或類別集合）。
	KindValue
	// KindIndex 維度索引超出範圍，或同一維度重複宣告了固定值約束。
	KindIndex
	// KindRuntime 取樣在候選預算內一個合法點都沒有找到。
	KindRuntime
)

var kindMap = map[Kind]string{
	KindNone:    "",
	KindType:    "type",
	KindValue:   "value",
	KindIndex:   "index",
	KindRuntime: "runtime",
}

func KindName(k Kind) string {
	if str, ok := kindMap[k]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重程度；Kind 表示錯誤分類。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Kind    Kind
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if k := KindName(e.Kind); k != "" {
		base = fmt.Sprintf("errlv=%s kind=%s %s", ErrLv(e.ErrLv), k, e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依分級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

func Logf(format string, a ...any) *E {
	return NewLog(fmt.Sprintf(format, a...))
}

// NewKind 依分類、分級與訊息建立錯誤。
// 約束建構期的檢查一律用這一組入口，讓呼叫端能以 IsKind 分支。
func NewKind(k Kind, errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv, Kind: k}
}

// Typef 建立 KindType 錯誤（Warn 級：屬呼叫端輸入問題）。
func Typef(format string, a ...any) *E {
	return NewKind(KindType, Warn, fmt.Sprintf(format, a...))
}

// Valuef 建立 KindValue 錯誤（Warn 級：屬呼叫端輸入問題）。
func Valuef(format string, a ...any) *E {
	return NewKind(KindValue, Warn, fmt.Sprintf(format, a...))
}

// Indexf 建立 KindIndex 錯誤（Warn 級：屬呼叫端輸入問題）。
func Indexf(format string, a ...any) *E {
	return NewKind(KindIndex, Warn, fmt.Sprintf(format, a...))
}

// Runtimef 建立 KindRuntime 錯誤（Fatal 級：該次呼叫無法完成，需由呼叫端調整設定）。
func Runtimef(format string, a ...any) *E {
	return NewKind(KindRuntime, Fatal, fmt.Sprintf(format, a...))
}

// IsKind 回報 err 鏈上是否存在指定分類的 *E。
func IsKind(err error, k Kind) bool {
	var e *E
	if errors.As(err, &e) {
		return e.Kind == k
	}
	return false
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Kind 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Kind（保持原本嚴重度與分類）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 New / NewKind 並自行指定 ErrLv），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	kind := KindNone
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		kind = e.Kind
	}
	r := NewKind(kind, errLv, msg)
	r.Cause = cause
	return r
}

// WrapWithExtra 使用給定的訊息與上下文包裝底層錯誤，建立一個 *E
//
// ErrLevel / Kind 規則同 Wrap。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}

func AsErr(err error) (*E, bool) {
	var e *E
	if errors.As(err, &e) {
		return e, true
	}
	return e, false
}
