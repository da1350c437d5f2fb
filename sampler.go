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
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/paramlab/errs"
	"github.com/zintix-labs/paramlab/recorder"
	"github.com/zintix-labs/paramlab/sdk/core"
	"github.com/zintix-labs/paramlab/space"
	"github.com/zintix-labs/paramlab/spacecfg"
	"github.com/zintix-labs/paramlab/stats"
)

// 單線抽樣時每輪送進拒絕取樣器的配額，兼顧進度條更新頻率與生成效率。
const sampleChunk int = 1024

// Sampler 用於對單一搜尋空間抽樣，可展開多個 worker 平行抽取並合併結果。
type Sampler struct {
	SpaceName string                  // 搜尋空間名稱
	ss        *spacecfg.SearchSetting // 已編譯的設定
	cf        core.PRNGFactory        // 亂數生成器
	initSeed  int64                   // 初始下的種子
	seedmaker *seedMaker              // 種子生成器
}

func newSampler(ss *spacecfg.SearchSetting, cf core.PRNGFactory) (*Sampler, error) {
	seed, err := cryptoSeed()
	if err != nil {
		return nil, errs.Wrap(err, "derive crypto seed")
	}
	return newSamplerWithSeed(ss, cf, seed)
}

func newSamplerWithSeed(ss *spacecfg.SearchSetting, cf core.PRNGFactory, seed int64) (*Sampler, error) {
	if ss == nil {
		return nil, errs.NewFatal("search setting required")
	}
	if cf == nil {
		return nil, errs.NewFatal("prng factory required")
	}
	return &Sampler{
		SpaceName: ss.Name,
		ss:        ss,
		cf:        cf,
		initSeed:  seed,
		seedmaker: newSeedMaker(seed),
	}, nil
}

// Setting 回傳底層的搜尋空間設定。
func (s *Sampler) Setting() *spacecfg.SearchSetting { return s.ss }

// InitSeed 回傳出生 seed，用於追溯/重現。
func (s *Sampler) InitSeed() int64 { return s.initSeed }

// Validate 判定單一點是否滿足全部約束。
func (s *Sampler) Validate(point []space.Value) bool {
	return s.ss.SpaceConstraints().ValidateSample(point)
}

// Sample 單線抽樣：以一顆亂數核心連續抽滿 n 個合法點，
// 回傳統計報告、點紀錄與用時。
func (s *Sampler) Sample(n int, showpb bool) (*stats.SampleReport, *recorder.PointRecorder, time.Duration, error) {
	if n < 1 {
		return nil, nil, 0, errs.NewWarn("n must > 0")
	}
	cs := s.ss.SpaceConstraints()
	c := core.New(s.cf.New(s.initSeed))

	rec, err := recorder.NewPointRecorder(s.SpaceName)
	if err != nil {
		return nil, nil, 0, err
	}

	bar := pb.StartNew(n)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	candidates := 0
	for rec.Len() < n {
		k := min(sampleChunk, n-rec.Len())
		rows, cand, err := cs.RVSStats(k, c)
		candidates += cand
		if err != nil {
			bar.Finish()
			return nil, nil, 0, err
		}
		rec.Record(rows...)
		bar.Add(k)
	}
	used := time.Since(bar.StartTime())
	bar.Finish()

	report := stats.NewSampleReport(s.SpaceName, s.ss.Space(), rec.Points, candidates, len(cs.List()))
	report.Done()
	return report, rec, used, nil
}

// SampleMP 平行抽樣：展開 mp 個 worker，各自持有獨立亂數核心與配額，
// 合併結果後回傳統計報告、點紀錄與用時。
//
// 配額拆分是 n/mp，餘數歸第一個 worker；各 worker 的 seed 由共用的
// seedMaker 衍生，worker 間沒有共享可變狀態。結果依 worker 順序合併，
// 因此 (seed, n, mp) 相同時輸出完全可重現。任一 worker 失敗整個呼叫失敗。
func (s *Sampler) SampleMP(n int, mp int, showpb bool) (*stats.SampleReport, *recorder.PointRecorder, time.Duration, error) {
	if mp <= 0 {
		return nil, nil, 0, errs.NewWarn("workers must > 0")
	}
	if n < 1 {
		return nil, nil, 0, errs.NewWarn("n must > 0")
	}
	if mp > n {
		mp = n
	}

	cs := s.ss.SpaceConstraints()
	quota := make([]int, mp)
	for i := range quota {
		quota[i] = n / mp
	}
	quota[0] += n % mp

	cores := make([]*core.Core, mp)
	recs := make([]*recorder.PointRecorder, mp)
	for i := 0; i < mp; i++ {
		cores[i] = core.New(s.cf.New(s.seedmaker.next()))
		r, err := recorder.NewPointRecorder(s.SpaceName)
		if err != nil {
			return nil, nil, 0, err
		}
		recs[i] = r
	}

	errBuf := make([]error, mp)
	var candTotal atomic.Int64

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(n)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go func(i int) {
			defer wg.Done()
			c := cores[i]
			rec := recs[i]
			want := quota[i]
			for rec.Len() < want {
				k := min(sampleChunk, want-rec.Len())
				rows, cand, err := cs.RVSStats(k, c)
				candTotal.Add(int64(cand))
				if err != nil {
					errBuf[i] = err
					return
				}
				rec.Record(rows...)
				bar.Add(k)
			}
		}(i)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	for _, err := range errBuf {
		if err != nil {
			return nil, nil, 0, err
		}
	}

	merged, err := recorder.MergePointRecorders(recs)
	if err != nil {
		return nil, nil, 0, err
	}
	report := stats.NewSampleReport(s.SpaceName, s.ss.Space(), merged.Points, int(candTotal.Load()), len(cs.List()))
	report.Done()
	return report, merged, used, nil
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
