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
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/paramlab/space"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo" yaml:"Lo"`
	Hi float64 `json:"Hi" yaml:"Hi"`
}

// SampleReport 抽樣批次統計報告
type SampleReport struct {
	Summary *SummaryReport `json:"Summary" yaml:"Summary"`
	Dims    []*DimSummary  `json:"Dims" yaml:"Dims"`
	isDone  bool
}

type SummaryReport struct {
	SpaceName   string  `json:"SpaceName" yaml:"SpaceName"`
	NDims       int     `json:"NDims" yaml:"NDims"`
	Samples     int     `json:"Samples" yaml:"Samples"`
	Candidates  int     `json:"Candidates" yaml:"Candidates"`
	AcceptRate  float64 `json:"AcceptRate" yaml:"AcceptRate"`
	AcceptCI    CI      `json:"AcceptCI" yaml:"AcceptCI"`
	Constraints int     `json:"Constraints" yaml:"Constraints"`
}

// DimSummary 單一維度的樣本摘要
//
// 數值維度填 Mean/Std/Min/Max/Median；類別維度填 Counts。
type DimSummary struct {
	Index  int             `json:"Index" yaml:"Index"`
	Type   string          `json:"Type" yaml:"Type"`
	Mean   float64         `json:"Mean,omitempty" yaml:"Mean,omitempty"`
	Std    float64         `json:"Std,omitempty" yaml:"Std,omitempty"`
	Min    float64         `json:"Min,omitempty" yaml:"Min,omitempty"`
	Max    float64         `json:"Max,omitempty" yaml:"Max,omitempty"`
	Median float64         `json:"Median,omitempty" yaml:"Median,omitempty"`
	Counts []CategoryCount `json:"Counts,omitempty" yaml:"Counts,omitempty"`
}

// CategoryCount 類別出現次數，依 Label 排序以求穩定輸出。
type CategoryCount struct {
	Label string `json:"Label" yaml:"Label"`
	Count int    `json:"Count" yaml:"Count"`
}

// ============================================================
// ** 公開方法 **
// ============================================================

// NewSampleReport 由一批已接受的點建立報告。
//
// candidates 是抽樣器為了得到這批點總共產生的候選數，
// 用來推估此約束集的接受率。
func NewSampleReport(name string, sp *space.Space, points [][]space.Value, candidates int, nConstraints int) *SampleReport {
	r := &SampleReport{
		Summary: &SummaryReport{
			SpaceName:   name,
			NDims:       sp.NDims(),
			Samples:     len(points),
			Candidates:  candidates,
			Constraints: nConstraints,
		},
		Dims: make([]*DimSummary, 0, sp.NDims()),
	}
	for d, dim := range sp.Dimensions() {
		r.Dims = append(r.Dims, summarizeDim(d, dim.Type(), points))
	}
	return r
}

// Done 計算彙總欄位並鎖定 isDone 標記，重複呼叫無作用。
func (s *SampleReport) Done() {
	if s.isDone {
		return
	}
	s.Summary.AcceptRate = s.acceptRate()
	s.Summary.AcceptCI = s.acceptCI()
	s.isDone = true
}

func (s *SampleReport) WriteWith(w io.Writer, rep SampleReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *SampleReport) StdOut(ut time.Duration) {
	s.Done()
	formatDuration(ut, s.Summary.Samples)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.SpaceName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func (s *SampleReport) acceptRate() float64 {
	if s.Summary.Candidates == 0 {
		return 0
	}
	return float64(s.Summary.Samples) / float64(s.Summary.Candidates)
}

func (s *SampleReport) acceptCI() CI {
	_, ci := proportionCICP(s.Summary.Samples, s.Summary.Candidates, 0.95)
	return ci
}

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

func summarizeDim(d int, dt space.DimType, points [][]space.Value) *DimSummary {
	ds := &DimSummary{Index: d, Type: dt.String()}

	if dt == space.CategoricalDim {
		counts := map[string]int{}
		for _, p := range points {
			counts[p[d].String()]++
		}
		labels := make([]string, 0, len(counts))
		for l := range counts {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			ds.Counts = append(ds.Counts, CategoryCount{Label: l, Count: counts[l]})
		}
		return ds
	}

	xs := make([]float64, 0, len(points))
	for _, p := range points {
		xs = append(xs, p[d].Num())
	}
	if len(xs) == 0 {
		return ds
	}
	sort.Float64s(xs)
	ds.Min = xs[0]
	ds.Max = xs[len(xs)-1]
	ds.Mean = stat.Mean(xs, nil)
	ds.Median = stat.Quantile(0.5, stat.Empirical, xs, nil)
	if len(xs) > 1 {
		ds.Std = stat.StdDev(xs, nil)
	}
	return ds
}

func formatDuration(d time.Duration, samples int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(samples) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d samples/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\nsps : %d samples/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d samples/sec\n", h, m, s, sps)
}

// StdOut

func (s *SampleReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Space Name":    p.Sprintf("%s", s.Summary.SpaceName),
		"Dimensions":    p.Sprintf("%d", s.Summary.NDims),
		"Constraints":   p.Sprintf("%d", s.Summary.Constraints),
		"Samples":       p.Sprintf("%d", s.Summary.Samples),
		"Candidates":    p.Sprintf("%d", s.Summary.Candidates),
		"Accept Rate":   p.Sprintf("%.2f %%", 100.0*s.Summary.AcceptRate),
		"Accept 95% CI": p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.AcceptCI.Lo, 100.0*s.Summary.AcceptCI.Hi),
	}
	keys := []string{"Space Name", "Dimensions", "Constraints", "Samples", "Candidates", "Accept Rate", "Accept 95% CI"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
