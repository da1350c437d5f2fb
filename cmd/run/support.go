package main

import (
	"crypto/rand"
	"flag"
	"log"
	"math"
	"math/big"
	"os"

	"github.com/zintix-labs/paramlab"
	"github.com/zintix-labs/paramlab/demo/demo_configs"
	"github.com/zintix-labs/paramlab/recorder"
	"github.com/zintix-labs/paramlab/sdk/core"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	n         int
	worker    int
	seed      int64
	out       string
	dir       string
	pprofmode string
}

func bindVar() {
	// 綁定 Flag 到本地變數的指標 (&)
	flag.StringVar(&cfg.name, "space", "tuning", "target search space name")
	flag.IntVar(&cfg.n, "n", 100000, "number of valid points to draw")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.out, "out", "", "write accepted points to this .jsonl.zst file")
	flag.StringVar(&cfg.dir, "configs", "", "extra search space config directory")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	// given seed illeagel -> default seed
	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

// 這裡解析並分支要執行的抽樣流程
func executeSampler() {
	cfg.valid() // 基本檢查

	srcs := paramlab.Configs(demo_configs.FS)
	if cfg.dir != "" {
		srcs = append(srcs, os.DirFS(cfg.dir))
	}
	lab, err := paramlab.NewAuto(core.Default(), srcs)
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSamplerWithSeed(cfg.name, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	// 至此確保可執行
	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	if cfg.worker == 1 { // 單線程
		p.Printf("%s[SPACE:%s] [SEED:%d] [N:%d]%s\n", green, cfg.name, cfg.seed, cfg.n, reset)
		st, rec, used, err := s.Sample(cfg.n, true)
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
		saveRecorder(rec)
	} else {
		p.Printf("%s[WORKERS:%d] [SPACE:%s] [SEED:%d] [N:%d]%s\n", green, cfg.worker, cfg.name, cfg.seed, cfg.n, reset)
		st, rec, used, err := s.SampleMP(cfg.n, cfg.worker, true) // 併發
		if err != nil {
			log.Fatal(err)
		}
		st.StdOut(used)
		saveRecorder(rec)
	}
}

func saveRecorder(rec *recorder.PointRecorder) {
	if cfg.out == "" {
		return
	}
	f, err := os.Create(cfg.out)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := rec.Save(f); err != nil {
		log.Fatal(err)
	}
	p := message.NewPrinter(language.English)
	p.Printf("saved %d points to %s\n", rec.Len(), cfg.out)
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	// 工作協程檢查(併發數)
	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}

	// 抽樣數檢查
	if cfg.n < 1 {
		log.Fatal("value err : n must > 0")
	}
	// 抽樣數太多 resize
	if cfg.n > 100000000 {
		p.Printf("too many samples: %d resized to 100M points\n", cfg.n)
		cfg.n = 100000000
	}
}
