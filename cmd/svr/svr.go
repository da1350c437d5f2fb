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

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/paramlab"
	"github.com/zintix-labs/paramlab/demo/demo_configs"
	"github.com/zintix-labs/paramlab/sdk/core"
	"github.com/zintix-labs/paramlab/server"
	"github.com/zintix-labs/paramlab/server/logger"
	"github.com/zintix-labs/paramlab/server/svrcfg"
)

// This command is intentionally a "lab server" entrypoint for the paramlab repo.
// It serves the embedded demo search spaces by default; point -configs at a
// directory to add your own.
func main() {
	cfg, err := loadConfigFromFlags()
	if err != nil {
		fmt.Println(err)
		return
	}
	server.Run(cfg)
}

type config struct {
	LogMode    string
	MaxWorkers int
	ConfigDir  string
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, error) {
	cfg := new(config)
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.IntVar(&cfg.MaxWorkers, "workers", 4, "max workers per sampling request")
	flag.StringVar(&cfg.ConfigDir, "configs", "", "extra search space config directory")

	flag.Parse()

	log, _ := logger.NewAsync(4096, cfg.norm())

	srcs := paramlab.Configs(demo_configs.FS)
	if cfg.ConfigDir != "" {
		srcs = append(srcs, os.DirFS(cfg.ConfigDir))
	}
	lab, err := paramlab.NewAuto(core.Default(), srcs)
	if err != nil {
		return nil, err
	}
	sCfg := &svrcfg.SvrCfg{
		Log:        log,
		MaxWorkers: cfg.MaxWorkers,
		Lab:        lab,
	}
	return sCfg, nil
}

func (cfg *config) norm() logger.LogMode {
	switch cfg.LogMode {
	case "ModeDev":
		return logger.ModeDev
	case "ModeProd":
		return logger.ModeProd
	case "ModeSilence":
		return logger.ModeSilence
	default:
		return logger.ModeDev
	}
}
