package main

import "github.com/zintix-labs/paramlab/sdk/perf"

// makefile runner
func main() {
	bindVar()
	perf.RunPProf(executeSampler, cfg.pprofmode)
}
