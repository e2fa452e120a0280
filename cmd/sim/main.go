package main

import "github.com/zintix-labs/royale/sdk/perf"

// RTP 模擬：go run ./cmd/sim -game 2001 -bet 10 -spins 1000000 -worker 4
func main() {
	bindVar()
	perf.RunPProf(executeSimulator, cfg.pprofmode)
}
