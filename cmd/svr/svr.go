package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/server"
	"github.com/zintix-labs/royale/server/logger"
	"github.com/zintix-labs/royale/server/svrcfg"
)

// 載入順序：.env -> YAML 設定檔 -> 環境變數 -> 命令列旗標
func main() {
	cfg, flush, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	server.Run(cfg)
	flush()
}

type config struct {
	ConfigPath string
	EnvFile    string
	LogMode    string
	Addr       string
	PoolSize   int
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, func(), error) {
	cfg := new(config)
	flag.StringVar(&cfg.ConfigPath, "config", "", "path to server config yaml")
	flag.StringVar(&cfg.EnvFile, "env", ".env", "dotenv file; missing file is ignored")
	flag.StringVar(&cfg.LogMode, "log-mode", "", "log mode: dev|prod|silence")
	flag.StringVar(&cfg.Addr, "addr", "", "listen address, e.g. :5808")
	flag.IntVar(&cfg.PoolSize, "pool", 0, "number of machine instances per game")
	flag.Parse()

	if err := godotenv.Load(cfg.EnvFile); err != nil && !os.IsNotExist(err) {
		return nil, nil, err
	}
	sCfg, err := svrcfg.Load(cfg.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogMode != "" {
		sCfg.LogMode = cfg.LogMode
	}
	if cfg.Addr != "" {
		sCfg.Addr = cfg.Addr
	}
	if cfg.PoolSize > 0 {
		sCfg.PoolSize = cfg.PoolSize
	}

	rl, err := royale.NewDefault()
	if err != nil {
		return nil, nil, err
	}
	log, ah := logger.NewAsync(4096, sCfg.Mode())
	sCfg.Log = log
	sCfg.Royale = rl
	return sCfg, ah.Close, nil
}
