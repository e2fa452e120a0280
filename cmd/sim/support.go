package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"math"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zintix-labs/royale"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var cfg *config = new(config)

type config struct {
	name      string
	id        rules.GID
	worker    int
	player    int
	bets      int
	spins     int
	bet       int64
	table     string
	out       string
	seed      int64
	pprofmode string
}

type gidFlag struct{ p *rules.GID }

func (f gidFlag) String() string {
	if f.p == nil {
		return "0"
	}
	return fmt.Sprint(uint(*f.p))
}

func (f gidFlag) Set(s string) error {
	u, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return err
	}
	*f.p = rules.GID(u)
	return nil
}

func bindVar() {
	cfg.id = 2001
	flag.Var(gidFlag{&cfg.id}, "game", "target game id")
	flag.IntVar(&cfg.worker, "worker", 1, "number of workers")
	flag.IntVar(&cfg.player, "player", 1, "number of players")
	flag.IntVar(&cfg.bets, "bets", 200, "initial balance of each player, in bets")
	flag.IntVar(&cfg.spins, "spins", 1000000, "spins per worker (or per player)")
	flag.Int64Var(&cfg.bet, "bet", 10, "slots stake per spin")
	flag.StringVar(&cfg.table, "table", "red=10", "roulette bets, e.g. red=10,straight:17=5")
	flag.StringVar(&cfg.out, "out", "table", "report format: table|json|yaml")
	flag.Int64Var(&cfg.seed, "seed", -1, "int64 seed for random number generator")
	flag.StringVar(&cfg.pprofmode, "p", "", "pprof: '', cpu, heap, allocs")

	flag.Parse()

	if cfg.seed < 1 {
		seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			log.Fatal(err)
		}
		cfg.seed = seed.Int64()
	}
}

func executeSimulator() {
	cfg.valid()

	lab, err := royale.NewDefault()
	if err != nil {
		log.Fatal(err)
	}
	gs, err := lab.Setting(cfg.id)
	if err != nil {
		log.Fatal(err)
	}
	s, err := lab.NewSimulatorWithSeed(cfg.id, cfg.seed)
	if err != nil {
		log.Fatal(err)
	}
	cfg.name = gs.GameName
	req, err := cfg.request(gs.LogicKey)
	if err != nil {
		log.Fatal(err)
	}

	green := "\033[1;32m"
	reset := "\033[0m"
	p := message.NewPrinter(language.English)

	if cfg.player == 1 { // 純機台模擬
		p.Printf("%s[WORKERS:%d] [GAME:%s] [SEED:%d] [SPINS:%d]%s\n", green, cfg.worker, cfg.name, cfg.seed, cfg.worker*cfg.spins, reset)
		var (
			st   *stats.StatReport
			used time.Duration
		)
		if cfg.worker == 1 {
			st, used, err = s.Sim(req, cfg.spins, true)
		} else {
			st, used, err = s.SimMP(req, cfg.spins, cfg.worker, true)
		}
		if err != nil {
			log.Fatal(err)
		}
		report(st, used)
		return
	}

	// 模擬多玩家體驗
	p.Printf("%s[WORKERS:%d] [GAME:%s] [PLAYERS:%d BALANCE:%d SPINS:%d]%s\n", green, cfg.worker, cfg.name, cfg.player, cfg.bets, cfg.spins, reset)
	st, est, used, err := s.SimPlayers(cfg.worker, cfg.player, cfg.bets, req, cfg.spins, true)
	if err != nil {
		log.Fatal(err)
	}
	report(st, used)
	switch cfg.out {
	case "json":
		err = (&stats.JsonEstimatorRender{}).Write(os.Stdout, est)
	case "yaml":
		err = (&stats.YAMLEstimatorRender{}).Write(os.Stdout, est)
	default:
		est.Out()
	}
	if err != nil {
		log.Fatal(err)
	}
}

func report(st *stats.StatReport, used time.Duration) {
	var err error
	switch cfg.out {
	case "json":
		err = st.WriteWith(os.Stdout, &stats.JsonStatReportRender{})
	case "yaml":
		err = st.WriteWith(os.Stdout, &stats.YAMLStatReportRender{})
	default:
		st.StdOut(used)
	}
	if err != nil {
		log.Fatal(err)
	}
}

// request 輪盤用 -table，老虎機用 -bet
func (cfg *config) request(logic rules.LogicKey) (*games.Request, error) {
	if logic == rules.LogicRoulette {
		bets, err := parseBets(cfg.table)
		if err != nil {
			return nil, err
		}
		return &games.Request{Bets: bets}, nil
	}
	return &games.Request{Bet: cfg.bet}, nil
}

// parseBets 格式 type[:number]=amount，以逗號分隔，例如 red=10,straight:17=5
func parseBets(s string) ([]games.BetInput, error) {
	var out []games.BetInput
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lhs, amt, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("bet %q: missing amount", part)
		}
		amount, err := strconv.ParseInt(amt, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bet %q: %w", part, err)
		}
		b := games.BetInput{Amount: amount}
		typ, num, hasNum := strings.Cut(lhs, ":")
		b.Type = typ
		if hasNum {
			if b.Number, err = strconv.Atoi(num); err != nil {
				return nil, fmt.Errorf("bet %q: %w", part, err)
			}
		}
		out = append(out, b)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no roulette bets given")
	}
	return out, nil
}

func (cfg *config) valid() {
	p := message.NewPrinter(language.English)

	if cfg.worker < 1 {
		log.Fatal("value err : workers must > 0")
	}
	if cfg.player < 1 {
		log.Fatal("value err : player must > 0")
	}
	if cfg.player > 100000 {
		p.Printf("too much players: %d resized to 100k players\n", cfg.player)
		cfg.player = 100000
	}
	if cfg.player > 1 && cfg.bets < 1 {
		log.Fatal("value err : balance must >= 1")
	}
	if cfg.spins < 1 {
		log.Fatal("value err : spins must > 0")
	}
	// 每位玩家上限 15000 局，再多就等同長局數機台模擬
	if cfg.player > 1 && cfg.spins > 15000 {
		p.Printf("too much spins for each players : %d resized to 15k spins for each player\n", cfg.spins)
		cfg.spins = 15000
	}
	switch cfg.out {
	case "table", "json", "yaml":
	default:
		log.Fatalf("value err : unknown report format %q", cfg.out)
	}
}
