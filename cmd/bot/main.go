package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/zintix-labs/royale/account"
	"github.com/zintix-labs/royale/client"
	"github.com/zintix-labs/royale/games"
	"github.com/zintix-labs/royale/lobby"
	"github.com/zintix-labs/royale/rules"
	"github.com/zintix-labs/royale/sdk/core"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// 模擬玩家：go run ./cmd/bot -url http://localhost:5808 -bots 20 -spins 100
type config struct {
	url   string
	bots  int
	spins int
	bet   int64
	seed  int64
	pause time.Duration
}

type tally struct {
	spins   atomic.Int64
	stake   atomic.Int64
	win     atomic.Int64
	jackpot atomic.Int64
	refused atomic.Int64
	failed  atomic.Int64
}

var roulettePlays = []games.BetInput{
	{Type: string(rules.BetRed)},
	{Type: string(rules.BetBlack)},
	{Type: string(rules.BetOdd)},
	{Type: string(rules.BetDozen2)},
	{Type: string(rules.BetStraight), Number: 17},
}

func main() {
	cfg := new(config)
	flag.StringVar(&cfg.url, "url", "http://localhost:5808", "server base url")
	flag.IntVar(&cfg.bots, "bots", 10, "number of simulated players")
	flag.IntVar(&cfg.spins, "spins", 50, "spins per player")
	flag.Int64Var(&cfg.bet, "bet", 10, "stake per spin")
	flag.Int64Var(&cfg.seed, "seed", time.Now().UnixNano(), "seed for bot choices")
	flag.DurationVar(&cfg.pause, "pause", 0, "pause between spins")
	flag.Parse()
	if cfg.bots < 1 || cfg.spins < 1 || cfg.bet < 1 {
		log.Fatal("bots, spins and bet must > 0")
	}

	ctx := context.Background()
	list, err := client.New(cfg.url).Games(ctx)
	if err != nil {
		log.Fatal(err)
	}
	open := list[:0]
	for _, gm := range list {
		if gm.Status == lobby.GameOpen {
			open = append(open, gm)
		}
	}
	if len(open) == 0 {
		log.Fatal("no open games")
	}

	t := new(tally)
	start := time.Now()
	var g errgroup.Group
	for i := 0; i < cfg.bots; i++ {
		c := core.New(core.Default().New(cfg.seed + int64(i)))
		g.Go(func() error { return play(ctx, cfg, i, open, c, t) })
	}
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	report(t, time.Since(start))
}

func play(ctx context.Context, cfg *config, n int, open []lobby.Game, c *core.Core, t *tally) error {
	api := client.New(cfg.url)
	stamp := time.Now().UnixNano()
	_, err := api.Register(ctx, account.RegisterInput{
		Name:            fmt.Sprintf("bot-%d", n),
		Email:           fmt.Sprintf("bot-%d-%d@bots.local", n, stamp),
		Password:        "bot-password",
		ConfirmPassword: "bot-password",
	})
	if err != nil {
		return err
	}
	for i := 0; i < cfg.spins; i++ {
		g := open[c.IntN(len(open))]
		bet := cfg.bet
		if bet < g.MinBet {
			bet = g.MinBet
		}
		var (
			stake, win, jp int64
			err            error
		)
		if g.Logic == rules.LogicRoulette {
			b := roulettePlays[c.IntN(len(roulettePlays))]
			b.Amount = bet
			res, e := api.SpinRoulette(ctx, g.GID, []games.BetInput{b})
			if err = e; res != nil {
				stake, win = res.Stake, res.Win
			}
		} else {
			res, e := api.SpinSlots(ctx, g.GID, bet)
			if err = e; res != nil {
				stake, win, jp = res.Stake, res.Win, res.Jackpot
			}
		}
		switch client.StatusOf(err) {
		case 0:
			if err != nil {
				t.failed.Add(1)
				continue
			}
		case http.StatusBadRequest, http.StatusForbidden, http.StatusConflict, http.StatusTooManyRequests:
			// 餘額不足、維護中、限流：這位玩家停止
			t.refused.Add(1)
			return nil
		default:
			t.failed.Add(1)
			continue
		}
		t.spins.Add(1)
		t.stake.Add(stake)
		t.win.Add(win)
		t.jackpot.Add(jp)
		if cfg.pause > 0 {
			time.Sleep(cfg.pause)
		}
	}
	return nil
}

func report(t *tally, used time.Duration) {
	p := message.NewPrinter(language.English)
	rtp := 0.0
	if s := t.stake.Load(); s > 0 {
		rtp = float64(t.win.Load()) / float64(s) * 100
	}
	p.Printf("used    : %v\n", used.Round(time.Millisecond))
	p.Printf("spins   : %d\n", t.spins.Load())
	p.Printf("stake   : %d\n", t.stake.Load())
	p.Printf("win     : %d (jackpot %d)\n", t.win.Load(), t.jackpot.Load())
	p.Printf("rtp     : %.2f%%\n", rtp)
	p.Printf("refused : %d\n", t.refused.Load())
	p.Printf("failed  : %d\n", t.failed.Load())
}
