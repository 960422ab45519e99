package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iamasit07/othello/backend/internal/config"
	"github.com/iamasit07/othello/backend/internal/domain"
	"github.com/iamasit07/othello/backend/internal/service/bot"
	"github.com/iamasit07/othello/backend/internal/service/match"
	"github.com/joho/godotenv"
)

type tally struct {
	Label  string `json:"label"`
	Depth  int    `json:"depth"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`
	Draws  int    `json:"draws"`
	DQs    int    `json:"disqualifications"`
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	engine := config.LoadEngineConfig()

	first := flag.String("a", bot.DifficultyHard, "difficulty of engine A")
	second := flag.String("b", bot.DifficultyMedium, "difficulty of engine B")
	depthA := flag.Int("depth-a", 0, "override search depth of engine A")
	depthB := flag.Int("depth-b", 0, "override search depth of engine B")
	games := flag.Int("games", 2, "number of games; colours alternate every game")
	budget := flag.Int("budget-ms", engine.TimeBudgetMs, "thinking time per side per game in ms, <= 0 for unlimited")
	verbose := flag.Bool("v", false, "print every move")
	asJSON := flag.Bool("json", false, "print the summary as JSON")
	flag.Parse()

	cfgA := bot.ConfigFor(*first, engine)
	cfgB := bot.ConfigFor(*second, engine)
	if *depthA > 0 {
		cfgA.Depth = *depthA
	}
	if *depthB > 0 {
		cfgB.Depth = *depthB
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &tally{Label: "A:" + bot.NormalizeDifficulty(*first), Depth: cfgA.Depth}
	b := &tally{Label: "B:" + bot.NormalizeDifficulty(*second), Depth: cfgB.Depth}

	for i := 0; i < *games; i++ {
		blackCfg, whiteCfg := cfgA, cfgB
		blackTally, whiteTally := a, b
		if i%2 == 1 {
			blackCfg, whiteCfg = cfgB, cfgA
			blackTally, whiteTally = b, a
		}

		res, err := playOne(ctx, blackCfg, whiteCfg, time.Duration(*budget)*time.Millisecond, *verbose)
		if err != nil {
			log.Fatalf("[SELFPLAY] Game %d: %v", i+1, err)
		}

		switch res.Winner {
		case domain.Black:
			blackTally.Wins++
			whiteTally.Losses++
		case domain.White:
			whiteTally.Wins++
			blackTally.Losses++
		default:
			blackTally.Draws++
			whiteTally.Draws++
		}
		switch res.Disqualified {
		case domain.Black:
			blackTally.DQs++
		case domain.White:
			whiteTally.DQs++
		}

		log.Printf("[SELFPLAY] Game %d: %s (black) vs %s (white) -> %s %d-%d [%s] black %v white %v",
			i+1, blackTally.Label, whiteTally.Label, res.WinnerName, res.BlackCount, res.WhiteCount,
			res.Reason, res.BlackTime.Round(time.Millisecond), res.WhiteTime.Round(time.Millisecond))
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode([]*tally{a, b}); err != nil {
			log.Fatalf("[SELFPLAY] Encode summary: %v", err)
		}
		return
	}
	for _, t := range []*tally{a, b} {
		fmt.Printf("%-10s depth %d: %d won, %d lost, %d drawn, %d disqualified\n", t.Label, t.Depth, t.Wins, t.Losses, t.Draws, t.DQs)
	}
}

func playOne(ctx context.Context, blackCfg, whiteCfg bot.Config, budget time.Duration, verbose bool) (*match.Result, error) {
	black, err := bot.NewPlayer(domain.Black, blackCfg)
	if err != nil {
		return nil, fmt.Errorf("black engine: %w", err)
	}
	white, err := bot.NewPlayer(domain.White, whiteCfg)
	if err != nil {
		return nil, fmt.Errorf("white engine: %w", err)
	}

	runner := match.NewRunner(black, white, budget)
	if verbose {
		runner.OnMove = func(side domain.Side, move domain.Move, board *domain.Board) {
			fmt.Printf("%s %s\n%s\n", side, move, board)
		}
	}
	return runner.Run(ctx)
}
