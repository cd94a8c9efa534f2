package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/peterkuimelis/dominion/internal/bot"
	"github.com/peterkuimelis/dominion/internal/catalog"
	"github.com/peterkuimelis/dominion/internal/config"
	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/log"
	dnet "github.com/peterkuimelis/dominion/internal/net"
	"github.com/peterkuimelis/dominion/internal/store"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	settings, err := config.Load()
	if err != nil {
		fatal(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args[2:]
	switch os.Args[1] {
	case "host":
		err = runHost(ctx, settings, args, 1)
	case "solo":
		err = runHost(ctx, settings, args, 0)
	case "join":
		err = runJoin(ctx, settings, args)
	case "games":
		err = runGames(ctx, settings, args)
	case "replay":
		err = runReplay(ctx, settings, args)
	case "sim":
		err = runSim(ctx, settings, args)
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  dominion host   [--port P] [--joiners N] [--bots LIST] [--kingdom K] [--seed S] [--name NAME]")
	fmt.Println("  dominion solo   [--bots LIST] [--kingdom K] [--seed S] [--name NAME]")
	fmt.Println("  dominion join   [--addr ADDR] [--name NAME]")
	fmt.Println("  dominion games  [--limit N]")
	fmt.Println("  dominion replay ID")
	fmt.Println("  dominion sim    [--games N] [--bots LIST] [--kingdom K]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  host    Start a game server and play seat 1; others join over TCP")
	fmt.Println("  solo    Play against bots in this terminal")
	fmt.Println("  join    Connect to a game server")
	fmt.Println("  games   List stored games")
	fmt.Println("  replay  Re-run a stored game and print its log")
	fmt.Println("  sim     Play bots against each other and report wins")
	fmt.Println()
	fmt.Println("K is a preset name or number from the kingdom file, or a comma-separated card list.")
	fmt.Println("LIST is a comma-separated Action card per bot; an empty entry plays plain Big Money.")
}

func newLogger(s config.Settings) *zap.Logger {
	logger, err := config.NewLogger(s.LogLevel)
	if err != nil {
		fatal(err)
	}
	return logger
}

func loadCatalog(path string) (game.Catalog, *catalog.File) {
	cat, f, err := catalog.Open(path, game.BaseCatalog())
	if err != nil {
		fatal(fmt.Errorf("load kingdom file: %w", err))
	}
	return cat, f
}

func openStore(path string) *store.Store {
	if path == "" {
		return nil
	}
	st, err := store.Open(path)
	if err != nil {
		fatal(err)
	}
	return st
}

func parseBots(list string) []string {
	if strings.TrimSpace(list) == "" {
		return nil
	}
	var bots []string
	for _, b := range strings.Split(list, ",") {
		bots = append(bots, strings.TrimSpace(b))
	}
	return bots
}

func runHost(ctx context.Context, s config.Settings, args []string, defaultJoiners int) error {
	fs := flag.NewFlagSet("host", flag.ExitOnError)
	port := fs.Int("port", s.Port, "TCP port to listen on")
	joiners := fs.Int("joiners", defaultJoiners, "number of TCP players to wait for")
	defaultBots := ""
	if defaultJoiners == 0 {
		defaultBots = "Smithy"
	}
	bots := fs.String("bots", defaultBots, "comma-separated bot list")
	kingdom := fs.String("kingdom", "", "kingdom preset or card list (default First Game)")
	kingdomFile := fs.String("kingdoms", s.KingdomFile, "path to kingdom file")
	seed := fs.Int64("seed", s.Seed, "shuffle seed (0 = random)")
	maxTurns := fs.Int("max-turns", 0, "end the game after this many turns (0 = no limit)")
	name := fs.String("name", "", "your player name")
	db := fs.String("db", s.DB, "game store path (empty disables saving)")
	fs.Parse(args)

	logger := newLogger(s)
	defer logger.Sync()
	cat, f := loadCatalog(*kingdomFile)
	k, err := f.Resolve(*kingdom)
	if err != nil {
		return err
	}
	st := openStore(*db)
	if st != nil {
		defer st.Close()
	}

	srv := &dnet.Server{
		Catalog:  cat,
		Kingdom:  k,
		Port:     strconv.Itoa(*port),
		HostName: *name,
		Joiners:  *joiners,
		Bots:     parseBots(*bots),
		Seed:     *seed,
		MaxTurns: *maxTurns,
		Store:    st,
		Logger:   logger,
	}
	return srv.Run(ctx)
}

func runJoin(ctx context.Context, s config.Settings, args []string) error {
	fs := flag.NewFlagSet("join", flag.ExitOnError)
	addr := fs.String("addr", fmt.Sprintf("localhost:%d", s.Port), "server address to connect to")
	name := fs.String("name", "", "your player name")
	fs.Parse(args)

	return dnet.Connect(ctx, *addr, *name)
}

func runGames(ctx context.Context, s config.Settings, args []string) error {
	fs := flag.NewFlagSet("games", flag.ExitOnError)
	limit := fs.Int("limit", 20, "number of games to show")
	db := fs.String("db", s.DB, "game store path")
	fs.Parse(args)

	st := openStore(*db)
	if st == nil {
		return errors.New("no game store configured")
	}
	defer st.Close()
	games, err := st.List(ctx, *limit)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLAYED\tPLAYERS\tTURNS\tRESULT")
	for _, g := range games {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", g.ID[:8], g.CreatedAt.Local().Format("2006-01-02 15:04"),
			strings.Join(g.Players, ", "), g.Turns, g.Result)
	}
	return tw.Flush()
}

func runReplay(ctx context.Context, s config.Settings, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	db := fs.String("db", s.DB, "game store path")
	kingdomFile := fs.String("kingdoms", s.KingdomFile, "path to kingdom file")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("usage: dominion replay ID")
	}

	st := openStore(*db)
	if st == nil {
		return errors.New("no game store configured")
	}
	defer st.Close()
	rec, err := st.Load(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	cat, _ := loadCatalog(*kingdomFile)
	g, err := game.Replay(cat, rec.Transcript, log.NewTextLogger(os.Stdout))
	if err != nil {
		return fmt.Errorf("replay %s: %w", rec.ID, err)
	}
	res := g.Result()
	for i, score := range res.Scores {
		fmt.Printf("%-12s %3d VP\n", rec.Players[i], score)
	}
	return nil
}

func runSim(ctx context.Context, s config.Settings, args []string) error {
	fs := flag.NewFlagSet("sim", flag.ExitOnError)
	games := fs.Int("games", 100, "number of games")
	bots := fs.String("bots", "Smithy,", "comma-separated bot list, one per seat")
	kingdom := fs.String("kingdom", "", "kingdom preset or card list (default First Game)")
	kingdomFile := fs.String("kingdoms", s.KingdomFile, "path to kingdom file")
	seed := fs.Int64("seed", 1, "seed of the first game; game i uses seed+i")
	maxTurns := fs.Int("max-turns", 60, "turn limit per game")
	fs.Parse(args)

	cat, f := loadCatalog(*kingdomFile)
	k, err := f.Resolve(*kingdom)
	if err != nil {
		return err
	}
	seats := parseBots(*bots)

	wins := make([]float64, len(seats))
	turns := 0
	for i := 0; i < *games; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		ctrls := make([]game.PlayerController, len(seats))
		for j, terminal := range seats {
			ctrls[j] = bot.New(terminal)
		}
		g, err := game.NewGame(cat, game.Config{Kingdom: k, Seed: *seed + int64(i), MaxTurns: *maxTurns}, ctrls...)
		if err != nil {
			return err
		}
		res, err := g.Run(ctx)
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}
		for _, w := range res.Winners {
			wins[w] += 1 / float64(len(res.Winners))
		}
		turns += res.Turn
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEAT\tBOT\tWINS\tRATE")
	for i, terminal := range seats {
		label := terminal
		if label == "" {
			label = "Big Money"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%.1f%%\n", log.PlayerName(i), label, wins[i], 100*wins[i]/float64(*games))
	}
	fmt.Fprintf(tw, "\naverage length: %.1f turns\n", float64(turns)/float64(*games))
	return tw.Flush()
}
