package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/peterkuimelis/dominion/internal/catalog"
	"github.com/peterkuimelis/dominion/internal/config"
	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/store"
	"github.com/peterkuimelis/dominion/internal/web"
	"go.uber.org/zap"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fatal(err)
	}
	port := flag.Int("port", settings.WebPort, "HTTP port to listen on")
	kingdomFile := flag.String("kingdoms", settings.KingdomFile, "path to kingdom file")
	db := flag.String("db", settings.DB, "game store path (empty disables the game viewer)")
	flag.Parse()

	logger, err := config.NewLogger(settings.LogLevel)
	if err != nil {
		fatal(err)
	}
	defer logger.Sync()

	cat, kingdoms, err := catalog.Open(*kingdomFile, game.BaseCatalog())
	if err != nil {
		fatal(err)
	}
	var st *store.Store
	if *db != "" {
		st, err = store.Open(*db)
		if err != nil {
			fatal(err)
		}
		defer st.Close()
	}

	srv := web.NewServer(cat, kingdoms, st, logger)
	addr := fmt.Sprintf(":%d", *port)
	logger.Info("dominion web UI listening", zap.String("url", fmt.Sprintf("http://localhost:%d", *port)))
	if err := srv.ListenAndServe(addr); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
