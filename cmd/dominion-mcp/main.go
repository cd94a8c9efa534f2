package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/mark3labs/mcp-go/server"
	"github.com/peterkuimelis/dominion/internal/catalog"
	"github.com/peterkuimelis/dominion/internal/config"
	"github.com/peterkuimelis/dominion/internal/game"
	dominionmcp "github.com/peterkuimelis/dominion/internal/mcp"
	"github.com/peterkuimelis/dominion/internal/store"
)

func main() {
	settings, err := config.Load()
	if err != nil {
		fatal(err)
	}
	kingdomFile := flag.String("kingdoms", settings.KingdomFile, "path to kingdom file")
	port := flag.String("port", strconv.Itoa(settings.Port), "TCP port for human player connections")
	db := flag.String("db", settings.DB, "game store path (empty disables saving)")
	flag.Parse()

	// stdout carries the MCP protocol; the logger writes to stderr
	logger, err := config.NewLogger(settings.LogLevel)
	if err != nil {
		fatal(err)
	}
	defer logger.Sync()

	cat, kingdoms, err := catalog.Open(*kingdomFile, game.BaseCatalog())
	if err != nil {
		fatal(err)
	}

	m := dominionmcp.NewManager(cat, kingdoms, *port)
	m.Logger = logger
	if *db != "" {
		st, err := store.Open(*db)
		if err != nil {
			fatal(err)
		}
		defer st.Close()
		m.Store = st
	}
	defer m.Close()

	s := server.NewMCPServer("dominion", "1.0.0")
	m.RegisterTools(s)

	if err := server.ServeStdio(s); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
