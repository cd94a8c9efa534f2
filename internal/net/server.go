package net

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"strings"

	"github.com/peterkuimelis/dominion/internal/bot"
	"github.com/peterkuimelis/dominion/internal/game"
	"github.com/peterkuimelis/dominion/internal/log"
	"github.com/peterkuimelis/dominion/internal/store"
	"go.uber.org/zap"
)

// Server hosts a game for one local player and any number of TCP clients.
// Remaining seats are filled with bots.
type Server struct {
	Catalog  game.Catalog
	Kingdom  []string
	Port     string
	HostName string
	Joiners  int      // TCP players to wait for
	Bots     []string // one bot per entry, named after its terminal card
	Seed     int64
	MaxTurns int

	// Host plays seat 0. Nil runs a terminal REPL on In and Out.
	Host game.PlayerController
	In   io.Reader
	Out  io.Writer

	Store  *store.Store // optional; finished games are saved here
	Logger *zap.Logger
}

// Run starts the server, waits for the joiners, then runs the game.
func (s *Server) Run(ctx context.Context) error {
	if s.Joiners == 0 {
		return s.Serve(ctx, nil)
	}
	ln, err := net.Listen("tcp", ":"+s.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer ln.Close()
	return s.Serve(ctx, ln)
}

// Serve runs one game using connections accepted from ln. ln may be nil
// when there are no joiners.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	hostName := s.HostName
	if hostName == "" {
		hostName = log.PlayerName(0)
	}
	names := []string{hostName}
	var joiners []*NetworkController

	if s.Joiners > 0 {
		logger.Info("waiting for players", zap.String("addr", ln.Addr().String()), zap.Int("joiners", s.Joiners))
	}
	for len(joiners) < s.Joiners {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		defer conn.Close()

		var join ClientMessage
		if err := json.NewDecoder(conn).Decode(&join); err != nil {
			return fmt.Errorf("read join message: %w", err)
		}
		seat := len(names)
		name := strings.TrimSpace(join.Name)
		if name == "" {
			name = log.PlayerName(seat)
		}
		names = append(names, name)
		joiners = append(joiners, NewNetworkController(conn, seat))
		logger.Info("player joined", zap.String("name", name), zap.Int("seat", seat), zap.Stringer("remote", conn.RemoteAddr()))
	}

	controllers := []game.PlayerController{nil}
	for _, j := range joiners {
		controllers = append(controllers, j)
	}
	for _, terminal := range s.Bots {
		names = append(names, botName(terminal, len(names)))
		controllers = append(controllers, bot.New(terminal))
	}

	replErr := make(chan error, 1)
	var hostCtrl *NetworkController
	if s.Host != nil {
		controllers[0] = s.Host
	} else {
		// the host's REPL talks to its controller over an in-memory pipe
		hostConn, hostServerConn := net.Pipe()
		defer hostConn.Close()
		hostCtrl = NewNetworkController(hostServerConn, 0)
		controllers[0] = hostCtrl
		go func() {
			client := NewClient(hostConn, s.In, s.Out)
			replErr <- client.RunREPL(ctx)
		}()
	}

	kingdom := s.Kingdom
	if kingdom == nil {
		kingdom = game.FirstGameKingdom
	}
	seats := append([]*NetworkController{}, joiners...)
	if hostCtrl != nil {
		seats = append([]*NetworkController{hostCtrl}, seats...)
	}
	for _, nc := range seats {
		if err := nc.Send(ServerMessage{Type: "welcome", Seat: nc.player, Players: names, Kingdom: kingdom}); err != nil {
			return fmt.Errorf("send welcome: %w", err)
		}
	}

	g, err := game.NewGame(s.Catalog, game.Config{
		Players:  names,
		Kingdom:  s.Kingdom,
		Seed:     s.Seed,
		MaxTurns: s.MaxTurns,
		Logger:   NewZapEventLogger(logger),
	}, controllers...)
	if err != nil {
		return fmt.Errorf("new game: %w", err)
	}
	logger.Info("game started", zap.Strings("players", names), zap.Strings("kingdom", kingdom), zap.Int64("seed", g.Config().Seed))

	gameErr := make(chan error, 1)
	go func() {
		res, err := g.Run(ctx)
		if err != nil {
			msg := ServerMessage{Type: "error", Result: err.Error()}
			for _, nc := range seats {
				_ = nc.Send(msg)
			}
			gameErr <- fmt.Errorf("game error: %w", err)
			return
		}
		logger.Info("game over", zap.String("result", res.Reason), zap.Ints("scores", res.Scores), zap.Ints("winners", res.Winners))
		if s.Store != nil {
			id, err := s.Store.SaveGame(ctx, g)
			if err != nil {
				logger.Error("save game", zap.Error(err))
			} else {
				logger.Info("game saved", zap.String("id", id))
			}
		}

		msg := ServerMessage{Type: "game_over", Winners: res.Winners, Scores: res.Scores, Result: res.Reason}
		for _, nc := range seats {
			_ = nc.Send(msg)
		}
		gameErr <- nil
	}()

	// A failed REPL aborts; otherwise wait until every seat has the result.
	select {
	case err := <-gameErr:
		return err
	case err := <-replErr:
		if err != nil {
			return err
		}
		return <-gameErr
	}
}

func botName(terminal string, seat int) string {
	if terminal == "" {
		return fmt.Sprintf("%s (Big Money)", log.PlayerName(seat))
	}
	return fmt.Sprintf("%s (%s bot)", log.PlayerName(seat), terminal)
}

// ZapEventLogger records game events in memory and mirrors them to a zap
// logger at debug level.
type ZapEventLogger struct {
	*log.MemoryLogger
	z *zap.Logger
}

// NewZapEventLogger wraps z.
func NewZapEventLogger(z *zap.Logger) *ZapEventLogger {
	return &ZapEventLogger{MemoryLogger: log.NewMemoryLogger(), z: z}
}

func (l *ZapEventLogger) Log(event log.GameEvent) {
	l.MemoryLogger.Log(event)
	if ce := l.z.Check(zap.DebugLevel, event.Details); ce != nil {
		ce.Write(
			zap.Int("turn", event.Turn),
			zap.String("phase", event.Phase),
			zap.Int("player", event.Player),
			zap.Stringer("type", event.Type),
		)
	}
}

// stdio returns the readers used when the host has no explicit streams.
func stdio(in io.Reader, out io.Writer) (io.Reader, io.Writer) {
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	return in, out
}
