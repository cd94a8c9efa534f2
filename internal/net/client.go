package net

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
)

// Client connects to a game server and provides a terminal REPL.
type Client struct {
	conn   io.ReadWriter
	reader *bufio.Reader
	out    io.Writer
	seat   int
	names  []string
}

// NewClient returns a REPL client on conn. Nil in and out use the terminal.
func NewClient(conn io.ReadWriter, in io.Reader, out io.Writer) *Client {
	in, out = stdio(in, out)
	return &Client{conn: conn, reader: bufio.NewReader(in), out: out}
}

// Connect connects to a server, sends the player's name, and runs the REPL.
func Connect(ctx context.Context, addr, name string) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(ClientMessage{Type: "join", Name: name}); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	client := NewClient(conn, nil, nil)
	client.printf("Connected! Waiting for game to start...\n")
	return client.RunREPL(ctx)
}

// RunREPL reads server messages and handles them interactively.
func (c *Client) RunREPL(ctx context.Context) error {
	dec := json.NewDecoder(c.conn)
	enc := json.NewEncoder(c.conn)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var msg ServerMessage
		if err := dec.Decode(&msg); err != nil {
			return fmt.Errorf("read message: %w", err)
		}

		switch msg.Type {
		case "welcome":
			c.seat, c.names = msg.Seat, msg.Players
			c.printf("You are %s. Players: %s\n", c.name(c.seat), strings.Join(msg.Players, ", "))
			c.printf("Kingdom: %s\n", strings.Join(msg.Kingdom, ", "))

		case "notify":
			c.renderEvent(msg.Event)

		case "choose_action":
			c.renderState(msg.State)
			c.renderActions(msg.Actions)
			idx := c.readChoice(len(msg.Actions))
			if err := enc.Encode(ClientMessage{Type: "action", Index: idx}); err != nil {
				return fmt.Errorf("send action: %w", err)
			}

		case "decide":
			reply := c.answer(msg.Request)
			if err := enc.Encode(reply); err != nil {
				return fmt.Errorf("send choice: %w", err)
			}

		case "error":
			c.printf("! %s\n", msg.Result)

		case "game_over":
			c.printf("\n===================================\n")
			c.printf("          GAME OVER\n")
			c.printf("===================================\n")
			c.printf("%s\n", msg.Result)
			for i, score := range msg.Scores {
				c.printf("  %-12s %3d VP\n", c.name(i), score)
			}
			var winners []string
			for _, w := range msg.Winners {
				winners = append(winners, c.name(w))
			}
			c.printf("Winner: %s\n", strings.Join(winners, " and "))
			return nil
		}
	}
}

func (c *Client) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Client) name(seat int) string {
	if seat >= 0 && seat < len(c.names) {
		return c.names[seat]
	}
	return fmt.Sprintf("P%d", seat+1)
}

func (c *Client) renderEvent(ev *EventView) {
	if ev == nil {
		return
	}
	phase := ev.Phase
	for len(phase) < 16 {
		phase += " "
	}
	c.printf("T%-2d %s| %s\n", ev.Turn, phase, ev.Details)
}

func (c *Client) renderState(sv *StateView) {
	if sv == nil {
		return
	}

	c.printf("\n+------------------------------------------------------\n")
	c.printf("| Supply: ")
	for i, p := range sv.Supply {
		if i > 0 && i%6 == 0 {
			c.printf("\n|         ")
		}
		c.printf("%s $%d (%d)  ", p.Card, p.Cost, p.Count)
	}
	c.printf("\n| Trash: %d  Empty piles: %d\n", sv.TrashCount, sv.EmptyPiles)
	c.printf("|------------------------------------------------------\n")
	for _, o := range sv.Others {
		c.printf("| %-10s Hand: %d  Deck: %d  Discard: %d", o.Name, o.HandCount, o.DeckCount, o.DiscardCount)
		if len(o.Play) > 0 {
			c.printf("  In play: %s", strings.Join(o.Play, ", "))
		}
		c.printf("\n")
	}
	you := sv.You
	c.printf("| %-10s Deck: %d  Discard: %d\n", "YOU", you.DeckCount, you.DiscardCount)
	if len(you.Play) > 0 {
		c.printf("| In play: %s\n", strings.Join(you.Play, ", "))
	}
	if len(you.SetAside) > 0 {
		c.printf("| Set aside: %s\n", strings.Join(you.SetAside, ", "))
	}
	c.printf("+------------------------------------------------------\n")

	turnInfo := fmt.Sprintf("Turn %d | %s", sv.Turn, sv.Phase)
	if sv.IsYourTurn {
		turnInfo += fmt.Sprintf(" | Your turn | Actions %d  Buys %d  $%d", you.Actions, you.Buys, you.Coins)
	} else {
		turnInfo += fmt.Sprintf(" | %s's turn", c.name(sv.Current))
	}
	c.printf("%s\n", turnInfo)
	if len(you.Hand) > 0 {
		c.printf("Hand: %s\n", strings.Join(you.Hand, ", "))
	}
}

func (c *Client) renderActions(actions []ActionView) {
	c.printf("\nActions:\n")
	for _, a := range actions {
		c.printf("  %d) %s\n", a.Index+1, a.Desc)
	}
}

func (c *Client) answer(req *RequestView) ClientMessage {
	if req == nil {
		return ClientMessage{Type: "choice"}
	}
	if req.Source != "" {
		c.printf("\n[%s] %s", req.Source, req.Prompt)
	} else {
		c.printf("\n%s", req.Prompt)
	}

	switch req.Kind {
	case "yes-no":
		c.printf(" (y/n): ")
		return ClientMessage{Type: "yes_no", Answer: c.readYesNo()}
	case "choose-order":
		c.printf(" (list all, the last one ends on top)\n")
		c.renderChoices(req.Choices)
		n := len(req.Choices)
		return ClientMessage{Type: "choice", Indices: c.readIndices(n, n, n)}
	}

	c.printf(" (select %d", req.Min)
	if req.Max != req.Min {
		if req.Max < 0 {
			c.printf(" or more")
		} else {
			c.printf("-%d", req.Max)
		}
	}
	c.printf(")\n")
	c.renderChoices(req.Choices)
	hi := req.Max
	if hi < 0 || hi > len(req.Choices) {
		hi = len(req.Choices)
	}
	return ClientMessage{Type: "choice", Indices: c.readIndices(len(req.Choices), req.Min, hi)}
}

func (c *Client) renderChoices(choices []ChoiceView) {
	for _, ch := range choices {
		c.printf("  %d) %s\n", ch.Index+1, ch.Label)
	}
}

func (c *Client) readLine() (string, bool) {
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (c *Client) readChoice(count int) int {
	for {
		c.printf("> ")
		line, ok := c.readLine()
		if !ok {
			return 0
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > count {
			c.printf("Enter a number between 1 and %d\n", count)
			continue
		}
		return n - 1
	}
}

// readIndices reads space-separated 1-based numbers. An input the server
// rejects is reissued by the game, so only the shape is checked here.
func (c *Client) readIndices(count, lo, hi int) []int {
	for {
		c.printf("> ")
		line, ok := c.readLine()
		if !ok {
			return nil
		}
		parts := strings.Fields(line)
		if len(parts) < lo || len(parts) > hi {
			c.printf("Enter %s numbers separated by spaces\n", span(lo, hi))
			continue
		}

		indices := []int{}
		valid := true
		for _, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 || n > count {
				c.printf("Each number must be between 1 and %d\n", count)
				valid = false
				break
			}
			indices = append(indices, n-1)
		}
		if valid {
			return indices
		}
	}
}

func span(lo, hi int) string {
	if lo == hi {
		return strconv.Itoa(lo)
	}
	return fmt.Sprintf("%d-%d", lo, hi)
}

func (c *Client) readYesNo() bool {
	for {
		line, ok := c.readLine()
		if !ok {
			return false
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		default:
			c.printf("Enter y or n: ")
		}
	}
}
