package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryLoggerNumbersEvents(t *testing.T) {
	l := NewMemoryLogger()
	l.Log(NewTurnEvent(1, 0))
	l.Log(NewBuyEvent(1, "Buy Phase", 0, "Silver", 3))
	l.Log(NewBuyEvent(1, "Buy Phase", 0, "Village", 3))

	events := l.Events()
	for i, e := range events {
		if e.Seq != i+1 {
			t.Errorf("event %d: Seq = %d", i, e.Seq)
		}
	}
	if got := len(l.EventsOfType(EventBuy)); got != 2 {
		t.Errorf("buys = %d, want 2", got)
	}

	events[0].Details = "changed"
	if l.Events()[0].Details == "changed" {
		t.Error("Events must return a copy")
	}
}

func TestTextLoggerWritesAlignedLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewBuyEvent(3, "Buy Phase", 0, "Silver", 3))
	l.Log(NewDrawEvent(3, "Cleanup Phase", 1, nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "T3  Buy Phase       | P1 buys Silver for $3" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "| P2 draws 0 card(s): nothing") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if len(l.Events()) != 2 {
		t.Errorf("TextLogger must also keep events")
	}
}
