package core

import (
	"fmt"
	"testing"

	"pkt.systems/wheelhouse/schema"
)

func TestClosedStackLIFO(t *testing.T) {
	stack := newClosedStack(5)
	stack.Push(schema.ClosedTab{URL: "https://one.example/"})
	stack.Push(schema.ClosedTab{URL: "https://two.example/"})

	entry, ok := stack.Pop()
	if !ok || entry.URL != "https://two.example/" {
		t.Fatalf("expected most recent entry, got %+v ok=%v", entry, ok)
	}
	entry, ok = stack.Pop()
	if !ok || entry.URL != "https://one.example/" {
		t.Fatalf("expected older entry, got %+v ok=%v", entry, ok)
	}
	if _, ok := stack.Pop(); ok {
		t.Fatalf("expected empty stack")
	}
}

func TestClosedStackEvictsOldestAtCap(t *testing.T) {
	stack := newClosedStack(schema.DefaultClosedStackMax)
	for i := 0; i < schema.DefaultClosedStackMax+3; i++ {
		stack.Push(schema.ClosedTab{URL: fmt.Sprintf("https://example.com/%d", i)})
	}
	if stack.Len() != schema.DefaultClosedStackMax {
		t.Fatalf("expected stack capped at %d, got %d", schema.DefaultClosedStackMax, stack.Len())
	}
	// Newest entry survives on top.
	entry, _ := stack.Pop()
	if entry.URL != fmt.Sprintf("https://example.com/%d", schema.DefaultClosedStackMax+2) {
		t.Fatalf("unexpected top after eviction: %q", entry.URL)
	}
	// Drain; the oldest surviving entry is the one after the evicted three.
	var last schema.ClosedTab
	for {
		entry, ok := stack.Pop()
		if !ok {
			break
		}
		last = entry
	}
	if last.URL != "https://example.com/3" {
		t.Fatalf("expected oldest three evicted, bottom was %q", last.URL)
	}
}

func TestClosedStackZeroMaxFallsBackToDefault(t *testing.T) {
	stack := newClosedStack(0)
	for i := 0; i < schema.DefaultClosedStackMax*2; i++ {
		stack.Push(schema.ClosedTab{URL: "https://example.com/"})
	}
	if stack.Len() != schema.DefaultClosedStackMax {
		t.Fatalf("expected default cap, got %d", stack.Len())
	}
}
