package ai

import (
	"fmt"
	"testing"
)

func TestHistory_TrimsMiddleKeepingFirst(t *testing.T) {
	h := NewHistory(4)

	for i := 0; i < 6; i++ {
		h.Add(RoleUser, fmt.Sprintf("msg %d", i))
	}

	msgs := h.Messages()
	if len(msgs) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(msgs))
	}
	if msgs[0].Content != "msg 0" {
		t.Fatalf("expected the first message kept, got %q", msgs[0].Content)
	}
	if msgs[len(msgs)-1].Content != "msg 5" {
		t.Fatalf("expected the newest message last, got %q", msgs[len(msgs)-1].Content)
	}
}

func TestHistory_ResetAndDefaults(t *testing.T) {
	h := NewHistory(0)

	h.Add(RoleUser, "hola")
	h.Add(RoleAssistant, "buenas")
	if h.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", h.Len())
	}

	h.Reset()
	if h.Len() != 0 {
		t.Fatalf("expected empty history after reset, got %d", h.Len())
	}
}

func TestHistory_MessagesReturnsCopy(t *testing.T) {
	h := NewHistory(5)
	h.Add(RoleUser, "original")

	msgs := h.Messages()
	msgs[0].Content = "mutated"

	if got := h.Messages()[0].Content; got != "original" {
		t.Fatalf("expected internal transcript untouched, got %q", got)
	}
}
