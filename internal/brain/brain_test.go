package brain

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/VanshArora01/anay/internal/memory"
)

type fakeGen struct {
	reply  string
	err    error
	prompt string
}

func (f *fakeGen) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.reply, f.err
}

func newTestMemory(t *testing.T) *memory.Store {
	t.Helper()
	s, err := memory.Open(filepath.Join(t.TempDir(), "conversations.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReply_NoGeneratorFallsBack(t *testing.T) {
	b := New("ANAY", nil, nil, 10)
	got := b.Reply(context.Background(), "s", "hello")
	if got != fallbackReply {
		t.Errorf("got %q", got)
	}
}

func TestReply_GeneratorErrorFallsBack(t *testing.T) {
	b := New("ANAY", &fakeGen{err: fmt.Errorf("boom")}, nil, 10)
	got := b.Reply(context.Background(), "s", "hello")
	if got != fallbackReply {
		t.Errorf("got %q", got)
	}
}

func TestReply_IncludesHistoryAndPersona(t *testing.T) {
	mem := newTestMemory(t)
	ctx := context.Background()
	if err := mem.Append(ctx, "s", "user", "my name is Vansh"); err != nil {
		t.Fatal(err)
	}
	if err := mem.Append(ctx, "s", "assistant", "Nice to meet you, Vansh"); err != nil {
		t.Fatal(err)
	}

	gen := &fakeGen{reply: "  You told me your name is Vansh.  "}
	b := New("ANAY", gen, mem, 10)
	got := b.Reply(ctx, "s", "what is my name?")

	if got != "You told me your name is Vansh." {
		t.Errorf("reply = %q", got)
	}
	for _, want := range []string{"You are ANAY", "User: my name is Vansh", "Assistant: Nice to meet you, Vansh", "User: what is my name?"} {
		if !strings.Contains(gen.prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestReply_HistoryIsScopedToSession(t *testing.T) {
	mem := newTestMemory(t)
	ctx := context.Background()
	if err := mem.Append(ctx, "other", "user", "secret stuff"); err != nil {
		t.Fatal(err)
	}

	gen := &fakeGen{reply: "hi"}
	b := New("ANAY", gen, mem, 10)
	b.Reply(ctx, "mine", "hello")

	if strings.Contains(gen.prompt, "secret stuff") {
		t.Error("history from another session leaked into the prompt")
	}
}
