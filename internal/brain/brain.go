package brain

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/VanshArora01/anay/internal/llm"
	"github.com/VanshArora01/anay/internal/memory"
)

const personaPrompt = `You are %s, an intelligent and helpful desktop assistant. You communicate in English and are professional and friendly.

CRITICAL RULES:
1. NEVER claim to have done something unless it was actually executed
2. NEVER make up file paths
3. NEVER pretend to execute commands; command execution is handled outside this conversation
4. If you don't know something, admit it honestly

You are capable, truthful, and concise. Answer the user's latest message using the conversation so far.`

const fallbackReply = "Sorry, I'm having trouble responding right now. However, I can still execute system commands for you."

// Brain produces conversational replies for everything the command pipeline
// does not handle. History comes from the persistent store so context
// survives restarts.
type Brain struct {
	name         string
	gen          llm.Generator // may be nil
	mem          *memory.Store
	historyLimit int
}

func New(name string, gen llm.Generator, mem *memory.Store, historyLimit int) *Brain {
	if name == "" {
		name = "ANAY"
	}
	if historyLimit <= 0 {
		historyLimit = 10
	}
	return &Brain{name: name, gen: gen, mem: mem, historyLimit: historyLimit}
}

// Reply answers one conversational message. Generator failures degrade to a
// fixed apology instead of an error; the assistant should never go silent.
func (b *Brain) Reply(ctx context.Context, session, userMsg string) string {
	if b.gen == nil {
		return fallbackReply
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, personaPrompt, b.name)
	sb.WriteString("\n\n")

	if b.mem != nil {
		history, err := b.mem.Recent(ctx, session, b.historyLimit)
		if err != nil {
			log.Printf("[brain] load history: %v", err)
		}
		for _, m := range history {
			role := "User"
			if m.Role == "assistant" {
				role = "Assistant"
			}
			fmt.Fprintf(&sb, "%s: %s\n", role, m.Content)
		}
	}
	fmt.Fprintf(&sb, "User: %s\nAssistant:", userMsg)

	reply, err := b.gen.Complete(ctx, sb.String())
	if err != nil {
		log.Printf("[brain] generation failed: %v", err)
		return fallbackReply
	}
	return strings.TrimSpace(reply)
}
