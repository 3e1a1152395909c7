package gateway

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/VanshArora01/anay/internal/bus"
	"github.com/VanshArora01/anay/internal/config"
	"github.com/VanshArora01/anay/internal/cron"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Provider.APIKey = ""
	cfg.Automation.ContextPath = filepath.Join(dir, "context.json")
	cfg.Memory.DBPath = filepath.Join(dir, "conversations.db")
	cfg.Macros.Enabled = false
	cfg.Channels = config.ChannelsConfig{}
	return cfg
}

func newTestCore(t *testing.T) *Core {
	t.Helper()
	core, err := NewCore(testConfig(t))
	if err != nil {
		t.Fatalf("NewCore error: %v", err)
	}
	t.Cleanup(func() { core.Close() })
	return core
}

func TestCore_Handle_EmptyInput(t *testing.T) {
	core := newTestCore(t)
	if reply := core.Handle(context.Background(), "test:1", "   "); reply != "" {
		t.Errorf("empty input should yield empty reply, got %q", reply)
	}
}

func TestCore_Handle_ConversationalFallback(t *testing.T) {
	core := newTestCore(t)

	// No provider configured, so the brain degrades to its canned reply.
	reply := core.Handle(context.Background(), "test:1", "how are you today")
	if reply == "" {
		t.Fatal("expected a fallback reply")
	}
}

func TestCore_Handle_PersistsConversation(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()

	core.Handle(ctx, "test:persist", "how are you")

	msgs, err := core.mem.Recent(ctx, "test:persist", 10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("expected 2 stored messages, got %d", len(msgs))
	}
	if msgs[0].Role != "user" || msgs[0].Content != "how are you" {
		t.Errorf("first message = %s %q", msgs[0].Role, msgs[0].Content)
	}
	if msgs[1].Role != "assistant" {
		t.Errorf("second message role = %s, want assistant", msgs[1].Role)
	}
}

func TestCore_Handle_SessionIsolation(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()

	core.Handle(ctx, "telegram:1", "how are you")
	core.Handle(ctx, "webui:2", "hello there friend")

	msgs, err := core.mem.Recent(ctx, "telegram:1", 10)
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	for _, m := range msgs {
		if m.Content == "hello there friend" {
			t.Error("session telegram:1 should not contain webui:2 messages")
		}
	}
}

func TestGateway_New_NoChannels(t *testing.T) {
	g, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer g.core.Close()

	if g.Scheduler() == nil {
		t.Error("scheduler should be initialized")
	}
	if len(g.channels.EnabledChannels()) != 0 {
		t.Errorf("expected no channels, got %v", g.channels.EnabledChannels())
	}
}

func TestGateway_RunJob_NoDelivery(t *testing.T) {
	g, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer g.core.Close()

	job := cron.NewJob("greet", cron.Schedule{Kind: "every", EveryMs: 60000}, cron.Payload{
		Utterance: "how are you",
	})

	reply, err := g.runJob(job)
	if err != nil {
		t.Fatalf("runJob error: %v", err)
	}
	if reply == "" {
		t.Error("expected a reply from the job")
	}

	select {
	case <-g.bus.Outbound:
		t.Error("no outbound delivery expected without Deliver flag")
	default:
	}
}

func TestGateway_RunJob_Delivers(t *testing.T) {
	g, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer g.core.Close()

	job := cron.NewJob("report", cron.Schedule{Kind: "every", EveryMs: 60000}, cron.Payload{
		Utterance: "how are you",
		Deliver:   true,
		Channel:   "telegram",
		To:        "12345",
	})

	if _, err := g.runJob(job); err != nil {
		t.Fatalf("runJob error: %v", err)
	}

	select {
	case out := <-g.bus.Outbound:
		if out.Channel != "telegram" || out.ChatID != "12345" {
			t.Errorf("outbound = %+v", out)
		}
		if out.Content == "" {
			t.Error("outbound content should not be empty")
		}
	default:
		t.Error("expected an outbound delivery")
	}
}

func TestGateway_InboundProducesOutbound(t *testing.T) {
	g, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	defer g.core.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go g.processLoop(ctx)

	g.bus.Inbound <- bus.InboundMessage{
		Channel:   "webui",
		SenderID:  "webui-1",
		ChatID:    "webui-1",
		Content:   "how are you",
		Timestamp: time.Now(),
	}

	select {
	case out := <-g.bus.Outbound:
		if out.Channel != "webui" || out.ChatID != "webui-1" {
			t.Errorf("outbound routing = %+v", out)
		}
		if out.Content == "" {
			t.Error("reply content should not be empty")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound reply")
	}
}

func TestGateway_RunAndStop(t *testing.T) {
	cfg := testConfig(t)
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	g.scheduler = cron.NewService(filepath.Join(t.TempDir(), "jobs.json"))
	g.scheduler.OnJob = g.runJob

	done := make(chan error, 1)
	go func() {
		done <- g.Run(context.Background())
	}()

	time.Sleep(200 * time.Millisecond)
	g.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("gateway did not stop in time")
	}
}
