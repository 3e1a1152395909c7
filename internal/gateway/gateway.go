package gateway

import (
	"context"
	"log"
	"path/filepath"
	"sync"

	"github.com/VanshArora01/anay/internal/bus"
	"github.com/VanshArora01/anay/internal/channel"
	"github.com/VanshArora01/anay/internal/config"
	"github.com/VanshArora01/anay/internal/cron"
)

// Gateway is the long-running process: channels feed the bus, the core
// interprets, the scheduler injects timed utterances.
type Gateway struct {
	cfg       *config.Config
	core      *Core
	bus       *bus.MessageBus
	channels  *channel.ChannelManager
	scheduler *cron.Service

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg *config.Config) (*Gateway, error) {
	core, err := NewCore(cfg)
	if err != nil {
		return nil, err
	}

	b := bus.NewMessageBus(config.DefaultBufSize)

	channels, err := channel.NewChannelManager(cfg.Channels, cfg.Gateway, b)
	if err != nil {
		core.Close()
		return nil, err
	}

	g := &Gateway{
		cfg:       cfg,
		core:      core,
		bus:       b,
		channels:  channels,
		scheduler: cron.NewService(filepath.Join(config.ConfigDir(), "data", "cron_jobs.json")),
	}
	g.scheduler.OnJob = g.runJob
	return g, nil
}

// Scheduler exposes the cron service for job management.
func (g *Gateway) Scheduler() *cron.Service { return g.scheduler }

// runJob feeds a scheduled utterance through the same pipeline as a live
// message, then optionally delivers the reply to a channel recipient.
func (g *Gateway) runJob(job cron.Job) (string, error) {
	reply := g.core.Handle(context.Background(), "cron:"+job.ID, job.Payload.Utterance)

	if job.Payload.Deliver && job.Payload.Channel != "" && job.Payload.To != "" && reply != "" {
		g.bus.Outbound <- bus.OutboundMessage{
			Channel: job.Payload.Channel,
			ChatID:  job.Payload.To,
			Content: reply,
		}
	}
	return reply, nil
}

// Run starts everything and blocks until the context is cancelled.
func (g *Gateway) Run(ctx context.Context) error {
	ctx, g.cancel = context.WithCancel(ctx)

	if err := g.channels.StartAll(ctx); err != nil {
		return err
	}
	if err := g.scheduler.Start(ctx); err != nil {
		return err
	}

	g.wg.Add(2)
	go func() {
		defer g.wg.Done()
		g.bus.DispatchOutbound(ctx)
	}()
	go func() {
		defer g.wg.Done()
		g.processLoop(ctx)
	}()

	log.Printf("[gateway] running; channels: %v", g.channels.EnabledChannels())
	<-ctx.Done()
	return g.shutdown()
}

func (g *Gateway) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-g.bus.Inbound:
			// Handle in its own goroutine so one slow model call does not
			// block other conversations.
			g.wg.Add(1)
			go func(msg bus.InboundMessage) {
				defer g.wg.Done()
				g.handleInbound(ctx, msg)
			}(msg)
		case <-ctx.Done():
			return
		}
	}
}

func (g *Gateway) handleInbound(ctx context.Context, msg bus.InboundMessage) {
	log.Printf("[gateway] %s: %q", msg.SessionKey(), msg.Content)

	reply := g.core.Handle(ctx, msg.SessionKey(), msg.Content)
	if reply == "" {
		return
	}

	select {
	case g.bus.Outbound <- bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Content: reply,
		ReplyTo: msg.SenderID,
	}:
	case <-ctx.Done():
	}
}

func (g *Gateway) shutdown() error {
	log.Printf("[gateway] shutting down")
	g.scheduler.Stop()
	if err := g.channels.StopAll(); err != nil {
		log.Printf("[gateway] channel stop error: %v", err)
	}
	g.wg.Wait()
	return g.core.Close()
}

// Stop cancels a running gateway.
func (g *Gateway) Stop() {
	if g.cancel != nil {
		g.cancel()
	}
}
