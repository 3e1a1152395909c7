package gateway

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/VanshArora01/anay/internal/automation"
	"github.com/VanshArora01/anay/internal/brain"
	"github.com/VanshArora01/anay/internal/config"
	"github.com/VanshArora01/anay/internal/llm"
	"github.com/VanshArora01/anay/internal/memory"
	"github.com/VanshArora01/anay/internal/skills"
	"github.com/VanshArora01/anay/internal/tools"
)

// Core is the assistant pipeline shared by the gateway and the CLI: every
// utterance goes through the command router first, and only falls through to
// the conversational brain when no automation handles it.
type Core struct {
	cfg    *config.Config
	gen    llm.Generator
	store  *automation.ContextStore
	router *automation.Router
	mem    *memory.Store
	brain  *brain.Brain
}

func NewCore(cfg *config.Config) (*Core, error) {
	gen, err := llm.New(cfg)
	if err != nil {
		// Rule-based extraction still works without a model.
		log.Printf("[core] running without a language model: %v", err)
		gen = nil
	}

	loc := tools.DefaultLocations()
	if cfg.Automation.Desktop != "" {
		loc.Desktop = cfg.Automation.Desktop
	}
	if cfg.Automation.Documents != "" {
		loc.Documents = cfg.Automation.Documents
	}
	if cfg.Automation.Downloads != "" {
		loc.Downloads = cfg.Automation.Downloads
	}

	var vision llm.VisionDescriber
	if v, ok := gen.(llm.VisionDescriber); ok {
		vision = v
	}

	sys := tools.NewSystemControl(loc, cfg.Automation.ScreenshotDir, cfg.Automation.ProcessLimit, vision)
	files := tools.NewFileManager(loc)
	browser := tools.NewBrowserAgent(sys)
	input := tools.NewInputController()
	dispatcher := automation.NewDispatcher(sys, files, browser, input)

	planner := automation.NewPlanner(gen, loc.Desktop, loc.Documents)
	if cfg.Macros.Enabled {
		macros, err := skills.LoadMacros(cfg.MacrosDir())
		if err != nil {
			log.Printf("[core] macro loading failed: %v", err)
		} else {
			planner.SetPromptAppendix(skills.PromptAppendix(macros))
		}
	}

	store := automation.NewContextStore(cfg.ContextPath())
	router := automation.NewRouter(store, automation.NewExtractor(), planner, automation.NewGuard(), dispatcher)

	mem, err := memory.Open(cfg.MemoryDBPath())
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}

	return &Core{
		cfg:    cfg,
		gen:    gen,
		store:  store,
		router: router,
		mem:    mem,
		brain:  brain.New(cfg.Assistant.Name, gen, mem, cfg.Assistant.HistoryLimit),
	}, nil
}

// Handle runs one user utterance through the pipeline and returns the reply.
func (c *Core) Handle(ctx context.Context, session, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if err := c.mem.Append(ctx, session, "user", text); err != nil {
		log.Printf("[core] memory append failed: %v", err)
	}

	handled, reply := c.router.Route(ctx, text)
	if !handled {
		reply = c.brain.Reply(ctx, session, text)
	}

	if reply != "" {
		if err := c.mem.Append(ctx, session, "assistant", reply); err != nil {
			log.Printf("[core] memory append failed: %v", err)
		}
	}
	return reply
}

func (c *Core) Close() error {
	return c.mem.Close()
}
