package automation

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// Generator is the slice of the language-model surface the planner needs.
type Generator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Planner asks the model to decompose an utterance into a JSON step plan.
// Any failure (no generator, transport error, unparseable output) degrades to
// the empty plan so the caller falls back to a conversational reply.
type Planner struct {
	gen       Generator
	desktop   string
	documents string
	extra     string // macro descriptions appended to the prompt
}

func NewPlanner(gen Generator, desktop, documents string) *Planner {
	return &Planner{gen: gen, desktop: desktop, documents: documents}
}

// SetPromptAppendix attaches extra prompt material, such as user macro
// descriptions, after the built-in rules.
func (p *Planner) SetPromptAppendix(extra string) { p.extra = extra }

const plannerPrompt = `You are an execution-first desktop automation agent.
Your goal is to convert user requests into a JSON series of tool executions.

CURRENT SYSTEM CONTEXT:
<<CONTEXT>>

IMPORTANT PATHS:
- Desktop: <<DESKTOP>>
- Documents: <<DOCUMENTS>>

AVAILABLE TOOLS:

1. system_control:
   - launch_app(app_name): e.g. "notepad", "chrome", "code", "spotify".
   - close_app(app_name): Close a running process.
   - open_browser(url): Open a URL in the default browser.
   - play_spotify(query): Launch Spotify, optionally with a search query.

2. file_manager:
   - write_file(path, content): Create/Edit file. PATH MUST BE ABSOLUTE using FORWARD SLASHES.
   - append_file(path, content): Add content to the end of an existing file.
   - read_file(path): Read content.
   - create_folder(path): Make new dir.
   - delete_item(path): Delete file/folder.
   - list_files(path): List dir contents.

3. input_controller:
   - type_text(text): Types text.
   - press_key(key): Keys: 'enter', 'esc', 'tab', 'space', 'backspace'.
   - hotkey(keys): e.g. ["ctrl", "l"] (Focus Address Bar/Search), ["ctrl", "w"] (Close Tab).
   - wait(seconds): PAUSE for UI to load. CRITICAL for app launching.
   - media_play_pause(), media_next(), volume_up().

RULES:
1. ACTION OVER CHAT: Always execute if possible.
2. APP NAVIGATION: You have keyboard control. Use it to search and navigate inside apps.
3. SPOTIFY SEARCH WORKFLOW to "Play [Song]":
   1. launch_app("spotify")
   2. wait(5.0) (CRITICAL: wait for the app to fully load and take focus)
   3. hotkey(["ctrl", "k"]) (Open Quick Search)
   4. wait(2.0) (Wait for Search UI to animate and focus)
   5. type_text("[Song Name]")
   6. wait(1.0) (Wait for results to populate)
   7. press_key("enter") (Play Top Result)
4. PATH FORMATTING: Use FORWARD SLASHES (/).

Example 1 (Complex Spotify):
User: "Play 52 bars on spotify"
JSON:
{
    "steps": [
        {"tool": "system_control", "action": "launch_app", "params": {"app_name": "spotify"}},
        {"tool": "input_controller", "action": "wait", "params": {"seconds": 5.0}},
        {"tool": "input_controller", "action": "hotkey", "params": {"keys": ["ctrl", "k"]}},
        {"tool": "input_controller", "action": "wait", "params": {"seconds": 2.0}},
        {"tool": "input_controller", "action": "type_text", "params": {"text": "52 bars"}},
        {"tool": "input_controller", "action": "wait", "params": {"seconds": 1.0}},
        {"tool": "input_controller", "action": "press_key", "params": {"key": "enter"}}
    ]
}

Example 2 (File):
User: "Create hello.txt on desktop"
JSON:
{
    "steps": [
        {"tool": "file_manager", "action": "write_file", "params": {"path": "<<DESKTOP>>/hello.txt", "content": "Hello"}}
    ]
}

Example 3 (Chat/Knowledge):
User: "Tell me a joke"
JSON:
{ "steps": [] }
<<EXTRA>>
User Request: <<REQUEST>>
JSON Plan:`

// Plan generates a step plan for the utterance. The context document is
// serialized into the prompt so the model can resolve remaining ambiguity.
func (p *Planner) Plan(ctx context.Context, utterance string, ec ExecutionContext) Plan {
	if p.gen == nil {
		log.Printf("[planner] no generator available, returning empty plan")
		return Plan{}
	}

	ctxJSON, err := json.MarshalIndent(ec, "", "  ")
	if err != nil {
		ctxJSON = []byte("{}")
	}

	prompt := strings.NewReplacer(
		"<<CONTEXT>>", string(ctxJSON),
		"<<DESKTOP>>", p.desktop,
		"<<DOCUMENTS>>", p.documents,
		"<<EXTRA>>", p.extra,
		"<<REQUEST>>", utterance,
	).Replace(plannerPrompt)

	raw, err := p.gen.Complete(ctx, prompt)
	if err != nil {
		log.Printf("[planner] generation failed: %v", err)
		return Plan{}
	}

	plan, err := ParsePlan(raw)
	if err != nil {
		log.Printf("[planner] unparseable plan, treating as conversational: %v", err)
		return Plan{}
	}
	return plan
}

// ParsePlan extracts a plan from raw model output. Markdown fences are
// stripped and the JSON object is taken from the first '{' to the last '}',
// since models routinely wrap the payload in prose.
func ParsePlan(raw string) (Plan, error) {
	clean := strings.ReplaceAll(raw, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start == -1 || end == -1 || end < start {
		return Plan{}, fmt.Errorf("no JSON object in output")
	}
	clean = clean[start : end+1]

	var plan Plan
	if err := json.Unmarshal([]byte(clean), &plan); err != nil {
		return Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	return plan, nil
}

// CompileCommand lowers a rule-extracted command into a single-step plan so
// the fast path and the model path share one execution contract.
func CompileCommand(cmd Command) Plan {
	step := func(tool Tool, action string, params map[string]any) Plan {
		return Plan{Steps: []Step{{Tool: tool, Action: action, Params: params}}}
	}

	switch cmd.Kind {
	case CmdLaunchApp:
		return step(ToolSystemControl, "launch_app", map[string]any{"app_name": cmd.Name})
	case CmdCreateFile:
		return step(ToolFileManager, "write_file", map[string]any{"path": cmd.Path, "content": cmd.Content})
	case CmdReadFile:
		return step(ToolFileManager, "read_file", map[string]any{"path": cmd.Path})
	case CmdOpenFile:
		return step(ToolFileManager, "open_file", map[string]any{"path": cmd.Path})
	case CmdOpenFolder:
		return step(ToolFileManager, "open_folder", map[string]any{"path": cmd.Path})
	case CmdCaptureScreen:
		return step(ToolSystemControl, "capture_screen", map[string]any{})
	case CmdAnalyzeScreen:
		return step(ToolSystemControl, "analyze_screen", map[string]any{})
	case CmdActiveWindow:
		return step(ToolSystemControl, "get_active_window", map[string]any{})
	case CmdPlaySpotify:
		return step(ToolSystemControl, "play_spotify", map[string]any{"query": cmd.Query})
	case CmdSystemInfo:
		return step(ToolSystemControl, "system_info", map[string]any{})
	case CmdBatteryStatus:
		return step(ToolSystemControl, "battery_status", map[string]any{})
	case CmdRunningProcesses:
		return step(ToolSystemControl, "running_processes", map[string]any{})
	case CmdTypeText:
		return step(ToolInputController, "type_text", map[string]any{"text": cmd.Text})
	case CmdPressKey:
		return step(ToolInputController, "press_key", map[string]any{"key": cmd.Key})
	case CmdHotkey:
		keys := make([]any, len(cmd.Keys))
		for i, k := range cmd.Keys {
			keys[i] = k
		}
		return step(ToolInputController, "hotkey", map[string]any{"keys": keys})
	case CmdClickMouse:
		params := map[string]any{"button": "left", "clicks": cmd.Clicks}
		if cmd.HasPos {
			params["x"] = cmd.X
			params["y"] = cmd.Y
		}
		return step(ToolInputController, "click_mouse", params)
	case CmdScroll:
		return step(ToolInputController, "scroll", map[string]any{"clicks": cmd.Clicks})
	case CmdOpenBrowser:
		return step(ToolSystemControl, "open_browser", map[string]any{"url": cmd.URL})
	default:
		return Plan{}
	}
}
